package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/sirupsen/logrus"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

// store a list under key, obj should be a slice
func StoreRedisList[T any](key string, list []*T) error {
	return config.SetRedisObject(key, &list, GetCacheLifespan())
}

// retrieve a list stored by StoreRedisList
// returns nil if does not exist
func RetrieveRedisList[T any](key string) ([]*T, error) {
	var results []*T
	exists, err := config.GetRedisObject(key, &results)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return results, nil
}

// EntityLock takes a short redis lock on one workflow entity.
// Redis locks are best-effort; row locks inside the DB transaction are what keep transitions safe,
// so a missing redis client or a lock held elsewhere never blocks the caller.
// The returned func releases the lock and is always safe to call.
func EntityLock(ctx context.Context, entity string, id any) func() {
	locker := config.GetRedisLock()
	logger := config.GetLogger()
	noop := func() {}
	if locker == nil {
		return noop
	}
	key := fmt.Sprintf("lock:%s:%v", entity, id)
	lock, err := locker.Obtain(ctx, key, 10*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		logger.WithFields(logrus.Fields{
			"field": "EntityLock",
			"key":   key,
		}).Warn("could not obtain redis lock; proceeding with db locks only")
		return noop
	} else if err != nil {
		logger.WithFields(logrus.Fields{
			"field": "EntityLock",
			"key":   key,
		}).Warn("error obtaining redis lock; proceeding with db locks only: " + err.Error())
		return noop
	}
	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithFields(logrus.Fields{
				"field": "EntityLock",
				"key":   key,
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}
}
