package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)
var ctx = context.Background()

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

func GetRedisObject(key string, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	err = json.Unmarshal([]byte(val), dest)
	if err != nil {
		return false, err
	}
	return true, nil
}

func GetRedisValue(key string) (string, bool, error) {
	if rdb == nil {
		return "", false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func SetRedisObject(key string, obj interface{}, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	objInByte, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err = rdb.Set(ctx, key, objInByte, exp).Err(); err != nil {
		return err
	}
	return nil
}

func SetRedisValue(key string, value string, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	return rdb.Set(ctx, key, value, exp).Err()
}

func RemoveRedisKey(keys ...string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, keys...).Result()
	return err
}

func init() {
	// Load env from .env
	godotenv.Load()
	// IMPORTANT (Cloud Run):
	// Do NOT block startup in init() waiting for Redis.
	// Cloud Run requires the container to start listening on $PORT quickly.
}

// ConnectRedisWithRetry connects and sets the global Redis client + lock client.
// Call this from main() AFTER the HTTP server is listening.
func ConnectRedisWithRetry() {
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
		log.Printf("REDIS_ADDRESS not set; defaulting to %s", redisAddr)
	}

	var attempt int
	for {
		attempt++
		rdb = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: "",
			DB:       0, // use default DB
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err == nil {
			locker = redislock.New(rdb)
			log.Printf("connected to redis (attempt=%d addr=%s)", attempt, redisAddr)
			return
		} else {
			sleep := time.Second * time.Duration(1<<min(attempt, 5))
			if sleep > 30*time.Second {
				sleep = 30 * time.Second
			}
			log.Printf("failed to connect redis (attempt=%d addr=%s): %v; retrying in %s", attempt, redisAddr, err, sleep)
			time.Sleep(sleep)
		}
	}
}
