package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// useUnreachableDB points the shared handle at a closed port so every query fails fast.
func useUnreachableDB(t *testing.T) {
	t.Helper()
	down, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "root:pw@tcp(127.0.0.1:1)/eurodoor?timeout=1s",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true, Logger: logger.Discard})
	require.NoError(t, err)
	prev := config.GetDB()
	config.SetDB(down)
	t.Cleanup(func() { config.SetDB(prev) })
}

func loggedContexts(hook *test.Hook, funcName string) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Data["funcName"] == funcName {
			out = append(out, e.Data["context"].(string))
		}
	}
	return out
}

func TestEventBookkeepingFailuresAreLogged(t *testing.T) {
	useUnreachableDB(t)
	hook := test.NewLocal(config.GetLogger())
	t.Cleanup(hook.Reset)
	ctx := context.Background()

	markEventProcessing(ctx, 5)
	assert.Equal(t, []string{"Update process_status"}, loggedContexts(hook, "markEventProcessing"))

	dead := markEventProcessFailure(ctx, config.GetLogger(), config.WorkflowEventMessage{
		ID:        5,
		EventType: models.EventPaymentConfirmed,
	}, errors.New("receipt insert failed"))
	assert.False(t, dead)
	assert.Equal(t, []string{"Load process_attempts", "Updates failure status"},
		loggedContexts(hook, "markEventProcessFailure"))
}

func TestEventBookkeepingSkipsUnsavedEvents(t *testing.T) {
	hook := test.NewLocal(config.GetLogger())
	t.Cleanup(hook.Reset)

	markEventProcessing(context.Background(), 0)
	assert.False(t, markEventProcessFailure(context.Background(), config.GetLogger(), config.WorkflowEventMessage{}, errors.New("x")))
	assert.Empty(t, hook.AllEntries())
}

func TestLockEntityDropsIdleEntries(t *testing.T) {
	unlock := lockEntity("order:1")
	globalMutex.Lock()
	_, held := entityMutexMap["order:1"]
	globalMutex.Unlock()
	assert.True(t, held)

	unlock()
	globalMutex.Lock()
	_, held = entityMutexMap["order:1"]
	globalMutex.Unlock()
	assert.False(t, held)
}

func TestLockEntitySerialisesSameEntity(t *testing.T) {
	unlock := lockEntity("service_booking:7")

	acquired := make(chan struct{})
	go func() {
		second := lockEntity("service_booking:7")
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatalf("second holder got the lock while the first still held it")
	case <-time.After(50 * time.Millisecond):
	}

	other := lockEntity("service_booking:8")
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatalf("second holder never got the lock")
	}

	require.Eventually(t, func() bool {
		globalMutex.Lock()
		defer globalMutex.Unlock()
		return len(entityMutexMap) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
