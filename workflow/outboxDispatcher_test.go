package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoffDoublesUntilCap(t *testing.T) {
	assert.Equal(t, 5*time.Second, retryBackoff(5*time.Second, 0))
	assert.Equal(t, 5*time.Second, retryBackoff(5*time.Second, 1))
	assert.Equal(t, 10*time.Second, retryBackoff(5*time.Second, 2))
	assert.Equal(t, 40*time.Second, retryBackoff(5*time.Second, 4))
	assert.Equal(t, maxBackoff, retryBackoff(5*time.Second, 12))
	assert.Equal(t, maxBackoff, retryBackoff(time.Hour, 2))
}

func TestExhausted(t *testing.T) {
	d := &OutboxDispatcher{MaxAttempts: 3}
	assert.False(t, d.exhausted(2))
	assert.True(t, d.exhausted(3))
	assert.True(t, d.exhausted(4))

	unlimited := &OutboxDispatcher{}
	assert.False(t, unlimited.exhausted(1000))
}

func TestNewOutboxDispatcherDefaults(t *testing.T) {
	d := NewOutboxDispatcher(nil, logrus.New())
	assert.NotEmpty(t, d.DispatcherID)
	assert.NotNil(t, d.Publish)
	assert.Equal(t, 50, d.BatchSize)
	assert.Equal(t, 20, d.MaxAttempts)

	other := NewOutboxDispatcher(nil, logrus.New())
	assert.NotEqual(t, d.DispatcherID, other.DispatcherID)
}

func TestDispatchOnceWithoutDatabaseIsNoop(t *testing.T) {
	d := NewOutboxDispatcher(nil, logrus.New())
	sent, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	d := NewOutboxDispatcher(nil, logrus.New())
	d.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
