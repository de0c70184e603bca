package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/sirupsen/logrus"
)

type eventProcessRetryConfig struct {
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
}

func getEventProcessRetryConfig() eventProcessRetryConfig {
	cfg := eventProcessRetryConfig{
		maxAttempts: 10,
		minBackoff:  10 * time.Second,
		maxBackoff:  10 * time.Minute,
	}

	if v := os.Getenv("EVENT_PROCESS_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.maxAttempts = n
		}
	}
	if v := os.Getenv("EVENT_PROCESS_MIN_BACKOFF_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.minBackoff = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("EVENT_PROCESS_MAX_BACKOFF_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.maxBackoff = time.Duration(n) * time.Second
		}
	}
	// Pub/Sub caps retry backoff at 600s.
	if cfg.maxBackoff > 10*time.Minute {
		cfg.maxBackoff = 10 * time.Minute
	}
	if cfg.minBackoff > cfg.maxBackoff {
		cfg.minBackoff = cfg.maxBackoff
	}
	return cfg
}

func markEventProcessing(ctx context.Context, id int) {
	if id <= 0 {
		return
	}
	if err := config.GetDB().WithContext(ctx).
		Model(&models.WorkflowEvent{}).
		Where("id = ? AND process_status NOT IN ?", id, []string{models.OutboxProcessStatusDead, models.OutboxProcessStatusSucceeded}).
		Update("process_status", models.OutboxProcessStatusProcessing).Error; err != nil {
		config.LogError(config.GetLogger(), "eventProcessingRetry.go", "markEventProcessing", "Update process_status", id, err)
	}
}

// markEventProcessFailure records the error and returns whether the event is now DEAD.
// A DEAD event is acked so Pub/Sub stops redelivering it; it can be requeued by an admin.
func markEventProcessFailure(ctx context.Context, logger *logrus.Logger, m config.WorkflowEventMessage, err error) bool {
	if m.ID <= 0 {
		return false
	}
	cfg := getEventProcessRetryConfig()
	errMsg := err.Error()
	db := config.GetDB()

	var event models.WorkflowEvent
	if qerr := db.WithContext(ctx).Select("id", "process_attempts").Where("id = ?", m.ID).First(&event).Error; qerr != nil {
		config.LogError(logger, "eventProcessingRetry.go", "markEventProcessFailure", "Load process_attempts", m.ID, qerr)
		if uerr := db.WithContext(ctx).Model(&models.WorkflowEvent{}).
			Where("id = ?", m.ID).
			Updates(map[string]interface{}{
				"last_process_error": &errMsg,
				"process_status":     models.OutboxProcessStatusFailed,
			}).Error; uerr != nil {
			config.LogError(logger, "eventProcessingRetry.go", "markEventProcessFailure", "Updates failure status", m.ID, uerr)
		}
		return false
	}

	attempts := event.ProcessAttempts + 1
	status := models.OutboxProcessStatusFailed
	if attempts >= cfg.maxAttempts {
		status = models.OutboxProcessStatusDead
	}
	if uerr := db.WithContext(ctx).Model(&models.WorkflowEvent{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"last_process_error": &errMsg,
			"process_attempts":   attempts,
			"process_status":     status,
		}).Error; uerr != nil {
		config.LogError(logger, "eventProcessingRetry.go", "markEventProcessFailure", "Updates process_attempts", m.ID, uerr)
	}

	logger.WithFields(logrus.Fields{
		"field":            "EventProcessing",
		"event_id":         m.ID,
		"event_type":       m.EventType,
		"entity_type":      m.EntityType,
		"entity_id":        m.EntityId,
		"process_status":   status,
		"process_attempts": attempts,
		"correlation_id":   m.CorrelationId,
	}).Error("workflow event processing failed: " + errMsg)

	return status == models.OutboxProcessStatusDead
}
