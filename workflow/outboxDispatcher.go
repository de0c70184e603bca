package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublishFunc sends one workflow event and returns the broker's message id.
type PublishFunc func(ctx context.Context, msg config.WorkflowEventMessage) (string, error)

const maxBackoff = 10 * time.Minute

// OutboxDispatcher drains committed workflow_events rows to Pub/Sub.
// Several dispatchers may run at once; rows are claimed with SKIP LOCKED.
type OutboxDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	Publish      PublishFunc
	DispatcherID string

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:             db,
		Logger:         logger,
		Publish:        config.PublishWorkflowEventWithResult,
		DispatcherID:   uuid.NewString(),
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    20,
		InitialBackoff: 5 * time.Second,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := d.DispatchOnce(ctx); err != nil {
			d.log(logrus.Fields{"dispatcher_id": d.DispatcherID}).Error("outbox claim failed: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

// retryBackoff doubles initial for every attempt after the first, capped at maxBackoff.
func retryBackoff(initial time.Duration, attempt int) time.Duration {
	backoff := initial
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// exhausted reports whether a row has used up its publish attempts.
func (d *OutboxDispatcher) exhausted(attempts int) bool {
	return d.MaxAttempts > 0 && attempts >= d.MaxAttempts
}

// DispatchOnce claims one batch and publishes it. It returns how many rows were sent.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	if d.DB == nil {
		return 0, nil
	}
	now := time.Now().UTC()

	claimed, err := d.claim(ctx, now)
	if err != nil || len(claimed) == 0 {
		return 0, err
	}

	sent := 0
	for _, event := range claimed {
		if event.PublishStatus == models.OutboxPublishStatusDead {
			continue
		}
		messageId, pubErr := d.Publish(ctx, event.ToMessage())
		if pubErr != nil {
			d.markFailed(ctx, event, pubErr)
			continue
		}
		d.markSent(ctx, event.ID, messageId)
		sent++
	}
	return sent, nil
}

// claim picks ready PENDING/FAILED rows plus PROCESSING rows whose lock went stale.
func (d *OutboxDispatcher) claim(ctx context.Context, now time.Time) ([]models.WorkflowEvent, error) {
	staleBefore := now.Add(-d.LockTimeout)
	var claimed []models.WorkflowEvent
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("is_processed = ?", false).
			Where(`(publish_status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?))
				OR (publish_status = ? AND locked_at IS NOT NULL AND locked_at <= ?)`,
				[]string{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}, now,
				models.OutboxPublishStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Find(&claimed).Error
		if err != nil {
			return err
		}

		for i := range claimed {
			event := &claimed[i]
			if d.exhausted(event.PublishAttempts) {
				msg := fmt.Sprintf("max publish attempts exceeded (%d)", d.MaxAttempts)
				event.PublishStatus = models.OutboxPublishStatusDead
				if err := tx.Model(&models.WorkflowEvent{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
					"publish_status":     models.OutboxPublishStatusDead,
					"last_publish_error": &msg,
					"next_attempt_at":    nil,
					"locked_at":          nil,
					"locked_by":          nil,
				}).Error; err != nil {
					return err
				}
				continue
			}

			event.PublishStatus = models.OutboxPublishStatusProcessing
			event.LockedAt = &now
			event.LockedBy = &d.DispatcherID
			event.PublishAttempts++
			if err := tx.Model(&models.WorkflowEvent{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
				"publish_status":     event.PublishStatus,
				"locked_at":          event.LockedAt,
				"locked_by":          event.LockedBy,
				"publish_attempts":   gorm.Expr("publish_attempts + 1"),
				"last_publish_error": nil,
				"next_attempt_at":    nil,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

func (d *OutboxDispatcher) markSent(ctx context.Context, eventId int, messageId string) {
	now := time.Now().UTC()
	err := d.DB.WithContext(ctx).Model(&models.WorkflowEvent{}).
		Where("id = ?", eventId).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusSent,
			"published_at":       &now,
			"pub_sub_message_id": &messageId,
			"locked_at":          nil,
			"locked_by":          nil,
			"next_attempt_at":    nil,
		}).Error
	if err != nil {
		d.log(logrus.Fields{"event_id": eventId}).Error("outbox mark sent failed: " + err.Error())
	}
}

func (d *OutboxDispatcher) markFailed(ctx context.Context, event models.WorkflowEvent, pubErr error) {
	msg := pubErr.Error()
	fields := logrus.Fields{
		"event_id":       event.ID,
		"event_type":     event.EventType,
		"attempt":        event.PublishAttempts,
		"correlation_id": event.CorrelationId,
	}

	updates := map[string]interface{}{
		"last_publish_error": &msg,
		"locked_at":          nil,
		"locked_by":          nil,
	}
	if d.exhausted(event.PublishAttempts) {
		updates["publish_status"] = models.OutboxPublishStatusDead
		updates["next_attempt_at"] = nil
	} else {
		next := time.Now().UTC().Add(retryBackoff(d.InitialBackoff, event.PublishAttempts))
		updates["publish_status"] = models.OutboxPublishStatusFailed
		updates["next_attempt_at"] = &next
		fields["next_attempt_at"] = next.Format(time.RFC3339Nano)
	}

	if err := d.DB.WithContext(ctx).Model(&models.WorkflowEvent{}).Where("id = ?", event.ID).Updates(updates).Error; err != nil {
		d.log(fields).Error("outbox mark failed: " + err.Error())
		return
	}
	if updates["publish_status"] == models.OutboxPublishStatusDead {
		d.log(fields).Error("outbox publish moved to DEAD after max attempts: " + msg)
		return
	}
	d.log(fields).Warn("outbox publish failed: " + msg)
}

func (d *OutboxDispatcher) log(fields logrus.Fields) *logrus.Entry {
	logger := d.Logger
	if logger == nil {
		logger = config.GetLogger()
	}
	fields["field"] = "OutboxDispatcher"
	return logger.WithFields(fields)
}
