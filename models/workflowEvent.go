package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outbox publish statuses for WorkflowEvent.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// Consumer-side statuses for WorkflowEvent.ProcessStatus.
const (
	OutboxProcessStatusPending    = "PENDING"
	OutboxProcessStatusProcessing = "PROCESSING"
	OutboxProcessStatusSucceeded  = "SUCCEEDED"
	OutboxProcessStatusFailed     = "FAILED"
	OutboxProcessStatusDead       = "DEAD"
)

// Event types emitted by transitions. Consumers key off these strings.
const (
	EventRawMaterialRequestTransitioned = "raw_material_request.transitioned"
	EventRawMaterialRequestPaid         = "raw_material_request.paid"
	EventMaterialReleaseTransitioned    = "material_release.transitioned"
	EventProductionRequestTransitioned  = "production_request.transitioned"
	EventAssignedTaskTransitioned       = "assigned_task.transitioned"
	EventOrderPlaced                    = "order.placed"
	EventOrderTransitioned              = "order.transitioned"
	EventPaymentConfirmed               = "payment.confirmed"
	EventDispatchDelivered              = "dispatch.delivered"
	EventServiceBookingTransitioned     = "service_booking.transitioned"
	EventServicePaymentConfirmed        = "service_booking.payment_confirmed"
	EventToolRequestTransitioned        = "tool_request.transitioned"
)

// WorkflowEvent is the transactional outbox row written alongside every committed transition.
// The dispatcher publishes pending rows to Pub/Sub after commit.
type WorkflowEvent struct {
	ID               int            `gorm:"primary_key" json:"id"`
	EventType        string         `gorm:"size:100;not null;index" json:"event_type"`
	EntityType       string         `gorm:"size:60;not null;index:idx_workflow_event_entity" json:"entity_type"`
	EntityId         int            `gorm:"not null;index:idx_workflow_event_entity" json:"entity_id"`
	FromStatus       string         `gorm:"size:60" json:"from_status"`
	ToStatus         string         `gorm:"size:60" json:"to_status"`
	Payload          datatypes.JSON `json:"payload"`
	CorrelationId    string         `gorm:"size:64;index" json:"correlation_id"`
	PublishStatus    string         `gorm:"size:20;not null;default:PENDING;index" json:"publish_status"`
	PublishAttempts  int            `gorm:"not null;default:0" json:"publish_attempts"`
	LastPublishError *string        `gorm:"type:text" json:"last_publish_error"`
	NextAttemptAt    *time.Time     `json:"next_attempt_at"`
	LockedAt         *time.Time     `json:"locked_at"`
	LockedBy         *string        `gorm:"size:64" json:"locked_by"`
	PublishedAt      *time.Time     `json:"published_at"`
	PubSubMessageId  *string        `gorm:"size:100" json:"pub_sub_message_id"`
	IsProcessed      bool           `gorm:"not null;default:false" json:"is_processed"`
	ProcessStatus    string         `gorm:"size:20;not null;default:PENDING" json:"process_status"`
	ProcessAttempts  int            `gorm:"not null;default:0" json:"process_attempts"`
	LastProcessError *string        `gorm:"type:text" json:"last_process_error"`
	ProcessedAt      *time.Time     `json:"processed_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok && cid != "" {
		return cid
	}
	return uuid.NewString()
}

// recordEvent writes the outbox row inside tx so it commits or rolls back with the transition.
func recordEvent(ctx context.Context, tx *gorm.DB, eventType string, entityType string, entityId int, from string, to string, payload any) error {
	var raw []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = b
	}
	cid := correlationIdFromContextOrNew(ctx)
	event := WorkflowEvent{
		EventType:     eventType,
		EntityType:    entityType,
		EntityId:      entityId,
		FromStatus:    from,
		ToStatus:      to,
		Payload:       datatypes.JSON(raw),
		CorrelationId: cid,
		PublishStatus: OutboxPublishStatusPending,
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}
	if from != to {
		config.LogTransition(config.GetLogger(), entityType, entityId, from, to, cid)
	}
	return nil
}

// ToMessage converts the outbox row to its Pub/Sub payload.
func (e WorkflowEvent) ToMessage() config.WorkflowEventMessage {
	return config.WorkflowEventMessage{
		ID:            e.ID,
		EventType:     e.EventType,
		EntityType:    e.EntityType,
		EntityId:      e.EntityId,
		FromStatus:    e.FromStatus,
		ToStatus:      e.ToStatus,
		Payload:       json.RawMessage(e.Payload),
		OccurredAt:    e.CreatedAt,
		CorrelationId: e.CorrelationId,
	}
}

// MarkWorkflowEventProcessed flags the outbox row once its downstream side effects have been applied.
func MarkWorkflowEventProcessed(ctx context.Context, id int) error {
	now := time.Now().UTC()
	return config.GetDB().WithContext(ctx).Model(&WorkflowEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_processed":       true,
			"process_status":     OutboxProcessStatusSucceeded,
			"last_process_error": nil,
			"processed_at":       &now,
		}).Error
}

// RequeueWorkflowEvent makes a FAILED or DEAD row eligible for publishing again.
func RequeueWorkflowEvent(ctx context.Context, id int) (*WorkflowEvent, error) {
	db := config.GetDB()
	var event WorkflowEvent
	if err := db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, utils.NotFoundOr(err, "workflow event")
	}
	if event.PublishStatus != OutboxPublishStatusFailed && event.PublishStatus != OutboxPublishStatusDead {
		return nil, utils.InvalidState("workflow event %d is %s, only FAILED or DEAD events can be requeued", id, event.PublishStatus)
	}
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(&event).Updates(map[string]interface{}{
		"publish_status":     OutboxPublishStatusFailed,
		"publish_attempts":   0,
		"next_attempt_at":    &now,
		"locked_at":          nil,
		"locked_by":          nil,
		"last_publish_error": nil,
	}).Error; err != nil {
		return nil, err
	}
	event.PublishStatus = OutboxPublishStatusFailed
	return &event, nil
}
