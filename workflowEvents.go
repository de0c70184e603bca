package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/sirupsen/logrus"
)

type entityMutex struct {
	mu      sync.Mutex
	waiters int
}

var (
	entityMutexMap = make(map[string]*entityMutex)
	globalMutex    = &sync.Mutex{}
)

// lockEntity serialises work on one entity and returns the unlock func.
// The map entry is dropped once nobody holds or waits on it.
func lockEntity(key string) func() {
	globalMutex.Lock()
	m, exists := entityMutexMap[key]
	if !exists {
		m = &entityMutex{}
		entityMutexMap[key] = m
	}
	m.waiters++
	globalMutex.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		globalMutex.Lock()
		m.waiters--
		if m.waiters == 0 {
			delete(entityMutexMap, key)
		}
		globalMutex.Unlock()
	}
}

func workflowEventsSubscription() string {
	if v := os.Getenv("WORKFLOW_EVENTS_SUBSCRIPTION"); v != "" {
		return v
	}
	return config.WorkflowEventsTopic() + "-receipts"
}

// RunWorkflowEventSubscriber pulls committed workflow events and applies their side effects.
func RunWorkflowEventSubscriber(ctx context.Context) error {
	logger := config.GetLogger()
	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}
	topic, err := config.CreateTopicIfNotExists(client, config.WorkflowEventsTopic())
	if err != nil {
		return err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, workflowEventsSubscription(), topic)
	if err != nil {
		return err
	}
	cfg := getEventProcessRetryConfig()
	if _, err := sub.Update(ctx, pubsub.SubscriptionConfigToUpdate{
		RetryPolicy: &pubsub.RetryPolicy{MinimumBackoff: cfg.minBackoff, MaximumBackoff: cfg.maxBackoff},
	}); err != nil {
		logger.WithFields(logrus.Fields{"field": "WorkflowEvents"}).Warn("could not set subscription retry policy: " + err.Error())
	}
	sub.ReceiveSettings.MaxOutstandingMessages = 10

	callback := func(ctx context.Context, msg *pubsub.Message) {
		var m config.WorkflowEventMessage
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			config.LogError(logger, "workflowEvents.go", "RunWorkflowEventSubscriber", "Unmarshaling pubsub message", string(msg.Data), err)
			msg.Ack()
			return
		}
		if handleWorkflowEvent(ctx, logger, m) {
			msg.Ack()
			return
		}
		msg.Nack()
	}

	go func() {
		if err := sub.Receive(ctx, callback); err != nil {
			config.LogError(logger, "workflowEvents.go", "RunWorkflowEventSubscriber", "Failed to receive messages", nil, err)
		}
	}()
	return nil
}

// handleWorkflowEvent processes one message and reports whether it should be acked.
func handleWorkflowEvent(ctx context.Context, logger *logrus.Logger, m config.WorkflowEventMessage) bool {
	unlock := lockEntity(fmt.Sprintf("%s:%d", m.EntityType, m.EntityId))
	defer unlock()

	if m.CorrelationId != "" {
		ctx = utils.SetCorrelationIdInContext(ctx, m.CorrelationId)
	}
	markEventProcessing(ctx, m.ID)
	if err := ProcessWorkflowEvent(ctx, m); err != nil {
		dead := markEventProcessFailure(ctx, logger, m, err)
		// malformed events will never succeed
		return dead || errors.Is(err, utils.ErrInvalidInput)
	}
	if m.ID > 0 {
		if err := models.MarkWorkflowEventProcessed(ctx, m.ID); err != nil {
			config.LogError(logger, "workflowEvents.go", "handleWorkflowEvent", "MarkWorkflowEventProcessed", m.ID, err)
		}
	}
	return true
}

// ProcessWorkflowEvent issues receipts once payments are confirmed. Other events need no follow-up.
func ProcessWorkflowEvent(ctx context.Context, m config.WorkflowEventMessage) error {
	switch m.EventType {
	case models.EventPaymentConfirmed:
		var payment struct {
			OrderId int `json:"order_id"`
		}
		if err := json.Unmarshal(m.Payload, &payment); err != nil {
			return utils.InvalidInput("payment event %d has an unreadable payload: %s", m.ID, err.Error())
		}
		if payment.OrderId <= 0 {
			return utils.InvalidInput("payment event %d has no order id", m.ID)
		}
		_, err := models.IssueOrderReceipt(ctx, payment.OrderId)
		return err
	case models.EventServicePaymentConfirmed:
		_, err := models.IssueServiceReceipt(ctx, m.EntityId)
		return err
	}
	return nil
}
