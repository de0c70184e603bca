package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// WorkflowEventMessage is the Pub/Sub payload for a committed workflow transition.
type WorkflowEventMessage struct {
	ID            int             `json:"id"`
	EventType     string          `json:"event_type"`
	EntityType    string          `json:"entity_type"`
	EntityId      int             `json:"entity_id"`
	FromStatus    string          `json:"from_status"`
	ToStatus      string          `json:"to_status"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationId string          `json:"correlation_id"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func init() {
	// Load env from .env
	godotenv.Load()
}

// GetClient returns a Pub/Sub client, initializing with retries if needed.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is provided.
func GetClient(ctx context.Context) (*pubsub.Client, error) {
	return getPubSubClient(ctx)
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	if v := os.Getenv("GCP_PROJECT"); v != "" {
		return v
	}
	return ""
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	if pubsubClient != nil {
		c := pubsubClient
		pubsubClientMu.Unlock()
		return c, nil
	}
	pubsubClientMu.Unlock()

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var attempt int
	for {
		attempt++

		var (
			c   *pubsub.Client
			err error
		)
		if credJSON != "" {
			c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			// Uses Application Default Credentials (Cloud Run service account or GOOGLE_APPLICATION_CREDENTIALS).
			c, err = pubsub.NewClient(ctx, projectID)
		}
		if err == nil {
			pubsubClientMu.Lock()
			if pubsubClient == nil {
				pubsubClient = c
			} else {
				// Another goroutine won the race; close ours.
				_ = c.Close()
			}
			c2 := pubsubClient
			pubsubClientMu.Unlock()

			log.Printf("pubsub client ready (project_id=%s attempt=%d)", projectID, attempt)
			return c2, nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v; retrying in %s", projectID, attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func CreateTopicIfNotExists(c *pubsub.Client, topic string) (*pubsub.Topic, error) {
	if c == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	ctx := context.Background()
	t := c.Topic(topic)
	ok, err := t.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return t, nil
	}
	t, err = c.CreateTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("create topic %q: %w", topic, err)
	}
	return t, nil
}

func CreateSubscriptionIfNotExists(client *pubsub.Client, name string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	if client == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if name == "" {
		return nil, errors.New("subscription name is required")
	}
	if topic == nil {
		return nil, errors.New("topic is required")
	}

	ctx := context.Background()
	sub := client.Subscription(name)
	subExists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription exists: %w", err)
	}
	if !subExists {
		sub, err = client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 20 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create subscription %q: %w", name, err)
		}
	}
	return sub, nil
}

// WorkflowEventsTopic is the topic workflow events are published to.
func WorkflowEventsTopic() string {
	if v := os.Getenv("WORKFLOW_EVENTS_TOPIC"); v != "" {
		return v
	}
	return "eurodoor-workflow-events"
}

// PublishWorkflowEventWithResult publishes and returns the Pub/Sub server-assigned message ID.
func PublishWorkflowEventWithResult(ctx context.Context, msg WorkflowEventMessage) (string, error) {
	client, err := getPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	t := client.Topic(WorkflowEventsTopic())
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := t.Publish(ctx, &pubsub.Message{
		Data: msgJSON,
		Attributes: map[string]string{
			"event_type":     msg.EventType,
			"entity_type":    msg.EntityType,
			"correlation_id": msg.CorrelationId,
		},
	})

	return result.Get(ctx)
}
