// outbox-dispatcher publishes committed workflow events to Pub/Sub outside the API process.
//
// Usage (from backend directory):
//   DB_* ... PUBSUB_PROJECT_ID=... go run ./cmd/outbox-dispatcher [-once]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	once := flag.Bool("once", false, "drain a single batch and exit")
	batch := flag.Int("batch", 50, "rows claimed per poll")
	poll := flag.Duration("poll", 500*time.Millisecond, "poll interval")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := config.GetLogger()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	dispatcher := workflow.NewOutboxDispatcher(db, logger)
	dispatcher.BatchSize = *batch
	dispatcher.PollInterval = *poll

	if *once {
		sent, err := dispatcher.DispatchOnce(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dispatch failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Published %d workflow events\n", sent)
		return
	}

	logger.WithFields(logrus.Fields{
		"field":         "OutboxDispatcher",
		"dispatcher_id": dispatcher.DispatcherID,
	}).Info("outbox dispatcher started")
	dispatcher.Run(ctx)
}
