package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/middlewares"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// Define a struct to represent the rate limiter.
type RateLimiter struct {
	limit  int64
	window time.Duration
}

type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// workflowEventPushHandler is the Pub/Sub push endpoint for workflow events.
// A 2xx acks the message, anything else asks Pub/Sub to redeliver.
func workflowEventPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg PubSubMessage
		logger := config.GetLogger()
		redisLock := config.GetRedisLock()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "server.go", "workflowEventPushHandler", "io.ReadAll", nil, err)
			c.Status(http.StatusNoContent)
			return
		}

		// byte slice unmarshalling handles base64 decoding.
		if err := json.Unmarshal(body, &msg); err != nil {
			config.LogError(logger, "server.go", "workflowEventPushHandler", "Unmarshal body", body, err)
			c.Status(http.StatusNoContent)
			return
		}

		var m config.WorkflowEventMessage
		if err := json.Unmarshal(msg.Message.Data, &m); err != nil {
			config.LogError(logger, "server.go", "workflowEventPushHandler", "Unmarshal pubsub message", msg.Message.Data, err)
			c.Status(http.StatusNoContent)
			return
		}
		if m.EventType == "" || m.EntityType == "" {
			config.LogError(logger, "server.go", "workflowEventPushHandler", "Invalid pubsub message (missing required fields)", m, fmt.Errorf("event_type/entity_type required"))
			c.Status(http.StatusNoContent)
			return
		}
		if m.CorrelationId == "" {
			m.CorrelationId = msg.Message.ID
		}

		fields := logrus.Fields{
			"field":       "workflowEventPushHandler",
			"event_id":    m.ID,
			"event_type":  m.EventType,
			"entity_type": m.EntityType,
			"entity_id":   m.EntityId,
			"message_id":  msg.Message.ID,
		}

		// Best-effort cross-instance lock; the receipt transactions stay correct without it.
		var lock *redislock.Lock
		if redisLock != nil {
			lock, err = redisLock.Obtain(c.Request.Context(), fmt.Sprintf("lock:workflow_event:%s:%d", m.EntityType, m.EntityId), 30*time.Second, nil)
			if err != nil {
				if !errors.Is(err, redislock.ErrNotObtained) {
					logger.WithFields(fields).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
				}
				lock = nil
			}
		}
		defer func() {
			if lock == nil {
				return
			}
			if releaseErr := lock.Release(c.Request.Context()); releaseErr != nil {
				logger.WithFields(fields).Warn("failed to release redis lock: " + releaseErr.Error())
			}
		}()

		if !handleWorkflowEvent(c.Request.Context(), logger, m) {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type outboxReplayRequest struct {
	EventId int `json:"event_id" binding:"required"`
}

// outboxReplayHandler puts a FAILED or DEAD workflow event back in the dispatch queue.
func outboxReplayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req outboxReplayRequest
		if !bindJSON(c, &req) {
			return
		}
		event, err := models.RequeueWorkflowEvent(c.Request.Context(), req.EventId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"event_id":        event.ID,
			"publish_status":  event.PublishStatus,
			"next_attempt_at": event.NextAttemptAt,
		})
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "X-Report-Archive")
	corsConfig.AllowCredentials = true

	r.Use(cors.New(corsConfig))

	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.LoaderMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())
	r.POST("/pubsub", workflowEventPushHandler())
	r.POST("/internal/ops/outbox/replay", middlewares.AuthMiddleware(), middlewares.RequireRoles(models.EmployeeRoleAdmin), outboxReplayHandler())
	registerRoutes(r.Group("/api"))
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	if config.OutboxDispatchEnabled() {
		go workflow.NewOutboxDispatcher(db, logger).Run(backgroundCtx)
		if err := RunWorkflowEventSubscriber(backgroundCtx); err != nil {
			logger.WithFields(logrus.Fields{"field": "WorkflowEvents"}).Error("workflow event subscriber not started: " + err.Error())
		}
	}

	if config.DBDriver() == "mysql" {
		for attempt := 1; ; attempt++ {
			err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
			if err == nil {
				break
			}
			sleep := min(time.Second*time.Duration(1<<min(attempt, 5)), 30*time.Second)
			logger.WithFields(logrus.Fields{
				"field":   "database",
				"attempt": attempt,
			}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
			time.Sleep(sleep)
		}
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	cancelBackground()

	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// NewRateLimiter counts requests per client IP in the shared redis.
func NewRateLimiter(limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	client := config.GetRedisDB()
	if client == nil {
		c.Next()
		return
	}
	key := "ratelimit:" + c.ClientIP()

	// INCR creates the key at 1; the window starts on the first hit.
	count, err := client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count == 1 {
		if err := client.Expire(c.Request.Context(), key, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
