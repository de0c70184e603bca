package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.NotFound("order %d not found", 1), http.StatusNotFound},
		{utils.InvalidState("order already released"), http.StatusConflict},
		{utils.InsufficientStock("insufficient stock"), http.StatusConflict},
		{utils.InvalidInput("bad code"), http.StatusBadRequest},
		{utils.Unauthorized("not your booking"), http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", utils.InvalidInput("x")), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, errorStatus(tc.err), "%v", tc.err)
	}
}

func TestRespondHidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { respond(c, http.StatusOK, nil, errors.New("dial tcp: refused")) })
	r.GET("/stock", func(c *gin.Context) {
		respond(c, http.StatusOK, nil, utils.InsufficientStock("insufficient stock for 'OakDoor'"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OakDoor")
}

func TestParamIdAndQueryHelpers(t *testing.T) {
	r := gin.New()
	r.GET("/orders/:id", func(c *gin.Context) {
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":          id,
			"customer_id": queryInt(c, "customer_id"),
			"status":      queryValue[models.OrderStatus](c, "status"),
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/7?customer_id=3&status=released", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Id         int     `json:"id"`
		CustomerId *int    `json:"customer_id"`
		Status     *string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Id)
	require.NotNil(t, body.CustomerId)
	assert.Equal(t, 3, *body.CustomerId)
	require.NotNil(t, body.Status)
	assert.Equal(t, "released", *body.Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/7?customer_id=abc&status=%20", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.CustomerId)
	assert.Nil(t, body.Status)

	for _, bad := range []string{"/orders/abc", "/orders/0", "/orders/-2"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestBindJSONReportsFields(t *testing.T) {
	r := gin.New()
	r.POST("/dispatch", func(c *gin.Context) {
		var req dispatchRequest
		if !bindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dispatch", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"DriverId":"required"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dispatch", bytes.NewBufferString(`{"driver_id":4}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim("  "))
	assert.Equal(t, []string{"https://eurodoor.co.ke", "http://localhost:3000"},
		splitAndTrim(" https://eurodoor.co.ke, ,http://localhost:3000 "))
}

func TestEventProcessRetryConfig(t *testing.T) {
	cfg := getEventProcessRetryConfig()
	assert.Equal(t, 10, cfg.maxAttempts)
	assert.Equal(t, 10*time.Second, cfg.minBackoff)

	t.Setenv("EVENT_PROCESS_MAX_ATTEMPTS", "3")
	t.Setenv("EVENT_PROCESS_MIN_BACKOFF_SECONDS", "900")
	t.Setenv("EVENT_PROCESS_MAX_BACKOFF_SECONDS", "3600")
	cfg = getEventProcessRetryConfig()
	assert.Equal(t, 3, cfg.maxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.maxBackoff)
	assert.Equal(t, 10*time.Minute, cfg.minBackoff)
}

func TestProcessWorkflowEventIgnoresUnhandledTypes(t *testing.T) {
	err := ProcessWorkflowEvent(context.Background(), config.WorkflowEventMessage{
		EventType:  models.EventOrderTransitioned,
		EntityType: "order",
		EntityId:   1,
	})
	assert.NoError(t, err)
}

func TestProcessWorkflowEventRejectsBadPaymentPayload(t *testing.T) {
	err := ProcessWorkflowEvent(context.Background(), config.WorkflowEventMessage{
		ID:        9,
		EventType: models.EventPaymentConfirmed,
		Payload:   json.RawMessage(`{"order_id":0}`),
	})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	err = ProcessWorkflowEvent(context.Background(), config.WorkflowEventMessage{
		ID:        9,
		EventType: models.EventPaymentConfirmed,
		Payload:   json.RawMessage(`"oops"`),
	})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestWorkflowEventPushHandlerAcksMalformedMessages(t *testing.T) {
	r := gin.New()
	r.POST("/pubsub", workflowEventPushHandler())

	bodies := []string{
		`not json`,
		`{"message":{"data":"bm90IGpzb24=","id":"1"}}`,
		`{"message":{"data":"e30=","id":"2"}}`,
	}
	for _, body := range bodies {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pubsub", bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusNoContent, w.Code, body)
	}
}
