package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWorkflowErrorKinds(t *testing.T) {
	err := InsufficientStock("insufficient stock for '%s'", "OakDoor")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "insufficient stock for 'OakDoor'", err.Error())

	wrapped := fmt.Errorf("release order: %w", InvalidState("order %d already released", 5))
	assert.ErrorIs(t, wrapped, ErrInvalidState)

	var we *WorkflowError
	assert.True(t, errors.As(wrapped, &we))
	assert.Equal(t, "order 5 already released", we.Message)

	assert.Equal(t, "not found", (&WorkflowError{Kind: ErrNotFound}).Error())
}

func TestNotFoundOr(t *testing.T) {
	assert.NoError(t, NotFoundOr(nil, "order"))

	err := NotFoundOr(gorm.ErrRecordNotFound, "order")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "order not found", err.Error())

	other := errors.New("connection refused")
	assert.Same(t, other, NotFoundOr(other, "order"))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
}
