package utils

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrorRecordNotFound = errors.New("record not found")

// Error kinds returned by workflow transitions. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
)

// WorkflowError carries a user facing message together with its kind.
type WorkflowError struct {
	Kind    error
	Message string
}

func (e *WorkflowError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *WorkflowError) Unwrap() error {
	return e.Kind
}

func NotFound(format string, args ...any) error {
	return &WorkflowError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &WorkflowError{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(format string, args ...any) error {
	return &WorkflowError{Kind: ErrInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) error {
	return &WorkflowError{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &WorkflowError{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// NotFoundOr maps gorm.ErrRecordNotFound to a NotFound error naming the entity.
// Any other error is returned unchanged.
func NotFoundOr(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s not found", entity)
	}
	return err
}

// IsDuplicateKey reports unique constraint violations from MySQL (1062) or Postgres (23505).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}
