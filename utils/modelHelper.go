package utils

import (
	"context"
	"errors"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* DB fetching */

// fetch model from db
// (returns NotFound naming entity)
func FetchModel[T any](ctx context.Context, entity string, id int, associations ...string) (*T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		return nil, NotFoundOr(err, entity)
	}
	return &result, nil
}

// fetch model inside tx holding a row lock until commit
func FetchModelForUpdate[T any](tx *gorm.DB, entity string, id int, associations ...string) (*T, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	for _, field := range associations {
		q = q.Preload(field)
	}
	var result T
	if err := q.First(&result, id).Error; err != nil {
		return nil, NotFoundOr(err, entity)
	}
	return &result, nil
}

// IsNotFound reports whether err is a NotFound kind or a raw gorm not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrorRecordNotFound)
}
