package models

import (
	"context"
	"errors"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/evanbosire/Eurodoor-Backend/models")

// runTransition runs fn as one DB transaction under a span and a best-effort redis lock on the entity.
// fn must take its row locks through tx; any error rolls back every write made in fn.
func runTransition(ctx context.Context, name string, entity string, id int, fn func(tx *gorm.DB) error) error {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("workflow.entity", entity),
		attribute.Int("workflow.entity_id", id),
	))
	defer span.End()

	if id > 0 {
		release := utils.EntityLock(ctx, entity, id)
		defer release()
	}

	err := config.GetDB().WithContext(ctx).Transaction(fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var wfErr *utils.WorkflowError
		if !errors.As(err, &wfErr) {
			config.LogError(config.GetLogger(), "models", name, "transaction", map[string]any{"entity": entity, "id": id}, err)
		}
	}
	return err
}

// requireTransition is the single guard every status change goes through.
func requireTransition[S ~string](entity string, id int, from S, to S, allowed bool) error {
	if !allowed {
		return utils.InvalidState("%s %d cannot move from %s to %s", entity, id, from, to)
	}
	return nil
}
