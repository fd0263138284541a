package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

const defaultExpiryBatch = 200

// AssignmentExpiryJobParams configure the assignment expiry sweep.
type AssignmentExpiryJobParams struct {
	Logger    *logger.Logger
	Orders    assignmentExpirer
	BatchSize int
}

type assignmentExpirer interface {
	ListExpiredAssignments(ctx context.Context, limit int) ([]uuid.UUID, error)
	ExpireAssignment(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// NewAssignmentExpiryJob builds the job that withdraws unclaimed orders from
// dealers once their offer window has closed.
func NewAssignmentExpiryJob(params AssignmentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order expirer required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &assignmentExpiryJob{
		logg:   params.Logger,
		orders: params.Orders,
		batch:  batch,
	}, nil
}

type assignmentExpiryJob struct {
	logg   *logger.Logger
	orders assignmentExpirer
	batch  int
}

func (j *assignmentExpiryJob) Name() string { return "assignment-expiry" }

// Run expires one batch. Each order is handled in its own transaction and a
// failure does not stop the rest of the batch.
func (j *assignmentExpiryJob) Run(ctx context.Context) error {
	ids, err := j.orders.ListExpiredAssignments(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list expired assignments: %w", err)
	}

	var (
		errs    error
		expired int
		skipped int
	)
	for _, id := range ids {
		ok, err := j.orders.ExpireAssignment(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", id, err))
			continue
		}
		if ok {
			expired++
		} else {
			// claimed between the scan and the update
			skipped++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(ids),
		"expired":    expired,
		"skipped":    skipped,
		"failed":     len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "assignment expiry sweep complete")
	return errs
}
