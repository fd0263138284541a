package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

type fakeExpirer struct {
	ids      []uuid.UUID
	listErr  error
	failures map[uuid.UUID]error
	claimed  map[uuid.UUID]bool
	expired  []uuid.UUID
	limit    int
}

func (f *fakeExpirer) ListExpiredAssignments(_ context.Context, limit int) ([]uuid.UUID, error) {
	f.limit = limit
	return f.ids, f.listErr
}

func (f *fakeExpirer) ExpireAssignment(_ context.Context, orderID uuid.UUID) (bool, error) {
	if err := f.failures[orderID]; err != nil {
		return false, err
	}
	if f.claimed[orderID] {
		return false, nil
	}
	f.expired = append(f.expired, orderID)
	return true, nil
}

func newAssignmentExpiryJob(t *testing.T, orders *fakeExpirer, batch int) Job {
	t.Helper()
	job, err := NewAssignmentExpiryJob(AssignmentExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Orders:    orders,
		BatchSize: batch,
	})
	if err != nil {
		t.Fatalf("NewAssignmentExpiryJob: %v", err)
	}
	return job
}

func TestAssignmentExpiryJobExpiresBatch(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	orders := &fakeExpirer{
		ids:     []uuid.UUID{a, b, c},
		claimed: map[uuid.UUID]bool{b: true},
	}
	job := newAssignmentExpiryJob(t, orders, 0)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if orders.limit != defaultExpiryBatch {
		t.Fatalf("expected default batch %d, got %d", defaultExpiryBatch, orders.limit)
	}
	if len(orders.expired) != 2 || orders.expired[0] != a || orders.expired[1] != c {
		t.Fatalf("unexpected expired set %v", orders.expired)
	}
}

func TestAssignmentExpiryJobContinuesPastFailures(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	orders := &fakeExpirer{
		ids: []uuid.UUID{a, b, c},
		failures: map[uuid.UUID]error{
			a: errors.New("deadlock"),
			c: errors.New("timeout"),
		},
	}
	job := newAssignmentExpiryJob(t, orders, 10)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
	if len(orders.expired) != 1 || orders.expired[0] != b {
		t.Fatalf("expected only %s expired, got %v", b, orders.expired)
	}
}

func TestAssignmentExpiryJobListError(t *testing.T) {
	job := newAssignmentExpiryJob(t, &fakeExpirer{listErr: errors.New("db down")}, 5)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}

func TestNewAssignmentExpiryJobValidates(t *testing.T) {
	if _, err := NewAssignmentExpiryJob(AssignmentExpiryJobParams{}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewAssignmentExpiryJob(AssignmentExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}); err == nil {
		t.Fatal("expected orders error")
	}
}
