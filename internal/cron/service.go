package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/metrics"
)

const defaultInterval = 5 * time.Minute

// ServiceParams configure the cron service. JobTimeout bounds each job so a
// stuck sweep cannot outlive the cycle lock; it defaults to the interval.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Lock       Lock
	Metrics    *metrics.CronJobMetrics
	Interval   time.Duration
	JobTimeout time.Duration
}

// Service executes registered cron jobs on a fixed cadence. Each cycle runs
// under the distributed lock so only one replica sweeps at a time.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobTimeout := params.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = interval
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		interval:   interval,
		jobTimeout: jobTimeout,
	}, nil
}

// Run starts the cron loop until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "scheduled run failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "scheduled run failed", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "cron.cycle_skipped")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()

	s.logg.Info(ctx, "cron.cycle_start")
	failed := 0
	jobs := s.registry.Jobs()
	for _, job := range jobs {
		if !s.runJob(ctx, job) {
			failed++
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"jobs":   len(jobs),
		"failed": failed,
	}), "cron.cycle_complete")
	return nil
}

// runJob reports whether the job succeeded. A failing or panicking job is
// logged and counted; the remaining jobs still run.
func (s *Service) runJob(ctx context.Context, job Job) bool {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	s.logg.Info(jobCtx, "cron.job_start")

	start := time.Now()
	err := s.invoke(jobCtx, job)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "cron.job_failed", err)
		s.metrics.IncFailure(job.Name())
		return false
	}
	s.logg.Info(jobCtx, "cron.job_complete")
	s.metrics.IncSuccess(job.Name())
	return true
}

func (s *Service) invoke(ctx context.Context, job Job) (err error) {
	runCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return job.Run(runCtx)
}

// RunOnce executes a single locked cycle. Used by the one-shot mode of the
// worker.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}
