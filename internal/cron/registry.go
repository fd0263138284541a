package cron

import (
	"context"
	"fmt"
)

// Job is one unit of periodic maintenance, such as the assignment expiry sweep.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in run order. Names double as metric labels, so they
// must be unique.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry registers jobs in order, skipping nils. It panics on a
// duplicate name since that is a wiring bug in main.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{names: make(map[string]struct{})}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			panic(err)
		}
	}
	return registry
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	name := job.Name()
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("cron job %q registered twice", name)
	}
	r.names[name] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
