// Package syncjob implements the minimal schedule_sync scheduler
// (spec.md's SyncJob): an in-memory, ticker-driven job that submits a
// migration run to the Task Engine on every tick, with at-most-one-active
// run per job id.
package syncjob

import (
	"context"
	"sync"
	"time"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/migration"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/task"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
)

// Direction is the sync job's push/pull/bidirectional orientation.
// Only push (source -> target) is actually driven today; pull and
// bidirectional are accepted and recorded but run as push, since the
// migration engine has no pull-mode entry point (see DESIGN.md).
type Direction string

const (
	DirectionPush          Direction = "push"
	DirectionPull          Direction = "pull"
	DirectionBidirectional Direction = "bidirectional"
)

// Job is the in-memory SyncJob record (spec.md §3 Data Model).
type Job struct {
	ID             string
	SourceRegistry string
	TargetRegistry string
	Scope          string
	Direction      Direction
	IntervalSecs   int
	Plan           migration.Plan

	LastRun      time.Time
	NextRun      time.Time
	RunningCount int
}

// Scheduler owns every registered sync job and the ticker goroutine
// driving it. One job id can never have two overlapping task runs.
type Scheduler struct {
	tasks     *task.Engine
	migration *migration.Engine
	registries *registry.Manager

	mu     sync.Mutex
	jobs   map[string]*Job
	stopFn map[string]func()
}

// NewScheduler builds an empty Scheduler bound to the shared task engine,
// migration engine, and registry manager.
func NewScheduler(tasks *task.Engine, mig *migration.Engine, registries *registry.Manager) *Scheduler {
	return &Scheduler{
		tasks:      tasks,
		migration:  mig,
		registries: registries,
		jobs:       make(map[string]*Job),
		stopFn:     make(map[string]func()),
	}
}

// Schedule registers a job and starts its ticker. Re-scheduling an
// existing id replaces it, stopping the old ticker first.
func (s *Scheduler) Schedule(id string, job Job) error {
	if job.IntervalSecs <= 0 {
		return apierrors.New(apierrors.CodeInvalidArgument, "interval_seconds must be positive")
	}
	job.ID = id
	job.NextRun = time.Now().Add(time.Duration(job.IntervalSecs) * time.Second)

	s.mu.Lock()
	if stop, ok := s.stopFn[id]; ok {
		stop()
	}
	s.jobs[id] = &job
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.stopFn[id] = cancel
	s.mu.Unlock()

	go s.run(ctx, id)
	return nil
}

// Cancel stops a job's ticker; in-flight task runs are not interrupted.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.stopFn[id]; ok {
		stop()
		delete(s.stopFn, id)
	}
	delete(s.jobs, id)
}

// List returns a snapshot of every registered job.
func (s *Scheduler) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	return out
}

func (s *Scheduler) run(ctx context.Context, id string) {
	for {
		s.mu.Lock()
		job, ok := s.jobs[id]
		if !ok {
			s.mu.Unlock()
			return
		}
		interval := time.Duration(job.IntervalSecs) * time.Second
		s.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.tick(id)
		}
	}
}

// tick submits one migration run, skipping the tick entirely if a prior
// run for this job id is still active (at-most-one-active-per-job-id).
func (s *Scheduler) tick(id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if job.RunningCount > 0 {
		s.mu.Unlock()
		logging.Debug("SyncJob", "skipping tick for %s: a run is already active", id)
		return
	}
	job.RunningCount++
	job.LastRun = time.Now()
	job.NextRun = job.LastRun.Add(time.Duration(job.IntervalSecs) * time.Second)
	plan := job.Plan
	source, err := s.registries.Get(job.SourceRegistry)
	if err != nil {
		job.RunningCount--
		s.mu.Unlock()
		logging.Error("SyncJob", err, "job %s: unknown source registry", id)
		return
	}
	target, err := s.registries.Get(job.TargetRegistry)
	if err != nil {
		job.RunningCount--
		s.mu.Unlock()
		logging.Error("SyncJob", err, "job %s: unknown target registry", id)
		return
	}
	s.mu.Unlock()

	s.tasks.Submit(task.TypeSync, func(ctx context.Context, report task.Reporter, token task.Token) (interface{}, error) {
		defer s.finishRun(id)
		return s.migration.Run(ctx, plan, source, target, report, token)
	})
}

func (s *Scheduler) finishRun(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && job.RunningCount > 0 {
		job.RunningCount--
	}
}
