// Package batch implements the bulk cleanup operations (C7):
// clear_context_batch, clear_multiple_contexts_batch, and their
// cross-registry variant. dry_run defaults to true and is a hard
// invariant — no batch tool deletes unless the caller explicitly passes
// dry_run=false.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const defaultDeleteConcurrency = 10

// RegistryClient is the subset of *registry.Client batch delete needs.
type RegistryClient interface {
	Name() string
	ViewOnly() bool
	ListSubjects(ctx context.Context, context_ string) ([]string, error)
	DeleteSubject(ctx context.Context, subject, context_ string, permanent bool) ([]int, error)
}

// SubjectOutcome is one subject's delete attempt result.
type SubjectOutcome struct {
	Subject string `json:"subject"`
	Error   string `json:"error,omitempty"`
}

// ContextResult is the aggregate outcome of clearing one context on one
// registry.
type ContextResult struct {
	Registry   string           `json:"registry"`
	Context    string           `json:"context"`
	DryRun     bool             `json:"dry_run"`
	Subjects   []string         `json:"subjects"`
	Attempted  int              `json:"attempted"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Errors     []SubjectOutcome `json:"errors,omitempty"`
}

// ClearContext enumerates (dry_run=true) or deletes (dry_run=false) every
// subject in context on r, with bounded delete concurrency.
func ClearContext(ctx context.Context, r RegistryClient, context_ string, dryRun bool) (*ContextResult, error) {
	if !dryRun && r.ViewOnly() {
		return nil, apierrors.New(apierrors.CodeRegistryViewonly, "registry %q is view-only", r.Name()).
			WithDetail("registry", r.Name())
	}

	subjects, err := r.ListSubjects(ctx, context_)
	if err != nil {
		return nil, err
	}

	result := &ContextResult{
		Registry:  r.Name(),
		Context:   context_,
		DryRun:    dryRun,
		Subjects:  subjects,
		Attempted: len(subjects),
	}

	if dryRun {
		result.Succeeded = len(subjects)
		return result, nil
	}

	sem := semaphore.NewWeighted(defaultDeleteConcurrency)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, subject := range subjects {
		subject := subject
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			_, err := r.DeleteSubject(gctx, subject, context_, false)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, SubjectOutcome{Subject: subject, Error: err.Error()})
				return nil
			}
			result.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

// ClearMultipleContexts clears every context in contexts on r.
func ClearMultipleContexts(ctx context.Context, r RegistryClient, contexts []string, dryRun bool) ([]*ContextResult, error) {
	out := make([]*ContextResult, 0, len(contexts))
	for _, c := range contexts {
		result, err := ClearContext(ctx, r, c, dryRun)
		if err != nil {
			return nil, fmt.Errorf("context %q: %w", c, err)
		}
		out = append(out, result)
	}
	return out, nil
}

// RegistryRollup is one registry's result within a cross-registry batch.
type RegistryRollup struct {
	Registry string         `json:"registry"`
	Result   *ContextResult `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ClearContextAcrossRegistries targets context on every registry
// concurrently. A view-only registry in the target set blocks execution
// for that registry only (reported as an error entry) without aborting
// the others.
func ClearContextAcrossRegistries(ctx context.Context, registries []RegistryClient, context_ string, dryRun bool) []RegistryRollup {
	rollups := make([]RegistryRollup, len(registries))
	var wg sync.WaitGroup

	for i, r := range registries {
		i, r := i, r
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := ClearContext(ctx, r, context_, dryRun)
			if err != nil {
				rollups[i] = RegistryRollup{Registry: r.Name(), Error: err.Error()}
				return
			}
			rollups[i] = RegistryRollup{Registry: r.Name(), Result: result}
		}()
	}
	wg.Wait()

	return rollups
}
