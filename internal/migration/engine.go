package migration

import (
	"context"
	"fmt"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/task"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
)

// ImportLocker acquires the registry-global exclusive IMPORT-mode window,
// satisfied by *task.Engine in production and a fake in tests.
type ImportLocker interface {
	AcquireImportLock(registryName string) (release func(), err error)
}

// Engine runs migration plans against a source and target RegistryClient.
type Engine struct {
	locks ImportLocker
}

// NewEngine builds a migration Engine backed by locks for the IMPORT-mode
// exclusive window.
func NewEngine(locks ImportLocker) *Engine {
	return &Engine{locks: locks}
}

// Run executes plan (or, when plan.DryRun, only plans it) against source
// and target. report/token drive task-engine progress and cancellation;
// both may be nil when called outside the task engine (e.g. from a
// synchronous tool handler for a small plan).
func (e *Engine) Run(ctx context.Context, plan Plan, source, target RegistryClient, report task.Reporter, token task.Token) (*Result, error) {
	if !plan.DryRun && target.ViewOnly() {
		return nil, apierrors.New(apierrors.CodeRegistryViewonly, "target registry %q is view-only", target.Name()).
			WithDetail("registry", target.Name())
	}

	subjects := plan.Subjects
	if len(subjects) == 0 {
		all, err := source.ListSubjects(ctx, plan.Source.Context)
		if err != nil {
			return nil, err
		}
		subjects = all
	}

	result := &Result{Plan: plan, DryRun: plan.DryRun}

	var release func()
	if plan.PreserveIDs && !plan.DryRun {
		var err error
		release, err = e.locks.AcquireImportLock(target.Name())
		if err != nil {
			return nil, err
		}
		defer release()

		preMode, err := target.GetMode(ctx, "", plan.Target.Context)
		if err != nil {
			return nil, err
		}
		result.PreImportMode = string(preMode)

		defer func() {
			if restoreErr := target.SetMode(ctx, "", plan.Target.Context, preMode); restoreErr != nil {
				logging.Error("Migration", restoreErr, "failed to restore registry %q mode to %s after migration", target.Name(), preMode)
			} else {
				result.ModeRestored = true
			}
		}()

		if err := target.SetMode(ctx, "", plan.Target.Context, registry.ModeImport); err != nil {
			return nil, err
		}
	} else {
		result.ModeRestored = true
	}

	total := len(subjects)
	for i, subject := range subjects {
		if token != nil && token.Cancelled() {
			break
		}
		if report != nil {
			percent := 0
			if total > 0 {
				percent = (i * 100) / total
			}
			report.Report(percent, fmt.Sprintf("migrating subject %s (%d/%d)", subject, i+1, total))
		}

		sr := e.runSubject(ctx, plan, subject, source, target)
		result.Subjects = append(result.Subjects, sr)
		if sr.Failed && !plan.ContinueOnSubjectFailure {
			break
		}
	}

	if report != nil {
		report.Report(100, "migration complete")
	}
	return result, nil
}

func (e *Engine) runSubject(ctx context.Context, plan Plan, subject string, source, target RegistryClient) SubjectResult {
	sr := SubjectResult{Subject: subject}

	versions, err := e.resolveVersions(ctx, plan, subject, source)
	if err != nil {
		sr.Failed = true
		sr.Error = err.Error()
		return sr
	}

	for _, version := range versions {
		entry, err := e.migrateVersion(ctx, plan, subject, version, source, target)
		if err != nil && entry.Status == StatusConflict {
			// fail_subject: a conflicting version ends this subject's migration.
			sr.Entries = append(sr.Entries, entry)
			sr.Failed = true
			sr.Error = err.Error()
			return sr
		}
		if err != nil {
			entry = VersionEntry{Subject: subject, Version: version, Status: StatusFailed, Detail: err.Error()}
			sr.Entries = append(sr.Entries, entry)
			if !plan.ContinueOnSubjectFailure {
				sr.Failed = true
				sr.Error = err.Error()
				return sr
			}
			continue
		}
		sr.Entries = append(sr.Entries, entry)
	}
	return sr
}

func (e *Engine) resolveVersions(ctx context.Context, plan Plan, subject string, source RegistryClient) ([]int, error) {
	all, err := source.GetSubjectVersions(ctx, subject, plan.Source.Context)
	if err != nil {
		return nil, err
	}

	switch plan.Versions.Mode {
	case VersionModeExplicit:
		present := make(map[int]bool, len(all))
		for _, v := range all {
			present[v] = true
		}
		explicit := append([]int(nil), plan.Versions.Explicit...)
		sortInts(explicit)
		for _, v := range explicit {
			if !present[v] {
				return nil, apierrors.New(apierrors.CodeSubjectNotFound, "subject %q has no version %d", subject, v).
					WithDetail("subject", subject)
			}
		}
		return explicit, nil
	case VersionModeAll:
		// ascending version order, per subject, no concurrency (spec.md §5
		// "within a subject migration, versions are applied in strictly
		// ascending order").
		sorted := append([]int(nil), all...)
		sortInts(sorted)
		return sorted, nil
	default: // VersionModeLatest, and the zero value
		if len(all) == 0 {
			return nil, nil
		}
		max := all[0]
		for _, v := range all {
			if v > max {
				max = v
			}
		}
		return []int{max}, nil
	}
}

// sortInts is a small ascending insertion sort; avoids pulling in sort
// for one call site.
func sortInts(vals []int) {
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
}

func (e *Engine) migrateVersion(ctx context.Context, plan Plan, subject string, version int, source, target RegistryClient) (VersionEntry, error) {
	src, err := source.GetSchema(ctx, subject, fmt.Sprintf("%d", version), plan.Source.Context)
	if err != nil {
		return VersionEntry{}, err
	}

	entry := VersionEntry{Subject: subject, Version: version, SourceID: src.ID}

	existingVersions, err := target.GetSubjectVersions(ctx, subject, plan.Target.Context)
	if err == nil {
		for _, ev := range existingVersions {
			if ev != version {
				continue
			}
			existing, err := target.GetSchema(ctx, subject, fmt.Sprintf("%d", version), plan.Target.Context)
			if err != nil {
				return VersionEntry{}, err
			}
			if existing.Schema == src.Schema {
				entry.Status = StatusSkippedIdempotent
				entry.TargetID = existing.ID
				return entry, nil
			}
			if plan.OnConflict == "overwrite" {
				return VersionEntry{}, apierrors.New(apierrors.CodeInvalidArgument,
					"on_conflict=overwrite is reserved and not yet supported")
			}
			entry.Status = StatusConflict
			entry.Detail = fmt.Sprintf("target subject %q version %d already exists with a different schema", subject, version)
			return entry, apierrors.New(apierrors.CodeIDCollision, "%s", entry.Detail).WithDetail("subject", subject)
		}
	}

	if plan.DryRun {
		entry.Status = StatusPlanned
		return entry, nil
	}

	var idPtr *int
	mode := registry.ModeReadWrite
	if plan.PreserveIDs {
		idPtr = &src.ID
		mode = registry.ModeImport
	}

	resp, err := target.RegisterSchema(ctx, subject, src.Schema, string(src.SchemaType), plan.Target.Context, idPtr, mode)
	if err != nil {
		return VersionEntry{}, err
	}
	entry.Status = StatusMigrated
	entry.TargetID = resp.ID
	return entry, nil
}
