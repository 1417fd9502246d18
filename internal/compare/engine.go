package compare

import (
	"context"
	"fmt"
	"sort"

	"github.com/control-plane/schema-registry-mcp/internal/schemakit"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const defaultStatisticsConcurrency = 16

// Engine runs the comparison and statistics operations of C6.
type Engine struct{}

// NewEngine builds a comparison Engine. It is stateless; all inputs are
// passed per call.
func NewEngine() *Engine { return &Engine{} }

// CompareRegistries classifies every subject in sourceContext/targetContext
// across source and target, capped per spec.md §4.6 to sampleCap sample
// subjects per relation (0 uses the default of 100).
func (e *Engine) CompareRegistries(ctx context.Context, source, target RegistryClient, sourceContext, targetContext string, sampleCap int) RegistryComparison {
	if sampleCap <= 0 {
		sampleCap = defaultSampleCap
	}

	result := RegistryComparison{
		Source:  source.Name(),
		Target:  target.Name(),
		Counts:  make(map[Relation]int),
		Samples: make(map[Relation][]string),
	}

	sourceSubjects, err := source.ListSubjects(ctx, sourceContext)
	if err != nil {
		result.Partial = true
		result.Error = fmt.Sprintf("source: %v", err)
		return result
	}
	targetSubjects, err := target.ListSubjects(ctx, targetContext)
	if err != nil {
		result.Partial = true
		result.Error = fmt.Sprintf("target: %v", err)
		return result
	}

	targetSet := toSet(targetSubjects)
	sourceSet := toSet(sourceSubjects)

	for _, subject := range sourceSubjects {
		if !targetSet[subject] {
			e.classify(&result, RelationOnlyInSource, subject, sampleCap)
			continue
		}
		relation := e.classifySubject(ctx, source, target, subject, sourceContext, targetContext)
		e.classify(&result, relation, subject, sampleCap)
	}
	for _, subject := range targetSubjects {
		if !sourceSet[subject] {
			e.classify(&result, RelationOnlyInTarget, subject, sampleCap)
		}
	}

	return result
}

func (e *Engine) classify(result *RegistryComparison, relation Relation, subject string, sampleCap int) {
	result.Counts[relation]++
	if len(result.Samples[relation]) < sampleCap {
		result.Samples[relation] = append(result.Samples[relation], subject)
	}
}

func (e *Engine) classifySubject(ctx context.Context, source, target RegistryClient, subject, sourceContext, targetContext string) Relation {
	sourceVersions, err := source.GetSubjectVersions(ctx, subject, sourceContext)
	if err != nil {
		return RelationDiffersHistory
	}
	targetVersions, err := target.GetSubjectVersions(ctx, subject, targetContext)
	if err != nil {
		return RelationDiffersHistory
	}

	sourceLatest := maxInt(sourceVersions)
	targetLatest := maxInt(targetVersions)

	sourceSchema, err1 := source.GetSchema(ctx, subject, fmt.Sprintf("%d", sourceLatest), sourceContext)
	targetSchema, err2 := target.GetSchema(ctx, subject, fmt.Sprintf("%d", targetLatest), targetContext)
	if err1 != nil || err2 != nil || sourceSchema.Schema != targetSchema.Schema {
		if len(sourceVersions) != len(targetVersions) {
			return RelationDiffersHistory
		}
		return RelationDiffersLatest
	}
	if len(sourceVersions) != len(targetVersions) {
		return RelationDiffersHistory
	}
	return RelationIdentical
}

// DiffSchema compares every version of subject between source and target,
// returning per-version classification plus a text/structural diff of the
// latest versions.
func (e *Engine) DiffSchema(ctx context.Context, source, target RegistryClient, subject, sourceContext, targetContext string) (*SchemaDiffResult, error) {
	sourceVersions, err := source.GetSubjectVersions(ctx, subject, sourceContext)
	if err != nil {
		return nil, err
	}
	targetVersions, err := target.GetSubjectVersions(ctx, subject, targetContext)
	if err != nil {
		return nil, err
	}

	sourceSet := toIntSet(sourceVersions)
	targetSet := toIntSet(targetVersions)

	result := &SchemaDiffResult{Subject: subject}
	for v := range sourceSet {
		if !targetSet[v] {
			result.OnlyInSource = append(result.OnlyInSource, v)
		}
	}
	for v := range targetSet {
		if !sourceSet[v] {
			result.OnlyInTarget = append(result.OnlyInTarget, v)
		}
	}
	sort.Ints(result.OnlyInSource)
	sort.Ints(result.OnlyInTarget)

	for v := range sourceSet {
		if !targetSet[v] {
			continue
		}
		sSchema, err := source.GetSchema(ctx, subject, fmt.Sprintf("%d", v), sourceContext)
		if err != nil {
			continue
		}
		tSchema, err := target.GetSchema(ctx, subject, fmt.Sprintf("%d", v), targetContext)
		if err != nil {
			continue
		}
		if sSchema.Schema != tSchema.Schema {
			result.Differs = append(result.Differs, v)
		}
	}
	sort.Ints(result.Differs)

	sourceLatest := maxInt(sourceVersions)
	targetLatest := maxInt(targetVersions)
	sSchema, err1 := source.GetSchema(ctx, subject, fmt.Sprintf("%d", sourceLatest), sourceContext)
	tSchema, err2 := target.GetSchema(ctx, subject, fmt.Sprintf("%d", targetLatest), targetContext)
	if err1 == nil && err2 == nil {
		result.LatestDiff = schemakit.Diff(string(sSchema.SchemaType), sSchema.Schema, tSchema.Schema)
	}

	return result, nil
}

// GetRegistryStatistics computes subject/version/context counts for r by
// fanning out subject-version reads with bounded concurrency.
func (e *Engine) GetRegistryStatistics(ctx context.Context, r RegistryClient, concurrency int) (*RegistryStatistics, error) {
	if concurrency <= 0 {
		concurrency = defaultStatisticsConcurrency
	}

	subjects, err := r.ListSubjects(ctx, "")
	if err != nil {
		return nil, err
	}
	contexts, err := r.ListContexts(ctx)
	if err != nil {
		contexts = nil // context listing is best-effort for statistics
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	versionCounts := make([]int, len(subjects))
	for i, subject := range subjects {
		i, subject := i, subject
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)
			versions, err := r.GetSubjectVersions(gctx, subject, "")
			if err != nil {
				return nil
			}
			versionCounts[i] = len(versions)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, c := range versionCounts {
		total += c
	}
	avg := 0.0
	if len(subjects) > 0 {
		avg = float64(total) / float64(len(subjects))
	}

	return &RegistryStatistics{
		Registry:                  r.Name(),
		SubjectCount:              len(subjects),
		VersionCount:              total,
		ContextCount:              len(contexts),
		AverageVersionsPerSubject: avg,
	}, nil
}

// SchemaDrift detects subjects missing from a subset of registries, or
// with divergent latest versions, across registries.
func (e *Engine) SchemaDrift(ctx context.Context, registries []RegistryClient, subject, context_ string) DriftEntry {
	entry := DriftEntry{Subject: subject, LatestVersionByRegistry: make(map[string]int)}

	for _, r := range registries {
		versions, err := r.GetSubjectVersions(ctx, subject, context_)
		if err != nil || len(versions) == 0 {
			entry.MissingFrom = append(entry.MissingFrom, r.Name())
			continue
		}
		entry.PresentIn = append(entry.PresentIn, r.Name())
		entry.LatestVersionByRegistry[r.Name()] = maxInt(versions)
	}

	if len(entry.MissingFrom) > 0 {
		entry.Diverged = true
	}
	first := -1
	for _, v := range entry.LatestVersionByRegistry {
		if first == -1 {
			first = v
			continue
		}
		if v != first {
			entry.Diverged = true
		}
	}
	return entry
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

func toIntSet(items []int) map[int]bool {
	set := make(map[int]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

func maxInt(items []int) int {
	max := 0
	for _, i := range items {
		if i > max {
			max = i
		}
	}
	return max
}
