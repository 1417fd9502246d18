package compare

import "context"

// FindMissingSchemas returns the subjects present in source but absent
// from target — a derived view over CompareRegistries (spec.md §4.6).
func (e *Engine) FindMissingSchemas(ctx context.Context, source, target RegistryClient, sourceContext, targetContext string, sampleCap int) []string {
	cmp := e.CompareRegistries(ctx, source, target, sourceContext, targetContext, sampleCap)
	return cmp.Samples[RelationOnlyInSource]
}

// FindSchemaConflicts returns the subjects whose latest schema or version
// history differs between source and target.
func (e *Engine) FindSchemaConflicts(ctx context.Context, source, target RegistryClient, sourceContext, targetContext string, sampleCap int) []string {
	cmp := e.CompareRegistries(ctx, source, target, sourceContext, targetContext, sampleCap)
	out := append([]string(nil), cmp.Samples[RelationDiffersLatest]...)
	out = append(out, cmp.Samples[RelationDiffersHistory]...)
	return out
}
