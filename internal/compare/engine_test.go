package compare

import (
	"context"
	"fmt"
	"testing"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	name     string
	subjects map[string][]int
	schemas  map[string]map[int]string
	contexts []string
}

func newFakeClient(name string) *fakeClient {
	return &fakeClient{name: name, subjects: map[string][]int{}, schemas: map[string]map[int]string{}}
}

func (f *fakeClient) seed(subject string, version int, schema string) {
	f.subjects[subject] = append(f.subjects[subject], version)
	if f.schemas[subject] == nil {
		f.schemas[subject] = map[int]string{}
	}
	f.schemas[subject][version] = schema
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) ListContexts(ctx context.Context) ([]string, error) { return f.contexts, nil }

func (f *fakeClient) ListSubjects(ctx context.Context, context_ string) ([]string, error) {
	var out []string
	for s := range f.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeClient) GetSubjectVersions(ctx context.Context, subject, context_ string) ([]int, error) {
	v, ok := f.subjects[subject]
	if !ok {
		return nil, apierrors.New(apierrors.CodeSubjectNotFound, "no subject")
	}
	return v, nil
}

func (f *fakeClient) GetSchema(ctx context.Context, subject, version, context_ string) (*registry.SchemaVersion, error) {
	var vnum int
	fmt.Sscanf(version, "%d", &vnum)
	schema, ok := f.schemas[subject][vnum]
	if !ok {
		return nil, apierrors.New(apierrors.CodeSubjectNotFound, "no version")
	}
	return &registry.SchemaVersion{Version: vnum, SchemaType: registry.SchemaTypeAvro, Schema: schema}, nil
}

func TestCompareRegistries_ClassifiesRelations(t *testing.T) {
	source := newFakeClient("source")
	source.seed("only-source", 1, "a")
	source.seed("identical", 1, "same")
	source.seed("differs", 1, "old")

	target := newFakeClient("target")
	target.seed("identical", 1, "same")
	target.seed("differs", 1, "new")
	target.seed("only-target", 1, "b")

	eng := NewEngine()
	result := eng.CompareRegistries(t.Context(), source, target, "", "", 0)
	require.False(t, result.Partial)
	assert.Equal(t, 1, result.Counts[RelationOnlyInSource])
	assert.Equal(t, 1, result.Counts[RelationOnlyInTarget])
	assert.Equal(t, 1, result.Counts[RelationIdentical])
	assert.Equal(t, 1, result.Counts[RelationDiffersLatest])
}

func TestCompareRegistries_EmptySourceIsNotPartial(t *testing.T) {
	source := newFakeClient("source") // no subjects seeded: ListSubjects succeeds but empty, not a failure
	target := newFakeClient("target")

	eng := NewEngine()
	result := eng.CompareRegistries(t.Context(), source, target, "", "", 0)
	assert.False(t, result.Partial)
}

func TestDiffSchema_ReportsPerVersionClassification(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, `{"type":"record","name":"O","fields":[{"name":"id","type":"long"}]}`)
	source.seed("orders", 2, `{"type":"record","name":"O","fields":[{"name":"id","type":"long"},{"name":"total","type":"double"}]}`)

	target := newFakeClient("target")
	target.seed("orders", 1, `{"type":"record","name":"O","fields":[{"name":"id","type":"long"}]}`)

	eng := NewEngine()
	diff, err := eng.DiffSchema(t.Context(), source, target, "orders", "", "")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, diff.OnlyInSource)
	assert.Empty(t, diff.OnlyInTarget)
}

func TestGetRegistryStatistics_ComputesAverages(t *testing.T) {
	r := newFakeClient("reg")
	r.seed("a", 1, "x")
	r.seed("a", 2, "y")
	r.seed("b", 1, "z")

	eng := NewEngine()
	stats, err := eng.GetRegistryStatistics(t.Context(), r, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SubjectCount)
	assert.Equal(t, 3, stats.VersionCount)
	assert.InDelta(t, 1.5, stats.AverageVersionsPerSubject, 0.0001)
}

func TestSchemaDrift_DetectsMissingRegistry(t *testing.T) {
	a := newFakeClient("a")
	a.seed("orders", 1, "x")
	b := newFakeClient("b") // missing "orders"

	eng := NewEngine()
	drift := eng.SchemaDrift(t.Context(), []RegistryClient{a, b}, "orders", "")
	assert.True(t, drift.Diverged)
	assert.Contains(t, drift.MissingFrom, "b")
	assert.Contains(t, drift.PresentIn, "a")
}
