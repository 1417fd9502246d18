package migration

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
	viewOnly bool
	subjects map[string][]int                    // subject -> versions
	schemas  map[string]map[int]registry.SchemaVersion // subject -> version -> schema
	mode     registry.Mode
	nextID   int
}

func newFakeClient(name string) *fakeClient {
	return &fakeClient{
		name:     name,
		subjects: make(map[string][]int),
		schemas:  make(map[string]map[int]registry.SchemaVersion),
		mode:     registry.ModeReadWrite,
		nextID:   100,
	}
}

func (f *fakeClient) seed(subject string, version, id int, schema string) {
	f.subjects[subject] = append(f.subjects[subject], version)
	if f.schemas[subject] == nil {
		f.schemas[subject] = make(map[int]registry.SchemaVersion)
	}
	f.schemas[subject][version] = registry.SchemaVersion{ID: id, Version: version, SchemaType: registry.SchemaTypeAvro, Schema: schema}
}

func (f *fakeClient) Name() string   { return f.name }
func (f *fakeClient) ViewOnly() bool { return f.viewOnly }

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
		return nil, apierrors.New(apierrors.CodeSubjectNotFound, "no subject %q", subject)
	}
	return v, nil
}

func (f *fakeClient) GetSchema(ctx context.Context, subject, version, context_ string) (*registry.SchemaVersion, error) {
	versions, ok := f.schemas[subject]
	if !ok {
		return nil, apierrors.New(apierrors.CodeSubjectNotFound, "no subject %q", subject)
	}
	var vnum int
	fmt.Sscanf(version, "%d", &vnum)
	sv, ok := versions[vnum]
	if !ok {
		return nil, apierrors.New(apierrors.CodeSubjectNotFound, "no version %s for %q", version, subject)
	}
	return &sv, nil
}

func (f *fakeClient) RegisterSchema(ctx context.Context, subject, payload, schemaType, context_ string, id *int, mode registry.Mode) (*registry.RegisterResponse, error) {
	if f.viewOnly {
		return nil, apierrors.New(apierrors.CodeRegistryViewonly, "view only")
	}
	newVersion := len(f.subjects[subject]) + 1
	assignedID := f.nextID
	f.nextID++
	if id != nil {
		if mode != registry.ModeImport {
			return nil, apierrors.New(apierrors.CodeModeConflict, "not in import mode")
		}
		assignedID = *id
	}
	f.seed(subject, newVersion, assignedID, payload)
	return &registry.RegisterResponse{ID: assignedID, Version: newVersion}, nil
}

func (f *fakeClient) GetMode(ctx context.Context, subject, context_ string) (registry.Mode, error) {
	return f.mode, nil
}

func (f *fakeClient) SetMode(ctx context.Context, subject, context_ string, mode registry.Mode) error {
	f.mode = mode
	return nil
}

type fakeLocker struct{ held map[string]bool }

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]bool{}} }

func (l *fakeLocker) AcquireImportLock(name string) (func(), error) {
	if l.held[name] {
		return nil, apierrors.New(apierrors.CodeRegistryBusy, "busy")
	}
	l.held[name] = true
	return func() { l.held[name] = false }, nil
}

func TestEngine_MigratesNewSubject(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, 1, `{"type":"string"}`)
	target := newFakeClient("target")

	eng := NewEngine(newFakeLocker())
	result, err := eng.Run(t.Context(), Plan{Versions: SelectorAll, ContinueOnSubjectFailure: true}, source, target, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Subjects, 1)
	require.Len(t, result.Subjects[0].Entries, 1)
	assert.Equal(t, StatusMigrated, result.Subjects[0].Entries[0].Status)
}

func TestEngine_IdempotentRerunSkipsEveryVersion(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, 1, `{"type":"string"}`)
	target := newFakeClient("target")

	eng := NewEngine(newFakeLocker())
	plan := Plan{Versions: SelectorAll, ContinueOnSubjectFailure: true}
	_, err := eng.Run(t.Context(), plan, source, target, nil, nil)
	require.NoError(t, err)

	result, err := eng.Run(t.Context(), plan, source, target, nil, nil)
	require.NoError(t, err)
	for _, sr := range result.Subjects {
		for _, e := range sr.Entries {
			assert.Equal(t, StatusSkippedIdempotent, e.Status)
		}
	}
}

func TestEngine_DryRunPerformsNoWrites(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, 1, `{"type":"string"}`)
	target := newFakeClient("target")

	eng := NewEngine(newFakeLocker())
	result, err := eng.Run(t.Context(), Plan{Versions: SelectorAll, DryRun: true, ContinueOnSubjectFailure: true}, source, target, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, result.Subjects[0].Entries[0].Status)
	_, ok := target.subjects["orders"]
	assert.False(t, ok, "dry run must not write to the target")
}

func TestEngine_ModeRestoredAfterPreserveIDsMigration(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, 7, `{"type":"string"}`)
	target := newFakeClient("target")
	target.mode = registry.ModeReadWrite

	eng := NewEngine(newFakeLocker())
	result, err := eng.Run(t.Context(), Plan{Versions: SelectorAll, PreserveIDs: true, ContinueOnSubjectFailure: true}, source, target, nil, nil)
	require.NoError(t, err)
	assert.True(t, result.ModeRestored)
	assert.Equal(t, registry.ModeReadWrite, target.mode)
	assert.Equal(t, 7, result.Subjects[0].Entries[0].TargetID)
}

func TestEngine_ExplicitVersionsMigratesOnlyRequestedVersions(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, 1, `{"type":"string"}`)
	source.seed("orders", 2, 2, `{"type":"int"}`)
	source.seed("orders", 3, 3, `{"type":"long"}`)
	target := newFakeClient("target")

	eng := NewEngine(newFakeLocker())
	plan := Plan{Versions: VersionSelector{Mode: VersionModeExplicit, Explicit: []int{1}}, ContinueOnSubjectFailure: true}
	result, err := eng.Run(t.Context(), plan, source, target, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Subjects, 1)
	require.Len(t, result.Subjects[0].Entries, 1)
	assert.Equal(t, 1, result.Subjects[0].Entries[0].Version)
	assert.Equal(t, StatusMigrated, result.Subjects[0].Entries[0].Status)
}

func TestEngine_ExplicitVersionsErrorsOnMissingVersion(t *testing.T) {
	source := newFakeClient("source")
	source.seed("orders", 1, 1, `{"type":"string"}`)
	target := newFakeClient("target")

	eng := NewEngine(newFakeLocker())
	plan := Plan{Versions: VersionSelector{Mode: VersionModeExplicit, Explicit: []int{9}}, ContinueOnSubjectFailure: true}
	result, err := eng.Run(t.Context(), plan, source, target, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Subjects, 1)
	assert.True(t, result.Subjects[0].Failed)
	assert.Contains(t, result.Subjects[0].Error, "version 9")
}

func TestEngine_ViewOnlyTargetBlocksNonDryRun(t *testing.T) {
	source := newFakeClient("source")
	target := newFakeClient("target")
	target.viewOnly = true

	eng := NewEngine(newFakeLocker())
	_, err := eng.Run(t.Context(), Plan{Versions: SelectorAll}, source, target, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeRegistryViewonly, apierrors.AsCoded(err).Code)
}
