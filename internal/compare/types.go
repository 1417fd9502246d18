// Package compare implements cross-registry comparison and statistics
// (C6): registry and context diffing, schema-level diffing, missing/
// conflict views, per-registry statistics, and drift detection.
// CompareRegistries reports a per-registry read failure as a partial
// result rather than aborting the whole comparison; DiffSchema and
// GetRegistryStatistics return such a failure as an error.
package compare

import "github.com/control-plane/schema-registry-mcp/internal/schemakit"

// Relation classifies one subject's presence across two registries.
type Relation string

const (
	RelationOnlyInSource  Relation = "only-in-source"
	RelationOnlyInTarget  Relation = "only-in-target"
	RelationIdentical     Relation = "identical"
	RelationDiffersLatest Relation = "differs-latest"
	RelationDiffersHistory Relation = "differs-history"
)

const defaultSampleCap = 100

// RegistryComparison is the result of compare_registries: per-relation
// counts and a capped sample of subjects in each relation.
type RegistryComparison struct {
	Source  string           `json:"source"`
	Target  string           `json:"target"`
	Counts  map[Relation]int `json:"counts"`
	Samples map[Relation][]string `json:"samples"`
	Partial bool             `json:"partial"`
	Error   string           `json:"error,omitempty"`
}

// SchemaDiffResult is the output of diff_schema: per-version triples plus
// a text diff of the latest version.
type SchemaDiffResult struct {
	Subject      string               `json:"subject"`
	OnlyInSource []int                `json:"only_in_source_versions"`
	OnlyInTarget []int                `json:"only_in_target_versions"`
	Differs      []int                `json:"differs_versions"`
	LatestDiff   schemakit.SchemaDiff `json:"latest_diff"`
}

// RegistryStatistics is the output of get_registry_statistics.
type RegistryStatistics struct {
	Registry           string  `json:"registry"`
	SubjectCount        int     `json:"subject_count"`
	VersionCount        int     `json:"version_count"`
	ContextCount         int     `json:"context_count"`
	AverageVersionsPerSubject float64 `json:"average_versions_per_subject"`
}

// DriftEntry describes one subject's presence/version divergence across
// a set of registries.
type DriftEntry struct {
	Subject           string            `json:"subject"`
	PresentIn         []string          `json:"present_in"`
	MissingFrom       []string          `json:"missing_from"`
	LatestVersionByRegistry map[string]int `json:"latest_version_by_registry,omitempty"`
	Diverged          bool              `json:"diverged"`
}
