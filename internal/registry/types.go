// Package registry implements the Confluent-compatible Schema Registry
// client (C1) and the Registry Manager (C2) that owns the set of
// configured registries for the lifetime of the process.
package registry

import "time"

// SchemaType identifies the schema language of a registered payload.
type SchemaType string

const (
	SchemaTypeAvro    SchemaType = "AVRO"
	SchemaTypeJSON    SchemaType = "JSON"
	SchemaTypeProtobuf SchemaType = "PROTOBUF"
)

// Mode is the registry or subject mode.
type Mode string

const (
	ModeReadWrite Mode = "READWRITE"
	ModeReadOnly  Mode = "READONLY"
	ModeImport    Mode = "IMPORT"
)

// Reference is a (subject, version) pointer used by a schema that imports
// another subject's schema.
type Reference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// SchemaVersion is one registered version of a subject.
type SchemaVersion struct {
	ID         int         `json:"id"`
	Version    int         `json:"version"`
	SchemaType SchemaType  `json:"schemaType"`
	Schema     string      `json:"schema"`
	References []Reference `json:"references,omitempty"`
}

// Config describes one configured Schema Registry, as parsed by
// internal/config and passed to NewClient.
type Config struct {
	Name     string
	BaseURL  string
	User     string
	Password string
	ViewOnly bool

	CACertPath         string
	ClientCertPath     string
	ClientKeyPath      string
	InsecureSkipVerify bool

	AllowLocalhost bool
}

// Info is the public, read-only view of a configured registry (spec.md
// §4.2 list()).
type Info struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	ViewOnly  bool   `json:"viewonly"`
	ModeLabel string `json:"mode_label,omitempty"`
}

// ConnectionResult is the outcome of a health probe against a registry.
type ConnectionResult struct {
	Name      string        `json:"name"`
	Healthy   bool          `json:"healthy"`
	LatencyMS int64         `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
	Latency   time.Duration `json:"-"`
}

// ConfigSetting is the get_config/set_config payload shape.
type ConfigSetting struct {
	CompatibilityLevel string `json:"compatibilityLevel,omitempty"`
	Compatibility       string `json:"compatibility,omitempty"`
}

// ModeSetting is the get_mode/set_mode payload shape.
type ModeSetting struct {
	Mode Mode `json:"mode"`
}
