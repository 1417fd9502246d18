// Package config parses the process environment into an immutable
// RegistrySet and ServerConfig at startup. There is no YAML or remote
// config source: per spec.md §6 every registry is described by numbered
// environment slots.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

// RegistryConfig is one parsed SCHEMA_REGISTRY_*_N slot (or the legacy
// single-registry variant).
type RegistryConfig struct {
	Name     string
	URL      string
	User     string
	Password string
	ViewOnly bool

	CACertPath         string
	ClientCertPath     string
	ClientKeyPath      string
	InsecureSkipVerify bool
}

// ServerConfig holds the process-wide MCP server settings.
type ServerConfig struct {
	Transport      string // "stdio", "sse" or "streamable-http"
	Host           string
	Port           int
	Path           string
	SlimMode       bool
	EnableMigration bool
	EnableAuth     bool
	LogLevel       string
	AllowLocalhost bool

	AuthIssuerURL   string
	AuthValidScopes string
}

// Config is the fully parsed process configuration.
type Config struct {
	Registries []RegistryConfig
	Server     ServerConfig
}

// Load parses the environment via os.Getenv into a Config, or returns a
// *apierrors.CodedError (CONFIG_INVALID / REGISTRY_DUPLICATE_NAME /
// REGISTRY_DUPLICATE_URL) describing the first problem found.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// load is the testable core of Load, parameterized over the environment
// lookup function.
func load(getenv func(string) string) (*Config, error) {
	registries, err := parseRegistries(getenv)
	if err != nil {
		return nil, err
	}
	if err := validateRegistries(registries); err != nil {
		return nil, err
	}

	server := ServerConfig{
		Transport:       firstNonEmpty(getenv("MCP_TRANSPORT"), "stdio"),
		Host:            firstNonEmpty(getenv("MCP_HOST"), "0.0.0.0"),
		Port:            parseIntDefault(getenv("MCP_PORT"), 8080),
		Path:            firstNonEmpty(getenv("MCP_PATH"), "/mcp"),
		SlimMode:        parseBool(getenv("SLIM_MODE")),
		EnableMigration: parseBoolDefault(getenv("ENABLE_MIGRATION"), true),
		EnableAuth:      parseBool(getenv("ENABLE_AUTH")),
		LogLevel:        firstNonEmpty(getenv("LOG_LEVEL"), "info"),
		AllowLocalhost:  parseBool(getenv("ALLOW_LOCALHOST")),
		AuthIssuerURL:   getenv("AUTH_ISSUER_URL"),
		AuthValidScopes: getenv("AUTH_VALID_SCOPES"),
	}

	return &Config{Registries: registries, Server: server}, nil
}

func parseRegistries(getenv func(string) string) ([]RegistryConfig, error) {
	var out []RegistryConfig

	if legacyURL := getenv("SCHEMA_REGISTRY_URL"); legacyURL != "" {
		vo, err := resolveViewOnly(getenv("VIEWONLY"), getenv("READONLY"), "default")
		if err != nil {
			return nil, err
		}
		out = append(out, RegistryConfig{
			Name:     "default",
			URL:      legacyURL,
			User:     getenv("SCHEMA_REGISTRY_USER"),
			Password: getenv("SCHEMA_REGISTRY_PASSWORD"),
			ViewOnly: vo,
		})
	}

	for n := 1; n <= 8; n++ {
		suffix := fmt.Sprintf("_%d", n)
		url := getenv("SCHEMA_REGISTRY_URL" + suffix)
		if url == "" {
			continue
		}
		name := getenv("SCHEMA_REGISTRY_NAME" + suffix)
		if name == "" {
			return nil, apierrors.New(apierrors.CodeConfigInvalid,
				"SCHEMA_REGISTRY_NAME_%d is required when SCHEMA_REGISTRY_URL_%d is set", n, n)
		}
		vo, err := resolveViewOnly(getenv("VIEWONLY"+suffix), getenv("READONLY"+suffix), name)
		if err != nil {
			return nil, err
		}
		out = append(out, RegistryConfig{
			Name:               name,
			URL:                url,
			User:               getenv("SCHEMA_REGISTRY_USER" + suffix),
			Password:           getenv("SCHEMA_REGISTRY_PASSWORD" + suffix),
			ViewOnly:           vo,
			CACertPath:         getenv("SCHEMA_REGISTRY_CA_CERT" + suffix),
			ClientCertPath:     getenv("SCHEMA_REGISTRY_CLIENT_CERT" + suffix),
			ClientKeyPath:      getenv("SCHEMA_REGISTRY_CLIENT_KEY" + suffix),
			InsecureSkipVerify: parseBool(getenv("SCHEMA_REGISTRY_INSECURE_SKIP_VERIFY" + suffix)),
		})
	}

	return out, nil
}

// resolveViewOnly accepts both VIEWONLY and READONLY as synonyms. When both
// are set to conflicting values for the same slot, that is a configuration
// error: the source is ambiguous about precedence, so we reject rather than
// silently pick one (spec.md Design Notes).
func resolveViewOnly(viewonly, readonly, slotName string) (bool, error) {
	if viewonly == "" {
		return parseBool(readonly), nil
	}
	if readonly == "" {
		return parseBool(viewonly), nil
	}
	vo, ro := parseBool(viewonly), parseBool(readonly)
	if vo != ro {
		return false, apierrors.New(apierrors.CodeConfigInvalid,
			"registry %q sets VIEWONLY and READONLY to conflicting values", slotName)
	}
	return vo, nil
}

func validateRegistries(registries []RegistryConfig) error {
	seenName := make(map[string]bool, len(registries))
	seenURL := make(map[string]bool, len(registries))
	for _, r := range registries {
		if seenName[r.Name] {
			return apierrors.New(apierrors.CodeRegistryDuplicateName, "duplicate registry name %q", r.Name)
		}
		seenName[r.Name] = true

		normalizedURL := strings.TrimRight(r.URL, "/")
		if seenURL[normalizedURL] {
			return apierrors.New(apierrors.CodeRegistryDuplicateURL, "duplicate registry url %q", r.URL)
		}
		seenURL[normalizedURL] = true
	}
	return nil
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func parseBoolDefault(s string, def bool) bool {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return parseBool(s)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
