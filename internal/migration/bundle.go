package migration

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// BundleRequest describes the inputs to a context-bundle emission (spec.md
// §4.5 mode B): a bulk context migration whose execution is delegated to
// an externally-run migrator instead of this process.
type BundleRequest struct {
	SourceURL      string
	SourceUser     string
	SourcePassword string
	SourceContext  string

	DestURL      string
	DestUser     string
	DestPassword string
	DestContext  string

	PreserveIDs bool
	DryRun      bool

	// MigratorImage is the external migrator container image reference;
	// defaults to a documented placeholder when empty.
	MigratorImage string
}

// Bundle is the three-file artifact returned to the caller. The engine
// never spawns a subprocess itself; the client writes and runs these
// externally.
type Bundle struct {
	Env               string `json:"env"`
	DockerCompose     string `json:"docker_compose_yml"`
	MigrateScript     string `json:"migrate_context_sh"`
}

const defaultMigratorImage = "ghcr.io/control-plane/schema-registry-migrator:latest"

const envTemplate = `SOURCE_SCHEMA_REGISTRY_URL={{ .SourceURL }}
{{- if .SourceUser }}
SOURCE_SCHEMA_REGISTRY_USER={{ .SourceUser }}
SOURCE_SCHEMA_REGISTRY_PASSWORD={{ .SourcePassword }}
{{- end }}
SOURCE_CONTEXT={{ .SourceContext | default "." }}
DEST_SCHEMA_REGISTRY_URL={{ .DestURL }}
{{- if .DestUser }}
DEST_SCHEMA_REGISTRY_USER={{ .DestUser }}
DEST_SCHEMA_REGISTRY_PASSWORD={{ .DestPassword }}
{{- end }}
DEST_CONTEXT={{ .DestContext | default "." }}
PRESERVE_IDS={{ .PreserveIDs }}
DRY_RUN={{ .DryRun }}
`

const scriptTemplate = `#!/bin/sh
set -e
docker compose --env-file .env -f docker-compose.yml up --abort-on-container-exit --exit-code-from migrator
`

// Render produces the three bundle files from req.
func Render(req BundleRequest) (*Bundle, error) {
	env, err := renderTemplate("env", envTemplate, req)
	if err != nil {
		return nil, err
	}

	compose, err := renderCompose(req)
	if err != nil {
		return nil, err
	}

	script, err := renderTemplate("script", scriptTemplate, req)
	if err != nil {
		return nil, err
	}

	return &Bundle{Env: env, DockerCompose: compose, MigrateScript: script}, nil
}

func renderTemplate(name, text string, req BundleRequest) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", name, err)
	}
	return buf.String(), nil
}

type composeService struct {
	Image       string            `yaml:"image"`
	EnvFile     []string          `yaml:"env_file"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

type composeFile struct {
	Version  string                     `yaml:"version"`
	Services map[string]composeService  `yaml:"services"`
}

func renderCompose(req BundleRequest) (string, error) {
	image := req.MigratorImage
	if image == "" {
		image = defaultMigratorImage
	}

	compose := composeFile{
		Version: "3.8",
		Services: map[string]composeService{
			"migrator": {
				Image:   image,
				EnvFile: []string{".env"},
			},
		},
	}

	out, err := yaml.Marshal(compose)
	if err != nil {
		return "", fmt.Errorf("marshaling docker-compose.yml: %w", err)
	}
	return string(out), nil
}
