// Package app bootstraps the control plane: it loads configuration, wires
// every internal component together (registry manager, task engine, authz
// guard, migration/compare/batch engines, elicitation store, telemetry,
// sync scheduler, MCP surface) and runs the selected transport until the
// process is asked to shut down.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/control-plane/schema-registry-mcp/internal/authz"
	"github.com/control-plane/schema-registry-mcp/internal/compare"
	"github.com/control-plane/schema-registry-mcp/internal/config"
	"github.com/control-plane/schema-registry-mcp/internal/elicit"
	"github.com/control-plane/schema-registry-mcp/internal/mcpsurface"
	"github.com/control-plane/schema-registry-mcp/internal/migration"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/syncjob"
	"github.com/control-plane/schema-registry-mcp/internal/task"
	"github.com/control-plane/schema-registry-mcp/internal/telemetry"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
)

// Application owns every long-lived component and the MCP server wrapping
// them. It is built once per process by NewApplication.
type Application struct {
	Config *config.Config

	Registries *registry.Manager
	Tasks      *task.Engine
	Guard      *authz.Guard
	Migration  *migration.Engine
	Compare    *compare.Engine
	Elicit     *elicit.Store
	Patterns   *elicit.PatternStore
	Metrics    *telemetry.Metrics
	Sync       *syncjob.Scheduler

	server *mcpsurface.Server
}

// NewApplication runs the full bootstrap sequence: logging, configuration,
// the registry manager, every domain engine, and finally the MCP surface.
// Any failure here is a startup failure (spec.md §6 exit code 2).
func NewApplication(logOutput io.Writer) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.Init(logging.ParseLevel(cfg.Server.LogLevel), outputOrDefault(logOutput))
	logging.Info("Bootstrap", "loaded configuration: %d registries, transport=%s", len(cfg.Registries), cfg.Server.Transport)

	registryConfigs := make([]registry.Config, 0, len(cfg.Registries))
	for _, rc := range cfg.Registries {
		registryConfigs = append(registryConfigs, registry.Config{
			Name:               rc.Name,
			BaseURL:            rc.URL,
			User:               rc.User,
			Password:           rc.Password,
			ViewOnly:           rc.ViewOnly,
			CACertPath:         rc.CACertPath,
			ClientCertPath:     rc.ClientCertPath,
			ClientKeyPath:      rc.ClientKeyPath,
			InsecureSkipVerify: rc.InsecureSkipVerify,
			AllowLocalhost:     cfg.Server.AllowLocalhost,
		})
	}

	manager, err := registry.NewManager(registryConfigs)
	if err != nil {
		logging.Error("Bootstrap", err, "failed to build registry manager")
		return nil, err
	}

	tasks := task.NewEngine()
	guard := authz.NewGuard(cfg.Server.EnableAuth)
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	app := &Application{
		Config:     cfg,
		Registries: manager,
		Tasks:      tasks,
		Guard:      guard,
		Migration:  migration.NewEngine(tasks),
		Compare:    compare.NewEngine(),
		Elicit:     elicit.NewStore(0),
		Patterns:   elicit.NewPatternStore(false),
		Metrics:    metrics,
	}
	app.Sync = syncjob.NewScheduler(tasks, app.Migration, manager)

	deps := &mcpsurface.Deps{
		Registries:      manager,
		Tasks:           tasks,
		Guard:           guard,
		Migration:       app.Migration,
		Compare:         app.Compare,
		Elicit:          app.Elicit,
		Patterns:        app.Patterns,
		Metrics:         metrics,
		SlimMode:        cfg.Server.SlimMode,
		EnableMigration: cfg.Server.EnableMigration,
	}

	app.server = mcpsurface.New(deps, mcpsurface.ServerConfig{
		Transport: mcpsurface.Transport(cfg.Server.Transport),
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		SlimMode:  cfg.Server.SlimMode,
	})

	return app, nil
}

func outputOrDefault(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return os.Stderr
}

// Run starts the MCP surface and blocks until ctx is cancelled or the
// transport fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.Tasks.Stop()
	if err := a.server.Serve(ctx); err != nil {
		return fmt.Errorf("mcp surface: %w", err)
	}
	return nil
}
