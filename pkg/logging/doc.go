/*
Package logging wraps log/slog with a subsystem-tagged API:

	logging.Init(logging.LevelInfo, os.Stderr)
	logging.Info("Registry", "loaded %d registries", n)
	logging.Error("Migration", err, "subject %s failed", subject)

Unlike a general-purpose logging facade, this package intentionally has no
TUI mode, no dynamic level reconfiguration, and no third-party logr bridge:
this process has no terminal UI and no Kubernetes client to bridge into.
*/
package logging
