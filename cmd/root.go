// Package cmd implements the process's minimal cobra CLI surface: serve
// the MCP server, print the version, and give operators a read-only view
// of the live control plane (configured registries, async task status).
package cmd

import (
	"errors"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

// Exit codes, per spec.md §6.
const (
	ExitCodeSuccess     = 0
	ExitCodeError       = 1
	ExitCodeConfigError = 2
	ExitCodePortInUse   = 3
)

var rootCmd = &cobra.Command{
	Use:   "schema-registry-mcp",
	Short: "MCP control plane for one or more Confluent-compatible Schema Registries",
	Long: `schema-registry-mcp exposes Schema Registry operations, cross-registry
migration, comparison, and bulk cleanup as MCP tools over stdio, SSE,
or streamable HTTP, driven entirely by environment configuration.`,
	SilenceUsage: true,
}

// SetVersion injects the build-time version string, shown by --version
// and the version subcommand.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits with exitCodeFor's code on
// error: 2 for CONFIG_INVALID, REGISTRY_DUPLICATE_NAME and
// REGISTRY_DUPLICATE_URL, 3 when the listen address is already in use,
// and 1 otherwise.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "schema-registry-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if errors.Is(err, syscall.EADDRINUSE) {
		return ExitCodePortInUse
	}
	coded := apierrors.AsCoded(err)
	switch coded.Code {
	case apierrors.CodeConfigInvalid, apierrors.CodeRegistryDuplicateName, apierrors.CodeRegistryDuplicateURL:
		return ExitCodeConfigError
	default:
		return ExitCodeError
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRegistriesCmd())
	rootCmd.AddCommand(newTasksCmd())
}
