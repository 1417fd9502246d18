package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/control-plane/schema-registry-mcp/internal/config"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
)

func newRegistriesCmd() *cobra.Command {
	registriesCmd := &cobra.Command{
		Use:   "registries",
		Short: "Inspect configured registries",
	}
	registriesCmd.AddCommand(newRegistriesListCmd())
	return registriesCmd
}

func newRegistriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registry configured via the environment",
		Args:  cobra.NoArgs,
		RunE:  runRegistriesList,
	}
}

func runRegistriesList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registryConfigs := make([]registry.Config, 0, len(cfg.Registries))
	for _, rc := range cfg.Registries {
		registryConfigs = append(registryConfigs, registry.Config{
			Name:           rc.Name,
			BaseURL:        rc.URL,
			ViewOnly:       rc.ViewOnly,
			AllowLocalhost: cfg.Server.AllowLocalhost,
		})
	}

	manager, err := registry.NewManager(registryConfigs)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("NAME"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("URL"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("VIEWONLY"),
	})

	for _, info := range manager.List() {
		t.AppendRow(table.Row{
			text.Colors{text.FgHiBlue, text.Bold}.Sprint(info.Name),
			info.URL,
			info.ViewOnly,
		})
	}

	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %d %s\n", text.FgHiBlue.Sprint("Total:"), len(manager.List()), "registries")
	return nil
}
