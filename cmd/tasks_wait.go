package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/control-plane/schema-registry-mcp/internal/config"
)

const taskPollInterval = 500 * time.Millisecond

func newTasksCmd() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect async tasks on a running server",
	}
	tasksCmd.AddCommand(newTasksWaitCmd())
	return tasksCmd
}

func newTasksWaitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait <task-id>",
		Short: "Poll get_task_status against a running streamable-http server until the task reaches a terminal state",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksWait,
	}
}

func runTasksWait(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("http://%s:%d%s", cfg.Server.Host, cfg.Server.Port, cfg.Server.Path)

	mcpClient, err := client.NewStreamableHttpClient(endpoint)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}
	defer mcpClient.Close()

	ctx := cmd.Context()
	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" waiting on task %s...", taskID)
	s.Start()
	defer s.Stop()

	for {
		status, terminal, err := fetchTaskStatus(ctx, mcpClient, taskID)
		if err != nil {
			return err
		}
		if terminal {
			s.Stop()
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(taskPollInterval):
		}
	}
}

func fetchTaskStatus(ctx context.Context, mcpClient *client.Client, taskID string) (status string, terminal bool, err error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = "get_task_status"
	req.Params.Arguments = map[string]interface{}{"task_id": taskID}

	result, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		return "", false, err
	}

	var text string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			text = textContent.Text
			break
		}
	}

	var payload struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return text, true, nil
	}

	switch payload.State {
	case "COMPLETED", "FAILED", "CANCELLED":
		return text, true, nil
	default:
		return text, false, nil
	}
}
