package mcpsurface

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/task"
)

func (d *Deps) getTaskStatus(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id, err := requireString(args, "task_id")
	if err != nil {
		return nil, err
	}
	return d.Tasks.Status(id)
}

func (d *Deps) cancelTask(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	id, err := requireString(args, "task_id")
	if err != nil {
		return nil, err
	}
	if err := d.Tasks.Cancel(id); err != nil {
		return nil, err
	}
	return d.Tasks.Status(id)
}

func (d *Deps) listTasks(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	typ := optString(args, "type", "")
	if typ == "" {
		return map[string]interface{}{"tasks": d.Tasks.ListActive()}, nil
	}
	return map[string]interface{}{"tasks": d.Tasks.ListByType(task.Type(typ))}, nil
}
