package mcpsurface

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/batch"
)

func (d *Deps) clearContext(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	contextName, err := requireString(args, "context")
	if err != nil {
		return nil, err
	}
	return batch.ClearContext(ctx, client, contextName, optBool(args, "dry_run", true))
}

func (d *Deps) clearMultipleContexts(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	contexts := optStringSlice(args, "contexts")
	results, err := batch.ClearMultipleContexts(ctx, client, contexts, optBool(args, "dry_run", true))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"results": results}, nil
}

func (d *Deps) clearContextAcrossRegistries(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	names := optStringSlice(args, "registries")
	if len(names) == 0 {
		names = d.Registries.Names()
	}
	contextName, err := requireString(args, "context")
	if err != nil {
		return nil, err
	}
	clients := make([]batch.RegistryClient, 0, len(names))
	for _, name := range names {
		client, err := d.Registries.Get(name)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	rollups := batch.ClearContextAcrossRegistries(ctx, clients, contextName, optBool(args, "dry_run", true))
	return map[string]interface{}{"results": rollups}, nil
}
