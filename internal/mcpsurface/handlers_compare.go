package mcpsurface

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/compare"
)

func (d *Deps) compareRegistries(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	source, err := requireString(args, "source_registry")
	if err != nil {
		return nil, err
	}
	target, err := requireString(args, "target_registry")
	if err != nil {
		return nil, err
	}
	sourceClient, err := d.Registries.Get(source)
	if err != nil {
		return nil, err
	}
	targetClient, err := d.Registries.Get(target)
	if err != nil {
		return nil, err
	}
	sampleCap := optInt(args, "sample_cap", 100)
	return d.Compare.CompareRegistries(ctx, sourceClient, targetClient, optString(args, "source_context", ""), optString(args, "target_context", ""), sampleCap), nil
}

func (d *Deps) diffSchema(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	source, err := requireString(args, "source_registry")
	if err != nil {
		return nil, err
	}
	target, err := requireString(args, "target_registry")
	if err != nil {
		return nil, err
	}
	subject, err := requireString(args, "subject")
	if err != nil {
		return nil, err
	}
	sourceClient, err := d.Registries.Get(source)
	if err != nil {
		return nil, err
	}
	targetClient, err := d.Registries.Get(target)
	if err != nil {
		return nil, err
	}
	return d.Compare.DiffSchema(ctx, sourceClient, targetClient, subject, optString(args, "source_context", ""), optString(args, "target_context", ""))
}

func (d *Deps) getRegistryStatistics(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	return d.Compare.GetRegistryStatistics(ctx, client, optInt(args, "concurrency", 16))
}

func (d *Deps) schemaDrift(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	names := optStringSlice(args, "registries")
	if len(names) == 0 {
		names = d.Registries.Names()
	}
	subject, err := requireString(args, "subject")
	if err != nil {
		return nil, err
	}
	clients := make([]compare.RegistryClient, 0, len(names))
	for _, name := range names {
		client, err := d.Registries.Get(name)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return d.Compare.SchemaDrift(ctx, clients, subject, optString(args, "context", "")), nil
}
