package mcpsurface

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
)

// listRegistries returns every configured registry, in declared order.
func (d *Deps) listRegistries(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{"registries": d.Registries.List()}, nil
}

// testConnection probes one registry (or all, when "registry" is absent).
func (d *Deps) testConnection(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	name := optString(args, "registry", "")
	if name == "" {
		return map[string]interface{}{"results": d.Registries.TestAll(ctx)}, nil
	}
	result, err := d.Registries.TestConnection(ctx, name)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Deps) listSubjects(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	subjects, err := client.ListSubjects(ctx, optString(args, "context", ""))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"subjects": subjects}, nil
}

func (d *Deps) listContexts(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	contexts, err := client.ListContexts(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"contexts": contexts}, nil
}

func (d *Deps) getSchema(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	subject, err := requireString(args, "subject")
	if err != nil {
		return nil, err
	}
	version := optString(args, "version", "latest")
	return client.GetSchema(ctx, subject, version, optString(args, "context", ""))
}

func (d *Deps) getSubjectVersions(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	subject, err := requireString(args, "subject")
	if err != nil {
		return nil, err
	}
	versions, err := client.GetSubjectVersions(ctx, subject, optString(args, "context", ""))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"versions": versions}, nil
}

func (d *Deps) registerSchema(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	subject, err := requireString(args, "subject")
	if err != nil {
		return nil, err
	}
	payload, err := requireString(args, "schema")
	if err != nil {
		return nil, err
	}
	schemaType := optString(args, "schema_type", string(registry.SchemaTypeAvro))
	mode := registry.ModeReadWrite
	if id := optIntPtr(args, "id"); id != nil {
		mode = registry.ModeImport
	}
	d.Patterns.Record("register_schema", "schema_type", schemaType)
	return client.RegisterSchema(ctx, subject, payload, schemaType, optString(args, "context", ""), optIntPtr(args, "id"), mode)
}

func (d *Deps) deleteSubject(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	subject, err := requireString(args, "subject")
	if err != nil {
		return nil, err
	}
	versions, err := client.DeleteSubject(ctx, subject, optString(args, "context", ""), optBool(args, "permanent", false))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted_versions": versions}, nil
}

func (d *Deps) getConfig(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	return client.GetConfig(ctx, optString(args, "subject", ""), optString(args, "context", ""))
}

func (d *Deps) setConfig(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	level, err := requireString(args, "compatibility")
	if err != nil {
		return nil, err
	}
	if err := client.SetConfig(ctx, optString(args, "subject", ""), optString(args, "context", ""), level); err != nil {
		return nil, err
	}
	return map[string]interface{}{"compatibility": level}, nil
}

func (d *Deps) getMode(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	mode, err := client.GetMode(ctx, optString(args, "subject", ""), optString(args, "context", ""))
	if err != nil {
		return nil, err
	}
	return registry.ModeSetting{Mode: mode}, nil
}

func (d *Deps) setMode(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	client, err := d.requireRegistry(args)
	if err != nil {
		return nil, err
	}
	modeArg, err := requireString(args, "mode")
	if err != nil {
		return nil, err
	}
	mode := registry.Mode(modeArg)
	if mode != registry.ModeReadWrite && mode != registry.ModeReadOnly && mode != registry.ModeImport {
		return nil, apierrors.New(apierrors.CodeInvalidArgument, "unknown mode %q", modeArg)
	}
	if err := client.SetMode(ctx, optString(args, "subject", ""), optString(args, "context", ""), mode); err != nil {
		return nil, err
	}
	return registry.ModeSetting{Mode: mode}, nil
}
