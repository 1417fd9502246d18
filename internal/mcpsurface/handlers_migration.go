package mcpsurface

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/migration"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/task"
)

// parsePlan builds a migration.Plan from tool arguments shared by the
// dry-run planner and the async executor.
func (d *Deps) parsePlan(args map[string]interface{}) (migration.Plan, *registrySource, error) {
	sourceName, err := requireString(args, "source_registry")
	if err != nil {
		return migration.Plan{}, nil, err
	}
	targetName, err := requireString(args, "target_registry")
	if err != nil {
		return migration.Plan{}, nil, err
	}

	selector, err := parseVersionSelector(args)
	if err != nil {
		return migration.Plan{}, nil, err
	}
	onConflict := optString(args, "on_conflict", "fail_subject")
	if onConflict == "overwrite" {
		return migration.Plan{}, nil, apierrors.New(apierrors.CodeInvalidArgument, "on_conflict=overwrite is reserved")
	}

	plan := migration.Plan{
		Source:                   migration.Endpoint{Registry: sourceName, Context: optString(args, "source_context", "")},
		Target:                   migration.Endpoint{Registry: targetName, Context: optString(args, "target_context", "")},
		Subjects:                 optStringSlice(args, "subjects"),
		Versions:                 selector,
		PreserveIDs:              optBool(args, "preserve_ids", true),
		DryRun:                   optBool(args, "dry_run", true),
		ContinueOnSubjectFailure: optBool(args, "continue_on_subject_failure", true),
		OnConflict:               onConflict,
	}
	return plan, &registrySource{sourceName, targetName}, nil
}

type registrySource struct {
	source, target string
}

// parseVersionSelector reads the "versions" argument, which is either the
// string "latest"/"all" or an explicit JSON array of version numbers
// (spec.md §3 selector is "latest" | "all" | explicit list).
func parseVersionSelector(args map[string]interface{}) (migration.VersionSelector, error) {
	if explicit, ok := optIntSlice(args, "versions"); ok {
		if len(explicit) == 0 {
			return migration.VersionSelector{}, apierrors.New(apierrors.CodeInvalidArgument,
				"argument %q must be a non-empty array when given as an explicit version list", "versions")
		}
		return migration.VersionSelector{Mode: migration.VersionModeExplicit, Explicit: explicit}, nil
	}

	switch s := optString(args, "versions", "latest"); s {
	case "latest":
		return migration.VersionSelector{Mode: migration.VersionModeLatest}, nil
	case "all":
		return migration.VersionSelector{Mode: migration.VersionModeAll}, nil
	default:
		return migration.VersionSelector{}, apierrors.New(apierrors.CodeInvalidArgument,
			"argument %q must be \"latest\", \"all\", or an array of version numbers", "versions")
	}
}

// migrateSchemas submits an async migration task and returns its task_id
// immediately (mode A); progress and results are retrieved via
// get_task_status. When generate_bundle is set, or when this process was
// started with ENABLE_MIGRATION=false, it instead synchronously renders a
// context-bundle artifact for an externally-run migrator (spec.md §4.5
// mode B) and never touches source or target itself.
func (d *Deps) migrateSchemas(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	plan, names, err := d.parsePlan(args)
	if err != nil {
		return nil, err
	}
	source, err := d.Registries.Get(names.source)
	if err != nil {
		return nil, err
	}
	target, err := d.Registries.Get(names.target)
	if err != nil {
		return nil, err
	}

	if optBool(args, "generate_bundle", false) || !d.EnableMigration {
		return buildMigrationBundle(plan, source, target, optString(args, "migrator_image", ""))
	}

	taskID := d.Tasks.Submit(task.TypeMigration, func(ctx context.Context, report task.Reporter, token task.Token) (interface{}, error) {
		return d.Migration.Run(ctx, plan, source, target, report, token)
	})
	return map[string]interface{}{"task_id": taskID, "dry_run": plan.DryRun}, nil
}

// buildMigrationBundle renders the three-file bundle artifact (.env,
// docker-compose.yml, migrate_context.sh) from source/target endpoint
// credentials and plan settings.
func buildMigrationBundle(plan migration.Plan, source, target *registry.Client, migratorImage string) (interface{}, error) {
	sourceURL, sourceUser, sourcePassword := source.Endpoint()
	destURL, destUser, destPassword := target.Endpoint()

	bundle, err := migration.Render(migration.BundleRequest{
		SourceURL:      sourceURL,
		SourceUser:     sourceUser,
		SourcePassword: sourcePassword,
		SourceContext:  plan.Source.Context,
		DestURL:        destURL,
		DestUser:       destUser,
		DestPassword:   destPassword,
		DestContext:    plan.Target.Context,
		PreserveIDs:    plan.PreserveIDs,
		DryRun:         plan.DryRun,
		MigratorImage:  migratorImage,
	})
	if err != nil {
		return nil, apierrors.New(apierrors.CodeInternal, "rendering migration bundle: %v", err)
	}
	return map[string]interface{}{"mode": "bundle", "bundle": bundle}, nil
}
