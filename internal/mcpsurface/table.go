package mcpsurface

import (
	"github.com/control-plane/schema-registry-mcp/internal/authz"
)

func schemaObj(properties map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

// registryArg is the input-schema fragment every single-registry tool
// shares: a required "registry" string naming a configured slot.
func registryArg() map[string]interface{} {
	return prop("string", "Name of a configured registry.")
}

// versionsArg is migrate_schemas's version-selector fragment: either the
// string "latest"/"all", or an explicit array of version numbers
// (spec.md §3 selector is "latest" | "all" | explicit list).
func versionsArg() map[string]interface{} {
	return map[string]interface{}{
		"description": "\"latest\", \"all\", or an explicit array of version numbers.",
		"oneOf": []interface{}{
			map[string]interface{}{"type": "string", "enum": []interface{}{"latest", "all"}},
			map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}},
		},
	}
}

// BuildTable enumerates the static tool table (spec.md §4.1-§4.9). Every
// handler closes over deps; SLIM_MODE filtering is applied by the caller
// (server.go) after the table is built, not here, so the full surface
// stays introspectable for tests.
func BuildTable(deps *Deps) []ToolSpec {
	return []ToolSpec{
		{
			Name:        "list_registries",
			Description: "List every configured Schema Registry, preserving slot order.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(nil),
			OutputSchema: schemaObj(map[string]interface{}{
				"registries": map[string]interface{}{"type": "array"},
			}),
			Handler:         deps.listRegistries,
			SlimModeVisible: true,
		},
		{
			Name:        "test_connection",
			Description: "Probe one configured registry, or every registry when \"registry\" is omitted.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
			}),
			OutputSchema:    schemaObj(nil),
			Handler:         deps.testConnection,
			SlimModeVisible: true,
		},
		{
			Name:        "list_subjects",
			Description: "List every subject in a registry/context.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"context":  prop("string", "Named context; omitted or \".\" means the default context."),
			}, "registry"),
			OutputSchema: schemaObj(map[string]interface{}{
				"subjects": map[string]interface{}{"type": "array"},
			}),
			Handler:         deps.listSubjects,
			SlimModeVisible: true,
		},
		{
			Name:        "list_contexts",
			Description: "List every named context known to a registry.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
			}, "registry"),
			OutputSchema: schemaObj(map[string]interface{}{
				"contexts": map[string]interface{}{"type": "array"},
			}),
			Handler: deps.listContexts,
		},
		{
			Name:        "get_schema",
			Description: "Fetch one version of a subject's schema (version defaults to \"latest\").",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"subject":  prop("string", "Subject name."),
				"version":  prop("string", "Version number or \"latest\"."),
				"context":  prop("string", "Named context."),
			}, "registry", "subject"),
			OutputSchema:    schemaObj(nil),
			Handler:         deps.getSchema,
			SlimModeVisible: true,
		},
		{
			Name:        "get_subject_versions",
			Description: "List every registered version number for a subject.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"subject":  prop("string", "Subject name."),
				"context":  prop("string", "Named context."),
			}, "registry", "subject"),
			OutputSchema: schemaObj(map[string]interface{}{
				"versions": map[string]interface{}{"type": "array"},
			}),
			Handler: deps.getSubjectVersions,
		},
		{
			Name:        "register_schema",
			Description: "Register a new schema version under a subject. Blocked on a view-only registry before any network call.",
			Scope:       authz.ScopeWrite,
			InputSchema: schemaObj(map[string]interface{}{
				"registry":    registryArg(),
				"subject":     prop("string", "Subject name."),
				"schema":      prop("string", "Raw schema text (AVRO/JSON/PROTOBUF, per schema_type)."),
				"schema_type": prop("string", "AVRO, JSON, or PROTOBUF. Defaults to AVRO."),
				"context":     prop("string", "Named context."),
				"id":          prop("integer", "Explicit schema ID; requires the registry to be in IMPORT mode."),
			}, "registry", "subject", "schema"),
			OutputSchema:    schemaObj(nil),
			Handler:         deps.registerSchema,
			SlimModeVisible: true,
		},
		{
			Name:        "delete_subject",
			Description: "Soft- or hard-delete a subject and every version under it.",
			Scope:       authz.ScopeAdmin,
			InputSchema: schemaObj(map[string]interface{}{
				"registry":  registryArg(),
				"subject":   prop("string", "Subject name."),
				"context":   prop("string", "Named context."),
				"permanent": prop("boolean", "Hard-delete (permanent=true) vs. soft-delete."),
			}, "registry", "subject"),
			OutputSchema: schemaObj(map[string]interface{}{
				"deleted_versions": map[string]interface{}{"type": "array"},
			}),
			Handler: deps.deleteSubject,
		},
		{
			Name:        "get_config",
			Description: "Read the compatibility configuration for a registry or subject.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"subject":  prop("string", "Subject name; omitted reads the registry-level default."),
				"context":  prop("string", "Named context."),
			}, "registry"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.getConfig,
		},
		{
			Name:        "set_config",
			Description: "Set the compatibility level for a registry or subject.",
			Scope:       authz.ScopeWrite,
			InputSchema: schemaObj(map[string]interface{}{
				"registry":      registryArg(),
				"subject":       prop("string", "Subject name; omitted sets the registry-level default."),
				"context":       prop("string", "Named context."),
				"compatibility": prop("string", "BACKWARD, FORWARD, FULL, NONE, or a _TRANSITIVE variant."),
			}, "registry", "compatibility"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.setConfig,
		},
		{
			Name:        "get_mode",
			Description: "Read the mode (READWRITE/READONLY/IMPORT) of a registry or subject.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"subject":  prop("string", "Subject name; omitted reads the registry-level mode."),
				"context":  prop("string", "Named context."),
			}, "registry"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.getMode,
		},
		{
			Name:        "set_mode",
			Description: "Set the mode of a registry or subject. This does not take the exclusive import lock that preserve_ids migrations hold.",
			Scope:       authz.ScopeAdmin,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"subject":  prop("string", "Subject name; omitted sets the registry-level mode."),
				"context":  prop("string", "Named context."),
				"mode":     prop("string", "READWRITE, READONLY, or IMPORT."),
			}, "registry", "mode"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.setMode,
		},
		{
			Name:        "migrate_schemas",
			Description: "Asynchronously migrate subjects from one registry to another. Returns a task_id; poll get_task_status for progress and results. With generate_bundle=true, or when this process runs with ENABLE_MIGRATION=false, instead synchronously returns a context-bundle artifact for an externally-run migrator.",
			Scope:       authz.ScopeWrite,
			InputSchema: schemaObj(map[string]interface{}{
				"source_registry":             prop("string", "Source registry name."),
				"target_registry":             prop("string", "Target registry name."),
				"source_context":              prop("string", "Source named context."),
				"target_context":              prop("string", "Target named context."),
				"subjects":                    map[string]interface{}{"type": "array", "description": "Subjects to migrate; omitted migrates every subject."},
				"versions":                    versionsArg(),
				"preserve_ids":                prop("boolean", "Preserve source schema IDs via a scoped IMPORT-mode window. Defaults true."),
				"dry_run":                     prop("boolean", "Classify without writing. Defaults true."),
				"continue_on_subject_failure": prop("boolean", "Continue migrating other subjects after one fails. Defaults true."),
				"on_conflict":                 prop("string", "\"fail_subject\" (default): a version already on the target with a different schema is recorded as CONFLICT and ends that subject's migration. \"overwrite\" is rejected; any other value behaves as fail_subject."),
				"generate_bundle":             prop("boolean", "Skip direct execution and return a context-bundle artifact for an externally-run migrator instead."),
				"migrator_image":              prop("string", "Container image reference for the bundled migrator; defaults to a documented placeholder."),
			}, "source_registry", "target_registry"),
			OutputSchema: schemaObj(map[string]interface{}{
				"task_id": prop("string", "Poll this with get_task_status. Present only when mode is not \"bundle\"."),
				"dry_run": prop("boolean", "Echoes the resolved dry_run value. Present only when mode is not \"bundle\"."),
				"mode":    prop("string", "\"bundle\" when a context-bundle artifact was returned instead of a task_id."),
				"bundle":  map[string]interface{}{"type": "object", "description": "The three-file bundle artifact; present only when mode is \"bundle\"."},
			}),
			Handler:         deps.migrateSchemas,
			SlimModeVisible: true,
		},
		{
			Name:        "compare_registries",
			Description: "Classify every subject across two registries as only-in-source, only-in-target, identical, differs-latest, or differs-history.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"source_registry": prop("string", "Source registry name."),
				"target_registry": prop("string", "Target registry name."),
				"source_context":  prop("string", "Source named context."),
				"target_context":  prop("string", "Target named context."),
				"sample_cap":      prop("integer", "Max sample subjects kept per relation. Defaults to 100."),
			}, "source_registry", "target_registry"),
			OutputSchema:    schemaObj(nil),
			Handler:         deps.compareRegistries,
			SlimModeVisible: true,
		},
		{
			Name:        "diff_schema",
			Description: "Compare one subject across two registries: versions only in source, only in target, or differing, plus a structural (AVRO) or text diff of the latest versions.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"source_registry": prop("string", "Source registry name."),
				"target_registry": prop("string", "Target registry name."),
				"subject":         prop("string", "Subject name."),
				"source_context":  prop("string", "Source named context."),
				"target_context":  prop("string", "Target named context."),
			}, "source_registry", "target_registry", "subject"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.diffSchema,
		},
		{
			Name:        "get_registry_statistics",
			Description: "Compute subject, version and context counts for one registry. Subjects and versions are counted in the default context only; other contexts are counted but not read.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registry":    registryArg(),
				"concurrency": prop("integer", "Bounded fan-out width. Defaults to 16."),
			}, "registry"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.getRegistryStatistics,
		},
		{
			Name:        "schema_drift",
			Description: "Detect whether a subject is missing or diverged across a set of registries.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"registries": map[string]interface{}{"type": "array", "description": "Registries to compare; omitted uses every configured registry."},
				"subject":    prop("string", "Subject name."),
				"context":    prop("string", "Named context."),
			}, "subject"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.schemaDrift,
		},
		{
			Name:        "clear_context_batch",
			Description: "Delete every subject in one context. dry_run defaults to true; pass dry_run=false to actually delete.",
			Scope:       authz.ScopeAdmin,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"context":  prop("string", "Named context to clear."),
				"dry_run":  prop("boolean", "Defaults true. Must be explicitly false to delete."),
			}, "registry", "context"),
			OutputSchema:    schemaObj(nil),
			Handler:         deps.clearContext,
			SlimModeVisible: true,
		},
		{
			Name:        "clear_multiple_contexts_batch",
			Description: "Delete every subject across several contexts in one registry.",
			Scope:       authz.ScopeAdmin,
			InputSchema: schemaObj(map[string]interface{}{
				"registry": registryArg(),
				"contexts": map[string]interface{}{"type": "array"},
				"dry_run":  prop("boolean", "Defaults true."),
			}, "registry", "contexts"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.clearMultipleContexts,
		},
		{
			Name:        "clear_context_across_registries",
			Description: "Delete one context's subjects across several registries; a view-only registry blocks only its own entry.",
			Scope:       authz.ScopeAdmin,
			InputSchema: schemaObj(map[string]interface{}{
				"registries": map[string]interface{}{"type": "array", "description": "Registries to clear; omitted uses every configured registry."},
				"context":    prop("string", "Named context to clear."),
				"dry_run":    prop("boolean", "Defaults true."),
			}, "context"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.clearContextAcrossRegistries,
		},
		{
			Name:        "get_task_status",
			Description: "Poll an async task's state, progress, and (once terminal) result or error.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"task_id": prop("string", "Task identifier returned by an async tool."),
			}, "task_id"),
			OutputSchema:    schemaObj(nil),
			Handler:         deps.getTaskStatus,
			SlimModeVisible: true,
		},
		{
			Name:        "cancel_task",
			Description: "Request cooperative cancellation of a running task.",
			Scope:       authz.ScopeAdmin,
			InputSchema: schemaObj(map[string]interface{}{
				"task_id": prop("string", "Task identifier."),
			}, "task_id"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.cancelTask,
		},
		{
			Name:        "list_tasks",
			Description: "List active tasks; with a type filter, list every retained task of that type in any state.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"type": prop("string", "MIGRATION, SYNC, CLEANUP, EXPORT, IMPORT, STATISTICS, or COMPARE."),
			}),
			OutputSchema: schemaObj(map[string]interface{}{
				"tasks": map[string]interface{}{"type": "array"},
			}),
			Handler: deps.listTasks,
		},
		{
			Name:        "elicit_begin",
			Description: "Start a multi-step elicitation, returning a continuation token and a follow-up question.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"tool":     prop("string", "The tool this elicitation is gathering arguments for."),
				"question": prop("string", "The question to surface to the caller."),
				"context":  schemaObj(nil),
			}, "tool", "question"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.elicitBegin,
		},
		{
			Name:        "elicit_continue",
			Description: "Supply an answer to a pending elicitation and get back the merged argument set.",
			Scope:       authz.ScopeRead,
			InputSchema: schemaObj(map[string]interface{}{
				"elicitation_token": prop("string", "Token returned by elicit_begin."),
				"answer":            schemaObj(nil),
			}, "elicitation_token"),
			OutputSchema: schemaObj(nil),
			Handler:      deps.elicitContinue,
		},
	}
}
