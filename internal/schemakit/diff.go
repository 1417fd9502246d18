// Package schemakit provides AVRO-aware schema introspection and diffing
// used by the comparison engine's diff_schema operation. Non-AVRO payloads
// (JSON, PROTOBUF) fall back to a line-oriented text diff.
package schemakit

import (
	"fmt"
	"strings"

	"github.com/hamba/avro/v2"
)

// FieldDiff describes one field-level difference between two AVRO record
// schemas.
type FieldDiff struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"` // "added" | "removed" | "type_changed"
	Detail string `json:"detail"`
}

// SchemaDiff is the structured result of diffing two schema payloads for
// the same subject.
type SchemaDiff struct {
	Identical    bool        `json:"identical"`
	FieldDiffs   []FieldDiff `json:"field_diffs,omitempty"`
	TextDiff     string      `json:"text_diff,omitempty"`
	UsedStructural bool      `json:"used_structural_diff"`
}

// Diff compares two schema payloads of the given schemaType. For AVRO it
// produces a field-level structural diff; for any other type (or when AVRO
// parsing fails) it falls back to a text diff so the caller always gets a
// usable result.
func Diff(schemaType, left, right string) SchemaDiff {
	if left == right {
		return SchemaDiff{Identical: true}
	}

	if strings.EqualFold(schemaType, "AVRO") {
		if d, ok := diffAvro(left, right); ok {
			return d
		}
	}

	return SchemaDiff{
		Identical: false,
		TextDiff:  textDiff(left, right),
	}
}

func diffAvro(left, right string) (SchemaDiff, bool) {
	leftSchema, err := avro.Parse(left)
	if err != nil {
		return SchemaDiff{}, false
	}
	rightSchema, err := avro.Parse(right)
	if err != nil {
		return SchemaDiff{}, false
	}

	leftRecord, lok := leftSchema.(*avro.RecordSchema)
	rightRecord, rok := rightSchema.(*avro.RecordSchema)
	if !lok || !rok {
		if leftSchema.Fingerprint() == rightSchema.Fingerprint() {
			return SchemaDiff{Identical: true, UsedStructural: true}, true
		}
		return SchemaDiff{}, false
	}

	diffs := diffRecords(leftRecord, rightRecord, "")
	return SchemaDiff{
		Identical:      len(diffs) == 0,
		FieldDiffs:     diffs,
		UsedStructural: true,
	}, true
}

func diffRecords(left, right *avro.RecordSchema, path string) []FieldDiff {
	var diffs []FieldDiff

	rightFields := make(map[string]*avro.Field, len(right.Fields()))
	for _, f := range right.Fields() {
		rightFields[f.Name()] = f
	}

	leftFields := make(map[string]*avro.Field, len(left.Fields()))
	for _, f := range left.Fields() {
		leftFields[f.Name()] = f
		fieldPath := joinPath(path, f.Name())
		rf, ok := rightFields[f.Name()]
		if !ok {
			diffs = append(diffs, FieldDiff{Path: fieldPath, Kind: "removed", Detail: "field present in left only"})
			continue
		}
		if f.Type().Type() != rf.Type().Type() {
			diffs = append(diffs, FieldDiff{
				Path: fieldPath, Kind: "type_changed",
				Detail: fmt.Sprintf("%s -> %s", f.Type().Type(), rf.Type().Type()),
			})
			continue
		}
		if lr, ok1 := f.Type().(*avro.RecordSchema); ok1 {
			if rr, ok2 := rf.Type().(*avro.RecordSchema); ok2 {
				diffs = append(diffs, diffRecords(lr, rr, fieldPath)...)
			}
		}
	}

	for _, f := range right.Fields() {
		if _, ok := leftFields[f.Name()]; !ok {
			diffs = append(diffs, FieldDiff{Path: joinPath(path, f.Name()), Kind: "added", Detail: "field present in right only"})
		}
	}

	return diffs
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// textDiff produces a minimal line-oriented diff for non-structural or
// non-AVRO comparisons.
func textDiff(left, right string) string {
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")

	var b strings.Builder
	max := len(leftLines)
	if len(rightLines) > max {
		max = len(rightLines)
	}
	for i := 0; i < max; i++ {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		if l == r {
			continue
		}
		if l != "" {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		if r != "" {
			fmt.Fprintf(&b, "+ %s\n", r)
		}
	}
	return b.String()
}
