package schemakit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const schemaV1 = `{"type":"record","name":"User","fields":[{"name":"id","type":"long"},{"name":"name","type":"string"}]}`
const schemaV2 = `{"type":"record","name":"User","fields":[{"name":"id","type":"long"},{"name":"name","type":"string"},{"name":"email","type":"string"}]}`

func TestDiff_IdenticalPayloadsShortCircuit(t *testing.T) {
	d := Diff("AVRO", schemaV1, schemaV1)
	assert.True(t, d.Identical)
	assert.Empty(t, d.FieldDiffs)
}

func TestDiff_AddedFieldIsDetected(t *testing.T) {
	d := Diff("AVRO", schemaV1, schemaV2)
	assert.False(t, d.Identical)
	assert.True(t, d.UsedStructural)
	require := false
	for _, fd := range d.FieldDiffs {
		if fd.Path == "email" && fd.Kind == "added" {
			require = true
		}
	}
	assert.True(t, require, "expected an added diff for the email field")
}

func TestDiff_NonAvroFallsBackToTextDiff(t *testing.T) {
	d := Diff("JSON", `{"a":1}`, `{"a":2}`)
	assert.False(t, d.Identical)
	assert.False(t, d.UsedStructural)
	assert.NotEmpty(t, d.TextDiff)
}

func TestDiff_UnparsableAvroFallsBackToTextDiff(t *testing.T) {
	d := Diff("AVRO", "not avro", "also not avro")
	assert.False(t, d.Identical)
	assert.False(t, d.UsedStructural)
}
