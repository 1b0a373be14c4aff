package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

const sampleID = "018f3c8e-2b7a-7c3d-9f4e-1a2b3c4d5e6f"

func TestStaticTableEntries(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		field  string
		kind   record.Kind
		target string
	}{
		{"birth_date", record.ScalarDate, ""},
		{"description", record.LongText, ""},
		{"age", record.ScalarNumber, ""},
		{"world", record.SingleRef, record.TypeWorld},
		{"birthplace", record.SingleRef, record.TypeLocation},
		{"abilities", record.MultiRef, record.TypeAbility},
		{"friends", record.MultiRef, record.TypeCharacter},
		{"element", record.SingleRef, ""},
		{"tags", record.StringList, ""},
		{"coordinates", record.Object, ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fs := e.Infer(tt.field, nil)
			assert.Equal(t, tt.kind, fs.Kind)
			assert.Equal(t, tt.target, fs.Target)
		})
	}

	// Unknown field with no sample defaults to a plain string.
	fs := e.Infer("completely_unknown", nil)
	assert.Equal(t, record.ScalarString, fs.Kind)
}

func TestInferFromSample(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		field  string
		sample any
		kind   record.Kind
		target string
	}{
		{"array of ID strings", "companions", []any{sampleID}, record.MultiRef, ""},
		{"array of plain strings", "nicknames", []any{"Red", "Fox"}, record.StringList, ""},
		{"array of ref objects", "companions", []any{map[string]any{"id": sampleID}}, record.MultiRef, ""},
		{"object with id", "mentor", map[string]any{"id": sampleID}, record.SingleRef, ""},
		{"object without id", "stats", map[string]any{"str": 10}, record.Object, ""},
		{"bool", "alive", true, record.ScalarBool, ""},
		{"float", "speed", 4.5, record.ScalarNumber, ""},
		{"int", "rank", 3, record.ScalarNumber, ""},
		{"ID-shaped string", "patron", sampleID, record.SingleRef, ""},
		{"date string", "coronation", "1032-04-17", record.ScalarDate, ""},
		{"datetime string", "sighted", "2024-01-02T15:04:05Z", record.ScalarDate, ""},
		{"long string", "legend", strings.Repeat("a", 300), record.LongText, ""},
		{"short string", "motto", "strength and honor", record.ScalarString, ""},
		{"ref array keeps table target", "friends", []any{sampleID}, record.MultiRef, record.TypeCharacter},
		{"ref object keeps table target", "birthplace", map[string]any{"id": sampleID}, record.SingleRef, record.TypeLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := e.Infer(tt.field, tt.sample)
			assert.Equal(t, tt.kind, fs.Kind, "kind")
			assert.Equal(t, tt.target, fs.Target, "target")
		})
	}
}

func TestSampleOverridesStaticTable(t *testing.T) {
	e := NewEngine()

	// "notes" is long-text in the table, but a literal ID-shaped value
	// reclassifies it as a reference.
	fs := e.Infer("notes", sampleID)
	assert.Equal(t, record.SingleRef, fs.Kind)
}

func TestEmptyArrayFallsBackToTable(t *testing.T) {
	e := NewEngine()
	fs := e.Infer("abilities", []any{})
	assert.Equal(t, record.MultiRef, fs.Kind)
	assert.Equal(t, record.TypeAbility, fs.Target)
}

func TestInferenceCacheIsStable(t *testing.T) {
	e := NewEngine()

	// First string observation classifies and is cached per bucket; a
	// second, differently-shaped string does not reclassify.
	first := e.Infer("sigil", "short text")
	require.Equal(t, record.ScalarString, first.Kind)

	second := e.Infer("sigil", sampleID)
	assert.Equal(t, record.ScalarString, second.Kind,
		"cached bucket result must win over re-classification")
}

func TestEnginesAreIndependent(t *testing.T) {
	a := NewEngine()
	b := NewEngine()

	a.Observe(record.Record{"omen": sampleID})
	_, seenByA := a.Lookup("omen")
	_, seenByB := b.Lookup("omen")
	assert.True(t, seenByA)
	assert.False(t, seenByB, "engines must not share learned state")
}

func TestObserve(t *testing.T) {
	e := NewEngine()

	e.Observe(record.Record{
		"omen":        sampleID,
		"alive":       true,
		"description": "short", // already in the table as long-text
		"empty":       nil,
	})

	fs, ok := e.Lookup("omen")
	require.True(t, ok)
	assert.Equal(t, record.SingleRef, fs.Kind)

	fs, ok = e.Lookup("alive")
	require.True(t, ok)
	assert.Equal(t, record.ScalarBool, fs.Kind)

	// Known entries are not overwritten by observation.
	fs, _ = e.Lookup("description")
	assert.Equal(t, record.LongText, fs.Kind)

	// Nil values teach nothing.
	_, ok = e.Lookup("empty")
	assert.False(t, ok)
}

func TestBadTableRejected(t *testing.T) {
	_, err := newEngineFrom([]byte("version: 2\nfields: []\n"))
	require.Error(t, err)

	_, err = newEngineFrom([]byte(`
version: 1
fields:
  - {name: x, kind: single-ref, target: nonsense}
`))
	require.Error(t, err)

	_, err = newEngineFrom([]byte(`
version: 1
fields:
  - {name: dup, kind: date}
  - {name: dup, kind: number}
`))
	require.Error(t, err)
}
