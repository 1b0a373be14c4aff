package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

const (
	worldID  = "018f0000-0000-7000-8000-000000000001"
	locID    = "018f0000-0000-7000-8000-000000000002"
	friendID = "018f0000-0000-7000-8000-000000000003"
	otherID  = "018f0000-0000-7000-8000-000000000004"
)

func newCodec() *Codec {
	return New(schema.NewEngine())
}

func TestToWireWorldField(t *testing.T) {
	c := newCodec()

	tests := []struct {
		name  string
		world any
		want  any
	}{
		{"bare ID passes through", worldID, worldID},
		{"embedded object unwraps", map[string]any{"id": worldID, "name": "W"}, worldID},
		{"nil is explicit null", nil, nil},
		{"absent is explicit null", "absent", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record.Record{"id": otherID, "name": "x"}
			if tt.world != "absent" {
				r["world"] = tt.world
			}
			out := c.ToWire(r, "world")

			got, present := out["world"]
			require.True(t, present, "world key must always be emitted")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToWireReferenceSuffixes(t *testing.T) {
	c := newCodec()
	r := record.Record{
		"id":         otherID,
		"birthplace": map[string]any{"id": locID, "name": "Harbor"},
		"location":   locID,
		"friends":    []any{friendID, map[string]any{"id": otherID}, map[string]any{"name": "no id"}},
	}

	out := c.ToWire(r, "birthplace", "location", "friends")

	assert.Equal(t, locID, out["birthplace_id"])
	assert.Equal(t, locID, out["location_id"])
	assert.Equal(t, []string{friendID, otherID}, out["friends_ids"],
		"entries without an extractable id are dropped")
	assert.NotContains(t, out, "birthplace")
	assert.NotContains(t, out, "friends")
}

func TestToWireSuffixNotDoubled(t *testing.T) {
	c := newCodec()
	r := record.Record{"location_id": locID, "friend_ids": []any{friendID}}

	out := c.ToWire(r, "location_id", "friend_ids")

	assert.Equal(t, locID, out["location_id"])
	assert.Equal(t, []string{friendID}, out["friend_ids"])
	assert.NotContains(t, out, "location_id_id")
	assert.NotContains(t, out, "friend_ids_ids")
}

func TestToWireNullReferencesKeepSuffixedKeys(t *testing.T) {
	c := newCodec()
	r := record.Record{"id": otherID, "birthplace": nil, "abilities": nil}

	out := c.ToWire(r, "birthplace", "abilities")

	got, present := out["birthplace_id"]
	require.True(t, present, "null single ref must still emit its key")
	assert.Nil(t, got)

	gotMulti, present := out["abilities_ids"]
	require.True(t, present, "null multi ref must still emit its key")
	assert.Equal(t, []string{}, gotMulti)
}

func TestToWireSkipsReadOnlyFields(t *testing.T) {
	c := newCodec()
	r := record.Record{
		"id":         otherID,
		"name":       "Keep",
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-02T00:00:00Z",
	}

	out := c.ToWire(r)

	assert.NotContains(t, out, "id")
	assert.NotContains(t, out, "created_at")
	assert.NotContains(t, out, "updated_at")
	assert.Equal(t, "Keep", out["name"])
}

func TestToWireScalarsPassThrough(t *testing.T) {
	c := newCodec()
	r := record.Record{
		"name":        "Eryndor",
		"age":         41.0,
		"alive":       true,
		"coordinates": map[string]any{"lat": 1.0, "lon": 2.0},
	}

	out := c.ToWire(r, "name", "age", "alive", "coordinates")

	assert.Equal(t, "Eryndor", out["name"])
	assert.Equal(t, 41.0, out["age"])
	assert.Equal(t, true, out["alive"])
	assert.Equal(t, map[string]any{"lat": 1.0, "lon": 2.0}, out["coordinates"],
		"objects without an id are opaque data, not references")
}

func TestFromWire(t *testing.T) {
	c := newCodec()

	r := c.FromWire(map[string]any{
		"id":         otherID,
		"name":       "Eryndor",
		"birthplace": map[string]any{"id": locID, "name": "Harbor"},
		"friends":    []any{map[string]any{"id": friendID}, otherID},
		"stats":      map[string]any{"str": 10.0},
	}, worldID)

	assert.Equal(t, locID, r["birthplace"], "embedded object collapses to its id")
	assert.Equal(t, []any{friendID, otherID}, r["friends"])
	assert.Equal(t, map[string]any{"str": 10.0}, r["stats"], "opaque objects pass through")
	assert.Equal(t, worldID, r["world"], "missing world is backfilled from context")
}

func TestFromWireKeepsExistingWorld(t *testing.T) {
	c := newCodec()

	r := c.FromWire(map[string]any{
		"id":    otherID,
		"world": map[string]any{"id": worldID},
	}, "some-other-world")

	assert.Equal(t, worldID, r["world"])
}

func TestRoundTrip(t *testing.T) {
	c := newCodec()

	// A wire object using only reference and scalar fields survives
	// FromWire then ToWire with values intact.
	w := map[string]any{
		"name":        "Eryndor",
		"age":         41.0,
		"world":       worldID,
		"location_id": locID,
		"friend_ids":  []any{friendID},
	}

	r := c.FromWire(w, worldID)
	out := c.ToWire(r, "name", "age", "world", "location_id", "friend_ids")

	assert.Equal(t, w["name"], out["name"])
	assert.Equal(t, w["age"], out["age"])
	assert.Equal(t, w["world"], out["world"])
	assert.Equal(t, w["location_id"], out["location_id"])
	assert.Equal(t, []string{friendID}, out["friend_ids"])
}

func TestToWirePatchUsesCallerSchema(t *testing.T) {
	c := newCodec()

	// A cleared reference is nil or an empty list, shapes inference can
	// no longer recognize; the caller's classification decides the key.
	patch := c.ToWirePatch(record.Record{
		"patron": nil,
		"wards":  []any{},
	}, map[string]record.FieldSchema{
		"patron": {Kind: record.SingleRef},
		"wards":  {Kind: record.MultiRef},
	})

	require.Contains(t, patch, "patron_id")
	assert.Nil(t, patch["patron_id"])
	assert.Equal(t, []string{}, patch["wards_ids"])
	assert.NotContains(t, patch, "patron")
	assert.NotContains(t, patch, "wards")
}
