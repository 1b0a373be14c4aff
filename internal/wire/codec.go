// Package wire translates between the in-memory record shape (references
// as nested objects or bare IDs) and the wire shape (references as
// suffixed <field>_id / <field>_ids keys).
package wire

import (
	"strings"

	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// Codec converts records for one schema engine. Classification of each
// field comes from the engine, so a codec sees exactly the table its
// session has learned.
type Codec struct {
	engine *schema.Engine
}

// New returns a codec over the given engine.
func New(engine *schema.Engine) *Codec {
	return &Codec{engine: engine}
}

// readOnly lists fields never written back to the server.
var readOnly = map[string]bool{
	record.FieldID:        true,
	record.FieldCreatedAt: true,
	record.FieldUpdatedAt: true,
}

// ToWire serializes a record for a write. With field names given, only
// those fields are serialized (a partial update); otherwise the whole
// record minus read-only fields.
//
// The world field always serializes to the bare key "world", as an ID
// string or an explicit null — omitting it reads as "no change" on the
// server and has broken relationship updates before. Other reference
// fields gain a _id/_ids suffix unless already suffixed, and a null
// reference still emits its suffixed key (null for single, empty array
// for multi): the server identifies reference fields by the suffixed key
// name, not the bare one.
func (c *Codec) ToWire(r record.Record, changed ...string) map[string]any {
	fields := changed
	if len(fields) == 0 {
		fields = make([]string, 0, len(r))
		for k := range r {
			fields = append(fields, k)
		}
	}

	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if readOnly[field] {
			continue
		}
		value := r[field]

		if field == record.FieldWorld {
			out[record.FieldWorld] = nullableID(value)
			continue
		}

		c.encode(out, field, value, c.engine.Infer(field, value))
	}
	return out
}

// ToWirePatch serializes exactly the fields named in schemas, using the
// caller's classification instead of re-inferring from the value.
// Repair needs this: a cleared reference (nil, or an emptied list) no
// longer looks like a reference, and re-inference would emit the bare
// key, which the server ignores.
func (c *Codec) ToWirePatch(r record.Record, schemas map[string]record.FieldSchema) map[string]any {
	out := make(map[string]any, len(schemas))
	for field, fs := range schemas {
		if readOnly[field] {
			continue
		}
		value := r[field]

		if field == record.FieldWorld {
			out[record.FieldWorld] = nullableID(value)
			continue
		}
		c.encode(out, field, value, fs)
	}
	return out
}

func (c *Codec) encode(out map[string]any, field string, value any, fs record.FieldSchema) {
	switch fs.Kind {
	case record.SingleRef:
		out[suffixed(field, "_id")] = nullableID(value)
	case record.MultiRef:
		out[suffixed(field, "_ids")] = record.RefIDs(value)
	default:
		out[field] = value
	}
}

// FromWire normalizes a server response into the in-memory shape:
// embedded referenced objects collapse to their bare IDs, and a missing
// world is backfilled from the session's world context so no record
// circulates without an owner.
func (c *Codec) FromWire(obj map[string]any, worldID string) record.Record {
	r := make(record.Record, len(obj)+1)
	for field, value := range obj {
		r[field] = normalize(value)
	}
	if record.RefID(r[record.FieldWorld]) == "" && worldID != "" {
		r[record.FieldWorld] = worldID
	}
	return r
}

// normalize collapses reference objects and arrays of them to bare IDs.
// Objects without an id are opaque data and pass through untouched.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if id, ok := v[record.FieldID].(string); ok {
			return id
		}
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return value
	}
}

// nullableID extracts an ID or yields an explicit nil, never "".
func nullableID(value any) any {
	if id := record.RefID(value); id != "" {
		return id
	}
	return nil
}

// suffixed appends suffix unless the field already carries it.
func suffixed(field, suffix string) string {
	if strings.HasSuffix(field, suffix) {
		return field
	}
	return field + suffix
}
