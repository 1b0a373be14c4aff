package record

import (
	"github.com/google/uuid"
)

// Well-known field names present on every record.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldWorld     = "world"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Record is one world entity: a mapping from field name to value. Values
// may be scalars, an object carrying at least an "id" (a resolved
// reference), an array of such objects or of bare ID strings, or an
// opaque nested object with no "id" (passed through unchanged).
//
// The record's type is established by the collection it was fetched from;
// it is not stored on the record itself.
type Record map[string]any

// New returns a record with a freshly generated ID and the given name.
func New(name, worldID string) Record {
	r := Record{
		FieldID:   uuid.Must(uuid.NewV7()).String(),
		FieldName: name,
	}
	if worldID != "" {
		r[FieldWorld] = worldID
	}
	return r
}

// ID returns the record's stable identifier, or "" when absent.
func (r Record) ID() string {
	s, _ := r[FieldID].(string)
	return s
}

// Name returns the record's display name, or "" when absent.
func (r Record) Name() string {
	s, _ := r[FieldName].(string)
	return s
}

// WorldID returns the owning world's ID, unwrapping an embedded world
// object to its id. Returns "" when the world is absent or null.
func (r Record) WorldID() string {
	return RefID(r[FieldWorld])
}

// Clone returns a shallow copy of the record. Nested objects and slices
// are shared; callers that mutate nested values must copy them first.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RefID extracts a record ID from a reference value: a bare ID string is
// returned as-is, an object with an "id" string yields that id, anything
// else yields "".
func RefID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if id, ok := t[FieldID].(string); ok {
			return id
		}
	case Record:
		return t.ID()
	}
	return ""
}

// RefIDs extracts the IDs from a multi-reference value, dropping entries
// with no extractable ID. A nil or non-array value yields an empty slice.
func RefIDs(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if id := RefID(item); id != "" {
			out = append(out, id)
		}
	}
	return out
}
