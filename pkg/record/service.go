package record

import "context"

// Service is the persistence contract the engine consumes, one method set
// covering every record type. Implementations must return ErrNotFound
// (wrapped is fine) when a record is absent, so the integrity checker can
// tell "gone" apart from "unreachable".
type Service interface {
	// List returns the records of one type, optionally filtered by
	// exact-match field values.
	List(ctx context.Context, recordType string, filters map[string]string) ([]Record, error)

	// Get retrieves one record by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, recordType, id string) (Record, error)

	// Create stores a new record and returns it as persisted.
	Create(ctx context.Context, recordType string, r Record) (Record, error)

	// Update applies a partial wire-format patch and returns the full
	// record as persisted. The server is the merge authority.
	Update(ctx context.Context, recordType, id string, patch map[string]any) (Record, error)

	// Delete removes a record. Returns ErrNotFound if absent.
	Delete(ctx context.Context, recordType, id string) error

	// CurrentWorldID returns the ID of the world the session operates
	// on, or "" when no world context is available.
	CurrentWorldID(ctx context.Context) (string, error)
}
