// Package resolve maps reference fields to the record type they target.
// Resolution is an ordered chain of strategies; the first one with an
// answer wins. The remote probe is deliberately not part of the chain:
// it costs one request per record type and is only for callers that have
// an ID in hand and no other way to classify it.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// strategy answers "what type does this field target", or declines.
type strategy func(field string) (string, bool)

// Resolver resolves reference targets from the schema table, field name
// heuristics, and (on request) the remote service.
type Resolver struct {
	engine     *schema.Engine
	svc        record.Service
	strategies []strategy
}

// New builds a resolver over the given schema engine and service.
func New(engine *schema.Engine, svc record.Service) *Resolver {
	r := &Resolver{engine: engine, svc: svc}
	r.strategies = []strategy{
		r.tableLookup,
		r.nameHeuristic,
	}
	return r
}

// Target returns the record type a field points at, or "" when the
// field is a generic reference (or not a reference at all). A "" result
// means the UI must render the value as an opaque ID, not a picker.
func (r *Resolver) Target(field string) string {
	for _, s := range r.strategies {
		if target, ok := s(field); ok {
			return target
		}
	}
	return ""
}

// tableLookup answers from the schema table when the entry declares a
// target.
func (r *Resolver) tableLookup(field string) (string, bool) {
	if fs, ok := r.engine.Lookup(field); ok && fs.Target != "" {
		return fs.Target, true
	}
	return "", false
}

// nameHeuristic strips a wire suffix and a trailing plural and checks
// the remainder against the known record types: "birthplace_id" and
// "creatures" both miss, "location_id" and "events" both hit.
func (r *Resolver) nameHeuristic(field string) (string, bool) {
	name := strings.ToLower(field)
	name = strings.TrimSuffix(name, "_ids")
	name = strings.TrimSuffix(name, "_id")
	if record.IsValidType(name) {
		return name, true
	}
	if stripped := strings.TrimSuffix(name, "s"); stripped != name && record.IsValidType(stripped) {
		return stripped, true
	}
	return "", false
}

// TypeForID discovers which collection holds an ID by asking each one in
// turn. Not-found answers are part of the search, not errors; any other
// failure aborts, since a partial scan can misattribute the ID. Returns
// "" when no collection claims it. Worst case is one request per record
// type, so this runs only after Target has come up empty.
func (r *Resolver) TypeForID(ctx context.Context, id string) (string, error) {
	if !record.IsRecordID(id) {
		return "", fmt.Errorf("probing %q: %w", id, record.ErrInvalidID)
	}
	for _, recordType := range record.Types() {
		_, err := r.svc.Get(ctx, recordType, id)
		if err == nil {
			return recordType, nil
		}
		if errors.Is(err, record.ErrNotFound) {
			continue
		}
		return "", fmt.Errorf("probing %s for %s: %w", recordType, id, err)
	}
	return "", nil
}
