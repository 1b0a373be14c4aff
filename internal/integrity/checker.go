// Package integrity detects and repairs dangling references: reference
// fields whose target ID no longer resolves to a live record.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OnlyWorlds/worldtool/internal/resolve"
	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/internal/wire"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// Evicter drops a record from a read cache. Existence checks must go to
// the network; a stale cache hit would mask a deletion.
type Evicter interface {
	Evict(recordType, id string)
}

// Checker walks a record's reference fields and strips the ones whose
// targets are gone.
type Checker struct {
	svc      record.Service
	engine   *schema.Engine
	resolver *resolve.Resolver
	codec    *wire.Codec
	evicter  Evicter
	log      *slog.Logger
}

// New builds a checker. evicter may be nil when the service has no
// cache in front of it.
func New(svc record.Service, engine *schema.Engine, resolver *resolve.Resolver, codec *wire.Codec, evicter Evicter, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{svc: svc, engine: engine, resolver: resolver, codec: codec, evicter: evicter, log: log}
}

// Repair verifies every reference field on the record, removes dangling
// targets (null for single, filtered for multi), and clears any field
// whose target type cannot be determined at all — an unverifiable link
// counts as no link. If anything changed, the cleaned record is
// persisted with a single update; an untouched record produces no
// write, so Repair is safe to call speculatively and is idempotent.
//
// Transport failures abort without mutating: a reference is only
// dangling when the server positively says "not found".
func (c *Checker) Repair(ctx context.Context, r record.Record, recordType string) (record.Record, error) {
	repaired := r.Clone()
	// Changed fields carry their pre-clear classification: once a
	// reference is nulled or emptied, the value alone no longer proves
	// it was a reference, so serialization must not re-infer.
	changed := make(map[string]record.FieldSchema)

	for field, value := range r {
		if field == record.FieldWorld || value == nil {
			continue
		}
		fs := c.engine.Infer(field, value)
		if !fs.IsReference() {
			continue
		}

		target, err := c.targetType(ctx, field, fs, value)
		if err != nil {
			return nil, err
		}
		if target == "" {
			// Unverifiable: clear rather than leave unchecked.
			c.log.Debug("clearing unverifiable reference", "field", field)
			repaired[field] = clearedValue(fs.Kind)
			changed[field] = fs
			continue
		}

		switch fs.Kind {
		case record.SingleRef:
			id := record.RefID(value)
			if id == "" {
				continue
			}
			ok, err := c.exists(ctx, target, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				c.log.Info("stripping dangling reference",
					"field", field, "target_type", target, "target_id", id)
				repaired[field] = nil
				changed[field] = fs
			}
		case record.MultiRef:
			ids := record.RefIDs(value)
			kept := make([]any, 0, len(ids))
			for _, id := range ids {
				ok, err := c.exists(ctx, target, id)
				if err != nil {
					return nil, err
				}
				if ok {
					kept = append(kept, id)
				}
			}
			if len(kept) != len(ids) {
				c.log.Info("filtering dangling references",
					"field", field, "target_type", target,
					"removed", len(ids)-len(kept))
				repaired[field] = kept
				changed[field] = fs
			}
		}
	}

	if len(changed) == 0 {
		return r, nil
	}

	patch := c.codec.ToWirePatch(repaired, changed)
	persisted, err := c.svc.Update(ctx, recordType, r.ID(), patch)
	if err != nil {
		return nil, fmt.Errorf("persisting repaired record: %w", err)
	}
	return persisted, nil
}

// targetType resolves what a reference field points at: the schema entry
// first, then name heuristics, then a remote probe on the first ID.
func (c *Checker) targetType(ctx context.Context, field string, fs record.FieldSchema, value any) (string, error) {
	if fs.Target != "" {
		return fs.Target, nil
	}
	if target := c.resolver.Target(field); target != "" {
		return target, nil
	}

	probeID := record.RefID(value)
	if probeID == "" {
		if ids := record.RefIDs(value); len(ids) > 0 {
			probeID = ids[0]
		}
	}
	if probeID == "" {
		return "", nil
	}
	target, err := c.resolver.TypeForID(ctx, probeID)
	if err != nil {
		return "", fmt.Errorf("resolving target of %s: %w", field, err)
	}
	return target, nil
}

// exists asks the server whether a record is still there, bypassing any
// cache in front of it.
func (c *Checker) exists(ctx context.Context, recordType, id string) (bool, error) {
	if c.evicter != nil {
		c.evicter.Evict(recordType, id)
	}
	_, err := c.svc.Get(ctx, recordType, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, record.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s/%s: %w", recordType, id, err)
}

func clearedValue(kind record.Kind) any {
	if kind == record.MultiRef {
		return []any{}
	}
	return nil
}
