// Package guard enforces that two records belong to the same world
// before a link between them is committed.
package guard

import (
	"context"
	"fmt"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// Decision is the guard's verdict on a proposed link.
type Decision int

const (
	// Deny blocks the link: at least one endpoint has no resolvable
	// world, and a link without world context has historically been
	// rejected server-side with no useful feedback.
	Deny Decision = iota
	// Confirm lets the user decide: both worlds are known but differ.
	// The server will likely reject the link, but legitimate
	// cross-world references may exist, so this is not a hard deny.
	Confirm
	// Allow commits the link: both worlds resolve and match.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Deny:
		return "deny"
	case Confirm:
		return "confirm"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Guard decides link validity against the current world context.
type Guard struct {
	svc record.Service
}

// New builds a guard over the given service.
func New(svc record.Service) *Guard {
	return &Guard{svc: svc}
}

// Validate inspects both endpoints' worlds. A source with no world of
// its own gets one chance to inherit the session's current world before
// the missing-world deny applies. The returned error carries the reason
// for a Deny; Confirm and Allow return a nil error.
func (g *Guard) Validate(ctx context.Context, source, target record.Record) (Decision, error) {
	sourceWorld := source.WorldID()
	if sourceWorld == "" {
		current, err := g.svc.CurrentWorldID(ctx)
		if err == nil {
			sourceWorld = current
		}
	}
	targetWorld := target.WorldID()

	switch {
	case sourceWorld == "" || targetWorld == "":
		return Deny, fmt.Errorf("linking %q to %q: %w", source.Name(), target.Name(), record.ErrWorldUnknown)
	case sourceWorld != targetWorld:
		return Confirm, nil
	default:
		return Allow, nil
	}
}

// ValidateLink is the boolean form the editor uses: confirm plays the
// "ask the user" role via the callback, and every failure path comes
// back as false, never as a panic or an error the UI has to interpret.
// A nil confirm treats mismatched worlds as declined.
func (g *Guard) ValidateLink(ctx context.Context, source, target record.Record, confirm func(sourceWorld, targetWorld string) bool) bool {
	decision, _ := g.Validate(ctx, source, target)
	switch decision {
	case Allow:
		return true
	case Confirm:
		if confirm == nil {
			return false
		}
		return confirm(source.WorldID(), target.WorldID())
	default:
		return false
	}
}
