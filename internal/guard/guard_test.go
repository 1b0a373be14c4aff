package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyWorlds/worldtool/internal/servicetest"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

const (
	worldA = "018f0000-0000-7000-8000-0000000000a1"
	worldB = "018f0000-0000-7000-8000-0000000000b2"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		sourceWorld  any
		targetWorld  any
		currentWorld string
		want         Decision
	}{
		{
			name:        "matching worlds allow",
			sourceWorld: worldA,
			targetWorld: worldA,
			want:        Allow,
		},
		{
			name:        "matching via embedded object",
			sourceWorld: map[string]any{"id": worldA},
			targetWorld: worldA,
			want:        Allow,
		},
		{
			name:        "mismatched worlds ask the user",
			sourceWorld: worldA,
			targetWorld: worldB,
			want:        Confirm,
		},
		{
			name:         "missing source world inherits current world",
			sourceWorld:  nil,
			targetWorld:  worldA,
			currentWorld: worldA,
			want:         Allow,
		},
		{
			name:         "missing source world with mismatched current",
			sourceWorld:  nil,
			targetWorld:  worldB,
			currentWorld: worldA,
			want:         Confirm,
		},
		{
			name:        "missing source world and no current world",
			sourceWorld: nil,
			targetWorld: worldA,
			want:        Deny,
		},
		{
			name:        "missing target world",
			sourceWorld: worldA,
			targetWorld: nil,
			want:        Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := servicetest.NewFake()
			svc.SetWorldID(tt.currentWorld)
			g := New(svc)

			source := record.Record{"id": "s", "name": "Source"}
			if tt.sourceWorld != nil {
				source["world"] = tt.sourceWorld
			}
			target := record.Record{"id": "t", "name": "Target"}
			if tt.targetWorld != nil {
				target["world"] = tt.targetWorld
			}

			got, err := g.Validate(context.Background(), source, target)
			assert.Equal(t, tt.want, got)
			if tt.want == Deny {
				require.ErrorIs(t, err, record.ErrWorldUnknown)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateLookupFailureDenies(t *testing.T) {
	svc := servicetest.NewFake()
	svc.FailWith["world"] = record.ErrUnavailable
	g := New(svc)

	source := record.Record{"id": "s"}
	target := record.Record{"id": "t", "world": worldA}

	// The lookup failing is not an exception: the link is denied and
	// the caller learns it from the return value.
	got, err := g.Validate(context.Background(), source, target)
	assert.Equal(t, Deny, got)
	require.ErrorIs(t, err, record.ErrWorldUnknown)

	assert.False(t, g.ValidateLink(context.Background(), source, target, nil))
}

func TestValidateLink(t *testing.T) {
	svc := servicetest.NewFake()
	g := New(svc)

	same := record.Record{"id": "a", "world": worldA}
	other := record.Record{"id": "b", "world": worldB}

	assert.True(t, g.ValidateLink(context.Background(), same, same, nil))

	// Mismatch asks the callback.
	asked := false
	ok := g.ValidateLink(context.Background(), same, other, func(sw, tw string) bool {
		asked = true
		assert.Equal(t, worldA, sw)
		assert.Equal(t, worldB, tw)
		return true
	})
	assert.True(t, ok)
	assert.True(t, asked)

	// Declined confirmation blocks the link.
	assert.False(t, g.ValidateLink(context.Background(), same, other, func(_, _ string) bool {
		return false
	}))

	// No callback means mismatches are declined.
	assert.False(t, g.ValidateLink(context.Background(), same, other, nil))
}
