// Package servicetest provides an in-memory record.Service for engine
// tests: seedable records, scriptable per-call failures, and call
// counters so tests can assert how many requests an operation issued.
package servicetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// Fake is an in-memory record.Service. The zero value is not usable;
// call NewFake.
type Fake struct {
	mu      sync.Mutex
	records map[string]map[string]record.Record // recordType -> id -> record
	worldID string

	// FailWith, when set for an operation name ("get", "update", ...),
	// makes that operation return the error instead of running.
	FailWith map[string]error

	// Calls counts operations by name.
	Calls map[string]int

	// Updates collects every patch passed to Update, in order.
	Updates []map[string]any

	block func(op string)
}

// NewFake returns an empty fake service.
func NewFake() *Fake {
	return &Fake{
		records:  make(map[string]map[string]record.Record),
		FailWith: make(map[string]error),
		Calls:    make(map[string]int),
	}
}

// Seed stores a record directly, bypassing Create bookkeeping.
func (f *Fake) Seed(recordType string, r record.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[recordType] == nil {
		f.records[recordType] = make(map[string]record.Record)
	}
	f.records[recordType][r.ID()] = r.Clone()
}

// SetWorldID sets the value CurrentWorldID returns.
func (f *Fake) SetWorldID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.worldID = id
}

// CallCount returns how many times the named operation ran.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// SetBlock installs a hook that runs at the start of every operation,
// outside the fake's lock. Tests use it to hold a call open and assert
// sequencing. A nil fn removes the hook.
func (f *Fake) SetBlock(fn func(op string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = fn
}

func (f *Fake) begin(op string) error {
	f.mu.Lock()
	f.Calls[op]++
	err := f.FailWith[op]
	block := f.block
	f.mu.Unlock()
	if block != nil {
		block(op)
	}
	return err
}

// List implements record.Service.
func (f *Fake) List(ctx context.Context, recordType string, filters map[string]string) ([]record.Record, error) {
	if err := f.begin("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []record.Record
	for _, r := range f.records[recordType] {
		match := true
		for k, v := range filters {
			if fmt.Sprint(r[k]) != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Get implements record.Service.
func (f *Fake) Get(ctx context.Context, recordType, id string) (record.Record, error) {
	if err := f.begin("get"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[recordType][id]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", recordType, id, record.ErrNotFound)
	}
	return r.Clone(), nil
}

// Create implements record.Service.
func (f *Fake) Create(ctx context.Context, recordType string, r record.Record) (record.Record, error) {
	if err := f.begin("create"); err != nil {
		return nil, err
	}
	f.Seed(recordType, r)
	return r.Clone(), nil
}

// Update implements record.Service. The patch is applied field-wise to
// the stored record, mimicking the server's merge authority.
func (f *Fake) Update(ctx context.Context, recordType, id string, patch map[string]any) (record.Record, error) {
	if err := f.begin("update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[recordType][id]
	if !ok {
		return nil, fmt.Errorf("update %s/%s: %w", recordType, id, record.ErrNotFound)
	}
	f.Updates = append(f.Updates, patch)
	for k, v := range patch {
		r[k] = v
	}
	return r.Clone(), nil
}

// Delete implements record.Service.
func (f *Fake) Delete(ctx context.Context, recordType, id string) error {
	if err := f.begin("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[recordType][id]; !ok {
		return fmt.Errorf("delete %s/%s: %w", recordType, id, record.ErrNotFound)
	}
	delete(f.records[recordType], id)
	return nil
}

// CurrentWorldID implements record.Service.
func (f *Fake) CurrentWorldID(ctx context.Context) (string, error) {
	if err := f.begin("world"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.worldID, nil
}
