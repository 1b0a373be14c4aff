// Package schema owns the field schema table and the type inference
// engine: given a field name and, optionally, a literal sample value, it
// decides whether the field is a scalar, opaque structured data, or a
// reference to other records, and which record type a reference targets.
package schema

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

//go:embed schema.yaml
var schemaYAML []byte

// datePattern matches ISO dates with an optional time suffix. Anything
// looser (free-text dates) stays a plain string.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)

// tableFile is the YAML shape of the embedded static table.
type tableFile struct {
	Version           int         `yaml:"version"`
	LongTextThreshold int         `yaml:"long_text_threshold"`
	Fields            []tableItem `yaml:"fields"`
}

type tableItem struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
}

// Engine holds the static field table, fields learned from observed
// records, and the inference cache. All state is owned here; two engines
// never share anything, so tests and parallel sessions cannot
// cross-contaminate.
type Engine struct {
	mu            sync.RWMutex
	table         map[string]record.FieldSchema
	cache         map[string]record.FieldSchema
	longTextLimit int
}

// NewEngine loads the embedded static table. The table ships with the
// binary, so a load failure is a build defect and panics.
func NewEngine() *Engine {
	e, err := newEngineFrom(schemaYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded schema table: %v", err))
	}
	return e
}

func newEngineFrom(data []byte) (*Engine, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing schema table: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported schema table version: %d", f.Version)
	}

	e := &Engine{
		table:         make(map[string]record.FieldSchema, len(f.Fields)),
		cache:         make(map[string]record.FieldSchema),
		longTextLimit: f.LongTextThreshold,
	}
	if e.longTextLimit <= 0 {
		e.longTextLimit = 200
	}

	for i, item := range f.Fields {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			return nil, fmt.Errorf("schema table field %d has empty name", i)
		}
		if _, exists := e.table[name]; exists {
			return nil, fmt.Errorf("duplicate schema table field: %s", name)
		}
		fs := record.FieldSchema{Kind: record.KindFromString(item.Kind), Target: item.Target}
		if item.Target != "" && !record.IsValidType(item.Target) {
			return nil, fmt.Errorf("schema table field %s targets unknown type: %s", name, item.Target)
		}
		e.table[name] = fs
	}
	return e, nil
}

// Lookup returns the table entry for a field name, static or learned.
func (e *Engine) Lookup(field string) (record.FieldSchema, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fs, ok := e.table[strings.ToLower(field)]
	return fs, ok
}

// Infer classifies a field. With no sample it answers from the table,
// defaulting to a plain string scalar. With a sample, the literal value
// wins over the static guess: an ID-shaped string is a reference even if
// the table says scalar. Results are cached per (field, sample bucket)
// and never invalidated within an engine's lifetime; field semantics are
// assumed stable once observed.
func (e *Engine) Infer(field string, sample any) record.FieldSchema {
	name := strings.ToLower(field)
	if sample == nil {
		return e.static(name)
	}

	key := name + "|" + sampleBucket(sample)
	e.mu.RLock()
	if fs, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return fs
	}
	e.mu.RUnlock()

	fs := e.classify(name, sample)
	e.mu.Lock()
	e.cache[key] = fs
	e.mu.Unlock()
	return fs
}

func (e *Engine) static(name string) record.FieldSchema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if fs, ok := e.table[name]; ok {
		return fs
	}
	return record.FieldSchema{Kind: record.ScalarString}
}

// classify runs the value-based decision ladder from top to bottom.
func (e *Engine) classify(name string, sample any) record.FieldSchema {
	switch v := sample.(type) {
	case []any:
		if len(v) == 0 {
			return e.static(name)
		}
		switch first := v[0].(type) {
		case string:
			if record.IsRecordID(first) {
				return e.withTableTarget(name, record.MultiRef)
			}
			return record.FieldSchema{Kind: record.StringList}
		case map[string]any:
			if _, ok := first[record.FieldID]; ok {
				return e.withTableTarget(name, record.MultiRef)
			}
		}
		return record.FieldSchema{Kind: record.Object}
	case map[string]any:
		if _, ok := v[record.FieldID]; ok {
			return e.withTableTarget(name, record.SingleRef)
		}
		return record.FieldSchema{Kind: record.Object}
	case bool:
		return record.FieldSchema{Kind: record.ScalarBool}
	case int, int64, float64:
		return record.FieldSchema{Kind: record.ScalarNumber}
	case string:
		if record.IsRecordID(v) {
			return e.withTableTarget(name, record.SingleRef)
		}
		if datePattern.MatchString(v) {
			return record.FieldSchema{Kind: record.ScalarDate}
		}
		if len(v) > e.longTextLimit {
			return record.FieldSchema{Kind: record.LongText}
		}
		return record.FieldSchema{Kind: record.ScalarString}
	default:
		return e.static(name)
	}
}

// withTableTarget keeps the static table's target when the value only
// proves the field is a reference, not what it points at.
func (e *Engine) withTableTarget(name string, kind record.Kind) record.FieldSchema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fs := record.FieldSchema{Kind: kind}
	if entry, ok := e.table[name]; ok && entry.Target != "" {
		fs.Target = entry.Target
	}
	return fs
}

// sampleBucket collapses a sample value to its coarse shape for cache
// keying. Two strings land in the same bucket even when their content
// would classify differently; the first observation wins, which is the
// accepted staleness of the inference cache.
func sampleBucket(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case bool:
		return "bool"
	case int, int64, float64:
		return "number"
	case string:
		return "string"
	default:
		return "other"
	}
}

// Observe learns field entries from a server-returned record: fields the
// table has never seen are classified from their value and remembered.
// Known entries are never overwritten here; only Infer's sample override
// can contradict the table, and only per call.
func (e *Engine) Observe(r record.Record) {
	for field, value := range r {
		if value == nil {
			continue
		}
		name := strings.ToLower(field)
		e.mu.RLock()
		_, known := e.table[name]
		e.mu.RUnlock()
		if known {
			continue
		}
		fs := e.classify(name, value)
		e.mu.Lock()
		if _, raced := e.table[name]; !raced {
			e.table[name] = fs
		}
		e.mu.Unlock()
	}
}
