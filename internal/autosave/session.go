// Package autosave implements the optimistic auto-save editor protocol:
// per-field dirty tracking, debounced persistence, and rollback-free
// error reporting for exactly one record under edit.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/internal/wire"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// Status is the session's externally visible save state.
type Status int

const (
	Clean Status = iota
	Dirty
	Saving
	Error
)

func (s Status) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultDebounce is how long edits coalesce before a save fires.
const DefaultDebounce = 2 * time.Second

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithStatusFunc subscribes to status transitions. The callback runs
// outside the session lock, in whatever goroutine caused the
// transition; it must not block.
func WithStatusFunc(fn func(Status)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// WithLogger overrides the session logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// Session owns one record under edit. Lifecycle: created when the
// editor opens a record, torn down when the editor navigates away —
// teardown flushes pending edits rather than discarding them. Saves are
// strictly sequential within a session; nothing stops two sessions an
// ill-behaved caller opens on the same record, which is a documented
// limitation, not a guarantee.
type Session struct {
	mu         sync.Mutex
	svc        record.Service
	engine     *schema.Engine
	codec      *wire.Codec
	recordType string
	rec        record.Record
	snapshot   record.Record
	dirty      map[string]struct{}
	status     Status
	saving     bool
	saveDone   *sync.Cond
	closed     bool
	lastErr    error
	task       delayedTask
	debounce   time.Duration
	onStatus   func(Status)
	log        *slog.Logger
}

// NewSession opens an auto-save session for one record.
func NewSession(svc record.Service, engine *schema.Engine, codec *wire.Codec, recordType string, r record.Record, opts ...Option) *Session {
	s := &Session{
		svc:        svc,
		engine:     engine,
		codec:      codec,
		recordType: recordType,
		rec:        r.Clone(),
		snapshot:   r.Clone(),
		dirty:      make(map[string]struct{}),
		debounce:   DefaultDebounce,
		log:        slog.Default(),
	}
	s.saveDone = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edit applies a raw editor value to a field and marks it dirty. The
// value is coerced per the field's declared kind (checkbox state to
// bool, numeric text to number with "" as null, comma-separated text to
// a list, JSON text to an object with string fallback).
func (s *Session) Edit(field string, raw any) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fs := s.engine.Infer(field, s.snapshot[field])
	s.rec[field] = coerce(fs, raw)
	s.mu.Unlock()

	s.MarkDirty(field)
}

// MarkDirty adds a field to the dirty set and (re)starts the debounce
// window. Edits to the same or different fields within the window
// coalesce into a single save.
func (s *Session) MarkDirty(field string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.dirty[field] = struct{}{}
	notify := s.setStatusLocked(Dirty)
	s.task.Schedule(s.debounce, s.fire)
	s.mu.Unlock()
	notify()
}

// CancelField restores a field to its pre-edit snapshot value and
// removes it from the dirty set.
func (s *Session) CancelField(field string) {
	s.mu.Lock()
	if _, ok := s.snapshot[field]; ok {
		s.rec[field] = s.snapshot[field]
	} else {
		delete(s.rec, field)
	}
	delete(s.dirty, field)
	notify := func() {}
	if len(s.dirty) == 0 && !s.saving {
		s.task.Cancel()
		notify = s.setStatusLocked(Clean)
	}
	s.mu.Unlock()
	notify()
}

// SaveNow flushes the dirty set immediately, bypassing the debounce.
func (s *Session) SaveNow(ctx context.Context) error {
	s.task.Cancel()
	return s.save(ctx)
}

// Teardown closes the session. Pending dirty fields are flushed with a
// final save — an edit in flight is worth more than a clean exit — and
// the save error, if any, is logged, not returned: there is nobody left
// to retry. A save already in flight is waited out first, so fields
// edited during that save flush too instead of being dropped.
func (s *Session) Teardown() {
	s.task.Cancel()

	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		for s.saving {
			s.saveDone.Wait()
		}
		if len(s.dirty) == 0 {
			s.closed = true
			s.mu.Unlock()
			return
		}
		id := s.rec.ID()
		s.mu.Unlock()

		if err := s.save(context.Background()); err != nil {
			s.log.Warn("teardown flush failed", "record", id, "error", err)
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			return
		}
	}
}

// Status returns the current save state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the most recent save failure, cleared by the next
// successful save.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Record returns a copy of the record as currently edited.
func (s *Session) Record() record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// DirtyFields returns the names of fields edited but not yet persisted.
func (s *Session) DirtyFields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for f := range s.dirty {
		out = append(out, f)
	}
	return out
}

// fire runs on the debounce timer. A fire landing while a previous save
// is still in flight re-arms instead of overlapping: the dirty set
// keeps accumulating and goes out on the next fire.
func (s *Session) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.saving {
		s.task.Schedule(s.debounce, s.fire)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = s.save(context.Background())
}

// save submits the dirty subset as one partial update. On success the
// server's returned record replaces local state wholesale — the server
// is the merge authority, optimistic values are discarded. On failure
// the dirty set survives untouched so a manual retry resubmits the same
// pending change; there is no automatic retry.
func (s *Session) save(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return record.ErrSessionClosed
	}
	if s.saving || len(s.dirty) == 0 {
		s.mu.Unlock()
		return nil
	}
	// Drain the dirty set: fields edited again while the save is in
	// flight re-enter it and go out on the next fire.
	fields := make([]string, 0, len(s.dirty))
	for f := range s.dirty {
		fields = append(fields, f)
	}
	s.dirty = make(map[string]struct{})
	patch := s.codec.ToWire(s.rec, fields...)
	id := s.rec.ID()
	s.saving = true
	notify := s.setStatusLocked(Saving)
	s.mu.Unlock()
	notify()

	saved, err := s.svc.Update(ctx, s.recordType, id, patch)

	s.mu.Lock()
	s.saving = false
	s.saveDone.Broadcast()
	if err != nil {
		// The failed fields stay dirty so a retry resubmits the same
		// pending change.
		for _, f := range fields {
			s.dirty[f] = struct{}{}
		}
		s.lastErr = err
		s.log.Warn("save failed", "record", id, "fields", fields, "error", err)
		notifyErr := s.setStatusLocked(Error)
		notifyDirty := s.setStatusLocked(Dirty)
		s.mu.Unlock()
		notifyErr()
		notifyDirty()
		return fmt.Errorf("saving %s/%s: %w", s.recordType, id, err)
	}

	s.lastErr = nil
	merged := saved.Clone()
	for f := range s.dirty {
		// Values edited mid-save outrank the server's copy of those
		// fields; everything else is the server's answer.
		merged[f] = s.rec[f]
	}
	s.rec = merged
	s.snapshot = saved.Clone()
	s.engine.Observe(saved)
	var notifyDone func()
	if len(s.dirty) == 0 {
		notifyDone = s.setStatusLocked(Clean)
	} else {
		// Edits arrived mid-save; they stay dirty for the next window.
		notifyDone = s.setStatusLocked(Dirty)
	}
	s.mu.Unlock()
	notifyDone()
	return nil
}

// setStatusLocked records a transition and returns the notification to
// run after the lock is released. Caller must hold s.mu.
func (s *Session) setStatusLocked(next Status) func() {
	if s.status == next || s.onStatus == nil {
		s.status = next
		return func() {}
	}
	s.status = next
	fn := s.onStatus
	return func() { fn(next) }
}
