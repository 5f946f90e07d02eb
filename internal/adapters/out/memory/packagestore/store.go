// Package packagestore is the in-memory, concurrency-safe implementation of
// ports.PackageStore. It is the single source of truth for package state.
package packagestore

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// MaxInsertAttempts bounds how many fresh codes Insert tries before giving up with
// parcel.ErrDuplicateCode.
const MaxInsertAttempts = 16

var _ ports.PackageStore = (*Store)(nil)

type entry struct {
	pkg parcel.Package
	seq uint64
}

// Store maps tracking codes to package snapshots.
//
// All mutations take the write lock and run the state machine inside it, then hand the
// resulting event to the commit callback before releasing the lock. Reads take the read
// lock and return copies.
type Store struct {
	mu       sync.RWMutex
	packages map[kernel.TrackingCode]*entry
	retired  map[kernel.TrackingCode]struct{}
	seq      uint64

	generator kernel.CodeGenerator
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithGenerator replaces the default time-ordered code generator.
func WithGenerator(g kernel.CodeGenerator) Option {
	return func(s *Store) { s.generator = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		packages:  make(map[kernel.TrackingCode]*entry),
		retired:   make(map[kernel.TrackingCode]struct{}),
		generator: kernel.NewTimeOrderedGenerator(),
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "PackageStore")
	return s
}

// Insert issues a fresh code for draft and stores the new package.
func (s *Store) Insert(ctx context.Context, draft parcel.Draft, commit ports.CommitFunc) (parcel.Package, error) {
	if err := ctx.Err(); err != nil {
		return parcel.Package{}, err
	}
	if err := draft.Validate(); err != nil {
		return parcel.Package{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= MaxInsertAttempts; attempt++ {
		code := s.generator.Generate()
		if s.taken(code) {
			s.logger.Debug("tracking code collision, retrying", "code", code.String(), "attempt", attempt)
			continue
		}

		pkg, err := parcel.NewPackage(code, draft, s.now())
		if err != nil {
			return parcel.Package{}, err
		}

		s.seq++
		s.packages[code] = &entry{pkg: pkg, seq: s.seq}
		s.commit(commit, parcel.PackageCreated, parcel.ActionCreate, pkg)

		return pkg, nil
	}

	s.logger.Error("tracking code generator exhausted", "attempts", MaxInsertAttempts)
	return parcel.Package{}, fmt.Errorf("%w: %d attempts collided", parcel.ErrDuplicateCode, MaxInsertAttempts)
}

// Get returns the current snapshot for code.
func (s *Store) Get(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
	if err := ctx.Err(); err != nil {
		return parcel.Package{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.packages[code]
	if !ok {
		return parcel.Package{}, parcel.NewNotFoundError(code)
	}
	return e.pkg, nil
}

// Transition applies t to the stored package. A rejected transition leaves the record as is.
func (s *Store) Transition(
	ctx context.Context,
	code kernel.TrackingCode,
	t parcel.Transition,
	commit ports.CommitFunc,
) (parcel.Package, error) {
	return s.mutate(ctx, code, parcel.ActionOf(t.Kind()), commit, func(p parcel.Package, now time.Time) (parcel.Package, error) {
		return p.Apply(t, now)
	})
}

// UpdateNotes replaces the notes of the stored package.
func (s *Store) UpdateNotes(
	ctx context.Context,
	code kernel.TrackingCode,
	notes string,
	commit ports.CommitFunc,
) (parcel.Package, error) {
	return s.mutate(ctx, code, parcel.ActionUpdateNotes, commit, func(p parcel.Package, now time.Time) (parcel.Package, error) {
		return p.WithNotes(notes, now)
	})
}

// Remove deletes the package and retires its code for good.
func (s *Store) Remove(ctx context.Context, code kernel.TrackingCode, commit ports.CommitFunc) (parcel.Package, error) {
	if err := ctx.Err(); err != nil {
		return parcel.Package{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.packages[code]
	if !ok {
		return parcel.Package{}, parcel.NewNotFoundError(code)
	}

	last := e.pkg.Tombstone(s.now())
	delete(s.packages, code)
	s.retired[code] = struct{}{}
	s.commit(commit, parcel.PackageDeleted, parcel.ActionDelete, last)

	return last, nil
}

// List returns all packages, most recently created first.
func (s *Store) List(ctx context.Context) ([]parcel.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries := make([]*entry, 0, len(s.packages))
	for _, e := range s.packages {
		entries = append(entries, &entry{pkg: e.pkg, seq: e.seq})
	}
	s.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]parcel.Package, len(entries))
	for i, e := range entries {
		out[i] = e.pkg
	}
	return out, nil
}

// Count returns a status histogram. Every valid status is present, possibly with zero.
func (s *Store) Count(ctx context.Context) (map[parcel.Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[parcel.Status]int, len(parcel.Statuses()))
	for _, status := range parcel.Statuses() {
		counts[status] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.packages {
		counts[e.pkg.Status()]++
	}
	return counts, nil
}

func (s *Store) mutate(
	ctx context.Context,
	code kernel.TrackingCode,
	action parcel.Action,
	commit ports.CommitFunc,
	fn func(parcel.Package, time.Time) (parcel.Package, error),
) (parcel.Package, error) {
	if err := ctx.Err(); err != nil {
		return parcel.Package{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.packages[code]
	if !ok {
		return parcel.Package{}, parcel.NewNotFoundError(code)
	}

	next, err := fn(e.pkg, s.now())
	if err != nil {
		return parcel.Package{}, err
	}

	e.pkg = next
	s.commit(commit, parcel.PackageUpdated, action, next)

	return next, nil
}

func (s *Store) taken(code kernel.TrackingCode) bool {
	if code.IsZero() {
		return true
	}
	if _, ok := s.packages[code]; ok {
		return true
	}
	_, ok := s.retired[code]
	return ok
}

func (s *Store) commit(fn ports.CommitFunc, kind parcel.PackageEventKind, action parcel.Action, pkg parcel.Package) {
	if fn == nil {
		return
	}
	fn(parcel.PackageEvent{
		Kind:       kind,
		Action:     action,
		Package:    pkg,
		OccurredAt: pkg.UpdatedAt(),
	})
}
