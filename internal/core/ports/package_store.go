// Package ports defines the contracts between the package lifecycle core and its adapters.
// The core depends only on these interfaces; memory, filesystem, postgres and kafka
// adapters implement them.
package ports

import (
	"context"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
)

// CommitFunc receives the event of an accepted mutation. Stores invoke it exactly once
// per accepted mutation while the mutation is still serialized, so it must not block.
type CommitFunc func(event parcel.PackageEvent)

// PackageStore is the authoritative mapping from tracking code to package.
// Every mutation goes through the package state machine; a rejected mutation leaves
// the stored record unchanged and does not call commit.
type PackageStore interface {
	// Insert issues a fresh tracking code and stores a package in Created status.
	// Generator collisions are retried internally; parcel.ErrDuplicateCode is only
	// returned if every retry collided.
	Insert(ctx context.Context, draft parcel.Draft, commit CommitFunc) (parcel.Package, error)

	// Get returns the current snapshot or a not-found error.
	Get(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error)

	// Transition applies t to the stored package.
	//
	// Errors:
	//   - errs.ErrObjectNotFound when the code is unknown or deleted
	//   - *parcel.TransitionError wrapping ErrInvalidTransition, ErrMissingProof or ErrMissingAgent
	Transition(ctx context.Context, code kernel.TrackingCode, t parcel.Transition, commit CommitFunc) (parcel.Package, error)

	// UpdateNotes replaces the notes of a package in any status.
	UpdateNotes(ctx context.Context, code kernel.TrackingCode, notes string, commit CommitFunc) (parcel.Package, error)

	// Remove deletes the package, retires its code and returns the last snapshot.
	Remove(ctx context.Context, code kernel.TrackingCode, commit CommitFunc) (parcel.Package, error)

	// List returns every stored package, most recently created first.
	List(ctx context.Context) ([]parcel.Package, error)

	// Count returns the number of stored packages per status.
	Count(ctx context.Context) (map[parcel.Status]int, error)
}
