package ports

import (
	"context"
	"time"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
)

// JournalEntry is one persisted package event.
type JournalEntry struct {
	Code            kernel.TrackingCode
	Kind            parcel.PackageEventKind
	Action          parcel.Action
	Status          parcel.Status
	Revision        uint64
	ClaimedBy       string
	Location        string
	ProofOfDelivery string
	OccurredAt      time.Time
}

// EventJournal is an append-only audit trail of accepted package events.
type EventJournal interface {
	// Append persists event. Appending the same code and revision twice is a no-op.
	Append(ctx context.Context, event parcel.PackageEvent) error

	// History returns the entries of a package ordered by revision.
	// An unknown code yields an empty slice.
	History(ctx context.Context, code kernel.TrackingCode) ([]JournalEntry, error)
}
