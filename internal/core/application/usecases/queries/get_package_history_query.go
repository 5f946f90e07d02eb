package queries

import (
	"context"
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/guard"
)

var (
	ErrGetPackageHistoryQueryIsNotConstructed = errors.New(
		"GetPackageHistoryQuery must be created via NewGetPackageHistoryQuery constructor",
	)
	// ErrJournalDisabled is returned when no event journal is configured.
	ErrJournalDisabled = errors.New("event journal is not configured")
)

// GetPackageHistoryQuery reads the journal of one package.
type GetPackageHistoryQuery struct { //nolint:recvcheck //using for validation
	code  kernel.TrackingCode
	guard guard.ConstructorGuard
}

// NewGetPackageHistoryQuery creates a history query.
func NewGetPackageHistoryQuery(code kernel.TrackingCode) (GetPackageHistoryQuery, error) {
	if code.IsZero() {
		return GetPackageHistoryQuery{}, ErrTrackingCodeIsRequired
	}
	return GetPackageHistoryQuery{code: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPackageHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetPackageHistoryQueryIsNotConstructed)
}

// Code returns the requested tracking code.
func (q GetPackageHistoryQuery) Code() kernel.TrackingCode { return q.code }

// GetPackageHistoryQueryHandler reads the event journal. The journal outlives deletions,
// so history stays available for removed packages.
type GetPackageHistoryQueryHandler struct {
	journal ports.EventJournal
}

// NewGetPackageHistoryQueryHandler creates a history handler. A nil journal makes
// every query fail with ErrJournalDisabled.
func NewGetPackageHistoryQueryHandler(journal ports.EventJournal) GetPackageHistoryQueryHandler {
	return GetPackageHistoryQueryHandler{journal: journal}
}

// Handle returns journal entries ordered by revision.
func (h GetPackageHistoryQueryHandler) Handle(ctx context.Context, q GetPackageHistoryQuery) ([]ports.JournalEntry, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if h.journal == nil {
		return nil, ErrJournalDisabled
	}
	return h.journal.History(ctx, q.Code())
}
