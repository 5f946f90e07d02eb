package queries

import (
	"context"
	"errors"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/guard"
)

var ErrGetStatusReportQueryIsNotConstructed = errors.New(
	"GetStatusReportQuery must be created via NewGetStatusReportQuery constructor",
)

// GetStatusReportQuery asks for the package status histogram.
type GetStatusReportQuery struct {
	guard guard.ConstructorGuard
}

// NewGetStatusReportQuery creates a report query.
func NewGetStatusReportQuery() GetStatusReportQuery {
	return GetStatusReportQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetStatusReportQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusReportQueryIsNotConstructed)
}

// StatusReport is the read model of GetStatusReportQuery.
type StatusReport struct {
	ByStatus map[parcel.Status]int
	Total    int
	Active   int
}

// GetStatusReportQueryHandler counts packages per status.
type GetStatusReportQueryHandler struct {
	store ports.PackageStore
}

// NewGetStatusReportQueryHandler creates a report handler.
func NewGetStatusReportQueryHandler(store ports.PackageStore) GetStatusReportQueryHandler {
	return GetStatusReportQueryHandler{store: store}
}

// Handle builds the report. Active counts packages in a non-terminal status.
func (h GetStatusReportQueryHandler) Handle(ctx context.Context, q GetStatusReportQuery) (StatusReport, error) {
	if err := q.Validate(); err != nil {
		return StatusReport{}, err
	}

	counts, err := h.store.Count(ctx)
	if err != nil {
		return StatusReport{}, err
	}

	report := StatusReport{ByStatus: counts}
	for status, n := range counts {
		report.Total += n
		if !status.IsTerminal() {
			report.Active += n
		}
	}
	return report, nil
}
