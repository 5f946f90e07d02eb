package queries

import (
	"context"
	"errors"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/guard"
)

var ErrListPackagesQueryIsNotConstructed = errors.New(
	"ListPackagesQuery must be created via NewListPackagesQuery constructor",
)

// ListPackagesQuery lists packages, most recently created first, optionally restricted
// to some statuses.
//
// Example:
//
//	q, _ := NewListPackagesQuery(parcel.Claimed, parcel.InTransit)
//	active, err := handler.Handle(ctx, q)
type ListPackagesQuery struct { //nolint:recvcheck //using for validation
	statuses map[parcel.Status]struct{}
	guard    guard.ConstructorGuard
}

// NewListPackagesQuery creates a list query. No statuses means every package.
func NewListPackagesQuery(statuses ...parcel.Status) (ListPackagesQuery, error) {
	q := ListPackagesQuery{guard: guard.NewConstructorGuard()}
	for _, s := range statuses {
		if err := s.Validate(); err != nil {
			return ListPackagesQuery{}, err
		}
		if q.statuses == nil {
			q.statuses = make(map[parcel.Status]struct{}, len(statuses))
		}
		q.statuses[s] = struct{}{}
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q ListPackagesQuery) Validate() error {
	return q.guard.Validate(ErrListPackagesQueryIsNotConstructed)
}

// Matches reports whether p passes the status filter.
func (q ListPackagesQuery) Matches(p parcel.Package) bool {
	if len(q.statuses) == 0 {
		return true
	}
	_, ok := q.statuses[p.Status()]
	return ok
}

// ListPackagesQueryHandler lists packages from the store.
type ListPackagesQueryHandler struct {
	store ports.PackageStore
}

// NewListPackagesQueryHandler creates a list handler.
func NewListPackagesQueryHandler(store ports.PackageStore) ListPackagesQueryHandler {
	return ListPackagesQueryHandler{store: store}
}

// Handle returns the matching packages in store order.
func (h ListPackagesQueryHandler) Handle(ctx context.Context, q ListPackagesQuery) ([]parcel.Package, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	all, err := h.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]parcel.Package, 0, len(all))
	for _, p := range all {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
