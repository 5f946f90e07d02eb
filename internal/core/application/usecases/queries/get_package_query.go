// Package queries contains read operations over package state.
// Queries never mutate the store and never publish events.
package queries

import (
	"context"
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/guard"
)

var (
	ErrGetPackageQueryIsNotConstructed = errors.New(
		"GetPackageQuery must be created via NewGetPackageQuery constructor",
	)
	ErrTrackingCodeIsRequired = errors.New("tracking code is required")
)

// GetPackageQuery looks up one package by tracking code.
type GetPackageQuery struct { //nolint:recvcheck //using for validation
	code  kernel.TrackingCode
	guard guard.ConstructorGuard
}

// NewGetPackageQuery creates a lookup query.
func NewGetPackageQuery(code kernel.TrackingCode) (GetPackageQuery, error) {
	if code.IsZero() {
		return GetPackageQuery{}, ErrTrackingCodeIsRequired
	}
	return GetPackageQuery{code: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPackageQuery) Validate() error {
	return q.guard.Validate(ErrGetPackageQueryIsNotConstructed)
}

// Code returns the requested tracking code.
func (q GetPackageQuery) Code() kernel.TrackingCode { return q.code }

// GetPackageQueryHandler reads packages from the store.
type GetPackageQueryHandler struct {
	store ports.PackageStore
}

// NewGetPackageQueryHandler creates a lookup handler.
func NewGetPackageQueryHandler(store ports.PackageStore) GetPackageQueryHandler {
	return GetPackageQueryHandler{store: store}
}

// Handle returns the current snapshot or a not-found error.
func (h GetPackageQueryHandler) Handle(ctx context.Context, q GetPackageQuery) (parcel.Package, error) {
	if err := q.Validate(); err != nil {
		return parcel.Package{}, err
	}
	return h.store.Get(ctx, q.Code())
}
