package commands

import (
	"context"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// CreatePackageCommandHandler stores a new package and publishes its Created event.
type CreatePackageCommandHandler struct {
	store     ports.PackageStore
	publisher ports.EventPublisher
}

// NewCreatePackageCommandHandler creates a handler for package creation.
func NewCreatePackageCommandHandler(
	store ports.PackageStore,
	publisher ports.EventPublisher,
) CreatePackageCommandHandler {
	return CreatePackageCommandHandler{store: store, publisher: publisher}
}

// Handle issues a tracking code and stores the package in Created status.
func (h CreatePackageCommandHandler) Handle(ctx context.Context, cmd CreatePackageCommand) (parcel.Package, error) {
	if err := cmd.Validate(); err != nil {
		return parcel.Package{}, err
	}

	return h.store.Insert(ctx, cmd.Draft(), h.publisher.Publish)
}
