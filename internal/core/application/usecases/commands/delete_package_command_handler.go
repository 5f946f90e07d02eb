package commands

import (
	"context"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// DeletePackageCommandHandler removes packages through the store.
type DeletePackageCommandHandler struct {
	store     ports.PackageStore
	publisher ports.EventPublisher
}

// NewDeletePackageCommandHandler creates a handler for package removal.
func NewDeletePackageCommandHandler(store ports.PackageStore, publisher ports.EventPublisher) DeletePackageCommandHandler {
	return DeletePackageCommandHandler{store: store, publisher: publisher}
}

// Handle removes the package, publishes its Deleted event and returns the last snapshot.
func (h DeletePackageCommandHandler) Handle(ctx context.Context, cmd DeletePackageCommand) (parcel.Package, error) {
	if err := cmd.Validate(); err != nil {
		return parcel.Package{}, err
	}

	return h.store.Remove(ctx, cmd.Code(), h.publisher.Publish)
}
