package commands

import (
	"context"
	"fmt"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// DeliverPackageCommandHandler stores the proof photo when one is attached and then
// applies the deliver transition.
type DeliverPackageCommandHandler struct {
	store     ports.PackageStore
	publisher ports.EventPublisher
	photos    ports.PhotoStore
}

// NewDeliverPackageCommandHandler creates a delivery handler. photos may be nil when
// only existing references are accepted.
func NewDeliverPackageCommandHandler(
	store ports.PackageStore,
	publisher ports.EventPublisher,
	photos ports.PhotoStore,
) DeliverPackageCommandHandler {
	return DeliverPackageCommandHandler{store: store, publisher: publisher, photos: photos}
}

// Handle delivers the package. Without any proof the store rejects the transition
// with parcel.ErrMissingProof.
func (h DeliverPackageCommandHandler) Handle(ctx context.Context, cmd DeliverPackageCommand) (parcel.Package, error) {
	if err := cmd.Validate(); err != nil {
		return parcel.Package{}, err
	}

	ref := cmd.ProofRef()
	if name, photo := cmd.Photo(); photo != nil && ref == "" {
		if h.photos == nil {
			return parcel.Package{}, fmt.Errorf("photo upload is not configured: %w", parcel.ErrMissingProof)
		}
		saved, err := h.photos.Save(ctx, name, photo)
		if err != nil {
			return parcel.Package{}, fmt.Errorf("save proof of delivery: %w", err)
		}
		ref = saved
	}

	return h.store.Transition(ctx, cmd.Code(), parcel.NewDeliver(ref, cmd.DropOffMethod()), h.publisher.Publish)
}
