package commands

import (
	"context"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// TransitionPackageCommandHandler applies a lifecycle transition through the store.
type TransitionPackageCommandHandler struct {
	store     ports.PackageStore
	publisher ports.EventPublisher
}

// NewTransitionPackageCommandHandler creates a handler for lifecycle transitions.
func NewTransitionPackageCommandHandler(
	store ports.PackageStore,
	publisher ports.EventPublisher,
) TransitionPackageCommandHandler {
	return TransitionPackageCommandHandler{store: store, publisher: publisher}
}

// Handle applies the transition. Store errors are returned unchanged, so callers can
// classify them with parcel.ReasonOf.
func (h TransitionPackageCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionPackageCommand,
) (parcel.Package, error) {
	if err := cmd.Validate(); err != nil {
		return parcel.Package{}, err
	}

	return h.store.Transition(ctx, cmd.Code(), cmd.Transition(), h.publisher.Publish)
}
