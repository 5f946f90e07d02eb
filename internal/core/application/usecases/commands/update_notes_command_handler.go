package commands

import (
	"context"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// UpdateNotesCommandHandler replaces notes through the store.
type UpdateNotesCommandHandler struct {
	store     ports.PackageStore
	publisher ports.EventPublisher
}

// NewUpdateNotesCommandHandler creates a handler for notes updates.
func NewUpdateNotesCommandHandler(store ports.PackageStore, publisher ports.EventPublisher) UpdateNotesCommandHandler {
	return UpdateNotesCommandHandler{store: store, publisher: publisher}
}

// Handle replaces the notes and publishes one Updated event.
func (h UpdateNotesCommandHandler) Handle(ctx context.Context, cmd UpdateNotesCommand) (parcel.Package, error) {
	if err := cmd.Validate(); err != nil {
		return parcel.Package{}, err
	}

	return h.store.UpdateNotes(ctx, cmd.Code(), cmd.Notes(), h.publisher.Publish)
}
