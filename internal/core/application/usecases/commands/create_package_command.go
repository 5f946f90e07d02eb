package commands

import (
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/pkg/guard"
)

var ErrCreatePackageCommandIsNotConstructed = errors.New(
	"CreatePackageCommand must be created via NewCreatePackageCommand constructor",
)

// CreatePackageCommand represents the front desk registering a new shipment.
//
// Example:
//
//	recipient, _ := kernel.NewContact("J. Doe", "1 Main St", "", "")
//	cmd, err := NewCreatePackageCommand("books", recipient, kernel.Contact{}, "")
//	if err != nil {
//	    return fmt.Errorf("invalid package data: %w", err)
//	}
//	pkg, err := handler.Handle(ctx, cmd)
type CreatePackageCommand struct { //nolint:recvcheck //using for validation
	draft parcel.Draft

	guard guard.ConstructorGuard
}

// NewCreatePackageCommand validates the creation data. The recipient needs a name and an
// address; sender may be the zero Contact.
func NewCreatePackageCommand(
	description string,
	recipient, sender kernel.Contact,
	notes string,
) (CreatePackageCommand, error) {
	draft, err := parcel.NewDraft(description, recipient, sender, notes)
	if err != nil {
		return CreatePackageCommand{}, err
	}

	return CreatePackageCommand{draft: draft, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreatePackageCommand) Validate() error {
	return c.guard.Validate(ErrCreatePackageCommandIsNotConstructed)
}

// Draft returns the validated creation data.
func (c CreatePackageCommand) Draft() parcel.Draft {
	return c.draft
}
