package commands

import (
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/pkg/guard"
)

var ErrUpdateNotesCommandIsNotConstructed = errors.New(
	"UpdateNotesCommand must be created via NewUpdateNotesCommand constructor",
)

// UpdateNotesCommand replaces the free-text notes of a package.
type UpdateNotesCommand struct { //nolint:recvcheck //using for validation
	code  kernel.TrackingCode
	notes string

	guard guard.ConstructorGuard
}

// NewUpdateNotesCommand creates a notes update. Empty notes clear them.
func NewUpdateNotesCommand(code kernel.TrackingCode, notes string) (UpdateNotesCommand, error) {
	if err := validateCode(code); err != nil {
		return UpdateNotesCommand{}, err
	}
	return UpdateNotesCommand{code: code, notes: notes, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateNotesCommand) Validate() error {
	return c.guard.Validate(ErrUpdateNotesCommandIsNotConstructed)
}

// Code returns the target package's tracking code.
func (c UpdateNotesCommand) Code() kernel.TrackingCode { return c.code }

// Notes returns the new notes.
func (c UpdateNotesCommand) Notes() string { return c.notes }
