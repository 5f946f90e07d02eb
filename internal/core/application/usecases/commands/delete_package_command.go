package commands

import (
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/pkg/guard"
)

var ErrDeletePackageCommandIsNotConstructed = errors.New(
	"DeletePackageCommand must be created via NewDeletePackageCommand constructor",
)

// DeletePackageCommand removes a package for good. Its code is never issued again.
type DeletePackageCommand struct { //nolint:recvcheck //using for validation
	code kernel.TrackingCode

	guard guard.ConstructorGuard
}

// NewDeletePackageCommand creates a delete command.
func NewDeletePackageCommand(code kernel.TrackingCode) (DeletePackageCommand, error) {
	if err := validateCode(code); err != nil {
		return DeletePackageCommand{}, err
	}
	return DeletePackageCommand{code: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c DeletePackageCommand) Validate() error {
	return c.guard.Validate(ErrDeletePackageCommandIsNotConstructed)
}

// Code returns the target package's tracking code.
func (c DeletePackageCommand) Code() kernel.TrackingCode { return c.code }
