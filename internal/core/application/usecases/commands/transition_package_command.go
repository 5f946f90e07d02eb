package commands

import (
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/pkg/guard"
)

var (
	ErrTransitionPackageCommandIsNotConstructed = errors.New(
		"TransitionPackageCommand must be created via NewTransitionPackageCommand constructor",
	)
	ErrTransitionIsRequired = errors.New("transition is required")
)

// TransitionPackageCommand moves a package along its lifecycle: facility registration,
// claim, departure, scan, delivery with an existing proof reference, or cancellation.
//
// Payload preconditions (agent, proof) are not checked here. They belong to the state
// machine, which reports them after the terminal-state check.
type TransitionPackageCommand struct { //nolint:recvcheck //using for validation
	code       kernel.TrackingCode
	transition parcel.Transition

	guard guard.ConstructorGuard
}

// NewTransitionPackageCommand creates a transition command for code.
func NewTransitionPackageCommand(code kernel.TrackingCode, t parcel.Transition) (TransitionPackageCommand, error) {
	c := TransitionPackageCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		c.setCode(code),
		c.setTransition(t),
	); err != nil {
		return TransitionPackageCommand{}, err
	}

	return c, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionPackageCommand) Validate() error {
	return c.guard.Validate(ErrTransitionPackageCommandIsNotConstructed)
}

// Code returns the target package's tracking code.
func (c TransitionPackageCommand) Code() kernel.TrackingCode {
	return c.code
}

// Transition returns the requested transition.
func (c TransitionPackageCommand) Transition() parcel.Transition {
	return c.transition
}

func (c *TransitionPackageCommand) setCode(code kernel.TrackingCode) error {
	if err := validateCode(code); err != nil {
		return err
	}
	c.code = code
	return nil
}

func (c *TransitionPackageCommand) setTransition(t parcel.Transition) error {
	if t.Kind() == parcel.TransitionUnknown {
		return ErrTransitionIsRequired
	}
	c.transition = t
	return nil
}
