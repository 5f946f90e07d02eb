package commands

import (
	"errors"
	"io"
	"strings"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/pkg/guard"
)

var ErrDeliverPackageCommandIsNotConstructed = errors.New(
	"DeliverPackageCommand must be created via NewDeliverPackageCommand constructor",
)

// DeliverPackageCommand completes a delivery. Proof is either a reference to a photo
// stored earlier or the photo content itself, which the handler stores first.
type DeliverPackageCommand struct { //nolint:recvcheck //using for validation
	code          kernel.TrackingCode
	proofRef      string
	dropOffMethod string
	photo         io.Reader
	photoName     string

	guard guard.ConstructorGuard
}

// NewDeliverPackageCommand creates a delivery command with an existing proof reference.
func NewDeliverPackageCommand(code kernel.TrackingCode, proofRef, dropOffMethod string) (DeliverPackageCommand, error) {
	if err := validateCode(code); err != nil {
		return DeliverPackageCommand{}, err
	}

	return DeliverPackageCommand{
		code:          code,
		proofRef:      strings.TrimSpace(proofRef),
		dropOffMethod: strings.TrimSpace(dropOffMethod),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// NewDeliverPackageWithPhotoCommand creates a delivery command carrying the photo content.
// A nil photo leaves the command without proof.
func NewDeliverPackageWithPhotoCommand(
	code kernel.TrackingCode,
	photoName string,
	photo io.Reader,
	dropOffMethod string,
) (DeliverPackageCommand, error) {
	c, err := NewDeliverPackageCommand(code, "", dropOffMethod)
	if err != nil {
		return DeliverPackageCommand{}, err
	}
	c.photo = photo
	c.photoName = photoName
	return c, nil
}

// Validate ensures the command was created through the constructor.
func (c DeliverPackageCommand) Validate() error {
	return c.guard.Validate(ErrDeliverPackageCommandIsNotConstructed)
}

// Code returns the target package's tracking code.
func (c DeliverPackageCommand) Code() kernel.TrackingCode { return c.code }

// ProofRef returns the existing proof reference, if any.
func (c DeliverPackageCommand) ProofRef() string { return c.proofRef }

// DropOffMethod returns how the package was left.
func (c DeliverPackageCommand) DropOffMethod() string { return c.dropOffMethod }

// Photo returns the photo content and its original file name, if any.
func (c DeliverPackageCommand) Photo() (string, io.Reader) { return c.photoName, c.photo }
