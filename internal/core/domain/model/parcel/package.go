package parcel

import (
	"errors"
	"strings"
	"time"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/pkg/errs"
	"parceldesk/internal/pkg/guard"
)

// DefaultLocation is the location of a package that has just been created.
const DefaultLocation = "Front desk"

var (
	// ErrPackageIsNotConstructed is returned for a Package that was not built by NewPackage.
	ErrPackageIsNotConstructed = errors.New("Package must be created via NewPackage constructor")

	// ErrDraftIsNotConstructed is returned for a Draft that was not built by NewDraft.
	ErrDraftIsNotConstructed = errors.New("Draft must be created via NewDraft constructor")
)

// Draft holds the creation-time data of a package before the store assigns it a
// tracking code.
type Draft struct { //nolint:recvcheck //using for validation
	description string
	recipient   kernel.Contact
	sender      kernel.Contact
	notes       string
	guard       guard.ConstructorGuard
}

// NewDraft validates creation data. The recipient must be a constructed contact with an
// address; the sender may be the zero Contact when unknown.
func NewDraft(description string, recipient, sender kernel.Contact, notes string) (Draft, error) {
	d := Draft{
		description: strings.TrimSpace(description),
		notes:       strings.TrimSpace(notes),
		guard:       guard.NewConstructorGuard(),
	}
	if err := d.setRecipient(recipient); err != nil {
		return Draft{}, err
	}
	d.sender = sender

	return d, nil
}

// Validate ensures the draft was created through NewDraft.
func (d Draft) Validate() error {
	return d.guard.Validate(ErrDraftIsNotConstructed)
}

// Recipient returns the draft's recipient.
func (d Draft) Recipient() kernel.Contact { return d.recipient }

func (d *Draft) setRecipient(recipient kernel.Contact) error {
	if err := recipient.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("recipient", err)
	}
	if recipient.Address() == "" {
		return errs.NewValueIsRequiredError("recipient.address")
	}
	d.recipient = recipient
	return nil
}

// Package is an immutable snapshot of a parcel record.
//
// Package follows these invariants:
//   - code is assigned once, at construction, and never changes
//   - status only changes through Apply, which follows Status.Next
//   - proofOfDelivery is non-empty if and only if status is Delivered
//   - revision starts at 1 and grows by one with every accepted mutation
//
// Mutating methods return a new snapshot and leave the receiver untouched, so a
// snapshot handed to a subscriber can never change under it.
type Package struct { //nolint:recvcheck //using for validation
	code            kernel.TrackingCode
	status          Status
	description     string
	recipient       kernel.Contact
	sender          kernel.Contact
	notes           string
	location        string
	dropOffMethod   string
	proofOfDelivery string
	cancelReason    string
	claimedBy       string
	createdAt       time.Time
	updatedAt       time.Time
	revision        uint64

	guard guard.ConstructorGuard
}

// NewPackage issues a package in Created status from a validated draft.
//
// Example:
//
//	recipient, _ := kernel.NewContact("J. Doe", "1 Main St", "", "")
//	draft, _ := parcel.NewDraft("books", recipient, kernel.Contact{}, "")
//	pkg, err := parcel.NewPackage(generator.Generate(), draft, time.Now())
func NewPackage(code kernel.TrackingCode, draft Draft, now time.Time) (Package, error) {
	if err := errors.Join(code.Validate(), draft.Validate()); err != nil {
		return Package{}, err
	}

	return Package{
		code:        code,
		status:      Created,
		description: draft.description,
		recipient:   draft.recipient,
		sender:      draft.sender,
		notes:       draft.notes,
		location:    DefaultLocation,
		createdAt:   now,
		updatedAt:   now,
		revision:    1,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Package was created through NewPackage.
func (p Package) Validate() error {
	return p.guard.Validate(ErrPackageIsNotConstructed)
}

// Apply runs transition t against the package.
//
// Returns:
//   - the next snapshot with status, metadata, updatedAt and revision advanced
//   - a *TransitionError wrapping ErrInvalidTransition, ErrMissingProof or
//     ErrMissingAgent when t is rejected; the receiver is unchanged either way
func (p Package) Apply(t Transition, now time.Time) (Package, error) {
	if err := p.Validate(); err != nil {
		return Package{}, err
	}

	next, err := p.status.Next(t)
	if err != nil {
		return Package{}, &TransitionError{Code: p.code, From: p.status, Transition: t.Kind(), Err: err}
	}

	out := p
	out.status = next
	switch t.Kind() {
	case RegisteredAtFacility, Scan:
		if t.Location() != "" {
			out.location = t.Location()
		}
	case Claim:
		out.claimedBy = t.Agent()
	case Deliver:
		out.proofOfDelivery = t.ProofRef()
		out.dropOffMethod = t.DropOffMethod()
		if addr := p.recipient.Address(); addr != "" {
			out.location = addr
		}
	case Cancel:
		out.cancelReason = t.Reason()
	case TransitionUnknown, Depart:
	}
	out.touch(now)

	return out, nil
}

// WithNotes replaces the free-text notes. Notes are annotations rather than lifecycle
// state, so they can be edited in every status, terminal ones included.
func (p Package) WithNotes(notes string, now time.Time) (Package, error) {
	if err := p.Validate(); err != nil {
		return Package{}, err
	}
	out := p
	out.notes = strings.TrimSpace(notes)
	out.touch(now)
	return out, nil
}

// Tombstone returns the final snapshot of a package that is being removed: fields are
// kept and only updatedAt and revision advance, so the deletion is ordered after every
// earlier snapshot.
func (p Package) Tombstone(now time.Time) Package {
	out := p
	out.touch(now)
	return out
}

func (p *Package) touch(now time.Time) {
	p.updatedAt = now
	p.revision++
}

// Code returns the package's tracking code.
func (p Package) Code() kernel.TrackingCode { return p.code }

// Status returns the current lifecycle status.
func (p Package) Status() Status { return p.status }

// Description returns the creation-time description.
func (p Package) Description() string { return p.description }

// Recipient returns the recipient contact.
func (p Package) Recipient() kernel.Contact { return p.recipient }

// Sender returns the sender contact; IsZero reports an absent sender.
func (p Package) Sender() kernel.Contact { return p.sender }

// Notes returns the free-text notes.
func (p Package) Notes() string { return p.notes }

// Location returns the last known location.
func (p Package) Location() string { return p.location }

// DropOffMethod returns how the package was left, set on delivery.
func (p Package) DropOffMethod() string { return p.dropOffMethod }

// ProofOfDelivery returns the photo reference, non-empty only once Delivered.
func (p Package) ProofOfDelivery() string { return p.proofOfDelivery }

// CancelReason returns the reason given on cancellation.
func (p Package) CancelReason() string { return p.cancelReason }

// ClaimedBy returns the agent that most recently claimed the package.
func (p Package) ClaimedBy() string { return p.claimedBy }

// CreatedAt returns the creation time.
func (p Package) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the time of the last accepted mutation.
func (p Package) UpdatedAt() time.Time { return p.updatedAt }

// Revision returns the per-package mutation counter.
func (p Package) Revision() uint64 { return p.revision }
