package parcel

import (
	"fmt"
	"strings"

	"parceldesk/internal/pkg/errs"
)

// TransitionKind names a request to move a package along its lifecycle.
type TransitionKind int

const (
	// TransitionUnknown is the zero value and is never legal.
	TransitionUnknown TransitionKind = iota
	// RegisteredAtFacility records the package arriving at a facility.
	RegisteredAtFacility
	// Claim hands the package to an agent.
	Claim
	// Depart starts the delivery run.
	Depart
	// Scan re-affirms an in-transit package, optionally with a location.
	Scan
	// Deliver completes the delivery with proof.
	Deliver
	// Cancel calls the shipment off.
	Cancel
)

var transitionNames = map[TransitionKind]string{
	TransitionUnknown:    "unknown",
	RegisteredAtFacility: "registered_at_facility",
	Claim:                "claim",
	Depart:               "depart",
	Scan:                 "scan",
	Deliver:              "deliver",
	Cancel:               "cancel",
}

// String returns the stable name of the transition kind.
func (k TransitionKind) String() string {
	if name, ok := transitionNames[k]; ok {
		return name
	}
	return transitionNames[TransitionUnknown]
}

// ParseTransitionKind converts a stable transition name into a TransitionKind.
func ParseTransitionKind(s string) (TransitionKind, error) {
	for kind, name := range transitionNames {
		if kind != TransitionUnknown && name == s {
			return kind, nil
		}
	}
	return TransitionUnknown, errs.NewValueIsInvalidErrorWithCause("transition",
		fmt.Errorf("%q is not a valid transition", s))
}

// Transition is an immutable transition request together with its payload.
// Build it with one of the constructors below; payload fields irrelevant to the
// kind are empty.
type Transition struct {
	kind          TransitionKind
	agent         string
	location      string
	proofRef      string
	dropOffMethod string
	reason        string
}

// NewRegisteredAtFacility requests Created -> AtFacility. facility is optional and
// becomes the package location.
func NewRegisteredAtFacility(facility string) Transition {
	return Transition{kind: RegisteredAtFacility, location: strings.TrimSpace(facility)}
}

// NewClaim requests AtFacility -> Claimed by agent. An empty agent fails with ErrMissingAgent.
func NewClaim(agent string) Transition {
	return Transition{kind: Claim, agent: strings.TrimSpace(agent)}
}

// NewDepart requests Claimed -> InTransit.
func NewDepart() Transition {
	return Transition{kind: Depart}
}

// NewScan re-affirms an InTransit package; location is optional.
func NewScan(location string) Transition {
	return Transition{kind: Scan, location: strings.TrimSpace(location)}
}

// NewDeliver requests Claimed/InTransit -> Delivered. proofRef is the opaque photo
// reference; an empty proofRef fails with ErrMissingProof.
func NewDeliver(proofRef, dropOffMethod string) Transition {
	return Transition{
		kind:          Deliver,
		proofRef:      strings.TrimSpace(proofRef),
		dropOffMethod: strings.TrimSpace(dropOffMethod),
	}
}

// NewCancel requests a move to Cancelled from any non-terminal state.
func NewCancel(reason string) Transition {
	return Transition{kind: Cancel, reason: strings.TrimSpace(reason)}
}

// Kind returns the transition kind.
func (t Transition) Kind() TransitionKind { return t.kind }

// Agent returns the claiming agent.
func (t Transition) Agent() string { return t.agent }

// Location returns the facility or scan location.
func (t Transition) Location() string { return t.location }

// ProofRef returns the proof-of-delivery reference.
func (t Transition) ProofRef() string { return t.proofRef }

// DropOffMethod returns how the package was left with the recipient.
func (t Transition) DropOffMethod() string { return t.dropOffMethod }

// Reason returns the cancellation reason.
func (t Transition) Reason() string { return t.reason }

func (t Transition) checkPreconditions() error {
	switch t.kind {
	case Claim:
		if t.agent == "" {
			return ErrMissingAgent
		}
	case Deliver:
		if t.proofRef == "" {
			return ErrMissingProof
		}
	case TransitionUnknown, RegisteredAtFacility, Depart, Scan, Cancel:
	}
	return nil
}
