package parcel

import (
	"fmt"

	"parceldesk/internal/pkg/errs"
)

// Status represents the lifecycle state of a package.
//
// State transitions:
//
//	Created ──> AtFacility ──> Claimed ──> InTransit ──> Delivered
//	   │            │             │  └──────────┬──────────^
//	   │            │             │             │ (scan keeps InTransit)
//	   └────────────┴─────────────┴─────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal. Status only moves forward along this graph;
// see Status.Next for the full table.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status assigned by the front desk.
	Created

	// AtFacility indicates the package was registered at a warehouse/facility.
	AtFacility

	// Claimed indicates an agent (driver or handler) took responsibility for the package.
	Claimed

	// InTransit indicates the package left with its agent.
	InTransit

	// Delivered is terminal: the package was handed over with proof of delivery.
	Delivered

	// Cancelled is terminal: the shipment was called off before delivery.
	Cancelled
)

var statusNames = map[Status]string{
	Unknown:    "unknown",
	Created:    "created",
	AtFacility: "at_facility",
	Claimed:    "claimed",
	InTransit:  "in_transit",
	Delivered:  "delivered",
	Cancelled:  "cancelled",
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Created, AtFacility, Claimed, InTransit, Delivered, Cancelled}
}

// ParseStatus converts a stable status name (as produced by String) into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the defined lifecycle states.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stable name of the status ("created", "at_facility", ...).
// It is safe to call on invalid values, which render as "unknown".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// IsTerminal reports whether no transition can leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Next computes the status that follows s when t is applied.
//
// Transition table:
//
//	Created                             registered_at_facility  -> AtFacility
//	AtFacility                          claim(agent)            -> Claimed
//	Claimed                             depart                  -> InTransit
//	InTransit                           scan                    -> InTransit
//	Claimed, InTransit                  deliver(proof)          -> Delivered
//	Created, AtFacility, Claimed,
//	InTransit                           cancel                  -> Cancelled
//	Delivered, Cancelled                anything                -> ErrInvalidTransition
//
// Preconditions are checked after the terminal check and before the table, so a
// deliver without proof fails with ErrMissingProof from every non-terminal state and
// a claim without agent fails with ErrMissingAgent.
//
// Returns:
//   - (next, nil) when the transition is legal
//   - (Unknown, err) otherwise; err is ErrInvalidTransition, ErrMissingProof or ErrMissingAgent
//
// Next is pure: it never mutates anything.
func (s Status) Next(t Transition) (Status, error) {
	if err := s.Validate(); err != nil {
		return Unknown, ErrInvalidTransition
	}
	if s.IsTerminal() {
		return Unknown, ErrInvalidTransition
	}
	if err := t.checkPreconditions(); err != nil {
		return Unknown, err
	}

	switch t.Kind() {
	case RegisteredAtFacility:
		if s == Created {
			return AtFacility, nil
		}
	case Claim:
		if s == AtFacility {
			return Claimed, nil
		}
	case Depart:
		if s == Claimed {
			return InTransit, nil
		}
	case Scan:
		if s == InTransit {
			return InTransit, nil
		}
	case Deliver:
		if s == Claimed || s == InTransit {
			return Delivered, nil
		}
	case Cancel:
		return Cancelled, nil
	case TransitionUnknown:
	}

	return Unknown, ErrInvalidTransition
}
