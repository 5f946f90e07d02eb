package parcel

import (
	"errors"
	"fmt"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/pkg/errs"
)

// Domain errors. Each one maps to a stable Reason.
var (
	// ErrDuplicateCode means the generator produced a code that is live or retired.
	// Stores retry internally; callers only see it if every retry collided.
	ErrDuplicateCode = errors.New("duplicate tracking code")

	// ErrInvalidTransition means the requested transition is not legal from the current status.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrMissingProof means a deliver transition carried no proof-of-delivery reference.
	ErrMissingProof = errors.New("proof of delivery is required")

	// ErrMissingAgent means a claim transition carried no agent identifier.
	ErrMissingAgent = errors.New("agent is required")
)

// TransitionError describes a rejected transition. The stored record is unchanged.
type TransitionError struct {
	Code       kernel.TrackingCode
	From       Status
	Transition TransitionKind
	Err        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("package %s: cannot %s from %s: %v", e.Code, e.Transition, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports an unknown (or deleted) tracking code.
func NewNotFoundError(code kernel.TrackingCode) error {
	return errs.NewObjectNotFoundError("trackingCode", code.String())
}

// Reason is a stable, introspectable rejection code for presentation layers.
type Reason string

// Reasons returned by ReasonOf.
const (
	ReasonNone              Reason = ""
	ReasonNotFound          Reason = "not_found"
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonMissingProof      Reason = "missing_proof"
	ReasonMissingAgent      Reason = "missing_agent"
	ReasonDuplicateCode     Reason = "duplicate_code"
	ReasonInvalidInput      Reason = "invalid_input"
	ReasonUnknown           Reason = "unknown"
)

// ReasonOf classifies err. It returns ReasonNone for a nil error.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, errs.ErrObjectNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrInvalidTransition):
		return ReasonInvalidTransition
	case errors.Is(err, ErrMissingProof):
		return ReasonMissingProof
	case errors.Is(err, ErrMissingAgent):
		return ReasonMissingAgent
	case errors.Is(err, ErrDuplicateCode):
		return ReasonDuplicateCode
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ReasonInvalidInput
	default:
		return ReasonUnknown
	}
}
