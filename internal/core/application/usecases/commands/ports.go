// Package commands contains business operations that modify package state.
// Every command follows the same pattern: a constructor validates the input and arms a
// ConstructorGuard, and a handler runs the mutation on the package store with the
// event publisher as commit callback, so each accepted mutation publishes exactly one event.
package commands

import (
	"errors"

	"parceldesk/internal/core/domain/model/kernel"
)

// ErrTrackingCodeIsRequired is returned by command constructors given a zero code.
var ErrTrackingCodeIsRequired = errors.New("tracking code is required")

func validateCode(code kernel.TrackingCode) error {
	if code.IsZero() {
		return ErrTrackingCodeIsRequired
	}
	return nil
}
