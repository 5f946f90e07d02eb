// Package guard provides the constructor guard used by value objects, commands and
// queries to tell a properly constructed value apart from its zero value.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as created through its constructor.
// Embed it as a field and set it with NewConstructorGuard inside the constructor;
// the zero value fails validation.
//
// Example:
//
//	type Contact struct {
//	    name  string
//	    guard guard.ConstructorGuard
//	}
//
//	func (c Contact) Validate() error {
//	    return c.guard.Validate(ErrContactIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that passes validation.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. For a zero-value guard it returns
// validationError, or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
