package parcel

import "time"

// PackageEventKind tells subscribers what happened to a package.
type PackageEventKind int

const (
	// PackageCreated is published once, when the package is issued.
	PackageCreated PackageEventKind = iota + 1
	// PackageUpdated is published for every accepted transition or notes edit.
	PackageUpdated
	// PackageDeleted is published once, when the package is removed.
	PackageDeleted
)

// String returns "created", "updated" or "deleted".
func (k PackageEventKind) String() string {
	switch k {
	case PackageCreated:
		return "created"
	case PackageUpdated:
		return "updated"
	case PackageDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Action names the intent that produced an event.
type Action string

// Actions that are not lifecycle transitions. Transitions use TransitionKind.String().
const (
	ActionCreate      Action = "create"
	ActionUpdateNotes Action = "update_notes"
	ActionDelete      Action = "delete"
)

// ActionOf returns the Action recorded for transition kind k.
func ActionOf(k TransitionKind) Action {
	return Action(k.String())
}

// PackageEvent is the notification published for every accepted mutation.
// Package is the snapshot after the mutation (for PackageDeleted, the last snapshot).
type PackageEvent struct {
	Kind       PackageEventKind
	Action     Action
	Package    Package
	OccurredAt time.Time
}

// Code is a shorthand for e.Package.Code().String().
func (e PackageEvent) Code() string {
	return e.Package.Code().String()
}
