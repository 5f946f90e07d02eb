// Package kernel provides the shared value objects of the parcel domain.
//
// The package includes:
//   - TrackingCode: the unique, transcription-friendly identifier of a package
//   - CodeGenerator: issues tracking codes (TimeOrderedGenerator by default)
//   - Contact: structured sender/recipient contact data
//
// Values are immutable and safe for concurrent use.
package kernel
