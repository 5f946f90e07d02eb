// Package parcel provides the package aggregate and its lifecycle state machine.
//
// The package includes:
//   - Package: an immutable snapshot of a parcel record
//   - Draft: validated creation data awaiting a tracking code
//   - Status: the lifecycle states and the pure transition function Status.Next
//   - Transition: a transition request with its payload (agent, proof, location)
//   - PackageEvent: the notification published for each accepted mutation
//   - Domain errors and ReasonOf, which maps any error to a stable Reason code
//
// Key business rules:
//   - Status follows Created -> AtFacility -> Claimed -> InTransit -> Delivered
//   - Cancelled is reachable from every non-terminal state
//   - Delivered and Cancelled are terminal
//   - Delivering requires a proof reference, claiming requires an agent
package parcel
