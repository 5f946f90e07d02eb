package http

import (
	"time"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Contact is the wire form of kernel.Contact.
type Contact struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CreatePackageRequest is the JSON body of POST /api/v1/packages.
type CreatePackageRequest struct {
	Description string   `json:"description"`
	Recipient   Contact  `json:"recipient"`
	Sender      *Contact `json:"sender,omitempty"`
	Notes       string   `json:"notes"`
}

// FacilityRequest is the body of POST /packages/:code/facility.
type FacilityRequest struct {
	Facility string `json:"facility" form:"facility"`
}

// ClaimRequest is the body of POST /packages/:code/claim.
type ClaimRequest struct {
	Agent string `json:"agent" form:"agent"`
}

// ScanRequest is the body of POST /packages/:code/scan.
type ScanRequest struct {
	Location string `json:"location" form:"location"`
}

// DeliverRequest is the JSON or form body of POST /packages/:code/deliver.
// A multipart "photo" file takes the place of PhotoRef.
type DeliverRequest struct {
	PhotoRef      string `json:"photoRef" form:"photoRef"`
	DropOffMethod string `json:"dropOffMethod" form:"dropOffMethod"`
}

// CancelRequest is the body of POST /packages/:code/cancel.
type CancelRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// NotesRequest is the body of PATCH /packages/:code/notes.
type NotesRequest struct {
	Notes string `json:"notes" form:"notes"`
}

// Package is the wire form of a package snapshot.
type Package struct {
	TrackingCode    string    `json:"trackingCode"`
	Status          string    `json:"status"`
	Description     string    `json:"description,omitempty"`
	Recipient       Contact   `json:"recipient"`
	Sender          *Contact  `json:"sender,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Location        string    `json:"location,omitempty"`
	DropOffMethod   string    `json:"dropOffMethod,omitempty"`
	ProofOfDelivery string    `json:"proofOfDelivery,omitempty"`
	CancelReason    string    `json:"cancelReason,omitempty"`
	ClaimedBy       string    `json:"claimedBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Revision        uint64    `json:"revision"`
}

// Event is the wire form of a package event, used by the SSE stream.
type Event struct {
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
	Package    Package   `json:"package"`
}

// HistoryEntry is the wire form of a journal entry.
type HistoryEntry struct {
	Kind            string    `json:"kind"`
	Action          string    `json:"action"`
	Status          string    `json:"status"`
	Revision        uint64    `json:"revision"`
	ClaimedBy       string    `json:"claimedBy,omitempty"`
	Location        string    `json:"location,omitempty"`
	ProofOfDelivery string    `json:"proofOfDelivery,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (c Contact) toDomain() (kernel.Contact, error) {
	return kernel.NewContact(c.Name, c.Address, c.Phone, c.Email)
}

func contactFromDomain(c kernel.Contact) Contact {
	return Contact{Name: c.Name(), Address: c.Address(), Phone: c.Phone(), Email: c.Email()}
}

func packageFromDomain(p parcel.Package) Package {
	out := Package{
		TrackingCode:    p.Code().String(),
		Status:          p.Status().String(),
		Description:     p.Description(),
		Recipient:       contactFromDomain(p.Recipient()),
		Notes:           p.Notes(),
		Location:        p.Location(),
		DropOffMethod:   p.DropOffMethod(),
		ProofOfDelivery: p.ProofOfDelivery(),
		CancelReason:    p.CancelReason(),
		ClaimedBy:       p.ClaimedBy(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
		Revision:        p.Revision(),
	}
	if !p.Sender().IsZero() {
		sender := contactFromDomain(p.Sender())
		out.Sender = &sender
	}
	return out
}

func packagesFromDomain(pkgs []parcel.Package) []Package {
	out := make([]Package, len(pkgs))
	for i, p := range pkgs {
		out[i] = packageFromDomain(p)
	}
	return out
}

func eventFromDomain(e parcel.PackageEvent) Event {
	return Event{
		Kind:       e.Kind.String(),
		Action:     string(e.Action),
		OccurredAt: e.OccurredAt,
		Package:    packageFromDomain(e.Package),
	}
}

func historyFromDomain(entries []ports.JournalEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			Kind:            e.Kind.String(),
			Action:          string(e.Action),
			Status:          e.Status.String(),
			Revision:        e.Revision,
			ClaimedBy:       e.ClaimedBy,
			Location:        e.Location,
			ProofOfDelivery: e.ProofOfDelivery,
			OccurredAt:      e.OccurredAt,
		}
	}
	return out
}
