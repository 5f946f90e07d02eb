// Package journalrepo persists package events to PostgreSQL with GORM.
// The journal is an append-only audit trail; the in-memory store stays the source of truth.
package journalrepo

import (
	"fmt"
	"time"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// PackageEventDTO is one row of the package_events table.
// (code, revision) is unique, which makes Append idempotent.
type PackageEventDTO struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Code            string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_package_events_code_revision,priority:1"`
	Revision        uint64    `gorm:"not null;uniqueIndex:idx_package_events_code_revision,priority:2"`
	Kind            string    `gorm:"type:varchar(16);not null"`
	Action          string    `gorm:"type:varchar(32);not null"`
	Status          string    `gorm:"type:varchar(16);not null;index"`
	ClaimedBy       string    `gorm:"type:text"`
	Location        string    `gorm:"type:text"`
	ProofOfDelivery string    `gorm:"type:text"`
	OccurredAt      time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for package events.
func (PackageEventDTO) TableName() string {
	return "package_events"
}

func fromDomain(e parcel.PackageEvent) PackageEventDTO {
	p := e.Package
	return PackageEventDTO{
		Code:            p.Code().String(),
		Revision:        p.Revision(),
		Kind:            e.Kind.String(),
		Action:          string(e.Action),
		Status:          p.Status().String(),
		ClaimedBy:       p.ClaimedBy(),
		Location:        p.Location(),
		ProofOfDelivery: p.ProofOfDelivery(),
		OccurredAt:      e.OccurredAt.UTC(),
	}
}

func toDomain(dto PackageEventDTO) (ports.JournalEntry, error) {
	code, err := kernel.ParseTrackingCode(dto.Code)
	if err != nil {
		return ports.JournalEntry{}, err
	}
	status, err := parcel.ParseStatus(dto.Status)
	if err != nil {
		return ports.JournalEntry{}, err
	}
	kind, err := parseKind(dto.Kind)
	if err != nil {
		return ports.JournalEntry{}, err
	}

	return ports.JournalEntry{
		Code:            code,
		Kind:            kind,
		Action:          parcel.Action(dto.Action),
		Status:          status,
		Revision:        dto.Revision,
		ClaimedBy:       dto.ClaimedBy,
		Location:        dto.Location,
		ProofOfDelivery: dto.ProofOfDelivery,
		OccurredAt:      dto.OccurredAt,
	}, nil
}

func parseKind(s string) (parcel.PackageEventKind, error) {
	for _, k := range []parcel.PackageEventKind{parcel.PackageCreated, parcel.PackageUpdated, parcel.PackageDeleted} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}
