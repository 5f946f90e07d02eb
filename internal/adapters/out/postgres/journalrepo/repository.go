package journalrepo

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parceldesk/internal/adapters/out/eventhub"
	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

var _ ports.EventJournal = (*GormJournalRepository)(nil)

// GormJournalRepository implements ports.EventJournal using GORM.
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a journal on db. Call Migrate once before use.
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// Migrate creates or updates the package_events table.
func (r *GormJournalRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&PackageEventDTO{})
}

// Append stores event. A second append of the same code and revision is ignored.
func (r *GormJournalRepository) Append(ctx context.Context, event parcel.PackageEvent) error {
	if err := event.Package.Validate(); err != nil {
		return err
	}

	dto := fromDomain(event)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
}

// History returns the events of code ordered by revision.
func (r *GormJournalRepository) History(ctx context.Context, code kernel.TrackingCode) ([]ports.JournalEntry, error) {
	var dtos []PackageEventDTO
	err := r.db.WithContext(ctx).
		Where("code = ?", code.String()).
		Order("revision ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]ports.JournalEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Record appends every event published on bus until ctx is done or the hub closes.
// Append failures are logged and skipped.
func (r *GormJournalRepository) Record(ctx context.Context, bus ports.EventSubscriber, logger *slog.Logger) error {
	logger = logger.With("component", "EventJournal")
	return eventhub.Follow(ctx, bus, ports.AllPackages(), logger, func(ctx context.Context, e parcel.PackageEvent) {
		if err := r.Append(ctx, e); err != nil {
			logger.Error("failed to journal package event",
				"code", e.Code(),
				"revision", e.Package.Revision(),
				"error", err)
		}
	})
}
