// Package lifecycle is the façade the outer layers talk to. It exposes one operation
// per intent, builds the matching command or query and runs its handler.
package lifecycle

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"parceldesk/internal/core/application/usecases/commands"
	"parceldesk/internal/core/application/usecases/queries"
	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// Service runs package intents against the store and publishes their events.
type Service struct {
	createHandler     commands.CreatePackageCommandHandler
	transitionHandler commands.TransitionPackageCommandHandler
	deliverHandler    commands.DeliverPackageCommandHandler
	notesHandler      commands.UpdateNotesCommandHandler
	deleteHandler     commands.DeletePackageCommandHandler

	getHandler     queries.GetPackageQueryHandler
	listHandler    queries.ListPackagesQueryHandler
	historyHandler queries.GetPackageHistoryQueryHandler
	reportHandler  queries.GetStatusReportQueryHandler

	subscriber ports.EventSubscriber
	mutations  *prometheus.CounterVec
	logger     *slog.Logger
}

// Dependencies lists the collaborators of a Service. Photos and Journal are optional.
type Dependencies struct {
	Store   ports.PackageStore
	Bus     ports.EventBus
	Photos  ports.PhotoStore
	Journal ports.EventJournal
	Logger  *slog.Logger
	// Mutations, when set, counts accepted mutations by action.
	Mutations *prometheus.CounterVec
}

// NewService wires the command and query handlers.
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		createHandler:     commands.NewCreatePackageCommandHandler(deps.Store, deps.Bus),
		transitionHandler: commands.NewTransitionPackageCommandHandler(deps.Store, deps.Bus),
		deliverHandler:    commands.NewDeliverPackageCommandHandler(deps.Store, deps.Bus, deps.Photos),
		notesHandler:      commands.NewUpdateNotesCommandHandler(deps.Store, deps.Bus),
		deleteHandler:     commands.NewDeletePackageCommandHandler(deps.Store, deps.Bus),
		getHandler:        queries.NewGetPackageQueryHandler(deps.Store),
		listHandler:       queries.NewListPackagesQueryHandler(deps.Store),
		historyHandler:    queries.NewGetPackageHistoryQueryHandler(deps.Journal),
		reportHandler:     queries.NewGetStatusReportQueryHandler(deps.Store),
		subscriber:        deps.Bus,
		mutations:         deps.Mutations,
		logger:            logger.With("component", "Lifecycle"),
	}
}

// Create registers a new package and returns it with its tracking code.
func (s *Service) Create(
	ctx context.Context,
	description string,
	recipient, sender kernel.Contact,
	notes string,
) (parcel.Package, error) {
	cmd, err := commands.NewCreatePackageCommand(description, recipient, sender, notes)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, parcel.ActionCreate, kernel.TrackingCode{}, err)
	}

	pkg, err := s.createHandler.Handle(ctx, cmd)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, parcel.ActionCreate, kernel.TrackingCode{}, err)
	}
	s.accepted(ctx, parcel.ActionCreate, pkg)
	return pkg, nil
}

// RegisterAtFacility records arrival at a facility. facility may be empty.
func (s *Service) RegisterAtFacility(ctx context.Context, code kernel.TrackingCode, facility string) (parcel.Package, error) {
	return s.transition(ctx, code, parcel.NewRegisteredAtFacility(facility))
}

// Claim hands the package to agent.
func (s *Service) Claim(ctx context.Context, code kernel.TrackingCode, agent string) (parcel.Package, error) {
	return s.transition(ctx, code, parcel.NewClaim(agent))
}

// Depart starts the delivery run.
func (s *Service) Depart(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
	return s.transition(ctx, code, parcel.NewDepart())
}

// Scan re-affirms an in-transit package, optionally at a new location.
func (s *Service) Scan(ctx context.Context, code kernel.TrackingCode, location string) (parcel.Package, error) {
	return s.transition(ctx, code, parcel.NewScan(location))
}

// Cancel calls the shipment off.
func (s *Service) Cancel(ctx context.Context, code kernel.TrackingCode, reason string) (parcel.Package, error) {
	return s.transition(ctx, code, parcel.NewCancel(reason))
}

// Deliver completes the delivery with an existing photo reference.
func (s *Service) Deliver(
	ctx context.Context,
	code kernel.TrackingCode,
	proofRef, dropOffMethod string,
) (parcel.Package, error) {
	action := parcel.ActionOf(parcel.Deliver)
	cmd, err := commands.NewDeliverPackageCommand(code, proofRef, dropOffMethod)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, action, code, err)
	}
	return s.deliver(ctx, cmd)
}

// DeliverWithPhoto stores photo through the photo store and delivers with its reference.
func (s *Service) DeliverWithPhoto(
	ctx context.Context,
	code kernel.TrackingCode,
	filename string,
	photo io.Reader,
	dropOffMethod string,
) (parcel.Package, error) {
	action := parcel.ActionOf(parcel.Deliver)
	cmd, err := commands.NewDeliverPackageWithPhotoCommand(code, filename, photo, dropOffMethod)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, action, code, err)
	}
	return s.deliver(ctx, cmd)
}

// UpdateNotes replaces the notes; allowed in every status.
func (s *Service) UpdateNotes(ctx context.Context, code kernel.TrackingCode, notes string) (parcel.Package, error) {
	cmd, err := commands.NewUpdateNotesCommand(code, notes)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, parcel.ActionUpdateNotes, code, err)
	}

	pkg, err := s.notesHandler.Handle(ctx, cmd)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, parcel.ActionUpdateNotes, code, err)
	}
	s.accepted(ctx, parcel.ActionUpdateNotes, pkg)
	return pkg, nil
}

// Delete removes the package and returns its last snapshot.
func (s *Service) Delete(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
	cmd, err := commands.NewDeletePackageCommand(code)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, parcel.ActionDelete, code, err)
	}

	pkg, err := s.deleteHandler.Handle(ctx, cmd)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, parcel.ActionDelete, code, err)
	}
	s.accepted(ctx, parcel.ActionDelete, pkg)
	return pkg, nil
}

// Get returns the current snapshot of a package.
func (s *Service) Get(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
	q, err := queries.NewGetPackageQuery(code)
	if err != nil {
		return parcel.Package{}, err
	}
	return s.getHandler.Handle(ctx, q)
}

// List returns packages, most recently created first, restricted to statuses when given.
func (s *Service) List(ctx context.Context, statuses ...parcel.Status) ([]parcel.Package, error) {
	q, err := queries.NewListPackagesQuery(statuses...)
	if err != nil {
		return nil, err
	}
	return s.listHandler.Handle(ctx, q)
}

// History returns the journal of a package, or queries.ErrJournalDisabled.
func (s *Service) History(ctx context.Context, code kernel.TrackingCode) ([]ports.JournalEntry, error) {
	q, err := queries.NewGetPackageHistoryQuery(code)
	if err != nil {
		return nil, err
	}
	return s.historyHandler.Handle(ctx, q)
}

// Report returns the status histogram.
func (s *Service) Report(ctx context.Context) (queries.StatusReport, error) {
	return s.reportHandler.Handle(ctx, queries.NewGetStatusReportQuery())
}

// Subscribe registers a live subscription on the event stream.
func (s *Service) Subscribe(ctx context.Context, filter ports.EventFilter) ports.Subscription {
	return s.subscriber.Subscribe(ctx, filter)
}

func (s *Service) transition(ctx context.Context, code kernel.TrackingCode, t parcel.Transition) (parcel.Package, error) {
	action := parcel.ActionOf(t.Kind())
	cmd, err := commands.NewTransitionPackageCommand(code, t)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, action, code, err)
	}

	pkg, err := s.transitionHandler.Handle(ctx, cmd)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, action, code, err)
	}
	s.accepted(ctx, action, pkg)
	return pkg, nil
}

func (s *Service) deliver(ctx context.Context, cmd commands.DeliverPackageCommand) (parcel.Package, error) {
	action := parcel.ActionOf(parcel.Deliver)
	pkg, err := s.deliverHandler.Handle(ctx, cmd)
	if err != nil {
		return parcel.Package{}, s.rejected(ctx, action, cmd.Code(), err)
	}
	s.accepted(ctx, action, pkg)
	return pkg, nil
}

func (s *Service) accepted(ctx context.Context, action parcel.Action, pkg parcel.Package) {
	if s.mutations != nil {
		s.mutations.WithLabelValues(string(action)).Inc()
	}
	s.logger.DebugContext(ctx, "package mutation accepted",
		"action", action,
		"code", pkg.Code().String(),
		"status", pkg.Status().String(),
		"revision", pkg.Revision())
}

// rejected logs err and returns it unchanged.
func (s *Service) rejected(ctx context.Context, action parcel.Action, code kernel.TrackingCode, err error) error {
	reason := parcel.ReasonOf(err)
	level := slog.LevelWarn
	if reason == parcel.ReasonUnknown {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "package mutation rejected",
		"action", action,
		"code", code.String(),
		"reason", reason,
		"error", err)
	return err
}
