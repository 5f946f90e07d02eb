// Package http exposes the package lifecycle over HTTP/JSON with echo, plus a
// Server-Sent-Events stream of package events.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// DefaultKeepAlive is the interval between SSE keepalive comments.
const DefaultKeepAlive = 15 * time.Second

// PackageService is the subset of the lifecycle façade the HTTP layer needs.
type PackageService interface {
	Create(ctx context.Context, description string, recipient, sender kernel.Contact, notes string) (parcel.Package, error)
	RegisterAtFacility(ctx context.Context, code kernel.TrackingCode, facility string) (parcel.Package, error)
	Claim(ctx context.Context, code kernel.TrackingCode, agent string) (parcel.Package, error)
	Depart(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error)
	Scan(ctx context.Context, code kernel.TrackingCode, location string) (parcel.Package, error)
	Deliver(ctx context.Context, code kernel.TrackingCode, proofRef, dropOffMethod string) (parcel.Package, error)
	DeliverWithPhoto(
		ctx context.Context,
		code kernel.TrackingCode,
		filename string,
		photo io.Reader,
		dropOffMethod string,
	) (parcel.Package, error)
	Cancel(ctx context.Context, code kernel.TrackingCode, reason string) (parcel.Package, error)
	UpdateNotes(ctx context.Context, code kernel.TrackingCode, notes string) (parcel.Package, error)
	Delete(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error)
	Get(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error)
	List(ctx context.Context, statuses ...parcel.Status) ([]parcel.Package, error)
	History(ctx context.Context, code kernel.TrackingCode) ([]ports.JournalEntry, error)
	Subscribe(ctx context.Context, filter ports.EventFilter) ports.Subscription
}

// Server holds the HTTP handlers of the package API.
type Server struct {
	service   PackageService
	keepAlive time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithKeepAlive overrides DefaultKeepAlive.
func WithKeepAlive(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

// NewServer creates the HTTP handlers on top of service.
func NewServer(service PackageService, opts ...ServerOption) *Server {
	s := &Server{service: service, keepAlive: DefaultKeepAlive}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePackage handles POST /api/v1/packages. It accepts JSON or a flat form
// (recipientName, recipientAddress, ..., senderName, ...).
func (s *Server) CreatePackage(c echo.Context) error {
	req, err := bindCreateRequest(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	recipient, err := req.Recipient.toDomain()
	if err != nil {
		return writeError(c, err)
	}
	var sender kernel.Contact
	if req.Sender != nil && strings.TrimSpace(req.Sender.Name) != "" {
		if sender, err = req.Sender.toDomain(); err != nil {
			return writeError(c, err)
		}
	}

	pkg, err := s.service.Create(c.Request().Context(), req.Description, recipient, sender, req.Notes)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/packages/"+pkg.Code().String())
	return c.JSON(http.StatusCreated, packageFromDomain(pkg))
}

// ListPackages handles GET /api/v1/packages?status=a,b.
func (s *Server) ListPackages(c echo.Context) error {
	var statuses []parcel.Status
	for _, raw := range c.QueryParams()["status"] {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			status, err := parcel.ParseStatus(name)
			if err != nil {
				return writeError(c, err)
			}
			statuses = append(statuses, status)
		}
	}

	pkgs, err := s.service.List(c.Request().Context(), statuses...)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, packagesFromDomain(pkgs))
}

// GetPackage handles GET /api/v1/packages/:code.
func (s *Server) GetPackage(c echo.Context) error {
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.Get(ctx, code)
	})
}

// DeletePackage handles DELETE /api/v1/packages/:code and POST /api/v1/packages/:code/delete.
func (s *Server) DeletePackage(c echo.Context) error {
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.Delete(ctx, code)
	})
}

// UpdateNotes handles PATCH /api/v1/packages/:code/notes.
func (s *Server) UpdateNotes(c echo.Context) error {
	var req NotesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.UpdateNotes(ctx, code, req.Notes)
	})
}

// RegisterAtFacility handles POST /api/v1/packages/:code/facility.
func (s *Server) RegisterAtFacility(c echo.Context) error {
	var req FacilityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.RegisterAtFacility(ctx, code, req.Facility)
	})
}

// Claim handles POST /api/v1/packages/:code/claim.
func (s *Server) Claim(c echo.Context) error {
	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.Claim(ctx, code, req.Agent)
	})
}

// Depart handles POST /api/v1/packages/:code/depart.
func (s *Server) Depart(c echo.Context) error {
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.Depart(ctx, code)
	})
}

// Scan handles POST /api/v1/packages/:code/scan.
func (s *Server) Scan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.Scan(ctx, code, req.Location)
	})
}

// Deliver handles POST /api/v1/packages/:code/deliver. A multipart request may carry
// the proof as a "photo" file; otherwise photoRef must reference a stored photo.
func (s *Server) Deliver(c echo.Context) error {
	var req DeliverRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	file, err := c.FormFile("photo")
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
			return s.service.Deliver(ctx, code, req.PhotoRef, req.DropOffMethod)
		})
	default:
		return badRequest(c, "Invalid photo upload")
	}

	photo, err := file.Open()
	if err != nil {
		return badRequest(c, "Invalid photo upload")
	}
	defer photo.Close()

	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.DeliverWithPhoto(ctx, code, file.Filename, photo, req.DropOffMethod)
	})
}

// Cancel handles POST /api/v1/packages/:code/cancel.
func (s *Server) Cancel(c echo.Context) error {
	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return s.withCode(c, func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
		return s.service.Cancel(ctx, code, req.Reason)
	})
}

// History handles GET /api/v1/packages/:code/history.
func (s *Server) History(c echo.Context) error {
	code, err := kernel.ParseTrackingCode(c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}

	entries, err := s.service.History(c.Request().Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, historyFromDomain(entries))
}

func (s *Server) withCode(
	c echo.Context,
	fn func(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error),
) error {
	code, err := kernel.ParseTrackingCode(c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}

	pkg, err := fn(c.Request().Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, packageFromDomain(pkg))
}

func bindCreateRequest(c echo.Context) (CreatePackageRequest, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEApplicationForm) || strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		req := CreatePackageRequest{
			Description: c.FormValue("description"),
			Notes:       c.FormValue("notes"),
			Recipient:   formContact(c, "recipient"),
		}
		if sender := formContact(c, "sender"); sender.Name != "" {
			req.Sender = &sender
		}
		return req, nil
	}

	var req CreatePackageRequest
	err := c.Bind(&req)
	return req, err
}

func formContact(c echo.Context, prefix string) Contact {
	return Contact{
		Name:    c.FormValue(prefix + "Name"),
		Address: c.FormValue(prefix + "Address"),
		Phone:   c.FormValue(prefix + "Phone"),
		Email:   c.FormValue(prefix + "Email"),
	}
}
