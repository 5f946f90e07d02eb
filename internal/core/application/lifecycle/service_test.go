package lifecycle_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"parceldesk/internal/adapters/out/eventhub"
	"parceldesk/internal/adapters/out/memory/packagestore"
	"parceldesk/internal/core/application/lifecycle"
	"parceldesk/internal/core/application/usecases/queries"
	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/metrics"
	"parceldesk/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type photoStub struct {
	saved []string
}

func (p *photoStub) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	b, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	p.saved = append(p.saved, string(b))
	return "ref-" + filename, nil
}

type LifecycleSuite struct {
	suite.Suite
	hub       *eventhub.Hub
	photos    *photoStub
	svc       *lifecycle.Service
	recipient kernel.Contact
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.hub = eventhub.New()
	s.photos = &photoStub{}
	s.svc = lifecycle.NewService(lifecycle.Dependencies{
		Store:     packagestore.New(),
		Bus:       s.hub,
		Photos:    s.photos,
		Mutations: metrics.NewPackageTransitionsTotal(),
	})

	var err error
	s.recipient, err = kernel.NewContact("J. Doe", "1 Main St", "", "")
	s.Require().NoError(err)
}

func (s *LifecycleSuite) TearDownTest() {
	s.hub.Close()
}

func (s *LifecycleSuite) create() parcel.Package {
	pkg, err := s.svc.Create(s.T().Context(), "books", s.recipient, kernel.Contact{}, "")
	s.Require().NoError(err)
	return pkg
}

func (s *LifecycleSuite) next(sub ports.Subscription) parcel.PackageEvent {
	select {
	case e, ok := <-sub.Events():
		s.Require().True(ok, "subscription ended: %v", sub.Err())
		return e
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for event")
	}
	return parcel.PackageEvent{}
}

func (s *LifecycleSuite) TestEndToEndScenario() {
	ctx := s.T().Context()

	pkg := s.create()
	s.Equal(parcel.Created, pkg.Status())

	pkg, err := s.svc.RegisterAtFacility(ctx, pkg.Code(), "")
	s.Require().NoError(err)
	s.Equal(parcel.AtFacility, pkg.Status())

	pkg, err = s.svc.Claim(ctx, pkg.Code(), "driver-7")
	s.Require().NoError(err)
	s.Equal(parcel.Claimed, pkg.Status())
	s.Equal("driver-7", pkg.ClaimedBy())

	pkg, err = s.svc.Deliver(ctx, pkg.Code(), "p123", "")
	s.Require().NoError(err)
	s.Equal(parcel.Delivered, pkg.Status())
	s.Equal("p123", pkg.ProofOfDelivery())

	_, err = s.svc.Cancel(ctx, pkg.Code(), "")
	s.Require().ErrorIs(err, parcel.ErrInvalidTransition)
	s.Equal(parcel.ReasonInvalidTransition, parcel.ReasonOf(err))
}

func (s *LifecycleSuite) TestDeliverNotifiesEarlySubscribersOnly() {
	ctx := s.T().Context()
	pkg := s.create()
	_, err := s.svc.RegisterAtFacility(ctx, pkg.Code(), "")
	s.Require().NoError(err)
	_, err = s.svc.Claim(ctx, pkg.Code(), "driver-7")
	s.Require().NoError(err)

	early := s.svc.Subscribe(ctx, ports.OnlyPackage(pkg.Code()))
	_, err = s.svc.Deliver(ctx, pkg.Code(), "p123", "porch")
	s.Require().NoError(err)
	late := s.svc.Subscribe(ctx, ports.OnlyPackage(pkg.Code()))

	e := s.next(early)
	s.Equal(parcel.PackageUpdated, e.Kind)
	s.Equal(parcel.Delivered, e.Package.Status())
	s.Equal("p123", e.Package.ProofOfDelivery())
	s.Empty(early.Events())
	s.Empty(late.Events())
}

func (s *LifecycleSuite) TestDeliverWithoutProofFromEveryNonTerminalState() {
	ctx := s.T().Context()
	pkg := s.create()
	steps := []func(kernel.TrackingCode) (parcel.Package, error){
		func(c kernel.TrackingCode) (parcel.Package, error) { return s.svc.RegisterAtFacility(ctx, c, "") },
		func(c kernel.TrackingCode) (parcel.Package, error) { return s.svc.Claim(ctx, c, "driver-7") },
		func(c kernel.TrackingCode) (parcel.Package, error) { return s.svc.Depart(ctx, c) },
		nil,
	}

	for _, step := range steps {
		before, err := s.svc.Get(ctx, pkg.Code())
		s.Require().NoError(err)

		_, err = s.svc.Deliver(ctx, pkg.Code(), "", "")
		s.Require().ErrorIs(err, parcel.ErrMissingProof, before.Status().String())

		after, err := s.svc.Get(ctx, pkg.Code())
		s.Require().NoError(err)
		s.Equal(before, after)

		if step != nil {
			_, err = step(pkg.Code())
			s.Require().NoError(err)
		}
	}
}

func (s *LifecycleSuite) TestDeliverWithPhoto() {
	ctx := s.T().Context()
	pkg := s.create()
	_, err := s.svc.RegisterAtFacility(ctx, pkg.Code(), "")
	s.Require().NoError(err)
	_, err = s.svc.Claim(ctx, pkg.Code(), "driver-7")
	s.Require().NoError(err)

	pkg, err = s.svc.DeliverWithPhoto(ctx, pkg.Code(), "door.jpg", strings.NewReader("jpeg-bytes"), "door")

	s.Require().NoError(err)
	s.Equal("ref-door.jpg", pkg.ProofOfDelivery())
	s.Equal([]string{"jpeg-bytes"}, s.photos.saved)
}

func (s *LifecycleSuite) TestDeleteThenRecreate() {
	ctx := s.T().Context()
	pkg := s.create()
	sub := s.svc.Subscribe(ctx, ports.AllPackages())

	_, err := s.svc.Delete(ctx, pkg.Code())
	s.Require().NoError(err)
	s.Equal(parcel.PackageDeleted, s.next(sub).Kind)

	_, err = s.svc.Get(ctx, pkg.Code())
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)

	again := s.create()
	s.NotEqual(pkg.Code(), again.Code())
}

func (s *LifecycleSuite) TestNotesAndReport() {
	ctx := s.T().Context()
	pkg := s.create()
	sub := s.svc.Subscribe(ctx, ports.AllPackages())

	updated, err := s.svc.UpdateNotes(ctx, pkg.Code(), "fragile")
	s.Require().NoError(err)
	s.Equal(parcel.Created, updated.Status())
	e := s.next(sub)
	s.Equal(parcel.ActionUpdateNotes, e.Action)

	report, err := s.svc.Report(ctx)
	s.Require().NoError(err)
	s.Equal(1, report.ByStatus[parcel.Created])

	list, err := s.svc.List(ctx, parcel.Created)
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.svc.History(ctx, pkg.Code())
	s.Require().ErrorIs(err, queries.ErrJournalDisabled)
}

func TestService_CountsMutations(t *testing.T) {
	counter := metrics.NewPackageTransitionsTotal()
	svc := lifecycle.NewService(lifecycle.Dependencies{
		Store:     packagestore.New(),
		Bus:       eventhub.New(),
		Mutations: counter,
	})
	recipient, err := kernel.NewContact("J. Doe", "1 Main St", "", "")
	require.NoError(t, err)

	pkg, err := svc.Create(t.Context(), "", recipient, kernel.Contact{}, "")
	require.NoError(t, err)
	_, err = svc.Depart(t.Context(), pkg.Code())
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(counter.WithLabelValues("create")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(counter.WithLabelValues("depart")), 0)
}
