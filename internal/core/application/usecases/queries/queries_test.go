package queries_test

import (
	"context"
	"testing"

	"parceldesk/internal/adapters/out/memory/packagestore"
	"parceldesk/internal/core/application/usecases/queries"
	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJournal struct{ mock.Mock }

func (m *MockJournal) Append(ctx context.Context, e parcel.PackageEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockJournal) History(ctx context.Context, code kernel.TrackingCode) ([]ports.JournalEntry, error) {
	args := m.Called(ctx, code)
	return args.Get(0).([]ports.JournalEntry), args.Error(1)
}

func seed(t *testing.T, store *packagestore.Store, n int) []parcel.Package {
	t.Helper()
	recipient, err := kernel.NewContact("J. Doe", "1 Main St", "", "")
	require.NoError(t, err)
	draft, err := parcel.NewDraft("books", recipient, kernel.Contact{}, "")
	require.NoError(t, err)

	out := make([]parcel.Package, 0, n)
	for range n {
		pkg, err := store.Insert(t.Context(), draft, nil)
		require.NoError(t, err)
		out = append(out, pkg)
	}
	return out
}

func TestGetPackageQueryHandler_Handle(t *testing.T) {
	store := packagestore.New()
	pkgs := seed(t, store, 1)
	h := queries.NewGetPackageQueryHandler(store)

	q, err := queries.NewGetPackageQuery(pkgs[0].Code())
	require.NoError(t, err)
	got, err := h.Handle(t.Context(), q)
	require.NoError(t, err)
	assert.Equal(t, pkgs[0], got)

	missing, err := queries.NewGetPackageQuery(kernel.MustParseTrackingCode("0000000000000000"))
	require.NoError(t, err)
	_, err = h.Handle(t.Context(), missing)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	_, err = queries.NewGetPackageQuery(kernel.TrackingCode{})
	require.ErrorIs(t, err, queries.ErrTrackingCodeIsRequired)

	_, err = h.Handle(t.Context(), queries.GetPackageQuery{})
	require.ErrorIs(t, err, queries.ErrGetPackageQueryIsNotConstructed)
}

func TestListPackagesQueryHandler_Handle(t *testing.T) {
	store := packagestore.New()
	pkgs := seed(t, store, 3)
	_, err := store.Transition(t.Context(), pkgs[1].Code(), parcel.NewRegisteredAtFacility(""), nil)
	require.NoError(t, err)
	h := queries.NewListPackagesQueryHandler(store)

	t.Run("should list everything most recent first", func(t *testing.T) {
		q, err := queries.NewListPackagesQuery()
		require.NoError(t, err)

		got, err := h.Handle(t.Context(), q)

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, pkgs[2].Code(), got[0].Code())
	})

	t.Run("should filter by status", func(t *testing.T) {
		q, err := queries.NewListPackagesQuery(parcel.AtFacility)
		require.NoError(t, err)

		got, err := h.Handle(t.Context(), q)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, pkgs[1].Code(), got[0].Code())
	})

	t.Run("should reject Unknown as a filter", func(t *testing.T) {
		_, err := queries.NewListPackagesQuery(parcel.Unknown)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestGetPackageHistoryQueryHandler_Handle(t *testing.T) {
	code := kernel.MustParseTrackingCode("06BX4RK18MS2T0QZ")
	q, err := queries.NewGetPackageHistoryQuery(code)
	require.NoError(t, err)

	t.Run("should delegate to the journal", func(t *testing.T) {
		entries := []ports.JournalEntry{{Code: code, Kind: parcel.PackageCreated, Revision: 1}}
		journal := new(MockJournal)
		journal.On("History", mock.Anything, code).Return(entries, nil).Once()

		got, err := queries.NewGetPackageHistoryQueryHandler(journal).Handle(t.Context(), q)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
		journal.AssertExpectations(t)
	})

	t.Run("should report a disabled journal", func(t *testing.T) {
		_, err := queries.NewGetPackageHistoryQueryHandler(nil).Handle(t.Context(), q)

		require.ErrorIs(t, err, queries.ErrJournalDisabled)
	})
}

func TestGetStatusReportQueryHandler_Handle(t *testing.T) {
	store := packagestore.New()
	pkgs := seed(t, store, 3)
	_, err := store.Transition(t.Context(), pkgs[0].Code(), parcel.NewCancel(""), nil)
	require.NoError(t, err)

	report, err := queries.NewGetStatusReportQueryHandler(store).Handle(t.Context(), queries.NewGetStatusReportQuery())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Active)
	assert.Equal(t, 1, report.ByStatus[parcel.Cancelled])
}
