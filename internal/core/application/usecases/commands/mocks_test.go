package commands_test

import (
	"context"
	"io"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockPackageStore struct{ mock.Mock }

func (m *MockPackageStore) Insert(ctx context.Context, d parcel.Draft, commit ports.CommitFunc) (parcel.Package, error) {
	args := m.Called(ctx, d, commit)
	return args.Get(0).(parcel.Package), args.Error(1)
}

func (m *MockPackageStore) Get(ctx context.Context, code kernel.TrackingCode) (parcel.Package, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(parcel.Package), args.Error(1)
}

func (m *MockPackageStore) Transition(
	ctx context.Context,
	code kernel.TrackingCode,
	t parcel.Transition,
	commit ports.CommitFunc,
) (parcel.Package, error) {
	args := m.Called(ctx, code, t, commit)
	return args.Get(0).(parcel.Package), args.Error(1)
}

func (m *MockPackageStore) UpdateNotes(
	ctx context.Context,
	code kernel.TrackingCode,
	notes string,
	commit ports.CommitFunc,
) (parcel.Package, error) {
	args := m.Called(ctx, code, notes, commit)
	return args.Get(0).(parcel.Package), args.Error(1)
}

func (m *MockPackageStore) Remove(ctx context.Context, code kernel.TrackingCode, commit ports.CommitFunc) (parcel.Package, error) {
	args := m.Called(ctx, code, commit)
	return args.Get(0).(parcel.Package), args.Error(1)
}

func (m *MockPackageStore) List(_ context.Context) ([]parcel.Package, error) {
	return nil, nil
}

func (m *MockPackageStore) Count(_ context.Context) (map[parcel.Status]int, error) {
	return nil, nil
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(e parcel.PackageEvent) {
	m.Called(e)
}

type MockPhotoStore struct{ mock.Mock }

func (m *MockPhotoStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

// commitWith makes a mocked store mutation call its commit callback with e.
func commitWith(e parcel.PackageEvent, commitArg int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(commitArg).(ports.CommitFunc)(e)
	}
}
