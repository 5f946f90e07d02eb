package packagestore_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"parceldesk/internal/adapters/out/memory/packagestore"
	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []parcel.PackageEvent
}

func (r *recorder) commit(e parcel.PackageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []parcel.PackageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]parcel.PackageEvent(nil), r.events...)
}

func newDraft(t *testing.T) parcel.Draft {
	t.Helper()
	recipient, err := kernel.NewContact("J. Doe", "1 Main St", "", "")
	require.NoError(t, err)
	d, err := parcel.NewDraft("books", recipient, kernel.Contact{}, "")
	require.NoError(t, err)
	return d
}

func sequence(codes ...string) kernel.CodeGenerator {
	var i atomic.Int64
	return kernel.CodeGeneratorFunc(func() kernel.TrackingCode {
		n := int(i.Add(1)) - 1
		if n >= len(codes) {
			n = len(codes) - 1
		}
		return kernel.MustParseTrackingCode(codes[n])
	})
}

func newStore(opts ...packagestore.Option) *packagestore.Store {
	opts = append([]packagestore.Option{packagestore.WithClock(func() time.Time { return testNow })}, opts...)
	return packagestore.New(opts...)
}

func TestStore_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("should store a Created package and commit one event", func(t *testing.T) {
		store := newStore()
		rec := &recorder{}

		pkg, err := store.Insert(ctx, newDraft(t), rec.commit)

		require.NoError(t, err)
		assert.Equal(t, parcel.Created, pkg.Status())
		got, err := store.Get(ctx, pkg.Code())
		require.NoError(t, err)
		assert.Equal(t, pkg, got)

		events := rec.snapshot()
		require.Len(t, events, 1)
		assert.Equal(t, parcel.PackageCreated, events[0].Kind)
		assert.Equal(t, parcel.ActionCreate, events[0].Action)
		assert.Equal(t, pkg.Code(), events[0].Package.Code())
	})

	t.Run("should retry a colliding generator", func(t *testing.T) {
		store := newStore(packagestore.WithGenerator(sequence(
			"0000000000000001", "0000000000000001", "0000000000000002",
		)))

		first, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)
		second, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)

		assert.Equal(t, "0000000000000001", first.Code().String())
		assert.Equal(t, "0000000000000002", second.Code().String())
	})

	t.Run("should never reuse a deleted code", func(t *testing.T) {
		store := newStore(packagestore.WithGenerator(sequence(
			"0000000000000001", "0000000000000001", "0000000000000003",
		)))

		first, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)
		_, err = store.Remove(ctx, first.Code(), nil)
		require.NoError(t, err)

		second, err := store.Insert(ctx, newDraft(t), nil)

		require.NoError(t, err)
		assert.Equal(t, "0000000000000003", second.Code().String())
	})

	t.Run("should surface DuplicateCode once every attempt collides", func(t *testing.T) {
		store := newStore(packagestore.WithGenerator(sequence("0000000000000001")))
		_, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)
		rec := &recorder{}

		_, err = store.Insert(ctx, newDraft(t), rec.commit)

		require.ErrorIs(t, err, parcel.ErrDuplicateCode)
		assert.Empty(t, rec.snapshot())
	})

	t.Run("should reject a zero draft", func(t *testing.T) {
		_, err := newStore().Insert(ctx, parcel.Draft{}, nil)

		require.ErrorIs(t, err, parcel.ErrDraftIsNotConstructed)
	})

	t.Run("should honour a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newStore().Insert(cancelled, newDraft(t), nil)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestStore_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("should commit an Updated event per accepted transition", func(t *testing.T) {
		store := newStore()
		rec := &recorder{}
		pkg, err := store.Insert(ctx, newDraft(t), rec.commit)
		require.NoError(t, err)

		_, err = store.Transition(ctx, pkg.Code(), parcel.NewRegisteredAtFacility("Dock 4"), rec.commit)
		require.NoError(t, err)
		updated, err := store.Transition(ctx, pkg.Code(), parcel.NewClaim("driver-7"), rec.commit)
		require.NoError(t, err)

		assert.Equal(t, parcel.Claimed, updated.Status())
		events := rec.snapshot()
		require.Len(t, events, 3)
		assert.Equal(t, parcel.PackageUpdated, events[2].Kind)
		assert.Equal(t, parcel.Action("claim"), events[2].Action)
		assert.Equal(t, uint64(3), events[2].Package.Revision())
	})

	t.Run("should leave the record unchanged on rejection", func(t *testing.T) {
		store := newStore()
		rec := &recorder{}
		pkg, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)

		_, err = store.Transition(ctx, pkg.Code(), parcel.NewDeliver("", ""), rec.commit)
		require.ErrorIs(t, err, parcel.ErrMissingProof)
		_, err = store.Transition(ctx, pkg.Code(), parcel.NewDepart(), rec.commit)
		require.ErrorIs(t, err, parcel.ErrInvalidTransition)

		got, err := store.Get(ctx, pkg.Code())
		require.NoError(t, err)
		assert.Equal(t, pkg, got)
		assert.Empty(t, rec.snapshot())
	})

	t.Run("should return NotFound for unknown codes", func(t *testing.T) {
		_, err := newStore().Transition(ctx, kernel.MustParseTrackingCode("0000000000000009"), parcel.NewDepart(), nil)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.Equal(t, parcel.ReasonNotFound, parcel.ReasonOf(err))
	})

	t.Run("should let exactly one of N concurrent claims win", func(t *testing.T) {
		const n = 32
		store := newStore()
		rec := &recorder{}
		pkg, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)
		_, err = store.Transition(ctx, pkg.Code(), parcel.NewRegisteredAtFacility(""), nil)
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
			rejected  atomic.Int32
		)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Transition(ctx, pkg.Code(), parcel.NewClaim(fmt.Sprintf("agent-%d", i)), rec.commit)
				switch {
				case err == nil:
					succeeded.Add(1)
				case parcel.ReasonOf(err) == parcel.ReasonInvalidTransition:
					rejected.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(n-1), rejected.Load())
		events := rec.snapshot()
		require.Len(t, events, 1)
		got, err := store.Get(ctx, pkg.Code())
		require.NoError(t, err)
		assert.Equal(t, events[0].Package.ClaimedBy(), got.ClaimedBy())
	})
}

func TestStore_UpdateNotes(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	rec := &recorder{}
	pkg, err := store.Insert(ctx, newDraft(t), nil)
	require.NoError(t, err)
	_, err = store.Transition(ctx, pkg.Code(), parcel.NewCancel(""), nil)
	require.NoError(t, err)

	updated, err := store.UpdateNotes(ctx, pkg.Code(), "returned to sender", rec.commit)

	require.NoError(t, err)
	assert.Equal(t, "returned to sender", updated.Notes())
	assert.Equal(t, parcel.Cancelled, updated.Status())
	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, parcel.PackageUpdated, events[0].Kind)
	assert.Equal(t, parcel.ActionUpdateNotes, events[0].Action)
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	rec := &recorder{}
	pkg, err := store.Insert(ctx, newDraft(t), nil)
	require.NoError(t, err)

	last, err := store.Remove(ctx, pkg.Code(), rec.commit)

	require.NoError(t, err)
	assert.Equal(t, pkg.Code(), last.Code())
	assert.Equal(t, pkg.Revision()+1, last.Revision())
	_, err = store.Get(ctx, pkg.Code())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, parcel.PackageDeleted, events[0].Kind)

	_, err = store.Remove(ctx, pkg.Code(), rec.commit)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Len(t, rec.snapshot(), 1)
}

func TestStore_ListAndCount(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	var codes []kernel.TrackingCode
	for range 3 {
		pkg, err := store.Insert(ctx, newDraft(t), nil)
		require.NoError(t, err)
		codes = append(codes, pkg.Code())
	}
	_, err := store.Transition(ctx, codes[0], parcel.NewRegisteredAtFacility(""), nil)
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, codes[2], list[0].Code())
	assert.Equal(t, codes[1], list[1].Code())
	assert.Equal(t, codes[0], list[2].Code())

	counts, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[parcel.Created])
	assert.Equal(t, 1, counts[parcel.AtFacility])
	assert.Equal(t, 0, counts[parcel.Delivered])
	assert.Len(t, counts, len(parcel.Statuses()))
}
