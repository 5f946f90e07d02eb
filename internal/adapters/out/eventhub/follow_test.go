package eventhub_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"parceldesk/internal/adapters/out/eventhub"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFollow(t *testing.T) {
	t.Run("should resubscribe after a drop and stop when the hub closes", func(t *testing.T) {
		hub := eventhub.New(eventhub.WithBufferSize(1))
		pkg := newPackage(t)

		var (
			mu      sync.Mutex
			seen    []string
			entered = make(chan struct{})
			release = make(chan struct{})
		)
		handle := func(_ context.Context, e parcel.PackageEvent) {
			if e.Package.Notes() == "block" {
				close(entered)
				<-release
			}
			mu.Lock()
			seen = append(seen, e.Package.Notes())
			mu.Unlock()
		}
		seenNow := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), seen...)
		}

		done := make(chan error, 1)
		go func() {
			done <- eventhub.Follow(context.Background(), hub, ports.AllPackages(), testLogger(), handle)
		}()
		require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, waitFor, 5*time.Millisecond)

		hub.Publish(updated(pkg, "block"))
		<-entered
		// The handler is stuck; the second event fills the one-slot buffer and the third overflows it.
		hub.Publish(updated(pkg, "buffered"))
		hub.Publish(updated(pkg, "lost"))
		assert.Equal(t, 0, hub.SubscriberCount())
		close(release)

		require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, waitFor, 5*time.Millisecond)
		hub.Publish(updated(pkg, "after"))
		require.Eventually(t, func() bool { return len(seenNow()) == 3 }, waitFor, 5*time.Millisecond)
		hub.Close()

		select {
		case err := <-done:
			require.ErrorIs(t, err, eventhub.ErrHubClosed)
		case <-time.After(waitFor):
			require.FailNow(t, "Follow did not return")
		}
		assert.Equal(t, []string{"block", "buffered", "after"}, seenNow())
	})

	t.Run("should return the context error on cancellation", func(t *testing.T) {
		hub := eventhub.New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := eventhub.Follow(ctx, hub, ports.AllPackages(), testLogger(), func(context.Context, parcel.PackageEvent) {})

		require.ErrorIs(t, err, context.Canceled)
	})
}
