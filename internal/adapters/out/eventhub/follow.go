package eventhub

import (
	"context"
	"errors"
	"log/slog"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// Follow feeds every event matching filter into handle, one at a time, until ctx is done
// or the hub closes. A subscription dropped for falling behind is replaced by a fresh
// one; events published in between are lost and a warning reports the gap.
//
// Returns ctx's error or ErrHubClosed.
func Follow(
	ctx context.Context,
	bus ports.EventSubscriber,
	filter ports.EventFilter,
	logger *slog.Logger,
	handle func(context.Context, parcel.PackageEvent),
) error {
	var (
		handled uint64
		last    parcel.PackageEvent
	)
	for {
		sub := bus.Subscribe(ctx, filter)
		for e := range sub.Events() {
			handle(ctx, e)
			handled++
			last = e
		}

		err := sub.Err()
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrSlowSubscriber):
			logger.Warn("subscription dropped, resubscribing; events may be missing",
				"handled", handled,
				"lastCode", last.Code(),
				"lastRevision", last.Package.Revision(),
				"lastOccurredAt", last.OccurredAt)
		case errors.Is(err, ErrHubClosed):
			return ErrHubClosed
		default:
			return err
		}
	}
}
