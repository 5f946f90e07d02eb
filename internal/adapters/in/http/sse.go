package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// StreamEvents handles GET /api/v1/events[?code=...] as a Server-Sent-Events stream.
//
// Frames:
//
//	event: created|updated|deleted
//	id: <code>:<revision>
//	data: <Event JSON>
//
// A ": keepalive" comment is written every keepAlive. The stream ends when the client
// disconnects or the subscription ends; in the latter case a final "end" event carries
// the reason so the client can reconnect.
func (s *Server) StreamEvents(c echo.Context) error {
	filter := ports.AllPackages()
	if raw := c.QueryParam("code"); raw != "" {
		code, err := kernel.ParseTrackingCode(raw)
		if err != nil {
			return writeError(c, err)
		}
		filter = ports.OnlyPackage(code)
	}

	ctx := c.Request().Context()
	sub := s.service.Subscribe(ctx, filter)
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return nil
	}
	w.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.Events():
			if !ok {
				if ctx.Err() == nil {
					_, _ = fmt.Fprintf(w, "event: end\ndata: %q\n\n", sub.Err())
					w.Flush()
				}
				return nil
			}
			if err := writeEvent(w, e); err != nil {
				return nil
			}
			w.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func writeEvent(w *echo.Response, e parcel.PackageEvent) error {
	data, err := json.Marshal(eventFromDomain(e))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\nid: %s:%d\ndata: %s\n\n",
		e.Kind, e.Package.Code(), e.Package.Revision(), data)
	return err
}
