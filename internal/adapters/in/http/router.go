package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxUploadSize bounds the deliver request body, photo included.
const MaxUploadSize = "10M"

// RouterConfig holds the ambient collaborators of the echo instance.
type RouterConfig struct {
	Logger *slog.Logger
	// Requests counts served requests; nil disables counting.
	Requests *prometheus.CounterVec
	// Gatherer backs GET /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the echo instance with middleware and every route registered.
func NewRouter(s *Server, cfg RouterConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelDebug
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "http request",
				slog.String("component", "HTTP"),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.Any("error", v.Error))
			return nil
		},
	}))
	if cfg.Requests != nil {
		e.Use(countRequests(cfg.Requests))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1")
	api.GET("/events", s.StreamEvents)

	packages := api.Group("/packages")
	packages.POST("", s.CreatePackage)
	packages.GET("", s.ListPackages)
	packages.GET("/:code", s.GetPackage)
	packages.DELETE("/:code", s.DeletePackage)
	packages.POST("/:code/delete", s.DeletePackage)
	packages.PATCH("/:code/notes", s.UpdateNotes)
	packages.POST("/:code/facility", s.RegisterAtFacility)
	packages.POST("/:code/claim", s.Claim)
	packages.POST("/:code/depart", s.Depart)
	packages.POST("/:code/scan", s.Scan)
	packages.POST("/:code/deliver", s.Deliver, middleware.BodyLimit(MaxUploadSize))
	packages.POST("/:code/cancel", s.Cancel)
	packages.GET("/:code/history", s.History)

	return e
}

func countRequests(counter *prometheus.CounterVec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			counter.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			return err
		}
	}
}
