package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpin "parceldesk/internal/adapters/in/http"
	"parceldesk/internal/adapters/out/eventhub"
	"parceldesk/internal/adapters/out/filesystem/photostore"
	"parceldesk/internal/adapters/out/kafka"
	"parceldesk/internal/adapters/out/memory/packagestore"
	"parceldesk/internal/adapters/out/postgres/journalrepo"
	"parceldesk/internal/core/application/lifecycle"
	"parceldesk/internal/core/application/usecases/queries"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/jobs"
	"parceldesk/internal/metrics"
)

type CompositionRoot struct {
	config   Config
	logger   *slog.Logger
	registry *prometheus.Registry

	store   *packagestore.Store
	hub     *eventhub.Hub
	service *lifecycle.Service

	gormDB  *gorm.DB
	journal *journalrepo.GormJournalRepository
	relay   *kafka.Relay

	requests *prometheus.CounterVec
	wg       sync.WaitGroup
}

// NewCompositionRoot builds every component enabled by cfg. The journal and the Kafka
// relay are only created when their hosts are configured.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	hubMetrics := metrics.NewHub()
	mutations := metrics.NewPackageTransitionsTotal()
	requests := metrics.NewHTTPRequestsTotal()
	relayed := metrics.NewRelayPublishedTotal()

	collected := append(hubMetrics.Collectors(), mutations, requests, relayed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(registry, collected...); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	c := &CompositionRoot{
		config:   cfg,
		logger:   logger,
		registry: registry,
		requests: requests,
		store:    packagestore.New(packagestore.WithLogger(logger)),
		hub: eventhub.New(
			eventhub.WithBufferSize(cfg.HubBufferSize),
			eventhub.WithMetrics(hubMetrics),
			eventhub.WithLogger(logger),
		),
	}

	deps := lifecycle.Dependencies{
		Store:     c.store,
		Bus:       c.hub,
		Logger:    logger,
		Mutations: mutations,
	}

	photos, err := photostore.New(cfg.PhotoDir)
	if err != nil {
		return nil, err
	}
	deps.Photos = photos

	if cfg.JournalEnabled() {
		if err := c.openJournal(ctx); err != nil {
			c.Close()
			return nil, err
		}
		deps.Journal = c.journal
	}

	if cfg.KafkaEnabled() {
		relay, err := kafka.Dial(cfg.KafkaHost, cfg.KafkaPackageChangedTopic, relayed, logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		c.relay = relay
	}

	c.service = lifecycle.NewService(deps)
	return c, nil
}

func (c *CompositionRoot) openJournal(ctx context.Context) error {
	db, err := gorm.Open(postgresdriver.Open(c.config.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect journal database: %w", err)
	}
	c.gormDB = db

	journal := journalrepo.NewGormJournalRepository(db)
	if err := journal.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate journal: %w", err)
	}
	c.journal = journal
	return nil
}

// Service returns the lifecycle service.
func (c *CompositionRoot) Service() *lifecycle.Service {
	return c.service
}

// Hub returns the event hub.
func (c *CompositionRoot) Hub() *eventhub.Hub {
	return c.hub
}

// CreateRouter builds the HTTP API.
func (c *CompositionRoot) CreateRouter() *echo.Echo {
	server := httpin.NewServer(c.service)
	return httpin.NewRouter(server, httpin.RouterConfig{
		Logger:   c.logger,
		Requests: c.requests,
		Gatherer: c.registry,
	})
}

// CreateJobManager builds the scheduled jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	report := jobs.NewStatusReportJob(
		queries.NewGetStatusReportQueryHandler(c.store),
		c.hub,
		c.config.ReportSchedule,
		c.logger,
	)
	return jobs.NewJobManager(report)
}

// StartConsumers runs the journal recorder and the Kafka relay, when enabled, as hub
// subscribers until ctx is done or the hub closes.
func (c *CompositionRoot) StartConsumers(ctx context.Context) {
	if c.journal != nil {
		c.consume(ctx, "journal", func(ctx context.Context, bus ports.EventSubscriber) error {
			return c.journal.Record(ctx, bus, c.logger)
		})
	}
	if c.relay != nil {
		c.consume(ctx, "kafka relay", c.relay.Run)
	}
}

func (c *CompositionRoot) consume(
	ctx context.Context,
	name string,
	run func(context.Context, ports.EventSubscriber) error,
) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := run(ctx, c.hub)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, eventhub.ErrHubClosed) {
			c.logger.Error("event consumer stopped", "consumer", name, "error", err)
		}
	}()
}

// Close ends every subscription, waits for the consumers and releases connections.
func (c *CompositionRoot) Close() {
	c.hub.Close()
	c.wg.Wait()

	if c.relay != nil {
		if err := c.relay.Close(); err != nil {
			c.logger.Error("failed to close kafka producer", "error", err)
		}
	}
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				c.logger.Error("failed to close journal database", "error", err)
			}
		}
	}
}
