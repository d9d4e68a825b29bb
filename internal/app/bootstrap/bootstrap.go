package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authorization "carebridge/contexts/identity-access/authorization-service"
	"carebridge/contexts/identity-access/authorization-service/adapters/token"
	disputeservice "carebridge/contexts/trust-safety/dispute-service"
	disputeauthz "carebridge/contexts/trust-safety/dispute-service/adapters/authz"
	disputepostgres "carebridge/contexts/trust-safety/dispute-service/adapters/postgres"
	disputeworkers "carebridge/contexts/trust-safety/dispute-service/application/workers"
	disputeports "carebridge/contexts/trust-safety/dispute-service/ports"
	verificationservice "carebridge/contexts/trust-safety/verification-service"
	verificationauthz "carebridge/contexts/trust-safety/verification-service/adapters/authz"
	verificationpostgres "carebridge/contexts/trust-safety/verification-service/adapters/postgres"
	verificationports "carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/platform/config"
	"carebridge/internal/platform/db"
	"carebridge/internal/platform/httpserver"
	"carebridge/internal/platform/messaging"
	"carebridge/internal/platform/obs"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/locking"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	kafka    *messaging.KafkaPublisher
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	kafka         *messaging.KafkaPublisher
	escrowRelease disputeworkers.EscrowReleaseJob
	pollInterval  time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}

	var publisher *messaging.KafkaPublisher
	if cfg.EnableNotifications {
		publisher, err = messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.NotificationTopic, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(registry)

	authzModule := authorization.NewModule(authorization.Dependencies{
		Audit:   audit.NewGormSink(pg.DB),
		Metrics: metrics,
		Logger:  logger,
	})

	locks := locking.NewKeyedLocks()
	verificationModule := verificationservice.NewModule(verificationservice.Dependencies{
		Repository: verificationpostgres.NewRepository(pg.DB, logger),
		Clock:      verificationpostgres.SystemClock{},
		IDs:        verificationpostgres.UUIDGenerator{},
		Gate:       verificationauthz.Gate{Authorizer: authzModule.Gate},
		Publisher:  publisherOrNilVerification(publisher),
		Metrics:    metrics,
		Locks:      locks,
		LockWait:   cfg.LockWait,
		Logger:     logger,
	})
	disputeModule := disputeservice.NewModule(disputeservice.Dependencies{
		Repository:    disputepostgres.NewRepository(pg.DB, logger),
		Clock:         disputepostgres.SystemClock{},
		IDs:           disputepostgres.UUIDGenerator{},
		Gate:          disputeauthz.Gate{Authorizer: authzModule.Gate},
		Publisher:     publisherOrNilDispute(publisher),
		Metrics:       metrics,
		Locks:         locks,
		LockWait:      cfg.LockWait,
		EscrowHold:    cfg.EscrowHold,
		PaymentWindow: cfg.PaymentDisputeWindow,
		Logger:        logger,
	})

	resolver, err := token.NewResolver([]byte(cfg.JWTSecret))
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(
		authzModule,
		verificationModule,
		disputeModule,
		resolver,
		registry,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		kafka:    publisher,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}

	var publisher *messaging.KafkaPublisher
	if cfg.EnableNotifications {
		publisher, err = messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.NotificationTopic, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
	}

	return &WorkerApp{
		postgres: pg,
		kafka:    publisher,
		escrowRelease: disputeworkers.EscrowReleaseJob{
			Repository: disputepostgres.NewRepository(pg.DB, logger),
			Clock:      disputepostgres.SystemClock{},
			IDs:        disputepostgres.UUIDGenerator{},
			Publisher:  publisherOrNilDispute(publisher),
			BatchSize:  cfg.EscrowBatchSize,
			Disabled:   !cfg.EnableEscrowRelease,
			Logger:     logger,
		},
		pollInterval: cfg.EscrowPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.kafka != nil {
		_ = a.kafka.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.escrowRelease.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.kafka != nil {
		_ = w.kafka.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// A nil *KafkaPublisher stored in a non-nil interface would defeat the
// use cases' nil-publisher guard, so convert explicitly per context.
func publisherOrNilVerification(p *messaging.KafkaPublisher) verificationports.NotificationPublisher {
	if p == nil {
		return nil
	}
	return p
}

func publisherOrNilDispute(p *messaging.KafkaPublisher) disputeports.NotificationPublisher {
	if p == nil {
		return nil
	}
	return p
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
