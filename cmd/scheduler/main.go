package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fleet_portal_backend/internal/adapters"
	bookingsrepo "fleet_portal_backend/internal/bookings/repository"
	bookingssvc "fleet_portal_backend/internal/bookings/service"
	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/events"
	identityrepo "fleet_portal_backend/internal/identity/repository"
	identitysvc "fleet_portal_backend/internal/identity/service"
	"fleet_portal_backend/internal/notification"
	"fleet_portal_backend/internal/notification/inapp"
	"fleet_portal_backend/internal/notification/ledger"
	quotationsrepo "fleet_portal_backend/internal/quotations/repository"
	quotationssvc "fleet_portal_backend/internal/quotations/service"
	reminderssvc "fleet_portal_backend/internal/reminders/service"
	"fleet_portal_backend/internal/scheduler"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/db"
	"fleet_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// The scheduler process wires services directly; it has no HTTP layer.
	identityService := identitysvc.New(identityrepo.New(pool), cfg)
	notificationService := notification.NewService(
		inapp.NewRepository(pool),
		ledger.NewRepository(pool),
		adapters.NewAdminProvider(identityService),
		log,
	)
	notification.NewSubscriber(notificationService, log).Register(eventBus)

	quotationService := quotationssvc.New(quotationsrepo.New(pool), cfg, sender, eventBus, log)
	bookingService := bookingssvc.New(bookingsrepo.New(pool), sender, eventBus, log)

	pipeline := reminderssvc.New(
		quotationService,
		bookingService,
		notificationService,
		sender,
		cfg,
		eventBus,
		log,
	)

	if cfg.GetRedisURL() == "" {
		// No Redis: fall back to an in-process interval loop.
		log.Warn("REDIS_URL not configured; running interval loop without asynq")
		runIntervalLoop(ctx, cfg, pipeline, log)
		return
	}

	worker, err := scheduler.NewWorker(cfg, pipeline, notificationService, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	dispatcher, err := scheduler.NewDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to initialize dispatcher", "error", err)
		panic("failed to initialize dispatcher: " + err.Error())
	}
	defer dispatcher.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, waiting for scheduler to stop")
	wg.Wait()
}

func runIntervalLoop(ctx context.Context, cfg config.SchedulerConfig, pipeline *reminderssvc.Service, log *logger.Logger) {
	interval := cfg.GetScanInterval()
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := pipeline.Run(ctx); err != nil {
			log.Error("reminder scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
