package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ogp-platform/proforma-backend/internal/notifications"
	"github.com/ogp-platform/proforma-backend/pkg/config"
	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
	"github.com/ogp-platform/proforma-backend/pkg/migrate"
	"github.com/ogp-platform/proforma-backend/pkg/outbox/idempotency"
	"github.com/ogp-platform/proforma-backend/pkg/pubsub"
	"github.com/ogp-platform/proforma-backend/pkg/redis"
)

const idempotencyTTL = 24 * time.Hour

// logMailer writes outgoing mail to the log. It stands in until a real
// provider is wired behind the Mailer boundary.
type logMailer struct {
	logg *logger.Logger
	from config.MailConfig
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"to":      to,
		"from":    m.from.FromAddress,
		"subject": subject,
	})
	m.logg.Info(logCtx, "outgoing mail")
	return nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "notifier"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "notifier"

	logg = logger.New(logger.Options{
		ServiceName: "notifier",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	manager, err := idempotency.NewManager(redisClient, idempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	consumer, err := notifications.NewConsumer(
		notificationService,
		&logMailer{logg: logg, from: cfg.Mail},
		pubsubClient.DomainSubscription(),
		manager,
		cfg.Mail,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "notifier",
	})
	logg.Info(ctx, "starting notification consumer")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notification consumer stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "notification consumer shutting down gracefully")
}
