package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ymurata/gm-availability/internal/availability"
	"github.com/ymurata/gm-availability/internal/discord"
	"github.com/ymurata/gm-availability/internal/handlers"
	"github.com/ymurata/gm-availability/internal/notify"
	"github.com/ymurata/gm-availability/internal/outbox"
	"github.com/ymurata/gm-availability/internal/storage"
	"github.com/ymurata/gm-availability/libs/config"
	"github.com/ymurata/gm-availability/libs/db"
	"github.com/ymurata/gm-availability/libs/httpx"
	"github.com/ymurata/gm-availability/libs/kafkax"
	otelx "github.com/ymurata/gm-availability/libs/otel"
	"github.com/ymurata/gm-availability/libs/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8086")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	publicKeyHex, err := config.RequiredString("DISCORD_PUBLIC_KEY")
	if err != nil {
		panic(err)
	}
	publicKey, err := discord.ParsePublicKey(publicKeyHex)
	if err != nil {
		logger.Error("invalid discord public key", "err", err)
		panic(err)
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	reservations := storage.NewReservationRepository(pool)
	staff := storage.NewStaffRepository(pool)
	responses := storage.NewResponseRepository(pool)
	outboxRepo := outbox.NewRepository()

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	svc := availability.NewService(reservations, staff, responses, outboxRepo, logger)
	webhookClient := discord.NewWebhookClient(config.String("DISCORD_API_BASE_URL", discord.DefaultAPIBaseURL))

	dispatcher := notify.NewDispatcher(logger, notify.DispatcherConfig{
		Workers:   config.Int("NOTIFY_WORKERS", 4),
		QueueSize: config.Int("NOTIFY_QUEUE_SIZE", 256),
	})
	dispatcherDone := make(chan struct{})
	go func() {
		dispatcher.Run()
		close(dispatcherDone)
	}()

	interactions := handlers.NewInteractionsHandler(publicKey, svc, webhookClient, dispatcher, logger)

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}

	var interactionsHandler http.Handler = interactions
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		limiter := httpx.NewRedisRateLimiter(rdb,
			config.Int("RATE_LIMIT_RPM", 300),
			time.Minute,
			"availability",
		)
		// Fail open: the signature check is the real gate, a Redis
		// outage must not take the webhook down with it.
		interactionsHandler = limiter.Middleware(logger, true)(interactionsHandler)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	}
	if kafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/api/v1/discord/interactions", interactionsHandler)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}

	// The dispatcher stops accepting only once the server has finished
	// its in-flight handlers; every acknowledged toggle then drains
	// before the process exits.
	dispatcher.Shutdown()
	<-dispatcherDone
	logger.Info("http server stopped")
}
