package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/traffic_alert_bot/internal/config"
	v1 "github.com/shenikar/traffic_alert_bot/internal/handler/http/v1"
	"github.com/shenikar/traffic_alert_bot/internal/handler/telegram"
	"github.com/shenikar/traffic_alert_bot/internal/metrics"
	"github.com/shenikar/traffic_alert_bot/internal/models"
	"github.com/shenikar/traffic_alert_bot/internal/repository"
	"github.com/shenikar/traffic_alert_bot/internal/service"
	"github.com/shenikar/traffic_alert_bot/internal/source"
	"github.com/shenikar/traffic_alert_bot/internal/webhook"
	"github.com/shenikar/traffic_alert_bot/pkg/logger"
	"github.com/shenikar/traffic_alert_bot/pkg/postgres"
	redisclient "github.com/shenikar/traffic_alert_bot/pkg/redis"
)

const (
	migrationsDir   = "migrations"
	pollTimeout     = 60
	shutdownTimeout = 5 * time.Second
)

// stateStore - хранилище подписчиков и снимка ДТП
type stateStore interface {
	service.SubscriberRepository
	service.IncidentRepository
}

func main() {
	envFile := pflag.String("env-file", ".env", "path to the .env file (ADMIN_CHAT_ID is written back here)")
	once := pflag.Bool("once", false, "run one reconciliation cycle, print incidents as JSON and exit")
	logLevel := pflag.String("log-level", "", "override LOG_LEVEL")
	pflag.Parse()

	// Загрузка конфигурации
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, nil)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	defer closeStore()

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	incidentSource := source.NewClient(source.Options{
		APIKey:  cfg.YandexAPIKey,
		Timeout: cfg.SourceTimeout,
	}, log)
	trackerOpts := service.TrackerOptions{
		Box:         cfg.BBox(),
		Zoom:        cfg.Zoom,
		Interval:    cfg.PollInterval,
		Concurrency: cfg.TileConcurrent,
	}

	if *once {
		if err := runOnce(ctx, trackerOpts, incidentSource, store, log, m); err != nil {
			log.Fatalf("Reconciliation cycle failed: %v", err)
		}
		return
	}

	if err := run(ctx, cfg, trackerOpts, incidentSource, store, log, reg, m); err != nil {
		log.Fatalf("Service stopped with error: %v", err)
	}
	log.Info("Service gracefully stopped")
}

// openStore выбирает хранилище по STORAGE_DRIVER
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (stateStore, func(), error) {
	if cfg.StorageDriver != config.StoragePostgres {
		store, err := repository.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("dir", cfg.DataDir).Info("Using file state store")
		return store, func() {}, nil
	}

	// Запуск миграций
	log.Info("Running database migrations...")
	if err := postgres.Migrate(cfg.DatabaseURL, migrationsDir); err != nil {
		return nil, nil, err
	}
	log.Info("Database migrations applied successfully")

	// Подключение к PostgreSQL
	dbpool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Successfully connected to PostgreSQL")
	return repository.NewPostgresStore(dbpool), dbpool.Close, nil
}

// runOnce выполняет один цикл без бота: уведомления только логируются,
// снимок не сохраняется, чтобы работающий сервис не пропустил изменения.
func runOnce(ctx context.Context, opts service.TrackerOptions, src service.IncidentSource, store stateStore, log *logrus.Logger, m *metrics.Metrics) error {
	tracker, err := service.NewTracker(ctx, opts, src, readOnlyIncidents{store}, logNotifier{log}, nil, log, m)
	if err != nil {
		return err
	}
	if _, err := tracker.RunCycle(ctx); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tracker.Current().Sorted())
}

func run(ctx context.Context, cfg *config.Config, opts service.TrackerOptions, src service.IncidentSource, store stateStore, log *logrus.Logger, reg *prometheus.Registry, m *metrics.Metrics) error {
	registry, err := service.NewRegistry(ctx, store, repository.NewEnvAdminRepository(cfg.EnvFile), cfg.AdminChatID, log, m)
	if err != nil {
		return err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("could not create telegram bot: %w", err)
	}
	log.WithField("bot", bot.Self.UserName).Info("Authorized in Telegram")

	dispatcher := service.NewDispatcher(telegram.NewSender(bot), registry, cfg.SendTimeout, log, m)

	// Лента событий включается при заданном REDIS_ADDR
	var publisher webhook.WebhookPublisher
	var workerDone <-chan struct{}
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		publisher = webhook.NewRedisWebhookPublisher(redisClient)
		workerDone = webhook.NewWebhookWorker(redisClient, log, webhook.WorkerOptions{
			URL:        cfg.WebhookURL,
			Secret:     cfg.WebhookSecret,
			Timeout:    cfg.WebhookTimeout,
			MaxRetries: cfg.WebhookMaxRetries,
			BaseDelay:  cfg.WebhookBaseDelay,
		}).Start(ctx)
	}

	tracker, err := service.NewTracker(ctx, opts, src, store, dispatcher, publisher, log, m)
	if err != nil {
		return err
	}
	bots := telegram.NewHandler(bot, registry, tracker, cfg.SendTimeout, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tracker.Run(gctx) })
	g.Go(func() error { return bots.Run(gctx, pollTimeout) })

	if cfg.HTTPPort != "" {
		srv := newHTTPServer(cfg, tracker, registry, reg, log)
		g.Go(func() error {
			log.Infof("HTTP server started on port %s", cfg.HTTPPort)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if workerDone != nil {
		<-workerDone
	}
	return err
}

func newHTTPServer(cfg *config.Config, tracker *service.Tracker, registry *service.Registry, reg *prometheus.Registry, log *logrus.Logger) *http.Server {
	if len(cfg.APIKeys) == 0 {
		log.Warn("API_KEYS is empty, protected endpoints will reject every request")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := v1.NewHandler(tracker, registry, log)
	handler.RegisterRoutes(router.Group("/api/v1"), cfg.APIKeys)
	v1.RegisterMetrics(router, reg)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// readOnlyIncidents не сохраняет снимок ДТП
type readOnlyIncidents struct {
	service.IncidentRepository
}

func (readOnlyIncidents) SaveIncidents(context.Context, models.IncidentSet) error {
	return nil
}

// logNotifier вместо рассылки пишет сообщение в лог
type logNotifier struct {
	log *logrus.Logger
}

func (n logNotifier) Dispatch(_ context.Context, msg string) <-chan service.DeliveryReport {
	n.log.WithField("message", msg).Info("Changes detected (not delivered in --once mode)")
	ch := make(chan service.DeliveryReport, 1)
	ch <- service.DeliveryReport{}
	close(ch)
	return ch
}
