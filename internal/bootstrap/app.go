package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chemsite/internal/app"
	"chemsite/internal/cache"
	"chemsite/internal/catalog"
	"chemsite/internal/config"
	"chemsite/internal/i18n"
	"chemsite/internal/notify"
	"chemsite/internal/platform/logging"
	mysqlClient "chemsite/internal/platform/mysql"
	rabbitmqClient "chemsite/internal/platform/rabbitmq"
	redisClient "chemsite/internal/platform/redis"
	"chemsite/internal/repository"
	"chemsite/internal/worker"
)

// App owns every long-lived resource of the process. Optional resources
// (Redis, MQConn, NotifyWorker) are nil when disabled in config.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store        repository.ContactStore
	Redis        *redis.Client
	MQConn       *amqp.Connection
	NotifyWorker *worker.ContactNotifyWorker

	Publisher   app.ContactPublisher
	Preferences i18n.PreferenceStore
	Bundle      *i18n.Bundle
	Catalog     *catalog.Catalog

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}
	logger = logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	return Build(ctx, cfg, logger)
}

// Build wires the application from an already loaded config. On failure every
// resource opened so far is closed again.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.Bundle, err = i18n.Load(cfg.I18n.DefaultLanguage); err != nil {
		return nil, fmt.Errorf("load translations failed: %w", err)
	}
	if a.Catalog, err = catalog.Load(); err != nil {
		return nil, fmt.Errorf("load product catalog failed: %w", err)
	}

	if a.Store, err = openContactStore(ctx, cfg, logger); err != nil {
		return nil, err
	}

	a.Preferences = i18n.NewMemoryPreferenceStore()
	if cfg.Redis.Enabled {
		if a.Redis, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.Redis.PreferenceTTLSeconds) * time.Second
		a.Preferences = cache.NewPreferenceCache(a.Redis, ttl)
	}

	notifier := newNotifier(cfg, logger)
	if cfg.RabbitMQ.Enabled {
		if a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL); err != nil {
			return nil, err
		}
		a.Publisher = rabbitmqClient.NewContactPublisher(a.MQConn, cfg.RabbitMQ.ContactQueue)
		a.NotifyWorker = worker.NewContactNotifyWorker(a.MQConn, notifier, cfg.RabbitMQ.ContactQueue, logger)
		if err = a.NotifyWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start contact notify worker failed: %w", err)
		}
	} else {
		a.Publisher = notify.NewDirect(notifier)
	}

	logger.Info("application wired",
		zap.String("contact_store", cfg.Contact.Store),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled),
		zap.Strings("languages", a.Bundle.Supported()),
	)
	return a, nil
}

func openContactStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ContactStore, error) {
	switch cfg.Contact.Store {
	case config.StoreMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), logger)
		if err != nil {
			return nil, err
		}
		store := repository.NewGormContactStore(db)
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.StoreSQLite:
		store, err := repository.NewSQLiteContactStore(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return repository.NewMemoryContactStore(), nil
	}
}

func newNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.Notify.WebhookURL == "" {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewWebhookNotifier(cfg.Notify.WebhookURL, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
}

// Close releases resources in reverse order of construction.
func (a *App) Close() error {
	var errs []error
	if a.NotifyWorker != nil {
		a.NotifyWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close contact store: %w", err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
