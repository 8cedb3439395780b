package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "brandcatalog/internal/app"
	"brandcatalog/internal/cache"
	"brandcatalog/internal/config"
	"brandcatalog/internal/pkg/jwtutil"
	mysqlClient "brandcatalog/internal/platform/mysql"
	rabbitmqClient "brandcatalog/internal/platform/rabbitmq"
	redisClient "brandcatalog/internal/platform/redis"
	"brandcatalog/internal/ratelimit"
	"brandcatalog/internal/repository"
	"brandcatalog/internal/repository/memory"
	"brandcatalog/internal/worker"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type brandEventStore interface {
	worker.BrandEventStore
	appsvc.BrandEventReader
}

type App struct {
	Config *config.Config
	Logger *slog.Logger

	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Publisher   *rabbitmqClient.BrandEventPublisher
	EventWorker *worker.BrandEventWorker

	Tokens       *jwtutil.Service
	AuthService  *appsvc.AuthService
	BrandService *appsvc.BrandService
	// Limiter is nil when rate limiting is disabled.
	Limiter ratelimit.Limiter

	StartedAt time.Time
}

// New opens the configured backends and wires the services. On error every
// resource opened so far is released.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("release resources after failed start", "error", closeErr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.UsesDevSecret() && cfg.App.Env != "dev" {
		a.Logger.Warn("jwt secret is not configured, using the development default", "env", cfg.App.Env)
	}

	var (
		users  appsvc.UserRepository
		brands appsvc.BrandRepository
		events brandEventStore
	)
	switch cfg.Storage.Driver {
	case DriverMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return err
		}
		a.MySQL = db
		if cfg.Storage.AutoMigrate {
			if err := mysqlClient.MigrateUp(cfg.MigrateURL()); err != nil {
				return err
			}
		}
		users = repository.NewUserRepository(db)
		brands = repository.NewBrandRepository(db)
		events = repository.NewBrandEventRepository(db)
	case DriverMemory:
		users = memory.NewUserRepository()
		brands = memory.NewBrandRepository()
		events = memory.NewBrandEventRepository()
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	a.Logger.Info("storage ready", "driver", cfg.Storage.Driver)

	if cfg.Storage.Seed {
		if err := appsvc.NewSeeder(users, brands, a.Logger).Seed(ctx); err != nil {
			return fmt.Errorf("seed storage failed: %w", err)
		}
	}

	var publisher appsvc.BrandEventPublisher = worker.NewInlineRecorder(events)
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.BrandEventQueue)
		if err != nil {
			return err
		}
		a.MQConn = conn
		a.Publisher = rabbitmqClient.NewBrandEventPublisher(conn, cfg.RabbitMQ.BrandEventQueue)
		a.EventWorker = worker.NewBrandEventWorker(conn, events, cfg.RabbitMQ.BrandEventQueue, a.Logger)
		if err := a.EventWorker.Start(ctx); err != nil {
			return fmt.Errorf("start brand event worker failed: %w", err)
		}
		publisher = a.Publisher
	}

	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
	}

	if cfg.RateLimit.Enabled {
		if a.Redis != nil {
			a.Limiter = ratelimit.NewRedisLimiter(a.Redis, cfg.RateLimit.MaxRequests, cfg.RateLimitWindow())
		} else {
			a.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimitWindow())
		}
	}

	validator := appsvc.NewValidator(time.Now)
	a.Tokens = jwtutil.NewService(cfg.Auth.JWTSecret)
	a.AuthService = appsvc.NewAuthService(users, a.Tokens, validator)
	a.BrandService = appsvc.NewBrandService(brands, events, publisher, validator, a.Logger)
	if a.Redis != nil {
		a.BrandService.UseCache(cache.NewBrandCache(a.Redis, cfg.RedisBrandCacheTTL()))
	}
	return nil
}

// HealthChecks lists a check per configured backend.
func (a *App) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if a.MySQL != nil {
		checks["mysql"] = func(ctx context.Context) error {
			return mysqlClient.Ping(ctx, a.MySQL)
		}
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	if a.MQConn != nil {
		checks["rabbitmq"] = func(ctx context.Context) error {
			if a.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}

func (a *App) Close() error {
	var errs []error
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
