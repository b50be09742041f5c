// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	appmealplan "github.com/recipewiz/backend/internal/application/mealplan"
	apprecipe "github.com/recipewiz/backend/internal/application/recipe"
	"github.com/recipewiz/backend/internal/domain/shared"
	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/infrastructure/events"
	"github.com/recipewiz/backend/internal/infrastructure/http/opsserver"
	"github.com/recipewiz/backend/internal/infrastructure/http/server"
	"github.com/recipewiz/backend/internal/infrastructure/monitoring"
	gormRepo "github.com/recipewiz/backend/internal/infrastructure/persistence/gorm"
	"github.com/recipewiz/backend/internal/infrastructure/persistence/memory"
	"github.com/recipewiz/backend/internal/infrastructure/persistence/migrations"
	"github.com/recipewiz/backend/internal/infrastructure/persistence/postgres"
	rediscache "github.com/recipewiz/backend/internal/infrastructure/persistence/redis"
	"github.com/recipewiz/backend/internal/infrastructure/persistence/sqlite"
	"github.com/recipewiz/backend/internal/infrastructure/search/edamam"
	"github.com/recipewiz/backend/internal/infrastructure/security"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/internal/ports/outbound"
	"github.com/recipewiz/backend/pkg/healthcheck"
	"github.com/recipewiz/backend/pkg/logger"
)

// demoUserID owns the recipes seeded into a development SQLite database
const demoUserID = 1

// ConfigPath is the configuration file given on the command line; empty
// means the default search locations
type ConfigPath string

// Module provides all dependency injection modules. The caller supplies
// a ConfigPath.
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,
	SearchModule,

	// Repository modules
	RepositoryModule,

	// Event modules
	EventModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging. The level is atomic so a config reload
// can change it without rebuilding the logger.
var LoggerModule = fx.Options(
	fx.Provide(
		func(cfg *config.Config) zap.AtomicLevel {
			return zap.NewAtomicLevelAt(logger.ParseLevel(cfg.App.LogLevel))
		},
		func(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
			return logger.NewWithLevel(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			}, level)
		},
	),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
	fx.Invoke(WatchLogLevel),
)

// MonitoringModule provides tracing, metrics and health checks
var MonitoringModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*monitoring.OpenTelemetryProvider, error) {
		return monitoring.NewOpenTelemetryProvider(monitoring.OpenTelemetryConfig{
			ServiceName:       strings.ToLower(cfg.App.Name),
			ServiceVersion:    cfg.App.Version,
			Environment:       cfg.App.Environment,
			TracingEnabled:    cfg.Monitoring.EnableTracing,
			OTLPTraceEndpoint: cfg.Monitoring.OTLPEndpoint,
			SamplingRate:      cfg.Monitoring.SamplingRate,
		}, log)
	},
	func(provider *monitoring.OpenTelemetryProvider) trace.Tracer {
		return provider.Tracer()
	},
	monitoring.NewBusinessMetrics,

	// nil when metrics are disabled
	func(cfg *config.Config, provider *monitoring.OpenTelemetryProvider) *monitoring.MetricsCollector {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return monitoring.NewMetricsCollector(provider.Registry())
	},

	NewHealthCheck,
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, provider *monitoring.OpenTelemetryProvider, log *zap.Logger) (*gorm.DB, error) {
		db, err := openDatabase(cfg, log)
		if err != nil {
			return nil, err
		}

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})

		if err := gormRepo.NewQueryMetrics(provider.Registry()).Install(db); err != nil {
			return nil, fmt.Errorf("failed to install query metrics: %w", err)
		}

		return db, nil
	},
)

// CacheModule provides caching. Redis is used when enabled; otherwise an
// in-process cache. The redis client is nil in the latter case.
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, redis.UniversalClient, error) {
		if !cfg.Redis.Enabled {
			cache := memory.NewCacheRepository(time.Minute)
			lc.Append(fx.StopHook(cache.Close))
			log.Info("Using in-memory cache")
			return cache, nil, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		client, err := rediscache.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, nil, err
		}
		lc.Append(fx.StopHook(client.Close))

		return rediscache.NewCacheRepository(client, cfg.Redis.KeyPrefix, log), client, nil
	},
)

// SearchModule provides the external recipe search gateway
var SearchModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.RecipeSearchGateway {
		if cfg.Search.AppID == "" || cfg.Search.AppKey == "" {
			log.Warn("Recipe search credentials are not configured; searches will fail")
		}
		return edamam.NewClient(cfg.Search, log)
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormRepo.NewSavedRecipeRepository,
		fx.As(new(outbound.SavedRecipeStore)),
	),
	fx.Annotate(
		gormRepo.NewMealPlanRepository,
		fx.As(new(outbound.MealPlanStore)),
	),
)

// EventModule provides the in-process event dispatcher
var EventModule = fx.Provide(
	NewEventDispatcher,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		saved outbound.SavedRecipeStore,
		search outbound.RecipeSearchGateway,
		cache outbound.CacheRepository,
		dispatcher shared.EventDispatcher,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.RecipeService {
		return apprecipe.NewRecipeService(saved, search, cache, dispatcher, apprecipe.Options{
			SearchCacheTTL: cfg.Search.CacheTTL,
		}, log)
	},
	appmealplan.NewMealPlanService,
	func(cfg *config.Config) *security.AuthService {
		return security.NewAuthService(cfg.Auth)
	},
)

// HTTPModule provides the API and ops servers
var HTTPModule = fx.Provide(
	server.NewServer,
	func(cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector, health *healthcheck.HealthCheck) *opsserver.Server {
		var handler http.Handler
		if metrics != nil {
			handler = metrics.Handler()
		}
		return opsserver.NewServer(cfg, log, handler, health)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// NewEventDispatcher creates the dispatcher and subscribes the event log
// and business metrics to every domain event
func NewEventDispatcher(log *zap.Logger, metrics *monitoring.BusinessMetrics) shared.EventDispatcher {
	dispatcher := events.NewDispatcher(log)
	dispatcher.RegisterAll(metrics.EventNames(), events.LogHandler(log))
	dispatcher.RegisterAll(metrics.EventNames(), metrics.HandleEvent)
	return dispatcher
}

// NewHealthCheck registers the database, cache and search checks
func NewHealthCheck(cfg *config.Config, db *gorm.DB, client redis.UniversalClient, provider *monitoring.OpenTelemetryProvider, log *zap.Logger) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log.Named("health")).WithMetrics(provider.Registry())

	health.Register("database", healthcheck.NewDatabaseChecker(db))
	if client != nil {
		health.Register("redis", healthcheck.NewRedisChecker(client))
	}
	health.Register("search", healthcheck.NewCustomChecker("search", func(context.Context) (healthcheck.Status, string, interface{}) {
		if cfg.Search.AppID == "" || cfg.Search.AppKey == "" {
			return healthcheck.StatusDegraded, "search credentials not configured", nil
		}
		return healthcheck.StatusHealthy, "", map[string]interface{}{"base_url": cfg.Search.BaseURL}
	}))

	return health
}

// WatchLogLevel applies log level changes from the config file at runtime
func WatchLogLevel(path ConfigPath, level zap.AtomicLevel, log *zap.Logger) {
	config.Watch(string(path), func(cfg *config.Config) {
		next := logger.ParseLevel(cfg.App.LogLevel)
		if next == level.Level() {
			return
		}
		level.SetLevel(next)
		log.Info("Log level changed", zap.String("level", next.String()))
	}, func(err error) {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	})
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	provider *monitoring.OpenTelemetryProvider,
	api *server.Server,
	ops *opsserver.Server,
) {
	serve := func(name string, start func() error) {
		go func() {
			if err := start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				log.Error("Server stopped unexpectedly", zap.String("server", name), zap.Error(err))
				_ = shutdowner.Shutdown(fx.ExitCode(1))
			}
		}()
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting RecipeWiz",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			serve("api", api.Start)
			serve("ops", ops.Start)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down RecipeWiz")

			if cfg.Server.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
			}

			if err := api.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			if err := ops.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown ops server", zap.Error(err))
			}
			if err := provider.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown telemetry", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if cfg.Database.AutoMigrate {
			if err := migrate(cfg, log); err != nil {
				return nil, err
			}
		}
		return postgres.Connect(ctx, cfg, log)

	case "", "sqlite":
		db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogLevel(cfg.Database.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}

		if cfg.IsDevelopment() {
			if err := sqlite.SeedDatabase(context.Background(), db, demoUserID); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}

		log.Info("Connected to SQLite database",
			zap.String("path", cfg.Database.Path),
			zap.Bool("in_memory", cfg.Database.Path == "" || cfg.Database.Path == ":memory:"),
		)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func migrate(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := migrations.Open(cfg.Database.URL())
	if err != nil {
		return err
	}

	m, err := migrations.New(sqlDB, cfg.Database.Database, log.Named("migrations"))
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer m.Close()

	return m.Up()
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info", "debug":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}
