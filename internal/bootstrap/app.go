package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "resume-tracker/internal/auth"
	"resume-tracker/internal/dashboard"
	"resume-tracker/internal/feedback"
	"resume-tracker/internal/kv"
	"resume-tracker/internal/platform"
	"resume-tracker/internal/resumes"
	"resume-tracker/internal/services/health"
	"resume-tracker/internal/shared/config"
	"resume-tracker/internal/shared/server"
	"resume-tracker/internal/shared/server/middleware"
	"resume-tracker/internal/shared/storage/db"
	"resume-tracker/internal/shared/storage/object"
	localstore "resume-tracker/internal/shared/storage/object/local"
	s3store "resume-tracker/internal/shared/storage/object/s3"
	"resume-tracker/internal/users"
)

// SweepSchedule is the cron spec for closing idle dashboard views and
// pruning idle rate limit buckets.
const SweepSchedule = "@every 1m"

const limiterIdle = 10 * time.Minute

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	KV       kv.Repo
	Platform *platform.Provider
	Registry *dashboard.Registry
	Limiter  *middleware.RateLimiter
	Resumes  *resumes.Service
	Users    *users.Service
}

// Build wires storage, services and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	scorer, err := feedback.New(ctx, feedback.Options{
		Provider:     cfg.LLMProvider,
		Model:        cfg.LLMModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	var kvRepo kv.Repo
	var userRepo users.Repo
	if sqlDB != nil {
		kvRepo = &kv.PGRepo{DB: sqlDB}
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		kvRepo = kv.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	checks := []platform.Check{{Name: "storage", Ping: store.Ping}}
	if sqlDB != nil {
		checks = append(checks, platform.Check{Name: "database", Ping: db.Pinger{DB: sqlDB}.Ping})
	}
	provider := &platform.Provider{
		Store:  store,
		KV:     kvRepo,
		Checks: checks,
		URLs:   platform.NewObjectURLs(),
	}

	resumeSvc := resumes.NewService(scorer)
	userSvc := users.NewService(userRepo)
	registry := dashboard.NewRegistry(cfg.ViewTTL)

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		KV:       kvRepo,
		Platform: provider,
		Registry: registry,
		Limiter:  middleware.NewRateLimiter(nil),
		Resumes:  resumeSvc,
		Users:    userSvc,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Health: health.NewService(checks...),
		Auth: googleauth.NewService(googleauth.Options{
			GoogleClientID:     cfg.GoogleClientID,
			GoogleClientSecret: cfg.GoogleClientSecret,
			GoogleRedirectURL:  cfg.GoogleRedirectURL,
			DevLogin:           cfg.IsDevLike(),
			SecureCookie:       !cfg.IsDevLike(),
		}, userSvc),
		Users:     users.NewHandler(userSvc),
		Resumes:   resumes.NewHandler(resumeSvc, provider),
		Dashboard: dashboard.NewHandler(registry, provider, resumeSvc, provider.URLs),
		Limiter:   app.Limiter,
	})

	return app, nil
}

// Start launches background work. Close stops it.
func (a *App) Start() error {
	return a.Registry.Start(SweepSchedule, func() { a.Limiter.Prune(limiterIdle) })
}

// Close stops the view sweep, closes mounted views and releases the database.
func (a *App) Close() error {
	a.Registry.Stop()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

// BuildStore returns the configured object store.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
