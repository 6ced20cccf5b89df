// @title           Visit Tracker Access API
// @version         1.0
// @description     Sessions, role resolution and capability gates for the visit tracker.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/fieldsales/visit-tracker/docs"
	"github.com/fieldsales/visit-tracker/internal/api"
	"github.com/fieldsales/visit-tracker/internal/api/handler"
	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/service"
	"github.com/fieldsales/visit-tracker/internal/infrastructure/config"
	mongodb "github.com/fieldsales/visit-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/fieldsales/visit-tracker/internal/infrastructure/db/redis"
	"github.com/fieldsales/visit-tracker/internal/infrastructure/events"
	"github.com/fieldsales/visit-tracker/internal/infrastructure/queue"
	"github.com/fieldsales/visit-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("visit-tracker stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "visit-tracker"})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "visit-tracker",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewAuthRepository(db)
	directory := mongodb.NewRoleDirectory(db, logger.Component("role_directory"))
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := directory.EnsureIndexes(ctx); err != nil {
		return err
	}

	sessions := redisdb.NewSessionStore(rdb)
	adminModes := redisdb.NewAdminModeStore(rdb)

	registry := access.NewRegistry(sessions, directory, access.RegistryOptions{
		Size:           cfg.Access.SessionCacheSize,
		SessionTTL:     cfg.Access.SessionTTL,
		ResolveTimeout: cfg.Access.ResolveTimeout,
	}, logger.Component("access"))

	bus := events.NewBus(logger.Component("events"))
	defer bus.Close()

	dispatcher := queue.NewDispatcher(cfg.Access.DispatchWorkers, registry, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	if err := bus.Subscribe(ctx, func(_ context.Context, event domain.AccessEvent) {
		dispatcher.Enqueue(event)
	}); err != nil {
		return err
	}

	authService := service.NewAuthService(users, sessions, directory, bus, registry, service.AuthOptions{
		JWTSecret:           cfg.JWTSecret,
		TokenTTL:            cfg.Access.SessionTTL,
		BootstrapAdminEmail: cfg.Access.BootstrapAdminEmail,
	}, logger.Component("auth"))
	roleService := service.NewRoleService(directory, users, bus, logger.Component("roles"))

	e := api.NewRouter(api.RouterDeps{
		Log:         log,
		JWTSecret:   cfg.JWTSecret,
		AuthService: authService,
		RoleService: roleService,
		Registry:    registry,
		AdminModes:  adminModes,
		Readiness: map[string]handler.Check{
			"mongodb": mongodb.Check(mongoClient),
			"redis":   redisdb.Check(rdb),
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
