// Copyright (c) 2026 BountyHive. All rights reserved.

// Command api is the entry point for the BountyHive HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load optional .env file, then configuration from environment variables.
//  3. Construct lifecycle guards for postgres, redis, the identity
//     verifier, and the vault (no connections are opened yet).
//  4. Wire HTTP handlers.
//  5. Kick off a best-effort warmup of the external clients.
//  6. Start HTTP server with graceful shutdown.
//
// External systems are never contacted eagerly: a missing credential or an
// unreachable backend turns into request-time NOT_READY answers instead of
// a crash loop. No business logic lives here. All wiring is explicit
// constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/bountyhive/api/internal/api"
	"github.com/bountyhive/api/internal/bounty"
	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/internal/platform/config"
	"github.com/bountyhive/api/internal/platform/constants"
	"github.com/bountyhive/api/internal/platform/lifecycle"
	"github.com/bountyhive/api/internal/platform/middleware"
	"github.com/bountyhive/api/internal/platform/migration"
	pgstore "github.com/bountyhive/api/internal/platform/postgres"
	redisstore "github.com/bountyhive/api/internal/platform/redis"
	"github.com/bountyhive/api/internal/platform/sec"
	"github.com/bountyhive/api/internal/platform/vault"
	"github.com/bountyhive/api/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A local .env is a development convenience; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Info("dotenv_loaded")
	}

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// ── 3. Lifecycle Guards ───────────────────────────────────────────────
	// Each external system gets one guard. Initializers validate their own
	// credentials so that missing config surfaces as CONFIGURATION_ERROR at
	// first use, not at parse time.
	postgresGuard := lifecycle.NewHandle("postgres", constants.InitCooldown, log,
		func(initCtx context.Context) (*pgxpool.Pool, error) {
			if cfg.DatabaseURL == "" {
				return nil, apperr.Configuration("DATABASE_URL is not set")
			}
			pool, err := pgstore.NewPool(initCtx, cfg.DatabaseURL, log)
			if err != nil {
				return nil, err
			}
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
				pool.Close()
				return nil, err
			}
			return pool, nil
		})

	redisGuard := lifecycle.NewHandle("redis", constants.InitCooldown, log,
		func(initCtx context.Context) (*goredis.Client, error) {
			if cfg.RedisURL == "" {
				return nil, apperr.Configuration("REDIS_URL is not set")
			}
			return redisstore.NewClient(initCtx, cfg.RedisURL, log)
		})

	verifierGuard := lifecycle.NewHandle("identity-verifier", constants.InitCooldown, log,
		func(initCtx context.Context) (*sec.TokenVerifier, error) {
			if cfg.IdentityAppID == "" {
				return nil, apperr.Configuration("IDENTITY_APP_ID is not set")
			}
			if cfg.IdentityVerificationKey == "" {
				return nil, apperr.Configuration("IDENTITY_VERIFICATION_KEY is not set")
			}
			return sec.NewTokenVerifier(cfg.IdentityVerificationKey, cfg.IdentityAppID, cfg.IdentityIssuer)
		})

	vaultGuard := lifecycle.NewHandle("vault", constants.InitCooldown, log,
		func(initCtx context.Context) (*vault.Client, error) {
			if cfg.VaultKey == "" {
				return nil, apperr.Configuration("VAULT_KEY is not set")
			}
			cipher, err := vault.NewCipher(cfg.VaultKey)
			if err != nil {
				return nil, apperr.Configuration(err.Error())
			}
			return vault.NewClient(cipher, redisGuard), nil
		})

	// Bridge the concrete verifier guard to the middleware interface.
	verifierSource := middleware.VerifierAcquirerFunc(func(ctx context.Context) (middleware.TokenVerifier, error) {
		return verifierGuard.Acquire(ctx)
	})

	// ── 4. Health handlers (wired with guard-backed checkers) ─────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			pool, err := postgresGuard.Acquire(ctx)
			if err != nil {
				return err
			}
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			client, err := redisGuard.Acquire(ctx)
			if err != nil {
				return err
			}
			return redisstore.Ping(ctx, client)
		},
	}, log)

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	profileRepository := profile.NewRepository(postgresGuard)
	profileService := profile.NewService(profileRepository, log)
	profileHandler := profile.NewHandler(profileService)

	bountyRepository := bounty.NewPostgresRepository(postgresGuard)
	bountyService := bounty.NewService(bountyRepository, vault.NewGuarded(vaultGuard), log)
	bountyHandler := bounty.NewHandler(bountyService)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Users:     profileHandler,
		Bounties:  bountyHandler,
	}

	server := api.NewServer(serverCtx, cfg, log, verifierSource, handlers)

	// ── 7. Best-effort Warmup ─────────────────────────────────────────────
	// Touch the backends once so the common case serves warm clients from
	// the first request. Failures are logged and retried lazily.
	go func() {
		warmupCtx, warmupCancel := context.WithTimeout(serverCtx, constants.InitWarmupTimeout)
		defer warmupCancel()

		if _, err := postgresGuard.Acquire(warmupCtx); err != nil {
			log.Warn("warmup_postgres_failed", slog.Any("error", err))
		}
		if _, err := redisGuard.Acquire(warmupCtx); err != nil {
			log.Warn("warmup_redis_failed", slog.Any("error", err))
		}
		if _, err := verifierGuard.Acquire(warmupCtx); err != nil {
			log.Warn("warmup_verifier_failed", slog.Any("error", err))
		}
	}()

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	// Close whatever clients were actually materialized.
	closeIfReady(postgresGuard, func(pool *pgxpool.Pool) {
		log.Info("closing postgres pool")
		pool.Close()
	})
	closeIfReady(redisGuard, func(client *goredis.Client) {
		log.Info("closing redis client")
		if cerr := client.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	})

	log.Info("server stopped cleanly")
}

// closeIfReady runs close only when the guard holds a ready client.
func closeIfReady[T any](guard *lifecycle.Handle[T], close func(T)) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if guard.State() != lifecycle.StateReady {
		return
	}
	client, err := guard.Acquire(ctx)
	if err != nil {
		return
	}
	close(client)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
