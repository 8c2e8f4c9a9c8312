package main

import (
	"context"
	"log/slog"
	"os"

	"pacta/config"
	"pacta/internal/delivery"
	"pacta/internal/delivery/http"
	"pacta/internal/delivery/http/middleware"
	"pacta/internal/delivery/http/router/handler"
	"pacta/internal/domain/repository"
	"pacta/internal/domain/service"
	"pacta/internal/infra/auth"
	logs "pacta/internal/infra/log"
	"pacta/internal/infra/persistence/sqlite"
	"pacta/internal/security/csrf"
	"pacta/internal/security/lockout"
	"pacta/internal/security/ratelimit"
	"pacta/internal/security/store"
	"pacta/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectSecurity(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			seedAdmin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		sqlite.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewUserRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
		),
	)
}

func injectSecurity() fx.Option {
	return fx.Options(
		fx.Provide(
			newGuardStore,
			csrf.NewGuard,
			ratelimit.NewLimiter,
			lockout.NewTracker,
		),
	)
}

// newGuardStore selects the guard-state backend. Redis shares CSRF tokens,
// rate-limit windows and lockout records across instances; the in-memory
// store keeps them process-local and ephemeral.
func newGuardStore(cfg *config.Config, logger *slog.Logger) store.GuardStore {
	if cfg.Redis != nil && cfg.Redis.Enabled {
		logger.Info("Guard state backed by redis", slog.String("addr", cfg.Redis.Addr))

		return store.NewRedis(store.NewRedisClient(cfg.Redis))
	}

	logger.Info("Guard state kept in process memory")

	return store.NewMemory()
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
			middleware.NewSessionMiddleware,
			middleware.NewCSRFMiddleware,
			middleware.NewRateLimitMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// seedAdmin bootstraps the configured administrative account before the
// server starts accepting traffic.
func seedAdmin(
	ctx context.Context,
	repo repository.UserRepository,
	hasher service.PasswordHasher,
	cfg *config.Config,
	logger *slog.Logger,
) error {
	return sqlite.SeedAdmin(ctx, repo, hasher, cfg, logger)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
