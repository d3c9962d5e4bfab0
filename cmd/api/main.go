package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nextstep/gift/internal/auth"
	"github.com/nextstep/gift/internal/config"
	"github.com/nextstep/gift/internal/database"
	"github.com/nextstep/gift/internal/domain"
	"github.com/nextstep/gift/internal/httpapi"
	"github.com/nextstep/gift/internal/kakao"
	"github.com/nextstep/gift/internal/logger"
	"github.com/nextstep/gift/internal/metrics"
	"github.com/nextstep/gift/internal/server"
	"github.com/nextstep/gift/internal/storage/memory"
	"github.com/nextstep/gift/internal/storage/sqlstore"
	"github.com/nextstep/gift/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logr *slog.Logger) error {
	var db *database.DB
	if cfg.DataBackend != config.BackendMemory {
		var err error
		db, err = database.Connect(ctx, database.Options{
			Driver:          cfg.DatabaseDriver(),
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			Logger:          logr,
		})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logr.Error("error closing database", "err", cerr)
			}
		}()

		if err := db.RunMigrations(ctx); err != nil {
			return fmt.Errorf("database migrations: %w", err)
		}
	}

	m := metrics.New()

	opts, err := domainOptions(cfg, logr, db)
	if err != nil {
		return err
	}

	var kakaoClient *kakao.Client
	if cfg.Kakao.Enabled() {
		kakaoClient = kakao.NewClient(kakao.Config{
			ClientID:     cfg.Kakao.ClientID,
			ClientSecret: cfg.Kakao.ClientSecret,
			RedirectURI:  cfg.Kakao.RedirectURI,
			AuthBaseURL:  cfg.Kakao.AuthBaseURL,
			APIBaseURL:   cfg.Kakao.APIBaseURL,
			Timeout:      cfg.Kakao.Timeout,
		})
		opts.Notifier = kakao.NewNotifier(kakaoClient, logr, m, "")
		logr.Info("kakao login and order notifications enabled")
	}
	opts.Notifier = m.Notifier(opts.Notifier)

	container := domain.New(opts)

	tokens, err := auth.NewProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	if err != nil {
		return err
	}

	srv := server.New(cfg, logr, m)

	deps := httpapi.Deps{
		Logger:    logr,
		Domain:    container,
		Auth:      auth.NewService(container.Members, tokens),
		Resolver:  auth.NewResolver(tokens, container.Members, logr),
		RateLimit: srv.RateLimit(),
	}
	if kakaoClient != nil {
		deps.Kakao = kakaoClient
	}
	httpapi.Register(srv.Router(), deps)

	admin, err := web.New(container, logr)
	if err != nil {
		return err
	}
	admin.Register(srv.Router())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

func domainOptions(cfg config.Config, logr *slog.Logger, db *database.DB) (domain.Options, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		logr.Info("using in-memory repositories (DATA_BACKEND=memory)")
		return memory.NewDomainOptions(), nil
	case config.BackendSQLite, config.BackendMySQL:
		if db == nil {
			return domain.Options{}, errors.New("sql backend requires database connection")
		}
		logr.Info("using sql repositories", "backend", cfg.DataBackend)
		return sqlstore.NewDomainOptions(db.DB), nil
	default:
		return domain.Options{}, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
