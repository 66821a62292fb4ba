package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/mediastore"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/card"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/deck"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/note"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/notetype"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/reviewlog"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/reviewstate"
	"github.com/tsuyanki/tsuyanki-backend/internal/config"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/ankiimport"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/content"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/study"
	"github.com/tsuyanki/tsuyanki-backend/migrations"
)

// App bundles the wired application: configuration, database pool and
// the three business services. Both binaries build one and pick what
// they need.
type App struct {
	Cfg  *config.Config
	Log  *slog.Logger
	Pool *pgxpool.Pool

	Study   *study.Service
	Content *content.Service
	Import  *ankiimport.Service
}

// New loads configuration, connects to the database, optionally runs
// migrations and wires every service. The caller owns Close.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, migrations.FS); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	media, err := mediastore.New(cfg.Media)
	if err != nil {
		pool.Close()
		return nil, err
	}

	var (
		tm         = postgres.NewTxManager(pool)
		decks      = deck.New(pool)
		noteTypes  = notetype.New(pool)
		notes      = note.New(pool)
		cards      = card.New(pool)
		states     = reviewstate.New(pool)
		reviewLogs = reviewlog.New(pool)
	)

	srsCfg := domain.SRSConfig{
		DefaultEaseFactor: cfg.SRS.DefaultEaseFactor,
		MinEaseFactor:     cfg.SRS.MinEaseFactor,
		DailyNewGoal:      cfg.SRS.DailyNewGoal,
		QueueLimitMax:     cfg.SRS.QueueLimitMax,
	}

	return &App{
		Cfg:  cfg,
		Log:  logger,
		Pool: pool,

		Study:   study.NewService(logger, cards, states, reviewLogs, decks, tm, srsCfg, media.BaseURL()),
		Content: content.NewService(logger, decks, noteTypes, notes, cards, tm),
		Import:  ankiimport.NewService(logger, decks, noteTypes, notes, cards, states, media, tm, cfg.Import),
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	a.Pool.Close()
}

// Run builds the application and serves the health endpoint until the
// context is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	a, err := New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(a.Cfg.Server.Host, strconv.Itoa(a.Cfg.Server.Port)),
		Handler:      mux,
		ReadTimeout:  a.Cfg.Server.ReadTimeout,
		WriteTimeout: a.Cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.Log.Info("application stopped")
	return nil
}
