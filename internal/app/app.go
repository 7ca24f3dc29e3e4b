package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tinfoiltimes/internal/config"
	"tinfoiltimes/internal/infrastructure/archive"
	"tinfoiltimes/internal/infrastructure/fetch"
	"tinfoiltimes/internal/infrastructure/parser"
	"tinfoiltimes/internal/infrastructure/storage"
	"tinfoiltimes/internal/scanner"
	"tinfoiltimes/internal/scoring"
	"tinfoiltimes/internal/usecase"
	"tinfoiltimes/internal/web"
)

// Application wires config to the pipeline and owns process lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	harvester *usecase.Harvester
	scheduler *usecase.Scheduler
	server    *http.Server
}

// New builds a runnable application instance. Configuration errors are
// fatal here: the pipeline never runs with an invalid source list.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	repo := storage.NewSQLiteRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	scorer := scoring.New(scoring.Params{
		Keywords:         cfg.Scoring.Keywords,
		HitWeight:        cfg.Scoring.HitWeight,
		JitterMax:        cfg.Scoring.JitterMax,
		PunctuationBonus: cfg.Scoring.PunctuationBonus,
		Tiers:            cfg.Scoring.Tiers,
		BucketWidth:      cfg.Scoring.BucketWidth,
	})

	fetcher := fetch.NewClient(cfg.Harvest.FetchTimeout.Std(), logger.With("component", "fetch"))
	gate := scanner.TitleGate{
		Min: cfg.Adapters.TitleMinLength,
		Max: cfg.Adapters.TitleMaxLength,
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewForumScanner(fetcher, gate, logger.With("component", "adapter.forum")))
	registry.Register(parser.NewRedditScanner(fetcher, gate, logger.With("component", "adapter.reddit")))

	harvester := usecase.NewHarvester(usecase.HarvesterDeps{
		Registry: registry,
		Repo:     repo,
		Archiver: archive.NewClient(cfg.Harvest.FetchTimeout.Std()),
		Scorer:   scorer,
		Sources:  cfg.Sources,
		Harvest:  cfg.Harvest,
		Logger:   logger.With("component", "harvester"),
	})

	srv := web.NewServer(repo, harvester, logger.With("component", "web"))

	return &Application{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		harvester: harvester,
		scheduler: usecase.NewScheduler(harvester, logger.With("component", "scheduler")),
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run seeds an empty table, starts the scheduler and HTTP listener, and
// blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.harvester.SeedIfEmpty(ctx); err != nil {
		return err
	}

	if err := a.scheduler.Start(a.cfg.Harvest.CronExpression); err != nil {
		return err
	}
	defer a.scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
