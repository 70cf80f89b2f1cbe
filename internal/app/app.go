package app

import (
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/logging"
	"github.com/hance08/tally/internal/service"
	"github.com/hance08/tally/internal/store"
	"go.uber.org/zap"
)

type App struct {
	Service *service.Service
	Store   store.Repository
	Logger  *zap.Logger
	Config  *config.Config
	RunID   string
}

// NewApp initialize logger, store and ledger service, then return App entity
func NewApp(cfg *config.Config, migrationFS fs.FS) (*App, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	baseLogger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	logger := baseLogger.With(zap.String("run_id", runID))

	repo, err := openStore(cfg, migrationFS)
	if err != nil {
		_ = baseLogger.Sync()
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("path", cfg.Store.Path),
	)

	svc := service.NewService(repo, cfg, logger)

	cleanup := func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
		_ = baseLogger.Sync()
	}

	return &App{
		Service: svc,
		Store:   repo,
		Logger:  logger,
		Config:  cfg,
		RunID:   runID,
	}, cleanup, nil
}

func openStore(cfg *config.Config, migrationFS fs.FS) (store.Repository, error) {
	switch cfg.Store.Driver {
	case constants.DriverSQLite:
		return store.NewStore(cfg.Store.Path, migrationFS)
	default:
		return store.NewMemoryStore(), nil
	}
}
