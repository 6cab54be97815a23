package backend

import (
	"context"
	"fmt"

	"retention/internal/dataset"
	applog "retention/internal/log"
	"retention/internal/storage"
)

var _ dataset.Source = (*storage.SQLiteRepository)(nil)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FilesBackend:
		return f.createFilesSource(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteSource(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFilesSource(ctx context.Context, config Config) (*SourceResult, error) {
	store := dataset.NewFileStore(config.DataDirectory, f.logger)

	f.logger.InfoContext(ctx, "Initialized files backend",
		applog.FieldBackend, config.Type,
		applog.FieldPath, config.DataDirectory)

	return &SourceResult{Source: store}, nil
}

func (f *DefaultFactory) createSQLiteSource(ctx context.Context, config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		applog.FieldBackend, config.Type,
		applog.FieldPath, config.SQLiteDBPath)

	return &SourceResult{Source: repo, Cleanup: repo.Close}, nil
}
