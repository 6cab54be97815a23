package backend

import (
	"context"

	"retention/internal/dataset"
)

// CleanupFunc releases whatever the source holds open.
type CleanupFunc func() error

// SourceResult contains the dataset source and optional cleanup function
type SourceResult struct {
	Source  dataset.Source
	Cleanup CleanupFunc
}

// Close runs Cleanup when one is set.
func (r *SourceResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates the source the dashboard renders from.
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for source creation
type Config struct {
	Type BackendType

	// Files specific
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	FilesBackend  BackendType = "files"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FilesBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
