package dataset

import (
	"context"

	"retention/internal/core"
)

// Ports between the builder, the stores and the renderer.
type (
	// Source provides a complete set of datasets to the renderer.
	Source interface {
		Load(ctx context.Context) (core.Datasets, error)
	}

	// Sink persists a freshly built set of datasets.
	Sink interface {
		Write(ctx context.Context, d core.Datasets) ([]Artifact, error)
	}
)

var (
	_ Source = (*FileStore)(nil)
	_ Sink   = (*FileStore)(nil)
)
