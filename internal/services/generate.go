package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"retention/internal/amqp"
	"retention/internal/core"
	"retention/internal/dataset"
	applog "retention/internal/log"
)

// SnapshotStore keeps a queryable copy of each generated run.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, runID string, seed int64, d core.Datasets) error
}

// Publisher announces finished runs.
type Publisher interface {
	PublishDatasetsGenerated(ctx context.Context, msg *amqp.DatasetsGeneratedMessage) error
}

// GenerateReport summarises one generation run.
type GenerateReport struct {
	RunID     string
	Seed      int64
	DataDir   string
	Artifacts []dataset.Artifact
	Snapshot  bool
	Published bool
	Duration  time.Duration
}

// Paths lists the written files in write order.
func (r *GenerateReport) Paths() []string {
	out := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		out[i] = a.Path
	}
	return out
}

// GenerateService builds the datasets and writes them out, then optionally
// snapshots and announces the run.
type GenerateService struct {
	sink      dataset.Sink
	dataDir   string
	snapshots SnapshotStore
	publisher Publisher
	logger    *applog.Logger
	newRunID  func() string
}

// NewGenerateService wires the service. snapshots and publisher may be nil.
func NewGenerateService(sink dataset.Sink, dataDir string, snapshots SnapshotStore, publisher Publisher, logger *applog.Logger) *GenerateService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &GenerateService{
		sink:      sink,
		dataDir:   dataDir,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentDataset),
		newRunID:  uuid.NewString,
	}
}

// Run builds and persists one set of datasets. The seed is recorded with
// the run; the literal tables do not depend on it.
func (s *GenerateService) Run(ctx context.Context, seed int64) (*GenerateReport, error) {
	start := time.Now()
	report := &GenerateReport{RunID: s.newRunID(), Seed: seed, DataDir: s.dataDir}
	s.logger.InfoContext(ctx, "Generating datasets",
		applog.NewFields().WithRun(report.RunID, seed).WithOperation(applog.OpGenerate).ToSlice()...)

	d, err := dataset.Build(seed)
	switch {
	case errors.Is(err, core.ErrEmptyAggregationInput):
		s.logger.WarnContext(ctx, "Withdrawal total is zero, writing zero reason summary",
			applog.NewFields().WithRun(report.RunID, seed).WithErrorType(applog.ErrorTypeEmptyInput).ToSlice()...)
	case err != nil:
		return nil, fmt.Errorf("build datasets: %w", err)
	}

	report.Artifacts, err = s.sink.Write(ctx, d)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write datasets",
			applog.NewFields().WithRun(report.RunID, seed).WithOperation(applog.OpWrite).
				WithError(err).WithErrorType(applog.ErrorTypeIO).ToSlice()...)
		return nil, fmt.Errorf("write datasets: %w", err)
	}

	if s.snapshots != nil {
		if err := s.snapshots.SaveSnapshot(ctx, report.RunID, seed, d); err != nil {
			s.logger.ErrorContext(ctx, "Failed to store snapshot",
				applog.NewFields().WithRun(report.RunID, seed).WithOperation(applog.OpSnapshot).
					WithError(err).WithErrorType(applog.ErrorTypeDatabase).ToSlice()...)
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		report.Snapshot = true
	}

	// A failed announcement does not fail the run; the files are written.
	if err := s.publish(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish datasets generated message",
			applog.NewFields().WithRun(report.RunID, seed).WithOperation(applog.OpPublish).
				WithError(err).WithErrorType(applog.ErrorTypeNetwork).ToSlice()...)
	}

	report.Duration = time.Since(start)
	s.logger.InfoContext(ctx, "Datasets generated",
		applog.FieldRunID, report.RunID,
		applog.FieldRows, core.SumCounts(d.Withdrawals),
		applog.FieldPath, s.dataDir,
		applog.FieldDuration, report.Duration.Milliseconds())
	return report, nil
}

func (s *GenerateService) publish(ctx context.Context, report *GenerateReport) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping announcement")
		return nil
	}

	files := make([]string, len(report.Artifacts))
	for i, a := range report.Artifacts {
		files[i] = a.Name
	}
	msg := amqp.NewDatasetsGeneratedMessage(report.RunID, report.Seed, report.DataDir, files)
	if err := s.publisher.PublishDatasetsGenerated(ctx, msg); err != nil {
		return err
	}
	report.Published = true
	return nil
}
