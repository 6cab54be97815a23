package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"retention/internal/amqp"
	"retention/internal/cache"
	"retention/internal/core"
	"retention/internal/dashboard"
	"retention/internal/dataset"
	applog "retention/internal/log"
	"retention/internal/storage"
)

// Consumer delivers datasets generated events.
type Consumer interface {
	ConsumeDatasetsGenerated(ctx context.Context, handler func(context.Context, *amqp.DatasetsGeneratedMessage) error) error
}

// RenderService turns a dataset source into the dashboard HTML file.
type RenderService struct {
	source   dataset.Source
	outPath  string
	Calendar core.Calendar
	logger   *applog.Logger
	rendered *cache.Recent
}

// Run IDs already rendered are remembered this long, so a redelivered
// event is acknowledged without a second render.
const (
	renderedRuns   = 64
	renderedRunTTL = time.Hour
)

func NewRenderService(source dataset.Source, outPath string, logger *applog.Logger) *RenderService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &RenderService{
		source:   source,
		outPath:  outPath,
		Calendar: core.AcademicCalendar,
		logger:   logger.WithComponent(applog.ComponentDashboard),
		rendered: cache.NewRecent(renderedRuns, renderedRunTTL),
	}
}

// Run loads the datasets, renders the dashboard and returns its path.
func (s *RenderService) Run(ctx context.Context) (string, error) {
	start := time.Now()

	d, err := s.source.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load datasets: %w", err)
	}

	pivot, err := core.BuildMonthlyPivot(d.Withdrawals, s.Calendar)
	if err != nil {
		return "", fmt.Errorf("pivot withdrawals: %w", err)
	}
	if pivot.Excluded > 0 {
		s.logger.WarnContext(ctx, "Withdrawal records outside the calendar were left out",
			applog.FieldExcluded, pivot.Excluded)
	}

	fig, err := dashboard.Build(d, s.Calendar)
	if err != nil {
		return "", fmt.Errorf("build dashboard: %w", err)
	}
	if err := dashboard.WriteFile(s.outPath, fig); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Dashboard rendered",
		applog.FieldOperation, applog.OpRender,
		applog.FieldPath, s.outPath,
		applog.FieldTotal, pivot.GrandTotal(),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return s.outPath, nil
}

// Watch re-renders once per consumed event until ctx is done. Events whose
// datasets are missing or unreadable are acknowledged and skipped. Other
// render failures are returned to the consumer so the event is redelivered.
func (s *RenderService) Watch(ctx context.Context, consumer Consumer) error {
	s.logger.InfoContext(ctx, "Watching for new datasets", applog.FieldOperation, applog.OpWatch)

	err := consumer.ConsumeDatasetsGenerated(ctx, func(ctx context.Context, msg *amqp.DatasetsGeneratedMessage) error {
		if s.rendered.Seen(msg.RunID) {
			s.logger.DebugContext(ctx, "Run already rendered, skipping", applog.FieldRunID, msg.RunID)
			return nil
		}
		s.logger.InfoContext(ctx, "Datasets generated event received",
			applog.NewFields().WithRun(msg.RunID, msg.Seed).WithOperation(applog.OpWatch).ToSlice()...)

		_, err := s.Run(ctx)
		if err == nil {
			s.rendered.Mark(msg.RunID)
			return nil
		}
		if permanent(err) {
			s.logger.ErrorContext(ctx, "Skipping event, datasets unreadable",
				applog.NewFields().WithRun(msg.RunID, msg.Seed).WithError(err).
					WithErrorType(applog.ErrorTypeMalformed).ToSlice()...)
			return nil
		}
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// permanent reports failures a redelivery cannot fix.
func permanent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, dataset.ErrMalformedArtifact) ||
		errors.Is(err, storage.ErrNoSnapshot) ||
		errors.Is(err, core.ErrInvalidCalendar)
}
