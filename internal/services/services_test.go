package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/internal/amqp"
	"retention/internal/core"
	"retention/internal/dashboard"
	"retention/internal/dataset"
)

type fakeSnapshots struct {
	runID string
	seed  int64
	saved core.Datasets
	err   error
}

func (f *fakeSnapshots) SaveSnapshot(_ context.Context, runID string, seed int64, d core.Datasets) error {
	if f.err != nil {
		return f.err
	}
	f.runID, f.seed, f.saved = runID, seed, d
	return nil
}

type fakePublisher struct {
	msgs []*amqp.DatasetsGeneratedMessage
	err  error
}

func (f *fakePublisher) PublishDatasetsGenerated(_ context.Context, msg *amqp.DatasetsGeneratedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

type fakeSink struct{ err error }

func (f fakeSink) Write(context.Context, core.Datasets) ([]dataset.Artifact, error) {
	return nil, f.err
}

func newGenerate(t *testing.T, snaps SnapshotStore, pub Publisher) (*GenerateService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewGenerateService(dataset.NewFileStore(dir, nil), dir, snaps, pub, nil)
	svc.newRunID = func() string { return "run-1" }
	return svc, dir
}

func TestGenerateService_WritesFiles(t *testing.T) {
	svc, dir := newGenerate(t, nil, nil)

	report, err := svc.Run(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, int64(42), report.Seed)
	assert.False(t, report.Snapshot)
	assert.False(t, report.Published)
	require.Len(t, report.Artifacts, len(dataset.Files))
	for i, p := range report.Paths() {
		assert.Equal(t, filepath.Join(dir, dataset.Files[i]), p)
		assert.FileExists(t, p)
	}
}

func TestGenerateService_SnapshotAndPublish(t *testing.T) {
	snaps := &fakeSnapshots{}
	pub := &fakePublisher{}
	svc, dir := newGenerate(t, snaps, pub)

	report, err := svc.Run(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, report.Snapshot)
	assert.True(t, report.Published)
	assert.Equal(t, "run-1", snaps.runID)
	assert.Equal(t, int64(7), snaps.seed)
	assert.Equal(t, 482, core.SumCounts(snaps.saved.Withdrawals))

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "run-1", msg.RunID)
	assert.Equal(t, int64(7), msg.Seed)
	assert.Equal(t, dir, msg.DataDir)
	assert.Equal(t, dataset.Files, msg.Files)
}

func TestGenerateService_PublishFailureDoesNotFailRun(t *testing.T) {
	svc, _ := newGenerate(t, nil, &fakePublisher{err: errors.New("connection refused")})

	report, err := svc.Run(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, report.Published)
}

func TestGenerateService_SnapshotFailureFailsRun(t *testing.T) {
	boom := errors.New("disk full")
	svc, _ := newGenerate(t, &fakeSnapshots{err: boom}, nil)

	_, err := svc.Run(context.Background(), 42)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateService_WriteFailure(t *testing.T) {
	svc := NewGenerateService(fakeSink{err: dataset.ErrIOFailure}, "data", nil, nil, nil)

	_, err := svc.Run(context.Background(), 42)
	assert.ErrorIs(t, err, dataset.ErrIOFailure)
}

func TestGenerateService_DistinctRunIDs(t *testing.T) {
	dir := t.TempDir()
	svc := NewGenerateService(dataset.NewFileStore(dir, nil), dir, nil, nil, nil)

	a, err := svc.Run(context.Background(), 42)
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), 42)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Len(t, a.RunID, 36)
}

type fakeSource struct {
	d   core.Datasets
	err error
}

func (f fakeSource) Load(context.Context) (core.Datasets, error) {
	return f.d, f.err
}

func literal(t *testing.T) core.Datasets {
	t.Helper()
	d, err := dataset.Build(dataset.DefaultSeed)
	require.NoError(t, err)
	return d
}

func TestRenderService_Run(t *testing.T) {
	out := filepath.Join(t.TempDir(), "outputs", "retention_dashboard_preview.html")
	svc := NewRenderService(fakeSource{d: literal(t)}, out, nil)

	path, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out, path)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), dashboard.TitleKPI)
	assert.Contains(t, string(html), "91%")
}

func TestRenderService_LoadError(t *testing.T) {
	svc := NewRenderService(fakeSource{err: dataset.ErrMalformedArtifact}, filepath.Join(t.TempDir(), "x.html"), nil)

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, dataset.ErrMalformedArtifact)
}

type fakeConsumer struct {
	msgs    []*amqp.DatasetsGeneratedMessage
	results []error
	err     error
}

func (f *fakeConsumer) ConsumeDatasetsGenerated(ctx context.Context, handler func(context.Context, *amqp.DatasetsGeneratedMessage) error) error {
	for _, m := range f.msgs {
		f.results = append(f.results, handler(ctx, m))
	}
	return f.err
}

func TestRenderService_Watch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dash.html")
	svc := NewRenderService(fakeSource{d: literal(t)}, out, nil)
	consumer := &fakeConsumer{
		msgs: []*amqp.DatasetsGeneratedMessage{amqp.NewDatasetsGeneratedMessage("run-1", 42, "data", nil)},
		err:  context.Canceled,
	}

	require.NoError(t, svc.Watch(context.Background(), consumer))
	assert.Equal(t, []error{nil}, consumer.results)
	assert.FileExists(t, out)
}

func TestRenderService_WatchSkipsUnreadableDatasets(t *testing.T) {
	svc := NewRenderService(fakeSource{err: dataset.ErrMalformedArtifact}, filepath.Join(t.TempDir(), "dash.html"), nil)
	consumer := &fakeConsumer{
		msgs: []*amqp.DatasetsGeneratedMessage{amqp.NewDatasetsGeneratedMessage("run-1", 42, "data", nil)},
	}

	require.NoError(t, svc.Watch(context.Background(), consumer))
	assert.Equal(t, []error{nil}, consumer.results)
}

func TestRenderService_WatchSkipsMissingDatasets(t *testing.T) {
	store := dataset.NewFileStore(filepath.Join(t.TempDir(), "nodata"), nil)
	svc := NewRenderService(store, filepath.Join(t.TempDir(), "dash.html"), nil)
	consumer := &fakeConsumer{
		msgs: []*amqp.DatasetsGeneratedMessage{amqp.NewDatasetsGeneratedMessage("run-1", 42, "nodata", nil)},
	}

	require.NoError(t, svc.Watch(context.Background(), consumer))
	assert.Equal(t, []error{nil}, consumer.results)
}

func TestRenderService_WatchRequeuesTransientFailures(t *testing.T) {
	svc := NewRenderService(fakeSource{err: dataset.ErrIOFailure}, filepath.Join(t.TempDir(), "dash.html"), nil)
	consumer := &fakeConsumer{
		msgs: []*amqp.DatasetsGeneratedMessage{amqp.NewDatasetsGeneratedMessage("run-1", 42, "data", nil)},
		err:  errors.New("channel closed"),
	}

	err := svc.Watch(context.Background(), consumer)
	assert.EqualError(t, err, "channel closed")
	require.Len(t, consumer.results, 1)
	assert.ErrorIs(t, consumer.results[0], dataset.ErrIOFailure)
}

type countingSource struct {
	d     core.Datasets
	loads int
}

func (c *countingSource) Load(context.Context) (core.Datasets, error) {
	c.loads++
	return c.d, nil
}

func TestRenderService_WatchSkipsRedeliveredRun(t *testing.T) {
	src := &countingSource{d: literal(t)}
	svc := NewRenderService(src, filepath.Join(t.TempDir(), "dash.html"), nil)
	msg := amqp.NewDatasetsGeneratedMessage("run-1", 42, "data", nil)
	consumer := &fakeConsumer{
		msgs: []*amqp.DatasetsGeneratedMessage{msg, msg, amqp.NewDatasetsGeneratedMessage("run-2", 42, "data", nil)},
	}

	require.NoError(t, svc.Watch(context.Background(), consumer))
	assert.Equal(t, 2, src.loads)
	assert.Equal(t, []error{nil, nil, nil}, consumer.results)
}
