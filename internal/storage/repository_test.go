package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "retention.db")
	repo, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func sampleDatasets() core.Datasets {
	return core.Datasets{
		KPI: core.RetentionKPI{RetentionRate: 91},
		Composition: []core.CompositionRow{
			{Category: "Returning", Count: 3600},
			{Category: "New", Count: 1600},
		},
		Campuses: []core.CampusRetention{
			{Campus: "Campus 2", RetentionRate: 92},
			{Campus: "Campus 7", RetentionRate: 85},
		},
		Withdrawals: []core.WithdrawalRecord{
			{Month: "August", Year: 2022, Reason: "OTHER (UNKNOWN)", Count: 9},
			{Month: "August", Year: 2022, Reason: "Elementary With", Count: 41},
			{Month: "January", Year: 2023, Reason: "Elementary With", Count: 60},
		},
		Reasons: []core.ReasonSummary{
			{Reason: "OTHER (UNKNOWN)", Count: 9, Percentage: 8.3},
			{Reason: "Elementary With", Count: 101, Percentage: 91.7},
		},
		Pie: []core.PieSlice{
			{Reason: "Elementar...", Percentage: 65.3},
			{Reason: "OTHER (U...", Percentage: 19.9},
		},
	}
}

func TestSQLiteRepository_LoadEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = repo.LatestSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	want := sampleDatasets()

	require.NoError(t, repo.SaveSnapshot(ctx, "run-1", 42, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteRepository_SaveReplacesPrevious(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	fixed := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	first := sampleDatasets()
	require.NoError(t, repo.SaveSnapshot(ctx, "run-1", 1, first))

	second := sampleDatasets()
	second.KPI.RetentionRate = 88
	second.Withdrawals = second.Withdrawals[:1]
	require.NoError(t, repo.SaveSnapshot(ctx, "run-2", 7, second))

	snap, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", snap.ID)
	assert.Equal(t, int64(7), snap.Seed)
	assert.True(t, fixed.Equal(snap.GeneratedAt))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 88, got.KPI.RetentionRate)
	assert.Len(t, got.Withdrawals, 1)
}

func TestSQLiteRepository_FailedSaveKeepsPrevious(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveSnapshot(ctx, "run-1", 42, sampleDatasets()))

	bad := sampleDatasets()
	bad.Withdrawals = append(bad.Withdrawals, bad.Withdrawals[0])
	err := repo.SaveSnapshot(ctx, "run-2", 42, bad)
	require.Error(t, err)

	snap, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.ID)
}

func TestSchemaVersion(t *testing.T) {
	_, path := newTestRepo(t)

	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}
