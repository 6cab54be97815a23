package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"retention/internal/core"
	applog "retention/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no dataset snapshot stored")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot replaces whatever snapshot is stored with d.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, runID string, seed int64, d core.Datasets) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.ClearSnapshots(ctx); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	if err := q.CreateSnapshot(ctx, runID, seed, r.now()); err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := q.InsertKPI(ctx, runID, d.KPI.RetentionRate); err != nil {
		return fmt.Errorf("insert kpi: %w", err)
	}
	for i, c := range d.Composition {
		if err := q.InsertComposition(ctx, runID, i, c.Category, c.Count); err != nil {
			return fmt.Errorf("insert composition row %d: %w", i, err)
		}
	}
	for i, c := range d.Campuses {
		if err := q.InsertCampus(ctx, runID, i, c.Campus, c.RetentionRate); err != nil {
			return fmt.Errorf("insert campus row %d: %w", i, err)
		}
	}
	for i, w := range d.Withdrawals {
		if err := q.InsertWithdrawal(ctx, runID, i, w.Month, w.Year, w.Reason, w.Count); err != nil {
			return fmt.Errorf("insert withdrawal row %d: %w", i, err)
		}
	}
	for i, s := range d.Reasons {
		if err := q.InsertReason(ctx, runID, i, s.Reason, s.Count, s.Percentage); err != nil {
			return fmt.Errorf("insert reason row %d: %w", i, err)
		}
	}
	for i, p := range d.Pie {
		if err := q.InsertPieSlice(ctx, runID, i, p.Reason, p.Percentage); err != nil {
			return fmt.Errorf("insert pie row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	fields := applog.NewFields().WithOperation(applog.OpSnapshot).WithRun(runID, seed)
	fields[applog.FieldRows] = len(d.Withdrawals)
	r.logger.InfoContext(ctx, "Snapshot stored", fields.ToSlice()...)
	return nil
}

// LatestSnapshot returns the metadata of the stored snapshot.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	s, err := r.queries.GetLatestSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	return s, nil
}

// Load reads the stored snapshot back as a full set of datasets.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Datasets, error) {
	var d core.Datasets

	snap, err := r.LatestSnapshot(ctx)
	if err != nil {
		return d, err
	}
	id := snap.ID

	if d.KPI.RetentionRate, err = r.queries.GetKPI(ctx, id); err != nil {
		return d, fmt.Errorf("get kpi: %w", err)
	}

	err = r.queries.list(ctx, listComposition, id, func(rows *sql.Rows) error {
		var c core.CompositionRow
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return err
		}
		d.Composition = append(d.Composition, c)
		return nil
	})
	if err != nil {
		return d, fmt.Errorf("list composition: %w", err)
	}

	err = r.queries.list(ctx, listCampuses, id, func(rows *sql.Rows) error {
		var c core.CampusRetention
		if err := rows.Scan(&c.Campus, &c.RetentionRate); err != nil {
			return err
		}
		d.Campuses = append(d.Campuses, c)
		return nil
	})
	if err != nil {
		return d, fmt.Errorf("list campuses: %w", err)
	}

	err = r.queries.list(ctx, listWithdrawals, id, func(rows *sql.Rows) error {
		var w core.WithdrawalRecord
		if err := rows.Scan(&w.Month, &w.Year, &w.Reason, &w.Count); err != nil {
			return err
		}
		d.Withdrawals = append(d.Withdrawals, w)
		return nil
	})
	if err != nil {
		return d, fmt.Errorf("list withdrawals: %w", err)
	}

	err = r.queries.list(ctx, listReasons, id, func(rows *sql.Rows) error {
		var s core.ReasonSummary
		if err := rows.Scan(&s.Reason, &s.Count, &s.Percentage); err != nil {
			return err
		}
		d.Reasons = append(d.Reasons, s)
		return nil
	})
	if err != nil {
		return d, fmt.Errorf("list reasons: %w", err)
	}

	err = r.queries.list(ctx, listPieSlices, id, func(rows *sql.Rows) error {
		var p core.PieSlice
		if err := rows.Scan(&p.Reason, &p.Percentage); err != nil {
			return err
		}
		d.Pie = append(d.Pie, p)
		return nil
	})
	if err != nil {
		return d, fmt.Errorf("list pie slices: %w", err)
	}

	fields := applog.NewFields().WithOperation(applog.OpLoad).WithRun(snap.ID, snap.Seed)
	fields[applog.FieldRows] = len(d.Withdrawals)
	r.logger.DebugContext(ctx, "Snapshot loaded", fields.ToSlice()...)
	return d, nil
}
