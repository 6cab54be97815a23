package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// snapshotTables are cleared child-first when a snapshot is replaced.
var snapshotTables = []string{
	"pie_slices",
	"withdrawal_reasons",
	"district_withdrawals",
	"campus_retention",
	"student_composition",
	"retention_kpi",
	"snapshot",
}

func (q *Queries) ClearSnapshots(ctx context.Context) error {
	for _, table := range snapshotTables {
		if _, err := q.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

const createSnapshot = `INSERT INTO snapshot (id, seed, generated_at) VALUES (?, ?, ?)`

func (q *Queries) CreateSnapshot(ctx context.Context, id string, seed int64, generatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, createSnapshot, id, seed, generatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

type Snapshot struct {
	ID          string
	Seed        int64
	GeneratedAt time.Time
}

const getLatestSnapshot = `SELECT id, seed, generated_at FROM snapshot ORDER BY generated_at DESC LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		s           Snapshot
		generatedAt string
	)
	if err := q.db.QueryRowContext(ctx, getLatestSnapshot).Scan(&s.ID, &s.Seed, &generatedAt); err != nil {
		return s, err
	}
	t, err := time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return s, fmt.Errorf("parse generated_at %q: %w", generatedAt, err)
	}
	s.GeneratedAt = t
	return s, nil
}

const insertKPI = `INSERT INTO retention_kpi (snapshot_id, retention_rate) VALUES (?, ?)`

func (q *Queries) InsertKPI(ctx context.Context, snapshotID string, rate int) error {
	_, err := q.db.ExecContext(ctx, insertKPI, snapshotID, rate)
	return err
}

const getKPI = `SELECT retention_rate FROM retention_kpi WHERE snapshot_id = ?`

func (q *Queries) GetKPI(ctx context.Context, snapshotID string) (int, error) {
	var rate int
	err := q.db.QueryRowContext(ctx, getKPI, snapshotID).Scan(&rate)
	return rate, err
}

const insertComposition = `INSERT INTO student_composition (snapshot_id, position, category, count) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertComposition(ctx context.Context, snapshotID string, position int, category string, count int) error {
	_, err := q.db.ExecContext(ctx, insertComposition, snapshotID, position, category, count)
	return err
}

const insertCampus = `INSERT INTO campus_retention (snapshot_id, position, campus, retention_rate) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertCampus(ctx context.Context, snapshotID string, position int, campus string, rate int) error {
	_, err := q.db.ExecContext(ctx, insertCampus, snapshotID, position, campus, rate)
	return err
}

const insertWithdrawal = `INSERT INTO district_withdrawals (snapshot_id, position, month, year, reason, count) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertWithdrawal(ctx context.Context, snapshotID string, position int, month string, year int, reason string, count int) error {
	_, err := q.db.ExecContext(ctx, insertWithdrawal, snapshotID, position, month, year, reason, count)
	return err
}

const insertReason = `INSERT INTO withdrawal_reasons (snapshot_id, position, reason, count, percentage) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertReason(ctx context.Context, snapshotID string, position int, reason string, count int, percentage float64) error {
	_, err := q.db.ExecContext(ctx, insertReason, snapshotID, position, reason, count, percentage)
	return err
}

const insertPieSlice = `INSERT INTO pie_slices (snapshot_id, position, reason, percentage) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertPieSlice(ctx context.Context, snapshotID string, position int, reason string, percentage float64) error {
	_, err := q.db.ExecContext(ctx, insertPieSlice, snapshotID, position, reason, percentage)
	return err
}

// The list queries return rows in insertion position order.
const (
	listComposition = `SELECT category, count FROM student_composition WHERE snapshot_id = ? ORDER BY position`
	listCampuses    = `SELECT campus, retention_rate FROM campus_retention WHERE snapshot_id = ? ORDER BY position`
	listWithdrawals = `SELECT month, year, reason, count FROM district_withdrawals WHERE snapshot_id = ? ORDER BY position`
	listReasons     = `SELECT reason, count, percentage FROM withdrawal_reasons WHERE snapshot_id = ? ORDER BY position`
	listPieSlices   = `SELECT reason, percentage FROM pie_slices WHERE snapshot_id = ? ORDER BY position`
)

// list runs query and hands each row to scan.
func (q *Queries) list(ctx context.Context, query, snapshotID string, scan func(*sql.Rows) error) error {
	rows, err := q.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
