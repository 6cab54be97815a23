package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"retention/internal/core"
	"retention/internal/fsutil"
	applog "retention/internal/log"
)

// Artifact file names inside the data directory.
const (
	FileKPI         = "retention_kpi.json"
	FileComposition = "student_composition.csv"
	FileCampuses    = "retention_by_school.csv"
	FileWithdrawals = "district_withdrawals.csv"
	FileReasons     = "withdrawal_reasons.csv"
	FilePie         = "pie_data.csv"
)

// Files lists every artifact in write order.
var Files = []string{FileKPI, FileComposition, FileCampuses, FileWithdrawals, FileReasons, FilePie}

var (
	ErrIOFailure         = errors.New("io failure")
	ErrMalformedArtifact = errors.New("malformed artifact")
)

// Artifact describes one written file.
type Artifact struct {
	Name string
	Path string
	Rows int
}

// FileStore reads and writes the datasets as flat files in Dir.
type FileStore struct {
	Dir    string
	logger *applog.Logger
}

func NewFileStore(dir string, logger *applog.Logger) *FileStore {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FileStore{Dir: dir, logger: logger.WithComponent(applog.ComponentDataset)}
}

// Write replaces every artifact in Dir, creating the directory if needed.
func (s *FileStore) Write(ctx context.Context, d core.Datasets) ([]Artifact, error) {
	if err := fsutil.EnsureDir(s.Dir); err != nil {
		return nil, fmt.Errorf("%w: create data directory %s: %w", ErrIOFailure, s.Dir, err)
	}

	kpi, err := json.Marshal(d.KPI)
	if err != nil {
		return nil, fmt.Errorf("encode kpi: %w", err)
	}
	kpi = append(kpi, '\n')

	tables := []struct {
		name string
		data []byte
		rows int
	}{
		{FileKPI, kpi, 1},
		{FileComposition, encodeComposition(d.Composition), len(d.Composition)},
		{FileCampuses, encodeCampuses(d.Campuses), len(d.Campuses)},
		{FileWithdrawals, encodeWithdrawals(d.Withdrawals), len(d.Withdrawals)},
		{FileReasons, encodeReasons(d.Reasons), len(d.Reasons)},
		{FilePie, encodePie(d.Pie), len(d.Pie)},
	}

	out := make([]Artifact, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := filepath.Join(s.Dir, t.name)
		if err := fsutil.WriteFileAtomic(path, t.data, 0644); err != nil {
			return out, fmt.Errorf("%w: write %s: %w", ErrIOFailure, path, err)
		}
		s.logger.DebugContext(ctx, "Artifact written",
			applog.NewFields().WithOperation(applog.OpWrite).WithArtifact(t.name, path, t.rows).ToSlice()...)
		out = append(out, Artifact{Name: t.name, Path: path, Rows: t.rows})
	}
	return out, nil
}

// Load reads all six artifacts concurrently.
func (s *FileStore) Load(ctx context.Context) (core.Datasets, error) {
	var d core.Datasets
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := s.read(ctx, FileKPI)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &d.KPI); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedArtifact, FileKPI, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		d.Composition, err = loadTable(ctx, s, FileComposition, []string{"Category", "Count"},
			func(r row) (core.CompositionRow, error) {
				n, err := r.integer("Count")
				return core.CompositionRow{Category: r.text("Category"), Count: n}, err
			})
		return err
	})
	g.Go(func() (err error) {
		d.Campuses, err = loadTable(ctx, s, FileCampuses, []string{"Campus", "Retention Rate"},
			func(r row) (core.CampusRetention, error) {
				n, err := r.integer("Retention Rate")
				return core.CampusRetention{Campus: r.text("Campus"), RetentionRate: n}, err
			})
		return err
	})
	g.Go(func() (err error) {
		d.Withdrawals, err = loadTable(ctx, s, FileWithdrawals, []string{"Month", "Year", "Reason", "Count"},
			func(r row) (core.WithdrawalRecord, error) {
				year, err := r.integer("Year")
				if err != nil {
					return core.WithdrawalRecord{}, err
				}
				count, err := r.integer("Count")
				return core.WithdrawalRecord{Month: r.text("Month"), Year: year, Reason: r.text("Reason"), Count: count}, err
			})
		return err
	})
	g.Go(func() (err error) {
		d.Reasons, err = loadTable(ctx, s, FileReasons, []string{"Reason", "Count", "Percentage"},
			func(r row) (core.ReasonSummary, error) {
				count, err := r.integer("Count")
				if err != nil {
					return core.ReasonSummary{}, err
				}
				pct, err := r.percentage("Percentage")
				return core.ReasonSummary{Reason: r.text("Reason"), Count: count, Percentage: pct}, err
			})
		return err
	})
	g.Go(func() (err error) {
		d.Pie, err = loadTable(ctx, s, FilePie, []string{"Reason", "Percentage"},
			func(r row) (core.PieSlice, error) {
				pct, err := r.percentage("Percentage")
				return core.PieSlice{Reason: r.text("Reason"), Percentage: pct}, err
			})
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Datasets{}, err
	}
	s.logger.InfoContext(ctx, "Datasets loaded", applog.FieldPath, s.Dir, applog.FieldOperation, applog.OpLoad)
	return d, nil
}

func (s *FileStore) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIOFailure, path, err)
	}
	return data, nil
}

// row is one CSV record addressed by header name.
type row struct {
	file   string
	line   int
	cols   map[string]int
	values []string
}

func (r row) text(col string) string {
	return strings.TrimSpace(r.values[r.cols[col]])
}

func (r row) integer(col string) (int, error) {
	v, err := strconv.Atoi(r.text(col))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s line %d: column %s: %q is not a non-negative integer",
			ErrMalformedArtifact, r.file, r.line, col, r.text(col))
	}
	return v, nil
}

func (r row) percentage(col string) (float64, error) {
	v, err := core.ParsePercentage(r.text(col))
	if err != nil {
		return 0, fmt.Errorf("%w: %s line %d: column %s: %w", ErrMalformedArtifact, r.file, r.line, col, err)
	}
	return v, nil
}

func loadTable[T any](ctx context.Context, s *FileStore, name string, required []string, parse func(row) (T, error)) ([]T, error) {
	data, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedArtifact, name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header", ErrMalformedArtifact, name)
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s; got headers=%v",
			ErrMalformedArtifact, name, strings.Join(missing, ","), records[0])
	}

	out := make([]T, 0, len(records)-1)
	for i, values := range records[1:] {
		v, err := parse(row{file: name, line: i + 2, cols: cols, values: values})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func encodeCSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(header)
	w.WriteAll(rows) // bytes.Buffer writes cannot fail
	return buf.Bytes()
}

func encodeComposition(rows []core.CompositionRow) []byte {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Category, strconv.Itoa(r.Count)}
	}
	return encodeCSV([]string{"Category", "Count"}, out)
}

func encodeCampuses(rows []core.CampusRetention) []byte {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Campus, strconv.Itoa(r.RetentionRate)}
	}
	return encodeCSV([]string{"Campus", "Retention Rate"}, out)
}

func encodeWithdrawals(rows []core.WithdrawalRecord) []byte {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Month, strconv.Itoa(r.Year), r.Reason, strconv.Itoa(r.Count)}
	}
	return encodeCSV([]string{"Month", "Year", "Reason", "Count"}, out)
}

func encodeReasons(rows []core.ReasonSummary) []byte {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Reason, strconv.Itoa(r.Count), core.FormatPercentage(r.Percentage)}
	}
	return encodeCSV([]string{"Reason", "Count", "Percentage"}, out)
}

func encodePie(rows []core.PieSlice) []byte {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Reason, core.FormatPercentage(r.Percentage)}
	}
	return encodeCSV([]string{"Reason", "Percentage"}, out)
}
