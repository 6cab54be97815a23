package chart

import (
	"errors"
	"fmt"
)

var ErrLayout = errors.New("invalid figure layout")

// Panel is a titled canvas placed in one grid cell.
type Panel struct {
	Row, Col int
	Title    string
	Box      Box
	Canvas   *Canvas
}

// Figure is a grid of panels. It is built through chained calls; the first
// layout error sticks and is reported by Err.
type Figure struct {
	Title         string
	Width, Height float64
	Margin        Box // X left, Y top, W right, H bottom

	Columns []float64
	Rows    []float64
	Panels  []Panel

	err error
}

func NewFigure(title string, width, height float64) *Figure {
	return &Figure{
		Title:   title,
		Width:   width,
		Height:  height,
		Margin:  Box{X: 20, Y: 20, W: 20, H: 20},
		Columns: []float64{1},
		Rows:    []float64{1},
	}
}

// Grid sets the column widths and row heights as fractions of the area
// inside the margins.
func (f *Figure) Grid(columns, rows []float64) *Figure {
	if f.err != nil {
		return f
	}
	if err := checkFractions("columns", columns); err != nil {
		f.err = err
		return f
	}
	if err := checkFractions("rows", rows); err != nil {
		f.err = err
		return f
	}
	f.Columns = columns
	f.Rows = rows
	return f
}

func checkFractions(name string, fr []float64) error {
	if len(fr) == 0 {
		return fmt.Errorf("%w: no %s", ErrLayout, name)
	}
	sum := 0.0
	for _, v := range fr {
		if v <= 0 {
			return fmt.Errorf("%w: %s fraction %v must be positive", ErrLayout, name, v)
		}
		sum += v
	}
	if sum > 1+1e-9 {
		return fmt.Errorf("%w: %s fractions sum to %v", ErrLayout, name, sum)
	}
	return nil
}

// Cell returns the box of grid cell (row, col) in figure coordinates.
func (f *Figure) Cell(row, col int) (Box, error) {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Columns) {
		return Box{}, fmt.Errorf("%w: cell (%d,%d) outside %dx%d grid", ErrLayout, row, col, len(f.Rows), len(f.Columns))
	}
	innerW := f.Width - f.Margin.X - f.Margin.W
	innerH := f.Height - f.Margin.Y - f.Margin.H

	x := f.Margin.X
	for _, c := range f.Columns[:col] {
		x += c * innerW
	}
	y := f.Margin.Y
	for _, r := range f.Rows[:row] {
		y += r * innerH
	}
	return Box{X: x, Y: y, W: f.Columns[col] * innerW, H: f.Rows[row] * innerH}, nil
}

// Add places canvas in cell (row, col). A cell holds one panel.
func (f *Figure) Add(row, col int, title string, canvas *Canvas) *Figure {
	if f.err != nil {
		return f
	}
	box, err := f.Cell(row, col)
	if err != nil {
		f.err = err
		return f
	}
	for _, p := range f.Panels {
		if p.Row == row && p.Col == col {
			f.err = fmt.Errorf("%w: cell (%d,%d) already holds %q", ErrLayout, row, col, p.Title)
			return f
		}
	}
	f.Panels = append(f.Panels, Panel{Row: row, Col: col, Title: title, Box: box, Canvas: canvas})
	return f
}

func (f *Figure) Err() error {
	return f.err
}

// Panel returns the panel titled title.
func (f *Figure) Panel(title string) (Panel, bool) {
	for _, p := range f.Panels {
		if p.Title == title {
			return p, true
		}
	}
	return Panel{}, false
}
