// Package dashboard lays the retention datasets out as a four panel figure
// and renders it to a self-contained HTML page.
package dashboard

import (
	"fmt"
	"math"
	"strconv"

	"retention/internal/chart"
	"retention/internal/core"
)

const (
	Title = "Student Retention Dashboard"

	TitleKPI         = "STUDENT RETENTION KPI"
	TitleSchools     = "RETENTION BY SCHOOL"
	TitleReasons     = "TOP WITHDRAWAL REASONS"
	TitleWithdrawals = "DISTRICT WITHDRAWALS"

	Width  = 1500
	Height = 800

	// tickWidth is the longest month name left unabbreviated on the axis.
	tickWidth = 7
)

// Panel colours.
const (
	kpiColor    = "#9DE2F3"
	campusColor = "#3BD2E5"
)

// pieColors is keyed by the shortened labels the pie table carries.
var pieColors = map[string]string{
	"Admin Withdraw":  "#ADD8E6",
	"EXP CAN'...":     "#F77E24",
	"Elementar...":    "#014B86",
	"Enroll in Ot...": "#62C0DD",
	"HOME SCHOOLING":  "#BACB1F",
	"OTHER (U...":     "#8DC63F",
	"Transferre...":   "#522D80",
}

// reasonColors is keyed by the full reason names of the withdrawal records.
var reasonColors = map[string]string{
	"ADMIN WITHDRAW":  "#ADD8E6",
	"EXP CAN'T RET":   "#F77E24",
	"Elementary With": "#014B86",
	"Enroll in Other": "#62C0DD",
	"HOME SCHOOLING":  "#f7ec24",
	"OTHER (UNKNOWN)": "#8DC63F",
	"Transferred to":  "#522D80",
}

// fallback colours for reasons without an assigned one, used in order.
var fallback = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2"}

func colorFor(palette map[string]string, key string, i int) string {
	if c, ok := palette[key]; ok {
		return c
	}
	return fallback[i%len(fallback)]
}

// Build lays out the four panels. The calendar orders the monthly
// withdrawal columns and names the year groups under them.
func Build(d core.Datasets, cal core.Calendar) (*chart.Figure, error) {
	pivot, err := core.BuildMonthlyPivot(d.Withdrawals, cal)
	if err != nil {
		return nil, fmt.Errorf("pivot withdrawals: %w", err)
	}

	fig := chart.NewFigure(Title, Width, Height)
	fig.Margin = chart.Box{X: 20, Y: 60, W: 20, H: 20}
	fig.Grid([]float64{0.4, 0.6}, []float64{0.33, 0.67})

	cells := []struct {
		row, col int
		title    string
		draw     func(*chart.Canvas)
	}{
		{0, 0, TitleKPI, func(c *chart.Canvas) { drawKPI(c, d.KPI, d.Composition) }},
		{0, 1, TitleSchools, func(c *chart.Canvas) { drawCampuses(c, d.Campuses) }},
		{1, 0, TitleReasons, func(c *chart.Canvas) { drawPie(c, d.Pie) }},
		{1, 1, TitleWithdrawals, func(c *chart.Canvas) { drawWithdrawals(c, pivot, cal) }},
	}
	for _, cell := range cells {
		box, err := fig.Cell(cell.row, cell.col)
		if err != nil {
			return nil, err
		}
		canvas := chart.NewCanvas(box.W, box.H)
		cell.draw(canvas)
		fig.Add(cell.row, cell.col, cell.title, canvas)
	}
	if err := fig.Err(); err != nil {
		return nil, err
	}
	return fig, nil
}

func drawKPI(c *chart.Canvas, kpi core.RetentionKPI, rows []core.CompositionRow) {
	c.AddLabel(chart.Label{
		X: c.Width * 0.3, Y: c.Height/2 + 6,
		Text: strconv.Itoa(kpi.RetentionRate) + "%", Size: 48, Bold: true, Anchor: "end", Fill: kpiColor,
	})
	c.AddLabel(chart.Label{
		X: c.Width * 0.3, Y: c.Height/2 + 34,
		Text: "Retention", Size: 18, Bold: true, Anchor: "end", Fill: chart.MutedColor,
	})

	// Returning is listed first and drawn on top.
	bars := make([]chart.Bar, len(rows))
	top := 0
	for i, r := range rows {
		bars[i] = chart.Bar{Label: r.Category, Value: float64(r.Count), Text: chart.Thousands(r.Count)}
		if r.Count > top {
			top = r.Count
		}
	}
	// Round the axis up to the next 2K so the 2K guide always lands inside.
	limit := math.Ceil(float64(top)/2000) * 2000
	if limit == 0 {
		limit = 2000
	}
	area := chart.Box{X: c.Width * 0.5, Y: 50, W: c.Width * 0.45, H: c.Height - 90}
	chart.HorizontalBars(c, area, bars, chart.BarOptions{
		Fill:       kpiColor,
		Max:        limit,
		Gap:        0.3,
		Ticks:      []float64{0, 2000},
		TickLabels: []string{"0K", "2K"},
	})
}

func drawCampuses(c *chart.Canvas, rows []core.CampusRetention) {
	bars := make([]chart.Bar, len(rows))
	for i, r := range rows {
		bars[i] = chart.Bar{Label: r.Campus, Value: float64(r.RetentionRate), Text: strconv.Itoa(r.RetentionRate) + "%"}
	}
	area := chart.Box{X: 20, Y: 50, W: c.Width - 40, H: c.Height - 90}
	chart.VerticalBars(c, area, bars, chart.BarOptions{Fill: campusColor, TextColor: "white", Max: 100})
}

func drawPie(c *chart.Canvas, rows []core.PieSlice) {
	slices := make([]chart.Slice, len(rows))
	for i, r := range rows {
		slices[i] = chart.Slice{Label: r.Reason, Value: r.Percentage, Fill: colorFor(pieColors, r.Reason, i)}
	}
	r := math.Min(c.Width, c.Height) * 0.28
	chart.Pie(c, c.Width/2, c.Height*0.45, r, slices, chart.PieOptions{
		Legend: chart.Box{X: 10, Y: c.Height - 50, W: c.Width - 20, H: 20},
	})
}

func drawWithdrawals(c *chart.Canvas, p core.PivotTable, cal core.Calendar) {
	data := chart.StackedData{
		Ticks:  make([]string, len(p.Rows)),
		Titles: make([]string, len(p.Rows)),
	}
	for i, row := range p.Rows {
		data.Ticks[i] = chart.Abbreviate(row.Month, tickWidth)
		data.Titles[i] = row.Label()
	}
	for i, reason := range p.Reasons {
		col := p.Column(reason)
		values := make([]float64, len(col))
		for j, v := range col {
			values[j] = float64(v)
		}
		data.Series = append(data.Series, chart.Series{Name: reason, Color: colorFor(reasonColors, reason, i), Values: values})
	}
	data.Groups = []chart.Group{
		{Label: strconv.Itoa(cal.FirstYear), From: 0, To: cal.Split},
		{Label: strconv.Itoa(cal.FirstYear + 1), From: cal.Split, To: len(cal.Months)},
	}

	area := chart.Box{X: 60, Y: 50, W: c.Width * 0.7, H: c.Height - 190}
	chart.StackedBars(c, area, data, chart.StackedOptions{YTicks: []float64{0, 50, 100}})

	// Legend down the right-hand side.
	x := area.Right() + 40
	for i, s := range data.Series {
		y := area.Y + 30 + float64(i)*26
		c.AddDot(chart.Dot{CX: x, CY: y, R: 7, Fill: s.Color})
		c.AddLabel(chart.Label{X: x + 14, Y: y + 4, Text: s.Name, Size: 11})
	}
}
