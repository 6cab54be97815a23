package chart

import (
	"strconv"
)

// Bar is one bar of a simple bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // drawn inside the bar when set
}

// BarOptions styles HorizontalBars and VerticalBars.
type BarOptions struct {
	Fill      string
	TextColor string
	// Max fixes the value axis; zero means the largest bar.
	Max float64
	// Gap is the fraction of each band left empty.
	Gap float64
	// Ticks draws dashed guides at these values with the given labels.
	Ticks      []float64
	TickLabels []string
	HideLabels bool
}

func (o BarOptions) withDefaults() BarOptions {
	if o.Fill == "" {
		o.Fill = "#3BD2E5"
	}
	if o.TextColor == "" {
		o.TextColor = TextColor
	}
	if o.Gap == 0 {
		o.Gap = 0.2
	}
	return o
}

func maxBar(bars []Bar) float64 {
	m := 0.0
	for _, b := range bars {
		if b.Value > m {
			m = b.Value
		}
	}
	return m
}

// HorizontalBars draws bars left to right, first bar at the top. Category
// labels sit to the left of area.
func HorizontalBars(c *Canvas, area Box, bars []Bar, opts BarOptions) {
	if len(bars) == 0 {
		return
	}
	opts = opts.withDefaults()
	limit := opts.Max
	if limit == 0 {
		limit = maxBar(bars)
	}
	x := NewLinearScale(0, limit, area.X, area.Right())
	band := area.H / float64(len(bars))
	thick := band * (1 - opts.Gap)

	for i, t := range opts.Ticks {
		px := x.Map(t)
		c.AddSegment(Segment{X1: px, Y1: area.Y, X2: px, Y2: area.Bottom(), Stroke: GuideColor, Dash: "4 4"})
		if i < len(opts.TickLabels) {
			c.AddLabel(Label{X: px, Y: area.Bottom() + 16, Text: opts.TickLabels[i], Anchor: "middle", Fill: MutedColor, Size: 11})
		}
	}

	for i, b := range bars {
		y := area.Y + float64(i)*band + (band-thick)/2
		w := x.Length(b.Value)
		c.AddRect(Rect{X: area.X, Y: y, W: w, H: thick, Fill: opts.Fill, Title: b.Label + ": " + formatValue(b.Value)})
		if !opts.HideLabels {
			c.AddLabel(Label{X: area.X - 8, Y: y + thick/2 + 4, Text: b.Label, Anchor: "end", Fill: MutedColor})
		}
		if b.Text != "" {
			c.AddLabel(Label{X: area.X + w - 6, Y: y + thick/2 + 4, Text: b.Text, Anchor: "end", Fill: opts.TextColor})
		}
	}
}

// VerticalBars draws bars bottom-up with category labels under area.
func VerticalBars(c *Canvas, area Box, bars []Bar, opts BarOptions) {
	if len(bars) == 0 {
		return
	}
	opts = opts.withDefaults()
	limit := opts.Max
	if limit == 0 {
		limit = maxBar(bars)
	}
	y := NewLinearScale(0, limit, area.Bottom(), area.Y)
	band := area.W / float64(len(bars))
	thick := band * (1 - opts.Gap)

	for i, b := range bars {
		x := area.X + float64(i)*band + (band-thick)/2
		h := y.Length(b.Value)
		top := area.Bottom() - h
		c.AddRect(Rect{X: x, Y: top, W: thick, H: h, Fill: opts.Fill, Title: b.Label + ": " + formatValue(b.Value)})
		if !opts.HideLabels {
			c.AddLabel(Label{X: x + thick/2, Y: area.Bottom() + 16, Text: b.Label, Anchor: "middle", Size: 10})
		}
		if b.Text != "" {
			c.AddLabel(Label{X: x + thick/2, Y: top + 16, Text: b.Text, Anchor: "middle", Fill: opts.TextColor})
		}
	}
}

// Series is one stacked layer.
type Series struct {
	Name   string
	Color  string
	Values []float64
}

// Group captions a run of consecutive categories, [From, To).
type Group struct {
	Label    string
	From, To int
}

// StackedData feeds StackedBars. Ticks label the categories on the axis;
// Titles, when set, are the full category names used in tooltips.
type StackedData struct {
	Ticks  []string
	Titles []string
	Series []Series
	Groups []Group
}

// StackedOptions styles StackedBars.
type StackedOptions struct {
	// Headroom scales the tallest stack to leave space for totals.
	Headroom float64
	// YTicks draws dotted grid lines at these values.
	YTicks []float64
	Gap    float64
}

// StackedBars draws one stacked column per category, its total above it,
// the category ticks rotated under the axis and the group captions under
// those.
func StackedBars(c *Canvas, area Box, data StackedData, opts StackedOptions) {
	n := len(data.Ticks)
	if n == 0 {
		return
	}
	if opts.Headroom == 0 {
		opts.Headroom = 1.1
	}
	if opts.Gap == 0 {
		opts.Gap = 0.2
	}

	totals := make([]float64, n)
	for _, s := range data.Series {
		for i := 0; i < n && i < len(s.Values); i++ {
			totals[i] += s.Values[i]
		}
	}
	top := 0.0
	for _, t := range totals {
		if t > top {
			top = t
		}
	}
	if top == 0 {
		top = 1
	}

	y := NewLinearScale(0, top*opts.Headroom, area.Bottom(), area.Y)
	band := area.W / float64(n)
	thick := band * (1 - opts.Gap)

	for _, t := range opts.YTicks {
		if t > y.DomainMax {
			continue
		}
		py := y.Map(t)
		c.AddSegment(Segment{X1: area.X, Y1: py, X2: area.Right(), Y2: py, Stroke: "lightgray", Dash: "2 3"})
		c.AddLabel(Label{X: area.X - 10, Y: py + 4, Text: formatValue(t), Anchor: "end", Fill: MutedColor, Size: 11})
	}

	for i := 0; i < n; i++ {
		x := area.X + float64(i)*band + (band-thick)/2
		title := data.Ticks[i]
		if i < len(data.Titles) {
			title = data.Titles[i]
		}
		base := area.Bottom()
		for _, s := range data.Series {
			if i >= len(s.Values) || s.Values[i] <= 0 {
				continue
			}
			h := y.Length(s.Values[i])
			base -= h
			c.AddRect(Rect{X: x, Y: base, W: thick, H: h, Fill: s.Color,
				Title: title + ": " + s.Name + " " + formatValue(s.Values[i])})
		}
		c.AddLabel(Label{X: x + thick/2, Y: y.Map(totals[i]) - 4, Text: formatValue(totals[i]), Anchor: "middle"})
		c.AddLabel(Label{X: x + thick/2 + 4, Y: area.Bottom() + 8, Text: data.Ticks[i], Anchor: "end", Size: 10, Rotate: -90})
	}

	captionY := area.Bottom() + 72
	for _, g := range data.Groups {
		if g.From < 0 || g.To > n || g.From >= g.To {
			continue
		}
		left := area.X + float64(g.From)*band
		right := area.X + float64(g.To)*band
		c.AddLabel(Label{X: (left + right) / 2, Y: captionY, Text: g.Label, Anchor: "middle", Size: 11})
		c.AddSegment(Segment{X1: left, Y1: area.Bottom(), X2: left, Y2: captionY + 4, Stroke: GuideColor, Dash: "2 3"})
		if g.To == n {
			c.AddSegment(Segment{X1: right, Y1: area.Y, X2: right, Y2: captionY + 4, Stroke: GuideColor, Dash: "2 3"})
		}
	}
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
