// Package chart draws simple bar and pie charts as SVG primitives.
//
// Drawing functions append shapes to a Canvas in the canvas's own
// coordinate space (origin top-left, y down). A Figure arranges canvases
// on a grid; the dashboard template turns both into inline SVG.
package chart

import (
	"strconv"
	"strings"
)

// Box is an axis-aligned area on a canvas.
type Box struct {
	X, Y, W, H float64
}

// Inset shrinks b by the given margins.
func (b Box) Inset(top, right, bottom, left float64) Box {
	return Box{X: b.X + left, Y: b.Y + top, W: b.W - left - right, H: b.H - top - bottom}
}

func (b Box) Bottom() float64 { return b.Y + b.H }
func (b Box) Right() float64  { return b.X + b.W }

type (
	Rect struct {
		X, Y, W, H float64
		Fill       string
		Title      string // hover tooltip
	}

	Label struct {
		X, Y   float64
		Text   string
		Size   float64
		Anchor string // start, middle or end
		Fill   string
		Bold   bool
		Rotate float64 // degrees around (X, Y)
	}

	Segment struct {
		X1, Y1, X2, Y2 float64
		Stroke         string
		Dash           string
	}

	Wedge struct {
		Path  string
		Fill  string
		Title string
	}

	Dot struct {
		CX, CY, R float64
		Fill      string
	}
)

// Canvas collects the shapes of one chart panel.
type Canvas struct {
	Width, Height float64

	Rects    []Rect
	Wedges   []Wedge
	Segments []Segment
	Dots     []Dot
	Labels   []Label
}

func NewCanvas(width, height float64) *Canvas {
	return &Canvas{Width: width, Height: height}
}

// Bounds is the whole canvas as a Box.
func (c *Canvas) Bounds() Box {
	return Box{W: c.Width, H: c.Height}
}

func (c *Canvas) AddRect(r Rect)       { c.Rects = append(c.Rects, r) }
func (c *Canvas) AddWedge(w Wedge)     { c.Wedges = append(c.Wedges, w) }
func (c *Canvas) AddSegment(s Segment) { c.Segments = append(c.Segments, s) }
func (c *Canvas) AddDot(d Dot)         { c.Dots = append(c.Dots, d) }

// AddLabel appends l, defaulting its size, anchor and colour.
func (c *Canvas) AddLabel(l Label) {
	if l.Size == 0 {
		l.Size = 12
	}
	if l.Anchor == "" {
		l.Anchor = "start"
	}
	if l.Fill == "" {
		l.Fill = TextColor
	}
	c.Labels = append(c.Labels, l)
}

// Texts returns every label text in drawing order.
func (c *Canvas) Texts() []string {
	out := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		out[i] = l.Text
	}
	return out
}

const (
	TextColor  = "#333333"
	MutedColor = "rgba(128,128,128,0.6)"
	GuideColor = "rgba(128,128,128,0.3)"
)

// Num formats a coordinate with at most two decimals.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
