package chart

import (
	"fmt"
	"math"
)

// Slice is one pie wedge. Values need not sum to 100; each wedge is drawn
// as its share of the total.
type Slice struct {
	Label string
	Value float64
	Fill  string
}

// PieOptions places the legend under the pie.
type PieOptions struct {
	Legend      Box
	LegendItemW float64
}

// Pie draws slices clockwise from twelve o'clock with the percentage of
// each wedge outside the rim, plus a horizontal legend when opts.Legend
// has a width.
func Pie(c *Canvas, cx, cy, r float64, slices []Slice, opts PieOptions) {
	total := 0.0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}

	if total > 0 {
		angle := -math.Pi / 2
		for _, s := range slices {
			if s.Value <= 0 {
				continue
			}
			sweep := s.Value / total * 2 * math.Pi
			share := s.Value / total * 100
			c.AddWedge(Wedge{
				Path:  wedgePath(cx, cy, r, angle, angle+sweep),
				Fill:  s.Fill,
				Title: fmt.Sprintf("%s: %.1f%%", s.Label, share),
			})

			mid := angle + sweep/2
			lx := cx + math.Cos(mid)*r*1.18
			ly := cy + math.Sin(mid)*r*1.18 + 5
			anchor := "start"
			if math.Cos(mid) < -0.1 {
				anchor = "end"
			} else if math.Abs(math.Cos(mid)) <= 0.1 {
				anchor = "middle"
			}
			c.AddLabel(Label{X: lx, Y: ly, Text: fmt.Sprintf("%.1f%%", share), Anchor: anchor, Size: 14})
			angle += sweep
		}
	}

	if opts.Legend.W <= 0 {
		return
	}
	itemW := opts.LegendItemW
	if itemW == 0 && len(slices) > 0 {
		itemW = opts.Legend.W / float64(len(slices))
	}
	for i, s := range slices {
		x := opts.Legend.X + float64(i)*itemW
		y := opts.Legend.Y + opts.Legend.H/2
		c.AddDot(Dot{CX: x + 6, CY: y, R: 6, Fill: s.Fill})
		c.AddLabel(Label{X: x + 16, Y: y + 4, Text: s.Label, Size: 10})
	}
}

func wedgePath(cx, cy, r, from, to float64) string {
	// A single arc cannot close a full circle; split it in two.
	if to-from >= 2*math.Pi-1e-9 {
		mid := from + math.Pi
		return fmt.Sprintf("M %s %s A %s %s 0 1 1 %s %s A %s %s 0 1 1 %s %s Z",
			Num(cx+r*math.Cos(from)), Num(cy+r*math.Sin(from)),
			Num(r), Num(r), Num(cx+r*math.Cos(mid)), Num(cy+r*math.Sin(mid)),
			Num(r), Num(r), Num(cx+r*math.Cos(from)), Num(cy+r*math.Sin(from)))
	}
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
		Num(cx), Num(cy),
		Num(cx+r*math.Cos(from)), Num(cy+r*math.Sin(from)),
		Num(r), Num(r), large,
		Num(cx+r*math.Cos(to)), Num(cy+r*math.Sin(to)))
}
