package chart

// LinearScale maps a data domain onto a pixel range. The range may be
// inverted (RangeMin > RangeMax) for y axes.
type LinearScale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

func NewLinearScale(domainMin, domainMax, rangeMin, rangeMax float64) LinearScale {
	return LinearScale{DomainMin: domainMin, DomainMax: domainMax, RangeMin: rangeMin, RangeMax: rangeMax}
}

// Map projects v. A degenerate domain maps everything to RangeMin.
func (s LinearScale) Map(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return s.RangeMin
	}
	return s.RangeMin + (v-s.DomainMin)/span*(s.RangeMax-s.RangeMin)
}

// Length is the pixel length of v measured from DomainMin.
func (s LinearScale) Length(v float64) float64 {
	d := s.Map(v) - s.Map(s.DomainMin)
	if d < 0 {
		return -d
	}
	return d
}
