// Package core holds the student retention domain: withdrawal records and
// the other dataset rows, the reason aggregator that turns records into
// per-reason counts and shares, and the monthly pivot that lays withdrawals
// out on the academic calendar.
package core

import (
	"errors"
	"strconv"
)

type (
	// WithdrawalRecord is one (Month, Year, Reason) count in long format.
	WithdrawalRecord struct {
		Month  string
		Year   int
		Reason string
		Count  int
	}

	// ReasonSummary is the aggregated count of a reason and its share of the total.
	ReasonSummary struct {
		Reason     string
		Count      int
		Percentage float64
	}

	RetentionKPI struct {
		RetentionRate int `json:"retention_rate"`
	}

	CompositionRow struct {
		Category string
		Count    int
	}

	CampusRetention struct {
		Campus        string
		RetentionRate int
	}

	// PieSlice is a hand-authored share for a shortened reason label.
	PieSlice struct {
		Reason     string
		Percentage float64
	}

	// Datasets groups every artifact the builder produces and the renderer consumes.
	Datasets struct {
		KPI         RetentionKPI
		Composition []CompositionRow
		Campuses    []CampusRetention
		Withdrawals []WithdrawalRecord
		Reasons     []ReasonSummary
		Pie         []PieSlice
	}
)

var (
	ErrEmptyAggregationInput = errors.New("empty aggregation input")
	ErrInvalidCalendar       = errors.New("invalid calendar")
)

// Label returns "Month Year", the key used on the stacked chart axis.
func (r WithdrawalRecord) Label() string {
	return r.Month + " " + strconv.Itoa(r.Year)
}
