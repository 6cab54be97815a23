// Package dataset builds the fixed student retention datasets and moves them
// to and from flat files.
package dataset

import (
	"errors"
	"fmt"

	"retention/internal/core"
)

// DefaultSeed mirrors the builder's historical default.
const DefaultSeed int64 = 42

// Reason categories as they appear in the district withdrawal export.
const (
	ReasonAdminWithdraw  = "ADMIN WITHDRAW"
	ReasonElementaryWith = "Elementary With"
	ReasonEnrollInOther  = "Enroll in Other"
	ReasonExpCantRet     = "EXP CAN'T RET"
	ReasonHomeSchooling  = "HOME SCHOOLING"
	ReasonOtherUnknown   = "OTHER (UNKNOWN)"
	ReasonTransferredTo  = "Transferred to"
)

// Reasons lists the withdrawal reasons in export order.
var Reasons = []string{
	ReasonAdminWithdraw,
	ReasonElementaryWith,
	ReasonEnrollInOther,
	ReasonExpCantRet,
	ReasonHomeSchooling,
	ReasonOtherUnknown,
	ReasonTransferredTo,
}

// monthlyCounts holds one row per calendar month, columns in Reasons order.
var monthlyCounts = [][7]int{
	{0, 41, 1, 4, 0, 10, 6},  // August 2022, total 62
	{0, 51, 0, 8, 0, 13, 0},  // September 2022, total 72
	{0, 50, 0, 17, 0, 10, 0}, // October 2022, total 77
	{0, 42, 0, 3, 1, 12, 0},  // November 2022, total 58
	{0, 15, 1, 1, 0, 4, 0},   // December 2022, total 21
	{2, 60, 2, 15, 0, 19, 0}, // January 2023, total 98
	{0, 29, 1, 4, 0, 15, 0},  // February 2023, total 49
	{0, 18, 2, 7, 0, 12, 1},  // March 2023, total 40
	{0, 3, 0, 1, 0, 1, 0},    // April 2023, total 5
}

// Builder produces the literal datasets. Seed is carried for provenance only:
// every figure is a constant, so two builds with different seeds are identical.
type Builder struct {
	Seed     int64
	Calendar core.Calendar
}

// NewBuilder returns a builder over the academic calendar.
func NewBuilder(seed int64) *Builder {
	return &Builder{Seed: seed, Calendar: core.AcademicCalendar}
}

// Build assembles all six artifacts. The reason summary is derived from the
// withdrawal records; the pie table is not (see PieSlices).
//
// A zero withdrawal total still yields a usable zero summary; in that case
// the datasets are returned along with core.ErrEmptyAggregationInput.
func (b *Builder) Build() (core.Datasets, error) {
	withdrawals, err := b.Withdrawals()
	if err != nil {
		return core.Datasets{}, err
	}

	reasons, err := core.SummarizeReasons(withdrawals)
	if err != nil && !errors.Is(err, core.ErrEmptyAggregationInput) {
		return core.Datasets{}, fmt.Errorf("summarize reasons: %w", err)
	}

	return core.Datasets{
		KPI:         RetentionKPI(),
		Composition: Composition(),
		Campuses:    CampusRetention(),
		Withdrawals: withdrawals,
		Reasons:     reasons,
		Pie:         PieSlices(),
	}, err
}

// Withdrawals expands the monthly count matrix into long-format records,
// month-major in calendar order.
func (b *Builder) Withdrawals() ([]core.WithdrawalRecord, error) {
	if err := b.Calendar.Validate(); err != nil {
		return nil, err
	}
	slots := b.Calendar.Slots()
	if len(slots) != len(monthlyCounts) {
		return nil, fmt.Errorf("%w: %d months, want %d", core.ErrInvalidCalendar, len(slots), len(monthlyCounts))
	}

	out := make([]core.WithdrawalRecord, 0, len(slots)*len(Reasons))
	for i, slot := range slots {
		for j, reason := range Reasons {
			out = append(out, core.WithdrawalRecord{
				Month:  slot.Month,
				Year:   slot.Year,
				Reason: reason,
				Count:  monthlyCounts[i][j],
			})
		}
	}
	return out, nil
}

// Build is shorthand for NewBuilder(seed).Build().
func Build(seed int64) (core.Datasets, error) {
	return NewBuilder(seed).Build()
}

func RetentionKPI() core.RetentionKPI {
	return core.RetentionKPI{RetentionRate: 91}
}

func Composition() []core.CompositionRow {
	return []core.CompositionRow{
		{Category: "Returning", Count: 3600},
		{Category: "New", Count: 1600},
	}
}

// CampusRetention keeps the campus order of the district report.
func CampusRetention() []core.CampusRetention {
	return []core.CampusRetention{
		{Campus: "Campus 2", RetentionRate: 92},
		{Campus: "Campus 1", RetentionRate: 91},
		{Campus: "Campus 3", RetentionRate: 94},
		{Campus: "Campus 4", RetentionRate: 84},
		{Campus: "Campus 8", RetentionRate: 92},
		{Campus: "Campus 6", RetentionRate: 92},
		{Campus: "Campus 5", RetentionRate: 92},
		{Campus: "Campus 7", RetentionRate: 85},
	}
}

// PieSlices returns the hand-authored shares shown on the "top withdrawal
// reasons" pie. They are not derived from the withdrawal records and do not
// match SummarizeReasons over them (65.3 vs 64.1 for Elementary With, 11.9
// vs 12.4 for EXP CAN'T RET). Kept as published.
func PieSlices() []core.PieSlice {
	return []core.PieSlice{
		{Reason: "Elementar...", Percentage: 65.3},
		{Reason: "Enroll in Ot...", Percentage: 1.5},
		{Reason: "EXP CAN'...", Percentage: 11.9},
		{Reason: "OTHER (U...", Percentage: 19.9},
		{Reason: "Transferre...", Percentage: 1.5},
	}
}
