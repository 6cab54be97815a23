package core

import (
	"fmt"
	"strconv"
)

// Calendar is an ordered run of month names spanning two label years.
// Months before Split belong to FirstYear, the rest to FirstYear+1.
type Calendar struct {
	Months    []string
	Split     int
	FirstYear int
}

// Slot is one (Year, Month) position of a Calendar.
type Slot struct {
	Year  int
	Month string
}

// AcademicCalendar is the August 2022 - April 2023 school period.
var AcademicCalendar = Calendar{
	Months: []string{
		"August", "September", "October", "November", "December",
		"January", "February", "March", "April",
	},
	Split:     5,
	FirstYear: 2022,
}

// Validate checks the split index and month names.
func (c Calendar) Validate() error {
	if len(c.Months) == 0 {
		return fmt.Errorf("%w: no months", ErrInvalidCalendar)
	}
	if c.Split < 0 || c.Split > len(c.Months) {
		return fmt.Errorf("%w: split %d outside [0, %d]", ErrInvalidCalendar, c.Split, len(c.Months))
	}
	seen := make(map[string]bool, len(c.Months))
	for _, m := range c.Months {
		if m == "" {
			return fmt.Errorf("%w: empty month name", ErrInvalidCalendar)
		}
		if seen[m] {
			return fmt.Errorf("%w: duplicate month %q", ErrInvalidCalendar, m)
		}
		seen[m] = true
	}
	return nil
}

// Slots returns the calendar positions in order.
func (c Calendar) Slots() []Slot {
	out := make([]Slot, len(c.Months))
	for i, m := range c.Months {
		year := c.FirstYear
		if i >= c.Split {
			year++
		}
		out[i] = Slot{Year: year, Month: m}
	}
	return out
}

// MonthlyPivotRow holds one calendar slot with a count per reason column.
// Counts is aligned with the owning PivotTable's Reasons.
type MonthlyPivotRow struct {
	Year    int
	Month   string
	Counts  []int
	reasons []string
}

// Label returns "Month Year".
func (r MonthlyPivotRow) Label() string {
	return r.Month + " " + strconv.Itoa(r.Year)
}

// Count returns the count for reason, 0 when the reason is not a column.
func (r MonthlyPivotRow) Count(reason string) int {
	for i, name := range r.reasons {
		if name == reason {
			return r.Counts[i]
		}
	}
	return 0
}

// Total sums every reason column of the row.
func (r MonthlyPivotRow) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// PivotTable is the wide (Year, Month) x Reason matrix used for stacked plotting.
type PivotTable struct {
	Reasons []string
	Rows    []MonthlyPivotRow
	// Excluded counts input records whose (Year, Month) is not a calendar slot.
	Excluded int
}

// Column returns the counts of one reason across rows, in row order.
func (p PivotTable) Column(reason string) []int {
	out := make([]int, len(p.Rows))
	for i, row := range p.Rows {
		out[i] = row.Count(reason)
	}
	return out
}

// Totals returns each row's total in row order.
func (p PivotTable) Totals() []int {
	out := make([]int, len(p.Rows))
	for i, row := range p.Rows {
		out[i] = row.Total()
	}
	return out
}

// GrandTotal sums every cell of the table.
func (p PivotTable) GrandTotal() int {
	total := 0
	for _, row := range p.Rows {
		total += row.Total()
	}
	return total
}

// Max returns the largest row total.
func (p PivotTable) Max() int {
	max := 0
	for _, row := range p.Rows {
		if t := row.Total(); t > max {
			max = t
		}
	}
	return max
}

// BuildMonthlyPivot reshapes long-format records into one row per calendar
// slot with one column per distinct reason.
//
// Rows follow calendar order, so January of the second year sorts right
// after December of the first. Slots with no records produce all-zero rows.
// Duplicate (Year, Month, Reason) records are summed.
func BuildMonthlyPivot(records []WithdrawalRecord, cal Calendar) (PivotTable, error) {
	if err := cal.Validate(); err != nil {
		return PivotTable{}, err
	}

	reasons := DistinctReasons(records)
	column := make(map[string]int, len(reasons))
	for i, r := range reasons {
		column[r] = i
	}

	slots := cal.Slots()
	rowIndex := make(map[Slot]int, len(slots))
	rows := make([]MonthlyPivotRow, len(slots))
	for i, s := range slots {
		rowIndex[s] = i
		rows[i] = MonthlyPivotRow{
			Year:    s.Year,
			Month:   s.Month,
			Counts:  make([]int, len(reasons)),
			reasons: reasons,
		}
	}

	excluded := 0
	for _, r := range records {
		i, ok := rowIndex[Slot{Year: r.Year, Month: r.Month}]
		if !ok {
			excluded++
			continue
		}
		rows[i].Counts[column[r.Reason]] += r.Count
	}

	return PivotTable{Reasons: reasons, Rows: rows, Excluded: excluded}, nil
}
