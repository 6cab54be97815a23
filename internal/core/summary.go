package core

// SummarizeReasons groups records by Reason and computes each reason's share
// of the grand total.
//
// Reasons keep the order in which they first appear in records. When the
// grand total is zero every summary carries Count 0 and Percentage 0 and the
// result is returned together with ErrEmptyAggregationInput; the slice is
// still safe to persist.
func SummarizeReasons(records []WithdrawalRecord) ([]ReasonSummary, error) {
	var order []string
	counts := make(map[string]int)
	total := 0
	for _, r := range records {
		if _, seen := counts[r.Reason]; !seen {
			order = append(order, r.Reason)
		}
		counts[r.Reason] += r.Count
		total += r.Count
	}

	out := make([]ReasonSummary, 0, len(order))
	for _, reason := range order {
		out = append(out, ReasonSummary{
			Reason:     reason,
			Count:      counts[reason],
			Percentage: Share(counts[reason], total),
		})
	}
	if total == 0 {
		return out, ErrEmptyAggregationInput
	}
	return out, nil
}

// SumCounts returns the total Count across records.
func SumCounts(records []WithdrawalRecord) int {
	total := 0
	for _, r := range records {
		total += r.Count
	}
	return total
}

// SumPercentages returns the total Percentage across summaries.
func SumPercentages(summaries []ReasonSummary) float64 {
	var total float64
	for _, s := range summaries {
		total += s.Percentage
	}
	return total
}

// DistinctReasons returns the reasons of records in first-appearance order.
func DistinctReasons(records []WithdrawalRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Reason]; ok {
			continue
		}
		seen[r.Reason] = struct{}{}
		out = append(out, r.Reason)
	}
	return out
}
