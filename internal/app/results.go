package app

import "live-poll-service/internal/domain"

// Tally counts a ledger over optionCount options. Percentages are rounded half up
// per option and are not forced to sum to 100.
func Tally(answers map[string]int, optionCount int) domain.Tally {
	counts := make([]int, optionCount)
	for _, idx := range answers {
		if idx >= 0 && idx < optionCount {
			counts[idx]++
		}
	}
	total := len(answers)
	percentages := make([]int, optionCount)
	if total > 0 {
		for i, c := range counts {
			percentages[i] = (c*200 + total) / (2 * total)
		}
	}
	return domain.Tally{Counts: counts, Total: total, Percentages: percentages}
}
