package analytics

import (
	"math"
	"time"
)

// FindCrossovers returns the periods after which left - right changes sign.
// Rows where either side is missing are skipped, so a crossover is detected
// between consecutive valid rows.
func FindCrossovers(t *Table, left, right string) ([]time.Time, error) {
	lv, err := t.lookup("find_crossovers", left)
	if err != nil {
		return nil, err
	}
	rv, err := t.lookup("find_crossovers", right)
	if err != nil {
		return nil, err
	}

	var crossings []time.Time
	prev := -1
	for i := range lv {
		if IsMissing(lv[i]) || IsMissing(rv[i]) {
			continue
		}
		if prev >= 0 && sign(lv[prev]-rv[prev]) != sign(lv[i]-rv[i]) {
			crossings = append(crossings, t.index[prev])
		}
		prev = i
	}
	return crossings, nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	case math.IsNaN(v):
		return 2
	default:
		return 0
	}
}
