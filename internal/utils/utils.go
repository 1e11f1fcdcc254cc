package utils

import (
	"sort"
	"time"
)

func SortDates(dates []time.Time, asc bool) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		if asc {
			return dates[i].Before(dates[j])
		}
		return dates[i].After(dates[j])
	})
	return dates
}

// Chunks breaks l into consecutive runs of at most n elements. The final
// chunk may be shorter. n < 1 yields a single chunk with everything.
func Chunks[T any](l []T, n int) [][]T {
	if len(l) == 0 {
		return nil
	}
	if n < 1 {
		n = len(l)
	}
	out := make([][]T, 0, (len(l)+n-1)/n)
	for i := 0; i < len(l); i += n {
		end := i + n
		if end > len(l) {
			end = len(l)
		}
		out = append(out, l[i:end])
	}
	return out
}

func ReverseDates(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[len(dates)-1-i] = d
	}
	return out
}
