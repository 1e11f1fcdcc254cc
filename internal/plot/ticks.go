package plot

import (
	"time"

	gplot "gonum.org/v1/plot"
)

// Epoch converts a timestamp to seconds since the Unix epoch, the x unit
// for time-series figures.
func Epoch(t time.Time) float64 {
	return float64(t.Unix())
}

// FormatEpoch renders epoch seconds as a UTC calendar date.
func FormatEpoch(sec float64) string {
	return time.Unix(int64(sec), 0).UTC().Format("2006-01-02")
}

// NormalizeToUnit min-max scales values into [0, 1]. Large epoch values
// break the curve fits, so figure x positions always pass through here.
// A constant input collapses to zeros.
func NormalizeToUnit(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	min, max := xs[0], xs[0]
	for _, v := range xs {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return out
	}
	for i, v := range xs {
		out[i] = (v - min) / (max - min)
	}
	return out
}

// DateTicks pairs plot positions with formatted acquisition dates.
func DateTicks(xs []float64, times []time.Time) []gplot.Tick {
	ticks := make([]gplot.Tick, 0, len(xs))
	for i, x := range xs {
		if i >= len(times) {
			break
		}
		ticks = append(ticks, gplot.Tick{Value: x, Label: times[i].UTC().Format("2006-01-02")})
	}
	return ticks
}

// LabelTicks pairs plot positions with precomputed labels.
func LabelTicks(xs []float64, labels []string) []gplot.Tick {
	ticks := make([]gplot.Tick, 0, len(xs))
	for i, x := range xs {
		if i >= len(labels) {
			break
		}
		ticks = append(ticks, gplot.Tick{Value: x, Label: labels[i]})
	}
	return ticks
}

// FigureRatio returns figure width and height in inches that keep the
// aspect ratio of a cols x rows raster at a fixed width.
func FigureRatio(cols, rows int, fixedWidth float64) (float64, float64) {
	if cols <= 0 || rows <= 0 {
		return fixedWidth, fixedWidth
	}
	return fixedWidth, fixedWidth * float64(rows) / float64(cols)
}

// RemoveNonUniqueOrderedListStr blanks consecutive repeats so ordered tick
// labels like month names only show on first occurrence.
func RemoveNonUniqueOrderedListStr(ordered []string) []string {
	out := make([]string, len(ordered))
	prev := ""
	for i, s := range ordered {
		if s != prev {
			out[i] = s
			prev = s
		}
	}
	return out
}

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// GetWeeksPerMonth spreads num_weeks calendar weeks over the twelve months,
// giving five weeks to every third month and absorbing the 52 to 54 week
// variation in the last quarter.
func GetWeeksPerMonth(numWeeks int) map[int]int {
	last := []int{5, 4, 4}
	switch {
	case numWeeks == 53:
		last = []int{5, 4, 5}
	case numWeeks >= 54:
		last = []int{5, 5, 5}
	}
	out := make(map[int]int, 12)
	for m := 1; m <= 9; m++ {
		out[m] = []int{5, 4, 4}[(m-1)%3]
	}
	for i, n := range last {
		out[10+i] = n
	}
	return out
}

// MonthIntsToMonthNames converts month ordinals in [1, 12] to three-letter
// names. Out-of-range ordinals become empty strings.
func MonthIntsToMonthNames(months []int) []string {
	out := make([]string, len(months))
	for i, m := range months {
		if m >= 1 && m <= 12 {
			out[i] = monthNames[m-1]
		}
	}
	return out
}

// WeekIntsToMonthNames converts week-of-year ordinals in [1, 54] to the
// three-letter name of the month each week falls in.
func WeekIntsToMonthNames(weeks []int) []string {
	maxWeek := 0
	for _, w := range weeks {
		if w > maxWeek {
			maxWeek = w
		}
	}
	perMonth := GetWeeksPerMonth(maxWeek)
	out := make([]string, len(weeks))
	for i, w := range weeks {
		month := 12
		remaining := w
		for m := 1; m <= 12; m++ {
			remaining -= perMonth[m]
			if remaining <= 0 {
				month = m
				break
			}
		}
		out[i] = monthNames[month-1]
	}
	return out
}

// NaiveMonthTicksByWeek labels week-binned axes with month names, blanking
// repeats. A nil input covers all 54 possible weeks.
func NaiveMonthTicksByWeek(weeks []int) []string {
	if weeks == nil {
		all := make([]int, 54)
		for i := range all {
			all[i] = i
		}
		return WeekIntsToMonthNames(all)
	}
	return RemoveNonUniqueOrderedListStr(WeekIntsToMonthNames(weeks))
}
