package plot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToUnit(t *testing.T) {
	out := NormalizeToUnit([]float64{2, 4, 6})
	assert.Equal(t, []float64{0, 0.5, 1}, out)

	// Constant input collapses to zeros instead of dividing by zero.
	assert.Equal(t, []float64{0, 0}, NormalizeToUnit([]float64{3, 3}))
	assert.Empty(t, NormalizeToUnit(nil))
}

func TestEpochRoundtrip(t *testing.T) {
	when := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2023-06-15", FormatEpoch(Epoch(when)))
}

func TestDateTicks(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	ticks := DateTicks([]float64{0, 1}, times)
	require.Len(t, ticks, 2)
	assert.Equal(t, 0.0, ticks[0].Value)
	assert.Equal(t, "2023-01-01", ticks[0].Label)
	assert.Equal(t, "2023-02-01", ticks[1].Label)

	// Extra positions without a matching time are dropped.
	assert.Len(t, DateTicks([]float64{0, 1, 2}, times), 2)
}

func TestFigureRatio(t *testing.T) {
	w, h := FigureRatio(100, 50, 12)
	assert.Equal(t, 12.0, w)
	assert.Equal(t, 6.0, h)

	w, h = FigureRatio(0, 50, 12)
	assert.Equal(t, 12.0, w)
	assert.Equal(t, 12.0, h)
}

func TestRemoveNonUniqueOrderedListStr(t *testing.T) {
	out := RemoveNonUniqueOrderedListStr([]string{"Jan", "Jan", "Feb", "Feb", "Jan"})
	assert.Equal(t, []string{"Jan", "", "Feb", "", "Jan"}, out)
}

func TestGetWeeksPerMonth(t *testing.T) {
	sum := func(m map[int]int) int {
		total := 0
		for _, n := range m {
			total += n
		}
		return total
	}

	regular := GetWeeksPerMonth(52)
	assert.Equal(t, 52, sum(regular))
	assert.Equal(t, 5, regular[1])
	assert.Equal(t, 4, regular[2])
	assert.Equal(t, 4, regular[12])

	long := GetWeeksPerMonth(53)
	assert.Equal(t, 53, sum(long))
	assert.Equal(t, 5, long[12])

	longest := GetWeeksPerMonth(54)
	assert.Equal(t, 54, sum(longest))
	assert.Equal(t, 5, longest[11])
	assert.Equal(t, 5, longest[12])
}

func TestMonthIntsToMonthNames(t *testing.T) {
	out := MonthIntsToMonthNames([]int{1, 6, 12, 0, 13})
	assert.Equal(t, []string{"Jan", "Jun", "Dec", "", ""}, out)
}

func TestWeekIntsToMonthNames(t *testing.T) {
	out := WeekIntsToMonthNames([]int{1, 5, 6, 52})
	assert.Equal(t, []string{"Jan", "Jan", "Feb", "Dec"}, out)
}

func TestNaiveMonthTicksByWeek(t *testing.T) {
	// Explicit weeks blank consecutive repeats.
	out := NaiveMonthTicksByWeek([]int{1, 5, 6, 52})
	assert.Equal(t, []string{"Jan", "", "Feb", "Dec"}, out)

	// Nil covers every possible week and keeps the repeats.
	all := NaiveMonthTicksByWeek(nil)
	require.Len(t, all, 54)
	assert.Equal(t, "Jan", all[0])
	assert.Equal(t, all[0], all[1])
	assert.Equal(t, "Dec", all[53])
	for _, label := range all {
		assert.NotEmpty(t, label)
	}
}
