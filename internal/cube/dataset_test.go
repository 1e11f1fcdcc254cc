package cube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	times := []time.Time{
		time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	ds := NewDataset(times, []float64{-1.0, -1.1}, []float64{30.0, 30.1, 30.2})
	_, err := ds.AddBand("red", []float64{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	})
	require.NoError(t, err)
	return ds
}

func TestAddBandValidatesShape(t *testing.T) {
	ds := testDataset(t)

	_, err := ds.AddBand("flat", []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	flat, ok := ds.Band("flat")
	require.True(t, ok)
	assert.Equal(t, 0, flat.Steps)

	_, err = ds.AddBand("bad", []float64{1, 2, 3})
	assert.Error(t, err)

	red, ok := ds.Band("red")
	require.True(t, ok)
	assert.Equal(t, 2, red.Steps)
	assert.Equal(t, []string{"red", "flat"}, ds.BandNames())
}

func TestArrayIndexing(t *testing.T) {
	ds := testDataset(t)
	red, _ := ds.Band("red")

	assert.Equal(t, 1.0, red.At(0, 0, 0))
	assert.Equal(t, 6.0, red.At(0, 1, 2))
	assert.Equal(t, 7.0, red.At(1, 0, 0))
	assert.Equal(t, 12.0, red.At(1, 1, 2))

	red.Set(1, 0, 1, 99)
	assert.Equal(t, 99.0, red.At(1, 0, 1))
}

func TestApplyMaskBroadcast(t *testing.T) {
	ds := testDataset(t)
	red, _ := ds.Band("red")

	// Flat mask: drop column 0 in every timestep.
	mask := []bool{false, true, true, false, true, true}
	require.NoError(t, red.ApplyMask(mask, ds.NoData))
	assert.Equal(t, ds.NoData, red.At(0, 0, 0))
	assert.Equal(t, ds.NoData, red.At(1, 0, 0))
	assert.Equal(t, ds.NoData, red.At(1, 1, 0))
	assert.Equal(t, 2.0, red.At(0, 0, 1))

	assert.Error(t, red.ApplyMask([]bool{true}, 0))
}

func TestTimeReductions(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	ds := NewDataset(times, []float64{0}, []float64{0, 1})
	arr, err := ds.AddBand("ndvi", []float64{
		0.2, NoDataValue,
		0.4, NoDataValue,
		0.9, 0.5,
	})
	require.NoError(t, err)

	counts := arr.CountTime(NoDataValue)
	assert.Equal(t, []float64{3, 1}, counts.Data)

	mean := arr.MeanTime(NoDataValue)
	assert.InDelta(t, 0.5, mean.Data[0], 1e-12)
	assert.InDelta(t, 0.5, mean.Data[1], 1e-12)

	// Even observation count averages the two middle values.
	median := arr.MedianTime(NoDataValue)
	assert.InDelta(t, 0.4, median.Data[0], 1e-12)
	assert.InDelta(t, 0.5, median.Data[1], 1e-12)
}

func TestMedianAllMaskedStaysSentinel(t *testing.T) {
	ds := NewDataset([]time.Time{time.Now(), time.Now()}, []float64{0}, []float64{0})
	arr, err := ds.AddBand("ndvi", []float64{NoDataValue, NoDataValue})
	require.NoError(t, err)

	median := arr.MedianTime(NoDataValue)
	assert.Equal(t, []float64{NoDataValue}, median.Data)
}

func TestConcatAndSortTime(t *testing.T) {
	late := NewDataset([]time.Time{time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)}, []float64{0}, []float64{0})
	_, err := late.AddBand("red", []float64{3})
	require.NoError(t, err)

	early := NewDataset([]time.Time{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}, []float64{0}, []float64{0})
	_, err = early.AddBand("red", []float64{1})
	require.NoError(t, err)

	merged, err := late.ConcatTime(early)
	require.NoError(t, err)
	merged.SortTime()

	require.Equal(t, 2, merged.TimeCount())
	assert.True(t, merged.Times[0].Before(merged.Times[1]))
	red, _ := merged.Band("red")
	assert.Equal(t, []float64{1, 3}, red.Data)
}

func TestConcatRejectsGridMismatch(t *testing.T) {
	a := NewDataset([]time.Time{time.Now()}, []float64{0}, []float64{0})
	_, err := a.AddBand("red", []float64{1})
	require.NoError(t, err)
	b := NewDataset([]time.Time{time.Now()}, []float64{0}, []float64{0, 1})
	_, err = b.AddBand("red", []float64{1, 2})
	require.NoError(t, err)

	_, err = a.ConcatTime(b)
	assert.Error(t, err)
}

func TestDeepCopyIsIndependent(t *testing.T) {
	ds := testDataset(t)
	cp := ds.DeepCopy()

	red, _ := ds.Band("red")
	red.Fill(0)

	cpRed, _ := cp.Band("red")
	assert.Equal(t, 1.0, cpRed.At(0, 0, 0))
	assert.Equal(t, ds.BandNames(), cp.BandNames())
}

func TestTimeSlice(t *testing.T) {
	ds := testDataset(t)
	slice, err := ds.TimeSlice(1)
	require.NoError(t, err)

	require.Equal(t, 1, slice.TimeCount())
	red, _ := slice.Band("red")
	assert.Equal(t, 0, red.Steps)
	assert.Equal(t, []float64{7, 8, 9, 10, 11, 12}, red.Data)

	_, err = ds.TimeSlice(5)
	assert.Error(t, err)
}

func TestRemoveBandKeepsOrder(t *testing.T) {
	ds := testDataset(t)
	_, err := ds.AddBand("nir", make([]float64, 12))
	require.NoError(t, err)
	_, err = ds.AddBand("blue", make([]float64, 12))
	require.NoError(t, err)

	ds.RemoveBand("nir")
	assert.Equal(t, []string{"red", "blue"}, ds.BandNames())
	_, ok := ds.Band("nir")
	assert.False(t, ok)
}
