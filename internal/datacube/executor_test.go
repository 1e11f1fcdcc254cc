package datacube

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landcube/internal/cube"
)

func flatBand(t *testing.T, lats, lons []float64, bands map[string][]float64) *cube.Dataset {
	t.Helper()
	ds := cube.NewDataset(nil, lats, lons)
	for name, data := range bands {
		_, err := ds.AddBand(name, data)
		require.NoError(t, err)
	}
	return ds
}

func TestStitchLatBandsOrdersNorthFirst(t *testing.T) {
	south := flatBand(t, []float64{-1.75, -2.25}, []float64{30, 30.5},
		map[string][]float64{"red": {5, 6, 7, 8}})
	north := flatBand(t, []float64{-0.75, -1.25}, []float64{30, 30.5},
		map[string][]float64{"red": {1, 2, 3, 4}})

	out, err := StitchLatBands([]*cube.Dataset{south, north})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff([]float64{-0.75, -1.25, -1.75, -2.25}, out.Lats))
	red, ok := out.Band("red")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, red.Data)
}

func TestStitchLatBandsSkipsMissingBands(t *testing.T) {
	north := flatBand(t, []float64{-0.75}, []float64{30}, map[string][]float64{"red": {1}})

	out, err := StitchLatBands([]*cube.Dataset{nil, north, nil})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Height())

	out, err = StitchLatBands([]*cube.Dataset{nil, nil})
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestStitchLatBandsRejectsMismatchedGrids(t *testing.T) {
	wide := flatBand(t, []float64{-0.75}, []float64{30, 30.5}, map[string][]float64{"red": {1, 2}})
	narrow := flatBand(t, []float64{-1.25}, []float64{30}, map[string][]float64{"red": {3}})

	_, err := StitchLatBands([]*cube.Dataset{wide, narrow})
	assert.Error(t, err)
}

func TestCleanMaskUsesCFMask(t *testing.T) {
	ds := flatBand(t, []float64{-1}, []float64{30, 30.5, 31},
		map[string][]float64{"cf_mask": {0, 2, 255}})

	clean, err := CleanMask(ds)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, clean)
}

func TestCleanMaskUsesSCLWithoutCLD(t *testing.T) {
	ds := flatBand(t, []float64{-1}, []float64{30, 30.5},
		map[string][]float64{"scl": {4, 9}})

	clean, err := CleanMask(ds)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, clean)
}

func TestCleanMaskFallsBackToNoData(t *testing.T) {
	ds := flatBand(t, []float64{-1}, []float64{30, 30.5},
		map[string][]float64{"red": {1, cube.NoDataValue}})

	clean, err := CleanMask(ds)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, clean)
}

func TestTimeWindow(t *testing.T) {
	d1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	// Reversed runs (most_recent ordering) still yield a forward window.
	start, end := timeWindow([]time.Time{d3, d2, d1})
	assert.True(t, start.Equal(d1))
	assert.True(t, end.Equal(d3))
}

func TestMergeChunkRejectsUnknownMethod(t *testing.T) {
	chunk := flatBand(t, []float64{-1}, []float64{30}, map[string][]float64{"red": {1}})
	_, err := mergeChunk(CompositeMethod("mystery"), chunk, nil)
	assert.Error(t, err)
}
