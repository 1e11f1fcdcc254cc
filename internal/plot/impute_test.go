package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImputeFillsInteriorGaps(t *testing.T) {
	nan := math.NaN()

	out := ImputeMissingData1D([]float64{1, nan, 3})
	assert.Equal(t, []float64{1, 2, 3}, out)

	out = ImputeMissingData1D([]float64{0, nan, nan, nan, 4})
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, out)

	// Two separate gaps interpolate independently.
	out = ImputeMissingData1D([]float64{2, nan, 4, nan, nan, 10})
	assert.Equal(t, []float64{2, 3, 4, 6, 8, 10}, out)
}

func TestImputeKeepsEndGaps(t *testing.T) {
	nan := math.NaN()
	out := ImputeMissingData1D([]float64{nan, 1, nan, 3, nan, nan})

	require.Len(t, out, 6)
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, []float64{1, 2, 3}, out[1:4])
	assert.True(t, math.IsNaN(out[4]))
	assert.True(t, math.IsNaN(out[5]))
}

func TestImputeNeedsTwoRealValues(t *testing.T) {
	nan := math.NaN()

	out := ImputeMissingData1D([]float64{nan, 5, nan})
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 5.0, out[1])
	assert.True(t, math.IsNaN(out[2]))

	out = ImputeMissingData1D([]float64{nan, nan})
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))

	assert.Empty(t, ImputeMissingData1D(nil))
}

func TestImputeDoesNotMutateInput(t *testing.T) {
	in := []float64{1, math.NaN(), 3}
	_ = ImputeMissingData1D(in)
	assert.True(t, math.IsNaN(in[1]))
}
