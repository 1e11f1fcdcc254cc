package datacube

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGridCellCenters(t *testing.T) {
	grid, err := BuildGrid(-1, 0, 10, 11, 0.5)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff([]float64{-0.25, -0.75}, grid.Lats))
	assert.Empty(t, cmp.Diff([]float64{10.25, 10.75}, grid.Lons))
	assert.Equal(t, 2, grid.Height())
	assert.Equal(t, 2, grid.Width())
}

func TestBuildGridMinimumOneCell(t *testing.T) {
	grid, err := BuildGrid(0, 0.0001, 0, 0.0001, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 1, grid.Height())
	assert.Equal(t, 1, grid.Width())
}

func TestBuildGridRejectsBadInput(t *testing.T) {
	_, err := BuildGrid(0, 1, 0, 1, 0)
	assert.Error(t, err)

	_, err = BuildGrid(1, 0, 0, 1, 0.5)
	assert.Error(t, err)
}

func TestGeoSamplerPixelAt(t *testing.T) {
	// North-up 4x4 raster, origin lon 10 / lat 0, 0.5 degree pixels.
	sampler, err := newGeoSampler([6]float64{10, 0.5, 0, 0, 0, -0.5}, 4, 4)
	require.NoError(t, err)

	col, row, ok := sampler.pixelAt(-0.25, 10.25)
	require.True(t, ok)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	col, row, ok = sampler.pixelAt(-1.75, 11.75)
	require.True(t, ok)
	assert.Equal(t, 3, col)
	assert.Equal(t, 3, row)

	_, _, ok = sampler.pixelAt(0.25, 10.25)
	assert.False(t, ok, "north of the raster")
	_, _, ok = sampler.pixelAt(-0.25, 9.75)
	assert.False(t, ok, "west of the raster")
}

func TestGeoSamplerRejectsRotation(t *testing.T) {
	_, err := newGeoSampler([6]float64{10, 0.5, 0.1, 0, 0, -0.5}, 4, 4)
	assert.Error(t, err)

	_, err = newGeoSampler([6]float64{10, 0, 0, 0, 0, -0.5}, 4, 4)
	assert.Error(t, err)
}

func TestGeoSamplerWindowCoversGrid(t *testing.T) {
	sampler, err := newGeoSampler([6]float64{10, 0.5, 0, 0, 0, -0.5}, 4, 4)
	require.NoError(t, err)

	grid, err := BuildGrid(-1, 0, 10, 11, 0.5)
	require.NoError(t, err)

	x0, y0, w, h, ok := sampler.window(grid)
	require.True(t, ok)
	assert.Equal(t, 0, x0)
	assert.Equal(t, 0, y0)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
}

func TestGeoSamplerWindowClampsToRaster(t *testing.T) {
	sampler, err := newGeoSampler([6]float64{10, 0.5, 0, 0, 0, -0.5}, 4, 4)
	require.NoError(t, err)

	// Grid extends past the raster on every side.
	grid, err := BuildGrid(-3, 1, 9, 13, 0.5)
	require.NoError(t, err)

	x0, y0, w, h, ok := sampler.window(grid)
	require.True(t, ok)
	assert.Equal(t, 0, x0)
	assert.Equal(t, 0, y0)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}

func TestGeoSamplerWindowDisjointGrid(t *testing.T) {
	sampler, err := newGeoSampler([6]float64{10, 0.5, 0, 0, 0, -0.5}, 4, 4)
	require.NoError(t, err)

	grid, err := BuildGrid(-1, 0, 50, 51, 0.5)
	require.NoError(t, err)

	_, _, _, _, ok := sampler.window(grid)
	assert.False(t, ok)
}
