package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmapWritesFile(t *testing.T) {
	arr := &cube.DataArray{
		Name: "ndvi", Height: 2, Width: 2,
		Data: []float64{0.1, 0.4, 0.7, cube.NoDataValue},
	}
	out := filepath.Join(t.TempDir(), "heatmap.png")

	err := Heatmap(arr, []float64{1, 0}, []float64{10, 11}, nil, HeatmapOptions{Title: "ndvi"}, out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestHeatmapValidation(t *testing.T) {
	out := filepath.Join(t.TempDir(), "heatmap.png")

	stacked := &cube.DataArray{Name: "ndvi", Steps: 2, Height: 1, Width: 1, Data: []float64{0.1, 0.2}}
	assert.Error(t, Heatmap(stacked, []float64{0}, []float64{0}, nil, HeatmapOptions{}, out))

	flat := &cube.DataArray{Name: "ndvi", Height: 2, Width: 2, Data: []float64{1, 2, 3, 4}}
	assert.Error(t, Heatmap(flat, []float64{0}, []float64{10, 11}, nil, HeatmapOptions{}, out))

	empty := &cube.DataArray{
		Name: "ndvi", Height: 1, Width: 2,
		Data: []float64{cube.NoDataValue, cube.NoDataValue},
	}
	assert.Error(t, Heatmap(empty, []float64{0}, []float64{10, 11}, nil, HeatmapOptions{}, out))
}

func TestGridXYZFlipsLatitudes(t *testing.T) {
	arr := &cube.DataArray{
		Name: "ndvi", Height: 2, Width: 2,
		Data: []float64{
			1, 2, // northern row
			3, 4, // southern row
		},
	}
	g := gridXYZ{arr: arr, lats: []float64{1, 0}, lons: []float64{10, 11}, noData: cube.NoDataValue}

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)

	// Row 0 is the bottom of the plot, so the southern data row.
	assert.Equal(t, 0.0, g.Y(0))
	assert.Equal(t, 1.0, g.Y(1))
	assert.Equal(t, 3.0, g.Z(0, 0))
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 10.0, g.X(0))
}
