package output

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landcube/internal/cube"
)

func TestByteScale(t *testing.T) {
	assert.Equal(t, uint8(0), byteScale(0, 0, 1000))
	assert.Equal(t, uint8(255), byteScale(1000, 0, 1000))
	assert.Equal(t, uint8(127), byteScale(500, 0, 1000))
	assert.Equal(t, uint8(0), byteScale(-50, 0, 1000), "below the stretch clamps to 0")
	assert.Equal(t, uint8(255), byteScale(2000, 0, 1000), "above the stretch clamps to 255")
	assert.Equal(t, uint8(0), byteScale(5, 1, 1), "degenerate stretch")
}

func TestMinMaxStretch(t *testing.T) {
	s := minMaxStretch([]float64{3, -2, 7, 0})
	assert.Equal(t, RGBScale{Min: -2, Max: 7}, s)
}

func TestRecolorBlack(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	img.Set(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	out := recolorBlack(img, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	r, g, b, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)

	r, _, _, _ = out.At(1, 0).RGBA()
	assert.NotEqual(t, uint32(0xffff), r, "observed pixels keep their color")
}

func TestResolveGeoTransform(t *testing.T) {
	ds := cube.NewDataset(nil, []float64{-0.25, -0.75}, []float64{10.25, 10.75})
	_, err := ds.AddBand("red", []float64{1, 2, 3, 4})
	require.NoError(t, err)

	gt, err := resolveGeoTransform(ds, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, gt[0], 1e-9)
	assert.InDelta(t, 0.5, gt[1], 1e-9)
	assert.InDelta(t, 0.0, gt[2], 1e-9)
	assert.InDelta(t, 0.0, gt[3], 1e-9)
	assert.InDelta(t, -0.5, gt[5], 1e-9)

	override := [6]float64{1, 2, 3, 4, 5, 6}
	gt, err = resolveGeoTransform(ds, &override)
	require.NoError(t, err)
	assert.Equal(t, override, gt)

	single := cube.NewDataset(nil, []float64{0}, []float64{0})
	_, err = single.AddBand("red", []float64{1})
	require.NoError(t, err)
	_, err = resolveGeoTransform(single, nil)
	assert.Error(t, err, "single-cell grids cannot derive a step")
}

func TestComputeBandStats(t *testing.T) {
	ds := cube.NewDataset(nil, []float64{-1}, []float64{30, 30.1, 30.2, 30.3})
	_, err := ds.AddBand("ndvi", []float64{0.2, 0.6, cube.NoDataValue, 0.4})
	require.NoError(t, err)
	_, err = ds.AddBand("cloudy", []float64{
		cube.NoDataValue, cube.NoDataValue, cube.NoDataValue, cube.NoDataValue,
	})
	require.NoError(t, err)

	stats := ComputeBandStats(ds)
	require.Len(t, stats, 2)

	ndvi := stats[0]
	assert.Equal(t, "ndvi", ndvi.Band)
	assert.Equal(t, 3, ndvi.Count)
	assert.InDelta(t, 0.4, ndvi.Mean, 1e-12)
	assert.InDelta(t, 0.4, ndvi.Median, 1e-12)
	assert.InDelta(t, 0.2, ndvi.Min, 1e-12)
	assert.InDelta(t, 0.6, ndvi.Max, 1e-12)

	cloudy := stats[1]
	assert.Equal(t, 0, cloudy.Count)
	assert.Equal(t, 0.0, cloudy.Mean)
}

func TestWriteStatsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	stats := []BandStat{{Band: "ndvi", Count: 3, Mean: 0.4, Median: 0.4, Min: 0.2, Max: 0.6}}
	require.NoError(t, WriteStatsCSV(path, stats))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "band,count,mean,median,min,max")
	assert.Contains(t, string(data), "ndvi,3,0.4,0.4,0.2,0.6")
}

func TestCreateTimelapseRejectsEmptyInput(t *testing.T) {
	err := CreateTimelapse(nil, filepath.Join(t.TempDir(), "out.avi"), 2)
	assert.Error(t, err)
}
