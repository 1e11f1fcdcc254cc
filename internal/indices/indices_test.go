package indices

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landcube/internal/cube"
)

func flatScene(t *testing.T, bands map[string][]float64, width int) *cube.Dataset {
	t.Helper()
	lons := make([]float64, width)
	for i := range lons {
		lons[i] = 30 + float64(i)*0.1
	}
	ds := cube.NewDataset(nil, []float64{-1}, lons)
	for name, data := range bands {
		_, err := ds.AddBand(name, data)
		require.NoError(t, err)
	}
	return ds
}

func TestNDVI(t *testing.T) {
	ds := flatScene(t, map[string][]float64{
		"nir": {3000, 2000, cube.NoDataValue, 100},
		"red": {1000, 2000, 500, -100},
	}, 4)

	ndvi, err := NDVI(ds)
	require.NoError(t, err)

	want := []float64{0.5, 0, cube.NoDataValue, cube.NoDataValue}
	if diff := cmp.Diff(want, ndvi.Data, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("ndvi mismatch (-want +got):\n%s", diff)
	}
}

func TestNDVIRequiresBands(t *testing.T) {
	ds := flatScene(t, map[string][]float64{"red": {1}}, 1)
	_, err := NDVI(ds)
	assert.Error(t, err)
}

func TestEVIClampAndNormalize(t *testing.T) {
	// nir=5000, red=500, blue=400: raw EVI = 2.5*4500/(5000+3000-3000+1) ≈ 1.406.
	ds := flatScene(t, map[string][]float64{
		"nir":  {5000, 500, cube.NoDataValue},
		"red":  {500, 5000, 500},
		"blue": {400, 400, 400},
	}, 3)

	opts := DefaultEVIOptions()
	opts.Normalize = false
	evi, err := EVI(ds, opts)
	require.NoError(t, err)
	assert.InDelta(t, 1.4060742, evi.Data[0], 1e-6)
	assert.Equal(t, cube.NoDataValue, evi.Data[2])

	opts.Normalize = true
	evi, err = EVI(ds, opts)
	require.NoError(t, err)
	// Positive values rescale from [0, 2.5] to [0, 1]; negatives stay put.
	assert.InDelta(t, 1.4060742/2.5, evi.Data[0], 1e-6)
	assert.True(t, evi.Data[1] < 0)
}

func TestEVIClampsExtremes(t *testing.T) {
	ds := flatScene(t, map[string][]float64{
		"nir":  {100, 1},
		"red":  {6000, 4000},
		"blue": {4805, 3206.7},
	}, 2)
	opts := DefaultEVIOptions()
	opts.Normalize = false
	evi, err := EVI(ds, opts)
	require.NoError(t, err)
	for _, v := range evi.Data {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 2.5)
	}
}

func TestEVI2(t *testing.T) {
	ds := flatScene(t, map[string][]float64{
		"nir": {3000},
		"red": {1000},
	}, 1)
	opts := DefaultEVI2Options()
	opts.Normalize = false
	evi2, err := EVI2(ds, opts)
	require.NoError(t, err)
	assert.InDelta(t, 2.5*2000/(3000+2.4*1000+1), evi2.Data[0], 1e-9)
}

func TestSentinelIndices(t *testing.T) {
	ds := flatScene(t, map[string][]float64{
		"nir":       {3000},
		"red":       {1000},
		"red_edge":  {1500},
		"red_edge2": {2000},
		"swir1":     {1800},
		"blue":      {600},
	}, 1)

	ndre, err := NDRE(ds)
	require.NoError(t, err)
	assert.InDelta(t, 1500.0/4500.0, ndre.Data[0], 1e-9)

	ndmi, err := NDMI(ds)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0/4800.0, ndmi.Data[0], 1e-9)

	psri, err := PSRI(ds)
	require.NoError(t, err)
	assert.InDelta(t, 400.0/2000.0, psri.Data[0], 1e-9)
}

func TestComputeNDVIAnomaly(t *testing.T) {
	times := []time.Time{
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	baseline := cube.NewDataset(times, []float64{-1}, []float64{30, 30.1})
	// Pixel 0 NDVI per time: 0.5, 0.2, 0.8 -> median 0.5.
	// Pixel 1 is cloudy at t0 (masked), nodata at t1: only t2 remains -> 0.25.
	_, err := baseline.AddBand("nir", []float64{
		3000, 2000,
		1800, cube.NoDataValue,
		9000, 1000,
	})
	require.NoError(t, err)
	_, err = baseline.AddBand("red", []float64{
		1000, 1000,
		1200, 500,
		1000, 600,
	})
	require.NoError(t, err)
	baselineClean := []bool{
		true, false,
		true, true,
		true, true,
	}

	scene := cube.NewDataset(nil, []float64{-1}, []float64{30, 30.1})
	_, err = scene.AddBand("nir", []float64{1500, 1000})
	require.NoError(t, err)
	_, err = scene.AddBand("red", []float64{1000, 1000})
	require.NoError(t, err)
	sceneClean := []bool{true, true}

	result, err := ComputeNDVIAnomaly(baseline, scene, baselineClean, sceneClean)
	require.NoError(t, err)
	assert.Equal(t, AnomalyBands, result.BandNames())

	sceneNDVI, _ := result.Band("scene_ndvi")
	baseNDVI, _ := result.Band("baseline_ndvi")
	diff, _ := result.Band("ndvi_difference")
	pct, _ := result.Band("ndvi_percentage_change")

	assert.InDelta(t, 0.2, sceneNDVI.Data[0], 1e-9)
	assert.InDelta(t, 0.5, baseNDVI.Data[0], 1e-9)
	assert.InDelta(t, -0.3, diff.Data[0], 1e-9)
	assert.InDelta(t, -0.6, pct.Data[0], 1e-9)

	assert.InDelta(t, 0.25, baseNDVI.Data[1], 1e-9)
	assert.InDelta(t, 0, sceneNDVI.Data[1], 1e-9)
	assert.InDelta(t, -1.0, pct.Data[1], 1e-9)
}

func TestComputeNDVIAnomalyRequiresMasks(t *testing.T) {
	ds := flatScene(t, map[string][]float64{"nir": {1}, "red": {1}}, 1)
	_, err := ComputeNDVIAnomaly(ds, ds, nil, []bool{true})
	assert.Error(t, err)
	_, err = ComputeNDVIAnomaly(ds, ds, []bool{true}, nil)
	assert.Error(t, err)
}

func TestComputeNDVIAnomalySentinelsNonFinite(t *testing.T) {
	times := []time.Time{time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)}
	baseline := cube.NewDataset(times, []float64{-1}, []float64{30})
	// Baseline NDVI is exactly 0, so percentage change divides by zero.
	_, err := baseline.AddBand("nir", []float64{1000})
	require.NoError(t, err)
	_, err = baseline.AddBand("red", []float64{1000})
	require.NoError(t, err)

	scene := cube.NewDataset(nil, []float64{-1}, []float64{30})
	_, err = scene.AddBand("nir", []float64{2000})
	require.NoError(t, err)
	_, err = scene.AddBand("red", []float64{1000})
	require.NoError(t, err)

	result, err := ComputeNDVIAnomaly(baseline, scene, []bool{true}, []bool{true})
	require.NoError(t, err)

	pct, _ := result.Band("ndvi_percentage_change")
	assert.Equal(t, cube.NoDataValue, pct.Data[0])
}
