package indices

import (
	"fmt"
	"math"

	"github.com/forest-guardian/landcube/internal/cube"
)

// AnomalyBands are the variables ComputeNDVIAnomaly produces, in output
// order.
var AnomalyBands = []string{"scene_ndvi", "baseline_ndvi", "ndvi_difference", "ndvi_percentage_change"}

// ComputeNDVIAnomaly compares a mosaicked scene against the per-pixel median
// NDVI of a baseline stack. Both clean masks are required; the baseline mask
// covers the full stack (or broadcasts the grid over time), the scene mask
// the mosaic grid. The result is a flat dataset on the scene's coordinates
// with scene_ndvi, baseline_ndvi, ndvi_difference and ndvi_percentage_change.
func ComputeNDVIAnomaly(baseline, scene *cube.Dataset, baselineClean, sceneClean []bool) (*cube.Dataset, error) {
	if baselineClean == nil || sceneClean == nil {
		return nil, fmt.Errorf("both the scene and baseline clean masks are required")
	}
	if baseline.Height() != scene.Height() || baseline.Width() != scene.Width() {
		return nil, fmt.Errorf("baseline grid %dx%d does not match scene grid %dx%d",
			baseline.Height(), baseline.Width(), scene.Height(), scene.Width())
	}

	masked := baseline.DeepCopy()
	if err := masked.MaskNoData(baselineClean); err != nil {
		return nil, fmt.Errorf("masking baseline: %w", err)
	}
	baselineNDVI, err := NDVI(masked)
	if err != nil {
		return nil, err
	}
	medianNDVI := baselineNDVI.MedianTime(baseline.NoData)
	medianNDVI.Name = "baseline_ndvi"

	cleaned := scene.DeepCopy()
	if err := cleaned.MaskNoData(sceneClean); err != nil {
		return nil, fmt.Errorf("masking scene: %w", err)
	}
	sceneNDVI, err := NDVI(cleaned)
	if err != nil {
		return nil, err
	}
	switch sceneNDVI.Steps {
	case 0:
	case 1:
		if sceneNDVI, err = sceneNDVI.Slice(0); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("scene has %d acquisitions, mosaic it before computing the anomaly", sceneNDVI.Steps)
	}
	sceneNDVI.Name = "scene_ndvi"

	noData := scene.NoData
	difference := cube.NewArray("ndvi_difference", 0, scene.Height(), scene.Width())
	percentage := cube.NewArray("ndvi_percentage_change", 0, scene.Height(), scene.Width())
	for i := range difference.Data {
		sv, bv := sceneNDVI.Data[i], medianNDVI.Data[i]
		if sv == noData || bv == noData {
			difference.Data[i] = noData
			percentage.Data[i] = noData
			continue
		}
		difference.Data[i] = sentinelNonFinite(sv-bv, noData)
		percentage.Data[i] = sentinelNonFinite((sv-bv)/bv, noData)
	}

	out := cube.NewDataset(nil,
		append([]float64(nil), scene.Lats...),
		append([]float64(nil), scene.Lons...))
	out.NoData = noData
	out.CRS = scene.CRS
	out.SetBand(sceneNDVI)
	out.SetBand(medianNDVI)
	out.SetBand(difference)
	out.SetBand(percentage)
	return out, nil
}

func sentinelNonFinite(v, noData float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return noData
	}
	return v
}
