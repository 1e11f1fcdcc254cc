package composite

import (
	"fmt"

	"github.com/forest-guardian/landcube/internal/cube"
)

// PerformTimeseriesAnalysis collapses a single-variable time stack into
// per-pixel totals: normalized_data (mean of real observations), total_data
// (sum with nodata zeroed) and total_clean (observation count). Pixels with
// no clean observations normalize to 0.
func PerformTimeseriesAnalysis(ds *cube.Dataset, noData float64) (*cube.Dataset, error) {
	arr, ok := ds.FirstBand()
	if !ok {
		return nil, fmt.Errorf("dataset has no variable to analyze")
	}

	processed := arr.Clone()
	processed.ReplaceValue(noData, 0)
	totalData := processed.SumTime()
	totalData.Name = "total_data"

	totalClean := arr.CountTime(noData)
	totalClean.Name = "total_clean"

	normalized := cube.NewArray("normalized_data", 0, arr.Height, arr.Width)
	for i := range normalized.Data {
		normalized.Data[i] = safeRatio(totalData.Data[i], totalClean.Data[i])
	}

	out := cube.NewDataset(nil,
		append([]float64(nil), ds.Lats...),
		append([]float64(nil), ds.Lons...))
	out.NoData = ds.NoData
	out.CRS = ds.CRS
	out.SetBand(normalized)
	out.SetBand(totalData)
	out.SetBand(totalClean)
	return out, nil
}

// PerformTimeseriesAnalysisIterative merges a chunk's timeseries totals into
// the running intermediate, recomputing normalized_data from the summed
// totals. A nil intermediate starts the accumulation.
func PerformTimeseriesAnalysisIterative(ds, intermediate *cube.Dataset, noData float64) (*cube.Dataset, error) {
	chunk, err := PerformTimeseriesAnalysis(ds, noData)
	if err != nil {
		return nil, err
	}
	if intermediate == nil {
		return chunk, nil
	}
	return Addition(chunk, intermediate)
}
