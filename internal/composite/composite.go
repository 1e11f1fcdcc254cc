// Package composite combines per-chunk query results into single products.
// Reducers take the freshly loaded chunk and the running intermediate and
// return the merged intermediate; a nil intermediate means first chunk.
package composite

import (
	"fmt"

	"github.com/forest-guardian/landcube/internal/cube"
)

// Reducer merges a chunk dataset into an intermediate product.
type Reducer func(dataset, intermediate *cube.Dataset) (*cube.Dataset, error)

func checkShapes(dataset, intermediate *cube.Dataset) error {
	if dataset.Height() != intermediate.Height() || dataset.Width() != intermediate.Width() {
		return fmt.Errorf("chunk grid %dx%d does not match intermediate grid %dx%d",
			dataset.Height(), dataset.Width(), intermediate.Height(), intermediate.Width())
	}
	return nil
}

// FillNoData keeps the intermediate as the base and fills its remaining
// nodata holes from the chunk. Used for most/least recent mosaics and
// anything resolved within a single time chunk.
func FillNoData(dataset, intermediate *cube.Dataset) (*cube.Dataset, error) {
	if intermediate == nil {
		return dataset.DeepCopy(), nil
	}
	if err := checkShapes(dataset, intermediate); err != nil {
		return nil, err
	}
	out := intermediate.DeepCopy()
	noData := out.NoData
	for _, name := range out.BandNames() {
		outArr, _ := out.Band(name)
		srcArr, ok := dataset.Band(name)
		if !ok {
			return nil, fmt.Errorf("chunk is missing band %s", name)
		}
		if len(srcArr.Data) != len(outArr.Data) {
			return nil, fmt.Errorf("band %s shape mismatch (%d vs %d values)", name, len(srcArr.Data), len(outArr.Data))
		}
		for i, v := range outArr.Data {
			if v == noData {
				outArr.Data[i] = srcArr.Data[i]
			}
		}
	}
	return out, nil
}

// MaxValue replaces every band at pixels where the chunk's ndvi exceeds the
// intermediate's. Compounds across time chunks.
func MaxValue(dataset, intermediate *cube.Dataset) (*cube.Dataset, error) {
	return compareOnNDVI(dataset, intermediate, func(chunk, current float64) bool {
		return chunk > current
	})
}

// MinValue is MaxValue's mirror: chunk pixels with lesser ndvi win.
func MinValue(dataset, intermediate *cube.Dataset) (*cube.Dataset, error) {
	return compareOnNDVI(dataset, intermediate, func(chunk, current float64) bool {
		return chunk < current
	})
}

func compareOnNDVI(dataset, intermediate *cube.Dataset, replace func(chunk, current float64) bool) (*cube.Dataset, error) {
	if intermediate == nil {
		return dataset.DeepCopy(), nil
	}
	if err := checkShapes(dataset, intermediate); err != nil {
		return nil, err
	}
	chunkNDVI, ok := dataset.Band("ndvi")
	if !ok {
		return nil, fmt.Errorf("chunk has no ndvi band to compare on")
	}
	currentNDVI, ok := intermediate.Band("ndvi")
	if !ok {
		return nil, fmt.Errorf("intermediate has no ndvi band to compare on")
	}
	if len(chunkNDVI.Data) != len(currentNDVI.Data) {
		return nil, fmt.Errorf("ndvi shape mismatch (%d vs %d values)", len(chunkNDVI.Data), len(currentNDVI.Data))
	}

	winners := make([]bool, len(chunkNDVI.Data))
	for i := range winners {
		winners[i] = replace(chunkNDVI.Data[i], currentNDVI.Data[i])
	}

	out := intermediate.DeepCopy()
	for _, name := range out.BandNames() {
		outArr, _ := out.Band(name)
		srcArr, ok := dataset.Band(name)
		if !ok {
			return nil, fmt.Errorf("chunk is missing band %s", name)
		}
		for i, win := range winners {
			if win {
				outArr.Data[i] = srcArr.Data[i]
			}
		}
	}
	return out, nil
}

// Addition accumulates timeseries products: total_data and total_clean sum
// across chunks and normalized_data is recomputed from the totals.
func Addition(dataset, intermediate *cube.Dataset) (*cube.Dataset, error) {
	if intermediate == nil {
		return dataset.DeepCopy(), nil
	}
	if err := checkShapes(dataset, intermediate); err != nil {
		return nil, err
	}
	out := intermediate.DeepCopy()
	for _, name := range []string{"total_data", "total_clean"} {
		outArr, ok := out.Band(name)
		if !ok {
			return nil, fmt.Errorf("intermediate is missing band %s", name)
		}
		srcArr, ok := dataset.Band(name)
		if !ok {
			return nil, fmt.Errorf("chunk is missing band %s", name)
		}
		for i := range outArr.Data {
			outArr.Data[i] += srcArr.Data[i]
		}
	}

	normalized, ok := out.Band("normalized_data")
	if !ok {
		return nil, fmt.Errorf("intermediate is missing band normalized_data")
	}
	totalData, _ := out.Band("total_data")
	totalClean, _ := out.Band("total_clean")
	for i := range normalized.Data {
		normalized.Data[i] = safeRatio(totalData.Data[i], totalClean.Data[i])
	}
	return out, nil
}

// safeRatio is a/b with the 0/0 case collapsed to 0, the convention for
// pixels that never saw a clean observation.
func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
