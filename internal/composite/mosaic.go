package composite

import (
	"fmt"

	"github.com/forest-guardian/landcube/internal/cube"
)

// MostRecentMosaic flattens a time stack by walking acquisitions newest
// first and filling nodata holes with older observations.
func MostRecentMosaic(ds *cube.Dataset) (*cube.Dataset, error) {
	return mosaic(ds, true, FillNoData)
}

// LeastRecentMosaic walks oldest first.
func LeastRecentMosaic(ds *cube.Dataset) (*cube.Dataset, error) {
	return mosaic(ds, false, FillNoData)
}

// MaxNDVIMosaic flattens a time stack keeping, per pixel, the acquisition
// with the greatest ndvi. The dataset must carry an ndvi band.
func MaxNDVIMosaic(ds *cube.Dataset) (*cube.Dataset, error) {
	return mosaic(ds, false, MaxValue)
}

// MinNDVIMosaic keeps the acquisition with the least ndvi per pixel.
func MinNDVIMosaic(ds *cube.Dataset) (*cube.Dataset, error) {
	return mosaic(ds, false, MinValue)
}

func mosaic(ds *cube.Dataset, reverseTime bool, reduce Reducer) (*cube.Dataset, error) {
	if ds.TimeCount() == 0 {
		return nil, fmt.Errorf("dataset has no time dimension to mosaic")
	}
	var intermediate *cube.Dataset
	for i := 0; i < ds.TimeCount(); i++ {
		t := i
		if reverseTime {
			t = ds.TimeCount() - 1 - i
		}
		slice, err := ds.TimeSlice(t)
		if err != nil {
			return nil, err
		}
		if intermediate, err = reduce(slice, intermediate); err != nil {
			return nil, err
		}
	}
	intermediate.Times = nil
	return intermediate, nil
}
