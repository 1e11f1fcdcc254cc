package datacube

import (
	"fmt"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/landcube/internal/catalog"
	"github.com/forest-guardian/landcube/internal/utils"
)

func openRaster(path string) (*godal.Dataset, error) {
	var ds *godal.Dataset
	var err error
	utils.ExecuteWithMutex(func() {
		ds, err = godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
			if ec == godal.CE_Warning {
				return nil
			}
			return fmt.Errorf("%s", msg)
		}))
	})
	return ds, err
}

// loadSceneBands samples the requested measurements of a scene onto the
// target grid with nearest-neighbor lookup. Grid cells outside the scene
// footprint carry the nodata sentinel.
func loadSceneBands(scene *catalog.Scene, measurements []string, grid Grid, noData float64) (map[string][]float64, error) {
	bandIndex := map[string]int{}
	for i, name := range scene.Bands {
		bandIndex[name] = i
	}
	for _, m := range measurements {
		if _, ok := bandIndex[m]; !ok {
			return nil, fmt.Errorf("scene %s has no %s measurement (has %v)", scene.FilePath, m, scene.Bands)
		}
	}

	ds, err := openRaster(scene.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene %s: %w", scene.FilePath, err)
	}
	defer ds.Close()

	structure := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to read geotransform of %s: %w", scene.FilePath, err)
	}
	sampler, err := newGeoSampler(gt, structure.SizeX, structure.SizeY)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", scene.FilePath, err)
	}

	rasterBands := ds.Bands()
	if len(rasterBands) < len(scene.Bands) {
		return nil, fmt.Errorf("scene %s has %d raster bands, catalog lists %d", scene.FilePath, len(rasterBands), len(scene.Bands))
	}

	out := make(map[string][]float64, len(measurements))
	gridSize := grid.Height() * grid.Width()

	x0, y0, w, h, covered := sampler.window(grid)
	if !covered {
		for _, m := range measurements {
			data := make([]float64, gridSize)
			for i := range data {
				data[i] = noData
			}
			out[m] = data
		}
		return out, nil
	}

	buf := make([]float64, w*h)
	for _, m := range measurements {
		band := rasterBands[bandIndex[m]]
		if err := band.Read(x0, y0, buf, w, h); err != nil {
			return nil, fmt.Errorf("failed to read band %s of %s: %w", m, scene.FilePath, err)
		}
		fileNoData, hasNoData := band.NoData()

		data := make([]float64, gridSize)
		for i, lat := range grid.Lats {
			for j, lon := range grid.Lons {
				idx := i*grid.Width() + j
				col, row, ok := sampler.pixelAt(lat, lon)
				if !ok || col < x0 || col >= x0+w || row < y0 || row >= y0+h {
					data[idx] = noData
					continue
				}
				v := buf[(row-y0)*w+(col-x0)]
				if hasNoData && v == fileNoData {
					v = noData
				}
				data[idx] = v
			}
		}
		out[m] = data
	}
	return out, nil
}
