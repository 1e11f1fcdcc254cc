// Package output renders datasets into deliverable artifacts: GeoTIFFs,
// PNG composites, CSV tables and timelapse videos under the result
// directory.
package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/landcube/internal/cube"
)

// GeoTIFFOptions tune SaveToGeoTIFF. Zero values derive everything from the
// dataset itself: geotransform from the coordinate grid, spatial reference
// from the dataset CRS, nodata from the dataset sentinel, Float32 samples
// and insertion band order.
type GeoTIFFOptions struct {
	DataType     godal.DataType
	GeoTransform *[6]float64
	SpatialRef   string
	NoData       *float64
	BandOrder    []string
}

// SaveToGeoTIFF writes a flat dataset to a banded GeoTIFF. Every band is
// written in order with the nodata value set.
func SaveToGeoTIFF(path string, ds *cube.Dataset, opts GeoTIFFOptions) error {
	if ds.IsEmpty() {
		return fmt.Errorf("nothing to write, dataset is empty")
	}
	bandOrder := opts.BandOrder
	if bandOrder == nil {
		bandOrder = ds.BandNames()
	}
	for _, name := range bandOrder {
		arr, ok := ds.Band(name)
		if !ok {
			return fmt.Errorf("dataset has no %s band", name)
		}
		if arr.TimeVarying() {
			return fmt.Errorf("band %s is a time stack, composite or slice it first", name)
		}
	}

	gt, err := resolveGeoTransform(ds, opts.GeoTransform)
	if err != nil {
		return err
	}
	wkt := opts.SpatialRef
	if wkt == "" {
		if wkt, err = EPSGToWKT(ds.CRS); err != nil {
			return err
		}
	}
	noData := ds.NoData
	if opts.NoData != nil {
		noData = *opts.NoData
	}
	dataType := opts.DataType
	if dataType == godal.Unknown {
		dataType = godal.Float32
	}

	raster, err := godal.Create(godal.GTiff, path, len(bandOrder), dataType,
		ds.Width(), ds.Height(), godal.CreationOption("BIGTIFF=YES", "INTERLEAVE=BAND"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer raster.Close()

	if err := raster.SetGeoTransform(gt); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	sr, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return fmt.Errorf("invalid spatial reference: %w", err)
	}
	defer sr.Close()
	if err := raster.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("failed to set spatial reference: %w", err)
	}

	bands := raster.Bands()
	for i, name := range bandOrder {
		arr, _ := ds.Band(name)
		if err := bands[i].SetNoData(noData); err != nil {
			return fmt.Errorf("failed to set nodata on band %s: %w", name, err)
		}
		if err := bands[i].Write(0, 0, arr.Data, ds.Width(), ds.Height()); err != nil {
			return fmt.Errorf("failed to write band %s: %w", name, err)
		}
	}
	return nil
}

// resolveGeoTransform derives the north-up geotransform from a dataset's
// cell-center coordinates, honoring an explicit override.
func resolveGeoTransform(ds *cube.Dataset, override *[6]float64) ([6]float64, error) {
	if override != nil {
		return *override, nil
	}

	var lonStep, latStep float64
	if ds.Width() > 1 {
		lonStep = ds.Lons[1] - ds.Lons[0]
	}
	if ds.Height() > 1 {
		latStep = ds.Lats[0] - ds.Lats[1]
	}
	// Square pixels when one axis is a single cell.
	if lonStep == 0 {
		lonStep = latStep
	}
	if latStep == 0 {
		latStep = lonStep
	}
	if lonStep <= 0 || latStep <= 0 {
		return [6]float64{}, fmt.Errorf("cannot derive a geotransform from the dataset grid, pass one explicitly")
	}

	west := ds.Lons[0] - lonStep/2
	north := ds.Lats[0] + latStep/2
	return [6]float64{west, lonStep, 0, north, 0, -latStep}, nil
}

// EPSGToWKT resolves a crs like "EPSG:4326" to its WKT spatial reference.
func EPSGToWKT(crs string) (string, error) {
	parts := strings.Split(crs, ":")
	code, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", fmt.Errorf("invalid crs %q: %w", crs, err)
	}
	sr, err := godal.NewSpatialRefFromEPSG(code)
	if err != nil {
		return "", fmt.Errorf("unknown epsg code %d: %w", code, err)
	}
	defer sr.Close()
	return sr.WKT()
}
