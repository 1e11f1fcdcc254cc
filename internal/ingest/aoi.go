package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/forest-guardian/landcube/internal/properties"
	"github.com/forest-guardian/landcube/internal/task"
)

// Region is one area of interest read from a geojson collection under
// data/geojsons. Features are addressed by their region_id property.
type Region struct {
	Collection string
	ID         string

	geometry *godal.Geometry
}

// LoadRegion opens <geojsons>/<collection>.geojson and returns the feature
// whose region_id matches.
func LoadRegion(collection, regionID string) (*Region, error) {
	filePath := filepath.Join(properties.GeojsonsPath(), collection+".geojson")

	godal.RegisterInternalDrivers()
	ds, err := godal.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	layer := ds.Layers()[0]
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}
		defer feat.Close()

		val, ok := feat.Fields()["region_id"]
		if !ok {
			continue
		}
		if val.String() != regionID {
			continue
		}

		geom := feat.Geometry()
		wkb, err := geom.WKB()
		if err != nil {
			return nil, fmt.Errorf("failed to export region geometry: %w", err)
		}
		copied, err := godal.NewGeometryFromWKB(wkb, geom.SpatialRef())
		if err != nil {
			return nil, err
		}
		return &Region{Collection: collection, ID: regionID, geometry: copied}, nil
	}

	return nil, fmt.Errorf("region %s not found in %s", regionID, filePath)
}

// ListRegionIDs returns every region_id in a geojson collection.
func ListRegionIDs(collection string) ([]string, error) {
	filePath := filepath.Join(properties.GeojsonsPath(), collection+".geojson")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("invalid geojson in %s: %w", filePath, err)
	}

	var ids []string
	for _, feature := range fc.Features {
		if id := feature.Properties.MustString("region_id", ""); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Region) Geometry() *godal.Geometry { return r.geometry }

func (r *Region) Close() {
	if r.geometry != nil {
		r.geometry.Close()
	}
}

// Bounds returns the region bounding box as latitude/longitude ranges.
func (r *Region) Bounds() (lat task.Range, lon task.Range, err error) {
	bbox, err := r.geometry.Bounds()
	if err != nil {
		return task.Range{}, task.Range{}, fmt.Errorf("failed to get region bounds: %w", err)
	}
	return task.Range{Lower: bbox[1], Upper: bbox[3]}, task.Range{Lower: bbox[0], Upper: bbox[2]}, nil
}

// Centroid returns the region's area centroid.
func (r *Region) Centroid() (lat, lon float64, err error) {
	raw, err := r.geometry.GeoJSON()
	if err != nil {
		return 0, 0, err
	}
	geom, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse region geometry: %w", err)
	}

	centroid, area := planar.CentroidArea(geom.Coordinates)
	if area <= 0 {
		return 0, 0, errors.New("region has no area")
	}
	return centroid.Y(), centroid.X(), nil
}
