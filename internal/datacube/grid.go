package datacube

import (
	"fmt"
	"math"
)

// Grid is the target sampling grid of a query: cell-center coordinates,
// latitudes north to south, longitudes west to east.
type Grid struct {
	Lats       []float64
	Lons       []float64
	Resolution float64
}

// BuildGrid lays a cell grid of the given resolution over an extent. Cell
// centers sit half a step inside the bounds, so a 1x1 degree extent at 0.5
// resolution yields centers at 0.25 and 0.75.
func BuildGrid(latMin, latMax, lonMin, lonMax, resolution float64) (Grid, error) {
	if resolution <= 0 {
		return Grid{}, fmt.Errorf("resolution must be positive, got %v", resolution)
	}
	if latMax < latMin || lonMax < lonMin {
		return Grid{}, fmt.Errorf("inverted extent")
	}
	height := int(math.Round((latMax - latMin) / resolution))
	width := int(math.Round((lonMax - lonMin) / resolution))
	if height < 1 {
		height = 1
	}
	if width < 1 {
		width = 1
	}

	lats := make([]float64, height)
	for i := range lats {
		lats[i] = latMax - resolution*(float64(i)+0.5)
	}
	lons := make([]float64, width)
	for j := range lons {
		lons[j] = lonMin + resolution*(float64(j)+0.5)
	}
	return Grid{Lats: lats, Lons: lons, Resolution: resolution}, nil
}

func (g Grid) Height() int { return len(g.Lats) }
func (g Grid) Width() int  { return len(g.Lons) }

// geoSampler maps geographic coordinates into a raster window through its
// geotransform. Rotated rasters are not supported; the loaders reject them.
type geoSampler struct {
	originLon float64
	originLat float64
	stepLon   float64
	stepLat   float64
	width     int
	height    int
}

func newGeoSampler(gt [6]float64, width, height int) (geoSampler, error) {
	if gt[2] != 0 || gt[4] != 0 {
		return geoSampler{}, fmt.Errorf("rotated rasters are not supported")
	}
	if gt[1] == 0 || gt[5] == 0 {
		return geoSampler{}, fmt.Errorf("degenerate geotransform")
	}
	return geoSampler{
		originLon: gt[0],
		originLat: gt[3],
		stepLon:   gt[1],
		stepLat:   gt[5],
		width:     width,
		height:    height,
	}, nil
}

// pixelAt resolves the raster cell containing (lat, lon). ok is false when
// the point falls outside the raster.
func (s geoSampler) pixelAt(lat, lon float64) (col, row int, ok bool) {
	col = int(math.Floor((lon - s.originLon) / s.stepLon))
	row = int(math.Floor((lat - s.originLat) / s.stepLat))
	if col < 0 || col >= s.width || row < 0 || row >= s.height {
		return 0, 0, false
	}
	return col, row, true
}

// window computes the inclusive pixel window covering a grid, clamped to
// the raster, for a single windowed read.
func (s geoSampler) window(g Grid) (x0, y0, w, h int, ok bool) {
	if g.Height() == 0 || g.Width() == 0 {
		return 0, 0, 0, 0, false
	}
	half := g.Resolution / 2
	north := g.Lats[0] + half
	south := g.Lats[g.Height()-1] - half
	west := g.Lons[0] - half
	east := g.Lons[g.Width()-1] + half

	x0 = int(math.Floor((west - s.originLon) / s.stepLon))
	x1 := int(math.Ceil((east - s.originLon) / s.stepLon))
	// stepLat is negative for north-up rasters, so north maps to the
	// smaller row index.
	y0 = int(math.Floor((north - s.originLat) / s.stepLat))
	y1 := int(math.Ceil((south - s.originLat) / s.stepLat))

	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > s.width {
		x1 = s.width
	}
	if y1 > s.height {
		y1 = s.height
	}
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1 - x0, y1 - y0, true
}
