package datacube

import (
	"fmt"
	"time"

	"github.com/forest-guardian/landcube/internal/cache"
	"github.com/forest-guardian/landcube/internal/catalog"
	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/task"
)

const acquisitionCacheMaxAge = 15 * time.Minute

// QueryOptions narrows a product query to a platform, time window, extent,
// measurement list and target sampling.
type QueryOptions struct {
	Platform     string
	Start        *time.Time
	End          *time.Time
	Latitude     *task.Range
	Longitude    *task.Range
	Measurements []string
	OutputCRS    string
	Resolution   float64
}

// Client answers extent and time queries against the local scene catalog.
type Client struct {
	catalog  *catalog.Catalog
	acqCache *cache.FileCache[[]time.Time]
}

func NewClient(cat *catalog.Catalog) *Client {
	acqCache := cache.NewFileCache[[]time.Time]("acquisitions").WithMaxAge(acquisitionCacheMaxAge)
	return &Client{catalog: cat, acqCache: acqCache}
}

func (o QueryOptions) filter(product string) catalog.Filter {
	f := catalog.Filter{
		Product:  product,
		Platform: o.Platform,
		Start:    o.Start,
		End:      o.End,
	}
	if o.Latitude != nil {
		f.LatMin = &o.Latitude.Lower
		f.LatMax = &o.Latitude.Upper
	}
	if o.Longitude != nil {
		f.LonMin = &o.Longitude.Lower
		f.LonMax = &o.Longitude.Upper
	}
	return f
}

func (o QueryOptions) validate() error {
	if o.OutputCRS != "" && o.OutputCRS != cube.DefaultCRS {
		return fmt.Errorf("unsupported output crs %s, scenes are indexed in %s", o.OutputCRS, cube.DefaultCRS)
	}
	if o.Latitude != nil && o.Latitude.Lower > o.Latitude.Upper {
		return fmt.Errorf("invalid latitude range %v", *o.Latitude)
	}
	if o.Longitude != nil && o.Longitude.Lower > o.Longitude.Upper {
		return fmt.Errorf("invalid longitude range %v", *o.Longitude)
	}
	return nil
}

// queryGrid resolves the sampling grid for a scene set, preferring the
// requested extent and resolution and falling back to what the scenes cover.
func (o QueryOptions) queryGrid(scenes []*catalog.Scene) (Grid, error) {
	latMin, latMax := scenes[0].LatMin, scenes[0].LatMax
	lonMin, lonMax := scenes[0].LonMin, scenes[0].LonMax
	for _, s := range scenes[1:] {
		if s.LatMin < latMin {
			latMin = s.LatMin
		}
		if s.LatMax > latMax {
			latMax = s.LatMax
		}
		if s.LonMin < lonMin {
			lonMin = s.LonMin
		}
		if s.LonMax > lonMax {
			lonMax = s.LonMax
		}
	}
	if o.Latitude != nil {
		latMin, latMax = o.Latitude.Lower, o.Latitude.Upper
	}
	if o.Longitude != nil {
		lonMin, lonMax = o.Longitude.Lower, o.Longitude.Upper
	}
	resolution := o.Resolution
	if resolution == 0 {
		resolution = scenes[0].Resolution
	}
	if resolution <= 0 {
		return Grid{}, fmt.Errorf("cannot resolve grid resolution for query")
	}
	return BuildGrid(latMin, latMax, lonMin, lonMax, resolution)
}

// GetDatasetByExtent loads every scene matching the query into a single
// time-stacked dataset. An empty dataset is returned when nothing matches.
func (c *Client) GetDatasetByExtent(product string, opts QueryOptions) (*cube.Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	scenes, err := c.catalog.QueryScenes(opts.filter(product))
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return cube.NewDataset(nil, nil, nil), nil
	}

	measurements := opts.Measurements
	if len(measurements) == 0 {
		measurements = scenes[0].Bands
	}

	grid, err := opts.queryGrid(scenes)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(scenes))
	stacked := make(map[string][]float64, len(measurements))
	for _, scene := range scenes {
		sceneBands, err := loadSceneBands(scene, measurements, grid, cube.NoDataValue)
		if err != nil {
			return nil, err
		}
		for _, m := range measurements {
			stacked[m] = append(stacked[m], sceneBands[m]...)
		}
		times = append(times, scene.AcquiredAt)
	}

	dataset := cube.NewDataset(times, grid.Lats, grid.Lons)
	for _, m := range measurements {
		if err := dataset.AddBand(m, stacked[m]); err != nil {
			return nil, err
		}
	}
	return dataset, nil
}

// GetStackedDatasetsByExtent loads several products over the same extent and
// concatenates them along time, tagging every time step with a satellite
// band holding the product index. Products with no matching scenes are
// skipped.
func (c *Client) GetStackedDatasetsByExtent(products []string, platforms []string, opts QueryOptions) (*cube.Dataset, error) {
	if len(products) != len(platforms) {
		return nil, fmt.Errorf("got %d products and %d platforms, lists must pair up", len(products), len(platforms))
	}

	var merged *cube.Dataset
	for i, product := range products {
		productOpts := opts
		productOpts.Platform = platforms[i]
		dataset, err := c.GetDatasetByExtent(product, productOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", product, err)
		}
		if dataset.IsEmpty() {
			continue
		}

		satellite := make([]float64, len(dataset.Times)*dataset.Height()*dataset.Width())
		for j := range satellite {
			satellite[j] = float64(i)
		}
		if err := dataset.AddBand("satellite", satellite); err != nil {
			return nil, err
		}

		if merged == nil {
			merged = dataset
			continue
		}
		merged, err = merged.ConcatTime(dataset)
		if err != nil {
			return nil, fmt.Errorf("failed to stack %s: %w", product, err)
		}
	}
	if merged == nil {
		return cube.NewDataset(nil, nil, nil), nil
	}
	merged.SortTime()
	return merged, nil
}

// TileKey addresses one cell of a tiled query. X grows eastward and Y
// northward from the query origin.
type TileKey struct {
	X int
	Y int
}

// GetDatasetTiles splits the query extent into square tiles of tileSize
// degrees and loads each tile that has matching scenes as its own dataset.
func (c *Client) GetDatasetTiles(product string, opts QueryOptions, tileSize float64) (map[TileKey]*cube.Dataset, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %v", tileSize)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Latitude == nil || opts.Longitude == nil {
		return nil, fmt.Errorf("tiled queries need an explicit latitude and longitude range")
	}

	tiles := map[TileKey]*cube.Dataset{}
	lat, lon := *opts.Latitude, *opts.Longitude
	for y := 0; float64(y)*tileSize < lat.Size(); y++ {
		tileLat := task.Range{
			Lower: lat.Lower + float64(y)*tileSize,
			Upper: lat.Lower + float64(y+1)*tileSize,
		}
		if tileLat.Upper > lat.Upper {
			tileLat.Upper = lat.Upper
		}
		for x := 0; float64(x)*tileSize < lon.Size(); x++ {
			tileLon := task.Range{
				Lower: lon.Lower + float64(x)*tileSize,
				Upper: lon.Lower + float64(x+1)*tileSize,
			}
			if tileLon.Upper > lon.Upper {
				tileLon.Upper = lon.Upper
			}

			tileOpts := opts
			tileOpts.Latitude = &tileLat
			tileOpts.Longitude = &tileLon
			dataset, err := c.GetDatasetByExtent(product, tileOpts)
			if err != nil {
				return nil, fmt.Errorf("failed to load tile %d/%d: %w", x, y, err)
			}
			if dataset.IsEmpty() {
				continue
			}
			tiles[TileKey{X: x, Y: y}] = dataset
		}
	}
	return tiles, nil
}

// SceneMetadata summarizes what the catalog holds for a query without
// loading any pixels.
type SceneMetadata struct {
	SceneCount  int
	TileCount   int
	Start       time.Time
	End         time.Time
	Extent      catalog.Extent
	Resolution  float64
	PixelWidth  int
	PixelHeight int
}

// GetSceneMetadata reports scene counts, the covered time window and the
// pixel dimensions a full-extent load would produce. The zero value is
// returned when nothing matches.
func (c *Client) GetSceneMetadata(product string, opts QueryOptions) (SceneMetadata, error) {
	if err := opts.validate(); err != nil {
		return SceneMetadata{}, err
	}
	scenes, err := c.catalog.QueryScenes(opts.filter(product))
	if err != nil {
		return SceneMetadata{}, err
	}
	if len(scenes) == 0 {
		return SceneMetadata{}, nil
	}

	extent, err := c.catalog.QueryExtent(opts.filter(product))
	if err != nil {
		return SceneMetadata{}, err
	}

	dates := map[time.Time]bool{}
	for _, s := range scenes {
		dates[s.AcquiredAt] = true
	}

	grid, err := opts.queryGrid(scenes)
	if err != nil {
		return SceneMetadata{}, err
	}

	return SceneMetadata{
		SceneCount:  len(dates),
		TileCount:   len(scenes),
		Start:       scenes[0].AcquiredAt,
		End:         scenes[len(scenes)-1].AcquiredAt,
		Extent:      extent,
		Resolution:  grid.Resolution,
		PixelWidth:  grid.Width(),
		PixelHeight: grid.Height(),
	}, nil
}

// ListAcquisitionDates returns the distinct acquisition times matching the
// query, ascending. Results are memoized on disk for a short while since
// date listings back chunked range planning and get re-asked per chunk.
func (c *Client) ListAcquisitionDates(product string, opts QueryOptions) ([]time.Time, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	key := c.acqCache.GenerateKey(
		product, opts.Platform, opts.Start, opts.End, opts.Latitude, opts.Longitude,
	)
	if dates, ok := c.acqCache.Get(key); ok {
		return dates, nil
	}

	dates, err := c.catalog.AcquisitionDates(opts.filter(product))
	if err != nil {
		return nil, err
	}
	if err := c.acqCache.Set(key, dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// ProductMetadata describes one product held by the catalog.
type ProductMetadata struct {
	Product    string
	Platforms  []string
	SceneCount int
	Start      time.Time
	End        time.Time
	Extent     catalog.Extent
}

// GetDatacubeMetadata lists every product in the catalog with its
// platforms, scene count, time window and spatial extent.
func (c *Client) GetDatacubeMetadata() ([]ProductMetadata, error) {
	products, err := c.catalog.Products()
	if err != nil {
		return nil, err
	}

	metadata := make([]ProductMetadata, 0, len(products))
	for _, product := range products {
		platforms, err := c.catalog.Platforms(product)
		if err != nil {
			return nil, err
		}
		extent, err := c.catalog.QueryExtent(catalog.Filter{Product: product})
		if err != nil {
			return nil, err
		}
		dates, err := c.catalog.AcquisitionDates(catalog.Filter{Product: product})
		if err != nil {
			return nil, err
		}
		meta := ProductMetadata{
			Product:    product,
			Platforms:  platforms,
			SceneCount: extent.SceneCount,
			Extent:     extent,
		}
		if len(dates) > 0 {
			meta.Start = dates[0]
			meta.End = dates[len(dates)-1]
		}
		metadata = append(metadata, meta)
	}
	return metadata, nil
}
