package datacube

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/forest-guardian/landcube/internal/composite"
	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/indices"
	"github.com/forest-guardian/landcube/internal/mask"
	"github.com/forest-guardian/landcube/internal/task"
)

// CompositeMethod selects how a stack of acquisitions collapses into one
// cloud-free product.
type CompositeMethod string

const (
	CompositeMostRecent  CompositeMethod = "most_recent"
	CompositeLeastRecent CompositeMethod = "least_recent"
	CompositeMaxNDVI     CompositeMethod = "max_ndvi"
	CompositeMinNDVI     CompositeMethod = "min_ndvi"
	CompositeTimeseries  CompositeMethod = "timeseries"
)

const defaultCompositeWorkers = 4

// CompositeParams describe one composite run over a bounded extent.
// GeoChunkSize and TimeChunks bound how much of the stack is resident at
// once; nil leaves the query unchunked on that axis.
type CompositeParams struct {
	Product      string
	Platform     string
	Latitude     task.Range
	Longitude    task.Range
	Start        *time.Time
	End          *time.Time
	Measurements []string
	Resolution   float64
	Method       CompositeMethod
	GeoChunkSize *float64
	TimeChunks   *int
	Workers      int
}

// RunComposite splits the extent into latitude bands and the acquisitions
// into runs, loads and cloud-masks every chunk, mosaics each time run and
// reduces the runs into one flat product per band, then stitches the bands
// back together. Bands run in parallel; time runs within a band reduce
// sequentially.
func RunComposite(c *Client, p CompositeParams) (*cube.Dataset, error) {
	if p.Latitude.Size() <= 0 || p.Longitude.Size() <= 0 {
		return nil, fmt.Errorf("composites need a bounded extent")
	}
	if p.Method == "" {
		p.Method = CompositeMostRecent
	}
	resolution := p.Resolution
	if resolution == 0 {
		resolution = task.DefaultResolution
	}

	baseOpts := QueryOptions{
		Platform:     p.Platform,
		Start:        p.Start,
		End:          p.End,
		Latitude:     &p.Latitude,
		Longitude:    &p.Longitude,
		Measurements: p.Measurements,
		Resolution:   resolution,
	}

	acquisitions, err := c.ListAcquisitionDates(p.Product, baseOpts)
	if err != nil {
		return nil, err
	}
	if len(acquisitions) == 0 {
		return cube.NewDataset(nil, nil, nil), nil
	}

	split, err := task.SplitTask(task.SplitParams{
		Resolution:   resolution,
		Latitude:     &p.Latitude,
		Longitude:    &p.Longitude,
		Acquisitions: acquisitions,
		GeoChunkSize: p.GeoChunkSize,
		TimeChunks:   p.TimeChunks,
		ReverseTime:  p.Method == CompositeMostRecent,
	})
	if err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers <= 0 {
		workers = defaultCompositeWorkers
	}

	var (
		mu       sync.Mutex
		progress = progressbar.Default(
			int64(len(split.LatRanges)*len(split.TimeRanges)),
			fmt.Sprintf("Compositing %s", p.Product))
	)

	bandProducts := make([]*cube.Dataset, len(split.LatRanges))
	eg := errgroup.Group{}
	eg.SetLimit(workers)
	for gi := range split.LatRanges {
		gi := gi
		eg.Go(func() error {
			var intermediate *cube.Dataset
			for _, run := range split.TimeRanges {
				chunk, err := c.loadCompositeChunk(p, baseOpts, split.LatRanges[gi], split.LonRanges[gi], run)
				if err != nil {
					return err
				}
				if chunk != nil {
					if intermediate, err = mergeChunk(p.Method, chunk, intermediate); err != nil {
						return err
					}
				}
				mu.Lock()
				progress.Add(1)
				mu.Unlock()
			}
			bandProducts[gi] = intermediate
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return StitchLatBands(bandProducts)
}

// loadCompositeChunk loads one lat-band/time-run chunk, cloud-masks it and
// collapses the run into a flat chunk product. nil means the chunk had no
// scenes.
func (c *Client) loadCompositeChunk(p CompositeParams, baseOpts QueryOptions, lat, lon *task.Range, run []time.Time) (*cube.Dataset, error) {
	if len(run) == 0 {
		return nil, nil
	}
	start, end := timeWindow(run)

	opts := baseOpts
	opts.Latitude = lat
	opts.Longitude = lon
	opts.Start = &start
	opts.End = &end

	ds, err := c.GetDatasetByExtent(p.Product, opts)
	if err != nil {
		return nil, err
	}
	if ds.IsEmpty() {
		return nil, nil
	}

	clean, err := CleanMask(ds)
	if err != nil {
		return nil, err
	}
	if err := ds.MaskNoData(clean); err != nil {
		return nil, err
	}

	switch p.Method {
	case CompositeMostRecent:
		return composite.MostRecentMosaic(ds)
	case CompositeLeastRecent:
		return composite.LeastRecentMosaic(ds)
	case CompositeMaxNDVI, CompositeMinNDVI:
		ndvi, err := indices.NDVI(ds)
		if err != nil {
			return nil, err
		}
		ds.SetBand(ndvi)
		if p.Method == CompositeMaxNDVI {
			return composite.MaxNDVIMosaic(ds)
		}
		return composite.MinNDVIMosaic(ds)
	case CompositeTimeseries:
		return composite.PerformTimeseriesAnalysis(ds, ds.NoData)
	default:
		return nil, fmt.Errorf("unknown composite method %q", p.Method)
	}
}

// mergeChunk folds a flat chunk product into the running band product with
// the reducer matching the composite method.
func mergeChunk(method CompositeMethod, chunk, intermediate *cube.Dataset) (*cube.Dataset, error) {
	switch method {
	case CompositeMostRecent, CompositeLeastRecent:
		return composite.FillNoData(chunk, intermediate)
	case CompositeMaxNDVI:
		return composite.MaxValue(chunk, intermediate)
	case CompositeMinNDVI:
		return composite.MinValue(chunk, intermediate)
	case CompositeTimeseries:
		if intermediate == nil {
			return chunk, nil
		}
		return composite.Addition(chunk, intermediate)
	default:
		return nil, fmt.Errorf("unknown composite method %q", method)
	}
}

func timeWindow(run []time.Time) (time.Time, time.Time) {
	start, end := run[0], run[0]
	for _, t := range run[1:] {
		if t.Before(start) {
			start = t
		}
		if t.After(end) {
			end = t
		}
	}
	return start, end
}

// CleanMask builds a clear-observation mask from whatever QA band the
// dataset carries: cf_mask, pixel_qa or scl (optionally refined by cld).
// Datasets without a QA band fall back to masking only nodata on the first
// band.
func CleanMask(ds *cube.Dataset) ([]bool, error) {
	if arr, ok := ds.Band("cf_mask"); ok {
		return mask.CFMaskClean(arr, ds.NoData), nil
	}
	if arr, ok := ds.Band("pixel_qa"); ok {
		return mask.BitMask(arr, []uint{1, 2}, ds.NoData), nil
	}
	if scl, ok := ds.Band("scl"); ok {
		cld, ok := ds.Band("cld")
		if !ok {
			cld = cube.FilledArray("cld", scl.Steps, scl.Height, scl.Width, 0)
		}
		return mask.SentinelClear(scl, cld)
	}
	arr, ok := ds.FirstBand()
	if !ok {
		return nil, fmt.Errorf("dataset has no bands to mask")
	}
	return mask.NotNoData(arr, ds.NoData), nil
}

// StitchLatBands vertically concatenates flat band products back into the
// full extent, north first. nil entries (bands with no scenes) are skipped;
// all parts must share the longitude grid and band set.
func StitchLatBands(parts []*cube.Dataset) (*cube.Dataset, error) {
	kept := make([]*cube.Dataset, 0, len(parts))
	for _, p := range parts {
		if p == nil || p.IsEmpty() {
			continue
		}
		if p.TimeCount() != 0 {
			return nil, fmt.Errorf("band products must be flat, got %d time steps", p.TimeCount())
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return cube.NewDataset(nil, nil, nil), nil
	}

	// North first: descending by northernmost latitude.
	for i := 1; i < len(kept); i++ {
		for j := i; j > 0 && kept[j].Lats[0] > kept[j-1].Lats[0]; j-- {
			kept[j], kept[j-1] = kept[j-1], kept[j]
		}
	}

	first := kept[0]
	names := first.BandNames()
	var lats []float64
	stacked := make(map[string][]float64, len(names))
	for _, part := range kept {
		if part.Width() != first.Width() {
			return nil, fmt.Errorf("band width %d does not match %d", part.Width(), first.Width())
		}
		if len(part.BandNames()) != len(names) {
			return nil, fmt.Errorf("band products carry different variables")
		}
		for _, name := range names {
			arr, ok := part.Band(name)
			if !ok {
				return nil, fmt.Errorf("band product is missing %s", name)
			}
			stacked[name] = append(stacked[name], arr.Data...)
		}
		lats = append(lats, part.Lats...)
	}

	out := cube.NewDataset(nil, lats, append([]float64(nil), first.Lons...))
	out.NoData = first.NoData
	out.CRS = first.CRS
	for _, name := range names {
		if _, err := out.AddBand(name, stacked[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
