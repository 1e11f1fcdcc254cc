// Package cube holds the in-memory raster cube model: named measurement
// bands stacked over (time, latitude, longitude) on a shared grid. Loaders
// fill it from scene GeoTIFFs; index math, compositing and exports all
// operate on it.
package cube

import (
	"fmt"
	"sort"
	"time"
)

const (
	// NoDataValue is the conventional sentinel carried through queries,
	// composites and exports.
	NoDataValue = -9999.0

	DefaultCRS = "EPSG:4326"
)

// Dataset is a set of bands sharing coordinates. Latitudes run north to
// south (descending), longitudes west to east (ascending), matching the
// scene loaders.
type Dataset struct {
	Times  []time.Time
	Lats   []float64
	Lons   []float64
	NoData float64
	CRS    string

	bands map[string]*DataArray
	order []string
}

func NewDataset(times []time.Time, lats, lons []float64) *Dataset {
	return &Dataset{
		Times:  times,
		Lats:   lats,
		Lons:   lons,
		NoData: NoDataValue,
		CRS:    DefaultCRS,
		bands:  map[string]*DataArray{},
	}
}

func (d *Dataset) Height() int    { return len(d.Lats) }
func (d *Dataset) Width() int     { return len(d.Lons) }
func (d *Dataset) TimeCount() int { return len(d.Times) }

// IsEmpty reports whether there is nothing to operate on: no grid or no
// bands. A flat dataset with bands is not empty.
func (d *Dataset) IsEmpty() bool {
	return d == nil || d.Height() == 0 || d.Width() == 0 || len(d.bands) == 0
}

// AddBand validates the value count against the dataset grid and registers
// the band. A slice of length T*H*W becomes time varying, H*W flat.
func (d *Dataset) AddBand(name string, data []float64) (*DataArray, error) {
	grid := d.Height() * d.Width()
	if grid == 0 {
		return nil, fmt.Errorf("dataset has an empty grid")
	}
	arr := &DataArray{Name: name, Data: data, Height: d.Height(), Width: d.Width()}
	switch {
	case len(data) == grid:
		arr.Steps = 0
	case d.TimeCount() > 0 && len(data) == grid*d.TimeCount():
		arr.Steps = d.TimeCount()
	default:
		return nil, fmt.Errorf("band %s has %d values, want %d or %d", name, len(data), grid, grid*d.TimeCount())
	}
	d.SetBand(arr)
	return arr, nil
}

// SetBand registers (or replaces) a band without reshaping it. The caller
// guarantees the array matches the dataset grid.
func (d *Dataset) SetBand(arr *DataArray) {
	if d.bands == nil {
		d.bands = map[string]*DataArray{}
	}
	if _, exists := d.bands[arr.Name]; !exists {
		d.order = append(d.order, arr.Name)
	}
	d.bands[arr.Name] = arr
}

func (d *Dataset) Band(name string) (*DataArray, bool) {
	arr, ok := d.bands[name]
	return arr, ok
}

// BandNames lists bands in insertion order. That order is what exports use
// when no explicit band order is given.
func (d *Dataset) BandNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// FirstBand returns the first registered band, the one timeseries analysis
// operates on when a dataset carries a single variable.
func (d *Dataset) FirstBand() (*DataArray, bool) {
	if len(d.order) == 0 {
		return nil, false
	}
	return d.bands[d.order[0]], true
}

func (d *Dataset) RemoveBand(name string) {
	if _, ok := d.bands[name]; !ok {
		return
	}
	delete(d.bands, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Where replaces values in every band where the mask is false. The mask is
// either flat (broadcast over time) or the full time-stacked shape.
func (d *Dataset) Where(mask []bool, replacement float64) error {
	for _, name := range d.order {
		if err := d.bands[name].ApplyMask(mask, replacement); err != nil {
			return err
		}
	}
	return nil
}

// MaskNoData is Where with the dataset's nodata sentinel.
func (d *Dataset) MaskNoData(mask []bool) error {
	return d.Where(mask, d.NoData)
}

func (d *Dataset) DeepCopy() *Dataset {
	out := NewDataset(append([]time.Time(nil), d.Times...),
		append([]float64(nil), d.Lats...),
		append([]float64(nil), d.Lons...))
	out.NoData = d.NoData
	out.CRS = d.CRS
	for _, name := range d.order {
		out.SetBand(d.bands[name].Clone())
	}
	return out
}

// ConcatTime appends another dataset along the time dimension. Grids and
// band sets must match; flat bands cannot be concatenated.
func (d *Dataset) ConcatTime(other *Dataset) (*Dataset, error) {
	if d.Height() != other.Height() || d.Width() != other.Width() {
		return nil, fmt.Errorf("grid mismatch: %dx%d vs %dx%d", d.Height(), d.Width(), other.Height(), other.Width())
	}
	if len(d.order) != len(other.order) {
		return nil, fmt.Errorf("band mismatch: %v vs %v", d.order, other.order)
	}
	out := NewDataset(append(append([]time.Time(nil), d.Times...), other.Times...),
		append([]float64(nil), d.Lats...),
		append([]float64(nil), d.Lons...))
	out.NoData = d.NoData
	out.CRS = d.CRS
	for _, name := range d.order {
		a := d.bands[name]
		b, ok := other.bands[name]
		if !ok {
			return nil, fmt.Errorf("band %s missing from concatenated dataset", name)
		}
		if a.Steps == 0 || b.Steps == 0 {
			return nil, fmt.Errorf("band %s is not time varying", name)
		}
		merged := &DataArray{
			Name:   name,
			Data:   append(append([]float64(nil), a.Data...), b.Data...),
			Steps:  a.Steps + b.Steps,
			Height: a.Height,
			Width:  a.Width,
		}
		out.SetBand(merged)
	}
	return out, nil
}

// SortTime reindexes the dataset so acquisition times ascend, permuting
// every time-varying band accordingly.
func (d *Dataset) SortTime() {
	n := len(d.Times)
	if n < 2 {
		return
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return d.Times[perm[i]].Before(d.Times[perm[j]])
	})

	sortedTimes := make([]time.Time, n)
	for i, p := range perm {
		sortedTimes[i] = d.Times[p]
	}
	d.Times = sortedTimes

	grid := d.Height() * d.Width()
	for _, name := range d.order {
		arr := d.bands[name]
		if arr.Steps == 0 {
			continue
		}
		sortedData := make([]float64, len(arr.Data))
		for i, p := range perm {
			copy(sortedData[i*grid:(i+1)*grid], arr.Data[p*grid:(p+1)*grid])
		}
		arr.Data = sortedData
	}
}

// TimeSlice copies a single acquisition out of the dataset as a flat
// dataset. Flat bands are carried through unchanged.
func (d *Dataset) TimeSlice(t int) (*Dataset, error) {
	if t < 0 || t >= d.TimeCount() {
		return nil, fmt.Errorf("timestep %d out of range (%d acquisitions)", t, d.TimeCount())
	}
	out := NewDataset([]time.Time{d.Times[t]},
		append([]float64(nil), d.Lats...),
		append([]float64(nil), d.Lons...))
	out.NoData = d.NoData
	out.CRS = d.CRS
	for _, name := range d.order {
		sliced, err := d.bands[name].Slice(t)
		if err != nil {
			return nil, err
		}
		out.SetBand(sliced)
	}
	return out, nil
}
