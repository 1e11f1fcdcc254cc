// Package indices computes spectral vegetation indices on cube datasets.
// Results keep the dataset's shape; pixels without a usable observation
// (nodata inputs or a zero denominator) carry the nodata sentinel.
package indices

import (
	"fmt"
	"math"

	"github.com/forest-guardian/landcube/internal/cube"
)

func band(ds *cube.Dataset, name string) (*cube.DataArray, error) {
	arr, ok := ds.Band(name)
	if !ok {
		return nil, fmt.Errorf("dataset is missing the %s band", name)
	}
	return arr, nil
}

func normalizedDifference(name string, a, b *cube.DataArray, noData float64) (*cube.DataArray, error) {
	if len(a.Data) != len(b.Data) {
		return nil, fmt.Errorf("%s and %s differ in shape (%d vs %d values)", a.Name, b.Name, len(a.Data), len(b.Data))
	}
	out := &cube.DataArray{
		Name:   name,
		Data:   make([]float64, len(a.Data)),
		Steps:  a.Steps,
		Height: a.Height,
		Width:  a.Width,
	}
	for i := range a.Data {
		va, vb := a.Data[i], b.Data[i]
		if va == noData || vb == noData || va+vb == 0 || math.IsNaN(va) || math.IsNaN(vb) {
			out.Data[i] = noData
			continue
		}
		out.Data[i] = (va - vb) / (va + vb)
	}
	return out, nil
}

// NDVI is (nir - red) / (nir + red).
func NDVI(ds *cube.Dataset) (*cube.DataArray, error) {
	nir, err := band(ds, "nir")
	if err != nil {
		return nil, err
	}
	red, err := band(ds, "red")
	if err != nil {
		return nil, err
	}
	return normalizedDifference("ndvi", nir, red, ds.NoData)
}

// NDRE is (nir - red_edge) / (nir + red_edge).
func NDRE(ds *cube.Dataset) (*cube.DataArray, error) {
	nir, err := band(ds, "nir")
	if err != nil {
		return nil, err
	}
	redEdge, err := band(ds, "red_edge")
	if err != nil {
		return nil, err
	}
	return normalizedDifference("ndre", nir, redEdge, ds.NoData)
}

// NDMI is (nir - swir1) / (nir + swir1).
func NDMI(ds *cube.Dataset) (*cube.DataArray, error) {
	nir, err := band(ds, "nir")
	if err != nil {
		return nil, err
	}
	swir, err := band(ds, "swir1")
	if err != nil {
		return nil, err
	}
	return normalizedDifference("ndmi", nir, swir, ds.NoData)
}

// PSRI is (red - blue) / red_edge2, the plant senescence reflectance index.
func PSRI(ds *cube.Dataset) (*cube.DataArray, error) {
	red, err := band(ds, "red")
	if err != nil {
		return nil, err
	}
	blue, err := band(ds, "blue")
	if err != nil {
		return nil, err
	}
	redEdge2, err := band(ds, "red_edge2")
	if err != nil {
		return nil, err
	}
	out := &cube.DataArray{
		Name:   "psri",
		Data:   make([]float64, len(red.Data)),
		Steps:  red.Steps,
		Height: red.Height,
		Width:  red.Width,
	}
	for i := range red.Data {
		vr, vb, ve := red.Data[i], blue.Data[i], redEdge2.Data[i]
		if vr == ds.NoData || vb == ds.NoData || ve == ds.NoData || ve == 0 {
			out.Data[i] = ds.NoData
			continue
		}
		out.Data[i] = (vr - vb) / ve
	}
	return out, nil
}

// EVIOptions carry the three-band enhanced vegetation index coefficients.
// G is the gain factor, C1 and C2 the aerosol resistance terms and L the
// canopy background adjustment.
type EVIOptions struct {
	G, C1, C2, L float64
	// Normalize rescales positive values from [0, 2.5] to [0, 1] after
	// clamping, putting EVI on the footing of most spectral indices.
	Normalize bool
}

func DefaultEVIOptions() EVIOptions {
	return EVIOptions{G: 2.5, C1: 6, C2: 7.5, L: 1, Normalize: true}
}

// EVI is G * (nir - red) / (nir + C1*red - C2*blue + L), clamped to
// [-1, 2.5].
func EVI(ds *cube.Dataset, opts EVIOptions) (*cube.DataArray, error) {
	nir, err := band(ds, "nir")
	if err != nil {
		return nil, err
	}
	red, err := band(ds, "red")
	if err != nil {
		return nil, err
	}
	blue, err := band(ds, "blue")
	if err != nil {
		return nil, err
	}
	out := &cube.DataArray{
		Name:   "evi",
		Data:   make([]float64, len(nir.Data)),
		Steps:  nir.Steps,
		Height: nir.Height,
		Width:  nir.Width,
	}
	for i := range nir.Data {
		vn, vr, vb := nir.Data[i], red.Data[i], blue.Data[i]
		denom := vn + opts.C1*vr - opts.C2*vb + opts.L
		if vn == ds.NoData || vr == ds.NoData || vb == ds.NoData || denom == 0 {
			out.Data[i] = ds.NoData
			continue
		}
		out.Data[i] = clampEVI(opts.G*(vn-vr)/denom, opts.Normalize)
	}
	return out, nil
}

// EVI2Options carry the two-band variant coefficients; C replaces the two
// aerosol terms of EVI.
type EVI2Options struct {
	G, C, L   float64
	Normalize bool
}

func DefaultEVI2Options() EVI2Options {
	return EVI2Options{G: 2.5, C: 2.4, L: 1, Normalize: true}
}

// EVI2 is G * (nir - red) / (nir + C*red + L), clamped to [-1, 2.5]. It
// needs no blue band, which can have a poor signal-to-noise ratio.
func EVI2(ds *cube.Dataset, opts EVI2Options) (*cube.DataArray, error) {
	nir, err := band(ds, "nir")
	if err != nil {
		return nil, err
	}
	red, err := band(ds, "red")
	if err != nil {
		return nil, err
	}
	out := &cube.DataArray{
		Name:   "evi2",
		Data:   make([]float64, len(nir.Data)),
		Steps:  nir.Steps,
		Height: nir.Height,
		Width:  nir.Width,
	}
	for i := range nir.Data {
		vn, vr := nir.Data[i], red.Data[i]
		denom := vn + opts.C*vr + opts.L
		if vn == ds.NoData || vr == ds.NoData || denom == 0 {
			out.Data[i] = ds.NoData
			continue
		}
		out.Data[i] = clampEVI(opts.G*(vn-vr)/denom, opts.Normalize)
	}
	return out, nil
}

func clampEVI(v float64, normalize bool) float64 {
	if v < -1 {
		v = -1
	}
	if v > 2.5 {
		v = 2.5
	}
	if normalize && v > 0 {
		v = v / 2.5
	}
	return v
}
