package cube

import (
	"fmt"
	"math"
	"sort"
)

// DataArray is a single measurement band. Data is row major, [t][y][x] for
// time-stacked bands. Steps == 0 marks a flat (y, x) band, which every
// operation treats as broadcast over time.
type DataArray struct {
	Name   string
	Data   []float64
	Steps  int
	Height int
	Width  int
}

func NewArray(name string, steps, height, width int) *DataArray {
	n := height * width
	if steps > 0 {
		n *= steps
	}
	return &DataArray{
		Name:   name,
		Data:   make([]float64, n),
		Steps:  steps,
		Height: height,
		Width:  width,
	}
}

func FilledArray(name string, steps, height, width int, fill float64) *DataArray {
	arr := NewArray(name, steps, height, width)
	for i := range arr.Data {
		arr.Data[i] = fill
	}
	return arr
}

func (a *DataArray) TimeVarying() bool {
	return a.Steps > 0
}

func (a *DataArray) index(t, y, x int) int {
	if a.Steps > 0 {
		return (t*a.Height+y)*a.Width + x
	}
	return y*a.Width + x
}

// At reads the value at (t, y, x). Flat bands ignore t.
func (a *DataArray) At(t, y, x int) float64 {
	return a.Data[a.index(t, y, x)]
}

func (a *DataArray) Set(t, y, x int, v float64) {
	a.Data[a.index(t, y, x)] = v
}

func (a *DataArray) Clone() *DataArray {
	data := make([]float64, len(a.Data))
	copy(data, a.Data)
	return &DataArray{Name: a.Name, Data: data, Steps: a.Steps, Height: a.Height, Width: a.Width}
}

func (a *DataArray) Fill(v float64) {
	for i := range a.Data {
		a.Data[i] = v
	}
}

// ReplaceValue rewrites every occurrence of old with new in place.
func (a *DataArray) ReplaceValue(old, new float64) {
	for i, v := range a.Data {
		if v == old {
			a.Data[i] = new
		}
	}
}

// Slice copies timestep t out of a time-stacked band as a flat band.
func (a *DataArray) Slice(t int) (*DataArray, error) {
	if a.Steps == 0 {
		return a.Clone(), nil
	}
	if t < 0 || t >= a.Steps {
		return nil, fmt.Errorf("timestep %d out of range for band %s with %d steps", t, a.Name, a.Steps)
	}
	out := NewArray(a.Name, 0, a.Height, a.Width)
	copy(out.Data, a.Data[t*a.Height*a.Width:(t+1)*a.Height*a.Width])
	return out, nil
}

// ApplyMask replaces values where the mask is false. The mask is either the
// band's full shape or a flat (y, x) mask broadcast over time.
func (a *DataArray) ApplyMask(mask []bool, replacement float64) error {
	grid := a.Height * a.Width
	switch len(mask) {
	case len(a.Data):
		for i := range a.Data {
			if !mask[i] {
				a.Data[i] = replacement
			}
		}
	case grid:
		for i := range a.Data {
			if !mask[i%grid] {
				a.Data[i] = replacement
			}
		}
	default:
		return fmt.Errorf("mask length %d does not fit band %s (%d values, grid %d)", len(mask), a.Name, len(a.Data), grid)
	}
	return nil
}

// SumTime collapses the time dimension by plain summation. Callers that use
// a nodata sentinel are expected to zero it out first.
func (a *DataArray) SumTime() *DataArray {
	out := NewArray(a.Name, 0, a.Height, a.Width)
	if a.Steps == 0 {
		copy(out.Data, a.Data)
		return out
	}
	grid := a.Height * a.Width
	for t := 0; t < a.Steps; t++ {
		base := t * grid
		for i := 0; i < grid; i++ {
			out.Data[i] += a.Data[base+i]
		}
	}
	return out
}

// CountTime counts per-pixel observations not equal to the sentinel.
func (a *DataArray) CountTime(sentinel float64) *DataArray {
	out := NewArray(a.Name, 0, a.Height, a.Width)
	grid := a.Height * a.Width
	steps := a.Steps
	if steps == 0 {
		steps = 1
	}
	for t := 0; t < steps; t++ {
		base := 0
		if a.Steps > 0 {
			base = t * grid
		}
		for i := 0; i < grid; i++ {
			v := a.Data[base+i]
			if v != sentinel && !math.IsNaN(v) {
				out.Data[i]++
			}
		}
	}
	return out
}

// MeanTime averages per pixel over time, skipping the sentinel. Pixels with
// no usable observations come back as the sentinel.
func (a *DataArray) MeanTime(sentinel float64) *DataArray {
	out := FilledArray(a.Name, 0, a.Height, a.Width, sentinel)
	grid := a.Height * a.Width
	steps := a.Steps
	if steps == 0 {
		steps = 1
	}
	for i := 0; i < grid; i++ {
		var sum float64
		var n int
		for t := 0; t < steps; t++ {
			idx := i
			if a.Steps > 0 {
				idx = t*grid + i
			}
			v := a.Data[idx]
			if v == sentinel || math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			out.Data[i] = sum / float64(n)
		}
	}
	return out
}

// MedianTime takes the per-pixel median over time, skipping the sentinel.
// An even observation count averages the two middle values. Pixels with no
// usable observations come back as the sentinel.
func (a *DataArray) MedianTime(sentinel float64) *DataArray {
	out := FilledArray(a.Name, 0, a.Height, a.Width, sentinel)
	grid := a.Height * a.Width
	steps := a.Steps
	if steps == 0 {
		steps = 1
	}
	scratch := make([]float64, 0, steps)
	for i := 0; i < grid; i++ {
		scratch = scratch[:0]
		for t := 0; t < steps; t++ {
			idx := i
			if a.Steps > 0 {
				idx = t*grid + i
			}
			v := a.Data[idx]
			if v == sentinel || math.IsNaN(v) {
				continue
			}
			scratch = append(scratch, v)
		}
		if len(scratch) == 0 {
			continue
		}
		sort.Float64s(scratch)
		mid := len(scratch) / 2
		if len(scratch)%2 == 1 {
			out.Data[i] = scratch[mid]
		} else {
			out.Data[i] = (scratch[mid-1] + scratch[mid]) / 2
		}
	}
	return out
}
