// Package mask builds boolean clean masks from QA bands. True marks a pixel
// that is usable for analysis.
package mask

import (
	"fmt"
	"math"

	"github.com/forest-guardian/landcube/internal/cube"
)

// cfmask values: 0 clear, 1 water, 2 cloud shadow, 3 snow, 4 cloud, 255 fill.
// Clear land and open water both count as usable.
var cfmaskInvalid = map[float64]bool{2: true, 3: true, 4: true, 255: true}

// CFMaskClean returns the clean mask for a cf_mask band from ledaps products.
func CFMaskClean(arr *cube.DataArray, noData float64) []bool {
	mask := make([]bool, len(arr.Data))
	for i, v := range arr.Data {
		mask[i] = !cfmaskInvalid[v] && v != noData && !math.IsNaN(v)
	}
	return mask
}

// Sentinel-2 scene classification values that invalidate a pixel:
// 3 cloud shadow, 8 cloud medium probability, 9 cloud high probability,
// 10 thin cirrus.
var sclInvalid = map[float64]bool{3: true, 8: true, 9: true, 10: true}

// SentinelClear builds the clean mask for Sentinel-2 L2A scenes from the SCL
// classification and the CLD cloud-probability band. Any reported cloud
// probability invalidates the pixel.
func SentinelClear(scl, cld *cube.DataArray) ([]bool, error) {
	if len(scl.Data) != len(cld.Data) {
		return nil, fmt.Errorf("scl has %d values, cld has %d", len(scl.Data), len(cld.Data))
	}
	mask := make([]bool, len(scl.Data))
	for i := range scl.Data {
		mask[i] = !sclInvalid[scl.Data[i]] && cld.Data[i] <= 0
	}
	return mask, nil
}

// BitMask unpacks a QA band: a pixel is clean when any of the valid bits is
// set. Landsat collection-1 pixel_qa uses bits 1 (clear) and 2 (water).
func BitMask(arr *cube.DataArray, validBits []uint, noData float64) []bool {
	var valid int64
	for _, bit := range validBits {
		valid |= 1 << bit
	}
	mask := make([]bool, len(arr.Data))
	for i, v := range arr.Data {
		if v == noData || math.IsNaN(v) {
			continue
		}
		mask[i] = int64(v)&valid != 0
	}
	return mask
}

// QACover names a single pixel_qa cover class.
type QACover string

const (
	QAFill   QACover = "fill"
	QAClear  QACover = "clear"
	QAWater  QACover = "water"
	QAShadow QACover = "shadow"
	QASnow   QACover = "snow"
	QACloud  QACover = "cloud"
)

var qaCoverBits = map[QACover]uint{
	QAFill:   0,
	QAClear:  1,
	QAWater:  2,
	QAShadow: 3,
	QASnow:   4,
	QACloud:  5,
}

// UnpackQA extracts a single cover class mask from a Landsat collection-1
// pixel_qa band.
func UnpackQA(arr *cube.DataArray, cover QACover) ([]bool, error) {
	bit, ok := qaCoverBits[cover]
	if !ok {
		return nil, fmt.Errorf("unknown pixel_qa cover %q", cover)
	}
	mask := make([]bool, len(arr.Data))
	for i, v := range arr.Data {
		mask[i] = int64(v)&(1<<bit) != 0
	}
	return mask, nil
}

// And intersects masks. All inputs must have equal length.
func And(masks ...[]bool) ([]bool, error) {
	if len(masks) == 0 {
		return nil, fmt.Errorf("no masks given")
	}
	out := make([]bool, len(masks[0]))
	copy(out, masks[0])
	for _, m := range masks[1:] {
		if len(m) != len(out) {
			return nil, fmt.Errorf("mask length mismatch: %d vs %d", len(m), len(out))
		}
		for i := range out {
			out[i] = out[i] && m[i]
		}
	}
	return out, nil
}

// Or unions masks. All inputs must have equal length.
func Or(masks ...[]bool) ([]bool, error) {
	if len(masks) == 0 {
		return nil, fmt.Errorf("no masks given")
	}
	out := make([]bool, len(masks[0]))
	copy(out, masks[0])
	for _, m := range masks[1:] {
		if len(m) != len(out) {
			return nil, fmt.Errorf("mask length mismatch: %d vs %d", len(m), len(out))
		}
		for i := range out {
			out[i] = out[i] || m[i]
		}
	}
	return out, nil
}

// NotNoData marks pixels that carry a real observation.
func NotNoData(arr *cube.DataArray, noData float64) []bool {
	mask := make([]bool, len(arr.Data))
	for i, v := range arr.Data {
		mask[i] = v != noData && !math.IsNaN(v)
	}
	return mask
}
