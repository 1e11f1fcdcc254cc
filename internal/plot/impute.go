package plot

import "math"

// ImputeMissingData1D fills interior NaN gaps in a series by linear
// interpolation between the nearest real values on either side. Leading and
// trailing NaNs are kept, and a series with fewer than two real values comes
// back unchanged.
func ImputeMissingData1D(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)

	first, last := -1, -1
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || first == last {
		return out
	}

	prev := first
	for i := first + 1; i <= last; i++ {
		if math.IsNaN(data[i]) {
			continue
		}
		if i > prev+1 {
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / span
				out[j] = data[prev] + frac*(data[i]-data[prev])
			}
		}
		prev = i
	}
	return out
}
