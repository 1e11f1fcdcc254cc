// Package task splits large cube queries into geographic and temporal
// chunks that fit in memory, and recombines their extents.
package task

import (
	"fmt"
	"math"
	"time"

	"github.com/forest-guardian/landcube/internal/utils"
)

// DefaultResolution is the grid step assumed when none is given, in degrees
// (roughly 30 m at the equator).
const DefaultResolution = 0.000269

// Range is an inclusive coordinate interval.
type Range struct {
	Lower, Upper float64
}

func (r Range) Size() float64 { return r.Upper - r.Lower }

// SplitParams describe one query to be chunked. Latitude and Longitude are
// optional; omitting them requests the full dataset extent. GeoChunkSize is
// the maximum square-degree area per chunk, TimeChunks the number of
// temporal chunks to split the acquisitions into.
type SplitParams struct {
	Resolution   float64
	Latitude     *Range
	Longitude    *Range
	Acquisitions []time.Time
	GeoChunkSize *float64
	TimeChunks   *int
	ReverseTime  bool
}

// Split is the chunked query: parallel lat/lon range lists (a nil entry
// stands for an unbounded extent) and acquisition runs. Every lat/lon pair
// is combined with every time range by the executor.
type Split struct {
	LatRanges  []*Range
	LonRanges  []*Range
	TimeRanges [][]time.Time
}

// SplitTask chunks a query area by latitude bands whose area stays under
// GeoChunkSize, and the acquisition list into TimeChunks runs. All bands
// keep the full longitude extent. Adjacent bands are separated by one
// resolution step so chunk grids do not overlap.
func SplitTask(p SplitParams) (Split, error) {
	resolution := p.Resolution
	if resolution == 0 {
		resolution = DefaultResolution
	}
	if resolution < 0 {
		return Split{}, fmt.Errorf("resolution must be positive, got %v", resolution)
	}

	var out Split
	if p.Latitude != nil && p.Longitude != nil {
		if p.Latitude.Size() < 0 || p.Longitude.Size() < 0 {
			return Split{}, fmt.Errorf("range bounds are inverted")
		}
		squareArea := p.Longitude.Size() * p.Latitude.Size()
		if p.GeoChunkSize != nil && *p.GeoChunkSize > 0 && squareArea > *p.GeoChunkSize {
			geographicChunks := int(math.Ceil(squareArea / *p.GeoChunkSize))
			latRangeSize := p.Latitude.Size() / float64(geographicChunks)
			count := int(math.Ceil(p.Latitude.Size() / latRangeSize))
			for i := 0; i < count; i++ {
				lower := p.Latitude.Lower + float64(i)*latRangeSize
				upper := p.Latitude.Lower + float64(i+1)*latRangeSize
				if i != geographicChunks-1 {
					upper -= resolution
				}
				out.LatRanges = append(out.LatRanges, &Range{Lower: lower, Upper: upper})
				out.LonRanges = append(out.LonRanges, &Range{Lower: p.Longitude.Lower, Upper: p.Longitude.Upper})
			}
		} else {
			out.LatRanges = []*Range{{Lower: p.Latitude.Lower, Upper: p.Latitude.Upper}}
			out.LonRanges = []*Range{{Lower: p.Longitude.Lower, Upper: p.Longitude.Upper}}
		}
	} else {
		out.LatRanges = []*Range{nil}
		out.LonRanges = []*Range{nil}
	}

	sorted := utils.SortDates(append([]time.Time(nil), p.Acquisitions...), true)
	ordered := sorted
	if p.ReverseTime {
		ordered = utils.ReverseDates(sorted)
	}
	if p.TimeChunks != nil && *p.TimeChunks > 0 && len(ordered) > 0 {
		chunkSize := int(math.Ceil(float64(len(ordered)) / float64(*p.TimeChunks)))
		out.TimeRanges = utils.Chunks(ordered, chunkSize)
	} else {
		out.TimeRanges = [][]time.Time{ordered}
	}

	return out, nil
}

// GenerateTimeRanges walks an acquisition list in runs of
// slicesPerIteration and yields inclusive (start, end) windows suitable for
// catalog queries. A one second offset keeps back-to-back windows from
// re-including a boundary acquisition; reversed lists get the offset on the
// start side. slicesPerIteration < 1 produces a single window spanning the
// whole list.
func GenerateTimeRanges(acquisitions []time.Time, reverseTime bool, slicesPerIteration int) [][2]time.Time {
	var out [][2]time.Time
	i := 0
	for i < len(acquisitions) {
		start := acquisitions[i]
		if reverseTime {
			start = start.Add(time.Second)
		}
		var end time.Time
		if slicesPerIteration > 0 && i+slicesPerIteration-1 < len(acquisitions) {
			end = acquisitions[i+slicesPerIteration-1]
		} else {
			end = acquisitions[len(acquisitions)-1]
			if !reverseTime {
				end = end.Add(time.Second)
			}
		}
		if end.Before(start) {
			start, end = end, start
		}
		out = append(out, [2]time.Time{start, end})
		if slicesPerIteration > 0 {
			i += slicesPerIteration
		} else {
			i += len(acquisitions)
		}
	}
	return out
}
