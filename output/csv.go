package output

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/forest-guardian/landcube/internal/cube"
)

// BandStat is one summary row of a dataset band, nodata excluded.
type BandStat struct {
	Band   string  `csv:"band"`
	Count  int     `csv:"count"`
	Mean   float64 `csv:"mean"`
	Median float64 `csv:"median"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
}

// GroundTruthRecord is one labelled observation used to check anomaly
// output against field data. Dates stay as strings the way the source
// spreadsheets carry them.
type GroundTruthRecord struct {
	Region    string  `csv:"region"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
	Date      string  `csv:"date"`
	Label     string  `csv:"label"`
}

// ComputeBandStats summarizes every band of a dataset. Bands with no real
// observations get a zero Count and NaN statistics are avoided.
func ComputeBandStats(ds *cube.Dataset) []BandStat {
	var stats []BandStat
	for _, name := range ds.BandNames() {
		arr, _ := ds.Band(name)
		values := make([]float64, 0, len(arr.Data))
		for _, v := range arr.Data {
			if v == ds.NoData || math.IsNaN(v) {
				continue
			}
			values = append(values, v)
		}

		stat := BandStat{Band: name, Count: len(values)}
		if len(values) > 0 {
			sort.Float64s(values)
			stat.Min = values[0]
			stat.Max = values[len(values)-1]
			sum := 0.0
			for _, v := range values {
				sum += v
			}
			stat.Mean = sum / float64(len(values))
			mid := len(values) / 2
			if len(values)%2 == 0 {
				stat.Median = (values[mid-1] + values[mid]) / 2
			} else {
				stat.Median = values[mid]
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

// WriteStatsCSV writes band statistics rows to a CSV file.
func WriteStatsCSV(path string, stats []BandStat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&stats, file); err != nil {
		return fmt.Errorf("failed to write CSV using gocsv: %w", err)
	}
	return nil
}

// ReadGroundTruthCSV loads labelled field observations.
func ReadGroundTruthCSV(path string) ([]GroundTruthRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []GroundTruthRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("failed to read CSV using gocsv: %w", err)
	}
	return records, nil
}
