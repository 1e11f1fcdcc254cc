package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/datacube"
	"github.com/forest-guardian/landcube/internal/report"
)

// BuildReport handles the UI for assembling an HTML report of vegetation
// indices over time
func BuildReport() {
	PrintWarning("Scenes must already be fetched for the extent and time window you pick.")

	cat, err := OpenCatalog()
	if err != nil {
		PrintError(err.Error())
		return
	}
	defer cat.Close()

	product, err := SelectProduct(cat)
	if err != nil {
		PrintError(err.Error())
		return
	}

	latRange, lonRange, err := ReadExtent()
	if err != nil {
		PrintError(err.Error())
		return
	}

	startDate, endDate, err := ReadDateRange()
	if err != nil {
		PrintError(err.Error())
		return
	}

	client := datacube.NewClient(cat)
	ds, err := client.GetDatasetByExtent(product, datacube.QueryOptions{
		Start:     &startDate,
		End:       &endDate,
		Latitude:  &latRange,
		Longitude: &lonRange,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error loading the scene stack: %s", err.Error()))
		return
	}
	if ds.IsEmpty() {
		PrintError("No scenes matched the extent and time window.")
		return
	}

	var series []report.IndexSeries
	for _, index := range []string{"ndvi", "evi2"} {
		if err := addIndexBand(ds, index); err != nil {
			PrintError(err.Error())
			return
		}
		arr, _ := ds.Band(index)
		series = append(series, report.IndexSeries{
			Name:   index,
			Times:  ds.Times,
			Values: bandMeans(ds, arr),
		})
	}

	resultPath, err := CreateResultDirectory(product, "reports")
	if err != nil {
		PrintError(err.Error())
		return
	}
	name := fmt.Sprintf("report_%s_%s.html", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	outPath := filepath.Join(resultPath, name)

	rep := report.AnalysisReport{
		Title:     "Vegetation index report",
		Product:   product,
		Generated: time.Now().UTC(),
		Summary: []report.SummaryItem{
			{Label: "Window", Value: fmt.Sprintf("%s to %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))},
			{Label: "Acquisitions", Value: fmt.Sprintf("%d", ds.TimeCount())},
			{Label: "Extent", Value: fmt.Sprintf("%.4f..%.4f / %.4f..%.4f", latRange.Lower, latRange.Upper, lonRange.Lower, lonRange.Upper)},
		},
		Series: series,
		NoData: ds.NoData,
	}
	if err := report.BuildAnalysisReport(rep, outPath); err != nil {
		PrintError(fmt.Sprintf("Error building report: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Report written to %s", outPath))
}

// bandMeans reduces every timestep of a band to the mean of its usable
// pixels, keeping the nodata sentinel where a timestep has none.
func bandMeans(ds *cube.Dataset, arr *cube.DataArray) []float64 {
	out := make([]float64, arr.Steps)
	for t := 0; t < arr.Steps; t++ {
		sum, n := 0.0, 0
		for y := 0; y < arr.Height; y++ {
			for x := 0; x < arr.Width; x++ {
				v := arr.At(t, y, x)
				if math.IsNaN(v) || v == ds.NoData {
					continue
				}
				sum += v
				n++
			}
		}
		if n == 0 {
			out[t] = ds.NoData
		} else {
			out[t] = sum / float64(n)
		}
	}
	return out
}
