package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/forest-guardian/landcube/internal/composite"
	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/datacube"
	"github.com/forest-guardian/landcube/internal/indices"
	"github.com/forest-guardian/landcube/internal/notification"
	"github.com/forest-guardian/landcube/internal/plot"
	"github.com/forest-guardian/landcube/internal/report"
	"github.com/forest-guardian/landcube/internal/task"
	"github.com/forest-guardian/landcube/output"
)

// AnalyzeAnomaly handles the UI for comparing a scene against the median
// NDVI of a baseline window
func AnalyzeAnomaly() {
	PrintWarning("Scenes must already be fetched for both the baseline window and the scene date.")

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

	fmt.Printf("%s\nBaseline window:%s\n", ColorBlue, ColorReset)
	baselineStart, baselineEnd, err := ReadDateRange()
	if err != nil {
		PrintError(err.Error())
		return
	}

	fmt.Printf("%s\nScene to analyze:%s\n", ColorBlue, ColorReset)
	sceneDate, err := ReadDate("Enter the scene date (YYYY-MM-DD): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	searchDays, err := ReadPositiveInt("Enter number of days to search back for a clear scene: ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	sceneStart := sceneDate.AddDate(0, 0, -searchDays)

	client := datacube.NewClient(cat)
	started := time.Now()
	anomaly, err := computeAnomaly(client, product, latRange, lonRange, baselineStart, baselineEnd, sceneStart, sceneDate)
	notification.NotifyJob(fmt.Sprintf("Landcube NDVI anomaly for %s", product), time.Since(started), err)
	if err != nil {
		PrintError(err.Error())
		return
	}

	resultPath, err := CreateResultDirectory(product, "anomalies")
	if err != nil {
		PrintError(err.Error())
		return
	}

	name := fmt.Sprintf("anomaly_%s", sceneDate.Format("2006-01-02"))
	tifPath := filepath.Join(resultPath, name+".tif")
	if err := output.SaveToGeoTIFF(tifPath, anomaly, output.GeoTIFFOptions{BandOrder: indices.AnomalyBands}); err != nil {
		PrintError(fmt.Sprintf("Error writing GeoTIFF: %s", err.Error()))
		return
	}

	diff, _ := anomaly.Band("ndvi_difference")
	pngPath := filepath.Join(resultPath, name+".png")
	if err := plot.Heatmap(diff, anomaly.Lats, anomaly.Lons, nil, plot.HeatmapOptions{Title: "NDVI difference against baseline"}, pngPath); err != nil {
		PrintError(fmt.Sprintf("Error rendering heatmap: %s", err.Error()))
		return
	}

	valid, declined := countDeclines(diff.Data, anomaly.NoData)
	htmlPath := filepath.Join(resultPath, name+".html")
	rep := report.AnalysisReport{
		Title:     "NDVI anomaly",
		Product:   product,
		Generated: time.Now().UTC(),
		Summary: []report.SummaryItem{
			{Label: "Scene", Value: sceneDate.Format("2006-01-02")},
			{Label: "Baseline", Value: fmt.Sprintf("%s to %s", baselineStart.Format("2006-01-02"), baselineEnd.Format("2006-01-02"))},
			{Label: "Declined pixels", Value: fmt.Sprintf("%d of %d", declined, valid)},
		},
		Anomaly: anomaly,
		NoData:  anomaly.NoData,
	}
	if err := report.BuildAnalysisReport(rep, htmlPath); err != nil {
		PrintError(fmt.Sprintf("Error building report: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Successful analysis!\n Anomaly bands located at: %s\n Difference heatmap located at: %s\n Report located at: %s", tifPath, pngPath, htmlPath))
}

// computeAnomaly loads the baseline stack and a mosaicked scene on the same
// grid and compares their NDVI.
func computeAnomaly(client *datacube.Client, product string, latRange, lonRange task.Range, baselineStart, baselineEnd, sceneStart, sceneEnd time.Time) (*cube.Dataset, error) {
	baseOpts := datacube.QueryOptions{
		Latitude:  &latRange,
		Longitude: &lonRange,
	}

	baselineOpts := baseOpts
	baselineOpts.Start = &baselineStart
	baselineOpts.End = &baselineEnd
	baseline, err := client.GetDatasetByExtent(product, baselineOpts)
	if err != nil {
		return nil, fmt.Errorf("error loading the baseline stack: %s", err.Error())
	}
	if baseline.IsEmpty() {
		return nil, fmt.Errorf("no scenes matched the baseline window")
	}
	baselineClean, err := datacube.CleanMask(baseline)
	if err != nil {
		return nil, err
	}

	sceneOpts := baseOpts
	sceneOpts.Start = &sceneStart
	sceneOpts.End = &sceneEnd
	sceneStack, err := client.GetDatasetByExtent(product, sceneOpts)
	if err != nil {
		return nil, fmt.Errorf("error loading the scene: %s", err.Error())
	}
	if sceneStack.IsEmpty() {
		return nil, fmt.Errorf("no scenes matched the scene window")
	}
	stackClean, err := datacube.CleanMask(sceneStack)
	if err != nil {
		return nil, err
	}
	if err := sceneStack.MaskNoData(stackClean); err != nil {
		return nil, err
	}
	scene, err := composite.MostRecentMosaic(sceneStack)
	if err != nil {
		return nil, err
	}
	sceneClean, err := datacube.CleanMask(scene)
	if err != nil {
		return nil, err
	}

	return indices.ComputeNDVIAnomaly(baseline, scene, baselineClean, sceneClean)
}

// countDeclines tallies the valid difference pixels and those that dropped
// more than a tenth of an NDVI unit.
func countDeclines(diffs []float64, noData float64) (valid, declined int) {
	for _, v := range diffs {
		if v == noData || math.IsNaN(v) {
			continue
		}
		valid++
		if v <= -0.1 {
			declined++
		}
	}
	return valid, declined
}
