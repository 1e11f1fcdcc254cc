// Package report assembles interactive HTML analysis reports from index
// time series and anomaly grids.
package report

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/plot"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// maxHeatmapCells caps the anomaly payload; larger grids are strided down
// so the report stays loadable in a browser.
const maxHeatmapCells = 20000

// IndexSeries is one vegetation index aggregated per acquisition.
type IndexSeries struct {
	Name   string
	Times  []time.Time
	Values []float64
}

// SummaryItem is one header fact, rendered as "Label: Value".
type SummaryItem struct {
	Label string
	Value string
}

// AnalysisReport is everything one report page shows: a summary header,
// a line chart of index series over time and an optional anomaly heatmap.
type AnalysisReport struct {
	Title       string
	Product     string
	Region      string
	Generated   time.Time
	Summary     []SummaryItem
	Series      []IndexSeries
	Anomaly     *cube.Dataset
	AnomalyBand string
	NoData      float64
}

// BuildAnalysisReport renders the report as a standalone HTML file.
func BuildAnalysisReport(rep AnalysisReport, path string) error {
	if len(rep.Series) == 0 && rep.Anomaly == nil {
		return fmt.Errorf("report has nothing to render")
	}

	page := components.NewPage()
	if len(rep.Series) > 0 {
		line, err := indexLineChart(rep)
		if err != nil {
			return err
		}
		page.AddCharts(line)
	}
	if rep.Anomaly != nil {
		hm, err := anomalyHeatmap(rep)
		if err != nil {
			return err
		}
		page.AddCharts(hm)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// subtitle folds the product, region, generation time and summary items
// into the chart subtitle.
func subtitle(rep AnalysisReport) string {
	parts := make([]string, 0, len(rep.Summary)+3)
	if rep.Product != "" {
		parts = append(parts, "product="+rep.Product)
	}
	if rep.Region != "" {
		parts = append(parts, "region="+rep.Region)
	}
	if !rep.Generated.IsZero() {
		parts = append(parts, rep.Generated.UTC().Format(time.RFC3339))
	}
	for _, item := range rep.Summary {
		parts = append(parts, fmt.Sprintf("%s: %s", item.Label, item.Value))
	}
	return strings.Join(parts, "  ")
}

func indexLineChart(rep AnalysisReport) (*charts.Line, error) {
	noData := rep.NoData
	if noData == 0 {
		noData = cube.NoDataValue
	}

	var dates []string
	seen := map[string]bool{}
	for _, s := range rep.Series {
		if len(s.Times) != len(s.Values) {
			return nil, fmt.Errorf("series %s has %d times for %d values", s.Name, len(s.Times), len(s.Values))
		}
		for _, ts := range s.Times {
			day := ts.UTC().Format("2006-01-02")
			if !seen[day] {
				seen[day] = true
				dates = append(dates, day)
			}
		}
	}

	title := rep.Title
	if title == "" {
		title = "Vegetation Index Time Series"
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle(rep)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Index value"}),
	)

	byDay := func(s IndexSeries) map[string]float64 {
		m := make(map[string]float64, len(s.Times))
		for i, ts := range s.Times {
			m[ts.UTC().Format("2006-01-02")] = s.Values[i]
		}
		return m
	}
	line.SetXAxis(dates)
	for _, s := range rep.Series {
		values := byDay(s)
		data := make([]opts.LineData, len(dates))
		for i, day := range dates {
			v, ok := values[day]
			if !ok || math.IsNaN(v) || v == noData {
				data[i] = opts.LineData{Value: nil}
				continue
			}
			data[i] = opts.LineData{Value: round4(v)}
		}
		line.AddSeries(s.Name, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line, nil
}

func anomalyHeatmap(rep AnalysisReport) (*charts.HeatMap, error) {
	ds := rep.Anomaly
	bandName := rep.AnomalyBand
	if bandName == "" {
		bandName = "ndvi_difference"
	}
	arr, ok := ds.Band(bandName)
	if !ok {
		return nil, fmt.Errorf("band %s not in anomaly dataset", bandName)
	}
	if arr.TimeVarying() {
		return nil, fmt.Errorf("anomaly band %s is time stacked, composite first", bandName)
	}
	noData := rep.NoData
	if noData == 0 {
		noData = ds.NoData
	}

	stride := 1
	for (arr.Width/stride)*(arr.Height/stride) > maxHeatmapCells {
		stride++
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var data []opts.HeatMapData
	var xLabels []string
	// Rows are emitted south-first so the chart reads north-up.
	for y := arr.Height - 1; y >= 0; y -= stride {
		for x := 0; x < arr.Width; x += stride {
			v := arr.At(0, y, x)
			if math.IsNaN(v) || v == noData {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{x / stride, (arr.Height - 1 - y) / stride, round4(v)},
			})
		}
	}
	if lo > hi {
		return nil, fmt.Errorf("anomaly band %s has no valid pixels", bandName)
	}
	if lo == hi {
		hi = lo + 1
	}
	for x := 0; x < arr.Width; x += stride {
		xLabels = append(xLabels, fmt.Sprintf("%.4f", ds.Lons[x]))
	}
	var yLabels []string
	for y := arr.Height - 1; y >= 0; y -= stride {
		yLabels = append(yLabels, fmt.Sprintf("%.4f", ds.Lats[y]))
	}

	ramp := plot.Viridis([2]float64{lo, hi})
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Anomaly", Width: "1100px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Anomaly: %s", bandName), Subtitle: subtitle(rep)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Longitude"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "Latitude", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: ramp.HexColors(10)},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries(bandName, data)
	return hm, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
