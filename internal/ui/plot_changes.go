package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/datacube"
	"github.com/forest-guardian/landcube/internal/indices"
	"github.com/forest-guardian/landcube/internal/plot"
)

// PlotClassChanges handles the UI for mapping where NDVI class membership
// changed between a baseline and an analysis period
func PlotClassChanges() {
	PrintWarning("Scenes must already be fetched for the extent and both time windows.")

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

	fmt.Printf("%s\nAnalysis window:%s\n", ColorBlue, ColorReset)
	analysisStart, analysisEnd, err := ReadDateRange()
	if err != nil {
		PrintError(err.Error())
		return
	}

	threshold, err := ReadFloat("Enter the NDVI threshold for class membership: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	client := datacube.NewClient(cat)
	baseOpts := datacube.QueryOptions{Latitude: &latRange, Longitude: &lonRange}

	baselineMember, err := loadMembership(client, product, baseOpts, baselineStart, baselineEnd, threshold)
	if err != nil {
		PrintError(err.Error())
		return
	}
	analysisMember, err := loadMembership(client, product, baseOpts, analysisStart, analysisEnd, threshold)
	if err != nil {
		PrintError(err.Error())
		return
	}

	resultPath, err := CreateResultDirectory(product, "changes")
	if err != nil {
		PrintError(err.Error())
		return
	}
	name := fmt.Sprintf("ndvi_change_%s_%s.png", baselineEnd.Format("2006-01-02"), analysisEnd.Format("2006-01-02"))
	outPath := filepath.Join(resultPath, name)

	fractions, err := plot.BinaryClassChangePlot(
		[]*cube.DataArray{baselineMember, analysisMember},
		plot.ChangeMapOptions{ClassLabel: "Vegetated"},
		outPath,
	)
	if err != nil {
		PrintError(fmt.Sprintf("Error rendering change map: %s", err.Error()))
		return
	}

	fmt.Printf("\n%sClass fractions:%s\n", ColorGreen, ColorReset)
	fmt.Printf("%s- Never vegetated: %.1f%%%s\n", ColorGreen, fractions[0]*100, ColorReset)
	fmt.Printf("%s- Gained vegetation: %.1f%%%s\n", ColorGreen, fractions[1]*100, ColorReset)
	fmt.Printf("%s- Lost vegetation: %.1f%%%s\n", ColorGreen, fractions[2]*100, ColorReset)
	fmt.Printf("%s- Stayed vegetated: %.1f%%%s\n", ColorGreen, fractions[3]*100, ColorReset)

	PrintSuccess(fmt.Sprintf("Change map written to %s", outPath))
}

// loadMembership loads a window, cloud-masks it and thresholds its NDVI into
// a binary membership stack.
func loadMembership(client *datacube.Client, product string, baseOpts datacube.QueryOptions, start, end time.Time, threshold float64) (*cube.DataArray, error) {
	opts := baseOpts
	opts.Start = &start
	opts.End = &end

	ds, err := client.GetDatasetByExtent(product, opts)
	if err != nil {
		return nil, fmt.Errorf("error loading the scene stack: %s", err.Error())
	}
	if ds.IsEmpty() {
		return nil, fmt.Errorf("no scenes matched the window %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	clean, err := datacube.CleanMask(ds)
	if err != nil {
		return nil, err
	}
	if err := ds.MaskNoData(clean); err != nil {
		return nil, err
	}

	ndvi, err := indices.NDVI(ds)
	if err != nil {
		return nil, err
	}

	member := cube.NewArray("member", ndvi.Steps, ndvi.Height, ndvi.Width)
	for i, v := range ndvi.Data {
		switch {
		case v == ds.NoData || math.IsNaN(v):
			member.Data[i] = cube.NoDataValue
		case v >= threshold:
			member.Data[i] = 1
		default:
			member.Data[i] = 0
		}
	}
	return member, nil
}
