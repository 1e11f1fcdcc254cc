package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/forest-guardian/landcube/internal/datacube"
	"github.com/forest-guardian/landcube/internal/notification"
	"github.com/forest-guardian/landcube/output"
)

var compositeMethods = []struct {
	title  string
	method datacube.CompositeMethod
}{
	{"Most recent clear pixel", datacube.CompositeMostRecent},
	{"Least recent clear pixel", datacube.CompositeLeastRecent},
	{"Greenest pixel (max NDVI)", datacube.CompositeMaxNDVI},
	{"Brownest pixel (min NDVI)", datacube.CompositeMinNDVI},
	{"Iterative timeseries fill", datacube.CompositeTimeseries},
}

// RunComposite handles the UI for building a cloud-free composite over an
// extent and saving it as a GeoTIFF
func RunComposite() {
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

	fmt.Printf("%s\nComposite methods:%s\n", ColorGreen, ColorReset)
	for i, m := range compositeMethods {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, m.title, ColorReset)
	}
	methodChoice, err := ReadInt("Enter the number of the method you want to use: ", 1, len(compositeMethods))
	if err != nil {
		PrintError(err.Error())
		return
	}
	method := compositeMethods[methodChoice-1].method

	geoChunk, err := ReadOptionalFloat("Enter the geographic chunk size in square degrees (empty for none): ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	var timeChunks *int
	chunksInput := ReadString("Enter the number of time chunks (empty for none): ")
	if chunksInput != "" {
		chunks, err := strconv.Atoi(chunksInput)
		if err != nil || chunks < 1 {
			PrintError(fmt.Sprintf("Invalid number of time chunks: %s", chunksInput))
			return
		}
		timeChunks = &chunks
	}

	client := datacube.NewClient(cat)
	params := datacube.CompositeParams{
		Product:      product,
		Latitude:     latRange,
		Longitude:    lonRange,
		Start:        &startDate,
		End:          &endDate,
		Method:       method,
		GeoChunkSize: geoChunk,
		TimeChunks:   timeChunks,
	}

	started := time.Now()
	ds, err := datacube.RunComposite(client, params)
	notification.NotifyJob(fmt.Sprintf("Landcube %s composite of %s", method, product), time.Since(started), err)
	if err != nil {
		PrintError(fmt.Sprintf("Error running composite: %s", err.Error()))
		return
	}
	if ds.IsEmpty() {
		PrintError("No scenes matched the extent and time window.")
		return
	}

	resultPath, err := CreateResultDirectory(product, "composites")
	if err != nil {
		PrintError(err.Error())
		return
	}

	name := fmt.Sprintf("%s_%s_%s.tif", method, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	outPath := filepath.Join(resultPath, name)
	if err := output.SaveToGeoTIFF(outPath, ds, output.GeoTIFFOptions{}); err != nil {
		PrintError(fmt.Sprintf("Error writing GeoTIFF: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Composite with %d bands written to %s", len(ds.BandNames()), outPath))
}
