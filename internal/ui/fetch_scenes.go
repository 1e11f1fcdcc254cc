package ui

import (
	"fmt"
	"sort"
	"time"

	"github.com/forest-guardian/landcube/internal/ingest"
	"github.com/forest-guardian/landcube/internal/notification"
)

// FetchScenes handles the UI for downloading scenes into the local catalog
func FetchScenes() {
	PrintWarning("- A '.geojson' file with the collection name should be present in data/geojsons folder.\n- The '.geojson' file should contain the desired region in its features identified by region_id.\n- COPERNICUS_CLIENT_ID and COPERNICUS_CLIENT_SECRET must be set.")

	profiles := ingest.Profiles()
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%s\nDownloadable products:%s\n", ColorGreen, ColorReset)
	for i, name := range names {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, name, ColorReset)
	}

	choice, err := ReadInt("Enter the number of the product you want to fetch: ", 1, len(names))
	if err != nil {
		PrintError(err.Error())
		return
	}
	profile := profiles[names[choice-1]]

	region, err := ReadRegion()
	if err != nil {
		PrintError(err.Error())
		return
	}
	defer region.Close()

	startDate, endDate, err := ReadDateRange()
	if err != nil {
		PrintError(err.Error())
		return
	}

	intervalDays, err := ReadPositiveInt("Enter the interval between scenes in days: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	cat, err := OpenCatalog()
	if err != nil {
		PrintError(err.Error())
		return
	}
	defer cat.Close()

	ingestor := &ingest.Ingestor{Catalog: cat, Profile: profile}
	started := time.Now()
	result, err := ingestor.FetchRange(region, startDate, endDate, intervalDays)
	notification.NotifyJob(fmt.Sprintf("Landcube scene fetch for %s", region.ID), time.Since(started), err)
	if err != nil {
		PrintError(fmt.Sprintf("Error fetching scenes: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Fetched %d scenes (%d skipped, %d fully clouded)!", result.Downloaded, result.Skipped, result.Invalid))
}
