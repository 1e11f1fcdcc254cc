package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/forest-guardian/landcube/internal/ingest"
	"github.com/forest-guardian/landcube/internal/properties"
)

// ListRegions handles the UI for viewing the available region collections
func ListRegions() {
	files, err := os.ReadDir(properties.GeojsonsPath())
	if err != nil {
		PrintError(fmt.Sprintf("Error reading geojsons folder: %s", err.Error()))
		return
	}

	PrintWarning("To add a new region, add its '.geojson' file at 'data/geojsons' folder with a 'region_id' property per feature.")

	fmt.Printf("\n%sAvailable regions:%s\n", ColorGreen, ColorReset)
	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".geojson") {
			continue
		}
		collection := strings.TrimSuffix(file.Name(), ".geojson")

		ids, err := ingest.ListRegionIDs(collection)
		if err != nil {
			PrintError(fmt.Sprintf("Error reading regions from %s: %s", collection, err.Error()))
			continue
		}
		fmt.Printf("%s- %s: %s%s\n", ColorGreen, collection, strings.Join(ids, ", "), ColorReset)
	}
}
