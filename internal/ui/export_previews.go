package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forest-guardian/landcube/internal/plot"
	"github.com/forest-guardian/landcube/output"
)

// ExportPreviews handles the UI for rendering PNG previews from a banded
// GeoTIFF
func ExportPreviews() {
	PrintWarning("Expects a banded GeoTIFF produced by a composite run or a fetched scene.")

	tifPath := ReadString("Enter the GeoTIFF path: ")
	if tifPath == "" {
		PrintError("The GeoTIFF path cannot be empty.")
		return
	}
	base := strings.TrimSuffix(tifPath, ".tif")

	rgbInput := ReadString("Enter the red,green,blue band indices (e.g. 1,2,3, empty to skip): ")
	if rgbInput != "" {
		bands, err := parseBandTriple(rgbInput)
		if err != nil {
			PrintError(err.Error())
			return
		}

		pngPath := base + "_rgb.png"
		if err := output.CreateRGBPNGFromTIFF(tifPath, pngPath, bands, nil, "", nil); err != nil {
			PrintError(fmt.Sprintf("Error rendering RGB preview: %s", err.Error()))
			return
		}
		PrintSuccess(fmt.Sprintf("RGB preview written to %s", pngPath))
	}

	bandInput := ReadString("Enter a band index for a colormapped preview (empty to skip): ")
	if bandInput != "" {
		band, err := strconv.Atoi(bandInput)
		if err != nil || band < 1 {
			PrintError(fmt.Sprintf("Invalid band index: %s", bandInput))
			return
		}

		lo, err := ReadFloat("Enter the minimum of the color scale: ")
		if err != nil {
			PrintError(err.Error())
			return
		}
		hi, err := ReadFloat("Enter the maximum of the color scale: ")
		if err != nil {
			PrintError(err.Error())
			return
		}
		if hi <= lo {
			PrintError("The scale maximum must be above the minimum.")
			return
		}

		pngPath := fmt.Sprintf("%s_band%d.png", base, band)
		scale := plot.Viridis([2]float64{lo, hi})
		if err := output.CreateSingleBandRGB(tifPath, band, scale, pngPath, nil); err != nil {
			PrintError(fmt.Sprintf("Error rendering band preview: %s", err.Error()))
			return
		}
		PrintSuccess(fmt.Sprintf("Band preview written to %s", pngPath))
	}
}

// parseBandTriple parses "r,g,b" into 1-based band indices.
func parseBandTriple(input string) ([3]int, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("invalid format. Please use r,g,b")
	}

	var bands [3]int
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 1 {
			return [3]int{}, fmt.Errorf("invalid band index: %s", part)
		}
		bands[i] = value
	}
	return bands, nil
}
