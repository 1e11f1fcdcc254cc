package ui

import (
	"fmt"
	"os"
)

type menuOption struct {
	title   string
	handler func()
}

// ShowMenu displays the main menu and handles user input
func ShowMenu() {
	menuOptions := []menuOption{
		{"Fetch scenes from Copernicus for a region", FetchScenes},
		{"Run a cloud-free composite over an extent", RunComposite},
		{"Detect NDVI anomalies against a baseline window", AnalyzeAnomaly},
		{"Plot a vegetation index over time", PlotTimeSeries},
		{"Map class membership changes between two periods", PlotClassChanges},
		{"Render PNG previews from a scene GeoTIFF", ExportPreviews},
		{"Build an HTML analysis report", BuildReport},
		{"View the indexed products and platforms", ListProducts},
		{"View the acquisition dates of a product", ListAcquisitions},
		{"View the list of available regions", ListRegions},
		{"Exit the application", func() { fmt.Println("Exiting..."); os.Exit(0) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}
		fmt.Println("\033[34mPlease enter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln() // Clear the buffer
			continue
		}

		if choice < 1 || choice > len(menuOptions) {
			fmt.Println("\033[31mInvalid choice. Please try again.\033[0m")
			continue
		}

		menuOptions[choice-1].handler()
	}
}
