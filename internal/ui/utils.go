package ui

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/forest-guardian/landcube/internal/catalog"
	"github.com/forest-guardian/landcube/internal/ingest"
	"github.com/forest-guardian/landcube/internal/properties"
	"github.com/forest-guardian/landcube/internal/task"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	PrintInfo(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	PrintInfo(prompt)
	var input string
	fmt.Scanln(&input)
	input = strings.TrimSpace(input)

	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}

	return value, nil
}

// ReadPositiveInt reads a positive integer from stdin
func ReadPositiveInt(prompt string) (int, error) {
	PrintInfo(prompt)
	var input string
	fmt.Scanln(&input)
	input = strings.TrimSpace(input)

	value, err := strconv.Atoi(input)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid number: %s. Please enter a positive integer", input)
	}

	return value, nil
}

// ReadFloat reads a decimal number from stdin
func ReadFloat(prompt string) (float64, error) {
	input := ReadString(prompt)
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadOptionalFloat reads a decimal number, returning nil when the prompt is
// left empty
func ReadOptionalFloat(prompt string) (*float64, error) {
	input := ReadString(prompt)
	if input == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number: %s", input)
	}
	return &value, nil
}

// ReadDate reads a date from stdin with validation
func ReadDate(prompt string) (time.Time, error) {
	input := ReadString(prompt)
	if input == "today" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s. Please use YYYY-MM-DD", input)
	}
	return date, nil
}

// ReadDateRange reads end date and number of days to calculate start date
func ReadDateRange() (time.Time, time.Time, error) {
	endDate, err := ReadDate("Enter the end date (YYYY-MM-DD): ")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	days, err := ReadPositiveInt("Enter number of days: ")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	startDate := endDate.AddDate(0, 0, -days)
	return startDate, endDate, nil
}

// ReadExtent reads a latitude/longitude bounding box
func ReadExtent() (task.Range, task.Range, error) {
	latMin, err := ReadFloat("Enter the minimum latitude: ")
	if err != nil {
		return task.Range{}, task.Range{}, err
	}
	latMax, err := ReadFloat("Enter the maximum latitude: ")
	if err != nil {
		return task.Range{}, task.Range{}, err
	}
	lonMin, err := ReadFloat("Enter the minimum longitude: ")
	if err != nil {
		return task.Range{}, task.Range{}, err
	}
	lonMax, err := ReadFloat("Enter the maximum longitude: ")
	if err != nil {
		return task.Range{}, task.Range{}, err
	}

	if latMax < latMin || lonMax < lonMin {
		return task.Range{}, task.Range{}, fmt.Errorf("the maximum bounds must not be below the minimum bounds")
	}

	return task.Range{Lower: latMin, Upper: latMax}, task.Range{Lower: lonMin, Upper: lonMax}, nil
}

// OpenCatalog opens the scene index at its configured location
func OpenCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Open(properties.CatalogPath())
	if err != nil {
		return nil, fmt.Errorf("error opening the scene catalog: %s", err.Error())
	}
	return cat, nil
}

// SelectProduct displays the indexed products and returns the selected one
func SelectProduct(cat *catalog.Catalog) (string, error) {
	products, err := cat.Products()
	if err != nil {
		return "", fmt.Errorf("error reading products from the catalog: %s", err.Error())
	}

	if len(products) == 0 {
		return "", fmt.Errorf("no products indexed yet, fetch scenes first")
	}

	fmt.Printf("%s\nAvailable products:%s\n", ColorGreen, ColorReset)
	for i, product := range products {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, product, ColorReset)
	}

	choice, err := ReadInt("Enter the number of the product you want to use: ", 1, len(products))
	if err != nil {
		return "", err
	}

	selected := products[choice-1]
	fmt.Printf("%sYou selected the product: %s%s\n", ColorGreen, selected, ColorReset)

	return selected, nil
}

// ReadRegion asks for a geojson collection, lists its regions and loads the
// selected one
func ReadRegion() (*ingest.Region, error) {
	collection := ReadString("Enter the geojson collection name: ")
	if collection == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	ids, err := ingest.ListRegionIDs(collection)
	if err != nil {
		return nil, fmt.Errorf("error reading regions from the collection: %s", err.Error())
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no region IDs found in the collection")
	}

	fmt.Printf("%s\nAvailable regions:%s\n", ColorGreen, ColorReset)
	for i, id := range ids {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, id, ColorReset)
	}

	choice, err := ReadInt("Enter the number of the region you want to use: ", 1, len(ids))
	if err != nil {
		return nil, err
	}

	return ingest.LoadRegion(collection, ids[choice-1])
}

// CreateResultDirectory creates the result directory structure
func CreateResultDirectory(product, resultType string) (string, error) {
	resultPath := filepath.Join(properties.ResultPath(), product, resultType)
	err := os.MkdirAll(resultPath, os.ModePerm)
	if err != nil {
		return "", fmt.Errorf("failed to create result folder: %v", err)
	}
	return resultPath, nil
}
