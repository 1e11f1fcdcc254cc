package ui

import (
	"fmt"
	"strings"

	"github.com/forest-guardian/landcube/internal/datacube"
)

// ListProducts handles the UI for viewing the indexed products and their
// platforms
func ListProducts() {
	cat, err := OpenCatalog()
	if err != nil {
		PrintError(err.Error())
		return
	}
	defer cat.Close()

	client := datacube.NewClient(cat)
	products, err := client.GetDatacubeMetadata()
	if err != nil {
		PrintError(fmt.Sprintf("Error reading products from the catalog: %s", err.Error()))
		return
	}

	if len(products) == 0 {
		PrintWarning("No products indexed yet. Fetch scenes to populate the catalog.")
		return
	}

	fmt.Printf("\n%sIndexed products:%s\n", ColorGreen, ColorReset)
	for _, p := range products {
		fmt.Printf("%s- %s (%d scenes, platforms: %s, window: %s to %s)%s\n", ColorGreen,
			p.Product, p.SceneCount, strings.Join(p.Platforms, ", "),
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"), ColorReset)
	}
}

// ListAcquisitions handles the UI for viewing the acquisition dates of a
// product
func ListAcquisitions() {
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

	client := datacube.NewClient(cat)
	dates, err := client.ListAcquisitionDates(product, datacube.QueryOptions{})
	if err != nil {
		PrintError(fmt.Sprintf("Error reading acquisition dates: %s", err.Error()))
		return
	}

	if len(dates) == 0 {
		PrintWarning("No acquisitions indexed for this product yet.")
		return
	}

	fmt.Printf("\n%s%d acquisitions:%s\n", ColorGreen, len(dates), ColorReset)
	for _, date := range dates {
		fmt.Printf("%s- %s%s\n", ColorGreen, date.Format("2006-01-02"), ColorReset)
	}
}
