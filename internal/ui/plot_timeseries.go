package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/datacube"
	"github.com/forest-guardian/landcube/internal/indices"
	"github.com/forest-guardian/landcube/internal/plot"
)

var indexChoices = []string{"ndvi", "ndre", "ndmi", "psri", "evi", "evi2"}

var plotKinds = []struct {
	title string
	kind  plot.PlotKind
}{
	{"Line of per-acquisition means", plot.KindLine},
	{"Box plot of the pixel distribution", plot.KindBox},
	{"Scatter of per-acquisition medians", plot.KindScatter},
	{"Polynomial trend fit", plot.KindPoly},
	{"Gaussian seasonal curve", plot.KindGaussian},
	{"Cubic spline through the means", plot.KindCubicSpline},
}

// PlotTimeSeries handles the UI for plotting a vegetation index over time
func PlotTimeSeries() {
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

	fmt.Printf("%s\nAvailable indices:%s\n", ColorGreen, ColorReset)
	for i, name := range indexChoices {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, strings.ToUpper(name), ColorReset)
	}
	indexChoice, err := ReadInt("Enter the number of the index you want to plot: ", 1, len(indexChoices))
	if err != nil {
		PrintError(err.Error())
		return
	}
	index := indexChoices[indexChoice-1]

	fmt.Printf("%s\nPlot kinds:%s\n", ColorGreen, ColorReset)
	for i, k := range plotKinds {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, k.title, ColorReset)
	}
	kindChoice, err := ReadInt("Enter the number of the plot kind you want: ", 1, len(plotKinds))
	if err != nil {
		PrintError(err.Error())
		return
	}
	kind := plotKinds[kindChoice-1].kind

	degree := 0
	if kind == plot.KindPoly {
		degree, err = ReadPositiveInt("Enter the polynomial degree: ")
		if err != nil {
			PrintError(err.Error())
			return
		}
	}

	bin := plot.BinNone
	binInput := ReadString("Bin acquisitions by 'week' or 'month' (empty for none): ")
	switch binInput {
	case "":
	case "week":
		bin = plot.BinWeek
	case "month":
		bin = plot.BinMonth
	default:
		PrintError(fmt.Sprintf("Unknown bin %q. Use 'week', 'month' or leave it empty.", binInput))
		return
	}

	client := datacube.NewClient(cat)
	ds, err := client.GetDatasetByExtent(product, datacube.QueryOptions{
		Start:     &startDate,
		End:       &endDate,
		Latitude:  &latRange,
		Longitude: &lonRange,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error loading the scene stack: %s", err.Error()))
		return
	}
	if ds.IsEmpty() {
		PrintError("No scenes matched the extent and time window.")
		return
	}

	if err := addIndexBand(ds, index); err != nil {
		PrintError(err.Error())
		return
	}

	resultPath, err := CreateResultDirectory(product, "plots")
	if err != nil {
		PrintError(err.Error())
		return
	}
	name := fmt.Sprintf("%s_%s_%s_%s.png", index, kind, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	outPath := filepath.Join(resultPath, name)

	descs := []plot.PlotDesc{{Band: index, Kind: kind, Degree: degree}}
	opts := plot.TimeSeriesOptions{
		Title: fmt.Sprintf("%s over time", strings.ToUpper(index)),
		Bin:   bin,
	}
	if err := plot.TimeSeriesPlot(ds, descs, opts, outPath); err != nil {
		PrintError(fmt.Sprintf("Error rendering plot: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Plot written to %s", outPath))
}

// addIndexBand cloud-masks the stack and attaches the requested index band.
func addIndexBand(ds *cube.Dataset, index string) error {
	clean, err := datacube.CleanMask(ds)
	if err != nil {
		return err
	}
	if err := ds.MaskNoData(clean); err != nil {
		return err
	}

	var arr *cube.DataArray
	switch index {
	case "ndvi":
		arr, err = indices.NDVI(ds)
	case "ndre":
		arr, err = indices.NDRE(ds)
	case "ndmi":
		arr, err = indices.NDMI(ds)
	case "psri":
		arr, err = indices.PSRI(ds)
	case "evi":
		arr, err = indices.EVI(ds, indices.DefaultEVIOptions())
	case "evi2":
		arr, err = indices.EVI2(ds, indices.DefaultEVI2Options())
	default:
		return fmt.Errorf("unknown index %q", index)
	}
	if err != nil {
		return err
	}
	ds.SetBand(arr)
	return nil
}
