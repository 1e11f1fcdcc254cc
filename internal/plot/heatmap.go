package plot

import (
	"fmt"
	"math"
	"os"

	"github.com/forest-guardian/landcube/internal/cube"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// gridXYZ adapts a single-timestep band to the heatmap grid interface.
// Rows are handed out south-first because the plotter grows Y upward,
// while datasets store latitudes north-first.
type gridXYZ struct {
	arr    *cube.DataArray
	lats   []float64
	lons   []float64
	noData float64
}

func (g gridXYZ) Dims() (c, r int) { return g.arr.Width, g.arr.Height }

func (g gridXYZ) X(c int) float64 { return g.lons[c] }

func (g gridXYZ) Y(r int) float64 { return g.lats[g.arr.Height-1-r] }

func (g gridXYZ) Z(c, r int) float64 {
	v := g.arr.At(0, g.arr.Height-1-r, c)
	if v == g.noData {
		return math.NaN()
	}
	return v
}

// HeatmapOptions style the spatial heatmap figure.
type HeatmapOptions struct {
	Title        string
	XLabel       string
	YLabel       string
	WidthInches  float64
	HeightInches float64
	NoData       float64
}

// Heatmap renders a single-timestep band as a colored grid over its
// coordinates, with a horizontal colorbar below. Nodata cells are left
// blank. A nil colormap uses viridis over the valid data range.
func Heatmap(arr *cube.DataArray, lats, lons []float64, cm *Colormap, opts HeatmapOptions, outPath string) error {
	if arr.TimeVarying() {
		return fmt.Errorf("heatmaps take single-timestep bands, composite first")
	}
	if len(lats) != arr.Height || len(lons) != arr.Width {
		return fmt.Errorf("coordinates (%d lats, %d lons) do not fit the %dx%d grid",
			len(lats), len(lons), arr.Width, arr.Height)
	}
	noData := opts.NoData
	if noData == 0 {
		noData = cube.NoDataValue
	}

	if cm == nil {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range arr.Data {
			if v != v || v == noData {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo > hi {
			return fmt.Errorf("band %q has no valid pixels to map", arr.Name)
		}
		if lo == hi {
			hi = lo + 1
		}
		cm = Viridis([2]float64{lo, hi})
	}

	grid := gridXYZ{arr: arr, lats: lats, lons: lons, noData: noData}
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min = cm.Min()
	hm.Max = cm.Max()

	p := gplot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = arr.Name
	}
	p.X.Label.Text = opts.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = "Longitude"
	}
	p.Y.Label.Text = opts.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = "Latitude"
	}
	p.X.Tick.Marker = gplot.ConstantTicks(degreeTicks(lons))
	p.Y.Tick.Marker = gplot.ConstantTicks(degreeTicks(lats))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.Add(hm)

	bar := gplot.New()
	bar.HideY()
	bar.Add(&plotter.ColorBar{ColorMap: cm.ColorMap()})

	width := opts.WidthInches
	if width <= 0 {
		width = 10
	}
	height := opts.HeightInches
	if height <= 0 {
		height = 8
	}

	const barHeight = 0.9 * vg.Inch
	img := vgimg.New(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch)
	dc := draw.New(img)
	p.Draw(draw.Crop(dc, 0, barHeight, 0, 0))
	barCanvas := draw.Crop(dc, vg.Inch/2, 0, -vg.Inch/2, barHeight-vg.Length(height)*vg.Inch)
	bar.Draw(barCanvas)
	return writeCanvasPNG(img, outPath)
}

// degreeTicks labels roughly ten evenly spaced coordinates.
func degreeTicks(coords []float64) []gplot.Tick {
	step := len(coords) / 10
	if step < 1 {
		step = 1
	}
	var ticks []gplot.Tick
	for i := 0; i < len(coords); i += step {
		ticks = append(ticks, gplot.Tick{Value: coords[i], Label: fmt.Sprintf("%.4f", coords[i])})
	}
	return ticks
}

func writeCanvasPNG(img *vgimg.Canvas, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}
