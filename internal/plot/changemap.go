package plot

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/landcube/internal/cube"
)

// ChangeMapOptions style a categorical change raster. Colors must match the
// class count: three for a single period (never, sometimes, always), four
// for a baseline/analysis pair. A nil Colors picks readable defaults. Mask
// pixels override every class with MaskColor.
type ChangeMapOptions struct {
	Colors     []color.Color
	ClassLabel string
	Mask       []bool
	MaskColor  color.Color
	Scale      int
	NoData     float64
}

// classMasks splits pixels of a binary classification stack into never,
// sometimes and always members, counting only usable observations.
func classMasks(arr *cube.DataArray, noData float64) (none, chng, perm []bool) {
	grid := arr.Height * arr.Width
	none = make([]bool, grid)
	chng = make([]bool, grid)
	perm = make([]bool, grid)
	steps := arr.Steps
	if steps == 0 {
		steps = 1
	}
	for i := 0; i < grid; i++ {
		var sum float64
		var count int
		for t := 0; t < steps; t++ {
			v := arr.At(t, i/arr.Width, i%arr.Width)
			if v != v || v == noData {
				continue
			}
			sum += v
			count++
		}
		none[i] = sum == 0
		chng[i] = sum > 0 && sum < float64(count)
		perm[i] = count > 0 && sum == float64(count)
	}
	return none, chng, perm
}

func orMask(a, b []bool) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] || b[i]
	}
	return out
}

func andMask(a, b []bool) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] && b[i]
	}
	return out
}

// BinaryClassChangePlot renders how a binary pixel classification changes.
// One input array colors pixels by never, sometimes or always belonging to
// the class across its acquisitions. Two arrays (baseline, analysis) color
// pixels by whether they ever belonged to the class in each period. Returns
// the pixel fraction of each class in render order.
func BinaryClassChangePlot(arrays []*cube.DataArray, opts ChangeMapOptions, outPath string) ([]float64, error) {
	if len(arrays) != 1 && len(arrays) != 2 {
		return nil, fmt.Errorf("got %d classification arrays, want 1 or 2", len(arrays))
	}
	width, height := arrays[0].Width, arrays[0].Height
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("classification array has an empty grid")
	}
	for _, arr := range arrays {
		if arr.Width != width || arr.Height != height {
			return nil, fmt.Errorf("classification arrays have mismatched grids")
		}
	}
	noData := opts.NoData
	if noData == 0 {
		noData = cube.NoDataValue
	}

	classLabel := opts.ClassLabel
	var classes [][]bool
	var labels []string
	colors := opts.Colors
	if len(arrays) == 1 {
		none, chng, perm := classMasks(arrays[0], noData)
		classes = [][]bool{none, chng, perm}
		if classLabel == "" {
			classLabel = "a Member of the Class"
		}
		labels = []string{
			fmt.Sprintf("Never %s", classLabel),
			fmt.Sprintf("Sometimes %s", classLabel),
			fmt.Sprintf("Always %s", classLabel),
		}
		if colors == nil {
			colors = []color.Color{
				color.Black,
				color.RGBA{R: 255, G: 215, A: 255},
				color.RGBA{G: 160, A: 255},
			}
		}
	} else {
		bNone, bChng, bPerm := classMasks(arrays[0], noData)
		aNone, aChng, aPerm := classMasks(arrays[1], noData)
		bEver := orMask(bChng, bPerm)
		aEver := orMask(aChng, aPerm)
		classes = [][]bool{
			andMask(bNone, aNone),
			andMask(bNone, aEver),
			andMask(bEver, aNone),
			andMask(bEver, aEver),
		}
		if classLabel == "" {
			classLabel = "Class Membership"
		}
		labels = []string{
			fmt.Sprintf("No %s to No %s", classLabel, classLabel),
			fmt.Sprintf("No %s to %s", classLabel, classLabel),
			fmt.Sprintf("%s to No %s", classLabel, classLabel),
			fmt.Sprintf("%s to %s", classLabel, classLabel),
		}
		if colors == nil {
			colors = []color.Color{
				color.Black,
				color.RGBA{G: 160, A: 255},
				color.RGBA{R: 200, A: 255},
				color.White,
			}
		}
	}
	if len(colors) != len(classes) {
		return nil, fmt.Errorf("got %d colors for %d classes", len(colors), len(classes))
	}

	grid := width * height
	fractions := make([]float64, len(classes))
	for i, cls := range classes {
		n := 0
		for _, hit := range cls {
			if hit {
				n++
			}
		}
		fractions[i] = float64(n) / float64(grid)
	}

	if opts.Mask != nil {
		if len(opts.Mask) != grid {
			return nil, fmt.Errorf("mask length %d does not fit the %dx%d grid", len(opts.Mask), width, height)
		}
		classes = append(classes, opts.Mask)
		maskColor := opts.MaskColor
		if maskColor == nil {
			maskColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		}
		colors = append(colors, maskColor)
		labels = append(labels, "Masked")
	}

	title := "Class Extents Change"
	if len(arrays) == 2 {
		title = "Class Extents Change (Baseline/Analysis)"
	}
	if err := renderClassRaster(width, height, opts.Scale, classes, colors, labels, title, outPath); err != nil {
		return nil, err
	}
	return fractions, nil
}

// IntersectionOptions style the threshold intersection raster.
type IntersectionOptions struct {
	ColorNone   color.Color
	ColorFirst  color.Color
	ColorSecond color.Color
	ColorBoth   color.Color
	ColorMask   color.Color
	Mask        []bool
	Scale       int
}

// IntersectionThresholdPlot colors pixels by which of two bands fall inside
// [lo, hi): neither, only the first, only the second, or both. Mask pixels
// override everything.
func IntersectionThresholdPlot(first, second *cube.DataArray, lo, hi float64, opts IntersectionOptions, outPath string) error {
	if first.TimeVarying() || second.TimeVarying() {
		return fmt.Errorf("threshold plots take single-timestep bands, composite first")
	}
	width, height := first.Width, first.Height
	if second.Width != width || second.Height != height {
		return fmt.Errorf("bands have mismatched grids")
	}
	if hi <= lo {
		return fmt.Errorf("threshold range [%g, %g) is empty", lo, hi)
	}
	grid := width * height

	firstIn := make([]bool, grid)
	secondIn := make([]bool, grid)
	bothIn := make([]bool, grid)
	noneIn := make([]bool, grid)
	for i := 0; i < grid; i++ {
		f := first.Data[i]
		s := second.Data[i]
		firstIn[i] = lo <= f && f < hi
		secondIn[i] = lo <= s && s < hi
		bothIn[i] = firstIn[i] && secondIn[i]
		noneIn[i] = !bothIn[i]
	}

	colors := []color.Color{
		pickColor(opts.ColorNone, color.Black),
		pickColor(opts.ColorFirst, color.RGBA{G: 160, A: 255}),
		pickColor(opts.ColorSecond, color.RGBA{R: 200, A: 255}),
		pickColor(opts.ColorBoth, color.White),
	}
	classes := [][]bool{noneIn, firstIn, secondIn, bothIn}
	labels := []string{
		fmt.Sprintf("Neither %s within threshold", first.Name),
		fmt.Sprintf("Only %s within threshold", first.Name),
		fmt.Sprintf("Only %s within threshold", second.Name),
		"Both within threshold",
	}
	if opts.Mask != nil {
		if len(opts.Mask) != grid {
			return fmt.Errorf("mask length %d does not fit the %dx%d grid", len(opts.Mask), width, height)
		}
		classes = append(classes, opts.Mask)
		colors = append(colors, pickColor(opts.ColorMask, color.RGBA{R: 128, G: 128, B: 128, A: 255}))
		labels = append(labels, "Masked")
	}

	title := fmt.Sprintf("Threshold: %g < x < %g", lo, hi)
	return renderClassRaster(width, height, opts.Scale, classes, colors, labels, title, outPath)
}

func pickColor(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

// renderClassRaster paints class masks in order (later classes overwrite
// earlier ones), magnifies the raster and appends a color legend.
func renderClassRaster(width, height, scale int, classes [][]bool, colors []color.Color, labels []string, title string, outPath string) error {
	if scale <= 0 {
		long := width
		if height > long {
			long = height
		}
		scale = 512 / long
		if scale < 1 {
			scale = 1
		}
	}
	imgW, imgH := width*scale, height*scale

	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	for ci, cls := range classes {
		for i, hit := range cls {
			if !hit {
				continue
			}
			px, py := (i%width)*scale, (i/width)*scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(px+dx, py+dy, colors[ci])
				}
			}
		}
	}

	const (
		topMargin     = 28
		legendSpacing = 20
		legendPad     = 12
	)
	canvasW := imgW
	if canvasW < 280 {
		canvasW = 280
	}
	legendH := legendSpacing*len(labels) + legendPad
	dc := gg.NewContext(canvasW, topMargin+imgH+legendH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, float64(canvasW)/2, topMargin/2, 0.5, 0.5)
	dc.DrawImage(img, (canvasW-imgW)/2, topMargin)

	legendY := topMargin + imgH + legendPad/2
	for i, label := range labels {
		y := legendY + i*legendSpacing
		r, g, b, _ := colors[i].RGBA()
		dc.SetRGB(float64(r)/65535, float64(g)/65535, float64(b)/65535)
		dc.DrawRectangle(10, float64(y), 14, 14)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawRectangle(10, float64(y), 14, 14)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.DrawStringAnchored(label, 30, float64(y)+7, 0, 0.5)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to save change map: %w", err)
	}
	return nil
}
