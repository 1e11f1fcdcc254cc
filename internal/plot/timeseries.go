package plot

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	colorful "github.com/lucasb-eyer/go-colorful"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Aggregation says how the pixels of one acquisition collapse to plot
// samples. AggNone keeps the full pixel population, which only box plots
// accept.
type Aggregation string

const (
	AggMean   Aggregation = "mean"
	AggMedian Aggregation = "median"
	AggNone   Aggregation = "none"
)

// PlotKind is the rendering of one band series.
type PlotKind string

const (
	KindLine        PlotKind = "line"
	KindScatter     PlotKind = "scatter"
	KindBox         PlotKind = "box"
	KindGaussian    PlotKind = "gaussian"
	KindPoly        PlotKind = "poly"
	KindCubicSpline PlotKind = "cubic_spline"
)

// TimeBin pools acquisitions before plotting. Week bins pool by ISO week of
// year across years, month bins by calendar month.
type TimeBin string

const (
	BinNone       TimeBin = ""
	BinWeek       TimeBin = "week"
	BinWeekOfYear TimeBin = "weekofyear"
	BinMonth      TimeBin = "month"
)

// PlotDesc asks for one rendering of one band. An empty Agg defaults to
// mean, or none for box plots. Degree is required for polynomial fits.
type PlotDesc struct {
	Band   string
	Agg    Aggregation
	Kind   PlotKind
	Color  color.Color
	Degree int
}

type TimeSeriesOptions struct {
	Title           string
	Bin             TimeBin
	MaxTimesPerPlot int
	WidthInches     float64
	HeightInches    float64
	HideLegend      bool
}

func (k PlotKind) requiresAggregation() bool {
	switch k {
	case KindLine, KindGaussian, KindPoly, KindCubicSpline:
		return true
	}
	return false
}

func minPointsFor(kind PlotKind, degree int) int {
	switch kind {
	case KindLine:
		return 2
	case KindGaussian, KindCubicSpline:
		return 3
	case KindPoly:
		return 1 + degree
	default:
		return 1
	}
}

// timeGroup is one x position of the figure: an acquisition, or a week or
// month pool of acquisitions.
type timeGroup struct {
	ord    int
	rawX   float64
	when   time.Time
	values map[string][]float64
}

// samplesAt collects the usable pixels of one timestep, dropping the nodata
// sentinel and NaN.
func samplesAt(ds *cube.Dataset, arr *cube.DataArray, t int) []float64 {
	out := make([]float64, 0, arr.Height*arr.Width)
	for y := 0; y < arr.Height; y++ {
		for x := 0; x < arr.Width; x++ {
			v := arr.At(t, y, x)
			if math.IsNaN(v) || v == ds.NoData {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

func buildTimeGroups(ds *cube.Dataset, bands []string, bin TimeBin) ([]timeGroup, error) {
	if ds.TimeCount() == 0 {
		return nil, fmt.Errorf("dataset has no acquisitions to plot")
	}
	byOrd := map[int]*timeGroup{}
	for _, name := range bands {
		arr, ok := ds.Band(name)
		if !ok {
			return nil, fmt.Errorf("band %s not in dataset", name)
		}
		for t := 0; t < ds.TimeCount(); t++ {
			when := ds.Times[t]
			var ord int
			var rawX float64
			switch bin {
			case BinNone:
				ord = t
				rawX = Epoch(when)
			case BinWeek, BinWeekOfYear:
				_, week := when.ISOWeek()
				ord = week
				rawX = float64(week)
			case BinMonth:
				ord = int(when.Month())
				rawX = float64(ord)
			default:
				return nil, fmt.Errorf("unknown time bin %q", bin)
			}
			g, ok := byOrd[ord]
			if !ok {
				g = &timeGroup{ord: ord, rawX: rawX, when: when, values: map[string][]float64{}}
				byOrd[ord] = g
			}
			g.values[name] = append(g.values[name], samplesAt(ds, arr, t)...)
		}
	}

	groups := make([]timeGroup, 0, len(byOrd))
	for _, g := range byOrd {
		any := false
		for _, vals := range g.values {
			if len(vals) > 0 {
				any = true
				break
			}
		}
		if any {
			groups = append(groups, *g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ord < groups[j].ord })
	return groups, nil
}

func pageLabels(groups []timeGroup, bin TimeBin) []string {
	switch bin {
	case BinWeek, BinWeekOfYear:
		weeks := make([]int, len(groups))
		for i, g := range groups {
			weeks[i] = g.ord
		}
		return NaiveMonthTicksByWeek(weeks)
	case BinMonth:
		months := make([]int, len(groups))
		for i, g := range groups {
			months[i] = g.ord
		}
		return MonthIntsToMonthNames(months)
	default:
		labels := make([]string, len(groups))
		for i, g := range groups {
			labels[i] = g.when.UTC().Format("2006-01-02")
		}
		return labels
	}
}

func normalizeDesc(d PlotDesc, i int) PlotDesc {
	if d.Agg == "" {
		if d.Kind == KindBox {
			d.Agg = AggNone
		} else {
			d.Agg = AggMean
		}
	}
	if d.Color == nil {
		d.Color = descColor(i)
	}
	return d
}

// descColor spaces descriptor colors around the hue wheel.
func descColor(i int) color.Color {
	return colorful.Hsl(math.Mod(float64(i)*137.5, 360), 0.7, 0.45)
}

func validateDesc(ds *cube.Dataset, d PlotDesc) error {
	if _, ok := ds.Band(d.Band); !ok {
		return fmt.Errorf("band %s not in dataset", d.Band)
	}
	switch d.Kind {
	case KindLine, KindScatter, KindBox, KindGaussian, KindPoly, KindCubicSpline:
	default:
		return fmt.Errorf("band %s: unknown plot kind %q", d.Band, d.Kind)
	}
	switch d.Agg {
	case AggMean, AggMedian, AggNone:
	default:
		return fmt.Errorf("band %s: unknown aggregation %q", d.Band, d.Agg)
	}
	if d.Kind.requiresAggregation() && d.Agg == AggNone {
		return fmt.Errorf("band %s: plot kind %q requires mean or median aggregation", d.Band, d.Kind)
	}
	if d.Kind == KindBox && d.Agg != AggNone {
		return fmt.Errorf("band %s: box plots take unaggregated values, got %q", d.Band, d.Agg)
	}
	if d.Kind == KindPoly && d.Degree < 1 {
		return fmt.Errorf("band %s: polynomial fit needs a degree of at least 1", d.Band)
	}
	return nil
}

// TimeSeriesPlot renders the requested band series of a dataset into a PNG.
// Each descriptor draws one series; MaxTimesPerPlot splits long series into
// a two-column grid of subplots.
func TimeSeriesPlot(ds *cube.Dataset, descs []PlotDesc, opts TimeSeriesOptions, outPath string) error {
	if ds.IsEmpty() {
		return fmt.Errorf("nothing to plot: dataset is empty")
	}
	if len(descs) == 0 {
		return fmt.Errorf("no plot descriptors given")
	}
	normalized := make([]PlotDesc, len(descs))
	bands := make([]string, 0, len(descs))
	seen := map[string]bool{}
	for i, d := range descs {
		d = normalizeDesc(d, i)
		if err := validateDesc(ds, d); err != nil {
			return err
		}
		normalized[i] = d
		if !seen[d.Band] {
			seen[d.Band] = true
			bands = append(bands, d.Band)
		}
	}

	groups, err := buildTimeGroups(ds, bands, opts.Bin)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("no usable samples in any acquisition")
	}

	maxPer := opts.MaxTimesPerPlot
	if maxPer <= 0 || maxPer > len(groups) {
		maxPer = len(groups)
	}
	width := opts.WidthInches
	if width <= 0 {
		width = 14
	}
	height := opts.HeightInches
	if height <= 0 {
		height = 6
	}

	var pages []*gplot.Plot
	for start := 0; start < len(groups); start += maxPer {
		end := start + maxPer
		if end > len(groups) {
			end = len(groups)
		}
		p, err := renderTimeSeriesPage(groups[start:end], normalized, opts, len(pages), width)
		if err != nil {
			return err
		}
		pages = append(pages, p)
	}

	if len(pages) == 1 {
		return pages[0].Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, outPath)
	}
	return savePlotGrid(pages, width, height, outPath)
}

func renderTimeSeriesPage(groups []timeGroup, descs []PlotDesc, opts TimeSeriesOptions, page int, widthInches float64) (*gplot.Plot, error) {
	rawXs := make([]float64, len(groups))
	for i, g := range groups {
		rawXs[i] = g.rawX
	}
	xs := NormalizeToUnit(rawXs)
	labels := pageLabels(groups, opts.Bin)

	p := gplot.New()
	base := opts.Title
	if base == "" {
		base = fmt.Sprintf("Figure %d", page)
	}
	p.Title.Text = fmt.Sprintf("%s (%s to %s)", base, labels[0], labels[len(labels)-1])
	p.X.Tick.Marker = gplot.ConstantTicks(LabelTicks(xs, labels))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min, p.X.Max = -0.05, 1.05

	for _, desc := range descs {
		var keptXs []float64
		var samples [][]float64
		for gi, g := range groups {
			vals := g.values[desc.Band]
			if len(vals) == 0 {
				continue
			}
			keptXs = append(keptXs, xs[gi])
			samples = append(samples, vals)
		}
		if len(keptXs) < minPointsFor(desc.Kind, desc.Degree) {
			continue
		}

		var ys []float64
		switch desc.Agg {
		case AggMean:
			ys = aggregateEach(samples, meanOf)
		case AggMedian:
			ys = aggregateEach(samples, medianOf)
		}

		label := legendText(desc)
		switch desc.Kind {
		case KindScatter:
			sc, err := plotter.NewScatter(xyPoints(keptXs, ys))
			if err != nil {
				return nil, err
			}
			sc.GlyphStyle.Color = desc.Color
			sc.GlyphStyle.Radius = vg.Points(2)
			p.Add(sc)
			if !opts.HideLegend {
				p.Legend.Add(label, sc)
			}
		case KindLine:
			ln, err := plotter.NewLine(xyPoints(keptXs, ys))
			if err != nil {
				return nil, err
			}
			ln.Color = desc.Color
			ln.Width = vg.Points(1)
			p.Add(ln)
			if !opts.HideLegend {
				p.Legend.Add(label, ln)
			}
		case KindBox:
			boxW := boxWidth(keptXs, widthInches)
			for i := range samples {
				bp, err := plotter.NewBoxPlot(boxW, keptXs[i], plotter.Values(samples[i]))
				if err != nil {
					return nil, err
				}
				bp.FillColor = desc.Color
				p.Add(bp)
			}
			if !opts.HideLegend {
				proxy := &plotter.Line{LineStyle: draw.LineStyle{Color: desc.Color, Width: vg.Points(4)}}
				p.Legend.Add(label, proxy)
			}
		case KindGaussian, KindPoly, KindCubicSpline:
			xSmooth := spanPoints(keptXs[0], keptXs[len(keptXs)-1], fitSamples)
			smooth, err := fitSmooth(fitKindOf(desc.Kind), desc.Degree, keptXs, ys, xSmooth)
			if err != nil {
				return nil, fmt.Errorf("band %s: %w", desc.Band, err)
			}
			ln, err := plotter.NewLine(xyPoints(xSmooth, smooth))
			if err != nil {
				return nil, err
			}
			ln.Color = desc.Color
			ln.Width = vg.Points(1.5)
			p.Add(ln)
			if !opts.HideLegend {
				p.Legend.Add(label, ln)
			}
		}
	}

	if !opts.HideLegend {
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
	}
	return p, nil
}

func fitKindOf(k PlotKind) FitKind {
	switch k {
	case KindGaussian:
		return FitGaussian
	case KindPoly:
		return FitPoly
	default:
		return FitCubicSpline
	}
}

func legendText(d PlotDesc) string {
	var kind string
	switch d.Kind {
	case KindScatter:
		kind = "scatterplot"
	case KindLine:
		kind = "lineplot"
	case KindBox:
		kind = "boxplot"
	case KindGaussian:
		kind = "gaussian fit"
	case KindPoly:
		kind = fmt.Sprintf("degree %d polynomial fit", d.Degree)
	case KindCubicSpline:
		kind = "cubic spline fit"
	}
	if d.Agg != AggNone {
		kind = fmt.Sprintf("%s of %s", kind, d.Agg)
	}
	return fmt.Sprintf("%s of %s", kind, d.Band)
}

// boxWidth converts half the smallest x gap from plot units to a physical
// width, so neighboring boxes never overlap.
func boxWidth(xs []float64, widthInches float64) vg.Length {
	dataW := 0.5
	for i := 1; i < len(xs); i++ {
		if d := xs[i] - xs[i-1]; d > 0 && d/2 < dataW {
			dataW = d / 2
		}
	}
	w := vg.Length(dataW/1.1*(widthInches-1.5)) * vg.Inch
	if w < vg.Points(2) {
		w = vg.Points(2)
	}
	if w > vg.Inch {
		w = vg.Inch
	}
	return w
}

func aggregateEach(samples [][]float64, agg func([]float64) float64) []float64 {
	out := make([]float64, len(samples))
	for i, vals := range samples {
		out[i] = agg(vals)
	}
	return out
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func medianOf(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func xyPoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

// savePlotGrid tiles subplot pages into a two-column PNG.
func savePlotGrid(pages []*gplot.Plot, widthInches, heightInches float64, outPath string) error {
	const cols = 2
	rows := (len(pages) + cols - 1) / cols
	plots := make([][]*gplot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*gplot.Plot, cols)
		for c := 0; c < cols; c++ {
			if idx := r*cols + c; idx < len(pages) {
				plots[r][c] = pages[idx]
			}
		}
	}

	img := vgimg.New(vg.Length(widthInches*cols)*vg.Inch, vg.Length(heightInches*float64(rows))*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: rows, Cols: cols, PadX: vg.Millimeter * 2, PadY: vg.Millimeter * 2}
	canvases := gplot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	return writeCanvasPNG(img, outPath)
}

// CurvefitOptions style the standalone fitted-curve figure.
type CurvefitOptions struct {
	Title        string
	Degree       int
	Samples      int
	Color        color.Color
	WidthInches  float64
	HeightInches float64
}

// PlotCurvefit fits one curve through the samples and renders it on its own
// figure.
func PlotCurvefit(xs, ys []float64, kind FitKind, opts CurvefitOptions, outPath string) error {
	if len(xs) == 0 || len(xs) != len(ys) {
		return fmt.Errorf("curve fit needs matching non-empty x and y values")
	}
	n := opts.Samples
	if n <= 0 {
		n = fitSamples
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	xSmooth := spanPoints(lo, hi, n)
	smooth, err := fitSmooth(kind, opts.Degree, xs, ys, xSmooth)
	if err != nil {
		return err
	}

	p := gplot.New()
	p.Title.Text = opts.Title
	ln, err := plotter.NewLine(xyPoints(xSmooth, smooth))
	if err != nil {
		return err
	}
	if opts.Color == nil {
		opts.Color = color.RGBA{B: 255, A: 255}
	}
	ln.Color = opts.Color
	ln.Width = vg.Points(1.5)
	p.Add(ln)

	width := opts.WidthInches
	if width <= 0 {
		width = 12
	}
	height := opts.HeightInches
	if height <= 0 {
		height = 6
	}
	return p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, outPath)
}
