package plot

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	"golang.org/x/image/colornames"
	"gonum.org/v1/gonum/stat"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type BandPlotOptions struct {
	Title        string
	WidthInches  float64
	HeightInches float64
}

// PlotBand renders the acquisition statistics of one band: the 25th to 75th
// percentile envelope, per-date medians and means, a linear regression of
// the means and a gaussian smoothed curve of the means.
func PlotBand(ds *cube.Dataset, band string, opts BandPlotOptions, outPath string) error {
	if ds.IsEmpty() {
		return fmt.Errorf("nothing to plot: dataset is empty")
	}
	arr, ok := ds.Band(band)
	if !ok {
		return fmt.Errorf("band %s not in dataset", band)
	}
	if ds.TimeCount() == 0 {
		return fmt.Errorf("dataset has no acquisitions to plot")
	}

	var (
		rawXs, means, medians []float64
		lower, upper          []float64
		kept                  []time.Time
	)
	for t := 0; t < ds.TimeCount(); t++ {
		vals := samplesAt(ds, arr, t)
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		rawXs = append(rawXs, Epoch(ds.Times[t]))
		means = append(means, meanOf(vals))
		medians = append(medians, medianOf(vals))
		lower = append(lower, stat.Quantile(0.25, stat.Empirical, vals, nil))
		upper = append(upper, stat.Quantile(0.75, stat.Empirical, vals, nil))
		kept = append(kept, ds.Times[t])
	}
	if len(rawXs) < 2 {
		return fmt.Errorf("band %s has usable pixels in %d acquisitions, need at least 2", band, len(rawXs))
	}
	xs := NormalizeToUnit(rawXs)

	p := gplot.New()
	if opts.Title != "" {
		p.Title.Text = opts.Title
	} else {
		p.Title.Text = fmt.Sprintf("%s over time", band)
	}
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Value"
	p.Add(plotter.NewGrid())
	p.X.Tick.Marker = gplot.ConstantTicks(DateTicks(xs, kept))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	// Percentile envelope: forward along the lower bound, back along the
	// upper bound.
	ring := make(plotter.XYs, 0, 2*len(xs))
	for i := range xs {
		ring = append(ring, plotter.XY{X: xs[i], Y: lower[i]})
	}
	for i := len(xs) - 1; i >= 0; i-- {
		ring = append(ring, plotter.XY{X: xs[i], Y: upper[i]})
	}
	envelope, err := plotter.NewPolygon(ring)
	if err != nil {
		return err
	}
	fill := color.NRGBA{R: 128, G: 128, B: 128, A: 102}
	envelope.Color = fill
	envelope.LineStyle = draw.LineStyle{Color: color.NRGBA{}, Width: 0}
	p.Add(envelope)
	envelopeProxy := &plotter.Scatter{GlyphStyle: draw.GlyphStyle{
		Color:  fill,
		Radius: vg.Points(4),
		Shape:  draw.BoxGlyph{},
	}}
	p.Legend.Add("25th and 75th percentile band", envelopeProxy)

	med, err := plotter.NewScatter(xyPoints(xs, medians))
	if err != nil {
		return err
	}
	med.GlyphStyle.Color = color.Black
	med.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(med)
	p.Legend.Add("Medians", med)

	meanLine, err := plotter.NewLine(xyPoints(xs, means))
	if err != nil {
		return err
	}
	meanLine.Color = colornames.Blue
	meanLine.Width = vg.Points(1.5)
	p.Add(meanLine)
	p.Legend.Add("Mean", meanLine)

	intercept, slope := LinearRegression(xs, means)
	reg, err := plotter.NewLine(plotter.XYs{
		{X: xs[0], Y: intercept + slope*xs[0]},
		{X: xs[len(xs)-1], Y: intercept + slope*xs[len(xs)-1]},
	})
	if err != nil {
		return err
	}
	reg.Color = colornames.Red
	reg.Width = vg.Points(2)
	p.Add(reg)
	p.Legend.Add("linear regression of means", reg)

	if len(xs) >= 3 {
		xSmooth := spanPoints(xs[0], xs[len(xs)-1], fitSamples)
		smooth, err := GaussianSmooth(xs, means, xSmooth)
		if err != nil {
			return err
		}
		gauss, err := plotter.NewLine(xyPoints(xSmooth, smooth))
		if err != nil {
			return err
		}
		gauss.Color = colornames.Limegreen
		gauss.Width = vg.Points(2)
		p.Add(gauss)
		p.Legend.Add("Gaussian smoothed of means", gauss)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	width := opts.WidthInches
	if width <= 0 {
		width = 14
	}
	height := opts.HeightInches
	if height <= 0 {
		height = 6
	}
	return p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, outPath)
}
