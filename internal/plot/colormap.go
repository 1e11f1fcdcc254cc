package plot

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/palette"
)

// Colormap maps data values in [Min, Max] to colors. It feeds the color
// relief PNG export, gonum/plot heatmaps and go-echarts visual maps.
type Colormap struct {
	min, max float64
	lookup   func(t float64) colorful.Color // t in [0, 1]
}

func (c *Colormap) Min() float64 { return c.min }
func (c *Colormap) Max() float64 { return c.max }

// At returns the color for v. Values outside the data range clamp to the
// nearest end of the ramp.
func (c *Colormap) At(v float64) color.Color {
	t := 0.0
	if c.max > c.min {
		t = (v - c.min) / (c.max - c.min)
	}
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return c.lookup(t)
}

// Palette samples n evenly spaced colors for gonum/plot plotters.
func (c *Colormap) Palette(n int) palette.Palette {
	if n < 1 {
		n = 1
	}
	colors := make([]color.Color, n)
	for i := range colors {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		colors[i] = c.lookup(t)
	}
	return paletteColors(colors)
}

// HexColors samples n colors as #rrggbb strings, the format go-echarts
// visual map ramps take.
func (c *Colormap) HexColors(n int) []string {
	if n < 1 {
		n = 1
	}
	out := make([]string, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = c.lookup(t).Hex()
	}
	return out
}

// ColorMap adapts the colormap to gonum/plot's palette.ColorMap so it can
// drive a plotter.ColorBar.
func (c *Colormap) ColorMap() palette.ColorMap {
	return &colorMapAdapter{cm: c, min: c.min, max: c.max, alpha: 1}
}

type paletteColors []color.Color

func (p paletteColors) Colors() []color.Color { return p }

type colorMapAdapter struct {
	cm       *Colormap
	min, max float64
	alpha    float64
}

func (a *colorMapAdapter) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < a.min:
		return nil, palette.ErrUnderflow
	case v > a.max:
		return nil, palette.ErrOverflow
	}
	t := 0.0
	if a.max > a.min {
		t = (v - a.min) / (a.max - a.min)
	}
	return a.cm.lookup(t), nil
}

func (a *colorMapAdapter) Min() float64                  { return a.min }
func (a *colorMapAdapter) SetMin(v float64)              { a.min = v }
func (a *colorMapAdapter) Max() float64                  { return a.max }
func (a *colorMapAdapter) SetMax(v float64)              { a.max = v }
func (a *colorMapAdapter) Alpha() float64                { return a.alpha }
func (a *colorMapAdapter) SetAlpha(v float64)            { a.alpha = v }
func (a *colorMapAdapter) Palette(n int) palette.Palette { return a.cm.Palette(n) }

// DiscreteColormap builds a stepped colormap: values below the first
// threshold take the first color, values between thresholds the colors in
// order. Thresholds must be strictly ascending and strictly inside the data
// range; nil thresholds spread the colors evenly.
func DiscreteColormap(dataRange [2]float64, colors []color.Color, thresholds []float64) (*Colormap, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("discrete colormap needs at least one color")
	}
	span := dataRange[1] - dataRange[0]
	if span <= 0 {
		return nil, fmt.Errorf("data range [%g, %g] is empty", dataRange[0], dataRange[1])
	}
	cuts := make([]float64, 0, len(colors)-1)
	if thresholds == nil {
		for i := 1; i < len(colors); i++ {
			cuts = append(cuts, float64(i)/float64(len(colors)))
		}
	} else {
		if len(thresholds) != len(colors)-1 {
			return nil, fmt.Errorf("got %d thresholds for %d colors, want %d", len(thresholds), len(colors), len(colors)-1)
		}
		for i, th := range thresholds {
			if th <= dataRange[0] || th >= dataRange[1] {
				return nil, fmt.Errorf("threshold %g outside data range (%g, %g)", th, dataRange[0], dataRange[1])
			}
			if i > 0 && th <= thresholds[i-1] {
				return nil, fmt.Errorf("thresholds must be strictly ascending")
			}
			cuts = append(cuts, (th-dataRange[0])/span)
		}
	}
	ramp, err := toColorful(colors)
	if err != nil {
		return nil, err
	}
	return &Colormap{
		min: dataRange[0],
		max: dataRange[1],
		lookup: func(t float64) colorful.Color {
			idx := 0
			for idx < len(cuts) && t >= cuts[idx] {
				idx++
			}
			return ramp[idx]
		},
	}, nil
}

// GradientColormap builds a linear gradient through the given colors. The
// first and last colors pin the ends of the data range; positions place the
// interior colors and must be strictly ascending inside the range. Nil
// positions space the colors evenly.
func GradientColormap(dataRange [2]float64, colors []color.Color, positions []float64) (*Colormap, error) {
	if len(colors) < 2 {
		return nil, fmt.Errorf("gradient colormap needs at least two colors")
	}
	span := dataRange[1] - dataRange[0]
	if span <= 0 {
		return nil, fmt.Errorf("data range [%g, %g] is empty", dataRange[0], dataRange[1])
	}
	stops := make([]float64, 0, len(colors))
	stops = append(stops, 0)
	if positions == nil {
		for i := 1; i < len(colors)-1; i++ {
			stops = append(stops, float64(i)/float64(len(colors)-1))
		}
	} else {
		if len(positions) != len(colors)-2 {
			return nil, fmt.Errorf("got %d positions for %d colors, want %d", len(positions), len(colors), len(colors)-2)
		}
		for i, pos := range positions {
			if pos <= dataRange[0] || pos >= dataRange[1] {
				return nil, fmt.Errorf("position %g outside data range (%g, %g)", pos, dataRange[0], dataRange[1])
			}
			if i > 0 && pos <= positions[i-1] {
				return nil, fmt.Errorf("positions must be strictly ascending")
			}
			stops = append(stops, (pos-dataRange[0])/span)
		}
	}
	stops = append(stops, 1)
	ramp, err := toColorful(colors)
	if err != nil {
		return nil, err
	}
	return &Colormap{
		min: dataRange[0],
		max: dataRange[1],
		lookup: func(t float64) colorful.Color {
			if t <= stops[0] {
				return ramp[0]
			}
			for i := 1; i < len(stops); i++ {
				if t <= stops[i] {
					seg := stops[i] - stops[i-1]
					frac := 1.0
					if seg > 0 {
						frac = (t - stops[i-1]) / seg
					}
					return ramp[i-1].BlendRgb(ramp[i], frac)
				}
			}
			return ramp[len(ramp)-1]
		},
	}, nil
}

// viridisHex is the ramp the report visual maps and anomaly heatmaps use.
var viridisHex = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// Viridis returns the standard perceptually uniform ramp over a data range.
func Viridis(dataRange [2]float64) *Colormap {
	colors := make([]color.Color, len(viridisHex))
	for i, h := range viridisHex {
		colors[i] = mustHex(h)
	}
	cm, err := GradientColormap(dataRange, colors, nil)
	if err != nil {
		// Reachable only through an empty range.
		cm, _ = GradientColormap([2]float64{0, 1}, colors, nil)
	}
	return cm
}

// Grayscale returns a black to white ramp over a data range.
func Grayscale(dataRange [2]float64) *Colormap {
	cm, err := GradientColormap(dataRange, []color.Color{color.Black, color.White}, nil)
	if err != nil {
		cm, _ = GradientColormap([2]float64{0, 1}, []color.Color{color.Black, color.White}, nil)
	}
	return cm
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func toColorful(colors []color.Color) ([]colorful.Color, error) {
	out := make([]colorful.Color, len(colors))
	for i, c := range colors {
		cc, ok := colorful.MakeColor(c)
		if !ok {
			return nil, fmt.Errorf("color %d is fully transparent", i)
		}
		out[i] = cc
	}
	return out, nil
}

// NameToRGB255 resolves an SVG 1.1 color name to 8-bit RGB components.
func NameToRGB255(name string) ([3]uint8, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return [3]uint8{}, fmt.Errorf("unknown color name %q", name)
	}
	return [3]uint8{c.R, c.G, c.B}, nil
}

// NormColor scales 8-bit RGB components into [0, 1].
func NormColor(rgb [3]uint8) [3]float64 {
	return [3]float64{
		float64(rgb[0]) / 255,
		float64(rgb[1]) / 255,
		float64(rgb[2]) / 255,
	}
}

// NamedColor resolves an SVG 1.1 color name to a color.Color.
func NamedColor(name string) (color.Color, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown color name %q", name)
	}
	return c, nil
}
