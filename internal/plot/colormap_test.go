package plot

import (
	"image/color"
	"math"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func hexOf(t *testing.T, c color.Color) string {
	t.Helper()
	cc, ok := colorful.MakeColor(c)
	require.True(t, ok)
	return cc.Hex()
}

func TestDiscreteColormapBoundaries(t *testing.T) {
	cm, err := DiscreteColormap([2]float64{0, 3}, []color.Color{red, green, blue}, []float64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "#ff0000", hexOf(t, cm.At(0.5)))
	// A value sitting exactly on a threshold takes the upper color.
	assert.Equal(t, "#00ff00", hexOf(t, cm.At(1)))
	assert.Equal(t, "#00ff00", hexOf(t, cm.At(1.9)))
	assert.Equal(t, "#0000ff", hexOf(t, cm.At(2)))
	assert.Equal(t, "#0000ff", hexOf(t, cm.At(2.9)))

	// Out-of-range values clamp to the ends, NaN to the bottom.
	assert.Equal(t, "#ff0000", hexOf(t, cm.At(-10)))
	assert.Equal(t, "#0000ff", hexOf(t, cm.At(10)))
	assert.Equal(t, "#ff0000", hexOf(t, cm.At(math.NaN())))

	assert.Equal(t, 0.0, cm.Min())
	assert.Equal(t, 3.0, cm.Max())
}

func TestDiscreteColormapEvenSplit(t *testing.T) {
	cm, err := DiscreteColormap([2]float64{0, 1}, []color.Color{red, blue}, nil)
	require.NoError(t, err)

	assert.Equal(t, "#ff0000", hexOf(t, cm.At(0.49)))
	assert.Equal(t, "#0000ff", hexOf(t, cm.At(0.5)))
}

func TestDiscreteColormapValidation(t *testing.T) {
	_, err := DiscreteColormap([2]float64{0, 1}, nil, nil)
	assert.Error(t, err)

	_, err = DiscreteColormap([2]float64{1, 1}, []color.Color{red, blue}, nil)
	assert.Error(t, err)

	_, err = DiscreteColormap([2]float64{0, 1}, []color.Color{red, green, blue}, []float64{0.5})
	assert.Error(t, err)

	// Thresholds must sit strictly inside the range and ascend.
	_, err = DiscreteColormap([2]float64{0, 1}, []color.Color{red, blue}, []float64{0})
	assert.Error(t, err)
	_, err = DiscreteColormap([2]float64{0, 1}, []color.Color{red, green, blue}, []float64{0.7, 0.3})
	assert.Error(t, err)

	_, err = DiscreteColormap([2]float64{0, 1}, []color.Color{color.Transparent, blue}, nil)
	assert.Error(t, err)
}

func TestGradientColormapBlends(t *testing.T) {
	cm, err := GradientColormap([2]float64{0, 1}, []color.Color{color.Black, color.White}, nil)
	require.NoError(t, err)

	assert.Equal(t, "#000000", hexOf(t, cm.At(0)))
	assert.Equal(t, "#ffffff", hexOf(t, cm.At(1)))

	r, g, b, _ := cm.At(0.5).RGBA()
	assert.InDelta(t, 0.5, float64(r)/65535, 0.01)
	assert.InDelta(t, 0.5, float64(g)/65535, 0.01)
	assert.InDelta(t, 0.5, float64(b)/65535, 0.01)
}

func TestGradientColormapPositions(t *testing.T) {
	cm, err := GradientColormap([2]float64{0, 10}, []color.Color{color.Black, red, color.White}, []float64{2})
	require.NoError(t, err)

	assert.Equal(t, "#000000", hexOf(t, cm.At(0)))
	assert.Equal(t, "#ff0000", hexOf(t, cm.At(2)))
	assert.Equal(t, "#ffffff", hexOf(t, cm.At(10)))

	_, err = GradientColormap([2]float64{0, 10}, []color.Color{color.Black, red, color.White}, []float64{2, 4})
	assert.Error(t, err)
	_, err = GradientColormap([2]float64{0, 10}, []color.Color{color.Black, red, color.White}, []float64{12})
	assert.Error(t, err)
	_, err = GradientColormap([2]float64{0, 10}, []color.Color{red}, nil)
	assert.Error(t, err)
}

func TestViridisSamplesMatchRamp(t *testing.T) {
	cm := Viridis([2]float64{0, 1})
	assert.Equal(t, viridisHex, cm.HexColors(10))
	assert.Equal(t, []string{"#440154"}, cm.HexColors(1))
}

func TestColormapPalette(t *testing.T) {
	cm := Grayscale([2]float64{0, 1})
	colors := cm.Palette(5).Colors()
	require.Len(t, colors, 5)
	assert.Equal(t, "#000000", hexOf(t, colors[0]))
	assert.Equal(t, "#ffffff", hexOf(t, colors[4]))
}

func TestColorMapAdapter(t *testing.T) {
	cm := Grayscale([2]float64{0, 1})
	adapter := cm.ColorMap()

	c, err := adapter.At(0.5)
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = adapter.At(math.NaN())
	assert.Equal(t, palette.ErrNaN, err)
	_, err = adapter.At(-0.1)
	assert.Equal(t, palette.ErrUnderflow, err)
	_, err = adapter.At(1.1)
	assert.Equal(t, palette.ErrOverflow, err)

	assert.Equal(t, 0.0, adapter.Min())
	assert.Equal(t, 1.0, adapter.Max())
	adapter.SetMax(2)
	_, err = adapter.At(1.5)
	assert.NoError(t, err)
}

func TestNamedColors(t *testing.T) {
	rgb, err := NameToRGB255("LimeGreen")
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{50, 205, 50}, rgb)

	norm := NormColor(rgb)
	assert.InDelta(t, 50.0/255, norm[0], 1e-12)
	assert.InDelta(t, 205.0/255, norm[1], 1e-12)

	c, err := NamedColor("blue")
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", hexOf(t, c))

	_, err = NameToRGB255("not-a-color")
	assert.Error(t, err)
	_, err = NamedColor("not-a-color")
	assert.Error(t, err)
}
