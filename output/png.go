package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/nfnt/resize"
)

// RGBScale is a value stretch: Min maps to 0, Max to 255.
type RGBScale struct {
	Min float64
	Max float64
}

// ColorScale maps a data value to a color. The colormaps in internal/plot
// implement it.
type ColorScale interface {
	At(v float64) color.Color
}

func openTIFF(path string) (*godal.Dataset, error) {
	return godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("%s", msg)
	}))
}

func byteScale(v, min, max float64) uint8 {
	if max <= min {
		return 0
	}
	scaled := (v - min) / (max - min) * 255
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

func readBand(ds *godal.Dataset, oneBased int) ([]float64, float64, bool, error) {
	bands := ds.Bands()
	if oneBased < 1 || oneBased > len(bands) {
		return nil, 0, false, fmt.Errorf("band %d out of range, raster has %d bands", oneBased, len(bands))
	}
	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	data := make([]float64, width*height)
	if err := bands[oneBased-1].Read(0, 0, data, width, height); err != nil {
		return nil, 0, false, fmt.Errorf("failed to read band %d: %w", oneBased, err)
	}
	noData, hasNoData := bands[oneBased-1].NoData()
	return data, noData, hasNoData, nil
}

func savePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()
	return png.Encode(file, img)
}

// quarterSize downsizes to 25% per axis, nearest neighbor, never below 1px.
func quarterSize(img image.Image) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx() / 4
	h := bounds.Dy() / 4
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return resize.Resize(uint(w), uint(h), img, resize.NearestNeighbor)
}

// CreateRGBPNGFromTIFF composes three raster bands (1-based indices) into a
// byte-scaled RGB preview at 25% size. scale holds either one stretch for
// all bands or one per band; nil stretches each band to its own min/max.
// When fillPath and fill are given, a second copy is written with pure-black
// (nodata) pixels recolored to fill.
func CreateRGBPNGFromTIFF(tifPath, pngPath string, bands [3]int, scale []RGBScale, fillPath string, fill *color.RGBA) error {
	ds, err := openTIFF(tifPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", tifPath, err)
	}
	defer ds.Close()

	if scale != nil && len(scale) != 1 && len(scale) != 3 {
		return fmt.Errorf("scale needs 1 or 3 stretches, got %d", len(scale))
	}

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	channels := make([][]float64, 3)
	stretches := make([]RGBScale, 3)
	for i, b := range bands {
		data, noData, hasNoData, err := readBand(ds, b)
		if err != nil {
			return err
		}
		if hasNoData {
			for j, v := range data {
				if v == noData {
					data[j] = 0
				}
			}
		}
		channels[i] = data

		switch {
		case scale == nil:
			stretches[i] = minMaxStretch(data)
		case len(scale) == 1:
			stretches[i] = scale[0]
		default:
			stretches[i] = scale[i]
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			img.Set(x, y, color.RGBA{
				R: byteScale(channels[0][idx], stretches[0].Min, stretches[0].Max),
				G: byteScale(channels[1][idx], stretches[1].Min, stretches[1].Max),
				B: byteScale(channels[2][idx], stretches[2].Min, stretches[2].Max),
				A: 255,
			})
		}
	}

	small := quarterSize(img)
	if err := savePNG(pngPath, small); err != nil {
		return err
	}

	if fillPath != "" && fill != nil {
		if err := savePNG(fillPath, recolorBlack(small, *fill)); err != nil {
			return err
		}
	}
	return nil
}

func minMaxStretch(data []float64) RGBScale {
	s := RGBScale{Min: data[0], Max: data[0]}
	for _, v := range data[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// recolorBlack swaps pure-black pixels (masked/nodata areas) for the fill
// color.
func recolorBlack(img image.Image, fill color.RGBA) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r == 0 && g == 0 && b == 0 {
				out.Set(x, y, fill)
			} else {
				out.Set(x, y, img.At(x, y))
			}
		}
	}
	return out
}

// CreateSingleBandRGB renders one raster band (1-based) through a color
// scale, full size. Nodata pixels become transparent, or fill when given.
func CreateSingleBandRGB(tifPath string, band int, scale ColorScale, outputPath string, fill *color.RGBA) error {
	ds, err := openTIFF(tifPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", tifPath, err)
	}
	defer ds.Close()

	data, noData, hasNoData, err := readBand(ds, band)
	if err != nil {
		return err
	}

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := data[y*width+x]
			if hasNoData && v == noData {
				if fill != nil {
					img.Set(x, y, *fill)
				}
				continue
			}
			img.Set(x, y, scale.At(v))
		}
	}
	return savePNG(outputPath, img)
}
