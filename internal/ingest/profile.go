package ingest

import (
	"fmt"
	"strings"
)

// BandMapping pairs a canonical band name (what the catalog and datasets
// use) with the process-API sample name delivering it.
type BandMapping struct {
	Name    string
	APIBand string
}

// ProductProfile describes one downloadable product: the API data type to
// request, the bands to ask for and the ground resolution in meters.
type ProductProfile struct {
	Product    string
	Platform   string
	APIType    string
	Bands      []BandMapping
	Resolution float64
}

// SentinelL2AProfile is the default Sentinel-2 L2A download: visible + NIR +
// red-edge + SWIR measurements and the SCL/CLD quality bands at 10m.
func SentinelL2AProfile() ProductProfile {
	return ProductProfile{
		Product:  "sentinel_2_l2a",
		Platform: "SENTINEL-2",
		APIType:  "sentinel-2-l2a",
		Bands: []BandMapping{
			{Name: "red", APIBand: "B04"},
			{Name: "green", APIBand: "B03"},
			{Name: "blue", APIBand: "B02"},
			{Name: "nir", APIBand: "B08"},
			{Name: "red_edge", APIBand: "B05"},
			{Name: "red_edge2", APIBand: "B06"},
			{Name: "swir1", APIBand: "B11"},
			{Name: "cld", APIBand: "CLD"},
			{Name: "scl", APIBand: "SCL"},
		},
		Resolution: 10,
	}
}

// Profiles lists the downloadable products by name.
func Profiles() map[string]ProductProfile {
	l2a := SentinelL2AProfile()
	return map[string]ProductProfile{
		l2a.Product: l2a,
	}
}

// BandNames returns the canonical band names in file order.
func (p ProductProfile) BandNames() []string {
	names := make([]string, len(p.Bands))
	for i, b := range p.Bands {
		names[i] = b.Name
	}
	return names
}

func (p ProductProfile) bandIndex(name string) int {
	for i, b := range p.Bands {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// evalscript renders the V3 processing script requesting every profile band
// as FLOAT32.
func (p ProductProfile) evalscript() string {
	quoted := make([]string, len(p.Bands))
	samples := make([]string, len(p.Bands))
	for i, b := range p.Bands {
		quoted[i] = fmt.Sprintf("%q", b.APIBand)
		samples[i] = "sample." + b.APIBand
	}

	return fmt.Sprintf(`
    //VERSION=3
    function setup() {
      return {
        input: [%s],
        output: {
          id: "default",
          bands: %d,
          sampleType: SampleType.FLOAT32,
        },
      }
    }

    function evaluatePixel(sample) {
      return [%s];
    }
  `, strings.Join(quoted, ", "), len(p.Bands), strings.Join(samples, ", "))
}
