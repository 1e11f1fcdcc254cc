package plot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotBandWritesFile(t *testing.T) {
	ds := plotDataset(t)
	out := filepath.Join(t.TempDir(), "band.png")

	require.NoError(t, PlotBand(ds, "ndvi", BandPlotOptions{Title: "ndvi"}, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPlotBandValidation(t *testing.T) {
	ds := plotDataset(t)
	out := filepath.Join(t.TempDir(), "band.png")

	assert.Error(t, PlotBand(ds, "missing", BandPlotOptions{}, out))

	// A single usable acquisition is not enough for the envelope.
	one := cube.NewDataset(
		[]time.Time{time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		[]float64{0}, []float64{0, 1},
	)
	_, err := one.AddBand("ndvi", []float64{0.2, 0.4})
	require.NoError(t, err)
	assert.Error(t, PlotBand(one, "ndvi", BandPlotOptions{}, out))
}
