package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anomalyDataset(t *testing.T) *cube.Dataset {
	t.Helper()
	ds := cube.NewDataset(nil, []float64{1, 0}, []float64{10, 11})
	arr := cube.NewArray("ndvi_difference", 0, 2, 2)
	copy(arr.Data, []float64{0.1, -0.2, 0.3, cube.NoDataValue})
	ds.SetBand(arr)
	return ds
}

func TestBuildAnalysisReport(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 2, 5, 0, 0, 0, 0, time.UTC),
	}
	rep := AnalysisReport{
		Title:     "Forest health",
		Product:   "s2_l2a",
		Region:    "fazenda-norte",
		Generated: time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:   []SummaryItem{{Label: "acquisitions", Value: "2"}},
		Series: []IndexSeries{
			{Name: "ndvi", Times: times, Values: []float64{0.52, 0.61}},
			{Name: "evi", Times: times, Values: []float64{0.31, cube.NoDataValue}},
		},
		Anomaly: anomalyDataset(t),
	}
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, BuildAnalysisReport(rep, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Forest health")
	assert.Contains(t, html, "ndvi_difference")
	assert.Contains(t, html, "fazenda-norte")
}

func TestBuildAnalysisReportValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	assert.Error(t, BuildAnalysisReport(AnalysisReport{}, path))

	bad := AnalysisReport{
		Series: []IndexSeries{{Name: "ndvi", Times: make([]time.Time, 2), Values: []float64{1}}},
	}
	assert.Error(t, BuildAnalysisReport(bad, path))

	missing := AnalysisReport{Anomaly: anomalyDataset(t), AnomalyBand: "nope"}
	assert.Error(t, BuildAnalysisReport(missing, path))
}
