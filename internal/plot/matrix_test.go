package plot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintMatrixWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "matrix.png")
	values := [][]float64{
		{0.1, 0.9},
		{0.5, math.NaN()},
	}
	opts := MatrixOptions{
		RowLabels: []string{"2022", "2023"},
		ColLabels: []string{"ndvi", "evi"},
	}

	require.NoError(t, PrintMatrix(values, opts, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPrintMatrixValidation(t *testing.T) {
	out := filepath.Join(t.TempDir(), "matrix.png")

	assert.Error(t, PrintMatrix(nil, MatrixOptions{}, out))
	assert.Error(t, PrintMatrix([][]float64{{}}, MatrixOptions{}, out))
	assert.Error(t, PrintMatrix([][]float64{{1, 2}, {3}}, MatrixOptions{}, out))

	values := [][]float64{{1, 2}}
	assert.Error(t, PrintMatrix(values, MatrixOptions{RowLabels: []string{"a", "b"}}, out))
	assert.Error(t, PrintMatrix(values, MatrixOptions{ColLabels: []string{"a"}}, out))
	assert.Error(t, PrintMatrix(values, MatrixOptions{CellLabels: [][]string{{"a"}}}, out))
}
