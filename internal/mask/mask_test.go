package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landcube/internal/cube"
)

func flatArray(name string, values ...float64) *cube.DataArray {
	return &cube.DataArray{Name: name, Data: values, Height: 1, Width: len(values)}
}

func TestCFMaskClean(t *testing.T) {
	cf := flatArray("cf_mask", 0, 1, 2, 3, 4, 255, cube.NoDataValue)
	mask := CFMaskClean(cf, cube.NoDataValue)
	// Clear land and water are usable; shadow, snow, cloud, fill and nodata are not.
	assert.Equal(t, []bool{true, true, false, false, false, false, false}, mask)
}

func TestSentinelClear(t *testing.T) {
	scl := flatArray("scl", 4, 3, 8, 9, 10, 5, 4)
	cld := flatArray("cld", 0, 0, 0, 0, 0, 12, 0)
	mask, err := SentinelClear(scl, cld)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, false, false, false, true}, mask)

	_, err = SentinelClear(scl, flatArray("cld", 0))
	assert.Error(t, err)
}

func TestBitMask(t *testing.T) {
	// pixel_qa: bit 1 = clear, bit 2 = water.
	qa := flatArray("pixel_qa", 2, 4, 6, 1, 0, cube.NoDataValue)
	mask := BitMask(qa, []uint{1, 2}, cube.NoDataValue)
	assert.Equal(t, []bool{true, true, true, false, false, false}, mask)
}

func TestUnpackQA(t *testing.T) {
	qa := flatArray("pixel_qa", 1, 2, 4, 8, 16, 32)

	cloud, err := UnpackQA(qa, QACloud)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false, false, true}, cloud)

	clear, err := UnpackQA(qa, QAClear)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false, false, false}, clear)

	_, err = UnpackQA(qa, QACover("fog"))
	assert.Error(t, err)
}

func TestAndOr(t *testing.T) {
	a := []bool{true, true, false, false}
	b := []bool{true, false, true, false}

	and, err := And(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, false}, and)

	or, err := Or(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, false}, or)

	_, err = And(a, []bool{true})
	assert.Error(t, err)
}

func TestNotNoData(t *testing.T) {
	arr := flatArray("red", 0.5, cube.NoDataValue, 1.2)
	assert.Equal(t, []bool{true, false, true}, NotNoData(arr, cube.NoDataValue))
}
