package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func insertTestScene(t *testing.T, c *Catalog, product string, acquired time.Time, latMin, latMax float64) *Scene {
	t.Helper()
	s := &Scene{
		Product:    product,
		Platform:   "LANDSAT_7",
		AcquiredAt: acquired,
		LatMin:     latMin,
		LatMax:     latMax,
		LonMin:     30,
		LonMax:     31,
		Resolution: 0.000269,
		Bands:      []string{"red", "green", "blue", "nir", "cf_mask"},
		FilePath:   filepath.Join(t.TempDir(), product+"_"+acquired.Format("2006-01-02")+".tif"),
	}
	require.NoError(t, c.InsertScene(s))
	return s
}

func TestInsertAssignsIDAndRoundTrips(t *testing.T) {
	c := openTestCatalog(t)
	acquired := time.Date(2023, 6, 14, 10, 30, 0, 0, time.UTC)
	s := insertTestScene(t, c, "ls7_ledaps", acquired, -1, 0)
	assert.NotEmpty(t, s.ID)

	scenes, err := c.QueryScenes(Filter{Product: "ls7_ledaps"})
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	got := scenes[0]
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "LANDSAT_7", got.Platform)
	assert.True(t, got.AcquiredAt.Equal(acquired))
	assert.Equal(t, []string{"red", "green", "blue", "nir", "cf_mask"}, got.Bands)
}

func TestReingestKeepsSceneID(t *testing.T) {
	c := openTestCatalog(t)
	acquired := time.Date(2023, 6, 14, 0, 0, 0, 0, time.UTC)
	s := insertTestScene(t, c, "ls7_ledaps", acquired, -1, 0)

	again := &Scene{
		Product:    "ls7_ledaps",
		Platform:   "LANDSAT_7",
		AcquiredAt: acquired,
		LatMin:     -1.5,
		LatMax:     0,
		LonMin:     30,
		LonMax:     31,
		Resolution: 0.000269,
		FilePath:   s.FilePath,
	}
	require.NoError(t, c.InsertScene(again))
	assert.Equal(t, s.ID, again.ID)

	scenes, err := c.QueryScenes(Filter{})
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, -1.5, scenes[0].LatMin)
}

func TestQueryScenesFilters(t *testing.T) {
	c := openTestCatalog(t)
	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	insertTestScene(t, c, "ls7_ledaps", jun, -1, 0)
	insertTestScene(t, c, "ls7_ledaps", jan, -1, 0)
	insertTestScene(t, c, "ls7_ledaps", dec, 5, 6)
	insertTestScene(t, c, "s2_l2a", jun, -1, 0)

	// Product filter plus ascending time order.
	scenes, err := c.QueryScenes(Filter{Product: "ls7_ledaps"})
	require.NoError(t, err)
	require.Len(t, scenes, 3)
	assert.True(t, scenes[0].AcquiredAt.Before(scenes[1].AcquiredAt))
	assert.True(t, scenes[1].AcquiredAt.Before(scenes[2].AcquiredAt))

	// Inclusive time range.
	scenes, err = c.QueryScenes(Filter{Product: "ls7_ledaps", Start: &jan, End: &jun})
	require.NoError(t, err)
	assert.Len(t, scenes, 2)

	// Bounding box intersection keeps out the northern scene.
	latMin, latMax := -0.5, 0.5
	scenes, err = c.QueryScenes(Filter{Product: "ls7_ledaps", LatMin: &latMin, LatMax: &latMax})
	require.NoError(t, err)
	assert.Len(t, scenes, 2)
}

func TestAcquisitionDatesDistinct(t *testing.T) {
	c := openTestCatalog(t)
	jun := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	insertTestScene(t, c, "ls7_ledaps", jun, -1, 0)
	insertTestScene(t, c, "ls7_ledaps", jun, 1, 2)
	insertTestScene(t, c, "ls7_ledaps", jun.AddDate(0, 1, 0), -1, 0)

	dates, err := c.AcquisitionDates(Filter{Product: "ls7_ledaps"})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].Equal(jun))
}

func TestProductsAndPlatforms(t *testing.T) {
	c := openTestCatalog(t)
	insertTestScene(t, c, "s2_l2a", time.Now().UTC(), -1, 0)
	insertTestScene(t, c, "ls7_ledaps", time.Now().UTC(), -1, 0)

	products, err := c.Products()
	require.NoError(t, err)
	assert.Equal(t, []string{"ls7_ledaps", "s2_l2a"}, products)

	platforms, err := c.Platforms("ls7_ledaps")
	require.NoError(t, err)
	assert.Equal(t, []string{"LANDSAT_7"}, platforms)
}

func TestQueryExtent(t *testing.T) {
	c := openTestCatalog(t)

	extent, err := c.QueryExtent(Filter{Product: "missing"})
	require.NoError(t, err)
	assert.Equal(t, Extent{}, extent)

	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	insertTestScene(t, c, "ls7_ledaps", jan, -1, 0)
	insertTestScene(t, c, "ls7_ledaps", dec, 0, 2)

	extent, err = c.QueryExtent(Filter{Product: "ls7_ledaps"})
	require.NoError(t, err)
	assert.Equal(t, 2, extent.SceneCount)
	assert.Equal(t, -1.0, extent.LatMin)
	assert.Equal(t, 2.0, extent.LatMax)
	assert.True(t, extent.Start.Equal(jan))
	assert.True(t, extent.End.Equal(dec))
}

func TestParseSceneTime(t *testing.T) {
	ts, err := ParseSceneTime("/data/scenes/ls7_ledaps/plot7_2023-06-14T10-30-00.tif")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 14, 10, 30, 0, 0, time.UTC), ts)

	ts, err = ParseSceneTime("scene_20230614T103000.tiff")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 14, 10, 30, 0, 0, time.UTC), ts)

	ts, err = ParseSceneTime("mosaic_2023-06-14.tif")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 14, 0, 0, 0, 0, time.UTC), ts)

	_, err = ParseSceneTime("not-a-scene.tif")
	assert.Error(t, err)
}
