package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/schollz/progressbar/v3"
)

// Scene files carry their acquisition time as the last underscore-separated
// token of the base name, e.g. plot7_2023-06-14T10-30-00.tif.
var sceneTimeLayouts = []string{
	"2006-01-02T15-04-05",
	"20060102T150405",
	"2006-01-02",
}

func ParseSceneTime(path string) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	token := base
	if i := strings.LastIndex(base, "_"); i >= 0 {
		token = base[i+1:]
	}
	for _, layout := range sceneTimeLayouts {
		if ts, err := time.Parse(layout, token); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("no acquisition timestamp in file name %s", filepath.Base(path))
}

func readBounds(path string) (latMin, latMax, lonMin, lonMax, resolution float64, err error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("%s", msg)
	}))
	if err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	gt, err := ds.GeoTransform()
	if err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("failed to read geotransform of %s: %w", path, err)
	}
	width := ds.Structure().SizeX
	height := ds.Structure().SizeY

	lonMin = gt[0]
	lonMax = gt[0] + gt[1]*float64(width)
	latMax = gt[3]
	latMin = gt[3] + gt[5]*float64(height)
	if latMin > latMax {
		latMin, latMax = latMax, latMin
	}
	return latMin, latMax, lonMin, lonMax, gt[1], nil
}

// ScanFile reads one GeoTIFF's bounds and registers it as a scene.
func ScanFile(c *Catalog, path, product, platform string, acquired time.Time, bands []string) (*Scene, error) {
	latMin, latMax, lonMin, lonMax, resolution, err := readBounds(path)
	if err != nil {
		return nil, err
	}
	scene := &Scene{
		Product:    product,
		Platform:   platform,
		AcquiredAt: acquired,
		LatMin:     latMin,
		LatMax:     latMax,
		LonMin:     lonMin,
		LonMax:     lonMax,
		Resolution: resolution,
		Bands:      bands,
		FilePath:   path,
	}
	if err := c.InsertScene(scene); err != nil {
		return nil, err
	}
	return scene, nil
}

// ScanDirectory walks dir for GeoTIFF scenes and registers them under the
// given product and platform. bands names the raster bands in file order.
// Files without a parsable timestamp are skipped with a warning. Returns
// the number of scenes indexed.
func ScanDirectory(c *Catalog, dir, product, platform string, bands []string) (int, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tif", ".tiff":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	if len(files) == 0 {
		return 0, nil
	}

	bar := progressbar.Default(int64(len(files)), "indexing scenes")
	indexed := 0
	for _, path := range files {
		acquired, err := ParseSceneTime(path)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", path, err)
			bar.Add(1)
			continue
		}
		if _, err := ScanFile(c, path, product, platform, acquired, bands); err != nil {
			return indexed, err
		}
		indexed++
		bar.Add(1)
	}
	return indexed, nil
}
