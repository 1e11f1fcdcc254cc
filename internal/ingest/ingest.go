// Package ingest downloads scenes from the Copernicus process API and
// registers them in the local catalog.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"

	"github.com/forest-guardian/landcube/internal/catalog"
	"github.com/forest-guardian/landcube/internal/cube"
	"github.com/forest-guardian/landcube/internal/mask"
	"github.com/forest-guardian/landcube/internal/properties"
)

const defaultFetchWorkers = 8

// Ingestor downloads scenes for a region and registers them in the catalog.
type Ingestor struct {
	Catalog *catalog.Catalog
	Profile ProductProfile
	Workers int
}

// FetchResult counts what one FetchRange run did.
type FetchResult struct {
	Downloaded int
	Skipped    int
	Invalid    int
}

// FetchRange walks the date range in intervalDays steps and downloads one
// scene per step, fanning the downloads out on a worker pool. Scenes that
// already exist on disk or that were previously found fully clouded are
// skipped; fully clouded downloads are deleted and remembered in the
// invalid-scenes sidecar.
func (ing *Ingestor) FetchRange(region *Region, startDate, endDate time.Time, intervalDays int) (FetchResult, error) {
	if intervalDays < 1 {
		intervalDays = 1
	}

	sceneDir := filepath.Join(properties.ScenesPath(), ing.Profile.Product)
	if err := os.MkdirAll(sceneDir, os.ModePerm); err != nil {
		return FetchResult{}, fmt.Errorf("failed to create scene directory: %v", err)
	}
	sidecar := newInvalidScenes(filepath.Join(sceneDir, "invalid_scenes.json"))
	if err := sidecar.load(); err != nil {
		return FetchResult{}, err
	}

	var dates []time.Time
	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, intervalDays) {
		dates = append(dates, current)
	}

	workers := ing.Workers
	if workers <= 0 {
		workers = defaultFetchWorkers
	}

	var (
		mu     sync.Mutex
		result FetchResult
		bar    = progressbar.Default(int64(len(dates)), fmt.Sprintf("Fetching %s %s", ing.Profile.Product, region.ID))
	)
	wp := workerpool.New(workers)
	errChan := make(chan error, 1)
	var stopProcessing sync.Once

	for _, date := range dates {
		date := date
		wp.Submit(func() {
			outcome, err := ing.fetchScene(region, sceneDir, sidecar, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stopProcessing.Do(func() { errChan <- err })
			} else {
				switch outcome {
				case fetchDownloaded:
					result.Downloaded++
				case fetchSkipped:
					result.Skipped++
				case fetchInvalid:
					result.Invalid++
				}
			}
			bar.Add(1)
		})
	}

	wp.StopWait()
	close(errChan)
	if err := <-errChan; err != nil {
		return result, err
	}
	return result, nil
}

type fetchOutcome int

const (
	fetchDownloaded fetchOutcome = iota
	fetchSkipped
	fetchInvalid
)

func (ing *Ingestor) fetchScene(region *Region, sceneDir string, sidecar *invalidScenes, date time.Time) (fetchOutcome, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	name := fmt.Sprintf("%s_%s_%s.tif", ing.Profile.Product, region.ID, day.Format("2006-01-02"))
	path := filepath.Join(sceneDir, name)

	if sidecar.contains(name) {
		return fetchSkipped, nil
	}

	if _, err := os.Stat(path); err == nil {
		// Already on disk; make sure it is indexed.
		if _, err := catalog.ScanFile(ing.Catalog, path, ing.Profile.Product, ing.Profile.Platform, day, ing.Profile.BandNames()); err != nil {
			return 0, err
		}
		return fetchSkipped, nil
	}

	imageBytes, err := requestScene(ing.Profile, region.Geometry(), day, day.Add(time.Hour*23+time.Minute*59+time.Second*59))
	if err != nil {
		return 0, fmt.Errorf("error requesting scene %s: %v", name, err)
	}

	if err := os.WriteFile(path, imageBytes, 0644); err != nil {
		return 0, fmt.Errorf("failed to write scene file: %v", err)
	}

	usable, err := ing.sceneIsUsable(path)
	if err != nil {
		return 0, err
	}
	if !usable {
		if err := sidecar.add(name); err != nil {
			return 0, err
		}
		if err := os.Remove(path); err != nil {
			fmt.Printf("failed to delete scene file %s: %v\n", path, err)
		}
		return fetchInvalid, nil
	}

	if _, err := catalog.ScanFile(ing.Catalog, path, ing.Profile.Product, ing.Profile.Platform, day, ing.Profile.BandNames()); err != nil {
		return 0, err
	}
	return fetchDownloaded, nil
}

// sceneIsUsable opens a downloaded scene and checks its quality bands for at
// least one clear pixel. Profiles without quality bands are always usable.
func (ing *Ingestor) sceneIsUsable(path string) (bool, error) {
	sclIdx := ing.Profile.bandIndex("scl")
	cldIdx := ing.Profile.bandIndex("cld")
	if sclIdx < 0 {
		return true, nil
	}

	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("%s", msg)
	}))
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer ds.Close()

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	bands := ds.Bands()
	if sclIdx >= len(bands) {
		return false, fmt.Errorf("scene %s is missing its scl band", path)
	}

	scl := cube.NewArray("scl", 0, height, width)
	if err := bands[sclIdx].Read(0, 0, scl.Data, width, height); err != nil {
		return false, fmt.Errorf("failed to read scl band of %s: %v", path, err)
	}
	cld := cube.FilledArray("cld", 0, height, width, 0)
	if cldIdx >= 0 && cldIdx < len(bands) {
		if err := bands[cldIdx].Read(0, 0, cld.Data, width, height); err != nil {
			return false, fmt.Errorf("failed to read cld band of %s: %v", path, err)
		}
	}

	clean, err := mask.SentinelClear(scl, cld)
	if err != nil {
		return false, err
	}
	for _, ok := range clean {
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// invalidScenes is the JSON sidecar remembering downloads that came back
// fully clouded, so re-runs skip the API call.
type invalidScenes struct {
	path string

	mu    sync.Mutex
	names []string
}

func newInvalidScenes(path string) *invalidScenes {
	return &invalidScenes{path: path}
}

func (s *invalidScenes) load() error {
	if _, err := os.Stat(s.path); err != nil {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", s.path, err)
	}
	if err := json.Unmarshal(data, &s.names); err != nil {
		return fmt.Errorf("invalid JSON in %s: %v", s.path, err)
	}
	return nil
}

func (s *invalidScenes) contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func (s *invalidScenes) add(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.names)+1)
	unique := make([]string, 0, len(s.names)+1)
	for _, n := range append(s.names, name) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	s.names = unique

	data, err := json.Marshal(s.names)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
