// Package catalog is the scene index: a sqlite table mapping product,
// platform, acquisition time and bounding box to scene GeoTIFFs on disk.
// Queries against the cube resolve here first, then load rasters.
package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	scene_id       TEXT PRIMARY KEY,
	product        TEXT NOT NULL,
	platform       TEXT NOT NULL,
	acquired_at_ns INTEGER NOT NULL,
	lat_min        REAL NOT NULL,
	lat_max        REAL NOT NULL,
	lon_min        REAL NOT NULL,
	lon_max        REAL NOT NULL,
	crs            TEXT NOT NULL DEFAULT 'EPSG:4326',
	resolution     REAL NOT NULL,
	bands          TEXT NOT NULL,
	file_path      TEXT NOT NULL UNIQUE,
	ingested_at_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenes_product_time ON scenes(product, acquired_at_ns);
`

// Scene is one catalog row: a single acquisition stored as a multi-band
// GeoTIFF.
type Scene struct {
	ID         string
	Product    string
	Platform   string
	AcquiredAt time.Time
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	CRS        string
	Resolution float64
	Bands      []string
	FilePath   string
	IngestedAt time.Time
}

// Filter narrows scene queries. Nil fields match everything; bounding box
// checks are inclusive intersection tests against the scene footprint.
type Filter struct {
	Product  string
	Platform string
	Start    *time.Time
	End      *time.Time
	LatMin   *float64
	LatMax   *float64
	LonMin   *float64
	LonMax   *float64
}

// Extent summarizes what the catalog holds for a filter.
type Extent struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Start      time.Time
	End        time.Time
	SceneCount int
}

type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the scene index at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// InsertScene registers a scene, assigning an id when none is set. A scene
// re-ingested at the same file path keeps its id and gets its row replaced.
func (c *Catalog) InsertScene(s *Scene) error {
	if s.ID == "" {
		var existing string
		err := c.db.QueryRow(`SELECT scene_id FROM scenes WHERE file_path = ?`, s.FilePath).Scan(&existing)
		switch {
		case err == nil:
			s.ID = existing
		case err == sql.ErrNoRows:
			s.ID = uuid.NewString()
		default:
			return fmt.Errorf("failed to look up scene by path: %w", err)
		}
	}
	if s.CRS == "" {
		s.CRS = "EPSG:4326"
	}
	if s.IngestedAt.IsZero() {
		s.IngestedAt = time.Now().UTC()
	}
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO scenes
		(scene_id, product, platform, acquired_at_ns, lat_min, lat_max, lon_min, lon_max,
		 crs, resolution, bands, file_path, ingested_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Product, s.Platform, s.AcquiredAt.UTC().UnixNano(),
		s.LatMin, s.LatMax, s.LonMin, s.LonMax,
		s.CRS, s.Resolution, strings.Join(s.Bands, ","), s.FilePath, s.IngestedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert scene %s: %w", s.FilePath, err)
	}
	return nil
}

func buildWhere(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Product != "" {
		conds = append(conds, "product = ?")
		args = append(args, f.Product)
	}
	if f.Platform != "" {
		conds = append(conds, "platform = ?")
		args = append(args, f.Platform)
	}
	if f.Start != nil {
		conds = append(conds, "acquired_at_ns >= ?")
		args = append(args, f.Start.UTC().UnixNano())
	}
	if f.End != nil {
		conds = append(conds, "acquired_at_ns <= ?")
		args = append(args, f.End.UTC().UnixNano())
	}
	if f.LatMin != nil {
		conds = append(conds, "lat_max >= ?")
		args = append(args, *f.LatMin)
	}
	if f.LatMax != nil {
		conds = append(conds, "lat_min <= ?")
		args = append(args, *f.LatMax)
	}
	if f.LonMin != nil {
		conds = append(conds, "lon_max >= ?")
		args = append(args, *f.LonMin)
	}
	if f.LonMax != nil {
		conds = append(conds, "lon_min <= ?")
		args = append(args, *f.LonMax)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// QueryScenes returns matching scenes ordered by acquisition time.
func (c *Catalog) QueryScenes(f Filter) ([]*Scene, error) {
	where, args := buildWhere(f)
	rows, err := c.db.Query(`
		SELECT scene_id, product, platform, acquired_at_ns, lat_min, lat_max, lon_min, lon_max,
		       crs, resolution, bands, file_path, ingested_at_ns
		FROM scenes`+where+` ORDER BY acquired_at_ns ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var scenes []*Scene
	for rows.Next() {
		var s Scene
		var acquiredNS, ingestedNS int64
		var bands string
		if err := rows.Scan(&s.ID, &s.Product, &s.Platform, &acquiredNS,
			&s.LatMin, &s.LatMax, &s.LonMin, &s.LonMax,
			&s.CRS, &s.Resolution, &bands, &s.FilePath, &ingestedNS); err != nil {
			return nil, fmt.Errorf("failed to scan scene row: %w", err)
		}
		s.AcquiredAt = time.Unix(0, acquiredNS).UTC()
		s.IngestedAt = time.Unix(0, ingestedNS).UTC()
		if bands != "" {
			s.Bands = strings.Split(bands, ",")
		}
		scenes = append(scenes, &s)
	}
	return scenes, rows.Err()
}

// AcquisitionDates lists distinct acquisition times matching the filter,
// ascending.
func (c *Catalog) AcquisitionDates(f Filter) ([]time.Time, error) {
	where, args := buildWhere(f)
	rows, err := c.db.Query(`SELECT DISTINCT acquired_at_ns FROM scenes`+where+` ORDER BY acquired_at_ns ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query acquisition dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var ns int64
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("failed to scan acquisition date: %w", err)
		}
		dates = append(dates, time.Unix(0, ns).UTC())
	}
	return dates, rows.Err()
}

// Products lists every product with at least one scene.
func (c *Catalog) Products() ([]string, error) {
	rows, err := c.db.Query(`SELECT DISTINCT product FROM scenes ORDER BY product`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Platforms lists the platforms a product has scenes for.
func (c *Catalog) Platforms(product string) ([]string, error) {
	rows, err := c.db.Query(`SELECT DISTINCT platform FROM scenes WHERE product = ? ORDER BY platform`, product)
	if err != nil {
		return nil, fmt.Errorf("failed to query platforms: %w", err)
	}
	defer rows.Close()

	var platforms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// QueryExtent reports the combined footprint, time span and scene count for
// a filter. No matching scenes yields a zero extent, not an error.
func (c *Catalog) QueryExtent(f Filter) (Extent, error) {
	where, args := buildWhere(f)
	row := c.db.QueryRow(`
		SELECT MIN(lat_min), MAX(lat_max), MIN(lon_min), MAX(lon_max),
		       MIN(acquired_at_ns), MAX(acquired_at_ns), COUNT(*)
		FROM scenes`+where, args...)

	var latMin, latMax, lonMin, lonMax sql.NullFloat64
	var startNS, endNS sql.NullInt64
	var count int
	if err := row.Scan(&latMin, &latMax, &lonMin, &lonMax, &startNS, &endNS, &count); err != nil {
		return Extent{}, fmt.Errorf("failed to query extent: %w", err)
	}
	if count == 0 {
		return Extent{}, nil
	}
	return Extent{
		LatMin:     latMin.Float64,
		LatMax:     latMax.Float64,
		LonMin:     lonMin.Float64,
		LonMax:     lonMax.Float64,
		Start:      time.Unix(0, startNS.Int64).UTC(),
		End:        time.Unix(0, endNS.Int64).UTC(),
		SceneCount: count,
	}, nil
}
