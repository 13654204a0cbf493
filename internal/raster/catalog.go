package raster

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Catalog is a SQLite-backed store of raster grids: layers as float64 BLOBs
// keyed by grid name, transform and NODATA as JSON metadata. It is the
// in-process handoff point between the external raster loader and the
// classification pipeline.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) a catalog database and configures WAL mode.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "catalog: exec %s", pragma)
		}
	}
	return &Catalog{db: db}, nil
}

const catalogMigration = `
CREATE TABLE IF NOT EXISTS grids (
	name       TEXT PRIMARY KEY,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	meta       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS layers (
	grid_name TEXT NOT NULL REFERENCES grids(name) ON DELETE CASCADE,
	name      TEXT NOT NULL,
	position  INTEGER NOT NULL,
	data      BLOB NOT NULL,
	PRIMARY KEY (grid_name, name)
);

CREATE INDEX IF NOT EXISTS idx_layers_grid_name ON layers(grid_name);
`

// Migrate creates the catalog schema.
func (c *Catalog) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, catalogMigration)
	return eris.Wrap(err, "catalog: migrate")
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

type gridMeta struct {
	Transform Transform `json:"transform"`
	NoData    float64   `json:"nodata"`
}

// GridInfo summarizes a stored grid.
type GridInfo struct {
	Name      string
	Width     int
	Height    int
	Layers    []string
	CreatedAt time.Time
}

// Put stores a grid under the given name, replacing any previous grid of the
// same name.
func (c *Catalog) Put(ctx context.Context, name string, g *Grid) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "catalog: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	meta, err := json.Marshal(gridMeta{Transform: g.Transform(), NoData: g.NoData()})
	if err != nil {
		return eris.Wrap(err, "catalog: marshal meta")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM grids WHERE name = ?`, name); err != nil {
		return eris.Wrapf(err, "catalog: delete previous grid %s", name)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layers WHERE grid_name = ?`, name); err != nil {
		return eris.Wrapf(err, "catalog: delete previous layers %s", name)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO grids (name, width, height, meta) VALUES (?, ?, ?, ?)`,
		name, g.Width(), g.Height(), string(meta),
	)
	if err != nil {
		return eris.Wrapf(err, "catalog: insert grid %s", name)
	}

	for i, layerName := range g.LayerNames() {
		layer, err := g.Layer(layerName)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO layers (grid_name, name, position, data) VALUES (?, ?, ?, ?)`,
			name, layerName, i, encodeFloats(layer.Raw()),
		)
		if err != nil {
			return eris.Wrapf(err, "catalog: insert layer %s/%s", name, layerName)
		}
	}

	return eris.Wrapf(tx.Commit(), "catalog: commit %s", name)
}

// Get loads a grid by name.
func (c *Catalog) Get(ctx context.Context, name string) (*Grid, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT width, height, meta FROM grids WHERE name = ?`, name)

	var width, height int
	var metaJSON string
	if err := row.Scan(&width, &height, &metaJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Errorf("catalog: grid not found: %s", name)
		}
		return nil, eris.Wrapf(err, "catalog: scan grid %s", name)
	}

	var meta gridMeta
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, eris.Wrapf(err, "catalog: unmarshal meta for %s", name)
	}

	g, err := NewGrid(width, height, meta.Transform, meta.NoData)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT name, data FROM layers WHERE grid_name = ? ORDER BY position`, name)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: query layers for %s", name)
	}
	defer rows.Close()

	for rows.Next() {
		var layerName string
		var blob []byte
		if err := rows.Scan(&layerName, &blob); err != nil {
			return nil, eris.Wrapf(err, "catalog: scan layer for %s", name)
		}
		values, err := decodeFloats(blob, width*height)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: layer %s/%s", name, layerName)
		}
		if err := g.AddLayer(layerName, values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "catalog: iterate layers for %s", name)
	}

	return g, nil
}

// List returns summaries of every stored grid, newest first.
func (c *Catalog) List(ctx context.Context) ([]GridInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT g.name, g.width, g.height, g.created_at,
		       COALESCE(group_concat(l.name, ','), '')
		FROM grids g
		LEFT JOIN layers l ON l.grid_name = g.name
		GROUP BY g.name
		ORDER BY g.created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: list grids")
	}
	defer rows.Close()

	var infos []GridInfo
	for rows.Next() {
		var info GridInfo
		var layerCSV string
		if err := rows.Scan(&info.Name, &info.Width, &info.Height, &info.CreatedAt, &layerCSV); err != nil {
			return nil, eris.Wrap(err, "catalog: scan grid info")
		}
		if layerCSV != "" {
			info.Layers = strings.Split(layerCSV, ",")
		}
		infos = append(infos, info)
	}
	return infos, eris.Wrap(rows.Err(), "catalog: iterate grid infos")
}

// Delete removes a grid and its layers.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM layers WHERE grid_name = ?`, name); err != nil {
		return eris.Wrapf(err, "catalog: delete layers %s", name)
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM grids WHERE name = ?`, name)
	return eris.Wrapf(err, "catalog: delete grid %s", name)
}

// encodeFloats packs a float64 slice as little-endian bytes.
func encodeFloats(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeFloats unpacks a little-endian float64 BLOB, checking the expected
// cell count.
func decodeFloats(blob []byte, want int) ([]float64, error) {
	if len(blob) != 8*want {
		return nil, eris.Errorf("raster: blob holds %d bytes, want %d", len(blob), 8*want)
	}
	values := make([]float64, want)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}
