package retro

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/bodgit/retro/palette"
	"github.com/bodgit/retro/pcx"
	_ "github.com/mattn/go-sqlite3"
)

// Cache stores converted images in an SQLite database keyed on the source
// pixels and the settings used to convert them.
type Cache struct {
	db *sql.DB
}

// NewCache opens or creates the cache database in file.
func NewCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS result (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, colors INTEGER NOT NULL, requested INTEGER, got INTEGER, image BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheKey hashes the dimensions and pixels of m along with the canonical
// form of cfg.
func cacheKey(m *image.NRGBA, cfg Config) string {
	h := sha1.New()
	b := m.Bounds()

	var size [8]byte
	binary.LittleEndian.PutUint32(size[0:], uint32(b.Dx()))
	binary.LittleEndian.PutUint32(size[4:], uint32(b.Dy()))
	h.Write(size[:])

	for y := b.Min.Y; y < b.Max.Y; y++ {
		h.Write(m.Pix[m.PixOffset(b.Min.X, y):][:b.Dx()*4])
	}
	h.Write([]byte(cfg.String()))

	return fmt.Sprintf("%X", h.Sum(nil))
}

// Get returns the result stored under key, or nil if there isn't one. The
// Layout of the returned Result is not stored and is left empty.
func (c *Cache) Get(key string) (*Result, error) {
	var colors int
	var requested, got sql.NullInt64
	var blob []byte
	switch err := c.db.QueryRow("SELECT colors, requested, got, image FROM result WHERE sha1 = ?", key).Scan(&colors, &requested, &got, &blob); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		m, err := pcx.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, err
		}

		// The file always has a full palette, trim it back
		pm := m.(*image.Paletted)
		if colors > 0 && colors < len(pm.Palette) {
			pm.Palette = pm.Palette[:colors]
		}

		r := &Result{
			Image:   pm,
			Palette: pm.Palette,
		}
		if requested.Valid && got.Valid {
			r.Exhausted = &palette.ExhaustedError{
				Requested: int(requested.Int64),
				Got:       int(got.Int64),
			}
		}
		return r, nil
	default:
		return nil, err
	}
}

// Put stores r under key, replacing any existing entry.
func (c *Cache) Put(key string, r *Result) error {
	b := new(bytes.Buffer)
	if err := pcx.Encode(b, r.Image); err != nil {
		return err
	}

	var requested, got sql.NullInt64
	if r.Exhausted != nil {
		requested = sql.NullInt64{Int64: int64(r.Exhausted.Requested), Valid: true}
		got = sql.NullInt64{Int64: int64(r.Exhausted.Got), Valid: true}
	}

	if _, err := c.db.Exec("INSERT OR REPLACE INTO result (sha1, colors, requested, got, image) VALUES (?, ?, ?, ?, ?)", key, len(r.Image.Palette), requested, got, b.Bytes()); err != nil {
		return err
	}
	return nil
}
