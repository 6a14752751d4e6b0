package onetileset

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/tile"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a SQLite database of exported objects and the tiles they use.
type Catalog struct {
	db *sql.DB
}

// Entry is an object recorded in the catalog.
type Entry struct {
	Source     string
	Name       string
	Role       object.Role
	Decorative bool
	Width      int
	Height     int
	Tiles      int
}

var catalogSchema = []string{
	"CREATE TABLE IF NOT EXISTS tile (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, collisions BLOB NOT NULL)",
	"CREATE TABLE IF NOT EXISTS object (id INTEGER PRIMARY KEY NOT NULL, source TEXT NOT NULL, name TEXT NOT NULL, role TEXT NOT NULL, decorative INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, layout BLOB NOT NULL, UNIQUE(source, name))",
	"CREATE TABLE IF NOT EXISTS object_tile (object_id INTEGER NOT NULL, tile_id INTEGER NOT NULL, ordinal INTEGER NOT NULL, FOREIGN KEY(object_id) REFERENCES object(id) ON DELETE CASCADE, FOREIGN KEY(tile_id) REFERENCES tile(id))",
}

func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Exports may run concurrently, SQLite only has one writer
	db.SetMaxOpenConns(1)

	for _, stmt := range catalogSchema {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

func tileHash(t *tile.Tile) string {
	h := sha1.New()
	h.Write(t.ColorImage().Pix)
	h.Write(t.NormalImage().Pix)
	h.Write(t.Collisions[:])
	return fmt.Sprintf("%X", h.Sum(nil))
}

func addTile(tx *sql.Tx, t *tile.Tile) (int64, error) {
	sha := tileHash(t)

	var id int64
	switch err := tx.QueryRow("SELECT id FROM tile WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO tile (sha1, collisions) VALUES (?, ?)", sha, t.Collisions[:])
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

func addObject(tx *sql.Tx, source string, obj *object.Object) error {
	if _, err := tx.Exec("DELETE FROM object WHERE source = ? AND name = ?", source, obj.Name); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO object (source, name, role, decorative, width, height, layout) VALUES (?, ?, ?, ?, ?, ?, ?)",
		source, obj.Name, obj.Role.Code(), obj.Decorative, obj.Width, obj.Height, obj.Layout())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, t := range obj.AllTiles() {
		if t.IsEmpty() {
			continue
		}
		tileID, err := addTile(tx, t)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("INSERT INTO object_tile (object_id, tile_id, ordinal) VALUES (?, ?, ?)", id, tileID, i); err != nil {
			return err
		}
	}

	return nil
}

// Import records objs as coming from source, replacing any objects of the
// same name from the same source.
func (c *Catalog) Import(objs []*object.Object, source string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}

	for _, obj := range objs {
		if err := addObject(tx, source, obj); err != nil {
			tx.Rollback()
			return fmt.Errorf("catalog %s: %w", obj.Name, err)
		}
	}

	return tx.Commit()
}

// FindByRole returns every object with the given role, ordered by source
// and name.
func (c *Catalog) FindByRole(role object.Role) ([]Entry, error) {
	rows, err := c.db.Query("SELECT o.source, o.name, o.role, o.decorative, o.width, o.height, COUNT(DISTINCT ot.tile_id) FROM object AS o LEFT JOIN object_tile AS ot ON ot.object_id = o.id WHERE o.role = ? GROUP BY o.id ORDER BY o.source, o.name", role.Code())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			code string
		)
		if err := rows.Scan(&e.Source, &e.Name, &code, &e.Decorative, &e.Width, &e.Height, &e.Tiles); err != nil {
			return nil, err
		}
		if e.Role, err = object.ParseRole(code); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SharedTiles returns the number of distinct tiles used by more than one
// object in the catalog.
func (c *Catalog) SharedTiles() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM (SELECT tile_id FROM object_tile GROUP BY tile_id HAVING COUNT(DISTINCT object_id) > 1)").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
