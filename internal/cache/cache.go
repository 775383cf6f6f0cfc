// Package cache memoizes compiled package exports in a local sqlite
// database, keyed by import path and file content hash (spec.md §4.H). A
// cache miss — including a missing or corrupt database — always falls
// back to running real inference; the cache is purely an optimization
// and is never treated as a source of truth for what a package exports.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache wraps a sqlite-backed key/value store of serialized export
// records.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at path (use ":memory:" for a
// process-local cache with no persistence).
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS package_exports (
			cache_key  TEXT PRIMARY KEY,
			export     TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Get looks up a previously stored export by cache key. The second
// return value is false on any miss, including a lookup error — callers
// must treat that identically to "not cached" and re-run inference.
func (c *Cache) Get(cacheKey string) (string, bool) {
	var export string
	err := c.db.QueryRow(`SELECT export FROM package_exports WHERE cache_key = ?`, cacheKey).Scan(&export)
	if err != nil {
		return "", false
	}
	return export, true
}

// Put stores a package's serialized export under cacheKey, overwriting
// any previous entry for that key.
func (c *Cache) Put(cacheKey, export string, unixNow int64) error {
	_, err := c.db.Exec(`
		INSERT INTO package_exports (cache_key, export, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET export = excluded.export, created_at = excluded.created_at
	`, cacheKey, export, unixNow)
	return err
}
