// Package cache stores lint results in .scriptlint/cache.db so unchanged
// scripts are not analyzed again. Entries are keyed by file path and are only
// valid for the content hash and settings fingerprint they were written with.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the config directory.
const FileName = "cache.db"

// Cache manages the result cache database.
type Cache struct {
	db          *sql.DB
	dbPath      string
	fingerprint string
}

// Open opens or creates the cache database in dir. Lookups only hit entries
// written under the same fingerprint.
func Open(dir, fingerprint string) (*Cache, error) {
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// Workers share one connection; sqlite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath, fingerprint: fingerprint}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes every cached result.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM results"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Fingerprint returns the settings fingerprint entries are matched against.
func (c *Cache) Fingerprint() string {
	return c.fingerprint
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int `yaml:"entries" json:"entries"`
	// Current counts entries written under the open fingerprint.
	Current int    `yaml:"current" json:"current"`
	Path    string `yaml:"path" json:"path"`
}

// GetStats counts the cached entries.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{Path: c.dbPath}
	err := c.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN fingerprint = ? THEN 1 ELSE 0 END), 0)
		FROM results`, c.fingerprint).Scan(&stats.Entries, &stats.Current)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}
