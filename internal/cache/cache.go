// Package cache provides the SQLite-backed generation cache. It stores
// every generated document by request fingerprint, which also serves as
// the generation history, and the per-file signals of the project
// scanner. The cache lives in .exdraw/cache.db by default.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache manages the cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Open opens or creates the cache database at dbPath, creating its parent
// directory. It initializes the schema if the database is new.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath, now: time.Now}

	// Initialize schema
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all cached generations and scanner entries.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM generations; DELETE FROM file_index;")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// ClearFileIndex removes all scanner entries.
func (c *Cache) ClearFileIndex() error {
	_, err := c.db.Exec("DELETE FROM file_index")
	if err != nil {
		return fmt.Errorf("clear file index: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats returns cache statistics.
type Stats struct {
	GenerationCount int64
	FileIndexCount  int64
	TotalHits       int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(hits), 0) FROM generations").
		Scan(&stats.GenerationCount, &stats.TotalHits)
	if err != nil {
		return nil, fmt.Errorf("count generations: %w", err)
	}

	err = c.db.QueryRow("SELECT COUNT(*) FROM file_index").Scan(&stats.FileIndexCount)
	if err != nil {
		return nil, fmt.Errorf("count file index: %w", err)
	}

	return &stats, nil
}
