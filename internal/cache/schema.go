package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - generations: one row per request fingerprint with the document bytes
//   - file_index: scanner signals per file, keyed by path and content hash
const schemaSQL = `
CREATE TABLE IF NOT EXISTS generations (
    fingerprint TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    theme TEXT NOT NULL,
    style TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    document BLOB NOT NULL,
    elements INTEGER NOT NULL DEFAULT 0,
    hits INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    used_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_index (
    file_path TEXT PRIMARY KEY,
    scan_hash TEXT NOT NULL,
    signals BLOB NOT NULL,
    scanned_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at DESC);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
