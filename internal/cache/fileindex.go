package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FileEntry holds the scanner state for a file.
type FileEntry struct {
	FilePath  string
	ScanHash  string
	Signals   []byte
	ScannedAt time.Time
}

// SetFileSignals records the scanner signals extracted from a file with
// the given content hash.
func (c *Cache) SetFileSignals(path, hash string, signals []byte) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO file_index (file_path, scan_hash, signals, scanned_at)
		VALUES (?, ?, ?, ?)`,
		path, hash, signals, c.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set file signals %s: %w", path, err)
	}
	return nil
}

// FileSignals returns the stored signals for path when they were recorded
// for the same content hash.
func (c *Cache) FileSignals(path, hash string) ([]byte, bool, error) {
	entry, err := c.GetFileEntry(path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if entry.ScanHash != hash {
		return nil, false, nil
	}
	return entry.Signals, true, nil
}

// GetFileEntry retrieves the full file entry including scan time.
// Returns sql.ErrNoRows if the file has not been scanned.
func (c *Cache) GetFileEntry(path string) (*FileEntry, error) {
	var entry FileEntry
	var scannedAt string
	err := c.db.QueryRow(`
		SELECT file_path, scan_hash, signals, scanned_at FROM file_index WHERE file_path = ?`,
		path).Scan(&entry.FilePath, &entry.ScanHash, &entry.Signals, &scannedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get file entry %s: %w", path, err)
	}
	entry.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
	return &entry, nil
}

// DeleteFileEntry removes a file from the index.
func (c *Cache) DeleteFileEntry(path string) error {
	_, err := c.db.Exec("DELETE FROM file_index WHERE file_path = ?", path)
	if err != nil {
		return fmt.Errorf("delete file entry %s: %w", path, err)
	}
	return nil
}
