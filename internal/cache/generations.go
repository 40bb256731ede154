package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a fingerprint has no cached generation.
var ErrNotFound = errors.New("generation not cached")

// Entry describes one cached generation.
type Entry struct {
	Fingerprint string
	Kind        string
	Theme       string
	Style       string
	Description string
	Elements    int
	Hits        int
	CreatedAt   time.Time
	UsedAt      time.Time
}

// Put stores a document under its fingerprint. An existing row keeps its
// creation time and hit count.
func (c *Cache) Put(e Entry, document []byte) error {
	now := c.now().UTC().Format(time.RFC3339)
	_, err := c.db.Exec(`
		INSERT INTO generations (fingerprint, kind, theme, style, description, document, elements, hits, created_at, used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			document = excluded.document,
			elements = excluded.elements,
			used_at = excluded.used_at`,
		e.Fingerprint, e.Kind, e.Theme, e.Style, e.Description, document, e.Elements, now, now,
	)
	if err != nil {
		return fmt.Errorf("put generation %s: %w", short(e.Fingerprint), err)
	}
	return nil
}

// Get returns the cached document for a fingerprint and records the hit.
// Returns ErrNotFound if nothing is cached.
func (c *Cache) Get(fingerprint string) ([]byte, *Entry, error) {
	var doc []byte
	var entry Entry
	var created, used string
	err := c.db.QueryRow(`
		SELECT document, fingerprint, kind, theme, style, description, elements, hits, created_at, used_at
		FROM generations WHERE fingerprint = ?`, fingerprint).
		Scan(&doc, &entry.Fingerprint, &entry.Kind, &entry.Theme, &entry.Style,
			&entry.Description, &entry.Elements, &entry.Hits, &created, &used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get generation %s: %w", short(fingerprint), err)
	}

	now := c.now().UTC()
	if _, err := c.db.Exec(`UPDATE generations SET hits = hits + 1, used_at = ? WHERE fingerprint = ?`,
		now.Format(time.RFC3339), fingerprint); err != nil {
		return nil, nil, fmt.Errorf("record hit %s: %w", short(fingerprint), err)
	}

	entry.Hits++
	entry.CreatedAt, _ = time.Parse(time.RFC3339, created)
	entry.UsedAt = now.Truncate(time.Second)
	return doc, &entry, nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (c *Cache) List(limit int) ([]Entry, error) {
	query := `
		SELECT fingerprint, kind, theme, style, description, elements, hits, created_at, used_at
		FROM generations ORDER BY created_at DESC, fingerprint`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, used string
		if err := rows.Scan(&e.Fingerprint, &e.Kind, &e.Theme, &e.Style, &e.Description,
			&e.Elements, &e.Hits, &created, &used); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		e.UsedAt, _ = time.Parse(time.RFC3339, used)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes one generation.
func (c *Cache) Delete(fingerprint string) error {
	res, err := c.db.Exec("DELETE FROM generations WHERE fingerprint = ?", fingerprint)
	if err != nil {
		return fmt.Errorf("delete generation %s: %w", short(fingerprint), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
