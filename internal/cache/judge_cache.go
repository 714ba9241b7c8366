// Package cache provides a SQLite-backed store for judge responses, so that
// re-running a scenario against an unchanged transcript does not re-spend
// judge calls.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one cached judge response.
type Entry struct {
	Output string
}

// JudgeCache stores judge outputs keyed by (content hash, model).
type JudgeCache struct {
	db *sql.DB
}

// Open opens (or creates) a judge cache at dbPath.
func Open(dbPath string) (*JudgeCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	c, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New creates the judge_responses table if it doesn't exist and returns a
// JudgeCache backed by the provided *sql.DB.
func New(db *sql.DB) (*JudgeCache, error) {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS judge_responses (
			content_hash TEXT    NOT NULL,
			model        TEXT    NOT NULL,
			output       TEXT    NOT NULL,
			created_at   INTEGER NOT NULL,
			PRIMARY KEY (content_hash, model)
		)
	`); err != nil {
		return nil, fmt.Errorf("create judge_responses table: %w", err)
	}

	return &JudgeCache{db: db}, nil
}

// Get returns the cached entry for (contentHash, model), or nil on a miss.
func (c *JudgeCache) Get(contentHash, model string) (*Entry, error) {
	row := c.db.QueryRow(
		`SELECT output FROM judge_responses WHERE content_hash = ? AND model = ?`,
		contentHash, model,
	)
	var e Entry
	if err := row.Scan(&e.Output); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("judge cache get: %w", err)
	}
	return &e, nil
}

// Put stores (or replaces) the entry for (contentHash, model).
func (c *JudgeCache) Put(contentHash, model string, e *Entry) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO judge_responses (content_hash, model, output, created_at)
		 VALUES (?, ?, ?, ?)`,
		contentHash, model, e.Output, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("judge cache put: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *JudgeCache) Close() error {
	return c.db.Close()
}

// ContentHash returns the hex sha256 of content, the cache key half that
// identifies what was judged.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
