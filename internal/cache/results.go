package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hargabyte/scriptlint/internal/diag"
)

// HashContent returns the hex SHA-256 of a script's bytes.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes the JSON encoding of v. Callers pass everything that
// influences a result: tool version and effective settings.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return HashContent(data)[:16], nil
}

// Get returns the cached result for path when both the content hash and the
// fingerprint match. A miss returns (nil, false, nil).
func (c *Cache) Get(path, hash string) (*diag.Result, bool, error) {
	var raw string
	err := c.db.QueryRow(`
		SELECT result FROM results
		WHERE file_path = ? AND content_hash = ? AND fingerprint = ?`,
		path, hash, c.fingerprint).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached result %s: %w", path, err)
	}

	var result diag.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false, fmt.Errorf("decode cached result %s: %w", path, err)
	}
	result.File = path
	return &result, true, nil
}

// Put stores result for path under hash and the cache's fingerprint.
func (c *Cache) Put(path, hash string, result *diag.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", path, err)
	}
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO results (file_path, content_hash, fingerprint, result, checked_at)
		VALUES (?, ?, ?, ?, ?)`,
		path, hash, c.fingerprint, string(raw), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put cached result %s: %w", path, err)
	}
	return nil
}

// Prune deletes entries for which keep returns false. It returns the number
// of rows removed.
func (c *Cache) Prune(keep func(path string) bool) (int, error) {
	rows, err := c.db.Query("SELECT file_path FROM results")
	if err != nil {
		return 0, fmt.Errorf("list cached files: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan cached file: %w", err)
		}
		if !keep(p) {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("list cached files: %w", err)
	}

	for _, p := range stale {
		if _, err := c.db.Exec("DELETE FROM results WHERE file_path = ?", p); err != nil {
			return 0, fmt.Errorf("prune %s: %w", p, err)
		}
	}
	return len(stale), nil
}
