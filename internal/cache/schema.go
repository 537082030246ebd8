package cache

// results holds one row per file; a new write for the same path replaces the
// previous row regardless of fingerprint.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS results (
    file_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    result TEXT NOT NULL,
    checked_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_fingerprint ON results(fingerprint);
`

func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
