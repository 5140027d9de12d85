package statedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// StateDB wraps a SQLite database holding palette history for one profile.
// Safe for concurrent use within one process; several processes may share
// the file through WAL mode plus a busy timeout.
type StateDB struct {
	db *sql.DB
}

// RecentItemRow is one recently activated project or task
type RecentItemRow struct {
	ItemID    string
	Type      string
	ProjectID string
	Title     string
	UsedAt    time.Time
}

// RecentSearchRow is one previously submitted search term
type RecentSearchRow struct {
	Query  string
	UsedAt time.Time
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy timeout.
func Open(dbPath string) (*StateDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	// Busy timeout goes in the DSN so every pooled connection waits up to
	// 5s for a lock held by another process
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// WAL mode: concurrent readers while a palette writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: wal mode: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *StateDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist and records the schema version.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	// project_id equals item_id for project rows, so task ids stay scoped
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS recent_items (
			item_type  TEXT NOT NULL,
			project_id TEXT NOT NULL,
			item_id    TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			used_at    INTEGER NOT NULL,
			PRIMARY KEY (item_type, project_id, item_id)
		)
	`); err != nil {
		return fmt.Errorf("statedb: create recent_items: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS recent_searches (
			term    TEXT PRIMARY KEY,
			used_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create recent_searches: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)",
		strconv.Itoa(SchemaVersion),
	); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// IsEmpty reports whether no history has been recorded yet.
func (s *StateDB) IsEmpty() (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM recent_items) + (SELECT COUNT(*) FROM recent_searches)
	`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// --- Recent items ---

// AddRecentItem upserts row as the most recent item, then trims the table to
// keep rows. keep <= 0 disables trimming.
func (s *StateDB) AddRecentItem(row RecentItemRow, keep int) error {
	if row.UsedAt.IsZero() {
		row.UsedAt = time.Now()
	}
	projectID := row.ProjectID
	if projectID == "" {
		projectID = row.ItemID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin recent item: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO recent_items (item_type, project_id, item_id, title, used_at)
		VALUES (?, ?, ?, ?, ?)
	`, row.Type, projectID, row.ItemID, row.Title, row.UsedAt.UnixNano()); err != nil {
		return fmt.Errorf("statedb: save recent item %s: %w", row.ItemID, err)
	}
	if keep > 0 {
		if _, err := tx.Exec(`
			DELETE FROM recent_items WHERE rowid NOT IN (
				SELECT rowid FROM recent_items ORDER BY used_at DESC, rowid DESC LIMIT ?
			)
		`, keep); err != nil {
			return fmt.Errorf("statedb: trim recent items: %w", err)
		}
	}
	if err := touchTx(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadRecentItems returns up to limit items, most recent first. limit <= 0
// returns all.
func (s *StateDB) LoadRecentItems(limit int) ([]RecentItemRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT item_id, item_type, project_id, title, used_at
		FROM recent_items ORDER BY used_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: load recent items: %w", err)
	}
	defer rows.Close()

	var result []RecentItemRow
	for rows.Next() {
		var r RecentItemRow
		var usedAt int64
		if err := rows.Scan(&r.ItemID, &r.Type, &r.ProjectID, &r.Title, &usedAt); err != nil {
			return nil, fmt.Errorf("statedb: scan recent item: %w", err)
		}
		r.UsedAt = time.Unix(0, usedAt)
		result = append(result, r)
	}
	return result, rows.Err()
}

// --- Recent searches ---

// AddRecentSearch upserts query as the most recent search, then trims the
// table to keep rows. keep <= 0 disables trimming.
func (s *StateDB) AddRecentSearch(query string, usedAt time.Time, keep int) error {
	if usedAt.IsZero() {
		usedAt = time.Now()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin recent search: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO recent_searches (term, used_at) VALUES (?, ?)",
		query, usedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("statedb: save recent search: %w", err)
	}
	if keep > 0 {
		if _, err := tx.Exec(`
			DELETE FROM recent_searches WHERE rowid NOT IN (
				SELECT rowid FROM recent_searches ORDER BY used_at DESC, rowid DESC LIMIT ?
			)
		`, keep); err != nil {
			return fmt.Errorf("statedb: trim recent searches: %w", err)
		}
	}
	if err := touchTx(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadRecentSearches returns up to limit searches, most recent first.
// limit <= 0 returns all.
func (s *StateDB) LoadRecentSearches(limit int) ([]RecentSearchRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT term, used_at FROM recent_searches ORDER BY used_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: load recent searches: %w", err)
	}
	defer rows.Close()

	var result []RecentSearchRow
	for rows.Next() {
		var r RecentSearchRow
		var usedAt int64
		if err := rows.Scan(&r.Query, &usedAt); err != nil {
			return nil, fmt.Errorf("statedb: scan recent search: %w", err)
		}
		r.UsedAt = time.Unix(0, usedAt)
		result = append(result, r)
	}
	return result, rows.Err()
}

// ClearRecents deletes all recent items and searches.
func (s *StateDB) ClearRecents() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM recent_items"); err != nil {
		return fmt.Errorf("statedb: clear recent items: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM recent_searches"); err != nil {
		return fmt.Errorf("statedb: clear recent searches: %w", err)
	}
	if err := touchTx(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Metadata ---

// SetMeta sets a key-value pair in the metadata table.
func (s *StateDB) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *StateDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// --- Change detection ---

// Touch updates a metadata timestamp that other palettes poll to notice
// history written elsewhere.
func (s *StateDB) Touch() error {
	return s.SetMeta("last_modified", strconv.FormatInt(time.Now().UnixNano(), 10))
}

func touchTx(tx *sql.Tx) error {
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_modified', ?)",
		strconv.FormatInt(time.Now().UnixNano(), 10),
	); err != nil {
		return fmt.Errorf("statedb: touch: %w", err)
	}
	return nil
}

// LastModified returns the last_modified timestamp from metadata.
func (s *StateDB) LastModified() (int64, error) {
	val, err := s.GetMeta("last_modified")
	if err != nil || val == "" {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}
