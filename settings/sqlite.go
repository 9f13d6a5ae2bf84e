package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteFetcher keeps each group as one JSON document in a SQLite table.
type SQLiteFetcher struct {
	db *sql.DB
}

func NewSQLiteFetcher(dbPath string) (*SQLiteFetcher, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteFetcher{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteFetcher) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		group_name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteFetcher) Close() error {
	return s.db.Close()
}

func (s *SQLiteFetcher) Fetch(ctx context.Context, group string, v any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE group_name = ?", group).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query settings: %w", err)
	}

	if err := json.Unmarshal([]byte(value), v); err != nil {
		return false, fmt.Errorf("failed to decode settings group %q: %w", group, err)
	}
	return true, nil
}

// Save replaces the stored group with v.
func (s *SQLiteFetcher) Save(ctx context.Context, group string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal settings group %q: %w", group, err)
	}

	_, err = s.db.ExecContext(ctx, "INSERT OR REPLACE INTO settings (group_name, value) VALUES (?, ?)", group, string(data))
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
