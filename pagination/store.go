package pagination

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Row is the single offset cache row. Offset is nil when there is no
// further page.
type Row struct {
	ID     int64 `json:"id"`
	Count  int64 `json:"count"`
	Offset *int  `json:"offset"`
}

// Store persists the offset of the next page to request. It holds at most
// one row.
type Store interface {
	// Offset returns the stored offset, or nil when there is no row or the
	// row has no offset.
	Offset(ctx context.Context) (*int, error)

	// Row returns the stored row, or nil when there is none.
	Row(ctx context.Context) (*Row, error)

	// Replace removes every row and inserts one, atomically.
	Replace(ctx context.Context, count int64, offset *int) error

	// Clear removes every row.
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the offset row in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; an in-memory database would otherwise differ per connection
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the pagination table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pagination (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		count INTEGER NOT NULL,
		"offset" INTEGER
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Offset returns the stored offset.
func (s *SQLiteStore) Offset(ctx context.Context) (*int, error) {
	row, err := s.Row(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	return row.Offset, nil
}

// Row returns the stored row.
func (s *SQLiteStore) Row(ctx context.Context) (*Row, error) {
	query := `SELECT id, count, "offset" FROM pagination ORDER BY id DESC LIMIT 1`

	var row Row
	var offset sql.NullInt64
	err := s.db.QueryRowContext(ctx, query).Scan(&row.ID, &row.Count, &offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pagination: %w", err)
	}

	if offset.Valid {
		v := int(offset.Int64)
		row.Offset = &v
	}

	return &row, nil
}

// Replace deletes every row and inserts the new one in a transaction.
func (s *SQLiteStore) Replace(ctx context.Context, count int64, offset *int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pagination`); err != nil {
		return fmt.Errorf("failed to clear pagination: %w", err)
	}

	var offsetArg any
	if offset != nil {
		offsetArg = *offset
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pagination (count, "offset") VALUES (?, ?)`,
		count, offsetArg,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pagination: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pagination: %w", err)
	}

	return nil
}

// Clear deletes every row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pagination`); err != nil {
		return fmt.Errorf("failed to clear pagination: %w", err)
	}
	return nil
}

// MemoryStore keeps the offset row in memory. The zero value is ready to
// use.
type MemoryStore struct {
	mu     sync.Mutex
	row    *Row
	nextID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Offset(ctx context.Context) (*int, error) {
	row, _ := m.Row(ctx)
	if row == nil {
		return nil, nil
	}
	return row.Offset, nil
}

func (m *MemoryStore) Row(context.Context) (*Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.row == nil {
		return nil, nil
	}
	cp := *m.row
	if m.row.Offset != nil {
		v := *m.row.Offset
		cp.Offset = &v
	}
	return &cp, nil
}

func (m *MemoryStore) Replace(_ context.Context, count int64, offset *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	row := &Row{ID: m.nextID, Count: count}
	if offset != nil {
		v := *offset
		row.Offset = &v
	}
	m.row = row
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.row = nil
	return nil
}
