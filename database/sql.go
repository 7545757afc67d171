package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Dialect muda apenas o formato dos placeholders.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv_entries (
	entry_key   TEXT PRIMARY KEY,
	entry_value TEXT NOT NULL
)`

// SQL implementa KV sobre uma tabela kv_entries em qualquer banco database/sql.
type SQL struct {
	db      *sql.DB
	dialect Dialect

	getQuery    string
	setQuery    string
	removeQuery string
}

// NewSQL cria a tabela (se necessário) e prepara as queries do dialeto.
func NewSQL(db *sql.DB, dialect Dialect) (*SQL, error) {
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	p1, p2 := "?", "?"
	if dialect == DialectPostgres {
		p1, p2 = "$1", "$2"
	}

	return &SQL{
		db:          db,
		dialect:     dialect,
		getQuery:    "SELECT entry_value FROM kv_entries WHERE entry_key = " + p1,
		setQuery:    "INSERT INTO kv_entries (entry_key, entry_value) VALUES (" + p1 + ", " + p2 + ") ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value",
		removeQuery: "DELETE FROM kv_entries WHERE entry_key = " + p1,
	}, nil
}

// OpenSQLite abre (ou cria) o banco SQLite local em path.
func OpenSQLite(path string) (*SQL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// um único escritor evita SQLITE_BUSY entre conexões do pool
	db.SetMaxOpenConns(1)

	store, err := NewSQL(db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	default:
		return value, true, nil
	}
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.removeQuery, key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
