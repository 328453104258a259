package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

const schemaKV = `
CREATE TABLE IF NOT EXISTS kv (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (namespace, key)
);
`

const (
	upsertKVSQL = `
		INSERT INTO kv (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectKVSQL = `SELECT value FROM kv WHERE namespace=? AND key=?`

	deleteNamespaceSQL = `DELETE FROM kv WHERE namespace=?`
)

// SQLiteBackend stores entries in a single kv table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps an already prepared database.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaKV); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply kv schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return NewSQLiteBackend(db), nil
}

func (b *SQLiteBackend) Get(ctx context.Context, namespace, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, selectKVSQL, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put upserts entries inside one transaction, in key order.
func (b *SQLiteBackend) Put(ctx context.Context, namespace string, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin kv transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsertKVSQL, namespace, k, entries[k], now); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", namespace, k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit kv transaction: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Erase(ctx context.Context, namespace string) error {
	_, err := b.db.ExecContext(ctx, deleteNamespaceSQL, namespace)
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
