// Package store provides the SQLite-backed key-value suite shared by the
// CLI, the dashboard and the widget daemon.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver
)

// DefaultSuite is the shared group every fxtrip process reads and writes.
const DefaultSuite = "group.fxtrip"

// Suite is a named key space inside the store database.
type Suite struct {
	db    *sql.DB
	name  string
	owner bool
}

// Open opens or creates the store database at dbPath and scopes it to suite.
func Open(dbPath, suite string) (*Suite, error) {
	if suite == "" {
		suite = DefaultSuite
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Suite{db: db, name: suite, owner: true}, nil
}

// Named returns a view of another suite sharing the same database.
// Closing the view does not close the database.
func (s *Suite) Named(suite string) *Suite {
	return &Suite{db: s.db, name: suite}
}

// Name returns the suite name.
func (s *Suite) Name() string { return s.name }

// Close closes the database if this suite opened it.
func (s *Suite) Close() error {
	if !s.owner {
		return nil
	}
	return s.db.Close()
}

// Blob returns the raw value stored under key.
func (s *Suite) Blob(key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE suite = ? AND key = ?", s.name, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, true, nil
}

// SetBlob stores value under key, replacing any previous value.
func (s *Suite) SetBlob(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (suite, key, value, updated_at)
		VALUES (?, ?, ?, ?)`, s.name, key, value, now)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Suite) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE suite = ? AND key = ?", s.name, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys of the suite in lexical order.
func (s *Suite) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv WHERE suite = ? ORDER BY key", s.name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// String returns the string stored under key.
func (s *Suite) String(key string) (string, bool, error) {
	b, ok, err := s.Blob(key)
	return string(b), ok, err
}

// SetString stores a string value.
func (s *Suite) SetString(key, value string) error {
	return s.SetBlob(key, []byte(value))
}

// Int returns the integer stored under key.
func (s *Suite) Int(key string) (int64, bool, error) {
	b, ok, err := s.Blob(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return n, true, nil
}

// SetInt stores an integer value.
func (s *Suite) SetInt(key string, value int64) error {
	return s.SetBlob(key, []byte(strconv.FormatInt(value, 10)))
}

// Decimal returns the decimal stored under key.
func (s *Suite) Decimal(key string) (decimal.Decimal, bool, error) {
	b, ok, err := s.Blob(key)
	if err != nil || !ok {
		return decimal.Zero, ok, err
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return d, true, nil
}

// SetDecimal stores a decimal value without loss of precision.
func (s *Suite) SetDecimal(key string, value decimal.Decimal) error {
	return s.SetBlob(key, []byte(value.String()))
}

// Time returns the instant stored under key.
func (s *Suite) Time(key string) (time.Time, bool, error) {
	b, ok, err := s.Blob(key)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return t, true, nil
}

// SetTime stores an instant in UTC.
func (s *Suite) SetTime(key string, value time.Time) error {
	return s.SetBlob(key, []byte(value.UTC().Format(time.RFC3339Nano)))
}
