package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore keeps values in a kv table and lists in kv_lists. It runs on
// SQLite by default and on Postgres for postgres:// DSNs.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func OpenSQL(ctx context.Context, dsn string) (*SQLStore, error) {
	driver := driverFor(dsn)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection: keeps :memory: databases alive and serialises writers
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := NewSQL(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("[store] sql driver=%s", driver)
	return s, nil
}

// NewSQL wraps an open handle and makes sure the schema exists.
func NewSQL(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	if err := ensureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

// WithClock replaces the time source used for expiry.
func (s *SQLStore) WithClock(now func() time.Time) *SQLStore {
	s.now = now
	return s
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	listID := `id INTEGER PRIMARY KEY AUTOINCREMENT`
	if db.DriverName() == "postgres" {
		listID = `id BIGSERIAL PRIMARY KEY`
	}
	schema := `
-- Values and counters; expires_at is unix millis, NULL = no expiry
CREATE TABLE IF NOT EXISTS kv(
  name TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  expires_at BIGINT
);

-- Lists; higher id = closer to the head
CREATE TABLE IF NOT EXISTS kv_lists(
  ` + listID + `,
  name TEXT NOT NULL,
  value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_kv_lists_name ON kv_lists(name, id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *SQLStore) nowMillis() int64 { return s.now().UnixMilli() }

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`
		SELECT value FROM kv
		WHERE name = ? AND (expires_at IS NULL OR expires_at > ?)
	`), key, s.nowMillis())
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Set stores value and clears any expiry, as Redis SET does.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO kv(name, value, expires_at) VALUES(?, ?, NULL)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = NULL
	`), key, value)
	return err
}

func (s *SQLStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"kv", "kv_lists"} {
		q, args, err := sqlx.In(`DELETE FROM `+table+` WHERE name IN (?)`, keys)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// mgetBatch keeps each IN list well under SQLite's bound-variable limit.
const mgetBatch = 500

func (s *SQLStore) MGet(ctx context.Context, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	found := make(map[string]string, len(keys))
	now := s.nowMillis()
	for start := 0; start < len(keys); start += mgetBatch {
		end := min(start+mgetBatch, len(keys))
		q, args, err := sqlx.In(`
			SELECT name, value FROM kv
			WHERE name IN (?) AND (expires_at IS NULL OR expires_at > ?)
		`, keys[start:end], now)
		if err != nil {
			return nil, err
		}
		var rows []struct {
			Name  string `db:"name"`
			Value string `db:"value"`
		}
		if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
			return nil, err
		}
		for _, r := range rows {
			found[r.Name] = r.Value
		}
	}
	for i, k := range keys {
		out[i] = found[k]
	}
	return out, nil
}

func (s *SQLStore) Incr(ctx context.Context, key string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// an expired counter starts over
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM kv WHERE name = ? AND expires_at IS NOT NULL AND expires_at <= ?
	`), key, s.nowMillis()); err != nil {
		return 0, err
	}
	var raw string
	if err := tx.GetContext(ctx, &raw, tx.Rebind(`
		INSERT INTO kv(name, value, expires_at) VALUES(?, '1', NULL)
		ON CONFLICT(name) DO UPDATE SET value = CAST(CAST(kv.value AS BIGINT) + 1 AS TEXT)
		RETURNING value
	`), key); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds %q: %w", key, raw, err)
	}
	return n, tx.Commit()
}

func (s *SQLStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE kv SET expires_at = ?
		WHERE name = ? AND (expires_at IS NULL OR expires_at > ?)
	`), now.Add(ttl).UnixMilli(), key, now.UnixMilli())
	return err
}

func (s *SQLStore) LPush(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO kv_lists(name, value) VALUES(?, ?)`), key, value)
	return err
}

func (s *SQLStore) LRange(ctx context.Context, key string) ([]string, error) {
	out := []string{}
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(`
		SELECT value FROM kv_lists WHERE name = ? ORDER BY id DESC
	`), key)
	return out, err
}

func (s *SQLStore) LRem(ctx context.Context, key, value string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv_lists WHERE name = ? AND value = ?`), key, value)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }
