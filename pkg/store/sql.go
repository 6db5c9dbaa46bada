package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder style and upsert syntax for the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQL is the database/sql KV backend. It works against SQLite for
// single-node deployments and Postgres for shared ones.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps db and runs the schema migration.
func NewSQL(db *sql.DB, dialect Dialect) (*SQL, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	s := &SQL{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("kv migration failed: %w", err)
	}
	return s, nil
}

// OpenSQL opens a connection for the given dialect and wraps it.
func OpenSQL(dialect Dialect, dsn string) (*SQL, error) {
	driver := "sqlite"
	if dialect == DialectPostgres {
		driver = "postgres"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", dialect, err)
	}
	return NewSQL(db, dialect)
}

func (s *SQL) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		k TEXT PRIMARY KEY,
		v BYTEA
	);`
	if s.dialect == DialectSQLite {
		query = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		k TEXT PRIMARY KEY,
		v BLOB
	);`
	}
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQL) bind(query string) string {
	if s.dialect == DialectSQLite {
		return query
	}
	// Rewrite ? placeholders to $n for Postgres.
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, s.bind("SELECT v FROM kv_entries WHERE k = ?"), key)
	var v []byte
	err := row.Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	query := s.bind(`
		INSERT INTO kv_entries (k, v) VALUES (?, ?)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`)
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.bind("DELETE FROM kv_entries WHERE k = ?"), key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) ScanPrefix(ctx context.Context, prefix string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		s.bind(`SELECT k, v FROM kv_entries WHERE k LIKE ? ESCAPE '\'`), likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("kv scan %s: %w", prefix, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]byte)
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("kv scan row: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (s *SQL) Close() error {
	return s.db.Close()
}

// likePrefix escapes LIKE metacharacters so prefixes containing % or _
// match literally.
func likePrefix(prefix string) string {
	out := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out) + "%"
}
