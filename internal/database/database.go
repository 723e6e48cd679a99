package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/letieu/agent-directory/config"
	"github.com/lib/pq"
	"github.com/rotisserie/eris"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectLibSQL   Dialect = "libsql"
	DialectPostgres Dialect = "postgres"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// store holds the queries shared by DB and Tx.
type store struct {
	q       querier
	dialect Dialect
	now     func() time.Time
}

type DB struct {
	store
	conn *sql.DB
}

// Tx runs listing queries inside one database transaction.
type Tx struct {
	store
}

func NewDB(cfg *config.Config) (*DB, error) {
	return Open(Dialect(cfg.Database.Type), cfg.DSN())
}

// Open connects with the driver registered for dialect. SQLite connections
// get foreign keys enabled and a single connection, so ":memory:" databases
// are shared by every query.
func Open(dialect Dialect, dsn string) (*DB, error) {
	driver := string(dialect)
	switch dialect {
	case DialectSQLite:
		dsn = withSQLitePragmas(dsn)
	case DialectLibSQL, DialectPostgres:
	default:
		return nil, eris.Errorf("database: unsupported dialect %q", dialect)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "database: open")
	}
	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, eris.Wrap(err, "database: ping")
	}

	return &DB{
		store: store{q: conn, dialect: dialect, now: func() time.Time { return time.Now().UTC() }},
		conn:  conn,
	}, nil
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"
}

// InitSchema creates the tables for the connection's dialect. Statements run
// one by one inside a transaction so drivers without multi-statement Exec
// support work too.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := sqliteSchema
	if db.dialect == DialectPostgres {
		schema = postgresSchema
	}

	return db.WithTx(ctx, func(tx *Tx) error {
		for _, stmt := range strings.Split(schema, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := tx.q.ExecContext(ctx, stmt); err != nil {
				return eris.Wrapf(err, "database: schema statement %q", firstLine(stmt))
			}
		}
		return nil
	})
}

// WithTx runs fn in a transaction. Any error from fn, or a panic, rolls the
// whole transaction back.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "database: begin")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(&Tx{store: store{q: sqlTx, dialect: db.dialect, now: db.now}}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return eris.Wrap(err, "database: commit")
	}
	return nil
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (s store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
