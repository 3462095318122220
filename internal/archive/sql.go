package archive

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/klauspost/compress/zlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects placeholder and column type syntax.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return DialectSQLite, nil
	case "pgx", "postgres":
		return DialectPostgres, nil
	default:
		return 0, fmt.Errorf("archive: unsupported sql driver %q", driver)
	}
}

// fileMode is the sqlar mode of a regular 0644 file.
const fileMode = 0o100644

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLConfig holds configuration for an SQL-backed archive.
type SQLConfig struct {
	// Driver is the database/sql driver: "sqlite3", "pgx" or "postgres"
	// (lib/pq)
	Driver string
	// DSN is the driver-specific data source name
	DSN string
	// Table is the sqlar table name
	Table string
	// Timeout bounds each statement
	Timeout time.Duration
}

// DefaultSQLConfig returns a default SQL archive configuration
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		Driver:  "sqlite3",
		DSN:     "assets.db",
		Table:   "sqlar",
		Timeout: 5 * time.Second,
	}
}

// SQL stores entries in a table laid out like SQLite's "sqlar" archive
// format: (name, mode, mtime, sz, data). As in sqlar, data is zlib
// compressed when that makes it smaller, and sz always holds the
// uncompressed size.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	table   string
	timeout time.Duration
	now     func() time.Time
}

// OpenSQL opens the database described by config and ensures the table
// exists.
func OpenSQL(config SQLConfig) (*SQL, error) {
	dialect, err := DialectForDriver(config.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", config.Driver, err)
	}

	a, err := NewSQL(db, dialect, config.Table, config.Timeout)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := a.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// NewSQL wraps an existing database handle. It does not touch the schema.
func NewSQL(db *sql.DB, dialect Dialect, table string, timeout time.Duration) (*SQL, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("archive: invalid table name %q", table)
	}
	if timeout <= 0 {
		timeout = DefaultSQLConfig().Timeout
	}
	return &SQL{
		db:      db,
		dialect: dialect,
		table:   table,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// EnsureSchema creates the archive table if it does not exist.
func (a *SQL) EnsureSchema() error {
	blob, integer := "BLOB", "INT"
	if a.dialect == DialectPostgres {
		blob, integer = "BYTEA", "BIGINT"
	}
	query := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s(name TEXT PRIMARY KEY, mode %s, mtime %s, sz %s, data %s)",
		a.table, integer, integer, integer, blob)

	ctx, cancel := a.context()
	defer cancel()
	if _, err := a.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("archive: create table %s: %w", a.table, err)
	}
	return nil
}

func (a *SQL) EntryNames() ([]string, error) {
	ctx, cancel := a.context()
	defer cancel()

	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM %s ORDER BY name", a.table))
	if err != nil {
		return nil, fmt.Errorf("archive: list entries: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *SQL) Open(name string) (Entry, error) {
	ctx, cancel := a.context()
	defer cancel()

	var (
		size int64
		data []byte
	)
	query := a.bind(fmt.Sprintf("SELECT sz, data FROM %s WHERE name = ?", a.table))
	err := a.db.QueryRowContext(ctx, query, name).Scan(&size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", name, err)
	}

	content, err := inflate(size, data)
	if err != nil {
		return nil, fmt.Errorf("archive: inflate %s: %w", name, err)
	}
	return newBufferedEntry(name, content, a.committer(name)), nil
}

func (a *SQL) Create(name string) (Entry, error) {
	if err := a.put(name, nil); err != nil {
		return nil, err
	}
	return newBufferedEntry(name, nil, a.committer(name)), nil
}

// Close closes the underlying database handle.
func (a *SQL) Close() error {
	return a.db.Close()
}

func (a *SQL) committer(name string) func([]byte) error {
	return func(data []byte) error {
		return a.put(name, data)
	}
}

func (a *SQL) put(name string, content []byte) error {
	ctx, cancel := a.context()
	defer cancel()

	stored, err := deflate(content)
	if err != nil {
		return fmt.Errorf("archive: deflate %s: %w", name, err)
	}

	query := a.bind(fmt.Sprintf(
		"INSERT INTO %s(name, mode, mtime, sz, data) VALUES(?, ?, ?, ?, ?) "+
			"ON CONFLICT(name) DO UPDATE SET mode = excluded.mode, mtime = excluded.mtime, sz = excluded.sz, data = excluded.data",
		a.table))
	_, err = a.db.ExecContext(ctx, query, name, fileMode, a.now().Unix(), len(content), stored)
	if err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	return nil
}

func (a *SQL) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// bind rewrites ? placeholders to $n for Postgres.
func (a *SQL) bind(query string) string {
	if a.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// deflate returns the zlib form of content if it is smaller, else content.
func deflate(content []byte) ([]byte, error) {
	if len(content) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(content); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if buf.Len() < len(content) {
		return buf.Bytes(), nil
	}
	return content, nil
}

// inflate undoes deflate: data is compressed exactly when its length
// differs from size.
func inflate(size int64, data []byte) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}
	if int64(len(data)) == size {
		return data, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, 0, size)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
