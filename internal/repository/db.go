package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// Dialect selects placeholder and insert syntax for the configured driver.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// DB is a connection pool paired with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// NewDB opens a connection pool for driver ("mysql" or "postgres") and pings it.
// A failed ping is logged, not returned, so the API can start before the database.
func NewDB(ctx context.Context, driver, dsn string, log logrus.FieldLogger) (*DB, error) {
	var driverName string
	switch Dialect(driver) {
	case DialectMySQL:
		driverName = "mysql"
	case DialectPostgres:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.WithError(err).Warn("database ping failed, continuing")
	}

	return &DB{DB: db, Dialect: Dialect(driver)}, nil
}

// Rebind rewrites "?" placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// insertReturningID runs an INSERT and returns the generated id. Postgres has
// no LastInsertId, so the statement gets a RETURNING clause there.
func (d *DB) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if d.Dialect == DialectPostgres {
		var id int64
		err := d.QueryRowContext(ctx, d.Dialect.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	result, err := d.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// isDuplicateEntryError reports unique-constraint violations from either driver.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "Duplicate entry")
}
