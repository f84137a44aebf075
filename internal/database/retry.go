package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the application reacts to.  Classification is
// done on the numeric code from the driver, not on message text, so the
// behavior survives server locale and version changes.
const (
	mysqlErrBadField       = 1054 // ER_BAD_FIELD_ERROR: unknown column in projection
	mysqlErrServerGone     = 2006 // CR_SERVER_GONE_ERROR: server closed the connection
	mysqlErrServerLost     = 2013 // CR_SERVER_LOST: connection dropped mid-query
	mysqlErrCheckViolated  = 3819 // ER_CHECK_CONSTRAINT_VIOLATED
	mysqlErrDuplicateEntry = 1062 // ER_DUP_ENTRY: unique key violation
)

// IsConnectionLost reports whether err indicates the server closed the
// connection underneath the pool.  Operations failing this way are safe to
// retry once after a reconnect; the statement never started or never
// committed.
func IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlErrServerGone || me.Number == mysqlErrServerLost
	}
	// The driver wraps some transport failures in plain errors.
	return strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// IsUnknownColumn reports whether err is MySQL complaining about a column
// the live schema does not have.  The post repository uses this to fall
// back to a narrower projection when the deployed application is ahead of
// the database migration.
func IsUnknownColumn(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrBadField
}

// IsCheckConstraint reports whether err is a CHECK constraint violation.
func IsCheckConstraint(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrCheckViolated
}

// IsDuplicateEntry reports whether err is a unique key violation.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// ErrorNumber returns the MySQL error number inside err, or 0 when err is
// not a server error.  Handlers append it to 500 responses for admins only.
func ErrorNumber(err error) int {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return int(me.Number)
	}
	return 0
}

// Executor runs durable-store operations with a single bounded retry
// around the connection-lost error class.  Any other failure, and a second
// consecutive connection failure, propagate to the caller unchanged; the
// executor never swallows or downgrades errors.
type Executor struct {
	db        *sql.DB
	reconnect func(ctx context.Context) error
}

// NewExecutor wraps db.  The reconnect cycle resets the pooled connections
// and dials a fresh one via ping.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{
		db: db,
		reconnect: func(ctx context.Context) error {
			// Drop idle connections the server already closed, then force
			// a new dial.  database/sql reopens lazily, so the ping is the
			// actual reconnect.
			db.SetMaxIdleConns(0)
			db.SetMaxIdleConns(5)
			return db.PingContext(ctx)
		},
	}
}

// Do executes op, reconnecting and retrying exactly once when the first
// attempt fails with a connection-lost error.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	if err == nil || !IsConnectionLost(err) {
		return err
	}
	log.Printf("database: connection lost (%v), reconnecting and retrying once", err)
	if rerr := e.reconnect(ctx); rerr != nil {
		log.Printf("database: reconnect failed: %v", rerr)
		return err
	}
	return op(ctx)
}
