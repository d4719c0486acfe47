// Package store provides SQLite data access for the budget ledger.
//
// All methods take and return domain models; SQL lives only here. Methods
// with a Tx suffix operate inside a caller-supplied transaction scope and
// are used by the ledger engine to keep row writes and balance updates in
// one atomic unit.
package store

import (
	"database/sql"
	"errors"

	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrAccountInUse is returned when deleting an account that is still
	// referenced by transactions as source or destination.
	ErrAccountInUse = errors.New("account is referenced by transactions")

	// ErrDuplicateName is returned when a unique name constraint is hit.
	ErrDuplicateName = errors.New("name already exists")
)

// queryer is the subset of database operations shared by *db.Connection
// and *sql.Tx, so the same query helpers serve both scopes.
type queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Store wraps the SQLite connection with typed data access.
type Store struct {
	conn *db.Connection
}

// New creates a new Store over an open connection.
func New(conn *db.Connection) *Store {
	return &Store{conn: conn}
}

// Conn returns the underlying connection, for callers that need to open
// their own transaction scope around store operations.
func (s *Store) Conn() *db.Connection {
	return s.conn
}
