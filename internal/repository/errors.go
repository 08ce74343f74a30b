// Package repository holds the hand-written SQL for every entity.  The
// sentinel values below are shared across repositories so handlers can
// tell failure scenarios apart with errors.Is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// record that belongs to another hostel.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update or delete cannot be performed
// because of conflicting state: a stale version on a room row, or a
// delete of a record that still has dependents.  Handlers translate it
// into 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key (floor number, room number)
// is already taken inside the hostel.
var ErrDuplicate = errors.New("duplicate record")

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool  { return mysqlCode(err) == mysqlDuplicateEntry }
func isReferenced(err error) bool { return mysqlCode(err) == mysqlRowIsReferenced }
func isMissingRef(err error) bool { return mysqlCode(err) == mysqlNoReferencedRow }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
