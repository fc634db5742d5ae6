package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// isLockConflict reports whether err is a MySQL deadlock (1213) or lock wait
// timeout (1205), the two row-lock outcomes the bid retry loop handles.
func isLockConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
}
