package database

import (
	"fmt"

	"gorm.io/gorm"
)

// TransactionOn executes fn inside a database transaction on the given
// handle. All statements issued through tx commit together when fn
// returns nil and roll back together when fn returns an error or
// panics. Panics are re-raised after rollback.
//
// Nesting is supported: a call made with a handle that is already
// inside a transaction scope opens a savepoint, so an inner failure
// undoes only the inner writes while the outer scope decides its own
// fate. GORM releases the underlying connection on every exit path.
//
// This is the only sanctioned way to run multi-statement business
// operations; services reach it through BaseService.WithTransaction
// and no component issues ad hoc commits.
func TransactionOn(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.Transaction(fn)
}
