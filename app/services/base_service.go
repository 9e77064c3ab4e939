package services

import (
	"fmt"

	"PhoneStore/app/database"

	"gorm.io/gorm"
)

// BaseService provides common functionality for all services
type BaseService struct {
	db *gorm.DB
}

// GetDB returns the database connection
func (b *BaseService) GetDB() *gorm.DB {
	return b.db
}

// SetDB sets the database connection (useful for testing)
func (b *BaseService) SetDB(db *gorm.DB) {
	b.db = db
}

// EnsureDB checks if database is initialized and returns an error if not
func (b *BaseService) EnsureDB() error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return nil
}

// WithTransaction executes fn within a database transaction scope.
// Nested calls open savepoints, so an inner rollback undoes only the
// inner writes.
func (b *BaseService) WithTransaction(fn func(tx *gorm.DB) error) error {
	if err := b.EnsureDB(); err != nil {
		return err
	}
	return database.TransactionOn(b.db, fn)
}
