package services

import (
	"errors"
	"fmt"

	"PhoneStore/app/validation"

	"gorm.io/gorm"
)

// NotFoundError is returned when a referenced entity does not exist.
// The operation leaves no state change behind.
type NotFoundError struct {
	Entity string
	ID     uint
	Key    string // set instead of ID for natural-key lookups (SKU, order number, barcode)
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// DuplicateSKUError is returned when an inventory SKU already exists
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("an item with SKU %q already exists", e.SKU)
}

// DuplicateOrderNumberError is returned when a repair order number
// already exists
type DuplicateOrderNumberError struct {
	OrderNumber string
}

func (e *DuplicateOrderNumberError) Error() string {
	return fmt.Sprintf("a repair order with number %q already exists", e.OrderNumber)
}

// InsufficientStockError is returned when a decrement would take stock
// below zero. The quantity is left unchanged.
type InsufficientStockError struct {
	ItemID    uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// TransactionError wraps an underlying storage failure that forced a
// rollback.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// wrapTx passes through the typed business errors unchanged and wraps
// anything else (disk, lock, constraint faults) as a TransactionError.
func wrapTx(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		vErr  *validation.Error
		nfErr *NotFoundError
		dsErr *DuplicateSKUError
		doErr *DuplicateOrderNumberError
		isErr *InsufficientStockError
		txErr *TransactionError
	)
	if errors.As(err, &vErr) || errors.As(err, &nfErr) || errors.As(err, &dsErr) ||
		errors.As(err, &doErr) || errors.As(err, &isErr) || errors.As(err, &txErr) {
		return err
	}
	return &TransactionError{Op: op, Err: err}
}

// notFound converts gorm's record-not-found into the typed error,
// leaving other errors untouched.
func notFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
