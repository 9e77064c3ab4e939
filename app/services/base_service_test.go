package services

import (
	"errors"
	"testing"

	"PhoneStore/app/models"

	"gorm.io/gorm"
)

func TestWithTransactionRollsBack(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("boom")

	err := env.inventory.WithTransaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.InventoryItem{SKU: "TX-1", Name: "Phone", SellPrice: 10}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	var count int64
	env.db.Model(&models.InventoryItem{}).Count(&count)
	if count != 0 {
		t.Errorf("row count after rollback = %d, want 0", count)
	}
}

func TestWithTransactionNilDB(t *testing.T) {
	svc := &BaseService{}
	err := svc.WithTransaction(func(tx *gorm.DB) error { return nil })
	if err == nil {
		t.Error("missing database not reported")
	}
}
