package services

import (
	"testing"
	"time"

	"PhoneStore/app/database"
	"PhoneStore/app/events"
	"PhoneStore/app/models"

	"gorm.io/gorm"
)

// testEnv wires every service against one in-memory database
type testEnv struct {
	db        *gorm.DB
	bus       *events.Bus
	audit     *AuditService
	inventory *InventoryService
	sales     *SalesService
	repairs   *RepairService
	auth      *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tdb, err := database.InitializeForTesting()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	bus := events.NewBus()
	audit := NewAuditService(tdb, nil)
	inventory := NewInventoryService(tdb, bus)
	return &testEnv{
		db:        tdb,
		bus:       bus,
		audit:     audit,
		inventory: inventory,
		sales:     NewSalesService(tdb, inventory, audit, bus),
		repairs:   NewRepairService(tdb, audit, bus),
		auth:      NewAuthService(tdb, audit, 30*time.Minute),
	}
}

// seedItem inserts an inventory item through the service so the SKU is
// canonical and the initial movement exists.
func seedItem(t *testing.T, env *testEnv, sku, name string, qty int, buyPrice, sellPrice float64) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		SKU:       sku,
		Name:      name,
		Quantity:  qty,
		BuyPrice:  buyPrice,
		SellPrice: sellPrice,
	}
	if err := env.inventory.AddItem(item, 0); err != nil {
		t.Fatalf("failed to seed item %s: %v", sku, err)
	}
	return item
}

func itemQuantity(t *testing.T, env *testEnv, itemID uint) int {
	t.Helper()
	item, err := env.inventory.GetItem(itemID)
	if err != nil {
		t.Fatalf("failed to load item %d: %v", itemID, err)
	}
	return item.Quantity
}
