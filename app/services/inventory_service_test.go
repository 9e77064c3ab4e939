package services

import (
	"errors"
	"testing"

	"PhoneStore/app/models"
	"PhoneStore/app/validation"
)

func TestAddItemCanonicalizesSKU(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "  ip15-128-blk ", "iPhone 15 128GB Black", 10, 700, 999)

	if item.SKU != "IP15-128-BLK" {
		t.Errorf("SKU = %q, want canonical form", item.SKU)
	}

	got, err := env.inventory.GetItemBySKU("ip15-128-blk")
	if err != nil {
		t.Fatalf("lookup by lowercase SKU failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("lookup resolved item %d, want %d", got.ID, item.ID)
	}
}

func TestAddItemDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)
	seedItem(t, env, "IP15", "iPhone 15", 5, 700, 999)

	err := env.inventory.AddItem(&models.InventoryItem{
		SKU: "ip15", Name: "iPhone 15 again", SellPrice: 950,
	}, 0)

	var dup *DuplicateSKUError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want DuplicateSKUError", err)
	}
	if dup.SKU != "IP15" {
		t.Errorf("duplicate SKU = %q, want %q", dup.SKU, "IP15")
	}
}

// Deleting an item frees its SKU: uniqueness binds live rows only, so
// re-adding the same code after a delete succeeds with a fresh record.
func TestAddItemReusesDeletedSKU(t *testing.T) {
	env := newTestEnv(t)
	old := seedItem(t, env, "T-900", "Old Stock Phone", 4, 80, 120)

	if err := env.inventory.DeleteItem(old.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	fresh := &models.InventoryItem{SKU: "T-900", Name: "Restocked Phone", Quantity: 6, BuyPrice: 90, SellPrice: 140}
	if err := env.inventory.AddItem(fresh, 0); err != nil {
		t.Fatalf("re-adding a deleted item's SKU failed: %v", err)
	}
	if fresh.ID == old.ID {
		t.Error("re-add reused the deleted row")
	}

	got, err := env.inventory.GetItemBySKU("T-900")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.ID != fresh.ID || got.Name != "Restocked Phone" {
		t.Errorf("lookup resolved %+v, want the new item", got)
	}
}

func TestAddItemRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		item models.InventoryItem
	}{
		{"negative price", models.InventoryItem{SKU: "A1", Name: "X", SellPrice: -1}},
		{"blank name", models.InventoryItem{SKU: "A2", Name: "  ", SellPrice: 10}},
		{"blank sku", models.InventoryItem{SKU: " ", Name: "X", SellPrice: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			err := env.inventory.AddItem(&item, 0)
			var vErr *validation.Error
			if !errors.As(err, &vErr) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestAddItemRecordsInitialMovement(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PX9", "Pixel 9", 7, 500, 799)

	movements, err := env.inventory.GetStockMovements(item.ID)
	if err != nil {
		t.Fatalf("failed to load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("movement count = %d, want 1", len(movements))
	}
	m := movements[0]
	if m.Type != "purchase" || m.PreviousQty != 0 || m.NewQty != 7 || m.Quantity != 7 {
		t.Errorf("unexpected initial movement: %+v", m)
	}
}

func TestAdjustQuantity(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "GS25", "Galaxy S25", 10, 600, 899)

	if err := env.inventory.AdjustQuantity(item.ID, 4, "Stocktake correction", 0); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if got := itemQuantity(t, env, item.ID); got != 4 {
		t.Errorf("quantity = %d, want 4", got)
	}

	movements, _ := env.inventory.GetStockMovements(item.ID)
	if len(movements) != 2 {
		t.Fatalf("movement count = %d, want 2", len(movements))
	}
	// Newest-first
	m := movements[0]
	if m.Type != "adjustment" || m.PreviousQty != 10 || m.NewQty != 4 || m.Quantity != -6 {
		t.Errorf("unexpected adjustment movement: %+v", m)
	}

	if err := env.inventory.AdjustQuantity(item.ID, -1, "bad", 0); err == nil {
		t.Error("negative target quantity accepted")
	}
}

func TestDecreaseQuantityInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "CBL-1", "USB-C Cable", 3, 2, 8)

	err := env.inventory.DecreaseQuantity(item.ID, 5, "SALE-X", 0)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("error = %v, want InsufficientStockError", err)
	}
	if stockErr.Requested != 5 || stockErr.Available != 3 {
		t.Errorf("error detail = %+v", stockErr)
	}

	// Quantity untouched, no movement written
	if got := itemQuantity(t, env, item.ID); got != 3 {
		t.Errorf("quantity = %d, want 3", got)
	}
	movements, _ := env.inventory.GetStockMovements(item.ID)
	if len(movements) != 1 {
		t.Errorf("movement count = %d, want 1 (initial only)", len(movements))
	}
}

func TestDecreaseQuantityExactStock(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "SCR-1", "Screen Protector", 2, 1, 5)

	if err := env.inventory.DecreaseQuantity(item.ID, 2, "SALE-Y", 0); err != nil {
		t.Fatalf("decrease to zero failed: %v", err)
	}
	if got := itemQuantity(t, env, item.ID); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "CASE-1", "Phone Case", 5, 3, 12)

	ok, err := env.inventory.CheckAvailability(item.ID, 5)
	if err != nil || !ok {
		t.Errorf("CheckAvailability(5) = %v, %v; want true", ok, err)
	}
	ok, err = env.inventory.CheckAvailability(item.ID, 6)
	if err != nil || ok {
		t.Errorf("CheckAvailability(6) = %v, %v; want false", ok, err)
	}
	// Missing item is not an error, just unavailable
	ok, err = env.inventory.CheckAvailability(9999, 1)
	if err != nil || ok {
		t.Errorf("CheckAvailability(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestUpdateItemPreservesQuantity(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "IP14", "iPhone 14", 8, 500, 749)

	item.Name = "iPhone 14 (renewed)"
	item.Quantity = 999 // Must be ignored
	if err := env.inventory.UpdateItem(item); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := env.inventory.GetItem(item.ID)
	if got.Quantity != 8 {
		t.Errorf("quantity = %d, want 8 (updates never touch stock)", got.Quantity)
	}
	if got.Name != "iPhone 14 (renewed)" {
		t.Errorf("name = %q", got.Name)
	}
}

// Updating through a bare struct (ID plus edited fields only) must not
// clobber stored bookkeeping like the creation time or the active flag.
func TestUpdateItemWithBareStruct(t *testing.T) {
	env := newTestEnv(t)
	seeded := seedItem(t, env, "BARE-1", "Tablet", 6, 150, 250)

	edit := &models.InventoryItem{
		ID:        seeded.ID,
		SKU:       "BARE-1",
		Name:      "Tablet 2nd gen",
		BuyPrice:  160,
		SellPrice: 270,
	}
	if err := env.inventory.UpdateItem(edit); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := env.inventory.GetItem(seeded.ID)
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(seeded.CreatedAt) {
		t.Errorf("created_at = %v, want original %v", got.CreatedAt, seeded.CreatedAt)
	}
	if !got.IsActive {
		t.Error("active flag lost on update")
	}
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", got.Quantity)
	}
	if got.Name != "Tablet 2nd gen" || got.SellPrice != 270 {
		t.Errorf("edited fields not applied: %+v", got)
	}
}

func TestGetLowStockItems(t *testing.T) {
	env := newTestEnv(t)
	low := seedItem(t, env, "LOW-1", "Charger", 2, 5, 15)
	env.db.Model(&models.InventoryItem{}).Where("id = ?", low.ID).Update("min_stock", 3)
	seedItem(t, env, "OK-1", "Earbuds", 20, 10, 30)

	items, err := env.inventory.GetLowStockItems()
	if err != nil {
		t.Fatalf("low stock query failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != low.ID {
		t.Errorf("low stock items = %+v, want only LOW-1", items)
	}
}

func TestBarcodeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "IP15P", "iPhone 15 Pro", 3, 900, 1199)

	record, err := env.inventory.RegisterBarcode(item.ID, "4006381333931", "SN-001", validation.BarcodeEAN13)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if record.Status != models.BarcodeStatusAvailable {
		t.Errorf("status = %q, want available", record.Status)
	}

	// Same code cannot be registered twice
	if _, err := env.inventory.RegisterBarcode(item.ID, "4006381333931", "SN-002", validation.BarcodeEAN13); err == nil {
		t.Error("duplicate barcode accepted")
	}

	// Lookup resolves to the item and logs the scan
	gotItem, gotRecord, err := env.inventory.LookupBarcode("4006381333931", "cashier1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if gotItem == nil || gotItem.ID != item.ID || gotRecord.ID != record.ID {
		t.Errorf("lookup resolved wrong entities")
	}

	var scan models.ScanLog
	if err := env.db.Order("id DESC").First(&scan).Error; err != nil {
		t.Fatalf("scan log missing: %v", err)
	}
	if scan.Result != "found" || scan.ScannedBy != "cashier1" {
		t.Errorf("scan log = %+v", scan)
	}

	// Unknown code: NotFoundError plus a not_found scan entry
	_, _, err = env.inventory.LookupBarcode("0000000000000", "cashier1")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	scan = models.ScanLog{} // reset so the stale primary key is not used as a query condition
	env.db.Order("id DESC").First(&scan)
	if scan.Result != "not_found" {
		t.Errorf("scan result = %q, want not_found", scan.Result)
	}
}

func TestBarcodeSoldRules(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "IP15PM", "iPhone 15 Pro Max", 2, 1000, 1399)
	record, err := env.inventory.RegisterBarcode(item.ID, "UNIT-0001", "SN-100", validation.BarcodeGeneric)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := env.inventory.MarkBarcodeSoldTx(env.db, "UNIT-0001", 42); err != nil {
		t.Fatalf("mark sold failed: %v", err)
	}

	var got models.ProductBarcode
	env.db.First(&got, record.ID)
	if got.Status != models.BarcodeStatusSold || got.SoldDate == nil || got.SaleID == nil || *got.SaleID != 42 {
		t.Errorf("sold barcode = %+v", got)
	}

	// Selling twice is refused
	if err := env.inventory.MarkBarcodeSoldTx(env.db, "UNIT-0001", 43); err == nil {
		t.Error("barcode sold twice")
	}

	// Sold barcodes are sale history
	if err := env.inventory.DeleteBarcode(record.ID); err == nil {
		t.Error("sold barcode deleted")
	}
}
