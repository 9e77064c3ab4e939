package services

import (
	"errors"
	"fmt"
	"time"

	"PhoneStore/app/events"
	"PhoneStore/app/models"
	"PhoneStore/app/validation"

	"gorm.io/gorm"
)

// InventoryService owns product records, their quantities and the
// per-unit barcode registry. Quantity never goes negative: every
// decrement re-checks stock inside the same transaction that performs
// the update.
type InventoryService struct {
	*BaseService
	bus *events.Bus
}

// NewInventoryService creates a new inventory service
func NewInventoryService(db *gorm.DB, bus *events.Bus) *InventoryService {
	return &InventoryService{
		BaseService: &BaseService{db: db},
		bus:         bus,
	}
}

// AddItem validates and inserts a new inventory item together with its
// initial stock movement. Fails with DuplicateSKUError when the SKU is
// already taken.
func (s *InventoryService) AddItem(item *models.InventoryItem, userID uint) error {
	sku, err := validation.SKU(item.SKU)
	if err != nil {
		return err
	}
	name, err := validation.Required("name", item.Name)
	if err != nil {
		return err
	}
	qty, err := validation.Quantity("quantity", float64(item.Quantity))
	if err != nil {
		return err
	}
	buyPrice, err := validation.Price("buy_price", item.BuyPrice)
	if err != nil {
		return err
	}
	sellPrice, err := validation.Price("sell_price", item.SellPrice)
	if err != nil {
		return err
	}

	item.SKU = sku
	item.Name = name
	item.Quantity = qty
	item.BuyPrice = buyPrice
	item.SellPrice = sellPrice
	item.IsActive = true

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.InventoryItem{}).Where("sku = ?", item.SKU).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DuplicateSKUError{SKU: item.SKU}
		}

		if err := tx.Create(item).Error; err != nil {
			return err
		}

		movement := models.StockMovement{
			ItemID:      item.ID,
			Type:        "purchase",
			Quantity:    item.Quantity,
			PreviousQty: 0,
			NewQty:      item.Quantity,
			Reference:   "Initial stock",
		}
		if userID != 0 {
			movement.UserID = &userID
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return wrapTx("add item", err)
	}

	s.bus.Publish(events.TopicStockChanged, item.ID)
	return nil
}

// UpdateItem validates and updates an existing item by primary key.
// Quantity is not touched here; use AdjustQuantity/DecreaseQuantity.
func (s *InventoryService) UpdateItem(item *models.InventoryItem) error {
	sku, err := validation.SKU(item.SKU)
	if err != nil {
		return err
	}
	name, err := validation.Required("name", item.Name)
	if err != nil {
		return err
	}
	buyPrice, err := validation.Price("buy_price", item.BuyPrice)
	if err != nil {
		return err
	}
	sellPrice, err := validation.Price("sell_price", item.SellPrice)
	if err != nil {
		return err
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var current models.InventoryItem
		if err := tx.First(&current, item.ID).Error; err != nil {
			return notFound(err, "inventory item", item.ID)
		}

		if sku != current.SKU {
			var count int64
			if err := tx.Model(&models.InventoryItem{}).
				Where("sku = ? AND id <> ?", sku, item.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return &DuplicateSKUError{SKU: sku}
			}
		}

		// Validated fields are copied onto the stored row so creation
		// time, quantity and active flag survive callers that pass a
		// bare struct.
		current.SKU = sku
		current.Name = name
		current.BuyPrice = buyPrice
		current.SellPrice = sellPrice
		current.Category = item.Category
		current.Description = item.Description
		current.Brand = item.Brand
		current.Model = item.Model
		current.Storage = item.Storage
		current.RAM = item.RAM
		current.Color = item.Color
		current.Condition = item.Condition
		current.Barcode = item.Barcode
		current.MinStock = item.MinStock

		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		*item = current
		return nil
	})
	return wrapTx("update item", err)
}

// AdjustQuantity sets an item's quantity to newQty and records the
// movement. Negative targets are rejected before any write.
func (s *InventoryService) AdjustQuantity(itemID uint, newQty int, reason string, userID uint) error {
	if _, err := validation.Quantity("quantity", float64(newQty)); err != nil {
		return err
	}

	err := s.WithTransaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return notFound(err, "inventory item", itemID)
		}

		previous := item.Quantity
		item.Quantity = newQty
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		movement := models.StockMovement{
			ItemID:      itemID,
			Type:        "adjustment",
			Quantity:    newQty - previous,
			PreviousQty: previous,
			NewQty:      newQty,
			Reference:   reason,
		}
		if userID != 0 {
			movement.UserID = &userID
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return wrapTx("adjust quantity", err)
	}

	s.bus.Publish(events.TopicStockChanged, itemID)
	return nil
}

// DecreaseQuantity removes amount units of an item. The availability
// check and the update run in the same transaction, so a concurrent
// decrement cannot slip between them. Fails with
// InsufficientStockError and leaves the quantity unchanged when stock
// would go negative.
func (s *InventoryService) DecreaseQuantity(itemID uint, amount int, reference string, userID uint) error {
	err := s.WithTransaction(func(tx *gorm.DB) error {
		return s.DecreaseQuantityTx(tx, itemID, amount, reference, userID)
	})
	if err != nil {
		return wrapTx("decrease quantity", err)
	}

	s.bus.Publish(events.TopicStockChanged, itemID)
	return nil
}

// DecreaseQuantityTx is DecreaseQuantity inside an existing transaction,
// used by the sales engine so the whole sale shares one scope.
func (s *InventoryService) DecreaseQuantityTx(tx *gorm.DB, itemID uint, amount int, reference string, userID uint) error {
	if amount <= 0 {
		return &validation.Error{Field: "amount", Message: "must be greater than zero"}
	}

	var item models.InventoryItem
	if err := tx.First(&item, itemID).Error; err != nil {
		return notFound(err, "inventory item", itemID)
	}

	if item.Quantity-amount < 0 {
		return &InsufficientStockError{ItemID: itemID, Requested: amount, Available: item.Quantity}
	}

	previous := item.Quantity
	item.Quantity -= amount
	if err := tx.Save(&item).Error; err != nil {
		return err
	}

	movement := models.StockMovement{
		ItemID:      itemID,
		Type:        "sale",
		Quantity:    -amount,
		PreviousQty: previous,
		NewQty:      item.Quantity,
		Reference:   reference,
	}
	if userID != 0 {
		movement.UserID = &userID
	}
	return tx.Create(&movement).Error
}

// IncreaseQuantityTx returns amount units to stock inside an existing
// transaction (sale deletion, refunds).
func (s *InventoryService) IncreaseQuantityTx(tx *gorm.DB, itemID uint, amount int, reference string, userID uint) error {
	if amount <= 0 {
		return &validation.Error{Field: "amount", Message: "must be greater than zero"}
	}

	var item models.InventoryItem
	if err := tx.First(&item, itemID).Error; err != nil {
		// Item deleted after the sale; history keeps its own snapshot
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	previous := item.Quantity
	item.Quantity += amount
	if err := tx.Save(&item).Error; err != nil {
		return err
	}

	movement := models.StockMovement{
		ItemID:      itemID,
		Type:        "return",
		Quantity:    amount,
		PreviousQty: previous,
		NewQty:      item.Quantity,
		Reference:   reference,
	}
	if userID != 0 {
		movement.UserID = &userID
	}
	return tx.Create(&movement).Error
}

// CheckAvailability reports whether the stored quantity covers
// requiredQty. Read-only.
func (s *InventoryService) CheckAvailability(itemID uint, requiredQty int) (bool, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return item.Quantity >= requiredQty, nil
}

// DeleteItem removes an inventory item. Historical sale line items keep
// their snapshots and are not touched.
func (s *InventoryService) DeleteItem(id uint) error {
	err := s.WithTransaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, id).Error; err != nil {
			return notFound(err, "inventory item", id)
		}
		return tx.Delete(&item).Error
	})
	return wrapTx("delete item", err)
}

// GetItem gets an item by ID
func (s *InventoryService) GetItem(id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, notFound(err, "inventory item", id)
	}
	return &item, nil
}

// GetItemBySKU gets an item by its canonical SKU
func (s *InventoryService) GetItemBySKU(sku string) (*models.InventoryItem, error) {
	normalized, err := validation.SKU(sku)
	if err != nil {
		return nil, err
	}
	var item models.InventoryItem
	if err := s.db.Where("sku = ?", normalized).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "inventory item", Key: normalized}
		}
		return nil, err
	}
	return &item, nil
}

// SearchItems searches items by name, SKU or brand
func (s *InventoryService) SearchItems(query string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	searchQuery := "%" + query + "%"
	err := s.db.Where("(name LIKE ? OR sku LIKE ? OR brand LIKE ?) AND is_active = ?",
		searchQuery, searchQuery, searchQuery, true).
		Order("name").
		Find(&items).Error
	return items, err
}

// GetLowStockItems gets active items at or below their minimum stock
func (s *InventoryService) GetLowStockItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.Where("quantity <= min_stock AND is_active = ?", true).
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}

// GetStockMovements gets the movement trail for an item, newest-first
func (s *InventoryService) GetStockMovements(itemID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.db.Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	return movements, err
}

// Barcode registry

// RegisterBarcode attaches a per-unit barcode to an item
func (s *InventoryService) RegisterBarcode(itemID uint, barcode, serialNumber string, kind validation.BarcodeKind) (*models.ProductBarcode, error) {
	code, err := validation.Barcode(barcode, kind)
	if err != nil {
		return nil, err
	}

	record := &models.ProductBarcode{
		ItemID:       itemID,
		Barcode:      code,
		SerialNumber: serialNumber,
		Status:       models.BarcodeStatusAvailable,
		AddedDate:    time.Now(),
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return notFound(err, "inventory item", itemID)
		}

		var count int64
		if err := tx.Model(&models.ProductBarcode{}).Where("barcode = ?", code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("barcode %q is already registered", code)
		}

		return tx.Create(record).Error
	})
	if err != nil {
		return nil, wrapTx("register barcode", err)
	}
	return record, nil
}

// MarkBarcodeSoldTx marks a barcode sold inside an existing sale
// transaction. A barcode sells at most once and only from the
// available status.
func (s *InventoryService) MarkBarcodeSoldTx(tx *gorm.DB, barcode string, saleID uint) error {
	var record models.ProductBarcode
	if err := tx.Where("barcode = ?", barcode).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "barcode", Key: barcode}
		}
		return err
	}

	if record.Status != models.BarcodeStatusAvailable {
		return fmt.Errorf("barcode %q cannot be sold from status %q", barcode, record.Status)
	}

	now := time.Now()
	record.Status = models.BarcodeStatusSold
	record.SoldDate = &now
	record.SaleID = &saleID
	return tx.Save(&record).Error
}

// DeleteBarcode removes a barcode. Sold barcodes are sale history and
// cannot be deleted.
func (s *InventoryService) DeleteBarcode(id uint) error {
	err := s.WithTransaction(func(tx *gorm.DB) error {
		var record models.ProductBarcode
		if err := tx.First(&record, id).Error; err != nil {
			return notFound(err, "barcode", id)
		}
		if record.Status == models.BarcodeStatusSold {
			return fmt.Errorf("barcode %q has been sold and cannot be deleted", record.Barcode)
		}
		return tx.Delete(&record).Error
	})
	return wrapTx("delete barcode", err)
}

// LookupBarcode resolves a scanned code to its item, recording the scan.
// The scan log write is best-effort.
func (s *InventoryService) LookupBarcode(code, scannedBy string) (*models.InventoryItem, *models.ProductBarcode, error) {
	var record models.ProductBarcode
	err := s.db.Preload("Item").Where("barcode = ?", code).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.db.Create(&models.ScanLog{Barcode: code, Result: "not_found", ScannedBy: scannedBy})
			return nil, nil, &NotFoundError{Entity: "barcode", Key: code}
		}
		return nil, nil, err
	}

	s.db.Create(&models.ScanLog{Barcode: code, ItemID: &record.ItemID, Result: "found", ScannedBy: scannedBy})
	return record.Item, &record, nil
}
