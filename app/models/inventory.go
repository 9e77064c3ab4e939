package models

import (
	"time"

	"gorm.io/gorm"
)

// InventoryItem represents a product in stock
type InventoryItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	// Indexed and unique among live rows only (partial index in
	// createIndexes), so a deleted item's SKU can be reused.
	SKU         string         `gorm:"not null" json:"sku"`
	Name        string         `gorm:"not null" json:"name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Quantity    int            `gorm:"not null;default:0" json:"quantity"` // Never negative, enforced by InventoryService
	BuyPrice    float64        `gorm:"not null" json:"buy_price"`
	SellPrice   float64        `gorm:"not null" json:"sell_price"`
	Brand       string         `json:"brand"`
	Model       string         `json:"model"`
	Storage     string         `json:"storage"` // e.g. "128GB"
	RAM         string         `json:"ram"`
	Color       string         `json:"color"`
	Condition   string         `json:"condition"` // "new", "used", "refurbished"
	Barcode     string         `json:"barcode"`
	MinStock    int            `gorm:"default:0" json:"min_stock"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName keeps the historical table name
func (InventoryItem) TableName() string {
	return "inventory"
}

// StockMovement tracks every quantity change on an inventory item
type StockMovement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ItemID      uint           `json:"item_id"`
	Item        *InventoryItem `json:"item,omitempty"`
	Type        string         `json:"type"`     // "purchase", "sale", "adjustment", "loss", "return"
	Quantity    int            `json:"quantity"` // Positive for additions, negative for removals
	PreviousQty int            `json:"previous_qty"`
	NewQty      int            `json:"new_qty"`
	Reference   string         `json:"reference"` // Sale number, adjustment reason, etc.
	UserID      *uint          `json:"user_id,omitempty"`
	User        *User          `json:"user,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Barcode statuses
const (
	BarcodeStatusAvailable = "available"
	BarcodeStatusSold      = "sold"
	BarcodeStatusReserved  = "reserved"
	BarcodeStatusDamaged   = "damaged"
	BarcodeStatusReturned  = "returned"
)

// ProductBarcode represents a per-unit barcode attached to an inventory item
type ProductBarcode struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ItemID       uint           `json:"item_id"`
	Item         *InventoryItem `json:"item,omitempty"`
	Barcode      string         `gorm:"uniqueIndex;not null" json:"barcode"`
	SerialNumber string         `json:"serial_number"`
	Status       string         `gorm:"default:available" json:"status"`
	AddedDate    time.Time      `json:"added_date"`
	SoldDate     *time.Time     `json:"sold_date,omitempty"`
	SaleID       *uint          `json:"sale_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ScanLog records barcode scanner lookups
type ScanLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Barcode   string    `json:"barcode"`
	ItemID    *uint     `json:"item_id,omitempty"`
	Result    string    `json:"result"` // "found", "not_found"
	ScannedBy string    `json:"scanned_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the historical singular table name
func (ScanLog) TableName() string {
	return "scan_log"
}
