package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale represents a completed sale transaction
type Sale struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SaleNumber     string         `gorm:"uniqueIndex;not null" json:"sale_number"`
	CustomerName   string         `gorm:"not null" json:"customer_name"`
	CustomerID     *uint          `json:"customer_id,omitempty"`
	Customer       *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Subtotal       float64        `json:"subtotal"`
	DiscountAmount float64        `json:"discount_amount"`
	TotalAmount    float64        `json:"total_amount"`
	PaymentMethod  string         `json:"payment_method"` // "cash", "card", "transfer"
	SoldByID       *uint          `json:"sold_by_id,omitempty"`
	SoldBy         *User          `gorm:"foreignKey:SoldByID" json:"sold_by,omitempty"`
	Items          []SaleItem     `gorm:"foreignKey:SaleID" json:"items"`
	Notes          string         `json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// SaleItem is one line of a sale. Name, SKU, category and prices are
// snapshots taken at sale time so history survives later item edits
// or deletion.
type SaleItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SaleID    uint      `json:"sale_id"`
	Sale      *Sale     `gorm:"foreignKey:SaleID" json:"-"`
	ItemID    uint      `json:"item_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CostPrice float64   `json:"cost_price"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Category  string    `json:"category"`
	LineTotal float64   `json:"line_total"`
	Profit    float64   `json:"profit"` // quantity * (unit_price - cost_price)
	CreatedAt time.Time `json:"created_at"`
}

// Customer types
const (
	CustomerTypeSales   = "Sales"
	CustomerTypeRepairs = "Repairs"
	CustomerTypeBoth    = "Both"
)

// Customer is an aggregated identity keyed by phone (falling back to name)
type Customer struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Phone          string         `gorm:"index" json:"phone"`
	Email          string         `json:"email"`
	Address        string         `json:"address"`
	CustomerType   string         `gorm:"default:Sales" json:"customer_type"` // "Sales", "Repairs", "Both"
	TotalPurchases int            `json:"total_purchases"`
	TotalRepairs   int            `json:"total_repairs"`
	TotalSpent     float64        `json:"total_spent"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
