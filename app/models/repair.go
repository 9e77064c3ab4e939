package models

import (
	"time"

	"gorm.io/gorm"
)

// Repair order statuses
const (
	RepairStatusReceived     = "Received"
	RepairStatusDiagnosed    = "Diagnosed"
	RepairStatusInProgress   = "In Progress"
	RepairStatusWaitingParts = "Waiting Parts"
	RepairStatusCompleted    = "Completed"
	RepairStatusDelivered    = "Delivered"
	RepairStatusCancelled    = "Cancelled"
)

// RepairStatuses lists every valid repair order status
var RepairStatuses = []string{
	RepairStatusReceived,
	RepairStatusDiagnosed,
	RepairStatusInProgress,
	RepairStatusWaitingParts,
	RepairStatusCompleted,
	RepairStatusDelivered,
	RepairStatusCancelled,
}

// IsValidRepairStatus reports whether s is a known repair status
func IsValidRepairStatus(s string) bool {
	for _, status := range RepairStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// TerminalRepairStatuses are the statuses that close an order for
// pending/overdue accounting. Transitions out of a terminal status are
// still allowed (re-opening a repair is a real workflow).
var TerminalRepairStatuses = []string{
	RepairStatusCompleted,
	RepairStatusDelivered,
	RepairStatusCancelled,
}

// IsTerminalRepairStatus reports whether s closes an order
func IsTerminalRepairStatus(s string) bool {
	for _, status := range TerminalRepairStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// RepairOrder represents a device repair job
type RepairOrder struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	// Unique among live rows only, same as InventoryItem.SKU
	OrderNumber       string         `gorm:"not null" json:"order_number"`
	CustomerName      string         `gorm:"not null" json:"customer_name"`
	Phone             string         `json:"phone"`
	CustomerID        *uint          `json:"customer_id,omitempty"`
	Customer          *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	DeviceModel       string         `json:"device_model"`
	IMEI              string         `json:"imei"`
	Problem           string         `json:"problem"`
	Status            string         `gorm:"default:Received" json:"status"`
	TotalEstimate     float64        `json:"total_estimate"` // Derived: sum over parts, recomputed on every part change
	Technician        string         `json:"technician"`
	Notes             string         `json:"notes"`
	ReceivedDate      time.Time      `json:"received_date"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery,omitempty"`
	Parts             []RepairPart   `gorm:"foreignKey:RepairOrderID" json:"parts,omitempty"`
	History           []RepairHistory `gorm:"foreignKey:RepairOrderID" json:"history,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// RepairPart is a part used on a repair order
type RepairPart struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	RepairOrderID uint         `json:"repair_order_id"`
	RepairOrder   *RepairOrder `gorm:"foreignKey:RepairOrderID" json:"-"`
	PartName      string       `gorm:"not null" json:"part_name"`
	Qty           int          `gorm:"not null" json:"qty"`
	UnitPrice     float64      `gorm:"not null" json:"unit_price"`
	CostPrice     float64      `json:"cost_price"`
	CreatedAt     time.Time    `json:"created_at"`
}

// RepairHistory is the append-only status trail of a repair order.
// StatusFrom is nil on the creation entry.
type RepairHistory struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	RepairOrderID uint         `json:"repair_order_id"`
	RepairOrder   *RepairOrder `gorm:"foreignKey:RepairOrderID" json:"-"`
	ActionDate    time.Time    `json:"action_date"`
	ActionBy      string       `json:"action_by"`
	StatusFrom    *string      `json:"status_from,omitempty"`
	StatusTo      string       `json:"status_to"`
	Comment       string       `json:"comment"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TableName keeps the historical singular table name
func (RepairHistory) TableName() string {
	return "repair_history"
}
