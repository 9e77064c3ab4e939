package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin      = "Admin"
	RoleManager    = "Manager"
	RoleCashier    = "Cashier"
	RoleTechnician = "Technician"
)

// User represents a system user
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"uniqueIndex;not null" json:"username"`
	Password    string         `json:"-"` // bcrypt hash
	FullName    string         `json:"full_name"`
	Role        string         `gorm:"default:Cashier" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Audit action types
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionLogin        = "LOGIN"
	ActionLogout       = "LOGOUT"
	ActionStatusChange = "STATUS_CHANGE"
	ActionPrint        = "PRINT"
	ActionExport       = "EXPORT"
)

// AuditLog tracks important system actions. Writes are best-effort:
// an audit failure never fails the operation it describes.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"index" json:"username"`
	ActionType  string    `gorm:"index" json:"action_type"`
	EntityType  string    `gorm:"index" json:"entity_type"` // "inventory", "sale", "repair", "user", ...
	EntityID    uint      `json:"entity_id"`
	OldValue    string    `json:"old_value"` // JSON of old values
	NewValue    string    `json:"new_value"` // JSON of new values
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
