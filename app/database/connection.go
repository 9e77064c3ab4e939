package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"PhoneStore/app/config"
	"PhoneStore/app/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// buildPostgresDSN constructs the connection string for the postgres driver
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)
}

// Initialize sets up the database connection and schema. The default
// driver is a local SQLite file; DB_DRIVER=postgres switches to a
// server-backed store with the same schema.
func Initialize(cfg *config.AppConfig) error {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var err error
	switch cfg.Database.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(buildPostgresDSN(&cfg.Database)), gormConfig)
	default:
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
				return fmt.Errorf("failed to create database directory: %w", mkErr)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.Database.Path), gormConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.System.SeedAdmin {
		if err := SeedInitialData(); err != nil {
			log.Printf("Warning: failed to seed initial data: %v", err)
		}
	}

	return nil
}

// InitializeForTesting opens an in-memory SQLite database and runs
// migrations. Used by package tests.
func InitializeForTesting() (*gorm.DB, error) {
	mem, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := migrate(mem); err != nil {
		return nil, err
	}
	createIndexes(mem)
	return mem, nil
}

// RunMigrations runs database migrations
func RunMigrations() error {
	if err := migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Additive column upgrades for databases created by older versions
	if err := runAdditionalMigrations(db); err != nil {
		log.Printf("Warning: Some additional migrations failed: %v", err)
	}

	createIndexes(db)

	return nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Users and audit
		&models.User{},
		&models.AuditLog{},

		// Inventory
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.ProductBarcode{},
		&models.ScanLog{},

		// Sales
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},

		// Repairs
		&models.RepairOrder{},
		&models.RepairPart{},
		&models.RepairHistory{},
	)
}

// runAdditionalMigrations adds columns that might be missing in existing
// databases. Every step checks for the column first so the whole pass is
// safe to re-run on both SQLite and Postgres.
func runAdditionalMigrations(db *gorm.DB) error {
	upgrades := []struct {
		model  interface{}
		table  string
		column string
		ddl    string
	}{
		{&models.InventoryItem{}, "inventory", "min_stock",
			"ALTER TABLE inventory ADD COLUMN min_stock integer DEFAULT 0"},
		{&models.InventoryItem{}, "inventory", "barcode",
			"ALTER TABLE inventory ADD COLUMN barcode text"},
		{&models.Sale{}, "sales", "notes",
			"ALTER TABLE sales ADD COLUMN notes text"},
		{&models.RepairOrder{}, "repair_orders", "technician",
			"ALTER TABLE repair_orders ADD COLUMN technician text"},
		{&models.Customer{}, "customers", "customer_type",
			"ALTER TABLE customers ADD COLUMN customer_type text DEFAULT 'Sales'"},
	}

	for _, u := range upgrades {
		if db.Migrator().HasColumn(u.model, u.column) {
			continue
		}
		if err := db.Exec(u.ddl).Error; err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", u.table, u.column, err)
		}
	}

	return nil
}

// createIndexes creates database indexes for better query performance.
// SKU and order number are unique among live rows only: the partial
// indexes below ignore soft-deleted rows, so a deleted item's SKU (or a
// deleted order's number) can be reused. The DROPs clear the full
// unique indexes older versions created.
func createIndexes(db *gorm.DB) {
	db.Exec("DROP INDEX IF EXISTS idx_inventory_sku")
	db.Exec("DROP INDEX IF EXISTS idx_repair_orders_order_number")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_sku_live ON inventory(sku) WHERE deleted_at IS NULL")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_repair_orders_number_live ON repair_orders(order_number) WHERE deleted_at IS NULL")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_stock_movements_item_id ON stock_movements(item_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_repair_orders_status ON repair_orders(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_repair_history_order_id ON repair_history(repair_order_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_product_barcodes_item_id ON product_barcodes(item_id)")
}

// SeedInitialData creates the default admin account on first run
func SeedInitialData() error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	admin := models.User{
		Username: "admin",
		Password: string(hashed),
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Created default admin user (change the password on first login)")
	return nil
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
