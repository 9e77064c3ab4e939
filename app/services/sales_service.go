package services

import (
	"fmt"
	"time"

	"PhoneStore/app/events"
	"PhoneStore/app/finance"
	"PhoneStore/app/models"
	"PhoneStore/app/validation"

	"gorm.io/gorm"
)

// SalesService handles sales operations. A sale posts atomically:
// header, line items, stock decrements and customer aggregates either
// all commit or none do.
type SalesService struct {
	*BaseService
	inventorySvc *InventoryService
	auditSvc     *AuditService
	bus          *events.Bus
}

// NewSalesService creates a new sales service
func NewSalesService(db *gorm.DB, inventorySvc *InventoryService, auditSvc *AuditService, bus *events.Bus) *SalesService {
	return &SalesService{
		BaseService:  &BaseService{db: db},
		inventorySvc: inventorySvc,
		auditSvc:     auditSvc,
		bus:          bus,
	}
}

// SaleLineInput is one requested sale line
type SaleLineInput struct {
	ItemID    uint
	Quantity  int
	UnitPrice float64
	CostPrice float64
	Barcode   string // Optional per-unit barcode to mark sold
}

// CreateSaleInput carries everything needed to post a sale
type CreateSaleInput struct {
	CustomerName   string
	CustomerPhone  string
	Items          []SaleLineInput
	DiscountAmount float64
	PaymentMethod  string
	SoldByID       uint
	SoldByUsername string
	Notes          string
}

// CreateSale validates, prices and posts a sale in one transaction and
// returns the new sale ID. Any failure, including a stock shortfall
// discovered on a later line, rolls everything back.
func (s *SalesService) CreateSale(input CreateSaleInput) (uint, error) {
	customerName, err := validation.Required("customer_name", input.CustomerName)
	if err != nil {
		return 0, err
	}
	if len(input.Items) == 0 {
		return 0, &validation.Error{Field: "items", Message: "sale must contain at least one item"}
	}

	discount, err := validation.Price("discount_amount", input.DiscountAmount)
	if err != nil {
		return 0, err
	}

	customerPhone := ""
	if input.CustomerPhone != "" {
		customerPhone, err = validation.Phone(input.CustomerPhone)
		if err != nil {
			return 0, err
		}
	}

	lines := make([]finance.Line, 0, len(input.Items))
	for i, line := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if line.Quantity <= 0 {
			return 0, &validation.Error{Field: field + ".quantity", Message: "must be greater than zero"}
		}
		if _, err := validation.Price(field+".unit_price", line.UnitPrice); err != nil {
			return 0, err
		}
		if _, err := validation.Price(field+".cost_price", line.CostPrice); err != nil {
			return 0, err
		}
		lines = append(lines, finance.Line{Qty: line.Quantity, UnitPrice: line.UnitPrice})
	}

	subtotal, err := finance.SaleTotal(lines)
	if err != nil {
		return 0, &validation.Error{Field: "items", Message: err.Error()}
	}
	total := finance.Round2(subtotal - discount)
	if total < 0 {
		total = 0
	}

	sale := &models.Sale{
		SaleNumber:     s.generateSaleNumber(),
		CustomerName:   customerName,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TotalAmount:    total,
		PaymentMethod:  input.PaymentMethod,
		Notes:          input.Notes,
	}
	if input.SoldByID != 0 {
		sale.SoldByID = &input.SoldByID
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		// Availability is re-checked line by line inside this scope; a
		// shortfall on any line aborts the whole sale with zero writes.
		for _, line := range input.Items {
			var item models.InventoryItem
			if err := tx.First(&item, line.ItemID).Error; err != nil {
				return notFound(err, "inventory item", line.ItemID)
			}
			if item.Quantity < line.Quantity {
				return &InsufficientStockError{
					ItemID:    line.ItemID,
					Requested: line.Quantity,
					Available: item.Quantity,
				}
			}
		}

		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		for _, line := range input.Items {
			var item models.InventoryItem
			if err := tx.First(&item, line.ItemID).Error; err != nil {
				return notFound(err, "inventory item", line.ItemID)
			}

			lineTotal := finance.Round2(float64(line.Quantity) * line.UnitPrice)
			saleItem := models.SaleItem{
				SaleID:    sale.ID,
				ItemID:    line.ItemID,
				Quantity:  line.Quantity,
				UnitPrice: finance.Round2(line.UnitPrice),
				CostPrice: finance.Round2(line.CostPrice),
				Name:      item.Name,
				SKU:       item.SKU,
				Category:  item.Category,
				LineTotal: lineTotal,
				Profit:    finance.Round2(float64(line.Quantity) * (line.UnitPrice - line.CostPrice)),
			}
			if err := tx.Create(&saleItem).Error; err != nil {
				return err
			}

			if err := s.inventorySvc.DecreaseQuantityTx(tx, line.ItemID, line.Quantity, sale.SaleNumber, input.SoldByID); err != nil {
				return err
			}

			if line.Barcode != "" {
				if err := s.inventorySvc.MarkBarcodeSoldTx(tx, line.Barcode, sale.ID); err != nil {
					return err
				}
			}
		}

		customer, err := getOrCreateCustomerTx(tx, customerName, customerPhone)
		if err != nil {
			return err
		}
		if err := recordCustomerSaleTx(tx, customer, total); err != nil {
			return err
		}
		sale.CustomerID = &customer.ID
		return tx.Save(sale).Error
	})
	if err != nil {
		return 0, wrapTx("create sale", err)
	}

	s.auditSvc.LogAction(input.SoldByUsername, models.ActionCreate, "sale", sale.ID,
		fmt.Sprintf("Sale %s for %s, total %.2f", sale.SaleNumber, customerName, total))
	s.bus.Publish(events.TopicSaleCreated, sale.ID)

	return sale.ID, nil
}

// GetSale gets a sale with its line items
func (s *SalesService) GetSale(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Preload("Items").
		Preload("Customer").
		Preload("SoldBy").
		First(&sale, id).Error
	if err != nil {
		return nil, notFound(err, "sale", id)
	}
	return &sale, nil
}

// GetTodaySales gets all sales from today, newest-first
func (s *SalesService) GetTodaySales() ([]models.Sale, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.GetSalesByDateRange(start, start.Add(24*time.Hour))
}

// GetSalesByDateRange gets sales within a date range, newest-first
func (s *SalesService) GetSalesByDateRange(startDate, endDate time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.Preload("Items").
		Preload("Customer").
		Where("created_at >= ? AND created_at < ?", startDate, endDate).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

// SalesReport aggregates sales figures over a period
type SalesReport struct {
	Count         int     `json:"count"`
	TotalSales    float64 `json:"total_sales"`
	TotalDiscount float64 `json:"total_discount"`
	TotalProfit   float64 `json:"total_profit"`
	TotalItems    int     `json:"total_items"`
}

// GetSalesReport computes totals for sales between startDate and endDate
func (s *SalesService) GetSalesReport(startDate, endDate time.Time) (*SalesReport, error) {
	sales, err := s.GetSalesByDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{}
	for _, sale := range sales {
		report.Count++
		report.TotalSales = finance.Round2(report.TotalSales + sale.TotalAmount)
		report.TotalDiscount = finance.Round2(report.TotalDiscount + sale.DiscountAmount)
		for _, item := range sale.Items {
			report.TotalProfit = finance.Round2(report.TotalProfit + item.Profit)
			report.TotalItems += item.Quantity
		}
	}
	return report, nil
}

// DeleteSale removes a sale and its line items, returning the sold
// quantities to stock, all in one transaction.
func (s *SalesService) DeleteSale(saleID uint, actor string) error {
	var sale models.Sale

	err := s.WithTransaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			return notFound(err, "sale", saleID)
		}

		for _, item := range sale.Items {
			if err := s.inventorySvc.IncreaseQuantityTx(tx, item.ItemID, item.Quantity,
				fmt.Sprintf("Sale deletion - %s", sale.SaleNumber), 0); err != nil {
				return err
			}
		}

		if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
	if err != nil {
		return wrapTx("delete sale", err)
	}

	s.auditSvc.LogAction(actor, models.ActionDelete, "sale", saleID,
		fmt.Sprintf("Sale %s deleted, stock restored", sale.SaleNumber))
	s.bus.Publish(events.TopicSaleDeleted, saleID)
	return nil
}

// Customer queries

// GetCustomer gets a customer by ID
func (s *SalesService) GetCustomer(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.First(&customer, id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &customer, nil
}

// GetCustomers gets all active customers ordered by name
func (s *SalesService) GetCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.Where("is_active = ?", true).
		Order("name").
		Find(&customers).Error
	return customers, err
}

// SearchCustomers searches customers by name or phone
func (s *SalesService) SearchCustomers(query string) ([]models.Customer, error) {
	var customers []models.Customer
	searchQuery := "%" + query + "%"
	err := s.db.Where("(name LIKE ? OR phone LIKE ?) AND is_active = ?",
		searchQuery, searchQuery, true).
		Find(&customers).Error
	return customers, err
}

func (s *SalesService) generateSaleNumber() string {
	// Nanosecond suffix keeps numbers unique for back-to-back sales
	return fmt.Sprintf("SALE-%s-%d", time.Now().Format("20060102"), time.Now().UnixNano())
}
