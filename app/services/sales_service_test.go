package services

import (
	"errors"
	"testing"
	"time"

	"PhoneStore/app/models"
	"PhoneStore/app/validation"
)

func TestCreateSaleTotalsAndStock(t *testing.T) {
	env := newTestEnv(t)
	phone := seedItem(t, env, "PHN-1", "Budget Phone", 10, 100, 150)
	charger := seedItem(t, env, "CHG-1", "Fast Charger", 5, 40, 80)

	saleID, err := env.sales.CreateSale(CreateSaleInput{
		CustomerName: "Mona Adel",
		Items: []SaleLineInput{
			{ItemID: phone.ID, Quantity: 2, UnitPrice: 150.00, CostPrice: 100.00},
			{ItemID: charger.ID, Quantity: 1, UnitPrice: 80.00, CostPrice: 40.00},
		},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	sale, err := env.sales.GetSale(saleID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if sale.Subtotal != 380.00 || sale.TotalAmount != 380.00 {
		t.Errorf("subtotal/total = %v/%v, want 380.00/380.00", sale.Subtotal, sale.TotalAmount)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("line count = %d, want 2", len(sale.Items))
	}

	// Line snapshots carry name, SKU and profit
	for _, line := range sale.Items {
		if line.Name == "" || line.SKU == "" {
			t.Errorf("line missing snapshot: %+v", line)
		}
	}

	if got := itemQuantity(t, env, phone.ID); got != 8 {
		t.Errorf("phone stock = %d, want 8", got)
	}
	if got := itemQuantity(t, env, charger.ID); got != 4 {
		t.Errorf("charger stock = %d, want 4", got)
	}
}

func TestCreateSaleShortfallRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	phone := seedItem(t, env, "PHN-2", "Mid Phone", 10, 200, 300)
	scarce := seedItem(t, env, "SCR-2", "Rare Part", 1, 50, 120)

	_, err := env.sales.CreateSale(CreateSaleInput{
		CustomerName: "Omar Said",
		Items: []SaleLineInput{
			{ItemID: phone.ID, Quantity: 3, UnitPrice: 300, CostPrice: 200},
			{ItemID: scarce.ID, Quantity: 2, UnitPrice: 120, CostPrice: 50},
		},
	})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("error = %v, want InsufficientStockError", err)
	}

	// Nothing committed: no sale, no lines, stock intact
	var saleCount, lineCount int64
	env.db.Model(&models.Sale{}).Count(&saleCount)
	env.db.Model(&models.SaleItem{}).Count(&lineCount)
	if saleCount != 0 || lineCount != 0 {
		t.Errorf("rows after rollback: sales=%d lines=%d, want 0/0", saleCount, lineCount)
	}
	if got := itemQuantity(t, env, phone.ID); got != 10 {
		t.Errorf("phone stock = %d, want 10", got)
	}
	if got := itemQuantity(t, env, scarce.ID); got != 1 {
		t.Errorf("rare part stock = %d, want 1", got)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PHN-3", "Phone", 5, 100, 200)

	tests := []struct {
		name  string
		input CreateSaleInput
	}{
		{"no items", CreateSaleInput{CustomerName: "X"}},
		{"blank customer", CreateSaleInput{
			CustomerName: "  ",
			Items:        []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 200}},
		}},
		{"zero quantity", CreateSaleInput{
			CustomerName: "X",
			Items:        []SaleLineInput{{ItemID: item.ID, Quantity: 0, UnitPrice: 200}},
		}},
		{"negative price", CreateSaleInput{
			CustomerName: "X",
			Items:        []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: -5}},
		}},
		{"negative discount", CreateSaleInput{
			CustomerName:   "X",
			Items:          []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 200}},
			DiscountAmount: -10,
		}},
		{"short phone", CreateSaleInput{
			CustomerName:  "X",
			CustomerPhone: "12345",
			Items:         []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 200}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.sales.CreateSale(tt.input)
			var vErr *validation.Error
			if !errors.As(err, &vErr) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestCreateSaleWithDiscount(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PHN-D", "Phone", 10, 100, 200)

	saleID, err := env.sales.CreateSale(CreateSaleInput{
		CustomerName:   "Laila",
		Items:          []SaleLineInput{{ItemID: item.ID, Quantity: 2, UnitPrice: 200, CostPrice: 100}},
		DiscountAmount: 30,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	sale, _ := env.sales.GetSale(saleID)
	if sale.Subtotal != 400.00 || sale.DiscountAmount != 30.00 || sale.TotalAmount != 370.00 {
		t.Errorf("subtotal/discount/total = %v/%v/%v, want 400/30/370",
			sale.Subtotal, sale.DiscountAmount, sale.TotalAmount)
	}
}

func TestCreateSaleDiscountClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "ACC-1", "Sticker", 10, 0.5, 2)

	saleID, err := env.sales.CreateSale(CreateSaleInput{
		CustomerName:   "Nour",
		Items:          []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 2, CostPrice: 0.5}},
		DiscountAmount: 10,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	sale, _ := env.sales.GetSale(saleID)
	if sale.TotalAmount != 0 {
		t.Errorf("total = %v, want 0 (discount larger than subtotal)", sale.TotalAmount)
	}
}

func TestCreateSaleAggregatesCustomer(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PHN-4", "Phone", 10, 100, 200)

	for i := 0; i < 2; i++ {
		_, err := env.sales.CreateSale(CreateSaleInput{
			CustomerName:  "Hany Mostafa",
			CustomerPhone: "0101-234-5678",
			Items:         []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 200, CostPrice: 100}},
		})
		if err != nil {
			t.Fatalf("sale %d failed: %v", i, err)
		}
	}

	var customers []models.Customer
	env.db.Find(&customers)
	if len(customers) != 1 {
		t.Fatalf("customer count = %d, want 1 (matched by phone)", len(customers))
	}
	c := customers[0]
	if c.Phone != "01012345678" {
		t.Errorf("phone = %q, want digits only", c.Phone)
	}
	if c.TotalPurchases != 2 || c.TotalSpent != 400.00 {
		t.Errorf("aggregates = %d/%v, want 2/400.00", c.TotalPurchases, c.TotalSpent)
	}
	if c.CustomerType != models.CustomerTypeSales {
		t.Errorf("customer type = %q", c.CustomerType)
	}
}

func TestCreateSaleMarksBarcodeSold(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PHN-5", "Flagship Phone", 3, 800, 1100)
	record, err := env.inventory.RegisterBarcode(item.ID, "UNIT-5001", "SN-5001", validation.BarcodeGeneric)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	saleID, err := env.sales.CreateSale(CreateSaleInput{
		CustomerName: "Dina",
		Items: []SaleLineInput{
			{ItemID: item.ID, Quantity: 1, UnitPrice: 1100, CostPrice: 800, Barcode: "UNIT-5001"},
		},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	var got models.ProductBarcode
	env.db.First(&got, record.ID)
	if got.Status != models.BarcodeStatusSold || got.SaleID == nil || *got.SaleID != saleID {
		t.Errorf("barcode after sale = %+v", got)
	}
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PHN-6", "Phone", 5, 100, 200)

	saleID, err := env.sales.CreateSale(CreateSaleInput{
		CustomerName: "Tarek",
		Items:        []SaleLineInput{{ItemID: item.ID, Quantity: 2, UnitPrice: 200, CostPrice: 100}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if got := itemQuantity(t, env, item.ID); got != 3 {
		t.Fatalf("stock after sale = %d, want 3", got)
	}

	if err := env.sales.DeleteSale(saleID, "admin"); err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}
	if got := itemQuantity(t, env, item.ID); got != 5 {
		t.Errorf("stock after deletion = %d, want 5", got)
	}

	if _, err := env.sales.GetSale(saleID); err == nil {
		t.Error("deleted sale still readable")
	}
	var lineCount int64
	env.db.Model(&models.SaleItem{}).Where("sale_id = ?", saleID).Count(&lineCount)
	if lineCount != 0 {
		t.Errorf("line count = %d, want 0", lineCount)
	}
}

func TestGetSalesReport(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env, "PHN-7", "Phone", 10, 100, 200)

	for i := 0; i < 3; i++ {
		_, err := env.sales.CreateSale(CreateSaleInput{
			CustomerName: "Walk-in",
			Items:        []SaleLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 200, CostPrice: 100}},
		})
		if err != nil {
			t.Fatalf("sale %d failed: %v", i, err)
		}
	}

	now := time.Now()
	report, err := env.sales.GetSalesReport(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.Count != 3 || report.TotalSales != 600.00 || report.TotalProfit != 300.00 || report.TotalItems != 3 {
		t.Errorf("report = %+v", report)
	}
}
