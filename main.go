package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PhoneStore/app/config"
	"PhoneStore/app/database"
	"PhoneStore/app/events"
	"PhoneStore/app/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	loggerSvc := services.NewLoggerService(cfg.System.DataPath)
	defer loggerSvc.Close()

	if err := database.Initialize(cfg); err != nil {
		loggerSvc.LogError("Database initialization failed", err)
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.Close()

	db := database.GetDB()
	bus := events.NewBus()

	auditSvc := services.NewAuditService(db, loggerSvc)
	inventorySvc := services.NewInventoryService(db, bus)
	salesSvc := services.NewSalesService(db, inventorySvc, auditSvc, bus)
	repairSvc := services.NewRepairService(db, auditSvc, bus)
	authSvc := services.NewAuthService(db, auditSvc, cfg.System.SessionTimeout)

	// Domain events go to the application log
	bus.Subscribe("", func(event events.Event) {
		loggerSvc.LogInfo(fmt.Sprintf("Event %s: %v", event.Topic, event.Payload))
	})

	loggerSvc.LogInfo(fmt.Sprintf("%s started (driver=%s)", cfg.Business.ShopName, cfg.Database.Driver))
	logStartupSummary(loggerSvc, inventorySvc, salesSvc, repairSvc, authSvc)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	loggerSvc.LogInfo("Shutting down")
}

// logStartupSummary reports store state at launch so operators see
// problems (low stock, overdue repairs) without opening the app.
func logStartupSummary(logger *services.LoggerService,
	inventorySvc *services.InventoryService,
	salesSvc *services.SalesService,
	repairSvc *services.RepairService,
	authSvc *services.AuthService) {

	if users, err := authSvc.GetUsers(); err == nil {
		logger.LogInfo(fmt.Sprintf("%d user accounts registered", len(users)))
	}
	if low, err := inventorySvc.GetLowStockItems(); err == nil && len(low) > 0 {
		logger.LogWarning(fmt.Sprintf("%d items at or below minimum stock", len(low)))
	}
	if pending, err := repairSvc.CountPending(); err == nil {
		logger.LogInfo(fmt.Sprintf("%d repair orders pending", pending))
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if report, err := salesSvc.GetSalesReport(start, start.Add(24*time.Hour)); err == nil {
		logger.LogInfo(fmt.Sprintf("Today: %d sales for %.2f", report.Count, report.TotalSales))
	}
}
