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

// RepairService handles repair order intake, parts, status changes and
// the append-only history trail. An order and its creation history
// entry are born in the same transaction; the estimate total is always
// recomputed from the parts, never mutated independently.
type RepairService struct {
	*BaseService
	auditSvc *AuditService
	bus      *events.Bus
}

// NewRepairService creates a new repair service
func NewRepairService(db *gorm.DB, auditSvc *AuditService, bus *events.Bus) *RepairService {
	return &RepairService{
		BaseService: &BaseService{db: db},
		auditSvc:    auditSvc,
		bus:         bus,
	}
}

// CreateRepairInput carries everything needed to open a repair order
type CreateRepairInput struct {
	OrderNumber       string
	CustomerName      string
	Phone             string
	DeviceModel       string
	IMEI              string
	Problem           string
	Technician        string
	Notes             string
	TotalEstimate     float64
	EstimatedDelivery *time.Time
}

// CreateRepairOrder validates and opens a repair order with status
// Received, writing the creation history entry in the same
// transaction. Returns the new repair ID.
func (s *RepairService) CreateRepairOrder(input CreateRepairInput) (uint, error) {
	orderNumber, err := validation.Required("order_number", input.OrderNumber)
	if err != nil {
		return 0, err
	}
	customerName, err := validation.Required("customer_name", input.CustomerName)
	if err != nil {
		return 0, err
	}
	phone, err := validation.Phone(input.Phone)
	if err != nil {
		return 0, err
	}
	deviceModel, err := validation.Required("device_model", input.DeviceModel)
	if err != nil {
		return 0, err
	}
	problem, err := validation.Required("problem", input.Problem)
	if err != nil {
		return 0, err
	}
	technician, err := validation.Required("technician", input.Technician)
	if err != nil {
		return 0, err
	}
	estimate, err := validation.Price("total_estimate", input.TotalEstimate)
	if err != nil {
		return 0, err
	}

	imei := ""
	if input.IMEI != "" {
		imei, err = validation.IMEI(input.IMEI)
		if err != nil {
			return 0, err
		}
	}

	order := &models.RepairOrder{
		OrderNumber:       orderNumber,
		CustomerName:      customerName,
		Phone:             phone,
		DeviceModel:       deviceModel,
		IMEI:              imei,
		Problem:           problem,
		Status:            models.RepairStatusReceived,
		TotalEstimate:     estimate,
		Technician:        technician,
		Notes:             input.Notes,
		ReceivedDate:      time.Now(),
		EstimatedDelivery: input.EstimatedDelivery,
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RepairOrder{}).Where("order_number = ?", orderNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DuplicateOrderNumberError{OrderNumber: orderNumber}
		}

		customer, err := getOrCreateCustomerTx(tx, customerName, phone)
		if err != nil {
			return err
		}
		if err := recordCustomerRepairTx(tx, customer); err != nil {
			return err
		}
		order.CustomerID = &customer.ID

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		// An order never exists without its creation history entry
		history := models.RepairHistory{
			RepairOrderID: order.ID,
			ActionDate:    time.Now(),
			ActionBy:      technician,
			StatusFrom:    nil,
			StatusTo:      models.RepairStatusReceived,
			Comment:       "Order received",
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return 0, wrapTx("create repair order", err)
	}

	s.auditSvc.LogAction(technician, models.ActionCreate, "repair", order.ID,
		fmt.Sprintf("Repair order %s opened for %s", orderNumber, customerName))
	s.bus.Publish(events.TopicRepairCreated, order.ID)

	return order.ID, nil
}

// AddPart validates and attaches a part to a repair order, then
// recomputes the order's estimate from all its parts in the same
// transaction. The total is derived, never incremented.
func (s *RepairService) AddPart(repairID uint, partName string, qty int, unitPrice, costPrice float64, actor string) error {
	name, err := validation.Required("part_name", partName)
	if err != nil {
		return err
	}
	if qty <= 0 {
		return &validation.Error{Field: "qty", Message: "must be greater than zero"}
	}
	price, err := validation.Price("unit_price", unitPrice)
	if err != nil {
		return err
	}
	cost, err := validation.Price("cost_price", costPrice)
	if err != nil {
		return err
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var order models.RepairOrder
		if err := tx.First(&order, repairID).Error; err != nil {
			return notFound(err, "repair order", repairID)
		}

		part := models.RepairPart{
			RepairOrderID: repairID,
			PartName:      name,
			Qty:           qty,
			UnitPrice:     price,
			CostPrice:     cost,
		}
		if err := tx.Create(&part).Error; err != nil {
			return err
		}

		return s.recomputeEstimateTx(tx, &order)
	})
	if err != nil {
		return wrapTx("add repair part", err)
	}

	s.auditSvc.LogAction(actor, models.ActionUpdate, "repair", repairID,
		fmt.Sprintf("Part %q x%d added", name, qty))
	return nil
}

// RemovePart deletes a part and recomputes the estimate in one
// transaction.
func (s *RepairService) RemovePart(repairID, partID uint, actor string) error {
	err := s.WithTransaction(func(tx *gorm.DB) error {
		var order models.RepairOrder
		if err := tx.First(&order, repairID).Error; err != nil {
			return notFound(err, "repair order", repairID)
		}

		var part models.RepairPart
		if err := tx.Where("id = ? AND repair_order_id = ?", partID, repairID).First(&part).Error; err != nil {
			return notFound(err, "repair part", partID)
		}
		if err := tx.Delete(&part).Error; err != nil {
			return err
		}

		return s.recomputeEstimateTx(tx, &order)
	})
	if err != nil {
		return wrapTx("remove repair part", err)
	}

	s.auditSvc.LogAction(actor, models.ActionUpdate, "repair", repairID, "Part removed")
	return nil
}

// recomputeEstimateTx overwrites the order's estimate with the rounded
// sum over its current parts.
func (s *RepairService) recomputeEstimateTx(tx *gorm.DB, order *models.RepairOrder) error {
	var parts []models.RepairPart
	if err := tx.Where("repair_order_id = ?", order.ID).Find(&parts).Error; err != nil {
		return err
	}

	lines := make([]finance.Line, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, finance.Line{Qty: p.Qty, UnitPrice: p.UnitPrice})
	}

	order.TotalEstimate = finance.RepairTotal(lines)
	return tx.Save(order).Error
}

// UpdateStatus moves an order to newStatus and appends the history
// entry in the same transaction. Transitions are deliberately
// unconstrained (orders get re-opened and corrected in practice), but
// every transition is recorded.
func (s *RepairService) UpdateStatus(repairID uint, newStatus, actor, comment string) error {
	if !models.IsValidRepairStatus(newStatus) {
		return &validation.Error{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	var oldStatus string
	err := s.WithTransaction(func(tx *gorm.DB) error {
		var order models.RepairOrder
		if err := tx.First(&order, repairID).Error; err != nil {
			return notFound(err, "repair order", repairID)
		}

		oldStatus = order.Status
		order.Status = newStatus
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		from := oldStatus
		history := models.RepairHistory{
			RepairOrderID: repairID,
			ActionDate:    time.Now(),
			ActionBy:      actor,
			StatusFrom:    &from,
			StatusTo:      newStatus,
			Comment:       comment,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return wrapTx("update repair status", err)
	}

	s.auditSvc.LogChange(actor, models.ActionStatusChange, "repair", repairID,
		fmt.Sprintf("Status %s -> %s", oldStatus, newStatus), oldStatus, newStatus)
	s.bus.Publish(events.TopicRepairStatusChanged, repairID)
	return nil
}

// RepairDetails bundles an order with its parts and full history
type RepairDetails struct {
	Order   models.RepairOrder     `json:"order"`
	Parts   []models.RepairPart    `json:"parts"`
	History []models.RepairHistory `json:"history"`
}

// GetRepairDetails returns the order, its parts and its history with
// the history ordered newest-first.
func (s *RepairService) GetRepairDetails(id uint) (*RepairDetails, error) {
	var order models.RepairOrder
	if err := s.db.First(&order, id).Error; err != nil {
		return nil, notFound(err, "repair order", id)
	}

	details := &RepairDetails{Order: order}
	if err := s.db.Where("repair_order_id = ?", id).Order("created_at").Find(&details.Parts).Error; err != nil {
		return nil, err
	}
	err := s.db.Where("repair_order_id = ?", id).
		Order("action_date DESC, id DESC").
		Find(&details.History).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

// GetRepairByOrderNumber resolves an order by its human-assigned number
func (s *RepairService) GetRepairByOrderNumber(orderNumber string) (*models.RepairOrder, error) {
	var order models.RepairOrder
	err := s.db.Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Entity: "repair order", Key: orderNumber}
		}
		return nil, err
	}
	return &order, nil
}

// ListRepairs lists orders, optionally filtered by status, newest-first
func (s *RepairService) ListRepairs(status string) ([]models.RepairOrder, error) {
	query := s.db.Model(&models.RepairOrder{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.RepairOrder
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// CountPending counts orders not yet in a terminal status
func (s *RepairService) CountPending() (int64, error) {
	var count int64
	err := s.db.Model(&models.RepairOrder{}).
		Where("status NOT IN ?", models.TerminalRepairStatuses).
		Count(&count).Error
	return count, err
}

// ListOverdue lists non-terminal orders whose estimated delivery has
// passed.
func (s *RepairService) ListOverdue(now time.Time) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := s.db.Where("estimated_delivery IS NOT NULL AND estimated_delivery < ?", now).
		Where("status NOT IN ?", models.TerminalRepairStatuses).
		Order("estimated_delivery").
		Find(&orders).Error
	return orders, err
}

// DeleteRepairOrder removes an order with its parts and history.
// SQLite does not enforce FK cascades here, so dependents are deleted
// explicitly inside the same transaction as the parent.
func (s *RepairService) DeleteRepairOrder(id uint, actor string) error {
	var orderNumber string

	err := s.WithTransaction(func(tx *gorm.DB) error {
		var order models.RepairOrder
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err, "repair order", id)
		}
		orderNumber = order.OrderNumber

		if err := tx.Where("repair_order_id = ?", id).Delete(&models.RepairPart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("repair_order_id = ?", id).Delete(&models.RepairHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return wrapTx("delete repair order", err)
	}

	s.auditSvc.LogAction(actor, models.ActionDelete, "repair", id,
		fmt.Sprintf("Repair order %s deleted", orderNumber))
	return nil
}
