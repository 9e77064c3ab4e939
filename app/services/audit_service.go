package services

import (
	"time"

	"PhoneStore/app/models"

	"gorm.io/gorm"
)

// AuditService maintains the append-only action trail. Writes are
// deliberately outside the business transaction they describe: a
// failed audit insert is reported to the operational log and never
// rolls back or fails the operation itself.
type AuditService struct {
	*BaseService
	logger *LoggerService
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB, logger *LoggerService) *AuditService {
	return &AuditService{
		BaseService: &BaseService{db: db},
		logger:      logger,
	}
}

// LogAction appends one audit row. Best-effort: errors are swallowed
// after being reported.
func (s *AuditService) LogAction(username, actionType, entityType string, entityID uint, description string) {
	s.LogChange(username, actionType, entityType, entityID, description, "", "")
}

// LogChange appends one audit row carrying old/new value snapshots
func (s *AuditService) LogChange(username, actionType, entityType string, entityID uint, description, oldValue, newValue string) {
	if s.db == nil {
		return
	}
	entry := models.AuditLog{
		Username:    username,
		ActionType:  actionType,
		EntityType:  entityType,
		EntityID:    entityID,
		OldValue:    oldValue,
		NewValue:    newValue,
		Description: description,
	}
	if err := s.db.Create(&entry).Error; err != nil && s.logger != nil {
		s.logger.LogError("audit write failed", err, description)
	}
}

// AuditFilter narrows GetLogs results. Zero values mean "any".
type AuditFilter struct {
	Username   string
	ActionType string
	EntityType string
	From       *time.Time
	To         *time.Time
	Limit      int
}

const defaultAuditLimit = 200

// GetLogs returns audit entries newest-first, filtered and capped
func (s *AuditService) GetLogs(filter AuditFilter) ([]models.AuditLog, error) {
	if err := s.EnsureDB(); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.AuditLog{})
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultAuditLimit {
		limit = defaultAuditLimit
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// GetEntityHistory returns all audit entries for one entity,
// newest-first.
func (s *AuditService) GetEntityHistory(entityType string, entityID uint) ([]models.AuditLog, error) {
	if err := s.EnsureDB(); err != nil {
		return nil, err
	}
	var logs []models.AuditLog
	err := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	return logs, err
}
