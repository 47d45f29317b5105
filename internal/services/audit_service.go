package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// Audit actions recorded for budgets.
const (
	AuditActionCreateBudget = "CREATE_BUDGET"
	AuditActionUpdateBudget = "UPDATE_BUDGET"
	AuditActionDeleteBudget = "DELETE_BUDGET"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	changesJSON := marshalMetadata(changes, "action", action)

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// marshalMetadata encodes a free-form map for a text column. A nil map is
// stored as the empty string and encoding failures degrade to "{}".
func marshalMetadata(data map[string]any, keysAndValues ...interface{}) string {
	if data == nil {
		return ""
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		logger.Get().Errorw("failed to marshal metadata", append([]interface{}{"error", err}, keysAndValues...)...)
		return "{}"
	}
	return string(encoded)
}
