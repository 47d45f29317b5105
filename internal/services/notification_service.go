package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// defaultNotificationLimit caps list responses when no limit is given.
const defaultNotificationLimit = 20

// notificationService persists notifications and serves the polling reads.
type notificationService struct {
	db       *gorm.DB
	ttl      time.Duration
	currency string
	now      func() time.Time
}

// NewNotificationService creates a new NotificationServicer. Budget alerts
// expire after ttl and format amounts in currency.
func NewNotificationService(db *gorm.DB, ttl time.Duration, currency string) NotificationServicer {
	return &notificationService{
		db:       db,
		ttl:      ttl,
		currency: currency,
		now:      time.Now,
	}
}

// notExpired excludes notifications past their expiry.
func (s *notificationService) notExpired(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NULL OR expires_at > ?", s.now().UTC())
}

func (s *notificationService) formatAmount(amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", s.currency, amount.StringFixed(2))
}

// CreateBudgetAlert writes the notification for a budget crossing its
// warning threshold or its full amount.
func (s *notificationService) CreateBudgetAlert(
	userID string,
	budget *models.Budget,
	category *models.Category,
	spent decimal.Decimal,
	alertType AlertType,
) (*models.Notification, error) {
	categoryName := "category"
	categoryID := budget.CategoryID
	if category != nil {
		categoryName = category.Name
		categoryID = category.ID
	}

	pct := spentPercentage(spent, budget.Amount).Round(1)

	n := SystemNotification{
		Metadata: map[string]any{
			"budget_id":     budget.ID,
			"category_id":   categoryID,
			"spent_amount":  spent.InexactFloat64(),
			"budget_amount": budget.Amount.InexactFloat64(),
			"percentage":    pct.InexactFloat64(),
		},
	}

	switch alertType {
	case AlertTypeExceeded:
		n.Title = fmt.Sprintf("Budget %s exceeded!", categoryName)
		n.Message = fmt.Sprintf("You have spent %s of your %s budget (%s%%)",
			s.formatAmount(spent), s.formatAmount(budget.Amount), pct.StringFixed(1))
		n.Priority = models.NotificationPriorityUrgent
		n.Type = models.NotificationTypeBudgetExceeded
	default:
		n.Title = fmt.Sprintf("Budget %s warning", categoryName)
		n.Message = fmt.Sprintf("You have spent %s%% of your %s budget (%s/%s)",
			pct.StringFixed(1), categoryName, s.formatAmount(spent), s.formatAmount(budget.Amount))
		n.Priority = models.NotificationPriorityHigh
		n.Type = models.NotificationTypeBudgetAlert
	}
	n.ActionURL = "/budgets/" + budget.ID

	expiresAt := s.now().Add(s.ttl).UTC()
	return s.create(userID, n, &expiresAt)
}

// CreateNotification writes a free-form notification without expiry.
func (s *notificationService) CreateNotification(userID string, n SystemNotification) (*models.Notification, error) {
	return s.create(userID, n, nil)
}

func (s *notificationService) create(userID string, n SystemNotification, expiresAt *time.Time) (*models.Notification, error) {
	if n.Priority == "" {
		n.Priority = models.NotificationPriorityMedium
	}

	notification := &models.Notification{
		UserID:    userID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Priority:  n.Priority,
		ActionURL: n.ActionURL,
		Metadata:  marshalMetadata(n.Metadata, "type", n.Type),
		ExpiresAt: expiresAt,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notification, nil
}

// GetUserNotifications lists unexpired notifications, newest first.
func (s *notificationService) GetUserNotifications(userID string, filter NotificationFilter) (*NotificationList, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID).Scopes(s.notExpired)
	if filter.IsRead != nil {
		base = base.Where("is_read = ?", *filter.IsRead)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	notifications := []models.Notification{}
	if err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &NotificationList{
		Notifications: notifications,
		Total:         total,
		HasMore:       total > int64(offset+limit),
	}, nil
}

// MarkAsRead marks the given notifications read and returns how many changed.
func (s *notificationService) MarkAsRead(userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// MarkAllAsRead marks every unread notification of the user read.
func (s *notificationService) MarkAllAsRead(userID string) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteNotification removes one of the user's notifications.
func (s *notificationService) DeleteNotification(userID, notificationID string) error {
	result := s.db.Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// GetUnreadCount counts unread, unexpired notifications.
func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Scopes(s.notExpired).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}
