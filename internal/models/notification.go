package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTypeBudgetAlert    NotificationType = "budget_alert"
	NotificationTypeBudgetExceeded NotificationType = "budget_exceeded"
	NotificationTypeReminder       NotificationType = "reminder"
	NotificationTypeGoalAchieved   NotificationType = "goal_achieved"
	NotificationTypeSystem         NotificationType = "system"
)

// NotificationPriority orders notifications by urgency.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// Notification is a durable message delivered to a user by polling.
type Notification struct {
	Base
	UserID    string               `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string               `gorm:"size:200;not null" json:"title"`
	Message   string               `gorm:"not null" json:"message"`
	Type      NotificationType     `gorm:"not null;index" json:"type"`
	Priority  NotificationPriority `gorm:"not null;default:'medium'" json:"priority"`
	IsRead    bool                 `gorm:"default:false" json:"is_read"`
	ActionURL string               `gorm:"size:500" json:"action_url,omitempty"`
	Metadata  string               `json:"metadata,omitempty"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}
