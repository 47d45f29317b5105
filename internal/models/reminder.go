package models

import "time"

// ReminderType describes what a reminder is about.
type ReminderType string

const (
	ReminderTypeBudgetCheck          ReminderType = "budget_check"
	ReminderTypeRecurringTransaction ReminderType = "recurring_transaction"
	ReminderTypeBillPayment          ReminderType = "bill_payment"
	ReminderTypeCustom               ReminderType = "custom"
)

// ReminderFrequency controls how a reminder repeats.
type ReminderFrequency string

const (
	ReminderFrequencyOnce    ReminderFrequency = "once"
	ReminderFrequencyDaily   ReminderFrequency = "daily"
	ReminderFrequencyWeekly  ReminderFrequency = "weekly"
	ReminderFrequencyMonthly ReminderFrequency = "monthly"
)

// Reminder schedules a notification for a user. One-off reminders fire at
// RemindAt; repeating reminders fire at NextReminder and then advance it.
type Reminder struct {
	Base
	UserID       string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string            `gorm:"size:200;not null" json:"title"`
	Description  string            `json:"description"`
	ReminderType ReminderType      `gorm:"not null" json:"reminder_type"`
	Frequency    ReminderFrequency `gorm:"not null;default:'once'" json:"frequency"`
	RemindAt     time.Time         `gorm:"not null" json:"remind_at"`
	NextReminder *time.Time        `json:"next_reminder,omitempty"`
	IsActive     bool              `gorm:"default:true" json:"is_active"`
	Metadata     string            `json:"metadata,omitempty"`
}
