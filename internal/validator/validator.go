// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fintrack/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on the given engine.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_type", validateCategoryType)
	_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	_ = v.RegisterValidation("notification_type", validateNotificationType)
	_ = v.RegisterValidation("notification_priority", validateNotificationPriority)
	_ = v.RegisterValidation("reminder_type", validateReminderType)
	_ = v.RegisterValidation("reminder_frequency", validateReminderFrequency)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch models.CategoryType(fl.Field().String()) {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return models.BudgetPeriod(fl.Field().String()).Valid()
}

func validateNotificationType(fl validator.FieldLevel) bool {
	switch models.NotificationType(fl.Field().String()) {
	case models.NotificationTypeBudgetAlert, models.NotificationTypeBudgetExceeded,
		models.NotificationTypeReminder, models.NotificationTypeGoalAchieved, models.NotificationTypeSystem:
		return true
	}
	return false
}

func validateNotificationPriority(fl validator.FieldLevel) bool {
	switch models.NotificationPriority(fl.Field().String()) {
	case models.NotificationPriorityLow, models.NotificationPriorityMedium, models.NotificationPriorityHigh, models.NotificationPriorityUrgent:
		return true
	}
	return false
}

func validateReminderType(fl validator.FieldLevel) bool {
	switch models.ReminderType(fl.Field().String()) {
	case models.ReminderTypeBudgetCheck, models.ReminderTypeRecurringTransaction,
		models.ReminderTypeBillPayment, models.ReminderTypeCustom:
		return true
	}
	return false
}

func validateReminderFrequency(fl validator.FieldLevel) bool {
	switch models.ReminderFrequency(fl.Field().String()) {
	case models.ReminderFrequencyOnce, models.ReminderFrequencyDaily, models.ReminderFrequencyWeekly, models.ReminderFrequencyMonthly:
		return true
	}
	return false
}
