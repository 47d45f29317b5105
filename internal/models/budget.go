package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is one of the recognised periods.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// Budget is a spending envelope for one (user, category, period) window.
// StartDate and EndDate are calendar dates stored at UTC midnight; the
// window [StartDate, EndDate] is inclusive on both ends.
type Budget struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index:idx_budgets_user_category" json:"user_id"`
	CategoryID     string          `gorm:"type:uuid;not null;index:idx_budgets_user_category" json:"category_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Period         BudgetPeriod    `gorm:"not null;default:'monthly'" json:"period"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time       `gorm:"type:date;not null" json:"end_date"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	AlertThreshold int             `gorm:"not null;default:80" json:"alert_threshold"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
