package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a financial transaction in the system
type Transaction struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index:idx_transactions_user_category_date" json:"user_id"`
	CategoryID      string          `gorm:"type:uuid;not null;index:idx_transactions_user_category_date" json:"category_id"`
	Type            TransactionType `gorm:"not null" json:"type"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `gorm:"not null;index:idx_transactions_user_category_date" json:"transaction_date"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
