package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/period"
)

// spendingAggregator sums expense transactions for budget windows.
type spendingAggregator struct {
	db *gorm.DB
}

// NewSpendingAggregator creates a new SpendingAggregator.
func NewSpendingAggregator(db *gorm.DB) SpendingAggregator {
	return &spendingAggregator{db: db}
}

// SumExpenses returns the total of expense transactions dated inside
// [windowStart, windowEnd]. Both bounds are calendar days, so the whole of
// the last day is included. The result is zero when nothing matches.
func (s *spendingAggregator) SumExpenses(userID, categoryID string, windowStart, windowEnd time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND category_id = ? AND type = ?", userID, categoryID, models.TransactionTypeExpense).
		Where("transaction_date >= ? AND transaction_date < ?", period.DateOnly(windowStart), period.ExclusiveEnd(windowEnd)).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// SQLite sums NUMERIC columns as REAL.
	return result.Total.Round(2), nil
}
