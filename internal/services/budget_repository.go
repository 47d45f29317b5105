package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// budgetRepository holds the budget queries shared by the engine. It is
// rebound to a gorm transaction with withTx when a query must run inside one.
type budgetRepository struct {
	db *gorm.DB
}

func (r budgetRepository) withTx(tx *gorm.DB) budgetRepository {
	return budgetRepository{db: tx}
}

// findByID loads a budget scoped to its owner.
func (r budgetRepository) findByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := r.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// hasOverlap reports whether an active budget for the same user and category
// shares at least one day with [start, end].
func (r budgetRepository) hasOverlap(userID, categoryID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND is_active = ?", userID, categoryID, true).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// activeCovering returns the active budgets whose window contains day.
// An empty categoryID matches every category.
func (r budgetRepository) activeCovering(userID, categoryID string, day time.Time) ([]models.Budget, error) {
	q := r.db.Preload("Category").
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("start_date <= ? AND end_date >= ?", day, day)
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}

	var budgets []models.Budget
	if err := q.Order("created_at DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}
