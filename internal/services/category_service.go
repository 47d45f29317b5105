package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// visibleTo scopes a category query to the shared defaults plus the user's own.
func visibleTo(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? OR user_id IS NULL", userID)
	}
}

// findVisibleCategory loads a category the user may reference.
func findVisibleCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Scopes(visibleTo(userID)).Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// CreateCategory creates a new category owned by the user.
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Scopes(visibleTo(userID)).
		Where("name = ? AND type = ?", name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		UserID: &userID,
		Name:   name,
		Type:   categoryType,
		Icon:   icon,
		Color:  color,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories lists the defaults and the user's own categories,
// optionally restricted to one type.
func (s *categoryService) GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	base := s.db.Model(&models.Category{}).Scopes(visibleTo(userID))
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	result, err := pagination.List[models.Category](base, page, "is_default DESC, name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCategoryByID retrieves a category visible to the user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findVisibleCategory(s.db, userID, categoryID)
}

// getOwnedCategory loads a category the user may modify. Shared defaults are
// read-only.
func (s *categoryService) getOwnedCategory(userID, categoryID string) (*models.Category, error) {
	category, err := findVisibleCategory(s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.OwnedBy(userID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "default categories cannot be modified")
	}
	return category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error) {
	category, err := s.getOwnedCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return findVisibleCategory(s.db, userID, categoryID)
}

// DeleteCategory deletes a category that no transaction or budget references.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.getOwnedCategory(userID, categoryID)
	if err != nil {
		return err
	}

	for _, model := range []interface{}{&models.Transaction{}, &models.Budget{}} {
		var count int64
		if err := s.db.Model(model).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrCategoryInUse
		}
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
