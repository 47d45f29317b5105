package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a transaction category. Default categories have no owner and
// are shared read-only by every user.
type Category struct {
	Base
	UserID    *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name      string       `gorm:"size:100;not null" json:"name"`
	Type      CategoryType `gorm:"not null" json:"type"`
	Icon      string       `gorm:"size:50" json:"icon"`
	Color     string       `gorm:"size:20;default:'#6366f1'" json:"color"`
	IsDefault bool         `gorm:"default:false" json:"is_default"`
}

// OwnedBy reports whether the category belongs to the given user.
func (c *Category) OwnedBy(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}
