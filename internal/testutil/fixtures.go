package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Today returns midnight UTC of the current day.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns midnight UTC of the first day of the current month.
func FirstOfMonth() time.Time {
	y, m, _ := time.Now().UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given type owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestDefaultCategory creates a shared default category.
func CreateTestDefaultCategory(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:      name,
		Type:      categoryType,
		IsDefault: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create default category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Type:            txType,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestExpense creates an expense dated now.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, userID, categoryID, models.TransactionTypeExpense, amount, time.Now())
}

// CreateTestBudget creates an active monthly budget of 1,000,000 starting on
// the first of the current month with an 80% threshold.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string) *models.Budget {
	t.Helper()

	start := FirstOfMonth()
	budget := &models.Budget{
		UserID:         userID,
		CategoryID:     categoryID,
		Amount:         decimal.NewFromInt(1000000),
		Period:         models.BudgetPeriodMonthly,
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, -1),
		IsActive:       true,
		AlertThreshold: 80,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestNotification creates an unread notification of the given type.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string, notificationType models.NotificationType) *models.Notification {
	t.Helper()

	n := &models.Notification{
		UserID:   userID,
		Title:    fmt.Sprintf("Notification %d", nextID()),
		Message:  "test message",
		Type:     notificationType,
		Priority: models.NotificationPriorityMedium,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

// CreateTestReminder creates an active reminder firing at remindAt.
func CreateTestReminder(t *testing.T, db *gorm.DB, userID string, frequency models.ReminderFrequency, remindAt time.Time) *models.Reminder {
	t.Helper()

	r := &models.Reminder{
		UserID:       userID,
		Title:        fmt.Sprintf("Reminder %d", nextID()),
		ReminderType: models.ReminderTypeCustom,
		Frequency:    frequency,
		RemindAt:     remindAt.UTC(),
		IsActive:     true,
	}
	if frequency != models.ReminderFrequencyOnce {
		next := remindAt.UTC()
		r.NextReminder = &next
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create test reminder: %v", err)
	}
	return r
}
