package testutil_test

import (
	"testing"

	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "categories", "transactions", "budgets", "notifications", "reminders", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	testutil.CreateTestUser(t, first)

	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected empty users table in a fresh database, got %d rows", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if !category.OwnedBy(user.ID) {
		t.Error("expected category to be owned by the user")
	}

	tx := testutil.CreateTestExpense(t, db, user.ID, category.ID, "1500.50")
	testutil.AssertAmount(t, tx.Amount, "1500.50")

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID)
	if budget.StartDate.Day() != 1 {
		t.Errorf("expected budget to start on the first, got %s", budget.StartDate)
	}
	if !budget.EndDate.After(budget.StartDate) {
		t.Errorf("expected end %s after start %s", budget.EndDate, budget.StartDate)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
