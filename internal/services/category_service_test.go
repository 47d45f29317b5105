package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "Groceries", models.CategoryTypeExpense, "cart", "#FF0000")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected category ID to be set")
		}
		if !cat.OwnedBy(user.ID) {
			t.Error("expected category to be owned by the user")
		}
		if cat.IsDefault {
			t.Error("user categories must not be defaults")
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Food", models.CategoryTypeExpense, "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Food", models.CategoryTypeExpense, "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("clashes_with_default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestDefaultCategory(t, db, "Transport", models.CategoryTypeExpense)

		_, err := svc.CreateCategory(user.ID, "Transport", models.CategoryTypeExpense, "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")

		_, err = svc.CreateCategory(user.ID, "Transport", models.CategoryTypeIncome, "", "")
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "", models.CategoryTypeExpense, "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestDefaultCategory(t, db, "Salary", models.CategoryTypeIncome)
	testutil.CreateTestDefaultCategory(t, db, "Food", models.CategoryTypeExpense)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	result, err := svc.GetUserCategories(user.ID, nil, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 3 {
		t.Errorf("expected defaults plus own category (3), got %d", result.TotalItems)
	}
	if !result.Data[0].IsDefault {
		t.Error("expected defaults listed first")
	}

	expense := models.CategoryTypeExpense
	result, err = svc.GetUserCategories(user.ID, &expense, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 2 {
		t.Errorf("expected 2 expense categories, got %d", result.TotalItems)
	}
}

func TestGetCategoryByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	def := testutil.CreateTestDefaultCategory(t, db, "Food", models.CategoryTypeExpense)
	foreign := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	got, err := svc.GetCategoryByID(user.ID, def.ID)
	testutil.AssertNoError(t, err)
	if got.Name != "Food" {
		t.Errorf("expected default category, got %s", got.Name)
	}

	_, err = svc.GetCategoryByID(user.ID, foreign.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestUpdateCategory(t *testing.T) {
	t.Run("own_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		updated, err := svc.UpdateCategory(user.ID, cat.ID, "Dining", "fork", "#00FF00")
		testutil.AssertNoError(t, err)
		if updated.Name != "Dining" || updated.Icon != "fork" || updated.Color != "#00FF00" {
			t.Errorf("unexpected category after update: %+v", updated)
		}
	})

	t.Run("default_is_read_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		def := testutil.CreateTestDefaultCategory(t, db, "Food", models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(user.ID, def.ID, "Mine", "", "")
		testutil.AssertAppError(t, err, "FORBIDDEN")

		err = svc.DeleteCategory(user.ID, def.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		_, err := svc.GetCategoryByID(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("in_use_by_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		testutil.CreateTestBudget(t, db, user.ID, cat.ID)

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("in_use_by_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10")

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})
}
