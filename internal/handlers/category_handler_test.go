package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn    func(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	getUserCategoriesFn func(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID, name, icon, color string) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, categoryType, icon, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, categoryType, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, icon, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetUserCategories)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error) {
				return &models.Category{
					Base:   models.Base{ID: testCategoryID},
					UserID: &userID,
					Name:   name,
					Type:   categoryType,
					Icon:   icon,
					Color:  color,
				}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense","color":"#FF0000"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Food" || category["type"] != "expense" {
			t.Errorf("unexpected category %v", category)
		}
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense","color":"red"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"savings"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(_, _ string, _ models.CategoryType, _, _ string) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetUserCategories(t *testing.T) {
	t.Run("passes type filter", func(t *testing.T) {
		var got *models.CategoryType
		svc := &mockCategoryService{
			getUserCategoriesFn: func(_ string, categoryType *models.CategoryType, _ pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				got = categoryType
				resp := pagination.NewPageResponse([]models.Category{{Name: "Salary"}}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "GET", "/categories?type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || *got != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %v", got)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, "GET", "/categories?type=other", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_UpdateAndDelete(t *testing.T) {
	t.Run("update default returns 403", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _, _, _, _ string) (*models.Category, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "PUT", "/categories/"+testCategoryID, `{"name":"Mine"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("delete in use returns 409", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_, _ string) error { return apperrors.ErrCategoryInUse },
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_IN_USE")
	})

	t.Run("get unknown returns 404", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(_, _ string) (*models.Category, error) { return nil, apperrors.ErrCategoryNotFound },
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "GET", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
