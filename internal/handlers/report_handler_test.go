package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock report service ---

type mockReportService struct {
	summaryFn       func(ctx context.Context, userID string, q services.SummaryQuery) (*services.FinancialSummary, error)
	trendsFn        func(ctx context.Context, userID string, interval services.TrendInterval, limit int) (*services.TrendReport, error)
	topCategoriesFn func(ctx context.Context, userID string, txType models.TransactionType, p services.ReportPeriod, limit int) ([]services.TopCategory, error)
	progressFn      func(ctx context.Context, userID string) ([]services.BudgetProgress, error)
	insightsFn      func(ctx context.Context, userID string) (*services.InsightsReport, error)
	dashboardFn     func(ctx context.Context, userID string, p services.ReportPeriod) (*services.DashboardStats, error)
}

func (m *mockReportService) GetFinancialSummary(ctx context.Context, userID string, q services.SummaryQuery) (*services.FinancialSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx, userID, q)
	}
	return &services.FinancialSummary{}, nil
}

func (m *mockReportService) GetTrends(ctx context.Context, userID string, interval services.TrendInterval, limit int) (*services.TrendReport, error) {
	if m.trendsFn != nil {
		return m.trendsFn(ctx, userID, interval, limit)
	}
	return &services.TrendReport{PeriodType: interval, Trends: []services.TrendPoint{}}, nil
}

func (m *mockReportService) GetTopCategories(ctx context.Context, userID string, txType models.TransactionType, p services.ReportPeriod, limit int) ([]services.TopCategory, error) {
	if m.topCategoriesFn != nil {
		return m.topCategoriesFn(ctx, userID, txType, p, limit)
	}
	return []services.TopCategory{}, nil
}

func (m *mockReportService) GetBudgetProgress(ctx context.Context, userID string) ([]services.BudgetProgress, error) {
	if m.progressFn != nil {
		return m.progressFn(ctx, userID)
	}
	return []services.BudgetProgress{}, nil
}

func (m *mockReportService) GetInsights(ctx context.Context, userID string) (*services.InsightsReport, error) {
	if m.insightsFn != nil {
		return m.insightsFn(ctx, userID)
	}
	return &services.InsightsReport{}, nil
}

func (m *mockReportService) GetDashboard(ctx context.Context, userID string, p services.ReportPeriod) (*services.DashboardStats, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx, userID, p)
	}
	return &services.DashboardStats{Period: p}, nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/reports/summary", handler.GetSummary)
	auth.GET("/reports/trends", handler.GetTrends)
	auth.GET("/reports/top-categories", handler.GetTopCategories)
	auth.GET("/reports/budget-progress", handler.GetBudgetProgress)
	auth.GET("/reports/insights", handler.GetInsights)
	auth.GET("/transactions/dashboard", handler.GetDashboard)
	return r
}

func TestReportHandler_GetSummary(t *testing.T) {
	t.Run("passes the custom month through", func(t *testing.T) {
		var got services.SummaryQuery
		svc := &mockReportService{
			summaryFn: func(_ context.Context, userID string, q services.SummaryQuery) (*services.FinancialSummary, error) {
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				got = q
				return &services.FinancialSummary{
					Period:  q.Period,
					Summary: services.SummaryTotals{TotalIncome: decimal.NewFromInt(5000000), NetBalance: decimal.NewFromInt(3250000)},
				}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/summary?period=custom&year=2024&month=2", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Period != services.ReportPeriodCustom || got.Year != 2024 || got.Month != 2 {
			t.Errorf("unexpected query %+v", got)
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["net_balance"] != "3250000" {
			t.Errorf("expected net_balance as a decimal string, got %v", summary["net_balance"])
		}
	})

	tests := map[string]string{
		"unknown period": "/reports/summary?period=quarter",
		"month too high": "/reports/summary?period=custom&year=2024&month=13",
		"non numeric":    "/reports/summary?year=abc",
	}
	for name, path := range tests {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			r := setupReportRouter(NewReportHandler(&mockReportService{}))
			rec := doRequest(r, "GET", path, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestReportHandler_GetTrends(t *testing.T) {
	t.Run("defaults to monthly", func(t *testing.T) {
		var gotInterval services.TrendInterval
		var gotLimit int
		svc := &mockReportService{
			trendsFn: func(_ context.Context, _ string, interval services.TrendInterval, limit int) (*services.TrendReport, error) {
				gotInterval, gotLimit = interval, limit
				return &services.TrendReport{PeriodType: interval, Trends: []services.TrendPoint{}}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/trends", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotInterval != services.TrendIntervalMonthly || gotLimit != 0 {
			t.Errorf("expected monthly with default limit, got %s/%d", gotInterval, gotLimit)
		}
		if parseJSON(t, rec)["analysis"] != nil {
			t.Error("expected null analysis for an empty series")
		}
	})

	t.Run("weekly with limit", func(t *testing.T) {
		var gotLimit int
		svc := &mockReportService{
			trendsFn: func(_ context.Context, _ string, interval services.TrendInterval, limit int) (*services.TrendReport, error) {
				if interval != services.TrendIntervalWeekly {
					t.Errorf("expected weekly, got %s", interval)
				}
				gotLimit = limit
				return &services.TrendReport{PeriodType: interval}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/trends?period=weekly&limit=4", "")

		if rec.Code != http.StatusOK || gotLimit != 4 {
			t.Fatalf("expected 200 with limit 4, got %d/%d", rec.Code, gotLimit)
		}
	})

	t.Run("returns 400 on daily", func(t *testing.T) {
		r := setupReportRouter(NewReportHandler(&mockReportService{}))
		rec := doRequest(r, "GET", "/reports/trends?period=daily", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on limit above max", func(t *testing.T) {
		r := setupReportRouter(NewReportHandler(&mockReportService{}))
		rec := doRequest(r, "GET", "/reports/trends?limit=53", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReportHandler_GetTopCategories(t *testing.T) {
	t.Run("defaults to expense", func(t *testing.T) {
		var gotType models.TransactionType
		svc := &mockReportService{
			topCategoriesFn: func(_ context.Context, _ string, txType models.TransactionType, _ services.ReportPeriod, _ int) ([]services.TopCategory, error) {
				gotType = txType
				return []services.TopCategory{{
					CategoryTotal: services.CategoryTotal{Total: decimal.NewFromInt(600), Count: 3},
					Average:       decimal.NewFromInt(200),
					Percentage:    60,
				}}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/top-categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType != models.TransactionTypeExpense {
			t.Errorf("expected expense, got %s", gotType)
		}
		categories := parseJSON(t, rec)["categories"].([]interface{})
		first := categories[0].(map[string]interface{})
		if first["total"] != "600" || first["percentage"] != 60.0 || first["average"] != "200" {
			t.Errorf("unexpected category payload %v", first)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupReportRouter(NewReportHandler(&mockReportService{}))
		rec := doRequest(r, "GET", "/reports/top-categories?type=transfer", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReportHandler_BudgetProgressAndInsights(t *testing.T) {
	t.Run("budget progress", func(t *testing.T) {
		svc := &mockReportService{
			progressFn: func(_ context.Context, _ string) ([]services.BudgetProgress, error) {
				return []services.BudgetProgress{{
					Budget:   models.Budget{Base: models.Base{ID: testBudgetID}},
					Progress: services.ProgressState{Percentage: 85, Status: services.BudgetStatusWarning},
				}}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/budget-progress", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		budgets := parseJSON(t, rec)["budgets"].([]interface{})
		progress := budgets[0].(map[string]interface{})["progress"].(map[string]interface{})
		if progress["status"] != "warning" {
			t.Errorf("expected warning status, got %v", progress["status"])
		}
	})

	t.Run("insights", func(t *testing.T) {
		svc := &mockReportService{
			insightsFn: func(_ context.Context, _ string) (*services.InsightsReport, error) {
				return &services.InsightsReport{
					Insights: []services.Insight{{Type: "danger", Title: "Expenses exceed income", Action: "reduce_expenses"}},
				}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/insights", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		insights := parseJSON(t, rec)["insights"].([]interface{})
		if len(insights) != 1 || insights[0].(map[string]interface{})["action"] != "reduce_expenses" {
			t.Errorf("unexpected insights %v", insights)
		}
	})

	t.Run("insights service error", func(t *testing.T) {
		svc := &mockReportService{
			insightsFn: func(_ context.Context, _ string) (*services.InsightsReport, error) {
				return nil, apperrors.ErrInternalServer
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/reports/insights", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestReportHandler_GetDashboard(t *testing.T) {
	t.Run("passes the period", func(t *testing.T) {
		var got services.ReportPeriod
		svc := &mockReportService{
			dashboardFn: func(_ context.Context, _ string, p services.ReportPeriod) (*services.DashboardStats, error) {
				got = p
				return &services.DashboardStats{Period: p, RecentTransactions: []models.Transaction{}}, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc))

		rec := doRequest(r, "GET", "/transactions/dashboard?period=week", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got != services.ReportPeriodWeek {
			t.Errorf("expected week, got %s", got)
		}
	})

	t.Run("returns 400 on custom", func(t *testing.T) {
		r := setupReportRouter(NewReportHandler(&mockReportService{}))
		rec := doRequest(r, "GET", "/transactions/dashboard?period=custom", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := gin.New()
		r.GET("/transactions/dashboard", NewReportHandler(&mockReportService{}).GetDashboard)
		rec := doRequest(r, "GET", "/transactions/dashboard", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
