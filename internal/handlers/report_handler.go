package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// ReportHandler serves read-only financial reports.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SummaryQueryParams are the query parameters of the financial summary.
type SummaryQueryParams struct {
	Period string `form:"period" binding:"omitempty,oneof=week month year custom"`
	Year   int    `form:"year" binding:"omitempty,min=1970,max=9999"`
	Month  int    `form:"month" binding:"omitempty,min=1,max=12"`
}

// TrendQueryParams are the query parameters of the trend report.
type TrendQueryParams struct {
	Period string `form:"period" binding:"omitempty,oneof=weekly monthly"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=52"`
}

// TopCategoriesQueryParams are the query parameters of the top categories report.
type TopCategoriesQueryParams struct {
	Type   string `form:"type" binding:"omitempty,transaction_type"`
	Period string `form:"period" binding:"omitempty,oneof=week month year"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// DashboardQueryParams are the query parameters of the transaction dashboard.
type DashboardQueryParams struct {
	Period string `form:"period" binding:"omitempty,oneof=week month year"`
}

// GetSummary handles the financial summary
// @Summary     Financial summary
// @Description Income, expense, net balance and per-category breakdown over a period
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "week, month (default), year or custom"
// @Param       year   query int    false "Year for the year and custom periods"
// @Param       month  query int    false "Month (1-12) for the custom period"
// @Success     200 {object} services.FinancialSummary "Financial summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q SummaryQueryParams
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, err := h.reportService.GetFinancialSummary(c.Request.Context(), userID, services.SummaryQuery{
		Period: services.ReportPeriod(q.Period),
		Year:   q.Year,
		Month:  q.Month,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTrends handles the trend report
// @Summary     Income and expense trends
// @Description Monthly or weekly series ending with the current period, with the change over the last two buckets
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "monthly (default) or weekly"
// @Param       limit  query int    false "Number of buckets (default 12, max 52)"
// @Success     200 {object} services.TrendReport "Trend report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/trends [get]
func (h *ReportHandler) GetTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q TrendQueryParams
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	interval := services.TrendInterval(q.Period)
	if interval == "" {
		interval = services.TrendIntervalMonthly
	}

	report, err := h.reportService.GetTrends(c.Request.Context(), userID, interval, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTopCategories handles the top categories report
// @Summary     Top categories
// @Description Categories ranked by total over a period, with count, average and share of the total
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       type   query string false "expense (default) or income"
// @Param       period query string false "week, month (default) or year"
// @Param       limit  query int    false "Number of categories (default 10, max 50)"
// @Success     200 {array}  services.TopCategory "Top categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/top-categories [get]
func (h *ReportHandler) GetTopCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q TopCategoriesQueryParams
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	txType := models.TransactionType(q.Type)
	if txType == "" {
		txType = models.TransactionTypeExpense
	}

	top, err := h.reportService.GetTopCategories(c.Request.Context(), userID, txType, services.ReportPeriod(q.Period), q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": top})
}

// GetBudgetProgress handles the budget progress report
// @Summary     Budget progress
// @Description Active budgets covering today with spending, days remaining and status, highest percentage first
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.BudgetProgress "Budget progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/budget-progress [get]
func (h *ReportHandler) GetBudgetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.reportService.GetBudgetProgress(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": progress})
}

// GetInsights handles the insights report
// @Summary     Financial insights
// @Description Current month summary, recent trends, budgets needing attention and observations drawn from them
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.InsightsReport "Insights"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/insights [get]
func (h *ReportHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDashboard handles the transaction dashboard
// @Summary     Transaction dashboard
// @Description Period totals, the five latest transactions and expenses by category
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "week, month (default) or year"
// @Success     200 {object} services.DashboardStats "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q DashboardQueryParams
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stats, err := h.reportService.GetDashboard(c.Request.Context(), userID, services.ReportPeriod(q.Period))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
