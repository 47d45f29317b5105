package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/uuid"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// The end date is always derived from start_date and period.
type CreateBudgetRequest struct {
	CategoryID     string              `json:"category_id" binding:"required,uuid"`
	Amount         *decimal.Decimal    `json:"amount" binding:"required" swaggertype:"string" example:"1000000.00"`
	Period         models.BudgetPeriod `json:"period" binding:"required,budget_period"`
	StartDate      string              `json:"start_date" binding:"required" example:"2024-01-01"`
	AlertThreshold int                 `json:"alert_threshold" binding:"omitempty,min=1,max=100"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// end_date is not recomputed when start_date or period change.
type UpdateBudgetRequest struct {
	Amount         *decimal.Decimal     `json:"amount" swaggertype:"string"`
	Period         *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	StartDate      *string              `json:"start_date"`
	EndDate        *string              `json:"end_date"`
	AlertThreshold *int                 `json:"alert_threshold" binding:"omitempty,min=1,max=100"`
	IsActive       *bool                `json:"is_active"`
}

// CheckAlertsRequest represents a what-if alert check for a prospective expense.
type CheckAlertsRequest struct {
	CategoryID string           `json:"category_id" binding:"required,uuid"`
	Amount     *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"150000.00"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a budget for a category. Fails when an active budget for the same category overlaps the new window.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Overlapping budget exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := requirePositive(*req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	startDate, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, services.CreateBudgetInput{
		CategoryID:     req.CategoryID,
		Amount:         *req.Amount,
		Period:         req.Period,
		StartDate:      startDate,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreateBudget, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{
			"category_id": budget.CategoryID,
			"amount":      budget.Amount.StringFixed(2),
			"period":      budget.Period,
			"start_date":  budget.StartDate.Format(dateLayout),
			"end_date":    budget.EndDate.Format(dateLayout),
		})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets, newest first. Only active budgets are listed unless is_active is given.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query string false "Filter by category"
// @Param       period      query string false "Filter by period (weekly/monthly/yearly)"
// @Param       is_active   query bool   false "Filter by active status"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.BudgetFilter
	if filter.IsActive, err = parseOptionalBool(c, "is_active"); err != nil {
		respondWithError(c, err)
		return
	}

	if v := c.Query("period"); v != "" {
		p := models.BudgetPeriod(v)
		if !p.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be 'weekly', 'monthly' or 'yearly'"))
			return
		}
		filter.Period = &p
	}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOverview returns every active budget covering today with its spending.
// @Summary     Active budgets overview
// @Description Get all budgets whose window contains today, each with its spending summary
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.BudgetWithSpending "Active budgets with spending"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetActiveBudgetsOverview(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// CheckAlerts reports which budgets a prospective expense would push past
// their threshold. Crossing notifications are written as a side effect.
// @Summary     Check budget alerts
// @Description Evaluate active budgets of a category against an additional expense amount
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CheckAlertsRequest true "Category and amount"
// @Success     200 {array}  services.BudgetAlert "Alerts at or above threshold"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/check-alerts [post]
func (h *BudgetHandler) CheckAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckAlertsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := requirePositive(*req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.budgetService.CheckBudgetAlerts(userID, req.CategoryID, req.Amount.Round(2))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetBudget handles retrieving a specific budget with its spending summary.
// @Summary     Get budget by ID
// @Description Get a budget together with spending, remaining amount and percentage used
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.BudgetWithSpending "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetWithSpending(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Partially update a budget. end_date is never recomputed; send it explicitly when changing start_date or period.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.UpdateBudgetInput{
		Amount:         req.Amount,
		Period:         req.Period,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	}
	if req.StartDate != nil {
		if in.StartDate, err = parseOptionalTime(*req.StartDate); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	if req.EndDate != nil {
		if in.EndDate, err = parseOptionalTime(*req.EndDate); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Amount != nil {
		changes["amount"] = req.Amount.StringFixed(2)
	}
	if req.Period != nil {
		changes["period"] = *req.Period
	}
	if req.AlertThreshold != nil {
		changes["alert_threshold"] = *req.AlertThreshold
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}
	h.auditService.Log(userID, services.AuditActionUpdateBudget, "budget", budgetID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Permanently delete a budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDeleteBudget, "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
