package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/period"
)

// overviewConcurrency bounds the spending queries run in parallel for the
// budget overview.
const overviewConcurrency = 4

// budgetService is the budget engine: it owns budget windows, measures
// spending against them and raises threshold alerts.
type budgetService struct {
	db               *gorm.DB
	repo             budgetRepository
	spending         SpendingAggregator
	notifications    NotificationServicer
	locks            *KeyedMutex
	defaultThreshold int
	now              func() time.Time
}

// NewBudgetService creates a new BudgetServicer. defaultThreshold is used
// when a budget is created without an alert threshold.
func NewBudgetService(db *gorm.DB, spending SpendingAggregator, notifications NotificationServicer, defaultThreshold int) BudgetServicer {
	return &budgetService{
		db:               db,
		repo:             budgetRepository{db: db},
		spending:         spending,
		notifications:    notifications,
		locks:            NewKeyedMutex(),
		defaultThreshold: defaultThreshold,
		now:              time.Now,
	}
}

// CreateBudget creates a budget whose end date is derived from its start
// date and period. It fails with ErrDuplicateBudget when an active budget
// for the same category overlaps the new window.
func (s *budgetService) CreateBudget(userID string, in CreateBudgetInput) (*models.Budget, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	threshold := in.AlertThreshold
	if threshold == 0 {
		threshold = s.defaultThreshold
	}
	if threshold < 1 || threshold > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 1 and 100")
	}

	start := period.DateOnly(in.StartDate)
	end, err := period.EndDate(start, in.Period)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(budgetKey(userID, in.CategoryID))
	defer unlock()

	var budget *models.Budget
	err = s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findVisibleCategory(tx, userID, in.CategoryID)
		if err != nil {
			return err
		}

		overlap, err := s.repo.withTx(tx).hasOverlap(userID, in.CategoryID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return apperrors.ErrDuplicateBudget
		}

		budget = &models.Budget{
			UserID:         userID,
			CategoryID:     in.CategoryID,
			Amount:         amount,
			Period:         in.Period,
			StartDate:      start,
			EndDate:        end,
			IsActive:       true,
			AlertThreshold: threshold,
		}
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		budget.Category = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets, newest first.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	isActive := true
	if filter.IsActive != nil {
		isActive = *filter.IsActive
	}

	base := s.db.Model(&models.Budget{}).Where("user_id = ? AND is_active = ?", userID, isActive)
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Period != nil {
		base = base.Where("period = ?", *filter.Period)
	}

	result, err := pagination.List[models.Budget](base, page, "created_at DESC", "Category")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return s.repo.findByID(userID, budgetID)
}

// GetBudgetWithSpending returns the budget merged with the spending measured
// over its whole window.
func (s *budgetService) GetBudgetWithSpending(userID, budgetID string) (*BudgetWithSpending, error) {
	budget, err := s.repo.findByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	spent, err := s.spending.SumExpenses(userID, budget.CategoryID, budget.StartDate, budget.EndDate)
	if err != nil {
		return nil, err
	}

	return &BudgetWithSpending{Budget: *budget, Spending: summarize(budget, spent)}, nil
}

// GetActiveBudgetsOverview returns every active budget covering today with
// its spending summary.
func (s *budgetService) GetActiveBudgetsOverview(ctx context.Context, userID string) ([]BudgetWithSpending, error) {
	budgets, err := s.repo.withTx(s.db.WithContext(ctx)).activeCovering(userID, "", period.DateOnly(s.now()))
	if err != nil {
		return nil, err
	}

	result := make([]BudgetWithSpending, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)

	for i := range budgets {
		b := &budgets[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			spent, err := s.spending.SumExpenses(userID, b.CategoryID, b.StartDate, b.EndDate)
			if err != nil {
				return err
			}
			result[i] = BudgetWithSpending{Budget: *b, Spending: summarize(b, spent)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateBudget applies a partial update. The end date is only changed when
// given explicitly; changing start_date or period does not re-derive it.
func (s *budgetService) UpdateBudget(userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error) {
	budget, err := s.repo.findByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = in.Amount.Round(2)
	}
	if in.Period != nil {
		if !in.Period.Valid() {
			return nil, apperrors.ErrInvalidPeriod
		}
		updates["period"] = *in.Period
	}
	if in.StartDate != nil {
		updates["start_date"] = period.DateOnly(*in.StartDate)
	}
	if in.EndDate != nil {
		updates["end_date"] = period.DateOnly(*in.EndDate)
	}
	if in.AlertThreshold != nil {
		if *in.AlertThreshold < 1 || *in.AlertThreshold > 100 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 1 and 100")
		}
		updates["alert_threshold"] = *in.AlertThreshold
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) == 0 {
		return budget, nil
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.repo.findByID(userID, budgetID)
}

// DeleteBudget removes a budget permanently.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.repo.findByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CheckBudgetAlerts evaluates an expense of amount that has not yet been
// recorded against the user's active budgets for the category and persists
// a notification for every threshold it crosses.
func (s *budgetService) CheckBudgetAlerts(userID, categoryID string, amount decimal.Decimal) ([]BudgetAlert, error) {
	unlock := s.locks.Lock(budgetKey(userID, categoryID))
	defer unlock()

	alerts, pending, err := s.evaluateAlerts(userID, categoryID, amount)
	if err != nil {
		return nil, err
	}
	s.notify(userID, alerts, pending)
	return alerts, nil
}

// TrackExpense records an expense through commit while holding the category's
// decision region, so concurrent expenses observe each other's spending.
// Alerts are evaluated before commit and notifications are written only
// after commit succeeds. A failed evaluation never blocks the commit.
func (s *budgetService) TrackExpense(userID, categoryID string, amount decimal.Decimal, commit func() error) ([]BudgetAlert, error) {
	unlock := s.locks.Lock(budgetKey(userID, categoryID))
	defer unlock()

	alerts, pending, err := s.evaluateAlerts(userID, categoryID, amount)
	if err != nil {
		logger.Get().Errorw("failed to evaluate budget alerts",
			"error", err,
			"user_id", userID,
			"category_id", categoryID,
		)
		alerts, pending = []BudgetAlert{}, nil
	}

	if err := commit(); err != nil {
		return nil, err
	}

	s.notify(userID, alerts, pending)
	return alerts, nil
}

// pendingAlert is a crossing waiting for its notification to be written.
type pendingAlert struct {
	budget     models.Budget
	spentAfter decimal.Decimal
	alertType  AlertType
	index      int // position in the alert list, -1 when not listed
}

func (s *budgetService) evaluateAlerts(userID, categoryID string, amount decimal.Decimal) ([]BudgetAlert, []pendingAlert, error) {
	budgets, err := s.repo.activeCovering(userID, categoryID, period.DateOnly(s.now()))
	if err != nil {
		return nil, nil, err
	}

	alerts := []BudgetAlert{}
	var pending []pendingAlert

	for i := range budgets {
		b := &budgets[i]

		before, err := s.spending.SumExpenses(userID, categoryID, b.StartDate, b.EndDate)
		if err != nil {
			return nil, nil, err
		}

		c := evaluateCrossing(b, before, amount)

		index := -1
		if c.Alerting {
			over := isOver(c.SpentAfter, b.Amount)
			index = len(alerts)
			alerts = append(alerts, BudgetAlert{
				BudgetID:        b.ID,
				CategoryID:      b.CategoryID,
				SpentPercentage: c.PctAfter.Round(2).InexactFloat64(),
				IsOverBudget:    over,
				Message:         alertMessage(over, c.PctAfter),
			})
		}

		if c.Transition != "" {
			pending = append(pending, pendingAlert{
				budget:     *b,
				spentAfter: c.SpentAfter,
				alertType:  c.Transition,
				index:      index,
			})
		}
	}

	return alerts, pending, nil
}

// notify writes the pending notifications. Failures are logged and leave
// NotificationCreated false on the matching alert.
func (s *budgetService) notify(userID string, alerts []BudgetAlert, pending []pendingAlert) {
	for _, p := range pending {
		if _, err := s.notifications.CreateBudgetAlert(userID, &p.budget, p.budget.Category, p.spentAfter, p.alertType); err != nil {
			logger.Get().Errorw("failed to create budget alert notification",
				"error", err,
				"user_id", userID,
				"budget_id", p.budget.ID,
				"alert_type", p.alertType,
			)
			continue
		}
		if p.index >= 0 {
			alerts[p.index].NotificationCreated = true
		}
	}
}
