package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/period"
)

const (
	DefaultTrendLimit         = 12
	MaxTrendLimit             = 52
	DefaultTopCategoriesLimit = 10

	recentTransactionsLimit = 5
	insightTrendLimit       = 3
	reportConcurrency       = 4
)

// ReportPeriod selects the calendar window of a report.
type ReportPeriod string

const (
	ReportPeriodWeek   ReportPeriod = "week"
	ReportPeriodMonth  ReportPeriod = "month"
	ReportPeriodYear   ReportPeriod = "year"
	ReportPeriodCustom ReportPeriod = "custom"
)

// TrendInterval is the bucket size of a trend series.
type TrendInterval string

const (
	TrendIntervalMonthly TrendInterval = "monthly"
	TrendIntervalWeekly  TrendInterval = "weekly"
)

// BudgetStatus grades how far a budget's spending has progressed.
type BudgetStatus string

const (
	BudgetStatusGood       BudgetStatus = "good"
	BudgetStatusOnTrack    BudgetStatus = "on_track"
	BudgetStatusWarning    BudgetStatus = "warning"
	BudgetStatusOverBudget BudgetStatus = "over_budget"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CategoryTotal is the spending or income of one category.
type CategoryTotal struct {
	Category *models.Category `json:"category"`
	Total    decimal.Decimal  `json:"total"`
	Count    int64            `json:"count"`
}

// TopCategory adds the average transaction and the share of the period total.
type TopCategory struct {
	CategoryTotal
	Average    decimal.Decimal `json:"average"`
	Percentage float64         `json:"percentage"`
}

// SummaryQuery selects the window of a financial summary. Year and Month
// are only read for the custom and year periods; zero means current.
type SummaryQuery struct {
	Period ReportPeriod
	Year   int
	Month  int
}

// SummaryTotals are the headline figures of a financial summary.
type SummaryTotals struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int64           `json:"transaction_count"`
	AvgTransaction   decimal.Decimal `json:"avg_transaction"`
}

// CategoryBreakdown splits a period's totals by category.
type CategoryBreakdown struct {
	IncomeByCategory  []CategoryTotal `json:"income_by_category"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
}

// FinancialSummary is income and expense over a period.
type FinancialSummary struct {
	Period    ReportPeriod      `json:"period"`
	DateRange DateRange         `json:"date_range"`
	Summary   SummaryTotals     `json:"summary"`
	Breakdown CategoryBreakdown `json:"breakdown"`
}

// TrendPoint is one bucket of a trend series.
type TrendPoint struct {
	Period  string          `json:"period"`
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// TrendChange compares the last two buckets of a series.
type TrendChange struct {
	Current          decimal.Decimal `json:"current"`
	Previous         decimal.Decimal `json:"previous"`
	ChangePercentage float64         `json:"change_percentage"`
	Direction        string          `json:"direction"`
}

// TrendAnalysis holds the income and expense changes of a series.
type TrendAnalysis struct {
	IncomeTrend  TrendChange `json:"income_trend"`
	ExpenseTrend TrendChange `json:"expense_trend"`
}

// TrendReport is a series of buckets, oldest first. Analysis is nil when the
// series has fewer than two buckets.
type TrendReport struct {
	PeriodType TrendInterval  `json:"period_type"`
	Trends     []TrendPoint   `json:"trends"`
	Analysis   *TrendAnalysis `json:"analysis"`
}

// ProgressState is a budget's spending state for progress reports.
type ProgressState struct {
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	Percentage    float64         `json:"percentage"`
	DaysRemaining int             `json:"days_remaining"`
	Status        BudgetStatus    `json:"status"`
	IsOverBudget  bool            `json:"is_over_budget"`
}

// BudgetProgress is an active budget with its progress.
type BudgetProgress struct {
	Budget   models.Budget `json:"budget"`
	Progress ProgressState `json:"progress"`
}

// Insight is a short observation derived from the user's reports.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// InsightsReport bundles the current month summary, recent trends, the
// budgets needing attention and the insights drawn from them.
type InsightsReport struct {
	Summary      *FinancialSummary `json:"summary"`
	RecentTrends []TrendPoint      `json:"recent_trends"`
	BudgetAlerts []BudgetProgress  `json:"budget_alerts"`
	Insights     []Insight         `json:"insights"`
}

// DashboardTotals are the income, expense and balance of a dashboard period.
type DashboardTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// DashboardStats is the transaction dashboard.
type DashboardStats struct {
	Period             ReportPeriod         `json:"period"`
	DateRange          DateRange            `json:"date_range"`
	Summary            DashboardTotals      `json:"summary"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
	ExpensesByCategory []CategoryTotal      `json:"expenses_by_category"`
}

// reportService aggregates transactions and budgets into read-only reports.
type reportService struct {
	db      *gorm.DB
	budgets BudgetServicer
	now     func() time.Time
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, budgets BudgetServicer) ReportServicer {
	return &reportService{db: db, budgets: budgets, now: time.Now}
}

// GetFinancialSummary totals income and expense over the selected period.
func (s *reportService) GetFinancialSummary(ctx context.Context, userID string, q SummaryQuery) (*FinancialSummary, error) {
	if q.Period == "" {
		q.Period = ReportPeriodMonth
	}
	r, err := s.dateRange(q.Period, q.Year, q.Month)
	if err != nil {
		return nil, err
	}

	var (
		income, expense         decimal.Decimal
		count                   int64
		incomeCats, expenseCats []TopCategory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	g.Go(func() (err error) {
		income, err = s.sumByType(gctx, userID, r, models.TransactionTypeIncome)
		return err
	})
	g.Go(func() (err error) {
		expense, err = s.sumByType(gctx, userID, r, models.TransactionTypeExpense)
		return err
	})
	g.Go(func() error {
		if err := s.inRange(gctx, userID, r).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		incomeCats, err = s.categoryTotals(gctx, userID, r, models.TransactionTypeIncome, 0)
		return err
	})
	g.Go(func() (err error) {
		expenseCats, err = s.categoryTotals(gctx, userID, r, models.TransactionTypeExpense, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = income.Add(expense).Div(decimal.NewFromInt(count)).Round(2)
	}

	return &FinancialSummary{
		Period:    q.Period,
		DateRange: r,
		Summary: SummaryTotals{
			TotalIncome:      income,
			TotalExpense:     expense,
			NetBalance:       income.Sub(expense),
			TransactionCount: count,
			AvgTransaction:   avg,
		},
		Breakdown: CategoryBreakdown{
			IncomeByCategory:  plainTotals(incomeCats),
			ExpenseByCategory: plainTotals(expenseCats),
		},
	}, nil
}

// GetTrends returns limit buckets ending with the current month or week.
// Weeks start on Sunday.
func (s *reportService) GetTrends(ctx context.Context, userID string, interval TrendInterval, limit int) (*TrendReport, error) {
	if interval != TrendIntervalMonthly && interval != TrendIntervalWeekly {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly or monthly")
	}
	if limit <= 0 {
		limit = DefaultTrendLimit
	}
	if limit > MaxTrendLimit {
		limit = MaxTrendLimit
	}

	today := period.DateOnly(s.now())
	y, m, _ := today.Date()
	points := make([]TrendPoint, limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)

	for idx := range points {
		back := limit - 1 - idx

		var r DateRange
		var label string
		if interval == TrendIntervalMonthly {
			r = monthRange(y, m-time.Month(back))
			label = r.Start.Format("Jan 2006")
		} else {
			start := today.AddDate(0, 0, -back*7-int(today.Weekday()))
			r = DateRange{Start: start, End: start.AddDate(0, 0, 6)}
			label = "Week of " + start.Format("02 Jan")
		}

		g.Go(func() error {
			income, err := s.sumByType(gctx, userID, r, models.TransactionTypeIncome)
			if err != nil {
				return err
			}
			expense, err := s.sumByType(gctx, userID, r, models.TransactionTypeExpense)
			if err != nil {
				return err
			}
			points[idx] = TrendPoint{
				Period:  label,
				Date:    r.Start.Format(time.DateOnly),
				Income:  income,
				Expense: expense,
				Net:     income.Sub(expense),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TrendReport{PeriodType: interval, Trends: points, Analysis: analyzeTrends(points)}, nil
}

// GetTopCategories ranks categories of one transaction type by their total
// over the period.
func (s *reportService) GetTopCategories(ctx context.Context, userID string, txType models.TransactionType, p ReportPeriod, limit int) ([]TopCategory, error) {
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if p == "" {
		p = ReportPeriodMonth
	}
	if limit <= 0 {
		limit = DefaultTopCategoriesLimit
	}
	r, err := s.dateRange(p, 0, 0)
	if err != nil {
		return nil, err
	}

	var (
		top   []TopCategory
		total decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		top, err = s.categoryTotals(gctx, userID, r, txType, limit)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.sumByType(gctx, userID, r, txType)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if total.IsPositive() {
		for i := range top {
			top[i].Percentage = top[i].Total.Div(total).Mul(hundred).Round(2).InexactFloat64()
		}
	}
	return top, nil
}

// GetBudgetProgress grades every active budget covering today, highest
// percentage first.
func (s *reportService) GetBudgetProgress(ctx context.Context, userID string) ([]BudgetProgress, error) {
	overview, err := s.budgets.GetActiveBudgetsOverview(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := period.DateOnly(s.now())
	progress := make([]BudgetProgress, 0, len(overview))
	for _, b := range overview {
		progress = append(progress, BudgetProgress{
			Budget: b.Budget,
			Progress: ProgressState{
				Spent:         b.Spending.TotalSpent,
				Remaining:     b.Spending.Remaining,
				Percentage:    b.Spending.SpentPercentage,
				DaysRemaining: int(period.DateOnly(b.EndDate).Sub(today).Hours() / 24),
				Status:        budgetStatus(b.Spending, b.AlertThreshold),
				IsOverBudget:  b.Spending.IsOverBudget,
			},
		})
	}

	sort.SliceStable(progress, func(i, j int) bool {
		return progress[i].Progress.Percentage > progress[j].Progress.Percentage
	})
	return progress, nil
}

// GetInsights combines the current month summary, the last three months and
// budget progress into a list of observations.
func (s *reportService) GetInsights(ctx context.Context, userID string) (*InsightsReport, error) {
	var (
		summary  *FinancialSummary
		trends   *TrendReport
		progress []BudgetProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.GetFinancialSummary(gctx, userID, SummaryQuery{Period: ReportPeriodMonth})
		return err
	})
	g.Go(func() (err error) {
		trends, err = s.GetTrends(gctx, userID, TrendIntervalMonthly, insightTrendLimit)
		return err
	})
	g.Go(func() (err error) {
		progress, err = s.GetBudgetProgress(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := []BudgetProgress{}
	for _, p := range progress {
		if p.Progress.Status == BudgetStatusWarning || p.Progress.Status == BudgetStatusOverBudget {
			alerts = append(alerts, p)
		}
	}

	return &InsightsReport{
		Summary:      summary,
		RecentTrends: trends.Trends,
		BudgetAlerts: alerts,
		Insights:     generateInsights(summary, trends, progress),
	}, nil
}

// GetDashboard returns the period's totals, the latest transactions and the
// period's expenses by category.
func (s *reportService) GetDashboard(ctx context.Context, userID string, p ReportPeriod) (*DashboardStats, error) {
	if p == "" {
		p = ReportPeriodMonth
	}
	if p == ReportPeriodCustom {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be week, month, or year")
	}
	r, err := s.dateRange(p, 0, 0)
	if err != nil {
		return nil, err
	}

	var (
		income, expense decimal.Decimal
		recent          []models.Transaction
		byCategory      []TopCategory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	g.Go(func() (err error) {
		income, err = s.sumByType(gctx, userID, r, models.TransactionTypeIncome)
		return err
	})
	g.Go(func() (err error) {
		expense, err = s.sumByType(gctx, userID, r, models.TransactionTypeExpense)
		return err
	})
	g.Go(func() error {
		err := s.db.WithContext(gctx).Preload("Category").
			Where("user_id = ?", userID).
			Order("transaction_date DESC, created_at DESC").
			Limit(recentTransactionsLimit).
			Find(&recent).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		byCategory, err = s.categoryTotals(gctx, userID, r, models.TransactionTypeExpense, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardStats{
		Period:             p,
		DateRange:          r,
		Summary:            DashboardTotals{Income: income, Expense: expense, Balance: income.Sub(expense)},
		RecentTransactions: recent,
		ExpensesByCategory: plainTotals(byCategory),
	}, nil
}

// dateRange resolves a report period to calendar days around today. A custom
// period without both year and month falls back to the current month.
func (s *reportService) dateRange(p ReportPeriod, year, month int) (DateRange, error) {
	today := period.DateOnly(s.now())
	y, m, _ := today.Date()

	switch p {
	case ReportPeriodWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case ReportPeriodYear:
		if year == 0 {
			year = y
		}
		return DateRange{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}, nil
	case ReportPeriodCustom:
		if year != 0 && month != 0 {
			if month < 1 || month > 12 {
				return DateRange{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
			}
			return monthRange(year, time.Month(month)), nil
		}
		return monthRange(y, m), nil
	case ReportPeriodMonth:
		return monthRange(y, m), nil
	default:
		return DateRange{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be week, month, year, or custom")
	}
}

// monthRange spans the whole of a calendar month. Months outside 1-12
// normalise into neighbouring years.
func monthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

func (s *reportService) inRange(ctx context.Context, userID string, r DateRange) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Where("transaction_date >= ? AND transaction_date < ?", r.Start, period.ExclusiveEnd(r.End))
}

func (s *reportService) sumByType(ctx context.Context, userID string, r DateRange, txType models.TransactionType) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := s.inRange(ctx, userID, r).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("type = ?", txType).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total.Round(2), nil
}

type categoryAggregate struct {
	CategoryID string
	Total      decimal.Decimal
	Count      int64
	Average    decimal.Decimal
}

// categoryTotals groups a period's transactions of one type by category,
// largest total first. A zero limit returns every category.
func (s *reportService) categoryTotals(ctx context.Context, userID string, r DateRange, txType models.TransactionType, limit int) ([]TopCategory, error) {
	q := s.inRange(ctx, userID, r).
		Select("category_id, SUM(amount) AS total, COUNT(*) AS count, AVG(amount) AS average").
		Where("type = ?", txType).
		Group("category_id").
		Order("total DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []categoryAggregate
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(rows) == 0 {
		return []TopCategory{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.CategoryID
	}
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byID := make(map[string]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	result := make([]TopCategory, len(rows))
	for i, row := range rows {
		result[i] = TopCategory{
			CategoryTotal: CategoryTotal{
				Category: byID[row.CategoryID],
				Total:    row.Total.Round(2),
				Count:    row.Count,
			},
			Average: row.Average.Round(2),
		}
	}
	return result, nil
}

func plainTotals(top []TopCategory) []CategoryTotal {
	totals := make([]CategoryTotal, len(top))
	for i := range top {
		totals[i] = top[i].CategoryTotal
	}
	return totals
}

func budgetStatus(sp SpendingSummary, threshold int) BudgetStatus {
	switch {
	case sp.IsOverBudget || sp.SpentPercentage >= 100:
		return BudgetStatusOverBudget
	case sp.SpentPercentage >= float64(threshold):
		return BudgetStatusWarning
	case sp.SpentPercentage >= 50:
		return BudgetStatusOnTrack
	default:
		return BudgetStatusGood
	}
}

// percentageChange is the change from prev to cur in percent. Growth from
// zero counts as 100%.
func percentageChange(prev, cur decimal.Decimal) float64 {
	if prev.IsZero() {
		if cur.IsPositive() {
			return 100
		}
		return 0
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(2).InexactFloat64()
}

func trendChange(previous, current decimal.Decimal) TrendChange {
	change := percentageChange(previous, current)
	direction := "stable"
	if change > 0 {
		direction = "up"
	} else if change < 0 {
		direction = "down"
	}
	return TrendChange{Current: current, Previous: previous, ChangePercentage: change, Direction: direction}
}

func analyzeTrends(points []TrendPoint) *TrendAnalysis {
	if len(points) < 2 {
		return nil
	}
	cur, prev := points[len(points)-1], points[len(points)-2]
	return &TrendAnalysis{
		IncomeTrend:  trendChange(prev.Income, cur.Income),
		ExpenseTrend: trendChange(prev.Expense, cur.Expense),
	}
}
