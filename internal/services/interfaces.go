package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionResult is a created transaction together with the budget alerts
// it raised.
type TransactionResult struct {
	Transaction  *models.Transaction `json:"transaction"`
	BudgetAlerts []BudgetAlert       `json:"budget_alerts"`
}

// UpdateTransactionInput replaces a transaction's fields. A zero Date keeps
// the stored transaction date.
type UpdateTransactionInput struct {
	CategoryID  string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID string, transactionType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*TransactionResult, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in UpdateTransactionInput) (*TransactionResult, error)
	DeleteTransaction(userID, transactionID string) error
}

// SpendingAggregator sums expense transactions inside a budget window.
type SpendingAggregator interface {
	SumExpenses(userID, categoryID string, windowStart, windowEnd time.Time) (decimal.Decimal, error)
}

// BudgetFilter holds optional filter parameters for listing budgets.
// A nil IsActive lists active budgets only.
type BudgetFilter struct {
	CategoryID *string
	Period     *models.BudgetPeriod
	IsActive   *bool
}

// CreateBudgetInput carries the fields accepted when creating a budget.
// A zero AlertThreshold selects the configured default.
type CreateBudgetInput struct {
	CategoryID     string
	Amount         decimal.Decimal
	Period         models.BudgetPeriod
	StartDate      time.Time
	AlertThreshold int
}

// UpdateBudgetInput is a partial update. Nil fields are left unchanged and
// EndDate is never re-derived from StartDate or Period.
type UpdateBudgetInput struct {
	Amount         *decimal.Decimal
	Period         *models.BudgetPeriod
	StartDate      *time.Time
	EndDate        *time.Time
	AlertThreshold *int
	IsActive       *bool
}

// SpendingSummary is the spending state of a budget over its whole window.
type SpendingSummary struct {
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	SpentPercentage float64         `json:"spent_percentage"`
	IsOverBudget    bool            `json:"is_over_budget"`
	IsNearLimit     bool            `json:"is_near_limit"`
}

// BudgetWithSpending is a budget merged with its spending summary.
type BudgetWithSpending struct {
	models.Budget
	Spending SpendingSummary `json:"spending"`
}

// BudgetAlert describes a budget at or above its alert threshold after a
// transaction. NotificationCreated is true only when this call crossed a
// threshold and a notification was written.
type BudgetAlert struct {
	BudgetID            string  `json:"budget_id"`
	CategoryID          string  `json:"category_id"`
	SpentPercentage     float64 `json:"spent_percentage"`
	IsOverBudget        bool    `json:"is_over_budget"`
	Message             string  `json:"message"`
	NotificationCreated bool    `json:"notification_created"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in CreateBudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	GetBudgetWithSpending(userID, budgetID string) (*BudgetWithSpending, error)
	GetActiveBudgetsOverview(ctx context.Context, userID string) ([]BudgetWithSpending, error)
	UpdateBudget(userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	CheckBudgetAlerts(userID, categoryID string, amount decimal.Decimal) ([]BudgetAlert, error)
	TrackExpense(userID, categoryID string, amount decimal.Decimal, commit func() error) ([]BudgetAlert, error)
}

// ReportServicer defines the contract for read-only financial reports.
type ReportServicer interface {
	GetFinancialSummary(ctx context.Context, userID string, q SummaryQuery) (*FinancialSummary, error)
	GetTrends(ctx context.Context, userID string, interval TrendInterval, limit int) (*TrendReport, error)
	GetTopCategories(ctx context.Context, userID string, txType models.TransactionType, p ReportPeriod, limit int) ([]TopCategory, error)
	GetBudgetProgress(ctx context.Context, userID string) ([]BudgetProgress, error)
	GetInsights(ctx context.Context, userID string) (*InsightsReport, error)
	GetDashboard(ctx context.Context, userID string, p ReportPeriod) (*DashboardStats, error)
}

// AlertType distinguishes a threshold warning from an exceeded budget.
type AlertType string

const (
	AlertTypeWarning  AlertType = "warning"
	AlertTypeExceeded AlertType = "exceeded"
)

// NotificationFilter holds optional filter parameters for listing notifications.
type NotificationFilter struct {
	IsRead *bool
	Type   *models.NotificationType
	Limit  int
	Offset int
}

// NotificationList is a window of notifications with a continuation flag.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	HasMore       bool                  `json:"has_more"`
}

// SystemNotification carries the fields of a free-form notification.
type SystemNotification struct {
	Title     string
	Message   string
	Type      models.NotificationType
	Priority  models.NotificationPriority
	ActionURL string
	Metadata  map[string]any
}

// NotificationServicer defines the contract for the notification sink.
type NotificationServicer interface {
	CreateBudgetAlert(userID string, budget *models.Budget, category *models.Category, spent decimal.Decimal, alertType AlertType) (*models.Notification, error)
	CreateNotification(userID string, n SystemNotification) (*models.Notification, error)
	GetUserNotifications(userID string, filter NotificationFilter) (*NotificationList, error)
	MarkAsRead(userID string, ids []string) (int64, error)
	MarkAllAsRead(userID string) (int64, error)
	DeleteNotification(userID, notificationID string) error
	GetUnreadCount(userID string) (int64, error)
}

// ReminderFilter holds optional filter parameters for listing reminders.
type ReminderFilter struct {
	IsActive     *bool
	ReminderType *models.ReminderType
}

// ReminderInput carries the fields accepted when creating a reminder.
type ReminderInput struct {
	Title        string
	Description  string
	ReminderType models.ReminderType
	Frequency    models.ReminderFrequency
	RemindAt     time.Time
	Metadata     map[string]any
}

// UpdateReminderInput is a partial update; nil fields are left unchanged.
type UpdateReminderInput struct {
	Title        *string
	Description  *string
	ReminderType *models.ReminderType
	Frequency    *models.ReminderFrequency
	RemindAt     *time.Time
	IsActive     *bool
}

// SweepResult counts the outcome of a due-reminder sweep.
type SweepResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// ReminderTemplate is a preset that clients can offer when creating reminders.
type ReminderTemplate struct {
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	ReminderType models.ReminderType      `json:"reminder_type"`
	Frequency    models.ReminderFrequency `json:"frequency"`
}

// ReminderServicer defines the contract for reminder scheduling.
type ReminderServicer interface {
	CreateReminder(userID string, in ReminderInput) (*models.Reminder, error)
	GetUserReminders(userID string, filter ReminderFilter) ([]models.Reminder, error)
	GetReminderByID(userID, reminderID string) (*models.Reminder, error)
	UpdateReminder(userID, reminderID string, in UpdateReminderInput) (*models.Reminder, error)
	DeleteReminder(userID, reminderID string) error
	ToggleReminder(userID, reminderID string) (*models.Reminder, error)
	Templates() []ReminderTemplate
	ProcessDueReminders(ctx context.Context) (*SweepResult, error)
	CreateBudgetCheckReminders(ctx context.Context) (int, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
