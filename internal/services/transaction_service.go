package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db            *gorm.DB
	budgetService BudgetServicer
}

// NewTransactionService creates a new TransactionServicer. Expenses are
// recorded through the budget service so they raise budget alerts.
func NewTransactionService(db *gorm.DB, budgetService BudgetServicer) TransactionServicer {
	return &transactionService{
		db:            db,
		budgetService: budgetService,
	}
}

// CreateTransaction records an income or expense. For expenses the returned
// result carries the budget alerts the transaction raised.
func (s *transactionService) CreateTransaction(
	userID string,
	categoryID string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*TransactionResult, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if date.IsZero() {
		date = time.Now()
	}

	category, err := findVisibleCategory(s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if string(category.Type) != string(transactionType) {
		return nil, apperrors.ErrCategoryTypeMismatch
	}

	transaction := &models.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Type:            transactionType,
		Amount:          amount,
		Description:     description,
		TransactionDate: date.UTC(),
	}

	commit := func() error {
		if err := s.db.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}

	result := &TransactionResult{Transaction: transaction, BudgetAlerts: []BudgetAlert{}}

	if transactionType == models.TransactionTypeIncome {
		if err := commit(); err != nil {
			return nil, err
		}
	} else {
		alerts, err := s.budgetService.TrackExpense(userID, categoryID, amount, commit)
		if err != nil {
			return nil, err
		}
		result.BudgetAlerts = alerts
	}

	transaction.Category = category
	return result, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	result, err := pagination.List[models.Transaction](base, page, "transaction_date DESC, created_at DESC", "Category")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces the fields of a transaction. When the result is
// an expense, the spending it adds to its category goes through the budget
// engine: the full amount when the category or type changed, otherwise only
// an increase over the stored amount.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in UpdateTransactionInput) (*TransactionResult, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	existing, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	category, err := findVisibleCategory(s.db, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if string(category.Type) != string(in.Type) {
		return nil, apperrors.ErrCategoryTypeMismatch
	}

	date := existing.TransactionDate
	if !in.Date.IsZero() {
		date = in.Date.UTC()
	}

	updates := map[string]interface{}{
		"category_id":      in.CategoryID,
		"type":             in.Type,
		"amount":           amount,
		"description":      in.Description,
		"transaction_date": date,
	}
	commit := func() error {
		if err := s.db.Model(existing).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}

	added := amount
	if existing.Type == models.TransactionTypeExpense && existing.CategoryID == in.CategoryID {
		added = amount.Sub(existing.Amount)
	}

	alerts := []BudgetAlert{}
	if in.Type == models.TransactionTypeExpense && added.IsPositive() {
		alerts, err = s.budgetService.TrackExpense(userID, in.CategoryID, added, commit)
		if err != nil {
			return nil, err
		}
	} else if err := commit(); err != nil {
		return nil, err
	}

	updated, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: updated, BudgetAlerts: alerts}, nil
}

// DeleteTransaction removes a transaction. Budget spending is derived from
// transactions, so no budget state needs adjusting.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
