package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

var hundred = decimal.NewFromInt(100)

// spentPercentage returns spent as a percentage of amount. A non-positive
// amount yields zero.
func spentPercentage(spent, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return spent.Div(amount).Mul(hundred)
}

// isOver reports whether spent is above amount. With a non-positive amount
// any spending counts as over.
func isOver(spent, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return spent.IsPositive()
	}
	return spent.GreaterThan(amount)
}

func summarize(b *models.Budget, spent decimal.Decimal) SpendingSummary {
	pct := spentPercentage(spent, b.Amount).Round(2)

	remaining := b.Amount.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return SpendingSummary{
		TotalSpent:      spent,
		Remaining:       remaining,
		SpentPercentage: pct.InexactFloat64(),
		IsOverBudget:    isOver(spent, b.Amount),
		IsNearLimit:     pct.GreaterThanOrEqual(decimal.NewFromInt(int64(b.AlertThreshold))),
	}
}

// crossing is the outcome of applying one expense to a budget.
type crossing struct {
	SpentAfter decimal.Decimal
	PctAfter   decimal.Decimal
	Transition AlertType // empty when no threshold was crossed
	Alerting   bool      // percentage at or above the alert threshold after the expense
}

// evaluateCrossing compares spending before and after an expense of amount.
// Only the expense that moves spending over a line produces a Transition;
// later expenses on an already-alerting budget report Alerting without one.
func evaluateCrossing(b *models.Budget, spentBefore, amount decimal.Decimal) crossing {
	after := spentBefore.Add(amount)
	pctBefore := spentPercentage(spentBefore, b.Amount)
	pctAfter := spentPercentage(after, b.Amount)
	threshold := decimal.NewFromInt(int64(b.AlertThreshold))

	c := crossing{SpentAfter: after, PctAfter: pctAfter}
	switch {
	case isOver(after, b.Amount) && !isOver(spentBefore, b.Amount):
		c.Transition = AlertTypeExceeded
	case pctAfter.GreaterThanOrEqual(threshold) && pctBefore.LessThan(threshold):
		c.Transition = AlertTypeWarning
	}
	c.Alerting = pctAfter.GreaterThanOrEqual(threshold)
	return c
}

func alertMessage(over bool, pct decimal.Decimal) string {
	if over {
		return "Budget exceeded!"
	}
	return fmt.Sprintf("Budget alert: %s%% spent", pct.Round(0).String())
}
