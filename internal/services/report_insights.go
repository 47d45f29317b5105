package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	expenseRiseInsightPct = 20
	expenseDropInsightPct = -10
)

var savingRateInsight = decimal.RequireFromString("0.2")

// generateInsights turns report figures into observations. Budget insights
// come first, then the month-over-month expense change, then the balance.
func generateInsights(summary *FinancialSummary, trends *TrendReport, progress []BudgetProgress) []Insight {
	insights := []Insight{}

	var over, warning int
	for _, p := range progress {
		if p.Progress.IsOverBudget {
			over++
		}
		if p.Progress.Status == BudgetStatusWarning {
			warning++
		}
	}
	if over > 0 {
		insights = append(insights, Insight{
			Type:    "warning",
			Title:   "Budget exceeded",
			Message: fmt.Sprintf("You have %d %s over budget", over, plural(over, "category", "categories")),
			Action:  "review_budget",
		})
	}
	if warning > 0 {
		insights = append(insights, Insight{
			Type:    "info",
			Title:   "Approaching budget limit",
			Message: fmt.Sprintf("%d %s close to the budget limit", warning, plural(warning, "category is", "categories are")),
			Action:  "monitor_spending",
		})
	}

	if trends != nil && trends.Analysis != nil {
		change := trends.Analysis.ExpenseTrend.ChangePercentage
		switch {
		case change > expenseRiseInsightPct:
			insights = append(insights, Insight{
				Type:    "warning",
				Title:   "Spending increased",
				Message: fmt.Sprintf("Spending is up %.1f%% from last month", change),
				Action:  "analyze_expenses",
			})
		case change < expenseDropInsightPct:
			insights = append(insights, Insight{
				Type:    "success",
				Title:   "Spending decreased",
				Message: fmt.Sprintf("Spending is down %.1f%% from last month", -change),
				Action:  "maintain_discipline",
			})
		}
	}

	if summary != nil {
		net := summary.Summary.NetBalance
		switch {
		case net.IsNegative():
			insights = append(insights, Insight{
				Type:    "danger",
				Title:   "Expenses exceed income",
				Message: "You have spent more than you earned this month",
				Action:  "reduce_expenses",
			})
		case net.GreaterThan(summary.Summary.TotalIncome.Mul(savingRateInsight)):
			insights = append(insights, Insight{
				Type:    "success",
				Title:   "Healthy saving rate",
				Message: "You kept more than 20% of your income this month",
				Action:  "consider_investment",
			})
		}
	}

	return insights
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
