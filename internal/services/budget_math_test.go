package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fintrack/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testBudget(amount string, threshold int) *models.Budget {
	return &models.Budget{Amount: dec(amount), AlertThreshold: threshold}
}

func TestSummarize(t *testing.T) {
	t.Run("partial spend", func(t *testing.T) {
		s := summarize(testBudget("1000000", 80), dec("200000"))
		assert.True(t, s.Remaining.Equal(dec("800000")), "remaining %s", s.Remaining)
		assert.Equal(t, 20.0, s.SpentPercentage)
		assert.False(t, s.IsOverBudget)
		assert.False(t, s.IsNearLimit)
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		s := summarize(testBudget("300", 80), dec("100"))
		assert.Equal(t, 33.33, s.SpentPercentage)
	})

	t.Run("near limit uses threshold", func(t *testing.T) {
		s := summarize(testBudget("1000", 80), dec("800"))
		assert.True(t, s.IsNearLimit)
		assert.False(t, s.IsOverBudget)
	})

	t.Run("over budget clamps remaining", func(t *testing.T) {
		s := summarize(testBudget("1000", 80), dec("1500"))
		assert.True(t, s.Remaining.IsZero())
		assert.True(t, s.IsOverBudget)
		assert.Equal(t, 150.0, s.SpentPercentage)
	})

	t.Run("zero amount", func(t *testing.T) {
		s := summarize(testBudget("0", 80), dec("10"))
		assert.Equal(t, 0.0, s.SpentPercentage)
		assert.True(t, s.IsOverBudget)

		s = summarize(testBudget("0", 80), decimal.Zero)
		assert.False(t, s.IsOverBudget)
	})
}

func TestEvaluateCrossing(t *testing.T) {
	b := testBudget("1000000", 80)

	tests := []struct {
		name       string
		before     string
		amount     string
		transition AlertType
		alerting   bool
	}{
		{"below threshold", "0", "700000", "", false},
		{"crosses warning", "700000", "200000", AlertTypeWarning, true},
		{"lands exactly on threshold", "700000", "100000", AlertTypeWarning, true},
		{"already warned", "850000", "50000", "", true},
		{"crosses budget", "900000", "200000", AlertTypeExceeded, true},
		{"exactly at budget is not over", "900000", "100000", "", true},
		{"jumps both lines", "0", "1500000", AlertTypeExceeded, true},
		{"already over", "1100000", "1000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := evaluateCrossing(b, dec(tt.before), dec(tt.amount))
			assert.Equal(t, tt.transition, c.Transition)
			assert.Equal(t, tt.alerting, c.Alerting)
			assert.True(t, c.SpentAfter.Equal(dec(tt.before).Add(dec(tt.amount))))
		})
	}
}

func TestEvaluateCrossingZeroAmount(t *testing.T) {
	c := evaluateCrossing(testBudget("0", 80), decimal.Zero, dec("10"))
	assert.Equal(t, AlertTypeExceeded, c.Transition)
	assert.True(t, c.PctAfter.IsZero())
	assert.False(t, c.Alerting, "a zero budget has no percentage to report")
}

func TestAlertMessage(t *testing.T) {
	assert.Equal(t, "Budget exceeded!", alertMessage(true, dec("110")))
	assert.Equal(t, "Budget alert: 90% spent", alertMessage(false, dec("90")))
	assert.Equal(t, "Budget alert: 83% spent", alertMessage(false, dec("83.333")))
	assert.Equal(t, "Budget alert: 85% spent", alertMessage(false, dec("84.5")))
}
