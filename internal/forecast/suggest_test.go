package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaxter/cashflow-service/internal/models"
)

func tx(name string, amount int64, date models.Date) models.Transaction {
	return models.Transaction{Name: name, Amount: decimal.NewFromInt(amount), Date: date}
}

func TestSuggestRecurringMonthly(t *testing.T) {
	txs := []models.Transaction{
		tx("Netflix", -16, models.NewDate(2026, time.January, 5)),
		tx("Netflix", -16, models.NewDate(2026, time.February, 5)),
		tx("Netflix", -16, models.NewDate(2026, time.March, 5)),
	}
	out := SuggestRecurring(txs)
	require.Len(t, out, 1)
	s := out[0]
	assert.Equal(t, "Netflix", s.Name)
	assert.Equal(t, models.FreqMonthly.String(), s.Frequency)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(16)), "suggested amounts are absolute")
	assert.Equal(t, models.TypeDebit.String(), s.Type, "negative transactions suggest debit entries")
	assert.Equal(t, "2026-03-05", s.Day)
}

func TestSuggestRecurringBiweekly(t *testing.T) {
	start := models.NewDate(2026, time.January, 2)
	txs := []models.Transaction{
		tx("Payroll", 2100, start),
		tx("Payroll", 2100, start.AddDays(14)),
		tx("Payroll", 2100, start.AddDays(28)),
		tx("Payroll", 2100, start.AddDays(42)),
	}
	out := SuggestRecurring(txs)
	require.Len(t, out, 1)
	assert.Equal(t, models.FreqBiweekly.String(), out[0].Frequency)
	assert.Equal(t, models.TypeCredit.String(), out[0].Type)
}

func TestSuggestRecurringWeekly(t *testing.T) {
	start := models.NewDate(2026, time.January, 5)
	txs := []models.Transaction{
		tx("Groceries", -82, start),
		tx("Groceries", -82, start.AddDays(7)),
		tx("Groceries", -82, start.AddDays(7+6)),
		tx("Groceries", -82, start.AddDays(7+6+8)),
	}
	out := SuggestRecurring(txs)
	require.Len(t, out, 1, "a jittered but averaging-to-7 gap still reads as weekly")
	assert.Equal(t, models.FreqWeekly.String(), out[0].Frequency)
}

func TestSuggestRecurringRejectsSmallAndIrregularClusters(t *testing.T) {
	txs := []models.Transaction{
		// Only two hits.
		tx("Rent", -1200, models.NewDate(2026, time.January, 1)),
		tx("Rent", -1200, models.NewDate(2026, time.February, 1)),
		// Three hits but no clean cadence.
		tx("Cafe", -6, models.NewDate(2026, time.January, 1)),
		tx("Cafe", -6, models.NewDate(2026, time.January, 3)),
		tx("Cafe", -6, models.NewDate(2026, time.January, 8)),
	}
	assert.Empty(t, SuggestRecurring(txs))
}

func TestSuggestRecurringSplitsOnAmount(t *testing.T) {
	start := models.NewDate(2026, time.January, 5)
	txs := []models.Transaction{
		tx("Utilities", -60, start),
		tx("Utilities", -60, start.AddDays(30)),
		tx("Utilities", -60, start.AddDays(60)),
		// Same merchant, clearly different charge: its own cluster, too thin
		// to suggest.
		tx("Utilities", -200, start.AddDays(15)),
	}
	out := SuggestRecurring(txs)
	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(60)))
}

func TestSuggestRecurringUnsortedInput(t *testing.T) {
	txs := []models.Transaction{
		tx("Netflix", -16, models.NewDate(2026, time.March, 5)),
		tx("Netflix", -16, models.NewDate(2026, time.January, 5)),
		tx("Netflix", -16, models.NewDate(2026, time.February, 5)),
	}
	out := SuggestRecurring(txs)
	require.Len(t, out, 1)
	assert.Equal(t, models.FreqMonthly.String(), out[0].Frequency)
}
