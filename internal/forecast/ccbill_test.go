package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaxter/cashflow-service/internal/models"
)

func intPtr(n int) *int { return &n }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func unitPtr(u models.AmountUnit) *models.AmountUnit { return &u }

func TestPayDatesDisabled(t *testing.T) {
	assert.Empty(t, PayDates(nil, models.NewDate(2026, time.January, 1), 60))
}

func TestPayDatesObeyMonthlyClamp(t *testing.T) {
	dates := PayDates(intPtr(31), models.NewDate(2026, time.January, 1), 90)
	require.NotEmpty(t, dates)
	for _, d := range dates {
		assert.Equal(t, 28, d.Day(), "pay dates go through the same clamp as any monthly bill")
	}
}

func TestPaymentForBalancePayInFull(t *testing.T) {
	policy := models.CreditCardPolicy{Method: models.PayInFull}

	pay, ok := PaymentForBalance(policy, decimal.NewFromInt(453))
	require.True(t, ok)
	assert.True(t, pay.Equal(decimal.NewFromInt(453)))

	pay, ok = PaymentForBalance(policy, decimal.NewFromInt(-20))
	require.True(t, ok)
	assert.True(t, pay.IsZero(), "a negative balance owes nothing")
}

func TestPaymentForBalanceCustomDollar(t *testing.T) {
	policy := models.CreditCardPolicy{
		Method:       models.PayMinimumOrCustom,
		CustomAmount: decPtr(decimal.NewFromInt(150)),
		CustomUnit:   unitPtr(models.UnitDollar),
	}
	pay, ok := PaymentForBalance(policy, decimal.NewFromInt(1000))
	require.True(t, ok)
	assert.True(t, pay.Equal(decimal.NewFromInt(150)))
}

func TestPaymentForBalanceCustomPercent(t *testing.T) {
	policy := models.CreditCardPolicy{
		Method:       models.PayMinimumOrCustom,
		CustomAmount: decPtr(decimal.NewFromInt(3)),
		CustomUnit:   unitPtr(models.UnitPercent),
	}
	pay, ok := PaymentForBalance(policy, decimal.NewFromInt(1234))
	require.True(t, ok)
	assert.True(t, pay.Equal(decimal.NewFromInt(37)), "3%% of 1234 rounds to 37, got %s", pay)
}

func TestPaymentForBalanceIncompletePolicy(t *testing.T) {
	// Missing unit: the payment is undefined, not zero.
	policy := models.CreditCardPolicy{
		Method:       models.PayMinimumOrCustom,
		CustomAmount: decPtr(decimal.NewFromInt(150)),
	}
	_, ok := PaymentForBalance(policy, decimal.NewFromInt(1000))
	assert.False(t, ok)

	// Missing amount likewise.
	policy = models.CreditCardPolicy{
		Method:     models.PayMinimumOrCustom,
		CustomUnit: unitPtr(models.UnitDollar),
	}
	_, ok = PaymentForBalance(policy, decimal.NewFromInt(1000))
	assert.False(t, ok)
}

// referenceScenario is the worked billing example: opening credit balance
// 453, pay day 13, a weekly 300 charge on Mondays and a monthly 50 charge on
// the 13th, simulated from 2026-01-01 over 60 days.
func referenceScenario(t *testing.T) SimulationInput {
	t.Helper()
	weekly := entry(t, "Groceries", 300, models.FreqWeekly, "Monday", models.TypeCredit)
	monthly := entry(t, "Streaming", 50, models.FreqMonthly, "13", models.TypeCredit)
	return SimulationInput{
		Bills:         []models.RecurringEntry{weekly, monthly},
		Policy:        models.CreditCardPolicy{PayDay: intPtr(13), Method: models.PayInFull},
		DebitBalance:  decimal.NewFromInt(5000),
		CreditBalance: decimal.NewFromInt(453),
		Start:         models.NewDate(2026, time.January, 1),
		HorizonDays:   60,
	}
}

func TestBillWindowsReferenceScenario(t *testing.T) {
	in := referenceScenario(t)
	report := BillWindows(in.Bills, in.CreditBalance, in.Policy.PayDay, in.Start, in.HorizonDays)

	require.Equal(t, []models.Date{
		models.NewDate(2026, time.January, 13),
		models.NewDate(2026, time.February, 13),
	}, report.PayDates)

	require.Len(t, report.Windows, 2)
	first, second := report.Windows[0], report.Windows[1]

	assert.Equal(t, in.Start, first.Start)
	assert.Equal(t, report.PayDates[0], first.End)
	assert.True(t, first.ChargesTotal.Equal(decimal.NewFromInt(600)), "two Monday charges before the 13th, got %s", first.ChargesTotal)
	assert.True(t, first.BalanceIncluded.Equal(decimal.NewFromInt(453)), "opening balance seeds the first window only")
	assert.True(t, first.Total.Equal(decimal.NewFromInt(1053)))

	assert.Equal(t, report.PayDates[0], second.Start)
	assert.Equal(t, report.PayDates[1], second.End)
	assert.True(t, second.BalanceIncluded.IsZero())
	assert.True(t, second.Total.Equal(decimal.NewFromInt(1250)), "shifted monthly charge plus four Mondays, got %s", second.Total)
}

func TestBillWindowsAgreeWithSimulation(t *testing.T) {
	in := referenceScenario(t)
	report := BillWindows(in.Bills, in.CreditBalance, in.Policy.PayDay, in.Start, in.HorizonDays)
	res := Simulate(in)

	require.Len(t, res.Payments, len(report.Windows))
	for i, window := range report.Windows {
		payment := res.Payments[i]
		require.NotNil(t, payment.Amount)
		assert.Equal(t, window.End, payment.Date)
		assert.True(t, payment.Amount.Equal(window.Total),
			"window %d: simulator paid %s, windowing view says %s", i, payment.Amount, window.Total)
	}
}

func TestBillWindowsShiftRule(t *testing.T) {
	in := referenceScenario(t)
	report := BillWindows(in.Bills, in.CreditBalance, in.Policy.PayDay, in.Start, in.HorizonDays)

	paySet := make(map[models.Date]bool)
	for _, d := range report.PayDates {
		paySet[d] = true
	}
	sawShifted := false
	for _, c := range report.Charges {
		assert.False(t, paySet[c.Date], "no charge may land on a pay date, got %s", c.Date)
		if c.Date.Equal(models.NewDate(2026, time.January, 14)) {
			sawShifted = true
		}
	}
	assert.True(t, sawShifted, "the monthly charge on the 13th moves to the 14th")
}

func TestBillWindowsNoPayDay(t *testing.T) {
	in := referenceScenario(t)
	report := BillWindows(in.Bills, in.CreditBalance, nil, in.Start, in.HorizonDays)
	assert.Empty(t, report.PayDates)
	assert.Empty(t, report.Windows)
}
