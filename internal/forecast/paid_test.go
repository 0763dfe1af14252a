package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaxter/cashflow-service/internal/models"
)

func TestBuildPaidKeyPrefersSourceID(t *testing.T) {
	d := models.NewDate(2026, time.January, 5)
	amt := decimal.NewFromInt(1200)

	withID := BuildPaidKey("abc-123", "Rent", d, models.TypeDebit, amt)
	assert.Equal(t, "abc-123|2026-01-05|Debit|1200.00", withID)

	byName := BuildPaidKey("", "Rent", d, models.TypeDebit, amt)
	assert.Equal(t, "Rent|2026-01-05|Debit|1200.00", byName)

	// The key is exponent-insensitive: 1200 and 1200.0 are the same event.
	again := BuildPaidKey("abc-123", "Rent", models.NewDate(2026, time.January, 5), models.TypeDebit, decimal.New(12000, -1))
	assert.Equal(t, withID, again)
}

func TestEventsAreKeyedAndOrdered(t *testing.T) {
	in := referenceScenario(t)
	in.Income = []models.RecurringEntry{entry(t, "Salary", 3000, models.FreqMonthly, "15", models.TypeDebit)}
	res := Simulate(in)

	events := Events(res)
	require.NotEmpty(t, events)
	seen := make(map[string]bool)
	for i, ev := range events {
		require.NotEmpty(t, ev.Key)
		assert.False(t, seen[ev.Key], "duplicate key %s", ev.Key)
		seen[ev.Key] = true
		if i > 0 {
			assert.False(t, ev.Date.Before(events[i-1].Date), "events must be date-ordered")
		}
	}
}

func paidScenario(t *testing.T) (SimulationInput, SimulationResult) {
	t.Helper()
	in := SimulationInput{
		Bills: []models.RecurringEntry{
			entry(t, "Rent", 1200, models.FreqMonthly, "5", models.TypeDebit),
			entry(t, "Streaming", 15, models.FreqMonthly, "8", models.TypeCredit),
		},
		Income:        []models.RecurringEntry{entry(t, "Salary", 3000, models.FreqMonthly, "15", models.TypeDebit)},
		DebitBalance:  decimal.NewFromInt(500),
		CreditBalance: decimal.NewFromInt(200),
		Start:         models.NewDate(2026, time.January, 1),
		HorizonDays:   30,
	}
	return in, Simulate(in)
}

func TestApplyPaidPendingTotals(t *testing.T) {
	in, res := paidScenario(t)

	adj := ApplyPaid(res, nil, in.DebitBalance)
	assert.True(t, adj.PendingIncome.Equal(decimal.NewFromInt(3000)))
	assert.True(t, adj.PendingBills.Equal(decimal.NewFromInt(1215)), "rent plus the card charge, got %s", adj.PendingBills)
	assert.True(t, adj.PendingNet.Equal(decimal.NewFromInt(1785)))

	// With nothing marked the overlay is the identity.
	assert.Equal(t, res.DebitSeries, adj.DebitSeries)
	assert.Equal(t, res.CreditSeries, adj.CreditSeries)
}

func TestApplyPaidDebitBill(t *testing.T) {
	in, res := paidScenario(t)
	rentKey := BuildPaidKey(in.Bills[0].ID, "Rent", models.NewDate(2026, time.January, 5), models.TypeDebit, decimal.NewFromInt(1200))

	adj := ApplyPaid(res, map[string]bool{rentKey: true}, in.DebitBalance)
	assert.True(t, adj.PendingBills.Equal(decimal.NewFromInt(15)), "only the card charge stays pending")

	// A settled bill no longer drains the projection: every point from the
	// bill date on gains the amount back.
	for i, p := range adj.DebitSeries {
		base := res.DebitSeries[i]
		if p.Date.Before(models.NewDate(2026, time.January, 5)) {
			assert.True(t, p.Balance.Equal(base.Balance))
		} else {
			assert.True(t, p.Balance.Equal(base.Balance.Add(decimal.NewFromInt(1200))), "day %s", p.Date)
		}
	}
}

func TestApplyPaidIncome(t *testing.T) {
	in, res := paidScenario(t)
	salaryKey := BuildPaidKey(in.Income[0].ID, "Salary", models.NewDate(2026, time.January, 15), models.TypeDebit, decimal.NewFromInt(3000))

	adj := ApplyPaid(res, map[string]bool{salaryKey: true}, in.DebitBalance)
	assert.True(t, adj.PendingIncome.IsZero())

	// Received income is already in the bank; the projected inflow comes out.
	last := adj.DebitSeries[len(adj.DebitSeries)-1]
	base := res.DebitSeries[len(res.DebitSeries)-1]
	assert.True(t, last.Balance.Equal(base.Balance.Sub(decimal.NewFromInt(3000))))
}

func TestApplyPaidCreditCharge(t *testing.T) {
	in, res := paidScenario(t)
	chargeKey := BuildPaidKey(in.Bills[1].ID, "Streaming", models.NewDate(2026, time.January, 8), models.TypeCredit, decimal.NewFromInt(15))

	adj := ApplyPaid(res, map[string]bool{chargeKey: true}, in.DebitBalance)
	last := adj.CreditSeries[len(adj.CreditSeries)-1]
	base := res.CreditSeries[len(res.CreditSeries)-1]
	assert.True(t, last.Balance.Equal(base.Balance.Sub(decimal.NewFromInt(15))), "a settled charge comes off the card")
}

func TestApplyPaidIdempotent(t *testing.T) {
	in, res := paidScenario(t)
	rentKey := BuildPaidKey(in.Bills[0].ID, "Rent", models.NewDate(2026, time.January, 5), models.TypeDebit, decimal.NewFromInt(1200))

	once := ApplyPaid(res, map[string]bool{rentKey: true}, in.DebitBalance)
	// Re-marking and re-applying changes nothing.
	again := ApplyPaid(res, map[string]bool{rentKey: true}, in.DebitBalance)
	assert.Equal(t, once, again)

	// Unknown keys are ignored rather than failing.
	loose := ApplyPaid(res, map[string]bool{rentKey: true, "no-such-event": true}, in.DebitBalance)
	assert.Equal(t, once, loose)
}

func TestApplyPaidCardPaymentNeverPending(t *testing.T) {
	in := referenceScenario(t)
	res := Simulate(in)

	adj := ApplyPaid(res, nil, in.DebitBalance)
	// Pending bills cover the real charges only; the synthetic payment rows
	// would double count them.
	var chargeTotal decimal.Decimal
	for _, it := range res.UpcomingCreditBills {
		chargeTotal = chargeTotal.Add(it.Amount)
	}
	assert.True(t, adj.PendingBills.Equal(chargeTotal), "pending %s, charges %s", adj.PendingBills, chargeTotal)
}

func TestApplyPaidLowestPoint(t *testing.T) {
	in, res := paidScenario(t)

	adj := ApplyPaid(res, nil, in.DebitBalance)
	// 500 - 1200 on Jan 5 puts the projection at -700 until payday.
	assert.True(t, adj.LowestBalance.Equal(decimal.NewFromInt(-700)), "lowest %s", adj.LowestBalance)
	assert.Equal(t, models.NewDate(2026, time.January, 5), adj.LowestDate)
}
