package forecast

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/cashflow-service/internal/models"
)

// BuildPaidKey derives the stable identity of one occurrence. Occurrences
// are regenerated on every simulation, never stored, so this key is the only
// identity mechanism for paid/unpaid bookkeeping: two occurrences with the
// same key are the same real-world event, even across re-simulation. Every
// layer that needs an occurrence identity must call this function; deriving
// the key anywhere else is a defect.
func BuildPaidKey(sourceID, name string, date models.Date, typ models.EntryType, amount decimal.Decimal) string {
	base := sourceID
	if base == "" {
		base = name
	}
	return base + "|" + date.String() + "|" + typ.String() + "|" + amount.StringFixed(2)
}

// Event is one row of the flat cash-flow event list, keyed for paid-event
// bookkeeping.
type Event struct {
	Date     models.Date      `json:"date"`
	Name     string           `json:"name"`
	Type     models.EntryType `json:"type"`
	Amount   decimal.Decimal  `json:"amount"`
	IsIncome bool             `json:"isIncome"`
	SourceID string           `json:"sourceId,omitempty"`
	Key      string           `json:"key"`
	Paid     bool             `json:"paid"`
}

// Events flattens a simulation result into one keyed, date-ordered event
// list covering debit bills (including card payments), credit charges and
// incomes.
func Events(res SimulationResult) []Event {
	out := make([]Event, 0, len(res.UpcomingDebitBills)+len(res.UpcomingCreditBills)+len(res.UpcomingIncomes))
	add := func(items []models.UpcomingItem, typ models.EntryType, isIncome bool) {
		for _, it := range items {
			out = append(out, Event{
				Date:     it.Date,
				Name:     it.Name,
				Type:     typ,
				Amount:   it.Amount,
				IsIncome: isIncome,
				SourceID: it.SourceID,
				Key:      BuildPaidKey(it.SourceID, it.Name, it.Date, typ, it.Amount),
			})
		}
	}
	add(res.UpcomingDebitBills, models.TypeDebit, false)
	add(res.UpcomingCreditBills, models.TypeCredit, false)
	add(res.UpcomingIncomes, models.TypeDebit, true)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PaidAdjustment is the paid-aware view of a simulation: scheduled events
// stay visible, but occurrences the user marked settled no longer count as
// pending and their effect is removed from the forward-looking series.
type PaidAdjustment struct {
	Events        []Event               `json:"events"`
	PendingIncome decimal.Decimal       `json:"pendingIncome"`
	PendingBills  decimal.Decimal       `json:"pendingBills"`
	PendingNet    decimal.Decimal       `json:"pendingNet"`
	DebitSeries   []models.BalancePoint `json:"debitSeries"`
	CreditSeries  []models.BalancePoint `json:"creditSeries"`
	LowestBalance decimal.Decimal       `json:"lowestBalance"`
	LowestDate    models.Date           `json:"lowestDate"`
}

// ApplyPaid overlays the paid-key set onto a simulation result. Marking the
// same key any number of times is equivalent to marking it once: the overlay
// is a pure function of the key set.
func ApplyPaid(res SimulationResult, paid map[string]bool, debitStart decimal.Decimal) PaidAdjustment {
	events := Events(res)

	debitAdj := make(map[models.Date]decimal.Decimal)
	creditAdj := make(map[models.Date]decimal.Decimal)
	addAdj := func(m map[models.Date]decimal.Decimal, d models.Date, delta decimal.Decimal) {
		if delta.IsZero() {
			return
		}
		m[d] = m[d].Add(delta)
	}

	adj := PaidAdjustment{}
	for i := range events {
		ev := &events[i]
		ev.Paid = paid[ev.Key]
		switch {
		case !ev.Paid:
			if ev.IsIncome {
				adj.PendingIncome = adj.PendingIncome.Add(ev.Amount)
			} else if ev.Name != CardPaymentName {
				adj.PendingBills = adj.PendingBills.Add(ev.Amount)
			}
		case ev.IsIncome:
			// Settled income was already counted by the base walk as a
			// future inflow; pull it back out so it is not double counted.
			addAdj(debitAdj, ev.Date, ev.Amount.Neg())
		case ev.Type == models.TypeDebit:
			addAdj(debitAdj, ev.Date, ev.Amount)
		case ev.Type == models.TypeCredit:
			addAdj(creditAdj, ev.Date, ev.Amount.Neg())
		}
	}
	adj.Events = events
	adj.PendingNet = adj.PendingIncome.Sub(adj.PendingBills)

	adj.DebitSeries = overlaySeries(res.DebitSeries, debitAdj)
	adj.CreditSeries = overlaySeries(res.CreditSeries, creditAdj)

	adj.LowestBalance = debitStart
	if len(res.DebitSeries) > 0 {
		adj.LowestDate = res.DebitSeries[0].Date
	}
	for _, p := range adj.DebitSeries {
		if p.Balance.LessThan(adj.LowestBalance) {
			adj.LowestBalance = p.Balance
			adj.LowestDate = p.Date
		}
	}
	return adj
}

func overlaySeries(series []models.BalancePoint, adj map[models.Date]decimal.Decimal) []models.BalancePoint {
	out := make([]models.BalancePoint, len(series))
	running := decimal.Zero
	for i, p := range series {
		running = running.Add(adj[p.Date])
		out[i] = models.BalancePoint{Date: p.Date, Balance: p.Balance.Add(running)}
	}
	return out
}
