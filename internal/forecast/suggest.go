package forecast

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/cashflow-service/internal/models"
)

// Suggestion is a recurring-entry candidate inferred from transaction
// history.
type Suggestion struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency"`
	Day       string          `json:"day"`
	Type      string          `json:"type"`
}

// SuggestRecurring clusters transactions by name and rounded amount and
// proposes a recurring entry for every cluster of three or more whose
// average spacing matches a known cadence. Anything without a clean weekly,
// biweekly or monthly gap is ignored.
func SuggestRecurring(txs []models.Transaction) []Suggestion {
	grouped := make(map[string][]models.Transaction)
	order := make([]string, 0)
	for _, tx := range txs {
		key := tx.Name + "|" + tx.Amount.Round(0).String()
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], tx)
	}

	var out []Suggestion
	for _, key := range order {
		items := grouped[key]
		if len(items) < 3 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Date.Before(items[j].Date)
		})
		totalGap := 0
		for i := 1; i < len(items); i++ {
			totalGap += items[i].Date.DaysSince(items[i-1].Date)
		}
		avgGap := float64(totalGap) / float64(len(items)-1)

		var freq string
		switch {
		case avgGap >= 12 && avgGap <= 16:
			freq = models.FreqBiweekly.String()
		case avgGap >= 26 && avgGap <= 33:
			freq = models.FreqMonthly.String()
		case avgGap >= 6 && avgGap <= 8:
			freq = models.FreqWeekly.String()
		default:
			continue
		}

		last := items[len(items)-1]
		typ := models.TypeCredit
		if last.Amount.IsNegative() {
			typ = models.TypeDebit
		}
		out = append(out, Suggestion{
			Name:      last.Name,
			Amount:    last.Amount.Round(0).Abs(),
			Frequency: freq,
			Day:       last.Date.String(),
			Type:      typ.String(),
		})
	}
	return out
}
