package forecast

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/cashflow-service/internal/models"
)

// SimulationInput carries everything one simulation run reads. The core never
// reaches into ambient storage; callers thread state in explicitly.
type SimulationInput struct {
	Bills         []models.RecurringEntry
	Income        []models.RecurringEntry
	Policy        models.CreditCardPolicy
	DebitBalance  decimal.Decimal
	CreditBalance decimal.Decimal
	Start         models.Date
	HorizonDays   int
}

// SimulationResult is the full output of one run. Both series are
// index-complete: exactly HorizonDays+1 points, strictly increasing dates,
// no gaps. Upcoming lists are sorted by date and carry absolute amounts; the
// debit list includes the synthetic "Credit Card Bill" payment rows.
type SimulationResult struct {
	DebitSeries         []models.BalancePoint `json:"debitSeries"`
	CreditSeries        []models.BalancePoint `json:"creditSeries"`
	UpcomingDebitBills  []models.UpcomingItem `json:"upcomingDebitBills"`
	UpcomingCreditBills []models.UpcomingItem `json:"upcomingCreditBills"`
	UpcomingIncomes     []models.UpcomingItem `json:"upcomingIncomes"`
	Payments            []models.CardPayment  `json:"payments"`
}

// Simulate walks the window day by day, combining bill and income
// occurrences with the credit-card payoff policy into the two daily balance
// series. The walk is strictly sequential: each day's payment depends on the
// prior day's running balances. Running sums keep full precision; only the
// per-day series snapshots are rounded to whole units.
func Simulate(in SimulationInput) SimulationResult {
	horizon := clampHorizon(in.HorizonDays)
	start := in.Start

	payDates := PayDates(in.Policy.PayDay, start, horizon)
	paySet := make(map[models.Date]bool, len(payDates))
	for _, d := range payDates {
		paySet[d] = true
	}

	debitChanges := make(map[models.Date]decimal.Decimal)
	creditChanges := make(map[models.Date]decimal.Decimal)

	var res SimulationResult

	addChange := func(m map[models.Date]decimal.Decimal, d models.Date, delta decimal.Decimal) {
		m[d] = m[d].Add(delta)
	}

	for _, bill := range in.Bills {
		if bill.Type == models.TypeCredit {
			continue
		}
		for _, occ := range Expand(bill, start, horizon, false) {
			res.UpcomingDebitBills = append(res.UpcomingDebitBills, models.UpcomingItem{
				Date: occ.Date, Name: occ.Name, Amount: occ.Amount.Abs(), SourceID: occ.SourceID, Type: models.TypeDebit,
			})
			addChange(debitChanges, occ.Date, occ.Amount)
		}
	}

	for _, occ := range shiftedCreditCharges(in.Bills, payDates, start, horizon) {
		res.UpcomingCreditBills = append(res.UpcomingCreditBills, models.UpcomingItem{
			Date: occ.Date, Name: occ.Name, Amount: occ.Amount, SourceID: occ.SourceID, Type: models.TypeCredit,
		})
		addChange(creditChanges, occ.Date, occ.Amount)
	}

	for _, inc := range in.Income {
		for _, occ := range Expand(inc, start, horizon, true) {
			res.UpcomingIncomes = append(res.UpcomingIncomes, models.UpcomingItem{
				Date: occ.Date, Name: occ.Name, Amount: occ.Amount.Abs(), SourceID: occ.SourceID, IsIncome: true, Type: models.TypeDebit,
			})
			addChange(debitChanges, occ.Date, occ.Amount)
		}
	}

	if len(payDates) > 0 {
		monthlyRate := decimal.Zero
		if in.Policy.APR != nil && in.Policy.APR.IsPositive() {
			monthlyRate = in.Policy.APR.Div(oneHundred).Div(twelve)
		}
		running := in.CreditBalance
		for i := 0; i <= horizon; i++ {
			day := start.AddDays(i)
			dailyCharges := creditChanges[day]
			running = running.Add(dailyCharges)
			if !paySet[day] {
				continue
			}

			// Payment is computed against the balance before today's
			// charges; the shift rule guarantees no charge ever lands on a
			// pay date, but the exclusion keeps the two views equivalent.
			base := running.Sub(dailyCharges)
			payment := models.CardPayment{Date: day}
			pay := decimal.Zero
			if owed, ok := PaymentForBalance(in.Policy, base); ok {
				pay = owed
				if pay.GreaterThan(base) {
					pay = base
				}
				if pay.IsNegative() {
					pay = decimal.Zero
				}
			} else {
				payment.PolicyIncomplete = true
			}

			remaining := base.Sub(pay)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			if pay.IsPositive() {
				amt := pay
				payment.Amount = &amt
				res.UpcomingDebitBills = append(res.UpcomingDebitBills, models.UpcomingItem{
					Date: day, Name: CardPaymentName, Amount: pay, Type: models.TypeDebit,
				})
				addChange(debitChanges, day, pay.Neg())
				addChange(creditChanges, day, pay.Neg())
				running = remaining.Add(dailyCharges)
			}

			if monthlyRate.IsPositive() && remaining.IsPositive() {
				// Round-then-add, reproducing the reference interest
				// behavior; the rounded value does feed the running balance
				// here on purpose.
				interest := remaining.Mul(monthlyRate).Round(0)
				if interest.IsPositive() {
					payment.Interest = interest
					addChange(creditChanges, day, interest)
					running = running.Add(interest)
				}
			}

			if payment.Amount != nil || payment.PolicyIncomplete || payment.Interest.IsPositive() {
				res.Payments = append(res.Payments, payment)
			}
		}
	}

	sortItems(res.UpcomingDebitBills)
	sortItems(res.UpcomingCreditBills)
	sortItems(res.UpcomingIncomes)

	res.DebitSeries = make([]models.BalancePoint, 0, horizon+1)
	res.CreditSeries = make([]models.BalancePoint, 0, horizon+1)
	debitRunning := in.DebitBalance
	creditRunning := in.CreditBalance
	for i := 0; i <= horizon; i++ {
		day := start.AddDays(i)
		debitRunning = debitRunning.Add(debitChanges[day])
		creditRunning = creditRunning.Add(creditChanges[day])
		res.DebitSeries = append(res.DebitSeries, models.BalancePoint{Date: day, Balance: debitRunning.Round(0)})
		res.CreditSeries = append(res.CreditSeries, models.BalancePoint{Date: day, Balance: creditRunning.Round(0)})
	}

	return res
}

func sortItems(items []models.UpcomingItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].Name < items[j].Name
	})
}

// SafeToSpend is the minimum projected debit balance over the window,
// exposed as a single guardrail scalar.
func SafeToSpend(debitSeries []models.BalancePoint) decimal.Decimal {
	if len(debitSeries) == 0 {
		return decimal.Zero
	}
	min := debitSeries[0].Balance
	for _, p := range debitSeries[1:] {
		if p.Balance.LessThan(min) {
			min = p.Balance
		}
	}
	return min
}
