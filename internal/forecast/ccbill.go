package forecast

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/cashflow-service/internal/models"
)

// CardPaymentName labels the synthetic debit-side event recorded when the
// credit-card bill is paid. The paid-event overlay excludes it from the
// pending-bills total by this name.
const CardPaymentName = "Credit Card Bill"

var (
	oneHundred = decimal.NewFromInt(100)
	twelve     = decimal.NewFromInt(12)
)

// PayDates returns the concrete credit-card payment dates within the window.
// It delegates to Expand through a synthetic zero-amount monthly entry so pay
// dates obey the identical month-clamping rule as every other monthly bill.
// A nil payDay disables the feature and yields no dates.
func PayDates(payDay *int, start models.Date, horizonDays int) []models.Date {
	if payDay == nil {
		return nil
	}
	synthetic := models.RecurringEntry{
		Name:      CardPaymentName,
		Amount:    decimal.Zero,
		Frequency: models.FreqMonthly,
		Type:      models.TypeDebit,
		Anchor:    models.ParseAnchor(models.FreqMonthly, strconv.Itoa(*payDay)),
	}
	occs := Expand(synthetic, start, horizonDays, false)
	dates := make([]models.Date, len(occs))
	for i, o := range occs {
		dates[i] = o.Date
	}
	return dates
}

// PaymentForBalance computes the payment owed against a pre-charge balance
// under the policy. The second return is false when the policy is incomplete
// (PayMinimumOrCustom with a missing amount or unit): no payment is
// computable for that cycle, which is distinct from a zero-dollar payment.
func PaymentForBalance(p models.CreditCardPolicy, balance decimal.Decimal) (decimal.Decimal, bool) {
	switch p.Method {
	case models.PayMinimumOrCustom:
		if p.CustomAmount == nil || p.CustomUnit == nil {
			return decimal.Zero, false
		}
		var owed decimal.Decimal
		if *p.CustomUnit == models.UnitPercent {
			owed = balance.Mul(*p.CustomAmount).Div(oneHundred).Round(0)
		} else {
			owed = *p.CustomAmount
		}
		if owed.IsNegative() {
			owed = decimal.Zero
		}
		return owed, true
	default:
		if balance.IsNegative() {
			return decimal.Zero, true
		}
		return balance, true
	}
}

// shiftedCreditCharges expands every credit-type bill over the window and
// applies the charge-date collision rule: a charge landing exactly on a pay
// date moves forward one day so it can never be ambiguously included in the
// bill it would be paid with. Returned occurrences keep positive amounts and
// are sorted by date.
func shiftedCreditCharges(bills []models.RecurringEntry, payDates []models.Date, start models.Date, horizonDays int) []models.Occurrence {
	paySet := make(map[models.Date]bool, len(payDates))
	for _, d := range payDates {
		paySet[d] = true
	}
	var charges []models.Occurrence
	for _, bill := range bills {
		if bill.Type != models.TypeCredit {
			continue
		}
		for _, occ := range Expand(bill, start, horizonDays, false) {
			if paySet[occ.Date] {
				occ.Date = occ.Date.AddDays(1)
			}
			occ.Amount = occ.Amount.Abs()
			charges = append(charges, occ)
		}
	}
	sort.SliceStable(charges, func(i, j int) bool {
		return charges[i].Date.Before(charges[j].Date)
	})
	return charges
}

// WindowReport is the explain view of the credit-card billing cycles.
type WindowReport struct {
	PayDates []models.Date           `json:"payDates"`
	Windows  []models.CashFlowWindow `json:"windows"`
	Charges  []models.ChargeRow      `json:"charges"`
}

// BillWindows partitions the horizon into inter-payment windows [prev, pay)
// and totals the credit charges strictly inside each. The first window alone
// also folds in the opening credit balance. This view is computed
// independently from the running simulation but must agree with it on the
// dollars paid by the first pay date.
func BillWindows(bills []models.RecurringEntry, creditBalance decimal.Decimal, payDay *int, start models.Date, horizonDays int) WindowReport {
	horizonDays = clampHorizon(horizonDays)
	payDates := PayDates(payDay, start, horizonDays)
	if len(payDates) == 0 {
		return WindowReport{}
	}

	charges := shiftedCreditCharges(bills, payDates, start, horizonDays)
	rows := make([]models.ChargeRow, len(charges))
	for i, c := range charges {
		rows[i] = models.ChargeRow{Date: c.Date, Name: c.Name, Amount: c.Amount}
	}

	windows := make([]models.CashFlowWindow, 0, len(payDates))
	prev := start
	for i, payDate := range payDates {
		sum := decimal.Zero
		for _, c := range charges {
			if !c.Date.Before(prev) && c.Date.Before(payDate) {
				sum = sum.Add(c.Amount)
			}
		}
		included := decimal.Zero
		if i == 0 && creditBalance.IsPositive() {
			included = creditBalance
		}
		windows = append(windows, models.CashFlowWindow{
			Start:           prev,
			End:             payDate,
			ChargesTotal:    sum,
			BalanceIncluded: included,
			Total:           sum.Add(included),
		})
		prev = payDate
	}

	return WindowReport{PayDates: payDates, Windows: windows, Charges: rows}
}
