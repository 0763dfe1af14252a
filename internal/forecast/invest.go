package forecast

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/mbaxter/cashflow-service/internal/models"
)

// DefaultAnnualReturnPct is the assumed long-run annual return used when the
// caller supplies no rate. It is an arithmetic assumption, not advice.
var DefaultAnnualReturnPct = decimal.NewFromInt(7)

// DailyRateFromAnnualPct converts an annual percentage return into the
// equivalent daily compounding rate: (1+pct/100)^(1/365)-1.
func DailyRateFromAnnualPct(annualPct decimal.Decimal) decimal.Decimal {
	annual, _ := annualPct.Float64()
	return decimal.NewFromFloat(math.Pow(1+annual/100, 1.0/365) - 1)
}

// Projection is the investment-opportunity estimate over one debit series.
// Invariant: FinalInvestmentValue equals TotalTransferred plus
// CalculatedReturn within rounding tolerance; the return is purely the
// compounding gain above principal.
type Projection struct {
	CalculatedReturn       decimal.Decimal `json:"calculatedReturn"`
	TotalTransferred       decimal.Decimal `json:"totalTransferred"`
	FinalInvestmentValue   decimal.Decimal `json:"finalInvestmentValue"`
	FinalHypotheticalDebit decimal.Decimal `json:"finalHypotheticalDebit"`
	MinProjected           decimal.Decimal `json:"minProjected"`
	Cap                    decimal.Decimal `json:"cap"`
}

// Project computes how much surplus cash above the floor could have been
// invested over the series and what it would be worth under daily
// compounding. The backward suffix-minimum pass is the key device: money
// only leaves the account on a given day if the balance never again dips
// below cumulative-transferred+floor for the rest of the horizon. A nil
// dailyRate selects the default 7% annualized rate. An empty series or nil
// floor yields the documented zeroed result, never an error.
func Project(series []models.BalancePoint, floor *decimal.Decimal, dailyRate *decimal.Decimal) Projection {
	if len(series) == 0 || floor == nil {
		var last decimal.Decimal
		if len(series) > 0 {
			last = series[len(series)-1].Balance
		}
		return Projection{FinalHypotheticalDebit: last}
	}

	balances := make([]decimal.Decimal, len(series))
	for i, p := range series {
		balances[i] = p.Balance
	}

	minProjected := balances[0]
	for _, b := range balances[1:] {
		if b.LessThan(minProjected) {
			minProjected = b
		}
	}

	rate := DailyRateFromAnnualPct(DefaultAnnualReturnPct)
	if dailyRate != nil {
		rate = *dailyRate
	}
	growth := decimal.NewFromInt(1).Add(rate)

	horizon := len(balances)
	minFuture := make([]decimal.Decimal, horizon)
	minFuture[horizon-1] = balances[horizon-1]
	for i := horizon - 2; i >= 0; i-- {
		minFuture[i] = balances[i]
		if minFuture[i+1].LessThan(minFuture[i]) {
			minFuture[i] = minFuture[i+1]
		}
	}

	investment := decimal.Zero
	transferred := decimal.Zero
	for i := 0; i < horizon; i++ {
		investment = investment.Mul(growth)
		maxCumAllowed := minFuture[i].Sub(*floor)
		transfer := maxCumAllowed.Sub(transferred)
		if transfer.IsPositive() {
			investment = investment.Add(transfer)
			transferred = transferred.Add(transfer)
		}
	}

	last := balances[horizon-1]
	hypDebit := last.Sub(transferred)
	investingNetWorth := hypDebit.Add(investment)
	return Projection{
		CalculatedReturn:       investingNetWorth.Sub(last),
		TotalTransferred:       transferred,
		FinalInvestmentValue:   investment,
		FinalHypotheticalDebit: hypDebit,
		MinProjected:           minProjected,
		Cap:                    minProjected.Sub(*floor),
	}
}
