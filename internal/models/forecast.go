package models

import "github.com/shopspring/decimal"

// Occurrence is one concrete dated instance of a recurring rule. Amount is
// signed: positive inflows to the debit account (or charges accruing on the
// credit account), negative outflows.
type Occurrence struct {
	Date     Date            `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Name     string          `json:"name"`
	SourceID string          `json:"sourceId,omitempty"`
	IsIncome bool            `json:"isIncome"`
	Type     EntryType       `json:"type"`
}

// BalancePoint is one day of a projected balance series.
type BalancePoint struct {
	Date    Date            `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// UpcomingItem is a display row for a scheduled bill, charge or income
// occurrence; Amount is always the absolute value.
type UpcomingItem struct {
	Date     Date            `json:"date"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	SourceID string          `json:"sourceId,omitempty"`
	IsIncome bool            `json:"-"`
	Type     EntryType       `json:"type"`
}

// CardPayment records one credit-card billing event. Amount is nil when the
// policy was incomplete and no payment could be computed for the cycle; that
// is a distinct state from a deliberate zero-dollar payment and is never
// collapsed into one.
type CardPayment struct {
	Date             Date             `json:"date"`
	Amount           *decimal.Decimal `json:"amount"`
	Interest         decimal.Decimal  `json:"interest"`
	PolicyIncomplete bool             `json:"policyIncomplete,omitempty"`
}

// CashFlowWindow is one inter-payment billing cycle [Start, End).
// BalanceIncluded is nonzero only for the first window, which seeds the
// opening credit balance once.
type CashFlowWindow struct {
	Start           Date            `json:"start"`
	End             Date            `json:"end"`
	ChargesTotal    decimal.Decimal `json:"chargesTotal"`
	BalanceIncluded decimal.Decimal `json:"balanceIncluded"`
	Total           decimal.Decimal `json:"total"`
}

// ChargeRow is one credit charge as the windowing view sees it, after the
// same-day shift rule has been applied.
type ChargeRow struct {
	Date   Date            `json:"date"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}
