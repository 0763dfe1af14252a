package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PayMethod selects how the credit-card bill is settled each cycle.
type PayMethod int

const (
	PayInFull PayMethod = iota
	PayMinimumOrCustom
)

// ParsePayMethod maps stored method labels onto the enum. The legacy phrasing
// from the settings UI is accepted alongside the canonical names; anything
// unrecognized defaults to paying in full.
func ParsePayMethod(s string) PayMethod {
	switch strings.TrimSpace(s) {
	case "PayMinimumOrCustom", "I pay the minimum", "Custom":
		return PayMinimumOrCustom
	default:
		return PayInFull
	}
}

func (m PayMethod) String() string {
	if m == PayMinimumOrCustom {
		return "PayMinimumOrCustom"
	}
	return "PayInFull"
}

// AmountUnit qualifies a custom payment amount.
type AmountUnit int

const (
	UnitDollar AmountUnit = iota
	UnitPercent
)

// ParseAmountUnit maps a stored unit label. The legacy persisted form is an
// integer where 1 means percent.
func ParseAmountUnit(s string) AmountUnit {
	switch strings.TrimSpace(s) {
	case "Percent", "percent", "%", "1":
		return UnitPercent
	default:
		return UnitDollar
	}
}

func (u AmountUnit) String() string {
	if u == UnitPercent {
		return "Percent"
	}
	return "Dollar"
}

// CreditCardPolicy describes the revolving account's payoff behavior. A nil
// PayDay disables the feature entirely. When Method is PayMinimumOrCustom and
// either CustomAmount or CustomUnit is nil, the payment amount is undefined:
// the simulator skips the payment for that cycle rather than paying zero.
type CreditCardPolicy struct {
	PayDay       *int             `json:"payDay,omitempty"`
	Method       PayMethod        `json:"-"`
	CustomAmount *decimal.Decimal `json:"customAmount,omitempty"`
	CustomUnit   *AmountUnit      `json:"-"`
	APR          *decimal.Decimal `json:"apr,omitempty"`
}

// Enabled reports whether a pay day is configured.
func (p CreditCardPolicy) Enabled() bool {
	return p.PayDay != nil && *p.PayDay >= 1 && *p.PayDay <= 31
}

// PolicyPayload is the wire form of a credit-card policy.
type PolicyPayload struct {
	PayDay       *int             `json:"payDay"`
	Method       string           `json:"method"`
	CustomAmount *decimal.Decimal `json:"customAmount"`
	CustomUnit   *string          `json:"customAmountUnit"`
	APR          *decimal.Decimal `json:"apr"`
}

func (p PolicyPayload) ToPolicy() CreditCardPolicy {
	policy := CreditCardPolicy{
		PayDay:       p.PayDay,
		Method:       ParsePayMethod(p.Method),
		CustomAmount: p.CustomAmount,
		APR:          p.APR,
	}
	if p.CustomUnit != nil {
		u := ParseAmountUnit(*p.CustomUnit)
		policy.CustomUnit = &u
	}
	return policy
}
