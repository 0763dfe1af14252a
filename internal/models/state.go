package models

import "github.com/shopspring/decimal"

// Settings holds one household's persisted planning preferences and the two
// current-balance scalars the simulation starts from.
type Settings struct {
	HouseholdID     string           `json:"-"`
	DebitBalance    decimal.Decimal  `json:"debit_balance"`
	CreditBalance   decimal.Decimal  `json:"credit_balance"`
	CCPayDay        *int             `json:"cc_pay_day"`
	CCPayMethod     *string          `json:"cc_pay_method"`
	CCPayAmount     *decimal.Decimal `json:"cc_pay_amount"`
	CCPayAmountUnit *string          `json:"cc_pay_amount_unit"`
	CCAPR           *decimal.Decimal `json:"cc_apr"`
	CashflowDays    int              `json:"cashflow_days"`
	SafeToSpendDays int              `json:"safe_to_spend_days"`
	DebitFloor      decimal.Decimal  `json:"debit_floor"`
	ReminderEmail   *string          `json:"reminder_email"`
}

// DefaultSettings mirrors the row created for a household on first contact.
func DefaultSettings(householdID string) Settings {
	return Settings{
		HouseholdID:     householdID,
		DebitBalance:    decimal.Zero,
		CreditBalance:   decimal.Zero,
		CashflowDays:    30,
		SafeToSpendDays: 14,
		DebitFloor:      decimal.Zero,
	}
}

// CardPolicy assembles the credit-card policy from the persisted settings
// fields.
func (s Settings) CardPolicy() CreditCardPolicy {
	p := CreditCardPolicy{
		PayDay:       s.CCPayDay,
		CustomAmount: s.CCPayAmount,
		APR:          s.CCAPR,
	}
	if s.CCPayMethod != nil {
		p.Method = ParsePayMethod(*s.CCPayMethod)
	}
	if s.CCPayAmountUnit != nil {
		u := ParseAmountUnit(*s.CCPayAmountUnit)
		p.CustomUnit = &u
	}
	return p
}

// Transaction is one historical cash movement, used only to suggest recurring
// entries and for summaries; the forecast core never reads transactions.
type Transaction struct {
	ID     int64           `json:"id"`
	Date   Date            `json:"date"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
}

// AlertSetting configures one alert rule for a household.
type AlertSetting struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Threshold decimal.Decimal `json:"threshold"`
	Enabled   bool            `json:"enabled"`
}

const AlertLowBalance = "low_balance"

// Alert is one fired alert.
type Alert struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Value   decimal.Decimal `json:"value"`
}

// State is the full persisted state exchanged with the host layer.
type State struct {
	Settings
	Bills  []EntryPayload `json:"bills"`
	Income []EntryPayload `json:"income"`
	Alerts []AlertSetting `json:"alerts"`
}

// StatePayload is the partial-update form of State; nil slices mean "leave
// unchanged", mirroring the reference API's exclude-unset semantics.
type StatePayload struct {
	DebitBalance    *decimal.Decimal `json:"debit_balance"`
	CreditBalance   *decimal.Decimal `json:"credit_balance"`
	CCPayDay        *int             `json:"cc_pay_day"`
	CCPayMethod     *string          `json:"cc_pay_method"`
	CCPayAmount     *decimal.Decimal `json:"cc_pay_amount"`
	CCPayAmountUnit *string          `json:"cc_pay_amount_unit"`
	CCAPR           *decimal.Decimal `json:"cc_apr"`
	CashflowDays    *int             `json:"cashflow_days"`
	SafeToSpendDays *int             `json:"safe_to_spend_days"`
	DebitFloor      *decimal.Decimal `json:"debit_floor"`
	ReminderEmail   *string          `json:"reminder_email"`
	Bills           []EntryPayload   `json:"bills"`
	Income          []EntryPayload   `json:"income"`
	Alerts          []AlertSetting   `json:"alerts"`
}
