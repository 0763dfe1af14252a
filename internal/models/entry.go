package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the closed set of recurrence rules an entry can carry.
type Frequency int

const (
	FreqOneTime Frequency = iota
	FreqWeekly
	FreqBiweekly
	FreqMonthly
	FreqAnnually
)

// ParseFrequency maps a raw frequency label onto the closed enum. Matching is
// by substring so legacy labels like "Bi-Weekly (every 14 days)" still
// resolve; biweekly must be checked before weekly.
func ParseFrequency(s string) Frequency {
	f := strings.ToLower(strings.TrimSpace(s))
	f = strings.ReplaceAll(f, "-", "")
	switch {
	case strings.Contains(f, "biweekly"):
		return FreqBiweekly
	case strings.Contains(f, "weekly"):
		return FreqWeekly
	case strings.Contains(f, "monthly"):
		return FreqMonthly
	case strings.Contains(f, "ann"):
		return FreqAnnually
	default:
		return FreqOneTime
	}
}

func (f Frequency) String() string {
	switch f {
	case FreqWeekly:
		return "Weekly"
	case FreqBiweekly:
		return "Biweekly"
	case FreqMonthly:
		return "Monthly"
	case FreqAnnually:
		return "Annually"
	default:
		return "One-time"
	}
}

func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *Frequency) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = ParseFrequency(s)
	return nil
}

// EntryType distinguishes bills drawn from the checking account from bills
// charged to the revolving credit account.
type EntryType int

const (
	TypeDebit EntryType = iota
	TypeCredit
)

func ParseEntryType(s string) EntryType {
	if strings.EqualFold(strings.TrimSpace(s), "credit") {
		return TypeCredit
	}
	return TypeDebit
}

func (t EntryType) String() string {
	if t == TypeCredit {
		return "Credit"
	}
	return "Debit"
}

func (t EntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *EntryType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseEntryType(s)
	return nil
}

type anchorKind int

const (
	anchorNone anchorKind = iota
	anchorWeekday
	anchorDayOfMonth
	anchorDate
)

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Anchor is the frequency-specific reference value seeding recurrence
// computation. Its shape is resolved once at construction; an anchor that
// fails to resolve expands to zero occurrences rather than erroring.
type Anchor struct {
	kind    anchorKind
	weekday time.Weekday
	day     int
	date    Date
	raw     string
}

// ParseAnchor resolves a raw day value against the shape the frequency
// requires.
func ParseAnchor(freq Frequency, raw string) Anchor {
	raw = strings.TrimSpace(raw)
	a := Anchor{raw: raw}
	switch freq {
	case FreqWeekly:
		if wd, ok := weekdayNames[strings.ToLower(raw)]; ok {
			a.kind = anchorWeekday
			a.weekday = wd
		} else if d, err := ParseDate(raw); err == nil {
			a.kind = anchorWeekday
			a.weekday = d.Weekday()
		}
	case FreqMonthly:
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			a.kind = anchorDayOfMonth
			a.day = n
		}
	case FreqBiweekly, FreqAnnually, FreqOneTime:
		if d, err := ParseDate(raw); err == nil {
			a.kind = anchorDate
			a.date = d
		}
	}
	return a
}

func (a Anchor) Weekday() (time.Weekday, bool) { return a.weekday, a.kind == anchorWeekday }
func (a Anchor) DayOfMonth() (int, bool)       { return a.day, a.kind == anchorDayOfMonth }
func (a Anchor) Date() (Date, bool)            { return a.date, a.kind == anchorDate }
func (a Anchor) Raw() string                   { return a.raw }

// RecurringEntry is one declared bill or income rule. Entries are immutable
// once expanded for a simulation run.
type RecurringEntry struct {
	ID        string
	Name      string
	Amount    decimal.Decimal
	Frequency Frequency
	Type      EntryType
	Anchor    Anchor
}

// NewRecurringEntry validates and builds an entry. The amount must be
// non-negative; the sign applied during expansion comes from Type, never from
// the declared amount.
func NewRecurringEntry(id, name string, amount decimal.Decimal, freq Frequency, day string, typ EntryType) (RecurringEntry, error) {
	if amount.IsNegative() {
		return RecurringEntry{}, fmt.Errorf("entry %q: amount must be non-negative, got %s", name, amount)
	}
	return RecurringEntry{
		ID:        id,
		Name:      name,
		Amount:    amount,
		Frequency: freq,
		Type:      typ,
		Anchor:    ParseAnchor(freq, day),
	}, nil
}

// DayValue tolerates the polymorphic wire shape of an entry's day field: a
// weekday name, a day-of-month number, or an ISO date may all arrive, and
// numbers may arrive unquoted.
type DayValue string

func (d *DayValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = DayValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*d = DayValue(n.String())
		return nil
	}
	return fmt.Errorf("day: expected string or number, got %s", string(b))
}

func (d DayValue) String() string { return string(d) }

// EntryPayload is the wire form of a recurring entry.
type EntryPayload struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency"`
	Day       DayValue        `json:"day"`
	Type      string          `json:"type,omitempty"`
}

// ToEntry converts the payload into a validated RecurringEntry. Income
// payloads carry no type field and fall through to Debit; expansion applies
// the income sign separately.
func (p EntryPayload) ToEntry() (RecurringEntry, error) {
	return NewRecurringEntry(p.ID, p.Name, p.Amount, ParseFrequency(p.Frequency), p.Day.String(), ParseEntryType(p.Type))
}

// Payload converts an entry back into its wire form.
func (e RecurringEntry) Payload() EntryPayload {
	return EntryPayload{
		ID:        e.ID,
		Name:      e.Name,
		Amount:    e.Amount,
		Frequency: e.Frequency.String(),
		Day:       DayValue(e.Anchor.Raw()),
		Type:      e.Type.String(),
	}
}
