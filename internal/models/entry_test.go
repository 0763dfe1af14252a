package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	cases := map[string]Frequency{
		"Weekly":                    FreqWeekly,
		"weekly":                    FreqWeekly,
		"Bi-Weekly (every 14 days)": FreqBiweekly,
		"biweekly":                  FreqBiweekly,
		"Monthly":                   FreqMonthly,
		"Annually":                  FreqAnnually,
		"annual":                    FreqAnnually,
		"One-time":                  FreqOneTime,
		"":                          FreqOneTime,
		"whenever":                  FreqOneTime,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseFrequency(raw), "raw %q", raw)
	}
}

func TestParseAnchorWeekly(t *testing.T) {
	a := ParseAnchor(FreqWeekly, "Friday")
	wd, ok := a.Weekday()
	require.True(t, ok)
	assert.Equal(t, time.Friday, wd)

	// A date resolves to its weekday; 2026-01-02 is a Friday.
	a = ParseAnchor(FreqWeekly, "2026-01-02")
	wd, ok = a.Weekday()
	require.True(t, ok)
	assert.Equal(t, time.Friday, wd)

	_, ok = ParseAnchor(FreqWeekly, "someday").Weekday()
	assert.False(t, ok)
}

func TestParseAnchorMonthly(t *testing.T) {
	a := ParseAnchor(FreqMonthly, "15")
	day, ok := a.DayOfMonth()
	require.True(t, ok)
	assert.Equal(t, 15, day)

	_, ok = ParseAnchor(FreqMonthly, "0").DayOfMonth()
	assert.False(t, ok)
	_, ok = ParseAnchor(FreqMonthly, "soon").DayOfMonth()
	assert.False(t, ok)
}

func TestNewRecurringEntryRejectsNegativeAmount(t *testing.T) {
	_, err := NewRecurringEntry("", "Rent", decimal.NewFromInt(-1), FreqMonthly, "1", TypeDebit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rent")
}

func TestDayValueUnmarshal(t *testing.T) {
	var payload EntryPayload
	// Numbers arrive unquoted from some clients.
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Rent","amount":1200,"frequency":"Monthly","day":15}`), &payload))
	assert.Equal(t, "15", payload.Day.String())

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Groceries","amount":80,"frequency":"Weekly","day":"Monday"}`), &payload))
	assert.Equal(t, "Monday", payload.Day.String())

	var d DayValue
	assert.Error(t, d.UnmarshalJSON([]byte(`{"nested":true}`)))
}

func TestEntryPayloadRoundTrip(t *testing.T) {
	p := EntryPayload{ID: "x1", Name: "Rent", Amount: decimal.NewFromInt(1200), Frequency: "Monthly", Day: "15", Type: "Debit"}
	e, err := p.ToEntry()
	require.NoError(t, err)
	assert.Equal(t, FreqMonthly, e.Frequency)
	assert.Equal(t, TypeDebit, e.Type)

	back := e.Payload()
	assert.Equal(t, p, back)
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-02-28"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d))
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2026, time.February, 27)
	assert.Equal(t, NewDate(2026, time.March, 1), d.AddDays(2), "leap-year-free February rolls over")
	assert.Equal(t, 2, NewDate(2026, time.March, 1).DaysSince(d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
}

func TestDateAsMapKey(t *testing.T) {
	m := map[Date]int{}
	m[NewDate(2026, time.January, 5)] = 1
	m[NewDate(2026, time.January, 5)]++
	assert.Equal(t, 2, m[NewDate(2026, time.January, 5)], "equal dates must collide as keys")
}

func TestParsePayMethod(t *testing.T) {
	assert.Equal(t, PayInFull, ParsePayMethod("I pay it off in full"))
	assert.Equal(t, PayInFull, ParsePayMethod("full"))
	assert.Equal(t, PayMinimumOrCustom, ParsePayMethod("I pay the minimum"))
	assert.Equal(t, PayMinimumOrCustom, ParsePayMethod("Custom"))
}

func TestParseAmountUnit(t *testing.T) {
	assert.Equal(t, UnitPercent, ParseAmountUnit("%"))
	assert.Equal(t, UnitPercent, ParseAmountUnit("1"))
	assert.Equal(t, UnitDollar, ParseAmountUnit("$"))
	assert.Equal(t, UnitDollar, ParseAmountUnit(""))
}
