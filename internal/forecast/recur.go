// Package forecast implements the recurrence-expansion and credit-card
// billing simulation engine. Everything here is a pure function of its
// inputs: no ambient storage, no clocks, safe under concurrent calls.
package forecast

import (
	"github.com/mbaxter/cashflow-service/internal/models"
)

// MaxHorizonDays bounds simulation windows. Callers asking for more are
// clamped, never rejected; the walk is linear in the horizon so the cap
// exists purely for resource bounding.
const MaxHorizonDays = 1825

// monthlyDayCap caps every monthly occurrence at the 28th so a given
// day-of-month lands in every month of the year. Dates 29-31 are deliberately
// discarded; several consumers rely on matching output, so this is load
// bearing, not a calendar bug.
const monthlyDayCap = 28

func clampHorizon(days int) int {
	if days < 0 {
		return 0
	}
	if days > MaxHorizonDays {
		return MaxHorizonDays
	}
	return days
}

// Expand produces every concrete occurrence of one recurring entry within
// [start, start+horizonDays], both bounds inclusive, ordered by date. Income
// occurrences are always positive; bill occurrences are negative when the
// entry draws from the debit account and positive when they charge the
// revolving account. An entry whose anchor failed to resolve contributes
// nothing.
func Expand(e models.RecurringEntry, start models.Date, horizonDays int, isIncome bool) []models.Occurrence {
	horizonDays = clampHorizon(horizonDays)
	end := start.AddDays(horizonDays)

	sign := -1
	if isIncome || e.Type == models.TypeCredit {
		sign = 1
	}
	amount := e.Amount
	if sign < 0 {
		amount = amount.Neg()
	}

	emit := func(out []models.Occurrence, d models.Date) []models.Occurrence {
		return append(out, models.Occurrence{
			Date:     d,
			Amount:   amount,
			Name:     e.Name,
			SourceID: e.ID,
			IsIncome: isIncome,
			Type:     e.Type,
		})
	}

	var out []models.Occurrence
	switch e.Frequency {
	case models.FreqBiweekly:
		anchor, ok := e.Anchor.Date()
		if !ok {
			return nil
		}
		occ := anchor
		if occ.Before(start) {
			// Jump straight to the first anchor+14k >= start instead of
			// stepping day by day.
			k := (start.DaysSince(occ) + 13) / 14
			occ = occ.AddDays(14 * k)
		}
		for !occ.After(end) {
			out = emit(out, occ)
			occ = occ.AddDays(14)
		}

	case models.FreqWeekly:
		target := start.Weekday()
		if wd, ok := e.Anchor.Weekday(); ok {
			target = wd
		}
		delta := (int(target) - int(start.Weekday()) + 7) % 7
		occ := start.AddDays(delta)
		for !occ.After(end) {
			out = emit(out, occ)
			occ = occ.AddDays(7)
		}

	case models.FreqMonthly:
		dom, ok := e.Anchor.DayOfMonth()
		if !ok {
			dom = start.Day()
		}
		if dom > monthlyDayCap {
			dom = monthlyDayCap
		}
		year, month := start.Year(), start.Month()
		for {
			candidate := models.NewDate(year, month, dom)
			if !candidate.Before(start) && !candidate.After(end) {
				out = emit(out, candidate)
			}
			if year > end.Year() || (year == end.Year() && month >= end.Month()) {
				break
			}
			if month == 12 {
				year++
				month = 1
			} else {
				month++
			}
		}

	case models.FreqAnnually:
		anchor, ok := e.Anchor.Date()
		if !ok {
			return nil
		}
		occ := models.NewDate(start.Year(), anchor.Month(), anchor.Day())
		if occ.Before(start) {
			occ = models.NewDate(start.Year()+1, anchor.Month(), anchor.Day())
		}
		if !occ.Before(start) && !occ.After(end) {
			out = emit(out, occ)
		}

	default: // one-time
		occ, ok := e.Anchor.Date()
		if !ok {
			return nil
		}
		if !occ.Before(start) && !occ.After(end) {
			out = emit(out, occ)
		}
	}
	return out
}
