package engine

import (
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"
)

// ResolveCycle computes the statement cycle boundaries for a card as of
// today. CurrentCutoff closes the statement whose payment is currently due;
// NextCutoff closes the upcoming one. A transaction dated exactly on a cutoff
// belongs to the cycle ending at that boundary.
//
// The payment due date lands in the same month as CurrentCutoff, advanced one
// month when the configured payment day is numerically smaller than the
// cutoff day (the usual card convention: cutoff on the 15th, payment on the
// 5th of the following month).
func ResolveCycle(today domain.Date, cutoffDay, paymentDay int) domain.StatementCycle {
	thisMonth := dayInMonth(today.Year(), today.Month(), cutoffDay)

	var current, next domain.Date
	if today.After(thisMonth) {
		// The statement just closed this month; the next close is a month out.
		current = thisMonth
		y, m := shiftMonth(today.Year(), today.Month(), 1)
		next = dayInMonth(y, m, cutoffDay)
	} else {
		// Still inside the cycle that closes this month.
		y, m := shiftMonth(today.Year(), today.Month(), -1)
		current = dayInMonth(y, m, cutoffDay)
		next = thisMonth
	}

	py, pm := shiftMonth(current.Year(), current.Month(), -1)
	previous := dayInMonth(py, pm, cutoffDay)

	due := dayInMonth(current.Year(), current.Month(), paymentDay)
	if paymentDay < cutoffDay {
		dy, dm := shiftMonth(current.Year(), current.Month(), 1)
		due = dayInMonth(dy, dm, paymentDay)
	}

	return domain.StatementCycle{
		PreviousCutoff: previous,
		CurrentCutoff:  current,
		NextCutoff:     next,
		PaymentDue:     due,
	}
}

// dayInMonth resolves a configured day-of-month against a target month.
// Overflow (day 31 in a 30-day month, 29-31 in February) clamps to the last
// valid day instead of rolling into the next month, and a stored day outside
// 1-31 degrades to the nearest bound rather than failing mid-computation.
func dayInMonth(year int, month time.Month, day int) domain.Date {
	if day < 1 {
		day = 1
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	return domain.NewDate(year, month, day)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day zero of the following month is this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// shiftMonth moves a year/month pair by n months, normalizing year overflow.
func shiftMonth(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return t.Year(), t.Month()
}
