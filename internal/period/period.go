// Package period provides calendar-month arithmetic and timeframe
// bucketing for projection windows.
package period

import (
	"fmt"
	"time"

	"github.com/flowcast-dev/flowcast/internal/model"
)

// LastDay returns the last day of the given month.
func LastDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), LastDay(t.Year(), t.Month()), 0, 0, 0, 0, t.Location())
}

// AddMonths shifts t by n calendar months, clamping the day to the target
// month's last day (Jan 31 + 1 month = Feb 28). A recurrence walk that
// steps occurrence-by-occurrence therefore drifts after a clamp
// (Jan 31, Feb 28, Mar 28, ...), which is the intended behavior.
func AddMonths(t time.Time, n int) time.Time {
	y := t.Year()
	m := int(t.Month()) - 1 + n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := t.Day()
	if last := LastDay(y, month); day > last {
		day = last
	}
	return time.Date(y, month, day, 0, 0, 0, 0, t.Location())
}

// Step advances an occurrence date by one interval of freq. Callers
// validate the frequency before walking; One-time never steps.
func Step(freq model.ExpenseFrequency, cur time.Time) time.Time {
	switch freq {
	case model.FreqDaily:
		return cur.AddDate(0, 0, 1)
	case model.FreqWeekly:
		return cur.AddDate(0, 0, 7)
	case model.FreqBiweekly:
		return cur.AddDate(0, 0, 14)
	case model.FreqMonthly:
		return AddMonths(cur, 1)
	case model.FreqQuarterly:
		return AddMonths(cur, 3)
	case model.FreqAnnual:
		return AddMonths(cur, 12)
	}
	return cur.AddDate(0, 0, 1)
}

// Ends returns the ordered period-end dates covering [start, end] at the
// given timeframe. The first period begins at start; each subsequent
// period begins the day after the prior end; the final period is capped
// at end. Monthly and quarterly buckets are calendar-anchored, so the
// first and last buckets may be partial.
func Ends(start, end time.Time, tf model.Timeframe) ([]time.Time, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("period ends: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var ends []time.Time
	switch tf {
	case model.Daily:
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
			ends = append(ends, cur)
		}
	case model.Weekly:
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 7) {
			pe := cur.AddDate(0, 0, 6)
			if pe.After(end) {
				pe = end
			}
			ends = append(ends, pe)
		}
	case model.Monthly:
		for cur := MonthStart(start); !cur.After(end); cur = AddMonths(cur, 1) {
			pe := MonthEnd(cur)
			if pe.After(end) {
				pe = end
			}
			ends = append(ends, pe)
		}
	case model.Quarterly:
		for cur := MonthStart(start); !cur.After(end); cur = AddMonths(cur, 3) {
			pe := MonthEnd(AddMonths(cur, 2))
			if pe.After(end) {
				pe = end
			}
			ends = append(ends, pe)
		}
	default:
		return nil, fmt.Errorf("period ends: unknown timeframe %q", tf)
	}
	return ends, nil
}

// Range maps one period-end date back to its full period and display
// label. Weekly and quarterly buckets are anchored at the projection
// start, so a capped final end still recovers the true bucket start
// instead of assuming a full-width period. The start is clamped at
// projectionStart so the first, possibly partial, bucket reports its
// true boundaries.
func Range(end time.Time, tf model.Timeframe, projectionStart time.Time) (model.Window, string, error) {
	if end.Before(projectionStart) {
		return model.Window{}, "", fmt.Errorf("period range: end %s before projection start %s",
			end.Format("2006-01-02"), projectionStart.Format("2006-01-02"))
	}

	var start time.Time
	switch tf {
	case model.Daily:
		start = end
	case model.Weekly:
		days := int(end.Sub(projectionStart) / (24 * time.Hour))
		start = projectionStart.AddDate(0, 0, days/7*7)
	case model.Monthly:
		start = MonthStart(end)
	case model.Quarterly:
		anchor := MonthStart(projectionStart)
		months := monthsBetween(anchor, MonthStart(end))
		start = AddMonths(anchor, months/3*3)
	default:
		return model.Window{}, "", fmt.Errorf("period range: unknown timeframe %q", tf)
	}
	if start.Before(projectionStart) {
		start = projectionStart
	}
	w := model.Window{Start: start, End: end}
	return w, Label(start, end, tf), nil
}

// monthsBetween counts calendar months from a to b, both first-of-month
// dates with a not after b.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// Label renders a human-readable name for a period.
func Label(start, end time.Time, tf model.Timeframe) string {
	switch tf {
	case model.Daily:
		return end.Format("Jan 2, 2006")
	case model.Weekly:
		if start.Month() == end.Month() && start.Year() == end.Year() {
			return fmt.Sprintf("Week of %s-%d, %d", start.Format("Jan 2"), end.Day(), end.Year())
		}
		return fmt.Sprintf("Week of %s - %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), end.Year())
	case model.Monthly:
		return end.Format("January 2006")
	case model.Quarterly:
		q := (int(end.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", q, end.Year())
	}
	return end.Format("2006-01-02")
}
