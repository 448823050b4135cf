// Package recurrence holds the calendar maths for monthly templates.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// LastDayOfMonth returns the final calendar day of the given month at 00:00 UTC.
func LastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// IsLastDayOfMonth reports whether date is the final day of its month.
func IsLastDayOfMonth(date time.Time) bool {
	return date.AddDate(0, 0, 1).Day() == 1
}

// DayInMonth clamps dayOfMonth to the length of the month.
// Day 31 in April is the 30th, day 30 in a non-leap February is the 28th.
func DayInMonth(dayOfMonth, year int, month time.Month) time.Time {
	last := LastDayOfMonth(year, month)
	if dayOfMonth > last.Day() {
		return last
	}
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// MonthlyRule builds the rule "dayOfMonth of every month, or the month's last day
// when the month is shorter", starting at dtstart.
// Short months are handled with BYMONTHDAY=28..dayOfMonth and BYSETPOS=-1.
func MonthlyRule(dayOfMonth int, dtstart time.Time) (*rrule.RRule, error) {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return nil, fmt.Errorf("day of month %d out of range", dayOfMonth)
	}
	days := []int{dayOfMonth}
	if dayOfMonth > 28 {
		days = days[:0]
		for d := 28; d <= dayOfMonth; d++ {
			days = append(days, d)
		}
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:       rrule.MONTHLY,
		Dtstart:    dtstart,
		Bymonthday: days,
		Bysetpos:   []int{-1},
	})
}

// Occurrences lists the monthly occurrences of dayOfMonth within [from, to],
// never earlier than dtstart.
func Occurrences(dayOfMonth int, dtstart, from, to time.Time) ([]time.Time, error) {
	rule, err := MonthlyRule(dayOfMonth, dtstart)
	if err != nil {
		return nil, err
	}
	return rule.Between(from, to, true), nil
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k is an earlier month than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// MonthsBetween lists every month from the month of from through the month of to.
func MonthsBetween(from, to time.Time) []MonthKey {
	var months []MonthKey
	cur, end := MonthOf(from), MonthOf(to)
	for !end.Before(cur) {
		months = append(months, cur)
		cur.Month++
		if cur.Month > time.December {
			cur.Month = time.January
			cur.Year++
		}
	}
	return months
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", s, err)
	}
	return MonthOf(t), nil
}
