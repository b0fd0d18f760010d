/*
date.go - Calendar dates and inclusive periods

PURPOSE:
  Operations are keyed by calendar day, stored as YYYY-MM-DD text. ISO dates
  compare lexicographically, so Date is a validated string type and range
  queries are plain string comparisons all the way down to SQL.

  Also provides the operator-facing period shorthand the front end passes
  through: short dates ("30,10" / "30.10" with the current year), short
  ranges ("30,10-1,11"), explicit ISO ranges ("2025-11-03..2025-11-09"),
  and the current Monday..Sunday week.
*/
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// =============================================================================
// DATE - A validated YYYY-MM-DD calendar day
// =============================================================================

type Date string

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	return Date(t.Format(dateLayout)), nil
}

// Today returns the current date in the given location.
func Today(loc *time.Location) Date {
	return Date(time.Now().In(loc).Format(dateLayout))
}

func (d Date) String() string { return string(d) }

// Time returns the midnight UTC instant of the day.
func (d Date) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

func (d Date) Before(other Date) bool { return string(d) < string(other) }
func (d Date) After(other Date) bool  { return string(d) > string(other) }

// ParseShortDate parses the operator shorthand "30,10" or "30.10" (day,
// month) against the given year.
func ParseShortDate(s string, year int) (Date, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q, expected D,M or D.M", ErrInvalidDate, s)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return "", fmt.Errorf("%w: %q, expected D,M or D.M", ErrInvalidDate, s)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: month %d out of range", ErrInvalidDate, month)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 31 -> Mar 3); reject it.
	if t.Day() != day || t.Month() != time.Month(month) {
		return "", fmt.Errorf("%w: day %d out of range for month %d", ErrInvalidDate, day, month)
	}
	return Date(t.Format(dateLayout)), nil
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

type Period struct {
	From Date
	To   Date
}

// NewPeriod builds an inclusive period, rejecting ranges that end before
// they start.
func NewPeriod(from, to Date) (Period, error) {
	if to.Before(from) {
		return Period{}, fmt.Errorf("%w: %s..%s", ErrInvalidPeriod, from, to)
	}
	return Period{From: from, To: to}, nil
}

// Day returns the single-day period for d.
func Day(d Date) Period {
	return Period{From: d, To: d}
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.From) && !d.After(p.To)
}

func (p Period) String() string {
	if p.From == p.To {
		return string(p.From)
	}
	return fmt.Sprintf("%s..%s", p.From, p.To)
}

// ParseShortRange parses "30,10-1,11" (day,month-day,month) against the
// given year.
func ParseShortRange(s string, year int) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q, expected D,M-D,M", ErrInvalidPeriod, s)
	}
	from, err := ParseShortDate(parts[0], year)
	if err != nil {
		return Period{}, err
	}
	to, err := ParseShortDate(parts[1], year)
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(from, to)
}

// ParsePeriod parses an explicit ISO range "2025-11-03..2025-11-09".
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "..")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q, expected FROM..TO", ErrInvalidPeriod, s)
	}
	from, err := ParseDate(strings.TrimSpace(parts[0]))
	if err != nil {
		return Period{}, err
	}
	to, err := ParseDate(strings.TrimSpace(parts[1]))
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(from, to)
}

// WeekOf returns the Monday..Sunday week containing d.
func WeekOf(d Date) Period {
	t := d.Time()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return Period{
		From: Date(monday.Format(dateLayout)),
		To:   Date(sunday.Format(dateLayout)),
	}
}
