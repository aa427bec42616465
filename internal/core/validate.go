package core

import (
	"strconv"
	"strings"
	"time"
)

// Layouts accepted when a date is recorded. Validation of user input stays
// strict (IsValidDate); the store is lenient and normalizes to DateLayout.
var insertLayouts = []string{
	DateLayout,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// IsValidDate reports whether s is a real calendar date in strict YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses s with the canonical layout only.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// ParseDateLenient accepts the common date and timestamp layouts and drops
// any time of day.
func ParseDateLenient(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range insertLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// ParseMonth parses a month number in 1..12.
func ParseMonth(s string) (int, error) {
	m, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || m < 1 || m > 12 {
		return 0, ErrInvalidMonth
	}
	return m, nil
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}
