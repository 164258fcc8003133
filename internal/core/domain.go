package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no time component. The zero value is
	// invalid; construct with NewDate.
	Date struct {
		time.Time
	}

	// Money is a signed amount in cents. Negative cents are expenses,
	// positive cents are income or refunds. The sign is assigned once at
	// ingestion and never recomputed afterwards.
	Money struct {
		Cents int64
	}

	// Transaction is one normalized bank-statement row. CategoryID is nil
	// for uncategorized transactions.
	Transaction struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		CategoryID  *int64
	}

	// Category is a spending category with the lowercase keywords the
	// classifier matches against transaction descriptions. An empty keyword
	// list is allowed; such a category is only ever assigned manually.
	Category struct {
		ID       int64
		Name     string
		Keywords []string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty category name")
	ErrEmptyDescription = errors.New("empty description")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month, 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// ISO renders the date as YYYY-MM-DD, the wire format of the API.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// IsExpense reports whether the amount is an expense (negative cents).
func (m Money) IsExpense() bool {
	return m.Cents < 0
}

// Magnitude returns the absolute value, used for display and aggregation.
func (m Money) Magnitude() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// NormalizeDescription collapses internal whitespace and trims the ends.
// An empty result falls back to "Unknown" so every stored transaction has
// a displayable description.
func NormalizeDescription(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "Unknown"
	}
	return strings.Join(fields, " ")
}
