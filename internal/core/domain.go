package core

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

type (
	// Date is a calendar date at midnight UTC.
	Date struct {
		time.Time
	}

	// Money is an amount in cents.
	Money struct {
		Cents int64
	}

	// Record is a single expense entry. ID is zero until the ledger
	// assigns one on Add.
	Record struct {
		ID          int64
		Date        Date
		Category    string
		Description string
		Amount      Money
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidCategory  = errors.New("category must contain only letters")
	ErrShortDescription = errors.New("description must be at least 5 characters")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	cat := strings.TrimSpace(r.Category)
	if cat == "" {
		return ErrEmptyCategory
	}
	for _, c := range cat {
		if !unicode.IsLetter(c) {
			return ErrInvalidCategory
		}
	}
	desc := strings.TrimSpace(r.Description)
	if len(desc) < 5 {
		return ErrShortDescription
	}
	if len(r.Description) > 200 {
		return ErrLongDescription
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// CanonicalCategory normalizes a category label: trimmed, first rune
// upper-cased, the rest lower-cased, so "food" and "FOOD" group together.
func CanonicalCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
