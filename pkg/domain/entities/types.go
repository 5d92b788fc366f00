package entities

import (
	"fmt"
	"time"
)

// LocationID uniquely identifies a network location
type LocationID string

// ProductID uniquely identifies a product
type ProductID string

// TruckID uniquely identifies a scheduled truck departure slot
type TruckID string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// Date is a calendar day, stored as days since the Unix epoch (UTC).
// Cohort keys and window arithmetic compare and offset dates constantly,
// so the domain uses this integer form and converts to time.Time only at
// the input/output boundary.
type Date int

// DateOf truncates a time.Time to its UTC calendar day
func DateOf(t time.Time) Date {
	return Date(t.UTC().Unix() / 86400)
}

// NewDate builds a Date from a calendar year/month/day
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a date in ISO 8601 form (2006-01-02)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns the midnight UTC instant of the date
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// Add returns the date shifted by the given number of days
func (d Date) Add(days int) Date {
	return d + Date(days)
}

// DaysUntil returns the number of days from d to other (negative if other is earlier)
func (d Date) DaysUntil(other Date) int {
	return int(other - d)
}

// Weekday returns the day of week for the date
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsWeekend reports whether the date falls on a Saturday or Sunday
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange creates a validated inclusive date range
func NewDateRange(start, end Date) (DateRange, error) {
	if end < start {
		return DateRange{}, fmt.Errorf("date range end %s precedes start %s", end, start)
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the number of days covered by the range
func (r DateRange) Days() int {
	return int(r.End-r.Start) + 1
}

// Contains reports whether the date falls inside the range
func (r DateRange) Contains(d Date) bool {
	return d >= r.Start && d <= r.End
}

// Dates enumerates every day in the range in ascending order
func (r DateRange) Dates() []Date {
	out := make([]Date, 0, r.Days())
	for d := r.Start; d <= r.End; d++ {
		out = append(out, d)
	}
	return out
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}
