package entities

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrMissingLaborDay reports a labor calendar gap on a date the planner
// needs production capacity for.
var ErrMissingLaborDay = errors.New("labor calendar missing required day")

// LaborDay describes the labor available and its pay structure on one day.
// Fixed days (weekdays) carry pre-paid regular hours plus capped overtime;
// non-fixed days (weekends, holidays) pay a premium rate with a minimum
// paid-hours floor once any production occurs.
type LaborDay struct {
	Date  Date
	Fixed bool

	// Fixed-day fields
	FixedHours    float64
	OvertimeHours float64
	RegularRate   decimal.Decimal
	OvertimeRate  decimal.Decimal

	// Non-fixed-day fields
	NonFixedRate decimal.Decimal
	MinimumHours float64
	MaxHours     float64
}

// NewFixedLaborDay creates a validated fixed (weekday) labor day
func NewFixedLaborDay(date Date, fixedHours, overtimeHours float64, regularRate, overtimeRate decimal.Decimal) (*LaborDay, error) {
	if fixedHours < 0 || overtimeHours < 0 {
		return nil, fmt.Errorf("labor day %s: hours cannot be negative", date)
	}
	if regularRate.IsNegative() || overtimeRate.IsNegative() {
		return nil, fmt.Errorf("labor day %s: rates cannot be negative", date)
	}
	return &LaborDay{
		Date:          date,
		Fixed:         true,
		FixedHours:    fixedHours,
		OvertimeHours: overtimeHours,
		RegularRate:   regularRate,
		OvertimeRate:  overtimeRate,
	}, nil
}

// NewNonFixedLaborDay creates a validated non-fixed (weekend/holiday) labor day
func NewNonFixedLaborDay(date Date, nonFixedRate decimal.Decimal, minimumHours, maxHours float64) (*LaborDay, error) {
	if minimumHours < 0 || maxHours < 0 {
		return nil, fmt.Errorf("labor day %s: hours cannot be negative", date)
	}
	if maxHours > 0 && minimumHours > maxHours {
		return nil, fmt.Errorf("labor day %s: minimum hours %g exceed maximum %g", date, minimumHours, maxHours)
	}
	if nonFixedRate.IsNegative() {
		return nil, fmt.Errorf("labor day %s: rate cannot be negative", date)
	}
	return &LaborDay{
		Date:         date,
		Fixed:        false,
		NonFixedRate: nonFixedRate,
		MinimumHours: minimumHours,
		MaxHours:     maxHours,
	}, nil
}

// AvailableHours is the maximum hours that can be worked on the day
func (d *LaborDay) AvailableHours() float64 {
	if d.Fixed {
		return d.FixedHours + d.OvertimeHours
	}
	return d.MaxHours
}

// LaborCalendar maps dates to labor days for a planning run
type LaborCalendar struct {
	days map[Date]*LaborDay
}

// NewLaborCalendar builds a calendar from labor days, rejecting duplicates
func NewLaborCalendar(days []*LaborDay) (*LaborCalendar, error) {
	m := make(map[Date]*LaborDay, len(days))
	for _, d := range days {
		if _, exists := m[d.Date]; exists {
			return nil, fmt.Errorf("duplicate labor calendar entry for %s", d.Date)
		}
		m[d.Date] = d
	}
	return &LaborCalendar{days: m}, nil
}

// Day returns the labor day for a date, if present
func (c *LaborCalendar) Day(date Date) (*LaborDay, bool) {
	d, ok := c.days[date]
	return d, ok
}

// Dates returns all calendar dates in ascending order
func (c *LaborCalendar) Dates() []Date {
	out := make([]Date, 0, len(c.days))
	for d := range c.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks calendar coverage over the horizon. Missing weekdays
// inside the critical range are a hard error (the plan cannot produce
// enough without them); other gaps come back as warnings, since a missing
// day only zeroes that day's capacity.
func (c *LaborCalendar) Validate(horizon, critical DateRange) ([]string, error) {
	var warnings []string
	var missingCritical []Date
	for d := horizon.Start; d <= horizon.End; d++ {
		if _, ok := c.days[d]; ok {
			continue
		}
		if critical.Contains(d) && !d.IsWeekend() {
			missingCritical = append(missingCritical, d)
			continue
		}
		warnings = append(warnings, fmt.Sprintf("labor calendar has no entry for %s (%s); capacity on that day is zero", d, d.Weekday()))
	}
	if len(missingCritical) > 0 {
		first := missingCritical[0]
		last := missingCritical[len(missingCritical)-1]
		return warnings, fmt.Errorf("%w: weekdays %s..%s fall inside the critical production window %s needed to cover forecast demand",
			ErrMissingLaborDay, first, last, critical)
	}
	return warnings, nil
}
