// Package timeframe resolves named date filters and explicit bounds into
// concrete, inclusive time windows. All arithmetic happens in UTC.
package timeframe

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

// Filter names a predefined date range.
type Filter string

const (
	FilterNone        Filter = ""
	FilterPastWeek    Filter = "past_week"
	FilterLastMonth   Filter = "last_month"
	FilterLast3Months Filter = "last_3_months"
	FilterCustom      Filter = "custom"
)

// Filters lists every recognised filter name in display order.
var Filters = []Filter{FilterPastWeek, FilterLastMonth, FilterLast3Months, FilterCustom}

// Label returns a human-readable name for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterNone:
		return "All Time"
	case FilterPastWeek:
		return "Past Week"
	case FilterLastMonth:
		return "Last Month"
	case FilterLast3Months:
		return "Last 90 Days"
	case FilterCustom:
		return "Custom Range"
	}

	return "Unknown"
}

const (
	pastWeekDays    = 7
	last3MonthsDays = 90
)

var (
	ErrUnknownFilter  = fmt.Errorf("%w: unknown filter", apperr.ErrValidation)
	ErrMissingBound   = fmt.Errorf("%w: missing bound", apperr.ErrValidation)
	ErrMalformedBound = fmt.Errorf("%w: malformed instant", apperr.ErrValidation)
	ErrInvertedWindow = fmt.Errorf("%w: start is after end", apperr.ErrValidation)
	ErrMalformedMonth = fmt.Errorf("%w: malformed month", apperr.ErrValidation)
)

// Window is a closed interval [Start, End]. A nil bound is unbounded.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}

	if w.End != nil && t.After(*w.End) {
		return false
	}

	return true
}

// Unbounded reports whether the window places no restriction on dates.
func (w Window) Unbounded() bool {
	return w.Start == nil && w.End == nil
}

// Params is the raw, caller-supplied filter specification.
type Params struct {
	Filter string
	Start  string
	End    string
}

// Resolve turns p into a concrete window relative to now.
// Explicit Start/End values override the bounds computed from the named filter.
func Resolve(p Params, now time.Time) (Window, error) {
	now = now.UTC()

	var w Window

	filter := Filter(strings.TrimSpace(p.Filter))
	startStr := strings.TrimSpace(p.Start)
	endStr := strings.TrimSpace(p.End)

	switch filter {
	case FilterNone:
	case FilterPastWeek:
		w = Window{Start: new(now.AddDate(0, 0, -pastWeekDays)), End: new(now)}
	case FilterLast3Months:
		w = Window{Start: new(now.AddDate(0, 0, -last3MonthsDays)), End: new(now)}
	case FilterLastMonth:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		w = MonthWindow(firstOfMonth.AddDate(0, 0, -1))
	case FilterCustom:
		if startStr == "" {
			return Window{}, fmt.Errorf("%w: custom filter requires start_date", ErrMissingBound)
		}

		if endStr == "" {
			return Window{}, fmt.Errorf("%w: custom filter requires end_date", ErrMissingBound)
		}
	default:
		return Window{}, fmt.Errorf("%w %q: must be one of %s", ErrUnknownFilter, p.Filter, filterNames())
	}

	if startStr != "" {
		start, err := parseInstant(startStr, false)
		if err != nil {
			return Window{}, fmt.Errorf("%w: start_date %q", ErrMalformedBound, startStr)
		}

		w.Start = &start
	}

	if endStr != "" {
		end, err := parseInstant(endStr, true)
		if err != nil {
			return Window{}, fmt.Errorf("%w: end_date %q", ErrMalformedBound, endStr)
		}

		w.End = &end
	}

	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return Window{}, ErrInvertedWindow
	}

	return w, nil
}

// MonthWindow returns the full calendar month containing t:
// the first day at 00:00:00 through the last day at 23:59:59 UTC.
func MonthWindow(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	return Window{Start: &start, End: &end}
}

// MonthKey formats t as "YYYY-MM" in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// ParseMonth parses a "YYYY-MM" key into the first instant of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: use YYYY-MM", ErrMalformedMonth, s)
	}

	return t, nil
}

const monthLayout = "2006-01"

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseInstant parses an ISO-8601 instant. Values without an offset are taken as UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := parseInstant(strings.TrimSpace(s), false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: use ISO-8601 (YYYY-MM-DDTHH:MM:SSZ)", ErrMalformedBound, s)
	}

	return t, nil
}

// parseInstant parses s into a UTC instant. A bare date marks the start of
// that day, or its last second when endOfDay is set.
func parseInstant(s string, endOfDay bool) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}

	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}

	return t, nil
}

func filterNames() string {
	names := make([]string, len(Filters))
	for i, f := range Filters {
		names[i] = string(f)
	}

	return strings.Join(names, ", ")
}
