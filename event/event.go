// Package event computes calendar events, such as public holidays, that can be turned into
// control columns for the attribution model.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"
)

var ErrUnknownCountry = errors.New("unknown holiday country")

var calendars = map[string][]*cal.Holiday{
	"ca": ca.Holidays,
	"gb": gb.Holidays,
	"us": us.Holidays,
}

// Countries returns the supported country codes in sorted order
func Countries() []string {
	codes := make([]string, 0, len(calendars))
	for c := range calendars {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Event is a named half open span [Start, End)
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{Name: name, Start: start, End: end}
}

// Overlaps reports whether the event intersects [start, end)
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

// CountryHolidays returns every observed public holiday of country between start and end, sorted
// by start time. The country code is case insensitive.
func CountryHolidays(country string, start, end time.Time) ([]Event, error) {
	hols, ok := calendars[strings.ToLower(country)]
	if !ok {
		return nil, fmt.Errorf("got %q, expected one of %v, %w", country, Countries(), ErrUnknownCountry)
	}

	var events []Event
	for _, h := range hols {
		events = append(events, Holiday(h, start, end)...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// Holiday returns a one day event for each year the holiday is observed within [start, end]. The
// observed calendar date is placed at midnight in the location of start.
func Holiday(h *cal.Holiday, start, end time.Time) []Event {
	loc := start.Location()

	var events []Event
	for year := start.Year(); year <= end.Year(); year++ {
		_, obs := h.Calc(year)
		if obs.IsZero() {
			continue
		}
		day := time.Date(obs.Year(), obs.Month(), obs.Day(), 0, 0, 0, 0, loc)
		if day.Before(start) || day.After(end) {
			continue
		}
		events = append(events, Event{
			Name:  strings.ReplaceAll(h.Name, " ", "_") + "_" + fmt.Sprint(year),
			Start: day,
			End:   day.AddDate(0, 0, 1),
		})
	}
	return events
}
