package engine

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the calendar-date format accepted on booking forms.
const dateLayout = "2006-01-02"

// clockLayouts are the time-of-day formats accepted on booking forms,
// tried in order: 24h first, then 12h with AM/PM.  Input is upper-cased
// before matching so "2:30pm" parses as well as "2:30 PM".
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"03:04 PM",
	"03:04PM",
}

// ResolveInterval normalizes a calendar date plus two time-of-day
// strings into a comparable half-open UTC interval [start, end).
// Either 24h ("14:30") or 12h ("2:30 PM") representations are
// accepted.  It returns ErrInvalidTimeFormat when a string cannot be
// parsed and ErrInvalidInterval when end <= start; intervals are
// rejected at creation rather than silently accepted.
func ResolveInterval(date, timeFrom, timeTo string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidTimeFormat, date)
	}
	from, err := parseClock(timeFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseClock(timeTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := day.Add(from)
	end := day.Add(to)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s to %s", ErrInvalidInterval, timeFrom, timeTo)
	}
	return start, end, nil
}

// parseClock converts a time-of-day string into an offset from
// midnight.
func parseClock(s string) (time.Duration, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
}
