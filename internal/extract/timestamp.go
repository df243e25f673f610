package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the access-log timestamp without its zone offset.
// The day accepts one or two digits. Hours, minutes and seconds with a
// single digit are accepted by ParseTimestamp as well.
const TimestampLayout = "_2/Jan/2006:15:04:05"

// ParseError reports a timestamp that does not conform to TimestampLayout.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing timestamp %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseTimestamp parses a bracketed access-log timestamp such as
// "10/Oct/2000:13:55:36 +0000". Anything after the first space is
// discarded, so the result is in UTC regardless of the offset.
func ParseTimestamp(raw string) (time.Time, error) {
	clean, _, _ := strings.Cut(raw, " ")
	t, err := time.Parse(TimestampLayout, clean)
	if err == nil {
		return t, nil
	}
	if t, ok := parseShortFields(clean); ok {
		return t, nil
	}
	return time.Time{}, &ParseError{Value: raw, Err: err}
}

var errField = errors.New("bad field")

// parseShortFields handles "d/Mon/yyyy:h:m:s" where any numeric field
// except the year may have a single digit.
func parseShortFields(s string) (time.Time, bool) {
	date, clock, ok := strings.Cut(s, ":")
	if !ok {
		return time.Time{}, false
	}
	d := strings.Split(date, "/")
	c := strings.Split(clock, ":")
	if len(d) != 3 || len(c) != 3 {
		return time.Time{}, false
	}

	month, ok := parseMonth(d[1])
	if !ok {
		return time.Time{}, false
	}

	day, err1 := shortField(d[0], 31)
	hour, err2 := shortField(c[0], 23)
	minute, err3 := shortField(c[1], 59)
	sec, err4 := shortField(c[2], 59)
	if err := errors.Join(err1, err2, err3, err4); err != nil || len(d[2]) != 4 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(d[2])
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		// Out of range for the month, e.g. 31/Jun.
		return time.Time{}, false
	}
	return t, true
}

func shortField(s string, maxValue int) (int, error) {
	if len(s) < 1 || len(s) > 2 {
		return 0, errField
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > maxValue {
		return 0, errField
	}
	return n, nil
}

func parseMonth(s string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()[:3]) {
			return m, true
		}
	}
	return 0, false
}
