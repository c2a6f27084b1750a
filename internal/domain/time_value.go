package domain

import (
	"fmt"
	"strings"
)

// MinutesPerDay is 24 hours * 60 minutes
const MinutesPerDay = 24 * 60

// TimeValue is a local time of day in canonical "HH:MM" form.
// The zero value is the blank time.
type TimeValue string

// BlankTime is the empty time value
const BlankTime TimeValue = ""

// ParseTime parses user input into a canonical TimeValue.
// Accepted forms: "H:MM", "HH:MM", "HMM", "HHMM", "H", "HH" ("." may replace ":").
func ParseTime(raw string) (TimeValue, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return BlankTime, ErrInvalidTime
	}
	s = strings.Replace(s, ".", ":", 1)

	var hourPart, minPart string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hourPart, minPart = s[:i], s[i+1:]
		if len(minPart) != 2 {
			return BlankTime, ErrInvalidTime
		}
	} else {
		switch len(s) {
		case 1, 2:
			hourPart, minPart = s, "00"
		case 3, 4:
			hourPart, minPart = s[:len(s)-2], s[len(s)-2:]
		default:
			return BlankTime, ErrInvalidTime
		}
	}
	if len(hourPart) == 0 || len(hourPart) > 2 {
		return BlankTime, ErrInvalidTime
	}

	hour, ok := atoiDigits(hourPart)
	if !ok || hour > 23 {
		return BlankTime, ErrInvalidTime
	}
	minute, ok := atoiDigits(minPart)
	if !ok || minute > 59 {
		return BlankTime, ErrInvalidTime
	}
	return TimeFromMinutes(hour*60 + minute), nil
}

// TimeFromMinutes converts minutes from midnight into a TimeValue
func TimeFromMinutes(mins int) TimeValue {
	mins = ((mins % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return TimeValue(fmt.Sprintf("%02d:%02d", mins/60, mins%60))
}

// IsBlank reports whether the value is empty
func (t TimeValue) IsBlank() bool {
	return t == BlankTime
}

// IsValid reports whether the value is a well-formed canonical "HH:MM"
func (t TimeValue) IsValid() bool {
	_, ok := t.Minutes()
	return ok
}

// Minutes returns the minutes from midnight. ok is false for blank or
// malformed values.
func (t TimeValue) Minutes() (int, bool) {
	s := string(t)
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	hour, ok := atoiDigits(s[:2])
	if !ok || hour > 23 {
		return 0, false
	}
	minute, ok := atoiDigits(s[3:])
	if !ok || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// String returns the string representation of TimeValue
func (t TimeValue) String() string {
	return string(t)
}

func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
