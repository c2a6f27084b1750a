package domain

import (
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used for session dates
const DateLayout = "2006-01-02"

// Capacity limits
const (
	MaxSlotsPerDate = 10
)

// Slot is one time slot of a session date
type Slot struct {
	Time   TimeValue `json:"time"`
	Edited bool      `json:"edited"` // set once an operator typed a value; blocks autofill
	Group  GroupKey  `json:"group"`
}

// SessionDate holds the ordered time slots of one selected calendar date
type SessionDate struct {
	Date    string       `json:"date"`
	Weekday time.Weekday `json:"-"`
	Slots   []Slot       `json:"slots"`
}

// NewSessionDate creates a session date with a single slot
func NewSessionDate(date string, first Slot) (*SessionDate, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if first.Group == "" {
		first.Group = DefaultGroupKey
	}
	return &SessionDate{
		Date:    date,
		Weekday: day.Weekday(),
		Slots:   []Slot{first},
	}, nil
}

// ParseDate parses an ISO date string (YYYY-MM-DD)
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// HasSlot reports whether index addresses an existing slot
func (d *SessionDate) HasSlot(index int) bool {
	return index >= 0 && index < len(d.Slots)
}

// IsFull reports whether the date reached its slot capacity
func (d *SessionDate) IsFull() bool {
	return len(d.Slots) >= MaxSlotsPerDate
}

// Clone returns a deep copy of the session date
func (d *SessionDate) Clone() *SessionDate {
	out := *d
	out.Slots = append([]Slot(nil), d.Slots...)
	return &out
}
