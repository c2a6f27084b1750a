package planner

import (
	"slices"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

// Autofill suggests and propagates slot times across dates.
//
// The first value committed at a slot index becomes that index's template and
// is copied to every other date. Later commits at the same index only reach
// dates falling on the same weekday as the edited date. Slots an operator has
// typed into are never overwritten.
type Autofill struct {
	store     *Store
	templates map[int]bool
}

func newAutofill(store *Store) *Autofill {
	return &Autofill{
		store:     store,
		templates: make(map[int]bool),
	}
}

// Suggest returns the value for slot index of date, preferring another date
// with the same weekday, then any other date, else blank.
func (a *Autofill) Suggest(date string, slotIndex int) domain.TimeValue {
	day, err := domain.ParseDate(date)
	if err != nil {
		return domain.BlankTime
	}
	weekday := day.Weekday()

	var fallback domain.TimeValue
	for _, other := range a.store.Dates() {
		if other == date {
			continue
		}
		d := a.store.dates[other]
		if !d.HasSlot(slotIndex) || !d.Slots[slotIndex].Time.IsValid() {
			continue
		}
		value := d.Slots[slotIndex].Time
		if d.Weekday == weekday {
			return value
		}
		if fallback.IsBlank() {
			fallback = value
		}
	}
	return fallback
}

// Propagate copies a committed value to peer dates and returns the dates that
// were updated.
func (a *Autofill) Propagate(sourceDate string, slotIndex int, value domain.TimeValue) []string {
	source, ok := a.store.dates[sourceDate]
	if !ok {
		return nil
	}

	sameWeekdayOnly := a.templates[slotIndex]
	a.templates[slotIndex] = true

	var updated []string
	for _, other := range a.store.Dates() {
		if other == sourceDate {
			continue
		}
		d := a.store.dates[other]
		if sameWeekdayOnly && d.Weekday != source.Weekday {
			continue
		}
		if !d.HasSlot(slotIndex) || d.Slots[slotIndex].Edited {
			continue
		}
		if d.Slots[slotIndex].Time == value {
			continue
		}
		d.Slots[slotIndex].Time = value
		updated = append(updated, other)
	}
	return updated
}

// TemplateEstablished reports whether a value was already committed at slotIndex
func (a *Autofill) TemplateEstablished(slotIndex int) bool {
	return a.templates[slotIndex]
}

// Templates returns the slot indexes with an established template, ascending
func (a *Autofill) Templates() []int {
	out := make([]int, 0, len(a.templates))
	for i, ok := range a.templates {
		if ok {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}

// Reset forgets every established template
func (a *Autofill) Reset() {
	clear(a.templates)
}

func (a *Autofill) restore(indexes []int) {
	a.Reset()
	for _, i := range indexes {
		if i >= 0 {
			a.templates[i] = true
		}
	}
}
