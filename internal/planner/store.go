package planner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

// CommitResult describes the outcome of a time commit
type CommitResult struct {
	// Accepted is false when the input was malformed and discarded
	Accepted bool
	// Time is the slot's value after the commit
	Time domain.TimeValue
	// Propagated lists the dates autofill copied the value to
	Propagated []string
	// Reordered is true when resorting changed the slot order
	Reordered bool
}

// Store owns the selected session dates and their time slots
type Store struct {
	dates    map[string]*domain.SessionDate
	autofill *Autofill
}

// NewStore creates an empty store with its own autofill engine
func NewStore() *Store {
	s := &Store{
		dates: make(map[string]*domain.SessionDate),
	}
	s.autofill = newAutofill(s)
	return s
}

// Autofill returns the store's autofill engine
func (s *Store) Autofill() *Autofill {
	return s.autofill
}

// Len returns the number of selected dates
func (s *Store) Len() int {
	return len(s.dates)
}

// Dates returns the selected dates in ascending order
func (s *Store) Dates() []string {
	keys := make([]string, 0, len(s.dates))
	for k := range s.dates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Date returns a copy of the session date
func (s *Store) Date(date string) (*domain.SessionDate, bool) {
	d, ok := s.dates[date]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Slot returns the slot at index for date
func (s *Store) Slot(date string, index int) (domain.Slot, error) {
	d, err := s.slotDate(date, index)
	if err != nil {
		return domain.Slot{}, err
	}
	return d.Slots[index], nil
}

// SetSelectedDates replaces the selection. New dates get one autofilled slot
// in the default group; deselected dates are dropped. Malformed date strings
// are ignored.
func (s *Store) SetSelectedDates(dates []string) (added, removed []string) {
	wanted := make(map[string]struct{}, len(dates))
	for _, raw := range dates {
		date := strings.TrimSpace(raw)
		if _, err := domain.ParseDate(date); err != nil {
			continue
		}
		wanted[date] = struct{}{}
	}

	for _, date := range s.Dates() {
		if _, ok := wanted[date]; !ok {
			delete(s.dates, date)
			removed = append(removed, date)
		}
	}

	newDates := make([]string, 0, len(wanted))
	for date := range wanted {
		if _, ok := s.dates[date]; !ok {
			newDates = append(newDates, date)
		}
	}
	slices.Sort(newDates)

	for _, date := range newDates {
		d, err := domain.NewSessionDate(date, domain.Slot{
			Time:  s.autofill.Suggest(date, 0),
			Group: domain.DefaultGroupKey,
		})
		if err != nil {
			continue
		}
		s.dates[date] = d
		added = append(added, date)
	}

	if len(s.dates) == 0 {
		s.autofill.Reset()
	}
	return added, removed
}

// AddSlot inserts a slot after afterIndex. The new slot inherits the group of
// the slot it follows. It is a no-op once the date holds MaxSlotsPerDate slots.
func (s *Store) AddSlot(date string, afterIndex int) bool {
	d, ok := s.dates[date]
	if !ok || d.IsFull() {
		return false
	}
	if afterIndex < -1 || afterIndex >= len(d.Slots) {
		return false
	}

	group := domain.DefaultGroupKey
	if d.HasSlot(afterIndex) && d.Slots[afterIndex].Group != "" {
		group = d.Slots[afterIndex].Group
	}
	at := afterIndex + 1
	slot := domain.Slot{
		Time:  s.autofill.Suggest(date, at),
		Group: group,
	}
	d.Slots = slices.Insert(d.Slots, at, slot)
	return true
}

// RemoveSlot removes the slot at index. A date always keeps at least one slot.
func (s *Store) RemoveSlot(date string, index int) bool {
	d, ok := s.dates[date]
	if !ok || !d.HasSlot(index) || len(d.Slots) <= 1 {
		return false
	}
	d.Slots = slices.Delete(d.Slots, index, index+1)
	return true
}

// CommitTime applies operator input to a slot. Valid input marks the slot as
// edited, propagates through autofill and resorts the date. Malformed input is
// discarded and the slot keeps its last valid value. Empty input clears it.
func (s *Store) CommitTime(date string, index int, raw string) (CommitResult, error) {
	d, err := s.slotDate(date, index)
	if err != nil {
		return CommitResult{}, err
	}

	var result CommitResult
	switch {
	case strings.TrimSpace(raw) == "":
		d.Slots[index].Time = domain.BlankTime
		d.Slots[index].Edited = false
		result.Accepted = true
	default:
		t, err := domain.ParseTime(raw)
		if err != nil {
			// Rejected input reverts to the last valid value, or blank.
			if !d.Slots[index].Time.IsValid() {
				d.Slots[index].Time = domain.BlankTime
			}
			break
		}
		d.Slots[index].Time = t
		d.Slots[index].Edited = true
		result.Accepted = true
		result.Propagated = s.autofill.Propagate(date, index, t)
	}

	result.Time = d.Slots[index].Time
	result.Reordered = s.Resort(date)
	return result, nil
}

// Resort stable-sorts a date's slots by time ascending with blank or invalid
// times last. It reports whether the order changed.
func (s *Store) Resort(date string) bool {
	d, ok := s.dates[date]
	if !ok {
		return false
	}

	order := make([]int, len(d.Slots))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareSlots(d.Slots[a], d.Slots[b])
	})

	changed := false
	for i, from := range order {
		if i != from {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}

	sorted := make([]domain.Slot, len(d.Slots))
	for i, from := range order {
		sorted[i] = d.Slots[from]
	}
	d.Slots = sorted
	return true
}

// compareSlots orders valid times by minutes of day and puts blank or invalid
// times last. Equal keys compare as 0 so a stable sort keeps their order.
func compareSlots(a, b domain.Slot) int {
	am, aok := a.Time.Minutes()
	bm, bok := b.Time.Minutes()
	switch {
	case aok && bok:
		return am - bm
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}

func (s *Store) slotDate(date string, index int) (*domain.SessionDate, error) {
	d, ok := s.dates[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDateNotSelected, date)
	}
	if !d.HasSlot(index) {
		return nil, fmt.Errorf("%w: %s[%d]", domain.ErrSlotNotFound, date, index)
	}
	return d, nil
}

func (s *Store) setGroup(date string, index int, key domain.GroupKey) error {
	d, err := s.slotDate(date, index)
	if err != nil {
		return err
	}
	d.Slots[index].Group = key
	return nil
}

// reassignGroup rewrites every slot pointing at from to point at to
func (s *Store) reassignGroup(from, to domain.GroupKey) int {
	n := 0
	for _, d := range s.dates {
		for i := range d.Slots {
			if d.Slots[i].Group == from {
				d.Slots[i].Group = to
				n++
			}
		}
	}
	return n
}

// groupReferences counts slots per referenced group key
func (s *Store) groupReferences() map[domain.GroupKey]int {
	refs := make(map[domain.GroupKey]int)
	for _, d := range s.dates {
		for _, slot := range d.Slots {
			refs[slot.Group]++
		}
	}
	return refs
}

// put installs a restored session date
func (s *Store) put(d *domain.SessionDate) {
	s.dates[d.Date] = d
}

// mustBeConsistent panics when a mutation left a date in a state no
// operation may produce.
func (s *Store) mustBeConsistent() {
	for date, d := range s.dates {
		if len(d.Slots) == 0 || len(d.Slots) > domain.MaxSlotsPerDate {
			panic(fmt.Sprintf("planner: date %s holds %d slots", date, len(d.Slots)))
		}
		for i, slot := range d.Slots {
			if slot.Group == "" {
				panic(fmt.Sprintf("planner: slot %s[%d] has no ticket group", date, i))
			}
		}
	}
}
