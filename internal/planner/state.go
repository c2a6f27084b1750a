package planner

import (
	"fmt"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

// State is the complete persistable state of a configuration
type State struct {
	Required  bool                 `json:"required"`
	Currency  string               `json:"currency"`
	Dates     []domain.SessionDate `json:"dates"`
	Groups    []domain.TicketGroup `json:"groups"`
	Templates []int                `json:"templates,omitempty"`
	Editing   *EditorState         `json:"editing,omitempty"`
}

// EditorState is the open pricing editor and the matrix it can revert to
type EditorState struct {
	Key      domain.GroupKey      `json:"key"`
	Snapshot domain.PricingMatrix `json:"snapshot"`
}

// Snapshot captures the controller state
func (c *Controller) Snapshot() State {
	st := State{
		Required:  c.required,
		Currency:  c.registry.Currency(),
		Dates:     make([]domain.SessionDate, 0, c.store.Len()),
		Templates: c.store.autofill.Templates(),
	}
	for _, date := range c.store.Dates() {
		st.Dates = append(st.Dates, *c.store.dates[date].Clone())
	}
	for _, key := range c.registry.Keys() {
		st.Groups = append(st.Groups, *c.registry.groups[key].Clone())
	}
	if key, ok := c.registry.Editing(); ok {
		snapshot, _ := c.registry.EditorSnapshot()
		st.Editing = &EditorState{Key: key, Snapshot: snapshot}
	}
	return st
}

// Restore rebuilds a controller from a snapshot. Slots pointing at groups the
// snapshot lacks get those groups created blank.
func Restore(st State) (*Controller, error) {
	c, err := NewController(Options{Currency: st.Currency, Required: st.Required})
	if err != nil {
		return nil, err
	}

	for _, g := range st.Groups {
		if !g.Key.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidGroupKey, g.Key)
		}
		restored := g.Clone()
		restored.Pricing.SetCurrency(c.registry.Currency())
		c.registry.put(restored)
	}

	for _, sd := range st.Dates {
		day, err := domain.ParseDate(sd.Date)
		if err != nil {
			return nil, fmt.Errorf("restore date %q: %w", sd.Date, err)
		}
		if len(sd.Slots) == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoSlots, sd.Date)
		}
		if len(sd.Slots) > domain.MaxSlotsPerDate {
			return nil, fmt.Errorf("%w: %s holds %d slots", domain.ErrCapacityExceeded, sd.Date, len(sd.Slots))
		}
		d := sd.Clone()
		d.Weekday = day.Weekday()
		for i, slot := range d.Slots {
			if !slot.Time.IsBlank() && !slot.Time.IsValid() {
				return nil, fmt.Errorf("%w: %s[%d] %q", domain.ErrInvalidTime, sd.Date, i, slot.Time)
			}
			if slot.Group == "" {
				d.Slots[i].Group = domain.DefaultGroupKey
			}
			if _, err := c.registry.CreateGroup(d.Slots[i].Group); err != nil {
				return nil, err
			}
		}
		c.store.put(d)
	}

	c.store.autofill.restore(st.Templates)

	if st.Editing != nil {
		if _, err := c.registry.OpenEditor(st.Editing.Key); err != nil {
			return nil, err
		}
		c.registry.snapshot = st.Editing.Snapshot.Clone()
		c.registry.snapshot.SetCurrency(c.registry.Currency())
	}

	c.mustBeConsistent()
	return c, nil
}
