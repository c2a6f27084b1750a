package planner

import (
	"github.com/prohmpiriya/session-planner/internal/domain"
)

// SlotView is the rendered state of one slot
type SlotView struct {
	Time   string          `json:"time"`
	Edited bool            `json:"edited"`
	Group  domain.GroupKey `json:"group"`
}

// DateView is the rendered state of one session date
type DateView struct {
	Date          string     `json:"date"`
	Weekday       string     `json:"weekday"`
	Slots         []SlotView `json:"slots"`
	CanAddSlot    bool       `json:"can_add_slot"`
	CanRemoveSlot bool       `json:"can_remove_slot"`
}

// GroupView is the rendered state of one ticket group
type GroupView struct {
	Key               domain.GroupKey      `json:"key"`
	Pricing           domain.PricingMatrix `json:"pricing"`
	SlotCount         int                  `json:"slot_count"`
	Deletable         bool                 `json:"deletable"`
	CanAddSeatingArea bool                 `json:"can_add_seating_area"`
	CanAddTier        []bool               `json:"can_add_tier"`
}

// View is everything a renderer needs after an action
type View struct {
	Dates        []DateView      `json:"dates"`
	Groups       []GroupView     `json:"groups"`
	Currency     string          `json:"currency"`
	Editing      domain.GroupKey `json:"editing,omitempty"`
	NextGroupKey domain.GroupKey `json:"next_group_key"`
	Required     bool            `json:"required"`
	Complete     bool            `json:"complete"`
	Problems     []Problem       `json:"problems,omitempty"`
}

// View derives the current view
func (c *Controller) View() View {
	refs := c.store.groupReferences()
	keys := c.registry.Keys()

	v := View{
		Dates:        make([]DateView, 0, c.store.Len()),
		Groups:       make([]GroupView, 0, len(keys)),
		Currency:     c.registry.Currency(),
		NextGroupKey: c.registry.FirstUnusedKey(),
		Required:     c.required,
	}

	for _, date := range c.store.Dates() {
		d := c.store.dates[date]
		dv := DateView{
			Date:          d.Date,
			Weekday:       d.Weekday.String(),
			Slots:         make([]SlotView, len(d.Slots)),
			CanAddSlot:    !d.IsFull(),
			CanRemoveSlot: len(d.Slots) > 1,
		}
		for i, s := range d.Slots {
			dv.Slots[i] = SlotView{Time: s.Time.String(), Edited: s.Edited, Group: s.Group}
		}
		v.Dates = append(v.Dates, dv)
	}

	for _, key := range keys {
		g := c.registry.groups[key]
		gv := GroupView{
			Key:               key,
			Pricing:           g.Pricing.Clone(),
			SlotCount:         refs[key],
			Deletable:         key != domain.DefaultGroupKey && len(keys) > 1,
			CanAddSeatingArea: len(g.Pricing.SeatingAreas) < domain.MaxSeatingAreas,
			CanAddTier:        make([]bool, len(g.Pricing.SeatingAreas)),
		}
		for i, area := range g.Pricing.SeatingAreas {
			gv.CanAddTier[i] = len(area.Tiers) < domain.MaxTiers
		}
		v.Groups = append(v.Groups, gv)
	}

	if key, ok := c.registry.Editing(); ok {
		v.Editing = key
	}

	v.Problems = c.Problems()
	v.Complete = len(v.Problems) == 0
	return v
}
