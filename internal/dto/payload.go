package dto

import (
	"fmt"
	"slices"

	"github.com/prohmpiriya/session-planner/internal/domain"
	"github.com/prohmpiriya/session-planner/internal/planner"
)

// Payload is the serialized session configuration handed to the form owner
type Payload struct {
	Dates  map[string]DatePayload  `json:"dates"`
	Groups map[string]GroupPayload `json:"groups"`
}

// DatePayload holds the parallel time and group lists of one date
type DatePayload struct {
	Times  []string `json:"times"`
	Groups []string `json:"groups"`
}

// GroupPayload is one ticket group's pricing matrix
type GroupPayload struct {
	SeatingAreas []SeatingAreaPayload `json:"seatingAreas"`
}

// SeatingAreaPayload is one seating area with its tiers
type SeatingAreaPayload struct {
	Name  string        `json:"name"`
	Tiers []TierPayload `json:"tiers"`
}

// TierPayload is one pricing tier
type TierPayload struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Price    string `json:"price"`
}

// NewPayload serializes a planner state
func NewPayload(st planner.State) Payload {
	p := Payload{
		Dates:  make(map[string]DatePayload, len(st.Dates)),
		Groups: make(map[string]GroupPayload, len(st.Groups)),
	}
	for _, d := range st.Dates {
		dp := DatePayload{
			Times:  make([]string, len(d.Slots)),
			Groups: make([]string, len(d.Slots)),
		}
		for i, s := range d.Slots {
			dp.Times[i] = s.Time.String()
			dp.Groups[i] = s.Group.String()
		}
		p.Dates[d.Date] = dp
	}
	for _, g := range st.Groups {
		gp := GroupPayload{SeatingAreas: make([]SeatingAreaPayload, len(g.Pricing.SeatingAreas))}
		for i, area := range g.Pricing.SeatingAreas {
			ap := SeatingAreaPayload{Name: area.Name, Tiers: make([]TierPayload, len(area.Tiers))}
			for j, tier := range area.Tiers {
				ap.Tiers[j] = TierPayload{Name: tier.Name, Currency: tier.Currency, Price: tier.Price}
			}
			gp.SeatingAreas[i] = ap
		}
		p.Groups[g.Key.String()] = gp
	}
	return p
}

// ToState converts a payload back into a planner state. Every non-blank time
// is marked edited so autofill never overwrites imported values. Tiers take
// the configuration currency whatever the payload says.
func (p Payload) ToState(currency string, required bool) (planner.State, error) {
	st := planner.State{Required: required, Currency: currency}

	dates := make([]string, 0, len(p.Dates))
	for date := range p.Dates {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	for _, date := range dates {
		dp := p.Dates[date]
		if len(dp.Times) != len(dp.Groups) {
			return planner.State{}, fmt.Errorf("%w: %s has %d times and %d groups",
				domain.ErrSlotArrayMismatch, date, len(dp.Times), len(dp.Groups))
		}
		sd := domain.SessionDate{Date: date, Slots: make([]domain.Slot, len(dp.Times))}
		for i := range dp.Times {
			t := domain.TimeValue(dp.Times[i])
			sd.Slots[i] = domain.Slot{
				Time:   t,
				Edited: !t.IsBlank(),
				Group:  domain.NormalizeGroupKey(dp.Groups[i]),
			}
		}
		st.Dates = append(st.Dates, sd)
	}

	type groupEntry struct {
		key domain.GroupKey
		raw string
	}
	entries := make([]groupEntry, 0, len(p.Groups))
	seen := make(map[domain.GroupKey]bool, len(p.Groups))
	for raw := range p.Groups {
		key := domain.NormalizeGroupKey(raw)
		if seen[key] {
			return planner.State{}, fmt.Errorf("%w: duplicate %q", domain.ErrInvalidGroupKey, key)
		}
		seen[key] = true
		entries = append(entries, groupEntry{key: key, raw: raw})
	}
	slices.SortFunc(entries, func(a, b groupEntry) int {
		switch {
		case a.key.Less(b.key):
			return -1
		case b.key.Less(a.key):
			return 1
		}
		return 0
	})

	for _, e := range entries {
		gp := p.Groups[e.raw]
		if len(gp.SeatingAreas) > domain.MaxSeatingAreas {
			return planner.State{}, fmt.Errorf("%w: group %s has %d seating areas", domain.ErrCapacityExceeded, e.key, len(gp.SeatingAreas))
		}
		g := domain.TicketGroup{Key: e.key}
		for _, ap := range gp.SeatingAreas {
			if len(ap.Tiers) > domain.MaxTiers {
				return planner.State{}, fmt.Errorf("%w: seating area %q has %d tiers", domain.ErrCapacityExceeded, ap.Name, len(ap.Tiers))
			}
			area := domain.SeatingArea{Name: ap.Name}
			for _, tp := range ap.Tiers {
				area.Tiers = append(area.Tiers, domain.PricingTier{Name: tp.Name, Currency: currency, Price: tp.Price})
			}
			if len(area.Tiers) == 0 {
				area.Tiers = []domain.PricingTier{{Currency: currency}}
			}
			g.Pricing.SeatingAreas = append(g.Pricing.SeatingAreas, area)
		}
		if len(g.Pricing.SeatingAreas) == 0 {
			g.Pricing = domain.NewPricingMatrix(currency)
		}
		st.Groups = append(st.Groups, g)
	}

	return st, nil
}
