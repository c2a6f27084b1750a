package planner

import (
	"fmt"
	"strings"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

// Rule names a completeness rule
type Rule string

const (
	RuleNoDates         Rule = "no_dates"
	RuleInvalidTime     Rule = "invalid_time"
	RuleMissingGroup    Rule = "missing_group"
	RuleUnknownGroup    Rule = "unknown_group"
	RuleEmptyMatrix     Rule = "empty_matrix"
	RuleMissingAreaName Rule = "missing_area_name"
	RuleMissingTierName Rule = "missing_tier_name"
	RuleMissingCurrency Rule = "missing_currency"
	RuleInvalidPrice    Rule = "invalid_price"
)

// Problem locates one failed completeness rule. Location fields that do not
// apply to the rule are left at their zero value; Slot, Area and Tier are -1
// when not applicable.
type Problem struct {
	Rule    Rule            `json:"rule"`
	Date    string          `json:"date,omitempty"`
	Slot    int             `json:"slot"`
	Group   domain.GroupKey `json:"group,omitempty"`
	Area    int             `json:"area"`
	Tier    int             `json:"tier"`
	Message string          `json:"message"`
}

// IsComplete reports whether the configuration satisfies every completeness
// rule. An optional field with no dates is complete.
func IsComplete(store *Store, registry *Registry, required bool) bool {
	return len(Problems(store, registry, required)) == 0
}

// Problems returns every failed completeness rule in date, slot, group order
func Problems(store *Store, registry *Registry, required bool) []Problem {
	if store.Len() == 0 {
		if !required {
			return nil
		}
		return []Problem{{
			Rule: RuleNoDates, Slot: -1, Area: -1, Tier: -1,
			Message: "select at least one session date",
		}}
	}

	var problems []Problem
	referenced := make(map[domain.GroupKey]bool)
	var groupOrder []domain.GroupKey

	for _, date := range store.Dates() {
		d := store.dates[date]
		for i, slot := range d.Slots {
			if _, ok := slot.Time.Minutes(); !ok {
				problems = append(problems, Problem{
					Rule: RuleInvalidTime, Date: date, Slot: i, Area: -1, Tier: -1,
					Message: fmt.Sprintf("%s slot %d needs a time in HH:MM format", date, i+1),
				})
			}
			if slot.Group == "" {
				problems = append(problems, Problem{
					Rule: RuleMissingGroup, Date: date, Slot: i, Area: -1, Tier: -1,
					Message: fmt.Sprintf("%s slot %d has no ticket group", date, i+1),
				})
				continue
			}
			if !referenced[slot.Group] {
				referenced[slot.Group] = true
				groupOrder = append(groupOrder, slot.Group)
			}
		}
	}

	for _, key := range groupOrder {
		g, ok := registry.groups[key]
		if !ok {
			problems = append(problems, Problem{
				Rule: RuleUnknownGroup, Slot: -1, Group: key, Area: -1, Tier: -1,
				Message: fmt.Sprintf("ticket group %s does not exist", key),
			})
			continue
		}
		problems = append(problems, matrixProblems(key, g.Pricing)...)
	}
	return problems
}

func matrixProblems(key domain.GroupKey, m domain.PricingMatrix) []Problem {
	if len(m.SeatingAreas) == 0 {
		return []Problem{{
			Rule: RuleEmptyMatrix, Slot: -1, Group: key, Area: -1, Tier: -1,
			Message: fmt.Sprintf("ticket group %s has no seating areas", key),
		}}
	}

	var problems []Problem
	add := func(rule Rule, area, tier int, msg string) {
		problems = append(problems, Problem{
			Rule: rule, Slot: -1, Group: key, Area: area, Tier: tier,
			Message: fmt.Sprintf("ticket group %s: %s", key, msg),
		})
	}

	for a, area := range m.SeatingAreas {
		if strings.TrimSpace(area.Name) == "" {
			add(RuleMissingAreaName, a, -1, fmt.Sprintf("seating area %d needs a name", a+1))
		}
		if len(area.Tiers) == 0 {
			add(RuleEmptyMatrix, a, -1, fmt.Sprintf("seating area %d has no tiers", a+1))
			continue
		}
		for t, tier := range area.Tiers {
			if strings.TrimSpace(tier.Name) == "" {
				add(RuleMissingTierName, a, t, fmt.Sprintf("tier %d of seating area %d needs a name", t+1, a+1))
			}
			if strings.TrimSpace(tier.Currency) == "" {
				add(RuleMissingCurrency, a, t, fmt.Sprintf("tier %d of seating area %d needs a currency", t+1, a+1))
			}
			if strings.TrimSpace(tier.Price) == "" || !domain.IsNumericPrice(tier.Price) {
				add(RuleInvalidPrice, a, t, fmt.Sprintf("tier %d of seating area %d needs a numeric price", t+1, a+1))
			}
		}
	}
	return problems
}
