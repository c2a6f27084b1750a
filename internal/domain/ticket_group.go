package domain

import "strings"

// GroupKey identifies a ticket group: "A".."Z", then "AA", "AB", ...
type GroupKey string

// DefaultGroupKey is the group every new slot is assigned to
const DefaultGroupKey GroupKey = "A"

// IsValid reports whether the key is a non-empty run of uppercase ASCII letters
func (k GroupKey) IsValid() bool {
	if k == "" {
		return false
	}
	for _, r := range string(k) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// String returns the string representation of GroupKey
func (k GroupKey) String() string {
	return string(k)
}

// Less orders keys by allocation sequence (shorter keys first, then alphabetically)
func (k GroupKey) Less(other GroupKey) bool {
	if len(k) != len(other) {
		return len(k) < len(other)
	}
	return k < other
}

// NormalizeGroupKey upper-cases and trims a user supplied key
func NormalizeGroupKey(s string) GroupKey {
	return GroupKey(strings.ToUpper(strings.TrimSpace(s)))
}

// GroupKeyAt returns the n-th key (0-based) of the bijective base-26 sequence
// A, B, ..., Z, AA, AB, ..., AZ, BA, ...
func GroupKeyAt(n int) GroupKey {
	if n < 0 {
		return ""
	}
	var buf []byte
	for n >= 0 {
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n = n/26 - 1
	}
	return GroupKey(buf)
}

// TicketGroup is a named, reusable pricing matrix referenced by slots
type TicketGroup struct {
	Key     GroupKey      `json:"key"`
	Pricing PricingMatrix `json:"pricing"`
}

// NewTicketGroup creates a group with one blank seating area holding one blank tier
func NewTicketGroup(key GroupKey, currency string) *TicketGroup {
	return &TicketGroup{
		Key:     key,
		Pricing: NewPricingMatrix(currency),
	}
}

// Clone returns a deep copy of the group
func (g *TicketGroup) Clone() *TicketGroup {
	return &TicketGroup{
		Key:     g.Key,
		Pricing: g.Pricing.Clone(),
	}
}
