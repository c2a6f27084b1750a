package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Capacity limits for a pricing matrix
const (
	MaxSeatingAreas = 10
	MaxTiers        = 10
)

// PricingTier is one named price within a seating area
type PricingTier struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Price    string `json:"price"`
}

// SeatingArea is a named group of pricing tiers
type SeatingArea struct {
	Name  string        `json:"name"`
	Tiers []PricingTier `json:"tiers"`
}

// PricingMatrix maps seating areas to pricing tiers for one ticket group
type PricingMatrix struct {
	SeatingAreas []SeatingArea `json:"seating_areas"`
}

// NewPricingMatrix returns a matrix with one blank seating area and one blank tier
func NewPricingMatrix(currency string) PricingMatrix {
	return PricingMatrix{
		SeatingAreas: []SeatingArea{NewSeatingArea(currency)},
	}
}

// NewSeatingArea returns a blank seating area with one blank tier
func NewSeatingArea(currency string) SeatingArea {
	return SeatingArea{
		Tiers: []PricingTier{{Currency: currency}},
	}
}

// Clone returns a deep copy of the matrix
func (m PricingMatrix) Clone() PricingMatrix {
	out := PricingMatrix{
		SeatingAreas: make([]SeatingArea, len(m.SeatingAreas)),
	}
	for i, area := range m.SeatingAreas {
		out.SeatingAreas[i] = SeatingArea{
			Name:  area.Name,
			Tiers: append([]PricingTier(nil), area.Tiers...),
		}
	}
	return out
}

// Tier returns a pointer to the tier at (area, tier)
func (m *PricingMatrix) Tier(area, tier int) (*PricingTier, error) {
	if area < 0 || area >= len(m.SeatingAreas) {
		return nil, ErrSeatingAreaNotFound
	}
	tiers := m.SeatingAreas[area].Tiers
	if tier < 0 || tier >= len(tiers) {
		return nil, ErrTierNotFound
	}
	return &tiers[tier], nil
}

// SetCurrency relabels every tier with the given currency
func (m *PricingMatrix) SetCurrency(code string) {
	for i := range m.SeatingAreas {
		for j := range m.SeatingAreas[i].Tiers {
			m.SeatingAreas[i].Tiers[j].Currency = code
		}
	}
}

// Prices are plain decimals: no sign, no exponent, at most 12 integer and 12
// fractional digits once thousands separators are removed.
var pricePattern = regexp.MustCompile(`^\d{1,12}(\.\d{1,12})?$`)

// NormalizePrice parses a user entered price and formats it with exactly two
// fractional digits. Thousands separators and surrounding spaces are ignored.
func NormalizePrice(raw string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if !pricePattern.MatchString(s) {
		return "", ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return "", ErrInvalidPrice
	}
	return d.StringFixed(2), nil
}

// IsNumericPrice reports whether s is a non-negative decimal in the accepted
// price format. It does not parse or round the value.
func IsNumericPrice(s string) bool {
	return pricePattern.MatchString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// NormalizeCurrency validates an ISO 4217 code and returns it upper-cased
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}
