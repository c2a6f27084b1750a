package planner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

// Registry owns the ticket groups, their assignment to slots, the shared
// currency and the single open pricing editor.
type Registry struct {
	store    *Store
	groups   map[domain.GroupKey]*domain.TicketGroup
	currency string

	// editing is the group whose editor is open; snapshot is its matrix as
	// it was when the editor opened.
	editing  *domain.GroupKey
	snapshot domain.PricingMatrix
}

// NewRegistry creates a registry holding the default group
func NewRegistry(store *Store, currency string) *Registry {
	r := &Registry{
		store:    store,
		groups:   make(map[domain.GroupKey]*domain.TicketGroup),
		currency: currency,
	}
	r.groups[domain.DefaultGroupKey] = domain.NewTicketGroup(domain.DefaultGroupKey, currency)
	return r
}

// Currency returns the currency shared by every tier
func (r *Registry) Currency() string {
	return r.currency
}

// SetCurrency validates an ISO 4217 code and relabels every tier with it
func (r *Registry) SetCurrency(code string) error {
	normalized, err := domain.NormalizeCurrency(code)
	if err != nil {
		return err
	}
	r.currency = normalized
	for _, g := range r.groups {
		g.Pricing.SetCurrency(normalized)
	}
	if r.editing != nil {
		r.snapshot.SetCurrency(normalized)
	}
	return nil
}

// Keys returns the group keys in allocation order
func (r *Registry) Keys() []domain.GroupKey {
	keys := make([]domain.GroupKey, 0, len(r.groups))
	for k := range r.groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b domain.GroupKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return keys
}

// Group returns a copy of the group
func (r *Registry) Group(key domain.GroupKey) (*domain.TicketGroup, bool) {
	g, ok := r.groups[key]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// Len returns the number of groups
func (r *Registry) Len() int {
	return len(r.groups)
}

// FirstUnusedKey returns the first free key of A..Z, AA, AB, ...
func (r *Registry) FirstUnusedKey() domain.GroupKey {
	for n := 0; ; n++ {
		key := domain.GroupKeyAt(n)
		if _, ok := r.groups[key]; !ok {
			return key
		}
	}
}

// CreateGroup registers a group. Creating an existing key returns it unchanged.
func (r *Registry) CreateGroup(key domain.GroupKey) (*domain.TicketGroup, error) {
	if !key.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidGroupKey, key)
	}
	if g, ok := r.groups[key]; ok {
		return g.Clone(), nil
	}
	g := domain.NewTicketGroup(key, r.currency)
	r.groups[key] = g
	return g.Clone(), nil
}

// DeleteGroup removes a group and points its slots at the default group. The
// default group and the last remaining group cannot be deleted.
func (r *Registry) DeleteGroup(key domain.GroupKey) (int, error) {
	if _, ok := r.groups[key]; !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, key)
	}
	if key == domain.DefaultGroupKey {
		return 0, domain.ErrDefaultGroup
	}
	if len(r.groups) <= 1 {
		return 0, domain.ErrLastGroup
	}

	if r.editing != nil && *r.editing == key {
		r.closeEditor()
	}
	delete(r.groups, key)
	return r.store.reassignGroup(key, domain.DefaultGroupKey), nil
}

// Assign points a slot at a group, creating the group when needed
func (r *Registry) Assign(date string, index int, key domain.GroupKey) error {
	if _, err := r.store.Slot(date, index); err != nil {
		return err
	}
	if _, err := r.CreateGroup(key); err != nil {
		return err
	}
	return r.store.setGroup(date, index, key)
}

// OpenEditor opens the pricing editor of a group and returns a snapshot of its
// matrix. Any other open editor is closed, keeping its edits.
func (r *Registry) OpenEditor(key domain.GroupKey) (domain.PricingMatrix, error) {
	g, ok := r.groups[key]
	if !ok {
		return domain.PricingMatrix{}, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, key)
	}
	if r.editing != nil && *r.editing == key {
		return r.snapshot.Clone(), nil
	}
	r.closeEditor()

	k := key
	r.editing = &k
	r.snapshot = g.Pricing.Clone()
	return r.snapshot.Clone(), nil
}

// Editing returns the group whose editor is open
func (r *Registry) Editing() (domain.GroupKey, bool) {
	if r.editing == nil {
		return "", false
	}
	return *r.editing, true
}

// EditorSnapshot returns the matrix captured when the open editor was opened
func (r *Registry) EditorSnapshot() (domain.PricingMatrix, bool) {
	if r.editing == nil {
		return domain.PricingMatrix{}, false
	}
	return r.snapshot.Clone(), true
}

// CommitEditor keeps the live edits and closes the editor
func (r *Registry) CommitEditor() error {
	if r.editing == nil {
		return domain.ErrEditorNotOpen
	}
	r.closeEditor()
	return nil
}

// RevertEditor restores a group's matrix from snapshot and closes its editor
func (r *Registry) RevertEditor(key domain.GroupKey, snapshot domain.PricingMatrix) error {
	if r.editing == nil || *r.editing != key {
		return fmt.Errorf("%w: %s", domain.ErrEditorNotOpen, key)
	}
	g, ok := r.groups[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, key)
	}
	g.Pricing = snapshot.Clone()
	r.closeEditor()
	return nil
}

// AddSeatingArea appends a blank seating area. No-op at capacity.
func (r *Registry) AddSeatingArea(key domain.GroupKey) (bool, error) {
	m, err := r.editable(key)
	if err != nil {
		return false, err
	}
	if len(m.SeatingAreas) >= domain.MaxSeatingAreas {
		return false, nil
	}
	m.SeatingAreas = append(m.SeatingAreas, domain.NewSeatingArea(r.currency))
	return true, nil
}

// RemoveSeatingArea removes a seating area. The last one is kept.
func (r *Registry) RemoveSeatingArea(key domain.GroupKey, area int) (bool, error) {
	m, err := r.editable(key)
	if err != nil {
		return false, err
	}
	if area < 0 || area >= len(m.SeatingAreas) {
		return false, domain.ErrSeatingAreaNotFound
	}
	if len(m.SeatingAreas) <= 1 {
		return false, nil
	}
	m.SeatingAreas = slices.Delete(m.SeatingAreas, area, area+1)
	return true, nil
}

// RenameSeatingArea sets a seating area's name
func (r *Registry) RenameSeatingArea(key domain.GroupKey, area int, name string) error {
	m, err := r.editable(key)
	if err != nil {
		return err
	}
	if area < 0 || area >= len(m.SeatingAreas) {
		return domain.ErrSeatingAreaNotFound
	}
	m.SeatingAreas[area].Name = strings.TrimSpace(name)
	return nil
}

// AddTier appends a blank tier to a seating area. No-op at capacity.
func (r *Registry) AddTier(key domain.GroupKey, area int) (bool, error) {
	m, err := r.editable(key)
	if err != nil {
		return false, err
	}
	if area < 0 || area >= len(m.SeatingAreas) {
		return false, domain.ErrSeatingAreaNotFound
	}
	if len(m.SeatingAreas[area].Tiers) >= domain.MaxTiers {
		return false, nil
	}
	m.SeatingAreas[area].Tiers = append(m.SeatingAreas[area].Tiers, domain.PricingTier{Currency: r.currency})
	return true, nil
}

// RemoveTier removes a tier. A seating area keeps at least one tier.
func (r *Registry) RemoveTier(key domain.GroupKey, area, tier int) (bool, error) {
	m, err := r.editable(key)
	if err != nil {
		return false, err
	}
	if _, err := m.Tier(area, tier); err != nil {
		return false, err
	}
	if len(m.SeatingAreas[area].Tiers) <= 1 {
		return false, nil
	}
	m.SeatingAreas[area].Tiers = slices.Delete(m.SeatingAreas[area].Tiers, tier, tier+1)
	return true, nil
}

// RenameTier sets a tier's name
func (r *Registry) RenameTier(key domain.GroupKey, area, tier int, name string) error {
	m, err := r.editable(key)
	if err != nil {
		return err
	}
	t, err := m.Tier(area, tier)
	if err != nil {
		return err
	}
	t.Name = strings.TrimSpace(name)
	return nil
}

// CommitPrice normalizes and stores a tier price. Malformed input is
// discarded and the previous price kept; accepted reports which happened.
func (r *Registry) CommitPrice(key domain.GroupKey, area, tier int, raw string) (bool, error) {
	m, err := r.editable(key)
	if err != nil {
		return false, err
	}
	t, err := m.Tier(area, tier)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(raw) == "" {
		t.Price = ""
		return true, nil
	}
	price, err := domain.NormalizePrice(raw)
	if err != nil {
		return false, nil
	}
	t.Price = price
	return true, nil
}

func (r *Registry) editable(key domain.GroupKey) (*domain.PricingMatrix, error) {
	if r.editing == nil || *r.editing != key {
		return nil, fmt.Errorf("%w: %s", domain.ErrEditorNotOpen, key)
	}
	g, ok := r.groups[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, key)
	}
	return &g.Pricing, nil
}

func (r *Registry) closeEditor() {
	r.editing = nil
	r.snapshot = domain.PricingMatrix{}
}

// put installs a restored group
func (r *Registry) put(g *domain.TicketGroup) {
	r.groups[g.Key] = g
}
