package planner

import (
	"fmt"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

// DefaultCurrency is used when a configuration starts without a currency
const DefaultCurrency = "USD"

// Options configures a new Controller
type Options struct {
	Currency string
	Required bool
}

// Controller orchestrates one session configuration. Every action runs to
// completion, re-derives the View and notifies the change listeners.
type Controller struct {
	store     *Store
	registry  *Registry
	required  bool
	listeners []func(View)
}

// NewController creates an empty configuration
func NewController(opts Options) (*Controller, error) {
	code := opts.Currency
	if code == "" {
		code = DefaultCurrency
	}
	currency, err := domain.NormalizeCurrency(code)
	if err != nil {
		return nil, err
	}
	store := NewStore()
	return &Controller{
		store:    store,
		registry: NewRegistry(store, currency),
		required: opts.Required,
	}, nil
}

// OnChange registers a listener fired after every action
func (c *Controller) OnChange(fn func(View)) {
	c.listeners = append(c.listeners, fn)
}

// Store returns the underlying session store
func (c *Controller) Store() *Store { return c.store }

// Registry returns the underlying ticket group registry
func (c *Controller) Registry() *Registry { return c.registry }

// Required reports whether the configuration must hold at least one date
func (c *Controller) Required() bool { return c.required }

// IsComplete reports whether the configuration passes every completeness rule
func (c *Controller) IsComplete() bool {
	return IsComplete(c.store, c.registry, c.required)
}

// Problems lists the failing completeness rules
func (c *Controller) Problems() []Problem {
	return Problems(c.store, c.registry, c.required)
}

// SelectDates replaces the selected dates
func (c *Controller) SelectDates(dates []string) (View, error) {
	return c.run(func() error {
		c.store.SetSelectedDates(dates)
		return nil
	})
}

// AddSlot inserts a slot after afterIndex on date
func (c *Controller) AddSlot(date string, afterIndex int) (View, error) {
	return c.run(func() error {
		if _, ok := c.store.dates[date]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrDateNotSelected, date)
		}
		c.store.AddSlot(date, afterIndex)
		return nil
	})
}

// RemoveSlot removes the slot at index on date
func (c *Controller) RemoveSlot(date string, index int) (View, error) {
	return c.run(func() error {
		if _, err := c.store.slotDate(date, index); err != nil {
			return err
		}
		c.store.RemoveSlot(date, index)
		return nil
	})
}

// CommitTime applies operator time input to a slot
func (c *Controller) CommitTime(date string, index int, raw string) (View, error) {
	return c.run(func() error {
		_, err := c.store.CommitTime(date, index, raw)
		return err
	})
}

// AssignGroup points a slot at a ticket group, creating the group if needed
func (c *Controller) AssignGroup(date string, index int, key domain.GroupKey) (View, error) {
	return c.run(func() error {
		return c.registry.Assign(date, index, key)
	})
}

// CreateGroup creates a ticket group. An empty key allocates the first
// unused one.
func (c *Controller) CreateGroup(key domain.GroupKey) (View, error) {
	return c.run(func() error {
		if key == "" {
			key = c.registry.FirstUnusedKey()
		}
		_, err := c.registry.CreateGroup(key)
		return err
	})
}

// DeleteGroup deletes a ticket group, moving its slots to the default group
func (c *Controller) DeleteGroup(key domain.GroupKey) (View, error) {
	return c.run(func() error {
		_, err := c.registry.DeleteGroup(key)
		return err
	})
}

// OpenEditor opens the pricing editor of a group
func (c *Controller) OpenEditor(key domain.GroupKey) (View, error) {
	return c.run(func() error {
		_, err := c.registry.OpenEditor(key)
		return err
	})
}

// CommitEditor closes the open editor keeping its edits
func (c *Controller) CommitEditor() (View, error) {
	return c.run(c.registry.CommitEditor)
}

// RevertEditor restores the open editor's group to its state when the editor
// was opened, then closes it
func (c *Controller) RevertEditor() (View, error) {
	return c.run(func() error {
		key, ok := c.registry.Editing()
		if !ok {
			return domain.ErrEditorNotOpen
		}
		snapshot, _ := c.registry.EditorSnapshot()
		return c.registry.RevertEditor(key, snapshot)
	})
}

// AddSeatingArea appends a seating area to the open editor's matrix
func (c *Controller) AddSeatingArea(key domain.GroupKey) (View, error) {
	return c.run(func() error {
		_, err := c.registry.AddSeatingArea(key)
		return err
	})
}

// RemoveSeatingArea removes a seating area from the open editor's matrix
func (c *Controller) RemoveSeatingArea(key domain.GroupKey, area int) (View, error) {
	return c.run(func() error {
		_, err := c.registry.RemoveSeatingArea(key, area)
		return err
	})
}

// RenameSeatingArea renames a seating area
func (c *Controller) RenameSeatingArea(key domain.GroupKey, area int, name string) (View, error) {
	return c.run(func() error {
		return c.registry.RenameSeatingArea(key, area, name)
	})
}

// AddTier appends a tier to a seating area
func (c *Controller) AddTier(key domain.GroupKey, area int) (View, error) {
	return c.run(func() error {
		_, err := c.registry.AddTier(key, area)
		return err
	})
}

// RemoveTier removes a tier from a seating area
func (c *Controller) RemoveTier(key domain.GroupKey, area, tier int) (View, error) {
	return c.run(func() error {
		_, err := c.registry.RemoveTier(key, area, tier)
		return err
	})
}

// RenameTier renames a tier
func (c *Controller) RenameTier(key domain.GroupKey, area, tier int, name string) (View, error) {
	return c.run(func() error {
		return c.registry.RenameTier(key, area, tier, name)
	})
}

// CommitPrice applies operator price input to a tier
func (c *Controller) CommitPrice(key domain.GroupKey, area, tier int, raw string) (View, error) {
	return c.run(func() error {
		_, err := c.registry.CommitPrice(key, area, tier, raw)
		return err
	})
}

// SetCurrency changes the currency of every tier
func (c *Controller) SetCurrency(code string) (View, error) {
	return c.run(func() error {
		return c.registry.SetCurrency(code)
	})
}

// SetRequired toggles whether at least one date is needed for completeness
func (c *Controller) SetRequired(required bool) (View, error) {
	return c.run(func() error {
		c.required = required
		return nil
	})
}

func (c *Controller) run(action func() error) (View, error) {
	if err := action(); err != nil {
		return c.View(), err
	}
	c.mustBeConsistent()

	view := c.View()
	for _, fn := range c.listeners {
		fn(view)
	}
	return view, nil
}

func (c *Controller) mustBeConsistent() {
	c.store.mustBeConsistent()
	if _, ok := c.registry.groups[domain.DefaultGroupKey]; !ok {
		panic("planner: default ticket group is missing")
	}
	for key := range c.store.groupReferences() {
		if _, ok := c.registry.groups[key]; !ok {
			panic(fmt.Sprintf("planner: slots reference unknown ticket group %s", key))
		}
	}
}
