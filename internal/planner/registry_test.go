package planner

import (
	"errors"
	"testing"

	"github.com/prohmpiriya/session-planner/internal/domain"
)

func newTestRegistry(t *testing.T, dates ...string) (*Store, *Registry) {
	t.Helper()
	s := NewStore()
	s.SetSelectedDates(dates)
	return s, NewRegistry(s, "USD")
}

func TestRegistry_FirstUnusedKey(t *testing.T) {
	_, r := newTestRegistry(t)
	if got := r.FirstUnusedKey(); got != "B" {
		t.Fatalf("FirstUnusedKey() = %s, want B", got)
	}

	for n := 1; n < 26; n++ {
		if _, err := r.CreateGroup(domain.GroupKeyAt(n)); err != nil {
			t.Fatalf("CreateGroup: %v", err)
		}
	}
	if got := r.FirstUnusedKey(); got != "AA" {
		t.Errorf("FirstUnusedKey() after Z = %s, want AA", got)
	}

	if _, err := r.DeleteGroup("C"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if got := r.FirstUnusedKey(); got != "C" {
		t.Errorf("FirstUnusedKey() after freeing C = %s, want C", got)
	}
}

func TestRegistry_CreateGroup(t *testing.T) {
	_, r := newTestRegistry(t)

	g, err := r.CreateGroup("B")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if len(g.Pricing.SeatingAreas) != 1 || len(g.Pricing.SeatingAreas[0].Tiers) != 1 {
		t.Errorf("new group matrix = %+v, want one area with one tier", g.Pricing)
	}
	if g.Pricing.SeatingAreas[0].Tiers[0].Currency != "USD" {
		t.Errorf("tier currency = %q, want USD", g.Pricing.SeatingAreas[0].Tiers[0].Currency)
	}

	if _, err := r.OpenEditor("B"); err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if err := r.RenameSeatingArea("B", 0, "Stalls"); err != nil {
		t.Fatalf("RenameSeatingArea: %v", err)
	}
	again, err := r.CreateGroup("B")
	if err != nil {
		t.Fatalf("CreateGroup again: %v", err)
	}
	if again.Pricing.SeatingAreas[0].Name != "Stalls" {
		t.Error("creating an existing group must not reset it")
	}

	for _, key := range []domain.GroupKey{"", "b", "A1", "Ä"} {
		if _, err := r.CreateGroup(key); !errors.Is(err, domain.ErrInvalidGroupKey) {
			t.Errorf("CreateGroup(%q) error = %v, want ErrInvalidGroupKey", key, err)
		}
	}
}

func TestRegistry_DeleteGroup(t *testing.T) {
	s, r := newTestRegistry(t, monday, tuesday)
	s.AddSlot(monday, 0)

	for _, ref := range []struct {
		date  string
		index int
	}{{monday, 0}, {monday, 1}, {tuesday, 0}} {
		if err := r.Assign(ref.date, ref.index, "B"); err != nil {
			t.Fatalf("Assign: %v", err)
		}
	}
	if _, err := r.OpenEditor("B"); err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	moved, err := r.DeleteGroup("B")
	if err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if moved != 3 {
		t.Errorf("moved = %d, want 3", moved)
	}
	if refs := s.groupReferences(); refs["A"] != 3 || refs["B"] != 0 {
		t.Errorf("references = %v, want all on A", refs)
	}
	if _, ok := r.Editing(); ok {
		t.Error("deleting a group must close its editor")
	}
	if _, ok := r.Group("B"); ok {
		t.Error("group B still exists")
	}
	if _, ok := r.Group("A"); !ok {
		t.Error("default group A must survive deletions")
	}

	tests := []struct {
		key  domain.GroupKey
		want error
	}{
		{"A", domain.ErrDefaultGroup},
		{"Q", domain.ErrGroupNotFound},
	}
	for _, tt := range tests {
		if _, err := r.DeleteGroup(tt.key); !errors.Is(err, tt.want) {
			t.Errorf("DeleteGroup(%s) error = %v, want %v", tt.key, err, tt.want)
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_AssignCreatesGroup(t *testing.T) {
	s, r := newTestRegistry(t, monday)

	if err := r.Assign(monday, 0, "D"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, ok := r.Group("D"); !ok {
		t.Error("Assign should create group D")
	}
	slot, _ := s.Slot(monday, 0)
	if slot.Group != "D" {
		t.Errorf("slot group = %s, want D", slot.Group)
	}

	if err := r.Assign(tuesday, 0, "B"); !errors.Is(err, domain.ErrDateNotSelected) {
		t.Errorf("Assign on unselected date error = %v", err)
	}
	if _, ok := r.Group("B"); ok {
		t.Error("failed Assign must not create a group")
	}
}

func TestRegistry_EditorRevert(t *testing.T) {
	_, r := newTestRegistry(t)

	if _, err := r.OpenEditor("A"); err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if _, err := r.CommitPrice("A", 0, 0, "10"); err != nil {
		t.Fatalf("CommitPrice: %v", err)
	}
	if err := r.CommitEditor(); err != nil {
		t.Fatalf("CommitEditor: %v", err)
	}

	snapshot, _ := r.OpenEditor("A")
	if _, err := r.CommitPrice("A", 0, 0, "99.5"); err != nil {
		t.Fatalf("CommitPrice: %v", err)
	}
	if _, err := r.AddSeatingArea("A"); err != nil {
		t.Fatalf("AddSeatingArea: %v", err)
	}
	if err := r.RevertEditor("A", snapshot); err != nil {
		t.Fatalf("RevertEditor: %v", err)
	}

	g, _ := r.Group("A")
	if len(g.Pricing.SeatingAreas) != 1 {
		t.Errorf("areas = %d after revert, want 1", len(g.Pricing.SeatingAreas))
	}
	if price := g.Pricing.SeatingAreas[0].Tiers[0].Price; price != "10.00" {
		t.Errorf("price = %q after revert, want 10.00", price)
	}
	if _, ok := r.Editing(); ok {
		t.Error("revert must close the editor")
	}
}

func TestRegistry_SingleOpenEditor(t *testing.T) {
	_, r := newTestRegistry(t)
	if _, err := r.CreateGroup("B"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if _, err := r.OpenEditor("A"); err != nil {
		t.Fatalf("OpenEditor(A): %v", err)
	}
	if err := r.RenameTier("A", 0, 0, "Adult"); err != nil {
		t.Fatalf("RenameTier: %v", err)
	}
	if _, err := r.OpenEditor("B"); err != nil {
		t.Fatalf("OpenEditor(B): %v", err)
	}

	if key, _ := r.Editing(); key != "B" {
		t.Errorf("Editing() = %s, want B", key)
	}
	g, _ := r.Group("A")
	if g.Pricing.SeatingAreas[0].Tiers[0].Name != "Adult" {
		t.Error("force-closed editor must keep its edits")
	}
	if err := r.RenameTier("A", 0, 0, "Child"); !errors.Is(err, domain.ErrEditorNotOpen) {
		t.Errorf("mutating a closed editor error = %v, want ErrEditorNotOpen", err)
	}
	if _, err := r.OpenEditor("Z"); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("OpenEditor(Z) error = %v, want ErrGroupNotFound", err)
	}
}

func TestRegistry_EditorRequiresOpen(t *testing.T) {
	_, r := newTestRegistry(t)

	calls := map[string]func() error{
		"AddSeatingArea":    func() error { _, err := r.AddSeatingArea("A"); return err },
		"RemoveSeatingArea": func() error { _, err := r.RemoveSeatingArea("A", 0); return err },
		"RenameSeatingArea": func() error { return r.RenameSeatingArea("A", 0, "x") },
		"AddTier":           func() error { _, err := r.AddTier("A", 0); return err },
		"RemoveTier":        func() error { _, err := r.RemoveTier("A", 0, 0); return err },
		"RenameTier":        func() error { return r.RenameTier("A", 0, 0, "x") },
		"CommitPrice":       func() error { _, err := r.CommitPrice("A", 0, 0, "1"); return err },
		"CommitEditor":      r.CommitEditor,
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, domain.ErrEditorNotOpen) {
			t.Errorf("%s error = %v, want ErrEditorNotOpen", name, err)
		}
	}
}

func TestRegistry_Capacity(t *testing.T) {
	_, r := newTestRegistry(t)
	if _, err := r.OpenEditor("A"); err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	for i := 0; i < domain.MaxSeatingAreas+3; i++ {
		if _, err := r.AddSeatingArea("A"); err != nil {
			t.Fatalf("AddSeatingArea: %v", err)
		}
	}
	for i := 0; i < domain.MaxTiers+3; i++ {
		if _, err := r.AddTier("A", 0); err != nil {
			t.Fatalf("AddTier: %v", err)
		}
	}

	g, _ := r.Group("A")
	if n := len(g.Pricing.SeatingAreas); n != domain.MaxSeatingAreas {
		t.Errorf("areas = %d, want %d", n, domain.MaxSeatingAreas)
	}
	if n := len(g.Pricing.SeatingAreas[0].Tiers); n != domain.MaxTiers {
		t.Errorf("tiers = %d, want %d", n, domain.MaxTiers)
	}

	for i := 0; i < domain.MaxSeatingAreas+3; i++ {
		if _, err := r.RemoveSeatingArea("A", 0); err != nil {
			t.Fatalf("RemoveSeatingArea: %v", err)
		}
	}
	for i := 0; i < domain.MaxTiers+3; i++ {
		if _, err := r.RemoveTier("A", 0, 0); err != nil {
			t.Fatalf("RemoveTier: %v", err)
		}
	}
	g, _ = r.Group("A")
	if len(g.Pricing.SeatingAreas) != 1 || len(g.Pricing.SeatingAreas[0].Tiers) != 1 {
		t.Errorf("matrix = %+v, want one area with one tier", g.Pricing)
	}

	if _, err := r.RemoveTier("A", 0, 4); !errors.Is(err, domain.ErrTierNotFound) {
		t.Errorf("RemoveTier out of range error = %v", err)
	}
	if _, err := r.AddTier("A", 7); !errors.Is(err, domain.ErrSeatingAreaNotFound) {
		t.Errorf("AddTier out of range error = %v", err)
	}
}

func TestRegistry_CommitPrice(t *testing.T) {
	_, r := newTestRegistry(t)
	if _, err := r.OpenEditor("A"); err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	tests := []struct {
		raw          string
		wantAccepted bool
		wantPrice    string
	}{
		{"1,234.5", true, "1234.50"},
		{"abc", false, "1234.50"},
		{"-3", false, "1234.50"},
		{"0", true, "0.00"},
		{"1e1000000", false, "0.00"},
		{"", true, ""},
	}
	for _, tt := range tests {
		accepted, err := r.CommitPrice("A", 0, 0, tt.raw)
		if err != nil {
			t.Fatalf("CommitPrice(%q): %v", tt.raw, err)
		}
		g, _ := r.Group("A")
		price := g.Pricing.SeatingAreas[0].Tiers[0].Price
		if accepted != tt.wantAccepted || price != tt.wantPrice {
			t.Errorf("CommitPrice(%q) = %v, price %q; want %v, %q", tt.raw, accepted, price, tt.wantAccepted, tt.wantPrice)
		}
	}
}

func TestRegistry_SetCurrency(t *testing.T) {
	_, r := newTestRegistry(t)
	if _, err := r.CreateGroup("B"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if err := r.SetCurrency("eur"); err != nil {
		t.Fatalf("SetCurrency: %v", err)
	}
	if r.Currency() != "EUR" {
		t.Errorf("Currency() = %s, want EUR", r.Currency())
	}
	for _, key := range r.Keys() {
		g, _ := r.Group(key)
		if c := g.Pricing.SeatingAreas[0].Tiers[0].Currency; c != "EUR" {
			t.Errorf("group %s tier currency = %s, want EUR", key, c)
		}
	}

	if err := r.SetCurrency("EURO"); !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Errorf("SetCurrency(EURO) error = %v, want ErrInvalidCurrency", err)
	}
	if r.Currency() != "EUR" {
		t.Error("failed SetCurrency must keep the previous currency")
	}
}
