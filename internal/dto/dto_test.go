package dto

import (
	"errors"
	"reflect"
	"testing"

	"github.com/prohmpiriya/session-planner/internal/domain"
	"github.com/prohmpiriya/session-planner/internal/planner"
)

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func TestActionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ActionRequest
		want    bool
		wantMsg string
	}{
		{name: "select dates", req: ActionRequest{Type: ActionSelectDates, Dates: []string{}}, want: true},
		{name: "select dates missing", req: ActionRequest{Type: ActionSelectDates}, wantMsg: "Dates is required"},
		{name: "add slot", req: ActionRequest{Type: ActionAddSlot, Date: "2024-01-01", Index: intPtr(0)}, want: true},
		{name: "add slot missing date", req: ActionRequest{Type: ActionAddSlot, Index: intPtr(0)}, wantMsg: "Date is required"},
		{name: "commit time missing index", req: ActionRequest{Type: ActionCommitTime, Date: "2024-01-01"}, wantMsg: "Index is required"},
		{name: "assign group missing group", req: ActionRequest{Type: ActionAssignGroup, Date: "2024-01-01", Index: intPtr(1)}, wantMsg: "Group is required"},
		{name: "create group without key", req: ActionRequest{Type: ActionCreateGroup}, want: true},
		{name: "open editor", req: ActionRequest{Type: ActionOpenEditor, Group: "B"}, want: true},
		{name: "rename area missing area", req: ActionRequest{Type: ActionRenameSeatingArea, Group: "A"}, wantMsg: "Area is required"},
		{name: "commit price missing tier", req: ActionRequest{Type: ActionCommitPrice, Group: "A", Area: intPtr(0)}, wantMsg: "Tier is required"},
		{name: "commit price", req: ActionRequest{Type: ActionCommitPrice, Group: "A", Area: intPtr(0), Tier: intPtr(0), Price: "10"}, want: true},
		{name: "set currency", req: ActionRequest{Type: ActionSetCurrency, Currency: "eur"}, want: true},
		{name: "set currency too long", req: ActionRequest{Type: ActionSetCurrency, Currency: "EURO"}, wantMsg: "Currency must be a 3-letter ISO 4217 code"},
		{name: "set required missing", req: ActionRequest{Type: ActionSetRequired}, wantMsg: "Required is required"},
		{name: "set required", req: ActionRequest{Type: ActionSetRequired, Required: boolPtr(true)}, want: true},
		{name: "missing type", req: ActionRequest{}, wantMsg: "Action type is required"},
		{name: "unknown type", req: ActionRequest{Type: "explode"}, wantMsg: "Unknown action type: explode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := tt.req.Validate()
			if got != tt.want || msg != tt.wantMsg {
				t.Errorf("Validate() = (%v, %q), want (%v, %q)", got, msg, tt.want, tt.wantMsg)
			}
		})
	}
}

func TestCreateDraftRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  CreateDraftRequest
		want bool
	}{
		{name: "empty", req: CreateDraftRequest{}, want: true},
		{name: "currency", req: CreateDraftRequest{Currency: "THB"}, want: true},
		{name: "bad currency", req: CreateDraftRequest{Currency: "BAHT"}},
		{name: "mismatched payload", req: CreateDraftRequest{Payload: &Payload{
			Dates: map[string]DatePayload{"2024-01-01": {Times: []string{"09:00"}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, msg := tt.req.Validate(); got != tt.want {
				t.Errorf("Validate() = (%v, %q), want %v", got, msg, tt.want)
			}
		})
	}
}

func TestDraftListFilter_SetDefaults(t *testing.T) {
	f := DraftListFilter{Limit: 500, Offset: -3}
	f.SetDefaults()
	if f.Limit != 20 || f.Offset != 0 {
		t.Errorf("SetDefaults() = %+v", f)
	}
}

func TestNewPayload(t *testing.T) {
	c, err := planner.NewController(planner.Options{Currency: "USD"})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	mustAct(t)(c.SelectDates([]string{"2024-01-01"}))
	mustAct(t)(c.CommitTime("2024-01-01", 0, "09:30"))
	mustAct(t)(c.AddSlot("2024-01-01", 0))

	p := NewPayload(c.Snapshot())

	d, ok := p.Dates["2024-01-01"]
	if !ok {
		t.Fatalf("payload dates = %v", p.Dates)
	}
	if len(d.Times) != 2 || len(d.Groups) != 2 {
		t.Fatalf("date payload = %+v, want two parallel entries", d)
	}
	if d.Times[0] != "09:30" || d.Groups[0] != "A" || d.Groups[1] != "A" {
		t.Errorf("date payload = %+v", d)
	}

	g, ok := p.Groups["A"]
	if !ok || len(g.SeatingAreas) != 1 || len(g.SeatingAreas[0].Tiers) != 1 {
		t.Fatalf("group payload = %+v", p.Groups)
	}
	if g.SeatingAreas[0].Tiers[0].Currency != "USD" {
		t.Errorf("tier currency = %q, want USD", g.SeatingAreas[0].Tiers[0].Currency)
	}
}

func mustAct(t *testing.T) func(planner.View, error) {
	return func(_ planner.View, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("action: %v", err)
		}
	}
}

func TestPayload_RoundTrip(t *testing.T) {
	p := Payload{
		Dates: map[string]DatePayload{
			"2024-01-01": {Times: []string{"09:30", "14:00"}, Groups: []string{"A", "B"}},
			"2024-01-02": {Times: []string{""}, Groups: []string{"A"}},
		},
		Groups: map[string]GroupPayload{
			"A": {SeatingAreas: []SeatingAreaPayload{{Name: "General", Tiers: []TierPayload{{Name: "Adult", Currency: "USD", Price: "10.00"}}}}},
			"B": {SeatingAreas: []SeatingAreaPayload{{Name: "VIP", Tiers: []TierPayload{{Name: "Adult", Currency: "USD", Price: "25.00"}}}}},
		},
	}

	st, err := p.ToState("USD", true)
	if err != nil {
		t.Fatalf("ToState: %v", err)
	}
	if !st.Dates[0].Slots[0].Edited || st.Dates[1].Slots[0].Edited {
		t.Error("non-blank imported times should be marked edited, blank ones not")
	}

	c, err := planner.Restore(st)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := NewPayload(c.Snapshot()); !reflect.DeepEqual(got, p) {
		t.Errorf("round trip = %+v\nwant %+v", got, p)
	}
	if c.IsComplete() {
		t.Error("a blank time should keep the configuration incomplete")
	}
}

func TestPayload_ToState(t *testing.T) {
	manyAreas := make([]SeatingAreaPayload, domain.MaxSeatingAreas+1)

	tests := []struct {
		name    string
		payload Payload
		wantErr error
	}{
		{
			name: "mismatched arrays",
			payload: Payload{Dates: map[string]DatePayload{
				"2024-01-01": {Times: []string{"09:00", "10:00"}, Groups: []string{"A"}},
			}},
			wantErr: domain.ErrSlotArrayMismatch,
		},
		{
			name:    "duplicate keys after normalizing",
			payload: Payload{Groups: map[string]GroupPayload{"a": {}, "A": {}}},
			wantErr: domain.ErrInvalidGroupKey,
		},
		{
			name:    "too many seating areas",
			payload: Payload{Groups: map[string]GroupPayload{"A": {SeatingAreas: manyAreas}}},
			wantErr: domain.ErrCapacityExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.payload.ToState("USD", false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ToState() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPayload_ToState_NormalizesKeys(t *testing.T) {
	p := Payload{
		Dates:  map[string]DatePayload{"2024-01-01": {Times: []string{"09:00"}, Groups: []string{"b"}}},
		Groups: map[string]GroupPayload{"b": {}},
	}
	st, err := p.ToState("EUR", false)
	if err != nil {
		t.Fatalf("ToState: %v", err)
	}
	if st.Dates[0].Slots[0].Group != "B" || st.Groups[0].Key != "B" {
		t.Errorf("keys not normalized: %+v", st)
	}
	if st.Groups[0].Pricing.SeatingAreas[0].Tiers[0].Currency != "EUR" {
		t.Error("empty group should get a blank matrix in the draft currency")
	}
}

func TestPayload_ToState_UsesConfigurationCurrency(t *testing.T) {
	p := Payload{
		Dates: map[string]DatePayload{"2024-01-01": {Times: []string{"09:00"}, Groups: []string{"A"}}},
		Groups: map[string]GroupPayload{"A": {SeatingAreas: []SeatingAreaPayload{{
			Name:  "Stalls",
			Tiers: []TierPayload{{Name: "Adult", Currency: "EUR", Price: "25.00"}},
		}}}},
	}
	st, err := p.ToState("USD", true)
	if err != nil {
		t.Fatalf("ToState: %v", err)
	}

	ctrl, err := planner.Restore(st)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	g, ok := ctrl.Registry().Group("A")
	if !ok {
		t.Fatal("group A missing after restore")
	}
	if got := g.Pricing.SeatingAreas[0].Tiers[0].Currency; got != "USD" {
		t.Errorf("tier currency = %s, want USD", got)
	}
	if !ctrl.IsComplete() {
		t.Errorf("imported configuration should be complete: %+v", ctrl.Problems())
	}
}
