package dto

import (
	"strings"

	"github.com/prohmpiriya/session-planner/internal/planner"
)

// ActionType names one discrete operator action on a draft
type ActionType string

const (
	ActionSelectDates       ActionType = "select_dates"
	ActionAddSlot           ActionType = "add_slot"
	ActionRemoveSlot        ActionType = "remove_slot"
	ActionCommitTime        ActionType = "commit_time"
	ActionAssignGroup       ActionType = "assign_group"
	ActionCreateGroup       ActionType = "create_group"
	ActionDeleteGroup       ActionType = "delete_group"
	ActionOpenEditor        ActionType = "open_editor"
	ActionCommitEditor      ActionType = "commit_editor"
	ActionRevertEditor      ActionType = "revert_editor"
	ActionAddSeatingArea    ActionType = "add_seating_area"
	ActionRemoveSeatingArea ActionType = "remove_seating_area"
	ActionRenameSeatingArea ActionType = "rename_seating_area"
	ActionAddTier           ActionType = "add_tier"
	ActionRemoveTier        ActionType = "remove_tier"
	ActionRenameTier        ActionType = "rename_tier"
	ActionCommitPrice       ActionType = "commit_price"
	ActionSetCurrency       ActionType = "set_currency"
	ActionSetRequired       ActionType = "set_required"
)

// ActionRequest carries one action. Only the fields its type needs are read.
type ActionRequest struct {
	Type ActionType `json:"type"`
	// ExpectedVersion, when non-zero, must equal the draft's current version
	ExpectedVersion int64 `json:"expected_version,omitempty"`

	Dates []string `json:"dates,omitempty"`
	Date  string   `json:"date,omitempty"`
	Index *int     `json:"index,omitempty"`
	Time  string   `json:"time,omitempty"`

	Group string `json:"group,omitempty"`
	Area  *int   `json:"area,omitempty"`
	Tier  *int   `json:"tier,omitempty"`
	Name  string `json:"name,omitempty"`
	Price string `json:"price,omitempty"`

	Currency string `json:"currency,omitempty"`
	Required *bool  `json:"required,omitempty"`
}

// Validate checks that the fields required by the action type are present
func (r *ActionRequest) Validate() (bool, string) {
	needDate := func() (bool, string) {
		if strings.TrimSpace(r.Date) == "" {
			return false, "Date is required"
		}
		return true, ""
	}
	needIndex := func() (bool, string) {
		if ok, msg := needDate(); !ok {
			return ok, msg
		}
		if r.Index == nil {
			return false, "Index is required"
		}
		return true, ""
	}
	needGroup := func() (bool, string) {
		if strings.TrimSpace(r.Group) == "" {
			return false, "Group is required"
		}
		return true, ""
	}
	needArea := func() (bool, string) {
		if ok, msg := needGroup(); !ok {
			return ok, msg
		}
		if r.Area == nil {
			return false, "Area is required"
		}
		return true, ""
	}
	needTier := func() (bool, string) {
		if ok, msg := needArea(); !ok {
			return ok, msg
		}
		if r.Tier == nil {
			return false, "Tier is required"
		}
		return true, ""
	}

	switch r.Type {
	case ActionSelectDates:
		if r.Dates == nil {
			return false, "Dates is required"
		}
		return true, ""
	case ActionAddSlot, ActionRemoveSlot, ActionCommitTime:
		return needIndex()
	case ActionAssignGroup:
		if ok, msg := needIndex(); !ok {
			return ok, msg
		}
		return needGroup()
	case ActionCreateGroup, ActionCommitEditor, ActionRevertEditor:
		return true, ""
	case ActionDeleteGroup, ActionOpenEditor, ActionAddSeatingArea:
		return needGroup()
	case ActionRemoveSeatingArea, ActionRenameSeatingArea, ActionAddTier:
		return needArea()
	case ActionRemoveTier, ActionRenameTier, ActionCommitPrice:
		return needTier()
	case ActionSetCurrency:
		if len(strings.TrimSpace(r.Currency)) != 3 {
			return false, "Currency must be a 3-letter ISO 4217 code"
		}
		return true, ""
	case ActionSetRequired:
		if r.Required == nil {
			return false, "Required is required"
		}
		return true, ""
	case "":
		return false, "Action type is required"
	default:
		return false, "Unknown action type: " + string(r.Type)
	}
}

// ActionResponse is the view after an action was applied
type ActionResponse struct {
	DraftID string       `json:"draft_id"`
	Version int64        `json:"version"`
	View    planner.View `json:"view"`
}
