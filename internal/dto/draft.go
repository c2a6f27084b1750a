package dto

import (
	"strings"
	"time"

	"github.com/prohmpiriya/session-planner/internal/planner"
)

// CreateDraftRequest represents the request to start a session configuration
type CreateDraftRequest struct {
	Currency string `json:"currency"` // ISO 4217, defaults to the service currency
	Required *bool  `json:"required"`
	// Payload optionally seeds the draft from a previously serialized configuration
	Payload *Payload `json:"payload,omitempty"`
}

// Validate validates the CreateDraftRequest
func (r *CreateDraftRequest) Validate() (bool, string) {
	if c := strings.TrimSpace(r.Currency); c != "" && len(c) != 3 {
		return false, "Currency must be a 3-letter ISO 4217 code"
	}
	if r.Payload != nil {
		for date, d := range r.Payload.Dates {
			if len(d.Times) != len(d.Groups) {
				return false, "Times and groups of " + date + " must have the same length"
			}
		}
	}
	return true, ""
}

// DraftResponse represents a session configuration draft
type DraftResponse struct {
	ID        string       `json:"id"`
	Version   int64        `json:"version"`
	CreatedBy string       `json:"created_by,omitempty"`
	View      planner.View `json:"view"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// CompletenessResponse reports whether a draft can be submitted
type CompletenessResponse struct {
	DraftID  string            `json:"draft_id"`
	Required bool              `json:"required"`
	Complete bool              `json:"complete"`
	Problems []planner.Problem `json:"problems"`
}

// DraftListFilter represents filters for listing drafts
type DraftListFilter struct {
	CreatedBy string `form:"-"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// SetDefaults sets default values for pagination
func (f *DraftListFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// FormatTime renders timestamps the way every response does
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
