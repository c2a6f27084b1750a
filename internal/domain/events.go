package domain

import "time"

// SessionConfigEventType represents the type of a session configuration event
type SessionConfigEventType string

const (
	SessionConfigEventCreated SessionConfigEventType = "session_config.created"
	SessionConfigEventChanged SessionConfigEventType = "session_config.changed"
	SessionConfigEventDeleted SessionConfigEventType = "session_config.deleted"
)

// SessionConfigEvent announces a new version of a draft configuration
type SessionConfigEvent struct {
	EventID    string                 `json:"event_id"`
	EventType  SessionConfigEventType `json:"event_type"`
	DraftID    string                 `json:"draft_id"`
	Version    int64                  `json:"version"`
	Action     string                 `json:"action,omitempty"`
	Required   bool                   `json:"required"`
	Complete   bool                   `json:"complete"`
	DateCount  int                    `json:"date_count"`
	GroupCount int                    `json:"group_count"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Key partitions events by draft so one draft's versions stay ordered
func (e *SessionConfigEvent) Key() string {
	return e.DraftID
}
