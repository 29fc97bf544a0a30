package feature

import "time"

// EventType classifies a history entry.
type EventType string

const (
	EventCreated         EventType = "feature-created"
	EventEnabled         EventType = "feature-enabled"
	EventDisabled        EventType = "feature-disabled"
	EventUpdated         EventType = "feature-updated"
	EventStrategyUpdated EventType = "strategy-updated"
	EventStrategyAdded   EventType = "strategy-added"
	EventStrategyRemoved EventType = "strategy-removed"
	EventArchived        EventType = "feature-archived"
	EventRevived         EventType = "feature-revived"
)

// Event records one change applied to a toggle.
type Event struct {
	ID        string    `json:"id"`
	Toggle    string    `json:"toggle"`
	Type      EventType `json:"type"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
