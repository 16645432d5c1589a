package entities

import "time"

// SearchEventType identifies the kind of search lifecycle event.
type SearchEventType string

const (
	// SearchEventCompleted fires after a result is assembled and cached.
	SearchEventCompleted SearchEventType = "search.completed"
)

// SearchEvent is published on the event bus after a search finishes.
type SearchEvent struct {
	ID            string          `json:"id"`
	Type          SearchEventType `json:"type"`
	SearchID      string          `json:"search_id"`
	Urgency       Urgency         `json:"urgency"`
	Specialties   []string        `json:"specialties"`
	ProviderCount int             `json:"provider_count"`
	CacheHit      bool            `json:"cache_hit"`
	Timestamp     time.Time       `json:"timestamp"`
}
