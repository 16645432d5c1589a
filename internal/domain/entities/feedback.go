package entities

import "time"

// Feedback captures a user's rating of a completed search. Feedback is
// logged for analysis only and never persisted.
type Feedback struct {
	SearchID  string    `json:"searchId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
