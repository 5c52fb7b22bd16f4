// Package audit records credential lifecycle events. Events carry no
// secrets: usernames and outcomes only, never passwords, hashes or reset
// tokens.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle event.
type EventType string

const (
	EventSignup         EventType = "auth.signup"
	EventLogin          EventType = "auth.login"
	EventLoginFailed    EventType = "auth.login_failed"
	EventLogout         EventType = "auth.logout"
	EventForgotPassword EventType = "auth.forgot_password"
	EventResetPassword  EventType = "auth.reset_password"
)

// Event is one audit record.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Username  string            `json:"username,omitempty"`
	UserID    int64             `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// NewEvent stamps an event with an ID and timestamp.
func NewEvent(eventType EventType, username string, userID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Username:  username,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}
