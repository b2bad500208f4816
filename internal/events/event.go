package events

import "time"

const (
	TypeUserRegistered = "user_registered"
	TypeUserLoggedIn   = "user_logged_in"
	TypeProfileUpdated = "profile_updated"
	TypePlanGenerated  = "plan_generated"
	TypePlanDeleted    = "plan_deleted"
)

type Event struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	At     time.Time      `json:"at"`
	Data   map[string]any `json:"data,omitempty"`
}

func NewEvent(typ, userID string, data map[string]any) Event {
	return Event{Type: typ, UserID: userID, At: time.Now().UTC(), Data: data}
}
