package player

import "time"

// Player is a member of a group who can take part in sessions
type Player struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
