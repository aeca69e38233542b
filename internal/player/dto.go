package player

import "strings"

// CreatePlayerRequest represents the request body for adding a player to a group
type CreatePlayerRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// PlayerResponse represents the response for a single player
type PlayerResponse struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Validate trims the name and checks its length
func (r *CreatePlayerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || len(r.Name) > 100 {
		return ErrInvalidName
	}
	return nil
}

// ToResponse converts a Player model to a PlayerResponse DTO
func (p *Player) ToResponse() *PlayerResponse {
	return &PlayerResponse{
		ID:        p.ID,
		GroupID:   p.GroupID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
