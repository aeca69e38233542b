package group

import (
	"strings"

	"github.com/pokerbook/pokerbook/pkg/money"
)

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	DefaultBuyIn *float64 `json:"default_buy_in,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	DefaultBuyIn *float64 `json:"default_buy_in,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DefaultBuyIn float64 `json:"default_buy_in"`
	CreatedAt    string  `json:"created_at"`
}

// Validate trims the name and checks field bounds
func (r *CreateGroupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || len(r.Name) > 100 {
		return ErrInvalidName
	}
	if r.DefaultBuyIn != nil && *r.DefaultBuyIn <= 0 {
		return ErrInvalidBuyIn
	}
	return nil
}

// Validate checks the fields that are present
func (r *UpdateGroupRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" || len(trimmed) > 100 {
			return ErrInvalidName
		}
		r.Name = &trimmed
	}
	if r.DefaultBuyIn != nil && *r.DefaultBuyIn <= 0 {
		return ErrInvalidBuyIn
	}
	return nil
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		DefaultBuyIn: money.Round2(g.DefaultBuyIn),
		CreatedAt:    g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
