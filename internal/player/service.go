package player

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrNameTaken      = errors.New("a player with this name already exists in the group")
	ErrInvalidName    = errors.New("player name must be between 1 and 100 characters")
)

// Service handles player business logic
type Service struct {
	repo *Repository
}

// NewService creates a new player service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a player to a group
func (s *Service) Create(ctx context.Context, groupID string, req *CreatePlayerRequest) (*Player, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, groupID, req.Name)
}

// GetByID retrieves a player of a group
func (s *Service) GetByID(ctx context.Context, groupID, id string) (*Player, error) {
	player, err := s.repo.GetByID(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// ListByGroup retrieves every player of a group
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*Player, error) {
	return s.repo.ListByGroup(ctx, groupID)
}
