package group

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrInvalidName   = errors.New("group name must be between 1 and 100 characters")
	ErrInvalidBuyIn  = errors.New("default buy-in must be positive")
)

// Service handles group business logic
type Service struct {
	repo *Repository
}

// NewService creates a new group service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new group
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	buyIn := DefaultBuyIn
	if req.DefaultBuyIn != nil {
		buyIn = *req.DefaultBuyIn
	}

	return s.repo.Create(ctx, req.Name, buyIn)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// List retrieves a page of groups
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update modifies an existing group
func (s *Service) Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}
