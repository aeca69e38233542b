package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new group into the database
func (r *Repository) Create(ctx context.Context, name string, defaultBuyIn float64) (*Group, error) {
	query := `
		INSERT INTO groups (id, name, default_buy_in)
		VALUES ($1, $2, $3)
		RETURNING id, name, default_buy_in, created_at
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), name, defaultBuyIn).Scan(
		&group.ID,
		&group.Name,
		&group.DefaultBuyIn,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, name, default_buy_in, created_at
		FROM groups
		WHERE id = $1
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.DefaultBuyIn,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// DefaultBuyIn returns the starting stack amount configured for a group
func (r *Repository) DefaultBuyIn(ctx context.Context, groupID string) (float64, error) {
	var amount float64
	err := r.db.QueryRowContext(ctx, `SELECT default_buy_in FROM groups WHERE id = $1`, groupID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrGroupNotFound
		}
		return 0, fmt.Errorf("failed to get default buy-in: %w", err)
	}
	return amount, nil
}

// List retrieves a page of groups, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Group, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT id, name, default_buy_in, created_at
		FROM groups
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*Group{}
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.DefaultBuyIn,
			&group.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, total, nil
}

// Update modifies an existing group
func (r *Repository) Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
		    default_buy_in = COALESCE($3, default_buy_in)
		WHERE id = $1
		RETURNING id, name, default_buy_in, created_at
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id, req.Name, req.DefaultBuyIn).Scan(
		&group.ID,
		&group.Name,
		&group.DefaultBuyIn,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}
