package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pokerbook/pokerbook/internal/group"
)

// Postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Repository handles player data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new player repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new player into a group
func (r *Repository) Create(ctx context.Context, groupID, name string) (*Player, error) {
	query := `
		INSERT INTO players (id, group_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, name, created_at
	`

	player := &Player{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), groupID, name).Scan(
		&player.ID,
		&player.GroupID,
		&player.Name,
		&player.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case uniqueViolation:
				return nil, ErrNameTaken
			case foreignKeyViolation:
				return nil, group.ErrGroupNotFound
			}
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// GetByID retrieves a player of a group by ID
func (r *Repository) GetByID(ctx context.Context, groupID, id string) (*Player, error) {
	query := `
		SELECT id, group_id, name, created_at
		FROM players
		WHERE id = $1 AND group_id = $2
	`

	player := &Player{}
	err := r.db.QueryRowContext(ctx, query, id, groupID).Scan(
		&player.ID,
		&player.GroupID,
		&player.Name,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// ListByGroup retrieves every player of a group ordered by name
func (r *Repository) ListByGroup(ctx context.Context, groupID string) ([]*Player, error) {
	query := `
		SELECT id, group_id, name, created_at
		FROM players
		WHERE group_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []*Player{}
	for rows.Next() {
		player := &Player{}
		if err := rows.Scan(
			&player.ID,
			&player.GroupID,
			&player.Name,
			&player.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}
