package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pokerbook/pokerbook/internal/settlement"
)

const uniqueViolation = "23505"

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository handles session and entry persistence
type Repository struct {
	conn *sql.DB
	db   dbtx
}

// NewRepository creates a new session repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{conn: db, db: db}
}

// WithTx runs fn with a repository bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Repository{conn: r.conn, db: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const sessionColumns = `id, group_id, session_date, location, notes, status, settlements, created_by, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var raw []byte
	if err := row.Scan(
		&s.ID,
		&s.GroupID,
		&s.Date,
		&s.Location,
		&s.Notes,
		&s.Status,
		&raw,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.DeletedAt,
	); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.Settlements); err != nil {
			return nil, fmt.Errorf("failed to decode settlements: %w", err)
		}
	}
	s.Entries = []*Entry{}
	return s, nil
}

// Create inserts a session row. Entries are added separately with AddEntry.
func (r *Repository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (id, group_id, session_date, location, notes, status, created_by)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		RETURNING created_at
	`

	s.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.GroupID, s.Date.Format(DateLayout), s.Location, s.Notes, s.Status, s.CreatedBy,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session with its entries, including soft-deleted sessions
func (r *Repository) GetByID(ctx context.Context, id string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := r.attachEntries(ctx, []*Session{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByGroup retrieves a page of non-deleted sessions of a group, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]*Session, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM sessions WHERE group_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE group_id = $1 AND deleted_at IS NULL
		ORDER BY session_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	sessions, err := r.querySessions(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListSessions returns the ended, non-deleted sessions of a group ordered by
// date ascending (creation order within a day), with entries and player names.
func (r *Repository) ListSessions(ctx context.Context, groupID string, filter ListFilter) ([]*Session, error) {
	conditions := []string{"group_id = $1", "deleted_at IS NULL", "status = 'ended'"}
	args := []any{groupID}

	if filter.Before != nil {
		args = append(args, filter.Before.Format(DateLayout))
		conditions = append(conditions, fmt.Sprintf("session_date < $%d::date", len(args)))
	}
	if filter.AtOrBefore != nil {
		args = append(args, filter.AtOrBefore.Format(DateLayout))
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d::date", len(args)))
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY session_date ASC, created_at ASC, id ASC
	`

	return r.querySessions(ctx, query, args...)
}

func (r *Repository) querySessions(ctx context.Context, query string, args ...any) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	if err := r.attachEntries(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// entriesQuery returns entries in the order players joined. Entries added in
// one transaction share created_at, so the identity column decides.
const entriesQuery = `
	SELECT e.id, e.session_id, e.player_id, p.name, e.buy_in, e.cash_out, e.rebuys, e.created_at
	FROM session_entries e
	JOIN players p ON p.id = e.player_id
	WHERE e.session_id = ANY($1::uuid[])
	ORDER BY e.position ASC
`

// attachEntries loads the entries of all given sessions in one query
func (r *Repository) attachEntries(ctx context.Context, sessions []*Session) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, len(sessions))
	byID := make(map[string]*Session, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	rows, err := r.db.QueryContext(ctx, entriesQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e := &Entry{}
		var cashOut sql.NullFloat64
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.PlayerID,
			&e.PlayerName,
			&e.BuyIn,
			&cashOut,
			&e.Rebuys,
			&e.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		if cashOut.Valid {
			v := cashOut.Float64
			e.CashOut = &v
		}
		if s, ok := byID[e.SessionID]; ok {
			s.Entries = append(s.Entries, e)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate entries: %w", err)
	}
	return nil
}

// AddEntry adds a player of the session's group to the session
func (r *Repository) AddEntry(ctx context.Context, groupID, sessionID, playerID string, buyIn float64, cashOut *float64) error {
	query := `
		INSERT INTO session_entries (id, session_id, player_id, buy_in, cash_out)
		SELECT $1::uuid, $2::uuid, p.id, $4::numeric, $5::numeric
		FROM players p
		WHERE p.id = $3 AND p.group_id = $6
	`

	res, err := r.db.ExecContext(ctx, query, uuid.New(), sessionID, playerID, buyIn, cashOut, groupID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, playerID)
		}
		return fmt.Errorf("failed to add entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to add entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotInGroup, playerID)
	}
	return nil
}

// AddBuyIn adds a rebuy to a player's entry
func (r *Repository) AddBuyIn(ctx context.Context, sessionID, playerID string, amount float64) error {
	query := `
		UPDATE session_entries
		SET buy_in = buy_in + $3, rebuys = rebuys + 1
		WHERE session_id = $1 AND player_id = $2
	`
	return r.execOne(ctx, "rebuy", query, sessionID, playerID, amount)
}

// SetCashOut records the amount a player left the session with
func (r *Repository) SetCashOut(ctx context.Context, sessionID, playerID string, cashOut float64) error {
	query := `
		UPDATE session_entries
		SET cash_out = $3
		WHERE session_id = $1 AND player_id = $2
	`
	return r.execOne(ctx, "set cash-out", query, sessionID, playerID, cashOut)
}

// MarkEnded stores the settlements and closes the session
func (r *Repository) MarkEnded(ctx context.Context, sessionID string, settlements []settlement.Settlement) error {
	if settlements == nil {
		settlements = []settlement.Settlement{}
	}
	payload, err := json.Marshal(settlements)
	if err != nil {
		return fmt.Errorf("failed to encode settlements: %w", err)
	}

	query := `
		UPDATE sessions
		SET status = $2, settlements = $3::jsonb
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.execSession(ctx, "end session", query, sessionID, StatusEnded, string(payload))
}

// Reopen puts an ended session back into play and clears its settlements
func (r *Repository) Reopen(ctx context.Context, sessionID string) error {
	query := `
		UPDATE sessions
		SET status = $2, settlements = NULL
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.execSession(ctx, "reopen session", query, sessionID, StatusLive)
}

// SoftDelete hides a session from history
func (r *Repository) SoftDelete(ctx context.Context, sessionID string) error {
	query := `
		UPDATE sessions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.execSession(ctx, "delete session", query, sessionID)
}

func (r *Repository) execSession(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayerNotInSession
	}
	return nil
}
