package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pokerbook/pokerbook/internal/settlement"
)

// Common errors
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotLive     = errors.New("session is not live")
	ErrSessionAlreadyLive = errors.New("session is already live")
	ErrMissingCashOut     = errors.New("every player needs a cash-out before the session can end")
	ErrDuplicatePlayer    = errors.New("player is already in the session")
	ErrPlayerNotInGroup   = errors.New("player does not belong to the group")
	ErrPlayerNotInSession = errors.New("player is not in the session")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidRequest     = errors.New("invalid session request")
)

// BuyInLookup provides the default buy-in of a group
type BuyInLookup interface {
	DefaultBuyIn(ctx context.Context, groupID string) (float64, error)
}

// Store is the session persistence used by Service. WithTx hands fn a Store
// bound to one transaction; nothing fn wrote survives when it returns an error.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]*Session, int, error)
	AddEntry(ctx context.Context, groupID, sessionID, playerID string, buyIn float64, cashOut *float64) error
	AddBuyIn(ctx context.Context, sessionID, playerID string, amount float64) error
	SetCashOut(ctx context.Context, sessionID, playerID string, cashOut float64) error
	MarkEnded(ctx context.Context, sessionID string, settlements []settlement.Settlement) error
	Reopen(ctx context.Context, sessionID string) error
	SoftDelete(ctx context.Context, sessionID string) error
}

// Service handles session business logic
type Service struct {
	repo    Store
	groups  BuyInLookup
	settler *settlement.Service
	logger  *slog.Logger
}

// NewService creates a new session service
func NewService(repo Store, groups BuyInLookup, settler *settlement.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, groups: groups, settler: settler, logger: logger}
}

// Create records a session. A traditional session is settled and ended in the
// same transaction; a live session stays open for rebuys.
func (s *Service) Create(ctx context.Context, groupID, createdBy string, req *CreateSessionRequest) (*Session, error) {
	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	defaultBuyIn, err := s.groups.DefaultBuyIn(ctx, groupID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		GroupID:  groupID,
		Date:     date,
		Location: req.Location,
		Notes:    req.Notes,
		Status:   StatusLive,
	}
	if createdBy != "" {
		session.CreatedBy = &createdBy
	}

	err = s.repo.WithTx(ctx, func(tx Store) error {
		if err := tx.Create(ctx, session); err != nil {
			return err
		}

		for _, e := range req.Entries {
			buyIn := defaultBuyIn
			if e.BuyIn != nil {
				buyIn = *e.BuyIn
			}
			if err := tx.AddEntry(ctx, groupID, session.ID, e.PlayerID, buyIn, e.CashOut); err != nil {
				return err
			}
		}

		if req.Live {
			return nil
		}
		return s.settle(ctx, tx, session.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session created",
		"session_id", session.ID,
		"group_id", groupID,
		"live", req.Live,
		"players", len(req.Entries),
	)
	return s.GetByID(ctx, groupID, session.ID)
}

// GetByID retrieves a non-deleted session of a group
func (s *Service) GetByID(ctx context.Context, groupID, id string) (*Session, error) {
	return s.load(ctx, s.repo, groupID, id)
}

// ListByGroup retrieves a page of sessions, newest first
func (s *Service) ListByGroup(ctx context.Context, groupID string, page, perPage int) ([]*Session, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroup(ctx, groupID, perPage, offset)
}

// AddPlayer seats a player in a live session. The buy-in defaults to the group's default.
func (s *Service) AddPlayer(ctx context.Context, groupID, sessionID string, req *AddPlayerRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	buyIn, err := s.amountOrDefault(ctx, groupID, req.BuyIn)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(tx Store) error {
		if _, err := s.loadLive(ctx, tx, groupID, sessionID); err != nil {
			return err
		}
		return tx.AddEntry(ctx, groupID, sessionID, req.PlayerID, buyIn, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, groupID, sessionID)
}

// Rebuy adds chips for a player in a live session and counts the rebuy
func (s *Service) Rebuy(ctx context.Context, groupID, sessionID, playerID string, req *RebuyRequest) (*Session, error) {
	amount, err := s.amountOrDefault(ctx, groupID, req.Amount)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(tx Store) error {
		if _, err := s.loadLive(ctx, tx, groupID, sessionID); err != nil {
			return err
		}
		return tx.AddBuyIn(ctx, sessionID, playerID, amount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "rebuy recorded", "session_id", sessionID, "player_id", playerID, "amount", amount)
	return s.GetByID(ctx, groupID, sessionID)
}

// End records the cash-outs of a live session, settles it and marks it ended.
// Everything happens in one transaction: a zero-sum violation leaves the session live and unchanged.
func (s *Service) End(ctx context.Context, groupID, sessionID string, req *EndSessionRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(tx Store) error {
		if _, err := s.loadLive(ctx, tx, groupID, sessionID); err != nil {
			return err
		}

		for _, c := range req.CashOuts {
			if err := tx.SetCashOut(ctx, sessionID, c.PlayerID, c.CashOut); err != nil {
				return fmt.Errorf("%w: %s", err, c.PlayerID)
			}
		}
		return s.settle(ctx, tx, sessionID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session ended", "session_id", sessionID, "group_id", groupID)
	return s.GetByID(ctx, groupID, sessionID)
}

// Reopen puts an ended session back into play and discards its settlements
func (s *Service) Reopen(ctx context.Context, groupID, sessionID string) (*Session, error) {
	session, err := s.GetByID(ctx, groupID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == StatusLive {
		return nil, ErrSessionAlreadyLive
	}

	if err := s.repo.Reopen(ctx, sessionID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session reopened", "session_id", sessionID, "group_id", groupID)
	return s.GetByID(ctx, groupID, sessionID)
}

// Delete soft-deletes a session so it no longer counts towards history
func (s *Service) Delete(ctx context.Context, groupID, sessionID string) error {
	if _, err := s.GetByID(ctx, groupID, sessionID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, sessionID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "session deleted", "session_id", sessionID, "group_id", groupID)
	return nil
}

// settle computes settlements from the stored entries and closes the session
func (s *Service) settle(ctx context.Context, tx Store, sessionID string) error {
	session, err := tx.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	entries, err := session.SettlementEntries()
	if err != nil {
		return err
	}

	settlements, err := s.settler.Settle(ctx, entries)
	if err != nil {
		return err
	}
	return tx.MarkEnded(ctx, sessionID, settlements)
}

func (s *Service) load(ctx context.Context, repo Store, groupID, id string) (*Session, error) {
	session, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.IsDeleted() || session.GroupID != groupID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) loadLive(ctx context.Context, repo Store, groupID, id string) (*Session, error) {
	session, err := s.load(ctx, repo, groupID, id)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusLive {
		return nil, ErrSessionNotLive
	}
	return session, nil
}

func (s *Service) amountOrDefault(ctx context.Context, groupID string, amount *float64) (float64, error) {
	if amount != nil {
		if !validAmount(*amount) || *amount == 0 {
			return 0, ErrInvalidAmount
		}
		return *amount, nil
	}
	return s.groups.DefaultBuyIn(ctx, groupID)
}
