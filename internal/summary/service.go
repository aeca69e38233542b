package summary

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pokerbook/pokerbook/internal/session"
	"github.com/pokerbook/pokerbook/pkg/metrics"
	"github.com/pokerbook/pokerbook/pkg/money"
)

// Common errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionNotEnded = errors.New("session has not ended yet")
)

// SessionReader is the read side of the session store
type SessionReader interface {
	GetByID(ctx context.Context, id string) (*session.Session, error)
	ListSessions(ctx context.Context, groupID string, filter session.ListFilter) ([]*session.Session, error)
}

// BuyInLookup provides the default buy-in of a group
type BuyInLookup interface {
	DefaultBuyIn(ctx context.Context, groupID string) (float64, error)
}

// Service computes session summaries and leaderboards from session history.
// It never writes.
type Service struct {
	sessions SessionReader
	groups   BuyInLookup
	metrics  *metrics.Manager
	logger   *slog.Logger
}

// NewService creates a new summary service
func NewService(sessions SessionReader, groups BuyInLookup, m *metrics.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sessions: sessions, groups: groups, metrics: m, logger: logger}
}

// GetSessionSummary recomputes the group rankings around an ended session and
// reports ranking changes, highlights, streaks and milestones.
func (s *Service) GetSessionSummary(ctx context.Context, groupID, sessionID string) (summary *SessionSummary, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSummary(time.Since(start), err)
		if err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionNotEnded) {
			s.logger.ErrorContext(ctx, "session summary failed", "session_id", sessionID, "error", err)
		}
	}()

	target, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.IsDeleted() || target.GroupID != groupID {
		return nil, ErrSessionNotFound
	}
	if target.Status != session.StatusEnded {
		return nil, ErrSessionNotEnded
	}

	before, err := s.sessions.ListSessions(ctx, groupID, session.ListFilter{Before: &target.Date})
	if err != nil {
		return nil, err
	}
	after, err := s.sessions.ListSessions(ctx, groupID, session.ListFilter{AtOrBefore: &target.Date})
	if err != nil {
		return nil, err
	}
	allTime, err := s.sessions.ListSessions(ctx, groupID, session.ListFilter{})
	if err != nil {
		return nil, err
	}
	defaultBuyIn, err := s.groups.DefaultBuyIn(ctx, groupID)
	if err != nil {
		return nil, err
	}

	beforeSnap := Snapshot(ComputeStandings(before))
	afterSnap := Snapshot(ComputeStandings(after))

	summary = &SessionSummary{
		SessionID:      target.ID,
		GroupID:        target.GroupID,
		Date:           target.Date.Format(session.DateLayout),
		RankingChanges: RankingChanges(target, beforeSnap, afterSnap),
		Streaks:        []StreakUpdate{},
		Milestones:     []Milestone{},
	}
	summary.BiggestWinner, summary.BiggestLoser, summary.MostRebuys = Highlights(target, defaultBuyIn)

	recent := throughTarget(after, target)
	for _, e := range target.Entries {
		if !money.IsZero(e.Profit()) {
			if streak := Streak(e.PlayerID, e.PlayerName, recent); streak != nil {
				summary.Streaks = append(summary.Streaks, *streak)
			}
		}
		summary.Milestones = append(summary.Milestones, PlayerMilestones(e, allTime, beforeSnap, afterSnap)...)
	}

	return summary, nil
}

// Leaderboard returns the all-time standings of a group with balances rounded for display
func (s *Service) Leaderboard(ctx context.Context, groupID string) ([]Standing, error) {
	// Resolves the group first so an unknown group is reported as such
	if _, err := s.groups.DefaultBuyIn(ctx, groupID); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListSessions(ctx, groupID, session.ListFilter{})
	if err != nil {
		return nil, err
	}

	standings := ComputeStandings(sessions)
	for i := range standings {
		standings[i].Balance = money.Round2(standings[i].Balance)
	}
	return standings, nil
}
