package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pokerbook/pokerbook/internal/settlement"
)

const (
	testGroup  = "9d4c3a0e-8f57-4b1c-a9a2-6b0f5cf0e001"
	otherGroup = "9d4c3a0e-8f57-4b1c-a9a2-6b0f5cf0e002"
)

// memStore keeps sessions in memory. WithTx works on a copy and only swaps it
// in when fn succeeds, so a failed transaction leaves no trace.
type memStore struct {
	sessions  map[string]*Session
	players   map[string]string // player ID -> name, all in testGroup
	commits   int
	rollbacks int
}

func newMemStore(players map[string]string) *memStore {
	return &memStore{sessions: map[string]*Session{}, players: players}
}

func copySession(s *Session) *Session {
	c := *s
	c.Entries = make([]*Entry, len(s.Entries))
	for i, e := range s.Entries {
		ce := *e
		if e.CashOut != nil {
			v := *e.CashOut
			ce.CashOut = &v
		}
		c.Entries[i] = &ce
	}
	if s.Settlements != nil {
		c.Settlements = append([]settlement.Settlement{}, s.Settlements...)
	}
	return &c
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	tx := &memStore{sessions: make(map[string]*Session, len(m.sessions)), players: m.players}
	for id, s := range m.sessions {
		tx.sessions[id] = copySession(s)
	}

	if err := fn(tx); err != nil {
		m.rollbacks++
		return err
	}
	m.sessions = tx.sessions
	m.commits++
	return nil
}

func (m *memStore) Create(_ context.Context, s *Session) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

func (m *memStore) ListByGroup(_ context.Context, groupID string, limit, offset int) ([]*Session, int, error) {
	var out []*Session
	for _, s := range m.sessions {
		if s.GroupID == groupID && !s.IsDeleted() {
			out = append(out, copySession(s))
		}
	}
	total := len(out)
	if offset >= total {
		return []*Session{}, total, nil
	}
	return out[offset:min(total, offset+limit)], total, nil
}

func (m *memStore) AddEntry(_ context.Context, groupID, sessionID, playerID string, buyIn float64, cashOut *float64) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("no session %s", sessionID)
	}
	name, ok := m.players[playerID]
	if !ok || groupID != testGroup {
		return fmt.Errorf("%w: %s", ErrPlayerNotInGroup, playerID)
	}
	if s.Entry(playerID) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, playerID)
	}

	e := &Entry{ID: uuid.NewString(), SessionID: sessionID, PlayerID: playerID, PlayerName: name, BuyIn: buyIn}
	if cashOut != nil {
		v := *cashOut
		e.CashOut = &v
	}
	s.Entries = append(s.Entries, e)
	return nil
}

func (m *memStore) entry(sessionID, playerID string) (*Entry, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrPlayerNotInSession
	}
	e := s.Entry(playerID)
	if e == nil {
		return nil, ErrPlayerNotInSession
	}
	return e, nil
}

func (m *memStore) AddBuyIn(_ context.Context, sessionID, playerID string, amount float64) error {
	e, err := m.entry(sessionID, playerID)
	if err != nil {
		return err
	}
	e.BuyIn += amount
	e.Rebuys++
	return nil
}

func (m *memStore) SetCashOut(_ context.Context, sessionID, playerID string, cashOut float64) error {
	e, err := m.entry(sessionID, playerID)
	if err != nil {
		return err
	}
	e.CashOut = &cashOut
	return nil
}

func (m *memStore) live(sessionID string) (*Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.IsDeleted() {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *memStore) MarkEnded(_ context.Context, sessionID string, settlements []settlement.Settlement) error {
	s, err := m.live(sessionID)
	if err != nil {
		return err
	}
	if settlements == nil {
		settlements = []settlement.Settlement{}
	}
	s.Status = StatusEnded
	s.Settlements = settlements
	return nil
}

func (m *memStore) Reopen(_ context.Context, sessionID string) error {
	s, err := m.live(sessionID)
	if err != nil {
		return err
	}
	s.Status = StatusLive
	s.Settlements = nil
	return nil
}

func (m *memStore) SoftDelete(_ context.Context, sessionID string) error {
	s, err := m.live(sessionID)
	if err != nil {
		return err
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

// fixedBuyIn serves the same default buy-in for every group
type fixedBuyIn float64

func (f fixedBuyIn) DefaultBuyIn(context.Context, string) (float64, error) {
	return float64(f), nil
}
