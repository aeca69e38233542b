package summary

import (
	"context"
	"slices"
	"time"

	"github.com/pokerbook/pokerbook/internal/group"
	"github.com/pokerbook/pokerbook/internal/session"
)

const testGroup = "9d4c3a0e-8f57-4b1c-a9a2-6b0f5cf0e001"

// fakeStore is an in-memory session history for one or more groups
type fakeStore struct {
	sessions     []*session.Session
	defaultBuyIn float64
	err          error
}

func newFakeStore() *fakeStore {
	return &fakeStore{defaultBuyIn: 20}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

type line struct {
	player  string
	buyIn   float64
	cashOut float64
}

// add records an ended session; the player name doubles as the player ID
func (f *fakeStore) add(id string, date time.Time, lines ...line) *session.Session {
	s := &session.Session{
		ID:      id,
		GroupID: testGroup,
		Date:    date,
		Status:  session.StatusEnded,
		Entries: make([]*session.Entry, len(lines)),
	}
	for i, l := range lines {
		cashOut := l.cashOut
		s.Entries[i] = &session.Entry{
			SessionID:  id,
			PlayerID:   l.player,
			PlayerName: l.player,
			BuyIn:      l.buyIn,
			CashOut:    &cashOut,
		}
	}
	f.sessions = append(f.sessions, s)
	return s
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListSessions(_ context.Context, groupID string, filter session.ListFilter) ([]*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*session.Session
	for _, s := range f.sessions {
		if s.GroupID != groupID || s.IsDeleted() || s.Status != session.StatusEnded {
			continue
		}
		if filter.Before != nil && !s.Date.Before(*filter.Before) {
			continue
		}
		if filter.AtOrBefore != nil && s.Date.After(*filter.AtOrBefore) {
			continue
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b *session.Session) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (f *fakeStore) DefaultBuyIn(_ context.Context, groupID string) (float64, error) {
	if groupID != testGroup {
		return 0, group.ErrGroupNotFound
	}
	return f.defaultBuyIn, nil
}
