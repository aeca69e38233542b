package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerbook/pokerbook/internal/group"
	"github.com/pokerbook/pokerbook/internal/session"
	"github.com/pokerbook/pokerbook/pkg/metrics"
)

func newTestService(store *fakeStore) *Service {
	return NewService(store, store, metrics.NewManager(), nil)
}

func TestGetSessionSummary(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"A", 20, 45}, line{"B", 20, 0}, line{"C", 20, 15})
	store.add("s2", day(2), line{"A", 20, 10}, line{"B", 20, 35}, line{"D", 40, 35})

	summary, err := newTestService(store).GetSessionSummary(context.Background(), testGroup, "s2")
	require.NoError(t, err)

	assert.Equal(t, "s2", summary.SessionID)
	assert.Equal(t, "2024-03-02", summary.Date)

	assert.Equal(t, []RankingChange{
		{PlayerID: "A", PlayerName: "A", OldRank: 1, NewRank: 1, Change: 0, Profit: -10},
		{PlayerID: "B", PlayerName: "B", OldRank: 3, NewRank: 2, Change: 1, Profit: 15},
		{PlayerID: "D", PlayerName: "D", OldRank: 0, NewRank: 4, Change: 0, Profit: -5},
	}, summary.RankingChanges)

	assert.Equal(t, &Highlight{PlayerID: "B", PlayerName: "B", Amount: 15}, summary.BiggestWinner)
	assert.Equal(t, &Highlight{PlayerID: "A", PlayerName: "A", Amount: -10}, summary.BiggestLoser)
	assert.Equal(t, &RebuyHighlight{PlayerID: "D", PlayerName: "D", Rebuys: 1, Count: 1}, summary.MostRebuys)

	assert.Empty(t, summary.Streaks)
	require.Len(t, summary.Milestones, 1)
	assert.Equal(t, MilestoneBestSession, summary.Milestones[0].Type)
	assert.Equal(t, "B", summary.Milestones[0].PlayerID)
	assert.Equal(t, 15.0, *summary.Milestones[0].Value)
}

func TestGetSessionSummary_Streaks(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"P", 20, 18}, line{"Q", 20, 22})
	store.add("s2", day(2), line{"P", 20, 25}, line{"Q", 20, 15})
	store.add("s3", day(3), line{"P", 20, 30}, line{"Q", 20, 10})
	// played the same day after the target; must not count as a more recent result
	store.add("s4", day(3), line{"P", 20, 0}, line{"Q", 20, 40})

	summary, err := newTestService(store).GetSessionSummary(context.Background(), testGroup, "s3")
	require.NoError(t, err)

	assert.Equal(t, []StreakUpdate{
		{PlayerID: "P", PlayerName: "P", Type: StreakWin, Count: 2, IsNew: true},
		{PlayerID: "Q", PlayerName: "Q", Type: StreakLoss, Count: 2, IsNew: true},
	}, summary.Streaks)
}

func TestGetSessionSummary_NewPlayer(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"A", 20, 30}, line{"B", 20, 10})
	store.add("s2", day(2), line{"A", 20, 15}, line{"X", 20, 25})

	summary, err := newTestService(store).GetSessionSummary(context.Background(), testGroup, "s2")
	require.NoError(t, err)

	var x RankingChange
	for _, rc := range summary.RankingChanges {
		if rc.PlayerID == "X" {
			x = rc
		}
	}
	assert.Equal(t, 0, x.OldRank)
	assert.Equal(t, 2, x.NewRank)
	assert.Equal(t, 0, x.Change)
	assert.Equal(t, 5.0, x.Profit)
}

func TestGetSessionSummary_ProfitMilestone(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"A", 20, 65}, line{"B", 20, 0}, line{"C", 20, 0}, line{"D", 20, 0}, line{"E", 20, 15})
	store.add("s2", day(2), line{"A", 20, 30}, line{"B", 20, 10})

	summary, err := newTestService(store).GetSessionSummary(context.Background(), testGroup, "s2")
	require.NoError(t, err)

	var found bool
	for _, m := range summary.Milestones {
		if m.PlayerID == "A" && m.Type == MilestoneTotalProfit {
			found = true
			assert.Equal(t, 50.0, *m.Value)
		}
	}
	assert.True(t, found)
}

func TestGetSessionSummary_NotFound(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"A", 20, 20})

	deleted := store.add("gone", day(1), line{"A", 20, 20})
	deletedAt := time.Now()
	deleted.DeletedAt = &deletedAt

	other := store.add("other", day(1), line{"A", 20, 20})
	other.GroupID = "another-group"

	live := store.add("live", day(2), line{"A", 20, 20})
	live.Status = session.StatusLive

	svc := newTestService(store)
	tests := []struct {
		name      string
		sessionID string
		wantErr   error
	}{
		{"missing", "nope", ErrSessionNotFound},
		{"deleted", "gone", ErrSessionNotFound},
		{"other group", "other", ErrSessionNotFound},
		{"live", "live", ErrSessionNotEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := svc.GetSessionSummary(context.Background(), testGroup, tt.sessionID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, summary)
		})
	}
}

func TestGetSessionSummary_StoreError(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"A", 20, 20})
	store.err = errors.New("connection reset")

	summary, err := newTestService(store).GetSessionSummary(context.Background(), testGroup, "s1")
	assert.EqualError(t, err, "connection reset")
	assert.Nil(t, summary)
}

func TestLeaderboard(t *testing.T) {
	store := newFakeStore()
	store.add("s1", day(1), line{"A", 20, 45}, line{"B", 20, 0}, line{"C", 20, 15})
	store.add("s2", day(2), line{"A", 20, 10.004}, line{"B", 20, 35}, line{"C", 20, 14.996})

	svc := newTestService(store)

	standings, err := svc.Leaderboard(context.Background(), testGroup)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	assert.Equal(t, Standing{Rank: 1, PlayerID: "A", PlayerName: "A", Balance: 15, GamesPlayed: 2}, standings[0])
	assert.Equal(t, "B", standings[1].PlayerID)
	assert.Equal(t, -5.0, standings[1].Balance)
	assert.Equal(t, -10.0, standings[2].Balance)

	_, err = svc.Leaderboard(context.Background(), "unknown")
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}
