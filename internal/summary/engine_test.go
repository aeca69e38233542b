package summary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerbook/pokerbook/internal/session"
)

// results builds one session per profit for player P, oldest first
func results(profits ...float64) []*session.Session {
	f := newFakeStore()
	for i, p := range profits {
		f.add(fmt.Sprintf("s%d", i), day(i+1), line{"P", 20, 20 + p})
	}
	return f.sessions
}

func TestComputeStandings(t *testing.T) {
	f := newFakeStore()
	f.add("s1", day(1), line{"A", 20, 45}, line{"B", 20, 0}, line{"C", 20, 15})
	f.add("s2", day(2), line{"A", 20, 10}, line{"B", 20, 35}, line{"D", 40, 35})

	standings := ComputeStandings(f.sessions)
	require.Len(t, standings, 4)

	assert.Equal(t, Standing{Rank: 1, PlayerID: "A", PlayerName: "A", Balance: 15, GamesPlayed: 2}, standings[0])
	// B, C and D are tied on balance: B has more games, C and D keep first-seen order
	assert.Equal(t, []string{"B", "C", "D"}, []string{standings[1].PlayerID, standings[2].PlayerID, standings[3].PlayerID})
	assert.Equal(t, []int{2, 3, 4}, []int{standings[1].Rank, standings[2].Rank, standings[3].Rank})

	assert.Empty(t, ComputeStandings(nil))
}

func TestComputeStandings_IgnoresFloatDrift(t *testing.T) {
	f := newFakeStore()
	f.add("s1", day(1), line{"A", 0.1, 0.3}, line{"B", 0.2, 0.2})
	f.add("s2", day(2), line{"B", 0, 0.2}, line{"A", 0, 0})

	standings := ComputeStandings(f.sessions)
	// 0.3-0.1 and 0.2 differ only by float error; the tie goes to first-seen order
	assert.Equal(t, "A", standings[0].PlayerID)
}

func TestRankingChanges(t *testing.T) {
	target := newFakeStore().add("s2", day(2), line{"X", 20, 25}, line{"A", 20, 10}, line{"B", 20, 25})

	before := RankingSnapshot{"A": 1, "B": 3}
	after := RankingSnapshot{"A": 2, "B": 1, "X": 3}

	changes := RankingChanges(target, before, after)
	assert.Equal(t, []RankingChange{
		{PlayerID: "B", PlayerName: "B", OldRank: 3, NewRank: 1, Change: 2, Profit: 5},
		{PlayerID: "A", PlayerName: "A", OldRank: 1, NewRank: 2, Change: -1, Profit: -10},
		{PlayerID: "X", PlayerName: "X", OldRank: 0, NewRank: 3, Change: 0, Profit: 5},
	}, changes)
}

func TestRankingChanges_UnrankedSortLast(t *testing.T) {
	target := newFakeStore().add("s1", day(1), line{"N", 20, 20}, line{"A", 20, 20})

	changes := RankingChanges(target, RankingSnapshot{}, RankingSnapshot{"A": 5})
	assert.Equal(t, "A", changes[0].PlayerID)
	assert.Equal(t, "N", changes[1].PlayerID)
	assert.Equal(t, 0, changes[1].NewRank)
}

func TestHighlights(t *testing.T) {
	t.Run("winner, loser and rebuys", func(t *testing.T) {
		target := newFakeStore().add("s1", day(1),
			line{"A", 20, 40},
			line{"B", 50, 30},
			line{"C", 20, 40},
			line{"D", 30, 10},
		)

		winner, loser, rebuys := Highlights(target, 20)
		assert.Equal(t, &Highlight{PlayerID: "A", PlayerName: "A", Amount: 20}, winner)
		assert.Equal(t, &Highlight{PlayerID: "B", PlayerName: "B", Amount: -20}, loser)
		require.NotNil(t, rebuys)
		assert.Equal(t, "B", rebuys.PlayerID)
		assert.Equal(t, 1.5, rebuys.Rebuys)
		assert.Equal(t, 2, rebuys.Count)
	})

	t.Run("no rebuys when nobody exceeds the default", func(t *testing.T) {
		target := newFakeStore().add("s1", day(1), line{"A", 20, 25}, line{"B", 10, 5})
		_, _, rebuys := Highlights(target, 20)
		assert.Nil(t, rebuys)
	})

	t.Run("empty session", func(t *testing.T) {
		winner, loser, rebuys := Highlights(&session.Session{}, 20)
		assert.Nil(t, winner)
		assert.Nil(t, loser)
		assert.Nil(t, rebuys)
	})
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name    string
		profits []float64 // oldest first
		want    *StreakUpdate
	}{
		{
			name:    "two wins after a loss",
			profits: []float64{-2, 5, 10},
			want:    &StreakUpdate{PlayerID: "P", PlayerName: "P", Type: StreakWin, Count: 2, IsNew: true},
		},
		{
			name:    "continuing loss streak",
			profits: []float64{-1, -3, -4},
			want:    &StreakUpdate{PlayerID: "P", PlayerName: "P", Type: StreakLoss, Count: 3, IsNew: false},
		},
		{
			name:    "break-even sessions are skipped",
			profits: []float64{-1, 3, 5, 0, 10},
			want:    &StreakUpdate{PlayerID: "P", PlayerName: "P", Type: StreakWin, Count: 3, IsNew: false},
		},
		{
			name:    "break-even between two wins is still a new streak",
			profits: []float64{-4, 3, 0, 6},
			want:    &StreakUpdate{PlayerID: "P", PlayerName: "P", Type: StreakWin, Count: 2, IsNew: true},
		},
		{
			name:    "a single result is not a streak",
			profits: []float64{-5, 10},
		},
		{
			name:    "first session ever",
			profits: []float64{10},
		},
		{
			name:    "break-even current session",
			profits: []float64{5, 5, 0},
		},
		{
			name:    "window caps the count",
			profits: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			want:    &StreakUpdate{PlayerID: "P", PlayerName: "P", Type: StreakWin, Count: 10, IsNew: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak("P", "P", results(tt.profits...)))
		})
	}
}

func TestStreak_OnlyCountsSessionsWithThePlayer(t *testing.T) {
	f := newFakeStore()
	f.add("s1", day(1), line{"P", 20, 30}, line{"Q", 20, 10})
	f.add("s2", day(2), line{"Q", 20, 20})
	f.add("s3", day(3), line{"P", 20, 25}, line{"Q", 20, 15})

	assert.Equal(t, &StreakUpdate{PlayerID: "P", PlayerName: "P", Type: StreakWin, Count: 2, IsNew: true}, Streak("P", "P", f.sessions))
}

func TestPlayerMilestones(t *testing.T) {
	t.Run("crossing a profit threshold", func(t *testing.T) {
		f := newFakeStore()
		f.add("s1", day(1), line{"P", 20, 65})
		target := f.add("s2", day(2), line{"P", 20, 30})

		got := PlayerMilestones(target.Entry("P"), f.sessions, RankingSnapshot{"P": 1}, RankingSnapshot{"P": 1})
		require.Len(t, got, 1)
		assert.Equal(t, MilestoneTotalProfit, got[0].Type)
		require.NotNil(t, got[0].Value)
		assert.Equal(t, 50.0, *got[0].Value)
	})

	t.Run("one big session crosses several thresholds", func(t *testing.T) {
		f := newFakeStore()
		f.add("s1", day(1), line{"P", 20, 60})
		target := f.add("s2", day(2), line{"P", 20, 240})

		got := PlayerMilestones(target.Entry("P"), f.sessions, RankingSnapshot{"P": 2}, RankingSnapshot{"P": 1})
		var types []MilestoneType
		var values []float64
		for _, m := range got {
			types = append(types, m.Type)
			values = append(values, *m.Value)
		}
		assert.Equal(t, []MilestoneType{MilestoneBestSession, MilestoneTotalProfit, MilestoneTotalProfit, MilestoneTotalProfit}, types)
		assert.Equal(t, []float64{220, 50, 100, 250}, values)
	})

	t.Run("exact games milestone", func(t *testing.T) {
		profits := make([]float64, 10)
		for i := range profits {
			profits[i] = -1
		}
		history := results(profits...)
		target := history[len(history)-1]

		got := PlayerMilestones(target.Entry("P"), history, RankingSnapshot{"P": 5}, RankingSnapshot{"P": 5})
		require.Len(t, got, 1)
		assert.Equal(t, MilestoneTotalGames, got[0].Type)
		assert.Equal(t, 10.0, *got[0].Value)

		history = results(append(profits, -1)...)
		target = history[len(history)-1]
		assert.Empty(t, PlayerMilestones(target.Entry("P"), history, RankingSnapshot{"P": 5}, RankingSnapshot{"P": 5}))
	})

	t.Run("first top 3 finish", func(t *testing.T) {
		target := newFakeStore().add("s1", day(1), line{"P", 20, 15})

		got := PlayerMilestones(target.Entry("P"), nil, RankingSnapshot{"P": 4}, RankingSnapshot{"P": 3})
		require.Len(t, got, 1)
		assert.Equal(t, MilestoneTop3, got[0].Type)
		assert.Equal(t, 3.0, *got[0].Value)

		got = PlayerMilestones(target.Entry("P"), nil, RankingSnapshot{}, RankingSnapshot{"P": 1})
		require.Len(t, got, 1)
		assert.Equal(t, MilestoneTop3, got[0].Type)

		assert.Empty(t, PlayerMilestones(target.Entry("P"), nil, RankingSnapshot{"P": 2}, RankingSnapshot{"P": 1}))
	})

	t.Run("tying the best session counts", func(t *testing.T) {
		f := newFakeStore()
		f.add("s1", day(1), line{"P", 20, 30.004})
		target := f.add("s2", day(2), line{"P", 20, 30})

		got := PlayerMilestones(target.Entry("P"), f.sessions, RankingSnapshot{"P": 9}, RankingSnapshot{"P": 9})
		require.Len(t, got, 1)
		assert.Equal(t, MilestoneBestSession, got[0].Type)
		assert.Equal(t, 10.0, *got[0].Value)
	})
}

func TestThroughTarget(t *testing.T) {
	f := newFakeStore()
	first := f.add("s1", day(1), line{"P", 20, 30})
	f.add("s2", day(1), line{"P", 20, 10})

	got := throughTarget(f.sessions, first)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)

	missing := &session.Session{ID: "zz"}
	got = throughTarget(f.sessions, missing)
	assert.Len(t, got, 3)
	assert.Len(t, f.sessions, 2)
}
