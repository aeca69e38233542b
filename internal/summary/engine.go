package summary

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/pokerbook/pokerbook/internal/session"
	"github.com/pokerbook/pokerbook/pkg/money"
)

// streakWindow is how many of a player's recent sessions are walked for a streak
const streakWindow = 10

var (
	gameMilestones   = []int{10, 25, 50, 100}
	profitMilestones = []float64{50, 100, 250, 500}
)

// ComputeStandings folds session entries into cumulative per-player standings,
// ordered by balance then games played, both descending. Players tied on both
// keep the order in which they first appear in sessions.
func ComputeStandings(sessions []*session.Session) []Standing {
	index := make(map[string]int)
	standings := []Standing{}

	for _, s := range sessions {
		for _, e := range s.Entries {
			i, ok := index[e.PlayerID]
			if !ok {
				i = len(standings)
				index[e.PlayerID] = i
				standings = append(standings, Standing{PlayerID: e.PlayerID, PlayerName: e.PlayerName})
			}
			standings[i].Balance += e.Profit()
			standings[i].GamesPlayed++
		}
	}

	// Compare at cent precision so float drift cannot reorder equal balances
	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(money.Round2(b.Balance), money.Round2(a.Balance)); c != 0 {
			return c
		}
		return cmp.Compare(b.GamesPlayed, a.GamesPlayed)
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// Snapshot indexes standings by player ID
func Snapshot(standings []Standing) RankingSnapshot {
	snap := make(RankingSnapshot, len(standings))
	for _, s := range standings {
		snap[s.PlayerID] = s.Rank
	}
	return snap
}

// RankingChanges compares every participant's rank before and after the session.
// Players without earlier history report no change and sort last.
func RankingChanges(target *session.Session, before, after RankingSnapshot) []RankingChange {
	changes := make([]RankingChange, 0, len(target.Entries))
	for _, e := range target.Entries {
		rc := RankingChange{
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			OldRank:    before[e.PlayerID],
			NewRank:    after[e.PlayerID],
			Profit:     money.Round2(e.Profit()),
		}
		if rc.OldRank != 0 {
			rc.Change = rc.OldRank - rc.NewRank
		}
		changes = append(changes, rc)
	}

	slices.SortStableFunc(changes, func(a, b RankingChange) int {
		switch {
		case a.NewRank == b.NewRank:
			return 0
		case a.NewRank == 0:
			return 1
		case b.NewRank == 0:
			return -1
		}
		return cmp.Compare(a.NewRank, b.NewRank)
	})
	return changes
}

// Highlights finds the biggest winner and loser of a session, and the player
// with the most rebuys measured against the group's default buy-in.
// Ties go to the entry seen first.
func Highlights(target *session.Session, defaultBuyIn float64) (winner, loser *Highlight, rebuys *RebuyHighlight) {
	var mostRebuys float64

	for _, e := range target.Entries {
		profit := e.Profit()
		if winner == nil || profit > winner.Amount {
			winner = &Highlight{PlayerID: e.PlayerID, PlayerName: e.PlayerName, Amount: profit}
		}
		if loser == nil || profit < loser.Amount {
			loser = &Highlight{PlayerID: e.PlayerID, PlayerName: e.PlayerName, Amount: profit}
		}

		if defaultBuyIn <= 0 {
			continue
		}
		n := max(0, (e.BuyIn-defaultBuyIn)/defaultBuyIn)
		if n > mostRebuys {
			mostRebuys = n
			rebuys = &RebuyHighlight{PlayerID: e.PlayerID, PlayerName: e.PlayerName, Rebuys: n}
		}
	}

	if winner != nil {
		winner.Amount = money.Round2(winner.Amount)
		loser.Amount = money.Round2(loser.Amount)
	}
	if rebuys != nil {
		rebuys.Count = int(math.Round(rebuys.Rebuys))
		rebuys.Rebuys = money.Round2(rebuys.Rebuys)
	}
	return winner, loser, rebuys
}

// Streak walks a player's most recent sessions, newest first, and reports the
// run of results matching the latest one. history must be ordered oldest
// first and end with the session being summarised. Break-even sessions are
// skipped but still use up the window.
func Streak(playerID, playerName string, history []*session.Session) *StreakUpdate {
	var results []float64
	for i := len(history) - 1; i >= 0 && len(results) < streakWindow; i-- {
		if e := history[i].Entry(playerID); e != nil {
			results = append(results, e.Profit())
		}
	}
	if len(results) == 0 || money.IsZero(results[0]) {
		return nil
	}

	current := resultType(results[0])
	count := 0
	for _, p := range results {
		if money.IsZero(p) {
			continue
		}
		if resultType(p) != current {
			break
		}
		count++
	}
	if count < 2 {
		return nil
	}

	// A run of exactly two is new. Break-even sessions between the two do not count.
	return &StreakUpdate{
		PlayerID:   playerID,
		PlayerName: playerName,
		Type:       current,
		Count:      count,
		IsNew:      count == 2,
	}
}

func resultType(profit float64) StreakType {
	if profit > 0 {
		return StreakWin
	}
	return StreakLoss
}

// PlayerMilestones checks a participant's all-time history for milestones this
// session reached. before and after are the group rankings around the session.
func PlayerMilestones(entry *session.Entry, allTime []*session.Session, before, after RankingSnapshot) []Milestone {
	profit := entry.Profit()

	games := 0
	best := math.Inf(-1)
	var total float64
	for _, s := range allTime {
		e := s.Entry(entry.PlayerID)
		if e == nil {
			continue
		}
		games++
		total += e.Profit()
		best = max(best, e.Profit())
	}

	milestone := func(t MilestoneType, desc string, value float64) Milestone {
		return Milestone{
			PlayerID:    entry.PlayerID,
			PlayerName:  entry.PlayerName,
			Type:        t,
			Description: desc,
			Value:       &value,
		}
	}

	var out []Milestone

	if profit > 0 && money.Equal(profit, best) {
		p := money.Round2(profit)
		out = append(out, milestone(MilestoneBestSession, fmt.Sprintf("Best session ever: +$%.2f", p), p))
	}

	if slices.Contains(gameMilestones, games) {
		out = append(out, milestone(MilestoneTotalGames, fmt.Sprintf("Played %d sessions", games), float64(games)))
	}

	for _, threshold := range profitMilestones {
		if total >= threshold && total-profit < threshold {
			out = append(out, milestone(MilestoneTotalProfit, fmt.Sprintf("Crossed $%.0f in total profit", threshold), threshold))
		}
	}

	if rank := after[entry.PlayerID]; rank > 0 && rank <= 3 {
		if prev := before[entry.PlayerID]; prev == 0 || prev > 3 {
			out = append(out, milestone(MilestoneTop3, fmt.Sprintf("Reached the top 3 (rank %d)", rank), float64(rank)))
		}
	}

	return out
}

// throughTarget cuts an ordered history right after the target session so that
// later sessions on the same day do not count as more recent results
func throughTarget(history []*session.Session, target *session.Session) []*session.Session {
	for i, s := range history {
		if s.ID == target.ID {
			return history[:i+1]
		}
	}
	return append(slices.Clone(history), target)
}
