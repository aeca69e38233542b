package summary

// StreakType is the outcome a streak is made of
type StreakType string

const (
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
)

// MilestoneType identifies the kind of milestone a player reached
type MilestoneType string

const (
	MilestoneBestSession MilestoneType = "best_session"
	MilestoneTotalGames  MilestoneType = "total_games"
	MilestoneTotalProfit MilestoneType = "total_profit"
	MilestoneTop3        MilestoneType = "top_3"
)

// Standing is a player's cumulative position in a group
type Standing struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"player_id"`
	PlayerName  string  `json:"player_name"`
	Balance     float64 `json:"balance"`
	GamesPlayed int     `json:"games_played"`
}

// RankingSnapshot maps a player ID to a 1-based rank.
// A missing player reads as rank 0, meaning no history in that window.
type RankingSnapshot map[string]int

// RankingChange describes how a session moved a participant in the standings
type RankingChange struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	OldRank    int     `json:"old_rank"`
	NewRank    int     `json:"new_rank"`
	Change     int     `json:"change"` // positive means the player climbed
	Profit     float64 `json:"profit"`
}

// Highlight names the player behind a notable session result
type Highlight struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Amount     float64 `json:"amount"`
}

// RebuyHighlight names the player who rebought the most
type RebuyHighlight struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Rebuys     float64 `json:"rebuys"` // fractional, in units of the default buy-in
	Count      int     `json:"count"`
}

// StreakUpdate reports a run of consecutive wins or losses of at least two sessions
type StreakUpdate struct {
	PlayerID   string     `json:"player_id"`
	PlayerName string     `json:"player_name"`
	Type       StreakType `json:"type"`
	Count      int        `json:"count"`
	IsNew      bool       `json:"is_new"`
}

// Milestone is a threshold a player crossed in this session
type Milestone struct {
	PlayerID    string        `json:"player_id"`
	PlayerName  string        `json:"player_name"`
	Type        MilestoneType `json:"type"`
	Description string        `json:"description"`
	Value       *float64      `json:"value,omitempty"`
}

// SessionSummary is everything notable about one ended session
type SessionSummary struct {
	SessionID      string          `json:"session_id"`
	GroupID        string          `json:"group_id"`
	Date           string          `json:"date"`
	RankingChanges []RankingChange `json:"ranking_changes"`
	BiggestWinner  *Highlight      `json:"biggest_winner,omitempty"`
	BiggestLoser   *Highlight      `json:"biggest_loser,omitempty"`
	MostRebuys     *RebuyHighlight `json:"most_rebuys,omitempty"`
	Streaks        []StreakUpdate  `json:"streaks"`
	Milestones     []Milestone     `json:"milestones"`
}
