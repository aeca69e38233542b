package session

import (
	"fmt"
	"time"

	"github.com/pokerbook/pokerbook/internal/settlement"
)

// Status represents the lifecycle state of a session
type Status string

const (
	StatusLive  Status = "live"
	StatusEnded Status = "ended"
)

// DateLayout is the calendar-day format used for session dates
const DateLayout = "2006-01-02"

// Session is one evening of play in a group
type Session struct {
	ID          string                  `json:"id"`
	GroupID     string                  `json:"group_id"`
	Date        time.Time               `json:"date"`
	Location    *string                 `json:"location,omitempty"`
	Notes       *string                 `json:"notes,omitempty"`
	Status      Status                  `json:"status"`
	Settlements []settlement.Settlement `json:"settlements,omitempty"`
	CreatedBy   *string                 `json:"created_by,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	DeletedAt   *time.Time              `json:"deleted_at,omitempty"`

	// Populated via JOIN
	Entries []*Entry `json:"entries"`
}

// Entry is a player's buy-in and cash-out for a session
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	PlayerID  string    `json:"player_id"`
	BuyIn     float64   `json:"buy_in"`
	CashOut   *float64  `json:"cash_out,omitempty"` // nil while the session is live
	Rebuys    int       `json:"rebuys"`
	CreatedAt time.Time `json:"created_at"`

	// Populated via JOIN
	PlayerName string `json:"player_name"`
}

// ListFilter bounds a history query by session date. At most one bound is normally set.
type ListFilter struct {
	Before     *time.Time // strictly earlier calendar day
	AtOrBefore *time.Time // same or earlier calendar day
}

// Profit returns cash-out minus buy-in, or zero while no cash-out is recorded
func (e *Entry) Profit() float64 {
	if e.CashOut == nil {
		return 0
	}
	return *e.CashOut - e.BuyIn
}

// IsDeleted reports whether the session was soft-deleted
func (s *Session) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Entry returns the entry of a player, or nil when the player did not take part
func (s *Session) Entry(playerID string) *Entry {
	for _, e := range s.Entries {
		if e.PlayerID == playerID {
			return e
		}
	}
	return nil
}

// SettlementEntries converts the entries into settlement input.
// Every entrant must have a recorded cash-out.
func (s *Session) SettlementEntries() ([]settlement.Entry, error) {
	entries := make([]settlement.Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.CashOut == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingCashOut, e.PlayerName)
		}
		entries = append(entries, settlement.Entry{
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			BuyIn:      e.BuyIn,
			CashOut:    *e.CashOut,
		})
	}
	return entries, nil
}

// Totals returns the summed buy-ins and recorded cash-outs
func (s *Session) Totals() (buyIns, cashOuts float64) {
	for _, e := range s.Entries {
		buyIns += e.BuyIn
		if e.CashOut != nil {
			cashOuts += *e.CashOut
		}
	}
	return buyIns, cashOuts
}
