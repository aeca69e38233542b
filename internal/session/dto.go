package session

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pokerbook/pokerbook/internal/settlement"
	"github.com/pokerbook/pokerbook/pkg/money"
)

// EntryInput is one player's line when creating a session
type EntryInput struct {
	PlayerID string   `json:"player_id"`
	BuyIn    *float64 `json:"buy_in,omitempty"`   // defaults to the group's default buy-in
	CashOut  *float64 `json:"cash_out,omitempty"` // required unless the session is live
}

// CreateSessionRequest represents the request to record a session.
// A live session starts open for rebuys; otherwise it is ended and settled immediately.
type CreateSessionRequest struct {
	Date     string       `json:"date" example:"2024-03-01"`
	Location *string      `json:"location,omitempty"`
	Notes    *string      `json:"notes,omitempty"`
	Live     bool         `json:"live"`
	Entries  []EntryInput `json:"entries"`
}

// AddPlayerRequest adds a player to a live session
type AddPlayerRequest struct {
	PlayerID string   `json:"player_id"`
	BuyIn    *float64 `json:"buy_in,omitempty"`
}

// RebuyRequest adds chips for a player in a live session
type RebuyRequest struct {
	Amount *float64 `json:"amount,omitempty"` // defaults to the group's default buy-in
}

// CashOutInput is the final stack of one player
type CashOutInput struct {
	PlayerID string  `json:"player_id"`
	CashOut  float64 `json:"cash_out"`
}

// EndSessionRequest carries the cash-outs used to close a live session
type EndSessionRequest struct {
	CashOuts []CashOutInput `json:"cash_outs"`
}

// EntryResponse represents one entry in a session response
type EntryResponse struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name"`
	BuyIn      float64  `json:"buy_in"`
	CashOut    *float64 `json:"cash_out,omitempty"`
	Profit     *float64 `json:"profit,omitempty"`
	Rebuys     int      `json:"rebuys"`
}

// SessionResponse represents the response for a session
type SessionResponse struct {
	ID           string                  `json:"id"`
	GroupID      string                  `json:"group_id"`
	Date         string                  `json:"date"`
	Location     *string                 `json:"location,omitempty"`
	Notes        *string                 `json:"notes,omitempty"`
	Status       Status                  `json:"status"`
	TotalBuyIn   float64                 `json:"total_buy_in"`
	TotalCashOut float64                 `json:"total_cash_out"`
	Settlements  []settlement.Settlement `json:"settlements"`
	CreatedBy    *string                 `json:"created_by,omitempty"`
	CreatedAt    string                  `json:"created_at"`
	Entries      []*EntryResponse        `json:"entries"`
}

// Validate checks the request shape and returns the parsed session date
func (r *CreateSessionRequest) Validate() (time.Time, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	if len(r.Entries) == 0 {
		return time.Time{}, fmt.Errorf("%w: at least one player is required", ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(r.Entries))
	for _, e := range r.Entries {
		if !validID(e.PlayerID) {
			return time.Time{}, fmt.Errorf("%w: player_id must be a UUID", ErrInvalidRequest)
		}
		if _, dup := seen[e.PlayerID]; dup {
			return time.Time{}, fmt.Errorf("%w: %s", ErrDuplicatePlayer, e.PlayerID)
		}
		seen[e.PlayerID] = struct{}{}

		if e.BuyIn != nil && !validAmount(*e.BuyIn) {
			return time.Time{}, fmt.Errorf("%w: buy-in must not be negative", ErrInvalidRequest)
		}
		if e.CashOut != nil && !validAmount(*e.CashOut) {
			return time.Time{}, fmt.Errorf("%w: cash-out must not be negative", ErrInvalidRequest)
		}
		if !r.Live && e.CashOut == nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrMissingCashOut, e.PlayerID)
		}
	}
	return date, nil
}

// Validate checks that every player appears once with a valid amount
func (r *EndSessionRequest) Validate() error {
	seen := make(map[string]struct{}, len(r.CashOuts))
	for _, c := range r.CashOuts {
		if !validID(c.PlayerID) {
			return fmt.Errorf("%w: player_id must be a UUID", ErrInvalidRequest)
		}
		if _, dup := seen[c.PlayerID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, c.PlayerID)
		}
		seen[c.PlayerID] = struct{}{}
		if !validAmount(c.CashOut) {
			return fmt.Errorf("%w: cash-out must not be negative", ErrInvalidRequest)
		}
	}
	return nil
}

// Validate checks the player ID and optional buy-in
func (r *AddPlayerRequest) Validate() error {
	if !validID(r.PlayerID) {
		return fmt.Errorf("%w: player_id must be a UUID", ErrInvalidRequest)
	}
	if r.BuyIn != nil && (!validAmount(*r.BuyIn) || *r.BuyIn == 0) {
		return ErrInvalidAmount
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ToResponse converts a Session model to a SessionResponse DTO, rounding money for display
func (s *Session) ToResponse() *SessionResponse {
	buyIns, cashOuts := s.Totals()

	resp := &SessionResponse{
		ID:           s.ID,
		GroupID:      s.GroupID,
		Date:         s.Date.Format(DateLayout),
		Location:     s.Location,
		Notes:        s.Notes,
		Status:       s.Status,
		TotalBuyIn:   money.Round2(buyIns),
		TotalCashOut: money.Round2(cashOuts),
		Settlements:  s.Settlements,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Entries:      make([]*EntryResponse, len(s.Entries)),
	}
	if resp.Settlements == nil {
		resp.Settlements = []settlement.Settlement{}
	}

	for i, e := range s.Entries {
		er := &EntryResponse{
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			BuyIn:      money.Round2(e.BuyIn),
			Rebuys:     e.Rebuys,
		}
		if e.CashOut != nil {
			cashOut := money.Round2(*e.CashOut)
			profit := money.Round2(e.Profit())
			er.CashOut = &cashOut
			er.Profit = &profit
		}
		resp.Entries[i] = er
	}
	return resp
}
