package settlement

// Entry is one player's result in a session, as needed to settle it
type Entry struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	BuyIn      float64 `json:"buy_in"`
	CashOut    float64 `json:"cash_out"`
}

// Balance returns cash-out minus buy-in
func (e Entry) Balance() float64 {
	return e.CashOut - e.BuyIn
}

// PlayerBalance is a player's net result for a single session.
// Positive means the player is owed money, negative means the player owes.
type PlayerBalance struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Balance    float64 `json:"balance"`
}

// Settlement is a single payer -> payee transfer. From and To hold player names,
// which are unique within a group. This is the shape persisted on a session.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}
