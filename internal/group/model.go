package group

import "time"

// DefaultBuyIn is used when a group is created without one
const DefaultBuyIn = 20.0

// Group is a circle of players who play sessions together
type Group struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DefaultBuyIn float64   `json:"default_buy_in"`
	CreatedAt    time.Time `json:"created_at"`
}
