package settlement

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pokerbook/pokerbook/pkg/money"
)

// Common errors
var (
	// ErrZeroSumViolation means the balances of a session do not cancel out.
	// The caller must fix the buy-ins/cash-outs before settling again.
	ErrZeroSumViolation = errors.New("balances do not sum to zero")

	// ErrValidation is the parent of every malformed-input error below
	ErrValidation = errors.New("invalid settlement input")

	ErrDuplicatePlayer = fmt.Errorf("%w: player appears more than once", ErrValidation)
	ErrMissingPlayer   = fmt.Errorf("%w: player id is required", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: amounts must be finite and not negative", ErrValidation)
)

// ledgerLine is a debtor or creditor with the amount still to be matched
type ledgerLine struct {
	name      string
	remaining float64
}

// Balances derives one PlayerBalance per entry, preserving input order
func Balances(entries []Entry) ([]PlayerBalance, error) {
	seen := make(map[string]struct{}, len(entries))
	balances := make([]PlayerBalance, 0, len(entries))

	for _, e := range entries {
		if e.PlayerID == "" {
			return nil, ErrMissingPlayer
		}
		if _, dup := seen[e.PlayerID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, e.PlayerID)
		}
		seen[e.PlayerID] = struct{}{}

		if !validAmount(e.BuyIn) || !validAmount(e.CashOut) {
			return nil, fmt.Errorf("%w: player %s", ErrInvalidAmount, e.PlayerID)
		}

		balances = append(balances, PlayerBalance{
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			Balance:    e.Balance(),
		})
	}

	return balances, nil
}

// Calculate produces the transfers that bring every balance to zero.
//
// The largest remaining debtor always pays the largest remaining creditor
// as much as both can absorb. Every step retires at least one side, so the
// result has at most debtors+creditors-1 transfers. This is a greedy
// approximation: it is not guaranteed to find the fewest possible transfers.
func Calculate(balances []PlayerBalance) ([]Settlement, error) {
	settlements := []Settlement{}
	if len(balances) == 0 {
		return settlements, nil
	}

	values := make([]float64, len(balances))
	for i, b := range balances {
		values[i] = b.Balance
	}
	if sum := money.Sum(values...); !money.IsZero(sum) {
		return nil, fmt.Errorf("%w: off by %.2f", ErrZeroSumViolation, sum)
	}

	var debtors, creditors []ledgerLine
	for _, b := range balances {
		switch {
		case b.Balance < 0:
			debtors = append(debtors, ledgerLine{name: b.PlayerName, remaining: -b.Balance})
		case b.Balance > 0:
			creditors = append(creditors, ledgerLine{name: b.PlayerName, remaining: b.Balance})
		}
	}

	sortByRemaining(debtors)
	sortByRemaining(creditors)

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := math.Min(d.remaining, c.remaining)
		if rounded := money.Round2(amount); rounded > 0 {
			settlements = append(settlements, Settlement{From: d.name, To: c.name, Amount: rounded})
		}

		d.remaining -= amount
		c.remaining -= amount

		if money.IsZero(d.remaining) {
			i++
		}
		if money.IsZero(c.remaining) {
			j++
		}
	}

	return settlements, nil
}

// CalculateSessionSettlements settles a finished session from its entries
func CalculateSessionSettlements(entries []Entry) ([]Settlement, error) {
	balances, err := Balances(entries)
	if err != nil {
		return nil, err
	}
	return Calculate(balances)
}

// sortByRemaining orders largest first; equal amounts keep their input order
func sortByRemaining(lines []ledgerLine) {
	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].remaining > lines[b].remaining
	})
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
