package settlement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pokerbook/pokerbook/pkg/metrics"
)

// Service runs settlement calculations and records their outcome
type Service struct {
	metrics *metrics.Manager
	logger  *slog.Logger
}

// NewService creates a new settlement service
func NewService(m *metrics.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{metrics: m, logger: logger}
}

// Settle computes the transfers for a finished session.
// It performs no I/O, so callers may run it inside the transaction that stores the cash-outs.
func (s *Service) Settle(ctx context.Context, entries []Entry) ([]Settlement, error) {
	settlements, err := CalculateSessionSettlements(entries)
	if err != nil {
		if errors.Is(err, ErrZeroSumViolation) {
			s.metrics.ZeroSumViolation()
			s.logger.WarnContext(ctx, "settlement rejected", "error", err, "entries", len(entries))
		}
		return nil, err
	}

	s.metrics.SettlementComputed(len(settlements))
	return settlements, nil
}
