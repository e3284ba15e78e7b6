package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stubro/internal/games/conquest"
	"github.com/vovakirdan/stubro/internal/storage"
)

// Ledger charges and refunds generation tokens.
type Ledger interface {
	Spend(user string, amount int, reason string) (int, error)
	Grant(user string, amount int, reason string) (int, error)
}

// Metered charges a user's token balance for each generation. A failed
// generation is refunded.
type Metered struct {
	inner  conquest.Generator
	ledger Ledger
	user   string
	cost   int
	logger *log.Logger
}

// NewMetered wraps gen so that each call costs cost tokens. A cost of zero
// or less disables metering.
func NewMetered(gen conquest.Generator, ledger Ledger, user string, cost int, logger *log.Logger) *Metered {
	return &Metered{inner: gen, ledger: ledger, user: user, cost: cost, logger: orDiscard(logger)}
}

// Name returns the wrapped backend ID.
func (m *Metered) Name() string { return m.inner.Name() }

// Generate spends tokens and delegates to the wrapped backend. Errors and
// unplayable levels are refunded.
func (m *Metered) Generate(ctx context.Context, req conquest.Request) (*conquest.Level, error) {
	if m.cost <= 0 || m.ledger == nil {
		return m.inner.Generate(ctx, req)
	}

	user := req.User
	if user == "" {
		user = m.user
	}

	balance, err := m.ledger.Spend(user, m.cost, "level: "+m.inner.Name())
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientTokens) || errors.Is(err, storage.ErrUnknownAccount) {
			m.logger.Info("generation refused", "user", user, "cost", m.cost)
			return nil, &conquest.GenerationError{
				InsufficientCredits: true,
				Message:             "Insufficient tokens",
				Err:                 conquest.ErrInsufficientCredits,
			}
		}
		return nil, fmt.Errorf("generator: charge tokens: %w", err)
	}
	m.logger.Debug("tokens spent", "user", user, "cost", m.cost, "balance", balance)

	level, genErr := m.inner.Generate(ctx, req)
	if genErr == nil {
		genErr = conquest.CheckGenerated(level)
	}
	if genErr != nil {
		m.refund(user)
		return nil, genErr
	}
	return level, nil
}

// refund returns the price of a failed generation.
func (m *Metered) refund(user string) {
	balance, err := m.ledger.Grant(user, m.cost, "refund: "+m.inner.Name())
	if err != nil {
		m.logger.Error("token refund failed", "user", user, "err", err)
		return
	}
	m.logger.Debug("tokens refunded", "user", user, "cost", m.cost, "balance", balance)
}
