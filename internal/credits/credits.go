// Package credits implements the local credit gate for generation starts.
// Credits live in an append-only ledger in the book store; one start debits
// one book's cost, and retries or regenerations are never charged.
package credits

import (
	"context"
	"fmt"
	"log/slog"

	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/logging"
	"pustakam/internal/services"
)

// Gate decides whether a book generation may start and records the charge.
type Gate struct {
	store  *bookstore.Store
	cfg    config.Credits
	logger *slog.Logger
}

// New creates a Gate. When the gate is disabled in config every start is
// allowed and nothing is recorded.
func New(store *bookstore.Store, cfg config.Credits, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "credits"),
	}
}

// Enabled reports whether the gate is active.
func (g *Gate) Enabled() bool {
	return g.cfg.Enabled
}

// EnsureSeeded grants the initial balance the first time the ledger is used.
// Safe to call on every daemon start.
func (g *Gate) EnsureSeeded(ctx context.Context) error {
	if !g.cfg.Enabled || g.cfg.InitialBalance <= 0 {
		return nil
	}
	history, err := g.store.CreditHistory(ctx, 1)
	if err != nil {
		return fmt.Errorf("seed credits: %w", err)
	}
	if len(history) > 0 {
		return nil
	}
	if err := g.store.AddCreditEntry(ctx, "", int(g.cfg.InitialBalance), "initial grant"); err != nil {
		return fmt.Errorf("seed credits: %w", err)
	}
	g.logger.Info("credit ledger seeded", logging.Int64("balance", g.cfg.InitialBalance))
	return nil
}

// Balance returns the current ledger balance.
func (g *Gate) Balance(ctx context.Context) (int64, error) {
	balance, err := g.store.CreditBalance(ctx)
	if err != nil {
		return 0, err
	}
	return int64(balance), nil
}

// Debit charges one book generation. It fails with the quota sentinel when
// the balance cannot cover the cost; nothing is recorded in that case.
func (g *Gate) Debit(ctx context.Context, bookID string) error {
	if !g.cfg.Enabled || g.cfg.CostPerBook <= 0 {
		return nil
	}
	balance, err := g.Balance(ctx)
	if err != nil {
		return fmt.Errorf("check credits: %w", err)
	}
	if balance < g.cfg.CostPerBook {
		return services.Wrap(services.ErrQuotaExceeded, "credits", "debit",
			fmt.Sprintf("balance %d is below the cost of %d", balance, g.cfg.CostPerBook), nil)
	}
	if err := g.store.AddCreditEntry(ctx, bookID, -int(g.cfg.CostPerBook), "book generation"); err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	g.logger.Info("generation charged",
		logging.String(logging.FieldBookID, bookID),
		logging.Int64("cost", g.cfg.CostPerBook),
		logging.Int64("balance", balance-g.cfg.CostPerBook))
	return nil
}

// DebitOnce charges the book's first generation start only. Later starts of
// the same book (resume after pause, retries, regenerations) are free.
func (g *Gate) DebitOnce(ctx context.Context, bookID string) error {
	if !g.cfg.Enabled || g.cfg.CostPerBook <= 0 {
		return nil
	}
	charged, err := g.store.HasCreditEntry(ctx, bookID)
	if err != nil {
		return fmt.Errorf("check credits: %w", err)
	}
	if charged {
		return nil
	}
	return g.Debit(ctx, bookID)
}

// Grant adds credits to the ledger, e.g. from a promotional top-up.
func (g *Gate) Grant(ctx context.Context, amount int64, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("grant credits: amount must be positive")
	}
	if reason == "" {
		reason = "manual grant"
	}
	return g.store.AddCreditEntry(ctx, "", int(amount), reason)
}
