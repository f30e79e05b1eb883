package credits

import (
	"context"
	"errors"
	"testing"

	"pustakam/internal/config"
	"pustakam/internal/services"
	"pustakam/internal/testsupport"
)

func newGate(t *testing.T, cfg config.Credits) *Gate {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	return New(store, cfg, nil)
}

func TestSeedOnceThenDebit(t *testing.T) {
	gate := newGate(t, config.Credits{Enabled: true, InitialBalance: 3, CostPerBook: 1})
	ctx := context.Background()

	if err := gate.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if err := gate.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded again: %v", err)
	}
	balance, err := gate.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 3 {
		t.Fatalf("balance = %d, seeding is not idempotent", balance)
	}

	if err := gate.Debit(ctx, "b-1"); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if balance, _ := gate.Balance(ctx); balance != 2 {
		t.Fatalf("balance after debit = %d", balance)
	}
}

func TestDebitBlocksWhenExhausted(t *testing.T) {
	gate := newGate(t, config.Credits{Enabled: true, InitialBalance: 1, CostPerBook: 1})
	ctx := context.Background()

	if err := gate.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if err := gate.Debit(ctx, "b-1"); err != nil {
		t.Fatalf("first debit: %v", err)
	}
	err := gate.Debit(ctx, "b-2")
	if !errors.Is(err, services.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if balance, _ := gate.Balance(ctx); balance != 0 {
		t.Fatalf("failed debit changed balance: %d", balance)
	}
}

func TestDisabledGateAllowsEverything(t *testing.T) {
	gate := newGate(t, config.Credits{Enabled: false})
	ctx := context.Background()

	if err := gate.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := gate.Debit(ctx, "b-1"); err != nil {
			t.Fatalf("Debit with disabled gate: %v", err)
		}
	}
	if balance, _ := gate.Balance(ctx); balance != 0 {
		t.Fatalf("disabled gate wrote ledger rows: balance %d", balance)
	}
}

func TestDebitOnceChargesFirstStartOnly(t *testing.T) {
	gate := newGate(t, config.Credits{Enabled: true, InitialBalance: 5, CostPerBook: 2})
	ctx := context.Background()

	if err := gate.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if err := gate.DebitOnce(ctx, "b-1"); err != nil {
		t.Fatalf("first DebitOnce: %v", err)
	}
	if err := gate.DebitOnce(ctx, "b-1"); err != nil {
		t.Fatalf("second DebitOnce: %v", err)
	}
	if balance, _ := gate.Balance(ctx); balance != 3 {
		t.Fatalf("balance = %d, resume was charged", balance)
	}
	if err := gate.DebitOnce(ctx, "b-2"); err != nil {
		t.Fatalf("DebitOnce other book: %v", err)
	}
	if balance, _ := gate.Balance(ctx); balance != 1 {
		t.Fatalf("balance = %d", balance)
	}
}

func TestGrantTopsUp(t *testing.T) {
	gate := newGate(t, config.Credits{Enabled: true, InitialBalance: 1, CostPerBook: 1})
	ctx := context.Background()

	if err := gate.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if err := gate.Grant(ctx, 5, "promo"); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if balance, _ := gate.Balance(ctx); balance != 6 {
		t.Fatalf("balance = %d", balance)
	}
	if err := gate.Grant(ctx, 0, ""); err == nil {
		t.Fatal("zero grant should fail")
	}
}
