package calculator

import (
	"testing"

	"github.com/giftledger/internal/models"

	"github.com/shopspring/decimal"
)

func money(t *testing.T, value string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(value)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", value, err)
	}
	return m
}

func TestFullBalanceCompute(t *testing.T) {
	calc := FullBalance{}

	card := &models.GiftCard{CurrentValue: money(t, "30.00")}
	if got := calc.Compute(money(t, "100.00"), card); !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30.00, got %s", got)
	}
	if got := calc.Compute(money(t, "12.50"), card); !got.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected 12.50, got %s", got)
	}
}

func TestFullBalanceComputeClampsNegative(t *testing.T) {
	calc := FullBalance{}

	card := &models.GiftCard{CurrentValue: money(t, "30.00")}
	if got := calc.Compute(money(t, "-5.00"), card); !got.IsZero() {
		t.Fatalf("negative payable should compute 0, got %s", got)
	}

	drained := &models.GiftCard{CurrentValue: money(t, "-1.00")}
	if got := calc.Compute(money(t, "10.00"), drained); !got.IsZero() {
		t.Fatalf("negative balance should compute 0, got %s", got)
	}

	if got := calc.Compute(money(t, "10.00"), nil); !got.IsZero() {
		t.Fatalf("nil card should compute 0, got %s", got)
	}
}

func TestRegistryFallsBackToFullBalance(t *testing.T) {
	registry := NewRegistry(FullBalance{})

	if calc := registry.Get("full_balance"); calc.Type() != "full_balance" {
		t.Fatalf("expected full_balance, got %s", calc.Type())
	}
	if calc := registry.Get("no_such_type"); calc.Type() != "full_balance" {
		t.Fatalf("unknown type should fall back to full_balance, got %s", calc.Type())
	}
}
