package ledger

import (
	"context"
	"errors"
	"testing"
)

const testLedger = "CLEDGER"

func TestLiquiditySourcer_FirstSufficientInOrder(t *testing.T) {
	reg := &fakeRegistry{admins: []string{"GA1", "GA2", "GA3"}}
	value := newFakeValue()
	value.allowances["GA1|"+testLedger] = 100
	value.allowances["GA2|"+testLedger] = 600
	value.allowances["GA3|"+testLedger] = 10_000

	src := NewLiquiditySourcer(reg, value, testLedger)
	admin, ok, err := src.FindAdmin(context.Background(), 500)
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if !ok || admin != "GA2" {
		t.Fatalf("expected GA2, got %q ok=%v", admin, ok)
	}
	if len(value.queried) != 2 {
		t.Fatalf("expected scan to stop after match, queried %v", value.queried)
	}
}

func TestLiquiditySourcer_ExactAllowanceSuffices(t *testing.T) {
	reg := &fakeRegistry{admins: []string{"GA1"}}
	value := newFakeValue()
	value.allowances["GA1|"+testLedger] = 500

	admin, ok, err := NewLiquiditySourcer(reg, value, testLedger).FindAdmin(context.Background(), 500)
	if err != nil || !ok || admin != "GA1" {
		t.Fatalf("expected GA1, got %q ok=%v err=%v", admin, ok, err)
	}
}

func TestLiquiditySourcer_NoneFound(t *testing.T) {
	reg := &fakeRegistry{admins: []string{"GA1", "GA2"}}
	value := newFakeValue()
	value.allowances["GA1|"+testLedger] = 499
	// Allowance granted to a different spender does not count.
	value.allowances["GA2|CELSEWHERE"] = 10_000

	_, ok, err := NewLiquiditySourcer(reg, value, testLedger).FindAdmin(context.Background(), 500)
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if ok {
		t.Fatal("expected no admin")
	}
}

func TestLiquiditySourcer_RegistryError(t *testing.T) {
	reg := &fakeRegistry{err: errRegistryDown}
	_, _, err := NewLiquiditySourcer(reg, newFakeValue(), testLedger).FindAdmin(context.Background(), 1)
	if !errors.Is(err, errRegistryDown) {
		t.Fatalf("expected registry error, got %v", err)
	}
}
