package token

import (
	"context"
	"math"
	"sync"
	"time"
)

type allowanceKey struct {
	owner   string
	spender string
}

type allowance struct {
	amount    uint32
	expiresAt time.Time
}

// Memory is an in-process value-transfer service for development and tests.
type Memory struct {
	mu         sync.Mutex
	spender    string
	now        func() time.Time
	balances   map[string]uint32
	allowances map[allowanceKey]allowance
}

// NewMemory builds a service whose transfers are executed by spender.
func NewMemory(spender string) *Memory {
	return &Memory{
		spender:    spender,
		now:        time.Now,
		balances:   make(map[string]uint32),
		allowances: make(map[allowanceKey]allowance),
	}
}

// WithClock replaces the time source used for allowance expiry.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Mint creates amount of value for to.
func (m *Memory) Mint(_ context.Context, to string, amount uint32) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(m.balances[to])+uint64(amount) > math.MaxUint32 {
		return ErrBalanceOverflow
	}
	m.balances[to] += amount
	return nil
}

// BalanceOf returns the value held by addr.
func (m *Memory) BalanceOf(_ context.Context, addr string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[addr], nil
}

// Allowance returns the unexpired amount owner has delegated to spender.
func (m *Memory) Allowance(_ context.Context, owner, spender string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveAllowance(allowanceKey{owner: owner, spender: spender}), nil
}

// Approve replaces the allowance owner grants spender.
func (m *Memory) Approve(_ context.Context, owner, spender string, amount uint32, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := allowanceKey{owner: owner, spender: spender}
	if amount == 0 || !expiresAt.After(m.now()) {
		delete(m.allowances, key)
		return nil
	}
	m.allowances[key] = allowance{amount: amount, expiresAt: expiresAt}
	return nil
}

// Transfer moves amount from from to to, spending from's allowance to the bound spender.
func (m *Memory) Transfer(_ context.Context, from, to string, amount uint32) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := allowanceKey{owner: from, spender: m.spender}
	granted := m.liveAllowance(key)
	if granted < amount {
		return ErrInsufficientAllowance
	}
	if m.balances[from] < amount {
		return ErrInsufficientFunds
	}
	if uint64(m.balances[to])+uint64(amount) > math.MaxUint32 {
		return ErrBalanceOverflow
	}

	a := m.allowances[key]
	a.amount -= amount
	if a.amount == 0 {
		delete(m.allowances, key)
	} else {
		m.allowances[key] = a
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}

func (m *Memory) liveAllowance(key allowanceKey) uint32 {
	a, ok := m.allowances[key]
	if !ok {
		return 0
	}
	if !a.expiresAt.After(m.now()) {
		delete(m.allowances, key)
		return 0
	}
	return a.amount
}
