package ledger

// SeedBalance is a test helper that sets a balance directly when using the in-memory store.
func SeedBalance(store UnitOfWork, account string, asset Asset, amount uint32) {
	if mem, ok := store.(*MemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[balanceKey{account: account, asset: asset}] = amount
	}
}
