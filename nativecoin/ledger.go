// Package nativecoin tracks native XLM balances for every account and
// module-owned pool address. The teacher's core/types.Account bakes in
// NHB/ZNHB-specific fields; xlmstake's native asset is singular, so this is
// a standalone minimal balance ledger rather than an adapted Account type.
package nativecoin

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"xlmstake/crypto"
)

var (
	ErrInsufficientBalance = errors.New("nativecoin: insufficient balance")
	ErrInvalidAmount       = errors.New("nativecoin: invalid amount")
)

// Ledger is a pure in-process balance table guarded by a mutex; engines
// call it directly rather than persisting balances through the TTL-aware
// ledger package, since native XLM balances never expire.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]*big.Int
}

func New() *Ledger {
	return &Ledger{balances: make(map[string]*big.Int)}
}

func (l *Ledger) BalanceOf(addr crypto.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[addr.String()]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

// Credit increases addr's balance by amount. Used when minting test
// deposits and by the admin-gated coin_credit RPC method.
func (l *Ledger) Credit(addr crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.balances[addr.String()]
	if cur == nil {
		cur = big.NewInt(0)
	}
	l.balances[addr.String()] = new(big.Int).Add(cur, amount)
	return nil
}

// Debit decreases addr's balance by amount, failing if the balance is
// insufficient.
func (l *Ledger) Debit(addr crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.balances[addr.String()]
	if cur == nil || cur.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, cur, amount)
	}
	l.balances[addr.String()] = new(big.Int).Sub(cur, amount)
	return nil
}

// Transfer moves amount from from to to atomically.
func (l *Ledger) Transfer(from, to crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	curFrom := l.balances[from.String()]
	if curFrom == nil || curFrom.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, curFrom, amount)
	}
	if from.String() == to.String() {
		return nil
	}
	curTo := l.balances[to.String()]
	if curTo == nil {
		curTo = big.NewInt(0)
	}
	l.balances[from.String()] = new(big.Int).Sub(curFrom, amount)
	l.balances[to.String()] = new(big.Int).Add(curTo, amount)
	return nil
}
