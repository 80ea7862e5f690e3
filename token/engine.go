// Package token implements the supply-capped, mint/burn-restricted sXLM
// receipt-token ledger (spec.md §4.1), grounded on the shape of the
// teacher's native/lending.Engine: a single Engine struct holding an
// injected storage handle and pure functions for every state transition.
package token

import (
	"fmt"
	"math/big"

	"xlmstake/common"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
)

const metaKey = "token/meta"

func balKey(addr crypto.Address) string { return "token/bal/" + addr.String() }
func allowKey(owner, spender crypto.Address) string {
	return "token/allow/" + owner.String() + ":" + spender.String()
}

// Engine is the receipt-token ledger. It never calls into any other
// module; staking/lending/amm/governance hold a reference to it. Only
// staking calls Mint/Burn, with its vault address as the authenticated
// minter; lending and amm move sXLM with Transfer.
type Engine struct {
	store   *ledger.Ledger
	emitter events.Emitter
	nowFn   func() uint64 // current ledger sequence, for allowance expiry
}

func New(store *ledger.Ledger, emitter events.Emitter, nowFn func() uint64) *Engine {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	return &Engine{store: store, emitter: emitter, nowFn: nowFn}
}

func (e *Engine) now() uint64 {
	if e.nowFn == nil {
		return 0
	}
	return e.nowFn()
}

func (e *Engine) loadMeta() (*meta, error) {
	var m meta
	if err := e.store.GetJSON(metaKey, &m); err != nil {
		return nil, errNotInitialized
	}
	return &m, nil
}

func (e *Engine) saveMeta(m *meta) error {
	return e.store.PutJSON(metaKey, m, ledger.DefaultTTL)
}

// Initialize is the one-shot constructor call for the token instance.
func (e *Engine) Initialize(admin, minter crypto.Address, decimals uint8, name, symbol string) error {
	if e.store.Has(metaKey) {
		return errAlreadyInitialized
	}
	m := &meta{
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		Admin:       admin.String(),
		Minter:      minter.String(),
		TotalSupply: big.NewInt(0),
		Initialized: true,
	}
	return e.saveMeta(m)
}

func (e *Engine) TotalSupply() (*big.Int, error) {
	m, err := e.loadMeta()
	if err != nil {
		return nil, err
	}
	return m.TotalSupply, nil
}

// Balance returns owner's balance, or zero if the entry was never created
// or has already decremented to removal.
func (e *Engine) Balance(owner crypto.Address) *big.Int {
	var b big.Int
	if err := e.store.GetJSON(balKey(owner), &b); err != nil {
		return big.NewInt(0)
	}
	return &b
}

func (e *Engine) setBalance(owner crypto.Address, amount *big.Int) error {
	key := balKey(owner)
	if amount.Sign() == 0 {
		return e.store.Delete(key)
	}
	return e.store.PutJSON(key, amount, ledger.DefaultTTL)
}

// Mint credits `to` and grows total_supply. caller must be the current
// minter (Soroban's require_auth on the minter principal); this engine
// checks authorization, never signatures, and the rpc layer does not
// verify signatures either.
func (e *Engine) Mint(caller, to crypto.Address, amount *big.Int) error {
	if !common.IsPositive(amount) {
		return errInvalidAmount
	}
	m, err := e.loadMeta()
	if err != nil {
		return err
	}
	if caller.String() != m.Minter {
		return errNotAuthorized
	}
	newSupply := new(big.Int).Add(m.TotalSupply, amount)
	if newSupply.BitLen() > 127 {
		return errArithmeticOverflow
	}
	newBal := new(big.Int).Add(e.Balance(to), amount)
	if err := e.setBalance(to, newBal); err != nil {
		return err
	}
	m.TotalSupply = newSupply
	if err := e.saveMeta(m); err != nil {
		return err
	}
	e.emitter.Emit(events.New("token.mint", "to", to.String(), "amount", amount.String()))
	return nil
}

// Burn debits `from` and shrinks total_supply. The caller must be either
// the minter (staking core burning on a user's behalf during withdrawal)
// or the holder itself.
func (e *Engine) Burn(caller, from crypto.Address, amount *big.Int) error {
	if !common.IsPositive(amount) {
		return errInvalidAmount
	}
	m, err := e.loadMeta()
	if err != nil {
		return err
	}
	if caller.String() != m.Minter && !caller.Equal(from) {
		return errNotAuthorized
	}
	bal := e.Balance(from)
	if bal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	if err := e.setBalance(from, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	m.TotalSupply = new(big.Int).Sub(m.TotalSupply, amount)
	if err := e.saveMeta(m); err != nil {
		return err
	}
	e.emitter.Emit(events.New("token.burn", "from", from.String(), "amount", amount.String()))
	return nil
}

// Transfer moves amount from caller's own balance to to. Authorization is
// "caller authenticated as from": in this Go port caller IS from, there is
// no separate signature check inside the engine.
func (e *Engine) Transfer(from, to crypto.Address, amount *big.Int) error {
	if !common.IsNonNegative(amount) {
		return errInvalidAmount
	}
	if _, err := e.loadMeta(); err != nil {
		return err
	}
	if from.Equal(to) || amount.Sign() == 0 {
		return nil
	}
	fromBal := e.Balance(from)
	if fromBal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	if err := e.setBalance(from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	if err := e.setBalance(to, new(big.Int).Add(e.Balance(to), amount)); err != nil {
		return err
	}
	e.emitter.Emit(events.New("token.transfer", "from", from.String(), "to", to.String(), "amount", amount.String()))
	return nil
}

// Approve sets owner's allowance for spender, valid through expirationLedger.
func (e *Engine) Approve(owner, spender crypto.Address, amount *big.Int, expirationLedger uint64) error {
	if !common.IsNonNegative(amount) {
		return errInvalidAmount
	}
	return e.store.PutJSON(allowKey(owner, spender), &allowance{Amount: amount, ExpirationLedger: expirationLedger}, ledger.DefaultTTL)
}

// Allowance returns the remaining, non-expired allowance spender holds
// over owner's balance.
func (e *Engine) Allowance(owner, spender crypto.Address) *big.Int {
	var a allowance
	if err := e.store.GetJSON(allowKey(owner, spender), &a); err != nil {
		return big.NewInt(0)
	}
	if a.ExpirationLedger != 0 && e.now() > a.ExpirationLedger {
		return big.NewInt(0)
	}
	return a.Amount
}

// TransferFrom spends part (or all) of owner's allowance to move funds to
// to, authenticated as spender.
func (e *Engine) TransferFrom(spender, owner, to crypto.Address, amount *big.Int) error {
	if !common.IsPositive(amount) {
		return errInvalidAmount
	}
	var a allowance
	if err := e.store.GetJSON(allowKey(owner, spender), &a); err != nil {
		return errInsufficientAllowance
	}
	if a.ExpirationLedger != 0 && e.now() > a.ExpirationLedger {
		return errAllowanceExpired
	}
	if a.Amount.Cmp(amount) < 0 {
		return errInsufficientAllowance
	}
	ownerBal := e.Balance(owner)
	if ownerBal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	if err := e.setBalance(owner, new(big.Int).Sub(ownerBal, amount)); err != nil {
		return err
	}
	if err := e.setBalance(to, new(big.Int).Add(e.Balance(to), amount)); err != nil {
		return err
	}
	a.Amount = new(big.Int).Sub(a.Amount, amount)
	if err := e.store.PutJSON(allowKey(owner, spender), &a, ledger.DefaultTTL); err != nil {
		return err
	}
	e.emitter.Emit(events.New("token.transfer", "from", owner.String(), "to", to.String(), "amount", amount.String()))
	return nil
}

// SetMinter reassigns the minter principal. admin-only.
func (e *Engine) SetMinter(caller, newMinter crypto.Address) error {
	m, err := e.loadMeta()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	m.Minter = newMinter.String()
	return e.saveMeta(m)
}

// BumpInstance extends the TTL of the singleton meta entry, analogous to
// Soroban's bump_instance host call.
func (e *Engine) BumpInstance(extendBy uint64) error {
	if err := e.store.BumpTTL(metaKey, extendBy); err != nil {
		return fmt.Errorf("token: bump instance: %w", err)
	}
	return nil
}
