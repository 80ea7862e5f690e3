// Package staking implements the XLM<->sXLM exchange-rate core, the
// withdrawal queue, reward accrual, and slashing (spec.md §4.2), grounded
// on the state/Engine/event shape of the teacher's native/lending.Engine.
package staking

import (
	"fmt"
	"math/big"

	"xlmstake/common"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/nativecoin"
	"xlmstake/token"
)

const moduleName = "staking"
const singletonKey = "staking/meta"

func withdrawalKey(id uint64) string { return fmt.Sprintf("staking/withdrawal/%020d", id) }
func withdrawalPrefixForOwner() string { return "staking/withdrawal/" }
func validatorsKey() string { return "staking/validators" }

// Engine is the staking core. It holds a reference to the receipt-token
// engine (for mint/burn) and the native XLM ledger (for transfers), exactly
// as spec.md §2 describes the staking core's outbound calls.
type Engine struct {
	store   *ledger.Ledger
	sxlm    *token.Engine
	coin    *nativecoin.Ledger
	emitter events.Emitter
	nowFn   func() uint64
}

func New(store *ledger.Ledger, sxlm *token.Engine, coin *nativecoin.Ledger, emitter events.Emitter, nowFn func() uint64) *Engine {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	return &Engine{store: store, sxlm: sxlm, coin: coin, emitter: emitter, nowFn: nowFn}
}

func (e *Engine) now() uint64 {
	if e.nowFn == nil {
		return 0
	}
	return e.nowFn()
}

type pauseView struct{ paused bool }

func (p pauseView) IsPaused(module string) bool { return module == moduleName && p.paused }

func (e *Engine) load() (*singleton, error) {
	var m singleton
	if err := e.store.GetJSON(singletonKey, &m); err != nil {
		return nil, errNotInitialized
	}
	return &m, nil
}

func (e *Engine) save(m *singleton) error {
	return e.store.PutJSON(singletonKey, m, ledger.DefaultTTL)
}

// Initialize is the one-shot constructor. nativeVault is the address this
// contract uses as its own XLM-holding identity in the nativecoin ledger.
func (e *Engine) Initialize(admin crypto.Address, nativeVault crypto.Address, cooldownPeriod uint64) error {
	if e.store.Has(singletonKey) {
		return errAlreadyInitialized
	}
	m := &singleton{
		Admin:           admin.String(),
		NativeVault:     nativeVault.String(),
		CooldownPeriod:  cooldownPeriod,
		ProtocolFeeBps:  1000,
		TotalXLMStaked:  big.NewInt(0),
		LiquidityBuffer: big.NewInt(0),
		TreasuryBalance: big.NewInt(0),
		Initialized:     true,
	}
	return e.save(m)
}

func (e *Engine) vault(m *singleton) crypto.Address {
	addr, err := crypto.DecodeAddress(m.NativeVault)
	if err != nil {
		panic(err) // invariant: NativeVault was validated at Initialize
	}
	return addr
}

// GetExchangeRate implements invariant S1: total_xlm_staked/total_sxlm_supply
// scaled by RATE_PRECISION, or exactly RATE_PRECISION when supply is zero.
func (e *Engine) GetExchangeRate() (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	supply, err := e.sxlm.TotalSupply()
	if err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return big.NewInt(common.RatePrecision), nil
	}
	return common.MulDiv(m.TotalXLMStaked, big.NewInt(common.RatePrecision), supply), nil
}

// Deposit pulls xlm_amount native coin from user and mints sXLM at the
// current exchange rate.
func (e *Engine) Deposit(user crypto.Address, xlmAmount *big.Int) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if err := common.Guard(pauseView{m.IsPaused}, moduleName); err != nil {
		return nil, errPaused
	}
	if !common.IsPositive(xlmAmount) {
		return nil, errInvalidAmount
	}
	if xlmAmount.Cmp(big.NewInt(MinStake)) < 0 {
		return nil, errBelowMinStake
	}

	vault := e.vault(m)
	if err := e.coin.Transfer(user, vault, xlmAmount); err != nil {
		return nil, err
	}

	supplyBefore, err := e.sxlm.TotalSupply()
	if err != nil {
		return nil, err
	}
	totalStakedBefore := new(big.Int).Set(m.TotalXLMStaked)

	var sxlmMinted *big.Int
	if supplyBefore.Sign() == 0 {
		sxlmMinted = new(big.Int).Set(xlmAmount)
	} else {
		sxlmMinted = common.MulDiv(xlmAmount, supplyBefore, totalStakedBefore)
	}

	m.TotalXLMStaked = new(big.Int).Add(m.TotalXLMStaked, xlmAmount)
	m.LiquidityBuffer = new(big.Int).Add(m.LiquidityBuffer, xlmAmount)

	if err := e.sxlm.Mint(vault, user, sxlmMinted); err != nil {
		return nil, err
	}
	if err := e.save(m); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("staking.deposit", "user", user.String(), "xlm_amount", xlmAmount.String(), "sxlm_minted", sxlmMinted.String()))
	return sxlmMinted, nil
}

// RequestWithdrawal burns sxlm_amount and either pays out XLM instantly
// (when the liquidity buffer covers it and the caller asked for instant) or
// enqueues a delayed, cooldown-gated Withdrawal.
func (e *Engine) RequestWithdrawal(user crypto.Address, sxlmAmount *big.Int, wantInstant bool) (id uint64, isInstant bool, xlmOut *big.Int, err error) {
	m, err := e.load()
	if err != nil {
		return 0, false, nil, err
	}
	if err := common.Guard(pauseView{m.IsPaused}, moduleName); err != nil {
		return 0, false, nil, errPaused
	}
	if !common.IsPositive(sxlmAmount) {
		return 0, false, nil, errInvalidAmount
	}
	if e.sxlm.Balance(user).Cmp(sxlmAmount) < 0 {
		return 0, false, nil, errInsufficientSxlm
	}

	supply, err := e.sxlm.TotalSupply()
	if err != nil {
		return 0, false, nil, err
	}
	if supply.Sign() == 0 {
		return 0, false, nil, errInsufficientSxlm
	}
	xlmOut = common.MulDiv(sxlmAmount, m.TotalXLMStaked, supply)

	vault := e.vault(m)
	if err := e.sxlm.Burn(vault, user, sxlmAmount); err != nil {
		return 0, false, nil, err
	}
	m.TotalXLMStaked = new(big.Int).Sub(m.TotalXLMStaked, xlmOut)

	if wantInstant && m.LiquidityBuffer.Cmp(xlmOut) >= 0 {
		m.LiquidityBuffer = new(big.Int).Sub(m.LiquidityBuffer, xlmOut)
		if err := e.coin.Transfer(vault, user, xlmOut); err != nil {
			return 0, false, nil, err
		}
		if err := e.save(m); err != nil {
			return 0, false, nil, err
		}
		e.emitter.Emit(events.New("staking.instant", "user", user.String(), "xlm_amount", xlmOut.String()))
		return 0, true, xlmOut, nil
	}

	// The delayed path leaves the buffer untouched while total_xlm_staked
	// just shrank, so reclamp to preserve S2 (total_xlm_staked >=
	// liquidity_buffer): the buffer can never earmark more than what is
	// still backing outstanding sXLM.
	m.LiquidityBuffer = common.Min(m.LiquidityBuffer, m.TotalXLMStaked)

	id = m.NextWithdrawalID
	m.NextWithdrawalID++
	w := &Withdrawal{
		ID:           id,
		Owner:        user.String(),
		XLMAmount:    xlmOut,
		UnlockLedger: e.now() + m.CooldownPeriod,
		Claimed:      false,
	}
	if err := e.store.PutJSON(withdrawalKey(id), w, ledger.DefaultTTL); err != nil {
		return 0, false, nil, err
	}
	if err := e.save(m); err != nil {
		return 0, false, nil, err
	}
	e.emitter.Emit(events.New("staking.delayed", "user", user.String(), "xlm_amount", xlmOut.String(),
		"withdrawal_id", fmt.Sprint(id), "unlock_ledger", fmt.Sprint(w.UnlockLedger)))
	return id, false, xlmOut, nil
}

func (e *Engine) getWithdrawal(id uint64) (*Withdrawal, error) {
	var w Withdrawal
	if err := e.store.GetJSON(withdrawalKey(id), &w); err != nil {
		return nil, errNotFound
	}
	return &w, nil
}

// ClaimWithdrawal pays out a matured delayed withdrawal. Not gated by pause
// per spec.md §4.2: is_paused blocks deposit/request_withdrawal only.
func (e *Engine) ClaimWithdrawal(user crypto.Address, id uint64) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	w, err := e.getWithdrawal(id)
	if err != nil {
		return nil, err
	}
	if w.Owner != user.String() {
		return nil, errNotOwner
	}
	if w.Claimed {
		return nil, errAlreadyClaimed
	}
	if e.now() < w.UnlockLedger {
		return nil, errWithdrawalLocked
	}
	w.Claimed = true
	if err := e.store.PutJSON(withdrawalKey(id), w, ledger.DefaultTTL); err != nil {
		return nil, err
	}
	vault := e.vault(m)
	if err := e.coin.Transfer(vault, user, w.XLMAmount); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("staking.claimed", "user", user.String(), "xlm_amount", w.XLMAmount.String(), "withdrawal_id", fmt.Sprint(id)))
	return w.XLMAmount, nil
}

// AddRewards increases total_xlm_staked by amount net of the protocol fee,
// which the harvest_interest keeper calls to push lending interest (and
// other yield sources) into the exchange rate.
func (e *Engine) AddRewards(caller crypto.Address, amount *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	if !common.IsPositive(amount) {
		return errInvalidAmount
	}
	vault := e.vault(m)
	if err := e.coin.Transfer(caller, vault, amount); err != nil {
		return err
	}
	fee := common.BpsOf(amount, m.ProtocolFeeBps)
	net := new(big.Int).Sub(amount, fee)
	m.TreasuryBalance = new(big.Int).Add(m.TreasuryBalance, fee)
	m.TotalXLMStaked = new(big.Int).Add(m.TotalXLMStaked, net)
	if err := e.save(m); err != nil {
		return err
	}
	e.emitter.Emit(events.New("staking.rewards", "amount", amount.String()))
	return nil
}

// ApplySlashing reduces total_xlm_staked and, per spec.md §7's mandatory
// slashing-reconciliation rule, scales every unclaimed pending Withdrawal by
// the same fraction so no claim outlives the reserve backing it.
func (e *Engine) ApplySlashing(caller crypto.Address, slashAmount *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	if !common.IsPositive(slashAmount) {
		return errInvalidAmount
	}
	actual := common.Min(slashAmount, m.TotalXLMStaked)
	if actual.Sign() == 0 {
		return nil
	}

	before := new(big.Int).Set(m.TotalXLMStaked)
	m.TotalXLMStaked = new(big.Int).Sub(m.TotalXLMStaked, actual)

	// The buffer earmarks XLM out of the same pool that just absorbed the
	// slash, so scale it down by the identical (before-actual)/before
	// fraction reconcilePendingWithdrawals applies to pending claims, then
	// clamp for the rounding edge where LiquidityBuffer already exceeded
	// total_xlm_staked before the scale.
	remainingNumer := new(big.Int).Sub(before, actual)
	m.LiquidityBuffer = common.MulDiv(m.LiquidityBuffer, remainingNumer, before)
	m.LiquidityBuffer = common.Min(m.LiquidityBuffer, m.TotalXLMStaked)

	if err := e.reconcilePendingWithdrawals(before, actual); err != nil {
		return err
	}
	if err := e.save(m); err != nil {
		return err
	}
	e.emitter.Emit(events.New("staking.slashed", "amount", actual.String()))
	return nil
}

// reconcilePendingWithdrawals scales every unclaimed Withdrawal.XLMAmount by
// (1 - slashAmount/totalBefore), the mandatory on-chain duty spec.md §9 OQ2
// requires rather than an off-chain mirror adjustment.
func (e *Engine) reconcilePendingWithdrawals(totalBefore, slashAmount *big.Int) error {
	if totalBefore.Sign() == 0 {
		return nil
	}
	keys, err := e.store.KeysWithPrefix(withdrawalPrefixForOwner())
	if err != nil {
		return err
	}
	remainingNumer := new(big.Int).Sub(totalBefore, slashAmount)
	for _, key := range keys {
		var w Withdrawal
		if err := e.store.GetJSON(key, &w); err != nil {
			continue
		}
		if w.Claimed {
			continue
		}
		w.XLMAmount = common.MulDiv(w.XLMAmount, remainingNumer, totalBefore)
		if err := e.store.PutJSON(key, &w, ledger.DefaultTTL); err != nil {
			return err
		}
	}
	return nil
}

// RecalibrateRate is a pure read emitted as an event for off-chain
// consumption; it mutates nothing.
func (e *Engine) RecalibrateRate() (*big.Int, error) {
	rate, err := e.GetExchangeRate()
	if err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("staking.recalibrate", "rate", rate.String()))
	return rate, nil
}

// SetProtocolFeeBps lets the admin (or an executed governance proposal,
// forwarded by the node) change the cut AddRewards routes to TreasuryBalance.
func (e *Engine) SetProtocolFeeBps(caller crypto.Address, bps uint32) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	m.ProtocolFeeBps = bps
	return e.save(m)
}

func (e *Engine) Pause(caller crypto.Address) error  { return e.setPaused(caller, true) }
func (e *Engine) Unpause(caller crypto.Address) error { return e.setPaused(caller, false) }

func (e *Engine) setPaused(caller crypto.Address, paused bool) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	m.IsPaused = paused
	return e.save(m)
}

func (e *Engine) TotalXLMStaked() (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	return m.TotalXLMStaked, nil
}

func (e *Engine) LiquidityBuffer() (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	return m.LiquidityBuffer, nil
}

func (e *Engine) TreasuryBalance() (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	return m.TreasuryBalance, nil
}

func (e *Engine) IsPaused() (bool, error) {
	m, err := e.load()
	if err != nil {
		return false, err
	}
	return m.IsPaused, nil
}

func (e *Engine) ProtocolFeeBps() (uint32, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	return m.ProtocolFeeBps, nil
}

// BumpInstance extends the TTL of the singleton entry.
func (e *Engine) BumpInstance(extendBy uint64) error {
	return e.store.BumpTTL(singletonKey, extendBy)
}

// --- Advisory validator list (supplemented from original_source's
// validator-manager contract; creates no on-chain delegation accounting) ---

func (e *Engine) loadValidators() ([]Validator, error) {
	var vs []Validator
	if err := e.store.GetJSON(validatorsKey(), &vs); err != nil {
		return nil, nil
	}
	return vs, nil
}

func (e *Engine) AddValidator(caller crypto.Address, v Validator) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	if v.Score < MinValidatorScore {
		return errValidatorScoreLow
	}
	vs, err := e.loadValidators()
	if err != nil {
		return err
	}
	if len(vs) >= MaxValidators {
		return errTooManyValidators
	}
	for i, existing := range vs {
		if existing.Address == v.Address {
			vs[i] = v
			return e.store.PutJSON(validatorsKey(), vs, ledger.DefaultTTL)
		}
	}
	vs = append(vs, v)
	return e.store.PutJSON(validatorsKey(), vs, ledger.DefaultTTL)
}

func (e *Engine) ListValidators() ([]Validator, error) {
	return e.loadValidators()
}
