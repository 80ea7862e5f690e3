// Package amm implements the constant-product XLM/sXLM pool (spec.md §4.4),
// grounded on the singleton/position storage idiom of the lending engine and
// on the constant-product swap formula used by the AMM modules in the wider
// example pack.
package amm

import (
	"math/big"

	"xlmstake/common"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/nativecoin"
	"xlmstake/token"
)

const singletonKey = "amm/meta"

func lpKey(addr crypto.Address) string { return "amm/lp/" + addr.String() }

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

func (e *Engine) sxlmVault(m *singleton) crypto.Address {
	addr, err := crypto.DecodeAddress(m.SxlmVault)
	if err != nil {
		panic(err)
	}
	return addr
}

func (e *Engine) nativeVault(m *singleton) crypto.Address {
	addr, err := crypto.DecodeAddress(m.NativeVault)
	if err != nil {
		panic(err)
	}
	return addr
}

func (e *Engine) Initialize(admin, sxlmVault, nativeVault crypto.Address, feeBps uint32) error {
	if e.store.Has(singletonKey) {
		return errAlreadyInitialized
	}
	m := &singleton{
		Admin:         admin.String(),
		SxlmVault:     sxlmVault.String(),
		NativeVault:   nativeVault.String(),
		FeeBps:        feeBps,
		ReserveXLM:    big.NewInt(0),
		ReserveSXLM:   big.NewInt(0),
		TotalLPSupply: big.NewInt(0),
		Initialized:   true,
	}
	return e.save(m)
}

func (e *Engine) lpBalance(addr crypto.Address) (*big.Int, error) {
	var v big.Int
	if err := e.store.GetJSON(lpKey(addr), &v); err != nil {
		return big.NewInt(0), nil
	}
	return &v, nil
}

func (e *Engine) setLPBalance(addr crypto.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return e.store.Delete(lpKey(addr))
	}
	return e.store.PutJSON(lpKey(addr), amount, ledger.DefaultTTL)
}

// AddLiquidity mints LP shares for a deposit of both assets. On bootstrap,
// lp_minted = isqrt(xlm_amount*sxlm_amount) with MinLiquidity permanently
// locked to the zero address; thereafter lp_minted is the lesser of the two
// proportional quotes, and any excess on the richer side stays in the pool
// (spec.md §9 open question 3 — documented, not refunded).
func (e *Engine) AddLiquidity(user crypto.Address, xlmAmount, sxlmAmount *big.Int) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if !common.IsPositive(xlmAmount) || !common.IsPositive(sxlmAmount) {
		return nil, errInvalidAmount
	}

	var minted *big.Int
	var lockedBootstrap *big.Int
	if m.TotalLPSupply.Sign() == 0 {
		product := new(big.Int).Mul(xlmAmount, sxlmAmount)
		lp := common.Isqrt(product)
		if lp.Cmp(big.NewInt(MinLiquidity)) <= 0 {
			return nil, errBelowMinLiquidity
		}
		minted = new(big.Int).Sub(lp, big.NewInt(MinLiquidity))
		lockedBootstrap = big.NewInt(MinLiquidity)
		if err := e.setLPBalance(crypto.Address{}, lockedBootstrap); err != nil {
			return nil, err
		}
	} else {
		fromXLM := common.MulDiv(xlmAmount, m.TotalLPSupply, m.ReserveXLM)
		fromSXLM := common.MulDiv(sxlmAmount, m.TotalLPSupply, m.ReserveSXLM)
		minted = common.Min(fromXLM, fromSXLM)
		if !common.IsPositive(minted) {
			return nil, errBelowMinLiquidity
		}
	}

	if err := e.coin.Transfer(user, e.nativeVault(m), xlmAmount); err != nil {
		return nil, err
	}
	if err := e.sxlm.Transfer(user, e.sxlmVault(m), sxlmAmount); err != nil {
		return nil, err
	}

	m.ReserveXLM = new(big.Int).Add(m.ReserveXLM, xlmAmount)
	m.ReserveSXLM = new(big.Int).Add(m.ReserveSXLM, sxlmAmount)
	m.TotalLPSupply = new(big.Int).Add(m.TotalLPSupply, minted)
	if lockedBootstrap != nil {
		m.TotalLPSupply = new(big.Int).Add(m.TotalLPSupply, lockedBootstrap)
	}
	if err := e.save(m); err != nil {
		return nil, err
	}

	bal, err := e.lpBalance(user)
	if err != nil {
		return nil, err
	}
	bal = new(big.Int).Add(bal, minted)
	if err := e.setLPBalance(user, bal); err != nil {
		return nil, err
	}

	e.emitter.Emit(events.New("amm.add_liq", "user", user.String(), "xlm_in", xlmAmount.String(),
		"sxlm_in", sxlmAmount.String(), "lp_minted", minted.String()))
	return minted, nil
}

// RemoveLiquidity burns lpAmount and returns a pro-rata share of reserves.
func (e *Engine) RemoveLiquidity(user crypto.Address, lpAmount *big.Int) (xlmOut, sxlmOut *big.Int, err error) {
	m, err := e.load()
	if err != nil {
		return nil, nil, err
	}
	if !common.IsPositive(lpAmount) {
		return nil, nil, errInvalidAmount
	}
	bal, err := e.lpBalance(user)
	if err != nil {
		return nil, nil, err
	}
	if bal.Cmp(lpAmount) < 0 {
		return nil, nil, errInsufficientLiquidity
	}

	xlmOut = common.MulDiv(lpAmount, m.ReserveXLM, m.TotalLPSupply)
	sxlmOut = common.MulDiv(lpAmount, m.ReserveSXLM, m.TotalLPSupply)

	if err := e.coin.Transfer(e.nativeVault(m), user, xlmOut); err != nil {
		return nil, nil, err
	}
	if err := e.sxlm.Transfer(e.sxlmVault(m), user, sxlmOut); err != nil {
		return nil, nil, err
	}

	m.ReserveXLM = new(big.Int).Sub(m.ReserveXLM, xlmOut)
	m.ReserveSXLM = new(big.Int).Sub(m.ReserveSXLM, sxlmOut)
	m.TotalLPSupply = new(big.Int).Sub(m.TotalLPSupply, lpAmount)
	if err := e.save(m); err != nil {
		return nil, nil, err
	}

	if err := e.setLPBalance(user, new(big.Int).Sub(bal, lpAmount)); err != nil {
		return nil, nil, err
	}
	return xlmOut, sxlmOut, nil
}

// SwapXLMToSXLM swaps xlmIn for sXLM. Reserves are updated using the
// pre-fee xlm_in so the fee is retained in the pool (spec.md §4.4).
func (e *Engine) SwapXLMToSXLM(user crypto.Address, xlmIn, minSXLMOut *big.Int) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if !common.IsPositive(xlmIn) {
		return nil, errInvalidAmount
	}
	if m.ReserveXLM.Sign() == 0 || m.ReserveSXLM.Sign() == 0 {
		return nil, errInsufficientLiquidity
	}

	kBefore := new(big.Int).Mul(m.ReserveXLM, m.ReserveSXLM)

	inAfterFee := common.BpsOf(xlmIn, common.BpsScale-uint32(m.FeeBps))
	newReserveXLM := new(big.Int).Add(m.ReserveXLM, inAfterFee)
	quotient := common.MulDiv(m.ReserveXLM, m.ReserveSXLM, newReserveXLM)
	sxlmOut := new(big.Int).Sub(m.ReserveSXLM, quotient)
	if sxlmOut.Sign() <= 0 {
		return nil, errInsufficientLiquidity
	}
	if sxlmOut.Cmp(minSXLMOut) < 0 {
		return nil, errSlippageExceeded
	}

	if err := e.coin.Transfer(user, e.nativeVault(m), xlmIn); err != nil {
		return nil, err
	}
	if err := e.sxlm.Transfer(e.sxlmVault(m), user, sxlmOut); err != nil {
		return nil, err
	}

	m.ReserveXLM = new(big.Int).Add(m.ReserveXLM, xlmIn)
	m.ReserveSXLM = new(big.Int).Sub(m.ReserveSXLM, sxlmOut)

	kAfter := new(big.Int).Mul(m.ReserveXLM, m.ReserveSXLM)
	if kAfter.Cmp(kBefore) < 0 {
		return nil, errInvariantViolated
	}

	if err := e.save(m); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("amm.swap", "user", user.String(), "in_sym", "xlm", "in_amt", xlmIn.String(), "out_amt", sxlmOut.String()))
	return sxlmOut, nil
}

// SwapSXLMToXLM is the symmetric counterpart of SwapXLMToSXLM.
func (e *Engine) SwapSXLMToXLM(user crypto.Address, sxlmIn, minXLMOut *big.Int) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if !common.IsPositive(sxlmIn) {
		return nil, errInvalidAmount
	}
	if m.ReserveXLM.Sign() == 0 || m.ReserveSXLM.Sign() == 0 {
		return nil, errInsufficientLiquidity
	}

	kBefore := new(big.Int).Mul(m.ReserveXLM, m.ReserveSXLM)

	inAfterFee := common.BpsOf(sxlmIn, common.BpsScale-uint32(m.FeeBps))
	newReserveSXLM := new(big.Int).Add(m.ReserveSXLM, inAfterFee)
	quotient := common.MulDiv(m.ReserveXLM, m.ReserveSXLM, newReserveSXLM)
	xlmOut := new(big.Int).Sub(m.ReserveXLM, quotient)
	if xlmOut.Sign() <= 0 {
		return nil, errInsufficientLiquidity
	}
	if xlmOut.Cmp(minXLMOut) < 0 {
		return nil, errSlippageExceeded
	}

	if err := e.sxlm.Transfer(user, e.sxlmVault(m), sxlmIn); err != nil {
		return nil, err
	}
	if err := e.coin.Transfer(e.nativeVault(m), user, xlmOut); err != nil {
		return nil, err
	}

	m.ReserveSXLM = new(big.Int).Add(m.ReserveSXLM, sxlmIn)
	m.ReserveXLM = new(big.Int).Sub(m.ReserveXLM, xlmOut)

	kAfter := new(big.Int).Mul(m.ReserveXLM, m.ReserveSXLM)
	if kAfter.Cmp(kBefore) < 0 {
		return nil, errInvariantViolated
	}

	if err := e.save(m); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("amm.swap", "user", user.String(), "in_sym", "sxlm", "in_amt", sxlmIn.String(), "out_amt", xlmOut.String()))
	return xlmOut, nil
}

// SetFeeBps lets the admin (or an executed governance proposal, forwarded by
// the node) adjust the swap fee retained in the pool.
func (e *Engine) SetFeeBps(caller crypto.Address, bps uint32) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	m.FeeBps = bps
	return e.save(m)
}

// --- Views ---

func (e *Engine) GetReserves() (xlm, sxlm *big.Int, err error) {
	m, err := e.load()
	if err != nil {
		return nil, nil, err
	}
	return m.ReserveXLM, m.ReserveSXLM, nil
}

func (e *Engine) GetLPBalance(user crypto.Address) (*big.Int, error) {
	if _, err := e.load(); err != nil {
		return nil, err
	}
	return e.lpBalance(user)
}

func (e *Engine) TotalLPSupply() (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	return m.TotalLPSupply, nil
}

// GetPrice returns reserve_xlm*RATE_PRECISION/reserve_sxlm, floor-rounded.
func (e *Engine) GetPrice() (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if m.ReserveSXLM.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return common.MulDiv(m.ReserveXLM, big.NewInt(common.RatePrecision), m.ReserveSXLM), nil
}

func (e *Engine) GetFeeBps() (uint32, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	return m.FeeBps, nil
}

func (e *Engine) BumpInstance(extendBy uint64) error {
	return e.store.BumpTTL(singletonKey, extendBy)
}
