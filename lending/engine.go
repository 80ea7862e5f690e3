// Package lending implements collateralised XLM borrowing against sXLM
// (spec.md §4.3), directly grounded on the accrual/health-check/liquidate
// shape of the teacher's native/lending.Engine, rescaled from that engine's
// ray=1e18 accumulator to spec.md's RATE_PRECISION=1e7.
package lending

import (
	"math/big"

	"xlmstake/common"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/nativecoin"
	"xlmstake/token"
)

const singletonKey = "lending/meta"

func positionKey(addr crypto.Address) string { return "lending/position/" + addr.String() }

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

func (e *Engine) Initialize(admin, sxlmVault, nativeVault crypto.Address, collateralFactorBps, liquidationThresholdBps, borrowRateBps uint32) error {
	if e.store.Has(singletonKey) {
		return errAlreadyInitialized
	}
	m := &singleton{
		Admin:                   admin.String(),
		SxlmVault:               sxlmVault.String(),
		NativeVault:             nativeVault.String(),
		TotalCollateral:         big.NewInt(0),
		TotalBorrowed:           big.NewInt(0),
		PoolBalance:             big.NewInt(0),
		ExchangeRate:            big.NewInt(common.RatePrecision),
		CollateralFactorBps:     collateralFactorBps,
		LiquidationThresholdBps: liquidationThresholdBps,
		LiquidationBonusBps:     500,
		BorrowRateBps:           borrowRateBps,
		Accumulator:             big.NewInt(common.RatePrecision),
		TotalAccruedInterest:    big.NewInt(0),
		LastUpdateLedger:        e.now(),
		Initialized:             true,
	}
	return e.save(m)
}

func (e *Engine) loadPosition(addr crypto.Address) (*Position, error) {
	var p Position
	if err := e.store.GetJSON(positionKey(addr), &p); err != nil {
		return &Position{
			SxlmCollateral:       big.NewInt(0),
			XlmBorrowedPrincipal: big.NewInt(0),
			BorrowIndex:          big.NewInt(common.RatePrecision),
		}, nil
	}
	return &p, nil
}

func (e *Engine) savePosition(addr crypto.Address, p *Position) error {
	return e.store.PutJSON(positionKey(addr), p, ledger.DefaultTTL)
}

// accrue advances the global accumulator by
// accumulator * (borrow_rate_bps/10000) * Δledgers / LEDGERS_PER_YEAR,
// floor-rounded, and credits the delta to total_accrued_interest/total_borrowed.
func (e *Engine) accrue(m *singleton) {
	delta := e.now() - m.LastUpdateLedger
	if delta == 0 || m.BorrowRateBps == 0 || m.TotalBorrowed.Sign() == 0 {
		m.LastUpdateLedger = e.now()
		return
	}
	// growth = accumulator * borrow_rate_bps * delta / (10000 * LEDGERS_PER_YEAR)
	num := new(big.Int).Mul(m.Accumulator, big.NewInt(int64(m.BorrowRateBps)))
	num.Mul(num, big.NewInt(int64(delta)))
	den := new(big.Int).Mul(big.NewInt(common.BpsScale), big.NewInt(LedgersPerYear))
	growth := new(big.Int).Quo(num, den)

	newAccumulator := new(big.Int).Add(m.Accumulator, growth)

	// Interest accrued this tick = total_borrowed * growth / accumulator_before.
	interest := common.MulDiv(m.TotalBorrowed, growth, m.Accumulator)
	m.Accumulator = newAccumulator
	m.TotalBorrowed = new(big.Int).Add(m.TotalBorrowed, interest)
	m.TotalAccruedInterest = new(big.Int).Add(m.TotalAccruedInterest, interest)
	m.LastUpdateLedger = e.now()
}

// freshDebt returns a position's current owed debt: principal *
// accumulator / borrow_index.
func freshDebt(p *Position, accumulator *big.Int) *big.Int {
	if p.XlmBorrowedPrincipal.Sign() == 0 {
		return big.NewInt(0)
	}
	return common.MulDiv(p.XlmBorrowedPrincipal, accumulator, p.BorrowIndex)
}

// healthFactor implements spec.md §4.3's hf formula, scale RATE_PRECISION.
// A position with no debt is always healthy (returns a very large value).
func healthFactor(collateral, exchangeRate *big.Int, liquidationThresholdBps uint32, debt *big.Int) *big.Int {
	if debt.Sign() == 0 {
		return new(big.Int).Lsh(big.NewInt(1), 126)
	}
	num := new(big.Int).Mul(collateral, exchangeRate)
	num.Mul(num, big.NewInt(int64(liquidationThresholdBps)))
	den := new(big.Int).Mul(debt, big.NewInt(common.BpsScale))
	den.Mul(den, big.NewInt(common.RatePrecision))
	return common.MulDiv(num, big.NewInt(common.RatePrecision), den)
}

func maxBorrow(collateral, exchangeRate *big.Int, collateralFactorBps uint32) *big.Int {
	num := new(big.Int).Mul(collateral, exchangeRate)
	num.Mul(num, big.NewInt(int64(collateralFactorBps)))
	den := new(big.Int).Mul(big.NewInt(common.BpsScale), big.NewInt(common.RatePrecision))
	return common.MulDiv(num, big.NewInt(1), den)
}

// DepositCollateral pulls sXLM from user into the module's sXLM vault.
func (e *Engine) DepositCollateral(user crypto.Address, sxlmAmount *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if !common.IsPositive(sxlmAmount) {
		return errInvalidAmount
	}
	if err := e.sxlm.Transfer(user, e.sxlmVault(m), sxlmAmount); err != nil {
		return err
	}
	p, err := e.loadPosition(user)
	if err != nil {
		return err
	}
	p.SxlmCollateral = new(big.Int).Add(p.SxlmCollateral, sxlmAmount)
	m.TotalCollateral = new(big.Int).Add(m.TotalCollateral, sxlmAmount)
	if err := e.savePosition(user, p); err != nil {
		return err
	}
	if err := e.save(m); err != nil {
		return err
	}
	e.emitter.Emit(events.New("lending.deposit", "user", user.String(), "sxlm_amount", sxlmAmount.String()))
	return nil
}

// WithdrawCollateral releases sXLM back to user, asserting the remaining
// position stays healthy.
func (e *Engine) WithdrawCollateral(user crypto.Address, sxlmAmount *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if !common.IsPositive(sxlmAmount) {
		return errInvalidAmount
	}
	e.accrue(m)

	p, err := e.loadPosition(user)
	if err != nil {
		return err
	}
	if p.SxlmCollateral.Cmp(sxlmAmount) < 0 {
		return errInsufficientCollateral
	}
	debt := freshDebt(p, m.Accumulator)
	remaining := new(big.Int).Sub(p.SxlmCollateral, sxlmAmount)
	if healthFactor(remaining, m.ExchangeRate, m.LiquidationThresholdBps, debt).Cmp(big.NewInt(common.RatePrecision)) < 0 {
		return errUnhealthyAfter
	}

	if err := e.sxlm.Transfer(e.sxlmVault(m), user, sxlmAmount); err != nil {
		return err
	}
	p.SxlmCollateral = remaining
	p.XlmBorrowedPrincipal = debt
	p.BorrowIndex = m.Accumulator
	p.LastUpdateLedger = e.now()
	m.TotalCollateral = new(big.Int).Sub(m.TotalCollateral, sxlmAmount)

	if err := e.savePosition(user, p); err != nil {
		return err
	}
	return e.save(m)
}

// Borrow accrues interest, increases debt, and pays out XLM from the pool.
func (e *Engine) Borrow(user crypto.Address, xlmAmount *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if !common.IsPositive(xlmAmount) {
		return errInvalidAmount
	}
	e.accrue(m)
	if m.PoolBalance.Cmp(xlmAmount) < 0 {
		return errInsufficientLiquidity
	}

	p, err := e.loadPosition(user)
	if err != nil {
		return err
	}
	debt := freshDebt(p, m.Accumulator)
	projected := new(big.Int).Add(debt, xlmAmount)
	if healthFactor(p.SxlmCollateral, m.ExchangeRate, m.LiquidationThresholdBps, projected).Cmp(big.NewInt(common.RatePrecision)) < 0 {
		return errUnhealthyAfter
	}

	if err := e.coin.Transfer(e.nativeVault(m), user, xlmAmount); err != nil {
		return err
	}
	m.PoolBalance = new(big.Int).Sub(m.PoolBalance, xlmAmount)
	m.TotalBorrowed = new(big.Int).Add(m.TotalBorrowed, xlmAmount)

	p.XlmBorrowedPrincipal = projected
	p.BorrowIndex = m.Accumulator
	p.LastUpdateLedger = e.now()

	if err := e.savePosition(user, p); err != nil {
		return err
	}
	if err := e.save(m); err != nil {
		return err
	}
	e.emitter.Emit(events.New("lending.borrow", "user", user.String(), "xlm_amount", xlmAmount.String()))
	return nil
}

// Repay accrues, pulls min(xlmAmount, debt_fresh) from the caller, and
// reduces principal/debt accordingly.
func (e *Engine) Repay(user crypto.Address, xlmAmount *big.Int) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if !common.IsPositive(xlmAmount) {
		return nil, errInvalidAmount
	}
	e.accrue(m)

	p, err := e.loadPosition(user)
	if err != nil {
		return nil, err
	}
	debt := freshDebt(p, m.Accumulator)
	if debt.Sign() == 0 {
		return nil, errNothingToRepay
	}
	actual := common.Min(xlmAmount, debt)

	if err := e.coin.Transfer(user, e.nativeVault(m), actual); err != nil {
		return nil, err
	}
	m.PoolBalance = new(big.Int).Add(m.PoolBalance, actual)
	m.TotalBorrowed = new(big.Int).Sub(m.TotalBorrowed, actual)

	p.XlmBorrowedPrincipal = new(big.Int).Sub(debt, actual)
	p.BorrowIndex = m.Accumulator
	p.LastUpdateLedger = e.now()

	if err := e.savePosition(user, p); err != nil {
		return nil, err
	}
	if err := e.save(m); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("lending.repay", "user", user.String(), "xlm_amount", actual.String()))
	return actual, nil
}

// Liquidate lets liquidator repay up to close_factor_bps of borrower's debt
// in exchange for a bonus-weighted slice of their sXLM collateral.
func (e *Engine) Liquidate(liquidator, borrower crypto.Address) (repaid, seized *big.Int, err error) {
	m, err := e.load()
	if err != nil {
		return nil, nil, err
	}
	e.accrue(m)

	p, err := e.loadPosition(borrower)
	if err != nil {
		return nil, nil, err
	}
	debt := freshDebt(p, m.Accumulator)
	if debt.Sign() == 0 {
		return nil, nil, errPositionEmpty
	}
	hf := healthFactor(p.SxlmCollateral, m.ExchangeRate, m.LiquidationThresholdBps, debt)
	if hf.Cmp(big.NewInt(common.RatePrecision)) >= 0 {
		return nil, nil, errHealthyBorrower
	}

	repaid = common.BpsOf(debt, DefaultCloseFactorBps)
	if repaid.Sign() == 0 {
		repaid = new(big.Int).Set(debt)
	}

	// seized = repaid * RATE_PRECISION * (10000 + bonus_bps) / exchange_rate / 10000
	num := new(big.Int).Mul(repaid, big.NewInt(common.RatePrecision))
	num.Mul(num, big.NewInt(int64(common.BpsScale+int64(m.LiquidationBonusBps))))
	den := new(big.Int).Mul(m.ExchangeRate, big.NewInt(common.BpsScale))
	seized = common.MulDiv(num, big.NewInt(1), den)
	if seized.Cmp(p.SxlmCollateral) > 0 {
		seized = new(big.Int).Set(p.SxlmCollateral)
	}

	if err := e.coin.Transfer(liquidator, e.nativeVault(m), repaid); err != nil {
		return nil, nil, err
	}
	if err := e.sxlm.Transfer(e.sxlmVault(m), liquidator, seized); err != nil {
		return nil, nil, err
	}

	m.PoolBalance = new(big.Int).Add(m.PoolBalance, repaid)
	m.TotalBorrowed = new(big.Int).Sub(m.TotalBorrowed, repaid)
	m.TotalCollateral = new(big.Int).Sub(m.TotalCollateral, seized)

	p.XlmBorrowedPrincipal = new(big.Int).Sub(debt, repaid)
	p.SxlmCollateral = new(big.Int).Sub(p.SxlmCollateral, seized)
	p.BorrowIndex = m.Accumulator
	p.LastUpdateLedger = e.now()

	if err := e.savePosition(borrower, p); err != nil {
		return nil, nil, err
	}
	if err := e.save(m); err != nil {
		return nil, nil, err
	}
	e.emitter.Emit(events.New("lending.liq", "liquidator", liquidator.String(), "borrower", borrower.String(),
		"debt_repaid", repaid.String(), "collateral_seized", seized.String()))
	return repaid, seized, nil
}

// UpdateExchangeRate is the admin-authorised sXLM->XLM rate push from the
// staking core (spec.md notes: lending consumes no on-chain price oracle).
func (e *Engine) UpdateExchangeRate(caller crypto.Address, newRate *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	if !common.IsPositive(newRate) {
		return errInvalidAmount
	}
	m.ExchangeRate = newRate
	return e.save(m)
}

// SetCollateralFactorBps lets the admin (or, via the node's governance
// forwarder, an executed proposal) adjust how much borrowing power a unit of
// sXLM collateral grants.
func (e *Engine) SetCollateralFactorBps(caller crypto.Address, bps uint32) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if caller.String() != m.Admin {
		return errNotAuthorized
	}
	m.CollateralFactorBps = bps
	return e.save(m)
}

// HarvestInterest pulls min(total_accrued_interest, surplus) to admin for
// piping back into staking rewards via the off-chain/cron keeper.
func (e *Engine) HarvestInterest(caller crypto.Address) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	if caller.String() != m.Admin {
		return nil, errNotAuthorized
	}
	e.accrue(m)
	surplus := new(big.Int).Sub(m.PoolBalance, m.TotalBorrowed)
	if surplus.Sign() < 0 {
		surplus = big.NewInt(0)
	}
	amount := common.Min(m.TotalAccruedInterest, surplus)
	if amount.Sign() == 0 {
		return big.NewInt(0), e.save(m)
	}
	if err := e.coin.Transfer(e.nativeVault(m), caller, amount); err != nil {
		return nil, err
	}
	m.PoolBalance = new(big.Int).Sub(m.PoolBalance, amount)
	m.TotalAccruedInterest = new(big.Int).Sub(m.TotalAccruedInterest, amount)
	if err := e.save(m); err != nil {
		return nil, err
	}
	return amount, nil
}

// SupplyLiquidity lets the admin top up pool_balance with XLM available to
// borrowers (the staking core's delegated reserve, funnelled in off-chain).
func (e *Engine) SupplyLiquidity(caller crypto.Address, amount *big.Int) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	if !common.IsPositive(amount) {
		return errInvalidAmount
	}
	if err := e.coin.Transfer(caller, e.nativeVault(m), amount); err != nil {
		return err
	}
	m.PoolBalance = new(big.Int).Add(m.PoolBalance, amount)
	return e.save(m)
}

// --- Views ---

func (e *Engine) GetPosition(user crypto.Address) (*Position, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	p, err := e.loadPosition(user)
	if err != nil {
		return nil, err
	}
	return &Position{
		SxlmCollateral:       p.SxlmCollateral,
		XlmBorrowedPrincipal: freshDebt(p, m.Accumulator),
		BorrowIndex:          m.Accumulator,
		LastUpdateLedger:     p.LastUpdateLedger,
	}, nil
}

func (e *Engine) HealthFactor(user crypto.Address) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	p, err := e.loadPosition(user)
	if err != nil {
		return nil, err
	}
	debt := freshDebt(p, m.Accumulator)
	return healthFactor(p.SxlmCollateral, m.ExchangeRate, m.LiquidationThresholdBps, debt), nil
}

func (e *Engine) MaxBorrow(user crypto.Address) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	p, err := e.loadPosition(user)
	if err != nil {
		return nil, err
	}
	return maxBorrow(p.SxlmCollateral, m.ExchangeRate, m.CollateralFactorBps), nil
}

func (e *Engine) GetPoolBalance() (*big.Int, error)          { return e.field(func(m *singleton) *big.Int { return m.PoolBalance }) }
func (e *Engine) TotalCollateral() (*big.Int, error)          { return e.field(func(m *singleton) *big.Int { return m.TotalCollateral }) }
func (e *Engine) TotalBorrowed() (*big.Int, error)            { return e.field(func(m *singleton) *big.Int { return m.TotalBorrowed }) }
func (e *Engine) TotalAccruedInterest() (*big.Int, error)     { return e.field(func(m *singleton) *big.Int { return m.TotalAccruedInterest }) }
func (e *Engine) GetExchangeRate() (*big.Int, error)          { return e.field(func(m *singleton) *big.Int { return m.ExchangeRate }) }

func (e *Engine) field(get func(*singleton) *big.Int) (*big.Int, error) {
	m, err := e.load()
	if err != nil {
		return nil, err
	}
	return get(m), nil
}

func (e *Engine) GetCollateralFactor() (uint32, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	return m.CollateralFactorBps, nil
}

func (e *Engine) GetLiquidationThreshold() (uint32, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	return m.LiquidationThresholdBps, nil
}

func (e *Engine) GetBorrowRate() (uint32, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	return m.BorrowRateBps, nil
}

func (e *Engine) BumpInstance(extendBy uint64) error {
	return e.store.BumpTTL(singletonKey, extendBy)
}
