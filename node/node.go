// Package node wires the five protocol engines (token, staking, lending,
// amm, governance) to a shared ledger and native-coin balance sheet,
// mirroring the dispatch/construction shape of the teacher's
// core/state_transition.go: one process-wide object other layers (RPC, CLI)
// call into rather than touching engines directly.
package node

import (
	"fmt"
	"sync/atomic"

	"xlmstake/amm"
	"xlmstake/config"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/governance"
	"xlmstake/ledger"
	"xlmstake/lending"
	"xlmstake/nativecoin"
	"xlmstake/observability"
	"xlmstake/staking"
	"xlmstake/storage"
	"xlmstake/token"
)

// Vaults collects the custody identities each engine was initialized with.
// These are generated once at genesis and persisted in the config file so
// restarts resolve the same addresses.
type Vaults struct {
	Admin              crypto.Address
	StakingVault       crypto.Address // doubles as the sXLM token minter
	LendingSxlmVault   crypto.Address
	LendingNativeVault crypto.Address
	AmmSxlmVault       crypto.Address
	AmmNativeVault     crypto.Address
}

// Node is the process-wide state machine: one ledger.Ledger shared by every
// module (each owns a disjoint key prefix), one nativecoin.Ledger for raw
// XLM balances, and the five engines built on top of them.
type Node struct {
	db       storage.Database
	seq      uint64
	chainID  uint64
	recorder *events.Recorder
	emitter  events.Emitter

	Store *ledger.Ledger
	Coin  *nativecoin.Ledger

	Token      *token.Engine
	Staking    *staking.Engine
	Lending    *lending.Engine
	AMM        *amm.Engine
	Governance *governance.Engine

	vaults Vaults
}

// New constructs a Node backed by db, binds the custody identities in v,
// and initializes all five engines with the policy parameters in cfg.
// chainID is the value callers must echo in
// RPC caller-metadata (see rpc.Server.normalizeChainID in the teacher's
// http.go).
func New(db storage.Database, chainID uint64, cfg *config.Config, v Vaults) (*Node, error) {
	recorder := events.NewRecorder()
	n := &Node{
		db:       db,
		chainID:  chainID,
		recorder: recorder,
		emitter:  observability.WrapEmitter(recorder),
		vaults:   v,
	}
	n.Store = ledger.New(db, n.currentSeq)
	n.Coin = nativecoin.New()

	nowFn := n.currentSeq
	n.Token = token.New(n.Store, n.emitter, nowFn)
	n.Staking = staking.New(n.Store, n.Token, n.Coin, n.emitter, nowFn)
	n.Lending = lending.New(n.Store, n.Token, n.Coin, n.emitter, nowFn)
	n.AMM = amm.New(n.Store, n.Token, n.Coin, n.emitter, nowFn)
	n.Governance = governance.New(n.Store, n.Token, n.emitter, nowFn)

	if err := n.Token.Initialize(v.Admin, v.StakingVault, 7, "Staked XLM", "sXLM"); err != nil {
		return nil, fmt.Errorf("node: initialize token: %w", err)
	}
	if err := n.Staking.Initialize(v.Admin, v.StakingVault, cfg.Staking.CooldownPeriodLedgers); err != nil {
		return nil, fmt.Errorf("node: initialize staking: %w", err)
	}
	if err := n.Lending.Initialize(v.Admin, v.LendingSxlmVault, v.LendingNativeVault,
		cfg.Lending.CollateralFactorBps, cfg.Lending.LiquidationThresholdBps, cfg.Lending.BorrowRateBps); err != nil {
		return nil, fmt.Errorf("node: initialize lending: %w", err)
	}
	if err := n.AMM.Initialize(v.Admin, v.AmmSxlmVault, v.AmmNativeVault, cfg.AMM.FeeBps); err != nil {
		return nil, fmt.Errorf("node: initialize amm: %w", err)
	}
	if err := n.Governance.Initialize(v.Admin, v.StakingVault, cfg.Governance.VotingPeriodLedgers, cfg.Governance.QuorumBps); err != nil {
		return nil, fmt.Errorf("node: initialize governance: %w", err)
	}

	n.registerGovernanceSetters()
	return n, nil
}

func (n *Node) currentSeq() uint64 { return atomic.LoadUint64(&n.seq) }

// AdvanceLedger moves the logical ledger sequence forward by one tick,
// standing in for the teacher's block-production loop; xlmstaked's run
// loop calls this on its -ledger-interval ticker (see cmd/xlmstaked).
func (n *Node) AdvanceLedger() uint64 {
	return atomic.AddUint64(&n.seq, 1)
}

func (n *Node) LedgerSeq() uint64 { return n.currentSeq() }

func (n *Node) ChainID() uint64 { return n.chainID }

func (n *Node) Admin() crypto.Address { return n.vaults.Admin }

func (n *Node) Events() *events.Recorder { return n.recorder }

// Close releases the underlying storage backend.
func (n *Node) Close() { n.db.Close() }

// registerGovernanceSetters wires the parameter keys spec.md §4.5 names as
// governance-adjustable onto the engines that own them, so ExecuteProposal's
// forwarder (governance.Setter) actually mutates protocol state.
func (n *Node) registerGovernanceSetters() {
	n.Governance.RegisterSetter("staking.protocol_fee_bps", func(newValue string) error {
		bps, err := parseBps(newValue)
		if err != nil {
			return err
		}
		return n.Staking.SetProtocolFeeBps(n.vaults.Admin, bps)
	})
	n.Governance.RegisterSetter("amm.fee_bps", func(newValue string) error {
		bps, err := parseBps(newValue)
		if err != nil {
			return err
		}
		return n.AMM.SetFeeBps(n.vaults.Admin, bps)
	})
	n.Governance.RegisterSetter("lending.collateral_factor_bps", func(newValue string) error {
		bps, err := parseBps(newValue)
		if err != nil {
			return err
		}
		return n.Lending.SetCollateralFactorBps(n.vaults.Admin, bps)
	})
}

func parseBps(s string) (uint32, error) {
	var v uint32
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("node: invalid bps value %q: %w", s, err)
	}
	return v, nil
}
