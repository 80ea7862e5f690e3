// Package governance implements sXLM-weighted parameter proposals (spec.md
// §4.5), grounded on the proposal/vote/execute lifecycle of the teacher's
// native/governance.Engine, simplified to the single per-proposal param_key
// this protocol's scope needs and adapted to the store/singleton idiom
// shared by token, staking, lending, and amm.
package governance

import (
	"math/big"
	"strconv"

	"xlmstake/common"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/token"
)

const singletonKey = "governance/meta"

func proposalKey(id uint64) string { return "governance/proposal/" + itoa(id) }
func voteKey(id uint64, voter crypto.Address) string {
	return "governance/vote/" + itoa(id) + "/" + voter.String()
}
func paramKey(key string) string { return "governance/param/" + key }

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Setter applies a governance-approved parameter change to another module.
// Registered by the node wiring layer (one per module setter the protocol
// exposes to governance execution, e.g. staking's protocol_fee_bps).
type Setter func(newValue string) error

type Engine struct {
	store   *ledger.Ledger
	sxlm    *token.Engine
	emitter events.Emitter
	nowFn   func() uint64
	setters map[string]Setter
}

func New(store *ledger.Ledger, sxlm *token.Engine, emitter events.Emitter, nowFn func() uint64) *Engine {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	return &Engine{store: store, sxlm: sxlm, emitter: emitter, nowFn: nowFn, setters: make(map[string]Setter)}
}

func (e *Engine) now() uint64 {
	if e.nowFn == nil {
		return 0
	}
	return e.nowFn()
}

// RegisterSetter wires a module's parameter setter under paramKey so
// execute_proposal can forward approved changes to it. Spec.md §4.5 lets
// implementers choose between reading params directly or an on-chain
// forwarder calling the specific setter; this package chooses the latter.
func (e *Engine) RegisterSetter(key string, setter Setter) {
	e.setters[key] = setter
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

func (e *Engine) Initialize(admin, sxlmToken crypto.Address, votingPeriodLedgers uint64, quorumBps uint32) error {
	if e.store.Has(singletonKey) {
		return errAlreadyInitialized
	}
	m := &singleton{
		Admin:               admin.String(),
		SxlmToken:           sxlmToken.String(),
		VotingPeriodLedgers: votingPeriodLedgers,
		QuorumBps:           quorumBps,
		ProposalCount:       0,
		Initialized:         true,
	}
	return e.save(m)
}

func (e *Engine) loadProposal(id uint64) (*Proposal, error) {
	var p Proposal
	if err := e.store.GetJSON(proposalKey(id), &p); err != nil {
		return nil, errProposalNotFound
	}
	return &p, nil
}

func (e *Engine) saveProposal(p *Proposal) error {
	return e.store.PutJSON(proposalKey(p.ID), p, ledger.DefaultTTL)
}

// CreateProposal requires the proposer to hold at least MinProposalStake
// sXLM and assigns the next sequential proposal id.
func (e *Engine) CreateProposal(proposer crypto.Address, paramKeyName, newValue string) (uint64, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	balance := e.sxlm.Balance(proposer)
	if balance.Cmp(MinProposalStake) < 0 {
		return 0, errInsufficientStake
	}

	id := m.ProposalCount
	p := &Proposal{
		ID:           id,
		Proposer:     proposer.String(),
		ParamKey:     paramKeyName,
		NewValue:     newValue,
		StartLedger:  e.now(),
		EndLedger:    e.now() + m.VotingPeriodLedgers,
		VotesFor:     big.NewInt(0),
		VotesAgainst: big.NewInt(0),
		Executed:     false,
	}
	if err := e.saveProposal(p); err != nil {
		return 0, err
	}
	m.ProposalCount++
	if err := e.save(m); err != nil {
		return 0, err
	}
	e.emitter.Emit(events.New("governance.propose", "id", itoa(id), "proposer", proposer.String(),
		"param_key", paramKeyName, "new_value", newValue))
	return id, nil
}

// Vote weighs the ballot by the voter's current sXLM balance (spec.md §9
// open question 1: no snapshot at proposal creation — SPEC_FULL's decided
// semantics, to be revisited if the token becomes transferable mid-vote in a
// way that's exploited).
func (e *Engine) Vote(voter crypto.Address, proposalID uint64, support bool) (*big.Int, error) {
	if _, err := e.load(); err != nil {
		return nil, err
	}
	p, err := e.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if e.now() > p.EndLedger {
		return nil, errVotingClosed
	}
	vk := voteKey(proposalID, voter)
	if e.store.Has(vk) {
		return nil, errAlreadyVoted
	}

	weight := e.sxlm.Balance(voter)
	if support {
		p.VotesFor = new(big.Int).Add(p.VotesFor, weight)
	} else {
		p.VotesAgainst = new(big.Int).Add(p.VotesAgainst, weight)
	}
	if err := e.saveProposal(p); err != nil {
		return nil, err
	}
	if err := e.store.Put(vk, []byte{1}, ledger.DefaultTTL); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.New("governance.voted", "id", itoa(proposalID), "voter", voter.String(),
		"support", boolStr(support), "weight", weight.String()))
	return weight, nil
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ExecuteProposal requires the voting window to have closed, a simple
// majority, and quorum against total sXLM supply. On success it writes the
// canonical params map and forwards the change to a registered Setter, if
// any is wired for this proposal's param_key.
func (e *Engine) ExecuteProposal(proposalID uint64) error {
	m, err := e.load()
	if err != nil {
		return err
	}
	p, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if e.now() <= p.EndLedger {
		return errVotingOpen
	}
	if p.Executed {
		return errAlreadyExecuted
	}
	if p.VotesFor.Cmp(p.VotesAgainst) <= 0 {
		return errProposalRejected
	}

	totalSupply, err := e.sxlm.TotalSupply()
	if err != nil {
		return err
	}
	quorumRequired := common.BpsOf(totalSupply, m.QuorumBps)
	totalVotes := new(big.Int).Add(p.VotesFor, p.VotesAgainst)
	if totalVotes.Cmp(quorumRequired) < 0 {
		return errQuorumNotMet
	}

	if err := e.store.Put(paramKey(p.ParamKey), []byte(p.NewValue), ledger.DefaultTTL); err != nil {
		return err
	}
	if setter, ok := e.setters[p.ParamKey]; ok {
		if err := setter(p.NewValue); err != nil {
			return err
		}
	}

	p.Executed = true
	if err := e.saveProposal(p); err != nil {
		return err
	}
	e.emitter.Emit(events.New("governance.executed", "id", itoa(proposalID)))
	return nil
}

// --- Views ---

func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	if _, err := e.load(); err != nil {
		return nil, err
	}
	return e.loadProposal(id)
}

func (e *Engine) GetVoteCount(id uint64) (forVotes, against *big.Int, err error) {
	p, err := e.loadProposal(id)
	if err != nil {
		return nil, nil, err
	}
	return p.VotesFor, p.VotesAgainst, nil
}

func (e *Engine) ProposalCount() (uint64, error) {
	m, err := e.load()
	if err != nil {
		return 0, err
	}
	return m.ProposalCount, nil
}

func (e *Engine) GetParam(key string) (string, error) {
	v, err := e.store.Get(paramKey(key))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (e *Engine) BumpInstance(extendBy uint64) error {
	return e.store.BumpTTL(singletonKey, extendBy)
}
