package rpc

import (
	"encoding/json"

	"xlmstake/crypto"
)

func registerGovernanceHandlers(m map[string]handlerFunc) {
	m["governance_createProposal"] = governanceCreateProposal
	m["governance_vote"] = governanceVote
	m["governance_executeProposal"] = governanceExecuteProposal
	m["governance_getProposal"] = governanceGetProposal
	m["governance_getVoteCount"] = governanceGetVoteCount
	m["governance_proposalCount"] = governanceProposalCount
	m["governance_getParam"] = governanceGetParam
}

type governanceCreateProposalParams struct {
	baseParams
	ParamKey string `json:"paramKey"`
	NewValue string `json:"newValue"`
}

func governanceCreateProposal(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p governanceCreateProposalParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	id, err := s.node.Governance.CreateProposal(actor, p.ParamKey, p.NewValue)
	if err != nil {
		return nil, err
	}
	return map[string]uint64{"proposalId": id}, nil
}

type governanceVoteParams struct {
	baseParams
	ProposalID uint64 `json:"proposalId"`
	Support    bool   `json:"support"`
}

func governanceVote(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p governanceVoteParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	weight, err := s.node.Governance.Vote(actor, p.ProposalID, p.Support)
	if err != nil {
		return nil, err
	}
	return map[string]string{"weight": bigIntResult(weight)}, nil
}

type governanceProposalIDParams struct {
	baseParams
	ProposalID uint64 `json:"proposalId"`
}

func governanceExecuteProposal(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p governanceProposalIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := s.node.Governance.ExecuteProposal(p.ProposalID); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func governanceGetProposal(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p governanceProposalIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	proposal, err := s.node.Governance.GetProposal(p.ProposalID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":           proposal.ID,
		"proposer":     proposal.Proposer,
		"paramKey":     proposal.ParamKey,
		"newValue":     proposal.NewValue,
		"startLedger":  proposal.StartLedger,
		"endLedger":    proposal.EndLedger,
		"votesFor":     bigIntResult(proposal.VotesFor),
		"votesAgainst": bigIntResult(proposal.VotesAgainst),
		"executed":     proposal.Executed,
	}, nil
}

func governanceGetVoteCount(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p governanceProposalIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	forVotes, against, err := s.node.Governance.GetVoteCount(p.ProposalID)
	if err != nil {
		return nil, err
	}
	return map[string]string{"votesFor": bigIntResult(forVotes), "votesAgainst": bigIntResult(against)}, nil
}

func governanceProposalCount(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	count, err := s.node.Governance.ProposalCount()
	if err != nil {
		return nil, err
	}
	return map[string]uint64{"proposalCount": count}, nil
}

type governanceParamKeyParams struct {
	baseParams
	Key string `json:"key"`
}

func governanceGetParam(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p governanceParamKeyParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	value, err := s.node.Governance.GetParam(p.Key)
	if err != nil {
		return nil, err
	}
	return map[string]string{"value": value}, nil
}
