package main

import (
	"flag"
	"fmt"
)

func runGovCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("gov: expected a subcommand (propose, vote, execute, show)")
	}
	switch args[0] {
	case "propose":
		return runGovPropose(args[1:])
	case "vote":
		return runGovVote(args[1:])
	case "execute":
		return runGovExecute(args[1:])
	case "show":
		return runGovShow(args[1:])
	default:
		return fmt.Errorf("gov: unknown subcommand %q", args[0])
	}
}

func runGovPropose(args []string) error {
	fs := flag.NewFlagSet("gov propose", flag.ExitOnError)
	c := bindCommon(fs)
	paramKey := fs.String("param", "", "parameter key, e.g. staking.protocol_fee_bps")
	newValue := fs.String("value", "", "proposed new value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		ParamKey string `json:"paramKey"`
		NewValue string `json:"newValue"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *paramKey, *newValue}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("governance_createProposal", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runGovVote(args []string) error {
	fs := flag.NewFlagSet("gov vote", flag.ExitOnError)
	c := bindCommon(fs)
	id := fs.Uint64("id", 0, "proposal id")
	support := fs.Bool("support", true, "true to vote for, false to vote against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		ProposalID uint64 `json:"proposalId"`
		Support    bool   `json:"support"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *id, *support}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("governance_vote", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runGovExecute(args []string) error {
	fs := flag.NewFlagSet("gov execute", flag.ExitOnError)
	c := bindCommon(fs)
	id := fs.Uint64("id", 0, "proposal id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	params := struct {
		callerParams
		ProposalID uint64 `json:"proposalId"`
	}{callerParams{RequestID: requestID()}, *id}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("governance_executeProposal", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runGovShow(args []string) error {
	fs := flag.NewFlagSet("gov show", flag.ExitOnError)
	c := bindCommon(fs)
	id := fs.Uint64("id", 0, "proposal id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	var proposal map[string]interface{}
	if err := cli.call("governance_getProposal", map[string]uint64{"proposalId": *id}, &proposal); err != nil {
		return err
	}
	printResult(proposal)
	return nil
}
