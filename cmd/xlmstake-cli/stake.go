package main

import (
	"flag"
	"fmt"
)

func runStakeCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("stake: expected a subcommand (deposit, withdraw, claim, rate, status)")
	}
	switch args[0] {
	case "deposit":
		return runStakeDeposit(args[1:])
	case "withdraw":
		return runStakeWithdraw(args[1:])
	case "claim":
		return runStakeClaim(args[1:])
	case "rate":
		return runStakeRate(args[1:])
	case "status":
		return runStakeStatus(args[1:])
	default:
		return fmt.Errorf("stake: unknown subcommand %q", args[0])
	}
}

func runStakeDeposit(args []string) error {
	fs := flag.NewFlagSet("stake deposit", flag.ExitOnError)
	c := bindCommon(fs)
	amount := fs.String("amount", "", "base-unit XLM amount to deposit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		XLMAmount string `json:"xlmAmount"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *amount}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("staking_deposit", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runStakeWithdraw(args []string) error {
	fs := flag.NewFlagSet("stake withdraw", flag.ExitOnError)
	c := bindCommon(fs)
	amount := fs.String("amount", "", "base-unit sXLM amount to burn")
	instant := fs.Bool("instant", false, "request an instant payout from the liquidity buffer if it covers the amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		SXLMAmount  string `json:"sxlmAmount"`
		WantInstant bool   `json:"wantInstant"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *amount, *instant}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("staking_requestWithdrawal", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runStakeClaim(args []string) error {
	fs := flag.NewFlagSet("stake claim", flag.ExitOnError)
	c := bindCommon(fs)
	id := fs.Uint64("id", 0, "withdrawal id returned by 'stake withdraw'")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		WithdrawalID uint64 `json:"withdrawalId"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *id}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("staking_claimWithdrawal", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runStakeRate(args []string) error {
	fs := flag.NewFlagSet("stake rate", flag.ExitOnError)
	c := bindCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("staking_exchangeRate", nil, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runStakeStatus(args []string) error {
	fs := flag.NewFlagSet("stake status", flag.ExitOnError)
	c := bindCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	status := map[string]interface{}{}
	for field, method := range map[string]string{
		"totalXlmStaked":  "staking_totalStaked",
		"liquidityBuffer": "staking_liquidityBuffer",
		"treasuryBalance": "staking_treasuryBalance",
		"isPaused":        "staking_isPaused",
		"protocolFeeBps":  "staking_protocolFeeBps",
	} {
		var out map[string]interface{}
		if err := cli.call(method, nil, &out); err != nil {
			return err
		}
		for _, v := range out {
			status[field] = v
		}
	}
	printResult(status)
	return nil
}
