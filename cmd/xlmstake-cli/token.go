package main

import (
	"flag"
	"fmt"
)

func runTokenCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("token: expected a subcommand (balance, transfer, approve, allowance, total-supply)")
	}
	switch args[0] {
	case "balance":
		return runTokenBalance(args[1:])
	case "transfer":
		return runTokenTransfer(args[1:])
	case "approve":
		return runTokenApprove(args[1:])
	case "allowance":
		return runTokenAllowance(args[1:])
	case "total-supply":
		return runTokenTotalSupply(args[1:])
	default:
		return fmt.Errorf("token: unknown subcommand %q", args[0])
	}
}

func runTokenBalance(args []string) error {
	fs := flag.NewFlagSet("token balance", flag.ExitOnError)
	c := bindCommon(fs)
	owner := fs.String("owner", "", "account to query")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	var out map[string]interface{}
	if err := cli.call("token_balance", map[string]string{"owner": *owner}, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runTokenTransfer(args []string) error {
	fs := flag.NewFlagSet("token transfer", flag.ExitOnError)
	c := bindCommon(fs)
	to := fs.String("to", "", "recipient address")
	amount := fs.String("amount", "", "base-unit sXLM amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		To     string `json:"to"`
		Amount string `json:"amount"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *to, *amount}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("token_transfer", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runTokenApprove(args []string) error {
	fs := flag.NewFlagSet("token approve", flag.ExitOnError)
	c := bindCommon(fs)
	spender := fs.String("spender", "", "address allowed to spend")
	amount := fs.String("amount", "", "base-unit sXLM amount")
	expiration := fs.Uint64("expiration-ledger", 0, "ledger sequence after which the allowance expires (0 = never)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		Spender          string `json:"spender"`
		Amount           string `json:"amount"`
		ExpirationLedger uint64 `json:"expirationLedger"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *spender, *amount, *expiration}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("token_approve", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runTokenAllowance(args []string) error {
	fs := flag.NewFlagSet("token allowance", flag.ExitOnError)
	c := bindCommon(fs)
	owner := fs.String("owner", "", "token owner")
	spender := fs.String("spender", "", "approved spender")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var out map[string]interface{}
	params := map[string]string{"owner": *owner, "spender": *spender}
	if err := newClient(c.endpoint).call("token_allowance", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runTokenTotalSupply(args []string) error {
	fs := flag.NewFlagSet("token total-supply", flag.ExitOnError)
	c := bindCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("token_totalSupply", nil, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}
