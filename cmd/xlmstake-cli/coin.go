package main

import (
	"flag"
	"fmt"
)

func runCoinCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("coin: expected a subcommand (balance, credit)")
	}
	switch args[0] {
	case "balance":
		return runCoinBalance(args[1:])
	case "credit":
		return runCoinCredit(args[1:])
	default:
		return fmt.Errorf("coin: unknown subcommand %q", args[0])
	}
}

func runCoinBalance(args []string) error {
	fs := flag.NewFlagSet("coin balance", flag.ExitOnError)
	c := bindCommon(fs)
	address := fs.String("address", "", "account to query")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	var out map[string]interface{}
	if err := cli.call("coin_balance", map[string]string{"address": *address}, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runCoinCredit(args []string) error {
	fs := flag.NewFlagSet("coin credit", flag.ExitOnError)
	c := bindCommon(fs)
	to := fs.String("to", "", "account to credit")
	amount := fs.String("amount", "", "base-unit XLM amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	params := struct {
		callerParams
		To     string `json:"to"`
		Amount string `json:"amount"`
	}{
		callerParams: callerParams{Caller: signer.Address().String(), RequestID: requestID()},
		To:           *to,
		Amount:       *amount,
	}
	var out map[string]interface{}
	if err := cli.call("coin_credit", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}
