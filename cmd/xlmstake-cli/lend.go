package main

import (
	"flag"
	"fmt"
)

func runLendCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("lend: expected a subcommand (deposit-collateral, withdraw-collateral, borrow, repay, liquidate, position)")
	}
	switch args[0] {
	case "deposit-collateral":
		return runLendDepositCollateral(args[1:])
	case "withdraw-collateral":
		return runLendWithdrawCollateral(args[1:])
	case "borrow":
		return runLendBorrow(args[1:])
	case "repay":
		return runLendRepay(args[1:])
	case "liquidate":
		return runLendLiquidate(args[1:])
	case "position":
		return runLendPosition(args[1:])
	default:
		return fmt.Errorf("lend: unknown subcommand %q", args[0])
	}
}

func runLendDepositCollateral(args []string) error {
	fs := flag.NewFlagSet("lend deposit-collateral", flag.ExitOnError)
	c := bindCommon(fs)
	amount := fs.String("amount", "", "base-unit sXLM amount to deposit as collateral")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		SXLMAmount string `json:"sxlmAmount"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *amount}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("lending_depositCollateral", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runLendWithdrawCollateral(args []string) error {
	fs := flag.NewFlagSet("lend withdraw-collateral", flag.ExitOnError)
	c := bindCommon(fs)
	amount := fs.String("amount", "", "base-unit sXLM amount to withdraw")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		SXLMAmount string `json:"sxlmAmount"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *amount}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("lending_withdrawCollateral", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runLendBorrow(args []string) error {
	fs := flag.NewFlagSet("lend borrow", flag.ExitOnError)
	c := bindCommon(fs)
	amount := fs.String("amount", "", "base-unit XLM amount to borrow")
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
	if err := newClient(c.endpoint).call("lending_borrow", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runLendRepay(args []string) error {
	fs := flag.NewFlagSet("lend repay", flag.ExitOnError)
	c := bindCommon(fs)
	amount := fs.String("amount", "", "base-unit XLM amount to repay")
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
	if err := newClient(c.endpoint).call("lending_repay", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runLendLiquidate(args []string) error {
	fs := flag.NewFlagSet("lend liquidate", flag.ExitOnError)
	c := bindCommon(fs)
	borrower := fs.String("borrower", "", "address of the unhealthy borrower")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		Borrower string `json:"borrower"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *borrower}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("lending_liquidate", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runLendPosition(args []string) error {
	fs := flag.NewFlagSet("lend position", flag.ExitOnError)
	c := bindCommon(fs)
	user := fs.String("user", "", "address to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	var position map[string]interface{}
	if err := cli.call("lending_getPosition", map[string]string{"user": *user}, &position); err != nil {
		return err
	}
	var hf map[string]interface{}
	if err := cli.call("lending_healthFactor", map[string]string{"user": *user}, &hf); err != nil {
		return err
	}
	for k, v := range hf {
		position[k] = v
	}
	printResult(position)
	return nil
}
