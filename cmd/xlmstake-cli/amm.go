package main

import (
	"flag"
	"fmt"
)

func runAMMCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("amm: expected a subcommand (add-liquidity, remove-liquidity, swap, reserves)")
	}
	switch args[0] {
	case "add-liquidity":
		return runAMMAddLiquidity(args[1:])
	case "remove-liquidity":
		return runAMMRemoveLiquidity(args[1:])
	case "swap":
		return runAMMSwap(args[1:])
	case "reserves":
		return runAMMReserves(args[1:])
	default:
		return fmt.Errorf("amm: unknown subcommand %q", args[0])
	}
}

func runAMMAddLiquidity(args []string) error {
	fs := flag.NewFlagSet("amm add-liquidity", flag.ExitOnError)
	c := bindCommon(fs)
	xlmAmount := fs.String("xlm-amount", "", "base-unit XLM to deposit")
	sxlmAmount := fs.String("sxlm-amount", "", "base-unit sXLM to deposit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		XLMAmount  string `json:"xlmAmount"`
		SXLMAmount string `json:"sxlmAmount"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *xlmAmount, *sxlmAmount}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("amm_addLiquidity", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runAMMRemoveLiquidity(args []string) error {
	fs := flag.NewFlagSet("amm remove-liquidity", flag.ExitOnError)
	c := bindCommon(fs)
	lpAmount := fs.String("lp-amount", "", "base-unit LP shares to burn")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	params := struct {
		callerParams
		LPAmount string `json:"lpAmount"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *lpAmount}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call("amm_removeLiquidity", params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runAMMSwap(args []string) error {
	fs := flag.NewFlagSet("amm swap", flag.ExitOnError)
	c := bindCommon(fs)
	direction := fs.String("direction", "xlm-to-sxlm", "xlm-to-sxlm or sxlm-to-xlm")
	amountIn := fs.String("amount-in", "", "base-unit input amount")
	minOut := fs.String("min-out", "0", "minimum acceptable base-unit output (slippage bound)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := loadSigner(c.keystore, c.passphrase)
	if err != nil {
		return err
	}
	method := "amm_swapXlmToSxlm"
	if *direction == "sxlm-to-xlm" {
		method = "amm_swapSxlmToXlm"
	} else if *direction != "xlm-to-sxlm" {
		return fmt.Errorf("amm swap: direction must be xlm-to-sxlm or sxlm-to-xlm")
	}
	params := struct {
		callerParams
		AmountIn string `json:"amountIn"`
		MinOut   string `json:"minOut"`
	}{callerParams{Caller: signer.Address().String(), RequestID: requestID()}, *amountIn, *minOut}
	var out map[string]interface{}
	if err := newClient(c.endpoint).call(method, params, &out); err != nil {
		return err
	}
	printResult(out)
	return nil
}

func runAMMReserves(args []string) error {
	fs := flag.NewFlagSet("amm reserves", flag.ExitOnError)
	c := bindCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli := newClient(c.endpoint)
	reserves := map[string]interface{}{}
	for _, method := range []string{"amm_getReserves", "amm_getPrice", "amm_getFeeBps", "amm_totalLpSupply"} {
		var out map[string]interface{}
		if err := cli.call(method, nil, &out); err != nil {
			return err
		}
		for k, v := range out {
			reserves[k] = v
		}
	}
	printResult(reserves)
	return nil
}
