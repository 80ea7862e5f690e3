// Command xlmstake-cli is the operator/user-facing client for xlmstaked: it
// issues signed-caller JSON-RPC calls against a running node, one
// subcommand per protocol module, mirroring the teacher CLI's per-subsystem
// file layout (stake.go, gov.go, ...) rather than one flat command list.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func dispatch(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}
	switch args[0] {
	case "generate-key":
		return runGenerateKey(args[1:])
	case "coin":
		return runCoinCommand(args[1:])
	case "token":
		return runTokenCommand(args[1:])
	case "stake":
		return runStakeCommand(args[1:])
	case "lend":
		return runLendCommand(args[1:])
	case "amm":
		return runAMMCommand(args[1:])
	case "gov":
		return runGovCommand(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `xlmstake-cli <command> [flags]

Commands:
  generate-key   create a new encrypted keystore
  coin           inspect native XLM balances / credit the faucet (admin)
  token          sXLM receipt-token transfers and allowances
  stake          deposit, withdraw, and manage the staking core
  lend           collateralized borrowing against sXLM
  amm            constant-product XLM/sXLM pool
  gov            parameter governance proposals and voting

Run 'xlmstake-cli <command> -h' for command-specific flags.`)
}

// commonFlags are accepted by every subcommand that talks to the RPC
// endpoint and/or signs as a caller.
type commonFlags struct {
	endpoint   string
	keystore   string
	passphrase string
}

func bindCommon(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.endpoint, "endpoint", "http://127.0.0.1:8080", "xlmstaked JSON-RPC endpoint")
	fs.StringVar(&c.keystore, "keystore", "admin.keystore", "path to the caller's keystore file")
	fs.StringVar(&c.passphrase, "passphrase", "", "keystore passphrase (omit to be prompted)")
	return c
}

func runGenerateKey(args []string) error {
	fs := flag.NewFlagSet("generate-key", flag.ExitOnError)
	out := fs.String("out", "keystore.json", "path to write the new keystore to")
	passphrase := fs.String("passphrase", "", "passphrase (omit to be prompted, with confirmation)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	signer, err := generateKeystore(*out, *passphrase)
	if err != nil {
		return err
	}
	fmt.Printf("address: %s\nkeystore: %s\n", signer.Address().String(), *out)
	return nil
}
