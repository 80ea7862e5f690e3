package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"xlmstake/crypto"
)

// loadSigner opens the keystore at path, prompting on the controlling
// terminal for its passphrase (never echoed) unless one was already
// supplied on the command line, mirroring the teacher CLI's interactive
// "generate-key"/"balance" passphrase handling.
func loadSigner(path, passphrase string) (*crypto.Signer, error) {
	if passphrase == "" {
		prompted, err := promptPassphrase("Keystore passphrase: ")
		if err != nil {
			return nil, err
		}
		passphrase = prompted
	}
	return crypto.LoadFromKeystore(path, passphrase)
}

func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(raw), nil
}

func generateKeystore(path, passphrase string) (*crypto.Signer, error) {
	signer, err := crypto.GenerateSigner()
	if err != nil {
		return nil, err
	}
	if passphrase == "" {
		first, err := promptPassphrase("New keystore passphrase: ")
		if err != nil {
			return nil, err
		}
		second, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return nil, err
		}
		if first != second {
			return nil, fmt.Errorf("passphrases do not match")
		}
		passphrase = first
	}
	if err := crypto.SaveToKeystore(path, signer, passphrase); err != nil {
		return nil, err
	}
	return signer, nil
}
