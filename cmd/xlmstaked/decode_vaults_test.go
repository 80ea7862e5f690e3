package main

import (
	"testing"

	"xlmstake/config"
	"xlmstake/crypto"
)

func mustAddr(t *testing.T) string {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	if err != nil {
		t.Fatalf("generate signer: %v", err)
	}
	return signer.Address().String()
}

func TestDecodeVaultsAcceptsValidAddresses(t *testing.T) {
	cfg := &config.Config{
		AdminAddress: mustAddr(t),
		Vaults: config.VaultAddresses{
			StakingVault:       mustAddr(t),
			LendingSxlmVault:   mustAddr(t),
			LendingNativeVault: mustAddr(t),
			AmmSxlmVault:       mustAddr(t),
			AmmNativeVault:     mustAddr(t),
		},
	}

	v, err := decodeVaults(cfg)
	if err != nil {
		t.Fatalf("decodeVaults returned error: %v", err)
	}
	if v.Admin.String() != cfg.AdminAddress {
		t.Fatalf("admin address mismatch: got %q want %q", v.Admin.String(), cfg.AdminAddress)
	}
	if v.StakingVault.String() != cfg.Vaults.StakingVault {
		t.Fatalf("staking vault mismatch: got %q want %q", v.StakingVault.String(), cfg.Vaults.StakingVault)
	}
}

func TestDecodeVaultsRejectsInvalidAdmin(t *testing.T) {
	cfg := &config.Config{
		AdminAddress: "not-a-strkey-address",
		Vaults: config.VaultAddresses{
			StakingVault:       mustAddr(t),
			LendingSxlmVault:   mustAddr(t),
			LendingNativeVault: mustAddr(t),
			AmmSxlmVault:       mustAddr(t),
			AmmNativeVault:     mustAddr(t),
		},
	}

	if _, err := decodeVaults(cfg); err == nil {
		t.Fatal("expected error for invalid admin address, got nil")
	}
}

func TestDecodeVaultsRejectsInvalidVault(t *testing.T) {
	cfg := &config.Config{
		AdminAddress: mustAddr(t),
		Vaults: config.VaultAddresses{
			StakingVault:       "garbage",
			LendingSxlmVault:   mustAddr(t),
			LendingNativeVault: mustAddr(t),
			AmmSxlmVault:       mustAddr(t),
			AmmNativeVault:     mustAddr(t),
		},
	}

	if _, err := decodeVaults(cfg); err == nil {
		t.Fatal("expected error for invalid staking vault, got nil")
	}
}
