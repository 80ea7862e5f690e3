package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/crypto"
)

func TestLoadCreatesDefaultConfigAndKeystore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.FileExists(t, cfg.AdminKeystorePath)

	require.NotEmpty(t, cfg.AdminAddress)
	require.NotEmpty(t, cfg.Vaults.StakingVault)
	require.NotEqual(t, cfg.Vaults.StakingVault, cfg.Vaults.LendingSxlmVault)

	signer, err := crypto.LoadFromKeystore(cfg.AdminKeystorePath, "")
	require.NoError(t, err)
	require.Equal(t, cfg.AdminAddress, signer.Address().String())
}

func TestLoadRoundTripsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	first, err := Load(path)
	require.NoError(t, err)

	second, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, first.AdminAddress, second.AdminAddress)
	require.Equal(t, first.Vaults, second.Vaults)
}

func TestLoadDefaultsNetworkNameAndChainID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "xlmstake-local", cfg.NetworkName)
	require.Equal(t, uint64(1), cfg.ChainID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "ChainID")
}

func TestValidateConfigRejectsBadThresholds(t *testing.T) {
	g := defaultGlobal()
	g.Lending.LiquidationThresholdBps = g.Lending.CollateralFactorBps
	require.Error(t, ValidateConfig(g))
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	require.NoError(t, ValidateConfig(defaultGlobal()))
}

func TestValidateConfigRejectsZeroQuorum(t *testing.T) {
	g := defaultGlobal()
	g.Governance.QuorumBps = 0
	require.Error(t, ValidateConfig(g))
}
