// Package config loads and defaults the TOML file xlmstaked and
// xlmstake-cli read, following the teacher's config/config.go layout: a
// Load that bootstraps a fresh file and keystore on first run, and a
// persist helper that re-encodes the struct back to disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"xlmstake/crypto"
)

// VaultAddresses holds the custody identities genesis wiring (node.New)
// initializes each engine with. They carry no signing key: engines compare
// them by value, they never originate a signed request.
type VaultAddresses struct {
	StakingVault       string `toml:"StakingVault"`
	LendingSxlmVault   string `toml:"LendingSxlmVault"`
	LendingNativeVault string `toml:"LendingNativeVault"`
	AmmSxlmVault       string `toml:"AmmSxlmVault"`
	AmmNativeVault     string `toml:"AmmNativeVault"`
}

type Config struct {
	ListenAddress      string `toml:"ListenAddress"`
	RPCAddress         string `toml:"RPCAddress"`
	DataDir            string `toml:"DataDir"`
	NetworkName        string `toml:"NetworkName"`
	ChainID            uint64 `toml:"ChainID"`
	AdminAddress       string `toml:"AdminAddress"`
	AdminKeystorePath  string `toml:"AdminKeystorePath"`

	Vaults VaultAddresses `toml:"vaults"`

	Staking    StakingConfig    `toml:"staking"`
	Lending    LendingConfig    `toml:"lending"`
	AMM        AMMConfig        `toml:"amm"`
	Governance GovernanceConfig `toml:"governance"`
}

// Global projects the policy-only fields ValidateConfig checks.
func (c *Config) Global() Global {
	return Global{Staking: c.Staking, Lending: c.Lending, AMM: c.AMM, Governance: c.Governance}
}

// Load reads the config file at path, bootstrapping a fresh default file,
// admin keystore, and vault address set if none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "xlmstake-local"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	if err := ValidateConfig(cfg.Global()); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// createDefault writes a fresh config.toml, generates the admin signing
// key into a keystore alongside it, and mints five random vault addresses.
func createDefault(path string) (*Config, error) {
	admin, err := crypto.GenerateSigner()
	if err != nil {
		return nil, err
	}
	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, admin, ""); err != nil {
		return nil, err
	}

	vaultAddr := func() string {
		s, err := crypto.GenerateSigner()
		if err != nil {
			panic(err) // ed25519 keygen failure is not a recoverable runtime condition
		}
		return s.Address().String()
	}

	g := defaultGlobal()
	cfg := &Config{
		ListenAddress:     ":6001",
		RPCAddress:        ":8080",
		DataDir:           "./xlmstake-data",
		NetworkName:       "xlmstake-local",
		ChainID:           1,
		AdminAddress:      admin.Address().String(),
		AdminKeystorePath: keystorePath,
		Vaults: VaultAddresses{
			StakingVault:       vaultAddr(),
			LendingSxlmVault:   vaultAddr(),
			LendingNativeVault: vaultAddr(),
			AmmSxlmVault:       vaultAddr(),
			AmmNativeVault:     vaultAddr(),
		},
		Staking:    g.Staking,
		Lending:    g.Lending,
		AMM:        g.AMM,
		Governance: g.Governance,
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." {
		dir = ""
	}
	return filepath.Join(dir, "admin.keystore")
}
