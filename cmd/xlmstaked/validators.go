package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xlmstake/crypto"
	"xlmstake/node"
	"xlmstake/staking"
)

// validatorSeedEntry mirrors the advisory validator-manager metadata
// spec.md §4.2 supplements with (score, commission, active flag) — bound
// here to a YAML file rather than the TOML config since it is a longer,
// operator-curated list, not a handful of scalar knobs.
type validatorSeedEntry struct {
	Address       string `yaml:"address"`
	Score         uint32 `yaml:"score"`
	CommissionBps uint32 `yaml:"commissionBps"`
	Active        bool   `yaml:"active"`
}

func seedValidators(n *node.Node, path string, admin crypto.Address) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read validator seed file: %w", err)
	}
	var entries []validatorSeedEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse validator seed file: %w", err)
	}
	for _, entry := range entries {
		v := staking.Validator{
			Address:       entry.Address,
			Score:         entry.Score,
			CommissionBps: entry.CommissionBps,
			Active:        entry.Active,
		}
		if err := n.Staking.AddValidator(admin, v); err != nil {
			return fmt.Errorf("add validator %s: %w", entry.Address, err)
		}
	}
	return nil
}
