package main

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"xlmstake/node"
	"xlmstake/observability"
)

// keeper runs the protocol's periodic housekeeping on a cron schedule: rate
// recalibration, storage TTL bumps so long-lived singleton entries never
// archive out from under a running node, and a snapshot of the pool gauges
// the metrics endpoint exposes.
type keeper struct {
	node *node.Node
	log  *slog.Logger
	cron *cron.Cron
}

const bumpInstanceExtension = 1_000_000

func newKeeper(n *node.Node, log *slog.Logger) *keeper {
	return &keeper{
		node: n,
		log:  log,
		cron: cron.New(),
	}
}

func (k *keeper) Start() error {
	if _, err := k.cron.AddFunc("@every 1m", k.recalibrate); err != nil {
		return err
	}
	if _, err := k.cron.AddFunc("@every 15m", k.bumpInstances); err != nil {
		return err
	}
	k.cron.Start()
	return nil
}

func (k *keeper) Stop() {
	<-k.cron.Stop().Done()
}

func (k *keeper) recalibrate() {
	rate, err := k.node.Staking.RecalibrateRate()
	if err != nil {
		k.log.Warn("keeper: recalibrate rate failed", "error", err)
		return
	}
	observability.PoolMetrics().RecordExchangeRate(rate)

	buf, err := k.node.Staking.LiquidityBuffer()
	if err == nil {
		observability.PoolMetrics().RecordLiquidityBuffer(buf)
	}

	xlmReserve, sxlmReserve, err := k.node.AMM.GetReserves()
	if err == nil {
		observability.PoolMetrics().RecordAMMReserves(xlmReserve, sxlmReserve)
	}
}

func (k *keeper) bumpInstances() {
	bumpers := []func(uint64) error{
		k.node.Token.BumpInstance,
		k.node.Staking.BumpInstance,
		k.node.Lending.BumpInstance,
		k.node.AMM.BumpInstance,
		k.node.Governance.BumpInstance,
	}
	for _, bump := range bumpers {
		if err := bump(bumpInstanceExtension); err != nil {
			k.log.Warn("keeper: bump instance failed", "error", err)
		}
	}
}
