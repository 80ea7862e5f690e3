// Command xlmstaked runs the XLM liquid-staking protocol as a standalone
// process: it owns the persistent store, wires the five engines through
// node.New, and serves them over JSON-RPC while a background keeper ticks
// exchange-rate recalibration and storage TTL upkeep on a fixed cadence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xlmstake/config"
	"xlmstake/crypto"
	"xlmstake/node"
	"xlmstake/observability/logging"
	"xlmstake/rpc"
	"xlmstake/storage"
)

func main() {
	var (
		configPath     = flag.String("config", "config.toml", "path to the node config file")
		validatorsPath = flag.String("validators", "", "optional YAML file seeding the advisory validator list")
		inMemory       = flag.Bool("mem", false, "use an in-memory store instead of LevelDB (development only)")
		ledgerInterval = flag.Duration("ledger-interval", 5*time.Second, "how often the run loop advances the logical ledger sequence")
	)
	flag.Parse()

	log := logging.Setup("xlmstaked", os.Getenv("XLMSTAKE_ENV"))

	if err := run(*configPath, *validatorsPath, *inMemory, *ledgerInterval, log); err != nil {
		log.Error("xlmstaked exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, validatorsPath string, inMemory bool, ledgerInterval time.Duration, log *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openStorage(cfg.DataDir, inMemory)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	vaults, err := decodeVaults(cfg)
	if err != nil {
		return fmt.Errorf("decode vaults: %w", err)
	}

	n, err := node.New(db, cfg.ChainID, cfg, vaults)
	if err != nil {
		return fmt.Errorf("construct node: %w", err)
	}

	if validatorsPath != "" {
		if err := seedValidators(n, validatorsPath, vaults.Admin); err != nil {
			return fmt.Errorf("seed validators: %w", err)
		}
	}

	rpcServer := rpc.NewServer(n, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keeper := newKeeper(n, log)
	if err := keeper.Start(); err != nil {
		return fmt.Errorf("start keeper: %w", err)
	}
	defer keeper.Stop()

	rpcHTTP := &http.Server{Addr: cfg.RPCAddress, Handler: rpcServer}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	metricsHTTP := &http.Server{Addr: cfg.ListenAddress, Handler: metricsMux}

	errCh := make(chan error, 2)
	go func() { errCh <- serve(rpcHTTP, "rpc", log) }()
	go func() { errCh <- serve(metricsHTTP, "metrics", log) }()

	ledgerTicker := time.NewTicker(ledgerInterval)
	defer ledgerTicker.Stop()

	log.Info("xlmstaked started", "rpc", cfg.RPCAddress, "metrics", cfg.ListenAddress, "chainId", cfg.ChainID)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = rpcHTTP.Shutdown(shutdownCtx)
			_ = metricsHTTP.Shutdown(shutdownCtx)
			shutdownCancel()
			return nil
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ledgerTicker.C:
			n.AdvanceLedger()
		}
	}
}

func serve(srv *http.Server, name string, log *slog.Logger) error {
	log.Info("http server listening", "server", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

func openStorage(dataDir string, inMemory bool) (storage.Database, error) {
	if inMemory {
		return storage.NewMemDB(), nil
	}
	if dataDir == "" {
		dataDir = "./xlmstake-data"
	}
	return storage.NewLevelDB(dataDir)
}

func decodeVaults(cfg *config.Config) (node.Vaults, error) {
	decode := func(s string) (crypto.Address, error) { return crypto.DecodeAddress(s) }

	admin, err := decode(cfg.AdminAddress)
	if err != nil {
		return node.Vaults{}, fmt.Errorf("admin address: %w", err)
	}
	stakingVault, err := decode(cfg.Vaults.StakingVault)
	if err != nil {
		return node.Vaults{}, fmt.Errorf("staking vault: %w", err)
	}
	lendingSxlm, err := decode(cfg.Vaults.LendingSxlmVault)
	if err != nil {
		return node.Vaults{}, fmt.Errorf("lending sxlm vault: %w", err)
	}
	lendingNative, err := decode(cfg.Vaults.LendingNativeVault)
	if err != nil {
		return node.Vaults{}, fmt.Errorf("lending native vault: %w", err)
	}
	ammSxlm, err := decode(cfg.Vaults.AmmSxlmVault)
	if err != nil {
		return node.Vaults{}, fmt.Errorf("amm sxlm vault: %w", err)
	}
	ammNative, err := decode(cfg.Vaults.AmmNativeVault)
	if err != nil {
		return node.Vaults{}, fmt.Errorf("amm native vault: %w", err)
	}

	return node.Vaults{
		Admin:              admin,
		StakingVault:       stakingVault,
		LendingSxlmVault:   lendingSxlm,
		LendingNativeVault: lendingNative,
		AmmSxlmVault:       ammSxlm,
		AmmNativeVault:     ammNative,
	}, nil
}
