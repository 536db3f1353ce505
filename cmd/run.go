package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/xrelay"
	"github.com/0xPolygon/xrelay/blocknotifier"
	"github.com/0xPolygon/xrelay/common"
	"github.com/0xPolygon/xrelay/config"
	"github.com/0xPolygon/xrelay/confirmation"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/lightclient"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/proofbuilder"
	"github.com/0xPolygon/xrelay/relay"
	"github.com/0xPolygon/xrelay/rpc"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	ethtxlog "github.com/0xPolygon/zkevm-ethtx-manager/log"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const metricsReadHeaderTimeout = 5 * time.Second

// chainServices are the services bound to one chain. lc is the light client deployed on the
// chain, so it follows the other chain, while tracker and proofs serve the transactions of the
// chain itself.
type chainServices struct {
	chain    string
	client   *ethclient.Client
	notifier *blocknotifier.BlockNotifierPolling
	lc       *lightclient.EVMLightClient
	tracker  *confirmation.Tracker
	proofs   *proofbuilder.ProofBuilder
}

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		xrelay.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	components := cliCtx.StringSlice(config.FlagComponents)
	for _, component := range components {
		if !slices.Contains([]string{common.RELAY_AB, common.RELAY_BA, common.RPC}, component) {
			return fmt.Errorf("unknown component %s", component)
		}
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	jr, err := journal.New(log.WithFields("module", "journal"), c.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("error opening journal: %w", err)
	}
	defer func() {
		if err := jr.Close(); err != nil {
			log.Errorf("error closing journal: %v", err)
		}
	}()

	chains, err := createChainServices(ctx, c, components)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, svc := range chains {
		g.Go(func() error {
			svc.notifier.Start(ctx)
			return nil
		})
		go svc.tracker.Start(ctx)
	}

	relays := make(map[string]rpc.RelayStater)
	for _, component := range components {
		switch component {
		case common.RELAY_AB, common.RELAY_BA:
			r := createRelay(c, component, chains, jr)
			relays[r.State().Direction] = r
			g.Go(func() error {
				return r.Start(ctx)
			})
		}
	}

	if slices.Contains(components, common.RPC) {
		server := createRPC(c.RPC, chains, relays, jr)
		go func() {
			if err := server.Start(); err != nil {
				log.Fatal(err)
			}
		}()
	}

	if c.Metrics.Enabled {
		g.Go(func() error {
			return startMetricsHTTPServer(ctx, c.Metrics)
		})
	}

	err = g.Wait()
	log.Info("terminating application gracefully...")
	return err
}

func createChainServices(
	ctx context.Context, c *config.Config, components []string,
) (map[string]*chainServices, error) {
	chains := make(map[string]*chainServices)
	for _, chain := range []string{common.ChainA, common.ChainB} {
		netCfg := c.Network(chain)
		logger := log.WithFields("chain", chain)
		client, err := ethclient.DialContext(ctx, netCfg.URL)
		if err != nil {
			return nil, fmt.Errorf("error dialing chain %s at %s: %w", chain, netCfg.URL, err)
		}

		// only the light clients receiving headers need a tx manager
		var ethTxMan lightclient.EthTxManager
		incoming := relayComponent(common.OtherChain(chain), chain)
		if slices.Contains(components, incoming) {
			ethTxMan, err = createEthTxManager(c.Log, netCfg.EthTxManager)
			if err != nil {
				return nil, fmt.Errorf("error creating eth tx manager of chain %s: %w", chain, err)
			}
		}
		lc, err := lightclient.NewEVMLightClient(
			logger.WithFields("module", "lightclient"), client, ethTxMan, netCfg.LightClient,
		)
		if err != nil {
			return nil, err
		}

		chains[chain] = &chainServices{
			chain:  chain,
			client: client,
			notifier: blocknotifier.New(
				client, netCfg.BlockNotifier, logger.WithFields("module", "blocknotifier"), nil,
			),
			lc:     lc,
			proofs: proofbuilder.New(logger.WithFields("module", "proofbuilder"), client, netCfg.ChainID, c.ProofBuilder),
		}
	}

	for chain, svc := range chains {
		other := chains[common.OtherChain(chain)]
		tracker, err := confirmation.New(
			log.WithFields("chain", chain, "module", "confirmation"),
			c.Confirmation,
			svc.client,
			other.lc,
			svc.notifier,
			other.notifier,
		)
		if err != nil {
			return nil, fmt.Errorf("error creating confirmation tracker of chain %s: %w", chain, err)
		}
		svc.tracker = tracker
	}

	return chains, nil
}

func relayComponent(source, destination string) string {
	if source == common.ChainA && destination == common.ChainB {
		return common.RELAY_AB
	}
	return common.RELAY_BA
}

func createEthTxManager(logCfg log.Config, cfg ethtxmanager.Config) (*ethtxmanager.Client, error) {
	cfg.Log = ethtxlog.Config{
		Environment: ethtxlog.LogEnvironment(logCfg.Environment),
		Level:       logCfg.Level,
		Outputs:     logCfg.Outputs,
	}
	ethTxManager, err := ethtxmanager.New(cfg)
	if err != nil {
		return nil, err
	}
	go ethTxManager.Start()
	return ethTxManager, nil
}

func createRelay(
	c *config.Config, component string, chains map[string]*chainServices, jr *journal.Journal,
) *relay.Relay {
	source, destination := common.ChainA, common.ChainB
	if component == common.RELAY_BA {
		source, destination = common.ChainB, common.ChainA
	}
	direction := common.Direction(source, destination)

	return relay.New(
		log.WithFields("module", component),
		direction,
		c.Relay(direction),
		chains[source].client,
		chains[destination].lc,
		chains[source].notifier,
		jr,
	)
}

func createRPC(
	cfg jRPC.Config,
	chains map[string]*chainServices,
	relays map[string]rpc.RelayStater,
	jr *journal.Journal,
) *jRPC.Server {
	logger := log.WithFields("module", common.RPC)
	backends := make(map[string]rpc.ChainBackend, len(chains))
	for chain, svc := range chains {
		backends[chain] = rpc.ChainBackend{
			Proofs:        svc.proofs,
			Confirmations: svc.tracker,
		}
	}
	services := []jRPC.Service{
		{
			Name: rpc.BRIDGE,
			Service: rpc.NewBridgeEndpoints(
				logger,
				cfg.ReadTimeout.Duration,
				backends,
				relays,
				jr,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func startMetricsHTTPServer(ctx context.Context, cfg config.MetricsConfig) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			log.Errorf("error closing metrics server: %v", err)
		}
	}()

	log.Infof("metrics server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func logVersion() {
	log.Infow("Starting application", xrelay.GetVersion().LogFields()...)
}
