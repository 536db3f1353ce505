package main

import (
	"os"

	"github.com/0xPolygon/xrelay"
	"github.com/0xPolygon/xrelay/common"
	"github.com/0xPolygon/xrelay/config"
	"github.com/0xPolygon/xrelay/log"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.RELAY_AB, common.RELAY_BA, common.RPC),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: xrelay_config.toml)",
		Required: false,
	}
	chainFlag = cli.StringFlag{
		Name:     config.FlagChain,
		Usage:    "Chain of the transaction (A or B)",
		Required: true,
	}
	txFlag = cli.StringFlag{
		Name:     config.FlagTx,
		Usage:    "Hash of the transaction",
		Required: true,
	}
	waitFlag = cli.BoolFlag{
		Name:     config.FlagWait,
		Aliases:  []string{"w"},
		Usage:    "Wait until the transaction is confirmed on its chain and by the light client",
		Required: false,
	}
	minConfigFlag = cli.BoolFlag{
		Name:     config.FlagMinConfig,
		Aliases:  []string{"m"},
		Usage:    "Print only the mandatory vars",
		Required: false,
	}
	urlFlag = cli.StringFlag{
		Name:  config.FlagURL,
		Usage: "URL of the RPC server of a running node",
		Value: "http://localhost:5576",
	}
	directionFlag = cli.StringFlag{
		Name:  config.FlagDirection,
		Usage: "Relay to report (A->B, B->A, relay-ab, relay-ba). Both if empty",
	}
	batchesFlag = cli.IntFlag{
		Name:  config.FlagBatches,
		Usage: "Number of journaled batches to print per relay, newest first",
		Value: 0,
	}
	statusTxFlag = cli.StringFlag{
		Name:  config.FlagTx,
		Usage: "Hash of a transaction to report the confirmation status of",
	}
	statusChainFlag = cli.StringFlag{
		Name:  config.FlagChain,
		Usage: "Chain of the transaction (A or B)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = xrelay.AppName
	app.Version = xrelay.Version
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the relays and the rpc server",
			Action:  start,
			Flags:   []cli.Flag{&configFileFlag, &componentsFlag, &saveConfigFlag},
		},
		{
			Name:    "prove",
			Aliases: []string{},
			Usage:   "Build the proof bundle of a transaction and print it as JSON",
			Action:  proveCmd,
			Flags:   []cli.Flag{&configFileFlag, &chainFlag, &txFlag, &waitFlag},
		},
		{
			Name:    "status",
			Aliases: []string{},
			Usage:   "Query the relays and confirmations of a running node",
			Action:  statusCmd,
			Flags:   []cli.Flag{&urlFlag, &directionFlag, &batchesFlag, &statusChainFlag, &statusTxFlag},
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the default configuration",
			Action:  configCmd,
			Flags:   []cli.Flag{&minConfigFlag},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
