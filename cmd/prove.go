package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/0xPolygon/xrelay/common"
	"github.com/0xPolygon/xrelay/config"
	"github.com/0xPolygon/xrelay/confirmation"
	"github.com/0xPolygon/xrelay/lightclient"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/proofbuilder"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
)

func proveCmd(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}
	log.Init(c.Log)

	chain, err := common.ParseChain(cliCtx.String(config.FlagChain))
	if err != nil {
		return err
	}
	txHash, err := parseTxHash(cliCtx.String(config.FlagTx))
	if err != nil {
		return err
	}

	ctx := cliCtx.Context
	netCfg := c.Network(chain)
	client, err := ethclient.DialContext(ctx, netCfg.URL)
	if err != nil {
		return fmt.Errorf("error dialing chain %s at %s: %w", chain, netCfg.URL, err)
	}
	defer client.Close()

	if cliCtx.Bool(config.FlagWait) {
		other := common.OtherChain(chain)
		otherCfg := c.Network(other)
		otherClient, err := ethclient.DialContext(ctx, otherCfg.URL)
		if err != nil {
			return fmt.Errorf("error dialing chain %s at %s: %w", other, otherCfg.URL, err)
		}
		defer otherClient.Close()

		// read only, no submissions
		lc, err := lightclient.NewEVMLightClient(
			log.WithFields("module", "lightclient"), otherClient, nil, otherCfg.LightClient,
		)
		if err != nil {
			return err
		}
		tracker, err := confirmation.New(
			log.WithFields("module", "confirmation"), c.Confirmation, client, lc, nil, nil,
		)
		if err != nil {
			return err
		}
		log.Infof("waiting for the confirmation of tx %s on chain %s", txHash, chain)
		if _, err := tracker.WaitConfirmed(ctx, txHash); err != nil {
			return fmt.Errorf("error waiting for tx %s: %w", txHash, err)
		}
	}

	builder := proofbuilder.New(log.WithFields("module", "proofbuilder"), client, netCfg.ChainID, c.ProofBuilder)
	bundle, err := builder.BundleForTransaction(ctx, txHash)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(bundle)
}

func parseTxHash(s string) (ethcommon.Hash, error) {
	var hash ethcommon.Hash
	if err := hash.UnmarshalText([]byte(s)); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("invalid transaction hash %q: %w", s, err)
	}
	return hash, nil
}
