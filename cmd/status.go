package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/0xPolygon/xrelay/common"
	"github.com/0xPolygon/xrelay/config"
	"github.com/0xPolygon/xrelay/rpc"
	"github.com/urfave/cli/v2"
)

func statusCmd(cliCtx *cli.Context) error {
	return printStatus(
		os.Stdout,
		rpc.NewClient(cliCtx.String(config.FlagURL)),
		cliCtx.String(config.FlagDirection),
		cliCtx.Int(config.FlagBatches),
		cliCtx.String(config.FlagChain),
		cliCtx.String(config.FlagTx),
	)
}

// printStatus prints the state of the requested relays, both when direction is empty, followed
// by their last batches when batches > 0, and the confirmation report of tx when it's set
func printStatus(
	w io.Writer, client rpc.BridgeClientInterface, direction string, batches int, chain, tx string,
) error {
	directions := []string{common.RELAY_AB, common.RELAY_BA}
	if direction != "" {
		directions = []string{direction}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	for _, d := range directions {
		state, err := client.RelayState(d)
		if err != nil {
			return fmt.Errorf("error getting state of relay %s: %w", d, err)
		}
		if err := encoder.Encode(state); err != nil {
			return err
		}
		if batches <= 0 {
			continue
		}
		last, err := client.LastBatches(d, batches)
		if err != nil {
			return fmt.Errorf("error getting last batches of relay %s: %w", d, err)
		}
		if err := encoder.Encode(last); err != nil {
			return err
		}
	}

	if tx == "" {
		return nil
	}
	parsedChain, err := common.ParseChain(chain)
	if err != nil {
		return err
	}
	txHash, err := parseTxHash(tx)
	if err != nil {
		return err
	}
	report, err := client.ConfirmationStatus(parsedChain, txHash)
	if err != nil {
		return fmt.Errorf("error getting confirmation status of tx %s: %w", tx, err)
	}
	return encoder.Encode(report)
}
