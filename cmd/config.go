package main

import (
	"os"
	"strings"

	"github.com/0xPolygon/xrelay/config"
	"github.com/urfave/cli/v2"
)

func configCmd(cliCtx *cli.Context) error {
	defaultConfig := strings.Builder{}
	if cliCtx.Bool(config.FlagMinConfig) {
		defaultConfig.WriteString(config.DefaultMandatoryVars)
	} else {
		defaultConfig.WriteString(config.DefaultVars)
		defaultConfig.WriteString(config.DefaultValues)
	}

	_, err := os.Stdout.WriteString(defaultConfig.String())
	return err
}
