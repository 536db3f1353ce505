package main

import (
	"os"

	"github.com/0xPolygon/xrelay"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	xrelay.PrintVersion(os.Stdout)
	return nil
}
