package migrations

import (
	_ "embed"

	"github.com/0xPolygon/xrelay/db"
	"github.com/0xPolygon/xrelay/db/types"
	"github.com/0xPolygon/xrelay/log"
)

//go:embed journal0001.sql
var mig001 string

func RunMigrations(logger *log.Logger, dbPath string) error {
	migrations := []types.Migration{
		{
			ID:  "journal0001",
			SQL: mig001,
		},
	}

	return db.RunMigrations(logger, dbPath, migrations)
}
