package db

import (
	"path"
	"testing"

	"github.com/0xPolygon/xrelay/db/types"
	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

const testMigration = `
-- +migrate Down
DROP TABLE IF EXISTS /*dbprefix*/item;

-- +migrate Up
CREATE TABLE /*dbprefix*/item (
	id    INTEGER PRIMARY KEY,
	hash  VARCHAR NOT NULL UNIQUE,
	nodes VARCHAR NOT NULL
);
`

type item struct {
	ID    int64           `meddler:"id,pk"`
	Hash  common.Hash     `meddler:"hash,hash"`
	Nodes []hexutil.Bytes `meddler:"nodes,proofnodes"`
}

func TestMeddlersAndMigrations(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "db_test.sqlite")
	logger := log.WithFields("module", "db-test")
	migrations := []types.Migration{{ID: "0001", SQL: testMigration, Prefix: "test_"}}
	require.NoError(t, RunMigrations(logger, dbPath, migrations))
	// running them twice is a no-op
	require.NoError(t, RunMigrations(logger, dbPath, migrations))

	database, err := NewSQLiteDB(dbPath)
	require.NoError(t, err)
	defer database.Close()

	stored := &item{
		Hash:  common.HexToHash("0xbeef"),
		Nodes: []hexutil.Bytes{{0xc0}, {0xc2, 0x01, 0x02}},
	}
	require.NoError(t, meddler.Insert(database, "test_item", stored))
	require.NotZero(t, stored.ID)

	empty := &item{Hash: common.HexToHash("0x1")}
	require.NoError(t, meddler.Insert(database, "test_item", empty))

	var items []*item
	require.NoError(t, meddler.QueryAll(database, &items, "SELECT * FROM test_item ORDER BY id ASC;"))
	read, ok := SlicePtrsToSlice(items).([]item)
	require.True(t, ok)
	require.Equal(t, []item{*stored, {ID: empty.ID, Hash: empty.Hash}}, read)

	duplicated := &item{Hash: stored.Hash}
	err = meddler.Insert(database, "test_item", duplicated)
	require.Error(t, err)
	require.True(t, IsUniqueConstraintErr(err))

	var missing item
	err = meddler.QueryRow(database, &missing, "SELECT * FROM test_item WHERE id = $1;", 1000)
	require.ErrorIs(t, ReturnErrNotFound(err), ErrNotFound)
}

func TestMigrationWithoutSeparator(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "db_test.sqlite")
	err := RunMigrations(log.WithFields("module", "db-test"), dbPath,
		[]types.Migration{{ID: "0001", SQL: "CREATE TABLE x (id INTEGER);"}})
	require.Error(t, err)
}

func TestNewSQLiteDBCreatesDir(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "nested", "dir", "db.sqlite")
	database, err := NewSQLiteDB(dbPath)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Ping())
	require.FileExists(t, dbPath)
}
