package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xPolygon/xrelay/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, "http://localhost:8545", cfg.ChainA.URL)
	require.Equal(t, uint64(1338), cfg.ChainB.ChainID)
	require.Equal(t, 25, cfg.RelayAB.BatchSize)
	require.Equal(t, 1500*time.Millisecond, cfg.RelayBA.PollInterval.Duration)
	require.Equal(t, uint64(5), cfg.Confirmation.Confirmations)
	require.Equal(t, "/tmp/xrelay/journal.sqlite", cfg.Journal.DBPath)
	require.Equal(t, "/tmp/xrelay/ethtxmanager-a.sqlite", cfg.ChainA.EthTxManager.StoragePath)
	require.Equal(t, uint64(1337), cfg.ChainA.EthTxManager.Etherman.L1ChainID)
	require.Len(t, cfg.ChainB.EthTxManager.PrivateKeys, 1)
	require.Equal(t, "/app/keystore/submitter-b.keystore", cfg.ChainB.EthTxManager.PrivateKeys[0].Path)
	require.Equal(t, time.Second, cfg.ChainA.LightClient.WaitPeriodMonitorTx.Duration)
	require.Equal(t, 5576, cfg.RPC.Port)
}

func TestLoadUserFile(t *testing.T) {
	dir := t.TempDir()
	userFile := filepath.Join(dir, "user.toml")
	require.NoError(t, os.WriteFile(userFile, []byte(`
PathRWData = "/data"
LightClientOnB = "0x00000000000000000000000000000000000000bb"

[RelayAB]
  BatchSize = 10

[Confirmation]
  Confirmations = 12
`), DefaultCreationFilePermissions))
	jsonFile := filepath.Join(dir, "chain.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"ChainBURL": "http://chain-b:8545"}`),
		DefaultCreationFilePermissions))

	files, err := readFiles([]string{userFile, jsonFile})
	require.NoError(t, err)
	saveDir := t.TempDir()
	cfg, err := LoadFile(files, saveDir)
	require.NoError(t, err)

	require.Equal(t, 10, cfg.RelayAB.BatchSize)
	require.Equal(t, 25, cfg.RelayBA.BatchSize)
	require.Equal(t, uint64(12), cfg.Confirmation.Confirmations)
	require.Equal(t, "/data/journal.sqlite", cfg.Journal.DBPath)
	require.Equal(t, "http://chain-b:8545", cfg.ChainB.URL)
	require.Equal(t, "http://chain-b:8545", cfg.ChainB.EthTxManager.Etherman.URL)
	require.Equal(t, ethcommon.HexToAddress("0xbb"), cfg.ChainB.LightClient.Addr)

	saved, err := os.ReadFile(filepath.Join(saveDir, SaveConfigFileName))
	require.NoError(t, err)
	require.Contains(t, string(saved), `DBPath = "/data/journal.sqlite"`)

	_, err = readFiles([]string{filepath.Join(dir, "missing.toml")})
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XRELAY_RELAYBA_BATCHSIZE", "7")
	t.Setenv("XRELAY_ChainAURL", "http://env-a:8545")

	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.RelayBA.BatchSize)
	require.Equal(t, "http://env-a:8545", cfg.ChainA.URL)
}

func TestNetworkAndRelaySelection(t *testing.T) {
	cfg, err := LoadFile([]FileData{{Name: "user", Content: "[RelayBA]\nBatchSize = 3\n"}}, "")
	require.NoError(t, err)

	require.Equal(t, cfg.ChainA, cfg.Network(common.ChainA))
	require.Equal(t, cfg.ChainB, cfg.Network(common.ChainB))
	require.Equal(t, 3, cfg.Relay(common.Direction(common.ChainB, common.ChainA)).BatchSize)
	require.Equal(t, 25, cfg.Relay(common.Direction(common.ChainA, common.ChainB)).BatchSize)
}
