package config

import (
	"github.com/0xPolygon/xrelay/blocknotifier"
	"github.com/0xPolygon/xrelay/lightclient"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
)

// NetworkConfig is the configuration of one of the chains of the bridge
type NetworkConfig struct {
	// URL is the RPC endpoint of a node of the chain
	URL string `mapstructure:"URL"`
	// ChainID is the chain id, used to encode transactions
	ChainID uint64 `mapstructure:"ChainID"`
	// LightClient is the light client deployed on this chain that follows the other chain
	LightClient lightclient.Config `mapstructure:"LightClient"`
	// EthTxManager sends the header batches to LightClient
	EthTxManager ethtxmanager.Config `mapstructure:"EthTxManager"`
	// BlockNotifier follows the head of the chain
	BlockNotifier blocknotifier.Config `mapstructure:"BlockNotifier"`
}

// MetricsConfig is the configuration of the prometheus endpoint
type MetricsConfig struct {
	// Enabled serves the metrics
	Enabled bool `mapstructure:"Enabled"`
	// Host is the network adapter the metrics are served on
	Host string `mapstructure:"Host"`
	// Port is the port the metrics are served on
	Port int `mapstructure:"Port"`
}
