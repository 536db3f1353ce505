package blocknotifier

import (
	"context"
	"math/big"

	cfgtypes "github.com/0xPolygon/xrelay/config/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventNewBlock is published every time the head of the chain changes
type EventNewBlock struct {
	BlockNumber uint64
	BlockHash   common.Hash
}

// BlockNotifier lets components wait for new blocks instead of polling the node themselves
type BlockNotifier interface {
	Subscribe(id string) <-chan EventNewBlock
	String() string
}

type GenericSubscriber[T any] interface {
	Subscribe(subscriberName string) <-chan T
	Publish(data T)
}

// EthClienter is the subset of the eth client used to follow the head of a chain
type EthClienter interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}

// Config is the configuration of the block notifier
type Config struct {
	// CheckNewBlockInterval is the interval at which the node is polled for new blocks.
	// If it's 0 the interval adapts to the observed block time within [MinPollInterval, MaxPollInterval]
	CheckNewBlockInterval cfgtypes.Duration `mapstructure:"CheckNewBlockInterval"`
	// MinPollInterval is the lower bound of the adaptive polling interval
	MinPollInterval cfgtypes.Duration `mapstructure:"MinPollInterval"`
	// MaxPollInterval is the upper bound of the adaptive polling interval
	MaxPollInterval cfgtypes.Duration `mapstructure:"MaxPollInterval"`
	// UseSubscription enables eth_subscribe newHeads, polling is used if the subscription fails
	UseSubscription bool `mapstructure:"UseSubscription"`
}
