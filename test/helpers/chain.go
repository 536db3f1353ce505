package helpers

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	blockTime      = 12
	initialBaseFee = 1_000_000_000
)

// Chain is an in-memory source chain that can be extended and forked. Orphaned headers are
// still served by hash, as a real node does for a while.
type Chain struct {
	mu        sync.RWMutex
	headers   map[common.Hash]*types.Header
	canonical []common.Hash
	txs       map[common.Hash]uint64
	forks     uint64
}

// NewChain returns a chain with a genesis block followed by length blocks
func NewChain(length int) *Chain {
	genesis := &types.Header{
		Number:     big.NewInt(0),
		Difficulty: big.NewInt(1),
		GasLimit:   defaultBlockGasLimit,
		BaseFee:    big.NewInt(initialBaseFee),
	}
	c := &Chain{
		headers:   map[common.Hash]*types.Header{genesis.Hash(): genesis},
		canonical: []common.Hash{genesis.Hash()},
		txs:       make(map[common.Hash]uint64),
	}
	c.Extend(length)

	return c
}

func (c *Chain) newHeader(parent *types.Header) *types.Header {
	extra := make([]byte, 8) //nolint:mnd
	binary.BigEndian.PutUint64(extra, c.forks)
	return &types.Header{
		ParentHash: parent.Hash(),
		Number:     new(big.Int).Add(parent.Number, common.Big1),
		Difficulty: big.NewInt(1),
		GasLimit:   parent.GasLimit,
		Time:       parent.Time + blockTime,
		Extra:      extra,
		BaseFee:    new(big.Int).Set(parent.BaseFee),
	}
}

// Extend appends n blocks to the canonical chain
func (c *Chain) Extend(n int) []*types.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extend(n)
}

func (c *Chain) extend(n int) []*types.Header {
	added := make([]*types.Header, 0, n)
	for i := 0; i < n; i++ {
		parent := c.headers[c.canonical[len(c.canonical)-1]]
		h := c.newHeader(parent)
		c.headers[h.Hash()] = h
		c.canonical = append(c.canonical, h.Hash())
		added = append(added, h)
	}
	return added
}

// Fork replaces the canonical blocks above number with n new blocks
func (c *Chain) Fork(number uint64, n int) []*types.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forks++
	c.canonical = c.canonical[:number+1]
	return c.extend(n)
}

// Head returns the last canonical header
func (c *Chain) Head() *types.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers[c.canonical[len(c.canonical)-1]]
}

// HeaderAt returns the canonical header at number, nil if the chain is shorter
func (c *Chain) HeaderAt(number uint64) *types.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if number >= uint64(len(c.canonical)) {
		return nil
	}
	return c.headers[c.canonical[number]]
}

// IncludeTx makes txHash part of the canonical block at number, whichever it is at query time
func (c *Chain) IncludeTx(txHash common.Hash, number uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txHash] = number
}

func (c *Chain) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	if number == nil {
		return c.Head(), nil
	}
	h := c.HeaderAt(number.Uint64())
	if h == nil {
		return nil, ethereum.NotFound
	}
	return h, nil
}

func (c *Chain) HeaderByHash(_ context.Context, hash common.Hash) (*types.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.headers[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return h, nil
}

func (c *Chain) BlockNumber(_ context.Context) (uint64, error) {
	return c.Head().Number.Uint64(), nil
}

func (c *Chain) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.RLock()
	number, ok := c.txs[txHash]
	c.mu.RUnlock()
	if !ok {
		return nil, ethereum.NotFound
	}
	h := c.HeaderAt(number)
	if h == nil {
		return nil, ethereum.NotFound
	}
	return &types.Receipt{
		Type:        types.DynamicFeeTxType,
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      txHash,
		BlockHash:   h.Hash(),
		BlockNumber: new(big.Int).Set(h.Number),
	}, nil
}
