package confirmation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/0xPolygon/xrelay/blocknotifier"
	"github.com/0xPolygon/xrelay/lightclient"
	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var orphanedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "xrelay_confirmation_orphaned_total",
	Help: "Ancestor walks that found another block canonical at the height of the target",
})

// SourceChainer reads the chain where the tracked transactions live
type SourceChainer interface {
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// LightClientReader reads the light client that follows the source chain on the other chain
type LightClientReader interface {
	GetHeaderRecord(ctx context.Context, blockHash common.Hash) (lightclient.HeaderRecord, error)
	GetChainEndpoint(ctx context.Context) (common.Hash, error)
}

// Tracker tells when a transaction is buried deep enough in its own chain and in the
// light client of the other chain
type Tracker struct {
	logger *log.Logger
	cfg    Config
	source SourceChainer
	lc     LightClientReader

	sourceNotifier blocknotifier.BlockNotifier
	destNotifier   blocknotifier.BlockNotifier
	sourceBlocks   *broadcaster
	destBlocks     *broadcaster

	cache    *headerCache
	prunedAt atomic.Uint64
}

// New creates a tracker. The notifiers are optional, without them waits only poll.
func New(
	logger *log.Logger,
	cfg Config,
	source SourceChainer,
	lc LightClientReader,
	sourceNotifier, destNotifier blocknotifier.BlockNotifier,
) (*Tracker, error) {
	cfg = cfg.withDefaults()
	cache, err := newHeaderCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		logger:         logger,
		cfg:            cfg,
		source:         source,
		lc:             lc,
		sourceNotifier: sourceNotifier,
		destNotifier:   destNotifier,
		sourceBlocks:   newBroadcaster(),
		destBlocks:     newBroadcaster(),
		cache:          cache,
	}, nil
}

// Start wakes up the waiters on every new block of both chains until ctx is done
func (t *Tracker) Start(ctx context.Context) {
	var sourceCh, destCh <-chan blocknotifier.EventNewBlock
	if t.sourceNotifier != nil {
		sourceCh = t.sourceNotifier.Subscribe("confirmation-source")
	}
	if t.destNotifier != nil {
		destCh = t.destNotifier.Subscribe("confirmation-dest")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-sourceCh:
			t.sourceBlocks.Notify()
		case <-destCh:
			t.destBlocks.Notify()
		}
	}
}

// LocalStatus checks whether the block of the transaction has Confirmations descendants on
// the source chain. The receipt is nil while the transaction is not mined.
func (t *Tracker) LocalStatus(ctx context.Context, txHash common.Hash) (Status, *types.Receipt, error) {
	receipt, err := t.source.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return StatusPending, nil, nil
	}
	if err != nil {
		return StatusPending, nil, fmt.Errorf("error getting receipt of tx %s: %w", txHash, err)
	}
	head, err := t.source.BlockNumber(ctx)
	if err != nil {
		return StatusPending, receipt, fmt.Errorf("error getting source chain head: %w", err)
	}
	number := receipt.BlockNumber.Uint64()
	if head < number || head-number < t.cfg.Confirmations {
		return StatusPending, receipt, nil
	}
	return StatusConfirmed, receipt, nil
}

// WaitLocal blocks until LocalStatus is confirmed. The receipt is fetched again on every
// check, a reorg can move the transaction to another block or drop it.
func (t *Tracker) WaitLocal(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	for {
		wake := t.sourceBlocks.C()
		status, receipt, err := t.LocalStatus(ctx, txHash)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.logger.Warnf("error checking local confirmation of tx %s: %v", txHash, err)
		case status == StatusConfirmed:
			t.logger.Debugf("tx %s confirmed at block %d", txHash, receipt.BlockNumber.Uint64())
			return receipt, nil
		}
		if err := t.wait(ctx, wake, nil); err != nil {
			return nil, err
		}
	}
}

// LightClientStatus checks whether blockHash is stored in the light client and is an
// ancestor of its chain endpoint with at least Confirmations blocks in between
func (t *Tracker) LightClientStatus(ctx context.Context, blockHash common.Hash) (Status, error) {
	target, err := t.lc.GetHeaderRecord(ctx, blockHash)
	if errors.Is(err, lightclient.ErrHeaderNotFound) {
		return StatusPending, nil
	}
	if err != nil {
		return StatusPending, fmt.Errorf("error getting light client record of %s: %w", blockHash, err)
	}
	endpointHash, err := t.lc.GetChainEndpoint(ctx)
	if err != nil {
		return StatusPending, fmt.Errorf("error getting light client endpoint: %w", err)
	}
	endpoint, err := t.link(ctx, endpointHash)
	if err != nil {
		return StatusPending, err
	}
	t.prune(endpoint.Number)
	if endpoint.Number < target.Number || endpoint.Number-target.Number < t.cfg.Confirmations {
		return StatusPending, nil
	}

	// a higher fork can pass the depth test, only the ancestor at the target height counts
	cur := endpoint
	for cur.Number > target.Number {
		parent, err := t.link(ctx, cur.ParentHash)
		if err != nil {
			return StatusPending, err
		}
		if parent.Number+1 != cur.Number {
			return StatusPending, fmt.Errorf("parent %s of block %d has number %d", parent.Hash, cur.Number, parent.Number)
		}
		cur = parent
	}
	if cur.Hash != blockHash {
		orphanedTotal.Inc()
		t.logger.Infof("block %d %s orphaned in light client, canonical one is %s", target.Number, blockHash, cur.Hash)
		return StatusOrphaned, nil
	}
	return StatusConfirmed, nil
}

// WaitLightClient blocks until the block of the transaction is confirmed in the light client.
// When the block gets orphaned the receipt is resolved again, the transaction may have been
// included in another block.
func (t *Tracker) WaitLightClient(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	orphans := 0
	for {
		sourceWake, destWake := t.sourceBlocks.C(), t.destBlocks.C()
		receipt, status, err := t.lightClientStatusOfTx(ctx, txHash)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.logger.Warnf("error checking light client confirmation of tx %s: %v", txHash, err)
		case status == StatusConfirmed:
			t.logger.Debugf("tx %s confirmed in light client at block %d", txHash, receipt.BlockNumber.Uint64())
			return receipt, nil
		case status == StatusOrphaned:
			orphans++
			if orphans > t.cfg.MaxOrphanRestarts {
				return nil, fmt.Errorf("%w: tx %s, block %s, %d restarts",
					ErrOrphanedTarget, txHash, receipt.BlockHash, orphans-1)
			}
		default:
			orphans = 0
		}
		if err := t.wait(ctx, sourceWake, destWake); err != nil {
			return nil, err
		}
	}
}

// WaitConfirmed waits for the local confirmation first and then for the light client one
func (t *Tracker) WaitConfirmed(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if _, err := t.WaitLocal(ctx, txHash); err != nil {
		return nil, err
	}
	return t.WaitLightClient(ctx, txHash)
}

// Report returns the current status of both confirmations of the transaction
func (t *Tracker) Report(ctx context.Context, txHash common.Hash) (Report, error) {
	report := Report{TxHash: txHash, Local: StatusPending, LightClient: StatusPending}
	local, receipt, err := t.LocalStatus(ctx, txHash)
	if err != nil || receipt == nil {
		return report, err
	}
	report.Local = local
	report.BlockHash = receipt.BlockHash
	report.BlockNumber = receipt.BlockNumber.Uint64()
	report.LightClient, err = t.LightClientStatus(ctx, receipt.BlockHash)
	return report, err
}

func (t *Tracker) lightClientStatusOfTx(ctx context.Context, txHash common.Hash) (*types.Receipt, Status, error) {
	receipt, err := t.source.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, StatusPending, nil
	}
	if err != nil {
		return nil, StatusPending, fmt.Errorf("error getting receipt of tx %s: %w", txHash, err)
	}
	status, err := t.LightClientStatus(ctx, receipt.BlockHash)
	return receipt, status, err
}

// link resolves the parent of hash from the cache, the light client or the source chain
func (t *Tracker) link(ctx context.Context, hash common.Hash) (headerLink, error) {
	if l, ok := t.cache.get(hash); ok {
		return l, nil
	}
	record, err := t.lc.GetHeaderRecord(ctx, hash)
	if err == nil {
		l := headerLink{Hash: hash, ParentHash: record.ParentHash, Number: record.Number}
		t.cache.add(l)
		return l, nil
	}
	if !errors.Is(err, lightclient.ErrHeaderNotFound) {
		return headerLink{}, fmt.Errorf("error getting light client record of %s: %w", hash, err)
	}
	header, err := t.source.HeaderByHash(ctx, hash)
	if err != nil {
		return headerLink{}, fmt.Errorf("header %s unknown to light client, error getting it from source: %w", hash, err)
	}
	l := headerLink{Hash: hash, ParentHash: header.ParentHash, Number: header.Number.Uint64()}
	t.cache.add(l)
	return l, nil
}

func (t *Tracker) prune(endpointNumber uint64) {
	if endpointNumber <= t.cfg.CacheWindow {
		return
	}
	below := endpointNumber - t.cfg.CacheWindow
	for {
		prev := t.prunedAt.Load()
		if below <= prev {
			return
		}
		if t.prunedAt.CompareAndSwap(prev, below) {
			break
		}
	}
	if removed := t.cache.PruneBelow(below); removed > 0 {
		t.logger.Debugf("pruned %d cached headers below %d", removed, below)
	}
}

// wait returns on a wake-up, after the poll interval or with the error of ctx
func (t *Tracker) wait(ctx context.Context, sourceWake, destWake <-chan struct{}) error {
	timer := time.NewTimer(t.cfg.PollInterval.Duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-sourceWake:
	case <-destWake:
	case <-timer.C:
	}
	return nil
}
