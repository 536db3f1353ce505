package blocknotifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	timeNowFunc = time.Now

	errSubscriptionClosed = errors.New("new head subscription closed")
)

const (
	AutomaticBlockInterval = time.Second * 0
	// defaultMinBlockInterval is the minimum interval at which the node is checked for new blocks
	defaultMinBlockInterval = time.Second
	// defaultMaxBlockInterval is the maximum interval at which the node is checked for new blocks
	defaultMaxBlockInterval = time.Minute
)

// BlockNotifierPolling follows the head of a chain and notifies subscribers of every change.
// The head is read from a newHeads subscription when enabled, or by polling otherwise.
type BlockNotifierPolling struct {
	ethClient   EthClienter
	logger      *log.Logger
	config      Config
	minInterval time.Duration
	maxInterval time.Duration
	mu          sync.Mutex
	lastStatus  *blockNotifierPollingInternalStatus
	GenericSubscriber[EventNewBlock]
}

// New creates a new BlockNotifierPolling.
// If subscriber is nil a new GenericSubscriberImpl[EventNewBlock] is created.
func New(ethClient EthClienter,
	config Config,
	logger *log.Logger,
	subscriber GenericSubscriber[EventNewBlock]) *BlockNotifierPolling {
	if subscriber == nil {
		subscriber = NewGenericSubscriberImpl[EventNewBlock]()
	}
	minInterval := config.MinPollInterval.Duration
	if minInterval <= 0 {
		minInterval = defaultMinBlockInterval
	}
	maxInterval := config.MaxPollInterval.Duration
	if maxInterval < minInterval {
		maxInterval = max(minInterval, defaultMaxBlockInterval)
	}

	return &BlockNotifierPolling{
		ethClient:         ethClient,
		logger:            logger,
		config:            config,
		minInterval:       minInterval,
		maxInterval:       maxInterval,
		GenericSubscriber: subscriber,
	}
}

func (b *BlockNotifierPolling) String() string {
	status := b.getGlobalStatus()
	res := fmt.Sprintf("BlockNotifierPolling: subscription=%t", b.config.UseSubscription)
	if status != nil {
		res += fmt.Sprintf(" lastBlockSeen=%d", status.lastBlockSeen)
	} else {
		res += " lastBlockSeen=none"
	}
	return res
}

// Start follows the chain blocking the current goroutine until ctx is done
func (b *BlockNotifierPolling) Start(ctx context.Context) {
	if b.config.UseSubscription {
		err := b.followSubscription(ctx)
		if err == nil {
			return
		}
		b.logger.Warnf("new head subscription failed, falling back to polling: %v", err)
	}
	b.poll(ctx)
}

func (b *BlockNotifierPolling) poll(ctx context.Context) {
	ticker := time.NewTimer(b.config.CheckNewBlockInterval.Duration)
	defer ticker.Stop()

	status := b.getGlobalStatus()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			delay, newStatus, event := b.step(ctx, status)
			status = newStatus
			b.setGlobalStatus(status)
			if event != nil {
				b.Publish(*event)
			}
			ticker.Reset(delay)
		}
	}
}

// followSubscription returns nil when ctx is done, or the error that broke the subscription
func (b *BlockNotifierPolling) followSubscription(ctx context.Context) error {
	headers := make(chan *types.Header, 1)
	sub, err := b.ethClient.SubscribeNewHead(ctx, headers)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				err = errSubscriptionClosed
			}
			return err
		case header := <-headers:
			if header == nil || header.Number == nil {
				continue
			}
			status, event := b.onHeader(b.getGlobalStatus(), header)
			b.setGlobalStatus(status)
			if event != nil {
				b.Publish(*event)
			}
		}
	}
}

func (b *BlockNotifierPolling) setGlobalStatus(status *blockNotifierPollingInternalStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastStatus = status
}

func (b *BlockNotifierPolling) getGlobalStatus() *blockNotifierPollingInternalStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastStatus == nil {
		return nil
	}
	copyStatus := *b.lastStatus
	return &copyStatus
}

// step checks if there is a new head, it returns:
// - the delay for the next check
// - the new status
// - the new event to emit or nil
func (b *BlockNotifierPolling) step(ctx context.Context,
	previousState *blockNotifierPollingInternalStatus) (time.Duration,
	*blockNotifierPollingInternalStatus, *EventNewBlock) {
	currentBlock, err := b.ethClient.HeaderByNumber(ctx, nil)
	if err == nil && (currentBlock == nil || currentBlock.Number == nil) {
		err = errors.New("failed to get latest block: return a nil block")
	}
	if err != nil {
		b.logger.Errorf("Failed to get latest block: %v", err)
		return b.nextBlockRequestDelay(nil, err), previousState.clear(), nil
	}
	newState, event := b.onHeader(previousState, currentBlock)
	switch {
	case event == nil || previousState == nil:
		return b.nextBlockRequestDelay(previousState, nil), newState, event
	case newState.previousBlockTime == nil:
		// missed blocks, the block period has to be measured again
		return b.nextBlockRequestDelay(nil, nil), newState, event
	default:
		return b.nextBlockRequestDelay(newState, nil), newState, event
	}
}

// onHeader updates the status with a head read from the node
func (b *BlockNotifierPolling) onHeader(previousState *blockNotifierPollingInternalStatus,
	header *types.Header) (*blockNotifierPollingInternalStatus, *EventNewBlock) {
	number := header.Number.Uint64()
	hash := header.Hash()
	if previousState == nil || previousState.lastBlockHash == (common.Hash{}) {
		return previousState.intialBlock(number, hash), nil
	}
	eventToEmit := &EventNewBlock{
		BlockNumber: number,
		BlockHash:   hash,
	}
	if number == previousState.lastBlockSeen {
		if hash == previousState.lastBlockHash {
			// No new block, so no changes on state
			return previousState, nil
		}
		b.logger.Infof("Head %d replaced: %s -> %s", number, previousState.lastBlockHash, hash)
		newState := *previousState
		newState.lastBlockHash = hash
		return &newState, eventToEmit
	}
	if number < previousState.lastBlockSeen || number-previousState.lastBlockSeen != 1 {
		b.logger.Warnf("Missed block(s) or head moved back: %d -> %d", previousState.lastBlockSeen, number)
		// It start from scratch because something fails in calculation of block period
		return previousState.intialBlock(number, hash), eventToEmit
	}
	newState := previousState.incommingNewBlock(number, hash)
	b.logger.Debugf("New block seen: %d. blockRate:%s", number, newState.previousBlockTime)

	return newState, eventToEmit
}

func (b *BlockNotifierPolling) nextBlockRequestDelay(status *blockNotifierPollingInternalStatus,
	err error) time.Duration {
	if b.config.CheckNewBlockInterval.Duration != AutomaticBlockInterval {
		return b.config.CheckNewBlockInterval.Duration
	}
	if err != nil {
		// If error we wait twice the min interval
		return b.minInterval * 2 //nolint:mnd // 2 times the interval
	}
	// Initial stages wait the minimum interval to increase accuracy
	if status == nil || status.previousBlockTime == nil {
		return b.minInterval
	}
	// we have a previous block time so we can calculate the interval
	now := timeNowFunc()
	expectedTimeNextBlock := status.lastBlockTime.Add(*status.previousBlockTime)
	distanceToNextBlock := expectedTimeNextBlock.Sub(now)
	interval := distanceToNextBlock * 4 / 5 //nolint:mnd //  80% of for reach the next block
	return max(b.minInterval, min(b.maxInterval, interval))
}

type blockNotifierPollingInternalStatus struct {
	lastBlockSeen     uint64
	lastBlockHash     common.Hash
	lastBlockTime     time.Time      // first appear of block lastBlockSeen
	previousBlockTime *time.Duration // time of the previous block to appear
}

func (s *blockNotifierPollingInternalStatus) String() string {
	if s == nil {
		return "nil"
	}
	return fmt.Sprintf("lastBlockSeen=%d lastBlockHash=%s lastBlockTime=%s previousBlockTime=%s",
		s.lastBlockSeen, s.lastBlockHash, s.lastBlockTime, s.previousBlockTime)
}

func (s *blockNotifierPollingInternalStatus) clear() *blockNotifierPollingInternalStatus {
	return &blockNotifierPollingInternalStatus{}
}

func (s *blockNotifierPollingInternalStatus) intialBlock(block uint64,
	hash common.Hash) *blockNotifierPollingInternalStatus {
	return &blockNotifierPollingInternalStatus{
		lastBlockSeen: block,
		lastBlockHash: hash,
		lastBlockTime: timeNowFunc(),
	}
}

func (s *blockNotifierPollingInternalStatus) incommingNewBlock(block uint64,
	hash common.Hash) *blockNotifierPollingInternalStatus {
	now := timeNowFunc()
	timePreviousBlock := now.Sub(s.lastBlockTime)
	return &blockNotifierPollingInternalStatus{
		lastBlockSeen:     block,
		lastBlockHash:     hash,
		lastBlockTime:     now,
		previousBlockTime: &timePreviousBlock,
	}
}
