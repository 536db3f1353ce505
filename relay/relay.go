package relay

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/0xPolygon/xrelay/blocknotifier"
	"github.com/0xPolygon/xrelay/canonical"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/lightclient"
	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrResyncFailed is returned by Start when the relay can't find where the light client chain ends
var ErrResyncFailed = errors.New("relay could not resync with the light client")

// SourceChainer reads the headers of the chain being relayed
type SourceChainer interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error)
}

// LightClienter is the light client living on the destination chain
type LightClienter interface {
	SubmitHeaderBatch(ctx context.Context, headers [][]byte) error
	IsHeaderKnown(ctx context.Context, blockHash common.Hash) (bool, error)
	GetChainEndpoint(ctx context.Context) (common.Hash, error)
}

// Journaler records the outcome of every submitted batch
type Journaler interface {
	AddBatch(ctx context.Context, entry journal.BatchEntry) error
}

// Relay copies the headers of a source chain into the light client of a destination chain
type Relay struct {
	logger    *log.Logger
	direction string
	cfg       Config
	source    SourceChainer
	lc        LightClienter
	notifier  blocknotifier.BlockNotifier
	journal   Journaler

	mu    sync.Mutex
	state RelayState
}

// New creates the relay of a direction. notifier and journal are optional.
func New(
	logger *log.Logger,
	direction string,
	cfg Config,
	source SourceChainer,
	lc LightClienter,
	notifier blocknotifier.BlockNotifier,
	jr Journaler,
) *Relay {
	return &Relay{
		logger:    logger,
		direction: direction,
		cfg:       cfg.withDefaults(),
		source:    source,
		lc:        lc,
		notifier:  notifier,
		journal:   jr,
		state: RelayState{
			Direction: direction,
			Phase:     PhaseIdle,
		},
	}
}

// State returns a snapshot of the relay
func (r *Relay) State() RelayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Relay) updateState(update func(s *RelayState)) RelayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	update(&r.state)
	nextBlockGauge.WithLabelValues(r.direction).Set(float64(r.state.NextBlockNumber))
	backoffStepsGauge.WithLabelValues(r.direction).Set(float64(r.state.BackoffSteps))
	return r.state
}

// Start relays headers until ctx is cancelled. It only returns an error when the relay
// can't resync MaxResyncFailures times in a row.
func (r *Relay) Start(ctx context.Context) error {
	var newBlocks <-chan blocknotifier.EventNewBlock
	if r.notifier != nil {
		newBlocks = r.notifier.Subscribe(r.direction)
	}
	r.logger.Infof("relay %s started: %s", r.direction, r.State())

	resyncFailures := 0
	for {
		if ctx.Err() != nil {
			r.logger.Infof("relay %s stopped: %s", r.direction, r.State())
			return nil
		}
		state := r.State()
		if !state.Synced || state.BackoffSteps > r.cfg.MaxBackoffSteps {
			if err := r.resync(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				resyncFailures++
				r.logger.Errorf("relay %s resync %d/%d failed: %v",
					r.direction, resyncFailures, r.cfg.MaxResyncFailures, err)
				if resyncFailures >= r.cfg.MaxResyncFailures {
					return fmt.Errorf("%w: %s: %w", ErrResyncFailed, r.direction, err)
				}
				r.wait(ctx, newBlocks)
				continue
			}
			resyncFailures = 0
		}
		if r.step(ctx) {
			r.wait(ctx, newBlocks)
		}
	}
}

// resync points the cursor right after the head of the longest chain stored in the light client
func (r *Relay) resync(ctx context.Context) error {
	r.updateState(func(s *RelayState) { s.Phase = PhaseDiscovering })
	endpoint, err := r.lc.GetChainEndpoint(ctx)
	if err != nil {
		return fmt.Errorf("error getting light client endpoint: %w", err)
	}
	header, err := r.source.HeaderByHash(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("error getting endpoint %s from source chain: %w", endpoint, err)
	}
	state := r.updateState(func(s *RelayState) {
		s.NextBlockNumber = header.Number.Uint64() + 1
		s.BackoffSteps = 0
		s.Synced = true
	})
	resyncsTotal.WithLabelValues(r.direction).Inc()
	r.logger.Infof("relay %s resynced at endpoint %d %s: %s", r.direction, header.Number.Uint64(), endpoint, state)

	return nil
}

// step runs one discovery and, when there are headers to relay, one submission.
// It returns true when the relay has to wait before the next step.
func (r *Relay) step(ctx context.Context) bool {
	next := r.updateState(func(s *RelayState) { s.Phase = PhaseDiscovering }).NextBlockNumber
	first, ok := r.headerByNumber(ctx, next)
	if !ok {
		r.updateState(func(s *RelayState) { s.Phase = PhaseIdle })
		return true
	}

	known, err := r.lc.IsHeaderKnown(ctx, first.Hash())
	if err != nil {
		r.logger.Warnf("relay %s: error checking header %d in light client: %v", r.direction, next, err)
		return true
	}
	if known {
		r.updateState(func(s *RelayState) { s.NextBlockNumber++ })
		return false
	}
	if next > 0 {
		parentKnown, err := r.lc.IsHeaderKnown(ctx, first.ParentHash)
		if err != nil {
			r.logger.Warnf("relay %s: error checking parent of %d in light client: %v", r.direction, next, err)
			return true
		}
		if !parentKnown {
			state := r.updateState(func(s *RelayState) {
				s.stepBack(1)
				s.BackoffSteps++
			})
			r.logger.Debugf("relay %s: parent of %d unknown to light client, stepping back: %s", r.direction, next, state)
			return false
		}
	}

	batch := r.collectBatch(ctx, first)
	if ctx.Err() != nil {
		state := r.updateState(func(s *RelayState) {
			s.NextBlockNumber = next
			s.Phase = PhaseIdle
		})
		r.logger.Infof("relay %s: cancelled while collecting headers, batch not submitted: %s", r.direction, state)
		return false
	}
	return r.submit(ctx, batch)
}

func (r *Relay) headerByNumber(ctx context.Context, number uint64) (*types.Header, bool) {
	header, err := r.source.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			r.logger.Warnf("relay %s: error getting source header %d: %v", r.direction, number, err)
		}
		return nil, false
	}
	if header == nil {
		return nil, false
	}
	return header, true
}

// collectBatch gathers up to BatchSize linked headers starting with first, advancing the cursor
func (r *Relay) collectBatch(ctx context.Context, first *types.Header) []*types.Header {
	batch := []*types.Header{first}
	next := r.updateState(func(s *RelayState) { s.NextBlockNumber++ }).NextBlockNumber
	for len(batch) < r.cfg.BatchSize {
		header, ok := r.headerByNumber(ctx, next)
		if !ok {
			break
		}
		if header.ParentHash != batch[len(batch)-1].Hash() {
			r.logger.Debugf("relay %s: header %d doesn't link to the batch, ending it", r.direction, next)
			break
		}
		batch = append(batch, header)
		next = r.updateState(func(s *RelayState) { s.NextBlockNumber++ }).NextBlockNumber
	}
	return batch
}

// submit sends the batch and applies the outcome to the state. It returns true if the
// relay has to wait before the next step.
func (r *Relay) submit(ctx context.Context, batch []*types.Header) bool {
	firstNumber := batch[0].Number.Uint64()
	lastNumber := batch[len(batch)-1].Number.Uint64()
	encoded := make([][]byte, len(batch))
	for i, h := range batch {
		enc, err := canonical.EncodeHeader(canonical.HeaderFromGeth(h))
		if err != nil {
			r.logger.Errorw("cannot encode source header",
				"direction", r.direction, "blockNumber", h.Number.Uint64(), "error", err)
			r.updateState(func(s *RelayState) { s.NextBlockNumber = firstNumber })
			return true
		}
		encoded[i] = enc
	}

	r.updateState(func(s *RelayState) { s.Phase = PhaseSubmitting })
	r.logger.Infof("relay %s: submitting headers %d-%d", r.direction, firstNumber, lastNumber)
	// the submission is never interrupted, cancellation is checked once it returns
	err := r.lc.SubmitHeaderBatch(context.WithoutCancel(ctx), encoded)

	var (
		result    journal.BatchResult
		mustWait  bool
		stateDone RelayState
	)
	switch {
	case err == nil:
		result = journal.BatchAccepted
		stateDone = r.updateState(func(s *RelayState) {
			s.BackoffSteps = 0
			s.Phase = PhaseIdle
			s.LastResult = resultAccepted
		})
		batchesTotal.WithLabelValues(r.direction, resultAccepted).Inc()
		headersSubmittedTotal.WithLabelValues(r.direction).Add(float64(len(batch)))
		r.logger.Infof("relay %s: headers %d-%d accepted", r.direction, firstNumber, lastNumber)
	case errors.Is(err, lightclient.ErrSubmissionRejected):
		result = journal.BatchRejected
		stateDone = r.updateState(func(s *RelayState) {
			s.stepBack(uint64(len(batch)) + 1)
			s.BackoffSteps++
			s.Phase = PhaseIdle
			s.LastResult = resultRejected
		})
		batchesTotal.WithLabelValues(r.direction, resultRejected).Inc()
		r.logger.Warnf("relay %s: headers %d-%d rejected, stepping back: %s",
			r.direction, firstNumber, lastNumber, stateDone)
	default:
		result = journal.BatchTransport
		mustWait = true
		stateDone = r.updateState(func(s *RelayState) {
			s.NextBlockNumber = firstNumber
			s.Phase = PhaseIdle
			s.LastResult = resultTransport
		})
		batchesTotal.WithLabelValues(r.direction, resultTransport).Inc()
		r.logger.Errorf("relay %s: error submitting headers %d-%d: %v", r.direction, firstNumber, lastNumber, err)
	}

	r.journalBatch(ctx, batch, result, err, stateDone.NextBlockNumber)
	return mustWait
}

func (r *Relay) journalBatch(
	ctx context.Context, batch []*types.Header, result journal.BatchResult, submitErr error, next uint64,
) {
	if r.journal == nil {
		return
	}
	entry := journal.BatchEntry{
		Direction:  r.direction,
		FirstBlock: batch[0].Number.Uint64(),
		LastBlock:  batch[len(batch)-1].Number.Uint64(),
		FirstHash:  batch[0].Hash(),
		LastHash:   batch[len(batch)-1].Hash(),
		Headers:    len(batch),
		Result:     result,
		NextBlock:  next,
	}
	if submitErr != nil {
		entry.Error = submitErr.Error()
	}
	if err := r.journal.AddBatch(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Warnf("relay %s: error journaling batch: %v", r.direction, err)
	}
}

// wait returns on a new source block, after the poll interval or when ctx is done
func (r *Relay) wait(ctx context.Context, newBlocks <-chan blocknotifier.EventNewBlock) {
	timer := time.NewTimer(r.cfg.PollInterval.Duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-newBlocks:
	case <-timer.C:
	}
}
