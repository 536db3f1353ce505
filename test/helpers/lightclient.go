package helpers

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/0xPolygon/xrelay/canonical"
	"github.com/0xPolygon/xrelay/lightclient"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SubmittedBatch is a batch received by LightClient
type SubmittedBatch struct {
	First    uint64
	Last     uint64
	Accepted bool
}

// LightClient is an in-memory light client. Like the contract, it only accepts a batch when
// every header links to a header it already stores, and its endpoint is the head with the
// highest total difficulty, the highest one on ties so chains with no difficulty still advance.
type LightClient struct {
	mu         sync.Mutex
	records    map[common.Hash]lightclient.HeaderRecord
	endpoint   common.Hash
	batches    []SubmittedBatch
	rejectNext int
	failNext   error
}

// NewLightClient returns a light client anchored at the given header
func NewLightClient(anchor *types.Header) *LightClient {
	record := lightclient.HeaderRecord{
		Hash:            anchor.Hash(),
		ParentHash:      anchor.ParentHash,
		Number:          anchor.Number.Uint64(),
		TotalDifficulty: new(big.Int).Set(anchor.Difficulty),
	}
	return &LightClient{
		records:  map[common.Hash]lightclient.HeaderRecord{record.Hash: record},
		endpoint: record.Hash,
	}
}

// RejectNext makes the next n submissions fail with lightclient.ErrSubmissionRejected
func (l *LightClient) RejectNext(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejectNext = n
}

// FailNext makes the next submission fail with err without being evaluated
func (l *LightClient) FailNext(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = err
}

// Batches returns the submissions received so far
func (l *LightClient) Batches() []SubmittedBatch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]SubmittedBatch(nil), l.batches...)
}

// Store submits the headers as a single batch
func (l *LightClient) Store(headers ...*types.Header) error {
	encoded := make([][]byte, len(headers))
	for i, h := range headers {
		enc, err := canonical.EncodeHeader(canonical.HeaderFromGeth(h))
		if err != nil {
			return err
		}
		encoded[i] = enc
	}
	return l.SubmitHeaderBatch(context.Background(), encoded)
}

func (l *LightClient) SubmitHeaderBatch(_ context.Context, encoded [][]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	headers := make([]*canonical.Header, len(encoded))
	for i, enc := range encoded {
		h, err := canonical.DecodeHeader(enc)
		if err != nil {
			return fmt.Errorf("%w: %w", lightclient.ErrSubmissionRejected, err)
		}
		headers[i] = h
	}
	batch := SubmittedBatch{}
	if len(headers) > 0 {
		batch.First = headers[0].Number
		batch.Last = headers[len(headers)-1].Number
	}
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		l.batches = append(l.batches, batch)
		return err
	}
	if l.rejectNext > 0 {
		l.rejectNext--
		l.batches = append(l.batches, batch)
		return fmt.Errorf("%w: forced", lightclient.ErrSubmissionRejected)
	}

	staged := make(map[common.Hash]lightclient.HeaderRecord, len(headers))
	for _, h := range headers {
		hash := h.Hash()
		if _, ok := l.records[hash]; ok {
			l.batches = append(l.batches, batch)
			return fmt.Errorf("%w: header %d already stored", lightclient.ErrSubmissionRejected, h.Number)
		}
		parent, ok := l.records[h.ParentHash]
		if !ok {
			parent, ok = staged[h.ParentHash]
		}
		if !ok || parent.Number+1 != h.Number {
			l.batches = append(l.batches, batch)
			return fmt.Errorf("%w: parent of header %d unknown", lightclient.ErrSubmissionRejected, h.Number)
		}
		staged[hash] = lightclient.HeaderRecord{
			Hash:            hash,
			ParentHash:      h.ParentHash,
			Number:          h.Number,
			TotalDifficulty: new(big.Int).Add(parent.TotalDifficulty, h.Difficulty),
		}
	}

	for hash, record := range staged {
		l.records[hash] = record
		if heavier(record, l.records[l.endpoint]) {
			l.endpoint = hash
		}
	}
	batch.Accepted = true
	l.batches = append(l.batches, batch)
	return nil
}

func heavier(a, b lightclient.HeaderRecord) bool {
	if c := a.TotalDifficulty.Cmp(b.TotalDifficulty); c != 0 {
		return c > 0
	}
	return a.Number > b.Number
}

func (l *LightClient) IsHeaderKnown(_ context.Context, blockHash common.Hash) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[blockHash]
	return ok, nil
}

func (l *LightClient) GetHeaderRecord(_ context.Context, blockHash common.Hash) (lightclient.HeaderRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[blockHash]
	if !ok {
		return lightclient.HeaderRecord{}, fmt.Errorf("%w: %s", lightclient.ErrHeaderNotFound, blockHash)
	}
	return record, nil
}

func (l *LightClient) GetChainEndpoint(_ context.Context) (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.endpoint, nil
}
