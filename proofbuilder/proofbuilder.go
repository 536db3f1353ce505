package proofbuilder

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/0xPolygon/xrelay/canonical"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/trie"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

const defaultFetchConcurrency = 8

// SourceChainer is the subset of the chain client needed to rebuild block tries
type SourceChainer interface {
	BlockByHash(ctx context.Context, hash common.Hash) (*types.Block, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ProofBuilder builds transaction and receipt inclusion proofs. Every request rebuilds the
// whole trie of the block, so calls are independent and safe to run concurrently.
type ProofBuilder struct {
	logger           *log.Logger
	client           SourceChainer
	chainID          uint64
	fetchConcurrency int
}

// New returns a ProofBuilder for the chain identified by chainID
func New(logger *log.Logger, client SourceChainer, chainID uint64, cfg Config) *ProofBuilder {
	concurrency := cfg.FetchConcurrency
	if concurrency <= 0 {
		concurrency = defaultFetchConcurrency
	}

	return &ProofBuilder{
		logger:           logger,
		client:           client,
		chainID:          chainID,
		fetchConcurrency: concurrency,
	}
}

// TransactionProof proves the transaction at index of the block blockHash
func (b *ProofBuilder) TransactionProof(
	ctx context.Context, blockHash common.Hash, index uint64,
) (*InclusionProof, error) {
	block, err := b.client.BlockByHash(ctx, blockHash)
	if err != nil {
		return nil, fmt.Errorf("error getting block %s: %w", blockHash, err)
	}

	return b.transactionProof(block, index)
}

// ReceiptProof proves the receipt at index of the block blockHash
func (b *ProofBuilder) ReceiptProof(
	ctx context.Context, blockHash common.Hash, index uint64,
) (*InclusionProof, error) {
	block, err := b.client.BlockByHash(ctx, blockHash)
	if err != nil {
		return nil, fmt.Errorf("error getting block %s: %w", blockHash, err)
	}
	if index >= uint64(block.Transactions().Len()) {
		return nil, fmt.Errorf("%w: receipt %d requested, block %d has %d",
			ErrIndexOutOfRange, index, block.NumberU64(), block.Transactions().Len())
	}
	receipts, err := b.fetchReceipts(ctx, block)
	if err != nil {
		return nil, err
	}

	return b.receiptProof(block, receipts, index)
}

// BundleForTransaction returns the header, transaction proof and receipt proof of txHash
func (b *ProofBuilder) BundleForTransaction(ctx context.Context, txHash common.Hash) (*ProofBundle, error) {
	receipt, err := b.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("error getting receipt of tx %s: %w", txHash, err)
	}
	block, err := b.client.BlockByHash(ctx, receipt.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("error getting block %s: %w", receipt.BlockHash, err)
	}
	header, err := b.encodeHeader(block.Header(), receipt.BlockHash)
	if err != nil {
		return nil, err
	}
	index := uint64(receipt.TransactionIndex)
	txProof, err := b.transactionProof(block, index)
	if err != nil {
		return nil, err
	}
	receipts, err := b.fetchReceipts(ctx, block)
	if err != nil {
		return nil, err
	}
	receiptProof, err := b.receiptProof(block, receipts, index)
	if err != nil {
		return nil, err
	}

	return &ProofBundle{
		TxHash:      txHash,
		BlockHash:   receipt.BlockHash,
		BlockNumber: block.NumberU64(),
		Header:      header,
		Transaction: txProof,
		Receipt:     receiptProof,
	}, nil
}

func (b *ProofBuilder) encodeHeader(h *types.Header, blockHash common.Hash) ([]byte, error) {
	header := canonical.HeaderFromGeth(h)
	encoded, err := canonical.EncodeHeader(header)
	if err != nil {
		b.logEncodingError(KindHeader, h.Number.Uint64(), 0, err)
		return nil, err
	}
	if computed := header.Hash(); computed != blockHash {
		err := &ReconstructionMismatchError{
			Kind:        KindHeader,
			ChainID:     b.chainID,
			BlockNumber: h.Number.Uint64(),
			BlockHash:   blockHash,
			Declared:    blockHash,
			Computed:    computed,
		}
		b.logMismatch(err)

		return nil, err
	}

	return encoded, nil
}

func (b *ProofBuilder) transactionProof(block *types.Block, index uint64) (*InclusionProof, error) {
	txs := block.Transactions()
	if index >= uint64(len(txs)) {
		return nil, fmt.Errorf("%w: transaction %d requested, block %d has %d",
			ErrIndexOutOfRange, index, block.NumberU64(), len(txs))
	}
	chainID := new(big.Int).SetUint64(b.chainID)
	values := make([][]byte, len(txs))
	for i, tx := range txs {
		canonicalTx, err := canonical.TransactionFromGeth(tx, chainID)
		if err == nil {
			values[i], err = canonical.EncodeTransaction(canonicalTx, chainID)
		}
		if err != nil {
			b.logEncodingError(KindTransaction, block.NumberU64(), i, err)
			return nil, fmt.Errorf("transaction %d of block %d: %w", i, block.NumberU64(), err)
		}
	}

	return b.prove(KindTransaction, block, block.Header().TxHash, values, index)
}

func (b *ProofBuilder) receiptProof(
	block *types.Block, receipts []*types.Receipt, index uint64,
) (*InclusionProof, error) {
	if index >= uint64(len(receipts)) {
		return nil, fmt.Errorf("%w: receipt %d requested, block %d has %d",
			ErrIndexOutOfRange, index, block.NumberU64(), len(receipts))
	}
	values := make([][]byte, len(receipts))
	for i, r := range receipts {
		canonicalReceipt, err := canonical.ReceiptFromGeth(r)
		if err == nil {
			values[i], err = canonical.EncodeReceipt(canonicalReceipt)
		}
		if err != nil {
			b.logEncodingError(KindReceipt, block.NumberU64(), i, err)
			return nil, fmt.Errorf("receipt %d of block %d: %w", i, block.NumberU64(), err)
		}
	}

	return b.prove(KindReceipt, block, block.Header().ReceiptHash, values, index)
}

// fetchReceipts requests the receipt of every transaction of the block, in index order
func (b *ProofBuilder) fetchReceipts(ctx context.Context, block *types.Block) ([]*types.Receipt, error) {
	txs := block.Transactions()
	receipts := make([]*types.Receipt, len(txs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fetchConcurrency)
	for i, tx := range txs {
		g.Go(func() error {
			r, err := b.client.TransactionReceipt(gctx, tx.Hash())
			if err != nil {
				return fmt.Errorf("error getting receipt of tx %s: %w", tx.Hash(), err)
			}
			if r.BlockHash != block.Hash() || r.TransactionIndex != uint(i) {
				return fmt.Errorf("%w: receipt of tx %s points to block %s index %d, expected %s index %d",
					ErrReceiptNotInBlock, tx.Hash(), r.BlockHash, r.TransactionIndex, block.Hash(), i)
			}
			receipts[i] = r

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return receipts, nil
}

func (b *ProofBuilder) prove(
	kind Kind, block *types.Block, declared common.Hash, values [][]byte, index uint64,
) (*InclusionProof, error) {
	tr := trie.New()
	for i, v := range values {
		if err := tr.Insert(canonical.EncodeIndex(uint64(i)), v); err != nil {
			return nil, fmt.Errorf("error inserting %s %d: %w", kind, i, err)
		}
	}
	root := tr.Root()
	if root != declared {
		err := &ReconstructionMismatchError{
			Kind:        kind,
			ChainID:     b.chainID,
			BlockNumber: block.NumberU64(),
			BlockHash:   block.Hash(),
			Declared:    declared,
			Computed:    root,
		}
		b.logMismatch(err)

		return nil, err
	}

	key := canonical.EncodeIndex(index)
	proof, err := tr.Proof(key)
	if err != nil {
		return nil, fmt.Errorf("error building proof for %s %d: %w", kind, index, err)
	}
	value, err := trie.VerifyProof(root, key, proof)
	if err != nil {
		return nil, fmt.Errorf("proof for %s %d of block %d doesn't verify: %w", kind, index, block.NumberU64(), err)
	}
	if !bytes.Equal(value, values[index]) {
		return nil, fmt.Errorf("%w: proof for %s %d of block %d proves another value",
			trie.ErrInvalidProof, kind, index, block.NumberU64())
	}

	nodes := make([]hexutil.Bytes, len(proof))
	for i, n := range proof {
		nodes[i] = n
	}
	b.logger.Debugf("built %s proof for index %d of block %d with %d nodes", kind, index, block.NumberU64(), len(nodes))

	return &InclusionProof{
		Kind:        kind,
		ChainID:     b.chainID,
		BlockHash:   block.Hash(),
		BlockNumber: block.NumberU64(),
		Root:        root,
		Index:       index,
		Key:         key,
		Value:       values[index],
		Nodes:       nodes,
	}, nil
}

func (b *ProofBuilder) logMismatch(err *ReconstructionMismatchError) {
	b.logger.Errorw("rebuilt root doesn't match the chain",
		"kind", err.Kind,
		"chainID", err.ChainID,
		"blockNumber", err.BlockNumber,
		"blockHash", err.BlockHash,
		"declared", err.Declared,
		"computed", err.Computed,
	)
}

func (b *ProofBuilder) logEncodingError(kind Kind, blockNumber uint64, index int, err error) {
	b.logger.Errorw("cannot encode chain object",
		"kind", kind,
		"chainID", b.chainID,
		"blockNumber", blockNumber,
		"index", index,
		"error", err,
	)
}
