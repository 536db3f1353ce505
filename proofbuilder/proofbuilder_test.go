package proofbuilder

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/0xPolygon/xrelay/canonical"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/trie"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	gethtrie "github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/require"
)

const testChainID = uint64(1337)

type fakeSourceChain struct {
	blocks   map[common.Hash]*types.Block
	receipts map[common.Hash]*types.Receipt
}

func (f *fakeSourceChain) BlockByHash(_ context.Context, hash common.Hash) (*types.Block, error) {
	b, ok := f.blocks[hash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return b, nil
}

func (f *fakeSourceChain) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	r, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return r, nil
}

func signTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, data []byte) *types.Transaction {
	t.Helper()
	to := common.HexToAddress("0xb0b")
	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(new(big.Int).SetUint64(testChainID)),
		&types.DynamicFeeTx{
			ChainID:   new(big.Int).SetUint64(testChainID),
			Nonce:     nonce,
			GasTipCap: big.NewInt(1),
			GasFeeCap: big.NewInt(1_000_000_000),
			Gas:       100_000,
			To:        &to,
			Value:     big.NewInt(int64(nonce)),
			Data:      data,
		})
	require.NoError(t, err)

	return tx
}

func testLogs(n int) []*types.Log {
	logs := make([]*types.Log, n)
	for i := range logs {
		logs[i] = &types.Log{
			Address: common.HexToAddress("0xe4e47"),
			Topics:  []common.Hash{common.BigToHash(big.NewInt(int64(i))), crypto.Keccak256Hash([]byte("Transfer"))},
			Data:    make([]byte, 32*(i+1)),
		}
	}

	return logs
}

// newTestBlock returns a block with one transaction per entry of logCounts, whose receipt emits
// that many logs. The roots are computed by go-ethereum.
func newTestBlock(t *testing.T, logCounts []int) (*fakeSourceChain, *types.Block, []*types.Receipt) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	txs := make([]*types.Transaction, len(logCounts))
	receipts := make([]*types.Receipt, len(logCounts))
	cumulative := uint64(0)
	for i, n := range logCounts {
		txs[i] = signTx(t, key, uint64(i), make([]byte, 10*i))
		cumulative += 21_000 + uint64(1_000*n)
		receipts[i] = &types.Receipt{
			Type:              types.DynamicFeeTxType,
			Status:            types.ReceiptStatusSuccessful,
			CumulativeGasUsed: cumulative,
			Logs:              testLogs(n),
			TxHash:            txs[i].Hash(),
			TransactionIndex:  uint(i),
		}
		receipts[i].Bloom = types.CreateBloom(types.Receipts{receipts[i]})
	}
	header := &types.Header{
		ParentHash: common.HexToHash("0x01"),
		Number:     big.NewInt(1000),
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
		GasUsed:    cumulative,
		Time:       1700000000,
		BaseFee:    big.NewInt(7),
	}
	block := types.NewBlock(header, &types.Body{Transactions: txs}, receipts, gethtrie.NewStackTrie(nil))

	source := &fakeSourceChain{
		blocks:   map[common.Hash]*types.Block{block.Hash(): block},
		receipts: map[common.Hash]*types.Receipt{},
	}
	for _, r := range receipts {
		r.BlockHash = block.Hash()
		r.BlockNumber = block.Number()
		source.receipts[r.TxHash] = r
	}

	return source, block, receipts
}

func TestReceiptProofWithDistinctSizes(t *testing.T) {
	source, block, receipts := newTestBlock(t, []int{0, 1, 3})
	builder := New(log.GetDefaultLogger(), source, testChainID, Config{FetchConcurrency: 2})

	proof, err := builder.ReceiptProof(context.Background(), block.Hash(), 1)
	require.NoError(t, err)
	require.Equal(t, block.ReceiptHash(), proof.Root)
	require.Equal(t, KindReceipt, proof.Kind)
	require.Equal(t, []byte{0x01}, []byte(proof.Key))
	require.NoError(t, proof.Verify())

	expected, err := receipts[1].MarshalBinary()
	require.NoError(t, err)
	value, err := trie.VerifyProof(proof.Root, canonical.EncodeIndex(1), proof.Proof())
	require.NoError(t, err)
	require.Equal(t, expected, value)

	for _, other := range []uint64{0, 2} {
		otherEncoded, err := receipts[other].MarshalBinary()
		require.NoError(t, err)
		value, err := trie.VerifyProof(proof.Root, canonical.EncodeIndex(other), proof.Proof())
		require.Error(t, err)
		require.NotEqual(t, otherEncoded, value)
	}

	encodedNodes, err := proof.EncodedNodes()
	require.NoError(t, err)
	decoded, err := trie.DecodeProof(encodedNodes)
	require.NoError(t, err)
	require.Equal(t, proof.Proof(), decoded)
}

func TestTransactionProof(t *testing.T) {
	source, block, _ := newTestBlock(t, []int{0, 1, 3, 0, 2})
	builder := New(log.GetDefaultLogger(), source, testChainID, Config{})

	for i, tx := range block.Transactions() {
		proof, err := builder.TransactionProof(context.Background(), block.Hash(), uint64(i))
		require.NoError(t, err)
		require.Equal(t, block.TxHash(), proof.Root)
		expected, err := tx.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, expected, []byte(proof.Value))
		require.NoError(t, proof.Verify())
	}

	_, err := builder.TransactionProof(context.Background(), block.Hash(), 5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = builder.TransactionProof(context.Background(), common.HexToHash("0xdead"), 0)
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestReconstructionMismatch(t *testing.T) {
	source, block, receipts := newTestBlock(t, []int{0, 1, 3})
	receipts[2].CumulativeGasUsed++
	builder := New(log.GetDefaultLogger(), source, testChainID, Config{})

	_, err := builder.ReceiptProof(context.Background(), block.Hash(), 0)
	require.ErrorIs(t, err, ErrReconstructionMismatch)
	var mismatch *ReconstructionMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, KindReceipt, mismatch.Kind)
	require.Equal(t, block.ReceiptHash(), mismatch.Declared)
	require.Equal(t, uint64(1000), mismatch.BlockNumber)
	require.Equal(t, testChainID, mismatch.ChainID)
}

func TestEncodingErrorAbortsProof(t *testing.T) {
	source, block, _ := newTestBlock(t, []int{0, 1})
	builder := New(log.GetDefaultLogger(), source, 1, Config{})

	_, err := builder.TransactionProof(context.Background(), block.Hash(), 0)
	require.ErrorIs(t, err, canonical.ErrChainIDMismatch)
	var encErr *canonical.EncodingError
	require.True(t, errors.As(err, &encErr))
}

func TestReceiptFromAnotherBlock(t *testing.T) {
	source, block, receipts := newTestBlock(t, []int{0, 1})
	receipts[1].BlockHash = common.HexToHash("0xabc")
	builder := New(log.GetDefaultLogger(), source, testChainID, Config{})

	_, err := builder.ReceiptProof(context.Background(), block.Hash(), 0)
	require.ErrorIs(t, err, ErrReceiptNotInBlock)
}

func TestBundleForTransaction(t *testing.T) {
	source, block, receipts := newTestBlock(t, []int{2, 0, 1})
	builder := New(log.GetDefaultLogger(), source, testChainID, Config{})

	bundle, err := builder.BundleForTransaction(context.Background(), receipts[2].TxHash)
	require.NoError(t, err)
	require.Equal(t, block.Hash(), bundle.BlockHash)
	require.Equal(t, block.Hash(), crypto.Keccak256Hash(bundle.Header))
	require.Equal(t, uint64(2), bundle.Transaction.Index)
	require.Equal(t, uint64(2), bundle.Receipt.Index)
	require.NoError(t, bundle.Transaction.Verify())
	require.NoError(t, bundle.Receipt.Verify())

	_, err = builder.BundleForTransaction(context.Background(), common.HexToHash("0x404"))
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestEmptyBlock(t *testing.T) {
	source, block, _ := newTestBlock(t, nil)
	require.Equal(t, trie.EmptyRoot, block.ReceiptHash())
	builder := New(log.GetDefaultLogger(), source, testChainID, Config{})

	_, err := builder.ReceiptProof(context.Background(), block.Hash(), 0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}
