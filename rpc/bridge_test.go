package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/xrelay/confirmation"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/proofbuilder"
	"github.com/0xPolygon/xrelay/relay"
	"github.com/0xPolygon/xrelay/rpc/mocks"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testBlockHash = common.HexToHash("0xb10c")
	testTxHash    = common.HexToHash("0x7e57")
)

type fakeTracker struct {
	report confirmation.Report
	err    error
}

func (f *fakeTracker) Report(_ context.Context, txHash common.Hash) (confirmation.Report, error) {
	f.report.TxHash = txHash
	return f.report, f.err
}

type fakeRelay struct {
	state relay.RelayState
}

func (f *fakeRelay) State() relay.RelayState {
	return f.state
}

type bridgeTestData struct {
	proofsA *mocks.ProofBuilderer
	tracker *fakeTracker
	journal *journal.Journal
	sut     *BridgeEndpoints
}

func newBridgeTestData(t *testing.T) *bridgeTestData {
	t.Helper()
	logger := log.WithFields("module", "rpc")
	jr, err := journal.New(logger, path.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, jr.Close()) })

	proofsA := mocks.NewProofBuilderer(t)
	tracker := &fakeTracker{}
	sut := NewBridgeEndpoints(logger, time.Second,
		map[string]ChainBackend{"A": {Proofs: proofsA, Confirmations: tracker}},
		map[string]RelayStater{"A->B": &fakeRelay{state: relay.RelayState{
			Direction:       "A->B",
			Phase:           relay.PhaseIdle,
			NextBlockNumber: 42,
			Synced:          true,
		}}},
		jr,
	)
	return &bridgeTestData{proofsA: proofsA, tracker: tracker, journal: jr, sut: sut}
}

func testProof(kind proofbuilder.Kind, index uint64) *proofbuilder.InclusionProof {
	return &proofbuilder.InclusionProof{
		Kind:        kind,
		BlockHash:   testBlockHash,
		BlockNumber: 10,
		Root:        common.HexToHash("0x1234"),
		Index:       index,
		Key:         hexutil.Bytes{0x01},
		Value:       hexutil.Bytes{0xc0},
		Nodes:       []hexutil.Bytes{{0xc1, 0x80}, {0xc2, 0x80, 0x80}},
	}
}

func TestTransactionProof(t *testing.T) {
	data := newBridgeTestData(t)
	ctx := context.Background()
	proof := testProof(proofbuilder.KindTransaction, 1)
	data.proofsA.EXPECT().TransactionProof(mock.Anything, testBlockHash, uint64(1)).Return(proof, nil).Twice()

	res, rerr := data.sut.TransactionProof("a", testBlockHash, 1)
	require.Nil(t, rerr)
	require.Equal(t, proof, res)
	_, rerr = data.sut.TransactionProof("A", testBlockHash, 1)
	require.Nil(t, rerr)

	entry, err := data.journal.GetProofRequest(ctx, "A", string(proofbuilder.KindTransaction), testBlockHash, 1)
	require.NoError(t, err)
	require.Equal(t, 2, entry.Requests)
	require.Equal(t, proof.Nodes, entry.Nodes)
	require.Equal(t, proof.Root, entry.Root)
}

func TestProofErrors(t *testing.T) {
	data := newBridgeTestData(t)

	_, rerr := data.sut.ReceiptProof("C", testBlockHash, 0)
	require.NotNil(t, rerr)
	require.Equal(t, rpc.DefaultErrorCode, rerr.ErrorCode())
	require.Contains(t, rerr.Error(), "unknown chain")

	_, rerr = data.sut.ReceiptProof("B", testBlockHash, 0)
	require.NotNil(t, rerr)
	require.Contains(t, rerr.Error(), "chain B is not served")

	data.proofsA.EXPECT().ReceiptProof(mock.Anything, testBlockHash, uint64(0)).
		Return(nil, fmt.Errorf("error getting block: %w", ethereum.NotFound)).Once()
	_, rerr = data.sut.ReceiptProof("A", testBlockHash, 0)
	require.NotNil(t, rerr)
	require.Equal(t, rpc.NotFoundErrorCode, rerr.ErrorCode())

	data.proofsA.EXPECT().ReceiptProof(mock.Anything, testBlockHash, uint64(9)).
		Return(nil, proofbuilder.ErrIndexOutOfRange).Once()
	_, rerr = data.sut.ReceiptProof("A", testBlockHash, 9)
	require.NotNil(t, rerr)
	require.Equal(t, rpc.DefaultErrorCode, rerr.ErrorCode())
	require.Contains(t, rerr.Error(), "index out of range")
}

func TestProofBundle(t *testing.T) {
	data := newBridgeTestData(t)
	ctx := context.Background()
	bundle := &proofbuilder.ProofBundle{
		TxHash:      testTxHash,
		BlockHash:   testBlockHash,
		BlockNumber: 10,
		Header:      hexutil.Bytes{0xf9},
		Transaction: testProof(proofbuilder.KindTransaction, 3),
		Receipt:     testProof(proofbuilder.KindReceipt, 3),
	}
	data.proofsA.EXPECT().BundleForTransaction(mock.Anything, testTxHash).Return(bundle, nil).Once()

	res, rerr := data.sut.ProofBundle("A", testTxHash)
	require.Nil(t, rerr)
	require.Equal(t, bundle, res)
	for _, kind := range []proofbuilder.Kind{proofbuilder.KindTransaction, proofbuilder.KindReceipt} {
		entry, err := data.journal.GetProofRequest(ctx, "A", string(kind), testBlockHash, 3)
		require.NoError(t, err)
		require.Equal(t, 1, entry.Requests)
	}
}

func TestConfirmationStatus(t *testing.T) {
	data := newBridgeTestData(t)
	data.tracker.report = confirmation.Report{
		BlockHash:   testBlockHash,
		BlockNumber: 10,
		Local:       confirmation.StatusConfirmed,
		LightClient: confirmation.StatusOrphaned,
	}

	res, rerr := data.sut.ConfirmationStatus("A", testTxHash)
	require.Nil(t, rerr)
	report, ok := res.(confirmation.Report)
	require.True(t, ok)
	require.Equal(t, testTxHash, report.TxHash)
	require.Equal(t, confirmation.StatusOrphaned, report.LightClient)

	data.tracker.err = errors.New("node down")
	_, rerr = data.sut.ConfirmationStatus("A", testTxHash)
	require.NotNil(t, rerr)
	require.Contains(t, rerr.Error(), "node down")
}

func TestRelayState(t *testing.T) {
	data := newBridgeTestData(t)

	for _, direction := range []string{"A->B", "relay-ab", "ab"} {
		res, rerr := data.sut.RelayState(direction)
		require.Nil(t, rerr)
		state, ok := res.(relay.RelayState)
		require.True(t, ok)
		require.Equal(t, uint64(42), state.NextBlockNumber)
	}

	_, rerr := data.sut.RelayState("B->A")
	require.NotNil(t, rerr)
	require.Contains(t, rerr.Error(), "not running")

	_, rerr = data.sut.RelayState("sideways")
	require.NotNil(t, rerr)
}

func TestLastBatches(t *testing.T) {
	data := newBridgeTestData(t)
	ctx := context.Background()
	for first := uint64(1); first <= 7; first += 3 {
		require.NoError(t, data.journal.AddBatch(ctx, journal.BatchEntry{
			Direction:  "A->B",
			FirstBlock: first,
			LastBlock:  first + 2,
			Headers:    3,
			Result:     journal.BatchAccepted,
			NextBlock:  first + 3,
		}))
	}

	res, rerr := data.sut.LastBatches("relay-ab", 2)
	require.Nil(t, rerr)
	batches, ok := res.([]journal.BatchEntry)
	require.True(t, ok)
	require.Len(t, batches, 2)
	require.Equal(t, uint64(7), batches[0].FirstBlock)
	require.Equal(t, uint64(4), batches[1].FirstBlock)

	res, rerr = data.sut.LastBatches("A->B", 0)
	require.Nil(t, rerr)
	require.Len(t, res, 3)

	res, rerr = data.sut.LastBatches("B->A", 10)
	require.Nil(t, rerr)
	require.Empty(t, res)

	_, rerr = data.sut.LastBatches("sideways", 10)
	require.NotNil(t, rerr)
}

func TestServedProof(t *testing.T) {
	data := newBridgeTestData(t)
	_, rerr := data.sut.ServedProof("A", string(proofbuilder.KindReceipt), testBlockHash, 4)
	require.NotNil(t, rerr)
	require.Equal(t, rpc.NotFoundErrorCode, rerr.ErrorCode())

	proof := testProof(proofbuilder.KindReceipt, 4)
	data.proofsA.EXPECT().ReceiptProof(mock.Anything, testBlockHash, uint64(4)).Return(proof, nil).Once()
	_, rerr = data.sut.ReceiptProof("A", testBlockHash, 4)
	require.Nil(t, rerr)

	res, rerr := data.sut.ServedProof("a", string(proofbuilder.KindReceipt), testBlockHash, 4)
	require.Nil(t, rerr)
	entry, ok := res.(journal.ProofEntry)
	require.True(t, ok)
	require.Equal(t, proof.Root, entry.Root)
	require.Equal(t, proof.Nodes, entry.Nodes)
	require.Equal(t, 1, entry.Requests)

	_, rerr = data.sut.ServedProof("C", string(proofbuilder.KindReceipt), testBlockHash, 4)
	require.NotNil(t, rerr)
	require.Equal(t, rpc.DefaultErrorCode, rerr.ErrorCode())
}

func TestClient(t *testing.T) {
	defer func(orig func(string, string, ...interface{}) (rpc.Response, error)) { jSONRPCCall = orig }(jSONRPCCall)
	sut := NewClient("url")

	state := relay.RelayState{Direction: "B->A", Phase: relay.PhaseSubmitting, NextBlockNumber: 7}
	stateJSON, err := json.Marshal(state)
	require.NoError(t, err)
	jSONRPCCall = func(_, method string, params ...interface{}) (rpc.Response, error) {
		require.Equal(t, "bridge_relayState", method)
		require.Equal(t, []interface{}{"B->A"}, params)
		return rpc.Response{Result: stateJSON}, nil
	}
	gotState, err := sut.RelayState("B->A")
	require.NoError(t, err)
	require.Equal(t, state, *gotState)

	report := confirmation.Report{TxHash: testTxHash, Local: confirmation.StatusConfirmed}
	reportJSON, err := json.Marshal(report)
	require.NoError(t, err)
	jSONRPCCall = func(_, method string, params ...interface{}) (rpc.Response, error) {
		require.Equal(t, "bridge_confirmationStatus", method)
		return rpc.Response{Result: reportJSON}, nil
	}
	gotReport, err := sut.ConfirmationStatus("A", testTxHash)
	require.NoError(t, err)
	require.Equal(t, report, *gotReport)

	proof := testProof(proofbuilder.KindReceipt, 2)
	proofJSON, err := json.Marshal(proof)
	require.NoError(t, err)
	jSONRPCCall = func(_, method string, params ...interface{}) (rpc.Response, error) {
		require.Equal(t, "bridge_receiptProof", method)
		require.Equal(t, []interface{}{"A", testBlockHash, uint64(2)}, params)
		return rpc.Response{Result: proofJSON}, nil
	}
	gotProof, err := sut.ReceiptProof("A", testBlockHash, 2)
	require.NoError(t, err)
	require.Equal(t, proof, gotProof)

	batches := []journal.BatchEntry{{Direction: "A->B", FirstBlock: 5, LastBlock: 9, Result: journal.BatchRejected}}
	batchesJSON, err := json.Marshal(batches)
	require.NoError(t, err)
	jSONRPCCall = func(_, method string, params ...interface{}) (rpc.Response, error) {
		require.Equal(t, "bridge_lastBatches", method)
		require.Equal(t, []interface{}{"A->B", 5}, params)
		return rpc.Response{Result: batchesJSON}, nil
	}
	gotBatches, err := sut.LastBatches("A->B", 5)
	require.NoError(t, err)
	require.Equal(t, batches, gotBatches)

	jSONRPCCall = func(_, _ string, _ ...interface{}) (rpc.Response, error) {
		return rpc.Response{Error: &rpc.ErrorObject{Code: rpc.NotFoundErrorCode, Message: "not found"}}, nil
	}
	_, err = sut.ProofBundle("A", testTxHash)
	require.ErrorContains(t, err, "bridge_proofBundle")

	jSONRPCCall = func(_, _ string, _ ...interface{}) (rpc.Response, error) {
		return rpc.Response{}, errors.New("connection refused")
	}
	_, err = sut.TransactionProof("A", testBlockHash, 0)
	require.ErrorContains(t, err, "connection refused")
}
