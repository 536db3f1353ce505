package lightclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	cfgTypes "github.com/0xPolygon/xrelay/config/types"
	"github.com/0xPolygon/xrelay/lightclient/mocks"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/trie"
	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeContract answers eth_calls the way the deployed light client does
type fakeContract struct {
	abi      abi.ABI
	headers  map[common.Hash]HeaderRecord
	endpoint common.Hash
}

func newFakeContract(t *testing.T) *fakeContract {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(lightClientABI))
	require.NoError(t, err)

	return &fakeContract{abi: parsed, headers: make(map[common.Hash]HeaderRecord)}
}

func (f *fakeContract) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

func (f *fakeContract) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case methodIsHeaderStored:
		_, ok := f.headers[args[0].([32]byte)]
		return method.Outputs.Pack(ok)
	case methodGetHeader:
		r, ok := f.headers[args[0].([32]byte)]
		if !ok {
			return method.Outputs.Pack([32]byte{}, [32]byte{}, uint64(0), big.NewInt(0))
		}
		return method.Outputs.Pack([32]byte(r.Hash), [32]byte(r.ParentHash), r.Number, r.TotalDifficulty)
	case methodGetLongestChainEndpoint:
		return method.Outputs.Pack([32]byte(f.endpoint))
	case methodVerifyInclusion:
		proof, err := trie.DecodeProof(args[2].([]byte))
		if err != nil {
			return nil, err
		}
		value, err := trie.VerifyProof(args[0].([32]byte), args[1].([]byte), proof)
		if err != nil {
			return nil, errors.New("execution reverted")
		}
		return method.Outputs.Pack(value)
	default:
		return nil, fmt.Errorf("unexpected method %s", method.Name)
	}
}

func newTestLightClient(t *testing.T, contract *fakeContract, ethTxMan EthTxManager) *EVMLightClient {
	t.Helper()
	lc, err := NewEVMLightClient(log.WithFields("test", "lightclient"), contract, ethTxMan, Config{
		Addr:                common.HexToAddress("0x123"),
		GasOffset:           1000,
		WaitPeriodMonitorTx: cfgTypes.NewDuration(time.Millisecond),
	})
	require.NoError(t, err)

	return lc
}

func TestReads(t *testing.T) {
	ctx := context.Background()
	contract := newFakeContract(t)
	genesis := HeaderRecord{Hash: common.HexToHash("0xa0"), Number: 100, TotalDifficulty: big.NewInt(1000)}
	child := HeaderRecord{
		Hash: common.HexToHash("0xa1"), ParentHash: genesis.Hash, Number: 101, TotalDifficulty: big.NewInt(1001),
	}
	contract.headers[genesis.Hash] = genesis
	contract.headers[child.Hash] = child
	contract.endpoint = child.Hash
	lc := newTestLightClient(t, contract, nil)

	known, err := lc.IsHeaderKnown(ctx, child.Hash)
	require.NoError(t, err)
	require.True(t, known)
	known, err = lc.IsHeaderKnown(ctx, common.HexToHash("0xdead"))
	require.NoError(t, err)
	require.False(t, known)

	record, err := lc.GetHeaderRecord(ctx, child.Hash)
	require.NoError(t, err)
	require.Equal(t, child, record)
	_, err = lc.GetHeaderRecord(ctx, common.HexToHash("0xdead"))
	require.ErrorIs(t, err, ErrHeaderNotFound)

	endpoint, err := lc.GetChainEndpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, child.Hash, endpoint)
}

func TestVerifyInclusion(t *testing.T) {
	tr := trie.New()
	for i := byte(0); i < 20; i++ {
		require.NoError(t, tr.Insert([]byte{i}, []byte{0xca, 0xfe, i}))
	}
	proof, err := tr.Proof([]byte{7})
	require.NoError(t, err)
	encoded, err := proof.Encode()
	require.NoError(t, err)
	lc := newTestLightClient(t, newFakeContract(t), nil)

	value, err := lc.VerifyInclusion(context.Background(), tr.Root(), []byte{7}, encoded)
	require.NoError(t, err)
	require.Equal(t, []byte{0xca, 0xfe, 7}, value)

	_, err = lc.VerifyInclusion(context.Background(), common.HexToHash("0x1"), []byte{7}, encoded)
	require.Error(t, err)
}

func TestSubmitHeaderBatch(t *testing.T) {
	txID := common.HexToHash("0x789")
	headers := [][]byte{{0xc1, 0x01}, {0xc1, 0x02}}

	tests := []struct {
		name            string
		addReturnErr    error
		results         []ethtxtypes.MonitoredTxStatus
		resultReturnErr error
		expectRemove    bool
		expectedErr     error
		expectedErrMsg  string
	}{
		{
			name:         "batch mined",
			results:      []ethtxtypes.MonitoredTxStatus{ethtxtypes.MonitoredTxStatusMined},
			expectRemove: true,
		},
		{
			name: "batch mined after being sent",
			results: []ethtxtypes.MonitoredTxStatus{
				ethtxtypes.MonitoredTxStatusCreated,
				ethtxtypes.MonitoredTxStatusSent,
				ethtxtypes.MonitoredTxStatusFinalized,
			},
			expectRemove: true,
		},
		{
			name:         "batch rejected",
			results:      []ethtxtypes.MonitoredTxStatus{ethtxtypes.MonitoredTxStatusFailed},
			expectRemove: true,
			expectedErr:  ErrSubmissionRejected,
		},
		{
			name:           "add fails",
			addReturnErr:   errors.New("add error"),
			expectedErrMsg: "add error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ethTxMan := mocks.NewEthTxManager(t)
			lc := newTestLightClient(t, newFakeContract(t), ethTxMan)
			addr := common.HexToAddress("0x123")
			ethTxMan.EXPECT().Add(mock.Anything, &addr, big.NewInt(0), mock.Anything, uint64(1000), (*types.BlobTxSidecar)(nil)).
				Run(func(_ context.Context, _ *common.Address, _ *big.Int, data []byte, _ uint64, _ *types.BlobTxSidecar) {
					args, err := lc.abi.Methods[methodSubmitBlockBatch].Inputs.Unpack(data[4:])
					require.NoError(t, err)
					var decoded [][]byte
					require.NoError(t, rlp.DecodeBytes(args[0].([]byte), &decoded))
					require.Equal(t, headers, decoded)
				}).
				Return(txID, tt.addReturnErr).Once()
			for _, status := range tt.results {
				ethTxMan.EXPECT().Result(mock.Anything, txID).
					Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: status}, nil).Once()
			}
			if tt.expectRemove {
				ethTxMan.EXPECT().Remove(mock.Anything, txID).Return(nil).Once()
			}

			err := lc.SubmitHeaderBatch(context.Background(), headers)
			switch {
			case tt.expectedErr != nil:
				require.ErrorIs(t, err, tt.expectedErr)
			case tt.expectedErrMsg != "":
				require.ErrorContains(t, err, tt.expectedErrMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestSubmitHeaderBatchResultErrorIsRetried(t *testing.T) {
	txID := common.HexToHash("0x789")
	ethTxMan := mocks.NewEthTxManager(t)
	lc := newTestLightClient(t, newFakeContract(t), ethTxMan)
	ethTxMan.EXPECT().Add(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(txID, nil).Once()
	ethTxMan.EXPECT().Result(mock.Anything, txID).Return(ethtxtypes.MonitoredTxResult{}, errors.New("result error")).Once()
	ethTxMan.EXPECT().Result(mock.Anything, txID).
		Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusSafe}, nil).Once()
	ethTxMan.EXPECT().Remove(mock.Anything, txID).Return(errors.New("remove error")).Once()

	require.NoError(t, lc.SubmitHeaderBatch(context.Background(), [][]byte{{0xc0}}))
}

func TestSubmitHeaderBatchHonoursContext(t *testing.T) {
	txID := common.HexToHash("0x789")
	ethTxMan := mocks.NewEthTxManager(t)
	lc := newTestLightClient(t, newFakeContract(t), ethTxMan)
	ctx, cancel := context.WithCancel(context.Background())
	ethTxMan.EXPECT().Add(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(txID, nil).Once()
	ethTxMan.EXPECT().Result(mock.Anything, txID).
		RunAndReturn(func(context.Context, common.Hash) (ethtxtypes.MonitoredTxResult, error) {
			cancel()
			return ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusSent}, nil
		}).Once()

	require.ErrorIs(t, lc.SubmitHeaderBatch(ctx, [][]byte{{0xc0}}), context.Canceled)
}

func TestSubmitHeaderBatchReadOnly(t *testing.T) {
	lc := newTestLightClient(t, newFakeContract(t), nil)
	require.ErrorIs(t, lc.SubmitHeaderBatch(context.Background(), [][]byte{{0xc0}}), ErrReadOnly)
}
