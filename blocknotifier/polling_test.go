package blocknotifier

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0xPolygon/xrelay/blocknotifier/mocks"
	cfgtypes "github.com/0xPolygon/xrelay/config/types"
	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func header(number uint64) *types.Header {
	return &types.Header{
		Number: new(big.Int).SetUint64(number),
	}
}

func TestBlockNotifierPollingStep(t *testing.T) {
	time0 := time.Unix(1731322117, 0)
	period0 := time.Second * 10
	period0_80percent := time.Second * 8
	time1 := time0.Add(period0)
	hash100 := header(100).Hash()
	forkedHeader := header(100)
	forkedHeader.Extra = []byte("fork")
	tests := []struct {
		name                string
		previousStatus      *blockNotifierPollingInternalStatus
		HeaderByNumberError bool
		header              *types.Header
		forcedTime          time.Time
		expectedStatus      *blockNotifierPollingInternalStatus
		expectedDelay       time.Duration
		expectedEvent       *EventNewBlock
	}{
		{
			name:           "initial->receive block",
			previousStatus: nil,
			header:         header(100),
			forcedTime:     time0,
			expectedStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen: 100,
				lastBlockHash: hash100,
				lastBlockTime: time0,
			},
			expectedDelay: defaultMinBlockInterval,
			expectedEvent: nil,
		},
		{
			name:                "received block->error",
			previousStatus:      nil,
			HeaderByNumberError: true,
			forcedTime:          time0,
			expectedStatus:      &blockNotifierPollingInternalStatus{},
			expectedDelay:       defaultMinBlockInterval * 2,
			expectedEvent:       nil,
		},
		{
			name: "have block period->receive new block",
			previousStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen:     100,
				lastBlockHash:     hash100,
				lastBlockTime:     time0,
				previousBlockTime: &period0,
			},
			header:     header(101),
			forcedTime: time1,
			expectedStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen:     101,
				lastBlockHash:     header(101).Hash(),
				lastBlockTime:     time1,
				previousBlockTime: &period0,
			},
			expectedDelay: period0_80percent,
			expectedEvent: &EventNewBlock{
				BlockNumber: 101,
			},
		},
		{
			name: "same head->no event",
			previousStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen: 100,
				lastBlockHash: hash100,
				lastBlockTime: time0,
			},
			header:     header(100),
			forcedTime: time1,
			expectedStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen: 100,
				lastBlockHash: hash100,
				lastBlockTime: time0,
			},
			expectedDelay: defaultMinBlockInterval,
			expectedEvent: nil,
		},
		{
			name: "head replaced at same height->event",
			previousStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen: 100,
				lastBlockHash: hash100,
				lastBlockTime: time0,
			},
			header:     forkedHeader,
			forcedTime: time1,
			expectedStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen: 100,
				lastBlockHash: forkedHeader.Hash(),
				lastBlockTime: time0,
			},
			expectedDelay: defaultMinBlockInterval,
			expectedEvent: &EventNewBlock{
				BlockNumber: 100,
			},
		},
		{
			name: "missed blocks->restart block period",
			previousStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen:     100,
				lastBlockHash:     hash100,
				lastBlockTime:     time0,
				previousBlockTime: &period0,
			},
			header:     header(105),
			forcedTime: time1,
			expectedStatus: &blockNotifierPollingInternalStatus{
				lastBlockSeen: 105,
				lastBlockHash: header(105).Hash(),
				lastBlockTime: time1,
			},
			expectedDelay: defaultMinBlockInterval,
			expectedEvent: &EventNewBlock{
				BlockNumber: 105,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testData := newBlockNotifierPollingTestData(t, nil)

			timeNowFunc = func() time.Time {
				return tt.forcedTime
			}
			t.Cleanup(func() { timeNowFunc = time.Now })

			if !tt.HeaderByNumberError {
				testData.ethClientMock.EXPECT().HeaderByNumber(mock.Anything, mock.Anything).Return(tt.header, nil).Once()
			} else {
				testData.ethClientMock.EXPECT().HeaderByNumber(mock.Anything, mock.Anything).Return(nil, fmt.Errorf("error")).Once()
			}
			delay, newStatus, event := testData.sut.step(context.TODO(), tt.previousStatus)
			require.Equal(t, tt.expectedDelay, delay, "delay")
			require.Equal(t, tt.expectedStatus, newStatus, "new_status")
			if tt.expectedEvent == nil {
				require.Nil(t, event, "send_event")
			} else {
				require.NotNil(t, event, "send_event")
				require.Equal(t, tt.expectedEvent.BlockNumber, event.BlockNumber, "send_event")
				require.Equal(t, tt.header.Hash(), event.BlockHash, "send_event")
			}
		})
	}
}

func TestDelayNoPreviousBLock(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, nil)
	status := blockNotifierPollingInternalStatus{
		lastBlockSeen: 100,
	}
	delay := testData.sut.nextBlockRequestDelay(&status, nil)
	require.Equal(t, defaultMinBlockInterval, delay)
}

func TestDelayBLock(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, nil)
	pt := time.Second * 10
	status := blockNotifierPollingInternalStatus{
		lastBlockSeen:     100,
		previousBlockTime: &pt,
	}
	delay := testData.sut.nextBlockRequestDelay(&status, nil)
	require.Equal(t, defaultMinBlockInterval, delay)
}

func TestDelayFixedInterval(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, &Config{
		CheckNewBlockInterval: cfgtypes.NewDuration(3 * time.Second),
	})
	require.Equal(t, 3*time.Second, testData.sut.nextBlockRequestDelay(nil, nil))
	require.Equal(t, 3*time.Second, testData.sut.nextBlockRequestDelay(nil, errors.New("error")))
}

func TestDelayIsBounded(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, &Config{
		MinPollInterval: cfgtypes.NewDuration(2 * time.Second),
		MaxPollInterval: cfgtypes.NewDuration(5 * time.Second),
	})
	now := time.Unix(1731322117, 0)
	timeNowFunc = func() time.Time { return now }
	t.Cleanup(func() { timeNowFunc = time.Now })
	long := time.Minute
	status := blockNotifierPollingInternalStatus{
		lastBlockSeen:     100,
		lastBlockTime:     now,
		previousBlockTime: &long,
	}
	require.Equal(t, 5*time.Second, testData.sut.nextBlockRequestDelay(&status, nil))
	short := time.Millisecond
	status.previousBlockTime = &short
	require.Equal(t, 2*time.Second, testData.sut.nextBlockRequestDelay(&status, nil))
}

func TestBlockNotifierPollingString(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, nil)
	require.Contains(t, testData.sut.String(), "lastBlockSeen=none")
	testData.sut.lastStatus = &blockNotifierPollingInternalStatus{
		lastBlockSeen: 100,
		lastBlockHash: common.HexToHash("0x1"),
	}
	require.Contains(t, testData.sut.String(), "lastBlockSeen=100")
}

func TestBlockNotifierPollingStart(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, nil)
	ch := testData.sut.Subscribe("test")
	testData.ethClientMock.EXPECT().HeaderByNumber(mock.Anything, mock.Anything).Return(header(100), nil).Once()
	testData.ethClientMock.EXPECT().HeaderByNumber(mock.Anything, mock.Anything).Return(header(101), nil).Once()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go testData.sut.Start(ctx)
	block := <-ch
	require.Equal(t, uint64(101), block.BlockNumber)
	require.Equal(t, header(101).Hash(), block.BlockHash)
}

func TestBlockNotifierSubscription(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, &Config{UseSubscription: true})
	ch := testData.sut.Subscribe("test")
	testData.ethClientMock.EXPECT().SubscribeNewHead(mock.Anything, mock.Anything).RunAndReturn(
		func(_ context.Context, headers chan<- *types.Header) (ethereum.Subscription, error) {
			return event.NewSubscription(func(quit <-chan struct{}) error {
				for _, h := range []*types.Header{header(100), header(101)} {
					select {
					case headers <- h:
					case <-quit:
						return nil
					}
				}
				<-quit
				return nil
			}), nil
		}).Once()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go testData.sut.Start(ctx)
	select {
	case block := <-ch:
		require.Equal(t, uint64(101), block.BlockNumber)
	case <-time.After(5 * time.Second):
		t.Fatal("no block notified")
	}
}

func TestBlockNotifierSubscriptionFallbackToPolling(t *testing.T) {
	testData := newBlockNotifierPollingTestData(t, &Config{
		UseSubscription:       true,
		CheckNewBlockInterval: cfgtypes.NewDuration(10 * time.Millisecond),
	})
	ch := testData.sut.Subscribe("test")
	testData.ethClientMock.EXPECT().SubscribeNewHead(mock.Anything, mock.Anything).
		Return(nil, errors.New("notifications not supported")).Once()
	var next atomic.Uint64
	next.Store(100)
	testData.ethClientMock.EXPECT().HeaderByNumber(mock.Anything, mock.Anything).RunAndReturn(
		func(context.Context, *big.Int) (*types.Header, error) {
			return header(next.Add(1)), nil
		}).Maybe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go testData.sut.Start(ctx)
	select {
	case block := <-ch:
		require.Greater(t, block.BlockNumber, uint64(101))
	case <-time.After(5 * time.Second):
		t.Fatal("no block notified")
	}
}

type blockNotifierPollingTestData struct {
	sut           *BlockNotifierPolling
	ethClientMock *mocks.EthClienter
}

func newBlockNotifierPollingTestData(t *testing.T, config *Config) blockNotifierPollingTestData {
	t.Helper()
	if config == nil {
		config = &Config{}
	}
	ethClientMock := mocks.NewEthClienter(t)
	logger := log.WithFields("test", "BlockNotifierPolling")
	sut := New(ethClientMock, *config, logger, nil)
	return blockNotifierPollingTestData{
		sut:           sut,
		ethClientMock: ethClientMock,
	}
}
