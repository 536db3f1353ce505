package lightclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/0xPolygon/xrelay/log"
	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

const defaultWaitPeriodMonitorTx = time.Second

// EthTxManager sends and monitors the submissions of the light client
type EthTxManager interface {
	Remove(ctx context.Context, id common.Hash) error
	Result(ctx context.Context, id common.Hash) (ethtxtypes.MonitoredTxResult, error)
	Add(ctx context.Context,
		to *common.Address,
		value *big.Int,
		data []byte,
		gasOffset uint64,
		sidecar *types.BlobTxSidecar,
	) (common.Hash, error)
}

// EVMLightClient talks to a light client contract deployed on an EVM chain. Reads are eth_calls,
// submissions go through the eth tx manager of the destination chain.
type EVMLightClient struct {
	logger              *log.Logger
	abi                 abi.ABI
	contract            *bind.BoundContract
	addr                common.Address
	ethTxMan            EthTxManager
	gasOffset           uint64
	waitPeriodMonitorTx time.Duration
}

// NewEVMLightClient binds the light client contract at cfg's address. ethTxMan may be nil
// for a read-only client.
func NewEVMLightClient(
	logger *log.Logger,
	client bind.ContractCaller,
	ethTxMan EthTxManager,
	cfg Config,
) (*EVMLightClient, error) {
	parsed, err := abi.JSON(strings.NewReader(lightClientABI))
	if err != nil {
		return nil, fmt.Errorf("error parsing light client abi: %w", err)
	}
	waitPeriod := cfg.WaitPeriodMonitorTx.Duration
	if waitPeriod <= 0 {
		waitPeriod = defaultWaitPeriodMonitorTx
	}

	return &EVMLightClient{
		logger:              logger,
		abi:                 parsed,
		contract:            bind.NewBoundContract(cfg.Addr, parsed, client, nil, nil),
		addr:                cfg.Addr,
		ethTxMan:            ethTxMan,
		gasOffset:           cfg.GasOffset,
		waitPeriodMonitorTx: waitPeriod,
	}, nil
}

// SubmitHeaderBatch sends the encoded headers in a single transaction and blocks until it's mined.
// A reverted or dropped transaction is reported as ErrSubmissionRejected.
func (c *EVMLightClient) SubmitHeaderBatch(ctx context.Context, headers [][]byte) error {
	if c.ethTxMan == nil {
		return ErrReadOnly
	}
	payload, err := rlp.EncodeToBytes(headers)
	if err != nil {
		return fmt.Errorf("error encoding header batch: %w", err)
	}
	data, err := c.abi.Pack(methodSubmitBlockBatch, payload)
	if err != nil {
		return err
	}
	id, err := c.ethTxMan.Add(ctx, &c.addr, big.NewInt(0), data, c.gasOffset, nil)
	if err != nil {
		return fmt.Errorf("error adding header batch tx: %w", err)
	}
	c.logger.Debugf("header batch of %d headers sent, monitored tx %s", len(headers), id.Hex())

	return c.waitUntilMined(ctx, id)
}

func (c *EVMLightClient) waitUntilMined(ctx context.Context, id common.Hash) error {
	ticker := time.NewTicker(c.waitPeriodMonitorTx)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		c.logger.Debugf("waiting for tx %s to be mined", id.Hex())
		res, err := c.ethTxMan.Result(ctx, id)
		if err != nil {
			c.logger.Error("error calling ethTxMan.Result: ", err)
			continue
		}
		switch res.Status {
		case ethtxtypes.MonitoredTxStatusCreated,
			ethtxtypes.MonitoredTxStatusSent:
			continue
		case ethtxtypes.MonitoredTxStatusFailed:
			c.removeMonitoredTx(ctx, id)
			return fmt.Errorf("%w: tx %s failed", ErrSubmissionRejected, id)
		case ethtxtypes.MonitoredTxStatusMined,
			ethtxtypes.MonitoredTxStatusSafe,
			ethtxtypes.MonitoredTxStatusFinalized:
			c.removeMonitoredTx(ctx, id)
			return nil
		default:
			c.logger.Error("unexpected tx status: ", res.Status)
		}
	}
}

func (c *EVMLightClient) removeMonitoredTx(ctx context.Context, id common.Hash) {
	if err := c.ethTxMan.Remove(ctx, id); err != nil {
		c.logger.Warnf("error removing monitored tx %s: %v", id.Hex(), err)
	}
}

// IsHeaderKnown returns true if the light client stores the header blockHash
func (c *EVMLightClient) IsHeaderKnown(ctx context.Context, blockHash common.Hash) (bool, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodIsHeaderStored, blockHash); err != nil {
		return false, fmt.Errorf("error calling %s: %w", methodIsHeaderStored, err)
	}
	stored, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected %s output %T", methodIsHeaderStored, out[0])
	}

	return stored, nil
}

// GetHeaderRecord returns the record of blockHash or ErrHeaderNotFound
func (c *EVMLightClient) GetHeaderRecord(ctx context.Context, blockHash common.Hash) (HeaderRecord, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodGetHeader, blockHash); err != nil {
		return HeaderRecord{}, fmt.Errorf("error calling %s: %w", methodGetHeader, err)
	}
	const outputs = 4
	if len(out) != outputs {
		return HeaderRecord{}, fmt.Errorf("unexpected %s output length %d", methodGetHeader, len(out))
	}
	record := HeaderRecord{
		Hash:            *abi.ConvertType(out[0], new([32]byte)).(*[32]byte),
		ParentHash:      *abi.ConvertType(out[1], new([32]byte)).(*[32]byte),
		Number:          *abi.ConvertType(out[2], new(uint64)).(*uint64),
		TotalDifficulty: abi.ConvertType(out[3], new(big.Int)).(*big.Int),
	}
	if record.Number == 0 && record.Hash == (common.Hash{}) {
		return HeaderRecord{}, fmt.Errorf("%w: %s", ErrHeaderNotFound, blockHash)
	}

	return record, nil
}

// GetChainEndpoint returns the hash of the head of the longest chain stored in the light client
func (c *EVMLightClient) GetChainEndpoint(ctx context.Context) (common.Hash, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodGetLongestChainEndpoint); err != nil {
		return common.Hash{}, fmt.Errorf("error calling %s: %w", methodGetLongestChainEndpoint, err)
	}

	return *abi.ConvertType(out[0], new([32]byte)).(*[32]byte), nil
}

// VerifyInclusion asks the contract to check a proof, returning the proven value
func (c *EVMLightClient) VerifyInclusion(
	ctx context.Context, root common.Hash, key, encodedProof []byte,
) ([]byte, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodVerifyInclusion, root, key, encodedProof)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", methodVerifyInclusion, err)
	}
	value, ok := out[0].([]byte)
	if !ok {
		return nil, errors.New("unexpected verifyInclusion output")
	}

	return value, nil
}
