package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	xcommon "github.com/0xPolygon/xrelay/common"
	"github.com/0xPolygon/xrelay/db"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/proofbuilder"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// BRIDGE is the namespace of the bridge service
	BRIDGE    = "bridge"
	meterName = "github.com/0xPolygon/xrelay/rpc"

	// MaxLastBatches caps the batches returned by bridge_lastBatches
	MaxLastBatches = 100
)

// BridgeEndpoints contains implementations for the "bridge" RPC endpoints
type BridgeEndpoints struct {
	logger      *log.Logger
	meter       metric.Meter
	readTimeout time.Duration
	chains      map[string]ChainBackend
	relays      map[string]RelayStater
	journal     Journaler
}

// NewBridgeEndpoints returns BridgeEndpoints. chains is keyed by chain name and relays by
// direction, jr is optional.
func NewBridgeEndpoints(
	logger *log.Logger,
	readTimeout time.Duration,
	chains map[string]ChainBackend,
	relays map[string]RelayStater,
	jr Journaler,
) *BridgeEndpoints {
	return &BridgeEndpoints{
		logger:      logger,
		meter:       otel.Meter(meterName),
		readTimeout: readTimeout,
		chains:      chains,
		relays:      relays,
		journal:     jr,
	}
}

// TransactionProof returns the inclusion proof of the transaction at index of the block blockHash
func (b *BridgeEndpoints) TransactionProof(chain string, blockHash common.Hash, index uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "transaction_proof")

	name, backend, rerr := b.chain(chain)
	if rerr != nil {
		return nil, rerr
	}
	proof, err := backend.Proofs.TransactionProof(ctx, blockHash, index)
	if err != nil {
		return nil, proofError(err, "failed to build transaction proof for block %s index %d", blockHash, index)
	}
	b.journalProof(ctx, name, proof)
	return proof, nil
}

// ReceiptProof returns the inclusion proof of the receipt at index of the block blockHash
func (b *BridgeEndpoints) ReceiptProof(chain string, blockHash common.Hash, index uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "receipt_proof")

	name, backend, rerr := b.chain(chain)
	if rerr != nil {
		return nil, rerr
	}
	proof, err := backend.Proofs.ReceiptProof(ctx, blockHash, index)
	if err != nil {
		return nil, proofError(err, "failed to build receipt proof for block %s index %d", blockHash, index)
	}
	b.journalProof(ctx, name, proof)
	return proof, nil
}

// ProofBundle returns the header, transaction proof and receipt proof of a transaction
func (b *BridgeEndpoints) ProofBundle(chain string, txHash common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "proof_bundle")

	name, backend, rerr := b.chain(chain)
	if rerr != nil {
		return nil, rerr
	}
	bundle, err := backend.Proofs.BundleForTransaction(ctx, txHash)
	if err != nil {
		return nil, proofError(err, "failed to build proof bundle for tx %s", txHash)
	}
	b.journalProof(ctx, name, bundle.Transaction)
	b.journalProof(ctx, name, bundle.Receipt)
	return bundle, nil
}

// ConfirmationStatus returns the local and light client confirmation status of a transaction
func (b *BridgeEndpoints) ConfirmationStatus(chain string, txHash common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "confirmation_status")

	_, backend, rerr := b.chain(chain)
	if rerr != nil {
		return nil, rerr
	}
	if backend.Confirmations == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("confirmations not tracked for chain %s", chain))
	}
	report, err := backend.Confirmations.Report(ctx, txHash)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get confirmation status of tx %s, error: %s", txHash, err))
	}
	return report, nil
}

// RelayState returns the state of the relay of a direction, "A->B" or "B->A"
func (b *BridgeEndpoints) RelayState(direction string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "relay_state")

	d, err := xcommon.ParseDirection(direction)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, err.Error())
	}
	r, ok := b.relays[d]
	if !ok {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("relay %s is not running", d))
	}
	return r.State(), nil
}

// LastBatches returns the last journaled batches of the relay of a direction, newest first.
// A limit of 0 or above MaxLastBatches returns MaxLastBatches batches.
func (b *BridgeEndpoints) LastBatches(direction string, limit uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "last_batches")

	if b.journal == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, "journal is not enabled")
	}
	d, err := xcommon.ParseDirection(direction)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, err.Error())
	}
	if limit == 0 || limit > MaxLastBatches {
		limit = MaxLastBatches
	}
	batches, err := b.journal.LastBatches(ctx, d, int(limit))
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get last batches of %s, error: %s", d, err))
	}
	if batches == nil {
		batches = []journal.BatchEntry{}
	}
	return batches, nil
}

// ServedProof returns a proof already served for chain as stored in the journal
func (b *BridgeEndpoints) ServedProof(
	chain, kind string, blockHash common.Hash, index uint64,
) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "served_proof")

	if b.journal == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, "journal is not enabled")
	}
	name, err := xcommon.ParseChain(chain)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, err.Error())
	}
	entry, err := b.journal.GetProofRequest(ctx, name, kind, blockHash, index)
	if errors.Is(err, db.ErrNotFound) {
		return nil, rpc.NewRPCError(rpc.NotFoundErrorCode,
			fmt.Sprintf("no %s proof served for block %s index %d", kind, blockHash, index))
	}
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get %s proof of block %s index %d, error: %s", kind, blockHash, index, err))
	}
	return entry, nil
}

func (b *BridgeEndpoints) count(ctx context.Context, name string) {
	c, merr := b.meter.Int64Counter(name)
	if merr != nil {
		b.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}

func (b *BridgeEndpoints) chain(chain string) (string, ChainBackend, rpc.Error) {
	name, err := xcommon.ParseChain(chain)
	if err != nil {
		return "", ChainBackend{}, rpc.NewRPCError(rpc.DefaultErrorCode, err.Error())
	}
	backend, ok := b.chains[name]
	if !ok || backend.Proofs == nil {
		return "", ChainBackend{}, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("chain %s is not served", name))
	}
	return name, backend, nil
}

func (b *BridgeEndpoints) journalProof(ctx context.Context, chain string, proof *proofbuilder.InclusionProof) {
	if b.journal == nil || proof == nil {
		return
	}
	err := b.journal.AddProofRequest(ctx, journal.ProofEntry{
		Chain:       chain,
		Kind:        string(proof.Kind),
		BlockHash:   proof.BlockHash,
		BlockNumber: proof.BlockNumber,
		TxIndex:     proof.Index,
		Root:        proof.Root,
		Nodes:       proof.Nodes,
	})
	if err != nil {
		b.logger.Warnf("error journaling %s proof of block %s: %v", proof.Kind, proof.BlockHash, err)
	}
}

func proofError(err error, format string, args ...interface{}) rpc.Error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, ethereum.NotFound) {
		return rpc.NewRPCError(rpc.NotFoundErrorCode, fmt.Sprintf("%s, not found: %s", msg, err))
	}
	return rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("%s, error: %s", msg, err))
}
