package rpc

import (
	"context"

	"github.com/0xPolygon/xrelay/confirmation"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/proofbuilder"
	"github.com/0xPolygon/xrelay/relay"
	"github.com/ethereum/go-ethereum/common"
)

type ProofBuilderer interface {
	TransactionProof(ctx context.Context, blockHash common.Hash, index uint64) (*proofbuilder.InclusionProof, error)
	ReceiptProof(ctx context.Context, blockHash common.Hash, index uint64) (*proofbuilder.InclusionProof, error)
	BundleForTransaction(ctx context.Context, txHash common.Hash) (*proofbuilder.ProofBundle, error)
}

type ConfirmationTracker interface {
	Report(ctx context.Context, txHash common.Hash) (confirmation.Report, error)
}

type RelayStater interface {
	State() relay.RelayState
}

// Journaler records the proofs served and reads back the relay and proof history
type Journaler interface {
	AddProofRequest(ctx context.Context, entry journal.ProofEntry) error
	GetProofRequest(ctx context.Context, chain, kind string, blockHash common.Hash, index uint64) (journal.ProofEntry, error)
	LastBatches(ctx context.Context, direction string, limit int) ([]journal.BatchEntry, error)
}

// ChainBackend groups the services bound to one chain of the bridge
type ChainBackend struct {
	Proofs        ProofBuilderer
	Confirmations ConfirmationTracker
}
