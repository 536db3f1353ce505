package journal

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BatchResult is the outcome of a header batch submission
type BatchResult string

const (
	BatchAccepted  BatchResult = "accepted"
	BatchRejected  BatchResult = "rejected"
	BatchTransport BatchResult = "transport-error"
)

// BatchEntry records a header batch submitted by a relay direction
type BatchEntry struct {
	ID         int64       `meddler:"id,pk"`
	Direction  string      `meddler:"direction"`
	FirstBlock uint64      `meddler:"first_block"`
	LastBlock  uint64      `meddler:"last_block"`
	FirstHash  common.Hash `meddler:"first_hash,hash"`
	LastHash   common.Hash `meddler:"last_hash,hash"`
	Headers    int         `meddler:"headers"`
	Result     BatchResult `meddler:"result"`
	Error      string      `meddler:"error"`
	// NextBlock is the relay cursor once the outcome has been applied
	NextBlock uint64 `meddler:"next_block"`
	CreatedAt int64  `meddler:"created_at"`
}

// ProofEntry records a proof served to a client
type ProofEntry struct {
	Chain       string          `meddler:"chain"`
	Kind        string          `meddler:"kind"`
	BlockHash   common.Hash     `meddler:"block_hash,hash"`
	BlockNumber uint64          `meddler:"block_number"`
	TxIndex     uint64          `meddler:"tx_index"`
	Root        common.Hash     `meddler:"root,hash"`
	Nodes       []hexutil.Bytes `meddler:"nodes,proofnodes"`
	Requests    int             `meddler:"requests"`
	RequestedAt int64           `meddler:"requested_at"`
}
