package proofbuilder

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/xrelay/trie"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind is the kind of object proven by an InclusionProof
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindReceipt     Kind = "receipt"
	KindHeader      Kind = "header"
)

// Config is the configuration of the proof builder
type Config struct {
	// FetchConcurrency is the max number of receipts requested to the node at the same time
	FetchConcurrency int `mapstructure:"FetchConcurrency"`
}

// InclusionProof proves that Value is stored under Key in the trie committed to by Root,
// which is the transactions or receipts root of the block BlockHash.
type InclusionProof struct {
	Kind        Kind            `json:"kind"`
	ChainID     uint64          `json:"chainId"`
	BlockHash   common.Hash     `json:"blockHash"`
	BlockNumber uint64          `json:"blockNumber"`
	Root        common.Hash     `json:"root"`
	Index       uint64          `json:"index"`
	Key         hexutil.Bytes   `json:"key"`
	Value       hexutil.Bytes   `json:"value"`
	Nodes       []hexutil.Bytes `json:"nodes"`
}

// Proof returns the trie nodes of the proof
func (p *InclusionProof) Proof() trie.Proof {
	nodes := make(trie.Proof, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = n
	}

	return nodes
}

// EncodedNodes returns the proof in the form the on-chain verifier expects
func (p *InclusionProof) EncodedNodes() ([]byte, error) {
	return p.Proof().Encode()
}

// Verify checks the proof against its own root
func (p *InclusionProof) Verify() error {
	value, err := trie.VerifyProof(p.Root, p.Key, p.Proof())
	if err != nil {
		return err
	}
	if !bytes.Equal(value, p.Value) {
		return fmt.Errorf("%w: proven value differs from the %s", trie.ErrInvalidProof, p.Kind)
	}

	return nil
}

// ProofBundle holds everything needed to prove a transaction and its outcome on another chain
type ProofBundle struct {
	TxHash      common.Hash     `json:"txHash"`
	BlockHash   common.Hash     `json:"blockHash"`
	BlockNumber uint64          `json:"blockNumber"`
	Header      hexutil.Bytes   `json:"header"`
	Transaction *InclusionProof `json:"transaction"`
	Receipt     *InclusionProof `json:"receipt"`
}
