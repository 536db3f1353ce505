package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/xrelay/confirmation"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/proofbuilder"
	"github.com/0xPolygon/xrelay/relay"
	"github.com/ethereum/go-ethereum/common"
)

var jSONRPCCall = rpc.JSONRPCCall

// BridgeClientInterface is implemented by Client
type BridgeClientInterface interface {
	TransactionProof(chain string, blockHash common.Hash, index uint64) (*proofbuilder.InclusionProof, error)
	ReceiptProof(chain string, blockHash common.Hash, index uint64) (*proofbuilder.InclusionProof, error)
	ProofBundle(chain string, txHash common.Hash) (*proofbuilder.ProofBundle, error)
	ConfirmationStatus(chain string, txHash common.Hash) (*confirmation.Report, error)
	RelayState(direction string) (*relay.RelayState, error)
	LastBatches(direction string, limit int) ([]journal.BatchEntry, error)
	ServedProof(chain, kind string, blockHash common.Hash, index uint64) (*journal.ProofEntry, error)
}

// Client calls the bridge endpoints of a running relay
type Client struct {
	url string
}

// NewClient returns a client ready to be used
func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}

func (c *Client) TransactionProof(chain string, blockHash common.Hash, index uint64) (*proofbuilder.InclusionProof, error) {
	return call[proofbuilder.InclusionProof](c.url, "bridge_transactionProof", chain, blockHash, index)
}

func (c *Client) ReceiptProof(chain string, blockHash common.Hash, index uint64) (*proofbuilder.InclusionProof, error) {
	return call[proofbuilder.InclusionProof](c.url, "bridge_receiptProof", chain, blockHash, index)
}

func (c *Client) ProofBundle(chain string, txHash common.Hash) (*proofbuilder.ProofBundle, error) {
	return call[proofbuilder.ProofBundle](c.url, "bridge_proofBundle", chain, txHash)
}

func (c *Client) ConfirmationStatus(chain string, txHash common.Hash) (*confirmation.Report, error) {
	return call[confirmation.Report](c.url, "bridge_confirmationStatus", chain, txHash)
}

func (c *Client) RelayState(direction string) (*relay.RelayState, error) {
	return call[relay.RelayState](c.url, "bridge_relayState", direction)
}

func (c *Client) LastBatches(direction string, limit int) ([]journal.BatchEntry, error) {
	batches, err := call[[]journal.BatchEntry](c.url, "bridge_lastBatches", direction, limit)
	if err != nil {
		return nil, err
	}
	return *batches, nil
}

func (c *Client) ServedProof(chain, kind string, blockHash common.Hash, index uint64) (*journal.ProofEntry, error) {
	return call[journal.ProofEntry](c.url, "bridge_servedProof", chain, kind, blockHash, index)
}

func call[T any](url, method string, params ...interface{}) (*T, error) {
	response, err := jSONRPCCall(url, method, params...)
	if err != nil {
		return nil, err
	}

	// Check if the response is an error
	if response.Error != nil {
		return nil, fmt.Errorf("error in the response calling %s: %w", method, response.Error)
	}
	var result T
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
