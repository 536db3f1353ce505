package canonical

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	// ReceiptStatusFailed is the status of a reverted transaction
	ReceiptStatusFailed = uint64(0)
	// ReceiptStatusSuccessful is the status of a successful transaction
	ReceiptStatusSuccessful = uint64(1)
)

// Log is an event emitted by a transaction
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt is the consensus part of a transaction receipt. Type is the envelope type of the
// transaction that produced it and is not part of the list itself.
type Receipt struct {
	Type              TxType `rlp:"-"`
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []Log
}

// EncodeReceipt returns the canonical encoding of r, prefixed with the type byte for typed receipts
func EncodeReceipt(r *Receipt) ([]byte, error) {
	if r == nil {
		return nil, newEncodingError(ObjectReceipt, 0, fmt.Errorf("%w: nil receipt", ErrMalformed))
	}
	if !r.Type.Known() {
		return nil, newEncodingError(ObjectReceipt, r.Type, ErrUnsupportedType)
	}
	if r.Status != ReceiptStatusFailed && r.Status != ReceiptStatusSuccessful {
		return nil, newEncodingError(ObjectReceipt, r.Type, fmt.Errorf("%w: %d", ErrInvalidStatus, r.Status))
	}
	b, err := rlp.EncodeToBytes(r)
	if err != nil {
		return nil, newEncodingError(ObjectReceipt, r.Type, err)
	}
	if r.Type == LegacyTxType {
		return b, nil
	}

	return append([]byte{byte(r.Type)}, b...), nil
}

// DecodeReceipt parses a canonical receipt encoding
func DecodeReceipt(b []byte) (*Receipt, error) {
	if len(b) == 0 {
		return nil, newEncodingError(ObjectReceipt, 0, fmt.Errorf("%w: empty input", ErrMalformed))
	}
	r := &Receipt{}
	payload := b
	if b[0] < 0xc0 {
		r.Type = TxType(b[0])
		if r.Type == LegacyTxType || !r.Type.Known() {
			return nil, newEncodingError(ObjectReceipt, r.Type, ErrUnsupportedType)
		}
		payload = b[1:]
	}
	if err := rlp.DecodeBytes(payload, r); err != nil {
		return nil, newEncodingError(ObjectReceipt, r.Type, fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	if r.Status > ReceiptStatusSuccessful {
		return nil, newEncodingError(ObjectReceipt, r.Type, fmt.Errorf("%w: %d", ErrInvalidStatus, r.Status))
	}

	return r, nil
}

// EncodeIndex returns the trie key of the item at position i of a block
func EncodeIndex(i uint64) []byte {
	return rlp.AppendUint64(nil, i)
}
