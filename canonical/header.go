package canonical

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	// BloomByteLength is the size of a logs bloom
	BloomByteLength = 256
	// NonceByteLength is the size of a block nonce
	NonceByteLength = 8
)

// Bloom is the logs bloom filter of a header or receipt
type Bloom [BloomByteLength]byte

// BlockNonce is the proof-of-work nonce of a header
type BlockNonce [NonceByteLength]byte

// Header is a block header in the exact field order the chain hashes it.
// The trailing pointer fields are only encoded when the block carries them: once a later
// one is set, any earlier unset one is encoded as empty.
type Header struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       BlockNonce

	BaseFee          *big.Int     `rlp:"optional"`
	WithdrawalsHash  *common.Hash `rlp:"optional"`
	BlobGasUsed      *uint64      `rlp:"optional"`
	ExcessBlobGas    *uint64      `rlp:"optional"`
	ParentBeaconRoot *common.Hash `rlp:"optional"`
}

// EncodeHeader returns the canonical encoding of the header
func EncodeHeader(h *Header) ([]byte, error) {
	if h == nil {
		return nil, newEncodingError(ObjectHeader, 0, fmt.Errorf("%w: nil header", ErrMalformed))
	}
	b, err := rlp.EncodeToBytes(h)
	if err != nil {
		return nil, newEncodingError(ObjectHeader, 0, err)
	}

	return b, nil
}

// DecodeHeader parses a canonical header encoding
func DecodeHeader(b []byte) (*Header, error) {
	h := &Header{}
	if err := rlp.DecodeBytes(b, h); err != nil {
		return nil, newEncodingError(ObjectHeader, 0, fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	return h, nil
}

// Hash returns the keccak256 of the canonical encoding, which is the block hash.
// It panics if the header can't be encoded, which only happens for nil headers.
func (h *Header) Hash() common.Hash {
	b, err := EncodeHeader(h)
	if err != nil {
		panic(err)
	}

	return crypto.Keccak256Hash(b)
}
