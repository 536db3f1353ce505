package canonical

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// TxType is the envelope type byte shared by transactions and receipts
type TxType uint8

const (
	LegacyTxType     TxType = 0x00
	AccessListTxType TxType = 0x01
	DynamicFeeTxType TxType = 0x02
	BlobTxType       TxType = 0x03
)

// Known reports whether the encoder supports the type
func (t TxType) Known() bool {
	return t <= BlobTxType
}

// Transaction is implemented by every supported transaction variant
type Transaction interface {
	Type() TxType
	isTransaction()
}

// AccessTuple is an address and the storage keys it accesses
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// AccessList is an EIP-2930 access list
type AccessList []AccessTuple

// LegacyTx is a type 0 transaction. V carries the EIP-155 chain id when protected.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"`
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

// AccessListTx is an EIP-2930 transaction
type AccessListTx struct {
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

// DynamicFeeTx is an EIP-1559 transaction
type DynamicFeeTx struct {
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

// BlobTx is an EIP-4844 transaction, without sidecar
type BlobTx struct {
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *big.Int
	BlobHashes []common.Hash
	V, R, S    *big.Int
}

func (*LegacyTx) Type() TxType     { return LegacyTxType }
func (*AccessListTx) Type() TxType { return AccessListTxType }
func (*DynamicFeeTx) Type() TxType { return DynamicFeeTxType }
func (*BlobTx) Type() TxType       { return BlobTxType }

func (*LegacyTx) isTransaction()     {}
func (*AccessListTx) isTransaction() {}
func (*DynamicFeeTx) isTransaction() {}
func (*BlobTx) isTransaction()       {}

type accessListEnvelope struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *common.Address `rlp:"nil"`
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

type dynamicFeeEnvelope struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address `rlp:"nil"`
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

type blobEnvelope struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *big.Int
	BlobHashes []common.Hash
	V, R, S    *big.Int
}

// EncodeTransaction returns the canonical encoding of tx: a plain list for legacy
// transactions and type||list for typed ones, which embed chainID.
func EncodeTransaction(tx Transaction, chainID *big.Int) ([]byte, error) {
	if tx == nil {
		return nil, newEncodingError(ObjectTransaction, 0, fmt.Errorf("%w: nil transaction", ErrMalformed))
	}
	if tx.Type() != LegacyTxType && chainID == nil {
		return nil, newEncodingError(ObjectTransaction, tx.Type(),
			fmt.Errorf("%w: typed transaction requires a chain id", ErrChainIDMismatch))
	}

	var payload interface{}
	switch t := tx.(type) {
	case *LegacyTx:
		b, err := rlp.EncodeToBytes(t)
		if err != nil {
			return nil, newEncodingError(ObjectTransaction, LegacyTxType, err)
		}

		return b, nil
	case *AccessListTx:
		payload = &accessListEnvelope{
			ChainID: chainID, Nonce: t.Nonce, GasPrice: t.GasPrice, Gas: t.Gas, To: t.To,
			Value: t.Value, Data: t.Data, AccessList: t.AccessList, V: t.V, R: t.R, S: t.S,
		}
	case *DynamicFeeTx:
		payload = &dynamicFeeEnvelope{
			ChainID: chainID, Nonce: t.Nonce, GasTipCap: t.GasTipCap, GasFeeCap: t.GasFeeCap, Gas: t.Gas,
			To: t.To, Value: t.Value, Data: t.Data, AccessList: t.AccessList, V: t.V, R: t.R, S: t.S,
		}
	case *BlobTx:
		payload = &blobEnvelope{
			ChainID: chainID, Nonce: t.Nonce, GasTipCap: t.GasTipCap, GasFeeCap: t.GasFeeCap, Gas: t.Gas,
			To: t.To, Value: t.Value, Data: t.Data, AccessList: t.AccessList,
			BlobFeeCap: t.BlobFeeCap, BlobHashes: t.BlobHashes, V: t.V, R: t.R, S: t.S,
		}
	default:
		return nil, newEncodingError(ObjectTransaction, tx.Type(), ErrUnsupportedType)
	}

	b, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, newEncodingError(ObjectTransaction, tx.Type(), err)
	}

	return append([]byte{byte(tx.Type())}, b...), nil
}

// TransactionHash returns the hash the chain identifies the transaction with
func TransactionHash(tx Transaction, chainID *big.Int) (common.Hash, error) {
	b, err := EncodeTransaction(tx, chainID)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(b), nil
}

// DecodeTransaction parses a canonical transaction encoding. The returned chain id is the one
// embedded in the envelope, or derived from V for protected legacy transactions (nil otherwise).
func DecodeTransaction(b []byte) (Transaction, *big.Int, error) {
	if len(b) == 0 {
		return nil, nil, newEncodingError(ObjectTransaction, 0, fmt.Errorf("%w: empty input", ErrMalformed))
	}
	if b[0] >= 0xc0 {
		tx := &LegacyTx{}
		if err := rlp.DecodeBytes(b, tx); err != nil {
			return nil, nil, newEncodingError(ObjectTransaction, LegacyTxType, fmt.Errorf("%w: %w", ErrMalformed, err))
		}

		return tx, legacyChainID(tx.V), nil
	}

	txType := TxType(b[0])
	switch txType {
	case AccessListTxType:
		var env accessListEnvelope
		if err := rlp.DecodeBytes(b[1:], &env); err != nil {
			return nil, nil, newEncodingError(ObjectTransaction, txType, fmt.Errorf("%w: %w", ErrMalformed, err))
		}

		return &AccessListTx{
			Nonce: env.Nonce, GasPrice: env.GasPrice, Gas: env.Gas, To: env.To, Value: env.Value,
			Data: env.Data, AccessList: env.AccessList, V: env.V, R: env.R, S: env.S,
		}, env.ChainID, nil
	case DynamicFeeTxType:
		var env dynamicFeeEnvelope
		if err := rlp.DecodeBytes(b[1:], &env); err != nil {
			return nil, nil, newEncodingError(ObjectTransaction, txType, fmt.Errorf("%w: %w", ErrMalformed, err))
		}

		return &DynamicFeeTx{
			Nonce: env.Nonce, GasTipCap: env.GasTipCap, GasFeeCap: env.GasFeeCap, Gas: env.Gas, To: env.To,
			Value: env.Value, Data: env.Data, AccessList: env.AccessList, V: env.V, R: env.R, S: env.S,
		}, env.ChainID, nil
	case BlobTxType:
		var env blobEnvelope
		if err := rlp.DecodeBytes(b[1:], &env); err != nil {
			return nil, nil, newEncodingError(ObjectTransaction, txType, fmt.Errorf("%w: %w", ErrMalformed, err))
		}

		return &BlobTx{
			Nonce: env.Nonce, GasTipCap: env.GasTipCap, GasFeeCap: env.GasFeeCap, Gas: env.Gas, To: env.To,
			Value: env.Value, Data: env.Data, AccessList: env.AccessList, BlobFeeCap: env.BlobFeeCap,
			BlobHashes: env.BlobHashes, V: env.V, R: env.R, S: env.S,
		}, env.ChainID, nil
	default:
		return nil, nil, newEncodingError(ObjectTransaction, txType, ErrUnsupportedType)
	}
}

// legacyChainID derives the EIP-155 chain id from v, nil for unprotected signatures
func legacyChainID(v *big.Int) *big.Int {
	if v == nil || (v.IsUint64() && v.Uint64() < 35) { //nolint:mnd
		return nil
	}
	id := new(big.Int).Sub(v, big.NewInt(35)) //nolint:mnd

	return id.Rsh(id, 1)
}
