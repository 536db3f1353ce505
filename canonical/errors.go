package canonical

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for transaction or receipt type bytes the encoder doesn't know.
	ErrUnsupportedType = errors.New("unsupported object type")
	// ErrInvalidStatus is returned when a receipt status is neither 0 nor 1.
	ErrInvalidStatus = errors.New("invalid receipt status")
	// ErrPostStateReceipt is returned for pre-Byzantium receipts carrying an intermediate state root.
	ErrPostStateReceipt = errors.New("receipts with post-state root are not supported")
	// ErrChainIDMismatch is returned when a signed transaction belongs to another chain.
	ErrChainIDMismatch = errors.New("chain id mismatch")
	// ErrMalformed is returned when the input can't be decoded.
	ErrMalformed = errors.New("malformed encoding")
)

// ObjectKind names the kind of chain object being encoded.
type ObjectKind string

const (
	ObjectHeader      ObjectKind = "header"
	ObjectTransaction ObjectKind = "transaction"
	ObjectReceipt     ObjectKind = "receipt"
)

// EncodingError is returned whenever an object can't be encoded (or decoded) in the exact
// shape the chain uses.
type EncodingError struct {
	Object ObjectKind
	Type   TxType
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s encoding error (type %d): %s", e.Object, e.Type, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func newEncodingError(object ObjectKind, txType TxType, err error) *EncodingError {
	return &EncodingError{Object: object, Type: txType, Err: err}
}
