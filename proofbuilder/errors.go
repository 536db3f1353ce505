package proofbuilder

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrReconstructionMismatch is returned when a rebuilt root differs from the one declared by the
	// block. It is deterministic, retrying won't help.
	ErrReconstructionMismatch = errors.New("reconstruction mismatch")
	// ErrIndexOutOfRange is returned when the block has no item at the requested index
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrReceiptNotInBlock is returned when a receipt points to another block, usually after a reorg
	ErrReceiptNotInBlock = errors.New("receipt doesn't belong to the block")
)

// ReconstructionMismatchError carries the context needed to diagnose an encoder drift
type ReconstructionMismatchError struct {
	Kind        Kind
	ChainID     uint64
	BlockNumber uint64
	BlockHash   common.Hash
	Declared    common.Hash
	Computed    common.Hash
}

func (e *ReconstructionMismatchError) Error() string {
	return fmt.Sprintf("%s: %s of block %d (%s) on chain %d, declared %s, computed %s",
		ErrReconstructionMismatch, e.Kind, e.BlockNumber, e.BlockHash, e.ChainID, e.Declared, e.Computed)
}

func (e *ReconstructionMismatchError) Is(target error) bool {
	return target == ErrReconstructionMismatch
}
