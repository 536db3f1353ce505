package confirmation

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrOrphanedTarget is returned when the block of a transaction keeps being orphaned in the
// light client chain
var ErrOrphanedTarget = errors.New("target block orphaned too many times")

// Status is the confirmation status of a block or a transaction
type Status int

const (
	// StatusPending means the confirmation threshold is not reached yet
	StatusPending Status = iota
	// StatusConfirmed means the block is buried under enough blocks of the canonical chain
	StatusConfirmed
	// StatusOrphaned means another block is canonical at the height of the target
	StatusOrphaned
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusOrphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	for _, status := range []Status{StatusPending, StatusConfirmed, StatusOrphaned} {
		if string(text) == status.String() {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown confirmation status %q", text)
}

// Report is a snapshot of both confirmations of a transaction
type Report struct {
	TxHash      common.Hash `json:"txHash"`
	BlockHash   common.Hash `json:"blockHash"`
	BlockNumber uint64      `json:"blockNumber"`
	Local       Status      `json:"local"`
	LightClient Status      `json:"lightClient"`
}

// headerLink is what the ancestor walk needs from a header
type headerLink struct {
	Hash       common.Hash
	ParentHash common.Hash
	Number     uint64
}
