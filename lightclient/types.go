package lightclient

import (
	"errors"
	"math/big"

	cfgTypes "github.com/0xPolygon/xrelay/config/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrSubmissionRejected is returned when the light client refuses a header batch
	ErrSubmissionRejected = errors.New("header batch rejected by the light client")
	// ErrHeaderNotFound is returned when the light client doesn't store the requested header
	ErrHeaderNotFound = errors.New("header not stored in the light client")
	// ErrReadOnly is returned when submitting through a client built without tx manager
	ErrReadOnly = errors.New("light client is read-only")
)

// HeaderRecord is the light client view of a stored header
type HeaderRecord struct {
	Hash            common.Hash
	ParentHash      common.Hash
	Number          uint64
	TotalDifficulty *big.Int
}

// Config is the configuration of a light client deployed on a destination chain
type Config struct {
	// Addr is the address of the light client contract
	Addr common.Address `mapstructure:"Addr"`
	// GasOffset is added to the gas estimation of every submission
	GasOffset uint64 `mapstructure:"GasOffset"`
	// WaitPeriodMonitorTx is the time between checks of a submission status
	WaitPeriodMonitorTx cfgTypes.Duration `mapstructure:"WaitPeriodMonitorTx"`
}
