package helpers

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
)

// CommitBlocks mines n blocks, pausing between them so pollers see every head, and returns the
// hash of the last one.
func CommitBlocks(backend *simulated.Backend, n int, pause time.Duration) common.Hash {
	var head common.Hash
	for range n {
		head = backend.Commit()
		time.Sleep(pause)
	}
	return head
}
