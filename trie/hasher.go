package trie

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// keccakState wraps sha3.state. In addition to the usual hash methods, it also supports
// Read to get a variable amount of data from the hash state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

var hasherPool = sync.Pool{
	New: func() interface{} {
		return sha3.NewLegacyKeccak256().(keccakState) //nolint:forcetypeassert
	},
}

func keccak(data []byte) common.Hash {
	h := hasherPool.Get().(keccakState) //nolint:forcetypeassert
	defer hasherPool.Put(h)

	h.Reset()
	h.Write(data) //nolint:errcheck
	var out common.Hash
	h.Read(out[:]) //nolint:errcheck

	return out
}
