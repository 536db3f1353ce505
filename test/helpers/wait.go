package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type HeaderKnower interface {
	IsHeaderKnown(ctx context.Context, blockHash common.Hash) (bool, error)
}

// RequireHeaderRelayed fails the test if the light client hasn't stored blockHash within 5s
func RequireHeaderRelayed(t *testing.T, lc HeaderKnower, blockHash common.Hash) {
	t.Helper()
	require.Eventually(t, func() bool {
		known, err := lc.IsHeaderKnown(context.Background(), blockHash)
		return err == nil && known
	}, 5*time.Second, 10*time.Millisecond, "header %s not relayed", blockHash)
}
