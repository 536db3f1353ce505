package journal

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/0xPolygon/xrelay/db"
	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	dbPath := path.Join(t.TempDir(), "journal_test.sqlite")
	j, err := New(log.WithFields("module", "journal"), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })

	return j
}

func TestBatches(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	batches, err := j.LastBatches(ctx, "A->B", 10)
	require.NoError(t, err)
	require.Empty(t, batches)

	for i := uint64(0); i < 3; i++ {
		require.NoError(t, j.AddBatch(ctx, BatchEntry{
			Direction:  "A->B",
			FirstBlock: 100 + i*25,
			LastBlock:  124 + i*25,
			FirstHash:  common.BigToHash(common.Big1),
			LastHash:   common.BigToHash(common.Big2),
			Headers:    25,
			Result:     BatchAccepted,
			NextBlock:  125 + i*25,
		}))
	}
	require.NoError(t, j.AddBatch(ctx, BatchEntry{
		Direction:  "B->A",
		FirstBlock: 7,
		LastBlock:  7,
		Headers:    1,
		Result:     BatchRejected,
		Error:      "header batch rejected by the light client",
		NextBlock:  6,
		CreatedAt:  42,
	}))

	batches, err = j.LastBatches(ctx, "A->B", 2)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	require.Equal(t, uint64(150), batches[0].FirstBlock)
	require.Equal(t, uint64(125), batches[1].FirstBlock)
	require.Equal(t, common.BigToHash(common.Big2), batches[0].LastHash)
	require.NotZero(t, batches[0].CreatedAt)

	batches, err = j.LastBatches(ctx, "B->A", 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, BatchRejected, batches[0].Result)
	require.Equal(t, uint64(6), batches[0].NextBlock)
	require.Equal(t, int64(42), batches[0].CreatedAt)
}

func TestProofRequests(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	now := time.Unix(1731322117, 0)
	timeNowFunc = func() time.Time { return now }
	t.Cleanup(func() { timeNowFunc = time.Now })

	blockHash := common.HexToHash("0xb10c")
	_, err := j.GetProofRequest(ctx, "A", "receipt", blockHash, 1)
	require.ErrorIs(t, err, db.ErrNotFound)

	entry := ProofEntry{
		Chain:       "A",
		Kind:        "receipt",
		BlockHash:   blockHash,
		BlockNumber: 10,
		TxIndex:     1,
		Root:        common.HexToHash("0x1234"),
		Nodes:       []hexutil.Bytes{{0xc0}, {0xc1, 0x80}},
	}
	require.NoError(t, j.AddProofRequest(ctx, entry))

	stored, err := j.GetProofRequest(ctx, "A", "receipt", blockHash, 1)
	require.NoError(t, err)
	expected := entry
	expected.Requests = 1
	expected.RequestedAt = now.Unix()
	require.Equal(t, expected, stored)

	now = now.Add(time.Minute)
	require.NoError(t, j.AddProofRequest(ctx, entry))
	stored, err = j.GetProofRequest(ctx, "A", "receipt", blockHash, 1)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Requests)
	require.Equal(t, now.Unix(), stored.RequestedAt)
	require.Equal(t, entry.Nodes, stored.Nodes)

	_, err = j.GetProofRequest(ctx, "A", "transaction", blockHash, 1)
	require.ErrorIs(t, err, db.ErrNotFound)
}
