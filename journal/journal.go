package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/xrelay/db"
	"github.com/0xPolygon/xrelay/journal/migrations"
	"github.com/0xPolygon/xrelay/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

var timeNowFunc = time.Now

// Config is the configuration of the journal
type Config struct {
	// DBPath is the path of the sqlite file
	DBPath string `mapstructure:"DBPath"`
}

// Journal keeps a log of the relay submissions and the proofs served. It's informational:
// nothing in the relay depends on it to recover its state.
type Journal struct {
	logger *log.Logger
	db     *sql.DB
}

// New runs the migrations and opens the journal stored at dbPath
func New(logger *log.Logger, dbPath string) (*Journal, error) {
	if err := migrations.RunMigrations(logger, dbPath); err != nil {
		return nil, err
	}
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}

	return &Journal{
		logger: logger,
		db:     database,
	}, nil
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}

// AddBatch stores the outcome of a batch submission
func (j *Journal) AddBatch(ctx context.Context, entry BatchEntry) error {
	entry.ID = 0
	if entry.CreatedAt == 0 {
		entry.CreatedAt = timeNowFunc().Unix()
	}
	if err := meddler.Insert(j.db, "relay_batch", &entry); err != nil {
		return fmt.Errorf("error inserting relay batch: %w", err)
	}
	j.logger.Debugf("journaled %s batch %d-%d of %s", entry.Result, entry.FirstBlock, entry.LastBlock, entry.Direction)

	return nil
}

// LastBatches returns up to limit batches of direction, newest first
func (j *Journal) LastBatches(ctx context.Context, direction string, limit int) ([]BatchEntry, error) {
	var batches []*BatchEntry
	err := meddler.QueryAll(j.db, &batches,
		"SELECT * FROM relay_batch WHERE direction = $1 ORDER BY id DESC LIMIT $2;", direction, limit)
	if err != nil {
		return nil, err
	}
	res, ok := db.SlicePtrsToSlice(batches).([]BatchEntry)
	if !ok {
		return nil, errors.New("unexpected batch slice type")
	}

	return res, nil
}

// AddProofRequest stores a served proof. Serving the same proof again bumps its request counter.
func (j *Journal) AddProofRequest(ctx context.Context, entry ProofEntry) (err error) {
	if entry.RequestedAt == 0 {
		entry.RequestedAt = timeNowFunc().Unix()
	}
	entry.Requests = 1
	tx, err := db.NewTx(ctx, j.db)
	if err != nil {
		return err
	}
	defer tx.RollbackOnError(j.logger, &err)

	if err = meddler.Insert(tx, "proof_request", &entry); err != nil {
		if !db.IsUniqueConstraintErr(err) {
			return fmt.Errorf("error inserting proof request: %w", err)
		}
		if err = updateProofRequest(tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func updateProofRequest(tx meddler.DB, entry ProofEntry) error {
	nodes, err := db.ProofNodesMeddler{}.PreWrite(entry.Nodes)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`UPDATE proof_request SET requests = requests + 1, requested_at = $1, root = $2, nodes = $3
		WHERE chain = $4 AND kind = $5 AND block_hash = $6 AND tx_index = $7;`,
		entry.RequestedAt, entry.Root.Hex(), nodes, entry.Chain, entry.Kind, entry.BlockHash.Hex(), entry.TxIndex)
	if err != nil {
		return fmt.Errorf("error updating proof request: %w", err)
	}

	return nil
}

// GetProofRequest returns the stored proof or db.ErrNotFound
func (j *Journal) GetProofRequest(
	ctx context.Context, chain, kind string, blockHash common.Hash, index uint64,
) (ProofEntry, error) {
	var entry ProofEntry
	err := meddler.QueryRow(j.db, &entry,
		"SELECT * FROM proof_request WHERE chain = $1 AND kind = $2 AND block_hash = $3 AND tx_index = $4;",
		chain, kind, blockHash.Hex(), index)
	if err != nil {
		return ProofEntry{}, db.ReturnErrNotFound(err)
	}

	return entry, nil
}
