package db

import (
	"context"
	"database/sql"

	"github.com/0xPolygon/xrelay/log"
)

type Tx struct {
	*sql.Tx
	commitCallbacks []func()
}

func NewTx(ctx context.Context, db *sql.DB) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Tx: tx,
	}, nil
}

// AddCommitCallback registers cb to be run once the tx is committed
func (s *Tx) AddCommitCallback(cb func()) {
	s.commitCallbacks = append(s.commitCallbacks, cb)
}

func (s *Tx) Commit() error {
	if err := s.Tx.Commit(); err != nil {
		return err
	}
	for _, cb := range s.commitCallbacks {
		cb()
	}
	return nil
}

// RollbackOnError rolls the tx back when *err is not nil, meant to be deferred
func (s *Tx) RollbackOnError(logger *log.Logger, err *error) {
	if *err == nil {
		return
	}
	if errRllbck := s.Tx.Rollback(); errRllbck != nil {
		logger.Errorf("error while rolling back tx: %v", errRllbck)
	}
}
