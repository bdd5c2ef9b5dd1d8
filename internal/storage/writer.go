package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-forensics/internal/storage/sqlconfig"
)

type Writer struct {
	tx           bob.Tx
	Transactions *sqlconfig.TransactionsTable
}

func NewWriter(tx bob.Tx, dialect sqlconfig.Dialect) *Writer {
	return &Writer{
		tx:           tx,
		Transactions: sqlconfig.NewTransactionsTable(tx, dialect),
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
