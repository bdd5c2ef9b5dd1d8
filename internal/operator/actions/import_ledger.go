package actions

import (
	"context"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// ImportLedger stores every row of Table in the transactions table. A nil
// Mapping uses the default column names.
type ImportLedger struct {
	Table   *ledger.Table
	Mapping ledger.Mapping

	Written int
}

func (i *ImportLedger) Perform(ctx context.Context, writer *storage.Writer) error {
	mapping := i.Mapping
	if mapping == nil {
		mapping = ledger.DefaultMapping()
	}
	if err := mapping.Validate(); err != nil {
		return err
	}

	n, err := writer.Transactions.Insert(ctx, ledger.NewView(i.Table, mapping))
	if err != nil {
		return err
	}
	i.Written = n
	return nil
}

func (i *ImportLedger) Writes() bool {
	return true
}
