package actions

import (
	"context"

	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// IAction is one unit of work run by an operator. When Writes reports true
// the operator opens a storage transaction, passes its writer to Perform and
// commits it on success; otherwise writer is nil.
type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
	Writes() bool
}
