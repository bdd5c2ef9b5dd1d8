package sqlconfig

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// TableName is the ledger table created by the migrations.
const TableName = "transactions"

const insertBatchSize = 500

// storedRoles are the roles persisted, in column order.
var storedRoles = []ledger.Role{
	ledger.RoleID,
	ledger.RoleDate,
	ledger.RoleAmount,
	ledger.RoleEntity,
	ledger.RoleName,
	ledger.RoleSender,
	ledger.RoleReceiver,
}

// ITransactionTable defines the interface for ledger storage operations.
// This abstraction allows swapping the implementation (e.g. Bob) without changing callers.
//
//go:generate mockery --name ITransactionTable --output mock_ITransactionTable.go
type ITransactionTable interface {
	LoadTable(ctx context.Context) (*ledger.Table, error)
	Insert(ctx context.Context, view *ledger.View) (int, error)
}

var _ ITransactionTable = (*TransactionsTable)(nil)

type TransactionsTable struct {
	exec    bob.Executor
	dialect Dialect
}

func NewTransactionsTable(exec bob.Executor, dialect Dialect) *TransactionsTable {
	return &TransactionsTable{exec: exec, dialect: dialect}
}

// LoadTable returns the whole transactions table ordered by date, then id.
// Column names are the stored ones, which match ledger.DefaultMapping.
func (t *TransactionsTable) LoadTable(ctx context.Context) (*ledger.Table, error) {
	query, args, err := t.dialect.selectAll(ctx, TableName, "date", "transaction_id")
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := t.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &ledger.Table{Columns: columns, Rows: make([][]string, 0)}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = cellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// Insert stores every row of view and returns the number written. Date and
// amount must parse; a missing id column gets generated ids.
func (t *TransactionsTable) Insert(ctx context.Context, view *ledger.View) (int, error) {
	timestamps, err := view.Timestamps()
	if err != nil {
		return 0, err
	}
	amounts, err := view.DecimalAmounts()
	if err != nil {
		return 0, err
	}

	columns := make([]string, len(storedRoles))
	cells := make([][]string, len(storedRoles))
	defaults := ledger.DefaultMapping()
	for i, role := range storedRoles {
		columns[i] = defaults[role]
		if view.Has(role) {
			cells[i], _ = view.Column(role)
		}
	}

	written := 0
	batch := make([][]any, 0, insertBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		query, args, err := t.dialect.insert(ctx, TableName, columns, batch)
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := t.exec.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for r := 0; r < view.Len(); r++ {
		row := make([]any, len(storedRoles))
		for i, role := range storedRoles {
			switch role {
			case ledger.RoleDate:
				row[i] = timestamps[r].UTC().Format(time.RFC3339Nano)
			case ledger.RoleAmount:
				row[i] = amounts[r].String()
			case ledger.RoleID:
				if cells[i] == nil || cells[i][r] == "" {
					row[i] = uuid.Must(uuid.NewV4()).String()
					continue
				}
				row[i] = cells[i][r]
			default:
				if cells[i] != nil {
					row[i] = cells[i][r]
				} else {
					row[i] = ""
				}
			}
		}
		batch = append(batch, row)
		if len(batch) == insertBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
