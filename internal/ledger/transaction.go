package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is used when typed transactions are flattened into a Table.
const TimestampLayout = time.RFC3339

// Transaction is one ledger record. Detectors never see it directly, they
// read the Table it is flattened into.
type Transaction struct {
	ID         string
	Timestamp  time.Time
	Amount     decimal.Decimal
	EntityID   string
	EntityName string
	SenderID   string
	ReceiverID string
}

// Table is the raw tabular ledger handed over by ingestion.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of name or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// FromTransactions flattens typed transactions into a Table laid out with
// the column names of mapping.
func FromTransactions(txs []Transaction, mapping Mapping) *Table {
	columns := make([]string, 0, len(Roles))
	roles := make([]Role, 0, len(Roles))
	for _, role := range Roles {
		if name, ok := mapping[role]; ok && name != "" {
			columns = append(columns, name)
			roles = append(roles, role)
		}
	}

	rows := make([][]string, len(txs))
	for i, tx := range txs {
		row := make([]string, len(roles))
		for j, role := range roles {
			row[j] = tx.field(role)
		}
		rows[i] = row
	}

	return &Table{Columns: columns, Rows: rows}
}

func (tx Transaction) field(role Role) string {
	switch role {
	case RoleID:
		return tx.ID
	case RoleDate:
		if tx.Timestamp.IsZero() {
			return ""
		}
		return tx.Timestamp.Format(TimestampLayout)
	case RoleAmount:
		return tx.Amount.String()
	case RoleEntity:
		return tx.EntityID
	case RoleSender:
		return tx.SenderID
	case RoleReceiver:
		return tx.ReceiverID
	case RoleName:
		return tx.EntityName
	}
	return ""
}
