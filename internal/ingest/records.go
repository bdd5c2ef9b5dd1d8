package ingest

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// FromRecords builds a Table from already decoded JSON records. Decoded
// objects carry no key order, so columns are sorted by name. Numbers that
// went through float64 keep at most 15-17 significant digits; send amounts
// as strings to keep them exact.
func FromRecords(records []map[string]any) (*ledger.Table, error) {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, rec := range records {
		for key := range rec {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, key := range columns {
			cell, err := valueString(rec[key])
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", i, key, err)
			}
			row[j] = cell
		}
		rows[i] = row
	}
	return &ledger.Table{Columns: columns, Rows: rows}, nil
}

func valueString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("nested values are not supported")
	}
}
