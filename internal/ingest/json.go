package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// LoadJSON reads a ledger in one of two layouts: an array of row objects
// ([{"amount": 10, ...}, ...]) or an object of column arrays
// ({"amount": [10, ...], ...}). Column order follows the first appearance
// of each key. Numbers keep their literal text, null becomes an empty cell.
func LoadJSON(r io.Reader) (*ledger.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ledger.EmptyDatasetError("json document is empty")
	}

	switch trimmed[0] {
	case '[':
		return loadRecords(trimmed)
	case '{':
		return loadColumns(trimmed)
	default:
		return nil, fmt.Errorf("json ledger must be an array of objects or an object of arrays")
	}
}

// LoadJSONFile opens path and reads it with LoadJSON.
func LoadJSONFile(path string) (*ledger.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadJSON(f)
}

func loadRecords(data []byte) (*ledger.Table, error) {
	var records []orderedObject
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}

	index := make(map[string]int)
	columns := make([]string, 0)
	for _, rec := range records {
		for _, key := range rec.keys {
			if _, ok := index[key]; !ok {
				index[key] = len(columns)
				columns = append(columns, key)
			}
		}
	}
	if len(columns) == 0 {
		return nil, ledger.EmptyDatasetError("json records have no fields")
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, key := range rec.keys {
			cell, err := cellString(rec.values[j])
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", i, key, err)
			}
			row[index[key]] = cell
		}
		rows[i] = row
	}
	return &ledger.Table{Columns: columns, Rows: rows}, nil
}

func loadColumns(data []byte) (*ledger.Table, error) {
	var obj orderedObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode json columns: %w", err)
	}
	if len(obj.keys) == 0 {
		return nil, ledger.EmptyDatasetError("json object has no columns")
	}

	cols := make([][]json.RawMessage, len(obj.keys))
	n := 0
	for i, key := range obj.keys {
		if err := json.Unmarshal(obj.values[i], &cols[i]); err != nil {
			return nil, fmt.Errorf("column %q must be an array: %w", key, err)
		}
		n = max(n, len(cols[i]))
	}

	rows := make([][]string, n)
	for r := range rows {
		row := make([]string, len(obj.keys))
		for c := range cols {
			if r >= len(cols[c]) {
				continue
			}
			cell, err := cellString(cols[c][r])
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", obj.keys[c], r, err)
			}
			row[c] = cell
		}
		rows[r] = row
	}
	return &ledger.Table{Columns: obj.keys, Rows: rows}, nil
}

// orderedObject is a JSON object that remembers key order.
type orderedObject struct {
	keys   []string
	values []json.RawMessage
}

func (o *orderedObject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		o.keys = append(o.keys, key)
		o.values = append(o.values, value)
	}
	_, err = dec.Token()
	return err
}

func cellString(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "" || s == "null":
		return "", nil
	case s[0] == '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return "", err
		}
		return str, nil
	case s[0] == '{' || s[0] == '[':
		return "", fmt.Errorf("nested values are not supported")
	default:
		return s, nil
	}
}
