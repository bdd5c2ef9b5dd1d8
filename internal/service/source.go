package service

import (
	"fmt"
	"strings"
)

// SourceType names where a ledger is loaded from.
type SourceType string

const (
	SourceCSV      SourceType = "csv"
	SourceJSON     SourceType = "json"
	SourceSQLite   SourceType = "sqlite"
	SourcePostgres SourceType = "postgres"
	SourceSample   SourceType = "sample"
	SourceRequest  SourceType = "request"
)

// Source describes one ledger to load. Path is the file for csv, json and
// sqlite; SampleRows and Seed drive the sample generator.
type Source struct {
	Type       SourceType
	Path       string
	SampleRows int
	Seed       int64
}

// ParseSourceType accepts the names used on the command line.
func ParseSourceType(s string) (SourceType, error) {
	switch t := SourceType(strings.ToLower(strings.TrimSpace(s))); t {
	case SourceCSV, SourceJSON, SourceSQLite, SourcePostgres, SourceSample:
		return t, nil
	default:
		return "", fmt.Errorf("unknown source type %q (want csv, json, sqlite, postgres or sample)", s)
	}
}

func (s Source) needsPath() bool {
	return s.Type == SourceCSV || s.Type == SourceJSON || s.Type == SourceSQLite
}
