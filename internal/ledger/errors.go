package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a data-quality failure.
type Kind string

const (
	KindMissingColumn          Kind = "MissingColumn"
	KindInvalidAmount          Kind = "InvalidAmount"
	KindInvalidTimestamp       Kind = "InvalidTimestamp"
	KindEmptyDataset           Kind = "EmptyDataset"
	KindInsufficientGroupSize  Kind = "InsufficientGroupSize"
	KindGraphConstructionError Kind = "GraphConstructionError"

	KindTimeout  Kind = "Timeout"
	KindCanceled Kind = "Canceled"
	KindInternal Kind = "Internal"
)

var (
	ErrMissingColumn          = errors.New("missing column")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTimestamp       = errors.New("invalid timestamp")
	ErrEmptyDataset           = errors.New("empty dataset")
	ErrInsufficientGroupSize  = errors.New("insufficient group size")
	ErrGraphConstructionError = errors.New("graph construction error")
)

var sentinels = map[Kind]error{
	KindMissingColumn:          ErrMissingColumn,
	KindInvalidAmount:          ErrInvalidAmount,
	KindInvalidTimestamp:       ErrInvalidTimestamp,
	KindEmptyDataset:           ErrEmptyDataset,
	KindInsufficientGroupSize:  ErrInsufficientGroupSize,
	KindGraphConstructionError: ErrGraphConstructionError,
}

// Error is a deterministic input defect. Row is zero based and -1 when the
// defect is not tied to a single row.
type Error struct {
	Kind   Kind
	Role   Role
	Column string
	Row    int
	Detail string
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Column != "" {
		msg += fmt.Sprintf(" column=%q", e.Column)
	}
	if e.Role != "" {
		msg += fmt.Sprintf(" role=%s", e.Role)
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(" row=%d", e.Row)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is lets callers match on the package sentinels, e.g. errors.Is(err, ErrMissingColumn).
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

func newError(kind Kind, role Role, column string, row int, detail string) *Error {
	return &Error{Kind: kind, Role: role, Column: column, Row: row, Detail: detail}
}

// GraphError reports a sender/receiver cell that cannot become a graph node.
func GraphError(role Role, column string, row int, detail string) error {
	return newError(KindGraphConstructionError, role, column, row, detail)
}

// KindOf classifies any error returned from a detector run.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// EmptyDatasetError reports a source that has no header row at all.
func EmptyDatasetError(detail string) error {
	return newError(KindEmptyDataset, "", "", -1, detail)
}
