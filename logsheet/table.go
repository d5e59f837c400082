package logsheet

import (
	"context"
)

// Table is the backing store for the log. Row numbers are 1-based and row 1 is
// the header row.
type Table interface {
	Append(ctx context.Context, row []any) error
	RowCount(ctx context.Context) (int, error)
	DeleteRows(ctx context.Context, start, count int) error
}
