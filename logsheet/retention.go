package logsheet

import (
	"context"
	"fmt"

	"github.com/tpp-lora/lora-app-sheets/log"
)

const (
	MaxRows      = 3000 // includes the header row
	RowsToDelete = 500
)

// Retention bounds the size of the log table by deleting the oldest block of rows
// once the row count reaches MaxRows.
type Retention struct {
	MaxRows      int
	RowsToDelete int
}

var DefaultRetention = Retention{
	MaxRows:      MaxRows,
	RowsToDelete: RowsToDelete,
}

// Enforce deletes RowsToDelete rows immediately after the header if the table has
// MaxRows or more rows. Returns the number of rows deleted.
func (r Retention) Enforce(ctx context.Context, table Table) (int, error) {
	rows, err := table.RowCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve log row count (%w)", err)
	}

	if rows < r.MaxRows {
		return 0, nil
	}

	if err := table.DeleteRows(ctx, 2, r.RowsToDelete); err != nil {
		return 0, fmt.Errorf("error pruning log rows (%w)", err)
	}

	log.Infof("Pruned %d rows from log (%d rows)", r.RowsToDelete, rows)

	return r.RowsToDelete, nil
}
