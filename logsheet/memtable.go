package logsheet

import (
	"context"
	"fmt"
	"sync"
)

// MemTable is an in-memory Table, used for dry runs and tests.
type MemTable struct {
	rows [][]any
	sync.RWMutex
}

// NewMemTable returns a MemTable initialised with a header row.
func NewMemTable(header ...any) *MemTable {
	return &MemTable{
		rows: [][]any{header},
	}
}

func (t *MemTable) Append(ctx context.Context, row []any) error {
	t.Lock()
	defer t.Unlock()

	t.rows = append(t.rows, append([]any{}, row...))

	return nil
}

func (t *MemTable) RowCount(ctx context.Context) (int, error) {
	t.RLock()
	defer t.RUnlock()

	return len(t.rows), nil
}

func (t *MemTable) DeleteRows(ctx context.Context, start, count int) error {
	t.Lock()
	defer t.Unlock()

	if start < 1 || count < 0 || start-1+count > len(t.rows) {
		return fmt.Errorf("invalid row range %d+%d (table has %d rows)", start, count, len(t.rows))
	}

	from := start - 1
	to := from + count

	t.rows = append(t.rows[:from], t.rows[to:]...)

	return nil
}

// Rows returns a copy of the table contents, header included.
func (t *MemTable) Rows() [][]any {
	t.RLock()
	defer t.RUnlock()

	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append([]any{}, row...)
	}

	return rows
}
