package logsheet

import (
	"fmt"
	"strconv"
)

// TimestampFormat is the layout of the server timestamp in column A.
const TimestampFormat = "2006-01-02 15:04:05"

// Entry is a single row written to the log table, either a Row or a Diagnostic.
type Entry interface {
	Values() []any
}

// Row is the log entry for a successfully decoded event.
type Row struct {
	Timestamp   string
	CoreID      string
	PublishedAt string
	Data        string
}

func (r Row) Values() []any {
	return []any{r.Timestamp, r.CoreID, r.PublishedAt, r.Data}
}

// Diagnostic replaces a Row when the event could not be decoded or appended.
type Diagnostic struct {
	Incident string
	Err      error
	Body     string
}

func (d Diagnostic) Values() []any {
	return []any{
		fmt.Sprintf("ERROR %v: %v", d.Incident, d.Err),
		fmt.Sprintf("PostData: %v", strconv.Quote(d.Body)),
	}
}
