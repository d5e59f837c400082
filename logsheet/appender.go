package logsheet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tpp-lora/lora-app-sheets/log"
)

var ErrAbandoned = errors.New("request abandoned before it was logged")

// Appender writes one log entry per inbound record and then enforces the
// retention policy on the table.
type Appender struct {
	table     Table
	retention Retention
	location  *time.Location
	now       func() time.Time
	incident  func() string
	sync.Mutex
}

// Outcome describes what Handle wrote to the log table.
type Outcome struct {
	Entry      Entry
	Diagnostic bool
	Pruned     int
}

// NewAppender returns an Appender for the table. Server timestamps are rendered in
// the location, which defaults to time.Local if nil.
func NewAppender(table Table, retention Retention, location *time.Location) *Appender {
	if location == nil {
		location = time.Local
	}

	return &Appender{
		table:     table,
		retention: retention,
		location:  location,
		now:       time.Now,
		incident:  func() string { return uuid.NewString() },
	}
}

// Handle appends a row for the record to the log table or, if the record could not be
// decoded or the append failed, a diagnostic row. The retention policy is applied
// after either. Decode and append failures are recorded in the diagnostic row. The
// returned error is a retention failure or, if the context was cancelled while
// waiting for a preceding request, ErrAbandoned with nothing written.
func (a *Appender) Handle(ctx context.Context, rq Record) (Outcome, error) {
	a.Lock()
	defer a.Unlock()

	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("%w (%w)", ErrAbandoned, err)
	}

	outcome := Outcome{}

	row, err := a.row(rq)
	if err == nil {
		err = a.table.Append(ctx, row.Values())
	}

	if err != nil {
		diagnostic := Diagnostic{
			Incident: a.incident(),
			Err:      err,
			Body:     rq.Body,
		}

		log.Warnf("%v  %v", diagnostic.Incident, err)

		if err := a.table.Append(ctx, diagnostic.Values()); err != nil {
			log.Errorf("%v  error appending diagnostic row (%v)", diagnostic.Incident, err)
		}

		outcome.Entry = diagnostic
		outcome.Diagnostic = true
	} else {
		outcome.Entry = row
	}

	pruned, err := a.retention.Enforce(ctx, a.table)
	outcome.Pruned = pruned

	return outcome, err
}

func (a *Appender) row(rq Record) (Row, error) {
	if rq.Err != nil {
		return Row{}, rq.Err
	}

	// 'event' is not logged
	log.Debugf("event:%q  coreid:%q", text(rq.Event), text(rq.CoreID))

	return Row{
		Timestamp:   a.now().In(a.location).Format(TimestampFormat),
		CoreID:      text(rq.CoreID),
		PublishedAt: text(rq.PublishedAt),
		Data:        text(rq.Data),
	}, nil
}
