package logsheet

// Record is an inbound webhook event, decoded once at the transport boundary. A nil
// field was not present in the request.
type Record struct {
	Event       *string
	Data        *string
	CoreID      *string
	PublishedAt *string

	// Body is the raw request body, kept for the diagnostic row.
	Body string

	// Err is set if the transport could not decode the request.
	Err error
}

// NewRecord builds a Record from a flat parameter set as supplied by the Particle
// cloud integration ('event', 'data', 'coreid', 'published_at').
func NewRecord(params map[string]string, body string) Record {
	lookup := func(key string) *string {
		if v, ok := params[key]; ok {
			return &v
		}

		return nil
	}

	return Record{
		Event:       lookup("event"),
		Data:        lookup("data"),
		CoreID:      lookup("coreid"),
		PublishedAt: lookup("published_at"),
		Body:        body,
	}
}

func text(v *string) string {
	if v == nil {
		return ""
	}

	return *v
}
