// Package webhook implements the HTTP endpoint for the Particle cloud webhook integration.
//
// GET and POST callbacks are handled identically: the request parameters are decoded
// into a logsheet.Record and handed to the log appender. The response is always '0'
// unless the log retention policy fails.
package webhook
