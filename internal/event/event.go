// Package event defines the record model and the source contract that the
// monitor polls against. Concrete sources live under internal/source.
package event

import (
	"context"
	"errors"
	"time"
)

// Record is one structured entry from the watched log. Records are immutable
// once fetched; ordering is whatever the source returned.
type Record struct {
	// Timestamp is the instant the source stamped on the record.
	Timestamp time.Time
	// Category is the numeric event type assigned by the log source.
	Category int
	// Message is the human-readable body.
	Message string
}

// Source is a pull-based view of an append-only event log.
//
// Implementations must return records whose Timestamp is strictly greater
// than the since argument, ascending as stored, and may return an empty
// slice when nothing new arrived. FetchSince blocks for the duration of the
// query and must honor ctx cancellation.
type Source interface {
	// FetchSince returns all records stamped after since.
	FetchSince(ctx context.Context, since time.Time) ([]Record, error)

	// Name identifies the source in diagnostics ("jsonl", "sqlite", ...).
	Name() string

	// Close releases any handles held by the source.
	Close() error
}

// Waker is an optional upgrade for sources that can cheaply signal "new
// data probably arrived", letting the monitor cut a sleep short instead of
// waiting out the full interval. Waking is purely advisory: the fetch
// contract and its ordering guarantees are unchanged, and a source that
// never wakes is still polled on the regular cadence.
type Waker interface {
	// Wake returns a channel that receives (or is closed) when the source
	// believes new records are available. The channel is owned by the
	// source and is closed no later than ctx cancellation.
	Wake(ctx context.Context) (<-chan struct{}, error)
}

// Sentinel errors for fetch failures. Sources wrap these so callers can
// classify with errors.Is while keeping adapter-specific context.
var (
	// ErrUnavailable marks a source that cannot be reached at all: the
	// file is gone, the database is locked away, the endpoint refused.
	ErrUnavailable = errors.New("event source unavailable")

	// ErrMalformed marks a response that arrived but could not be used:
	// undecodable payload, impossible row values, partial reply.
	ErrMalformed = errors.New("malformed source response")
)
