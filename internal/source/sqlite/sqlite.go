// Package sqlite reads records from a local SQLite event table.
//
// The table and column names come from configuration and are validated as
// bare identifiers before they are spliced into the query. Timestamps are
// stored as unix milliseconds, so "strictly after" comparisons stay exact
// at the driver's integer resolution. The database is opened read-only;
// the monitor never writes anything.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"picket/internal/config"
	"picket/internal/event"
	"picket/internal/source"
)

func init() {
	source.Register("sqlite", func(cfg config.SourceConfig) (event.Source, error) {
		return New(cfg.SQLite)
	})
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Source fetches deltas from one event table.
type Source struct {
	db    *sql.DB
	query string
}

var _ event.Source = (*Source)(nil)

// New opens the database read-only and prepares the delta query. The file
// not existing yet is not an error here; fetches report it as unavailable
// until it appears.
func New(cfg config.SQLiteConfig) (event.Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite source needs a path")
	}
	for _, ident := range []string{cfg.Table, cfg.TSColumn, cfg.CategoryColumn, cfg.MessageColumn} {
		if !identPattern.MatchString(ident) {
			return nil, fmt.Errorf("invalid identifier %q", ident)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s > ? ORDER BY %s ASC",
		cfg.TSColumn, cfg.CategoryColumn, cfg.MessageColumn,
		cfg.Table, cfg.TSColumn, cfg.TSColumn)
	if cfg.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", cfg.Limit)
	}

	return &Source{db: db, query: query}, nil
}

// FetchSince returns rows stamped after since, oldest first.
func (s *Source) FetchSince(ctx context.Context, since time.Time) ([]event.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query events: %w: %w", event.ErrUnavailable, err)
	}
	defer rows.Close()

	var records []event.Record
	for rows.Next() {
		var (
			ms       int64
			category int
			message  string
		)
		if err := rows.Scan(&ms, &category, &message); err != nil {
			return nil, fmt.Errorf("scan event row: %w: %w", event.ErrMalformed, err)
		}
		records = append(records, event.Record{
			Timestamp: time.UnixMilli(ms),
			Category:  category,
			Message:   message,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read event rows: %w: %w", event.ErrMalformed, err)
	}
	return records, nil
}

// Name implements event.Source.
func (s *Source) Name() string { return "sqlite" }

// Close implements event.Source.
func (s *Source) Close() error { return s.db.Close() }
