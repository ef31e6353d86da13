// Package api reads records from an HTTP endpoint that exposes the
// delta query as GET <path>?since=<RFC3339Nano>, returning a JSON array
// of records. Useful when the log lives behind a small daemon instead of
// on local disk.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"picket/internal/config"
	"picket/internal/event"
	"picket/internal/source"
)

func init() {
	source.Register("api", func(cfg config.SourceConfig) (event.Source, error) {
		return New(cfg.API)
	})
}

const defaultUserAgent = "picket/0.1"

// wireRecord is one element of the endpoint's response array.
type wireRecord struct {
	TS       string `json:"ts"`
	Category int    `json:"category"`
	Message  string `json:"message"`
}

// Source queries one HTTP endpoint for deltas.
type Source struct {
	baseURL   *url.URL
	path      string
	http      *http.Client
	userAgent string
}

var _ event.Source = (*Source)(nil)

// New builds a Source for cfg. The endpoint is required; a bare host:port
// is promoted to an http URL.
func New(cfg config.APIConfig) (event.Source, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("api source needs an endpoint")
	}
	base, err := parseBaseURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	return &Source{
		baseURL: base,
		path:    cfg.Path,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchSince queries the endpoint for records stamped after since. The
// since filter is repeated client-side so a sloppy server cannot break
// the strictly-after contract.
func (s *Source) FetchSince(ctx context.Context, since time.Time) ([]event.Record, error) {
	values := url.Values{}
	values.Set("since", since.Format(time.RFC3339Nano))
	rel := &url.URL{Path: s.path, RawQuery: values.Encode()}
	reqURL := s.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w: %w", event.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("endpoint %s returned status %d: %w", rel.Path, resp.StatusCode, event.ErrMalformed)
	}

	var payload []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", event.ErrMalformed, err)
	}

	records := make([]event.Record, 0, len(payload))
	for _, w := range payload {
		ts, err := time.Parse(time.RFC3339Nano, w.TS)
		if err != nil {
			return nil, fmt.Errorf("parse record timestamp %q: %w: %w", w.TS, event.ErrMalformed, err)
		}
		if !ts.After(since) {
			continue
		}
		records = append(records, event.Record{Timestamp: ts, Category: w.Category, Message: w.Message})
	}
	return records, nil
}

// Name implements event.Source.
func (s *Source) Name() string { return "api" }

// Close implements event.Source.
func (s *Source) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

func parseBaseURL(endpoint string) (*url.URL, error) {
	trimmed := strings.TrimSpace(endpoint)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
