package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"picket/internal/config"
	"picket/internal/event"
)

func TestParseBaseURL_Normalizes(t *testing.T) {
	u, err := parseBaseURL("127.0.0.1:9000")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "127.0.0.1:9000" {
		t.Fatalf("url = %q, want http://127.0.0.1:9000", u.String())
	}

	u, err = parseBaseURL("https://example.com:1234/extra?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New(config.APIConfig{Path: "/events"}); err == nil {
		t.Fatalf("New accepted empty endpoint, want error")
	}
}

func TestFetchSince_QueriesAndDecodes(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var gotQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode([]wireRecord{
			{TS: since.Add(time.Second).Format(time.RFC3339Nano), Category: 3, Message: "conn to 1.2.3.4"},
			{TS: since.Add(2 * time.Second).Format(time.RFC3339Nano), Category: 11, Message: "open /etc/passwd"},
		})
	}))
	t.Cleanup(server.Close)

	src, err := New(config.APIConfig{Endpoint: server.URL, Path: "/events", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	records, err := src.FetchSince(context.Background(), since)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}
	if records[0].Category != 3 || records[1].Category != 11 {
		t.Fatalf("records out of order: %+v", records)
	}
	if gotQuery.Get("since") != since.Format(time.RFC3339Nano) {
		t.Fatalf("since param = %q, want %q", gotQuery.Get("since"), since.Format(time.RFC3339Nano))
	}
	if !strings.HasPrefix(gotUserAgent, "picket/") {
		t.Fatalf("User-Agent = %q, want picket/*", gotUserAgent)
	}
}

func TestFetchSince_DropsRecordsAtOrBeforeSince(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]wireRecord{
			{TS: since.Add(-time.Second).Format(time.RFC3339Nano), Category: 1, Message: "old"},
			{TS: since.Format(time.RFC3339Nano), Category: 1, Message: "boundary"},
			{TS: since.Add(time.Second).Format(time.RFC3339Nano), Category: 1, Message: "new"},
		})
	}))
	t.Cleanup(server.Close)

	src, err := New(config.APIConfig{Endpoint: server.URL, Path: "/events", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	records, err := src.FetchSince(context.Background(), since)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(records) != 1 || records[0].Message != "new" {
		t.Fatalf("records = %+v, want only the strictly newer one", records)
	}
}

func TestFetchSince_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boom":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/garbage":
			_, _ = w.Write([]byte("{not-json"))
		case "/badts":
			_ = json.NewEncoder(w).Encode([]wireRecord{{TS: "around noon", Category: 1, Message: "x"}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name string
		path string
		want error
	}{
		{"server error", "/boom", event.ErrMalformed},
		{"undecodable body", "/garbage", event.ErrMalformed},
		{"unreadable timestamp", "/badts", event.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(config.APIConfig{Endpoint: server.URL, Path: tt.path, Timeout: 2 * time.Second})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			t.Cleanup(func() { src.Close() })

			_, err = src.FetchSince(context.Background(), time.Now())
			if !errors.Is(err, tt.want) {
				t.Fatalf("FetchSince error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetchSince_UnreachableEndpointIsUnavailable(t *testing.T) {
	src, err := New(config.APIConfig{Endpoint: "127.0.0.1:1", Path: "/events", Timeout: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	_, err = src.FetchSince(context.Background(), time.Now())
	if !errors.Is(err, event.ErrUnavailable) {
		t.Fatalf("FetchSince error = %v, want ErrUnavailable", err)
	}
}
