// Package jsonl reads records from an append-only JSON-lines file.
//
// Each line is one object: {"ts": RFC3339, "category": int, "message":
// string}. The source keeps a byte offset into the file so a fetch only
// scans bytes appended since the previous fetch. A partial trailing line
// (no newline yet) is left for the next cycle, and a file that shrinks
// below the offset is treated as rotated and rescanned from the start.
//
// With follow enabled the source also implements event.Waker, using an
// fsnotify watch on the file's directory to nudge the monitor as soon as
// the file grows instead of waiting out the poll interval.
package jsonl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"picket/internal/config"
	"picket/internal/event"
	"picket/internal/source"
)

func init() {
	source.Register("jsonl", func(cfg config.SourceConfig) (event.Source, error) {
		return New(cfg.JSONL)
	})
}

// entry mirrors one line on disk.
type entry struct {
	TS       string `json:"ts"`
	Category int    `json:"category"`
	Message  string `json:"message"`
}

// Source tails one JSON-lines file. Not safe for concurrent use; the
// monitor is the only caller.
type Source struct {
	path      string
	offset    int64
	malformed uint64
}

// New builds a Source for cfg. The byte offset starts at the file's
// current size, so records already on disk are never scanned; a missing
// file is fine and is reported as unavailable until it appears.
func New(cfg config.JSONLConfig) (event.Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("jsonl source needs a path")
	}
	src := &Source{path: cfg.Path}
	if info, err := os.Stat(cfg.Path); err == nil {
		src.offset = info.Size()
	}
	if !cfg.Follow {
		return src, nil
	}
	return &followSource{Source: src}, nil
}

// FetchSince scans bytes appended since the last call and returns the
// records stamped after since, in file order. Unreadable lines are
// skipped with a debug log; they never fail the fetch.
func (s *Source) FetchSince(ctx context.Context, since time.Time) ([]event.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w: %w", event.ErrUnavailable, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w: %w", event.ErrUnavailable, err)
	}
	if info.Size() < s.offset {
		log.Debug().Str("path", s.path).Int64("offset", s.offset).Msg("log shrank, rescanning from start")
		s.offset = 0
	}
	if info.Size() == s.offset {
		return nil, nil
	}

	if _, err := file.Seek(s.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log: %w: %w", event.ErrMalformed, err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read log: %w: %w", event.ErrMalformed, err)
	}

	// Only consume up to the last complete line; a partial tail stays on
	// disk for the next cycle.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, nil
	}

	var records []event.Record
	for _, line := range bytes.Split(data[:end], []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := sonic.Unmarshal(line, &e); err != nil {
			s.malformed++
			log.Debug().Str("path", s.path).Err(err).Msg("skip undecodable line")
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, e.TS)
		if err != nil {
			s.malformed++
			log.Debug().Str("path", s.path).Err(err).Msg("skip line with unreadable timestamp")
			continue
		}
		if !ts.After(since) {
			continue
		}
		records = append(records, event.Record{Timestamp: ts, Category: e.Category, Message: e.Message})
	}
	s.offset += int64(end + 1)
	return records, nil
}

// Name implements event.Source.
func (s *Source) Name() string { return "jsonl" }

// Close implements event.Source.
func (s *Source) Close() error { return nil }

// Malformed reports how many lines were skipped as unreadable.
func (s *Source) Malformed() uint64 { return s.malformed }

// followSource upgrades Source with an fsnotify-backed Waker.
type followSource struct {
	*Source

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Wake implements event.Waker. The watch is on the file's directory so
// the signal survives the file being recreated in place.
func (s *followSource) Wake(ctx context.Context) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil, fmt.Errorf("wake already active for %s", s.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = watcher

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Str("path", s.path).Err(err).Msg("file watch error")
			}
		}
	}()
	return ch, nil
}

// Close implements event.Source and also stops the watcher.
func (s *followSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
