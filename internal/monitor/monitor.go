// Package monitor drives the poll loop: fetch records newer than the
// watermark, classify them, hand them to the emitter in order, advance
// the watermark, sleep, repeat until cancelled.
//
// The watermark starts at the current instant when Run begins, so
// history already in the log is never emitted, and a restart re-baselines
// rather than flooding the terminal with backlog. After each successful
// fetch the watermark advances to a wall-clock capture taken right after
// the fetch returned. A record the source stamps slightly in the past and
// publishes after that capture falls into the gap and is skipped; that is
// the accepted cost of the wall-clock policy and restarting changes
// nothing about it.
//
// Fetch failures are recoverable: the cycle is skipped, the watermark
// stays put, and the next cycle retries on the normal cadence (or with
// doubling backoff when enabled). Emit failures are fatal; when the
// output stream is gone there is nothing left to monitor for.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"picket/internal/classify"
	"picket/internal/event"
	"picket/internal/state"
)

const (
	// DefaultInterval is the poll cadence used when none is configured.
	DefaultInterval = 2 * time.Second

	maxBackoff = 30 * time.Second
)

// Emitter receives classified records in emission order. Emit must write
// the whole record before returning; an error aborts the monitor.
type Emitter interface {
	Emit(rec event.Record, rule classify.Rule) error
}

// Options configure a Monitor.
type Options struct {
	// Source is polled for record deltas. Required.
	Source event.Source
	// Rules classifies every fetched record. Required.
	Rules *classify.RuleSet
	// Emitter receives classified records. Optional when Store is set.
	Emitter Emitter
	// Store, when set, is kept up to date for viewers. Optional.
	Store *state.Store
	// Interval is the poll cadence; DefaultInterval when zero.
	Interval time.Duration
	// Backoff enables doubling the sleep after consecutive failures.
	Backoff bool
}

// Monitor owns the watermark and runs the fetch/classify/emit loop. All
// fields are confined to the Run goroutine.
type Monitor struct {
	source   event.Source
	rules    *classify.RuleSet
	emitter  Emitter
	store    *state.Store
	interval time.Duration
	backoff  bool

	now       func() time.Time
	watermark time.Time
	failures  int
}

// New validates opts and builds a Monitor.
func New(opts Options) (*Monitor, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("monitor needs a source")
	}
	if opts.Rules == nil {
		return nil, fmt.Errorf("monitor needs a rule set")
	}
	if opts.Emitter == nil && opts.Store == nil {
		return nil, fmt.Errorf("monitor needs an emitter or a store")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		source:   opts.Source,
		rules:    opts.Rules,
		emitter:  opts.Emitter,
		store:    opts.Store,
		interval: interval,
		backoff:  opts.Backoff,
		now:      time.Now,
	}, nil
}

// Run polls until ctx is cancelled. It returns nil on clean cancellation
// and an error only when emission fails.
func (m *Monitor) Run(ctx context.Context) error {
	m.watermark = m.now()

	var wake <-chan struct{}
	if w, ok := m.source.(event.Waker); ok {
		ch, err := w.Wake(ctx)
		if err != nil {
			log.Warn().Err(err).Str("source", m.source.Name()).Msg("wake unavailable, polling on the plain cadence")
		} else {
			wake = ch
		}
	}

	log.Info().
		Str("source", m.source.Name()).
		Dur("interval", m.interval).
		Time("watermark", m.watermark).
		Msg("monitor started")

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := m.cycle(ctx); err != nil {
			return err
		}

		timer := time.NewTimer(m.sleepFor())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// cycle performs one fetch/classify/emit pass. A fetch failure is
// absorbed here; only emission errors propagate.
func (m *Monitor) cycle(ctx context.Context) error {
	start := m.watermark
	records, err := m.source.FetchSince(ctx, start)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		m.failures++
		if m.store != nil {
			m.store.RecordFailure(err)
		}
		log.Warn().
			Err(err).
			Str("source", m.source.Name()).
			Int("failures", m.failures).
			Msg("poll failed, watermark unchanged")
		return nil
	}
	fetchedAt := m.now()

	for _, rec := range records {
		rule := m.rules.Classify(rec.Category)
		if m.emitter != nil {
			if err := m.emitter.Emit(rec, rule); err != nil {
				return fmt.Errorf("emit record: %w", err)
			}
		}
		if m.store != nil {
			m.store.Append(rec, rule)
		}
	}

	m.advance(fetchedAt)
	m.failures = 0
	if m.store != nil {
		m.store.CompleteCycle(m.watermark)
	}
	return nil
}

// advance moves the watermark forward, never backward.
func (m *Monitor) advance(to time.Time) {
	if to.After(m.watermark) {
		m.watermark = to
	}
}

func (m *Monitor) sleepFor() time.Duration {
	if m.backoff && m.failures > 0 {
		return calculateBackoff(m.failures, m.interval)
	}
	return m.interval
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base << uint(failures)
	if backoff > maxBackoff || backoff <= 0 {
		return maxBackoff
	}
	return backoff
}
