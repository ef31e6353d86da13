// Package stats emits periodic one-line activity summaries for long
// unattended runs. The reporter only reads store snapshots; the monitor
// goroutine stays the sole writer.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"picket/internal/state"
)

// Reporter logs a summary of monitor activity at a fixed cadence through
// the diagnostic logger, so it lands on stderr and never interleaves with
// the record stream.
type Reporter struct {
	store *state.Store
	every time.Duration
}

// NewReporter builds a reporter over the shared store. A non-positive
// cadence disables reporting entirely.
func NewReporter(store *state.Store, every time.Duration) *Reporter {
	return &Reporter{store: store, every: every}
}

// Run logs summaries until ctx is cancelled. It returns immediately when
// reporting is disabled, so callers can start it unconditionally.
func (r *Reporter) Run(ctx context.Context) {
	if r == nil || r.store == nil || r.every <= 0 {
		return
	}
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := r.store.Snapshot()
			log.Info().Str("source", snap.Source).Msg(Summary(snap))
		}
	}
}

// Summary renders one snapshot as a console line, for example
// "1,204 records over 600 cycles (NETWORK=900, FILE=300, OTHER=4)".
// Labels are ordered by count, busiest first, ties alphabetically.
func Summary(snap state.Snapshot) string {
	var b strings.Builder
	b.WriteString(humanize.Comma(int64(snap.Records)))
	b.WriteString(" records over ")
	b.WriteString(humanize.Comma(int64(snap.Cycles)))
	b.WriteString(" cycles")

	type labelCount struct {
		label string
		count uint64
	}
	items := make([]labelCount, 0, len(snap.Counts))
	for label, count := range snap.Counts {
		if count == 0 {
			continue
		}
		items = append(items, labelCount{label, count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count == items[j].count {
			return items[i].label < items[j].label
		}
		return items[i].count > items[j].count
	})
	if len(items) > 0 {
		b.WriteString(" (")
		for i, it := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", it.label, humanize.Comma(int64(it.count)))
		}
		b.WriteString(")")
	}

	if snap.ConsecutiveFailures > 0 {
		fmt.Fprintf(&b, ", %d consecutive failures", snap.ConsecutiveFailures)
	}
	return b.String()
}
