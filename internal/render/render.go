package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"picket/internal/classify"
	"picket/internal/event"
)

// Renderer writes one styled block per classified record to a single
// writer. It is not safe for concurrent use; the monitor serializes all
// emission.
type Renderer struct {
	w      io.Writer
	styles Styles
	loc    *time.Location
}

// New returns a Renderer bound to w.
func New(w io.Writer, palette Palette) *Renderer {
	return &Renderer{
		w:      w,
		styles: palette.Styles(),
		loc:    time.Local,
	}
}

// Emit writes the record's block. The block is built in full and handed to
// the writer in a single call so records never interleave.
func (r *Renderer) Emit(rec event.Record, rule classify.Rule) error {
	if _, err := io.WriteString(r.w, r.Format(rec, rule)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Format returns the styled block for one classified record without writing
// it. Watch mode fills its viewport with the same blocks the stream emits.
func (r *Renderer) Format(rec event.Record, rule classify.Rule) string {
	var builder strings.Builder
	builder.WriteString(r.styles.Timestamp.Render(rec.Timestamp.In(r.loc).Format("15:04:05")))
	builder.WriteString(" ")
	builder.WriteString(r.styles.Label(rule.Emphasis).Render(rule.Label))
	builder.WriteString(" ")
	builder.WriteString(r.styles.ID.Render(fmt.Sprintf("[id %d]", rec.Category)))

	lines := strings.Split(strings.TrimRight(rec.Message, "\n"), "\n")
	if first := strings.TrimSpace(lines[0]); first != "" {
		builder.WriteString(" ")
		builder.WriteString(r.styles.Message.Render(first))
	}
	for _, line := range lines[1:] {
		builder.WriteString("\n    ")
		builder.WriteString(r.styles.Message.Render(line))
	}
	builder.WriteString("\n")
	return builder.String()
}
