package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// latency color bands, matching the teacher's OutputFormatter.
var (
	fastColor = color.New(color.FgGreen)
	midColor  = color.New(color.FgYellow)
	slowColor = color.New(color.FgRed)
)

func colorForLatency(d time.Duration) *color.Color {
	ms := d.Milliseconds()
	switch {
	case ms < 50:
		return fastColor
	case ms < 200:
		return midColor
	default:
		return slowColor
	}
}

// FormatEvent renders one event as a single colorized line, in the
// same spirit as the teacher's console formatter: name, colorized
// latency, and any row/byte counts humanized for a human reader.
func FormatEvent(e Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s ", e.Name)
	b.WriteString(colorForLatency(e.Latency).Sprintf("%8s", e.Latency.Round(time.Microsecond)))

	if rows, ok := e.Data["rows"]; ok {
		if n, ok := rows.(uint64); ok {
			fmt.Fprintf(&b, "  rows=%s", humanize.Comma(int64(n)))
		}
	}
	if bytes, ok := e.Data["bytes"]; ok {
		if n, ok := bytes.(uint64); ok {
			fmt.Fprintf(&b, "  size=%s", humanize.Bytes(n))
		}
	}
	if desc, ok := e.Data["descriptor"]; ok {
		fmt.Fprintf(&b, "  %v", desc)
	}
	return b.String()
}

// ConsoleHandler returns a Handler that writes each event to stdout as
// FormatEvent renders it, the same factory shape as the teacher's
// ConsoleHandler().
func ConsoleHandler() Handler {
	return func(e Event) {
		fmt.Println(FormatEvent(e))
	}
}
