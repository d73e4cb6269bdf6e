package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorDisabledIsNoOp(t *testing.T) {
	c := NewCollector(nil)
	c.Add(Event{Name: OperationBegin})
	assert.Empty(t, c.Events())
}

func TestCollectorRecordsEventsAndInvokesHandler(t *testing.T) {
	var seen []string
	c := NewCollector(func(e Event) { seen = append(seen, e.Name) })

	c.AddTiming(ScanExecuted, time.Now(), c.GetDataMap())

	require.Len(t, c.Events(), 1)
	assert.Equal(t, ScanExecuted, c.Events()[0].Name)
	assert.Equal(t, []string{ScanExecuted}, seen)
}

func TestFormatEventIncludesRowCount(t *testing.T) {
	line := FormatEvent(Event{
		Name:    ScanExecuted,
		Latency: 5 * time.Millisecond,
		Data:    map[string]interface{}{"rows": uint64(42)},
	})
	assert.Contains(t, line, "42")
}
