package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/sparqlcore/index"
	"github.com/wbrown/sparqlcore/resulttable"
)

// TableFormatter renders a QueryExecutionTree's materialized result as
// a markdown table, for debug output. KB columns are resolved back to
// their original strings through the Index facade; every other
// ResultType is printed as its raw numeric id.
type TableFormatter struct {
	Idx      index.Index
	MaxWidth int
}

// NewTableFormatter creates a formatter with the teacher's default
// column width.
func NewTableFormatter(idx index.Index) *TableFormatter {
	return &TableFormatter{Idx: idx, MaxWidth: 50}
}

// FormatTree materializes t's result (running it if not already
// cached) and renders it as a markdown table.
func (tf *TableFormatter) FormatTree(ctx context.Context, t *QueryExecutionTree) (string, error) {
	rt, err := t.GetResult(ctx)
	if err != nil {
		return "", err
	}
	if rt.Data.NumRows() == 0 {
		return "_Empty result_", nil
	}
	return tf.formatTable(t.orderedVariableNames(), t.VariableColumns, rt), nil
}

func (tf *TableFormatter) formatTable(names []string, cols map[string]int, rt *resulttable.ResultTable) string {
	var sb strings.Builder

	alignment := make([]tw.Align, len(names))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(&sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(names)

	nofRows := rt.Data.NumRows()
	for r := 0; r < nofRows; r++ {
		row := rt.Data.Row(r)
		rendered := make([]string, len(names))
		for i, name := range names {
			col := cols[name]
			rendered[i] = tf.formatValue(rt.GetResultType(col), row[col])
		}
		table.Append(rendered)
	}
	table.Render()

	sb.WriteString(fmt.Sprintf("\n_%d rows_\n", nofRows))
	return sb.String()
}

func (tf *TableFormatter) formatValue(rtype resulttable.ResultType, id uint64) string {
	switch rtype {
	case resulttable.KB:
		if s, ok := tf.Idx.IDToOptionalString(id); ok {
			return truncate(s, tf.maxWidth())
		}
		return fmt.Sprintf("<id:%d>", id)
	case resulttable.FLOAT:
		return fmt.Sprintf("%g", math.Float32frombits(uint32(id)))
	default:
		return fmt.Sprintf("%d", id)
	}
}

func (tf *TableFormatter) maxWidth() int {
	if tf.MaxWidth <= 0 {
		return 50
	}
	return tf.MaxWidth
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
