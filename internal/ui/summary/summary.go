// Package summary renders stage results as tables for the end of a build.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.trai.ch/kiln/internal/core/domain"
)

// Overview renders one row per stage with its processed and error counts.
func Overview(results []domain.StageResult) string {
	if len(results) == 0 {
		return ""
	}

	tw := newWriter()
	tw.AppendHeader(table.Row{"Stage", "Processed", "Errors"})
	total := 0
	for _, r := range results {
		total += r.ErrorCount()
		tw.AppendRow(table.Row{r.Stage, strconv.Itoa(r.Processed), strconv.Itoa(r.ErrorCount())})
	}
	tw.AppendFooter(table.Row{"", "Total", strconv.Itoa(total)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// Failures renders the per-file errors of one stage. It returns "" when the stage recorded none.
func Failures(result domain.StageResult) string {
	if !result.Failed() {
		return ""
	}

	tw := newWriter()
	tw.SetTitle(fmt.Sprintf("%s: %d error(s)", result.Stage, result.ErrorCount()))
	tw.AppendHeader(table.Row{"File", "Error"})
	for _, f := range result.Failures {
		for i, msg := range f.Errors {
			file := f.File
			if i > 0 {
				file = ""
			}
			tw.AppendRow(table.Row{file, strings.TrimSpace(msg)})
		}
	}
	return tw.Render()
}

// Render renders the failures of every failed stage followed by the overview.
func Render(results []domain.StageResult) string {
	var b strings.Builder
	for _, r := range results {
		if out := Failures(r); out != "" {
			b.WriteString(out)
			b.WriteString("\n")
		}
	}
	if out := Overview(results); out != "" {
		b.WriteString(out)
		b.WriteString("\n")
	}
	return b.String()
}

func newWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}
