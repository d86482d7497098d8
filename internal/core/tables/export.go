package tables

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// exportable reports whether a column carries data worth exporting.
func exportable(c *Column) bool {
	return c.Kind != KindToggle && c.Kind != KindActions
}

func (t *Table) exportColumns() []*Column {
	var out []*Column
	for _, c := range t.visible() {
		if exportable(c) {
			out = append(out, c)
		}
	}
	return out
}

// WriteCSV writes the visible data columns as CSV with a header row of column names.
func (t *Table) WriteCSV(ctx context.Context, w io.Writer) error {
	cols := t.exportColumns()
	recs, err := t.Data(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return ErrExport.Err(err)
	}
	for _, rec := range recs {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = t.render(ctx, c, rec).Text
		}
		if err := cw.Write(line); err != nil {
			return ErrExport.Err(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ErrExport.Err(err)
	}
	return nil
}

// WriteText writes the visible data columns as a boxed terminal table.
func (t *Table) WriteText(ctx context.Context, w io.Writer) error {
	cols := t.exportColumns()
	recs, err := t.Data(ctx)
	if err != nil {
		return err
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c.verbose(t.model)
	}
	tw.AppendHeader(header)
	for _, rec := range recs {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			text := t.render(ctx, c, rec).Text
			if text == "" {
				text = Placeholder
			}
			row[i] = text
		}
		tw.AppendRow(row)
	}
	tw.Render()
	if _, err := fmt.Fprintf(w, "(%d rows)\n", len(recs)); err != nil {
		return ErrExport.Err(err)
	}
	return nil
}
