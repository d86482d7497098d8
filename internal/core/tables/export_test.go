package tables

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/models/modeltest"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
)

func exportTable(t *testing.T) *Table {
	t.Helper()
	r := modeltest.Registry()
	active := modeltest.Object(r, "extras.status", map[string]any{"name": "Active"})
	recs := []models.Record{
		modeltest.Object(r, "dcim.device", map[string]any{"name": "edge, 01", "status": active}),
		modeltest.Object(r, "dcim.device", map[string]any{"name": "core-01"}),
	}
	tbl, err := New(deviceSpec(r), queryset.New(modeltest.Model(r, "dcim.device"), recs), WithShownColumns("pk"), WithOrderBy("name"))
	require.NoError(t, err)
	return tbl
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportTable(t).WriteCSV(context.Background(), &buf))
	assert.Equal(t, "name,status\ncore-01,\n\"edge, 01\",Active\n", buf.String())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportTable(t).WriteText(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "edge, 01")
	assert.Contains(t, out, Placeholder)
	assert.Contains(t, out, "(2 rows)")
	assert.NotContains(t, out, "checkbox")
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	assert.ErrorIs(t, exportTable(t).WriteCSV(ctx, &buf), context.Canceled)
	assert.Empty(t, buf.String())
}
