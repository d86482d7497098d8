package tables

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/models/modeltest"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
	"github.com/nautobot/nautobot-sub011/internal/core/users"
)

func deviceSpec(r *models.Registry) *TableSpec {
	return &TableSpec{
		Name:  "DeviceTable",
		Model: modeltest.Model(r, "dcim.device"),
		Columns: []Column{
			ToggleColumn(),
			LinkColumn("name", "name"),
			LinkColumn("status", "status"),
			ActionsColumn(),
		},
	}
}

func TestDefaultColumns(t *testing.T) {
	r := modeltest.Registry()
	spec := &TableSpec{
		Name:  "DeviceTable",
		Model: modeltest.Model(r, "dcim.device"),
		Columns: []Column{
			ToggleColumn(),
			LinkColumn("name", "name"),
			LinkColumn("status", "status"),
		},
		DefaultColumns: []string{"pk", "name"},
	}

	tbl, err := New(spec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"pk", "name"}, tbl.VisibleColumns())

	tbl, err = New(spec, nil, WithExtraColumns(LinkColumn("status", "status")))
	require.NoError(t, err)
	assert.Equal(t, []string{"pk", "name", "status"}, tbl.VisibleColumns())

	tbl, err = New(spec, nil, WithShownColumns("status", "bogus"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pk", "name", "status"}, tbl.VisibleColumns())

	assert.Len(t, spec.Columns, 3, "spec is not modified")
}

func TestToggleHiddenByDefault(t *testing.T) {
	r := modeltest.Registry()
	tbl, err := New(deviceSpec(r), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "status", "actions"}, tbl.VisibleColumns())

	require.NoError(t, tbl.Show("pk"))
	assert.Equal(t, []string{"pk", "name", "status", "actions"}, tbl.VisibleColumns())
	require.NoError(t, tbl.Hide("status"))
	assert.Equal(t, []string{"pk", "name", "actions"}, tbl.VisibleColumns())
	assert.ErrorIs(t, tbl.Show("bogus"), ErrUnknownColumn)
}

func TestUserPreference(t *testing.T) {
	ctx := context.Background()
	r := modeltest.Registry()
	alice := users.User{Username: "alice"}
	prefs := users.NewMemoryStore()

	tests := []struct {
		name   string
		stored []string
		user   users.User
		want   []string
	}{
		{"pk and actions pinned", []string{"status", "name"}, alice, []string{"pk", "status", "name", "actions"}},
		{"pinned names in preference are moved", []string{"actions", "name", "pk"}, alice, []string{"pk", "name", "actions"}},
		{"unknown names ignored", []string{"bogus", "status", "status"}, alice, []string{"pk", "status", "actions"}},
		{"no preference", nil, alice, []string{"name", "status", "actions"}},
		{"anonymous user", []string{"status"}, users.AnonymousUser(), []string{"name", "status", "actions"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, prefs.SetTableColumns(ctx, alice, "DeviceTable", tt.stored))
			tbl, err := New(deviceSpec(r), nil, WithUser(tt.user), WithPreferences(prefs))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tbl.VisibleColumns())
		})
	}
}

func TestConfigurableColumns(t *testing.T) {
	ctx := context.Background()
	r := modeltest.Registry()
	alice := users.User{Username: "alice"}
	prefs := users.NewMemoryStore()
	require.NoError(t, prefs.SetTableColumns(ctx, alice, "DeviceTable", []string{"status"}))

	tbl, err := New(deviceSpec(r), nil, WithUser(alice), WithPreferences(prefs))
	require.NoError(t, err)
	selected, available := tbl.ConfigurableColumns()
	assert.Equal(t, []ColumnChoice{{Name: "status", VerboseName: "status"}}, selected)
	assert.Equal(t, []ColumnChoice{{Name: "name", VerboseName: "name"}}, available)
}

func TestPlanEagerLoading(t *testing.T) {
	r := modeltest.Registry()
	device := modeltest.Model(r, "dcim.device")

	tests := []struct {
		accessor string
		want     EagerPlan
	}{
		{"name", EagerPlan{}},
		{"pk", EagerPlan{}},
		{"device_type", EagerPlan{Select: []string{"device_type"}}},
		{"device_type__manufacturer__name", EagerPlan{Select: []string{"device_type__manufacturer"}}},
		{"device_type.manufacturer.name", EagerPlan{Select: []string{"device_type__manufacturer"}}},
		{"tags__name", EagerPlan{Prefetch: []string{"tags"}}},
		{"notes__note", EagerPlan{Prefetch: []string{"notes"}}},
		{"interfaces__device__name", EagerPlan{Prefetch: []string{"interfaces"}}},
		{"device_type__tags__name", EagerPlan{Select: []string{"device_type"}}},
		{"location__notes", EagerPlan{Select: []string{"location"}}},
		{"_custom_field_data.owner", EagerPlan{}},
		{"nope__name", EagerPlan{}},
	}
	for _, tt := range tests {
		t.Run(tt.accessor, func(t *testing.T) {
			got := PlanEagerLoading(device, []*Column{{Name: "c", Accessor: tt.accessor}})
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("paths are merged without duplicates", func(t *testing.T) {
		got := PlanEagerLoading(device, []*Column{
			{Name: "a", Accessor: "device_type__model"},
			{Name: "b", Accessor: "device_type__manufacturer"},
			{Name: "c", Accessor: "device_type"},
			{Name: "d", Accessor: "tags"},
			{Name: "e", Kind: KindComputedField},
		})
		assert.Equal(t, EagerPlan{Select: []string{"device_type", "device_type__manufacturer"}, Prefetch: []string{"tags"}}, got)
	})
}

func deviceTypeQuerySet(r *models.Registry) *queryset.Memory {
	acme := modeltest.Object(r, "dcim.manufacturer", map[string]any{"name": "Acme"})
	red := modeltest.Object(r, "extras.tag", map[string]any{"name": "red", "color": "ff0000"})
	return queryset.New(modeltest.Model(r, "dcim.devicetype"), []models.Record{
		modeltest.Object(r, "dcim.devicetype", map[string]any{"model": "DCS-7280", "manufacturer": acme, "tags": []models.Record{red}}),
		modeltest.Object(r, "dcim.devicetype", map[string]any{"model": "DCS-7050", "manufacturer": acme}),
	})
}

func deviceTypeSpec(r *models.Registry) *TableSpec {
	return &TableSpec{
		Name:  "DeviceTypeTable",
		Model: modeltest.Model(r, "dcim.devicetype"),
		Columns: []Column{
			LinkColumn("model", "model"),
			TextColumn("manufacturer", "manufacturer__name"),
			TagsColumn("tags", "tags__name"),
			TagsColumn("hidden_tags", "tags"),
		},
		DefaultColumns: []string{"model", "manufacturer", "tags"},
	}
}

func TestEagerLoadingApplied(t *testing.T) {
	r := modeltest.Registry()
	qs := deviceTypeQuerySet(r)

	t.Run("records", func(t *testing.T) {
		tbl, err := New(deviceTypeSpec(r), qs)
		require.NoError(t, err)
		selected, prefetched := tbl.Queryset().EagerLoading()
		assert.Equal(t, []string{"manufacturer"}, selected)
		assert.Equal(t, []string{"tags"}, prefetched)
		assert.Equal(t, int64(0), qs.Evaluations(), "construction does not evaluate")
	})

	t.Run("projection receives neither", func(t *testing.T) {
		tbl, err := New(deviceTypeSpec(r), qs.Values("model"))
		require.NoError(t, err)
		assert.Equal(t, EagerPlan{Select: []string{"manufacturer"}, Prefetch: []string{"tags"}}, tbl.EagerPlan())
		selected, prefetched := tbl.Queryset().EagerLoading()
		assert.Empty(t, selected)
		assert.Empty(t, prefetched)
		assert.Equal(t, queryset.ShapeProjection, tbl.Queryset().Shape())
	})

	t.Run("rejected select leaves queryset unchanged", func(t *testing.T) {
		ctx := context.Background()
		plan := EagerPlan{Select: []string{"tags"}}
		require.Error(t, queryset.ValidateSelect(qs.Model(), "tags"))

		got := applyEagerLoading(ctx, "DeviceTypeTable", qs, plan)
		assert.Same(t, qs, got)
		selected, prefetched := got.EagerLoading()
		assert.Empty(t, selected)
		assert.Empty(t, prefetched)

		got = applyEagerLoading(ctx, "DeviceTypeTable", qs, EagerPlan{Select: []string{"model"}, Prefetch: []string{"tags"}})
		selected, prefetched = got.EagerLoading()
		assert.Empty(t, selected)
		assert.Equal(t, []string{"tags"}, prefetched)
	})

	t.Run("combinator receives neither", func(t *testing.T) {
		union, err := qs.Union(qs)
		require.NoError(t, err)
		tbl, err := New(deviceTypeSpec(r), union)
		require.NoError(t, err)
		selected, prefetched := tbl.Queryset().EagerLoading()
		assert.Empty(t, selected)
		assert.Empty(t, prefetched)

		rows, err := tbl.Rows(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("record slices are left alone", func(t *testing.T) {
		recs, err := qs.All(context.Background())
		require.NoError(t, err)
		tbl, err := New(deviceTypeSpec(r), recs)
		require.NoError(t, err)
		assert.Nil(t, tbl.Queryset())
		assert.True(t, tbl.EagerPlan().IsEmpty())
	})
}

func TestRenderRowsPage(t *testing.T) {
	ctx := context.Background()
	r := modeltest.Registry()
	qs := deviceTypeQuerySet(r)
	tbl, err := New(deviceTypeSpec(r), qs)
	require.NoError(t, err)

	recs, err := tbl.Data(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	rows := tbl.RenderRows(ctx, recs[1:])
	require.Len(t, rows, 1)
	assert.Equal(t, "DCS-7050", rows[0].Cells[0].Text)
	assert.Len(t, rows[0].Cells, len(tbl.VisibleColumns()))
	assert.Equal(t, int64(1), qs.Evaluations())

	assert.Empty(t, tbl.RenderRows(ctx, nil))
}

func TestMismatchedData(t *testing.T) {
	r := modeltest.Registry()
	_, err := New(deviceSpec(r), deviceTypeQuerySet(r))
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = New(deviceSpec(r), 42)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func locationRecords(r *models.Registry) []models.Record {
	campus := modeltest.Object(r, "dcim.location", map[string]any{"name": "Campus"})
	b2 := modeltest.Object(r, "dcim.location", map[string]any{"name": "Building-2", "parent": campus})
	b1 := modeltest.Object(r, "dcim.location", map[string]any{"name": "Building-1", "parent": campus})
	room := modeltest.Object(r, "dcim.location", map[string]any{"name": "Room", "parent": b2})
	annex := modeltest.Object(r, "dcim.location", map[string]any{"name": "Annex"})
	return []models.Record{room, b2, annex, campus, b1}
}

func locationSpec(r *models.Registry) *TableSpec {
	name := LinkColumn("name", "name")
	name.TreeNode = true
	return &TableSpec{
		Name:    "LocationTable",
		Model:   modeltest.Model(r, "dcim.location"),
		Columns: []Column{name, TagsColumn("tags", "tags")},
	}
}

func rowNames(t *testing.T, tbl *Table) []string {
	t.Helper()
	rows, err := tbl.Rows(context.Background())
	require.NoError(t, err)
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = models.Display(row.Record)
	}
	return out
}

func TestTreeOrdering(t *testing.T) {
	r := modeltest.Registry()
	qs := queryset.New(modeltest.Model(r, "dcim.location"), locationRecords(r))

	tbl, err := New(locationSpec(r), qs)
	require.NoError(t, err)

	tbl.SetOrderBy("")
	assert.True(t, tbl.Queryset().IsTree(), "empty order keeps tree order")
	assert.Equal(t, []string{"Annex", "Campus", "Building-1", "Building-2", "Room"}, rowNames(t, tbl))

	rows, err := tbl.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(treeIndent, 2), strings.Split(string(rows[4].Cells[0].HTML), "<a ")[0])
	assert.NotContains(t, string(rows[0].Cells[0].HTML), treeIndent)

	tbl.SetOrderBy("-name,tags,bogus")
	assert.Equal(t, []string{"-name"}, tbl.OrderBy())
	assert.False(t, tbl.Queryset().IsTree(), "sorting flattens the tree")
	assert.Equal(t, []string{"Room", "Campus", "Building-2", "Building-1", "Annex"}, rowNames(t, tbl))
	rows, err = tbl.Rows(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, string(rows[0].Cells[0].HTML), treeIndent)

	tbl.SetOrderBy([]string{})
	assert.Empty(t, tbl.OrderBy())
	assert.Equal(t, []string{"Room", "Campus", "Building-2", "Building-1", "Annex"}, rowNames(t, tbl))

	assert.True(t, qs.IsTree(), "bound queryset is not modified")
}

func TestOrderingRecords(t *testing.T) {
	r := modeltest.Registry()
	tbl, err := New(locationSpec(r), locationRecords(r), WithOrderBy([]string{"name"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, tbl.OrderBy())
	assert.Equal(t, []string{"Annex", "Building-1", "Building-2", "Campus", "Room"}, rowNames(t, tbl))
}

func TestOrderingRelatedColumn(t *testing.T) {
	r := modeltest.Registry()
	spec := SpecForModel(modeltest.Model(r, "dcim.devicetype"), ColumnDefaults{})
	zeta := modeltest.Object(r, "dcim.manufacturer", map[string]any{"name": "Zeta"})
	acme := modeltest.Object(r, "dcim.manufacturer", map[string]any{"name": "Acme"})
	qs := queryset.New(spec.Model, []models.Record{
		modeltest.Object(r, "dcim.devicetype", map[string]any{"model": "Z1", "manufacturer": zeta}),
		modeltest.Object(r, "dcim.devicetype", map[string]any{"model": "A1", "manufacturer": acme}),
	})
	tbl, err := New(spec, qs, WithOrderBy("manufacturer,tags"))
	require.NoError(t, err)
	assert.Equal(t, []string{"manufacturer"}, tbl.OrderBy())
	assert.Equal(t, []string{"manufacturer__name"}, tbl.Queryset().Ordering())
	assert.Equal(t, []string{"A1", "Z1"}, rowNames(t, tbl))

	tbl.SetOrderBy("-manufacturer")
	assert.Equal(t, []string{"-manufacturer__name"}, tbl.Queryset().Ordering())
}

func relationshipFixture(t *testing.T) (*models.Registry, *extras.MemoryRegistry, []*models.Object, []*models.Object) {
	t.Helper()
	r := modeltest.Registry()
	deviceCT := modeltest.Model(r, "dcim.device").ContentType()
	prefixCT := modeltest.Model(r, "ipam.prefix").ContentType()

	devices := []*models.Object{
		modeltest.Object(r, "dcim.device", map[string]any{"name": "edge-01"}),
		modeltest.Object(r, "dcim.device", map[string]any{"name": "edge-02"}),
		modeltest.Object(r, "dcim.device", map[string]any{"name": "edge-03"}),
	}
	prefixes := []*models.Object{
		modeltest.Object(r, "ipam.prefix", map[string]any{"prefix": "10.0.0.0/24"}),
		modeltest.Object(r, "ipam.prefix", map[string]any{"prefix": "10.0.1.0/24"}),
		modeltest.Object(r, "ipam.prefix", map[string]any{"prefix": "10.0.2.0/24"}),
	}

	reg := extras.NewMemoryRegistry()
	require.NoError(t, reg.AddRelationship(&extras.Relationship{
		Key: "device_prefixes", Label: "Prefixes", Type: extras.RelationshipOneToMany,
		SourceType: deviceCT, DestinationType: prefixCT, SourceLabel: "Assigned prefixes", DestinationLabel: "Owner",
	}))
	require.NoError(t, reg.AddRelationship(&extras.Relationship{
		Key: "device_peers", Label: "Peers", Type: extras.RelationshipSymmetricManyToMany,
		SourceType: deviceCT, DestinationType: deviceCT,
	}))
	link := func(rel string, src, dst *models.Object) {
		require.NoError(t, reg.AddAssociation(&extras.Association{
			Relationship: rel,
			SourceType:   src.Model().ContentType(), SourceID: src.PK(),
			DestinationType: dst.Model().ContentType(), DestinationID: dst.PK(),
		}))
	}
	link("device_prefixes", devices[0], prefixes[0])
	link("device_prefixes", devices[0], prefixes[1])
	link("device_prefixes", devices[1], prefixes[2])
	link("device_peers", devices[0], devices[1])
	return r, reg, devices, prefixes
}

func TestRelationshipColumns(t *testing.T) {
	ctx := context.Background()
	r, reg, devices, prefixes := relationshipFixture(t)

	deviceTable, err := New(deviceSpec(r), nil, WithRegistry(reg))
	require.NoError(t, err)
	assert.Equal(t, []string{"pk", "name", "status", "cr_device_peers_peer", "cr_device_prefixes_src", "actions"}, deviceTable.Columns())
	assert.Equal(t, "Assigned prefixes", deviceTable.VerboseName("cr_device_prefixes_src"))

	t.Run("many side renders a count linked to the associations", func(t *testing.T) {
		cell, err := deviceTable.RenderCell(ctx, devices[0], "cr_device_prefixes_src")
		require.NoError(t, err)
		assert.Equal(t, "2 prefixes", cell.Text)
		assert.Equal(t,
			`<a href="/extras/relationshipassociation/?relationship=device_prefixes&amp;source_id=`+devices[0].PK().String()+`">2 prefixes</a>`,
			string(cell.HTML))

		cell, err = deviceTable.RenderCell(ctx, devices[1], "cr_device_prefixes_src")
		require.NoError(t, err)
		assert.Equal(t, "1 prefix", cell.Text)
	})

	t.Run("no associations", func(t *testing.T) {
		cell, err := deviceTable.RenderCell(ctx, devices[2], "cr_device_prefixes_src")
		require.NoError(t, err)
		assert.Equal(t, Placeholder, string(cell.HTML))
	})

	t.Run("symmetric peers from either end", func(t *testing.T) {
		for _, d := range devices[:2] {
			cell, err := deviceTable.RenderCell(ctx, d, "cr_device_peers_peer")
			require.NoError(t, err)
			assert.Equal(t, "1 device", cell.Text)
			assert.Contains(t, string(cell.HTML), "peer_id="+d.PK().String())
		}
	})

	t.Run("one side links the peer", func(t *testing.T) {
		prefixSpec := &TableSpec{
			Name:    "PrefixTable",
			Model:   modeltest.Model(r, "ipam.prefix"),
			Columns: []Column{LinkColumn("prefix", "prefix")},
		}
		prefixTable, err := New(prefixSpec, nil, WithRegistry(reg))
		require.NoError(t, err)
		assert.Equal(t, []string{"prefix", "cr_device_prefixes_dst"}, prefixTable.VisibleColumns())

		cell, err := prefixTable.RenderCell(ctx, prefixes[0], "cr_device_prefixes_dst")
		require.NoError(t, err)
		assert.Equal(t, "device "+devices[0].PK().String(), cell.Text)
		assert.Contains(t, string(cell.HTML), `href="/dcim/device/`+devices[0].PK().String()+`/"`)

		byID := map[uuid.UUID]models.Record{}
		for _, d := range devices {
			byID[d.PK()] = d
		}
		prefixTable, err = New(prefixSpec, nil, WithRegistry(reg), WithObjectResolver(
			func(_ context.Context, _ models.ContentType, id uuid.UUID) (models.Record, error) {
				return byID[id], nil
			}))
		require.NoError(t, err)
		cell, err = prefixTable.RenderCell(ctx, prefixes[0], "cr_device_prefixes_dst")
		require.NoError(t, err)
		assert.Equal(t, "edge-01", cell.Text)
		assert.Equal(t, `<a href="/dcim/device/`+devices[0].PK().String()+`/">edge-01</a>`, string(cell.HTML))
	})
}

func TestExtensionColumns(t *testing.T) {
	ctx := context.Background()
	r := modeltest.Registry()
	deviceCT := modeltest.Model(r, "dcim.device").ContentType()

	reg := extras.NewMemoryRegistry()
	require.NoError(t, reg.AddCustomField(&extras.CustomField{Key: "owner", Label: "Owner", Type: extras.CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}}))
	require.NoError(t, reg.AddCustomField(&extras.CustomField{Key: "monitored", Label: "Monitored", Type: extras.CustomFieldTypeBoolean, ContentTypes: []models.ContentType{deviceCT}, Weight: 200}))
	require.NoError(t, reg.AddComputedField(&extras.ComputedField{Key: "shout", Label: "Shout", ContentType: deviceCT, Template: "obj.name.toUpperCase()"}))
	require.NoError(t, reg.AddComputedField(&extras.ComputedField{Key: "broken", Label: "Broken", ContentType: deviceCT, Template: "obj.nope.deeper"}))

	tbl, err := New(deviceSpec(r), nil, WithRegistry(reg))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "status", "cf_owner", "cf_monitored", "cpf_broken", "cpf_shout", "actions"}, tbl.VisibleColumns())

	c, ok := tbl.Column("cpf_shout")
	require.True(t, ok)
	assert.False(t, c.Orderable)
	tbl.SetOrderBy("cpf_shout")
	assert.Empty(t, tbl.OrderBy())

	dev := modeltest.Object(r, "dcim.device", map[string]any{"name": "edge-01"})
	dev.CustomFieldData["owner"] = "<ops>"

	cell, err := tbl.RenderCell(ctx, dev, "cf_owner")
	require.NoError(t, err)
	assert.Equal(t, "<ops>", cell.Text)
	assert.Equal(t, "&lt;ops&gt;", string(cell.HTML))

	cell, err = tbl.RenderCell(ctx, dev, "cf_monitored")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, string(cell.HTML), "unset custom field")

	cell, err = tbl.RenderCell(ctx, dev, "cpf_shout")
	require.NoError(t, err)
	assert.Equal(t, "EDGE-01", cell.Text)

	cell, err = tbl.RenderCell(ctx, dev, "cpf_broken")
	require.NoError(t, err, "computed field failures do not fail the render")
	assert.Equal(t, Placeholder, string(cell.HTML))

	_, err = tbl.RenderCell(ctx, dev, "bogus")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCustomFieldRendering(t *testing.T) {
	r := modeltest.Registry()
	device := modeltest.Model(r, "dcim.device")
	tbl, err := New(&TableSpec{Name: "DeviceTable", Model: device}, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		typ      extras.CustomFieldType
		value    any
		wantText string
		wantHTML string
	}{
		{"boolean true", extras.CustomFieldTypeBoolean, true, "True", booleanTrue},
		{"boolean false", extras.CustomFieldTypeBoolean, false, "False", booleanFalse},
		{"select", extras.CustomFieldTypeSelect, "gold", "gold", `<span class="label label-default">gold</span>`},
		{"multi-select", extras.CustomFieldTypeMultiSelect, []any{"a", "b"}, "a, b",
			`<span class="label label-default">a</span> <span class="label label-default">b</span>`},
		{"url", extras.CustomFieldTypeURL, "https://example.com/?a=1&b=2", "https://example.com/?a=1&b=2",
			`<a href="https://example.com/?a=1&amp;b=2">https://example.com/?a=1&amp;b=2</a>`},
		{"unsafe url", extras.CustomFieldTypeURL, "javascript:alert(1)", "javascript:alert(1)",
			`<a href="about:invalid#TemplFailedSanitizationURL">javascript:alert(1)</a>`},
		{"json", extras.CustomFieldTypeJSON, map[string]any{"b": 1, "a": []any{2, 1}}, `{"a":[2,1],"b":1}`,
			`<code>{&#34;a&#34;:[2,1],&#34;b&#34;:1}</code>`},
		{"integer", extras.CustomFieldTypeInteger, 42, "42", "42"},
		{"text", extras.CustomFieldTypeText, "a & b", "a & b", "a &amp; b"},
		{"empty text", extras.CustomFieldTypeText, "", "", Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := &Column{Name: "cf_x", Kind: KindCustomField, CustomField: &extras.CustomField{Key: "x", Type: tt.typ}}
			dev := modeltest.Object(r, "dcim.device", nil)
			dev.CustomFieldData["x"] = tt.value
			cell := tbl.render(context.Background(), col, dev)
			assert.Equal(t, tt.wantText, cell.Text)
			assert.Equal(t, tt.wantHTML, string(cell.HTML))
		})
	}
}

func TestColumnKinds(t *testing.T) {
	ctx := context.Background()
	r := modeltest.Registry()
	status := modeltest.Model(r, "extras.status")
	tbl, err := New(&TableSpec{Name: "StatusTable", Model: status}, nil)
	require.NoError(t, err)

	ct := func(app, model string) *models.Object {
		return modeltest.Object(r, "contenttypes.contenttype", map[string]any{"app_label": app, "model": model})
	}
	active := modeltest.Object(r, "extras.status", map[string]any{
		"name":          "Active <1>",
		"color":         "4CAF50",
		"content_types": []models.Record{ct("ipam", "prefix"), ct("dcim", "location"), ct("dcim", "device")},
	})
	empty := modeltest.Object(r, "extras.status", map[string]any{"name": "Empty", "color": "bogus"})

	t.Run("text is escaped", func(t *testing.T) {
		cell := tbl.render(ctx, &Column{Name: "name", Kind: KindText}, active)
		assert.Equal(t, "Active &lt;1&gt;", string(cell.HTML))
		cell = tbl.render(ctx, &Column{Name: "missing", Kind: KindText}, active)
		assert.Equal(t, Placeholder, string(cell.HTML))
	})

	t.Run("link", func(t *testing.T) {
		cell := tbl.render(ctx, &Column{Name: "name", Kind: KindLink}, active)
		assert.Equal(t, `<a href="/extras/status/`+active.PK().String()+`/">Active &lt;1&gt;</a>`, string(cell.HTML))
	})

	t.Run("toggle", func(t *testing.T) {
		c := ToggleColumn()
		cell := tbl.render(ctx, &c, active)
		assert.Equal(t, `<input type="checkbox" name="pk" value="`+active.PK().String()+`" />`, string(cell.HTML))
		assert.Equal(t, ToggleHeader(), tblHeader(t, r))
	})

	t.Run("boolean has two states", func(t *testing.T) {
		tests := []struct {
			value any
			want  string
		}{
			{true, booleanTrue},
			{"True", booleanTrue},
			{1, booleanTrue},
			{false, booleanFalse},
			{nil, booleanFalse},
			{0, booleanFalse},
			{"", booleanFalse},
		}
		for _, tt := range tests {
			dev := modeltest.Object(r, "dcim.interface", map[string]any{"enabled": tt.value})
			c := BooleanColumn("enabled", "enabled")
			assert.Equal(t, tt.want, string(tbl.render(ctx, &c, dev).HTML), "%v", tt.value)
		}
	})

	t.Run("linked count", func(t *testing.T) {
		manufacturer := modeltest.Object(r, "dcim.manufacturer", map[string]any{"name": "Acme", "device_types": []models.Record{
			modeltest.Object(r, "dcim.devicetype", nil),
			modeltest.Object(r, "dcim.devicetype", nil),
		}})
		c := LinkedCountColumn("device_types", "device_types", "dcim:devicetype_list", map[string]string{"manufacturer": "name"})
		cell := tbl.render(ctx, &c, manufacturer)
		assert.Equal(t, "2", cell.Text)
		assert.Equal(t, `<a href="/dcim/devicetype/?manufacturer=Acme">2</a>`, string(cell.HTML))

		none := modeltest.Object(r, "dcim.manufacturer", map[string]any{"name": "None", "device_types": []models.Record{}})
		cell = tbl.render(ctx, &c, none)
		assert.Equal(t, "0", string(cell.HTML))

		counted := modeltest.Object(r, "dcim.manufacturer", map[string]any{"name": "Counted", "device_count": 0})
		c.Accessor = "device_count"
		assert.Equal(t, "0", string(tbl.render(ctx, &c, counted).HTML))
	})

	t.Run("content types", func(t *testing.T) {
		c := ContentTypesColumn("content_types", "content_types")
		cell := tbl.render(ctx, &c, active)
		assert.Equal(t, "dcim | device, dcim | location, ipam | prefix", cell.Text)
		assert.Equal(t, "dcim | device, dcim | location, ipam | prefix", string(cell.HTML))

		c.SortContentTypes = false
		assert.Equal(t, "ipam | prefix, dcim | location, dcim | device", tbl.render(ctx, &c, active).Text)

		c.SortContentTypes = true
		c.TruncateWords = 4
		cell = tbl.render(ctx, &c, active)
		assert.Equal(t, "dcim | device, dcim…", string(cell.HTML))
		assert.Equal(t, "dcim | device, dcim | location, ipam | prefix", cell.Text)

		assert.Equal(t, Placeholder, string(tbl.render(ctx, &c, empty).HTML))
	})

	t.Run("tags", func(t *testing.T) {
		dev := modeltest.Object(r, "dcim.device", map[string]any{"tags": []models.Record{
			modeltest.Object(r, "extras.tag", map[string]any{"name": "core", "color": "FF0000"}),
			modeltest.Object(r, "extras.tag", map[string]any{"name": "edge", "color": "red"}),
		}})
		c := TagsColumn("tags", "tags")
		cell := tbl.render(ctx, &c, dev)
		assert.Equal(t, "core, edge", cell.Text)
		assert.Equal(t, `<span class="badge" style="background-color: #ff0000">core</span> <span class="badge">edge</span>`, string(cell.HTML))
	})

	t.Run("color", func(t *testing.T) {
		c := ColorColumn("color", "color")
		cell := tbl.render(ctx, &c, active)
		assert.Equal(t, "4caf50", cell.Text)
		assert.Equal(t, `<span class="color-label" style="background-color: #4caf50">&nbsp;</span>`, string(cell.HTML))
		assert.Equal(t, Placeholder, string(tbl.render(ctx, &c, empty).HTML))
	})

	t.Run("actions", func(t *testing.T) {
		c := ActionsColumn(ButtonEdit)
		cell := tbl.render(ctx, &c, active)
		assert.Equal(t,
			`<a href="/extras/status/`+active.PK().String()+`/edit/" class="btn btn-xs btn-warning" title="Edit"><i class="mdi mdi-pencil"></i></a>`,
			string(cell.HTML))
	})
}

func tblHeader(t *testing.T, r *models.Registry) any {
	t.Helper()
	tbl, err := New(deviceSpec(r), nil)
	require.NoError(t, err)
	return tbl.Header("pk")
}

func TestSpecValidation(t *testing.T) {
	r := modeltest.Registry()
	device := modeltest.Model(r, "dcim.device")

	tests := []struct {
		name string
		spec *TableSpec
	}{
		{"nil", nil},
		{"bad name", &TableSpec{Name: "device table", Model: device}},
		{"no model", &TableSpec{Name: "DeviceTable"}},
		{"duplicate column", &TableSpec{Name: "DeviceTable", Model: device, Columns: []Column{TextColumn("name", ""), TextColumn("name", "")}}},
		{"unnamed column", &TableSpec{Name: "DeviceTable", Model: device, Columns: []Column{{}}}},
		{"unknown kind", &TableSpec{Name: "DeviceTable", Model: device, Columns: []Column{{Name: "x", Kind: ColumnKind(99)}}}},
		{"linked count without view", &TableSpec{Name: "DeviceTable", Model: device, Columns: []Column{{Name: "x", Kind: KindLinkedCount}}}},
		{"custom field column without field", &TableSpec{Name: "DeviceTable", Model: device, Columns: []Column{{Name: "x", Kind: KindCustomField}}}},
		{"undeclared default column", &TableSpec{Name: "DeviceTable", Model: device, Columns: []Column{TextColumn("name", "")}, DefaultColumns: []string{"status"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec, nil)
			assert.ErrorIs(t, err, ErrInvalidTableSpec)
		})
	}

	_, err := New(deviceSpec(r), nil, WithExtraColumns(Column{Name: "x", Kind: KindRelationship}))
	assert.ErrorIs(t, err, ErrInvalidTableSpec)
}

func TestSpecForModel(t *testing.T) {
	r := modeltest.Registry()
	spec := SpecForModel(modeltest.Model(r, "dcim.devicetype"), ColumnDefaults{SortContentTypes: true})
	require.NoError(t, spec.Validate())
	assert.Equal(t, "DevicetypeTable", spec.Name)

	var names []string
	kinds := map[string]ColumnKind{}
	for _, c := range spec.Columns {
		names = append(names, c.Name)
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, []string{"pk", "manufacturer", "model", "u_height", "is_full_depth", "tags", "devices", "actions"}, names)
	assert.Equal(t, []string{"pk", "manufacturer", "model", "u_height", "is_full_depth", "actions"}, spec.DefaultColumns)
	assert.Equal(t, KindLink, kinds["model"])
	assert.Equal(t, KindBoolean, kinds["is_full_depth"])
	assert.Equal(t, KindTags, kinds["tags"])
	assert.Equal(t, KindLinkedCount, kinds["devices"])
	assert.Equal(t, map[string]string{"device_type_id": "pk"}, spec.Columns[6].URLParams)

	status := SpecForModel(modeltest.Model(r, "extras.status"), ColumnDefaults{SortContentTypes: true, ContentTypesTruncateWords: 10})
	for _, c := range status.Columns {
		if c.Name == "content_types" {
			assert.Equal(t, KindContentTypes, c.Kind)
			assert.True(t, c.SortContentTypes)
			assert.Equal(t, 10, c.TruncateWords)
		}
		if c.Name == "color" {
			assert.Equal(t, KindColor, c.Kind)
		}
	}

	location := SpecForModel(modeltest.Model(r, "dcim.location"), ColumnDefaults{})
	for _, c := range location.Columns {
		assert.NotEqual(t, "notes", c.Name, "generic relations have no column")
		if c.Name == "name" {
			assert.True(t, c.TreeNode)
		}
	}
}

func TestParseColumnKind(t *testing.T) {
	for k := KindText; k <= KindRelationship; k++ {
		parsed, ok := ParseColumnKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseColumnKind("bogus")
	assert.False(t, ok)
}

func TestPathResolver(t *testing.T) {
	id := uuid.MustParse("0190d6c4-0000-7000-8000-000000000001")
	r := PathResolver{Prefix: "/ui/"}
	assert.Equal(t, "/ui/dcim/device/", r.Reverse("dcim:device_list", nil))
	assert.Equal(t, "/ui/dcim/device/add/", r.Reverse("dcim:device_add", nil))
	assert.Equal(t, "/ui/dcim/device/?a=1&b=2", r.Reverse("dcim:device_list", map[string][]string{"b": {"2"}, "a": {"1"}}))
	assert.Equal(t, "/ui/dcim/device/"+id.String()+"/", r.ObjectURL(models.ContentType{AppLabel: "dcim", Model: "device"}, id))
}
