package fixtures

import (
	"fmt"

	"github.com/nautobot/nautobot-sub011/internal/core/tables"
)

// tableSpec converts a table declaration into a validated TableSpec.
func (ds *Dataset) tableSpec(tf *TableFixture) (*tables.TableSpec, error) {
	m, ok := ds.Models.Get(tf.Model)
	if !ok {
		return nil, ErrInvalidTable.Msg(fmt.Sprintf("%s: unknown model %s", tf.Name, tf.Model))
	}
	if _, dup := ds.tables[m.Label()]; dup {
		return nil, ErrInvalidTable.Msg(fmt.Sprintf("%s: model %s already has a table", tf.Name, m.Label()))
	}
	spec := &tables.TableSpec{Name: tf.Name, Model: m, DefaultColumns: tf.DefaultColumns}
	for i := range tf.Columns {
		spec.Columns = append(spec.Columns, column(&tf.Columns[i]))
	}
	if err := spec.Validate(); err != nil {
		return nil, ErrInvalidTable.Err(err)
	}
	return spec, nil
}

// column builds a column through the constructor of its kind, then applies overrides.
func column(cf *ColumnFixture) tables.Column {
	accessor := cf.Accessor
	if accessor == "" {
		accessor = cf.Name
	}
	kind, _ := tables.ParseColumnKind(cf.Kind)

	var c tables.Column
	switch kind {
	case tables.KindLink:
		c = tables.LinkColumn(cf.Name, accessor)
	case tables.KindToggle:
		c = tables.ToggleColumn()
		c.Name = cf.Name
	case tables.KindBoolean:
		c = tables.BooleanColumn(cf.Name, accessor)
	case tables.KindLinkedCount:
		c = tables.LinkedCountColumn(cf.Name, accessor, cf.ViewName, cf.URLParams)
	case tables.KindContentTypes:
		c = tables.ContentTypesColumn(cf.Name, accessor)
		c.TruncateWords = cf.TruncateWords
		if cf.SortItems != nil {
			c.SortContentTypes = *cf.SortItems
		}
	case tables.KindTags:
		c = tables.TagsColumn(cf.Name, accessor)
	case tables.KindColor:
		c = tables.ColorColumn(cf.Name, accessor)
	case tables.KindActions:
		c = tables.ActionsColumn(cf.Buttons...)
		c.Name = cf.Name
	default:
		c = tables.TextColumn(cf.Name, accessor)
	}
	c.VerboseName = cf.VerboseName
	if cf.Orderable != nil {
		c.Orderable = *cf.Orderable
	}
	if len(cf.OrderBy) > 0 {
		c.OrderBy = cf.OrderBy
	}
	c.Hidden = c.Hidden || cf.Hidden
	c.TreeNode = cf.TreeNode
	return c
}
