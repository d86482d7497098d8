package tables

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// Content types of the models rendered by dedicated column kinds.
var (
	tagContentType         = models.ContentType{AppLabel: "extras", Model: "tag"}
	contentTypeContentType = models.ContentType{AppLabel: "contenttypes", Model: "contenttype"}
)

// ColumnDefaults tunes the columns generated by SpecForModel.
type ColumnDefaults struct {
	SortContentTypes          bool
	ContentTypesTruncateWords int
}

// TableName returns the conventional table name of m, e.g. "DevicetypeTable".
func TableName(m *models.Model) string {
	return strings.ReplaceAll(cases.Title(language.Und).String(strings.ReplaceAll(m.Name, "_", " ")), " ", "") + "Table"
}

// SpecForModel derives a table from m's fields: a toggle column, a link on the display
// field, one column per field chosen by field type, and an actions column.
func SpecForModel(m *models.Model, defaults ColumnDefaults) *TableSpec {
	display := m.DisplayField
	if display == "" {
		if _, ok := m.Field("name"); ok {
			display = "name"
		}
	}

	spec := &TableSpec{Name: TableName(m), Model: m}
	spec.Columns = append(spec.Columns, ToggleColumn())
	defaultColumns := []string{ToggleColumnName}

	for _, f := range m.Fields {
		if f.Type.IsOpaqueID() {
			continue
		}
		c, ok := columnForField(m, f, display, defaults)
		if !ok {
			continue
		}
		spec.Columns = append(spec.Columns, c)
		if f.Kind() == models.KindScalar || f.Kind() == models.KindToOne {
			defaultColumns = append(defaultColumns, c.Name)
		}
	}

	spec.Columns = append(spec.Columns, ActionsColumn())
	spec.DefaultColumns = append(defaultColumns, ActionsColumnName)
	return spec
}

func columnForField(m *models.Model, f *models.Field, display string, defaults ColumnDefaults) (Column, bool) {
	var c Column
	switch f.Kind() {
	case models.KindScalar:
		switch {
		case f.Name == display:
			c = LinkColumn(f.Name, f.Name)
			c.TreeNode = m.Tree
		case f.Type == models.BooleanField:
			c = BooleanColumn(f.Name, f.Name)
		case f.Name == "color":
			c = ColorColumn(f.Name, f.Name)
		case f.Type == models.JSONField:
			return Column{}, false
		default:
			c = TextColumn(f.Name, f.Name)
		}
	case models.KindToOne:
		c = LinkColumn(f.Name, f.Name)
		c.OrderBy = orderKeysForRelation(m, f)
	case models.KindToMany:
		related, ok := m.Related(f.Name)
		if !ok {
			return Column{}, false
		}
		switch related.ContentType() {
		case tagContentType:
			c = TagsColumn(f.Name, f.Name)
		case contentTypeContentType:
			c = ContentTypesColumn(f.Name, f.Name)
			c.SortContentTypes = defaults.SortContentTypes
			c.TruncateWords = defaults.ContentTypesTruncateWords
		default:
			c = LinkedCountColumn(f.Name, f.Name, related.AppLabel+":"+related.Name+"_list", reverseFilter(m, related))
		}
	default:
		return Column{}, false
	}
	c.VerboseName = f.Verbose()
	return c, true
}

// orderKeysForRelation orders a foreign key column by the related display field.
func orderKeysForRelation(m *models.Model, f *models.Field) []string {
	related, ok := m.Related(f.Name)
	if !ok {
		return nil
	}
	display := related.DisplayField
	if display == "" {
		if _, ok := related.Field("name"); !ok {
			return nil
		}
		display = "name"
	}
	return []string{f.Name + models.PathSeparator + display}
}

// reverseFilter returns the query parameters selecting the related records of a record of m.
func reverseFilter(m *models.Model, related *models.Model) map[string]string {
	for _, rf := range related.Fields {
		if rf.Kind() == models.KindToOne && rf.Related == m.Label() {
			return map[string]string{rf.Name + "_id": "pk"}
		}
	}
	return map[string]string{m.Name + "_id": "pk"}
}
