package tables

import (
	"html/template"
	"strings"

	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// ColumnKind selects how a column renders. The set is closed; see renderers.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindLink
	KindToggle
	KindBoolean
	KindLinkedCount
	KindContentTypes
	KindTags
	KindColor
	KindActions
	KindCustomField
	KindComputedField
	KindRelationship
)

var kindNames = map[ColumnKind]string{
	KindText:          "text",
	KindLink:          "link",
	KindToggle:        "toggle",
	KindBoolean:       "boolean",
	KindLinkedCount:   "linked-count",
	KindContentTypes:  "content-types",
	KindTags:          "tags",
	KindColor:         "color",
	KindActions:       "actions",
	KindCustomField:   "custom-field",
	KindComputedField: "computed-field",
	KindRelationship:  "relationship",
}

func (k ColumnKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseColumnKind is the inverse of ColumnKind.String.
func ParseColumnKind(s string) (ColumnKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindText, false
}

// Names of the columns pinned to the edges of every display sequence.
const (
	ToggleColumnName  = "pk"
	ActionsColumnName = "actions"
)

// Prefixes of discovered extension columns.
const (
	CustomFieldPrefix   = "cf_"
	ComputedFieldPrefix = "cpf_"
	RelationshipPrefix  = "cr_"
)

// Placeholder is rendered for empty values.
const Placeholder = "—"

// Column describes one table column. Kind-specific options are ignored by other kinds.
type Column struct {
	Name        string
	Accessor    string // defaults to Name
	VerboseName string
	Orderable   bool
	OrderBy     []string // order keys used instead of the accessor
	Hidden      bool     // hidden unless named by default columns, extra columns or preferences
	Kind        ColumnKind

	// KindLink, KindText
	TreeNode bool // indent by tree depth while the table is in tree order

	// KindLinkedCount
	ViewName  string
	URLParams map[string]string // query parameter -> accessor on the record

	// KindContentTypes
	SortContentTypes bool
	TruncateWords    int

	// KindActions
	Buttons []string

	// extension columns
	CustomField   *extras.CustomField
	ComputedField *extras.ComputedField
	Relationship  *extras.Relationship
	Side          extras.RelationshipSide
}

// Action buttons understood by KindActions.
const (
	ButtonEdit   = "edit"
	ButtonDelete = "delete"
)

// accessor returns the parsed accessor path of c.
func (c *Column) accessor() []string {
	if c.Accessor != "" {
		return ParseAccessor(c.Accessor)
	}
	switch c.Kind {
	case KindActions, KindComputedField, KindRelationship:
		return nil
	}
	return ParseAccessor(c.Name)
}

// orderKeys returns the queryset order keys for c, descending when desc is set.
func (c *Column) orderKeys(desc bool) []string {
	keys := c.OrderBy
	if len(keys) == 0 {
		keys = []string{models.Path(c.accessor()).String()}
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if desc {
			if strings.HasPrefix(key, "-") {
				key = strings.TrimPrefix(key, "-")
			} else {
				key = "-" + key
			}
		}
		out = append(out, key)
	}
	return out
}

// verbose returns the header of c, derived from the model field the accessor ends in
// when no verbose name is declared.
func (c *Column) verbose(m *models.Model) string {
	if c.VerboseName != "" {
		return c.VerboseName
	}
	switch c.Kind {
	case KindToggle, KindActions:
		return ""
	}
	steps := c.accessor()
	cur := m
	for i, step := range steps {
		if cur == nil {
			break
		}
		f, ok := cur.Field(step)
		if !ok {
			break
		}
		if i == len(steps)-1 {
			return f.Verbose()
		}
		cur, _ = cur.Related(step)
	}
	return strings.ReplaceAll(c.Name, "_", " ")
}

// ColumnChoice is a name/header pair offered by a column picker.
type ColumnChoice struct {
	Name        string `json:"name"`
	VerboseName string `json:"verbose_name"`
}

// Cell is one rendered value: plain text for exports and an escaped markup fragment.
type Cell struct {
	Text string        `json:"text"`
	HTML template.HTML `json:"html"`
}

func placeholderCell() Cell {
	return Cell{HTML: Placeholder}
}

// TextColumn returns an orderable column rendering the escaped value at accessor.
func TextColumn(name, accessor string) Column {
	return Column{Name: name, Accessor: accessor, Orderable: true, Kind: KindText}
}

// LinkColumn returns an orderable column linking to the record, or to the related
// record the accessor resolves to.
func LinkColumn(name, accessor string) Column {
	return Column{Name: name, Accessor: accessor, Orderable: true, Kind: KindLink}
}

// ToggleColumn returns the row selection column. It is hidden unless shown explicitly.
func ToggleColumn() Column {
	return Column{Name: ToggleColumnName, Accessor: "pk", Hidden: true, Kind: KindToggle}
}

// BooleanColumn returns an orderable column rendering a yes/no glyph.
func BooleanColumn(name, accessor string) Column {
	return Column{Name: name, Accessor: accessor, Orderable: true, Kind: KindBoolean}
}

// LinkedCountColumn renders a count linked to viewName, with query parameters taken
// from the record.
func LinkedCountColumn(name, accessor, viewName string, params map[string]string) Column {
	return Column{Name: name, Accessor: accessor, Kind: KindLinkedCount, ViewName: viewName, URLParams: params}
}

// ContentTypesColumn renders a many-to-many of content types sorted by app label and model.
func ContentTypesColumn(name, accessor string) Column {
	return Column{Name: name, Accessor: accessor, Kind: KindContentTypes, SortContentTypes: true}
}

// TagsColumn renders a chip per tag.
func TagsColumn(name, accessor string) Column {
	return Column{Name: name, Accessor: accessor, Kind: KindTags}
}

// ColorColumn renders a color swatch for a hex color value.
func ColorColumn(name, accessor string) Column {
	return Column{Name: name, Accessor: accessor, Orderable: true, Kind: KindColor}
}

// ActionsColumn returns the trailing per-row buttons column.
func ActionsColumn(buttons ...string) Column {
	if len(buttons) == 0 {
		buttons = []string{ButtonEdit, ButtonDelete}
	}
	return Column{Name: ActionsColumnName, Kind: KindActions, Buttons: buttons}
}
