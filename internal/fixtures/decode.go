package fixtures

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"sigs.k8s.io/yaml"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// File is the document layout of a fixture file. YAML and JSON are both accepted.
type File struct {
	Models         []*models.Model         `mapstructure:"models"`
	CustomFields   []*extras.CustomField   `mapstructure:"custom_fields"`
	ComputedFields []*extras.ComputedField `mapstructure:"computed_fields"`
	Relationships  []*extras.Relationship  `mapstructure:"relationships"`
	Objects        []ObjectFixture         `mapstructure:"objects" validate:"dive"`
	Associations   []AssociationFixture    `mapstructure:"associations" validate:"dive"`
	Tables         []TableFixture          `mapstructure:"tables" validate:"dive"`
}

// ObjectFixture declares one record. Relation fields hold the composite key or the
// UUID of a previously declared record; to-many relations hold a list of them.
type ObjectFixture struct {
	Model        string         `mapstructure:"model" validate:"required"`
	ID           string         `mapstructure:"id" validate:"omitempty,uuid"`
	Fields       map[string]any `mapstructure:"fields"`
	CustomFields map[string]any `mapstructure:"custom_fields"`
}

// AssociationFixture links two records through a relationship. Source and destination
// are composite keys or UUIDs within the relationship's content types.
type AssociationFixture struct {
	Relationship string `mapstructure:"relationship" validate:"required"`
	Source       string `mapstructure:"source" validate:"required"`
	Destination  string `mapstructure:"destination" validate:"required"`
}

// TableFixture declares a table for a model. Models without one get a generated table.
type TableFixture struct {
	Name           string          `mapstructure:"name" validate:"required"`
	Model          string          `mapstructure:"model" validate:"required"`
	Columns        []ColumnFixture `mapstructure:"columns" validate:"required,min=1,dive"`
	DefaultColumns []string        `mapstructure:"default_columns"`
}

// ColumnFixture declares one column of a TableFixture.
type ColumnFixture struct {
	Name          string            `mapstructure:"name" validate:"required"`
	Kind          string            `mapstructure:"kind" validate:"omitempty,oneof=text link toggle boolean linked-count content-types tags color actions"`
	Accessor      string            `mapstructure:"accessor"`
	VerboseName   string            `mapstructure:"verbose_name"`
	Orderable     *bool             `mapstructure:"orderable"`
	OrderBy       []string          `mapstructure:"order_by"`
	Hidden        bool              `mapstructure:"hidden"`
	TreeNode      bool              `mapstructure:"tree_node"`
	ViewName      string            `mapstructure:"view_name"`
	URLParams     map[string]string `mapstructure:"url_params"`
	SortItems     *bool             `mapstructure:"sort_items"`
	TruncateWords int               `mapstructure:"truncate_words" validate:"min=0"`
	Buttons       []string          `mapstructure:"buttons" validate:"dive,oneof=edit delete"`
}

var (
	contentTypeType = reflect.TypeOf(models.ContentType{})
	uuidType        = reflect.TypeOf(uuid.UUID{})
)

// stringHook decodes "app_label.model" labels into content types and strings into UUIDs.
func stringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	switch to {
	case contentTypeType:
		ct, ok := models.ParseContentType(s)
		if !ok {
			return nil, ErrParseFixtures.Msg("invalid content type " + s)
		}
		return ct, nil
	case uuidType:
		return uuid.Parse(s)
	}
	return data, nil
}

// Parse decodes a fixture document.
func Parse(data []byte) (*File, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ErrParseFixtures.Err(err)
	}
	f := &File{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(stringHook),
		ErrorUnused:      true,
		WeaklyTypedInput: false,
		Result:           f,
	})
	if err != nil {
		return nil, ErrParseFixtures.Err(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, ErrParseFixtures.Err(err)
	}
	if err := extras.V().Struct(f); err != nil {
		return nil, ErrParseFixtures.Err(err)
	}
	return f, nil
}
