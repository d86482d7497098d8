package extras

import (
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// CustomFieldType is the data type tag of a custom field. Rendering is chosen by tag.
type CustomFieldType string

const (
	CustomFieldTypeText        CustomFieldType = "text"
	CustomFieldTypeInteger     CustomFieldType = "integer"
	CustomFieldTypeBoolean     CustomFieldType = "boolean"
	CustomFieldTypeDate        CustomFieldType = "date"
	CustomFieldTypeURL         CustomFieldType = "url"
	CustomFieldTypeSelect      CustomFieldType = "select"
	CustomFieldTypeMultiSelect CustomFieldType = "multi-select"
	CustomFieldTypeJSON        CustomFieldType = "json"
	CustomFieldTypeMarkdown    CustomFieldType = "markdown"
)

// CustomField is a user-defined attribute stored in a record's custom field data.
type CustomField struct {
	Key          string               `json:"key" mapstructure:"key" validate:"required,featurekey,max=50"`
	Label        string               `json:"label" mapstructure:"label" validate:"required,max=50"`
	Type         CustomFieldType      `json:"type" mapstructure:"type" validate:"required,oneof=text integer boolean date url select multi-select json markdown"`
	ContentTypes []models.ContentType `json:"content_types" mapstructure:"content_types" validate:"required,min=1,dive"`
	Description  string               `json:"description,omitempty" mapstructure:"description"`
	Weight       int                  `json:"weight" mapstructure:"weight"`
	Choices      []string             `json:"choices,omitempty" mapstructure:"choices" validate:"required_if=Type select,required_if=Type multi-select"`
	Default      any                  `json:"default,omitempty" mapstructure:"default"`
}

// AppliesTo reports whether the field is enabled for ct.
func (cf *CustomField) AppliesTo(ct models.ContentType) bool {
	return containsContentType(cf.ContentTypes, ct)
}

// ComputedField is a read-only value computed from a record by an expression.
type ComputedField struct {
	Key           string             `json:"key" mapstructure:"key" validate:"required,featurekey,max=50"`
	Label         string             `json:"label" mapstructure:"label" validate:"required,max=100"`
	ContentType   models.ContentType `json:"content_type" mapstructure:"content_type" validate:"required"`
	Template      string             `json:"template" mapstructure:"template" validate:"required,max=500"`
	FallbackValue string             `json:"fallback_value,omitempty" mapstructure:"fallback_value"`
	Weight        int                `json:"weight" mapstructure:"weight"`
}

func containsContentType(cts []models.ContentType, ct models.ContentType) bool {
	for _, c := range cts {
		if c == ct {
			return true
		}
	}
	return false
}
