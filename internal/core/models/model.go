// Package models describes model metadata (fields, constraints, content types) and the
// records that the natural-key codec and the table engine operate on.
package models

import (
	"strings"
)

// ContentType identifies a model across the platform.
type ContentType struct {
	AppLabel string `json:"app_label" mapstructure:"app_label"`
	Model    string `json:"model" mapstructure:"model"`
}

// String returns the "app_label.model" form.
func (ct ContentType) String() string {
	return ct.AppLabel + "." + ct.Model
}

// AppLabeledName returns the "app_label | model" display form.
func (ct ContentType) AppLabeledName() string {
	return ct.AppLabel + " | " + ct.Model
}

// IsZero reports whether ct is unset.
func (ct ContentType) IsZero() bool {
	return ct.AppLabel == "" && ct.Model == ""
}

// ParseContentType parses an "app_label.model" label.
func ParseContentType(label string) (ContentType, bool) {
	app, model, ok := strings.Cut(strings.ToLower(strings.TrimSpace(label)), ".")
	if !ok || app == "" || model == "" {
		return ContentType{}, false
	}
	return ContentType{AppLabel: app, Model: model}, true
}

// UniqueConstraint is a named multi-column uniqueness constraint.
type UniqueConstraint struct {
	Name   string   `json:"name" mapstructure:"name"`
	Fields []string `json:"fields" mapstructure:"fields"`
}

// DefaultTreeParent is the field linking a tree model record to its parent.
const DefaultTreeParent = "parent"

// Model is the metadata of one record type.
type Model struct {
	AppLabel          string             `json:"app_label" mapstructure:"app_label"`
	Name              string             `json:"name" mapstructure:"name"`
	VerboseName       string             `json:"verbose_name,omitempty" mapstructure:"verbose_name"`
	VerboseNamePlural string             `json:"verbose_name_plural,omitempty" mapstructure:"verbose_name_plural"`
	Fields            []*Field           `json:"fields" mapstructure:"fields"`
	UniqueConstraints []UniqueConstraint `json:"constraints,omitempty" mapstructure:"constraints"`
	UniqueTogether    [][]string         `json:"unique_together,omitempty" mapstructure:"unique_together"`
	NaturalKeyFields  []string           `json:"natural_key_fields,omitempty" mapstructure:"natural_key_fields"`
	DisplayField      string             `json:"display_field,omitempty" mapstructure:"display_field"`
	Tree              bool               `json:"tree,omitempty" mapstructure:"tree"`
	TreeParent        string             `json:"tree_parent,omitempty" mapstructure:"tree_parent"`

	registry *Registry
	index    map[string]*Field
}

// Label returns "app_label.name".
func (m *Model) Label() string {
	return m.AppLabel + "." + m.Name
}

func (m *Model) String() string {
	return m.Label()
}

// ContentType returns the content type identifying m.
func (m *Model) ContentType() ContentType {
	return ContentType{AppLabel: m.AppLabel, Model: m.Name}
}

// Verbose returns the singular display name.
func (m *Model) Verbose() string {
	if m.VerboseName != "" {
		return m.VerboseName
	}
	return m.Name
}

// VerbosePlural returns the plural display name.
func (m *Model) VerbosePlural() string {
	if m.VerboseNamePlural != "" {
		return m.VerboseNamePlural
	}
	return m.Verbose() + "s"
}

// Field returns the field named name. "pk" resolves to the primary key field.
func (m *Model) Field(name string) (*Field, bool) {
	if name == "pk" {
		return m.PrimaryKey()
	}
	if m.index != nil {
		f, ok := m.index[name]
		return f, ok
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// PrimaryKey returns the field named "id", or the first opaque identifier field.
func (m *Model) PrimaryKey() (*Field, bool) {
	var first *Field
	for _, f := range m.Fields {
		if f.Name == "id" {
			return f, true
		}
		if first == nil && f.Type.IsOpaqueID() {
			first = f
		}
	}
	return first, first != nil
}

// FieldKind classifies name on m. Names that are not fields of m are KindUnknown.
func (m *Model) FieldKind(name string) FieldKind {
	return Classify(m, name)
}

// Classify is the pure field-kind decision over (model, field name).
func Classify(m *Model, name string) FieldKind {
	if m == nil {
		return KindUnknown
	}
	f, ok := m.Field(name)
	if !ok {
		return KindUnknown
	}
	return f.Kind()
}

// Related returns the model at the other end of the relation field name.
func (m *Model) Related(name string) (*Model, bool) {
	f, ok := m.Field(name)
	if !ok || f.Related == "" || m.registry == nil {
		return nil, false
	}
	return m.registry.Get(f.Related)
}

// TreeParentField returns the parent link field name for tree models.
func (m *Model) TreeParentField() string {
	if m.TreeParent != "" {
		return m.TreeParent
	}
	return DefaultTreeParent
}

// Registry returns the registry m was registered with, or nil.
func (m *Model) Registry() *Registry {
	return m.registry
}
