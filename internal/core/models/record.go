package models

import (
	"fmt"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
)

// CustomFieldDataAttr is the attribute holding a record's custom field values.
const CustomFieldDataAttr = "_custom_field_data"

// Record is a loaded row of some model.
type Record interface {
	Model() *Model
	PK() uuid.UUID
	// Attr returns the value of a field or attribute. To-one relations hold a Record
	// (or nil), to-many relations hold []Record.
	Attr(name string) (any, bool)
}

// Object is the map-backed Record implementation.
type Object struct {
	model           *Model
	ID              uuid.UUID
	values          map[string]any
	CustomFieldData map[string]any
}

// NewObject creates a record of m. A nil id is replaced by a fresh UUID.
func NewObject(m *Model, id uuid.UUID, values map[string]any) *Object {
	if id == uuid.Nil {
		id = uuid.New()
	}
	o := &Object{model: m, ID: id, values: make(map[string]any, len(values)), CustomFieldData: map[string]any{}}
	for k, v := range values {
		o.Set(k, v)
	}
	return o
}

func (o *Object) Model() *Model  { return o.model }
func (o *Object) PK() uuid.UUID { return o.ID }

// Set assigns an attribute. Typed nil records are normalised to untyped nil.
func (o *Object) Set(name string, v any) {
	if IsNilRecord(v) {
		v = nil
	}
	o.values[name] = v
}

// Attr implements Record.
func (o *Object) Attr(name string) (any, bool) {
	switch name {
	case "pk", "id":
		return o.ID, true
	case CustomFieldDataAttr:
		return o.CustomFieldData, true
	}
	v, ok := o.values[name]
	if !ok {
		if _, isField := o.model.Field(name); isField {
			return nil, true
		}
	}
	return v, ok
}

func (o *Object) String() string {
	return Display(o)
}

// IsNilRecord reports whether v is nil or a typed nil Record.
func IsNilRecord(v any) bool {
	if v == nil {
		return true
	}
	if o, ok := v.(*Object); ok && o == nil {
		return true
	}
	return false
}

// Display returns the human label of rec: its display field, falling back to
// "name", then to the model name and primary key.
func Display(rec Record) string {
	if IsNilRecord(rec) {
		return ""
	}
	m := rec.Model()
	field := m.DisplayField
	if field == "" {
		field = "name"
	}
	if v, ok := rec.Attr(field); ok && v != nil {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%s %s", m.Verbose(), rec.PK())
}
