package models

import "strings"

// FieldType names the storage/relation type of a model field.
type FieldType string

const (
	AutoField         FieldType = "AutoField"
	BigAutoField      FieldType = "BigAutoField"
	UUIDField         FieldType = "UUIDField"
	CharField         FieldType = "CharField"
	TextField         FieldType = "TextField"
	SlugField         FieldType = "SlugField"
	IntegerField      FieldType = "IntegerField"
	FloatField        FieldType = "FloatField"
	BooleanField      FieldType = "BooleanField"
	DateField         FieldType = "DateField"
	DateTimeField     FieldType = "DateTimeField"
	JSONField         FieldType = "JSONField"
	ForeignKey        FieldType = "ForeignKey"
	OneToOneField     FieldType = "OneToOneField"
	ManyToManyField   FieldType = "ManyToManyField"
	ReverseForeignKey FieldType = "ManyToOneRel"
	ReverseOneToOne   FieldType = "OneToOneRel"
	ReverseManyToMany FieldType = "ManyToManyRel"
	GenericForeignKey FieldType = "GenericForeignKey"
	GenericRelation   FieldType = "GenericRelation"
)

// FieldKind classifies a field for traversal purposes.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindScalar
	KindToOne
	KindToMany
	KindGeneric
)

func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindToOne:
		return "to-one"
	case KindToMany:
		return "to-many"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Kind maps the field type onto its traversal kind.
func (t FieldType) Kind() FieldKind {
	switch t {
	case ForeignKey, OneToOneField, ReverseOneToOne:
		return KindToOne
	case ManyToManyField, ReverseForeignKey, ReverseManyToMany:
		return KindToMany
	case GenericForeignKey, GenericRelation:
		return KindGeneric
	case "":
		return KindUnknown
	default:
		return KindScalar
	}
}

// IsOpaqueID reports whether values of this type are generated identifiers that carry
// no meaning for humans.
func (t FieldType) IsOpaqueID() bool {
	return t == AutoField || t == BigAutoField || t == UUIDField
}

// Field describes one attribute of a model.
type Field struct {
	Name        string    `json:"name" mapstructure:"name"`
	Type        FieldType `json:"type" mapstructure:"type"`
	Unique      bool      `json:"unique,omitempty" mapstructure:"unique"`
	Null        bool      `json:"null,omitempty" mapstructure:"null"`
	Related     string    `json:"related,omitempty" mapstructure:"related"` // label of the related model
	VerboseName string    `json:"verbose_name,omitempty" mapstructure:"verbose_name"`
}

// Kind returns the traversal kind of the field.
func (f *Field) Kind() FieldKind {
	return f.Type.Kind()
}

// IsRelation reports whether the field points at other records.
func (f *Field) IsRelation() bool {
	k := f.Kind()
	return k == KindToOne || k == KindToMany || k == KindGeneric
}

// Verbose returns the human readable name of the field.
func (f *Field) Verbose() string {
	if f.VerboseName != "" {
		return f.VerboseName
	}
	return strings.ReplaceAll(f.Name, "_", " ")
}
