package naturalkey

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// MaxSelfReferenceDepth bounds how many ancestors a self-referencing natural key spans,
// e.g. a location keyed by its name and its parent: name, parent__name, parent__parent__name...
const MaxSelfReferenceDepth = 4

type strategy struct {
	name    string
	resolve func(m *models.Model) ([]string, bool)
}

// strategies are tried in order; the first that yields field names wins.
var strategies = []strategy{
	{"natural_key_fields", explicitFields},
	{"unique_constraint", firstUniqueConstraint},
	{"unique_together", firstUniqueTogether},
	{"unique_field", firstUniqueField},
}

type definition struct {
	fields  []string
	lookups []string
}

var definitions sync.Map // *models.Model -> *definition

func explicitFields(m *models.Model) ([]string, bool) {
	return m.NaturalKeyFields, len(m.NaturalKeyFields) > 0
}

func firstUniqueConstraint(m *models.Model) ([]string, bool) {
	for _, c := range m.UniqueConstraints {
		if len(c.Fields) >= 2 {
			return c.Fields, true
		}
	}
	return nil, false
}

func firstUniqueTogether(m *models.Model) ([]string, bool) {
	for _, fields := range m.UniqueTogether {
		if len(fields) > 0 {
			return fields, true
		}
	}
	return nil, false
}

func firstUniqueField(m *models.Model) ([]string, bool) {
	for _, f := range m.Fields {
		if f.Unique && !f.Type.IsOpaqueID() {
			return []string{f.Name}, true
		}
	}
	return nil, false
}

// FieldNames returns the field names a model's natural key is declared over, before
// relation fields are expanded.
func FieldNames(m *models.Model) ([]string, error) {
	def, err := load(m)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), def.fields...), nil
}

// Definition returns the ordered field paths making up the natural key of m. Relation
// fields are expanded into the related model's natural key so every path ends on a
// scalar. The result is computed once per model.
func Definition(m *models.Model) ([]string, error) {
	def, err := load(m)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), def.lookups...), nil
}

func load(m *models.Model) (*definition, error) {
	if m == nil {
		return nil, ErrNoNaturalKey.Msg("nil model")
	}
	if v, ok := definitions.Load(m); ok {
		return v.(*definition), nil
	}
	def, err := build(m, map[*models.Model]bool{})
	if err != nil {
		return nil, err
	}
	v, _ := definitions.LoadOrStore(m, def)
	return v.(*definition), nil
}

func build(m *models.Model, visiting map[*models.Model]bool) (*definition, error) {
	var fields []string
	for _, s := range strategies {
		if f, ok := s.resolve(m); ok {
			fields = f
			break
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoNaturalKey.Msg(m.Label() + ": no natural key fields declared or inferable")
	}

	visiting[m] = true
	defer delete(visiting, m)

	expanded := make([][]string, len(fields))
	selfRef := -1
	for i, name := range fields {
		f, ok := m.Field(name)
		if !ok {
			return nil, ErrNoNaturalKey.Msg(fmt.Sprintf("%s: natural key field %q does not exist", m.Label(), name))
		}
		switch f.Kind() {
		case models.KindScalar:
			expanded[i] = []string{name}
		case models.KindToOne:
			rel, ok := m.Related(name)
			if !ok {
				return nil, ErrNoNaturalKey.Msg(fmt.Sprintf("%s: related model of %q is not registered", m.Label(), name))
			}
			if rel == m {
				if selfRef >= 0 {
					return nil, ErrNoNaturalKey.Msg(fmt.Sprintf("%s: more than one self-referencing natural key field", m.Label()))
				}
				selfRef = i
				continue
			}
			if visiting[rel] {
				return nil, ErrNoNaturalKey.Msg(fmt.Sprintf("%s: natural key of %q refers back to %s", m.Label(), name, rel.Label()))
			}
			sub, err := build(rel, visiting)
			if err != nil {
				return nil, err
			}
			for _, l := range sub.lookups {
				expanded[i] = append(expanded[i], name+models.PathSeparator+l)
			}
		default:
			return nil, ErrNoNaturalKey.Msg(fmt.Sprintf("%s: natural key field %q is a %s relation", m.Label(), name, f.Kind()))
		}
	}

	if selfRef >= 0 {
		var own []string
		for i, e := range expanded {
			if i != selfRef {
				own = append(own, e...)
			}
		}
		if len(own) == 0 {
			return nil, ErrNoNaturalKey.Msg(m.Label() + ": natural key consists only of a self reference")
		}
		name := fields[selfRef]
		for depth := 1; depth < MaxSelfReferenceDepth; depth++ {
			prefix := strings.Repeat(name+models.PathSeparator, depth)
			for _, l := range own {
				expanded[selfRef] = append(expanded[selfRef], prefix+l)
			}
		}
	}

	def := &definition{fields: append([]string(nil), fields...)}
	for _, e := range expanded {
		def.lookups = append(def.lookups, e...)
	}
	return def, nil
}
