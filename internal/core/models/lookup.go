package models

import (
	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
)

// Lookup walks path from rec. A nil relation part way through yields (nil, true):
// a missing related record is a null value, not an error. The boolean is false only when
// a step names something that is not an attribute. Traversing a to-many relation maps
// the remaining path over every member and returns []any.
func Lookup(rec Record, path string) (any, bool) {
	return lookupPath(rec, ParsePath(path))
}

func lookupPath(cur any, steps Path) (any, bool) {
	for i, step := range steps {
		switch v := cur.(type) {
		case nil:
			return nil, true
		case Record:
			if IsNilRecord(v) {
				return nil, true
			}
			next, ok := v.Attr(step)
			if !ok {
				return nil, false
			}
			cur = next
		case map[string]any:
			cur = v[step]
		case []Record:
			out := make([]any, 0, len(v))
			for _, member := range v {
				val, ok := lookupPath(member, steps[i:])
				if !ok {
					return nil, false
				}
				out = append(out, val)
			}
			return out, true
		default:
			return nil, false
		}
	}
	if IsNilRecord(cur) {
		return nil, true
	}
	return cur, true
}

// ToMap flattens rec into plain values for expression evaluation. Related records are
// expanded to nested maps while depth > 0 and rendered with Display otherwise.
func ToMap(rec Record, depth int) map[string]any {
	if IsNilRecord(rec) {
		return nil
	}
	m := rec.Model()
	out := map[string]any{
		"id":                rec.PK().String(),
		"pk":                rec.PK().String(),
		"display":           Display(rec),
		"custom_field_data": map[string]any{},
	}
	if cfd, ok := rec.Attr(CustomFieldDataAttr); ok && cfd != nil {
		out["custom_field_data"] = cfd
	}
	for _, f := range m.Fields {
		v, ok := rec.Attr(f.Name)
		if !ok {
			continue
		}
		out[f.Name] = plainValue(v, depth)
	}
	return out
}

func plainValue(v any, depth int) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return tv.String()
	case Record:
		if IsNilRecord(tv) {
			return nil
		}
		if depth > 0 {
			return ToMap(tv, depth-1)
		}
		return Display(tv)
	case []Record:
		out := make([]any, len(tv))
		for i, r := range tv {
			out[i] = plainValue(r, depth)
		}
		return out
	default:
		return v
	}
}
