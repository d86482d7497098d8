package queryset

import (
	"fmt"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// ValidateSelect checks that every step of path is a to-one relation.
func ValidateSelect(m *models.Model, path string) error {
	cur := m
	for _, step := range models.ParsePath(path) {
		if models.Classify(cur, step) != models.KindToOne {
			return ErrInvalidRelated.Msg(fmt.Sprintf("invalid field name %q in select_related(%q) on %s", step, path, m.Label()))
		}
		next, ok := cur.Related(step)
		if !ok {
			return ErrInvalidRelated.Msg(fmt.Sprintf("related model of %q is not registered", step))
		}
		cur = next
	}
	return nil
}

// ValidatePrefetch checks that every step of path is a relation. A generic relation must
// be the last step since its target model varies per record.
func ValidatePrefetch(m *models.Model, path string) error {
	cur := m
	steps := models.ParsePath(path)
	for i, step := range steps {
		switch models.Classify(cur, step) {
		case models.KindToOne, models.KindToMany:
			next, ok := cur.Related(step)
			if !ok {
				return ErrInvalidRelated.Msg(fmt.Sprintf("related model of %q is not registered", step))
			}
			cur = next
		case models.KindGeneric:
			if i != len(steps)-1 {
				return ErrInvalidRelated.Msg(fmt.Sprintf("cannot traverse generic relation %q in prefetch_related(%q)", step, path))
			}
		default:
			return ErrInvalidRelated.Msg(fmt.Sprintf("%q is not a relation in prefetch_related(%q) on %s", step, path, m.Label()))
		}
	}
	return nil
}
