package tables

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
)

// EagerPlan lists the relation paths a table needs joined or batch loaded.
type EagerPlan struct {
	Select   []string `json:"select_related"`
	Prefetch []string `json:"prefetch_related"`
}

// IsEmpty reports whether the plan asks for nothing.
func (p EagerPlan) IsEmpty() bool {
	return len(p.Select) == 0 && len(p.Prefetch) == 0
}

// PlanEagerLoading walks the accessor of every column from m. A column contributes one
// path to either Select or Prefetch, never both: to-one steps extend a select path until
// a prefetch has begun, to-many steps extend a prefetch path until a select has begun,
// and a generic relation ends the walk after joining the prefetch path.
func PlanEagerLoading(m *models.Model, columns []*Column) EagerPlan {
	var plan EagerPlan
	for _, col := range columns {
		sel, pre := classifyAccessor(m, col.accessor())
		if len(sel) > 0 {
			plan.Select = appendUnique(plan.Select, strings.Join(sel, models.PathSeparator))
		}
		if len(pre) > 0 {
			plan.Prefetch = appendUnique(plan.Prefetch, strings.Join(pre, models.PathSeparator))
		}
	}
	return plan
}

func classifyAccessor(m *models.Model, steps []string) (sel, pre []string) {
	cur := m
	for _, step := range steps {
		if cur == nil {
			return
		}
		switch cur.FieldKind(step) {
		case models.KindToOne:
			if len(pre) > 0 {
				return
			}
			sel = append(sel, step)
		case models.KindToMany:
			if len(sel) > 0 {
				return
			}
			pre = append(pre, step)
		case models.KindGeneric:
			if len(sel) == 0 {
				pre = append(pre, step)
			}
			return
		default:
			return
		}
		cur, _ = cur.Related(step)
	}
	return
}

// applyEagerLoading annotates qs with plan. Shapes that cannot take the hints are
// skipped and query layer rejections are logged; qs is returned unchanged in both cases.
func applyEagerLoading(ctx context.Context, table string, qs queryset.QuerySet, plan EagerPlan) queryset.QuerySet {
	logger := log.Ctx(ctx).With().Str("table", table).Str("model", qs.Model().Label()).Logger()

	if len(plan.Select) > 0 {
		if shape := qs.Shape(); shape != queryset.ShapeRecords {
			logger.Warn().Strs("paths", plan.Select).Str("shape", shape.String()).Msg("skipping select_related")
		} else if next, err := qs.SelectRelated(plan.Select...); err != nil {
			logger.Warn().Err(err).Strs("paths", plan.Select).Msg("select_related rejected")
		} else {
			qs = next
		}
	}

	if len(plan.Prefetch) > 0 {
		if shape := qs.Shape(); shape == queryset.ShapeCombinator {
			logger.Warn().Strs("paths", plan.Prefetch).Str("shape", shape.String()).Msg("skipping prefetch_related")
		} else if next, err := qs.PrefetchRelated(plan.Prefetch...); err != nil {
			logger.Warn().Err(err).Strs("paths", plan.Prefetch).Msg("prefetch_related rejected")
		} else {
			qs = next
		}
	}
	return qs
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, d := range dst {
			if d == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
