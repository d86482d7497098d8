package extras

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/jsruntime"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// ComputedFieldDepth is how far related records are expanded into the obj variable.
const ComputedFieldDepth = 2

var expressions sync.Map // template -> *jsruntime.Expression

func compile(template string) (*jsruntime.Expression, error) {
	if v, ok := expressions.Load(template); ok {
		return v.(*jsruntime.Expression), nil
	}
	expr, err := jsruntime.Compile(template)
	if err != nil {
		return nil, err
	}
	v, _ := expressions.LoadOrStore(template, expr)
	return v.(*jsruntime.Expression), nil
}

// Render evaluates the template with obj bound to the record's attributes. On failure
// the fallback value is returned when one is configured.
func (cf *ComputedField) Render(ctx context.Context, obj models.Record) (string, error) {
	expr, err := compile(cf.Template)
	if err == nil {
		var v any
		v, err = evaluate(ctx, expr, obj)
		if err == nil {
			if v == nil {
				return "", nil
			}
			return fmt.Sprint(v), nil
		}
	}
	if cf.FallbackValue != "" {
		log.Ctx(ctx).Warn().Err(err).Str("computed_field", cf.Key).Msg("computed field failed, using fallback")
		return cf.FallbackValue, nil
	}
	return "", err
}

func evaluate(ctx context.Context, expr *jsruntime.Expression, obj models.Record) (any, error) {
	v, err := expr.Evaluate(ctx, map[string]any{"obj": models.ToMap(obj, ComputedFieldDepth)}, jsruntime.Options{})
	if err != nil {
		return nil, err
	}
	return v, nil
}
