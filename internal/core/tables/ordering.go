package tables

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
)

// SetOrderBy orders the table by column aliases, given as a comma separated string or a
// []string. A "-" prefix sorts descending. Aliases that do not name a known orderable
// column are dropped. A non-empty order on a tree model replaces the tree-ordered
// queryset with its flat equivalent; an empty order changes nothing.
func (t *Table) SetOrderBy(value any) {
	var tokens []string
	switch v := value.(type) {
	case nil:
	case string:
		tokens = strings.Split(v, ",")
	case []string:
		tokens = v
	default:
		log.Ctx(t.ctx).Warn().Str("table", t.name).Msgf("ignoring order_by of type %T", value)
		return
	}

	var accepted, keys []string
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		desc := strings.HasPrefix(token, "-")
		name := strings.TrimPrefix(token, "-")
		c, ok := t.index[name]
		if !ok || !c.Orderable {
			continue
		}
		accepted = append(accepted, token)
		keys = append(keys, c.orderKeys(desc)...)
	}
	t.orderBy = accepted
	if len(keys) == 0 {
		return
	}

	if t.qs == nil {
		queryset.Sort(t.records, keys)
		return
	}
	if t.model.Tree {
		t.qs = t.qs.Flatten()
	}
	t.qs = t.qs.OrderBy(keys...)
}

// OrderBy returns the accepted order tokens.
func (t *Table) OrderBy() []string {
	return append([]string(nil), t.orderBy...)
}
