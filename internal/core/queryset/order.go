package queryset

import (
	"sort"
	"strings"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// Sort orders recs in place by keys. A key prefixed with "-" sorts descending; keys
// are field paths. The sort is stable.
func Sort(recs []models.Record, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, key := range keys {
			desc := strings.HasPrefix(key, "-")
			path := strings.TrimPrefix(key, "-")
			c := models.CompareValues(sortValue(recs[i], path), sortValue(recs[j], path))
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func sortValue(rec models.Record, path string) any {
	v, _ := models.Lookup(rec, path)
	if many, ok := v.([]any); ok {
		if len(many) == 0 {
			return nil
		}
		return many[0]
	}
	return v
}

// TreeOrder returns recs depth first, siblings sorted by display name. Records whose
// parent is absent from recs are treated as roots.
func TreeOrder(m *models.Model, recs []models.Record) []models.Record {
	parentField := m.TreeParentField()
	present := make(map[uuid.UUID]bool, len(recs))
	for _, rec := range recs {
		present[rec.PK()] = true
	}
	children := map[uuid.UUID][]models.Record{}
	var roots []models.Record
	for _, rec := range recs {
		parent := parentOf(rec, parentField)
		if parent == nil || !present[parent.PK()] {
			roots = append(roots, rec)
			continue
		}
		children[parent.PK()] = append(children[parent.PK()], rec)
	}

	out := make([]models.Record, 0, len(recs))
	visited := make(map[uuid.UUID]bool, len(recs))
	var walk func(level []models.Record)
	walk = func(level []models.Record) {
		sortByDisplay(level)
		for _, rec := range level {
			if visited[rec.PK()] {
				continue
			}
			visited[rec.PK()] = true
			out = append(out, rec)
			walk(children[rec.PK()])
		}
	}
	walk(roots)
	// records caught in a parent cycle are appended flat
	for _, rec := range recs {
		if !visited[rec.PK()] {
			out = append(out, rec)
		}
	}
	return out
}

// Depth returns the number of ancestors of rec in its tree model.
func Depth(rec models.Record) int {
	parentField := rec.Model().TreeParentField()
	seen := map[uuid.UUID]bool{rec.PK(): true}
	depth := 0
	for p := parentOf(rec, parentField); p != nil && !seen[p.PK()]; p = parentOf(p, parentField) {
		seen[p.PK()] = true
		depth++
	}
	return depth
}

func parentOf(rec models.Record, field string) models.Record {
	v, _ := rec.Attr(field)
	p, ok := v.(models.Record)
	if !ok || models.IsNilRecord(p) {
		return nil
	}
	return p
}

func sortByDisplay(recs []models.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return models.CompareValues(models.Display(recs[i]), models.Display(recs[j])) < 0
	})
}
