package queryset

import (
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

func matchesAll(rec models.Record, filters []Lookups) bool {
	for _, lookups := range filters {
		for path, want := range lookups {
			if !matches(rec, path, want) {
				return false
			}
		}
	}
	return true
}

func matches(rec models.Record, path string, want any) bool {
	got, ok := models.Lookup(rec, path)
	if !ok {
		return false
	}
	wantStr, wantSet := models.StringValue(want)
	if many, isMany := got.([]any); isMany {
		if !wantSet {
			return len(many) == 0
		}
		for _, g := range many {
			if s, ok := models.StringValue(g); ok && s == wantStr {
				return true
			}
		}
		return false
	}
	gotStr, gotSet := models.StringValue(got)
	if !wantSet || !gotSet {
		return wantSet == gotSet
	}
	return gotStr == wantStr
}
