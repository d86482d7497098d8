// Package naturalkey derives human-meaningful identifiers for records: the natural key
// itself, a reversible URL-safe composite key and a lossy human-readable natural slug.
package naturalkey

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
	"github.com/nautobot/nautobot-sub011/pkg/types"
)

// Get returns the natural key of obj. A relation that is unset part way through a path
// yields a null value; trailing nulls are stripped. If the model has no derivable natural
// key the error is logged and nil is returned; use GetE to receive it.
func Get(obj models.Record) []types.NullableString {
	values, err := GetE(obj)
	if err != nil {
		log.Error().Err(err).Str("model", obj.Model().Label()).Msg("natural key unavailable")
		return nil
	}
	return values
}

// GetE is Get with the definition error returned.
func GetE(obj models.Record) ([]types.NullableString, error) {
	lookups, err := Definition(obj.Model())
	if err != nil {
		return nil, err
	}
	values := make([]types.NullableString, len(lookups))
	for i, path := range lookups {
		v, _ := models.Lookup(obj, path)
		if s, ok := models.StringValue(v); ok {
			values[i] = types.NullableStringFrom(s)
			continue
		}
		values[i] = types.NullString()
	}
	return StripTrailingNulls(values), nil
}

// StripTrailingNulls removes null values from the end of values. Interior nulls stay.
func StripTrailingNulls(values []types.NullableString) []types.NullableString {
	n := len(values)
	for n > 0 && values[n-1].IsNil() {
		n--
	}
	return values[:n]
}

// CompositeKey returns the composite key of obj.
func CompositeKey(obj models.Record) string {
	return EncodeCompositeKey(Get(obj))
}

// NaturalSlug returns the natural slug of obj, suffixed with a short form of its primary key.
func NaturalSlug(obj models.Record) string {
	return BuildNaturalSlug(Get(obj), obj.PK().String())
}

// LookupFields maps natural key values onto the field paths of m's natural key. Missing
// trailing values and null values become null lookups.
func LookupFields(m *models.Model, values []types.NullableString) (queryset.Lookups, error) {
	lookups, err := Definition(m)
	if err != nil {
		return nil, err
	}
	if len(values) > len(lookups) {
		return nil, ErrTooManyValues.Msg(fmt.Sprintf("%s: %d values given for a natural key of %d fields", m.Label(), len(values), len(lookups)))
	}
	out := make(queryset.Lookups, len(lookups))
	for i, path := range lookups {
		if i >= len(values) || values[i].IsNil() {
			out[path] = nil
			continue
		}
		out[path] = values[i].Value
	}
	return out, nil
}

// Resolve returns the single record of qs whose natural key matches compositeKey.
// Undecodable keys and misses are both reported as not found.
func Resolve(ctx context.Context, qs queryset.QuerySet, compositeKey string) (models.Record, error) {
	values, err := DecodeCompositeKey(compositeKey)
	if err != nil {
		return nil, err
	}
	lookups, err := LookupFields(qs.Model(), values)
	if err != nil {
		return nil, err
	}
	records, err := qs.Filter(lookups).All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, ErrObjectNotFound.Msg(fmt.Sprintf("no %s matches %q", qs.Model().Verbose(), compositeKey))
	case 1:
		return records[0], nil
	default:
		return nil, ErrMultipleObjects.Msg(fmt.Sprintf("%d %s match %q", len(records), qs.Model().VerbosePlural(), compositeKey))
	}
}
