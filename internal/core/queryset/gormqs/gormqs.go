// Package gormqs implements queryset.QuerySet over gorm. select_related paths become
// joins, prefetch_related paths become preloads.
package gormqs

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
)

// Mapper converts a loaded row into a record.
type Mapper[T any] func(row *T) models.Record

// QuerySet is a lazily built gorm query yielding records of one model.
type QuerySet[T any] struct {
	db         *gorm.DB
	model      *models.Model
	mapper     Mapper[T]
	filters    []queryset.Lookups
	ordering   []string
	selected   []string
	prefetched []string
	fields     []string
	tree       bool
	treeOrder  string
	err        error
}

var _ queryset.QuerySet = (*QuerySet[struct{}])(nil)

// Option configures a QuerySet.
type Option[T any] func(*QuerySet[T])

// WithTreeOrder sets the column giving depth-first order for tree models, typically a
// materialised path.
func WithTreeOrder[T any](column string) Option[T] {
	return func(q *QuerySet[T]) {
		q.treeOrder = column
	}
}

// New returns a queryset over the table of T.
func New[T any](db *gorm.DB, m *models.Model, mapper Mapper[T], opts ...Option[T]) *QuerySet[T] {
	q := &QuerySet[T]{db: db, model: m, mapper: mapper, tree: m.Tree}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *QuerySet[T]) clone() *QuerySet[T] {
	c := *q
	c.filters = append([]queryset.Lookups(nil), q.filters...)
	c.ordering = append([]string(nil), q.ordering...)
	c.selected = append([]string(nil), q.selected...)
	c.prefetched = append([]string(nil), q.prefetched...)
	c.fields = append([]string(nil), q.fields...)
	return &c
}

func (q *QuerySet[T]) Model() *models.Model { return q.model }
func (q *QuerySet[T]) IsTree() bool         { return q.tree }

func (q *QuerySet[T]) Shape() queryset.Shape {
	if len(q.fields) > 0 {
		return queryset.ShapeProjection
	}
	return queryset.ShapeRecords
}

func (q *QuerySet[T]) Filter(lookups queryset.Lookups) queryset.QuerySet {
	c := q.clone()
	for path := range lookups {
		if err := validateColumnPath(q.model, path); err != nil && c.err == nil {
			c.err = err
		}
	}
	c.filters = append(c.filters, lookups)
	return c
}

func (q *QuerySet[T]) OrderBy(keys ...string) queryset.QuerySet {
	c := q.clone()
	for _, key := range keys {
		if err := validateColumnPath(q.model, strings.TrimPrefix(key, "-")); err != nil && c.err == nil {
			c.err = queryset.ErrInvalidOrdering.MsgErr(key, err)
		}
	}
	c.ordering = append([]string(nil), keys...)
	return c
}

func (q *QuerySet[T]) Ordering() []string {
	return append([]string(nil), q.ordering...)
}

func (q *QuerySet[T]) SelectRelated(paths ...string) (queryset.QuerySet, error) {
	if q.Shape() == queryset.ShapeProjection {
		return nil, queryset.ErrIncompatibleShape.Msg("select_related() cannot follow values()")
	}
	for _, p := range paths {
		if err := queryset.ValidateSelect(q.model, p); err != nil {
			return nil, err
		}
	}
	c := q.clone()
	c.selected = appendUnique(c.selected, paths...)
	return c, nil
}

func (q *QuerySet[T]) PrefetchRelated(paths ...string) (queryset.QuerySet, error) {
	if q.Shape() == queryset.ShapeProjection {
		return nil, queryset.ErrIncompatibleShape.Msg("prefetch_related() cannot follow values()")
	}
	for _, p := range paths {
		if err := queryset.ValidatePrefetch(q.model, p); err != nil {
			return nil, err
		}
	}
	c := q.clone()
	c.prefetched = appendUnique(c.prefetched, paths...)
	return c, nil
}

func (q *QuerySet[T]) EagerLoading() (selected, prefetched []string) {
	return append([]string(nil), q.selected...), append([]string(nil), q.prefetched...)
}

func (q *QuerySet[T]) Flatten() queryset.QuerySet {
	c := q.clone()
	c.tree = false
	return c
}

// Values restricts the query to the named local columns.
func (q *QuerySet[T]) Values(fields ...string) *QuerySet[T] {
	c := q.clone()
	c.fields = append([]string(nil), fields...)
	return c
}

func (q *QuerySet[T]) All(ctx context.Context) ([]models.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	var rows []T
	if err := q.build(q.db.WithContext(ctx)).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to query %s", q.model.Label())
	}
	out := make([]models.Record, len(rows))
	for i := range rows {
		out[i] = q.mapper(&rows[i])
	}
	return out, nil
}

// SQL renders the statement All would run, without executing it.
func (q *QuerySet[T]) SQL() string {
	return q.db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []T
		return q.build(tx).Find(&rows)
	})
}

func (q *QuerySet[T]) build(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(new(T))

	joins := append([]string(nil), q.selected...)
	for _, lookups := range q.filters {
		for path := range lookups {
			joins = appendUnique(joins, joinPath(path)...)
		}
	}
	for _, key := range q.ordering {
		joins = appendUnique(joins, joinPath(strings.TrimPrefix(key, "-"))...)
	}
	if len(q.fields) == 0 {
		for _, p := range joins {
			tx = tx.Joins(AssociationName(p))
		}
	}
	for _, p := range q.prefetched {
		tx = tx.Preload(AssociationName(p))
	}

	for _, lookups := range q.filters {
		paths := make([]string, 0, len(lookups))
		for path := range lookups {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			tx = tx.Where(clause.Eq{Column: column(path), Value: lookups[path]})
		}
	}

	if len(q.fields) > 0 {
		tx = tx.Select(q.fields)
	}

	switch {
	case len(q.ordering) > 0:
		for _, key := range q.ordering {
			tx = tx.Order(clause.OrderByColumn{
				Column: column(strings.TrimPrefix(key, "-")),
				Desc:   strings.HasPrefix(key, "-"),
			})
		}
	case q.tree && q.treeOrder != "":
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: q.treeOrder}})
	}
	return tx
}

// AssociationName converts a relation path such as "device_type__manufacturer" into
// gorm's association form "DeviceType.Manufacturer".
func AssociationName(path string) string {
	// a Caser is stateful and must not be shared between goroutines
	titler := cases.Title(language.Und, cases.NoLower)
	steps := models.ParsePath(path)
	out := make([]string, len(steps))
	for i, step := range steps {
		out[i] = strings.ReplaceAll(titler.String(strings.ReplaceAll(step, "_", " ")), " ", "")
	}
	return strings.Join(out, ".")
}

// joinPath returns the relation prefix of a column path, if any.
func joinPath(path string) []string {
	steps := models.ParsePath(path)
	if len(steps) < 2 {
		return nil
	}
	return []string{strings.Join(steps[:len(steps)-1], models.PathSeparator)}
}

func column(path string) clause.Column {
	steps := models.ParsePath(path)
	if len(steps) < 2 {
		return clause.Column{Table: clause.CurrentTable, Name: path}
	}
	alias := strings.ReplaceAll(AssociationName(strings.Join(steps[:len(steps)-1], models.PathSeparator)), ".", "__")
	return clause.Column{Table: alias, Name: steps[len(steps)-1]}
}

// validateColumnPath accepts a local column, or a chain of to-one relations ending in a column.
func validateColumnPath(m *models.Model, path string) error {
	steps := models.ParsePath(path)
	if len(steps) == 0 {
		return queryset.ErrInvalidRelated.Msg("empty field path")
	}
	if len(steps) > 1 {
		if err := queryset.ValidateSelect(m, strings.Join(steps[:len(steps)-1], models.PathSeparator)); err != nil {
			return err
		}
	}
	return nil
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
