// Package queryset defines the lazy record collection consumed by the table engine and
// the natural-key resolver, plus an in-memory implementation.
package queryset

import (
	"context"

	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// Lookups filters records by field path. A nil value matches null.
type Lookups map[string]any

// Shape describes what a queryset yields.
type Shape int

const (
	ShapeRecords    Shape = iota // model records
	ShapeProjection              // dictionaries of selected fields
	ShapeCombinator              // result of a set operation
)

func (s Shape) String() string {
	switch s {
	case ShapeProjection:
		return "projection"
	case ShapeCombinator:
		return "combinator"
	default:
		return "records"
	}
}

// QuerySet is an immutable, lazily evaluated collection of records of one model. Every
// refinement returns a new QuerySet; only All touches the data source.
type QuerySet interface {
	Model() *models.Model
	Shape() Shape
	// IsTree reports whether records are returned in tree order with depth annotations.
	IsTree() bool

	Filter(lookups Lookups) QuerySet
	OrderBy(keys ...string) QuerySet
	Ordering() []string

	// SelectRelated joins to-one relations into the primary fetch.
	SelectRelated(paths ...string) (QuerySet, error)
	// PrefetchRelated batch-loads to-many or generic relations after the primary fetch.
	PrefetchRelated(paths ...string) (QuerySet, error)
	EagerLoading() (selected, prefetched []string)

	// Flatten returns the same filtered records without tree ordering.
	Flatten() QuerySet

	All(ctx context.Context) ([]models.Record, error)
}
