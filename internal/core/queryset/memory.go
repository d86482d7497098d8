package queryset

import (
	"context"
	"sync/atomic"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

type setOp int

const (
	opNone setOp = iota
	opUnion
	opIntersection
	opDifference
)

// Memory is a QuerySet over records held in memory. It is safe for concurrent use;
// refinements never modify the receiver.
type Memory struct {
	model      *models.Model
	source     func() []models.Record
	filters    []Lookups
	ordering   []string
	selected   []string
	prefetched []string
	shape      Shape
	fields     []string
	op         setOp
	operands   []*Memory
	tree       bool
	evals      *atomic.Int64
}

var _ QuerySet = (*Memory)(nil)

// New returns a queryset over records. Tree models start in tree order.
func New(m *models.Model, records []models.Record) *Memory {
	recs := append([]models.Record(nil), records...)
	return &Memory{
		model:  m,
		source: func() []models.Record { return recs },
		tree:   m != nil && m.Tree,
		evals:  new(atomic.Int64),
	}
}

func (q *Memory) clone() *Memory {
	c := *q
	c.filters = append([]Lookups(nil), q.filters...)
	c.ordering = append([]string(nil), q.ordering...)
	c.selected = append([]string(nil), q.selected...)
	c.prefetched = append([]string(nil), q.prefetched...)
	c.fields = append([]string(nil), q.fields...)
	c.operands = append([]*Memory(nil), q.operands...)
	return &c
}

// Evaluations returns how many times this queryset, or any queryset derived from it,
// has been evaluated.
func (q *Memory) Evaluations() int64 {
	return q.evals.Load()
}

func (q *Memory) Model() *models.Model { return q.model }
func (q *Memory) Shape() Shape         { return q.shape }
func (q *Memory) IsTree() bool         { return q.tree }

func (q *Memory) Filter(lookups Lookups) QuerySet {
	c := q.clone()
	c.filters = append(c.filters, lookups)
	return c
}

func (q *Memory) OrderBy(keys ...string) QuerySet {
	c := q.clone()
	c.ordering = append([]string(nil), keys...)
	return c
}

func (q *Memory) Ordering() []string {
	return append([]string(nil), q.ordering...)
}

func (q *Memory) SelectRelated(paths ...string) (QuerySet, error) {
	switch q.shape {
	case ShapeProjection:
		return nil, ErrIncompatibleShape.Msg("select_related() cannot follow values()")
	case ShapeCombinator:
		return nil, ErrUnsupportedOperation.Msg("select_related() is not supported after a set operation")
	}
	for _, p := range paths {
		if err := ValidateSelect(q.model, p); err != nil {
			return nil, err
		}
	}
	c := q.clone()
	c.selected = appendUnique(c.selected, paths...)
	return c, nil
}

func (q *Memory) PrefetchRelated(paths ...string) (QuerySet, error) {
	switch q.shape {
	case ShapeProjection:
		return nil, ErrIncompatibleShape.Msg("prefetch_related() cannot follow values()")
	case ShapeCombinator:
		return nil, ErrUnsupportedOperation.Msg("prefetch_related() is not supported after a set operation")
	}
	for _, p := range paths {
		if err := ValidatePrefetch(q.model, p); err != nil {
			return nil, err
		}
	}
	c := q.clone()
	c.prefetched = appendUnique(c.prefetched, paths...)
	return c, nil
}

func (q *Memory) EagerLoading() (selected, prefetched []string) {
	return append([]string(nil), q.selected...), append([]string(nil), q.prefetched...)
}

func (q *Memory) Flatten() QuerySet {
	c := q.clone()
	c.tree = false
	return c
}

// Values returns a projection yielding only the named field paths.
func (q *Memory) Values(fields ...string) *Memory {
	c := q.clone()
	if c.shape == ShapeRecords {
		c.shape = ShapeProjection
	}
	c.fields = append([]string(nil), fields...)
	return c
}

// Union combines the records of q and others, without duplicates.
func (q *Memory) Union(others ...*Memory) (*Memory, error) {
	return q.combine(opUnion, others)
}

// Intersection keeps the records present in q and every one of others.
func (q *Memory) Intersection(others ...*Memory) (*Memory, error) {
	return q.combine(opIntersection, others)
}

// Difference keeps the records of q absent from all of others.
func (q *Memory) Difference(others ...*Memory) (*Memory, error) {
	return q.combine(opDifference, others)
}

func (q *Memory) combine(op setOp, others []*Memory) (*Memory, error) {
	operands := []*Memory{q}
	for _, o := range others {
		if o.model != q.model {
			return nil, ErrModelMismatch.Msg(q.model.Label() + " and " + o.model.Label())
		}
		operands = append(operands, o)
	}
	return &Memory{
		model:    q.model,
		shape:    ShapeCombinator,
		op:       op,
		operands: operands,
		evals:    q.evals,
	}, nil
}

// Count evaluates the queryset and returns the number of records.
func (q *Memory) Count(ctx context.Context) (int, error) {
	recs, err := q.All(ctx)
	return len(recs), err
}

func (q *Memory) All(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.evals.Add(1)
	return q.evaluate(), nil
}

func (q *Memory) evaluate() []models.Record {
	var recs []models.Record
	if q.op == opNone {
		recs = append(recs, q.source()...)
	} else {
		recs = q.combined()
	}

	if len(q.filters) > 0 {
		kept := recs[:0:0]
		for _, rec := range recs {
			if matchesAll(rec, q.filters) {
				kept = append(kept, rec)
			}
		}
		recs = kept
	}

	switch {
	case len(q.ordering) > 0:
		Sort(recs, q.ordering)
	case q.tree:
		recs = TreeOrder(q.model, recs)
	}

	if q.shape == ShapeProjection {
		recs = project(q.model, recs, q.fields)
	}
	return recs
}

func (q *Memory) combined() []models.Record {
	sets := make([][]models.Record, len(q.operands))
	for i, o := range q.operands {
		sets[i] = o.evaluate()
	}
	seen := map[uuid.UUID]bool{}
	var out []models.Record
	switch q.op {
	case opUnion:
		for _, set := range sets {
			for _, rec := range set {
				if !seen[rec.PK()] {
					seen[rec.PK()] = true
					out = append(out, rec)
				}
			}
		}
	case opIntersection, opDifference:
		counts := map[uuid.UUID]int{}
		for _, set := range sets[1:] {
			inSet := map[uuid.UUID]bool{}
			for _, rec := range set {
				inSet[rec.PK()] = true
			}
			for pk := range inSet {
				counts[pk]++
			}
		}
		for _, rec := range sets[0] {
			if seen[rec.PK()] {
				continue
			}
			n := counts[rec.PK()]
			if (q.op == opIntersection && n == len(sets)-1) || (q.op == opDifference && n == 0) {
				seen[rec.PK()] = true
				out = append(out, rec)
			}
		}
	}
	return out
}

func project(m *models.Model, recs []models.Record, fields []string) []models.Record {
	out := make([]models.Record, len(recs))
	for i, rec := range recs {
		values := make(map[string]any, len(fields))
		for _, f := range fields {
			v, _ := models.Lookup(rec, f)
			values[f] = v
		}
		out[i] = models.NewObject(m, rec.PK(), values)
	}
	return out
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
