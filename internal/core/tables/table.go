// Package tables builds list tables for any model: declared columns merged with columns
// discovered from custom fields, computed fields and relationships, per-user column
// preferences, eager-loading hints inferred from column accessors, and cell rendering.
package tables

import (
	"context"
	"fmt"
	"html/template"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
	"github.com/nautobot/nautobot-sub011/internal/core/users"
)

// TableSpec is the immutable declaration of a table. New never modifies it.
type TableSpec struct {
	// Name keys the per-user column preference, e.g. "DeviceTable".
	Name           string
	Model          *models.Model
	Columns        []Column
	DefaultColumns []string
}

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate reports configuration errors in the declaration.
func (s *TableSpec) Validate() error {
	if s == nil {
		return ErrInvalidTableSpec.Msg("nil table")
	}
	if !tableNameRegex.MatchString(s.Name) {
		return ErrInvalidTableSpec.Msg(fmt.Sprintf("invalid table name %q", s.Name))
	}
	if s.Model == nil {
		return ErrInvalidTableSpec.Msg(s.Name + ": no model")
	}
	seen := make(map[string]bool, len(s.Columns))
	for i := range s.Columns {
		if err := validateColumn(&s.Columns[i]); err != nil {
			return ErrInvalidTableSpec.MsgErr(s.Name, err)
		}
		if seen[s.Columns[i].Name] {
			return ErrInvalidTableSpec.Msg(fmt.Sprintf("%s: duplicate column %q", s.Name, s.Columns[i].Name))
		}
		seen[s.Columns[i].Name] = true
	}
	for _, name := range s.DefaultColumns {
		if !seen[name] {
			return ErrInvalidTableSpec.Msg(fmt.Sprintf("%s: default column %q is not declared", s.Name, name))
		}
	}
	return nil
}

func validateColumn(c *Column) error {
	if c.Name == "" {
		return ErrInvalidTableSpec.Msg("column without a name")
	}
	if _, ok := renderers[c.Kind]; !ok {
		return ErrInvalidTableSpec.Msg(fmt.Sprintf("column %q: unknown kind %d", c.Name, c.Kind))
	}
	switch c.Kind {
	case KindLinkedCount:
		if c.ViewName == "" {
			return ErrInvalidTableSpec.Msg(fmt.Sprintf("column %q: linked count needs a view name", c.Name))
		}
	case KindCustomField:
		if c.CustomField == nil {
			return ErrInvalidTableSpec.Msg(fmt.Sprintf("column %q: no custom field", c.Name))
		}
	case KindComputedField:
		if c.ComputedField == nil {
			return ErrInvalidTableSpec.Msg(fmt.Sprintf("column %q: no computed field", c.Name))
		}
	case KindRelationship:
		if c.Relationship == nil {
			return ErrInvalidTableSpec.Msg(fmt.Sprintf("column %q: no relationship", c.Name))
		}
	}
	return nil
}

type options struct {
	ctx      context.Context
	user     users.User
	extra    []Column
	show     []string
	registry extras.Registry
	prefs    users.PreferenceStore
	orderBy  any
	urls     URLResolver
	objects  ObjectResolver
}

// Option configures New.
type Option func(*options)

// WithContext sets the context used for preference lookups and logging.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithUser sets the requesting user whose column preference applies.
func WithUser(u users.User) Option {
	return func(o *options) { o.user = u }
}

// WithExtraColumns adds columns to the declared ones and shows them. A column named
// like a declared column replaces it.
func WithExtraColumns(cols ...Column) Option {
	return func(o *options) { o.extra = append(o.extra, cols...) }
}

// WithShownColumns shows available columns by name, as extra columns do.
func WithShownColumns(names ...string) Option {
	return func(o *options) { o.show = append(o.show, names...) }
}

// WithRegistry enables extension column discovery.
func WithRegistry(r extras.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithPreferences sets the store holding per-user column preferences.
func WithPreferences(p users.PreferenceStore) Option {
	return func(o *options) { o.prefs = p }
}

// WithOrderBy applies SetOrderBy after construction.
func WithOrderBy(v any) Option {
	return func(o *options) { o.orderBy = v }
}

// WithURLResolver sets how links are built. The default is PathResolver{}.
func WithURLResolver(r URLResolver) Option {
	return func(o *options) { o.urls = r }
}

// WithObjectResolver sets how relationship peers are loaded for display.
func WithObjectResolver(r ObjectResolver) Option {
	return func(o *options) { o.objects = r }
}

// Table is one rendering of a TableSpec over a record collection. It is built per
// request and is not safe for concurrent mutation.
type Table struct {
	name     string
	model    *models.Model
	columns  []*Column
	index    map[string]*Column
	sequence []string
	hidden   map[string]bool
	orderBy  []string
	plan     EagerPlan

	qs      queryset.QuerySet
	records []models.Record

	registry extras.Registry
	urls     URLResolver
	objects  ObjectResolver
	ctx      context.Context
}

// New builds a table over data, which is either a queryset.QuerySet or a []models.Record.
// Construction never evaluates a queryset; it only annotates it with eager-loading hints.
func New(spec *TableSpec, data any, opts ...Option) (*Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	o := options{ctx: context.Background(), urls: PathResolver{}}
	for _, opt := range opts {
		opt(&o)
	}
	for i := range o.extra {
		if err := validateColumn(&o.extra[i]); err != nil {
			return nil, ErrInvalidTableSpec.MsgErr(spec.Name, err)
		}
	}

	t := &Table{
		name:     spec.Name,
		model:    spec.Model,
		hidden:   map[string]bool{},
		registry: o.registry,
		urls:     o.urls,
		objects:  o.objects,
		ctx:      o.ctx,
	}

	switch d := data.(type) {
	case queryset.QuerySet:
		if d.Model() != spec.Model {
			return nil, ErrInvalidData.Msg(fmt.Sprintf("%s: queryset of %s", spec.Name, d.Model().Label()))
		}
		t.qs = d
	case []models.Record:
		t.records = append([]models.Record(nil), d...)
	case nil:
	default:
		return nil, ErrInvalidData.Msg(fmt.Sprintf("%s: %T", spec.Name, data))
	}

	t.buildColumns(spec, o.extra)
	t.applyDefaultColumns(spec, o.extra, o.show)
	t.applyPreference(o)

	if t.qs != nil {
		t.plan = PlanEagerLoading(t.model, t.visible())
		if !t.plan.IsEmpty() {
			t.qs = applyEagerLoading(o.ctx, t.name, t.qs, t.plan)
		}
	}
	if o.orderBy != nil {
		t.SetOrderBy(o.orderBy)
	}
	return t, nil
}

// buildColumns merges declared, extra and extension columns into a fresh schema. The
// actions column, when declared, stays last.
func (t *Table) buildColumns(spec *TableSpec, extra []Column) {
	merged := make([]Column, 0, len(spec.Columns)+len(extra))
	merged = append(merged, spec.Columns...)
	for _, c := range extra {
		replaced := false
		for i := range merged {
			if merged[i].Name == c.Name {
				merged[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, c)
		}
	}

	var actions *Column
	t.index = make(map[string]*Column, len(merged))
	for i := range merged {
		c := &merged[i]
		if c.Name == ActionsColumnName {
			actions = c
			continue
		}
		t.add(c)
	}
	for _, c := range ExtensionColumns(t.model, t.registry) {
		c := c
		if _, dup := t.index[c.Name]; dup {
			continue
		}
		t.add(&c)
	}
	if actions != nil {
		t.add(actions)
	}
}

func (t *Table) add(c *Column) {
	t.columns = append(t.columns, c)
	t.index[c.Name] = c
	t.sequence = append(t.sequence, c.Name)
	if c.Hidden {
		t.hidden[c.Name] = true
	}
}

func (t *Table) applyDefaultColumns(spec *TableSpec, extra []Column, show []string) {
	if len(spec.DefaultColumns) > 0 {
		keep := make(map[string]bool, len(spec.DefaultColumns))
		for _, name := range spec.DefaultColumns {
			keep[name] = true
		}
		for _, c := range t.columns {
			t.hidden[c.Name] = !keep[c.Name]
		}
	}
	for _, c := range extra {
		delete(t.hidden, c.Name)
	}
	for _, name := range show {
		if _, ok := t.index[name]; ok {
			delete(t.hidden, name)
		}
	}
}

// applyPreference replaces visibility and order with the user's stored column list.
// The toggle and actions columns are pinned first and last when declared.
func (t *Table) applyPreference(o options) {
	if o.prefs == nil || o.user.IsAnonymous() {
		return
	}
	stored, ok, err := o.prefs.TableColumns(o.ctx, o.user, t.name)
	if err != nil {
		log.Ctx(o.ctx).Warn().Err(err).Str("table", t.name).Str("user", o.user.Username).Msg("unable to load column preference")
		return
	}
	if !ok {
		return
	}

	var sequence []string
	shown := map[string]bool{}
	if _, ok := t.index[ToggleColumnName]; ok {
		sequence = append(sequence, ToggleColumnName)
		shown[ToggleColumnName] = true
	}
	for _, name := range stored {
		if name == ToggleColumnName || name == ActionsColumnName || shown[name] {
			continue
		}
		if _, ok := t.index[name]; !ok {
			continue
		}
		sequence = append(sequence, name)
		shown[name] = true
	}
	_, hasActions := t.index[ActionsColumnName]
	if hasActions {
		shown[ActionsColumnName] = true
	}
	for _, c := range t.columns {
		if !shown[c.Name] {
			sequence = append(sequence, c.Name)
		}
	}
	if hasActions {
		sequence = append(sequence, ActionsColumnName)
	}

	t.sequence = sequence
	t.hidden = make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		t.hidden[c.Name] = !shown[c.Name]
	}
}

// Name returns the table name used for preferences.
func (t *Table) Name() string { return t.name }

// Model returns the model the table is bound to.
func (t *Table) Model() *models.Model { return t.model }

// Column returns the column named name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.index[name]
	return c, ok
}

// Columns returns every known column in display order, visible or not.
func (t *Table) Columns() []string {
	return append([]string(nil), t.sequence...)
}

// VisibleColumns returns the display sequence of the visible columns.
func (t *Table) VisibleColumns() []string {
	out := make([]string, 0, len(t.sequence))
	for _, name := range t.sequence {
		if !t.hidden[name] {
			out = append(out, name)
		}
	}
	return out
}

func (t *Table) visible() []*Column {
	names := t.VisibleColumns()
	out := make([]*Column, len(names))
	for i, name := range names {
		out[i] = t.index[name]
	}
	return out
}

// Show makes the named column visible. Eager-loading hints are not recomputed.
func (t *Table) Show(name string) error {
	if _, ok := t.index[name]; !ok {
		return ErrUnknownColumn.Msg(name)
	}
	delete(t.hidden, name)
	return nil
}

// Hide hides the named column.
func (t *Table) Hide(name string) error {
	if _, ok := t.index[name]; !ok {
		return ErrUnknownColumn.Msg(name)
	}
	t.hidden[name] = true
	return nil
}

// ConfigurableColumns returns the visible and the hidden columns for a column picker.
// The pinned toggle and actions columns are not configurable.
func (t *Table) ConfigurableColumns() (selected, available []ColumnChoice) {
	for _, name := range t.sequence {
		if name == ToggleColumnName || name == ActionsColumnName {
			continue
		}
		choice := ColumnChoice{Name: name, VerboseName: t.index[name].verbose(t.model)}
		if t.hidden[name] {
			available = append(available, choice)
		} else {
			selected = append(selected, choice)
		}
	}
	return selected, available
}

// Header returns the header markup of the named column.
func (t *Table) Header(name string) template.HTML {
	c, ok := t.index[name]
	if !ok {
		return ""
	}
	if c.Kind == KindToggle {
		return ToggleHeader()
	}
	return template.HTML(escape(c.verbose(t.model)))
}

// VerboseName returns the plain header of the named column.
func (t *Table) VerboseName(name string) string {
	if c, ok := t.index[name]; ok {
		return c.verbose(t.model)
	}
	return ""
}

// EagerPlan returns the eager-loading hints inferred at construction.
func (t *Table) EagerPlan() EagerPlan {
	return t.plan
}

// Queryset returns the bound queryset, possibly annotated, or nil for record slices.
func (t *Table) Queryset() queryset.QuerySet {
	return t.qs
}

// treeMode reports whether rows come out in tree order.
func (t *Table) treeMode() bool {
	if t.qs != nil {
		return t.qs.IsTree() && len(t.qs.Ordering()) == 0
	}
	return t.model.Tree && len(t.orderBy) == 0
}

// Row is one rendered record; Cells follow VisibleColumns.
type Row struct {
	Record models.Record
	Cells  []Cell
}

// Data evaluates the bound collection.
func (t *Table) Data(ctx context.Context) ([]models.Record, error) {
	if t.qs == nil {
		return append([]models.Record(nil), t.records...), nil
	}
	return t.qs.All(ctx)
}

// Rows evaluates the collection once and renders every visible column.
func (t *Table) Rows(ctx context.Context) ([]Row, error) {
	recs, err := t.Data(ctx)
	if err != nil {
		return nil, err
	}
	return t.RenderRows(ctx, recs), nil
}

// RenderRows renders the visible columns of recs, typically one page of Data.
func (t *Table) RenderRows(ctx context.Context, recs []models.Record) []Row {
	cols := t.visible()
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		cells := make([]Cell, len(cols))
		for j, c := range cols {
			cells[j] = t.render(ctx, c, rec)
		}
		rows[i] = Row{Record: rec, Cells: cells}
	}
	return rows
}

// RenderCell renders the named column for rec.
func (t *Table) RenderCell(ctx context.Context, rec models.Record, column string) (Cell, error) {
	c, ok := t.index[column]
	if !ok {
		return Cell{}, ErrUnknownColumn.Msg(column)
	}
	return t.render(ctx, c, rec), nil
}

func (t *Table) render(ctx context.Context, c *Column, rec models.Record) Cell {
	if models.IsNilRecord(rec) {
		return placeholderCell()
	}
	return renderers[c.Kind](ctx, t, c, rec)
}
