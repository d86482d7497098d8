// Package fixtures loads model metadata, records, extensibility features and table
// declarations from a YAML or JSON document into in-memory registries.
package fixtures

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/naturalkey"
	"github.com/nautobot/nautobot-sub011/internal/core/queryset"
	"github.com/nautobot/nautobot-sub011/internal/core/tables"
)

// Dataset is the loaded content of a fixture file. It is read-only once built.
type Dataset struct {
	Models *models.Registry
	Extras *extras.MemoryRegistry

	records map[string][]models.Record // by model label, in declaration order
	byID    map[uuid.UUID]models.Record
	tables  map[string]*tables.TableSpec // by model label
}

type options struct {
	models *models.Registry
	extras *extras.MemoryRegistry
}

// Option configures Load and Build.
type Option func(*options)

// WithModels registers the file's models into r instead of a fresh registry.
func WithModels(r *models.Registry) Option {
	return func(o *options) { o.models = r }
}

// WithExtras adds the file's features to r instead of a fresh registry.
func WithExtras(r *extras.MemoryRegistry) Option {
	return func(o *options) { o.extras = r }
}

// Load reads and builds the fixture file at path.
func Load(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadFixtures.MsgErr(path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	ds, err := Build(ctx, f, opts...)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("path", path).Int("models", len(ds.Models.Models())).Int("objects", len(ds.byID)).Msg("loaded fixtures")
	return ds, nil
}

// Build registers the declarations of f. Objects are created in declaration order, so
// relation fields may only refer to records declared earlier in the file.
func Build(ctx context.Context, f *File, opts ...Option) (*Dataset, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.models == nil {
		o.models = models.NewRegistry()
	}
	if o.extras == nil {
		o.extras = extras.NewMemoryRegistry()
	}
	ds := &Dataset{
		Models:  o.models,
		Extras:  o.extras,
		records: make(map[string][]models.Record),
		byID:    make(map[uuid.UUID]models.Record),
		tables:  make(map[string]*tables.TableSpec),
	}

	for _, m := range f.Models {
		if err := ds.Models.Register(m); err != nil {
			return nil, err
		}
	}
	for _, cf := range f.CustomFields {
		if err := ds.Extras.AddCustomField(cf); err != nil {
			return nil, err
		}
	}
	for _, cf := range f.ComputedFields {
		if err := ds.Extras.AddComputedField(cf); err != nil {
			return nil, err
		}
	}
	for _, rel := range f.Relationships {
		if err := ds.Extras.AddRelationship(rel); err != nil {
			return nil, err
		}
	}
	for i := range f.Objects {
		if err := ds.addObject(ctx, &f.Objects[i]); err != nil {
			return nil, err
		}
	}
	ds.linkReverseRelations()
	for i := range f.Associations {
		if err := ds.addAssociation(ctx, &f.Associations[i]); err != nil {
			return nil, err
		}
	}
	for i := range f.Tables {
		spec, err := ds.tableSpec(&f.Tables[i])
		if err != nil {
			return nil, err
		}
		ds.tables[spec.Model.Label()] = spec
	}
	return ds, nil
}

// Records returns the records of the model registered under label.
func (ds *Dataset) Records(label string) []models.Record {
	return append([]models.Record(nil), ds.records[label]...)
}

// QuerySet returns a queryset over the records of m.
func (ds *Dataset) QuerySet(m *models.Model) queryset.QuerySet {
	return queryset.New(m, ds.Records(m.Label()))
}

// Record returns the record with primary key id.
func (ds *Dataset) Record(id uuid.UUID) (models.Record, bool) {
	rec, ok := ds.byID[id]
	return rec, ok
}

// ResolveObject finds a record by content type and primary key. It satisfies
// tables.ObjectResolver.
func (ds *Dataset) ResolveObject(ctx context.Context, ct models.ContentType, id uuid.UUID) (models.Record, error) {
	rec, ok := ds.byID[id]
	if !ok || rec.Model().ContentType() != ct {
		return nil, naturalkey.ErrObjectNotFound.Msg(fmt.Sprintf("no %s with id %s", ct, id))
	}
	return rec, nil
}

// TableSpec returns the declared table of m, or one generated from its fields.
func (ds *Dataset) TableSpec(m *models.Model, defaults tables.ColumnDefaults) *tables.TableSpec {
	if spec, ok := ds.tables[m.Label()]; ok {
		return spec
	}
	return tables.SpecForModel(m, defaults)
}

// TableSpecByName returns the table with the given name among the declared tables and
// the generated tables of every registered model.
func (ds *Dataset) TableSpecByName(name string, defaults tables.ColumnDefaults) (*tables.TableSpec, bool) {
	for _, m := range ds.Models.Models() {
		if spec := ds.TableSpec(m, defaults); spec.Name == name {
			return spec, true
		}
	}
	return nil, false
}
