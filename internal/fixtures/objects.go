package fixtures

import (
	"context"
	"fmt"
	"math"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/naturalkey"
)

func (ds *Dataset) addObject(ctx context.Context, of *ObjectFixture) error {
	m, ok := ds.Models.Get(of.Model)
	if !ok {
		return ErrInvalidObject.Msg("unknown model " + of.Model)
	}
	id := uuid.Nil
	if of.ID != "" {
		var err error
		if id, err = uuid.Parse(of.ID); err != nil {
			return ErrInvalidObject.MsgErr("invalid id "+of.ID, err)
		}
		if _, dup := ds.byID[id]; dup {
			return ErrInvalidObject.Msg("duplicate id " + of.ID)
		}
	}

	values := make(map[string]any, len(of.Fields))
	for name, raw := range of.Fields {
		f, ok := m.Field(name)
		if !ok {
			return ErrInvalidObject.Msg(fmt.Sprintf("%s has no field %q", m.Label(), name))
		}
		v, err := ds.fieldValue(ctx, m, f, raw)
		if err != nil {
			return err
		}
		values[name] = v
	}

	obj := models.NewObject(m, id, values)
	if len(of.CustomFields) > 0 {
		known := make(map[string]bool)
		for _, cf := range ds.Extras.CustomFieldsFor(m.ContentType()) {
			known[cf.Key] = true
		}
		for key, v := range of.CustomFields {
			if !known[key] {
				return ErrInvalidObject.Msg(fmt.Sprintf("custom field %q does not apply to %s", key, m.Label()))
			}
			obj.CustomFieldData[key] = v
		}
	}

	ds.records[m.Label()] = append(ds.records[m.Label()], obj)
	ds.byID[obj.ID] = obj
	return nil
}

// fieldValue converts a decoded fixture value for field f of m.
func (ds *Dataset) fieldValue(ctx context.Context, m *models.Model, f *models.Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch f.Kind() {
	case models.KindScalar:
		return scalarValue(f, raw), nil
	case models.KindToOne:
		related, ok := m.Related(f.Name)
		if !ok {
			return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: unknown related model %s", m.Label(), f.Name, f.Related))
		}
		ref, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: expected a key, got %T", m.Label(), f.Name, raw))
		}
		return ds.resolve(ctx, related, ref)
	case models.KindToMany:
		related, ok := m.Related(f.Name)
		if !ok {
			return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: unknown related model %s", m.Label(), f.Name, f.Related))
		}
		refs, ok := raw.([]any)
		if !ok {
			return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: expected a list of keys, got %T", m.Label(), f.Name, raw))
		}
		out := make([]models.Record, 0, len(refs))
		for _, r := range refs {
			ref, ok := r.(string)
			if !ok {
				return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: expected a key, got %T", m.Label(), f.Name, r))
			}
			rec, err := ds.resolve(ctx, related, ref)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		return out, nil
	case models.KindGeneric:
		return ds.genericValue(ctx, m, f, raw)
	}
	return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: unsupported field type %s", m.Label(), f.Name, f.Type))
}

// genericValue resolves {content_type, key} to the referenced record.
func (ds *Dataset) genericValue(ctx context.Context, m *models.Model, f *models.Field, raw any) (any, error) {
	ref, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: expected content_type and key", m.Label(), f.Name))
	}
	label, _ := ref["content_type"].(string)
	key, _ := ref["key"].(string)
	target, ok := ds.Models.Get(label)
	if !ok || key == "" {
		return nil, ErrInvalidObject.Msg(fmt.Sprintf("%s.%s: invalid generic reference", m.Label(), f.Name))
	}
	return ds.resolve(ctx, target, key)
}

// scalarValue narrows JSON numbers to integers for integer fields.
func scalarValue(f *models.Field, raw any) any {
	switch f.Type {
	case models.IntegerField, models.AutoField, models.BigAutoField:
		if n, ok := raw.(float64); ok && n == math.Trunc(n) {
			return int64(n)
		}
	}
	return raw
}

// resolve finds a declared record of m by UUID or composite key.
func (ds *Dataset) resolve(ctx context.Context, m *models.Model, ref string) (models.Record, error) {
	if uuid.IsUUID(ref) {
		id, err := uuid.Parse(ref)
		if err == nil {
			if rec, ok := ds.byID[id]; ok && rec.Model() == m {
				return rec, nil
			}
		}
		return nil, ErrUnresolvedRef.Msg(fmt.Sprintf("no %s with id %s", m.Label(), ref))
	}
	rec, err := naturalkey.Resolve(ctx, ds.QuerySet(m), ref)
	if err != nil {
		return nil, ErrUnresolvedRef.MsgErr(fmt.Sprintf("%s %q", m.Label(), ref), err)
	}
	return rec, nil
}

// linkReverseRelations fills reverse relation fields from the forward foreign keys
// declared on other records.
func (ds *Dataset) linkReverseRelations() {
	for _, m := range ds.Models.Models() {
		for _, f := range m.Fields {
			if f.Kind() != models.KindToOne || f.Type == models.ReverseOneToOne {
				continue
			}
			target, ok := m.Related(f.Name)
			if !ok {
				continue
			}
			reverse := reverseField(target, m)
			if reverse == nil {
				continue
			}
			for _, rec := range ds.records[m.Label()] {
				v, _ := rec.Attr(f.Name)
				parent, ok := v.(*models.Object)
				if !ok {
					continue
				}
				appendReverse(parent, reverse, rec)
			}
		}
	}
}

func reverseField(target, source *models.Model) *models.Field {
	for _, f := range target.Fields {
		if f.Related != source.Label() {
			continue
		}
		if f.Type == models.ReverseForeignKey || f.Type == models.ReverseOneToOne {
			return f
		}
	}
	return nil
}

func appendReverse(parent *models.Object, f *models.Field, child models.Record) {
	if f.Type == models.ReverseOneToOne {
		parent.Set(f.Name, child)
		return
	}
	existing, _ := parent.Attr(f.Name)
	members, _ := existing.([]models.Record)
	parent.Set(f.Name, append(members, child))
}

func (ds *Dataset) addAssociation(ctx context.Context, af *AssociationFixture) error {
	rel, ok := ds.Extras.Relationship(af.Relationship)
	if !ok {
		return extras.ErrUnknownRelation.Msg(af.Relationship)
	}
	srcModel, ok := ds.Models.ForContentType(rel.SourceType)
	if !ok {
		return ErrInvalidObject.Msg("unknown model " + rel.SourceType.String())
	}
	dstModel, ok := ds.Models.ForContentType(rel.DestinationType)
	if !ok {
		return ErrInvalidObject.Msg("unknown model " + rel.DestinationType.String())
	}
	src, err := ds.resolve(ctx, srcModel, af.Source)
	if err != nil {
		return err
	}
	dst, err := ds.resolve(ctx, dstModel, af.Destination)
	if err != nil {
		return err
	}
	return ds.Extras.AddAssociation(&extras.Association{
		Relationship:    rel.Key,
		SourceType:      rel.SourceType,
		SourceID:        src.PK(),
		DestinationType: rel.DestinationType,
		DestinationID:   dst.PK(),
	})
}
