// Package extras holds the extensibility features attached to models at runtime:
// custom fields, computed fields, relationships and their associations.
package extras

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// Registry answers which features apply to a content type. Implementations must be safe
// for concurrent readers.
type Registry interface {
	CustomFieldsFor(ct models.ContentType) []*CustomField
	ComputedFieldsFor(ct models.ContentType) []*ComputedField
	RelationshipsWithSource(ct models.ContentType) []*Relationship
	RelationshipsWithDestination(ct models.ContentType) []*Relationship
	Relationship(key string) (*Relationship, bool)
	AssociationsFor(ct models.ContentType, id uuid.UUID) []*Association
}

// MemoryRegistry is a Registry populated at startup.
type MemoryRegistry struct {
	mu            sync.RWMutex
	customFields  map[string]*CustomField
	computed      map[string]*ComputedField
	relationships map[string]*Relationship
	associations  []*Association
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		customFields:  make(map[string]*CustomField),
		computed:      make(map[string]*ComputedField),
		relationships: make(map[string]*Relationship),
	}
}

// AddCustomField validates and registers cf.
func (r *MemoryRegistry) AddCustomField(cf *CustomField) error {
	if err := validationError("custom field", cf.Key, V().Struct(cf)); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.customFields[cf.Key]; dup {
		return ErrAlreadyExists.Msg("custom field " + cf.Key)
	}
	r.customFields[cf.Key] = cf
	return nil
}

// AddComputedField validates and registers cf. The template must compile.
func (r *MemoryRegistry) AddComputedField(cf *ComputedField) error {
	if err := validationError("computed field", cf.Key, V().Struct(cf)); err != nil {
		return err
	}
	if _, err := compile(cf.Template); err != nil {
		return ErrInvalidDefinition.MsgErr(fmt.Sprintf("computed field %q", cf.Key), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.computed[cf.Key]; dup {
		return ErrAlreadyExists.Msg("computed field " + cf.Key)
	}
	r.computed[cf.Key] = cf
	return nil
}

// AddRelationship validates and registers rel. Symmetric relationships must link a
// content type to itself.
func (r *MemoryRegistry) AddRelationship(rel *Relationship) error {
	if err := validationError("relationship", rel.Key, V().Struct(rel)); err != nil {
		return err
	}
	if rel.Symmetric() && rel.SourceType != rel.DestinationType {
		return ErrInvalidDefinition.Msg(fmt.Sprintf("relationship %q: symmetric relationships need identical source and destination types", rel.Key))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.relationships[rel.Key]; dup {
		return ErrAlreadyExists.Msg("relationship " + rel.Key)
	}
	r.relationships[rel.Key] = rel
	return nil
}

// AddAssociation validates and registers a. Its relationship must exist and its ends
// must match the relationship's content types.
func (r *MemoryRegistry) AddAssociation(a *Association) error {
	if err := validationError("association", a.Relationship, V().Struct(a)); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, ok := r.relationships[a.Relationship]
	if !ok {
		return ErrUnknownRelation.Msg(a.Relationship)
	}
	if a.SourceType != rel.SourceType || a.DestinationType != rel.DestinationType {
		return ErrInvalidDefinition.Msg(fmt.Sprintf("association of %q links %s to %s", rel.Key, a.SourceType, a.DestinationType))
	}
	if !rel.HasMany(SideSource) || !rel.HasMany(SideDestination) {
		for _, existing := range r.associations {
			if existing.Relationship != rel.Key {
				continue
			}
			if (!rel.HasMany(SideDestination) && existing.SourceID == a.SourceID) ||
				(!rel.HasMany(SideSource) && existing.DestinationID == a.DestinationID) {
				return ErrAlreadyExists.Msg(fmt.Sprintf("%s association would exceed relationship cardinality", rel.Key))
			}
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.associations = append(r.associations, a)
	return nil
}

func (r *MemoryRegistry) CustomFieldsFor(ct models.ContentType) []*CustomField {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*CustomField
	for _, cf := range r.customFields {
		if cf.AppliesTo(ct) {
			out = append(out, cf)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (r *MemoryRegistry) ComputedFieldsFor(ct models.ContentType) []*ComputedField {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ComputedField
	for _, cf := range r.computed {
		if cf.ContentType == ct {
			out = append(out, cf)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (r *MemoryRegistry) RelationshipsWithSource(ct models.ContentType) []*Relationship {
	return r.relationshipsWhere(func(rel *Relationship) bool { return rel.SourceType == ct })
}

func (r *MemoryRegistry) RelationshipsWithDestination(ct models.ContentType) []*Relationship {
	return r.relationshipsWhere(func(rel *Relationship) bool { return rel.DestinationType == ct })
}

func (r *MemoryRegistry) relationshipsWhere(match func(*Relationship) bool) []*Relationship {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Relationship
	for _, rel := range r.relationships {
		if match(rel) {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *MemoryRegistry) Relationship(key string) (*Relationship, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.relationships[key]
	return rel, ok
}

// AssociationsFor returns every association with (ct, id) on either end, in insertion order.
func (r *MemoryRegistry) AssociationsFor(ct models.ContentType, id uuid.UUID) []*Association {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Association
	for _, a := range r.associations {
		if a.Involves(SidePeer, ct, id) {
			out = append(out, a)
		}
	}
	return out
}
