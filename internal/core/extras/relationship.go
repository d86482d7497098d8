package extras

import (
	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// RelationshipType is the cardinality of a relationship.
type RelationshipType string

const (
	RelationshipOneToOne            RelationshipType = "one-to-one"
	RelationshipSymmetricOneToOne   RelationshipType = "symmetric-one-to-one"
	RelationshipOneToMany           RelationshipType = "one-to-many"
	RelationshipManyToMany          RelationshipType = "many-to-many"
	RelationshipSymmetricManyToMany RelationshipType = "symmetric-many-to-many"
)

// RelationshipSide names an end of a relationship. Symmetric relationships have only peers.
type RelationshipSide string

const (
	SideSource      RelationshipSide = "source"
	SideDestination RelationshipSide = "destination"
	SidePeer        RelationshipSide = "peer"
)

// Opposite returns the other end of the relationship.
func (s RelationshipSide) Opposite() RelationshipSide {
	switch s {
	case SideSource:
		return SideDestination
	case SideDestination:
		return SideSource
	default:
		return SidePeer
	}
}

// Relationship is a user-defined link between records of two content types.
type Relationship struct {
	Key              string             `json:"key" mapstructure:"key" validate:"required,featurekey,max=50"`
	Label            string             `json:"label" mapstructure:"label" validate:"required,max=100"`
	Type             RelationshipType   `json:"type" mapstructure:"type" validate:"required,oneof=one-to-one symmetric-one-to-one one-to-many many-to-many symmetric-many-to-many"`
	SourceType       models.ContentType `json:"source_type" mapstructure:"source_type" validate:"required"`
	DestinationType  models.ContentType `json:"destination_type" mapstructure:"destination_type" validate:"required"`
	SourceLabel      string             `json:"source_label,omitempty" mapstructure:"source_label"`
	DestinationLabel string             `json:"destination_label,omitempty" mapstructure:"destination_label"`
}

// Symmetric reports whether both ends are interchangeable peers.
func (r *Relationship) Symmetric() bool {
	return r.Type == RelationshipSymmetricOneToOne || r.Type == RelationshipSymmetricManyToMany
}

// HasMany reports whether the given side may have more than one associated record.
func (r *Relationship) HasMany(side RelationshipSide) bool {
	switch r.Type {
	case RelationshipOneToOne, RelationshipSymmetricOneToOne:
		return false
	case RelationshipManyToMany, RelationshipSymmetricManyToMany:
		return true
	case RelationshipOneToMany:
		return side == SideDestination
	}
	return false
}

// SideLabel returns the label shown for the records on side.
func (r *Relationship) SideLabel(side RelationshipSide) string {
	switch side {
	case SideSource:
		if r.SourceLabel != "" {
			return r.SourceLabel
		}
	case SideDestination:
		if r.DestinationLabel != "" {
			return r.DestinationLabel
		}
	}
	return r.Label
}

// Association links two records through a relationship.
type Association struct {
	ID              uuid.UUID          `json:"id" mapstructure:"id"`
	Relationship    string             `json:"relationship" mapstructure:"relationship" validate:"required"`
	SourceType      models.ContentType `json:"source_type" mapstructure:"source_type" validate:"required"`
	SourceID        uuid.UUID          `json:"source_id" mapstructure:"source_id" validate:"required"`
	DestinationType models.ContentType `json:"destination_type" mapstructure:"destination_type" validate:"required"`
	DestinationID   uuid.UUID          `json:"destination_id" mapstructure:"destination_id" validate:"required"`
}

// Peer returns the end of the association opposite to the record id.
func (a *Association) Peer(id uuid.UUID) (models.ContentType, uuid.UUID) {
	if a.SourceID == id {
		return a.DestinationType, a.DestinationID
	}
	return a.SourceType, a.SourceID
}

// Involves reports whether the record (ct, id) is on the given side of the association.
// SidePeer matches either end.
func (a *Association) Involves(side RelationshipSide, ct models.ContentType, id uuid.UUID) bool {
	src := a.SourceType == ct && a.SourceID == id
	dst := a.DestinationType == ct && a.DestinationID == id
	switch side {
	case SideSource:
		return src
	case SideDestination:
		return dst
	default:
		return src || dst
	}
}
