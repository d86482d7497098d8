package extras

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/models/modeltest"
)

var (
	deviceCT   = models.ContentType{AppLabel: "dcim", Model: "device"}
	locationCT = models.ContentType{AppLabel: "dcim", Model: "location"}
	prefixCT   = models.ContentType{AppLabel: "ipam", Model: "prefix"}
)

func TestAddCustomField(t *testing.T) {
	tests := []struct {
		name    string
		cf      CustomField
		wantErr bool
	}{
		{"valid text", CustomField{Key: "owner", Label: "Owner", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}}, false},
		{"valid select", CustomField{Key: "tier", Label: "Tier", Type: CustomFieldTypeSelect, ContentTypes: []models.ContentType{deviceCT}, Choices: []string{"gold", "silver"}}, false},
		{"select without choices", CustomField{Key: "tier2", Label: "Tier", Type: CustomFieldTypeSelect, ContentTypes: []models.ContentType{deviceCT}}, true},
		{"bad key", CustomField{Key: "Bad-Key", Label: "x", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}}, true},
		{"unknown type", CustomField{Key: "x", Label: "x", Type: "blob", ContentTypes: []models.ContentType{deviceCT}}, true},
		{"no content types", CustomField{Key: "y", Label: "y", Type: CustomFieldTypeText}, true},
		{"missing label", CustomField{Key: "z", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}}, true},
	}
	r := NewMemoryRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := tt.cf
			err := r.AddCustomField(&cf)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDefinition)
				return
			}
			assert.NoError(t, err)
		})
	}

	err := r.AddCustomField(&CustomField{Key: "owner", Label: "Owner", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCustomFieldsFor(t *testing.T) {
	r := NewMemoryRegistry()
	require.NoError(t, r.AddCustomField(&CustomField{Key: "b", Label: "B", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}, Weight: 100}))
	require.NoError(t, r.AddCustomField(&CustomField{Key: "a", Label: "A", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT, locationCT}, Weight: 100}))
	require.NoError(t, r.AddCustomField(&CustomField{Key: "c", Label: "C", Type: CustomFieldTypeText, ContentTypes: []models.ContentType{deviceCT}, Weight: 50}))

	var keys []string
	for _, cf := range r.CustomFieldsFor(deviceCT) {
		keys = append(keys, cf.Key)
	}
	assert.Equal(t, []string{"c", "a", "b"}, keys)
	assert.Len(t, r.CustomFieldsFor(locationCT), 1)
	assert.Empty(t, r.CustomFieldsFor(prefixCT))
}

func TestRelationshipHasMany(t *testing.T) {
	tests := []struct {
		typ          RelationshipType
		source, dest bool
		symmetric    bool
	}{
		{RelationshipOneToOne, false, false, false},
		{RelationshipSymmetricOneToOne, false, false, true},
		{RelationshipOneToMany, false, true, false},
		{RelationshipManyToMany, true, true, false},
		{RelationshipSymmetricManyToMany, true, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			rel := &Relationship{Type: tt.typ}
			assert.Equal(t, tt.source, rel.HasMany(SideSource))
			assert.Equal(t, tt.dest, rel.HasMany(SideDestination))
			assert.Equal(t, tt.symmetric, rel.Symmetric())
		})
	}
	assert.Equal(t, SideDestination, SideSource.Opposite())
	assert.Equal(t, SideSource, SideDestination.Opposite())
	assert.Equal(t, SidePeer, SidePeer.Opposite())
}

func TestRelationshipsAndAssociations(t *testing.T) {
	r := NewMemoryRegistry()
	require.NoError(t, r.AddRelationship(&Relationship{Key: "device_prefixes", Label: "Prefixes", Type: RelationshipOneToMany, SourceType: deviceCT, DestinationType: prefixCT}))
	require.NoError(t, r.AddRelationship(&Relationship{Key: "device_peers", Label: "Peers", Type: RelationshipSymmetricManyToMany, SourceType: deviceCT, DestinationType: deviceCT}))

	err := r.AddRelationship(&Relationship{Key: "bad_sym", Label: "x", Type: RelationshipSymmetricOneToOne, SourceType: deviceCT, DestinationType: prefixCT})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	assert.Len(t, r.RelationshipsWithSource(deviceCT), 2)
	assert.Len(t, r.RelationshipsWithDestination(prefixCT), 1)
	assert.Empty(t, r.RelationshipsWithSource(prefixCT))

	dev, pfx1, pfx2 := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, r.AddAssociation(&Association{Relationship: "device_prefixes", SourceType: deviceCT, SourceID: dev, DestinationType: prefixCT, DestinationID: pfx1}))
	require.NoError(t, r.AddAssociation(&Association{Relationship: "device_prefixes", SourceType: deviceCT, SourceID: dev, DestinationType: prefixCT, DestinationID: pfx2}))

	err = r.AddAssociation(&Association{Relationship: "device_prefixes", SourceType: deviceCT, SourceID: uuid.New(), DestinationType: prefixCT, DestinationID: pfx1})
	assert.ErrorIs(t, err, ErrAlreadyExists, "a destination has at most one source")

	err = r.AddAssociation(&Association{Relationship: "nope", SourceType: deviceCT, SourceID: dev, DestinationType: prefixCT, DestinationID: pfx1})
	assert.ErrorIs(t, err, ErrUnknownRelation)

	err = r.AddAssociation(&Association{Relationship: "device_prefixes", SourceType: prefixCT, SourceID: dev, DestinationType: deviceCT, DestinationID: pfx1})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	assocs := r.AssociationsFor(deviceCT, dev)
	require.Len(t, assocs, 2)
	assert.NotEqual(t, uuid.Nil, assocs[0].ID)
	ct, id := assocs[0].Peer(dev)
	assert.Equal(t, prefixCT, ct)
	assert.Equal(t, pfx1, id)
	assert.True(t, assocs[0].Involves(SideSource, deviceCT, dev))
	assert.False(t, assocs[0].Involves(SideDestination, deviceCT, dev))
	assert.Len(t, r.AssociationsFor(prefixCT, pfx2), 1)
}

func TestComputedField(t *testing.T) {
	reg := modeltest.Registry()
	loc := modeltest.Object(reg, "dcim.location", map[string]any{"name": "Room-01"})
	dev := modeltest.Object(reg, "dcim.device", map[string]any{"name": "edge-01", "location": loc})
	dev.CustomFieldData["owner"] = "netops"

	r := NewMemoryRegistry()
	cf := &ComputedField{Key: "where", Label: "Where", ContentType: deviceCT, Template: "obj.name + ' @ ' + obj.location.name"}
	require.NoError(t, r.AddComputedField(cf))
	require.Len(t, r.ComputedFieldsFor(deviceCT), 1)

	ctx := context.Background()
	got, err := cf.Render(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, "edge-01 @ Room-01", got)

	owner := &ComputedField{Key: "owner", Label: "Owner", ContentType: deviceCT, Template: "obj.custom_field_data.owner.toUpperCase()"}
	got, err = owner.Render(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, "NETOPS", got)

	broken := &ComputedField{Key: "broken", Label: "Broken", ContentType: deviceCT, Template: "obj.status.name"}
	_, err = broken.Render(ctx, dev)
	assert.Error(t, err)

	broken.FallbackValue = "n/a"
	got, err = broken.Render(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, "n/a", got)

	err = r.AddComputedField(&ComputedField{Key: "bad", Label: "Bad", ContentType: deviceCT, Template: "var x = 1;"})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}
