package tables

import (
	"github.com/nautobot/nautobot-sub011/internal/core/extras"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// ExtensionColumns returns the columns contributed by the custom fields, computed fields
// and relationships registered for m. The result is freshly allocated on every call.
func ExtensionColumns(m *models.Model, reg extras.Registry) []Column {
	if reg == nil {
		return nil
	}
	ct := m.ContentType()
	var out []Column

	for _, cf := range reg.CustomFieldsFor(ct) {
		out = append(out, Column{
			Name:        CustomFieldPrefix + cf.Key,
			Accessor:    models.CustomFieldDataAttr + "." + cf.Key,
			VerboseName: cf.Label,
			Kind:        KindCustomField,
			CustomField: cf,
		})
	}

	for _, cf := range reg.ComputedFieldsFor(ct) {
		out = append(out, Column{
			Name:          ComputedFieldPrefix + cf.Key,
			VerboseName:   cf.Label,
			Kind:          KindComputedField,
			ComputedField: cf,
		})
	}

	for _, rel := range reg.RelationshipsWithSource(ct) {
		side := extras.SideSource
		if rel.Symmetric() {
			side = extras.SidePeer
		}
		out = append(out, relationshipColumn(rel, side))
	}
	for _, rel := range reg.RelationshipsWithDestination(ct) {
		// symmetric relationships were added once by the source pass
		if rel.Symmetric() {
			continue
		}
		out = append(out, relationshipColumn(rel, extras.SideDestination))
	}
	return out
}

var sideSuffix = map[extras.RelationshipSide]string{
	extras.SideSource:      "_src",
	extras.SideDestination: "_dst",
	extras.SidePeer:        "_peer",
}

func relationshipColumn(rel *extras.Relationship, side extras.RelationshipSide) Column {
	return Column{
		Name:         RelationshipPrefix + rel.Key + sideSuffix[side],
		VerboseName:  rel.SideLabel(side),
		Kind:         KindRelationship,
		Relationship: rel,
		Side:         side,
	}
}
