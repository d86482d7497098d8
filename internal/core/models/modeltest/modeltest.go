// Package modeltest provides a small DCIM-flavoured model registry for tests.
package modeltest

import (
	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// Registry returns a fresh registry holding:
//
//	contenttypes.contenttype  natural key (app_label, model)
//	extras.tag                unique name
//	extras.status             unique name, content types
//	extras.note               no natural key, generic assigned object
//	dcim.manufacturer         unique name
//	dcim.devicetype           unique constraint (manufacturer, model)
//	dcim.location             tree, explicit key (name, parent)
//	dcim.device               unique together (name, location)
//	dcim.interface            unique constraint (device, name)
//	ipam.prefix               unique prefix
func Registry() *models.Registry {
	r := models.NewRegistry()
	r.MustRegister(
		&models.Model{
			AppLabel: "contenttypes", Name: "contenttype", VerboseName: "content type",
			Fields: []*models.Field{
				{Name: "id", Type: models.AutoField},
				{Name: "app_label", Type: models.CharField},
				{Name: "model", Type: models.CharField},
			},
			UniqueTogether: [][]string{{"app_label", "model"}},
			DisplayField:   "model",
		},
		&models.Model{
			AppLabel: "extras", Name: "tag",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "name", Type: models.CharField, Unique: true},
				{Name: "color", Type: models.CharField},
			},
		},
		&models.Model{
			AppLabel: "extras", Name: "status", VerboseNamePlural: "statuses",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "name", Type: models.CharField, Unique: true},
				{Name: "color", Type: models.CharField},
				{Name: "content_types", Type: models.ManyToManyField, Related: "contenttypes.contenttype", VerboseName: "content types"},
			},
		},
		&models.Model{
			AppLabel: "extras", Name: "note",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "note", Type: models.TextField},
				{Name: "assigned_object", Type: models.GenericForeignKey},
			},
		},
		&models.Model{
			AppLabel: "dcim", Name: "manufacturer",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "name", Type: models.CharField, Unique: true},
				{Name: "device_types", Type: models.ReverseForeignKey, Related: "dcim.devicetype", VerboseName: "device types"},
			},
		},
		&models.Model{
			AppLabel: "dcim", Name: "devicetype", VerboseName: "device type",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "manufacturer", Type: models.ForeignKey, Related: "dcim.manufacturer"},
				{Name: "model", Type: models.CharField},
				{Name: "u_height", Type: models.IntegerField, VerboseName: "height (U)"},
				{Name: "is_full_depth", Type: models.BooleanField, VerboseName: "full depth"},
				{Name: "tags", Type: models.ManyToManyField, Related: "extras.tag"},
				{Name: "devices", Type: models.ReverseForeignKey, Related: "dcim.device"},
			},
			UniqueConstraints: []models.UniqueConstraint{
				{Name: "dcim_devicetype_manufacturer_model_uniq", Fields: []string{"manufacturer", "model"}},
			},
			DisplayField: "model",
		},
		&models.Model{
			AppLabel: "dcim", Name: "location", Tree: true,
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "name", Type: models.CharField},
				{Name: "parent", Type: models.ForeignKey, Related: "dcim.location", Null: true},
				{Name: "status", Type: models.ForeignKey, Related: "extras.status"},
				{Name: "tags", Type: models.ManyToManyField, Related: "extras.tag"},
				{Name: "notes", Type: models.GenericRelation, Related: "extras.note"},
			},
			NaturalKeyFields: []string{"name", "parent"},
		},
		&models.Model{
			AppLabel: "dcim", Name: "device",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "name", Type: models.CharField, Null: true},
				{Name: "device_type", Type: models.ForeignKey, Related: "dcim.devicetype", VerboseName: "type"},
				{Name: "location", Type: models.ForeignKey, Related: "dcim.location"},
				{Name: "status", Type: models.ForeignKey, Related: "extras.status"},
				{Name: "tags", Type: models.ManyToManyField, Related: "extras.tag"},
				{Name: "interfaces", Type: models.ReverseForeignKey, Related: "dcim.interface"},
				{Name: "notes", Type: models.GenericRelation, Related: "extras.note"},
			},
			UniqueTogether: [][]string{{"name", "location"}},
		},
		&models.Model{
			AppLabel: "dcim", Name: "interface",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "device", Type: models.ForeignKey, Related: "dcim.device"},
				{Name: "name", Type: models.CharField},
				{Name: "enabled", Type: models.BooleanField},
			},
			UniqueConstraints: []models.UniqueConstraint{
				{Name: "dcim_interface_device_name_uniq", Fields: []string{"device", "name"}},
			},
		},
		&models.Model{
			AppLabel: "ipam", Name: "prefix", VerboseNamePlural: "prefixes",
			Fields: []*models.Field{
				{Name: "id", Type: models.UUIDField, Unique: true},
				{Name: "prefix", Type: models.CharField, Unique: true},
				{Name: "description", Type: models.CharField},
			},
		},
	)
	return r
}

// Model returns the model registered under label, panicking if it is absent.
func Model(r *models.Registry, label string) *models.Model {
	m, ok := r.Get(label)
	if !ok {
		panic("modeltest: unknown model " + label)
	}
	return m
}

// Object creates a record of the model registered under label with a random id.
func Object(r *models.Registry, label string, values map[string]any) *models.Object {
	return models.NewObject(Model(r, label), uuid.Nil, values)
}
