package tables

import (
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// ParseAccessor splits an accessor path such as "device_type__manufacturer.name" into
// field name tokens.
func ParseAccessor(path string) []string {
	return models.ParsePath(path)
}
