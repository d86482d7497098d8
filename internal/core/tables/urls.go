package tables

import (
	"context"
	"net/url"
	"strings"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
)

// URLResolver builds the links rendered into cells.
type URLResolver interface {
	// Reverse returns the URL of a named view ("app:model_action") with query appended.
	Reverse(viewName string, query url.Values) string
	// ObjectURL returns the detail URL of a record.
	ObjectURL(ct models.ContentType, id uuid.UUID) string
}

// ObjectResolver loads the record a relationship association points at.
type ObjectResolver func(ctx context.Context, ct models.ContentType, id uuid.UUID) (models.Record, error)

// AssociationListView lists relationship associations; filtered by relationship and end.
const AssociationListView = "extras:relationshipassociation_list"

// PathResolver maps view names onto "/<app>/<model>/[<action>/]" under Prefix.
// The "list" action maps to the bare model path.
type PathResolver struct {
	Prefix string
}

var _ URLResolver = PathResolver{}

func (r PathResolver) Reverse(viewName string, query url.Values) string {
	app, name, ok := strings.Cut(viewName, ":")
	if !ok {
		name, app = app, ""
	}
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(r.Prefix, "/"))
	if app != "" {
		b.WriteString("/" + url.PathEscape(app))
	}
	model, action, _ := strings.Cut(name, "_")
	b.WriteString("/" + url.PathEscape(model) + "/")
	if action != "" && action != "list" {
		b.WriteString(url.PathEscape(action) + "/")
	}
	if len(query) > 0 {
		b.WriteString("?" + query.Encode())
	}
	return b.String()
}

func (r PathResolver) ObjectURL(ct models.ContentType, id uuid.UUID) string {
	return strings.TrimSuffix(r.Prefix, "/") + "/" + url.PathEscape(ct.AppLabel) + "/" + url.PathEscape(ct.Model) + "/" + id.String() + "/"
}
