package server

import (
	"net/http"
	"strings"

	"github.com/nautobot/nautobot-sub011/internal/common/httpx"
	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/internal/core/models"
	"github.com/nautobot/nautobot-sub011/internal/core/naturalkey"
)

type ObjectRsp struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	Display      string    `json:"display"`
	URL          string    `json:"url"`
	NaturalKey   []*string `json:"natural_key"`
	CompositeKey string    `json:"composite_key"`
	NaturalSlug  string    `json:"natural_slug"`
}

// escapedKey returns the last segment of the escaped request path. Routing decodes
// some escapes, and a composite key must reach the decoder exactly as encoded.
func escapedKey(r *http.Request) string {
	p := r.URL.EscapedPath()
	return p[strings.LastIndex(p, "/")+1:]
}

func (s *TableServer) getObject(r *http.Request) (*httpx.Response, error) {
	m, err := s.model(r)
	if err != nil {
		return nil, err
	}
	key := escapedKey(r)

	var rec models.Record
	if uuid.IsUUID(key) {
		id, _ := uuid.Parse(key)
		rec, err = s.data.ResolveObject(r.Context(), m.ContentType(), id)
	} else {
		rec, err = naturalkey.Resolve(r.Context(), s.data.QuerySet(m), key)
	}
	if err != nil {
		return nil, err
	}

	values, err := naturalkey.GetE(rec)
	if err != nil {
		return nil, err
	}
	rsp := &ObjectRsp{
		ID:           rec.PK().String(),
		Model:        m.Label(),
		Display:      models.Display(rec),
		URL:          s.urls.ObjectURL(m.ContentType(), rec.PK()),
		NaturalKey:   make([]*string, len(values)),
		CompositeKey: naturalkey.EncodeCompositeKey(values),
		NaturalSlug:  naturalkey.BuildNaturalSlug(values, rec.PK().String()),
	}
	for i, v := range values {
		rsp.NaturalKey[i] = v.Ptr()
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}
