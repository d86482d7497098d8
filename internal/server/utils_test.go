package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nautobot/nautobot-sub011/internal/config"
	"github.com/nautobot/nautobot-sub011/internal/core/models/modeltest"
	"github.com/nautobot/nautobot-sub011/internal/fixtures"
)

const testFixture = `
custom_fields:
  - key: owner
    label: Owner
    type: text
    content_types: [dcim.device]
objects:
  - model: extras.status
    fields: {name: Active}
  - model: dcim.manufacturer
    fields: {name: Acme}
  - model: dcim.devicetype
    fields: {manufacturer: Acme, model: X100}
  - model: dcim.location
    fields: {name: Site A, status: Active}
  - model: dcim.location
    fields: {name: Rack Row 1, parent: Site A, status: Active}
  - model: dcim.device
    fields: {name: core-01, device_type: "Acme;X100", location: "Rack Row 1;Site A", status: Active}
    custom_fields: {owner: netops}
  - model: dcim.device
    fields: {name: core-02, location: Site A}
  - model: ipam.prefix
    fields: {prefix: 10.1.1.0/24}
tables:
  - name: DeviceTable
    model: dcim.device
    columns:
      - {name: pk, kind: toggle}
      - {name: name, kind: link}
      - {name: location, kind: link, order_by: [location__name]}
      - {name: actions, kind: actions}
    default_columns: [pk, name, location, actions]
`

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newTestServer(t *testing.T) *TableServer {
	t.Helper()
	cfg, err := config.Parse(`
format_version = "0.1.0"
server_port = "8080"
[tables]
per_page = 1
`)
	require.NoError(t, err)
	f, err := fixtures.Parse([]byte(testFixture))
	require.NoError(t, err)
	ds, err := fixtures.Build(context.Background(), f, fixtures.WithModels(modeltest.Registry()))
	require.NoError(t, err)

	s, err := CreateNewServer(cfg, Backend{Data: ds})
	require.NoError(t, err)
	s.MountHandlers()
	return s
}

func executeTestRequest(t *testing.T, s *TableServer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, s *TableServer, target string) *httptest.ResponseRecorder {
	t.Helper()
	return executeTestRequest(t, s, httptest.NewRequest(http.MethodGet, target, nil))
}

func put(t *testing.T, s *TableServer, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return executeTestRequest(t, s, req)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func columnNames(rsp *TableRsp) []string {
	var names []string
	for _, c := range rsp.Columns {
		names = append(names, c.Name)
	}
	return names
}
