package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/nautobot/nautobot-sub011/internal/config"
	"github.com/nautobot/nautobot-sub011/internal/fixtures"
	"github.com/nautobot/nautobot-sub011/internal/server"
)

const cliFixture = `
models:
  - app_label: dcim
    name: site
    fields:
      - {name: id, type: UUIDField, unique: true}
      - {name: name, type: CharField, unique: true}
      - {name: facility, type: CharField}
objects:
  - model: dcim.site
    fields: {name: Site A, facility: DC1}
  - model: dcim.site
    fields: {name: "Site B/2"}
`

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	jsonOutput = false
	keyNullArg = DefaultNullArg
	slugPK = ""
	tableFixtures, tableFormat, tableOrderBy = "", "text", ""
	tableColumns, tableShow, tablePage = nil, nil, 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cliFixture), 0600))
	return path
}

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"encode", []string{"key", "encode", "core-01", "Rack Row 1", "Site A"}, "core-01;Rack%20Row%201;Site%20A\n"},
		{"encode null", []string{"key", "encode", "10.1.1.0/24", "<null>"}, "10.1.1.0%2F24;%00\n"},
		{"encode custom null", []string{"key", "encode", "--null", "-", "a", "-"}, "a;%00\n"},
		{"decode", []string{"key", "decode", "10.1.1.0%2F24;%00"}, "10.1.1.0/24\n<null>\n"},
		{"slug", []string{"key", "slug", "Site A", "Rack Row 1"}, "site-a_rack-row-1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	out, err := runCLI(t, "key", "decode", "a;%00", "-j")
	require.NoError(t, err)
	assert.JSONEq(t, `{"values": ["a", null]}`, out)

	_, err = runCLI(t, "key", "decode", "bad%zz")
	assert.Error(t, err)
}

func TestTableRenderLocal(t *testing.T) {
	path := writeFixture(t)

	out, err := runCLI(t, "table", "render", "dcim.site", "--fixtures", path, "-o", "csv", "--order-by=-name")
	require.NoError(t, err)
	assert.Equal(t, "name,facility\nSite B/2,\nSite A,DC1\n", out)

	out, err = runCLI(t, "table", "render", "dcim.site", "--fixtures", path)
	require.NoError(t, err)
	assert.Contains(t, out, "SiteTable")
	assert.Contains(t, out, "(2 rows)")

	_, err = runCLI(t, "table", "render", "dcim.rack", "--fixtures", path)
	assert.Error(t, err)
	_, err = runCLI(t, "table", "render", "dcim.site", "--fixtures", path, "-o", "json")
	assert.Error(t, err)
}

func TestServerCommands(t *testing.T) {
	cfg, err := appconfig.Parse("format_version = \"0.1.0\"\nserver_port = \"8080\"\n")
	require.NoError(t, err)
	f, err := fixtures.Parse([]byte(cliFixture))
	require.NoError(t, err)
	ds, err := fixtures.Build(context.Background(), f)
	require.NoError(t, err)
	s, err := server.CreateNewServer(cfg, server.Backend{Data: ds})
	require.NoError(t, err)
	s.MountHandlers()
	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Setenv(EnvServerURL, srv.URL)
	t.Setenv(EnvUser, "alice")

	out, err := runCLI(t, "object", "get", "dcim.site", "Site%20B%2F2")
	require.NoError(t, err)
	assert.Contains(t, out, "composite_key: Site%20B%2F2\n")
	assert.Contains(t, out, "display: Site B/2\n")

	_, err = runCLI(t, "object", "get", "dcim.site", "Site%20C")
	assert.ErrorContains(t, err, "not found")

	out, err = runCLI(t, "table", "render", "dcim.site", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name,facility\nSite A,DC1\nSite B/2,\n", out)

	out, err = runCLI(t, "columns", "set", "SiteTable", "facility", "name")
	require.NoError(t, err)
	assert.Equal(t, "SiteTable: facility, name\n", out)

	out, err = runCLI(t, "columns", "get", "SiteTable", "-j")
	require.NoError(t, err)
	assert.JSONEq(t, `{"table": "SiteTable", "columns": ["facility", "name"]}`, out)

	out, err = runCLI(t, "table", "render", "dcim.site", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "facility,name\nDC1,Site A\n,Site B/2\n", out)

	out, err = runCLI(t, "version", "--server")
	require.NoError(t, err)
	assert.Contains(t, out, server.ServerVersion)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{Version: "0.1.0", ServerURL: "localhost:8080", User: "bob"}
	require.NoError(t, cfg.WriteConfig(path))

	require.NoError(t, LoadConfig(path))
	assert.Equal(t, "http://localhost:8080", GetConfig().GetServerURL())
	assert.Equal(t, "bob", GetConfig().GetUser())

	t.Setenv(EnvUser, "carol")
	require.NoError(t, LoadConfig(path))
	assert.Equal(t, "carol", GetConfig().GetUser())

	bad := &Config{ServerURL: "localhost"}
	assert.Error(t, bad.ValidateConfig())
	assert.Error(t, LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")))
}
