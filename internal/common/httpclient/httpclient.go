// Package httpclient is a small client for the table service REST API. Object keys are
// sent exactly as given, so composite keys must already be percent-encoded.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Configurator provides the server location and the acting user.
type Configurator interface {
	GetServerURL() string
	GetUser() string
}

// ServerError represents an error response from the server with a result code and error message.
type ServerError struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
}

// HTTPError represents an error response from the server with HTTP status code and message.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPClient makes requests to a table server.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// NewClient creates a new HTTP client using the provided configuration.
func NewClient(config Configurator) *HTTPClient {
	return &HTTPClient{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RequestOptions describes one request. Path is appended to the server URL verbatim.
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        []byte
}

func (c *HTTPClient) requestURL(opts RequestOptions) (string, error) {
	base := strings.TrimSuffix(c.config.GetServerURL(), "/")
	u, err := url.Parse(base + "/" + strings.TrimPrefix(opts.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %v", err)
	}
	q := u.Query()
	for k, v := range opts.QueryParams {
		if v != "" {
			q.Set(k, v)
		}
	}
	if user := c.config.GetUser(); user != "" && q.Get("user") == "" && opts.Method == http.MethodGet {
		q.Set("user", user)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DoRequest makes an HTTP request with the given options and returns the response body
// and content type.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error) {
	target, err := c.requestURL(opts)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, target, bytes.NewReader(opts.Body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %v", err)
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		var serverErr ServerError
		if err := json.Unmarshal(body, &serverErr); err == nil && serverErr.Error != "" {
			return nil, "", &HTTPError{
				StatusCode: resp.StatusCode,
				Message:    serverErr.Error,
			}
		}
		return nil, "", &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// splitLabel splits "app.model" into its parts.
func splitLabel(label string) (string, string, error) {
	app, model, ok := strings.Cut(label, ".")
	if !ok || app == "" || model == "" {
		return "", "", fmt.Errorf("invalid model label %q, expected <app_label>.<model>", label)
	}
	return url.PathEscape(app), url.PathEscape(model), nil
}

// GetObject looks up a record by composite key or UUID.
func (c *HTTPClient) GetObject(ctx context.Context, label, key string) ([]byte, error) {
	app, model, err := splitLabel(label)
	if err != nil {
		return nil, err
	}
	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/api/objects/" + app + "/" + model + "/" + key,
	})
	return body, err
}

// TableQuery selects what a table request renders.
type TableQuery struct {
	Format  string
	OrderBy string
	Columns []string
	Show    []string
	Page    int
}

func (q TableQuery) params() map[string]string {
	p := map[string]string{
		"format":   q.Format,
		"order_by": q.OrderBy,
		"columns":  strings.Join(q.Columns, ","),
		"show":     strings.Join(q.Show, ","),
	}
	if q.Page > 0 {
		p["page"] = strconv.Itoa(q.Page)
	}
	return p
}

// ListTable renders the table of a model and returns the body with its content type.
func (c *HTTPClient) ListTable(ctx context.Context, label string, q TableQuery) ([]byte, string, error) {
	app, model, err := splitLabel(label)
	if err != nil {
		return nil, "", err
	}
	return c.DoRequest(ctx, RequestOptions{
		Method:      http.MethodGet,
		Path:        "/api/tables/" + app + "/" + model,
		QueryParams: q.params(),
	})
}

func (c *HTTPClient) columnsPath(table string) (string, error) {
	user := c.config.GetUser()
	if user == "" {
		return "", fmt.Errorf("a user is required to manage saved columns")
	}
	return "/api/users/" + url.PathEscape(user) + "/tables/" + url.PathEscape(table) + "/columns", nil
}

// GetTableColumns returns the columns the configured user saved for table.
func (c *HTTPClient) GetTableColumns(ctx context.Context, table string) ([]string, error) {
	p, err := c.columnsPath(table)
	if err != nil {
		return nil, err
	}
	body, _, err := c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: p})
	if err != nil {
		return nil, err
	}
	columns := []string{}
	for _, v := range gjson.GetBytes(body, "columns").Array() {
		columns = append(columns, v.String())
	}
	return columns, nil
}

// SetTableColumns saves the column selection of the configured user for table.
func (c *HTTPClient) SetTableColumns(ctx context.Context, table string, columns []string) error {
	p, err := c.columnsPath(table)
	if err != nil {
		return err
	}
	data, err := json.Marshal(map[string][]string{"columns": columns})
	if err != nil {
		return err
	}
	_, _, err = c.DoRequest(ctx, RequestOptions{Method: http.MethodPut, Path: p, Body: data})
	return err
}

// Version returns the server version string.
func (c *HTTPClient) Version(ctx context.Context) (string, error) {
	body, _, err := c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: "/version"})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "serverVersion").String(), nil
}
