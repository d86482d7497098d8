package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

func TestWrapHttpRsp(t *testing.T) {
	notFound := apperrors.New("lookup failed").SetStatusCode(http.StatusNotFound)
	tests := []struct {
		name        string
		handler     RequestHandler
		code        int
		contentType string
		body        string
	}{
		{
			name: "json",
			handler: func(r *http.Request) (*Response, error) {
				return &Response{StatusCode: http.StatusOK, Response: map[string]string{"a": "b"}}, nil
			},
			code:        http.StatusOK,
			contentType: "application/json",
			body:        `{"a":"b"}`,
		},
		{
			name: "created with location",
			handler: func(r *http.Request) (*Response, error) {
				return &Response{StatusCode: http.StatusCreated, Location: "/x", Response: "text", ContentType: "text/plain"}, nil
			},
			code:        http.StatusCreated,
			contentType: "text/plain",
			body:        "text",
		},
		{
			name: "application error",
			handler: func(r *http.Request) (*Response, error) {
				return nil, notFound.Msg("no device")
			},
			code:        http.StatusNotFound,
			contentType: "application/json",
			body:        `{"result":0,"error":"no device"}`,
		},
		{
			name: "plain error",
			handler: func(r *http.Request) (*Response, error) {
				return nil, errors.New("oops")
			},
			code:        http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"result":0,"error":"oops"}`,
		},
		{
			name: "chunked",
			handler: func(r *http.Request) (*Response, error) {
				return &Response{StatusCode: http.StatusOK, ContentType: "text/csv", Chunked: true, WriteChunks: func(w http.ResponseWriter) error {
					_, err := w.Write([]byte("a,b\n"))
					return err
				}}, nil
			},
			code:        http.StatusOK,
			contentType: "text/csv",
			body:        "a,b\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WrapHttpRsp(tt.handler)(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rr.Body.String())
		})
	}
}

func TestGetRequestData(t *testing.T) {
	var data struct {
		Columns []string `json:"columns"`
	}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"columns":["name"]}`))
	require.NoError(t, GetRequestData(req, &data))
	assert.Equal(t, []string{"name"}, data.Columns)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, GetRequestData(req, &data).(*Error).StatusCode)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{`))
	assert.Equal(t, http.StatusBadRequest, GetRequestData(req, &data).(*Error).StatusCode)
}

func TestSendJsonRspPreEncoded(t *testing.T) {
	rr := httptest.NewRecorder()
	SendJsonRsp(context.Background(), rr, http.StatusOK, `{"ok":true}`)
	assert.Equal(t, `{"ok":true}`, rr.Body.String())
}
