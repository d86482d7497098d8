// Package httpx provides HTTP request/response handling utilities. It maps application
// errors onto HTTP status codes and renders JSON, plain text and chunked responses.
package httpx

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/nautobot/nautobot-sub011/internal/common/apperrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetRequestData parses a JSON request body into data.
// Only POST and PUT requests carry a body.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil || r.Body == http.NoBody {
		log.Ctx(r.Context()).Error().Msg("Empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("unable to decode request body")
		return ErrUnableToParseReqData()
	}
	return nil
}

// WriteChunksFunc writes a chunked response body.
type WriteChunksFunc func(w http.ResponseWriter) error

// Response represents an HTTP response with configurable status code,
// content type, and optional chunked transfer encoding.
type Response struct {
	StatusCode  int
	Location    string
	Response    any
	ContentType string
	Chunked     bool
	WriteChunks WriteChunksFunc
}

// RequestHandler handles a request and returns the response to send.
type RequestHandler func(r *http.Request) (*Response, error)

// SendErr writes err as an error response. Application errors carry their own status code.
func SendErr(w http.ResponseWriter, err error) {
	var httperror *Error
	if errors.As(err, &httperror) {
		httperror.Send(w)
		return
	}
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		SendError(w, appErr)
		return
	}
	ErrApplicationError(err.Error()).Send(w)
}

// WrapHttpRsp adapts a RequestHandler to an http.HandlerFunc, writing errors and
// responses in a uniform format.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("request failed")
			SendErr(w, err)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.StatusCode == 0 {
			rsp.StatusCode = http.StatusOK
		}
		if rsp.Chunked {
			if rsp.WriteChunks == nil {
				ErrApplicationError("unable to write chunks").Send(w)
				return
			}
			w.Header().Set("Content-Type", rsp.ContentType)
			w.Header().Set("Transfer-Encoding", "chunked")
			w.WriteHeader(rsp.StatusCode)
			if err := rsp.WriteChunks(w); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("Error writing chunk")
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			return
		}

		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		var location []string
		if rsp.Location != "" {
			location = append(location, rsp.Location)
		}
		switch rsp.ContentType {
		case "application/json":
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
		case "text/plain":
			body, ok := rsp.Response.(string)
			if !ok {
				ErrApplicationError("unsupported response body").Send(w)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			if rsp.StatusCode == http.StatusCreated && len(location) > 0 {
				w.Header().Set("Location", location[0])
			}
			w.WriteHeader(rsp.StatusCode)
			w.Write([]byte(body))
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	})
}
