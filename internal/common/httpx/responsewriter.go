package httpx

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps an http.ResponseWriter to record the status and body size, and
// to stop a handler from writing once the response was taken over by a timeout.
type ResponseWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	written bool
	sealed  bool
	status  int
	size    int64
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.writeHeader(code)
}

func (rw *ResponseWriter) writeHeader(code int) {
	if rw.written || rw.sealed {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write writes a 200 header first if none was written. Writes after Seal fail with
// http.ErrHandlerTimeout.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.sealed {
		return 0, http.ErrHandlerTimeout
	}
	rw.writeHeader(http.StatusOK)
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

// Seal rejects all further writes. It reports whether nothing had been written, in which
// case the caller owns the underlying writer.
func (rw *ResponseWriter) Seal() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.sealed = true
	return !rw.written
}

// Written reports whether headers or body were written.
func (rw *ResponseWriter) Written() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.written
}

// Status returns the status code, http.StatusOK if none was set.
func (rw *ResponseWriter) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Size returns the number of body bytes written.
func (rw *ResponseWriter) Size() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// Flush lets chunked exports reach the client as they are produced.
func (rw *ResponseWriter) Flush() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.sealed {
		return
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
