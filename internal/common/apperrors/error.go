// Package apperrors provides chainable application errors. Each error carries an
// optional HTTP status code so that consumers at the edge (the HTTP server, the CLI)
// can map configuration, decode and lookup failures without inspecting messages.
package apperrors

import "errors"

// Error extends the standard error interface with wrapping, message manipulation and
// status codes. All methods return Error to support chaining at declaration sites:
//
//	var ErrNotFound = ErrBase.New("not found").SetStatusCode(http.StatusNotFound)
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // new error using current as template
	Msg(msg string) Error                  // new error with message, wrapping the original
	MsgErr(msg string, err ...error) Error // message plus extra wrapped errors
	Err(err ...error) Error                // attach errors, keep message
	SetExpandError(bool) Error             // whether ErrorAll expands wrapped errors
	SetStatusCode(int) Error               // HTTP status code for the edge
	StatusCode() int
	ErrorAll() string   // full message including wrapped errors
	UnwrapAll() []error // all wrapped errors
}

// StatusOf returns the status code of the first Error in err's chain, or fallback
// when the chain carries none.
func StatusOf(err error, fallback int) int {
	var appErr Error
	if errors.As(err, &appErr) {
		if code := appErr.StatusCode(); code != 0 {
			return code
		}
	}
	return fallback
}
