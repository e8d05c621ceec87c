// Package apierrors defines the error taxonomy surfaced by the vexscan API
// client. Every failure the client reports is one of a small set of
// distinguishable kinds, each carrying a human-readable message extracted from
// the remote response. The kinds form a hierarchy rooted at ErrAPI, so callers
// can match a specific kind with errors.Is or fall back to the generic one.
package apierrors

// Error defines the interface for client errors. It extends the standard error
// interface with methods for error wrapping, message replacement, and HTTP
// status code management. All methods return Error to support chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetExpandError(bool) Error             // controls whether ErrorAll expands wrapped errors
	SetStatusCode(int) Error               // sets the HTTP status code associated with the error
	StatusCode() int                       // returns the current status code
	ErrorAll() string                      // returns full message including wrapped errors
	UnwrapAll() []error                    // returns all wrapped errors
}
