package client

import "errors"

var (
	// ErrAuthenticationRejected reports a ServerAuthenticate verdict with
	// success false. The socket is closed without Quit.
	ErrAuthenticationRejected = errors.New("authentication rejected")

	// ErrRequestTimeout reports a request whose response did not arrive
	// within the configured request timeout.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrSessionClosed reports an event submitted to, or stranded on, a
	// session that has been stopped.
	ErrSessionClosed = errors.New("session closed")
)
