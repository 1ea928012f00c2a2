package ojuz

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned by Submit when the session could not be
	// (re)authenticated. It is the "no result" outcome, not a fault.
	ErrNotLoggedIn = errors.New("ojuz: session is not logged in")

	// ErrSoftBlocked is returned when the judge kept bouncing the submission
	// back to the submit page after the configured number of attempts.
	ErrSoftBlocked = errors.New("ojuz: submission soft-blocked by judge")
)

// TransportError wraps failures below the HTTP response level:
// dns, dial, tls, timeouts and reading the body.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ojuz: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the judge answered but the page did not have the
// shape we expect (missing token field, missing element, bad json).
type ProtocolError struct {
	URL    string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ojuz: unexpected page %s: %s", e.URL, e.Reason)
}
