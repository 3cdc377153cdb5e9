package errors

import (
	"errors"
	"fmt"
)

// Closed set of processor failure kinds. Every adapter call failure maps to
// exactly one of these.
var (
	// ErrConfigMissing means a required configuration value was absent.
	// Raised before any network call is attempted.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrTransport means the outbound HTTP call could not complete
	// (DNS, TLS, timeout, connection reset).
	ErrTransport = errors.New("transport error")

	// ErrUpstream means the processor answered with a non-success HTTP
	// status. The response body is preserved for diagnostics.
	ErrUpstream = errors.New("upstream error")

	// ErrDecode means the response body could not be parsed into the
	// expected shape.
	ErrDecode = errors.New("decode error")

	// ErrInternal is the catch-all for invariant violations, e.g. an
	// expected field absent from an otherwise well-formed response.
	ErrInternal = errors.New("internal error")

	// ErrRequeryPending is the DSTV requery outcome for a transaction the
	// vendor still reports as in flight. Callers should treat it as
	// "try later", not as a hard failure.
	ErrRequeryPending = errors.New("transaction is still pending")
)

// ProcessorError tags a processor failure with its taxonomy kind plus
// whatever diagnostics the failure site had on hand.
type ProcessorError struct {
	Kind       error
	Processor  string
	Detail     string
	StatusCode int    // set for upstream errors
	Body       string // raw upstream body, set for upstream errors
	Err        error  // underlying cause, if any
}

func (e *ProcessorError) Error() string {
	msg := e.Kind.Error()
	if e.Processor != "" {
		msg = e.Processor + ": " + msg
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProcessorError) Is(target error) bool { return e.Kind == target }

func (e *ProcessorError) Unwrap() error { return e.Err }

// ConfigMissing reports an absent configuration value by name.
func ConfigMissing(processor, name string) *ProcessorError {
	return &ProcessorError{Kind: ErrConfigMissing, Processor: processor, Detail: name}
}

// Transport wraps a failed HTTP round trip.
func Transport(processor string, err error) *ProcessorError {
	return &ProcessorError{Kind: ErrTransport, Processor: processor, Err: err}
}

// Upstream reports a non-success HTTP status, keeping the body verbatim.
func Upstream(processor string, statusCode int, body string) *ProcessorError {
	return &ProcessorError{Kind: ErrUpstream, Processor: processor, StatusCode: statusCode, Body: body}
}

// Decode wraps a response body that failed to parse.
func Decode(processor string, err error) *ProcessorError {
	return &ProcessorError{Kind: ErrDecode, Processor: processor, Err: err}
}

// Internal reports an invariant violation.
func Internal(processor, detail string) *ProcessorError {
	return &ProcessorError{Kind: ErrInternal, Processor: processor, Detail: detail}
}

// Pending reports the DSTV requery tri-state "still pending" outcome.
func Pending(processor, detail string) *ProcessorError {
	return &ProcessorError{Kind: ErrRequeryPending, Processor: processor, Detail: detail}
}
