package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure reported by the service or the transport.
type Kind int

const (
	KindUnknown Kind = iota
	KindAccount
	KindClient
	KindServer
	KindConnection
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// DefaultMessage replaces an empty service message.
const DefaultMessage = "No message was provided"

// Sentinels for errors.Is. Only the kind is compared.
var (
	ErrAccount    = &Error{kind: KindAccount}
	ErrClient     = &Error{kind: KindClient}
	ErrServer     = &Error{kind: KindServer}
	ErrConnection = &Error{kind: KindConnection}
)

// Error is a failure of a single logical service call.
//
// Fields:
//   - Kind:    account, client, server or connection
//   - Message: human readable detail from the service or the transport
//   - Code:    service-provided error code, empty when none was sent
//   - Status:  HTTP status, zero when no response was received
type Error struct {
	kind    Kind
	message string
	code    string
	status  int
	cause   error
}

func (e *Error) Kind() Kind      { return e.kind }
func (e *Error) Message() string { return e.message }
func (e *Error) Code() string    { return e.code }
func (e *Error) Status() int     { return e.status }

// Error renders "<message> (HTTP <status>/<code>)" when a status is known.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.status != 0 {
		return fmt.Sprintf("%s (HTTP %d/%s)", e.message, e.status, e.code)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so callers can test against the
// package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.kind == t.kind
}

// New creates an Error with the provided fields. An empty message is
// replaced with DefaultMessage.
func New(kind Kind, message, code string, status int) *Error {
	if message == "" {
		message = DefaultMessage
	}
	return &Error{kind: kind, message: message, code: code, status: status}
}

// Classify maps an HTTP status and service payload to an Error.
// The status decides the kind; the code is carried along unchanged.
func Classify(status int, code, message string) *Error {
	return New(KindForStatus(status), message, code, status)
}

// KindForStatus returns the kind the service contract assigns to status.
func KindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 429:
		return KindAccount
	case status >= 400 && status <= 499:
		return KindClient
	case status >= 500 && status <= 599:
		return KindServer
	default:
		return KindUnknown
	}
}

// Connection reports an exchange that never produced a response.
func Connection(message string, cause error) *Error {
	e := New(KindConnection, message, "", 0)
	e.cause = cause
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
