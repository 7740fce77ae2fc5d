package skport

import "fmt"

// ErrorKind classifies a normalized API failure.
type ErrorKind int

const (
	// KindTransport covers network failures, timeouts and non-2xx responses.
	KindTransport ErrorKind = iota

	// KindApplication covers 2xx responses whose envelope carries a
	// non-zero code.
	KindApplication

	// KindGrantFailed marks a failure in the OAuth grant step of the
	// credential chain.
	KindGrantFailed

	// KindExchangeFailed marks a failure in the cred exchange step of the
	// credential chain.
	KindExchangeFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindGrantFailed:
		return "grant failed"
	case KindExchangeFailed:
		return "exchange failed"
	default:
		return "unknown"
	}
}

// Error is the uniform failure shape every endpoint in this package
// returns. Callers never see raw transport errors; they branch on err !=
// nil and display Message, which is guaranteed non-empty.
type Error struct {
	Kind    ErrorKind
	Message string

	// Cause holds the underlying transport error, if any.
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("skport: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// apiErr builds an Error, substituting a fallback message when the remote
// omitted one so Message is always human-readable.
func apiErr(kind ErrorKind, msg string, cause error) *Error {
	if msg == "" {
		if cause != nil {
			msg = cause.Error()
		} else {
			msg = "request failed"
		}
	}

	return &Error{Kind: kind, Message: msg, Cause: cause}
}
