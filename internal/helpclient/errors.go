package helpclient

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed. The panel shows all kinds the same
// way; the kind is kept for logs and retry decisions.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindProtocol
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *FetchError.
var (
	ErrTransport = errors.New("help content service unreachable")
	ErrProtocol  = errors.New("help content service returned an error status")
	ErrDecode    = errors.New("help content malformed")
)

// protocolMessage is shown for any non-success HTTP status.
const protocolMessage = "Failed to fetch help content"

// FetchError is returned by Client.Fetch for every failure.
type FetchError struct {
	Kind   Kind
	Status int // HTTP status, set for KindProtocol
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindProtocol:
		return fmt.Sprintf("%s: status %d", protocolMessage, e.Status)
	default:
		if e.Err == nil {
			return e.Kind.String() + " error"
		}
		return e.Err.Error()
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// UserMessage returns the single line shown to the user for err. It is never
// empty for a non-nil err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.Kind == KindProtocol {
			return protocolMessage
		}
		if fe.Err != nil && fe.Err.Error() != "" {
			return fe.Err.Error()
		}
		return protocolMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return protocolMessage
}

// Retryable reports whether a failed fetch may succeed if repeated.
func Retryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Kind {
	case KindTransport:
		return true
	case KindProtocol:
		return fe.Status >= 500
	}
	return false
}
