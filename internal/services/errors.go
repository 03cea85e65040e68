package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies why a submission was refused
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindTransportMethod
	KindAuthorization
	KindMalformedRequest
	KindMissingField
	KindIdentity
	KindStorage
)

// String returns the label used in logs and metrics
func (k ErrorKind) String() string {
	switch k {
	case KindTransportMethod:
		return "method_not_allowed"
	case KindAuthorization:
		return "forbidden"
	case KindMalformedRequest:
		return "malformed_request"
	case KindMissingField:
		return "missing_token"
	case KindIdentity:
		return "invalid_token"
	case KindStorage:
		return "storage_error"
	default:
		return "internal_error"
	}
}

// Status returns the HTTP status answered for this kind
func (k ErrorKind) Status() int {
	switch k {
	case KindTransportMethod:
		return http.StatusMethodNotAllowed
	case KindAuthorization:
		return http.StatusForbidden
	case KindMalformedRequest, KindMissingField:
		return http.StatusBadRequest
	case KindIdentity:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ProxyError is a refused submission. Error() is the caller-facing message;
// the wrapped cause is only for logs, except for storage and unexpected
// failures whose cause message is part of the public text.
type ProxyError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProxyError) Error() string {
	switch e.Kind {
	case KindTransportMethod:
		return "method not allowed"
	case KindAuthorization:
		return "forbidden"
	case KindMalformedRequest:
		return "invalid request JSON format"
	case KindMissingField:
		return "missing user token"
	case KindIdentity:
		return "invalid token, reconnection required"
	case KindStorage:
		return "storage insert error (policy?): " + causeMessage(e.Err)
	default:
		return "internal proxy error: " + causeMessage(e.Err)
	}
}

// Unwrap returns the underlying error
func (e *ProxyError) Unwrap() error {
	return e.Err
}

// NewProxyError creates a ProxyError of the given kind
func NewProxyError(kind ErrorKind, err error) *ProxyError {
	return &ProxyError{Kind: kind, Err: err}
}

// KindOf returns the kind of the first ProxyError in err's chain.
// Errors that are not ProxyErrors are unexpected.
func KindOf(err error) ErrorKind {
	var proxyErr *ProxyError
	if errors.As(err, &proxyErr) {
		return proxyErr.Kind
	}
	return KindUnexpected
}

func causeMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
