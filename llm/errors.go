package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Kind classifies provider failures so callers need not match on message text.
type Kind string

const (
	KindAuth        Kind = "auth"
	KindQuota       Kind = "quota"
	KindTimeout     Kind = "timeout"
	KindCanceled    Kind = "canceled"
	KindTransport   Kind = "transport"
	KindUnavailable Kind = "unavailable"
	KindRejected    Kind = "rejected"
	KindMalformed   Kind = "malformed"
	KindUnknown     Kind = "unknown"
)

// ProviderError is the single failure type surfaced by model clients.
type ProviderError struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Message    string
	Attempts   int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s error: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether a repeated attempt may succeed.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case KindTransport, KindTimeout, KindUnavailable:
		return true
	}
	return false
}

// KindFromStatus maps an HTTP status code returned by a provider.
func KindFromStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindQuota
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindUnavailable
	case code >= 400:
		return KindRejected
	}
	return KindUnknown
}

// StatusError builds a ProviderError from a non-2xx provider response.
func StatusError(provider string, code int, message string, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       KindFromStatus(code),
		StatusCode: code,
		Message:    message,
		Err:        err,
	}
}

// Wrap converts any client failure into a fresh *ProviderError.
func Wrap(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		cp := *pe
		if cp.Provider == "" {
			cp.Provider = provider
		}
		return &cp
	}

	out := &ProviderError{Provider: provider, Kind: KindUnknown, Message: err.Error(), Err: err}

	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled):
		out.Kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		out.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		out.Kind = KindTimeout
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		out.Kind = KindTransport
	}
	return out
}
