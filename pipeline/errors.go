package pipeline

import (
	"errors"

	"signal-classifier/llm"
	"signal-classifier/models"
)

const (
	KindCredentialMissing = "credential_missing"
	KindInvalidInput      = "invalid_input"
	KindProviderError     = "provider_error"
	KindInternal          = "internal"
)

// KindOf names the error kind reported to callers.
func KindOf(err error) string {
	var pe *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrCredentialMissing):
		return KindCredentialMissing
	case errors.Is(err, models.ErrInvalidInput):
		return KindInvalidInput
	case errors.As(err, &pe):
		return KindProviderError
	}
	return KindInternal
}
