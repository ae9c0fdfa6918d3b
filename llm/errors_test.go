package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFromStatus(t *testing.T) {
	testCases := []struct {
		code int
		want Kind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindQuota},
		{408, KindTimeout},
		{504, KindTimeout},
		{500, KindUnavailable},
		{503, KindUnavailable},
		{400, KindRejected},
		{404, KindRejected},
		{200, KindUnknown},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, KindFromStatus(tc.code))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap("Gemini", nil))

	pe := Wrap("Gemini", fmt.Errorf("send: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, pe.Kind)
	assert.True(t, errors.Is(pe, context.DeadlineExceeded))

	pe = Wrap("Gemini", context.Canceled)
	assert.Equal(t, KindCanceled, pe.Kind)

	pe = Wrap("Gemini", &url.Error{Op: "Post", URL: "https://x", Err: errors.New("no such host")})
	assert.Equal(t, KindTransport, pe.Kind)
	assert.True(t, pe.Transient())
	assert.Contains(t, pe.Message, "no such host")

	pe = Wrap("Gemini", errors.New("odd"))
	assert.Equal(t, KindUnknown, pe.Kind)
	assert.False(t, pe.Transient())
}

func TestWrapCopiesProviderError(t *testing.T) {
	orig := StatusError("", 503, "overloaded", nil)
	pe := Wrap("DeepSeek", fmt.Errorf("call: %w", orig))
	pe.Attempts = 2

	assert.Equal(t, "DeepSeek", pe.Provider)
	assert.Equal(t, KindUnavailable, pe.Kind)
	assert.Equal(t, 0, orig.Attempts)
	assert.Equal(t, "DeepSeek unavailable error (status 503): overloaded", pe.Error())
}
