package llm

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedClient returns the scripted errors in order, then "ok".
type scriptedClient struct {
	errs  []error
	calls atomic.Int32
	block bool
}

func (c *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	n := int(c.calls.Add(1))
	if c.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if n <= len(c.errs) {
		return "", c.errs[n-1]
	}
	return "ok: " + prompt, nil
}

func (c *scriptedClient) SourceName() string { return "Scripted" }
func (c *scriptedClient) ModelName() string  { return "scripted-1" }

func transportErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestRetrySucceedsFirstTime(t *testing.T) {
	c := &scriptedClient{}
	resp, err := WithRetry(c, Policy{MaxRetries: 1}).Do(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok: p", resp.Text)
	assert.Equal(t, 1, resp.Attempts)
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestRetryOnceOnTransportFailure(t *testing.T) {
	c := &scriptedClient{errs: []error{transportErr()}}
	resp, err := WithRetry(c, Policy{MaxRetries: 1, Backoff: time.Millisecond}).Do(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
}

func TestRetryIsBoundedToOne(t *testing.T) {
	c := &scriptedClient{errs: []error{transportErr(), transportErr(), transportErr()}}
	_, err := WithRetry(c, Policy{MaxRetries: 5}).Do(context.Background(), "p")
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindTransport, pe.Kind)
	assert.Equal(t, 2, pe.Attempts)
	assert.Contains(t, pe.Message, "connection refused")
	assert.EqualValues(t, 2, c.calls.Load())
}

func TestNoRetryOnPermanentFailure(t *testing.T) {
	c := &scriptedClient{errs: []error{StatusError("Scripted", 401, "API key not valid", nil)}}
	_, err := WithRetry(c, Policy{MaxRetries: 1}).Do(context.Background(), "p")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindAuth, pe.Kind)
	assert.Equal(t, 401, pe.StatusCode)
	assert.Equal(t, "API key not valid", pe.Message)
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestNoRetryWhenDisabled(t *testing.T) {
	c := &scriptedClient{errs: []error{transportErr()}}
	_, err := WithRetry(c, Policy{MaxRetries: 0}).Do(context.Background(), "p")
	require.Error(t, err)
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestPerAttemptTimeoutIsRetried(t *testing.T) {
	c := &scriptedClient{block: true}
	_, err := WithRetry(c, Policy{Timeout: 10 * time.Millisecond, MaxRetries: 1}).Do(context.Background(), "p")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindTimeout, pe.Kind)
	assert.Equal(t, 2, pe.Attempts)
	assert.EqualValues(t, 2, c.calls.Load())
}

func TestCallerCancellationStopsCall(t *testing.T) {
	c := &scriptedClient{block: true}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(c, Policy{MaxRetries: 1}).Do(ctx, "p")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindCanceled, pe.Kind)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestRetrierGenerate(t *testing.T) {
	r := WithRetry(&scriptedClient{}, Policy{})
	text, err := r.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok: x", text)
	assert.Equal(t, "Scripted", r.SourceName())
	assert.Equal(t, "scripted-1", r.ModelName())
}
