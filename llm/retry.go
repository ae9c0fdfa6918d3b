package llm

import (
	"context"
	"errors"
	"time"

	"github.com/apex/log"
)

// Policy bounds a single logical model call.
type Policy struct {
	// Timeout applies to each attempt separately. Zero disables it.
	Timeout time.Duration
	// MaxRetries is clamped to 0..1.
	MaxRetries int
	// Backoff is the pause before the retry.
	Backoff time.Duration
}

// Response is a successful model answer.
type Response struct {
	Text     string
	Attempts int
}

// Retrier runs a Client under a Policy.
type Retrier struct {
	client Client
	policy Policy
}

func WithRetry(client Client, policy Policy) *Retrier {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.MaxRetries > 1 {
		policy.MaxRetries = 1
	}
	return &Retrier{client: client, policy: policy}
}

func (r *Retrier) SourceName() string { return r.client.SourceName() }

func (r *Retrier) ModelName() string { return r.client.ModelName() }

func (r *Retrier) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := r.Do(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Do calls the provider, retrying once on transient failures while ctx is live.
// Every failure is returned as *ProviderError.
func (r *Retrier) Do(ctx context.Context, prompt string) (Response, error) {
	attempts := 1 + r.policy.MaxRetries
	provider := r.client.SourceName()

	var lastErr *ProviderError
	for i := 1; i <= attempts; i++ {
		if i > 1 && r.policy.Backoff > 0 {
			timer := time.NewTimer(r.policy.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				pe := callerError(provider, ctx.Err())
				pe.Attempts = i - 1
				return Response{}, pe
			case <-timer.C:
			}
		}

		text, err := r.attempt(ctx, prompt)
		if err == nil {
			return Response{Text: text, Attempts: i}, nil
		}

		if ctx.Err() != nil {
			pe := callerError(provider, ctx.Err())
			pe.Message = err.Error()
			pe.Err = err
			pe.Attempts = i
			return Response{}, pe
		}

		lastErr = Wrap(provider, err)
		lastErr.Attempts = i
		if !lastErr.Transient() || i == attempts {
			break
		}

		log.WithFields(log.Fields{
			"provider": provider,
			"attempt":  i,
			"kind":     string(lastErr.Kind),
		}).WithError(err).Warn("model call failed, retrying")
	}
	return Response{}, lastErr
}

func (r *Retrier) attempt(ctx context.Context, prompt string) (string, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	return r.client.Generate(ctx, prompt)
}

// callerError reports that the caller gave up, as opposed to a per-attempt timeout.
func callerError(provider string, ctxErr error) *ProviderError {
	kind := KindCanceled
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Message: ctxErr.Error(), Err: ctxErr}
}
