package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"signal-classifier/models"
)

// Client is a deterministic, no-network model used for local runs and tests.
// With Response set it always answers with that text; otherwise the answer is
// derived from a hash of the prompt so identical prompts get identical answers.
type Client struct {
	Response string
	// Err, when set, is returned by every call instead of an answer.
	Err error

	calls atomic.Int64
}

func NewClient(response string) *Client {
	return &Client{Response: response}
}

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) ModelName() string { return "stub" }

// Calls returns how many times Generate was invoked.
func (c *Client) Calls() int64 { return c.calls.Load() }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Err != nil {
		return "", c.Err
	}
	if c.Response != "" {
		return c.Response, nil
	}

	sum := sha256.Sum256([]byte(prompt))
	labels := models.Labels()
	label := labels[int(sum[0])%len(labels)]
	confidence := 50 + binary.BigEndian.Uint16(sum[1:3])%50

	return fmt.Sprintf("Classification: %s (%d%%)\n\nFollow-up:\n1. Re-observe at the same frequency.\n2. Check for terrestrial RFI.\n3. Compare against adjacent beams.", label, confidence), nil
}
