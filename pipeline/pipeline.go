// Package pipeline runs one classification request end to end:
// credential check, validation, prompt, model call, presentation and the
// best-effort export and history side paths.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signal-classifier/export"
	"signal-classifier/llm"
	"signal-classifier/metrics"
	"signal-classifier/models"
	"signal-classifier/prompt"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Options are fixed at construction time.
type Options struct {
	// APIKey is used when a request carries no key of its own.
	APIKey          string
	Retry           llm.Policy
	PromptTimestamp bool
}

// Recorder persists classification attempts.
type Recorder interface {
	Record(ctx context.Context, c *models.Classification) error
}

type Request struct {
	Metadata models.SignalMetadata
	APIKey   string
	Export   bool
}

type Result struct {
	ID        string
	CreatedAt time.Time
	Metadata  models.SignalMetadata
	Prompt    string
	Text      string
	Provider  string
	Model     string
	Attempts  int
	Latency   time.Duration

	// Export is set when an export was requested and rendered.
	Export *export.Document
	// ExportErr is set when an export was requested and failed.
	ExportErr error
}

type Classifier struct {
	opts     Options
	factory  llm.Factory
	exporter export.Exporter
	recorder Recorder
	now      func() time.Time
	logger   log.Interface
}

type Option func(*Classifier)

func WithExporter(e export.Exporter) Option {
	return func(c *Classifier) { c.exporter = e }
}

// WithRecorder enables history recording. A nil recorder disables it.
func WithRecorder(r Recorder) Option {
	return func(c *Classifier) { c.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

func WithLogger(l log.Interface) Option {
	return func(c *Classifier) { c.logger = l }
}

func New(opts Options, factory llm.Factory, options ...Option) *Classifier {
	c := &Classifier{
		opts:     opts,
		factory:  factory,
		exporter: export.NewHTMLExporter(),
		now:      time.Now,
		logger:   log.Log,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Classify runs the pipeline once. Export failures are reported in
// Result.ExportErr and never returned as err.
func (c *Classifier) Classify(ctx context.Context, req Request) (*Result, error) {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = strings.TrimSpace(c.opts.APIKey)
	}
	if key == "" {
		metrics.ClassificationsTotal.WithLabelValues(KindCredentialMissing).Inc()
		return nil, llm.ErrCredentialMissing
	}

	meta := req.Metadata
	if err := meta.Validate(); err != nil {
		metrics.ClassificationsTotal.WithLabelValues(KindInvalidInput).Inc()
		return nil, err
	}

	createdAt := c.now().UTC()
	var popts prompt.Options
	if c.opts.PromptTimestamp {
		popts.Timestamp = createdAt
	}
	text, err := prompt.Build(meta, popts)
	if err != nil {
		metrics.ClassificationsTotal.WithLabelValues(KindOf(err)).Inc()
		return nil, err
	}

	client, err := c.factory(key)
	if err != nil {
		metrics.ClassificationsTotal.WithLabelValues(KindOf(err)).Inc()
		if errors.Is(err, llm.ErrCredentialMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	result := &Result{
		ID:        uuid.NewString(),
		CreatedAt: createdAt,
		Metadata:  meta,
		Prompt:    text,
		Provider:  client.SourceName(),
		Model:     client.ModelName(),
	}
	logger := c.logger.WithFields(log.Fields{
		"id":       result.ID,
		"provider": result.Provider,
		"model":    result.Model,
	})

	start := time.Now()
	resp, err := llm.WithRetry(client, c.opts.Retry).Do(ctx, text)
	result.Latency = time.Since(start)

	if err != nil {
		pe := llm.Wrap(result.Provider, err)
		result.Attempts = pe.Attempts
		metrics.ProviderDurationSeconds.WithLabelValues(result.Provider, string(pe.Kind)).Observe(result.Latency.Seconds())
		metrics.ClassificationsTotal.WithLabelValues(KindProviderError).Inc()
		logger.WithError(err).WithField("kind", string(pe.Kind)).Error("model call failed")
		c.record(ctx, logger, result, pe)
		return nil, pe
	}

	result.Text = resp.Text
	result.Attempts = resp.Attempts
	metrics.ProviderDurationSeconds.WithLabelValues(result.Provider, "ok").Observe(result.Latency.Seconds())
	if resp.Attempts > 1 {
		metrics.ProviderRetriesTotal.WithLabelValues(result.Provider).Inc()
	}

	if req.Export {
		result.Export, result.ExportErr = c.renderExport(meta, result.Text, createdAt)
		if result.ExportErr != nil {
			metrics.ExportFailuresTotal.Inc()
			logger.WithError(result.ExportErr).Warn("export failed, continuing")
		}
	}

	c.record(ctx, logger, result, nil)
	metrics.ClassificationsTotal.WithLabelValues("ok").Inc()
	logger.WithFields(log.Fields{
		"attempts":   result.Attempts,
		"latency_ms": result.Latency.Milliseconds(),
	}).Info("classification complete")

	return result, nil
}

func (c *Classifier) renderExport(meta models.SignalMetadata, text string, at time.Time) (doc *export.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, &export.Error{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	doc, err = c.exporter.Render(meta, text, at)
	if err != nil {
		var ee *export.Error
		if !errors.As(err, &ee) {
			err = &export.Error{Err: err}
		}
		return nil, err
	}
	return doc, nil
}

func (c *Classifier) record(ctx context.Context, logger log.Interface, r *Result, failure *llm.ProviderError) {
	if c.recorder == nil {
		return
	}

	row := &models.Classification{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		PeakFrequencyMHz: r.Metadata.PeakFrequencyMHz,
		DriftRateHzPerS:  r.Metadata.DriftRateHzPerS,
		SNRDB:            r.Metadata.SNRDB,
		PulseWidthMS:     r.Metadata.PulseWidthMS,
		Provider:         r.Provider,
		Model:            r.Model,
		Status:           models.StatusOK,
		Response:         r.Text,
		LatencyMS:        r.Latency.Milliseconds(),
		Attempts:         r.Attempts,
	}
	if failure != nil {
		row.Status = models.StatusFailed
		row.ErrorKind = string(failure.Kind)
		row.ErrorMessage = failure.Message
	}

	// The attempt is recorded even when the caller has gone away.
	if err := c.recorder.Record(context.WithoutCancel(ctx), row); err != nil {
		metrics.HistoryWriteErrorsTotal.Inc()
		logger.WithError(err).Warn("failed to record classification")
	}
}
