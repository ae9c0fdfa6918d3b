package prompt

import (
	"fmt"
	"strings"
	"time"

	"signal-classifier/models"
)

// Options tweak the rendered prompt.
type Options struct {
	// Timestamp adds an informational observation-time line when non-zero.
	Timestamp time.Time
}

const promptTemplate = `You are a radio-astronomy expert.
Here are the observed signal metrics:
- Peak frequency: %.3f MHz
- Drift rate: %.3f Hz/s
- Signal-to-noise ratio: %.2f dB
- Pulse width: %.2f ms
%s
Tasks:
1. Classify this signal into one of: %s.
2. Provide a confidence percentage.
3. Suggest three follow-up observations or analyses.
`

// Build renders signal metadata into the instruction sent to the model.
// Identical metadata and options always produce identical text.
func Build(meta models.SignalMetadata, opts Options) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}

	var observed string
	if !opts.Timestamp.IsZero() {
		observed = fmt.Sprintf("- Observation time (UTC): %s\n", opts.Timestamp.UTC().Format(time.RFC3339))
	}

	return fmt.Sprintf(promptTemplate,
		meta.PeakFrequencyMHz,
		meta.DriftRateHzPerS,
		meta.SNRDB,
		meta.PulseWidthMS,
		observed,
		LabelList(),
	), nil
}

// LabelList joins the classification taxonomy in its fixed order.
func LabelList() string {
	names := make([]string, 0, 7)
	for _, l := range models.Labels() {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}
