package models

import (
	"fmt"
	"strings"
)

// ClassificationLabel is one of the fixed signal categories offered to the model.
type ClassificationLabel string

const (
	LabelBrightPixel            ClassificationLabel = "brightpixel"
	LabelNarrowband             ClassificationLabel = "narrowband"
	LabelNarrowbandDRD          ClassificationLabel = "narrowbanddrd"
	LabelNoise                  ClassificationLabel = "noise"
	LabelSquarePulsedNarrowband ClassificationLabel = "squarepulsednarrowband"
	LabelSquiggle               ClassificationLabel = "squiggle"
	LabelSquiggleSquarePulse    ClassificationLabel = "squigglesquarepulse"
)

var labels = []ClassificationLabel{
	LabelBrightPixel,
	LabelNarrowband,
	LabelNarrowbandDRD,
	LabelNoise,
	LabelSquarePulsedNarrowband,
	LabelSquiggle,
	LabelSquiggleSquarePulse,
}

// Labels returns the label taxonomy in prompt order.
func Labels() []ClassificationLabel {
	out := make([]ClassificationLabel, len(labels))
	copy(out, labels)
	return out
}

func (l ClassificationLabel) Valid() bool {
	for _, known := range labels {
		if l == known {
			return true
		}
	}
	return false
}

func (l ClassificationLabel) String() string {
	return string(l)
}

func ParseLabel(s string) (ClassificationLabel, error) {
	l := ClassificationLabel(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown classification label %q", s)
	}
	return l, nil
}
