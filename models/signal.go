package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput is returned when signal metadata fails basic shape checks.
var ErrInvalidInput = errors.New("invalid input")

// SignalMetadata describes one observed radio signal candidate.
// Values are taken as-is; only non-finite numbers are rejected.
type SignalMetadata struct {
	PeakFrequencyMHz float64 `json:"peak_frequency_mhz"`
	DriftRateHzPerS  float64 `json:"drift_rate_hz_per_s"`
	SNRDB            float64 `json:"snr_db"`
	PulseWidthMS     float64 `json:"pulse_width_ms"`
}

// HydrogenLineMHz is the form default for the peak frequency.
const HydrogenLineMHz = 1420.406

func DefaultSignalMetadata() SignalMetadata {
	return SignalMetadata{
		PeakFrequencyMHz: HydrogenLineMHz,
		DriftRateHzPerS:  0.0,
		SNRDB:            10.0,
		PulseWidthMS:     1.0,
	}
}

// Validate reports the first non-finite field.
func (m SignalMetadata) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"peak_frequency_mhz", m.PeakFrequencyMHz},
		{"drift_rate_hz_per_s", m.DriftRateHzPerS},
		{"snr_db", m.SNRDB},
		{"pulse_width_ms", m.PulseWidthMS},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, f.name)
		}
	}
	return nil
}

// Classification is one recorded classification attempt.
type Classification struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
	PeakFrequencyMHz float64   `json:"peak_frequency_mhz"`
	DriftRateHzPerS  float64   `json:"drift_rate_hz_per_s"`
	SNRDB            float64   `json:"snr_db"`
	PulseWidthMS     float64   `json:"pulse_width_ms"`
	Provider         string    `json:"provider" gorm:"index"`
	Model            string    `json:"model"`
	Status           string    `json:"status" gorm:"index"`
	ErrorKind        string    `json:"error_kind,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	Response         string    `json:"response"`
	LatencyMS        int64     `json:"latency_ms"`
	Attempts         int       `json:"attempts"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metadata rebuilds the signal metadata the row was recorded from.
func (c Classification) Metadata() SignalMetadata {
	return SignalMetadata{
		PeakFrequencyMHz: c.PeakFrequencyMHz,
		DriftRateHzPerS:  c.DriftRateHzPerS,
		SNRDB:            c.SNRDB,
		PulseWidthMS:     c.PulseWidthMS,
	}
}
