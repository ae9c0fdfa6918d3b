package handlers

import (
	"fmt"
	"net/http"

	"signal-classifier/models"
	"signal-classifier/pipeline"

	"github.com/gin-gonic/gin"
)

// ClassifyRequest is the JSON body of POST /api/classify.
// Pointers make an explicit 0.0 distinguishable from a missing field.
type ClassifyRequest struct {
	PeakFrequencyMHz *float64 `json:"peak_frequency_mhz" binding:"required"`
	DriftRateHzPerS  *float64 `json:"drift_rate_hz_per_s" binding:"required"`
	SNRDB            *float64 `json:"snr_db" binding:"required"`
	PulseWidthMS     *float64 `json:"pulse_width_ms" binding:"required"`
	APIKey           string   `json:"api_key"`
	Export           bool     `json:"export"`
}

type ExportPayload struct {
	Filename string `json:"filename"`
	HTML     string `json:"html"`
}

type ClassifyResponse struct {
	ID          string         `json:"id"`
	Result      string         `json:"result"`
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Attempts    int            `json:"attempts"`
	LatencyMS   int64          `json:"latency_ms"`
	Export      *ExportPayload `json:"export,omitempty"`
	ExportError string         `json:"export_error,omitempty"`
}

func (r ClassifyRequest) metadata() models.SignalMetadata {
	return models.SignalMetadata{
		PeakFrequencyMHz: *r.PeakFrequencyMHz,
		DriftRateHzPerS:  *r.DriftRateHzPerS,
		SNRDB:            *r.SNRDB,
		PulseWidthMS:     *r.PulseWidthMS,
	}
}

func (h *Handler) Classify(c *gin.Context) {
	var request ClassifyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		errorJSON(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), pipeline.Request{
		Metadata: request.metadata(),
		APIKey:   request.APIKey,
		Export:   request.Export,
	})
	if err != nil {
		errorJSON(c, err)
		return
	}

	resp := ClassifyResponse{
		ID:        result.ID,
		Result:    result.Text,
		Provider:  result.Provider,
		Model:     result.Model,
		Attempts:  result.Attempts,
		LatencyMS: result.Latency.Milliseconds(),
	}
	if result.Export != nil {
		resp.Export = &ExportPayload{Filename: result.Export.Filename, HTML: string(result.Export.Body)}
	}
	if result.ExportErr != nil {
		resp.ExportError = result.ExportErr.Error()
	}

	c.JSON(http.StatusOK, resp)
}
