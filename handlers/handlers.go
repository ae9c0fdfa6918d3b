package handlers

import (
	"context"
	"errors"
	"net/http"

	"signal-classifier/database"
	"signal-classifier/export"
	"signal-classifier/llm"
	"signal-classifier/models"
	"signal-classifier/pipeline"

	"github.com/gin-gonic/gin"
)

// Classifier runs one classification request.
type Classifier interface {
	Classify(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// HistoryStore is the read side of the classification history.
type HistoryStore interface {
	List(ctx context.Context, f database.Filter) ([]models.Classification, error)
	Get(ctx context.Context, id string) (*models.Classification, error)
	Stats(ctx context.Context) (*database.Stats, error)
}

// Settings are the request-facing parts of the service configuration.
type Settings struct {
	KeyConfigured bool
	MaxImageBytes int64
	Provider      string
}

type Handler struct {
	classifier Classifier
	exporter   export.Exporter
	history    HistoryStore
	settings   Settings
}

func NewHandler(classifier Classifier, exporter export.Exporter, settings Settings) *Handler {
	return &Handler{
		classifier: classifier,
		exporter:   exporter,
		settings:   settings,
	}
}

// WithHistory enables the history endpoints and the recent list on the index page.
func (h *Handler) WithHistory(store HistoryStore) *Handler {
	h.history = store
	return h
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "signal-classifier",
		"provider": h.settings.Provider,
		"history":  h.history != nil,
	})
}

func (h *Handler) GetLabels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": models.Labels()})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var pe *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrCredentialMissing):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		if pe.Kind == llm.KindTimeout || pe.Kind == llm.KindCanceled {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// userMessage is the human-readable text shown for a failed request.
func userMessage(err error) string {
	var pe *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrCredentialMissing):
		return "Please provide a model API key to continue."
	case errors.Is(err, models.ErrInvalidInput):
		return err.Error()
	case errors.As(err, &pe):
		return "Model provider error: " + pe.Message
	}
	return "Classification failed"
}

func errorJSON(c *gin.Context, err error) {
	body := gin.H{
		"error": userMessage(err),
		"kind":  pipeline.KindOf(err),
	}
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		body["provider"] = pe.Provider
		body["provider_kind"] = string(pe.Kind)
		body["message"] = pe.Message
		body["attempts"] = pe.Attempts
	}
	c.JSON(statusFor(err), body)
}
