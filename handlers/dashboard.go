package handlers

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"signal-classifier/database"
	"signal-classifier/export"
	"signal-classifier/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const recentLimit = 10

type PageData struct {
	Form          FormValues
	KeyConfigured bool
	Labels        []models.ClassificationLabel

	Error     string
	ErrorKind string

	Image        template.URL
	ImageWarning string

	Result *ResultView

	HistoryEnabled bool
	History        []models.Classification
}

// FormValues echo the submitted form so a failed request keeps its input.
type FormValues struct {
	PeakFrequency string
	DriftRate     string
	SNR           string
	PulseWidth    string
	Export        bool
}

type ResultView struct {
	ID        string
	Provider  string
	Model     string
	Attempts  int
	LatencyMS int64
	Rows      []export.MetadataRow
	HTML      template.HTML

	ExportFilename string
	ExportURI      template.URL
	ExportError    string
}

func defaultForm() FormValues {
	meta := models.DefaultSignalMetadata()
	return FormValues{
		PeakFrequency: formatFloat(meta.PeakFrequencyMHz),
		DriftRate:     formatFloat(meta.DriftRateHzPerS),
		SNR:           formatFloat(meta.SNRDB),
		PulseWidth:    formatFloat(meta.PulseWidthMS),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *Handler) newPage(ctx context.Context, form FormValues) PageData {
	return PageData{
		Form:           form,
		KeyConfigured:  h.settings.KeyConfigured,
		Labels:         models.Labels(),
		HistoryEnabled: h.history != nil,
		History:        h.recent(ctx),
	}
}

// recent loads the latest attempts for the index page. Failures only hide the list.
func (h *Handler) recent(ctx context.Context) []models.Classification {
	if h.history == nil {
		return nil
	}
	rows, err := h.history.List(ctx, database.Filter{Limit: recentLimit})
	if err != nil {
		log.WithError(err).Warn("failed to load recent classifications")
		return nil
	}
	return rows
}

// Dashboard renders the input form with default values.
func (h *Handler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.newPage(c.Request.Context(), defaultForm()))
}
