package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"signal-classifier/export"
	"signal-classifier/models"
	"signal-classifier/pipeline"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// ClassifyPage handles the form submission and renders the result in place.
func (h *Handler) ClassifyPage(c *gin.Context) {
	ctx := c.Request.Context()
	form := FormValues{
		PeakFrequency: strings.TrimSpace(c.PostForm("peak_frequency")),
		DriftRate:     strings.TrimSpace(c.PostForm("drift_rate")),
		SNR:           strings.TrimSpace(c.PostForm("snr")),
		PulseWidth:    strings.TrimSpace(c.PostForm("pulse_width")),
		Export:        c.PostForm("export") != "",
	}

	var page PageData
	meta, err := parseForm(form)
	if err != nil {
		page = h.newPage(ctx, form)
		page.Error = err.Error()
		page.ErrorKind = pipeline.KindInvalidInput
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		uri, imgErr := imageDataURI(fh, h.settings.MaxImageBytes)
		if imgErr != nil {
			page.ImageWarning = imgErr.Error()
		} else {
			page.Image = uri
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		page.ImageWarning = "failed to read uploaded image"
	}

	result, err := h.classifier.Classify(ctx, pipeline.Request{
		Metadata: meta,
		APIKey:   c.PostForm("api_key"),
		Export:   form.Export,
	})

	// History is loaded after the call so the new attempt is listed.
	base := h.newPage(ctx, form)
	base.Image, base.ImageWarning = page.Image, page.ImageWarning
	page = base

	if err != nil {
		page.Error = userMessage(err)
		page.ErrorKind = pipeline.KindOf(err)
		c.HTML(statusFor(err), "index.html", page)
		return
	}

	view := &ResultView{
		ID:        result.ID,
		Provider:  result.Provider,
		Model:     result.Model,
		Attempts:  result.Attempts,
		LatencyMS: result.Latency.Milliseconds(),
		Rows:      export.MetadataRows(result.Metadata),
		HTML:      renderMarkdown(result.Text),
	}
	if result.Export != nil {
		view.ExportFilename = result.Export.Filename
		view.ExportURI = downloadURI(result.Export)
	}
	if result.ExportErr != nil {
		log.WithError(result.ExportErr).WithField("id", result.ID).Warn("export unavailable")
		view.ExportError = "The report could not be generated. The classification above is unaffected."
	}
	page.Result = view

	c.HTML(http.StatusOK, "index.html", page)
}

func parseForm(form FormValues) (models.SignalMetadata, error) {
	fields := []struct {
		name  string
		raw   string
		value *float64
	}{
		{"peak frequency", form.PeakFrequency, new(float64)},
		{"drift rate", form.DriftRate, new(float64)},
		{"signal-to-noise ratio", form.SNR, new(float64)},
		{"pulse width", form.PulseWidth, new(float64)},
	}

	for _, f := range fields {
		if f.raw == "" {
			return models.SignalMetadata{}, fmt.Errorf("%w: %s is required", models.ErrInvalidInput, f.name)
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.SignalMetadata{}, fmt.Errorf("%w: %s must be a number", models.ErrInvalidInput, f.name)
		}
		*f.value = v
	}

	meta := models.SignalMetadata{
		PeakFrequencyMHz: *fields[0].value,
		DriftRateHzPerS:  *fields[1].value,
		SNRDB:            *fields[2].value,
		PulseWidthMS:     *fields[3].value,
	}
	return meta, meta.Validate()
}
