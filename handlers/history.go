package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"signal-classifier/database"
	"signal-classifier/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) requireHistory(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history disabled"})
		return false
	}
	return true
}

func (h *Handler) ListClassifications(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.history.List(c.Request.Context(), database.Filter{
		Status:   c.Query("status"),
		Provider: c.Query("provider"),
		Limit:    limit,
	})
	if err != nil {
		log.WithError(err).Error("failed to list classifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *Handler) GetClassification(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	row, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetReport re-renders the export document for a stored successful attempt.
func (h *Handler) GetReport(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	row, ok := h.lookup(c)
	if !ok {
		return
	}
	if row.Status != models.StatusOK {
		c.JSON(http.StatusConflict, gin.H{"error": "no report for a failed classification"})
		return
	}

	doc, err := h.exporter.Render(row.Metadata(), row.Response, row.CreatedAt)
	if err != nil {
		log.WithError(err).WithField("id", row.ID).Error("failed to render report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report generation failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func (h *Handler) GetStats(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to load stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) lookup(c *gin.Context) (*models.Classification, bool) {
	row, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Classification not found"})
			return nil, false
		}
		log.WithError(err).Error("failed to load classification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	return row, true
}
