package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/models"
)

// Query-window bounds for the recent feed and the summary aggregation.
const (
	defaultRecentLimit = 50
	defaultWindowDays  = 7
	maxWindowDays      = 365
)

// AuditHandler serves read-only audit history endpoints.
type AuditHandler struct {
	audit domain.AuditQuery
	log   *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(audit domain.AuditQuery, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, log: log}
}

// ByTransaction handles GET /api/v1/audit/transactions/:id.
func (h *AuditHandler) ByTransaction(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	records, err := h.audit.GetTransactionAudit(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, models.ErrTransactionNotFound) {
			h.log.WithError(err).Error("querying transaction audit")
		}
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": records, "count": len(records)})
}

// ByEntity handles GET /api/v1/audit/entity/:type/:id.
func (h *AuditHandler) ByEntity(c *gin.Context) {
	entityType := c.Param("type")
	entityID := c.Param("id")

	if err := validatePathID(entityType); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := validatePathID(entityID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	ref := models.EntityRef{Type: entityType, ID: entityID}

	records, err := h.audit.GetEntityHistory(c.Request.Context(), ref)
	if err != nil {
		h.log.WithError(err).Error("querying entity history")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": records, "count": len(records)})
}

// Recent handles GET /api/v1/audit/recent.
func (h *AuditHandler) Recent(c *gin.Context) {
	q := models.RecentQuery{
		Limit: parseInt(c.DefaultQuery("limit", "50"), defaultRecentLimit),
		Days:  parseWindowDays(c),
	}
	if q.Days < 0 {
		return
	}

	records, err := h.audit.GetRecent(c.Request.Context(), q)
	if err != nil {
		h.log.WithError(err).Error("querying recent changes")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": records, "count": len(records)})
}

// Summary handles GET /api/v1/audit/summary.
func (h *AuditHandler) Summary(c *gin.Context) {
	days := parseWindowDays(c)
	if days < 0 {
		return
	}

	summary, err := h.audit.Summarize(c.Request.Context(), days)
	if err != nil {
		h.log.WithError(err).Error("summarizing audit activity")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, summary)
}

// parseWindowDays reads the days query parameter and bounds it. Returns -1
// after writing the error response when the value is out of range.
func parseWindowDays(c *gin.Context) int {
	days := parseInt(c.DefaultQuery("days", "7"), defaultWindowDays)
	if days > maxWindowDays {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "days must be at most 365")

		return -1
	}

	return days
}
