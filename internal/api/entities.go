package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/models"
)

// EntityHandler serves read access to current entity snapshots. All
// mutations go through transaction operations; these endpoints never write.
type EntityHandler struct {
	entities domain.EntityReader
	registry *models.Registry
	log      *logrus.Logger
}

// NewEntityHandler creates an EntityHandler.
func NewEntityHandler(entities domain.EntityReader, registry *models.Registry, log *logrus.Logger) *EntityHandler {
	return &EntityHandler{entities: entities, registry: registry, log: log}
}

// List handles GET /api/v1/entities/:type.
func (h *EntityHandler) List(c *gin.Context) {
	entityType := c.Param("type")
	if _, err := h.registry.Lookup(entityType); err != nil {
		respondServiceError(c, err)

		return
	}

	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	entities, hasMore, err := h.entities.ListEntities(c.Request.Context(), entityType, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing entities")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"entities": entities, "has_more": hasMore})
}

// Get handles GET /api/v1/entities/:type/:id.
func (h *EntityHandler) Get(c *gin.Context) {
	entityType := c.Param("type")
	entityID := c.Param("id")

	if _, err := h.registry.Lookup(entityType); err != nil {
		respondServiceError(c, err)

		return
	}

	if err := validatePathID(entityID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	entity, err := h.entities.GetEntity(c.Request.Context(), models.EntityRef{Type: entityType, ID: entityID})
	if err != nil {
		if !errors.Is(err, models.ErrEntityNotFound) {
			h.log.WithError(err).Error("getting entity")
		}
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, entity)
}
