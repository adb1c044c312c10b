package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/models"
)

// TransactionHandler serves transaction lifecycle and operation execution
// endpoints.
type TransactionHandler struct {
	ledger domain.Ledger
	engine domain.Engine
	log    *logrus.Logger
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(ledger domain.Ledger, engine domain.Engine, log *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, engine: engine, log: log}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req models.OpenTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	txn, err := h.ledger.OpenTransaction(c.Request.Context(), req)
	if err != nil {
		h.log.WithError(err).Error("opening transaction")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusCreated, txn)
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	txn, err := h.ledger.GetTransaction(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, models.ErrTransactionNotFound) {
			h.log.WithError(err).Error("getting transaction")
		}
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, txn)
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	txns, hasMore, err := h.ledger.ListTransactions(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing transactions")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns, "has_more": hasMore})
}

// Execute handles POST /api/v1/transactions/:id/operations. It applies the
// submitted operations in order and stops at the first failure. Earlier
// changes stay committed; the response always carries the per-operation
// results so a caller can see exactly how far the batch got.
func (h *TransactionHandler) Execute(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var req models.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	results, err := h.engine.ApplyOperations(c.Request.Context(), id, req.Operations)
	if err != nil {
		status, code, msg := errorStatus(err)
		if code == ErrCodeInternalError || code == ErrCodeUnavailable {
			h.log.WithError(err).Error("executing operations")
		}

		h.log.WithFields(logrus.Fields{
			"transaction_id": id,
			"attempted":      len(results),
			"submitted":      len(req.Operations),
		}).Warn("batch stopped at first failure")

		c.JSON(status, gin.H{"code": code, "message": msg, "results": results})

		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Complete handles POST /api/v1/transactions/:id/complete.
func (h *TransactionHandler) Complete(c *gin.Context) {
	h.close(c, models.StatusCompleted)
}

// Fail handles POST /api/v1/transactions/:id/fail.
func (h *TransactionHandler) Fail(c *gin.Context) {
	h.close(c, models.StatusFailed)
}

func (h *TransactionHandler) close(c *gin.Context, to models.TransactionStatus) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var txn *models.TransactionRecord
	var err error

	if to == models.StatusCompleted {
		txn, err = h.ledger.CompleteTransaction(c.Request.Context(), id)
	} else {
		txn, err = h.ledger.FailTransaction(c.Request.Context(), id)
	}

	if err != nil {
		if !errors.Is(err, models.ErrTransactionNotFound) && !errors.Is(err, models.ErrInvalidState) {
			h.log.WithError(err).Error("closing transaction")
		}
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, txn)
}

// Delete handles DELETE /api/v1/transactions/:id. The route is guarded by
// admin auth; this removes the transaction and its entire audit trail.
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	deleted, err := h.ledger.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, models.ErrTransactionNotFound) {
			h.log.WithError(err).Error("deleting transaction")
		}
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true, "deleted_records": deleted})
}
