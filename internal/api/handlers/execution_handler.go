// internal/api/handlers/execution_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/execution"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExecutionHandler struct {
	Engine *execution.Engine
}

type ScanPayload struct {
	Code     string  `json:"code" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

type ManualPayload struct {
	Quantity float64 `json:"quantity" binding:"required"`
	Reason   string  `json:"reason" binding:"required"`
}

type PartialCompletePayload struct {
	FoundQuantity *float64 `json:"found_quantity" binding:"required"`
	Reason        string   `json:"reason" binding:"required"`
	ReasonText    string   `json:"reason_text"`
}

// Scan registers a barcode-confirmed pick against an assignment item. The
// caller has already validated the code against the catalog.
func (h *ExecutionHandler) Scan(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment item id"})
		return
	}

	var payload ScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Engine.RegisterProgress(c.Request.Context(), itemID, payload.Code, false, payload.Quantity, "", actorID)
	if err != nil {
		h.respondProgressError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// Manual registers a hand-entered quantity; the reason is mandatory and kept
// as a separate override record.
func (h *ExecutionHandler) Manual(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment item id"})
		return
	}

	var payload ManualPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Engine.RegisterProgress(c.Request.Context(), itemID, "", true, payload.Quantity, payload.Reason, actorID)
	if err != nil {
		h.respondProgressError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// PartialComplete closes a requisition item below its requested quantity
// with a classified reason.
func (h *ExecutionHandler) PartialComplete(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requisition item id"})
		return
	}

	var payload PartialCompletePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Engine.CompletePartial(c.Request.Context(), itemID, *payload.FoundQuantity, payload.Reason, payload.ReasonText, actorID)
	if err != nil {
		h.respondProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ExecutionHandler) respondProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, execution.ErrQuantityOutOfRange),
		errors.Is(err, execution.ErrReasonRequired),
		errors.Is(err, execution.ErrUnknownReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register progress"})
	}
}
