// internal/api/handlers/requisition_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/assignment"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/execution"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/scheduler"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequisitionHandler struct {
	Store        store.Store
	Scheduler    *scheduler.Scheduler
	Materializer *assignment.Materializer
	Engine       *execution.Engine
}

// --- Request payloads ---

type ItemAllocationPayload struct {
	RequisitionItemID string  `json:"requisitionItemID" binding:"required"`
	Quantity          float64 `json:"quantity" binding:"required"`
}

type WorkerAllocationPayload struct {
	WorkerID string                  `json:"workerID" binding:"required"`
	Priority int                     `json:"priority"`
	DueAt    *time.Time              `json:"dueAt"`
	Items    []ItemAllocationPayload `json:"items" binding:"required"`
}

type CreateAssignmentsPayload struct {
	Allocations []WorkerAllocationPayload `json:"allocations" binding:"required"`
}

type CompleteDocumentPayload struct {
	ConfirmIncomplete bool `json:"confirm_incomplete"`
}

// Suggest proposes the best worker for the requisition. Repeated calls
// inside the lock window return the same decision with cached=true.
func (h *RequisitionHandler) Suggest(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	documentNumber := c.Param("id")

	suggestion, err := h.Scheduler.Suggest(c.Request.Context(), documentNumber, actorID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		case errors.Is(err, scheduler.ErrNoCandidates), errors.Is(err, scheduler.ErrRequisitionDone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, scheduler.ErrLockContention):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to produce suggestion"})
		}
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// CancelSuggestion voids the live decision; no-op when none exists.
func (h *RequisitionHandler) CancelSuggestion(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	documentNumber := c.Param("id")

	if err := h.Scheduler.CancelSuggestion(c.Request.Context(), documentNumber, actorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel suggestion"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateAssignments materializes a batch of worker allocations. The batch is
// all-or-nothing: any over-allocation rejects it whole.
func (h *RequisitionHandler) CreateAssignments(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	documentNumber := c.Param("id")

	var payload CreateAssignmentsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allocations := make([]assignment.WorkerAllocation, 0, len(payload.Allocations))
	for _, wa := range payload.Allocations {
		items := make([]assignment.ItemAllocation, 0, len(wa.Items))
		for _, ia := range wa.Items {
			itemID, err := primitive.ObjectIDFromHex(ia.RequisitionItemID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requisition item id: " + ia.RequisitionItemID})
				return
			}
			items = append(items, assignment.ItemAllocation{
				RequisitionItemID: itemID,
				Quantity:          ia.Quantity,
			})
		}
		allocations = append(allocations, assignment.WorkerAllocation{
			WorkerID: wa.WorkerID,
			Priority: wa.Priority,
			DueAt:    wa.DueAt,
			Items:    items,
		})
	}

	assignmentIDs, err := h.Materializer.Create(c.Request.Context(), documentNumber, allocations, actorID)
	if err != nil {
		var overAlloc *assignment.OverAllocationError
		switch {
		case errors.As(err, &overAlloc):
			c.JSON(http.StatusBadRequest, gin.H{"error": overAlloc.Error()})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, assignment.ErrRequisitionDone), errors.Is(err, assignment.ErrWorkerInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignments"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment_ids": assignmentIDs})
}

// CancelAssignments undoes the requisition's whole assignment wave; allowed
// only before any execution progress.
func (h *RequisitionHandler) CancelAssignments(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	documentNumber := c.Param("id")

	if err := h.Materializer.Cancel(c.Request.Context(), documentNumber, actorID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		case errors.Is(err, assignment.ErrExecutionStarted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel assignments"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteDocument closes the requisition, guarding short closes behind an
// explicit confirmation flag.
func (h *RequisitionHandler) CompleteDocument(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	documentNumber := c.Param("id")

	var payload CompleteDocumentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.Engine.CompleteDocument(c.Request.Context(), documentNumber, payload.ConfirmIncomplete, actorID)
	if err != nil {
		var shortage *execution.ShortageError
		switch {
		case errors.As(err, &shortage):
			c.JSON(http.StatusBadRequest, gin.H{"error": shortage.Error(), "shortage_count": shortage.ShortageCount})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		case errors.Is(err, execution.ErrRequisitionDone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete document"})
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAll lists requisitions, optionally filtered by status.
func (h *RequisitionHandler) GetAll(c *gin.Context) {
	requisitions, err := h.Store.ListRequisitions(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query requisitions"})
		return
	}
	c.JSON(http.StatusOK, requisitions)
}

// GetByNumber returns one requisition with its items.
func (h *RequisitionHandler) GetByNumber(c *gin.Context) {
	documentNumber := c.Param("id")

	req, err := h.Store.GetRequisition(c.Request.Context(), documentNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requisition"})
		return
	}

	items, err := h.Store.ListRequisitionItems(c.Request.Context(), req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requisition items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requisition": req, "items": items})
}
