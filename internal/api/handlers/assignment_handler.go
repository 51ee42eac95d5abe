// internal/api/handlers/assignment_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/assignment"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	Store        store.Store
	Materializer *assignment.Materializer
}

type UpdateStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

type ReassignPayload struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

// UpdateStatus applies a manual status change (assigned <-> in_progress).
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	assignmentID := c.Param("id")

	var payload UpdateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.Materializer.SetStatus(c.Request.Context(), assignmentID, payload.Status, actorID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		case errors.Is(err, assignment.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment status"})
		}
		return
	}
	c.JSON(http.StatusOK, a)
}

// Reassign moves the assignment to another active worker.
func (h *AssignmentHandler) Reassign(c *gin.Context) {
	actorID := c.GetString("user_worker_id")
	assignmentID := c.Param("id")

	var payload ReassignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.Materializer.Reassign(c.Request.Context(), assignmentID, payload.WorkerID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		case errors.Is(err, assignment.ErrWorkerInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reassign assignment"})
		}
		return
	}
	c.JSON(http.StatusOK, a)
}

// GetByID returns one assignment with its items.
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	assignmentID := c.Param("id")

	a, err := h.Store.GetAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignment"})
		return
	}

	items, err := h.Store.ListAssignmentItemsByAssignment(c.Request.Context(), a.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignment items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": a, "items": items})
}

// GetWorkerTasks lists a worker's open assignments with their items.
func (h *AssignmentHandler) GetWorkerTasks(c *gin.Context) {
	workerID := c.Param("id")

	assignments, err := h.Store.ListAssignmentsByWorker(c.Request.Context(), workerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query assignments"})
		return
	}

	type task struct {
		Assignment models.Assignment       `json:"assignment"`
		Items      []models.AssignmentItem `json:"items"`
	}
	tasks := []task{}
	for _, a := range assignments {
		items, err := h.Store.ListAssignmentItemsByAssignment(c.Request.Context(), a.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query assignment items"})
			return
		}
		tasks = append(tasks, task{Assignment: a, Items: items})
	}
	c.JSON(http.StatusOK, tasks)
}

// ListWorkers returns the active worker directory for the allocation UI.
func (h *AssignmentHandler) ListWorkers(c *gin.Context) {
	workers, err := h.Store.ListActiveWorkers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query workers"})
		return
	}
	c.JSON(http.StatusOK, workers)
}
