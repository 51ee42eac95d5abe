// internal/assignment/materializer.go
//
// Package assignment materializes scheduling decisions into per-worker
// assignments and owns the assignment lifecycle (status changes, reassign,
// cancellation before execution starts).
package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/audit"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/notify"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrRequisitionDone rejects new assignments on a completed document.
	ErrRequisitionDone = errors.New("requisition is already completed")
	// ErrExecutionStarted blocks cancellation once any quantity was picked.
	ErrExecutionStarted = errors.New("execution already started, assignments cannot be cancelled")
	// ErrInvalidTransition rejects a disallowed assignment status change.
	ErrInvalidTransition = errors.New("invalid assignment status transition")
	// ErrWorkerInactive rejects allocations to missing or inactive workers.
	ErrWorkerInactive = errors.New("worker is not active")
)

// OverAllocationError reports a batch whose quantities would exceed a
// requisition item's requested quantity. The whole batch is rejected.
type OverAllocationError struct {
	ArticleCode string
	Requested   float64
	Existing    float64
	Attempted   float64
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("over-allocation of article %s: requested %.2f, already allocated %.2f, attempted %.2f more",
		e.ArticleCode, e.Requested, e.Existing, e.Attempted)
}

// ItemAllocation assigns a quantity slice of one requisition item.
type ItemAllocation struct {
	RequisitionItemID primitive.ObjectID
	Quantity          float64
}

// WorkerAllocation is one worker's share of a requisition.
type WorkerAllocation struct {
	WorkerID string
	Priority int
	DueAt    *time.Time
	Items    []ItemAllocation
}

// Materializer converts allocations into persisted assignments.
type Materializer struct {
	store    store.Store
	audit    *audit.Recorder
	notifier notify.Notifier
}

func NewMaterializer(s store.Store, a *audit.Recorder, n notify.Notifier) *Materializer {
	return &Materializer{store: s, audit: a, notifier: n}
}

// Create validates the entire batch against the capacity invariant
// (sum of allocations per item never exceeds the requested quantity, counting
// every existing assignment) and persists it atomically. No partial commit:
// one bad allocation rejects the whole batch.
func (m *Materializer) Create(ctx context.Context, documentNumber string, allocations []WorkerAllocation, actorID string) ([]string, error) {
	if len(allocations) == 0 {
		return nil, errors.New("at least one worker allocation is required")
	}

	var assignmentIDs []string
	err := m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := m.store.GetRequisition(txCtx, documentNumber)
		if err != nil {
			return err
		}
		if req.Status == models.RequisitionStatusDone {
			return ErrRequisitionDone
		}

		items, err := m.store.ListRequisitionItems(txCtx, req.ID)
		if err != nil {
			return err
		}
		itemsByID := make(map[primitive.ObjectID]models.RequisitionItem, len(items))
		for _, it := range items {
			itemsByID[it.ID] = it
		}

		existing, err := m.store.ListAssignmentItemsByRequisition(txCtx, req.ID)
		if err != nil {
			return err
		}
		allocated := make(map[primitive.ObjectID]float64)
		for _, ai := range existing {
			allocated[ai.RequisitionItemID] += ai.AllocatedQty
		}

		// Validate the full batch before the first write. Allocations within
		// the batch count against each other.
		batch := make(map[primitive.ObjectID]float64)
		for _, wa := range allocations {
			for _, ia := range wa.Items {
				item, ok := itemsByID[ia.RequisitionItemID]
				if !ok {
					return fmt.Errorf("requisition item %s: %w", ia.RequisitionItemID.Hex(), store.ErrNotFound)
				}
				if ia.Quantity <= 0 {
					return fmt.Errorf("allocation for article %s must be positive", item.ArticleCode)
				}
				if allocated[ia.RequisitionItemID]+batch[ia.RequisitionItemID]+ia.Quantity > item.RequestedQty {
					return &OverAllocationError{
						ArticleCode: item.ArticleCode,
						Requested:   item.RequestedQty,
						Existing:    allocated[ia.RequisitionItemID] + batch[ia.RequisitionItemID],
						Attempted:   ia.Quantity,
					}
				}
				batch[ia.RequisitionItemID] += ia.Quantity
			}
		}

		now := time.Now()
		for _, wa := range allocations {
			worker, err := m.store.GetWorker(txCtx, wa.WorkerID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("worker %s: %w", wa.WorkerID, ErrWorkerInactive)
				}
				return err
			}
			if !worker.Active {
				return fmt.Errorf("worker %s: %w", wa.WorkerID, ErrWorkerInactive)
			}

			a := &models.Assignment{
				AssignmentID:  fmt.Sprintf("ZAD-%s", strings.ToUpper(uuid.New().String()[:8])),
				RequisitionID: req.ID,
				WorkerID:      worker.WorkerID,
				TeamID:        worker.TeamID,
				Priority:      wa.Priority,
				DueAt:         wa.DueAt,
				Status:        models.AssignmentStatusAssigned,
				CreatedBy:     actorID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := m.store.InsertAssignment(txCtx, a); err != nil {
				return err
			}

			var totalQty float64
			for _, ia := range wa.Items {
				item := itemsByID[ia.RequisitionItemID]
				if err := m.store.InsertAssignmentItem(txCtx, &models.AssignmentItem{
					AssignmentID:      a.ID,
					RequisitionID:     req.ID,
					RequisitionItemID: ia.RequisitionItemID,
					ArticleCode:       item.ArticleCode,
					AllocatedQty:      ia.Quantity,
					Status:            models.AssignmentStatusAssigned,
					UpdatedAt:         now,
				}); err != nil {
					return err
				}
				totalQty += ia.Quantity
			}

			err = m.audit.Record(txCtx, actorID, models.AuditActionAssignmentCreate, "assignment", a.AssignmentID, models.AuditDetails{
				AssignmentCreate: &models.AssignmentCreateDetails{
					AssignmentID: a.AssignmentID,
					WorkerID:     a.WorkerID,
					ItemCount:    len(wa.Items),
					TotalQty:     totalQty,
				},
			})
			if err != nil {
				return err
			}
			assignmentIDs = append(assignmentIDs, a.AssignmentID)
		}

		// Covered items and the requisition move to ASSIGNED.
		for itemID := range batch {
			item := itemsByID[itemID]
			item.Status = models.ItemStatusAssigned
			if err := m.store.UpdateRequisitionItem(txCtx, &item); err != nil {
				return err
			}
		}
		req.Status = models.RequisitionStatusAssigned
		return m.store.UpdateRequisition(txCtx, req)
	})
	if err != nil {
		return nil, err
	}

	m.notifier.Assign(notify.AssignEvent{
		DocumentNumber: documentNumber,
		AssignmentIDs:  assignmentIDs,
	})
	return assignmentIDs, nil
}

// Cancel undoes the whole assignment wave of a requisition. Allowed only
// before any execution: a single picked unit anywhere blocks it.
func (m *Materializer) Cancel(ctx context.Context, documentNumber, actorID string) error {
	var cancelledIDs []string
	err := m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := m.store.GetRequisition(txCtx, documentNumber)
		if err != nil {
			return err
		}

		assignments, err := m.store.ListAssignmentsByRequisition(txCtx, req.ID)
		if err != nil {
			return err
		}
		items, err := m.store.ListAssignmentItemsByRequisition(txCtx, req.ID)
		if err != nil {
			return err
		}
		for _, ai := range items {
			if ai.CompletedQty > 0 {
				return ErrExecutionStarted
			}
		}

		if err := m.store.DeleteAssignmentsByRequisition(txCtx, req.ID); err != nil {
			return err
		}

		reqItems, err := m.store.ListRequisitionItems(txCtx, req.ID)
		if err != nil {
			return err
		}
		for _, it := range reqItems {
			it.CompletedQty = 0
			it.FoundQty = 0
			it.Status = models.ItemStatusNew
			it.Discrepancy = models.DiscrepancyNone
			it.DiscrepancyReason = ""
			it.IsPartial = false
			it.CompletionPercentage = 0
			it.CompletedBy = ""
			it.CompletedAt = nil
			if err := m.store.UpdateRequisitionItem(txCtx, &it); err != nil {
				return err
			}
		}

		req.Status = models.RequisitionStatusNew
		req.CompletedBy = ""
		req.CompletedAt = nil
		if err := m.store.UpdateRequisition(txCtx, req); err != nil {
			return err
		}

		for _, a := range assignments {
			cancelledIDs = append(cancelledIDs, a.AssignmentID)
		}
		return m.audit.Record(txCtx, actorID, models.AuditActionAssignmentCancel, "requisition", documentNumber, models.AuditDetails{
			AssignmentCancel: &models.AssignmentCancelDetails{AssignmentIDs: cancelledIDs},
		})
	})
	if err != nil {
		return err
	}

	m.notifier.Cancel(notify.CancelEvent{
		DocumentNumber: documentNumber,
		AssignmentIDs:  cancelledIDs,
	})
	return nil
}

// SetStatus applies a manual assignment status change. Only
// ASSIGNED <-> IN_PROGRESS is allowed here; DONE is reached exclusively
// through item completion in the execution engine.
func (m *Materializer) SetStatus(ctx context.Context, assignmentID, newStatus, actorID string) (*models.Assignment, error) {
	var updated *models.Assignment
	err := m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := m.store.GetAssignment(txCtx, assignmentID)
		if err != nil {
			return err
		}

		valid := (a.Status == models.AssignmentStatusAssigned && newStatus == models.AssignmentStatusInProgress) ||
			(a.Status == models.AssignmentStatusInProgress && newStatus == models.AssignmentStatusAssigned)
		if !valid {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, newStatus)
		}

		from := a.Status
		a.Status = newStatus
		if err := m.store.UpdateAssignment(txCtx, a); err != nil {
			return err
		}
		updated = a
		return m.audit.Record(txCtx, actorID, models.AuditActionAssignmentStatus, "assignment", assignmentID, models.AuditDetails{
			StatusChange: &models.StatusChangeDetails{From: from, To: newStatus},
		})
	})
	if err != nil {
		return nil, err
	}

	m.notifier.Status(notify.StatusEvent{
		AssignmentID: updated.AssignmentID,
		Status:       updated.Status,
	})
	return updated, nil
}

// Reassign moves an assignment (items and progress included) to another
// active worker.
func (m *Materializer) Reassign(ctx context.Context, assignmentID, toWorkerID, actorID string) (*models.Assignment, error) {
	var updated *models.Assignment
	var fromWorkerID string
	err := m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := m.store.GetAssignment(txCtx, assignmentID)
		if err != nil {
			return err
		}
		worker, err := m.store.GetWorker(txCtx, toWorkerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("worker %s: %w", toWorkerID, ErrWorkerInactive)
			}
			return err
		}
		if !worker.Active {
			return fmt.Errorf("worker %s: %w", toWorkerID, ErrWorkerInactive)
		}

		fromWorkerID = a.WorkerID
		a.WorkerID = worker.WorkerID
		a.TeamID = worker.TeamID
		if err := m.store.UpdateAssignment(txCtx, a); err != nil {
			return err
		}
		updated = a
		return m.audit.Record(txCtx, actorID, models.AuditActionReassign, "assignment", assignmentID, models.AuditDetails{
			Reassign: &models.ReassignDetails{FromWorkerID: fromWorkerID, ToWorkerID: toWorkerID},
		})
	})
	if err != nil {
		return nil, err
	}

	m.notifier.Reassign(notify.ReassignEvent{
		AssignmentID: updated.AssignmentID,
		FromWorkerID: fromWorkerID,
		ToWorkerID:   toWorkerID,
	})
	return updated, nil
}
