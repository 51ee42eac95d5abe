// internal/execution/engine.go
//
// Package execution drives picking progress: barcode scans, manual entries,
// partial completion with discrepancy reasons, and document completion.
// Every mutating call recomputes the item -> assignment -> requisition
// aggregate chain inside one transaction so readers never observe a
// half-updated view.
package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/audit"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/notify"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partial completion reasons.
const (
	ReasonShortPick = "short_pick"
	ReasonNotFound  = "not_found"
	ReasonOther     = "other"
)

var (
	// ErrQuantityOutOfRange rejects non-positive scan quantities and
	// found quantities outside [0, requested].
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	// ErrReasonRequired rejects manual entries without a reason and
	// partial completions with reason "other" and no text.
	ErrReasonRequired = errors.New("reason text is required")
	// ErrUnknownReason rejects partial completions with an unrecognized reason.
	ErrUnknownReason = errors.New("unknown discrepancy reason")
	// ErrRequisitionDone rejects completion of an already closed document.
	ErrRequisitionDone = errors.New("requisition is already completed")
)

// ShortageError is the two-step guard on document completion: the caller
// must re-invoke with confirm_incomplete=true to close a short document.
type ShortageError struct {
	ShortageCount int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("document has %d item(s) with shortages; set confirm_incomplete=true to close anyway", e.ShortageCount)
}

// ProgressResult is the outcome of one scan or manual entry.
type ProgressResult struct {
	AssignmentID      string  `json:"assignmentID"`
	AssignmentItemID  string  `json:"assignmentItemID"`
	AppliedQty        float64 `json:"appliedQty"`
	CompletedQty      float64 `json:"completedQty"`
	AllocatedQty      float64 `json:"allocatedQty"`
	ItemStatus        string  `json:"itemStatus"`
	AssignmentStatus  string  `json:"assignmentStatus"`
	ProgressPct       float64 `json:"progressPct"`
	RequisitionStatus string  `json:"requisitionStatus"`
}

// CompletionSummary is the outcome of closing a requisition.
type CompletionSummary struct {
	DocumentNumber string `json:"documentNumber"`
	Status         string `json:"status"`
	ItemCount      int    `json:"itemCount"`
	ShortageCount  int    `json:"shortageCount"`
	CompletedFully bool   `json:"completedFully"`
}

// Engine is the execution state machine over assignments and requisitions.
type Engine struct {
	store    store.Store
	audit    *audit.Recorder
	notifier notify.Notifier
}

func NewEngine(s store.Store, a *audit.Recorder, n notify.Notifier) *Engine {
	return &Engine{store: s, audit: a, notifier: n}
}

// RegisterProgress applies one scan (code set, manual=false) or one manual
// entry (manual=true, reason mandatory) to an assignment item.
//
// The increment is clamped at the allocated quantity, never rejected: the
// raw quantity is still recorded in the scan log so over-scans stay visible.
func (e *Engine) RegisterProgress(ctx context.Context, assignmentItemID primitive.ObjectID, code string, manual bool, quantity float64, reason, actorID string) (*ProgressResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: scan quantity must be positive", ErrQuantityOutOfRange)
	}
	if manual && reason == "" {
		return nil, ErrReasonRequired
	}

	var result ProgressResult
	var reqStatusChanged bool
	var documentNumber string
	err := e.store.WithTransaction(ctx, func(txCtx context.Context) error {
		ai, err := e.store.GetAssignmentItem(txCtx, assignmentItemID)
		if err != nil {
			return err
		}

		applied := quantity
		if ai.CompletedQty+applied > ai.AllocatedQty {
			applied = ai.AllocatedQty - ai.CompletedQty
		}
		ai.CompletedQty += applied
		if ai.CompletedQty >= ai.AllocatedQty {
			ai.Status = models.AssignmentStatusDone
		} else {
			ai.Status = models.AssignmentStatusInProgress
		}
		if err := e.store.UpdateAssignmentItem(txCtx, ai); err != nil {
			return err
		}

		if err := e.store.InsertScanLog(txCtx, &models.ScanLog{
			AssignmentItemID: ai.ID,
			WorkerID:         actorID,
			Code:             code,
			Manual:           manual,
			RawQty:           quantity,
			AppliedQty:       applied,
			CreatedAt:        time.Now(),
		}); err != nil {
			return err
		}
		if manual {
			if err := e.store.InsertManualOverride(txCtx, &models.ManualOverride{
				AssignmentItemID: ai.ID,
				WorkerID:         actorID,
				Quantity:         applied,
				Reason:           reason,
				CreatedAt:        time.Now(),
			}); err != nil {
				return err
			}
		}

		// Requisition item completed quantity is the sum across every
		// assignment referencing it, not just this one.
		if err := e.recomputeRequisitionItem(txCtx, ai.RequisitionItemID); err != nil {
			return err
		}

		a, err := e.rollupAssignment(txCtx, ai.AssignmentID)
		if err != nil {
			return err
		}

		req, changed, err := e.rollupRequisition(txCtx, ai.RequisitionID)
		if err != nil {
			return err
		}
		reqStatusChanged = changed
		documentNumber = req.DocumentNumber

		result = ProgressResult{
			AssignmentID:      a.AssignmentID,
			AssignmentItemID:  ai.ID.Hex(),
			AppliedQty:        applied,
			CompletedQty:      ai.CompletedQty,
			AllocatedQty:      ai.AllocatedQty,
			ItemStatus:        ai.Status,
			AssignmentStatus:  a.Status,
			ProgressPct:       a.ProgressPct,
			RequisitionStatus: req.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := notify.TypeScan
	if manual {
		eventType = notify.TypeManual
	}
	e.notifier.Progress(notify.ProgressEvent{
		Type:             eventType,
		AssignmentID:     result.AssignmentID,
		AssignmentItemID: result.AssignmentItemID,
		ProgressPct:      result.ProgressPct,
	})
	if reqStatusChanged {
		e.notifier.RequisitionStatus(notify.RequisitionStatusEvent{
			DocumentNumber: documentNumber,
			Status:         result.RequisitionStatus,
		})
	}
	return &result, nil
}

// CompletePartial closes one requisition item below (or at) its requested
// quantity with a recorded reason: "I looked, this is all there is."
func (e *Engine) CompletePartial(ctx context.Context, requisitionItemID primitive.ObjectID, foundQty float64, reason, reasonText, actorID string) (*models.RequisitionItem, error) {
	var discrepancyIfShort string
	switch reason {
	case ReasonShortPick, ReasonOther:
		discrepancyIfShort = models.DiscrepancyShortPick
	case ReasonNotFound:
		discrepancyIfShort = models.DiscrepancyNotFound
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReason, reason)
	}
	if reason == ReasonOther && reasonText == "" {
		return nil, ErrReasonRequired
	}

	var item *models.RequisitionItem
	var reqStatus, documentNumber string
	err := e.store.WithTransaction(ctx, func(txCtx context.Context) error {
		ri, err := e.store.GetRequisitionItem(txCtx, requisitionItemID)
		if err != nil {
			return err
		}
		if foundQty < 0 || foundQty > ri.RequestedQty {
			return fmt.Errorf("%w: found quantity %.2f not in [0, %.2f]", ErrQuantityOutOfRange, foundQty, ri.RequestedQty)
		}

		now := time.Now()
		ri.FoundQty = foundQty
		ri.IsPartial = foundQty < ri.RequestedQty
		if ri.RequestedQty > 0 {
			ri.CompletionPercentage = foundQty / ri.RequestedQty * 100
		} else {
			ri.CompletionPercentage = 0
		}
		if ri.IsPartial {
			ri.Discrepancy = discrepancyIfShort
		} else {
			ri.Discrepancy = models.DiscrepancyNone
		}
		ri.DiscrepancyReason = reasonText
		ri.Status = models.ItemStatusDone
		ri.CompletedBy = actorID
		ri.CompletedAt = &now
		if err := e.store.UpdateRequisitionItem(txCtx, ri); err != nil {
			return err
		}
		item = ri

		req, _, err := e.rollupRequisition(txCtx, ri.RequisitionID)
		if err != nil {
			return err
		}
		reqStatus = req.Status
		documentNumber = req.DocumentNumber

		return e.audit.Record(txCtx, actorID, models.AuditActionPartialComplete, "requisition_item", ri.ID.Hex(), models.AuditDetails{
			PartialComplete: &models.PartialCompleteDetails{
				FoundQty:     foundQty,
				RequestedQty: ri.RequestedQty,
				Reason:       reason,
				ReasonText:   reasonText,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	e.notifier.RequisitionStatus(notify.RequisitionStatusEvent{
		DocumentNumber: documentNumber,
		Status:         reqStatus,
		ProgressPct:    item.CompletionPercentage,
	})
	return item, nil
}

// CompleteDocument closes a requisition. When any item carries a shortage
// the caller must confirm explicitly, otherwise the close is rejected with
// a ShortageError.
func (e *Engine) CompleteDocument(ctx context.Context, documentNumber string, confirmIncomplete bool, actorID string) (*CompletionSummary, error) {
	var summary CompletionSummary
	err := e.store.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.store.GetRequisition(txCtx, documentNumber)
		if err != nil {
			return err
		}
		if req.Status == models.RequisitionStatusDone {
			return ErrRequisitionDone
		}

		items, err := e.store.ListRequisitionItems(txCtx, req.ID)
		if err != nil {
			return err
		}

		shortages := 0
		for _, it := range items {
			picked := it.CompletedQty
			if it.FoundQty > picked {
				picked = it.FoundQty
			}
			if it.Discrepancy != models.DiscrepancyNone || it.RequestedQty-picked > 0 {
				shortages++
			}
		}
		if shortages > 0 && !confirmIncomplete {
			return &ShortageError{ShortageCount: shortages}
		}

		now := time.Now()
		req.Status = models.RequisitionStatusDone
		req.CompletedBy = actorID
		req.CompletedAt = &now
		if err := e.store.UpdateRequisition(txCtx, req); err != nil {
			return err
		}

		summary = CompletionSummary{
			DocumentNumber: documentNumber,
			Status:         req.Status,
			ItemCount:      len(items),
			ShortageCount:  shortages,
			CompletedFully: shortages == 0,
		}
		return e.audit.Record(txCtx, actorID, models.AuditActionDocumentComplete, "requisition", documentNumber, models.AuditDetails{
			DocumentComplete: &models.DocumentCompleteDetails{
				WithShortages: shortages > 0,
				ShortageCount: shortages,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	e.notifier.RequisitionStatus(notify.RequisitionStatusEvent{
		DocumentNumber: documentNumber,
		Status:         summary.Status,
	})
	return &summary, nil
}

// recomputeRequisitionItem resets the item's completed quantity to the exact
// sum of all contributing assignment items.
func (e *Engine) recomputeRequisitionItem(ctx context.Context, requisitionItemID primitive.ObjectID) error {
	ri, err := e.store.GetRequisitionItem(ctx, requisitionItemID)
	if err != nil {
		return err
	}
	siblings, err := e.store.ListAssignmentItemsByRequisitionItem(ctx, requisitionItemID)
	if err != nil {
		return err
	}

	var sum float64
	for _, s := range siblings {
		sum += s.CompletedQty
	}
	ri.CompletedQty = sum
	if ri.RequestedQty > 0 {
		ri.CompletionPercentage = sum / ri.RequestedQty * 100
	}
	switch {
	case ri.RequestedQty > 0 && sum >= ri.RequestedQty:
		ri.Status = models.ItemStatusDone
	case sum > 0:
		ri.Status = models.ItemStatusInProgress
	default:
		ri.Status = models.ItemStatusAssigned
	}
	return e.store.UpdateRequisitionItem(ctx, ri)
}

// rollupAssignment recomputes the parent assignment's status and progress
// percentage from its items.
func (e *Engine) rollupAssignment(ctx context.Context, assignmentOID primitive.ObjectID) (*models.Assignment, error) {
	items, err := e.store.ListAssignmentItemsByAssignment(ctx, assignmentOID)
	if err != nil {
		return nil, err
	}

	allDone := len(items) > 0
	anyInProgress := false
	var completed, allocated float64
	for _, it := range items {
		if it.Status != models.AssignmentStatusDone {
			allDone = false
		}
		if it.Status == models.AssignmentStatusInProgress {
			anyInProgress = true
		}
		completed += it.CompletedQty
		allocated += it.AllocatedQty
	}

	a, err := e.store.GetAssignmentByID(ctx, assignmentOID)
	if err != nil {
		return nil, err
	}

	switch {
	case allDone:
		a.Status = models.AssignmentStatusDone
	case anyInProgress:
		a.Status = models.AssignmentStatusInProgress
	default:
		a.Status = models.AssignmentStatusAssigned
	}
	if allocated > 0 {
		a.ProgressPct = completed / allocated * 100
	} else {
		a.ProgressPct = 0
	}
	if err := e.store.UpdateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// rollupRequisition recomputes the requisition status as a deterministic
// function of its item statuses. Returns whether the status changed.
func (e *Engine) rollupRequisition(ctx context.Context, requisitionID primitive.ObjectID) (*models.Requisition, bool, error) {
	items, err := e.store.ListRequisitionItems(ctx, requisitionID)
	if err != nil {
		return nil, false, err
	}

	allDone := len(items) > 0
	anyInProgress := false
	anyAssigned := false
	for _, it := range items {
		if it.Status != models.ItemStatusDone {
			allDone = false
		}
		if it.Status == models.ItemStatusInProgress {
			anyInProgress = true
		}
		if it.Status == models.ItemStatusAssigned {
			anyAssigned = true
		}
	}

	status := models.RequisitionStatusNew
	switch {
	case allDone:
		status = models.RequisitionStatusDone
	case anyInProgress:
		status = models.RequisitionStatusInProgress
	case anyAssigned:
		status = models.RequisitionStatusAssigned
	}

	req, err := e.store.GetRequisitionByID(ctx, requisitionID)
	if err != nil {
		return nil, false, err
	}
	if req.Status == status {
		return req, false, nil
	}
	req.Status = status
	if err := e.store.UpdateRequisition(ctx, req); err != nil {
		return nil, false, err
	}
	return req, true, nil
}
