package execution

import (
	"context"
	"testing"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/audit"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/notify"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *store.MemoryStore
	engine *Engine
	req    *models.Requisition
	item   *models.RequisitionItem
}

// newFixture builds a requisition with one item of the given requested
// quantity, fully allocated to a single assignment for worker W1.
func newFixture(t *testing.T, requestedQty float64) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	req := &models.Requisition{
		DocumentNumber: "TRB-100",
		DocumentDate:   time.Now(),
		SourceLocation: "MAG-01",
		DestLocation:   "STORE-07",
		Status:         models.RequisitionStatusAssigned,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, st.InsertRequisition(ctx, req))

	item := &models.RequisitionItem{
		RequisitionID: req.ID,
		ArticleCode:   "ART-001",
		ArticleName:   "Test article",
		RequestedQty:  requestedQty,
		Status:        models.ItemStatusAssigned,
		Discrepancy:   models.DiscrepancyNone,
	}
	require.NoError(t, st.InsertRequisitionItem(ctx, item))

	return &fixture{
		store:  st,
		engine: NewEngine(st, audit.NewRecorder(st), notify.NoopNotifier{}),
		req:    req,
		item:   item,
	}
}

// allocate adds an assignment for the worker covering the fixture item with
// the given allocated quantity and returns the assignment item.
func (f *fixture) allocate(t *testing.T, workerID string, qty float64) *models.AssignmentItem {
	t.Helper()
	ctx := context.Background()
	a := &models.Assignment{
		AssignmentID:  "ZAD-" + workerID,
		RequisitionID: f.req.ID,
		WorkerID:      workerID,
		Status:        models.AssignmentStatusAssigned,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, f.store.InsertAssignment(ctx, a))
	ai := &models.AssignmentItem{
		AssignmentID:      a.ID,
		RequisitionID:     f.req.ID,
		RequisitionItemID: f.item.ID,
		ArticleCode:       f.item.ArticleCode,
		AllocatedQty:      qty,
		Status:            models.AssignmentStatusAssigned,
	}
	require.NoError(t, f.store.InsertAssignmentItem(ctx, ai))
	return ai
}

func TestRegisterProgressClampsOverScan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	ai := f.allocate(t, "W1", 10)

	res, err := f.engine.RegisterProgress(ctx, ai.ID, "8600001", false, 6, "", "W1")
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.AppliedQty)
	assert.Equal(t, 6.0, res.CompletedQty)
	assert.Equal(t, models.AssignmentStatusInProgress, res.ItemStatus)
	assert.Equal(t, models.RequisitionStatusInProgress, res.RequisitionStatus)
	assert.Equal(t, 60.0, res.ProgressPct)

	// Second scan of 6 overshoots by 2: applied is clamped to 4, the raw
	// quantity survives in the scan log.
	res, err = f.engine.RegisterProgress(ctx, ai.ID, "8600001", false, 6, "", "W1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.AppliedQty)
	assert.Equal(t, 10.0, res.CompletedQty)
	assert.Equal(t, models.AssignmentStatusDone, res.ItemStatus)
	assert.Equal(t, models.AssignmentStatusDone, res.AssignmentStatus)
	assert.Equal(t, 100.0, res.ProgressPct)

	logs := f.store.ScanLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, 6.0, logs[1].RawQty)
	assert.Equal(t, 4.0, logs[1].AppliedQty)

	gotItem, err := f.store.GetRequisitionItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, gotItem.CompletedQty)
	assert.Equal(t, models.ItemStatusDone, gotItem.Status)
}

func TestRegisterProgressAggregatesAcrossAssignments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	ai1 := f.allocate(t, "W1", 6)
	ai2 := f.allocate(t, "W2", 4)

	res, err := f.engine.RegisterProgress(ctx, ai1.ID, "8600001", false, 6, "", "W1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusDone, res.AssignmentStatus)

	// The requisition item sums over both assignments: 6 of 10 so far.
	gotItem, err := f.store.GetRequisitionItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, gotItem.CompletedQty)
	assert.Equal(t, models.ItemStatusInProgress, gotItem.Status)
	assert.Equal(t, 60.0, gotItem.CompletionPercentage)

	res, err = f.engine.RegisterProgress(ctx, ai2.ID, "", true, 4, "no scanner on dock 2", "W2")
	require.NoError(t, err)
	assert.Equal(t, models.RequisitionStatusDone, res.RequisitionStatus)

	gotItem, err = f.store.GetRequisitionItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, gotItem.CompletedQty)
	assert.Equal(t, models.ItemStatusDone, gotItem.Status)
}

func TestRegisterProgressValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	ai := f.allocate(t, "W1", 10)

	_, err := f.engine.RegisterProgress(ctx, ai.ID, "8600001", false, 0, "", "W1")
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)

	_, err = f.engine.RegisterProgress(ctx, ai.ID, "", true, 2, "", "W1")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestCompletePartialRecordsDiscrepancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.allocate(t, "W1", 10)

	item, err := f.engine.CompletePartial(ctx, f.item.ID, 7, ReasonShortPick, "", "W1")
	require.NoError(t, err)
	assert.True(t, item.IsPartial)
	assert.Equal(t, 7.0, item.FoundQty)
	assert.Equal(t, 70.0, item.CompletionPercentage)
	assert.Equal(t, models.DiscrepancyShortPick, item.Discrepancy)
	assert.Equal(t, models.ItemStatusDone, item.Status)
	assert.Equal(t, "W1", item.CompletedBy)
	require.NotNil(t, item.CompletedAt)
}

func TestCompletePartialAtFullQuantityClearsDiscrepancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.allocate(t, "W1", 10)

	item, err := f.engine.CompletePartial(ctx, f.item.ID, 10, ReasonShortPick, "", "W1")
	require.NoError(t, err)
	assert.False(t, item.IsPartial)
	assert.Equal(t, models.DiscrepancyNone, item.Discrepancy)
	assert.Equal(t, 100.0, item.CompletionPercentage)
}

func TestCompletePartialValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.allocate(t, "W1", 10)

	_, err := f.engine.CompletePartial(ctx, f.item.ID, 7, "vanished", "", "W1")
	assert.ErrorIs(t, err, ErrUnknownReason)

	_, err = f.engine.CompletePartial(ctx, f.item.ID, 7, ReasonOther, "", "W1")
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = f.engine.CompletePartial(ctx, f.item.ID, 11, ReasonShortPick, "", "W1")
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)

	_, err = f.engine.CompletePartial(ctx, f.item.ID, -1, ReasonShortPick, "", "W1")
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)
}

func TestCompleteDocumentShortageGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.allocate(t, "W1", 10)

	_, err := f.engine.CompletePartial(ctx, f.item.ID, 7, ReasonNotFound, "", "W1")
	require.NoError(t, err)

	// First attempt without confirmation is rejected and changes nothing.
	_, err = f.engine.CompleteDocument(ctx, f.req.DocumentNumber, false, "admin")
	var shortErr *ShortageError
	require.ErrorAs(t, err, &shortErr)
	assert.Equal(t, 1, shortErr.ShortageCount)

	gotReq, err := f.store.GetRequisition(ctx, f.req.DocumentNumber)
	require.NoError(t, err)
	assert.NotEqual(t, models.RequisitionStatusDone, gotReq.Status)
	assert.Empty(t, gotReq.CompletedBy)

	// Confirmed close succeeds and records the shortage.
	summary, err := f.engine.CompleteDocument(ctx, f.req.DocumentNumber, true, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RequisitionStatusDone, summary.Status)
	assert.Equal(t, 1, summary.ShortageCount)
	assert.False(t, summary.CompletedFully)

	gotReq, err = f.store.GetRequisition(ctx, f.req.DocumentNumber)
	require.NoError(t, err)
	assert.Equal(t, models.RequisitionStatusDone, gotReq.Status)
	assert.Equal(t, "admin", gotReq.CompletedBy)
	require.NotNil(t, gotReq.CompletedAt)
}

func TestCompleteDocumentFullyPicked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	ai := f.allocate(t, "W1", 10)

	_, err := f.engine.RegisterProgress(ctx, ai.ID, "8600001", false, 10, "", "W1")
	require.NoError(t, err)

	summary, err := f.engine.CompleteDocument(ctx, f.req.DocumentNumber, false, "admin")
	require.NoError(t, err)
	assert.True(t, summary.CompletedFully)
	assert.Zero(t, summary.ShortageCount)
	assert.Equal(t, 1, summary.ItemCount)
}

func TestCompleteDocumentAlreadyClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	ai := f.allocate(t, "W1", 10)

	_, err := f.engine.RegisterProgress(ctx, ai.ID, "8600001", false, 10, "", "W1")
	require.NoError(t, err)
	_, err = f.engine.CompleteDocument(ctx, f.req.DocumentNumber, false, "admin")
	require.NoError(t, err)

	_, err = f.engine.CompleteDocument(ctx, f.req.DocumentNumber, false, "admin")
	assert.ErrorIs(t, err, ErrRequisitionDone)
}
