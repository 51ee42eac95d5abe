package assignment

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

func newTestMaterializer(st *store.MemoryStore) *Materializer {
	return NewMaterializer(st, audit.NewRecorder(st), notify.NoopNotifier{})
}

// seedRequisition creates a requisition with a single item of the given
// requested quantity and returns both.
func seedRequisition(t *testing.T, st *store.MemoryStore, qty float64) (*models.Requisition, *models.RequisitionItem) {
	t.Helper()
	ctx := context.Background()
	req := &models.Requisition{
		DocumentNumber: "TRB-100",
		DocumentDate:   time.Now(),
		SourceLocation: "MAG-01",
		DestLocation:   "STORE-07",
		Status:         models.RequisitionStatusNew,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, st.InsertRequisition(ctx, req))
	item := &models.RequisitionItem{
		RequisitionID: req.ID,
		ArticleCode:   "ART-001",
		ArticleName:   "Test article",
		RequestedQty:  qty,
		Status:        models.ItemStatusNew,
		Discrepancy:   models.DiscrepancyNone,
	}
	require.NoError(t, st.InsertRequisitionItem(ctx, item))
	return req, item
}

func seedWorker(st *store.MemoryStore, workerID string, active bool) {
	st.PutWorker(models.Worker{WorkerID: workerID, Name: workerID, Role: "worker", TeamID: "TEAM-A", Active: active})
}

func TestCreateSplitsAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)
	seedWorker(st, "W2", true)

	ids, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 6}}},
		{WorkerID: "W2", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 4}}},
	}, "admin")
	require.NoError(t, err)
	require.Len(t, ids, 2)

	gotReq, err := st.GetRequisition(ctx, req.DocumentNumber)
	require.NoError(t, err)
	assert.Equal(t, models.RequisitionStatusAssigned, gotReq.Status)

	gotItem, err := st.GetRequisitionItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusAssigned, gotItem.Status)

	for _, id := range ids {
		a, err := st.GetAssignment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.AssignmentStatusAssigned, a.Status)
		assert.Equal(t, "TEAM-A", a.TeamID)
	}
}

func TestCreateRejectsOverAllocatedBatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)
	seedWorker(st, "W2", true)

	// 6 + 5 > 10: the whole batch is rejected, even though the first
	// allocation alone would fit.
	_, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 6}}},
		{WorkerID: "W2", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 5}}},
	}, "admin")

	var overErr *OverAllocationError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, "ART-001", overErr.ArticleCode)
	assert.Equal(t, 10.0, overErr.Requested)
	assert.Equal(t, 6.0, overErr.Existing)
	assert.Equal(t, 5.0, overErr.Attempted)

	// Zero assignments created.
	assignments, err := st.ListAssignmentsByRequisition(ctx, req.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	gotReq, err := st.GetRequisition(ctx, req.DocumentNumber)
	require.NoError(t, err)
	assert.Equal(t, models.RequisitionStatusNew, gotReq.Status)
}

func TestCreateCountsExistingAssignments(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)
	seedWorker(st, "W2", true)

	_, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 7}}},
	}, "admin")
	require.NoError(t, err)

	_, err = m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W2", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 4}}},
	}, "admin")
	var overErr *OverAllocationError
	assert.ErrorAs(t, err, &overErr)

	// The remaining 3 units still fit.
	_, err = m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W2", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 3}}},
	}, "admin")
	assert.NoError(t, err)
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)
	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)

	_, err := m.Create(context.Background(), req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 0}}},
	}, "admin")
	assert.Error(t, err)
}

func TestCreateRejectsInactiveWorker(t *testing.T) {
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)
	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", false)

	_, err := m.Create(context.Background(), req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 5}}},
	}, "admin")
	assert.ErrorIs(t, err, ErrWorkerInactive)
}

func TestCreateRejectsCompletedRequisition(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)
	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)

	req.Status = models.RequisitionStatusDone
	require.NoError(t, st.UpdateRequisition(ctx, req))

	_, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 5}}},
	}, "admin")
	assert.ErrorIs(t, err, ErrRequisitionDone)
}

func TestCancelResetsRequisition(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)

	_, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 10}}},
	}, "admin")
	require.NoError(t, err)

	require.NoError(t, m.Cancel(ctx, req.DocumentNumber, "admin"))

	assignments, err := st.ListAssignmentsByRequisition(ctx, req.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	gotReq, err := st.GetRequisition(ctx, req.DocumentNumber)
	require.NoError(t, err)
	assert.Equal(t, models.RequisitionStatusNew, gotReq.Status)

	gotItem, err := st.GetRequisitionItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusNew, gotItem.Status)
	assert.Zero(t, gotItem.CompletedQty)
	assert.False(t, gotItem.IsPartial)
}

func TestCancelBlockedAfterExecutionStarts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)

	ids, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 10}}},
	}, "admin")
	require.NoError(t, err)

	// One picked unit anywhere blocks the cancel.
	a, err := st.GetAssignment(ctx, ids[0])
	require.NoError(t, err)
	aItems, err := st.ListAssignmentItemsByAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, aItems, 1)
	aItems[0].CompletedQty = 1
	require.NoError(t, st.UpdateAssignmentItem(ctx, &aItems[0]))

	err = m.Cancel(ctx, req.DocumentNumber, "admin")
	assert.ErrorIs(t, err, ErrExecutionStarted)

	assignments, err := st.ListAssignmentsByRequisition(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestSetStatusTransitions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)
	ids, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 10}}},
	}, "admin")
	require.NoError(t, err)

	updated, err := m.SetStatus(ctx, ids[0], models.AssignmentStatusInProgress, "W1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusInProgress, updated.Status)

	updated, err = m.SetStatus(ctx, ids[0], models.AssignmentStatusAssigned, "W1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusAssigned, updated.Status)

	// DONE is never reachable through a manual status change.
	_, err = m.SetStatus(ctx, ids[0], models.AssignmentStatusDone, "W1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReassignMovesAssignment(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestMaterializer(st)

	req, item := seedRequisition(t, st, 10)
	seedWorker(st, "W1", true)
	st.PutWorker(models.Worker{WorkerID: "W2", Name: "W2", Role: "worker", TeamID: "TEAM-B", Active: true})

	ids, err := m.Create(ctx, req.DocumentNumber, []WorkerAllocation{
		{WorkerID: "W1", Items: []ItemAllocation{{RequisitionItemID: item.ID, Quantity: 10}}},
	}, "admin")
	require.NoError(t, err)

	updated, err := m.Reassign(ctx, ids[0], "W2", "admin")
	require.NoError(t, err)
	assert.Equal(t, "W2", updated.WorkerID)
	assert.Equal(t, "TEAM-B", updated.TeamID)

	_, err = m.Reassign(ctx, ids[0], "W-GHOST", "admin")
	assert.ErrorIs(t, err, ErrWorkerInactive)
}
