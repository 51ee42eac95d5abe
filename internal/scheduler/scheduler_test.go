package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/audit"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/lock"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(st *store.MemoryStore, l lock.Store) *Scheduler {
	return New(st, l, audit.NewRecorder(st), 10*time.Minute, DefaultAssignmentWeight)
}

func seedRequisition(t *testing.T, st *store.MemoryStore, documentNumber string, qty float64) *models.Requisition {
	t.Helper()
	ctx := context.Background()
	req := &models.Requisition{
		DocumentNumber: documentNumber,
		DocumentDate:   time.Now(),
		SourceLocation: "MAG-01",
		DestLocation:   "STORE-07",
		Status:         models.RequisitionStatusNew,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, st.InsertRequisition(ctx, req))
	require.NoError(t, st.InsertRequisitionItem(ctx, &models.RequisitionItem{
		RequisitionID: req.ID,
		ArticleCode:   "ART-001",
		ArticleName:   "Test article",
		RequestedQty:  qty,
		Status:        models.ItemStatusNew,
		Discrepancy:   models.DiscrepancyNone,
	}))
	return req
}

func seedWorker(st *store.MemoryStore, workerID string) {
	st.PutWorker(models.Worker{WorkerID: workerID, Name: workerID, Role: "worker", Active: true})
}

// seedOpenAssignment gives the worker one open assignment with the given
// remaining quantity so the ranker sees a non-zero load.
func seedOpenAssignment(t *testing.T, st *store.MemoryStore, req *models.Requisition, workerID string, remaining float64) {
	t.Helper()
	ctx := context.Background()
	a := &models.Assignment{
		AssignmentID:  "ZAD-" + workerID,
		RequisitionID: req.ID,
		WorkerID:      workerID,
		Status:        models.AssignmentStatusAssigned,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, st.InsertAssignment(ctx, a))
	require.NoError(t, st.InsertAssignmentItem(ctx, &models.AssignmentItem{
		AssignmentID:  a.ID,
		RequisitionID: req.ID,
		AllocatedQty:  remaining,
		Status:        models.AssignmentStatusAssigned,
	}))
}

func TestSuggestIsIdempotentWithinLockWindow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	l := lock.NewMemoryLock(10 * time.Minute)
	s := newTestScheduler(st, l)

	req := seedRequisition(t, st, "TRB-100", 10)
	other := seedRequisition(t, st, "TRB-OTHER", 20)
	seedWorker(st, "W1")
	seedWorker(st, "W2")
	seedOpenAssignment(t, st, other, "W2", 5)

	first, err := s.Suggest(ctx, req.DocumentNumber, "admin")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "W1", first.WorkerID)
	assert.NotEmpty(t, first.DecisionID)

	second, err := s.Suggest(ctx, req.DocumentNumber, "admin")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.WorkerID, second.WorkerID)
	assert.Equal(t, first.DecisionID, second.DecisionID)
	assert.Equal(t, first.Score, second.Score)
}

func TestSuggestUnknownRequisition(t *testing.T) {
	st := store.NewMemoryStore()
	s := newTestScheduler(st, lock.NewMemoryLock(time.Minute))
	seedWorker(st, "W1")

	_, err := s.Suggest(context.Background(), "TRB-404", "admin")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSuggestRejectsTerminalRequisition(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := newTestScheduler(st, lock.NewMemoryLock(time.Minute))

	req := seedRequisition(t, st, "TRB-100", 10)
	req.Status = models.RequisitionStatusDone
	require.NoError(t, st.UpdateRequisition(ctx, req))
	seedWorker(st, "W1")

	_, err := s.Suggest(ctx, req.DocumentNumber, "admin")
	assert.ErrorIs(t, err, ErrRequisitionDone)
}

func TestSuggestNoEligibleWorkers(t *testing.T) {
	st := store.NewMemoryStore()
	s := newTestScheduler(st, lock.NewMemoryLock(time.Minute))
	seedRequisition(t, st, "TRB-100", 10)

	_, err := s.Suggest(context.Background(), "TRB-100", "admin")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestCancelSuggestionVoidsDecisionAndFreesLock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	l := lock.NewMemoryLock(10 * time.Minute)
	s := newTestScheduler(st, l)

	req := seedRequisition(t, st, "TRB-100", 10)
	seedWorker(st, "W1")

	first, err := s.Suggest(ctx, req.DocumentNumber, "admin")
	require.NoError(t, err)

	require.NoError(t, s.CancelSuggestion(ctx, req.DocumentNumber, "admin"))

	voided, err := st.GetSuggestionByDecisionID(ctx, first.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, models.SuggestionStatusOverridden, voided.Status)

	// The lock is free again: the next suggestion is a fresh decision.
	next, err := s.Suggest(ctx, req.DocumentNumber, "admin")
	require.NoError(t, err)
	assert.False(t, next.Cached)
	assert.NotEqual(t, first.DecisionID, next.DecisionID)
}

func TestCancelSuggestionWithoutLockIsNoop(t *testing.T) {
	st := store.NewMemoryStore()
	s := newTestScheduler(st, lock.NewMemoryLock(time.Minute))
	seedRequisition(t, st, "TRB-100", 10)

	assert.NoError(t, s.CancelSuggestion(context.Background(), "TRB-100", "admin"))
}

func TestSuggestHealsStaleLock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	l := lock.NewMemoryLock(10 * time.Minute)
	s := newTestScheduler(st, l)

	req := seedRequisition(t, st, "TRB-100", 10)
	seedWorker(st, "W1")

	// A lock pointing at a decision row that does not exist must be
	// released and replaced, never surfaced to the caller.
	ok, err := l.TryAcquire(ctx, req.DocumentNumber, "SUG-MISSING")
	require.NoError(t, err)
	require.True(t, ok)

	suggestion, err := s.Suggest(ctx, req.DocumentNumber, "admin")
	require.NoError(t, err)
	assert.False(t, suggestion.Cached)
	assert.NotEqual(t, "SUG-MISSING", suggestion.DecisionID)

	decisionID, held, err := l.Get(ctx, req.DocumentNumber)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, suggestion.DecisionID, decisionID)
}
