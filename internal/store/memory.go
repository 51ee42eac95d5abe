// internal/store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is the in-process Store for single-instance deployments and
// tests. Transactions are serialized by a single mutex; since every service
// validates before its first write, a failed call leaves no partial state.
type MemoryStore struct {
	mu sync.RWMutex
	tx sync.Mutex

	requisitions     map[primitive.ObjectID]models.Requisition
	requisitionItems map[primitive.ObjectID]models.RequisitionItem
	assignments      map[primitive.ObjectID]models.Assignment
	assignmentItems  map[primitive.ObjectID]models.AssignmentItem
	suggestions      map[primitive.ObjectID]models.SuggestionLog
	workers          map[string]models.Worker
	auditLog         []models.AuditEntry
	scanLogs         []models.ScanLog
	manualOverrides  []models.ManualOverride
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requisitions:     make(map[primitive.ObjectID]models.Requisition),
		requisitionItems: make(map[primitive.ObjectID]models.RequisitionItem),
		assignments:      make(map[primitive.ObjectID]models.Assignment),
		assignmentItems:  make(map[primitive.ObjectID]models.AssignmentItem),
		suggestions:      make(map[primitive.ObjectID]models.SuggestionLog),
		workers:          make(map[string]models.Worker),
	}
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()
	return fn(ctx)
}

// --- Requisitions ---

func (s *MemoryStore) InsertRequisition(_ context.Context, r *models.Requisition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.requisitions[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetRequisition(_ context.Context, documentNumber string) (*models.Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requisitions {
		if r.DocumentNumber == documentNumber {
			out := r
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetRequisitionByID(_ context.Context, id primitive.ObjectID) (*models.Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requisitions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r
	return &out, nil
}

func (s *MemoryStore) ListRequisitions(_ context.Context, status string) ([]models.Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Requisition{}
	for _, r := range s.requisitions {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateRequisition(_ context.Context, r *models.Requisition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requisitions[r.ID]; !ok {
		return ErrNotFound
	}
	r.UpdatedAt = time.Now()
	s.requisitions[r.ID] = *r
	return nil
}

// --- Requisition items ---

func (s *MemoryStore) InsertRequisitionItem(_ context.Context, it *models.RequisitionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	s.requisitionItems[it.ID] = *it
	return nil
}

func (s *MemoryStore) GetRequisitionItem(_ context.Context, id primitive.ObjectID) (*models.RequisitionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.requisitionItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := it
	return &out, nil
}

func (s *MemoryStore) ListRequisitionItems(_ context.Context, requisitionID primitive.ObjectID) ([]models.RequisitionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.RequisitionItem{}
	for _, it := range s.requisitionItems {
		if it.RequisitionID == requisitionID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateRequisitionItem(_ context.Context, it *models.RequisitionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requisitionItems[it.ID]; !ok {
		return ErrNotFound
	}
	s.requisitionItems[it.ID] = *it
	return nil
}

// --- Assignments ---

func (s *MemoryStore) InsertAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.assignments[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAssignment(_ context.Context, assignmentID string) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if a.AssignmentID == assignmentID {
			out := a
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetAssignmentByID(_ context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (s *MemoryStore) ListAssignmentsByRequisition(_ context.Context, requisitionID primitive.ObjectID) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Assignment{}
	for _, a := range s.assignments {
		if a.RequisitionID == requisitionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListAssignmentsByWorker(_ context.Context, workerID string, openOnly bool) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Assignment{}
	for _, a := range s.assignments {
		if a.WorkerID != workerID {
			continue
		}
		if openOnly && a.Status == models.AssignmentStatusDone {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryStore) UpdateAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	s.assignments[a.ID] = *a
	return nil
}

func (s *MemoryStore) DeleteAssignmentsByRequisition(_ context.Context, requisitionID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.assignmentItems {
		if it.RequisitionID == requisitionID {
			delete(s.assignmentItems, id)
		}
	}
	for id, a := range s.assignments {
		if a.RequisitionID == requisitionID {
			delete(s.assignments, id)
		}
	}
	return nil
}

// --- Assignment items ---

func (s *MemoryStore) InsertAssignmentItem(_ context.Context, it *models.AssignmentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	s.assignmentItems[it.ID] = *it
	return nil
}

func (s *MemoryStore) GetAssignmentItem(_ context.Context, id primitive.ObjectID) (*models.AssignmentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.assignmentItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := it
	return &out, nil
}

func (s *MemoryStore) ListAssignmentItemsByAssignment(_ context.Context, assignmentOID primitive.ObjectID) ([]models.AssignmentItem, error) {
	return s.filterAssignmentItems(func(it models.AssignmentItem) bool {
		return it.AssignmentID == assignmentOID
	})
}

func (s *MemoryStore) ListAssignmentItemsByRequisitionItem(_ context.Context, requisitionItemID primitive.ObjectID) ([]models.AssignmentItem, error) {
	return s.filterAssignmentItems(func(it models.AssignmentItem) bool {
		return it.RequisitionItemID == requisitionItemID
	})
}

func (s *MemoryStore) ListAssignmentItemsByRequisition(_ context.Context, requisitionID primitive.ObjectID) ([]models.AssignmentItem, error) {
	return s.filterAssignmentItems(func(it models.AssignmentItem) bool {
		return it.RequisitionID == requisitionID
	})
}

func (s *MemoryStore) filterAssignmentItems(keep func(models.AssignmentItem) bool) ([]models.AssignmentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AssignmentItem{}
	for _, it := range s.assignmentItems {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateAssignmentItem(_ context.Context, it *models.AssignmentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignmentItems[it.ID]; !ok {
		return ErrNotFound
	}
	it.UpdatedAt = time.Now()
	s.assignmentItems[it.ID] = *it
	return nil
}

// --- Suggestion log ---

func (s *MemoryStore) InsertSuggestion(_ context.Context, sl *models.SuggestionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl.ID.IsZero() {
		sl.ID = primitive.NewObjectID()
	}
	s.suggestions[sl.ID] = *sl
	return nil
}

func (s *MemoryStore) GetSuggestionByDecisionID(_ context.Context, decisionID string) (*models.SuggestionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sl := range s.suggestions {
		if sl.DecisionID == decisionID {
			out := sl
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateSuggestion(_ context.Context, sl *models.SuggestionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suggestions[sl.ID]; !ok {
		return ErrNotFound
	}
	s.suggestions[sl.ID] = *sl
	return nil
}

// --- Workers ---

func (s *MemoryStore) PutWorker(w models.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.WorkerID] = w
}

func (s *MemoryStore) ListActiveWorkers(_ context.Context) ([]models.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Worker{}
	for _, w := range s.workers {
		if w.Active && w.Role == "worker" {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetWorker(_ context.Context, workerID string) (*models.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workers[workerID]
	if !ok {
		return nil, ErrNotFound
	}
	out := w
	return &out, nil
}

// --- Append-only records ---

func (s *MemoryStore) InsertAudit(_ context.Context, e *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	s.auditLog = append(s.auditLog, *e)
	return nil
}

func (s *MemoryStore) InsertScanLog(_ context.Context, sl *models.ScanLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl.ID = primitive.NewObjectID()
	s.scanLogs = append(s.scanLogs, *sl)
	return nil
}

func (s *MemoryStore) InsertManualOverride(_ context.Context, m *models.ManualOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	s.manualOverrides = append(s.manualOverrides, *m)
	return nil
}

// AuditEntries returns a snapshot of the audit trail, oldest first.
func (s *MemoryStore) AuditEntries() []models.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditEntry, len(s.auditLog))
	copy(out, s.auditLog)
	return out
}

// ScanLogs returns a snapshot of the scan log, oldest first.
func (s *MemoryStore) ScanLogs() []models.ScanLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScanLog, len(s.scanLogs))
	copy(out, s.scanLogs)
	return out
}
