// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/audit"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/lock"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"
	"github.com/google/uuid"
)

// ErrRequisitionDone rejects suggestions for already completed documents.
var ErrRequisitionDone = errors.New("requisition is already completed")

// ErrLockContention means another instance won the decision between our
// check and our acquire. Retrying the whole Suggest call resolves it.
var ErrLockContention = errors.New("suggestion lock contention, retry")

// Suggestion is the scheduler's decision for a requisition.
type Suggestion struct {
	DecisionID    string    `json:"decisionID"`
	WorkerID      string    `json:"worker_id"`
	Score         float64   `json:"score"`
	Reason        string    `json:"reason"`
	LockExpiresAt time.Time `json:"lock_expires_at"`
	Cached        bool      `json:"cached"`
}

// Scheduler produces lock-protected worker suggestions for requisitions.
type Scheduler struct {
	store  store.Store
	lock   lock.Store
	audit  *audit.Recorder
	ttl    time.Duration
	weight float64
}

func New(s store.Store, l lock.Store, a *audit.Recorder, ttl time.Duration, weight float64) *Scheduler {
	if ttl <= 0 {
		ttl = lock.DefaultTTL
	}
	if weight <= 0 {
		weight = DefaultAssignmentWeight
	}
	return &Scheduler{store: s, lock: l, audit: a, ttl: ttl, weight: weight}
}

// Suggest returns the live decision for the requisition when one exists
// (cached=true), otherwise ranks the active workers and persists a fresh
// decision under the suggestion lock.
//
// Repeated calls inside the lock window never change the suggested worker.
func (s *Scheduler) Suggest(ctx context.Context, documentNumber, actorID string) (*Suggestion, error) {
	// 1. A live lock means a decision already exists; return it unchanged.
	decisionID, held, err := s.lock.Get(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	if held {
		sl, err := s.store.GetSuggestionByDecisionID(ctx, decisionID)
		if err == nil {
			return &Suggestion{
				DecisionID:    sl.DecisionID,
				WorkerID:      sl.WorkerID,
				Score:         sl.Score,
				Reason:        sl.Reason,
				LockExpiresAt: sl.LockExpiresAt,
				Cached:        true,
			}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		// Lock points at a missing decision row: stale. Release and fall
		// through to a fresh suggestion.
		log.Printf("scheduler: releasing stale suggestion lock for %s (decision %s)", documentNumber, decisionID)
		if err := s.lock.Release(ctx, documentNumber); err != nil {
			return nil, err
		}
	}

	// 2. The requisition must exist and still be open.
	req, err := s.store.GetRequisition(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequisitionStatusDone {
		return nil, ErrRequisitionDone
	}

	// 3. Rank the eligible workers by current load.
	workloads, err := s.collectWorkloads(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := Rank(workloads, s.weight)
	if err != nil {
		return nil, err
	}
	best := candidates[0]

	var bestLoad Workload
	for _, w := range workloads {
		if w.WorkerID == best.WorkerID {
			bestLoad = w
			break
		}
	}

	// 4. Persist the decision, take the lock, audit.
	now := time.Now()
	sl := &models.SuggestionLog{
		DecisionID:    fmt.Sprintf("SUG-%s", strings.ToUpper(uuid.New().String()[:8])),
		RequisitionID: req.ID,
		WorkerID:      best.WorkerID,
		Score:         best.Score,
		Reason: fmt.Sprintf("least loaded: %.0f remaining units across %d open assignments",
			bestLoad.RemainingQty, bestLoad.ActiveAssignments),
		Status:        models.SuggestionStatusSuggested,
		SuggestedBy:   actorID,
		CreatedAt:     now,
		LockExpiresAt: now.Add(s.ttl),
	}

	err = s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.store.InsertSuggestion(txCtx, sl); err != nil {
			return err
		}
		return s.audit.Record(txCtx, actorID, models.AuditActionSuggest, "requisition", documentNumber, models.AuditDetails{
			Suggest: &models.SuggestDetails{
				DecisionID: sl.DecisionID,
				WorkerID:   sl.WorkerID,
				Score:      sl.Score,
				Reason:     sl.Reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	acquired, err := s.lock.TryAcquire(ctx, documentNumber, sl.DecisionID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// Single-writer design: this only happens when a concurrent caller
		// slipped in after our lock check. Void our row and let the caller
		// retry; the retry will hit the winner's cached decision.
		sl.Status = models.SuggestionStatusOverridden
		sl.LockExpiresAt = time.Now()
		if uerr := s.store.UpdateSuggestion(ctx, sl); uerr != nil {
			log.Printf("scheduler: failed to void lost decision %s: %v", sl.DecisionID, uerr)
		}
		return nil, ErrLockContention
	}

	return &Suggestion{
		DecisionID:    sl.DecisionID,
		WorkerID:      sl.WorkerID,
		Score:         sl.Score,
		Reason:        sl.Reason,
		LockExpiresAt: sl.LockExpiresAt,
		Cached:        false,
	}, nil
}

// CancelSuggestion voids the live decision for a requisition and frees the
// lock. No-op when no lock is held.
func (s *Scheduler) CancelSuggestion(ctx context.Context, documentNumber, actorID string) error {
	decisionID, held, err := s.lock.Get(ctx, documentNumber)
	if err != nil {
		return err
	}
	if !held {
		return nil
	}

	sl, err := s.store.GetSuggestionByDecisionID(ctx, decisionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Stale lock, nothing to void.
	case err != nil:
		return err
	default:
		err = s.store.WithTransaction(ctx, func(txCtx context.Context) error {
			sl.Status = models.SuggestionStatusOverridden
			sl.LockExpiresAt = time.Now()
			if err := s.store.UpdateSuggestion(txCtx, sl); err != nil {
				return err
			}
			return s.audit.Record(txCtx, actorID, models.AuditActionSuggestCancel, "requisition", documentNumber, models.AuditDetails{
				Suggest: &models.SuggestDetails{
					DecisionID: sl.DecisionID,
					WorkerID:   sl.WorkerID,
					Score:      sl.Score,
				},
			})
		})
		if err != nil {
			return err
		}
	}

	return s.lock.Release(ctx, documentNumber)
}

// collectWorkloads builds the ranker input: one workload per active worker
// with their open assignment count and the remaining quantity they hold.
func (s *Scheduler) collectWorkloads(ctx context.Context) ([]Workload, error) {
	workers, err := s.store.ListActiveWorkers(ctx)
	if err != nil {
		return nil, err
	}

	workloads := make([]Workload, 0, len(workers))
	for _, w := range workers {
		assignments, err := s.store.ListAssignmentsByWorker(ctx, w.WorkerID, true)
		if err != nil {
			return nil, err
		}
		var remaining float64
		for _, a := range assignments {
			items, err := s.store.ListAssignmentItemsByAssignment(ctx, a.ID)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				remaining += it.AllocatedQty - it.CompletedQty
			}
		}
		workloads = append(workloads, Workload{
			WorkerID:          w.WorkerID,
			ActiveAssignments: len(assignments),
			RemainingQty:      remaining,
		})
	}
	return workloads, nil
}
