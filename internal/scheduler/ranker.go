// internal/scheduler/ranker.go
package scheduler

import (
	"errors"
	"sort"
)

// DefaultAssignmentWeight is the cost added per open assignment when scoring
// a worker. Tunable through config.
const DefaultAssignmentWeight = 5.0

// ErrNoCandidates means no active worker is eligible for the requisition.
// There is no fallback worker; callers surface this as a hard failure.
var ErrNoCandidates = errors.New("no eligible candidates")

// Workload is the scheduling input for one worker.
type Workload struct {
	WorkerID          string
	ActiveAssignments int
	RemainingQty      float64
}

// Candidate is one ranked worker; lower score = more preferred.
type Candidate struct {
	WorkerID string
	Score    float64
}

// Rank orders workers by composite score:
//
//	score = remainingQty + activeAssignments * weight
//
// ascending, with ties broken by worker id so the result is deterministic.
func Rank(workloads []Workload, weight float64) ([]Candidate, error) {
	if len(workloads) == 0 {
		return nil, ErrNoCandidates
	}
	if weight <= 0 {
		weight = DefaultAssignmentWeight
	}

	candidates := make([]Candidate, 0, len(workloads))
	for _, w := range workloads {
		candidates = append(candidates, Candidate{
			WorkerID: w.WorkerID,
			Score:    w.RemainingQty + float64(w.ActiveAssignments)*weight,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score < candidates[j].Score
		}
		return candidates[i].WorkerID < candidates[j].WorkerID
	})
	return candidates, nil
}
