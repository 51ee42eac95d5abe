package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersByCompositeScore(t *testing.T) {
	workloads := []Workload{
		{WorkerID: "W3", ActiveAssignments: 0, RemainingQty: 40},
		{WorkerID: "W1", ActiveAssignments: 2, RemainingQty: 10}, // 10 + 2*5 = 20
		{WorkerID: "W2", ActiveAssignments: 1, RemainingQty: 30}, // 30 + 1*5 = 35
	}

	candidates, err := Rank(workloads, DefaultAssignmentWeight)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "W1", candidates[0].WorkerID)
	assert.Equal(t, 20.0, candidates[0].Score)
	assert.Equal(t, "W2", candidates[1].WorkerID)
	assert.Equal(t, "W3", candidates[2].WorkerID)
}

func TestRankTieBreaksByWorkerID(t *testing.T) {
	workloads := []Workload{
		{WorkerID: "W9", ActiveAssignments: 1, RemainingQty: 5},
		{WorkerID: "W2", ActiveAssignments: 1, RemainingQty: 5},
		{WorkerID: "W5", ActiveAssignments: 0, RemainingQty: 10},
	}

	// All three score 10; ordering must be deterministic by id.
	candidates, err := Rank(workloads, DefaultAssignmentWeight)
	require.NoError(t, err)

	ids := []string{candidates[0].WorkerID, candidates[1].WorkerID, candidates[2].WorkerID}
	assert.Equal(t, []string{"W2", "W5", "W9"}, ids)
}

func TestRankIsDeterministic(t *testing.T) {
	workloads := []Workload{
		{WorkerID: "W1", ActiveAssignments: 3, RemainingQty: 12},
		{WorkerID: "W2", ActiveAssignments: 1, RemainingQty: 7},
		{WorkerID: "W3", ActiveAssignments: 1, RemainingQty: 7},
	}

	first, err := Rank(workloads, DefaultAssignmentWeight)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Rank(workloads, DefaultAssignmentWeight)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRankEmptyReturnsNoCandidates(t *testing.T) {
	_, err := Rank(nil, DefaultAssignmentWeight)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRankCustomWeight(t *testing.T) {
	workloads := []Workload{
		{WorkerID: "W1", ActiveAssignments: 5, RemainingQty: 0},
		{WorkerID: "W2", ActiveAssignments: 0, RemainingQty: 9},
	}

	// With weight 1 the assignment count barely matters.
	candidates, err := Rank(workloads, 1)
	require.NoError(t, err)
	assert.Equal(t, "W1", candidates[0].WorkerID)

	// With the default weight W1's five open assignments cost 25.
	candidates, err = Rank(workloads, DefaultAssignmentWeight)
	require.NoError(t, err)
	assert.Equal(t, "W2", candidates[0].WorkerID)
}
