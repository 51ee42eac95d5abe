// internal/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment statuses.
const (
	AssignmentStatusAssigned   = "ASSIGNED"
	AssignmentStatusInProgress = "IN_PROGRESS"
	AssignmentStatusDone       = "DONE"
)

// Assignment is the subset of a requisition's work given to one worker.
type Assignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID  string             `bson:"assignmentID" json:"assignmentID"` // e.g., "ZAD-4C09D1AA"
	RequisitionID primitive.ObjectID `bson:"requisitionID" json:"requisitionID"`
	WorkerID      string             `bson:"workerID" json:"workerID"`
	TeamID        string             `bson:"teamID,omitempty" json:"teamID,omitempty"`
	Priority      int                `bson:"priority" json:"priority"`
	DueAt         *time.Time         `bson:"dueAt,omitempty" json:"dueAt,omitempty"`
	Status        string             `bson:"status" json:"status"`
	ProgressPct   float64            `bson:"progressPct" json:"progressPct"`
	CreatedBy     string             `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AssignmentItem allocates a slice of one requisition item's quantity to one
// assignment. CompletedQty never exceeds AllocatedQty; over-scans are clamped.
type AssignmentItem struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID      primitive.ObjectID `bson:"assignmentID" json:"assignmentID"`
	RequisitionID     primitive.ObjectID `bson:"requisitionID" json:"requisitionID"`
	RequisitionItemID primitive.ObjectID `bson:"requisitionItemID" json:"requisitionItemID"`
	ArticleCode       string             `bson:"articleCode" json:"articleCode"`
	AllocatedQty      float64            `bson:"allocatedQty" json:"allocatedQty"`
	CompletedQty      float64            `bson:"completedQty" json:"completedQty"`
	Status            string             `bson:"status" json:"status"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Team is a denormalized convenience grouping of workers; an assignment keeps
// the worker's team id at creation time so the dashboard can group by crew.
type Team struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID    string             `bson:"teamID" json:"teamID"`
	Name      string             `bson:"name" json:"name"`
	WorkerIDs []string           `bson:"workerIDs" json:"workerIDs"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
