// internal/models/scanlog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScanLog records every progress event against an assignment item, barcode
// and manual alike. RawQty keeps the quantity as requested by the worker
// before clamping so over-scans stay visible to supervisors.
type ScanLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentItemID primitive.ObjectID `bson:"assignmentItemID" json:"assignmentItemID"`
	WorkerID         string             `bson:"workerID" json:"workerID"`
	Code             string             `bson:"code,omitempty" json:"code,omitempty"`
	Manual           bool               `bson:"manual" json:"manual"`
	RawQty           float64            `bson:"rawQty" json:"rawQty"`
	AppliedQty       float64            `bson:"appliedQty" json:"appliedQty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// ManualOverride is the mandatory-reason record behind a manual completion,
// kept separate from the audit trail so barcode scans and manual entries can
// be told apart during reconciliation.
type ManualOverride struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentItemID primitive.ObjectID `bson:"assignmentItemID" json:"assignmentItemID"`
	WorkerID         string             `bson:"workerID" json:"workerID"`
	Quantity         float64            `bson:"quantity" json:"quantity"`
	Reason           string             `bson:"reason" json:"reason"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
