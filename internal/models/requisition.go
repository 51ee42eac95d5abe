// internal/models/requisition.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Requisition statuses. DONE is reached when every item is done or through
// explicit document completion.
const (
	RequisitionStatusNew        = "NEW"
	RequisitionStatusAssigned   = "ASSIGNED"
	RequisitionStatusInProgress = "IN_PROGRESS"
	RequisitionStatusDone       = "DONE"
)

// RequisitionItem statuses mirror the requisition lifecycle at line level.
const (
	ItemStatusNew        = "NEW"
	ItemStatusAssigned   = "ASSIGNED"
	ItemStatusInProgress = "IN_PROGRESS"
	ItemStatusDone       = "DONE"
)

// Discrepancy classification for a requisition item, orthogonal to status.
const (
	DiscrepancyNone      = "NONE"
	DiscrepancyShortPick = "SHORT_PICK"
	DiscrepancyNotFound  = "NOT_FOUND"
)

// Requisition is a document-level pick order destined for one retail store.
type Requisition struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentNumber string             `bson:"documentNumber" json:"documentNumber"` // e.g., "TRB-7F3A21BC"
	DocumentDate   time.Time          `bson:"documentDate" json:"documentDate"`
	SourceLocation string             `bson:"sourceLocation" json:"sourceLocation"`
	DestLocation   string             `bson:"destLocation" json:"destLocation"`
	Status         string             `bson:"status" json:"status"`
	CompletedBy    string             `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RequisitionItem is one article line of a requisition.
//
// CompletedQty is always the sum of completed quantities across every
// assignment item referencing this line. FoundQty is set by partial
// completion and never exceeds RequestedQty.
type RequisitionItem struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequisitionID        primitive.ObjectID `bson:"requisitionID" json:"requisitionID"`
	ArticleCode          string             `bson:"articleCode" json:"articleCode"`
	ArticleName          string             `bson:"articleName" json:"articleName"`
	RequestedQty         float64            `bson:"requestedQty" json:"requestedQty"`
	CompletedQty         float64            `bson:"completedQty" json:"completedQty"`
	FoundQty             float64            `bson:"foundQty" json:"foundQty"`
	Status               string             `bson:"status" json:"status"`
	Discrepancy          string             `bson:"discrepancy" json:"discrepancy"`
	DiscrepancyReason    string             `bson:"discrepancyReason,omitempty" json:"discrepancyReason,omitempty"`
	IsPartial            bool               `bson:"isPartial" json:"is_partial"`
	CompletionPercentage float64            `bson:"completionPercentage" json:"procenat_ispunjenja"` // legacy wire name kept for the dashboard
	CompletedBy          string             `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	CompletedAt          *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}
