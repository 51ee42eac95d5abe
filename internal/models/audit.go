// internal/models/audit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit action kinds.
const (
	AuditActionSuggest          = "SUGGEST"
	AuditActionSuggestCancel    = "SUGGEST_CANCEL"
	AuditActionAssignmentCreate = "ASSIGNMENT_CREATE"
	AuditActionAssignmentCancel = "ASSIGNMENT_CANCEL"
	AuditActionAssignmentStatus = "ASSIGNMENT_STATUS"
	AuditActionReassign         = "REASSIGN"
	AuditActionPartialComplete  = "PARTIAL_COMPLETE"
	AuditActionDocumentComplete = "DOCUMENT_COMPLETE"
)

// AuditDetails carries exactly one populated detail struct, keyed by the
// entry's Action. Each action has its own shape so the payload stays typed
// end to end instead of an untyped map.
type AuditDetails struct {
	Suggest          *SuggestDetails          `bson:"suggest,omitempty" json:"suggest,omitempty"`
	AssignmentCreate *AssignmentCreateDetails `bson:"assignmentCreate,omitempty" json:"assignmentCreate,omitempty"`
	AssignmentCancel *AssignmentCancelDetails `bson:"assignmentCancel,omitempty" json:"assignmentCancel,omitempty"`
	StatusChange     *StatusChangeDetails     `bson:"statusChange,omitempty" json:"statusChange,omitempty"`
	Reassign         *ReassignDetails         `bson:"reassign,omitempty" json:"reassign,omitempty"`
	PartialComplete  *PartialCompleteDetails  `bson:"partialComplete,omitempty" json:"partialComplete,omitempty"`
	DocumentComplete *DocumentCompleteDetails `bson:"documentComplete,omitempty" json:"documentComplete,omitempty"`
}

type SuggestDetails struct {
	DecisionID string  `bson:"decisionID" json:"decisionID"`
	WorkerID   string  `bson:"workerID" json:"workerID"`
	Score      float64 `bson:"score" json:"score"`
	Reason     string  `bson:"reason" json:"reason"`
}

type AssignmentCreateDetails struct {
	AssignmentID string  `bson:"assignmentID" json:"assignmentID"`
	WorkerID     string  `bson:"workerID" json:"workerID"`
	ItemCount    int     `bson:"itemCount" json:"itemCount"`
	TotalQty     float64 `bson:"totalQty" json:"totalQty"`
}

type AssignmentCancelDetails struct {
	AssignmentIDs []string `bson:"assignmentIDs" json:"assignmentIDs"`
}

type StatusChangeDetails struct {
	From string `bson:"from" json:"from"`
	To   string `bson:"to" json:"to"`
}

type ReassignDetails struct {
	FromWorkerID string `bson:"fromWorkerID" json:"fromWorkerID"`
	ToWorkerID   string `bson:"toWorkerID" json:"toWorkerID"`
}

type PartialCompleteDetails struct {
	FoundQty     float64 `bson:"foundQty" json:"foundQty"`
	RequestedQty float64 `bson:"requestedQty" json:"requestedQty"`
	Reason       string  `bson:"reason" json:"reason"`
	ReasonText   string  `bson:"reasonText,omitempty" json:"reasonText,omitempty"`
}

type DocumentCompleteDetails struct {
	WithShortages bool `bson:"withShortages" json:"withShortages"`
	ShortageCount int  `bson:"shortageCount" json:"shortageCount"`
}

// AuditEntry is append-only; rows are never updated or deleted.
type AuditEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Actor      string             `bson:"actor" json:"actor"`
	Action     string             `bson:"action" json:"action"`
	EntityType string             `bson:"entityType" json:"entityType"` // "requisition", "assignment", "requisition_item"
	EntityID   string             `bson:"entityID" json:"entityID"`
	Details    AuditDetails       `bson:"details" json:"details"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
