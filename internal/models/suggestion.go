// internal/models/suggestion.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionLog statuses. At most one non-expired, non-overridden row exists
// per requisition; the suggestion lock enforces this.
const (
	SuggestionStatusSuggested  = "SUGGESTED"
	SuggestionStatusAccepted   = "ACCEPTED"
	SuggestionStatusOverridden = "OVERRIDDEN"
)

// SuggestionLog records one scheduling decision for a requisition.
type SuggestionLog struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DecisionID    string             `bson:"decisionID" json:"decisionID"`
	RequisitionID primitive.ObjectID `bson:"requisitionID" json:"requisitionID"`
	WorkerID      string             `bson:"workerID" json:"workerID"`
	Score         float64            `bson:"score" json:"score"`
	Reason        string             `bson:"reason" json:"reason"`
	Status        string             `bson:"status" json:"status"`
	SuggestedBy   string             `bson:"suggestedBy" json:"suggestedBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	LockExpiresAt time.Time          `bson:"lockExpiresAt" json:"lockExpiresAt"`
}

// Worker is a member of the warehouse floor staff eligible for assignments.
type Worker struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkerID  string             `bson:"workerID" json:"workerID"`
	Name      string             `bson:"name" json:"name"`
	Role      string             `bson:"role" json:"role"` // "worker", "admin"
	TeamID    string             `bson:"teamID,omitempty" json:"teamID,omitempty"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
