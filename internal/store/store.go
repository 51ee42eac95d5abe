// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by every Get* method when no document matches.
var ErrNotFound = errors.New("not found")

// Store is the data-access boundary of the fulfillment core. The scheduler,
// materializer and execution engine depend on this interface only, never on
// a concrete driver.
//
// All methods honor the transaction bound to ctx by WithTransaction; the
// Mongo implementation threads a session context, the in-memory one holds a
// single lock for the duration of the callback.
type Store interface {
	// WithTransaction runs fn atomically. Every write issued through ctx
	// inside fn commits together or not at all.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Requisitions
	InsertRequisition(ctx context.Context, r *models.Requisition) error
	GetRequisition(ctx context.Context, documentNumber string) (*models.Requisition, error)
	GetRequisitionByID(ctx context.Context, id primitive.ObjectID) (*models.Requisition, error)
	ListRequisitions(ctx context.Context, status string) ([]models.Requisition, error)
	UpdateRequisition(ctx context.Context, r *models.Requisition) error

	// Requisition items
	InsertRequisitionItem(ctx context.Context, it *models.RequisitionItem) error
	GetRequisitionItem(ctx context.Context, id primitive.ObjectID) (*models.RequisitionItem, error)
	ListRequisitionItems(ctx context.Context, requisitionID primitive.ObjectID) ([]models.RequisitionItem, error)
	UpdateRequisitionItem(ctx context.Context, it *models.RequisitionItem) error

	// Assignments
	InsertAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, assignmentID string) (*models.Assignment, error)
	GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error)
	ListAssignmentsByRequisition(ctx context.Context, requisitionID primitive.ObjectID) ([]models.Assignment, error)
	ListAssignmentsByWorker(ctx context.Context, workerID string, openOnly bool) ([]models.Assignment, error)
	UpdateAssignment(ctx context.Context, a *models.Assignment) error
	DeleteAssignmentsByRequisition(ctx context.Context, requisitionID primitive.ObjectID) error

	// Assignment items
	InsertAssignmentItem(ctx context.Context, it *models.AssignmentItem) error
	GetAssignmentItem(ctx context.Context, id primitive.ObjectID) (*models.AssignmentItem, error)
	ListAssignmentItemsByAssignment(ctx context.Context, assignmentOID primitive.ObjectID) ([]models.AssignmentItem, error)
	ListAssignmentItemsByRequisitionItem(ctx context.Context, requisitionItemID primitive.ObjectID) ([]models.AssignmentItem, error)
	ListAssignmentItemsByRequisition(ctx context.Context, requisitionID primitive.ObjectID) ([]models.AssignmentItem, error)
	UpdateAssignmentItem(ctx context.Context, it *models.AssignmentItem) error

	// Suggestion log
	InsertSuggestion(ctx context.Context, s *models.SuggestionLog) error
	GetSuggestionByDecisionID(ctx context.Context, decisionID string) (*models.SuggestionLog, error)
	UpdateSuggestion(ctx context.Context, s *models.SuggestionLog) error

	// Workers and teams
	ListActiveWorkers(ctx context.Context) ([]models.Worker, error)
	GetWorker(ctx context.Context, workerID string) (*models.Worker, error)

	// Append-only records
	InsertAudit(ctx context.Context, e *models.AuditEntry) error
	InsertScanLog(ctx context.Context, s *models.ScanLog) error
	InsertManualOverride(ctx context.Context, m *models.ManualOverride) error
}
