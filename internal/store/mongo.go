// internal/store/mongo.go
package store

import (
	"context"
	"time"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a shared MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

// EnsureIndexes creates the indexes the core relies on. Safe to call on every
// startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection("requisitions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "documentNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection("assignments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignmentID", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "workerID", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "requisitionID", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection("assignment_items").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignmentID", Value: 1}}},
		{Keys: bson.D{{Key: "requisitionItemID", Value: 1}}},
		{Keys: bson.D{{Key: "requisitionID", Value: 1}}},
	})
	return err
}

// WithTransaction wraps fn in a mongo session so every write inside it
// commits atomically. The session context is passed down to fn.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func notFound(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// --- Requisitions ---

func (s *MongoStore) InsertRequisition(ctx context.Context, r *models.Requisition) error {
	res, err := s.db.Collection("requisitions").InsertOne(ctx, r)
	if err != nil {
		return err
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetRequisition(ctx context.Context, documentNumber string) (*models.Requisition, error) {
	var r models.Requisition
	err := s.db.Collection("requisitions").FindOne(ctx, bson.M{"documentNumber": documentNumber}).Decode(&r)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *MongoStore) GetRequisitionByID(ctx context.Context, id primitive.ObjectID) (*models.Requisition, error) {
	var r models.Requisition
	err := s.db.Collection("requisitions").FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *MongoStore) ListRequisitions(ctx context.Context, status string) ([]models.Requisition, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := s.db.Collection("requisitions").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Requisition
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Requisition{}
	}
	return out, nil
}

func (s *MongoStore) UpdateRequisition(ctx context.Context, r *models.Requisition) error {
	r.UpdatedAt = time.Now()
	res, err := s.db.Collection("requisitions").ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Requisition items ---

func (s *MongoStore) InsertRequisitionItem(ctx context.Context, it *models.RequisitionItem) error {
	res, err := s.db.Collection("requisition_items").InsertOne(ctx, it)
	if err != nil {
		return err
	}
	it.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetRequisitionItem(ctx context.Context, id primitive.ObjectID) (*models.RequisitionItem, error) {
	var it models.RequisitionItem
	err := s.db.Collection("requisition_items").FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (s *MongoStore) ListRequisitionItems(ctx context.Context, requisitionID primitive.ObjectID) ([]models.RequisitionItem, error) {
	cursor, err := s.db.Collection("requisition_items").Find(ctx, bson.M{"requisitionID": requisitionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.RequisitionItem
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.RequisitionItem{}
	}
	return out, nil
}

func (s *MongoStore) UpdateRequisitionItem(ctx context.Context, it *models.RequisitionItem) error {
	res, err := s.db.Collection("requisition_items").ReplaceOne(ctx, bson.M{"_id": it.ID}, it)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Assignments ---

func (s *MongoStore) InsertAssignment(ctx context.Context, a *models.Assignment) error {
	res, err := s.db.Collection("assignments").InsertOne(ctx, a)
	if err != nil {
		return err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetAssignment(ctx context.Context, assignmentID string) (*models.Assignment, error) {
	var a models.Assignment
	err := s.db.Collection("assignments").FindOne(ctx, bson.M{"assignmentID": assignmentID}).Decode(&a)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *MongoStore) GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	var a models.Assignment
	err := s.db.Collection("assignments").FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *MongoStore) ListAssignmentsByRequisition(ctx context.Context, requisitionID primitive.ObjectID) ([]models.Assignment, error) {
	return s.listAssignments(ctx, bson.M{"requisitionID": requisitionID})
}

func (s *MongoStore) ListAssignmentsByWorker(ctx context.Context, workerID string, openOnly bool) ([]models.Assignment, error) {
	filter := bson.M{"workerID": workerID}
	if openOnly {
		filter["status"] = bson.M{"$ne": models.AssignmentStatusDone}
	}
	return s.listAssignments(ctx, filter)
}

func (s *MongoStore) listAssignments(ctx context.Context, filter bson.M) ([]models.Assignment, error) {
	cursor, err := s.db.Collection("assignments").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Assignment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Assignment{}
	}
	return out, nil
}

func (s *MongoStore) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now()
	res, err := s.db.Collection("assignments").ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAssignmentsByRequisition removes every assignment of the requisition
// together with their items (application-level cascade).
func (s *MongoStore) DeleteAssignmentsByRequisition(ctx context.Context, requisitionID primitive.ObjectID) error {
	_, err := s.db.Collection("assignment_items").DeleteMany(ctx, bson.M{"requisitionID": requisitionID})
	if err != nil {
		return err
	}
	_, err = s.db.Collection("assignments").DeleteMany(ctx, bson.M{"requisitionID": requisitionID})
	return err
}

// --- Assignment items ---

func (s *MongoStore) InsertAssignmentItem(ctx context.Context, it *models.AssignmentItem) error {
	res, err := s.db.Collection("assignment_items").InsertOne(ctx, it)
	if err != nil {
		return err
	}
	it.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetAssignmentItem(ctx context.Context, id primitive.ObjectID) (*models.AssignmentItem, error) {
	var it models.AssignmentItem
	err := s.db.Collection("assignment_items").FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (s *MongoStore) ListAssignmentItemsByAssignment(ctx context.Context, assignmentOID primitive.ObjectID) ([]models.AssignmentItem, error) {
	return s.listAssignmentItems(ctx, bson.M{"assignmentID": assignmentOID})
}

func (s *MongoStore) ListAssignmentItemsByRequisitionItem(ctx context.Context, requisitionItemID primitive.ObjectID) ([]models.AssignmentItem, error) {
	return s.listAssignmentItems(ctx, bson.M{"requisitionItemID": requisitionItemID})
}

func (s *MongoStore) ListAssignmentItemsByRequisition(ctx context.Context, requisitionID primitive.ObjectID) ([]models.AssignmentItem, error) {
	return s.listAssignmentItems(ctx, bson.M{"requisitionID": requisitionID})
}

func (s *MongoStore) listAssignmentItems(ctx context.Context, filter bson.M) ([]models.AssignmentItem, error) {
	cursor, err := s.db.Collection("assignment_items").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.AssignmentItem
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.AssignmentItem{}
	}
	return out, nil
}

func (s *MongoStore) UpdateAssignmentItem(ctx context.Context, it *models.AssignmentItem) error {
	it.UpdatedAt = time.Now()
	res, err := s.db.Collection("assignment_items").ReplaceOne(ctx, bson.M{"_id": it.ID}, it)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Suggestion log ---

func (s *MongoStore) InsertSuggestion(ctx context.Context, sl *models.SuggestionLog) error {
	res, err := s.db.Collection("suggestion_logs").InsertOne(ctx, sl)
	if err != nil {
		return err
	}
	sl.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetSuggestionByDecisionID(ctx context.Context, decisionID string) (*models.SuggestionLog, error) {
	var sl models.SuggestionLog
	err := s.db.Collection("suggestion_logs").FindOne(ctx, bson.M{"decisionID": decisionID}).Decode(&sl)
	if err != nil {
		return nil, notFound(err)
	}
	return &sl, nil
}

func (s *MongoStore) UpdateSuggestion(ctx context.Context, sl *models.SuggestionLog) error {
	res, err := s.db.Collection("suggestion_logs").ReplaceOne(ctx, bson.M{"_id": sl.ID}, sl)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Workers ---

func (s *MongoStore) ListActiveWorkers(ctx context.Context) ([]models.Worker, error) {
	cursor, err := s.db.Collection("workers").Find(ctx, bson.M{"active": true, "role": "worker"})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Worker
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Worker{}
	}
	return out, nil
}

func (s *MongoStore) GetWorker(ctx context.Context, workerID string) (*models.Worker, error) {
	var w models.Worker
	err := s.db.Collection("workers").FindOne(ctx, bson.M{"workerID": workerID}).Decode(&w)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// --- Append-only records ---

func (s *MongoStore) InsertAudit(ctx context.Context, e *models.AuditEntry) error {
	_, err := s.db.Collection("audit_log").InsertOne(ctx, e)
	return err
}

func (s *MongoStore) InsertScanLog(ctx context.Context, sl *models.ScanLog) error {
	_, err := s.db.Collection("scan_logs").InsertOne(ctx, sl)
	return err
}

func (s *MongoStore) InsertManualOverride(ctx context.Context, m *models.ManualOverride) error {
	_, err := s.db.Collection("manual_overrides").InsertOne(ctx, m)
	return err
}
